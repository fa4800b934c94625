// Copyright (c) 2025 Kamal Singh Bisht
// SPDX-License-Identifier: Apache-2.0

// Package model contains the data structures for the chat transcript.
//
// The Store owns the in-memory transcript: an ordered list of user and
// assistant turns, of which at most one assistant turn is pending
// (still streaming) at any time. Content updates address turns by ID
// and replace the content wholesale, so a late or duplicate update can
// never corrupt a completed turn — it is simply dropped.
//
// # Key Types
//
//   - Message: one transcript turn with role, content and optional chart
//   - Store: thread-safe transcript with single-pending-turn enforcement
//   - Surface: notification sink implemented by the UI
//
// The Store never renders; it notifies the attached Surface and the
// surface decides how to draw.
package model
