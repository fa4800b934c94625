// Copyright (c) 2025 Kamal Singh Bisht
// SPDX-License-Identifier: Apache-2.0

// Package monitor tracks MCP server connectivity for the session.
//
// The Monitor is the single owner of the connectivity status: health
// probes and the session controller's transport-phase reports both go
// through it, and every transition fans out through one OnChange
// callback. Probe failures never surface as errors; they become the
// "disconnected" status.
//
// # Key Types
//
//   - Status: connectivity enum with user-facing labels
//   - Monitor: status owner with rate-limited probes and delayed re-checks
//   - HealthChecker: the probe dependency, satisfied by assistant.Client
//
// A dropped stream schedules one automatic re-check after a short delay
// rather than polling; manual checks are rate-limited so a misbehaving
// caller cannot hammer the server.
package monitor
