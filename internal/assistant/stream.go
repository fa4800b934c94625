// Copyright (c) 2025 Kamal Singh Bisht
// SPDX-License-Identifier: Apache-2.0

package assistant

import (
	"bufio"
	"bytes"
	"io"
)

// MaxEventSize is the maximum allowed size for a single SSE event (64KB).
// Chart payloads arrive base64-encoded and can be large; anything beyond
// this is treated as a malformed frame.
const MaxEventSize = 64 * 1024

// =============================================================================
// SSE READER
// =============================================================================

// SSEReader parses Server-Sent Events from a stream.
//
// The MCP server emits one JSON object per event in "data:" fields,
// separated by blank lines. Event types, ids, retry hints and comments
// are ignored.
type SSEReader struct {
	reader *bufio.Reader
}

// NewSSEReader creates a new SSE reader from an io.Reader.
func NewSSEReader(r io.Reader) *SSEReader {
	return &SSEReader{
		reader: bufio.NewReader(r),
	}
}

// ReadEvent reads the next SSE event and returns its data payload.
// Multi-line data fields are joined with newlines. Returns io.EOF when
// the stream ends.
func (s *SSEReader) ReadEvent() ([]byte, error) {
	var dataLines [][]byte
	size := 0

	for {
		line, err := s.reader.ReadBytes('\n')
		if err != nil && err != io.EOF {
			return nil, err
		}

		line = bytes.TrimRight(line, "\r\n")

		if err == io.EOF {
			// The stream ended, possibly mid-line. Flush whatever
			// buffered data there is before signalling EOF.
			if bytes.HasPrefix(line, []byte("data:")) {
				dataLines = append(dataLines, bytes.TrimSpace(line[5:]))
			}
			if len(dataLines) > 0 {
				return bytes.Join(dataLines, []byte("\n")), nil
			}
			return nil, io.EOF
		}

		// Blank line ends the event.
		if len(line) == 0 {
			if len(dataLines) > 0 {
				return bytes.Join(dataLines, []byte("\n")), nil
			}
			continue
		}

		if bytes.HasPrefix(line, []byte("data:")) {
			data := bytes.TrimSpace(line[5:])
			size += len(data)
			if size > MaxEventSize {
				return nil, &ClientError{
					Type:    ErrTypeInvalidResponse,
					Message: "SSE event exceeds maximum size",
				}
			}
			dataLines = append(dataLines, data)
		}
		// Ignore event:, id:, retry: and comment lines.
	}
}
