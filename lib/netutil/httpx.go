// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package netutil provides HTTP and network helpers shared by the
// TargetProcess client and the connectivity gate.
//
// Response helpers ([ReadResponse], [ErrorBody]) bound every body read
// at [MaxResponseSize] so that a misbehaving server cannot exhaust
// memory. [IsTransient] classifies network failures that a caller may
// reasonably retry later.
package netutil

import (
	"errors"
	"fmt"
	"io"
)

// MaxResponseSize bounds JSON API response reads: 64 MB. A single page
// of TargetProcess entities with their includes is a few megabytes at
// most; the limit only guards against a pathological response.
const MaxResponseSize int64 = 64 << 20

// ErrResponseTooLarge is returned by ReadResponse when the body exceeds
// MaxResponseSize.
var ErrResponseTooLarge = errors.New("response body exceeds size limit")

// ReadResponse reads a response body up to MaxResponseSize bytes. A body
// that is larger is an error rather than a silently truncated document.
func ReadResponse(body io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(body, MaxResponseSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > MaxResponseSize {
		return nil, fmt.Errorf("%w (%d bytes)", ErrResponseTooLarge, MaxResponseSize)
	}
	return data, nil
}

// ErrorBody reads an HTTP error response body for diagnostics. Read
// errors are ignored: a partial body is still useful in an error.
func ErrorBody(body io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(body, MaxResponseSize))
	return string(data)
}
