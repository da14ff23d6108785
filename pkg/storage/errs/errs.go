// Cardbay Core
// Copyright (c) 2026 The Cardbay Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Cardbay Core.
//
// Cardbay Core is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Cardbay Core is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Cardbay Core.  If not, see <http://www.gnu.org/licenses/>.

// Package errs defines the storage core's error taxonomy. Layers wrap these
// sentinels with %w so callers can classify failures with errors.Is no matter
// how deep in the stack they originated.
package errs

import (
	"context"
	"errors"
)

var (
	// ErrInvalidArg reports malformed or missing parameters.
	ErrInvalidArg = errors.New("invalid argument")
	// ErrInvalidState reports an operation attempted outside the required
	// device state, e.g. a filesystem op while unmounted.
	ErrInvalidState = errors.New("invalid state")
	// ErrNotFound reports an absent path or request target.
	ErrNotFound = errors.New("not found")
	// ErrNoMem reports allocation failure or a full request queue.
	ErrNoMem = errors.New("no memory")
	// ErrTimeout reports an unresponsive device or a deadline that expired.
	ErrTimeout = errors.New("timed out")
	// ErrNotSupported reports an operation the device or driver does not
	// implement. Unimplemented operations fail loudly instead of silently
	// succeeding.
	ErrNotSupported = errors.New("not supported")
	// ErrFail reports a generic I/O failure.
	ErrFail = errors.New("operation failed")
)

// Kind is the classification of an error against the taxonomy.
type Kind int

const (
	KindNone Kind = iota
	KindFail
	KindInvalidArg
	KindInvalidState
	KindNotFound
	KindNoMem
	KindTimeout
	KindNotSupported
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "ok"
	case KindFail:
		return "fail"
	case KindInvalidArg:
		return "invalid argument"
	case KindInvalidState:
		return "invalid state"
	case KindNotFound:
		return "not found"
	case KindNoMem:
		return "no memory"
	case KindTimeout:
		return "timed out"
	case KindNotSupported:
		return "not supported"
	default:
		return "unknown"
	}
}

// KindOf classifies err. A nil error is KindNone; anything unrecognized is
// KindFail. Context deadline and cancellation errors classify as KindTimeout
// so deadline enforcement in the dispatcher surfaces uniformly.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrInvalidArg):
		return KindInvalidArg
	case errors.Is(err, ErrInvalidState):
		return KindInvalidState
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrNoMem):
		return KindNoMem
	case errors.Is(err, ErrTimeout),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return KindTimeout
	case errors.Is(err, ErrNotSupported):
		return KindNotSupported
	default:
		return KindFail
	}
}

// ExitCode maps an error to a process exit code. Zero means success.
func ExitCode(err error) int {
	switch KindOf(err) {
	case KindNone:
		return 0
	case KindInvalidArg:
		return 2
	case KindInvalidState:
		return 3
	case KindNotFound:
		return 4
	case KindNoMem:
		return 5
	case KindTimeout:
		return 6
	case KindNotSupported:
		return 7
	case KindFail:
		return 1
	default:
		return 1
	}
}

// Message returns the POSIX-style message fragment shell commands append
// after the offending path, e.g. "No such file or directory".
func Message(err error) string {
	switch KindOf(err) {
	case KindNone:
		return "Success"
	case KindInvalidArg:
		return "Invalid argument"
	case KindInvalidState:
		return "Device not mounted"
	case KindNotFound:
		return "No such file or directory"
	case KindNoMem:
		return "Out of memory"
	case KindTimeout:
		return "Timed out"
	case KindNotSupported:
		return "Operation not supported"
	default:
		return "Input/output error"
	}
}
