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

// Package requests defines the dispatcher's request and response types.
package requests

import (
	"fmt"
	"time"

	"github.com/CardbayProject/cardbay-core/pkg/helpers"
	"github.com/CardbayProject/cardbay-core/pkg/storage/errs"
)

// Op tags what a request asks the worker to do.
type Op int

const (
	OpUnknown Op = iota
	OpMount
	OpUnmount
	OpFormat
	OpRead
	OpWrite
	OpAppend
	OpDelete
	OpCopy
	OpMove
	OpMkdir
	OpRmdir
	OpListDir
	OpStat
)

func (o Op) String() string {
	switch o {
	case OpMount:
		return "mount"
	case OpUnmount:
		return "unmount"
	case OpFormat:
		return "format"
	case OpRead:
		return "read"
	case OpWrite:
		return "write"
	case OpAppend:
		return "append"
	case OpDelete:
		return "delete"
	case OpCopy:
		return "copy"
	case OpMove:
		return "move"
	case OpMkdir:
		return "mkdir"
	case OpRmdir:
		return "rmdir"
	case OpListDir:
		return "listdir"
	case OpStat:
		return "stat"
	case OpUnknown:
		return "unknown"
	default:
		return "unknown"
	}
}

// Callback receives the outcome of an async request. It runs synchronously
// on the worker goroutine, so it must not block for long: every queued
// request behind it waits until it returns.
type Callback func(resp Response, userData any)

// Request is one queued operation. It has exactly one live owner at a time:
// the queue until dequeue, then the worker, which consumes the payload and
// invokes the callback exactly once.
type Request struct {
	Callback Callback
	UserData any
	Path1    string
	Path2    string
	Payload  []byte
	// Timeout bounds the dispatched operation; zero means no deadline.
	Timeout time.Duration
	ID      uint64
	Op      Op
}

// Response is handed to the request's callback. Data carries the
// op-specific result: []byte for read, []fsops.FileInfo for listdir,
// fsops.FileInfo for stat, nil otherwise.
type Response struct {
	Data     any
	Err      error
	Duration time.Duration
	ID       uint64
	Op       Op
}

// pathArity describes which paths an op requires.
func pathArity(op Op) (needsPath1, needsPath2 bool) {
	switch op {
	case OpMount, OpUnmount, OpFormat:
		return false, false
	case OpCopy, OpMove:
		return true, true
	case OpRead, OpWrite, OpAppend, OpDelete, OpMkdir, OpRmdir, OpListDir, OpStat, OpUnknown:
		return true, false
	default:
		return true, false
	}
}

// Validate checks a request before it is allowed near the queue, so callers
// get argument errors synchronously instead of through the callback.
func Validate(req *Request) error {
	if req.Op <= OpUnknown || req.Op > OpStat {
		return fmt.Errorf("unknown operation %d: %w", req.Op, errs.ErrInvalidArg)
	}

	needs1, needs2 := pathArity(req.Op)
	if needs1 {
		if err := helpers.ValidatePath(req.Path1); err != nil {
			return fmt.Errorf("%s path: %w", req.Op, err)
		}
	}
	if needs2 {
		if err := helpers.ValidatePath(req.Path2); err != nil {
			return fmt.Errorf("%s destination: %w", req.Op, err)
		}
	}
	return nil
}
