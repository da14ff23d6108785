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

package service

import (
	"time"

	"github.com/CardbayProject/cardbay-core/pkg/service/requests"
)

// Convenience wrappers for the common dispatcher requests. Each builds a
// request and submits it; the returned ID identifies the operation in
// lifecycle events.

// MountAsync queues a mount attempt.
func (d *Dispatcher) MountAsync(timeout time.Duration, cb requests.Callback, userData any) (uint64, error) {
	return d.Enqueue(&requests.Request{
		Op:       requests.OpMount,
		Timeout:  timeout,
		Callback: cb,
		UserData: userData,
	})
}

// UnmountAsync queues an unmount.
func (d *Dispatcher) UnmountAsync(cb requests.Callback, userData any) (uint64, error) {
	return d.Enqueue(&requests.Request{
		Op:       requests.OpUnmount,
		Callback: cb,
		UserData: userData,
	})
}

// FormatAsync queues a card format. The card must be unmounted when the request
// runs.
func (d *Dispatcher) FormatAsync(timeout time.Duration, cb requests.Callback, userData any) (uint64, error) {
	return d.Enqueue(&requests.Request{
		Op:       requests.OpFormat,
		Timeout:  timeout,
		Callback: cb,
		UserData: userData,
	})
}

// ReadFileAsync queues a whole-file read; the callback receives the contents as
// []byte in Response.Data.
func (d *Dispatcher) ReadFileAsync(path string, cb requests.Callback, userData any) (uint64, error) {
	return d.Enqueue(&requests.Request{
		Op:       requests.OpRead,
		Path1:    path,
		Callback: cb,
		UserData: userData,
	})
}

// WriteFileAsync queues a create-or-truncate write of data to path.
func (d *Dispatcher) WriteFileAsync(path string, data []byte, cb requests.Callback, userData any) (uint64, error) {
	return d.Enqueue(&requests.Request{
		Op:       requests.OpWrite,
		Path1:    path,
		Payload:  data,
		Callback: cb,
		UserData: userData,
	})
}

// AppendFileAsync queues an append of data to path, creating it when absent.
func (d *Dispatcher) AppendFileAsync(path string, data []byte, cb requests.Callback, userData any) (uint64, error) {
	return d.Enqueue(&requests.Request{
		Op:       requests.OpAppend,
		Path1:    path,
		Payload:  data,
		Callback: cb,
		UserData: userData,
	})
}

// DeleteFileAsync queues the removal of a single file.
func (d *Dispatcher) DeleteFileAsync(path string, cb requests.Callback, userData any) (uint64, error) {
	return d.Enqueue(&requests.Request{
		Op:       requests.OpDelete,
		Path1:    path,
		Callback: cb,
		UserData: userData,
	})
}

// ListDirAsync queues a directory listing; the callback receives
// []fsops.FileInfo in Response.Data.
func (d *Dispatcher) ListDirAsync(path string, cb requests.Callback, userData any) (uint64, error) {
	return d.Enqueue(&requests.Request{
		Op:       requests.OpListDir,
		Path1:    path,
		Callback: cb,
		UserData: userData,
	})
}

// MkdirAsync queues a directory creation, including missing parents.
func (d *Dispatcher) MkdirAsync(path string, cb requests.Callback, userData any) (uint64, error) {
	return d.Enqueue(&requests.Request{
		Op:       requests.OpMkdir,
		Path1:    path,
		Callback: cb,
		UserData: userData,
	})
}

// RmdirAsync queues the removal of an empty directory.
func (d *Dispatcher) RmdirAsync(path string, cb requests.Callback, userData any) (uint64, error) {
	return d.Enqueue(&requests.Request{
		Op:       requests.OpRmdir,
		Path1:    path,
		Callback: cb,
		UserData: userData,
	})
}

// CopyAsync queues a copy of src to dst, overwriting an existing destination.
// Directories copy recursively.
func (d *Dispatcher) CopyAsync(src, dst string, cb requests.Callback, userData any) (uint64, error) {
	return d.Enqueue(&requests.Request{
		Op:       requests.OpCopy,
		Path1:    src,
		Path2:    dst,
		Callback: cb,
		UserData: userData,
	})
}

// MoveAsync queues a rename of src to dst.
func (d *Dispatcher) MoveAsync(src, dst string, cb requests.Callback, userData any) (uint64, error) {
	return d.Enqueue(&requests.Request{
		Op:       requests.OpMove,
		Path1:    src,
		Path2:    dst,
		Callback: cb,
		UserData: userData,
	})
}

// StatAsync queues a stat of path; the callback receives fsops.FileInfo in
// Response.Data.
func (d *Dispatcher) StatAsync(path string, cb requests.Callback, userData any) (uint64, error) {
	return d.Enqueue(&requests.Request{
		Op:       requests.OpStat,
		Path1:    path,
		Callback: cb,
		UserData: userData,
	})
}
