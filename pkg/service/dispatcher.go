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
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/CardbayProject/cardbay-core/pkg/api/models"
	"github.com/CardbayProject/cardbay-core/pkg/api/notifications"
	"github.com/CardbayProject/cardbay-core/pkg/config"
	"github.com/CardbayProject/cardbay-core/pkg/service/requests"
	"github.com/CardbayProject/cardbay-core/pkg/service/state"
	"github.com/CardbayProject/cardbay-core/pkg/storage"
	"github.com/CardbayProject/cardbay-core/pkg/storage/errs"
	"github.com/CardbayProject/cardbay-core/pkg/storage/fsops"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

var (
	// ErrQueueFull is returned by Enqueue when the queue stayed full for the
	// whole admission wait.
	ErrQueueFull = fmt.Errorf("request queue full: %w", errs.ErrNoMem)
	// ErrShuttingDown is returned by Enqueue after shutdown has begun, and
	// delivered to the callbacks of requests drained without running.
	ErrShuttingDown = fmt.Errorf("dispatcher shutting down: %w", errs.ErrInvalidState)
)

const defaultQueueSize = 16

// DispatcherOptions configure a Dispatcher.
type DispatcherOptions struct {
	// Clock drives admission waits and operation timing.
	Clock clockwork.Clock
	// QueueSize caps how many requests may be pending at once.
	QueueSize int
	// FormatIfFailed is forwarded to mount requests.
	FormatIfFailed bool
}

// Dispatcher serializes storage operations through a bounded FIFO queue and
// a single worker goroutine. All mutation of the card goes through here, so
// the rest of the service never has to reason about concurrent filesystem
// access.
type Dispatcher struct {
	mgr            *storage.Manager
	st             *state.State
	clock          clockwork.Clock
	queue          chan *requests.Request
	done           chan struct{}
	slotFreed      chan struct{}
	nextID         atomic.Uint64
	mu             sync.Mutex
	shuttingDown   bool
	formatIfFailed bool
}

func NewDispatcher(mgr *storage.Manager, st *state.State, opts DispatcherOptions) *Dispatcher {
	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	queueSize := opts.QueueSize
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	return &Dispatcher{
		mgr:            mgr,
		st:             st,
		clock:          clock,
		queue:          make(chan *requests.Request, queueSize),
		done:           make(chan struct{}),
		slotFreed:      make(chan struct{}, 1),
		formatIfFailed: opts.FormatIfFailed,
	}
}

// Start launches the worker. It returns immediately; the worker runs until
// ctx ends, then drains the queue and closes Done.
func (d *Dispatcher) Start(ctx context.Context) {
	go d.worker(ctx)
}

// Done is closed once the worker has exited and every queued request has had
// its callback invoked.
func (d *Dispatcher) Done() <-chan struct{} {
	return d.done
}

// Enqueue validates req and submits it. Validation failures surface here
// synchronously; everything after admission is reported through the
// callback. When the queue is full, Enqueue waits a short grace period for
// the worker to free a slot before giving up with ErrQueueFull.
func (d *Dispatcher) Enqueue(req *requests.Request) (uint64, error) {
	if err := requests.Validate(req); err != nil {
		return 0, err
	}

	req.ID = d.nextID.Add(1)

	ok, err := d.tryEnqueue(req)
	if err != nil {
		return 0, err
	}
	if ok {
		return req.ID, nil
	}

	timer := d.clock.NewTimer(config.EnqueueWait)
	defer timer.Stop()
	for {
		select {
		case <-timer.Chan():
			log.Warn().Msgf("dispatcher: queue full, rejecting %s request", req.Op)
			return 0, ErrQueueFull
		case <-d.done:
			return 0, ErrShuttingDown
		case <-d.slotFreed:
			ok, err := d.tryEnqueue(req)
			if err != nil {
				return 0, err
			}
			if ok {
				return req.ID, nil
			}
		}
	}
}

// tryEnqueue admits req without blocking. The mutex makes the shutting-down
// check and the send a single step relative to shutdown, so no request can
// land in the queue after the drain's final pass.
func (d *Dispatcher) tryEnqueue(req *requests.Request) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.shuttingDown {
		return false, ErrShuttingDown
	}
	select {
	case d.queue <- req:
		return true, nil
	default:
		return false, nil
	}
}

func (d *Dispatcher) worker(ctx context.Context) {
	for {
		// shutdown wins over pending work so queued requests drain with a
		// clear error instead of racing the cancellation
		select {
		case <-ctx.Done():
			d.shutdown()
			return
		default:
		}

		select {
		case <-ctx.Done():
			d.shutdown()
			return
		case req := <-d.queue:
			// wake one enqueuer waiting out a full queue
			select {
			case d.slotFreed <- struct{}{}:
			default:
			}
			d.execute(ctx, req)
		}
	}
}

// shutdown fails every request still in the queue. Callbacks are still
// invoked exactly once; callers waiting on one are released, not leaked.
func (d *Dispatcher) shutdown() {
	d.mu.Lock()
	d.shuttingDown = true
	d.mu.Unlock()
	// every admission checks the flag under the same mutex, so from here on
	// the queue can only shrink
	for {
		select {
		case req := <-d.queue:
			req.Payload = nil
			d.finish(req, requests.Response{
				ID:  req.ID,
				Op:  req.Op,
				Err: ErrShuttingDown,
			})
		default:
			close(d.done)
			return
		}
	}
}

func (d *Dispatcher) execute(ctx context.Context, req *requests.Request) {
	opCtx := ctx
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		opCtx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	start := d.clock.Now()
	var data any
	var err error
	if opCtx.Err() != nil {
		err = fmt.Errorf("%s aborted before running: %w", req.Op, errs.ErrTimeout)
	} else {
		data, err = d.dispatch(opCtx, req)
	}
	req.Payload = nil

	resp := requests.Response{
		ID:       req.ID,
		Op:       req.Op,
		Data:     data,
		Err:      err,
		Duration: d.clock.Since(start),
	}
	if err != nil && opCtx.Err() != nil && errs.KindOf(err) != errs.KindTimeout {
		resp.Err = fmt.Errorf("%s: %w", err, errs.ErrTimeout)
	}
	d.finish(req, resp)
}

// finish delivers the response: callback, counters, lifecycle event.
func (d *Dispatcher) finish(req *requests.Request, resp requests.Response) {
	if req.Callback != nil {
		req.Callback(resp, req.UserData)
	}
	d.st.RecordResult(resp.Err == nil)

	params := models.OperationParams{
		Op:         resp.Op.String(),
		Path:       req.Path1,
		Dest:       req.Path2,
		ID:         resp.ID,
		DurationMs: resp.Duration.Milliseconds(),
	}
	if resp.Err != nil {
		log.Debug().Err(resp.Err).Msgf("dispatcher: %s request %d failed", resp.Op, resp.ID)
		notifications.OperationFailed(d.st.Notifications, models.OperationFailedParams{
			Op:         params.Op,
			Path:       params.Path,
			Dest:       params.Dest,
			Error:      resp.Err.Error(),
			ID:         params.ID,
			DurationMs: params.DurationMs,
		})
		return
	}
	notifications.OperationComplete(d.st.Notifications, params)
}

func (d *Dispatcher) dispatch(ctx context.Context, req *requests.Request) (any, error) {
	switch req.Op {
	case requests.OpMount:
		return nil, d.mgr.Mount(ctx, storage.MountOptions{FormatIfFailed: d.formatIfFailed})
	case requests.OpUnmount:
		return nil, d.mgr.Unmount(ctx)
	case requests.OpFormat:
		return nil, d.mgr.Format(ctx)
	case requests.OpRead, requests.OpWrite, requests.OpAppend, requests.OpDelete,
		requests.OpCopy, requests.OpMove, requests.OpMkdir, requests.OpRmdir,
		requests.OpListDir, requests.OpStat:
		vol, err := d.mgr.Filesystem()
		if err != nil {
			return nil, err
		}
		return d.dispatchFs(ctx, fsops.New(vol), req)
	case requests.OpUnknown:
		return nil, fmt.Errorf("unknown operation: %w", errs.ErrInvalidArg)
	default:
		return nil, fmt.Errorf("unknown operation: %w", errs.ErrInvalidArg)
	}
}

func (d *Dispatcher) dispatchFs(ctx context.Context, f *fsops.FS, req *requests.Request) (any, error) {
	switch req.Op {
	case requests.OpRead:
		return f.ReadFile(req.Path1)
	case requests.OpWrite:
		return nil, f.WriteFile(req.Path1, req.Payload, fsops.DefaultWriteOptions())
	case requests.OpAppend:
		return nil, f.AppendFile(req.Path1, req.Payload)
	case requests.OpDelete:
		return nil, f.RemoveFile(req.Path1)
	case requests.OpCopy:
		fi, err := f.Stat(req.Path1)
		if err != nil {
			return nil, err
		}
		if fi.IsDir {
			stats, err := f.CopyDirectory(ctx, req.Path1, req.Path2, true)
			return stats, err
		}
		return nil, f.CopyFile(req.Path1, req.Path2, true)
	case requests.OpMove:
		return nil, f.Move(req.Path1, req.Path2)
	case requests.OpMkdir:
		return nil, f.Mkdir(req.Path1, true)
	case requests.OpRmdir:
		stats, err := f.RemoveDirectory(ctx, req.Path1, false)
		return stats, err
	case requests.OpListDir:
		return f.List(req.Path1)
	case requests.OpStat:
		return f.Stat(req.Path1)
	case requests.OpUnknown, requests.OpMount, requests.OpUnmount, requests.OpFormat:
		return nil, fmt.Errorf("%s is not a filesystem operation: %w", req.Op, errs.ErrInvalidArg)
	default:
		return nil, fmt.Errorf("%s is not a filesystem operation: %w", req.Op, errs.ErrInvalidArg)
	}
}
