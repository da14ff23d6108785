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

// Package shell implements the Unix-like command layer over a mounted card
// and the interactive session that drives it. Commands take already-resolved
// volume paths; path resolution against a working directory belongs to the
// Session or the CLI front-end.
package shell

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/CardbayProject/cardbay-core/pkg/helpers"
	"github.com/CardbayProject/cardbay-core/pkg/service/state"
	"github.com/CardbayProject/cardbay-core/pkg/storage"
	"github.com/CardbayProject/cardbay-core/pkg/storage/errs"
	"github.com/CardbayProject/cardbay-core/pkg/storage/fsops"
)

// Result is the outcome of one shell command. Output is ready-to-print text
// without a trailing newline; ItemsProcessed and ItemsFailed count children
// for tree commands.
type Result struct {
	Err            error
	Output         string
	ItemsProcessed int
	ItemsFailed    int
}

// Shell exposes the command layer bound to one device manager.
type Shell struct {
	mgr *storage.Manager
	st  *state.State
}

func New(mgr *storage.Manager, st *state.State) *Shell {
	return &Shell{mgr: mgr, st: st}
}

// posixError renders the standard "cmd: cannot verb 'path': Message" line.
func posixError(cmd, verb, target string, err error) Result {
	return Result{
		Err:    err,
		Output: fmt.Sprintf("%s: cannot %s '%s': %s", cmd, verb, target, errs.Message(err)),
	}
}

func (s *Shell) fs() (*fsops.FS, error) {
	vol, err := s.mgr.Filesystem()
	if err != nil {
		return nil, err
	}
	return fsops.New(vol), nil
}

// LsOptions mirror the ls flags: -a, -l, -h, -t, -r.
type LsOptions struct {
	All        bool
	Long       bool
	Human      bool
	SortByTime bool
	Reverse    bool
}

// Ls lists a directory, or degenerates to a one-entry listing for a file
// target.
func (s *Shell) Ls(path string, opts LsOptions) Result {
	f, err := s.fs()
	if err != nil {
		return posixError("ls", "access", path, err)
	}

	infos, err := f.List(path)
	if err != nil {
		return posixError("ls", "access", path, err)
	}

	if !opts.All {
		visible := infos[:0]
		for _, fi := range infos {
			if !helpers.HiddenName(fi.Name) {
				visible = append(visible, fi)
			}
		}
		infos = visible
	}

	sort.SliceStable(infos, func(i, j int) bool {
		if opts.SortByTime {
			return infos[i].ModTime.After(infos[j].ModTime)
		}
		return infos[i].Name < infos[j].Name
	})
	if opts.Reverse {
		for i, j := 0, len(infos)-1; i < j; i, j = i+1, j-1 {
			infos[i], infos[j] = infos[j], infos[i]
		}
	}

	lines := make([]string, 0, len(infos))
	now := time.Now()
	for _, fi := range infos {
		if !opts.Long {
			lines = append(lines, fi.Name)
			continue
		}
		size := fmt.Sprintf("%8d", fi.Size)
		if opts.Human {
			size = fmt.Sprintf("%9s", helpers.FormatBytes(uint64(fi.Size))) //nolint:gosec // sizes are non-negative
		}
		lines = append(lines, fmt.Sprintf("%s %s %s %s",
			helpers.PermString(fi.Mode), size,
			helpers.FormatListTime(fi.ModTime, now), fi.Name))
	}

	return Result{
		Output:         strings.Join(lines, "\n"),
		ItemsProcessed: len(infos),
	}
}

// Cat prints a whole file.
func (s *Shell) Cat(path string) Result {
	f, err := s.fs()
	if err != nil {
		return posixError("cat", "open", path, err)
	}

	data, err := f.ReadFile(path)
	if err != nil {
		return posixError("cat", "open", path, err)
	}
	return Result{Output: string(data), ItemsProcessed: 1}
}

const defaultHeadLines = 10

// Head prints the first n lines of a file (10 when n <= 0).
func (s *Shell) Head(path string, n int) Result {
	return s.clip("head", path, n, func(lines []string, n int) []string {
		if len(lines) > n {
			return lines[:n]
		}
		return lines
	})
}

// Tail prints the last n lines of a file (10 when n <= 0).
func (s *Shell) Tail(path string, n int) Result {
	return s.clip("tail", path, n, func(lines []string, n int) []string {
		if len(lines) > n {
			return lines[len(lines)-n:]
		}
		return lines
	})
}

func (s *Shell) clip(cmd, path string, n int, pick func([]string, int) []string) Result {
	f, err := s.fs()
	if err != nil {
		return posixError(cmd, "open", path, err)
	}

	data, err := f.ReadFile(path)
	if err != nil {
		return posixError(cmd, "open", path, err)
	}
	if n <= 0 {
		n = defaultHeadLines
	}

	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	return Result{
		Output:         strings.Join(pick(lines, n), "\n"),
		ItemsProcessed: 1,
	}
}

// RmOptions mirror rm flags: -r, -f.
type RmOptions struct {
	Recursive bool
	Force     bool
}

// Rm removes a file or, with Recursive, a directory tree. Force suppresses
// the missing-target error the way rm -f does.
func (s *Shell) Rm(ctx context.Context, path string, opts RmOptions) Result {
	f, err := s.fs()
	if err != nil {
		return posixError("rm", "remove", path, err)
	}

	fi, err := f.Stat(path)
	if err != nil {
		if opts.Force && errs.KindOf(err) == errs.KindNotFound {
			return Result{}
		}
		return posixError("rm", "remove", path, err)
	}

	if !fi.IsDir {
		if err := f.RemoveFile(path); err != nil {
			return posixError("rm", "remove", path, err)
		}
		return Result{ItemsProcessed: 1}
	}

	stats, err := f.RemoveDirectory(ctx, path, opts.Recursive)
	if err != nil {
		return posixError("rm", "remove", path, err)
	}
	return Result{
		ItemsProcessed: stats.Removed,
		ItemsFailed:    len(stats.Failed),
	}
}

// CpOptions mirror cp flags: -r, -n.
type CpOptions struct {
	Recursive bool
	NoClobber bool
}

// Cp copies a file, or a tree with Recursive. Unlike the dispatcher's
// trusted copy path, an existing destination is only overwritten when the
// caller allows it.
func (s *Shell) Cp(ctx context.Context, src, dst string, opts CpOptions) Result {
	f, err := s.fs()
	if err != nil {
		return posixError("cp", "copy", src, err)
	}

	fi, err := f.Stat(src)
	if err != nil {
		return posixError("cp", "copy", src, err)
	}

	if fi.IsDir {
		if !opts.Recursive {
			err := fmt.Errorf("%q is a directory: %w", src, errs.ErrInvalidArg)
			return Result{
				Err:    err,
				Output: fmt.Sprintf("cp: -r not specified; omitting directory '%s'", src),
			}
		}
		stats, err := f.CopyDirectory(ctx, src, dst, true)
		if err != nil {
			return posixError("cp", "copy", src, err)
		}
		return Result{
			ItemsProcessed: stats.Copied,
			ItemsFailed:    len(stats.Failed),
		}
	}

	if err := f.CopyFile(src, dst, !opts.NoClobber); err != nil {
		return posixError("cp", "copy", src, err)
	}
	return Result{ItemsProcessed: 1}
}

// Mv renames src to dst.
func (s *Shell) Mv(src, dst string) Result {
	f, err := s.fs()
	if err != nil {
		return posixError("mv", "move", src, err)
	}
	if err := f.Move(src, dst); err != nil {
		return posixError("mv", "move", src, err)
	}
	return Result{ItemsProcessed: 1}
}

// Mkdir creates a directory, with parents when asked (-p).
func (s *Shell) Mkdir(path string, parents bool) Result {
	f, err := s.fs()
	if err != nil {
		return posixError("mkdir", "create directory", path, err)
	}
	if err := f.Mkdir(path, parents); err != nil {
		return posixError("mkdir", "create directory", path, err)
	}
	return Result{ItemsProcessed: 1}
}

// Rmdir removes an empty directory.
func (s *Shell) Rmdir(path string) Result {
	f, err := s.fs()
	if err != nil {
		return posixError("rmdir", "remove", path, err)
	}
	if _, err := f.RemoveDirectory(context.Background(), path, false); err != nil {
		return posixError("rmdir", "remove", path, err)
	}
	return Result{ItemsProcessed: 1}
}

// Touch creates an empty file or refreshes an existing one's timestamps.
func (s *Shell) Touch(path string) Result {
	f, err := s.fs()
	if err != nil {
		return posixError("touch", "touch", path, err)
	}
	if err := f.Touch(path); err != nil {
		return posixError("touch", "touch", path, err)
	}
	return Result{ItemsProcessed: 1}
}

// StatCmd renders a single entry's metadata.
func (s *Shell) StatCmd(path string) Result {
	f, err := s.fs()
	if err != nil {
		return posixError("stat", "stat", path, err)
	}

	fi, err := f.Stat(path)
	if err != nil {
		return posixError("stat", "stat", path, err)
	}

	kind := "regular file"
	if fi.IsDir {
		kind = "directory"
	}
	out := fmt.Sprintf("  File: %s\n  Size: %d\t%s\nAccess: %s\nModify: %s",
		path, fi.Size, kind, helpers.PermString(fi.Mode),
		fi.ModTime.Format(time.RFC3339))
	return Result{Output: out, ItemsProcessed: 1}
}

// FindOptions mirror find's -name and -type filters.
type FindOptions struct {
	// Name is the pattern to match; empty or "*" matches everything.
	Name string
	// Type filters to files ("f") or directories ("d").
	Type string
}

// Find recursively searches root and prints one matching path per line,
// relative to root.
func (s *Shell) Find(ctx context.Context, root string, opts FindOptions) Result {
	f, err := s.fs()
	if err != nil {
		return posixError("find", "search", root, err)
	}

	pattern := opts.Name
	if pattern == "" {
		pattern = "*"
	}

	matches, err := f.Search(ctx, root, pattern, fsops.SearchOptions{
		Recursive:     true,
		IncludeDirs:   opts.Type != "f",
		CaseSensitive: true,
	})
	if err != nil {
		return posixError("find", "search", root, err)
	}

	lines := make([]string, 0, len(matches))
	for _, m := range matches {
		if opts.Type == "d" && !m.IsDir {
			continue
		}
		lines = append(lines, m.Name)
	}
	return Result{
		Output:         strings.Join(lines, "\n"),
		ItemsProcessed: len(lines),
	}
}

// DuOptions mirror du flags: -h, -s.
type DuOptions struct {
	Human     bool
	Summarize bool
}

// Du prints "size<TAB>path" lines for the tree under path: one per child
// directory plus the total, or just the total with Summarize.
func (s *Shell) Du(ctx context.Context, path string, opts DuOptions) Result {
	f, err := s.fs()
	if err != nil {
		return posixError("du", "access", path, err)
	}

	render := func(n uint64) string {
		if opts.Human {
			return helpers.FormatBytes(n)
		}
		return fmt.Sprintf("%d", n)
	}

	var lines []string
	if !opts.Summarize {
		children, listErr := f.List(path)
		if listErr != nil {
			return posixError("du", "access", path, listErr)
		}
		for _, child := range children {
			if !child.IsDir {
				continue
			}
			childPath := strings.TrimSuffix(path, "/") + "/" + child.Name
			size, sizeErr := f.DirectorySize(ctx, childPath)
			if sizeErr != nil {
				return posixError("du", "access", childPath, sizeErr)
			}
			lines = append(lines, fmt.Sprintf("%s\t%s", render(size.TotalBytes), childPath))
		}
	}

	size, err := f.DirectorySize(ctx, path)
	if err != nil {
		return posixError("du", "access", path, err)
	}
	lines = append(lines, fmt.Sprintf("%s\t%s", render(size.TotalBytes), path))

	return Result{
		Output:         strings.Join(lines, "\n"),
		ItemsProcessed: size.Files + size.Directories,
	}
}

// DfOptions mirror df's -h flag.
type DfOptions struct {
	Human bool
}

// Df prints filesystem-wide totals from the device manager, independent of
// any particular path.
func (s *Shell) Df(ctx context.Context, opts DfOptions) Result {
	capacity, err := s.mgr.Capacity(ctx)
	if err != nil {
		return posixError("df", "access", s.mgr.MountPoint(), err)
	}

	render := func(n uint64) string {
		if opts.Human {
			return helpers.FormatBytes(n)
		}
		return fmt.Sprintf("%d", n)
	}

	info := s.mgr.Info()
	out := fmt.Sprintf("Filesystem\tSize\tUsed\tAvail\tMounted on\n%s\t%s\t%s\t%s\t%s",
		info.VolumeName,
		render(capacity.TotalBytes), render(capacity.UsedBytes),
		render(capacity.FreeBytes), s.mgr.MountPoint())
	return Result{Output: out, ItemsProcessed: 1}
}

// StorageStatus reports the device state machine and dispatcher totals. It
// works in every state; reporting "unmounted" is its whole point.
func (s *Shell) StorageStatus() Result {
	counters := s.st.Counters()
	out := fmt.Sprintf("State:       %s\nPresent:     %t\nMount point: %s\n"+
		"Operations:  %d total, %d succeeded, %d failed",
		s.mgr.State(), s.mgr.Present(), s.mgr.MountPoint(),
		counters.Total, counters.Succeeded, counters.Failed)
	return Result{Output: out}
}

// StorageInfo renders the mounted card's identity, capacity and tree totals.
func (s *Shell) StorageInfo(ctx context.Context) Result {
	stats, err := s.mgr.Stats(ctx)
	if err != nil {
		return posixError("storage-info", "access", s.mgr.MountPoint(), err)
	}

	info := s.mgr.Info()
	out := fmt.Sprintf("Volume:      %s\nSerial:      %s\nSector size: %d\n"+
		"Capacity:    %s\nUsed:        %s\nFree:        %s\n"+
		"Files:       %d\nDirectories: %d",
		info.VolumeName, info.Serial, info.SectorSize,
		helpers.FormatBytes(stats.TotalBytes), helpers.FormatBytes(stats.UsedBytes),
		helpers.FormatBytes(stats.FreeBytes),
		stats.TotalFiles, stats.TotalDirectories)
	return Result{Output: out, ItemsProcessed: 1}
}
