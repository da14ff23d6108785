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

package shell

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/CardbayProject/cardbay-core/pkg/storage"
	"github.com/CardbayProject/cardbay-core/pkg/storage/errs"
)

// Exec runs a single command line outside an interactive session, with the
// working directory fixed at the volume root. On top of the session's
// command table it accepts device lifecycle commands (mount, unmount,
// format) and the status reports, which the one-shot CLI exposes.
func (s *Shell) Exec(ctx context.Context, line string) Result {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Result{Err: fmt.Errorf("empty command: %w", errs.ErrInvalidArg)}
	}
	cmd, args := fields[0], fields[1:]
	flags, paths := splitFlags(args)

	first := "/"
	if len(paths) > 0 {
		first = resolveAgainst("/", paths[0])
	}

	switch cmd {
	case "mount":
		if err := s.mgr.Mount(ctx, storage.MountOptions{}); err != nil {
			return Result{Err: err, Output: fmt.Sprintf("mount: %s", errs.Message(err))}
		}
		return Result{Output: fmt.Sprintf("mounted at %s", s.mgr.MountPoint())}
	case "unmount":
		if err := s.mgr.Unmount(ctx); err != nil {
			return Result{Err: err, Output: fmt.Sprintf("unmount: %s", errs.Message(err))}
		}
		return Result{Output: "unmounted"}
	case "format":
		// destructive, so a one-shot invocation must say it means it
		if !hasLongFlag(args, "--force") {
			return Result{
				Err:    fmt.Errorf("format without --force: %w", errs.ErrInvalidArg),
				Output: "format: erases the card; pass --force to confirm",
			}
		}
		if err := s.mgr.Format(ctx); err != nil {
			return Result{Err: err, Output: fmt.Sprintf("format: %s", errs.Message(err))}
		}
		return Result{Output: "formatted"}
	case "storage-status":
		return s.StorageStatus()
	case "storage-info":
		return s.StorageInfo(ctx)
	case "pwd":
		return Result{Output: "/"}
	case "cd":
		// one-shot invocations carry no working directory between calls,
		// but the target is still validated like the interactive shell does
		if len(paths) == 0 {
			return Result{}
		}
		f, err := s.fs()
		if err != nil {
			return posixError("cd", "access", first, err)
		}
		fi, err := f.Stat(first)
		if err != nil {
			return posixError("cd", "access", first, err)
		}
		if !fi.IsDir {
			return Result{
				Err:    fmt.Errorf("%q is not a directory: %w", first, errs.ErrInvalidArg),
				Output: fmt.Sprintf("cd: not a directory: %s", first),
			}
		}
		return Result{}
	case "head":
		return s.Head(targetArg(args, "-n"), intFlag(args, "-n"))
	case "tail":
		return s.Tail(targetArg(args, "-n"), intFlag(args, "-n"))
	case "find":
		return s.Find(ctx, targetArg(args, "-name", "-type"), FindOptions{
			Name: valueFlag(args, "-name"),
			Type: valueFlag(args, "-type"),
		})
	case "rmdir":
		if len(paths) == 0 {
			return usageError(cmd, "rmdir <dir>")
		}
		return s.Rmdir(first)
	case "ls":
		return s.Ls(first, LsOptions{
			All:        flags["a"],
			Long:       flags["l"],
			Human:      flags["h"],
			SortByTime: flags["t"],
			Reverse:    flags["r"],
		})
	case "cat":
		if len(paths) == 0 {
			return usageError(cmd, "cat <file>")
		}
		return s.Cat(first)
	case "touch":
		if len(paths) == 0 {
			return usageError(cmd, "touch <file>")
		}
		return s.Touch(first)
	case "mkdir":
		if len(paths) == 0 {
			return usageError(cmd, "mkdir [-p] <dir>")
		}
		return s.Mkdir(first, flags["p"])
	case "rm":
		if len(paths) == 0 {
			return usageError(cmd, "rm [-r] [-f] <path>")
		}
		return s.Rm(ctx, first, RmOptions{Recursive: flags["r"], Force: flags["f"]})
	case "cp":
		if len(paths) < 2 {
			return usageError(cmd, "cp [-r] [-n] <src> <dst>")
		}
		return s.Cp(ctx, first, resolveAgainst("/", paths[1]), CpOptions{
			Recursive: flags["r"],
			NoClobber: flags["n"],
		})
	case "mv":
		if len(paths) < 2 {
			return usageError(cmd, "mv <src> <dst>")
		}
		return s.Mv(first, resolveAgainst("/", paths[1]))
	case "df":
		return s.Df(ctx, DfOptions{Human: flags["h"]})
	case "du":
		return s.Du(ctx, first, DuOptions{Human: flags["h"], Summarize: flags["s"]})
	case "stat":
		if len(paths) == 0 {
			return usageError(cmd, "stat <path>")
		}
		return s.StatCmd(first)
	default:
		return Result{
			Err:    fmt.Errorf("unknown command %q: %w", cmd, errs.ErrInvalidArg),
			Output: fmt.Sprintf("%s: command not found", cmd),
		}
	}
}

// targetArg picks the path operand from args, skipping flags that take a
// value (e.g. `head -n 5 /file.txt` resolves /file.txt, not 5). Defaults to
// the root when no operand remains.
func targetArg(args []string, valued ...string) string {
	skipNext := false
	for _, a := range args {
		if skipNext {
			skipNext = false
			continue
		}
		for _, v := range valued {
			if a == v {
				skipNext = true
				break
			}
		}
		if skipNext || strings.HasPrefix(a, "-") {
			continue
		}
		return resolveAgainst("/", a)
	}
	return "/"
}

func hasLongFlag(args []string, name string) bool {
	for _, a := range args {
		if a == name {
			return true
		}
	}
	return false
}

// valueFlag returns the token following name, e.g. `-name readme.txt`.
func valueFlag(args []string, name string) string {
	for i, a := range args {
		if a == name && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func intFlag(args []string, name string) int {
	v := valueFlag(args, name)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}
