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
	"bufio"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/CardbayProject/cardbay-core/pkg/storage"
	"github.com/CardbayProject/cardbay-core/pkg/storage/errs"
)

const (
	// DefaultIdleTimeout force-exits a session nobody is typing into.
	DefaultIdleTimeout = 5 * time.Minute

	// maxLineLength bounds a single input line; anything longer is rejected
	// rather than buffered.
	maxLineLength = 1024
)

// SessionOptions tune a Session; zero values pick sane defaults.
type SessionOptions struct {
	Clock       clockwork.Clock
	IdleTimeout time.Duration
}

// Session is an interactive shell over one mounted card. It reads commands
// line by line from in and writes results to out, tracking a working
// directory between commands.
type Session struct {
	sh    *Shell
	in    io.Reader
	out   io.Writer
	clock clockwork.Clock
	idle  time.Duration
	cwd   string
}

func NewSession(sh *Shell, in io.Reader, out io.Writer, opts SessionOptions) *Session {
	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	idle := opts.IdleTimeout
	if idle <= 0 {
		idle = DefaultIdleTimeout
	}
	return &Session{
		sh:    sh,
		in:    in,
		out:   out,
		clock: clock,
		idle:  idle,
		cwd:   "/",
	}
}

// resolve turns a command argument into an absolute volume path against the
// working directory. Clean floors ".." at the root, so "cd .." from "/" is
// a no-op.
func (s *Session) resolve(arg string) string {
	return resolveAgainst(s.cwd, arg)
}

func resolveAgainst(cwd, arg string) string {
	if arg == "" {
		return cwd
	}
	if !strings.HasPrefix(arg, "/") {
		arg = path.Join(cwd, arg)
	}
	return path.Clean(arg)
}

func (s *Session) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

func (s *Session) printResult(res Result) {
	if res.Output != "" {
		s.printf("%s\n", res.Output)
	}
}

// Run drives the read-eval-print loop until exit, EOF, idle timeout or
// context cancellation. It refuses to start unless the card is mounted;
// once running, command failures are printed and the loop continues.
func (s *Session) Run(ctx context.Context) error {
	if state := s.sh.mgr.State(); state != storage.Mounted {
		return fmt.Errorf("shell requires a mounted card (%s): %w",
			state, errs.ErrInvalidState)
	}

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(s.in)
		scanner.Buffer(make([]byte, maxLineLength), maxLineLength)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	s.printf("Cardbay shell. Type 'help' for commands, 'exit' to leave.\n")

	for {
		s.printf("sdcard:%s> ", s.cwd)

		timer := s.clock.NewTimer(s.idle)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.Chan():
			s.printf("\nidle for %s, closing session\n", s.idle)
			log.Info().Msgf("shell: session idle for %s, exiting", s.idle)
			return nil
		case line, ok := <-lines:
			timer.Stop()
			if !ok {
				select {
				case err := <-readErr:
					if err != nil {
						return fmt.Errorf("read input: %w", err)
					}
				default:
				}
				return nil
			}
			if exit := s.eval(ctx, line); exit {
				return nil
			}
		}
	}
}

// eval runs one input line and reports whether the session should end.
func (s *Session) eval(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "exit":
		return true
	case "help":
		s.printf("%s\n", helpText)
		return false
	case "pwd":
		s.printf("%s\n", s.cwd)
		return false
	case "cd":
		s.runCd(args)
		return false
	}

	s.printResult(s.runCommand(ctx, cmd, args))
	return false
}

func (s *Session) runCd(args []string) {
	target := "/"
	if len(args) > 0 {
		target = s.resolve(args[0])
	}

	f, err := s.sh.fs()
	if err != nil {
		s.printf("cd: cannot access '%s': %s\n", target, errs.Message(err))
		return
	}
	fi, err := f.Stat(target)
	if err != nil {
		s.printf("cd: cannot access '%s': %s\n", target, errs.Message(err))
		return
	}
	if !fi.IsDir {
		s.printf("cd: not a directory: %s\n", target)
		return
	}
	s.cwd = target
}

//nolint:gocyclo // one arm per shell command
func (s *Session) runCommand(ctx context.Context, cmd string, args []string) Result {
	flags, paths := splitFlags(args)

	first := s.cwd
	if len(paths) > 0 {
		first = s.resolve(paths[0])
	}

	switch cmd {
	case "ls":
		return s.sh.Ls(first, LsOptions{
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
		return s.sh.Cat(first)
	case "touch":
		if len(paths) == 0 {
			return usageError(cmd, "touch <file>")
		}
		return s.sh.Touch(first)
	case "mkdir":
		if len(paths) == 0 {
			return usageError(cmd, "mkdir [-p] <dir>")
		}
		return s.sh.Mkdir(first, flags["p"])
	case "rm":
		if len(paths) == 0 {
			return usageError(cmd, "rm [-r] [-f] <path>")
		}
		return s.sh.Rm(ctx, first, RmOptions{
			Recursive: flags["r"],
			Force:     flags["f"],
		})
	case "cp":
		if len(paths) < 2 {
			return usageError(cmd, "cp [-r] [-n] <src> <dst>")
		}
		return s.sh.Cp(ctx, first, s.resolve(paths[1]), CpOptions{
			Recursive: flags["r"],
			NoClobber: flags["n"],
		})
	case "mv":
		if len(paths) < 2 {
			return usageError(cmd, "mv <src> <dst>")
		}
		return s.sh.Mv(first, s.resolve(paths[1]))
	case "df":
		return s.sh.Df(ctx, DfOptions{Human: flags["h"]})
	case "du":
		return s.sh.Du(ctx, first, DuOptions{
			Human:     flags["h"],
			Summarize: flags["s"],
		})
	case "stat":
		if len(paths) == 0 {
			return usageError(cmd, "stat <path>")
		}
		return s.sh.StatCmd(first)
	default:
		return Result{
			Err:    fmt.Errorf("unknown command %q: %w", cmd, errs.ErrInvalidArg),
			Output: fmt.Sprintf("%s: command not found", cmd),
		}
	}
}

func usageError(cmd, usage string) Result {
	return Result{
		Err:    fmt.Errorf("%s: missing operand: %w", cmd, errs.ErrInvalidArg),
		Output: fmt.Sprintf("usage: %s", usage),
	}
}

// splitFlags separates single-dash flag tokens from path arguments. Grouped
// flags like "-rf" expand to their letters.
func splitFlags(args []string) (map[string]bool, []string) {
	flags := make(map[string]bool)
	var paths []string
	for _, arg := range args {
		if strings.HasPrefix(arg, "-") && len(arg) > 1 {
			for _, c := range arg[1:] {
				flags[string(c)] = true
			}
			continue
		}
		paths = append(paths, arg)
	}
	return flags, paths
}

const helpText = `Commands:
  ls [-a] [-l] [-h] [-t] [-r] [path]   list directory contents
  cd [dir]                             change working directory
  pwd                                  print working directory
  cat <file>                           print file contents
  touch <file>                         create file or update timestamps
  mkdir [-p] <dir>                     create directory
  rm [-r] [-f] <path>                  remove file or directory
  cp [-r] [-n] <src> <dst>             copy file or directory
  mv <src> <dst>                       move or rename
  df [-h]                              show volume space usage
  du [-h] [-s] [path]                  show tree disk usage
  stat <path>                          show entry metadata
  help                                 show this help
  exit                                 leave the shell`
