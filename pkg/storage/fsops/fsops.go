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

// Package fsops implements file and directory operations over a mounted
// volume handle. Every call validates its inputs and returns taxonomy errors
// from the errs package; raw platform errors never cross this boundary
// unwrapped.
package fsops

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"time"

	"github.com/CardbayProject/cardbay-core/pkg/helpers"
	"github.com/CardbayProject/cardbay-core/pkg/storage/errs"
	"github.com/spf13/afero"
)

// FileInfo is an immutable snapshot of a single entry, produced by stat and
// list operations. Search results reuse it with Name holding the path
// relative to the traversal root.
type FileInfo struct {
	ModTime time.Time
	Name    string
	Size    int64
	Mode    fs.FileMode
	IsDir   bool
}

// WriteOptions control how WriteFile opens its target.
type WriteOptions struct {
	CreateIfMissing bool
	Truncate        bool
	Append          bool
}

// DefaultWriteOptions create the file if needed and truncate any existing
// content, matching what most callers mean by "write this file".
func DefaultWriteOptions() WriteOptions {
	return WriteOptions{CreateIfMissing: true, Truncate: true}
}

// FS wraps a volume handle. It holds no state of its own beyond the handle,
// so it is safe to construct one per call site.
type FS struct {
	vol afero.Fs
}

func New(vol afero.Fs) *FS {
	return &FS{vol: vol}
}

func (f *FS) stat(p string) (fs.FileInfo, error) {
	fi, err := f.vol.Stat(p)
	switch {
	case os.IsNotExist(err):
		return nil, fmt.Errorf("%q: %w", p, errs.ErrNotFound)
	case err != nil:
		return nil, fmt.Errorf("stat %q: %w", p, errs.ErrFail)
	}
	return fi, nil
}

// Exists reports whether a path names an existing entry.
func (f *FS) Exists(p string) (bool, error) {
	if err := helpers.ValidatePath(p); err != nil {
		return false, err
	}
	_, err := f.vol.Stat(helpers.NormalizePath(p))
	switch {
	case err == nil:
		return true, nil
	case os.IsNotExist(err):
		return false, nil
	default:
		return false, fmt.Errorf("stat %q: %w", p, errs.ErrFail)
	}
}

// Stat returns a snapshot of a single entry.
func (f *FS) Stat(p string) (FileInfo, error) {
	if err := helpers.ValidatePath(p); err != nil {
		return FileInfo{}, err
	}
	p = helpers.NormalizePath(p)
	fi, err := f.stat(p)
	if err != nil {
		return FileInfo{}, err
	}
	return snapshot(fi), nil
}

// ReadFile reads the whole file into memory.
func (f *FS) ReadFile(p string) ([]byte, error) {
	if err := helpers.ValidatePath(p); err != nil {
		return nil, err
	}
	p = helpers.NormalizePath(p)

	fi, err := f.stat(p)
	if err != nil {
		return nil, err
	}
	if fi.IsDir() {
		return nil, fmt.Errorf("%q is a directory: %w", p, errs.ErrInvalidArg)
	}

	data, err := afero.ReadFile(f.vol, p)
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", p, errs.ErrFail)
	}
	return data, nil
}

// WriteFile writes data according to opts. A partial write reports ErrFail.
func (f *FS) WriteFile(p string, data []byte, opts WriteOptions) error {
	if err := helpers.ValidatePath(p); err != nil {
		return err
	}
	p = helpers.NormalizePath(p)

	flags := os.O_WRONLY
	switch {
	case opts.Append:
		flags |= os.O_APPEND
	case opts.Truncate:
		flags |= os.O_TRUNC
	}
	if opts.CreateIfMissing {
		flags |= os.O_CREATE
	} else if _, err := f.stat(p); err != nil {
		return err
	}

	file, err := f.vol.OpenFile(p, flags, 0o644)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%q: %w", p, errs.ErrNotFound)
		}
		return fmt.Errorf("open %q: %w", p, errs.ErrFail)
	}

	n, err := file.Write(data)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil || n < len(data) {
		return fmt.Errorf("write %q (%d of %d bytes): %w", p, n, len(data), errs.ErrFail)
	}
	return nil
}

// AppendFile appends data, creating the file when absent.
func (f *FS) AppendFile(p string, data []byte) error {
	return f.WriteFile(p, data, WriteOptions{CreateIfMissing: true, Append: true})
}

// RemoveFile deletes a single file. Directories are rejected; use
// RemoveDirectory for those.
func (f *FS) RemoveFile(p string) error {
	if err := helpers.ValidatePath(p); err != nil {
		return err
	}
	p = helpers.NormalizePath(p)

	fi, err := f.stat(p)
	if err != nil {
		return err
	}
	if fi.IsDir() {
		return fmt.Errorf("%q is a directory: %w", p, errs.ErrInvalidArg)
	}
	if err := f.vol.Remove(p); err != nil {
		return fmt.Errorf("remove %q: %w", p, errs.ErrFail)
	}
	return nil
}

// Move renames src to dst on the same volume.
func (f *FS) Move(src, dst string) error {
	if err := helpers.ValidatePath(src); err != nil {
		return err
	}
	if err := helpers.ValidatePath(dst); err != nil {
		return err
	}
	src = helpers.NormalizePath(src)
	dst = helpers.NormalizePath(dst)

	if _, err := f.stat(src); err != nil {
		return err
	}
	if err := f.vol.Rename(src, dst); err != nil {
		return fmt.Errorf("move %q to %q: %w", src, dst, errs.ErrFail)
	}
	return nil
}

// CopyFile copies a single file. With overwrite false an existing
// destination is rejected.
func (f *FS) CopyFile(src, dst string, overwrite bool) error {
	if err := helpers.ValidatePath(src); err != nil {
		return err
	}
	if err := helpers.ValidatePath(dst); err != nil {
		return err
	}
	src = helpers.NormalizePath(src)
	dst = helpers.NormalizePath(dst)

	fi, err := f.stat(src)
	if err != nil {
		return err
	}
	if fi.IsDir() {
		return fmt.Errorf("%q is a directory: %w", src, errs.ErrInvalidArg)
	}

	if !overwrite {
		exists, existsErr := f.Exists(dst)
		if existsErr != nil {
			return existsErr
		}
		if exists {
			return fmt.Errorf("destination %q exists: %w", dst, errs.ErrInvalidArg)
		}
	}

	in, err := f.vol.Open(src)
	if err != nil {
		return fmt.Errorf("open %q: %w", src, errs.ErrFail)
	}
	defer func() { _ = in.Close() }()

	out, err := f.vol.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fi.Mode().Perm())
	if err != nil {
		return fmt.Errorf("create %q: %w", dst, errs.ErrFail)
	}

	_, err = io.Copy(out, in)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("copy %q to %q: %w", src, dst, errs.ErrFail)
	}
	return nil
}

// Mkdir creates a directory. With parents it behaves like mkdir -p and
// tolerates an existing directory.
func (f *FS) Mkdir(p string, parents bool) error {
	if err := helpers.ValidatePath(p); err != nil {
		return err
	}
	p = helpers.NormalizePath(p)

	if parents {
		if err := f.vol.MkdirAll(p, 0o755); err != nil {
			return fmt.Errorf("mkdir %q: %w", p, errs.ErrFail)
		}
		return nil
	}

	if exists, err := f.Exists(p); err != nil {
		return err
	} else if exists {
		return fmt.Errorf("%q already exists: %w", p, errs.ErrInvalidArg)
	}

	parent := helpers.PathDirectory(p)
	if parent != "." {
		if _, err := f.stat(parent); err != nil {
			return err
		}
	}
	if err := f.vol.Mkdir(p, 0o755); err != nil {
		return fmt.Errorf("mkdir %q: %w", p, errs.ErrFail)
	}
	return nil
}

// Touch creates an empty file or refreshes the timestamps of an existing
// one.
func (f *FS) Touch(p string) error {
	if err := helpers.ValidatePath(p); err != nil {
		return err
	}
	p = helpers.NormalizePath(p)

	exists, err := f.Exists(p)
	if err != nil {
		return err
	}
	if exists {
		now := time.Now()
		if err := f.vol.Chtimes(p, now, now); err != nil {
			return fmt.Errorf("touch %q: %w", p, errs.ErrFail)
		}
		return nil
	}
	return f.WriteFile(p, nil, DefaultWriteOptions())
}

// List returns the entries of a directory. A file target degenerates to a
// one-entry listing of itself.
func (f *FS) List(p string) ([]FileInfo, error) {
	if err := helpers.ValidatePath(p); err != nil {
		return nil, err
	}
	p = helpers.NormalizePath(p)

	fi, err := f.stat(p)
	if err != nil {
		return nil, err
	}
	if !fi.IsDir() {
		return []FileInfo{snapshot(fi)}, nil
	}

	entries, err := afero.ReadDir(f.vol, p)
	if err != nil {
		return nil, fmt.Errorf("list %q: %w", p, errs.ErrFail)
	}
	infos := make([]FileInfo, 0, len(entries))
	for _, e := range entries {
		infos = append(infos, snapshot(e))
	}
	return infos, nil
}

func snapshot(fi fs.FileInfo) FileInfo {
	return FileInfo{
		Name:    fi.Name(),
		Size:    fi.Size(),
		ModTime: fi.ModTime(),
		IsDir:   fi.IsDir(),
		Mode:    fi.Mode(),
	}
}

func join(dir, name string) string {
	if dir == "/" {
		return "/" + name
	}
	return path.Join(dir, name)
}
