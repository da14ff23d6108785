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

package fsops

import (
	"context"
	"fmt"
	"testing"

	"github.com/CardbayProject/cardbay-core/pkg/storage/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchMaxResultsBound(t *testing.T) {
	t.Parallel()
	f := newTestFS(t)

	require.NoError(t, f.Mkdir("/pool", true))
	for i := range 10 {
		p := fmt.Sprintf("/pool/file%02d.txt", i)
		require.NoError(t, f.WriteFile(p, []byte("x"), DefaultWriteOptions()))
	}

	results, err := f.Search(context.Background(), "/pool", "*", SearchOptions{
		Recursive:  true,
		MaxResults: 3,
	})
	require.NoError(t, err)
	assert.Len(t, results, 3)

	// zero means unlimited
	results, err = f.Search(context.Background(), "/pool", "*", SearchOptions{Recursive: true})
	require.NoError(t, err)
	assert.Len(t, results, 10)
}

func TestSearchRelativeNames(t *testing.T) {
	t.Parallel()
	f := newTestFS(t)

	require.NoError(t, f.Mkdir("/root/a/b", true))
	require.NoError(t, f.WriteFile("/root/target.txt", []byte("1"), DefaultWriteOptions()))
	require.NoError(t, f.WriteFile("/root/a/b/target.txt", []byte("2"), DefaultWriteOptions()))

	results, err := f.Search(context.Background(), "/root", "target.txt", SearchOptions{
		Recursive: true,
	})
	require.NoError(t, err)
	require.Len(t, results, 2)

	names := []string{results[0].Name, results[1].Name}
	assert.Contains(t, names, "target.txt")
	assert.Contains(t, names, "a/b/target.txt")
}

func TestSearchExactMatchOnly(t *testing.T) {
	t.Parallel()
	f := newTestFS(t)

	require.NoError(t, f.Mkdir("/d", true))
	require.NoError(t, f.WriteFile("/d/notes.txt", []byte("x"), DefaultWriteOptions()))
	require.NoError(t, f.WriteFile("/d/notes.txt.bak", []byte("x"), DefaultWriteOptions()))

	// no partial glob support: "notes" matches nothing
	results, err := f.Search(context.Background(), "/d", "notes", SearchOptions{Recursive: true})
	require.NoError(t, err)
	assert.Empty(t, results)

	results, err = f.Search(context.Background(), "/d", "notes.txt", SearchOptions{Recursive: true})
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestSearchCaseFolding(t *testing.T) {
	t.Parallel()
	f := newTestFS(t)

	require.NoError(t, f.Mkdir("/d", true))
	require.NoError(t, f.WriteFile("/d/README.md", []byte("x"), DefaultWriteOptions()))

	results, err := f.Search(context.Background(), "/d", "readme.md", SearchOptions{Recursive: true})
	require.NoError(t, err)
	assert.Len(t, results, 1)

	results, err = f.Search(context.Background(), "/d", "readme.md", SearchOptions{
		Recursive:     true,
		CaseSensitive: true,
	})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchDirectoryFilter(t *testing.T) {
	t.Parallel()
	f := newTestFS(t)

	require.NoError(t, f.Mkdir("/d/match", true))
	require.NoError(t, f.WriteFile("/d/match.txt", []byte("x"), DefaultWriteOptions()))

	results, err := f.Search(context.Background(), "/d", "match", SearchOptions{Recursive: true})
	require.NoError(t, err)
	assert.Empty(t, results)

	results, err = f.Search(context.Background(), "/d", "match", SearchOptions{
		Recursive:   true,
		IncludeDirs: true,
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].IsDir)
}

func TestSearchNonRecursiveStaysShallow(t *testing.T) {
	t.Parallel()
	f := newTestFS(t)

	require.NoError(t, f.Mkdir("/d/sub", true))
	require.NoError(t, f.WriteFile("/d/a.txt", []byte("x"), DefaultWriteOptions()))
	require.NoError(t, f.WriteFile("/d/sub/b.txt", []byte("x"), DefaultWriteOptions()))

	results, err := f.Search(context.Background(), "/d", "*", SearchOptions{})
	require.NoError(t, err)
	// a.txt only: sub is a dir (excluded) and b.txt is below the cutoff
	require.Len(t, results, 1)
	assert.Equal(t, "a.txt", results[0].Name)
}

func TestSearchRootValidation(t *testing.T) {
	t.Parallel()
	f := newTestFS(t)

	_, err := f.Search(context.Background(), "/ghost", "*", SearchOptions{})
	assert.ErrorIs(t, err, errs.ErrNotFound)

	require.NoError(t, f.WriteFile("/f", []byte("x"), DefaultWriteOptions()))
	_, err = f.Search(context.Background(), "/f", "*", SearchOptions{})
	assert.ErrorIs(t, err, errs.ErrInvalidArg)

	require.NoError(t, f.Mkdir("/d", true))
	_, err = f.Search(context.Background(), "/d", "", SearchOptions{})
	assert.ErrorIs(t, err, errs.ErrInvalidArg)
}
