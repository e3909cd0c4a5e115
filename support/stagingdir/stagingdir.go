// Copyright 2026 The airgap Authors. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package stagingdir builds a set of files in a temporary directory and then
// moves them into place together.
//
// Files are only visible at their destination once the whole set has been
// built. If building fails, the staging directory is destroyed and the
// destination is left untouched.
package stagingdir

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
)

// D manages a staging directory.
//
// While D is active, it resides in a temporary location. Once finished, D
// can either be committed or destroyed. On commit, its contents are moved into
// their destination; on destroy, it is deleted along with all of its contents.
type D struct {
	// path is the path of the staging directory.
	path string
}

// New creates a new staging directory underneath of tempDir.
//
// The directory will be created with the specified prefix. To make Commit a
// sequence of renames, tempDir should be on the same filesystem as the
// destination.
func New(tempDir, prefix string) (*D, error) {
	stagingPath, err := os.MkdirTemp(tempDir, prefix)
	if err != nil {
		return nil, err
	}
	return &D{path: stagingPath}, nil
}

// Path builds a path relative to the staging directory from the provided
// components.
func (sd *D) Path(first string, components ...string) string {
	if sd.path == "" {
		panic("invalid")
	}

	// Common case: one component underneath of staging directory.
	if len(components) == 0 {
		return filepath.Join(sd.path, first)
	}

	comps := make([]string, 0, 2+len(components))
	comps = append(comps, sd.path)
	comps = append(comps, first)
	return filepath.Join(append(comps, components...)...)
}

// Destroy purges the staging directory and its contents.
func (sd *D) Destroy() error {
	if sd.path == "" {
		// There is nothing to destroy.
		return nil
	}

	if err := os.RemoveAll(sd.path); err != nil {
		return err
	}

	sd.path = "" // Destroyed.
	return nil
}

// Commit moves every entry in the staging directory into dest, and then
// removes the staging directory.
//
// Commit never replaces an existing entry: if any staged name already exists
// in dest, nothing is moved and an error is returned. Entries are moved in name
// order. Commit returns the names it moved.
func (sd *D) Commit(dest string) ([]string, error) {
	// If we've already been committed, this is an error.
	if sd.path == "" {
		return nil, errors.New("invalid staging directory")
	}

	entries, err := os.ReadDir(sd.path)
	if err != nil {
		return nil, errors.Wrap(err, "listing staging directory")
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	sort.Strings(names)

	for _, name := range names {
		dst := filepath.Join(dest, name)
		if _, err := os.Lstat(dst); err == nil {
			return nil, errors.Errorf("destination %q already exists", dst)
		} else if !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "checking destination %q", dst)
		}
	}

	for i, name := range names {
		src, dst := filepath.Join(sd.path, name), filepath.Join(dest, name)
		if err := os.Rename(src, dst); err != nil {
			return names[:i], errors.Wrapf(err, "moving staged file into place (%q => %q)", src, dst)
		}
	}

	if err := os.Remove(sd.path); err != nil {
		return names, errors.Wrap(err, "removing staging directory")
	}
	sd.path = "" // Path no longer exists, committed.
	return names, nil
}
