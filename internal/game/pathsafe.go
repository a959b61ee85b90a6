// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ArcadeHub Contributors

package game

import (
	"os"
	"path/filepath"
	"strings"
)

// ValidateID rejects ids that could name anything other than a direct child
// of the games root. It looks only at the string and never touches disk.
func ValidateID(id string) error {
	switch {
	case id == "":
		return errorf(CodeValidation, id).New("game id is empty")
	case strings.Contains(id, ".."):
		return errorf(CodeValidation, id).New("game id contains '..'")
	case strings.ContainsAny(id, `/\`) || strings.ContainsRune(id, os.PathSeparator):
		return errorf(CodeValidation, id).New("game id contains a path separator")
	case strings.ContainsRune(id, 0):
		return errorf(CodeValidation, id).New("game id contains a NUL byte")
	}
	return nil
}

// ResolveEntry returns the canonical path of <root>/<id>/<entry> after
// checking that it resolves strictly inside the canonical root. Symlinks are
// resolved on both sides, so a link that escapes the root is rejected.
func ResolveEntry(root, id, entry string) (string, error) {
	if err := ValidateID(id); err != nil {
		return "", err
	}

	canonRoot, err := canonical(root)
	if err != nil {
		return "", errorf(CodeValidation, id).With("root", root).Hint("games root cannot be resolved").Wrap(err)
	}

	entryPath := filepath.Join(root, id, entry)
	canonEntry, err := canonical(entryPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errorf(CodeLoad, id).With("path", entryPath).Hint("entry file not found").Wrap(err)
		}
		return "", errorf(CodeValidation, id).With("path", entryPath).Hint("entry path cannot be resolved").Wrap(err)
	}

	if !within(canonRoot, canonEntry) {
		return "", errorf(CodeValidation, id).
			With("root", canonRoot).
			With("path", canonEntry).
			Errorf("entry %s resolves outside the games directory", entryPath)
	}
	return canonEntry, nil
}

func canonical(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}

// within reports whether path is a strict descendant of root. Both must be
// canonical.
func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	if rel == "." || filepath.IsAbs(rel) {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
