// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ArcadeHub Contributors

package score

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/samber/oops"
)

// Compile-time interface check.
var _ Backend = (*JSONFile)(nil)

// JSONFile stores the document as an indented JSON file. Saves write a
// sibling temporary file, fsync it, and rename it over the target.
type JSONFile struct {
	path string
}

// NewJSONFile creates a backend for the file at path.
func NewJSONFile(path string) *JSONFile {
	return &JSONFile{path: path}
}

// Path returns the score file path.
func (f *JSONFile) Path() string {
	return f.path
}

// Load reads and validates the score file. A missing file yields nil.
func (f *JSONFile) Load(_ context.Context) (*Document, error) {
	data, err := os.ReadFile(filepath.Clean(f.path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, persistErr(f.path).Hint("failed to read score file").Wrap(err)
	}

	if err := ValidateSchema(data); err != nil {
		return nil, persistErr(f.path).Hint("score file does not match schema").Wrap(err)
	}
	doc, err := ParseDocument(data)
	if err != nil {
		return nil, persistErr(f.path).Hint("score file is corrupt").Wrap(err)
	}
	return doc, nil
}

// Save atomically replaces the score file with doc.
func (f *JSONFile) Save(_ context.Context, doc *Document) error {
	raw, err := doc.MarshalJSON()
	if err != nil {
		return persistErr(f.path).Hint("failed to encode scores").Wrap(err)
	}
	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "  "); err != nil {
		return persistErr(f.path).Hint("failed to encode scores").Wrap(err)
	}
	out.WriteByte('\n')

	if err := WriteFileAtomic(f.path, out.Bytes(), 0o600); err != nil {
		return persistErr(f.path).Wrap(err)
	}
	return nil
}

// Close implements Backend.
func (f *JSONFile) Close() error {
	return nil
}

// WriteFileAtomic writes data to a temporary file next to path, flushes it
// to stable storage, and renames it over path. The parent directory is
// created if needed.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}

	// The rename is durable only once the directory entry is flushed.
	if d, derr := os.Open(dir); derr == nil {
		_ = d.Sync()
		_ = d.Close()
	}
	return nil
}

func persistErr(path string) oops.OopsErrorBuilder {
	return oops.In("score").Code(CodePersistence).With("path", path)
}
