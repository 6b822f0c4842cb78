// Package archive stores the rendered documents of each lead in a per-lead folder.
package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"
)

// Archiver uploads a set of named files into the folder identified by folderKey.
// Uploading the same key twice reuses the folder and replaces files of the same name.
type Archiver interface {
	Upload(ctx context.Context, folderKey string, files map[string][]byte) error
}

// Error represents an archival failure for one folder
type Error struct {
	Folder  string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("archive %s: %s: %v", e.Folder, e.Message, e.Cause)
	}
	return fmt.Sprintf("archive %s: %s", e.Folder, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// FolderKey derives the folder name of a lead from its company and position,
// with every non-alphanumeric character removed, e.g. "Acme, Inc." + "Sr. Engineer" -> "AcmeInc_SrEngineer".
func FolderKey(company, position string) string {
	return stripNonAlnum(company) + "_" + stripNonAlnum(position)
}

func stripNonAlnum(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
}

// sortedNames returns file names in a stable order so uploads are deterministic.
func sortedNames(files map[string][]byte) []string {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Local writes folders under a directory on disk.
type Local struct {
	root string
}

// NewLocal creates a local archiver rooted at dir.
func NewLocal(dir string) *Local {
	return &Local{root: dir}
}

// Upload writes every file into root/folderKey, replacing existing files.
func (a *Local) Upload(ctx context.Context, folderKey string, files map[string][]byte) error {
	if folderKey == "" || folderKey != filepath.Base(folderKey) {
		return &Error{Folder: folderKey, Message: "invalid folder key"}
	}

	dir := filepath.Join(a.root, folderKey)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &Error{Folder: folderKey, Message: "failed to create folder", Cause: err}
	}

	for _, name := range sortedNames(files) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if name != filepath.Base(name) {
			return &Error{Folder: folderKey, Message: fmt.Sprintf("invalid file name %q", name)}
		}
		if err := os.WriteFile(filepath.Join(dir, name), files[name], 0o644); err != nil {
			return &Error{Folder: folderKey, Message: fmt.Sprintf("failed to write %s", name), Cause: err}
		}
	}
	return nil
}
