package metastore

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

const (
	definitionSuffix = ".sql"
	tmpSuffix        = ".tmp"

	definitionFileMode = 0644
	storeDirMode       = 0755
)

// Durability selects how hard AtomicReplace pushes the new definition to
// stable storage before the rename.
type Durability int

const (
	Default Durability = iota
	ForceSync
)

var (
	// ErrConcurrentMutation is returned when the temp file for a definition
	// already exists, which means another alter on the same object is in
	// flight. The caller must serialize and retry.
	ErrConcurrentMutation = errors.New("definition is being altered concurrently")
)

// RenameError reports a failed atomic replace. The original definition file
// is guaranteed intact and the temp file has been removed.
type RenameError struct {
	Path string
	Err  error
}

func (e *RenameError) Error() string {
	return fmt.Sprintf("fail to rename temp definition over %s: %v", e.Path, e.Err)
}

func (e *RenameError) Unwrap() error { return e.Err }

// Definition is one persisted object definition.
type Definition struct {
	Name     string
	FileName string
	Text     string
}

// Store keeps one definition file per catalog object under a single
// metadata directory. File names are the escaped object name plus ".sql".
type Store struct {
	dir string
}

func NewStore(dir string) (*Store, error) {
	if dir == "" {
		return nil, os.ErrInvalid
	}
	if err := os.MkdirAll(dir, storeDirMode); err != nil {
		return nil, errors.Wrapf(err, "fail to create metadata directory %s", dir)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, EscapeForFileName(name)+definitionSuffix)
}

// ListDefinitions reads every definition file in the metadata directory and
// returns them sorted by file name. The sort makes bootstrap deterministic
// regardless of the order the filesystem enumerates entries in.
func (s *Store) ListDefinitions() ([]Definition, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, errors.Wrapf(err, "fail to list metadata directory %s", s.dir)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), definitionSuffix) {
			continue
		}
		files = append(files, e.Name())
	}
	sort.Strings(files)

	defs := make([]Definition, 0, len(files))
	for _, f := range files {
		data, err := os.ReadFile(filepath.Join(s.dir, f))
		if err != nil {
			return nil, errors.Wrapf(err, "fail to read definition file %s", f)
		}
		defs = append(defs, Definition{
			Name:     UnescapeForFileName(strings.TrimSuffix(f, definitionSuffix)),
			FileName: f,
			Text:     string(data),
		})
	}
	return defs, nil
}

// Read returns the current definition text of one object.
func (s *Store) Read(name string) (string, error) {
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		return "", errors.Wrapf(err, "fail to read definition of %s", name)
	}
	return string(data), nil
}

// Exists reports whether a definition file is present for the object.
func (s *Store) Exists(name string) bool {
	_, err := os.Stat(s.path(name))
	return err == nil
}

// AtomicReplace writes a new definition for name. The text goes to a
// sibling temp file created exclusively, optionally synced, then renamed
// over the target. A reader observes either the old or the new content,
// never a partial write; on any failure the original file is untouched and
// the temp file is removed.
func (s *Store) AtomicReplace(name, text string, d Durability) error {
	target := s.path(name)
	tmp := target + tmpSuffix

	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, definitionFileMode)
	if err != nil {
		if os.IsExist(err) {
			return errors.Wrapf(ErrConcurrentMutation, "temp definition %s already exists", tmp)
		}
		return errors.Wrapf(err, "fail to create temp definition for %s", name)
	}

	if _, err = f.WriteString(text); err == nil && d == ForceSync {
		err = f.Sync()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp)
		return errors.Wrapf(err, "fail to write temp definition for %s", name)
	}

	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return &RenameError{Path: target, Err: err}
	}
	return nil
}

// Remove deletes the definition file of one object.
func (s *Store) Remove(name string) error {
	if err := os.Remove(s.path(name)); err != nil {
		return errors.Wrapf(err, "fail to remove definition of %s", name)
	}
	return nil
}
