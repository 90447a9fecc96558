package catalog

import (
	"fmt"

	"github.com/pkg/errors"
)

// catalog global error definitions
var (
	ErrDupTable       = errors.New("duplicated table")
	ErrTableNotExists = errors.New("table not exists")
	ErrDictNotExists  = errors.New("dictionary not exists")
	ErrEmptyColumns   = errors.New("empty list of columns")
)

// AttachTableError wraps a table construction failure. It retains the
// definition text the attach was built from: diagnosing a broken catalog
// requires seeing exactly what was being attached.
type AttachTableError struct {
	Name       string
	Definition string
	Cause      error
}

func (e *AttachTableError) Error() string {
	return fmt.Sprintf("cannot attach table '%s' from definition %s. Error: %v", e.Name, e.Definition, e.Cause)
}

func (e *AttachTableError) Unwrap() error { return e.Cause }

// AttachDictionaryError wraps a dictionary registration failure with the
// same retention contract as AttachTableError.
type AttachDictionaryError struct {
	Name       string
	Definition string
	Cause      error
}

func (e *AttachDictionaryError) Error() string {
	return fmt.Sprintf("cannot create dictionary '%s' from definition %s. Error: %v", e.Name, e.Definition, e.Cause)
}

func (e *AttachDictionaryError) Unwrap() error { return e.Cause }
