package catalog

import (
	"github.com/pkg/errors"

	"github.com/tiglabs/tabledb/sqlparse"
)

// TablePatch is the field-level replacement applied by AlterTable.
// Columns, Indices and Constraints always replace the existing sets
// wholesale, even when empty. The remaining fields replace only when
// supplied (non-zero).
type TablePatch struct {
	Columns     []sqlparse.Column
	Indices     []sqlparse.Index
	Constraints []sqlparse.Constraint

	OrderBy    string
	PrimaryKey string
	TTL        string
	Settings   []sqlparse.Setting
}

// AlterTable reads the table's persisted definition, replaces the patched
// parts and writes the result back through the store's atomic replace, so a
// crash at any instant leaves the definition file either fully old or fully
// new.
//
// AlterTable does not lock the table against concurrent alters; the
// exclusive temp-file creation inside the store is the only built-in race
// detector and external callers must serialize.
func (db *Database) AlterTable(name string, patch TablePatch) error {
	// The structural sets replace wholesale, so a patch without columns
	// would persist a definition the parser rejects on the next bootstrap.
	if len(patch.Columns) == 0 {
		return errors.Wrapf(ErrEmptyColumns, "cannot alter table %q", name)
	}

	text, err := db.store.Read(name)
	if err != nil {
		return err
	}

	desc, err := sqlparse.Parse(text)
	if err != nil {
		return errors.Wrapf(err, "definition of table %q", name)
	}
	if desc.Kind != sqlparse.KindTable {
		return errors.Wrapf(ErrTableNotExists, "%q is a %s", name, desc.Kind)
	}

	desc.Columns = patch.Columns
	desc.Indices = patch.Indices
	desc.Constraints = patch.Constraints

	// ORDER BY may change, but cannot appear: it is a required
	// construction-time property of ordered engines.
	if patch.OrderBy != "" && desc.OrderBy != "" {
		desc.OrderBy = patch.OrderBy
	}
	if patch.PrimaryKey != "" {
		desc.PrimaryKey = patch.PrimaryKey
	}
	if patch.TTL != "" {
		desc.TTL = patch.TTL
	}
	if patch.Settings != nil {
		desc.Settings = patch.Settings
	}

	return db.store.AtomicReplace(name, sqlparse.Format(desc), db.durability())
}
