package catalog

import (
	"github.com/tiglabs/tabledb/engine"
	"github.com/tiglabs/tabledb/sqlparse"
)

// AttachTable constructs a live table from a parsed definition and registers
// it under its name. definition is the original text, retained in the error
// on failure. The descriptor must carry the table tag; calling with a
// dictionary definition is a contract violation.
func (db *Database) AttachTable(desc *sqlparse.Descriptor, definition string, ctx *Context) (engine.Table, error) {
	if desc.Kind != sqlparse.KindTable {
		panic("catalog: AttachTable called with a dictionary definition")
	}

	cfg := &engine.Config{
		Name:       desc.Name,
		DataPath:   db.dataPath,
		Descriptor: desc,
	}
	if ctx != nil {
		cfg.ForceRestoreData = ctx.ForceRestoreData
	}

	t, err := engine.Build(desc.Engine, cfg)
	if err == nil {
		err = db.attachEntry(desc.Name, t)
	}
	if err != nil {
		return nil, &AttachTableError{Name: desc.Name, Definition: definition, Cause: err}
	}
	return t, nil
}

// AttachDictionary registers a dictionary with the shared loader. The
// definition becomes resolvable through this database first, so the loader
// can pick it up as a source. The descriptor must carry the dictionary tag.
func (db *Database) AttachDictionary(desc *sqlparse.Descriptor, definition string, ctx *Context) error {
	if desc.Kind != sqlparse.KindDictionary {
		panic("catalog: AttachDictionary called with a table definition")
	}

	db.mu.Lock()
	db.dictDefs[desc.Name] = desc
	db.mu.Unlock()

	d, err := db.loader.Attach(desc.Name)
	if err != nil {
		db.mu.Lock()
		delete(db.dictDefs, desc.Name)
		db.mu.Unlock()
		return &AttachDictionaryError{Name: desc.Name, Definition: definition, Cause: err}
	}

	db.mu.Lock()
	db.dicts[desc.Name] = d
	db.mu.Unlock()
	return nil
}
