package catalog

import (
	"os"
	"sort"
	"sync"

	"github.com/pkg/errors"

	"github.com/tiglabs/tabledb/dict"
	"github.com/tiglabs/tabledb/engine"
	"github.com/tiglabs/tabledb/metastore"
	"github.com/tiglabs/tabledb/sqlparse"
)

// Context carries per-session knobs that flow through attach and startup.
type Context struct {
	ForceRestoreData bool
}

// Options configure one Database instance.
type Options struct {
	MetadataPath string
	DataPath     string

	// MaxPoolSize bounds the bootstrap worker pool; 0 selects the host cpu
	// count.
	MaxPoolSize int

	// FsyncMetadata forces definition writes durably to stable storage
	// before the atomic rename.
	FsyncMetadata bool

	// Dictionaries is the shared dictionary registry. A fresh one is
	// created when left nil.
	Dictionaries *dict.Loader

	// OnProgress overrides the default log-based progress sink.
	OnProgress func(stage string, processed, total int)
}

// Database is one catalog instance: the in-memory name to object map built
// from the metadata directory. The map is the only source of runtime truth
// and the metadata store is the only source of durable truth; bootstrap
// always rebuilds the map from the store, never the reverse, except through
// the alter write path.
type Database struct {
	name     string
	dataPath string
	store    *metastore.Store
	loader   *dict.Loader
	opts     Options

	mu       sync.RWMutex
	tables   map[string]engine.Table
	dicts    map[string]*dict.Dictionary
	dictDefs map[string]*sqlparse.Descriptor
}

// Open creates a Database over its metadata and data directories. Directory
// creation is idempotent. The returned catalog is empty until
// LoadStoredObjects populates it.
func Open(name string, opts Options) (*Database, error) {
	if name == "" || opts.MetadataPath == "" || opts.DataPath == "" {
		return nil, os.ErrInvalid
	}

	store, err := metastore.NewStore(opts.MetadataPath)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(opts.DataPath, 0755); err != nil {
		return nil, errors.Wrapf(err, "fail to create data directory %s", opts.DataPath)
	}

	loader := opts.Dictionaries
	if loader == nil {
		loader = dict.NewLoader()
	}

	return &Database{
		name:     name,
		dataPath: opts.DataPath,
		store:    store,
		loader:   loader,
		opts:     opts,
		tables:   make(map[string]engine.Table),
		dicts:    make(map[string]*dict.Dictionary),
		dictDefs: make(map[string]*sqlparse.Descriptor),
	}, nil
}

func (db *Database) Name() string {
	return db.name
}

func (db *Database) MetadataPath() string {
	return db.store.Dir()
}

func (db *Database) DataPath() string {
	return db.dataPath
}

// Table returns an attached table by name.
func (db *Database) Table(name string) (engine.Table, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	t, ok := db.tables[name]
	return t, ok
}

// Tables returns every attached table sorted by name.
func (db *Database) Tables() []engine.Table {
	db.mu.RLock()
	names := make([]string, 0, len(db.tables))
	for name := range db.tables {
		names = append(names, name)
	}
	db.mu.RUnlock()
	sort.Strings(names)

	out := make([]engine.Table, 0, len(names))
	db.mu.RLock()
	defer db.mu.RUnlock()
	for _, name := range names {
		if t, ok := db.tables[name]; ok {
			out = append(out, t)
		}
	}
	return out
}

// Dictionary returns an attached dictionary by name.
func (db *Database) Dictionary(name string) (*dict.Dictionary, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	d, ok := db.dicts[name]
	return d, ok
}

// DictionaryDefinition implements dict.Source: it resolves dictionary
// definitions discovered in this database's metadata.
func (db *Database) DictionaryDefinition(name string) (*sqlparse.Descriptor, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	desc, ok := db.dictDefs[name]
	return desc, ok
}

func (db *Database) attachEntry(name string, t engine.Table) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.tables[name]; ok {
		return errors.Wrapf(ErrDupTable, "table %q", name)
	}
	db.tables[name] = t
	return nil
}

// DetachTable removes a table from the catalog and returns its handle. The
// definition file and the table data stay on disk.
func (db *Database) DetachTable(name string) (engine.Table, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	t, ok := db.tables[name]
	if !ok {
		return nil, errors.Wrapf(ErrTableNotExists, "table %q", name)
	}
	delete(db.tables, name)
	return t, nil
}

// DropTable detaches a table, shuts its engine down and removes the
// definition file.
func (db *Database) DropTable(name string) error {
	t, err := db.DetachTable(name)
	if err != nil {
		return err
	}
	if err := t.Shutdown(); err != nil {
		return errors.Wrapf(err, "fail to shut down table %q", name)
	}
	return db.store.Remove(name)
}

// DetachDictionary removes a dictionary from the catalog and the shared
// registry. The loader call happens outside db.mu: the loader resolves
// definitions through this database under its own lock, so holding both at
// once here would invert the lock order of Loader.Attach.
func (db *Database) DetachDictionary(name string) error {
	db.mu.Lock()
	if _, ok := db.dicts[name]; !ok {
		db.mu.Unlock()
		return errors.Wrapf(ErrDictNotExists, "dictionary %q", name)
	}
	delete(db.dicts, name)
	delete(db.dictDefs, name)
	db.mu.Unlock()

	db.loader.Detach(name)
	return nil
}

func (db *Database) durability() metastore.Durability {
	if db.opts.FsyncMetadata {
		return metastore.ForceSync
	}
	return metastore.Default
}
