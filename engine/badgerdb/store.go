package badgerdb

import (
	"os"
	"path/filepath"

	"github.com/dgraph-io/badger"

	"github.com/tiglabs/tabledb/engine"
)

const EngineName = "BadgerDB"

func init() {
	engine.Register(EngineName, New)
}

// Store is a table backed by a badger directory under the database data
// directory. The directory is created on Startup, not on construction.
type Store struct {
	name string
	path string
	sync bool

	db *badger.DB
}

func New(cfg *engine.Config) (engine.Table, error) {
	if cfg == nil {
		return nil, os.ErrInvalid
	}
	if cfg.Name == "" || cfg.DataPath == "" {
		return nil, os.ErrInvalid
	}

	s := &Store{
		name: cfg.Name,
		path: filepath.Join(cfg.DataPath, cfg.Name+".badger"),
	}
	if cfg.Descriptor != nil {
		if v, ok := cfg.Descriptor.Setting("sync_writes"); ok && v == "1" {
			s.sync = true
		}
	}
	return s, nil
}

func (bs *Store) Name() string {
	return bs.name
}

func (bs *Store) EngineName() string {
	return EngineName
}

func (bs *Store) Startup() error {
	if err := os.MkdirAll(bs.path, 0755); err != nil {
		return err
	}

	opts := badger.DefaultOptions(bs.path)
	opts = opts.WithSyncWrites(bs.sync).WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return err
	}
	bs.db = db
	return nil
}

func (bs *Store) Shutdown() error {
	if bs.db == nil {
		return nil
	}
	err := bs.db.Close()
	bs.db = nil
	return err
}

func (bs *Store) Put(key, value []byte) error {
	if bs.db == nil {
		return engine.ErrNotStarted
	}
	return bs.db.Update(func(tx *badger.Txn) error {
		return tx.Set(key, value)
	})
}

func (bs *Store) Get(key []byte) (value []byte, err error) {
	if bs.db == nil {
		return nil, engine.ErrNotStarted
	}
	err = bs.db.View(func(tx *badger.Txn) error {
		item, err := tx.Get(key)
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	return
}

func (bs *Store) Delete(key []byte) error {
	if bs.db == nil {
		return engine.ErrNotStarted
	}
	return bs.db.Update(func(tx *badger.Txn) error {
		return tx.Delete(key)
	})
}
