package boltdb

import (
	"os"
	"path/filepath"

	"github.com/boltdb/bolt"

	"github.com/tiglabs/tabledb/engine"
)

const EngineName = "BoltDB"

var defaultBucket = []byte("tabledb")

func init() {
	engine.Register(EngineName, New)
}

// Store is a table backed by a single bolt file under the database data
// directory. The file is created on Startup, not on construction.
type Store struct {
	name   string
	path   string
	noSync bool

	db *bolt.DB
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
		path: filepath.Join(cfg.DataPath, cfg.Name+".bolt"),
	}
	if cfg.Descriptor != nil {
		if v, ok := cfg.Descriptor.Setting("no_sync"); ok && v == "1" {
			s.noSync = true
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
	db, err := bolt.Open(bs.path, 0600, nil)
	if err != nil {
		return err
	}
	db.NoSync = bs.noSync

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(defaultBucket)
		return err
	})
	if err != nil {
		db.Close()
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
	return bs.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(defaultBucket).Put(key, value)
	})
}

func (bs *Store) Get(key []byte) (value []byte, err error) {
	if bs.db == nil {
		return nil, engine.ErrNotStarted
	}
	err = bs.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(defaultBucket).Get(key); v != nil {
			value = cloneBytes(v)
		}
		return nil
	})
	return
}

func (bs *Store) Delete(key []byte) error {
	if bs.db == nil {
		return engine.ErrNotStarted
	}
	return bs.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(defaultBucket).Delete(key)
	})
}

func cloneBytes(b []byte) []byte {
	return append([]byte(nil), b...)
}
