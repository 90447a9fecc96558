package memdb

import (
	"bytes"
	"os"
	"sync"

	"github.com/google/btree"
	"github.com/pkg/errors"

	"github.com/tiglabs/tabledb/engine"
)

const EngineName = "Memory"

const btreeDegree = 32

// ErrNoOrderingKey rejects a Memory table declared without ORDER BY. The
// ordering key is a construction-time property of this engine and cannot be
// added later through an alter.
var ErrNoOrderingKey = errors.New("Memory engine requires an ORDER BY key")

func init() {
	engine.Register(EngineName, New)
}

type item struct {
	key   []byte
	value []byte
}

func (it item) Less(other btree.Item) bool {
	return bytes.Compare(it.key, other.(item).key) < 0
}

// Store is an in-memory ordered table. All content is lost on shutdown.
type Store struct {
	name string

	mu   sync.RWMutex
	tree *btree.BTree
}

func New(cfg *engine.Config) (engine.Table, error) {
	if cfg == nil || cfg.Name == "" {
		return nil, os.ErrInvalid
	}
	if cfg.Descriptor == nil || cfg.Descriptor.OrderBy == "" {
		return nil, ErrNoOrderingKey
	}
	return &Store{name: cfg.Name}, nil
}

func (ms *Store) Name() string {
	return ms.name
}

func (ms *Store) EngineName() string {
	return EngineName
}

func (ms *Store) Startup() error {
	ms.mu.Lock()
	ms.tree = btree.New(btreeDegree)
	ms.mu.Unlock()
	return nil
}

func (ms *Store) Shutdown() error {
	ms.mu.Lock()
	ms.tree = nil
	ms.mu.Unlock()
	return nil
}

func (ms *Store) Put(key, value []byte) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if ms.tree == nil {
		return engine.ErrNotStarted
	}
	ms.tree.ReplaceOrInsert(item{key: cloneBytes(key), value: cloneBytes(value)})
	return nil
}

func (ms *Store) Get(key []byte) ([]byte, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	if ms.tree == nil {
		return nil, engine.ErrNotStarted
	}
	if it := ms.tree.Get(item{key: key}); it != nil {
		return cloneBytes(it.(item).value), nil
	}
	return nil, nil
}

func (ms *Store) Delete(key []byte) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if ms.tree == nil {
		return engine.ErrNotStarted
	}
	ms.tree.Delete(item{key: key})
	return nil
}

func cloneBytes(b []byte) []byte {
	return append([]byte(nil), b...)
}
