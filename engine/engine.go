package engine

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/tiglabs/tabledb/sqlparse"
)

var (
	ErrUnknownEngine = errors.New("unknown storage engine")

	// ErrNotStarted is returned by data operations on a table whose Startup
	// has not completed.
	ErrNotStarted = errors.New("table is not started up")
)

// Table is a live storage engine instance attached to a catalog.
// Construction only records configuration and never touches disk; Startup
// opens the underlying resources and may resolve sibling tables by name,
// which is only safe once the whole catalog is structurally attached.
type Table interface {
	Name() string
	EngineName() string

	Startup() error
	Shutdown() error

	Put(key, value []byte) error
	Get(key []byte) ([]byte, error)
	Delete(key []byte) error
}

// Config carries everything a builder needs to construct a table.
type Config struct {
	Name       string
	DataPath   string
	Descriptor *sqlparse.Descriptor

	// ForceRestoreData tells engines to skip sanity checks that would
	// refuse to open data left behind by an unclean shutdown.
	ForceRestoreData bool
}

type Builder func(cfg *Config) (Table, error)

var (
	factoryMu sync.RWMutex
	factory   = make(map[string]Builder)
)

// Register adds an engine builder under its engine name. Builders register
// from init, a duplicate name is a programming error.
func Register(name string, b Builder) {
	factoryMu.Lock()
	defer factoryMu.Unlock()

	if _, ok := factory[name]; ok {
		panic("engine: duplicated builder registration: " + name)
	}
	factory[name] = b
}

// Build constructs a table through the registered builder for name.
func Build(name string, cfg *Config) (Table, error) {
	factoryMu.RLock()
	b, ok := factory[name]
	factoryMu.RUnlock()

	if !ok {
		return nil, errors.Wrapf(ErrUnknownEngine, "engine %q", name)
	}
	return b(cfg)
}
