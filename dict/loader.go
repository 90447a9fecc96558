package dict

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/tiglabs/tabledb/sqlparse"
	"github.com/tiglabs/tabledb/util/json"
)

var (
	ErrDictNotExists = errors.New("dictionary definition not found in any registered source")
	ErrDupDict       = errors.New("duplicated dictionary")
)

// Source resolves dictionary definitions out of an attached database. A
// database registers itself as a source once its tables are started, so a
// dictionary may reference sibling tables as data sources.
type Source interface {
	Name() string
	DictionaryDefinition(name string) (*sqlparse.Descriptor, bool)
}

// Dictionary is a registered dictionary. Registration is cheap: it only
// snapshots the definition, materialization happens elsewhere on demand.
type Dictionary struct {
	name   string
	source string
	desc   *sqlparse.Descriptor
	config []byte
}

func (d *Dictionary) Name() string { return d.name }

// SourceName returns the name of the source the definition was resolved
// from.
func (d *Dictionary) SourceName() string { return d.source }

func (d *Dictionary) Descriptor() *sqlparse.Descriptor { return d.desc }

// Config returns the canonical JSON snapshot of the definition taken at
// registration time.
func (d *Dictionary) Config() []byte { return d.config }

// Loader is the shared dictionary registry. Sources register under their
// database name; Attach resolves a dictionary definition across sources.
// Attach is not meant to run concurrently with itself.
type Loader struct {
	mu      sync.RWMutex
	sources map[string]Source
	dicts   map[string]*Dictionary
}

func NewLoader() *Loader {
	return &Loader{
		sources: make(map[string]Source),
		dicts:   make(map[string]*Dictionary),
	}
}

// RegisterSource adds or replaces a definition source under name.
func (l *Loader) RegisterSource(name string, src Source) {
	l.mu.Lock()
	l.sources[name] = src
	l.mu.Unlock()
}

func (l *Loader) DropSource(name string) {
	l.mu.Lock()
	delete(l.sources, name)
	l.mu.Unlock()
}

// Attach registers the named dictionary, resolving its definition through
// the registered sources.
func (l *Loader) Attach(name string) (*Dictionary, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.dicts[name]; ok {
		return nil, errors.Wrapf(ErrDupDict, "dictionary %q", name)
	}

	for srcName, src := range l.sources {
		desc, ok := src.DictionaryDefinition(name)
		if !ok {
			continue
		}
		config, err := json.Marshal(desc)
		if err != nil {
			return nil, errors.Wrapf(err, "fail to snapshot definition of dictionary %q", name)
		}
		d := &Dictionary{name: name, source: srcName, desc: desc, config: config}
		l.dicts[name] = d
		return d, nil
	}
	return nil, errors.Wrapf(ErrDictNotExists, "dictionary %q", name)
}

// Detach removes a registered dictionary.
func (l *Loader) Detach(name string) {
	l.mu.Lock()
	delete(l.dicts, name)
	l.mu.Unlock()
}

// Dictionary returns a registered dictionary by name.
func (l *Loader) Dictionary(name string) (*Dictionary, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	d, ok := l.dicts[name]
	return d, ok
}
