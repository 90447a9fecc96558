package sqlparse

// ObjectKind tags a parsed definition as a table or a dictionary.
type ObjectKind int

const (
	KindTable ObjectKind = iota
	KindDictionary
)

func (k ObjectKind) String() string {
	if k == KindDictionary {
		return "dictionary"
	}
	return "table"
}

type Column struct {
	Name string
	Type string
}

// Index is a secondary index declaration: INDEX <name> <expr>.
type Index struct {
	Name string
	Expr string
}

// Constraint is a row constraint declaration: CONSTRAINT <name> CHECK <expr>.
type Constraint struct {
	Name string
	Expr string
}

type Setting struct {
	Key   string
	Value string
}

// Descriptor is the structured form of one persisted object definition.
// It is produced by Parse and rendered back by Format; the only mutation
// performed on it is field-level replacement during an alter.
type Descriptor struct {
	Kind        ObjectKind
	Name        string
	Columns     []Column
	Indices     []Index
	Constraints []Constraint

	// table definitions only
	Engine     string
	OrderBy    string
	PrimaryKey string
	TTL        string
	Settings   []Setting

	// dictionary definitions only
	Source string
}

// Setting returns the value of a named engine setting.
func (d *Descriptor) Setting(key string) (string, bool) {
	for _, s := range d.Settings {
		if s.Key == key {
			return s.Value, true
		}
	}
	return "", false
}
