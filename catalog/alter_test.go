package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"

	"github.com/tiglabs/tabledb/metastore"
	"github.com/tiglabs/tabledb/sqlparse"
)

const alterBaseDef = `ATTACH TABLE events
(
    id UInt64,
    ts DateTime
)
ENGINE = Test
ORDER BY (id)
PRIMARY KEY (id)
TTL ts + 86400
SETTINGS no_sync = 1
`

func readBack(t *testing.T, db *Database, name string) *sqlparse.Descriptor {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(db.MetadataPath(), name+".sql"))
	if err != nil {
		t.Fatal(err)
	}
	d, err := sqlparse.Parse(string(data))
	if err != nil {
		t.Fatalf("persisted definition does not parse: %v", err)
	}
	return d
}

func TestAlterReplacesStructure(t *testing.T) {
	db := openTestDB(t, Options{})
	writeDef(t, db, "events.sql", alterBaseDef)

	err := db.AlterTable("events", TablePatch{
		Columns: []sqlparse.Column{
			{Name: "id", Type: "UInt64"},
			{Name: "ts", Type: "DateTime"},
			{Name: "payload", Type: "String"},
		},
		Indices:     []sqlparse.Index{{Name: "ts_idx", Expr: "ts"}},
		Constraints: []sqlparse.Constraint{{Name: "positive", Expr: "id > 0"}},
	})
	if err != nil {
		t.Fatal(err)
	}

	d := readBack(t, db, "events")
	if len(d.Columns) != 3 || d.Columns[2].Name != "payload" {
		t.Fatalf("columns = %+v", d.Columns)
	}
	if len(d.Indices) != 1 || d.Indices[0].Name != "ts_idx" {
		t.Fatalf("indices = %+v", d.Indices)
	}
	if len(d.Constraints) != 1 || d.Constraints[0].Name != "positive" {
		t.Fatalf("constraints = %+v", d.Constraints)
	}

	// Unpatched clauses survive the rewrite.
	if d.Engine != "Test" || d.OrderBy != "(id)" || d.PrimaryKey != "(id)" || d.TTL != "ts + 86400" {
		t.Fatalf("clauses changed: %+v", d)
	}
	if len(d.Settings) != 1 || d.Settings[0].Key != "no_sync" {
		t.Fatalf("settings = %+v", d.Settings)
	}
}

func TestAlterDropsOmittedStructure(t *testing.T) {
	db := openTestDB(t, Options{})
	writeDef(t, db, "events.sql", alterBaseDef)

	// The structural sets replace wholesale: a patch without indices or
	// constraints clears them.
	err := db.AlterTable("events", TablePatch{
		Columns: []sqlparse.Column{{Name: "id", Type: "UInt64"}},
	})
	if err != nil {
		t.Fatal(err)
	}

	d := readBack(t, db, "events")
	if len(d.Columns) != 1 || len(d.Indices) != 0 || len(d.Constraints) != 0 {
		t.Fatalf("descriptor = %+v", d)
	}
}

func TestAlterOrderingKey(t *testing.T) {
	db := openTestDB(t, Options{})
	writeDef(t, db, "ordered.sql", alterBaseDef)
	writeDef(t, db, "plain.sql", "ATTACH TABLE plain (id UInt64) ENGINE = Test")

	cols := []sqlparse.Column{{Name: "id", Type: "UInt64"}}

	// An existing ordering key may change.
	if err := db.AlterTable("ordered", TablePatch{Columns: cols, OrderBy: "(id, ts)"}); err != nil {
		t.Fatal(err)
	}
	if d := readBack(t, db, "ordered"); d.OrderBy != "(id, ts)" {
		t.Fatalf("ordered OrderBy = %q", d.OrderBy)
	}

	// But one can never be introduced on a table declared without it.
	if err := db.AlterTable("plain", TablePatch{Columns: cols, OrderBy: "(id)"}); err != nil {
		t.Fatal(err)
	}
	if d := readBack(t, db, "plain"); d.OrderBy != "" {
		t.Fatalf("plain gained an ordering key: %q", d.OrderBy)
	}
}

func TestAlterReplacesClausesOnlyWhenSupplied(t *testing.T) {
	db := openTestDB(t, Options{})
	writeDef(t, db, "events.sql", alterBaseDef)

	cols := []sqlparse.Column{{Name: "id", Type: "UInt64"}}
	err := db.AlterTable("events", TablePatch{
		Columns:  cols,
		TTL:      "ts + 3600",
		Settings: []sqlparse.Setting{{Key: "no_sync", Value: "0"}, {Key: "fill_percent", Value: "0.5"}},
	})
	if err != nil {
		t.Fatal(err)
	}

	d := readBack(t, db, "events")
	if d.TTL != "ts + 3600" {
		t.Fatalf("TTL = %q", d.TTL)
	}
	if d.PrimaryKey != "(id)" {
		t.Fatalf("PrimaryKey = %q, want preserved", d.PrimaryKey)
	}
	want := []sqlparse.Setting{{Key: "no_sync", Value: "0"}, {Key: "fill_percent", Value: "0.5"}}
	if len(d.Settings) != 2 || d.Settings[0] != want[0] || d.Settings[1] != want[1] {
		t.Fatalf("settings = %+v", d.Settings)
	}
}

func TestAlterConcurrentMutation(t *testing.T) {
	db := openTestDB(t, Options{})
	writeDef(t, db, "events.sql", alterBaseDef)

	tmp := filepath.Join(db.MetadataPath(), "events.sql.tmp")
	if err := os.WriteFile(tmp, []byte("racer"), 0644); err != nil {
		t.Fatal(err)
	}

	err := db.AlterTable("events", TablePatch{Columns: []sqlparse.Column{{Name: "id", Type: "UInt64"}}})
	if !errors.Is(err, metastore.ErrConcurrentMutation) {
		t.Fatalf("err = %v, want ErrConcurrentMutation", err)
	}

	// The losing alter leaves the original untouched.
	data, err := os.ReadFile(filepath.Join(db.MetadataPath(), "events.sql"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != alterBaseDef {
		t.Fatalf("original definition mutated:\n%s", data)
	}
}

func TestAlterRejectsEmptyColumns(t *testing.T) {
	db := openTestDB(t, Options{})
	writeDef(t, db, "events.sql", alterBaseDef)

	// A column-less patch would persist a definition the parser rejects on
	// the next bootstrap; it must fail before touching the file.
	err := db.AlterTable("events", TablePatch{})
	if !errors.Is(err, ErrEmptyColumns) {
		t.Fatalf("err = %v, want ErrEmptyColumns", err)
	}

	data, rerr := os.ReadFile(filepath.Join(db.MetadataPath(), "events.sql"))
	if rerr != nil {
		t.Fatal(rerr)
	}
	if string(data) != alterBaseDef {
		t.Fatalf("definition mutated:\n%s", data)
	}
	if _, perr := sqlparse.Parse(string(data)); perr != nil {
		t.Fatalf("persisted definition does not parse: %v", perr)
	}
}

func TestAlterMissingTable(t *testing.T) {
	db := openTestDB(t, Options{})
	patch := TablePatch{Columns: []sqlparse.Column{{Name: "id", Type: "UInt64"}}}
	if err := db.AlterTable("nope", patch); err == nil {
		t.Fatal("expected error for missing table")
	}
}

func TestAlterRejectsDictionary(t *testing.T) {
	db := openTestDB(t, Options{})
	writeDef(t, db, "geo.sql", dictDef("geo"))

	err := db.AlterTable("geo", TablePatch{Columns: []sqlparse.Column{{Name: "id", Type: "UInt64"}}})
	if !errors.Is(err, ErrTableNotExists) {
		t.Fatalf("err = %v, want ErrTableNotExists", err)
	}
}
