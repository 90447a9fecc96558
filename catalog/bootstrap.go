package catalog

import (
	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/tiglabs/tabledb/metastore"
	"github.com/tiglabs/tabledb/sqlparse"
	"github.com/tiglabs/tabledb/util/timeutil"
	"github.com/tiglabs/tabledb/util/workpool"
)

type storedObject struct {
	def  metastore.Definition
	desc *sqlparse.Descriptor
}

// LoadStoredObjects rebuilds the catalog from the metadata store.
//
// Tables load faster when processed in sorted (by file name) order;
// directory enumeration order depends on the filesystem and matches neither
// creation order nor on-disk layout, so the store sorts for us and both
// phases below submit work in that order.
//
// Phases, strictly sequenced: parse everything, attach tables in parallel,
// start every attached table in parallel, register this database as a
// dictionary source, then attach dictionaries one by one. The first
// unrecovered failure aborts the whole bootstrap; already attached objects
// are not rolled back and the catalog must not be exposed to queries.
func (db *Database) LoadStoredObjects(ctx *Context) error {
	watch := timeutil.NewAtomicStopwatch()

	defs, err := db.store.ListDefinitions()
	if err != nil {
		return err
	}

	var tables, dicts []storedObject
	for _, def := range defs {
		desc, perr := sqlparse.Parse(def.Text)
		if perr != nil {
			if pe, ok := perr.(*sqlparse.ParseError); ok {
				pe.File = def.FileName
				return pe
			}
			return errors.Wrapf(perr, "cannot parse definition from metadata file %s", def.FileName)
		}
		if desc.Kind == sqlparse.KindDictionary {
			dicts = append(dicts, storedObject{def: def, desc: desc})
		} else {
			tables = append(tables, storedObject{def: def, desc: desc})
		}
	}

	glog.Infof("database %s: total %d tables and %d dictionaries", db.name, len(tables), len(dicts))

	pool := workpool.New(db.opts.MaxPoolSize)

	// Attach tables. All units run to completion even when one fails; the
	// first failure in submission order aborts the bootstrap afterwards.
	attachProgress := newProgressLog("attaching tables", len(tables), db.opts.OnProgress)
	for _, obj := range tables {
		obj := obj
		pool.Submit(func() error {
			if _, err := db.AttachTable(obj.desc, obj.def.Text, ctx); err != nil {
				return err
			}
			attachProgress.step()
			return nil
		})
	}
	if err := pool.Wait(); err != nil {
		return err
	}

	// After all tables were basically initialized, start them up.
	if err := db.startupTables(pool); err != nil {
		return err
	}

	// Register this database as a definition source, so dictionaries can
	// reference already started tables.
	db.loader.RegisterSource(db.name, db)

	// Attach dictionaries. Registration is cheap and the shared registry is
	// not built for concurrent mutation, so this phase runs one at a time
	// and stops at the first failure.
	dictProgress := newProgressLog("attaching dictionaries", len(dicts), db.opts.OnProgress)
	for _, obj := range dicts {
		if err := db.AttachDictionary(obj.desc, obj.def.Text, ctx); err != nil {
			return err
		}
		dictProgress.step()
	}

	glog.Infof("database %s: loaded %d objects in %v", db.name, len(defs), watch.Elapsed())
	return nil
}

// startupTables runs the lifecycle start of every attached table, not just
// the ones attached by the current bootstrap. Startup is separated from
// attach: an engine may resolve sibling tables by name, which is only safe
// once the whole catalog is structurally attached.
func (db *Database) startupTables(pool *workpool.Pool) error {
	tables := db.Tables()
	if len(tables) == 0 {
		return nil
	}

	glog.Infof("database %s: starting up tables", db.name)

	progress := newProgressLog("starting up tables", len(tables), db.opts.OnProgress)
	for _, t := range tables {
		t := t
		pool.Submit(func() error {
			if err := t.Startup(); err != nil {
				return errors.Wrapf(err, "fail to start up table %q", t.Name())
			}
			progress.step()
			return nil
		})
	}
	return pool.Wait()
}
