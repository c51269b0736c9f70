package docengine

import (
	"context"
	"reflect"
	"time"

	"github.com/coldbrewdb/docengine/internal/direrrors"
	"github.com/coldbrewdb/docengine/internal/docio"
	"github.com/coldbrewdb/docengine/internal/modreport"
)

// TransformFunc is the user-provided function driving the replace
// engine: given the existing document (nil for "absent row"), it
// returns the desired new document (nil to delete) or an error.
type TransformFunc func(old docio.Document) (docio.Document, error)

// ReplaceResult carries exactly one non-zero counter, per spec §4.3's
// invariant that a single Replace call increments exactly one of
// {skipped, inserted, deleted, replaced, unchanged, errors}.
type ReplaceResult struct {
	Skipped, Inserted, Deleted, Replaced, Unchanged, Errors int
	FirstError                                              string
}

func (r ReplaceResult) assertSingleCounter() {
	n := r.Skipped + r.Inserted + r.Deleted + r.Replaced + r.Unchanged + r.Errors
	if n != 1 {
		panic(direrrors.NewPrecondition("replace engine: expected exactly one counter set, got %d", n))
	}
}

// Replace is the unified engine behind insert/update/replace/
// delete-by-function (spec §4.3). It runs f against the document
// currently at key (or nil), classifies the result, and applies one
// of the six outcomes under primary-key-immutability rules.
func (t *Table) Replace(ctx context.Context, key []byte, f TransformFunc, ts time.Time) (ReplaceResult, error) {
	txn := t.tree.Begin()

	var old docio.Document
	startedEmpty := true
	oldRaw, present := txn.Get(key)
	if present {
		lv, err := decodeLeaf(oldRaw)
		if err != nil {
			return ReplaceResult{}, err
		}
		old, err = docio.Read(lv, t.blobs)
		if err != nil {
			return ReplaceResult{}, err
		}
		startedEmpty = false
	}

	newDoc, ferr := f(old)
	if ferr != nil {
		res := ReplaceResult{Errors: 1, FirstError: ferr.Error()}
		res.assertSingleCounter()
		t.m.ReplaceErrors.Inc()
		return res, nil
	}

	endedEmpty := newDoc == nil
	if !endedEmpty {
		if _, ok := newDoc[t.pkName]; !ok {
			res := ReplaceResult{Errors: 1, FirstError: "Inserted object must have primary key " + t.pkName + "."}
			res.assertSingleCounter()
			t.m.ReplaceErrors.Inc()
			return res, nil
		}
	}

	report := modreport.Report{PrimaryKey: key}

	switch {
	case startedEmpty && endedEmpty:
		res := ReplaceResult{Skipped: 1}
		res.assertSingleCounter()
		t.m.ReplaceSkipped.Inc()
		return res, nil

	case startedEmpty && !endedEmpty:
		if err := t.installNew(txn, key, newDoc, ts, &report); err != nil {
			return ReplaceResult{}, err
		}
		if err := txn.Commit(); err != nil {
			return ReplaceResult{}, err
		}
		if err := t.applySindexes(ctx, report); err != nil {
			return ReplaceResult{}, err
		}
		res := ReplaceResult{Inserted: 1}
		res.assertSingleCounter()
		t.m.ReplaceInserted.Inc()
		return res, nil

	case !startedEmpty && endedEmpty:
		if err := t.removeOld(txn, key, oldRaw, ts, &report); err != nil {
			return ReplaceResult{}, err
		}
		if err := txn.Commit(); err != nil {
			return ReplaceResult{}, err
		}
		if err := t.applySindexes(ctx, report); err != nil {
			return ReplaceResult{}, err
		}
		res := ReplaceResult{Deleted: 1}
		res.assertSingleCounter()
		t.m.ReplaceDeleted.Inc()
		return res, nil

	default: // !startedEmpty && !endedEmpty
		oldPK := old[t.pkName]
		newPK := newDoc[t.pkName]
		if !reflect.DeepEqual(oldPK, newPK) {
			res := ReplaceResult{
				Errors: 1,
				FirstError: "Primary key '" + t.pkName + "' cannot be changed (" +
					formatPKForError(oldPK) + " -> " + formatPKForError(newPK) + ")",
			}
			res.assertSingleCounter()
			t.m.ReplaceErrors.Inc()
			return res, nil
		}
		if reflect.DeepEqual(old, newDoc) {
			res := ReplaceResult{Unchanged: 1}
			res.assertSingleCounter()
			t.m.ReplaceUnchanged.Inc()
			return res, nil
		}
		if err := t.removeOld(txn, key, oldRaw, ts, &report); err != nil {
			return ReplaceResult{}, err
		}
		if err := t.installNew(txn, key, newDoc, ts, &report); err != nil {
			return ReplaceResult{}, err
		}
		if err := txn.Commit(); err != nil {
			return ReplaceResult{}, err
		}
		if err := t.applySindexes(ctx, report); err != nil {
			return ReplaceResult{}, err
		}
		res := ReplaceResult{Replaced: 1}
		res.assertSingleCounter()
		t.m.ReplaceReplaced.Inc()
		return res, nil
	}
}

func (t *Table) installNew(txn interface {
	Set(key, value []byte, ts time.Time)
}, key []byte, doc docio.Document, ts time.Time, report *modreport.Report) error {
	lv, err := docio.WriteNew(doc, t.blobs, t.opts.BlobCodec)
	if err != nil {
		return err
	}
	txn.Set(key, encodeLeaf(lv), ts)
	report.Added = doc
	return nil
}

func (t *Table) removeOld(txn interface {
	Delete(key []byte, ts time.Time)
}, key []byte, oldRaw []byte, ts time.Time, report *modreport.Report) error {
	lv, err := decodeLeaf(oldRaw)
	if err != nil {
		return err
	}
	oldDoc, err := docio.Read(lv, t.blobs)
	if err != nil {
		return err
	}
	if err := docio.Clear(lv, t.blobs); err != nil {
		return err
	}
	txn.Delete(key, ts)
	report.Deleted = oldDoc
	return nil
}
