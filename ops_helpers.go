package docengine

import (
	"encoding/json"
	"fmt"

	"github.com/coldbrewdb/docengine/internal/docio"
)

func formatPKForError(pk interface{}) string {
	raw, err := json.Marshal(pk)
	if err != nil {
		return fmt.Sprintf("%v", pk)
	}
	return string(raw)
}

// Insert builds a TransformFunc for Replace that installs doc only if
// no row currently exists at the key, matching rql's non-upsert
// insert semantics (scenario S1/S2).
func Insert(doc docio.Document) TransformFunc {
	return func(old docio.Document) (docio.Document, error) {
		if old != nil {
			return nil, fmt.Errorf("Duplicate primary key.")
		}
		return doc, nil
	}
}

// Upsert builds a TransformFunc that installs doc whether or not a
// row already exists (scenario S3).
func Upsert(doc docio.Document) TransformFunc {
	return func(docio.Document) (docio.Document, error) {
		return doc, nil
	}
}

// Update builds a TransformFunc that merges patch into the existing
// document, erroring if no row exists.
func Update(patch docio.Document) TransformFunc {
	return func(old docio.Document) (docio.Document, error) {
		if old == nil {
			return nil, fmt.Errorf("No row to update.")
		}
		merged := make(docio.Document, len(old)+len(patch))
		for k, v := range old {
			merged[k] = v
		}
		for k, v := range patch {
			merged[k] = v
		}
		return merged, nil
	}
}

// DeleteAt builds a TransformFunc that removes whatever row exists,
// a no-op if there isn't one.
func DeleteAt() TransformFunc {
	return func(docio.Document) (docio.Document, error) {
		return nil, nil
	}
}
