// Package modreport implements the modification report tuple and its
// wire codec (spec §3, §6): a per-write summary of what a document
// looked like before and after a mutation, consumed by the sindex
// layer.
package modreport

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"io"

	"github.com/coldbrewdb/docengine/internal/direrrors"
	"github.com/coldbrewdb/docengine/internal/docio"
)

// Report is the modification report tuple: (primary_key, deleted?,
// added?). PrimaryKey must be non-empty by the time a Report leaves
// its producer (I-invariant from spec §3); Deleted/Added are nil when
// absent.
type Report struct {
	PrimaryKey []byte
	Deleted    docio.Document
	Added      docio.Document
}

// IsNoop reports whether the report carries no content, meaning it
// should not be fanned out to sindexes at all — the resolution of
// spec.md's first Open Question.
func (r Report) IsNoop() bool { return r.Deleted == nil && r.Added == nil }

const (
	tagHasValue   byte = 0
	tagHasNoValue byte = 1
)

// Encode produces the tagged wire format from spec §6: length-prefixed
// primary key, then a deleted_tag/document pair, then an added_tag/
// document pair.
func Encode(r Report) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeBytes(&buf, r.PrimaryKey); err != nil {
		return nil, err
	}
	if err := writeOptionalDoc(&buf, r.Deleted); err != nil {
		return nil, err
	}
	if err := writeOptionalDoc(&buf, r.Added); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode reverses Encode, failing with a corruption error on any
// unknown tag or truncated buffer.
func Decode(b []byte) (Report, error) {
	r := bytes.NewReader(b)
	pk, err := readBytes(r)
	if err != nil {
		return Report{}, err
	}
	deleted, err := readOptionalDoc(r)
	if err != nil {
		return Report{}, err
	}
	added, err := readOptionalDoc(r)
	if err != nil {
		return Report{}, err
	}
	if r.Len() != 0 {
		return Report{}, direrrors.NewCorruption("modreport: %d trailing bytes", r.Len())
	}
	return Report{PrimaryKey: pk, Deleted: deleted, Added: added}, nil
}

func writeBytes(buf *bytes.Buffer, b []byte) error {
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(b)))
	buf.Write(lenBuf[:])
	buf.Write(b)
	return nil
}

func readBytes(r *bytes.Reader) ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, direrrors.NewCorruption("modreport: truncated length: %v", err)
	}
	n := binary.LittleEndian.Uint32(lenBuf[:])
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, direrrors.NewCorruption("modreport: truncated bytes: %v", err)
	}
	return b, nil
}

func writeOptionalDoc(buf *bytes.Buffer, doc docio.Document) error {
	if doc == nil {
		buf.WriteByte(tagHasNoValue)
		return nil
	}
	buf.WriteByte(tagHasValue)
	raw, err := json.Marshal(doc)
	if err != nil {
		return direrrors.NewUser("modreport: document does not marshal: %v", err)
	}
	return writeBytes(buf, raw)
}

func readOptionalDoc(r *bytes.Reader) (docio.Document, error) {
	tag, err := r.ReadByte()
	if err != nil {
		return nil, direrrors.NewCorruption("modreport: truncated tag: %v", err)
	}
	switch tag {
	case tagHasNoValue:
		return nil, nil
	case tagHasValue:
		raw, err := readBytes(r)
		if err != nil {
			return nil, err
		}
		var doc docio.Document
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, direrrors.NewCorruption("modreport: corrupt document: %v", err)
		}
		return doc, nil
	default:
		return nil, direrrors.NewCorruption("modreport: unknown tag %d", tag)
	}
}
