// Package record implements a single row of a record type: a mapping from
// field name to a short string value.
package record

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sushant-115/pagestore/core/storage/dberror"
	"github.com/sushant-115/pagestore/core/storage/schema"
)

// MaxValueLength is the widest value a field can hold.
const MaxValueLength = 10

// reservedChars separate values, records and lines in the data file.
const reservedChars = ",|\r\n"

type Record struct {
	schema schema.Schema
	values map[string]string
}

// New copies values into a record owned by s. Fields missing from values are
// not an error; they read back as the empty string. Values may not start or
// end with whitespace since the codec trims padding.
func New(s schema.Schema, values map[string]string) (*Record, error) {
	copied := make(map[string]string, len(values))
	for field, value := range values {
		if utf8.RuneCountInString(value) > MaxValueLength {
			return nil, fmt.Errorf("%w: value of %q exceeds %d chars", dberror.ErrInvalidRecord, field, MaxValueLength)
		}
		if strings.ContainsAny(value, reservedChars) {
			return nil, fmt.Errorf("%w: value of %q contains a reserved character", dberror.ErrInvalidRecord, field)
		}
		if value != strings.TrimSpace(value) {
			return nil, fmt.Errorf("%w: value of %q has leading or trailing whitespace", dberror.ErrInvalidRecord, field)
		}
		copied[field] = value
	}
	return &Record{schema: s, values: copied}, nil
}

func (r *Record) Schema() schema.Schema { return r.schema }

func (r *Record) KeyValue() string {
	return r.ValueOf(r.schema.KeyField())
}

func (r *Record) MatchesKey(key string) bool {
	return r.KeyValue() == key
}

// ValueOf never fails; an absent field yields "".
func (r *Record) ValueOf(field string) string {
	return r.values[field]
}

// Values returns the values in schema field order.
func (r *Record) Values() []string {
	fields := r.schema.Fields()
	out := make([]string, len(fields))
	for i, field := range fields {
		out[i] = r.ValueOf(field)
	}
	return out
}
