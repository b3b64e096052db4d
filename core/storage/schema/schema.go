// Package schema describes the shape of a record type: its name, its ordered
// field list and the field whose value identifies a record.
package schema

import (
	"fmt"
	"strings"

	"github.com/sushant-115/pagestore/core/storage/dberror"
)

const (
	MaxNameLength      = 10
	MaxFieldNameLength = 8
	MaxFieldCount      = 8
)

// Schema is immutable once built. Field order is significant: it fixes the
// column order of every encoded record.
type Schema struct {
	name     string
	fields   []string
	keyField string
}

// New validates and builds a schema. Duplicate field names are not rejected.
func New(name string, fields []string, keyField string) (Schema, error) {
	if problem := CheckTypeName(name); problem != NameOK {
		return Schema{}, fmt.Errorf("%w: type name %q %s", dberror.ErrInvalidSchema, name, problem)
	}
	if len(fields) == 0 {
		return Schema{}, fmt.Errorf("%w: a type must have at least 1 field", dberror.ErrInvalidSchema)
	}
	if len(fields) > MaxFieldCount {
		return Schema{}, fmt.Errorf("%w: cannot have more than %d fields", dberror.ErrInvalidSchema, MaxFieldCount)
	}
	for _, field := range fields {
		if problem := CheckFieldName(field); problem != NameOK {
			return Schema{}, fmt.Errorf("%w: field name %q %s", dberror.ErrInvalidSchema, field, problem)
		}
	}
	s := Schema{
		name:     name,
		fields:   append([]string(nil), fields...),
		keyField: keyField,
	}
	if !s.HasField(keyField) {
		return Schema{}, fmt.Errorf("%w: key field %q is not in fields list", dberror.ErrInvalidSchema, keyField)
	}
	return s, nil
}

func (s Schema) Name() string     { return s.name }
func (s Schema) KeyField() string { return s.keyField }
func (s Schema) FieldCount() int  { return len(s.fields) }

// Fields returns a copy of the ordered field list.
func (s Schema) Fields() []string {
	return append([]string(nil), s.fields...)
}

func (s Schema) HasField(field string) bool {
	for _, f := range s.fields {
		if f == field {
			return true
		}
	}
	return false
}

// IsNamed matches type names case-insensitively.
func (s Schema) IsNamed(name string) bool {
	return strings.EqualFold(s.name, name)
}

func (s Schema) Equal(other Schema) bool {
	if s.name != other.name || s.keyField != other.keyField || len(s.fields) != len(other.fields) {
		return false
	}
	for i := range s.fields {
		if s.fields[i] != other.fields[i] {
			return false
		}
	}
	return true
}

func (s Schema) String() string {
	return fmt.Sprintf("%s(%s) key=%s", s.name, strings.Join(s.fields, ","), s.keyField)
}
