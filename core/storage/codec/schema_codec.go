package codec

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/sushant-115/pagestore/core/storage/dberror"
	"github.com/sushant-115/pagestore/core/storage/schema"
)

var schemaLine = regexp.MustCompile(`^(\w+)\s*!(\d+):(\w+)\s*:((?:\w+\s*,?)+)$`)

// EncodeSchema renders one catalog line.
func EncodeSchema(s schema.Schema) string {
	fields := s.Fields()
	padded := make([]string, len(fields))
	for i, f := range fields {
		padded[i] = PadRight(f, schema.MaxFieldNameLength)
	}
	return fmt.Sprintf("%s!%d:%s:%s",
		PadRight(s.Name(), schema.MaxNameLength),
		len(fields),
		PadRight(s.KeyField(), schema.MaxFieldNameLength),
		strings.Join(padded, ","),
	)
}

// DecodeSchema parses a catalog line. It is always strict: any deviation from
// the grammar, a field count that disagrees with the field list, or a schema
// that fails validation yields ErrInvalidSchema.
func DecodeSchema(line string) (schema.Schema, error) {
	m := schemaLine.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return schema.Schema{}, fmt.Errorf("%w: type does not have proper encoding: %q", dberror.ErrInvalidSchema, line)
	}

	name := strings.TrimSpace(m[1])
	fieldCount, err := strconv.Atoi(m[2])
	if err != nil {
		return schema.Schema{}, fmt.Errorf("%w: bad field count %q", dberror.ErrInvalidSchema, m[2])
	}
	keyField := strings.TrimSpace(m[3])

	rawFields := strings.Split(strings.TrimSpace(m[4]), ",")
	fields := make([]string, 0, len(rawFields))
	for _, raw := range rawFields {
		field := strings.TrimSpace(raw)
		if field == "" {
			return schema.Schema{}, fmt.Errorf("%w: empty field name in %q", dberror.ErrInvalidSchema, line)
		}
		fields = append(fields, field)
	}
	if len(fields) != fieldCount {
		return schema.Schema{}, fmt.Errorf("%w: header declares %d fields, found %d", dberror.ErrInvalidSchema, fieldCount, len(fields))
	}

	return schema.New(name, fields, keyField)
}
