package codec

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/sushant-115/pagestore/core/storage/dberror"
	"github.com/sushant-115/pagestore/core/storage/record"
	"github.com/sushant-115/pagestore/core/storage/schema"
)

const (
	valueSeparator  = ","
	recordSeparator = "|"
)

var recordSegment = regexp.MustCompile(`^(\d+)\s*,(\d*)\s*:(.*)$`)

// EncodeRecord renders the record's values in schema field order.
func EncodeRecord(r *record.Record) string {
	body := encodeValues(r)
	return fmt.Sprintf("%-2d,%-2d:%s", r.Schema().FieldCount(), utf8.RuneCountInString(body), body)
}

func encodeValues(r *record.Record) string {
	values := r.Values()
	padded := make([]string, len(values))
	for i, v := range values {
		padded[i] = PadRight(v, record.MaxValueLength)
	}
	return strings.Join(padded, valueSeparator)
}

// DecodeRecord parses a record segment for schema s. The header counts are
// not trusted; the number of value groups must equal the schema field count.
func DecodeRecord(s schema.Schema, text string) (*record.Record, error) {
	m := recordSegment.FindStringSubmatch(text)
	if m == nil {
		return nil, fmt.Errorf("%w: record does not have proper encoding: %q", dberror.ErrInvalidRecord, text)
	}

	rawValues := strings.Split(strings.TrimSpace(m[3]), valueSeparator)
	fields := s.Fields()
	if len(rawValues) != len(fields) {
		return nil, fmt.Errorf("%w: expected %d values for %s, found %d", dberror.ErrInvalidRecord, len(fields), s.Name(), len(rawValues))
	}

	values := make(map[string]string, len(fields))
	for i, field := range fields {
		values[field] = strings.TrimSpace(rawValues[i])
	}
	return record.New(s, values)
}
