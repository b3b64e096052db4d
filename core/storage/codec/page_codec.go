package codec

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/sushant-115/pagestore/core/storage/dberror"
	"github.com/sushant-115/pagestore/core/storage/page"
	"github.com/sushant-115/pagestore/core/storage/record"
	"github.com/sushant-115/pagestore/core/storage/schema"
)

// Mode selects how DecodePage treats a record segment that fails to decode.
type Mode int

const (
	// Strict fails the whole page on the first bad record.
	Strict Mode = iota
	// Permissive drops the bad record, notes it in the DecodeReport and keeps
	// the rest of the page.
	Permissive
)

func (m Mode) String() string {
	if m == Strict {
		return "strict"
	}
	return "permissive"
}

// DroppedRecord describes a record segment that permissive decoding skipped.
type DroppedRecord struct {
	Index int // position of the segment within the page line
	Err   error
}

// DecodeReport lists what permissive decoding left out of a page.
type DecodeReport struct {
	Dropped []DroppedRecord
}

func (r DecodeReport) Clean() bool { return len(r.Dropped) == 0 }

var pageLine = regexp.MustCompile(`^(\d+\s*),(\d+\s*),(\d+\s*)!(.*)$`)

// EncodePage renders one data file line. Pages with no records still encode
// to a header with an empty record section.
func EncodePage(p *page.Page) string {
	records := p.Records()
	encoded := make([]string, len(records))
	for i, r := range records {
		encoded[i] = EncodeRecord(r)
	}
	return fmt.Sprintf("%-4d,%-2d,%-2d!%s",
		p.GetPageID(),
		p.Capacity(),
		p.Len(),
		strings.Join(encoded, recordSeparator),
	)
}

// DecodePage parses a data file line for schema s. The capacity and used
// counts in the header are ignored and recomputed from the records present.
func DecodePage(s schema.Schema, line string, mode Mode) (*page.Page, DecodeReport, error) {
	var report DecodeReport

	m := pageLine.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return nil, report, fmt.Errorf("%w: page does not have proper encoding: %q", dberror.ErrInvalidPage, line)
	}
	id, err := strconv.ParseUint(strings.TrimSpace(m[1]), 10, 64)
	if err != nil || page.PageID(id) == page.InvalidPageID {
		return nil, report, fmt.Errorf("%w: bad page id %q", dberror.ErrInvalidPage, strings.TrimSpace(m[1]))
	}
	pageID := page.PageID(id)

	body := strings.TrimSpace(m[4])
	if body == "" {
		return page.NewPage(pageID), report, nil
	}

	segments := strings.Split(body, recordSeparator)
	records := make([]*record.Record, 0, len(segments))
	for i, segment := range segments {
		r, err := DecodeRecord(s, segment)
		if err == nil && len(records) >= page.Capacity {
			err = fmt.Errorf("%w: page %d holds more than %d records", dberror.ErrInvalidRecord, pageID, page.Capacity)
		}
		if err != nil {
			if mode == Strict {
				return nil, report, fmt.Errorf("%w: page %d record %d: %w", dberror.ErrInvalidPage, pageID, i, err)
			}
			report.Dropped = append(report.Dropped, DroppedRecord{Index: i, Err: err})
			continue
		}
		records = append(records, r)
	}
	return page.FromRecords(pageID, records), report, nil
}
