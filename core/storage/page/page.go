package page

import (
	"github.com/sushant-115/pagestore/core/storage/record"
)

// --- Page Management ---

const (
	InvalidPageID PageID = 0 // ids handed out by a record type start at 1
	// Capacity is the fixed number of record slots in every page.
	Capacity = 20
)

// PageID identifies a page within the data file of one record type.
type PageID uint64

// AddResult tells a caller whether Add stored the record.
type AddResult int

const (
	Added AddResult = iota
	PageFull
)

func (r AddResult) String() string {
	if r == Added {
		return "added"
	}
	return "page full"
}

// RemoveResult tells a caller whether Remove dropped a record.
type RemoveResult int

const (
	Removed RemoveResult = iota
	NotPresent
)

func (r RemoveResult) String() string {
	if r == Removed {
		return "removed"
	}
	return "not present"
}

// Page is an in-memory, insertion-ordered group of at most Capacity records.
type Page struct {
	id      PageID
	records []*record.Record
}

// NewPage creates an empty page.
func NewPage(id PageID) *Page {
	return &Page{
		id:      id,
		records: make([]*record.Record, 0, Capacity),
	}
}

// FromRecords builds a page from already decoded records. Records beyond
// Capacity are ignored.
func FromRecords(id PageID, records []*record.Record) *Page {
	p := NewPage(id)
	for _, r := range records {
		p.Add(r)
	}
	return p
}

func (p *Page) GetPageID() PageID { return p.id }
func (p *Page) HasSpace() bool    { return len(p.records) < Capacity }
func (p *Page) IsEmpty() bool     { return len(p.records) == 0 }
func (p *Page) Len() int          { return len(p.records) }
func (p *Page) Capacity() int     { return Capacity }

// Records returns the records in insertion order. The slice is a copy.
func (p *Page) Records() []*record.Record {
	return append([]*record.Record(nil), p.records...)
}

// Add appends r at the end of the page. A full page leaves r out.
func (p *Page) Add(r *record.Record) AddResult {
	if !p.HasSpace() {
		return PageFull
	}
	p.records = append(p.records, r)
	return Added
}

// Remove drops the first record whose key matches.
func (p *Page) Remove(key string) RemoveResult {
	for i, r := range p.records {
		if r.MatchesKey(key) {
			p.records = append(p.records[:i], p.records[i+1:]...)
			return Removed
		}
	}
	return NotPresent
}

// Find returns the first record whose key matches.
func (p *Page) Find(key string) (*record.Record, bool) {
	for _, r := range p.records {
		if r.MatchesKey(key) {
			return r, true
		}
	}
	return nil, false
}
