// Package codec converts schemas, pages and records to and from the
// fixed-width text lines stored in catalog and data files.
//
// Catalog line:
//
//	name(10)!fieldCount:keyField(8):field1(8),field2(8),...
//
// Data file line (one per page):
//
//	id(4),capacity(2),used(2)!record|record|...
//
// Record segment:
//
//	fieldCount(2),length(2):value1(10),value2(10),...
//
// Widths are minimums: every field is right-padded with spaces so that all
// lines of one schema share a shape. Decoding trims the padding.
package codec
