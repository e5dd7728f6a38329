// Package facility streams RMP facility records through coordinate
// correction, adding a report link and optional correction metadata.
package facility

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/rmp-cli/internal/geofix"
)

// Column names read from or added to facility records.
const (
	ColumnFacilityID     = "EPA Facility ID"
	ColumnState          = geofix.StateField
	ColumnLatitude       = geofix.LatitudeField
	ColumnLongitude      = geofix.LongitudeField
	ColumnReport         = "Report"
	ColumnChanged        = "changed"
	ColumnConfidence     = "confidence"
	ColumnCorrectionType = "correction_type"
)

// RequiredColumns must all appear in the input header.
var RequiredColumns = []string{ColumnFacilityID, ColumnState, ColumnLatitude, ColumnLongitude}

// MetadataColumns are appended when correction metadata is requested.
var MetadataColumns = []string{ColumnChanged, ColumnConfidence, ColumnCorrectionType}

var (
	// ErrNoHeader is returned when the input has no header line.
	ErrNoHeader = eris.New("facility: input has no header")
	// ErrMissingColumn is returned when the header lacks a required column.
	ErrMissingColumn = eris.New("facility: header missing required column")
)

// Header is the ordered column list shared by every record of a stream.
type Header struct {
	names []string
	index map[string]int
}

// NewHeader indexes names and checks the required columns are present. When
// a name repeats, lookups resolve to its first position.
func NewHeader(names []string) (*Header, error) {
	h := &Header{
		names: append([]string(nil), names...),
		index: make(map[string]int, len(names)),
	}
	for i, n := range names {
		if _, dup := h.index[n]; !dup {
			h.index[n] = i
		}
	}

	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := h.index[col]; !ok {
			missing = append(missing, fmt.Sprintf("%q", col))
		}
	}
	if len(missing) > 0 {
		return nil, eris.Wrapf(ErrMissingColumn, "missing %s", strings.Join(missing, ", "))
	}
	return h, nil
}

// Names returns the columns in input order.
func (h *Header) Names() []string {
	return append([]string(nil), h.names...)
}

// Record is one row keyed by the stream header. Values are positional, so
// column order survives the round trip.
type Record struct {
	header *Header
	values []string
}

// NewRecord binds a parsed row to the header. Short rows are padded with
// empty values; fields past the header are dropped.
func (h *Header) NewRecord(row []string) *Record {
	values := make([]string, len(h.names))
	copy(values, row)
	return &Record{header: h, values: values}
}

// Get returns the value of column and whether the header has it.
func (r *Record) Get(column string) (string, bool) {
	i, ok := r.header.index[column]
	if !ok {
		return "", false
	}
	return r.values[i], true
}

// Set overwrites an existing column. Unknown columns are ignored and
// reported as false.
func (r *Record) Set(column, value string) bool {
	i, ok := r.header.index[column]
	if !ok {
		return false
	}
	r.values[i] = value
	return true
}

// Values returns the row in header order.
func (r *Record) Values() []string {
	return r.values
}

// ReportLink builds the markdown link to a facility's archived RMP report.
// It is plain formatting; the URL is not checked.
func ReportLink(baseURL, state, facilityID string) string {
	return fmt.Sprintf("[Report](%s/%s/%s.pdf)", strings.TrimRight(baseURL, "/"), state, facilityID)
}
