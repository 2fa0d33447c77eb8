package domain

// DisabilityStatus is the normalized disability status of an observation
type DisabilityStatus string

const (
	StatusWithDisability DisabilityStatus = "With Disability"
	StatusNoDisability   DisabilityStatus = "No Disability"
)

// Valid reports whether s is one of the two known statuses
func (s DisabilityStatus) Valid() bool {
	return s == StatusWithDisability || s == StatusNoDisability
}

// CategoryColumn is the identifier column of a wide table
const CategoryColumn = "Category"

// LongHeader is the fixed header of the tidy output table
var LongHeader = []string{"Category", "Disability_Status", "Year", "Month", "Value"}

// WideTable is an already-parsed wide table. Columns holds the header row
// exactly as read, including the Category column.
type WideTable struct {
	Source  string    `json:"source,omitempty"`
	Columns []string  `json:"columns"`
	Rows    []WideRow `json:"rows"`
}

// ValueColumns returns the header minus the Category column, in order
func (t *WideTable) ValueColumns() []string {
	cols := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		if c == CategoryColumn {
			continue
		}
		cols = append(cols, c)
	}
	return cols
}

// WideRow is one metric row of a wide table. Cells holds the raw value cells
// keyed by header position; Cells[i] belongs to Columns[i].
type WideRow struct {
	Line  int      `json:"line"`
	Cells []string `json:"cells"`
}

// Cell returns the raw cell at column index i, or "" when the row is short
func (r WideRow) Cell(i int) string {
	if i < 0 || i >= len(r.Cells) {
		return ""
	}
	return r.Cells[i]
}

// LongRow is one tidy observation
type LongRow struct {
	Category         string           `json:"category" validate:"required"`
	DisabilityStatus DisabilityStatus `json:"disability_status" validate:"required,oneof='With Disability' 'No Disability'"`
	Year             string           `json:"year" validate:"required,len=4,numeric"`
	Month            string           `json:"month" validate:"required,len=3,alpha"`
	Value            float64          `json:"value"`
}

// ObservationKey identifies an observation; unique within a tidy table
type ObservationKey struct {
	Category         string
	DisabilityStatus DisabilityStatus
	Year             string
	Month            string
}

// Key returns the identifying tuple of the row
func (r LongRow) Key() ObservationKey {
	return ObservationKey{
		Category:         r.Category,
		DisabilityStatus: r.DisabilityStatus,
		Year:             r.Year,
		Month:            r.Month,
	}
}
