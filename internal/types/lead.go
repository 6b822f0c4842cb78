package types

import (
	"fmt"
	"sort"
	"strings"
)

// Column names of the lead table.
const (
	FieldCompanyName     = "Company Name"
	FieldPosition        = "Position"
	FieldLink            = "Link"
	FieldEmail           = "Email"
	FieldLinkedInContact = "LinkedIn Contact"
	FieldContactName     = "Contact Name"
	FieldContactDetails  = "Contact Details"
	FieldDescription     = "Description"
	FieldCoverLetter     = "Cover Letter"
	FieldResume          = "Resume"
	FieldMissingKeywords = "Missing Keywords"
	FieldMessageContent  = "Message Content"
	FieldMessageSubject  = "Message Subject"
	FieldLinkedInNote    = "LinkedIn Note"
	FieldStatus          = "Status"
	FieldEmailStatus     = "Email Status"
	FieldLinkedInStatus  = "LinkedIn Status"
)

// ContentFields are the generated columns, written together or not at all.
var ContentFields = []string{
	FieldMessageContent,
	FieldMessageSubject,
	FieldLinkedInNote,
	FieldResume,
	FieldMissingKeywords,
	FieldCoverLetter,
}

// DefaultHeader is the column layout used when a ledger holds no header yet.
var DefaultHeader = []string{
	FieldCompanyName,
	FieldPosition,
	FieldLink,
	FieldDescription,
	FieldEmail,
	FieldLinkedInContact,
	FieldContactName,
	FieldContactDetails,
	FieldCoverLetter,
	FieldResume,
	FieldMissingKeywords,
	FieldMessageContent,
	FieldMessageSubject,
	FieldLinkedInNote,
	FieldStatus,
	FieldEmailStatus,
	FieldLinkedInStatus,
}

// Lead is one row of the lead table. Row is the position of the row in the table and
// serves as the merge key; Fields holds every named column, including ones this system does not know.
// Cells under a blank or repeated header have no usable name and are kept in Extra by column position.
type Lead struct {
	Row    int
	Fields map[string]string
	Extra  map[int]string
}

// NewLead creates a lead for the given row index.
func NewLead(row int, fields map[string]string) Lead {
	l := Lead{Row: row, Fields: make(map[string]string, len(fields))}
	for k, v := range fields {
		l.Fields[k] = v
	}
	return l
}

// Get returns the raw value of a column.
func (l Lead) Get(field string) string {
	return l.Fields[field]
}

// Value returns the whitespace-trimmed value of a column.
func (l Lead) Value(field string) string {
	return strings.TrimSpace(l.Fields[field])
}

// Set writes a column value.
func (l *Lead) Set(field, value string) {
	if l.Fields == nil {
		l.Fields = make(map[string]string)
	}
	l.Fields[field] = value
}

// Status returns the parsed Status column.
func (l Lead) Status() Status {
	return ParseStatus(l.Fields[FieldStatus])
}

// SetStatus writes the Status column.
func (l *Lead) SetStatus(s Status) {
	l.Set(FieldStatus, string(s))
}

// HasEmail reports whether the Email column is filled.
func (l Lead) HasEmail() bool {
	return l.Value(FieldEmail) != ""
}

// HasLinkedIn reports whether the LinkedIn Contact column is filled.
func (l Lead) HasLinkedIn() bool {
	return l.Value(FieldLinkedInContact) != ""
}

// HasContact reports whether the lead has at least one usable channel.
func (l Lead) HasContact() bool {
	return l.HasEmail() || l.HasLinkedIn()
}

// HasAllContent reports whether every generated column is filled.
func (l Lead) HasAllContent() bool {
	for _, f := range ContentFields {
		if l.Value(f) == "" {
			return false
		}
	}
	return true
}

// IsBlank reports whether the row carries no identity at all (spacer rows in a sheet).
func (l Lead) IsBlank() bool {
	return l.Value(FieldCompanyName) == "" && l.Value(FieldPosition) == "" && l.Value(FieldLink) == ""
}

// ApplyContent writes all six generated columns from a bundle.
func (l *Lead) ApplyContent(b *ContentBundle) {
	l.Set(FieldCoverLetter, b.CoverLetter)
	l.Set(FieldResume, b.ResumeSummary)
	l.Set(FieldMissingKeywords, b.MissingKeywords)
	l.Set(FieldMessageContent, b.MessageContent)
	l.Set(FieldMessageSubject, b.MessageSubject)
	l.Set(FieldLinkedInNote, b.LinkedInNote)
}

// Label identifies the lead in logs.
func (l Lead) Label() string {
	return fmt.Sprintf("%s - %s", l.Value(FieldCompanyName), l.Value(FieldPosition))
}

// Clone returns a deep copy.
func (l Lead) Clone() Lead {
	c := NewLead(l.Row, l.Fields)
	if l.Extra != nil {
		c.Extra = make(map[int]string, len(l.Extra))
		for k, v := range l.Extra {
			c.Extra[k] = v
		}
	}
	return c
}

// Table is the in-memory copy of the ledger: an ordered header plus ordered rows.
type Table struct {
	Header []string
	Rows   []Lead
}

// TableFromGrid builds a table from a two-dimensional grid whose first row is the header.
// Short rows are padded; cells beyond the header are dropped.
func TableFromGrid(grid [][]string) *Table {
	t := &Table{}
	if len(grid) == 0 {
		t.Header = append([]string(nil), DefaultHeader...)
		return t
	}
	for _, h := range grid[0] {
		t.Header = append(t.Header, strings.TrimSpace(h))
	}
	unnamed := unnamedColumns(t.Header)
	for i, cells := range grid[1:] {
		l := Lead{Row: i, Fields: make(map[string]string, len(t.Header))}
		for c, name := range t.Header {
			var v string
			if c < len(cells) {
				v = cells[c]
			}
			if unnamed[c] {
				if v != "" {
					if l.Extra == nil {
						l.Extra = make(map[int]string)
					}
					l.Extra[c] = v
				}
				continue
			}
			l.Fields[name] = v
		}
		t.Rows = append(t.Rows, l)
	}
	return t
}

// Grid renders the table as a header row followed by one row per lead, in header order.
func (t *Table) Grid() [][]string {
	unnamed := unnamedColumns(t.Header)
	grid := make([][]string, 0, len(t.Rows)+1)
	grid = append(grid, append([]string(nil), t.Header...))
	for _, l := range t.Rows {
		cells := make([]string, len(t.Header))
		for c, name := range t.Header {
			if unnamed[c] {
				cells[c] = l.Extra[c]
			} else {
				cells[c] = l.Fields[name]
			}
		}
		grid = append(grid, cells)
	}
	return grid
}

// unnamedColumns marks the header positions whose cells cannot be addressed by name:
// blank headers and every repeat of an earlier header.
func unnamedColumns(header []string) []bool {
	out := make([]bool, len(header))
	seen := make(map[string]bool, len(header))
	for c, name := range header {
		if name == "" || seen[name] {
			out[c] = true
			continue
		}
		seen[name] = true
	}
	return out
}

// Lead returns a copy of the row at index.
func (t *Table) Lead(row int) (Lead, bool) {
	if row < 0 || row >= len(t.Rows) {
		return Lead{}, false
	}
	return t.Rows[row].Clone(), true
}

// Merge writes leads back into the table by row key and appends unseen columns to the header.
func (t *Table) Merge(leads ...Lead) error {
	for _, l := range leads {
		if l.Row < 0 || l.Row >= len(t.Rows) {
			return fmt.Errorf("merge: row %d out of range (table has %d rows)", l.Row, len(t.Rows))
		}
		t.ensureColumns(l.Fields)
		t.Rows[l.Row] = l.Clone()
	}
	return nil
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	c := &Table{Header: append([]string(nil), t.Header...)}
	for _, l := range t.Rows {
		c.Rows = append(c.Rows, l.Clone())
	}
	return c
}

// CountByStatus tallies rows per status, ignoring blank rows.
func (t *Table) CountByStatus() map[Status]int {
	counts := make(map[Status]int)
	for _, l := range t.Rows {
		if l.IsBlank() {
			continue
		}
		counts[l.Status()]++
	}
	return counts
}

func (t *Table) ensureColumns(fields map[string]string) {
	known := make(map[string]bool, len(t.Header))
	for _, h := range t.Header {
		known[h] = true
	}
	var missing []string
	for name := range fields {
		if !known[name] {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	t.Header = append(t.Header, missing...)
}
