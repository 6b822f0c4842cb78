package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/jonathan/job-outreach/internal/types"
)

const spreadsheetMimeType = "application/vnd.google-apps.spreadsheet"

// ErrSpreadsheetNotFound is returned when no spreadsheet matches the configured name.
var ErrSpreadsheetNotFound = errors.New("spreadsheet not found")

// SheetsConfig selects the worksheet holding the lead table.
type SheetsConfig struct {
	CredentialsFile string
	SpreadsheetID   string // takes precedence over SheetName
	SheetName       string
	Worksheet       string
}

// Sheets is a Ledger backed by one worksheet of a Google spreadsheet.
type Sheets struct {
	svc           *sheets.Service
	spreadsheetID string
	worksheet     string
}

// NewSheets connects to the Sheets API. When no spreadsheet id is configured, the
// spreadsheet is looked up by name through Drive. Extra client options are appended
// after the credentials option.
func NewSheets(ctx context.Context, cfg SheetsConfig, opts ...option.ClientOption) (*Sheets, error) {
	if cfg.CredentialsFile != "" {
		opts = append([]option.ClientOption{option.WithCredentialsFile(cfg.CredentialsFile)}, opts...)
	}
	if cfg.Worksheet == "" {
		cfg.Worksheet = "Sheet1"
	}

	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	id := cfg.SpreadsheetID
	if id == "" {
		if cfg.SheetName == "" {
			return nil, fmt.Errorf("spreadsheet id or name is required")
		}
		driveSvc, err := drive.NewService(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create drive service: %w", err)
		}
		id, err = findSpreadsheet(ctx, driveSvc, cfg.SheetName)
		if err != nil {
			return nil, err
		}
	}

	return &Sheets{svc: svc, spreadsheetID: id, worksheet: cfg.Worksheet}, nil
}

func findSpreadsheet(ctx context.Context, svc *drive.Service, name string) (string, error) {
	q := fmt.Sprintf("name = '%s' and mimeType = '%s' and trashed = false",
		strings.ReplaceAll(name, "'", `\'`), spreadsheetMimeType)
	list, err := svc.Files.List().Q(q).Fields("files(id, name)").PageSize(1).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to look up spreadsheet %q: %w", name, err)
	}
	if len(list.Files) == 0 {
		return "", fmt.Errorf("%w: %s", ErrSpreadsheetNotFound, name)
	}
	return list.Files[0].Id, nil
}

// SpreadsheetID returns the resolved spreadsheet id.
func (s *Sheets) SpreadsheetID() string {
	return s.spreadsheetID
}

// Load reads every row of the worksheet. The first row is the header.
func (s *Sheets) Load(ctx context.Context) (*types.Table, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, quoteSheet(s.worksheet)).
		Context(ctx).Do()
	if err != nil {
		return nil, &Error{Op: "load", Backend: "sheets", Cause: err}
	}
	return types.TableFromGrid(toGrid(resp.Values)), nil
}

// Overwrite writes the whole table starting at A1 in a single update.
func (s *Sheets) Overwrite(ctx context.Context, t *types.Table) error {
	grid := t.Grid()
	values := make([][]interface{}, len(grid))
	for i, row := range grid {
		values[i] = make([]interface{}, len(row))
		for j, cell := range row {
			values[i][j] = cell
		}
	}

	_, err := s.svc.Spreadsheets.Values.Update(s.spreadsheetID, quoteSheet(s.worksheet)+"!A1",
		&sheets.ValueRange{Values: values}).
		ValueInputOption("RAW").
		Context(ctx).Do()
	if err != nil {
		return &Error{Op: "overwrite", Backend: "sheets", Cause: err}
	}
	return nil
}

// quoteSheet quotes a worksheet name for use in A1 notation.
func quoteSheet(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

func toGrid(values [][]interface{}) [][]string {
	grid := make([][]string, len(values))
	for i, row := range values {
		grid[i] = make([]string, len(row))
		for j, v := range row {
			switch cell := v.(type) {
			case nil:
			case string:
				grid[i][j] = cell
			default:
				grid[i][j] = fmt.Sprint(cell)
			}
		}
	}
	return grid
}
