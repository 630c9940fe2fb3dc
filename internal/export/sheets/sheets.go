// Package sheets writes the candidate pipeline table into a Google Sheet.
package sheets

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/jonathan/talent-scout/internal/db"
	"github.com/jonathan/talent-scout/internal/export"
)

// DefaultRange is written when no range is given.
const DefaultRange = "Candidates!A1"

// ValuesWriter is the subset of the Sheets values API the exporter needs.
type ValuesWriter interface {
	ClearValues(ctx context.Context, spreadsheetID, rng string) error
	UpdateValues(ctx context.Context, spreadsheetID, rng string, values [][]interface{}) error
}

// Client talks to the Google Sheets v4 API.
type Client struct {
	service *sheets.Service
}

// Config holds service account credentials.
type Config struct {
	CredentialsPath string
	CredentialsJSON []byte
}

// NewClient creates an authenticated Sheets client.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	var opts []option.ClientOption

	if cfg.CredentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsPath))
	} else if len(cfg.CredentialsJSON) > 0 {
		opts = append(opts, option.WithCredentialsJSON(cfg.CredentialsJSON))
	} else {
		return nil, fmt.Errorf("sheets: credentials path or JSON is required")
	}

	service, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets: failed to create service: %w", err)
	}

	return &Client{service: service}, nil
}

// UpdateValues overwrites the range with values.
func (c *Client) UpdateValues(ctx context.Context, spreadsheetID, rng string, values [][]interface{}) error {
	_, err := c.service.Spreadsheets.Values.Update(spreadsheetID, rng, &sheets.ValueRange{Values: values}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	return err
}

// ClearValues empties the range.
func (c *Client) ClearValues(ctx context.Context, spreadsheetID, rng string) error {
	_, err := c.service.Spreadsheets.Values.Clear(spreadsheetID, rng, &sheets.ClearValuesRequest{}).Context(ctx).Do()
	return err
}

// Exporter replaces a sheet range with the candidate table.
type Exporter struct {
	writer ValuesWriter
}

// NewExporter wraps a values writer, usually a *Client.
func NewExporter(w ValuesWriter) *Exporter {
	return &Exporter{writer: w}
}

// Export clears rng and writes the header plus one row per candidate. It
// returns the number of candidate rows written.
func (e *Exporter) Export(ctx context.Context, spreadsheetID, rng string, candidates []db.SavedCandidate) (int, error) {
	if len(candidates) == 0 {
		return 0, export.ErrNoCandidates
	}
	if rng == "" {
		rng = DefaultRange
	}

	if err := e.writer.ClearValues(ctx, spreadsheetID, rng); err != nil {
		return 0, fmt.Errorf("sheets: clear %s: %w", rng, err)
	}
	if err := e.writer.UpdateValues(ctx, spreadsheetID, rng, Values(candidates)); err != nil {
		return 0, fmt.Errorf("sheets: update %s: %w", rng, err)
	}
	return len(candidates), nil
}

// Values converts the candidate table into Sheets cell values.
func Values(candidates []db.SavedCandidate) [][]interface{} {
	values := make([][]interface{}, 0, len(candidates)+1)
	values = append(values, toCells(export.Header))
	for _, row := range export.Rows(candidates) {
		values = append(values, toCells(row))
	}
	return values
}

func toCells(row []string) []interface{} {
	cells := make([]interface{}, len(row))
	for i, v := range row {
		cells[i] = v
	}
	return cells
}
