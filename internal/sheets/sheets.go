package sheets

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"sheetfeed/internal/record"
)

// Worksheet dimensions used when the target sheet has to be created.
const (
	newSheetRows = 2000
	newSheetCols = 30
)

// OAuth scopes for reading and appending spreadsheet values.
var scopes = []string{
	sheetsapi.SpreadsheetsScope,
	sheetsapi.DriveReadonlyScope,
	sheetsapi.DriveFileScope,
}

// api is the slice of the Sheets service the client needs. The
// indirection keeps the append logic testable without network access.
type api interface {
	listSheets(ctx context.Context, spreadsheetID string) ([]*sheetsapi.SheetProperties, error)
	addSheet(ctx context.Context, spreadsheetID string, props *sheetsapi.SheetProperties) error
	getValues(ctx context.Context, spreadsheetID, readRange string) ([][]interface{}, error)
	updateValues(ctx context.Context, spreadsheetID, writeRange string, values [][]interface{}) error
}

// Client appends rows to one worksheet of one spreadsheet.
type Client struct {
	api           api
	spreadsheetID string
	title         string
	now           func() time.Time
}

// Config identifies the target spreadsheet.
type Config struct {
	// SpreadsheetID is the ID from the spreadsheet URL.
	SpreadsheetID string
	// Title is the worksheet tab to append to.
	Title string
	// CredentialsFile is a service-account key file. Empty means
	// application default credentials.
	CredentialsFile string
}

// NewClient builds a client against the live Sheets API.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.SpreadsheetID == "" {
		return nil, fmt.Errorf("sheets: spreadsheet ID is required")
	}
	if cfg.Title == "" {
		return nil, fmt.Errorf("sheets: worksheet title is required")
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile), option.WithScopes(scopes...))
	} else {
		creds, err := google.FindDefaultCredentials(ctx, scopes...)
		if err != nil {
			return nil, fmt.Errorf("sheets: loading default credentials: %w", err)
		}
		opts = append(opts, option.WithCredentials(creds))
	}

	svc, err := sheetsapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets: creating service: %w", err)
	}
	return &Client{
		api:           &liveAPI{svc: svc},
		spreadsheetID: cfg.SpreadsheetID,
		title:         cfg.Title,
		now:           time.Now,
	}, nil
}

// EnsureWorksheet creates the target worksheet when the spreadsheet
// does not already have a tab with the configured title.
func (c *Client) EnsureWorksheet(ctx context.Context) error {
	props, err := c.api.listSheets(ctx, c.spreadsheetID)
	if err != nil {
		return fmt.Errorf("sheets: listing worksheets: %w", err)
	}
	for _, p := range props {
		if p.Title == c.title {
			return nil
		}
	}
	err = c.api.addSheet(ctx, c.spreadsheetID, &sheetsapi.SheetProperties{
		Title: c.title,
		GridProperties: &sheetsapi.GridProperties{
			RowCount:    newSheetRows,
			ColumnCount: newSheetCols,
		},
	})
	if err != nil {
		return fmt.Errorf("sheets: creating worksheet %q: %w", c.title, err)
	}
	return nil
}

// FirstEmptyRow returns the 1-indexed number of the first row with no
// value in any of columns A through O. The API returns rows up to the
// last one holding a value anywhere in the range, so a row occupied
// only in a later column still counts as taken.
func (c *Client) FirstEmptyRow(ctx context.Context) (int, error) {
	readRange := fmt.Sprintf("%s!A:O", c.title)
	values, err := c.api.getValues(ctx, c.spreadsheetID, readRange)
	if err != nil {
		return 0, fmt.Errorf("sheets: reading occupied rows: %w", err)
	}
	return len(values) + 1, nil
}

// AppendRecords writes the records below the last occupied row. Values
// are entered as a user would type them, so numeric strings become
// numbers in the sheet. Appending an empty slice is a no-op.
func (c *Client) AppendRecords(ctx context.Context, records []record.Record) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}
	if err := c.EnsureWorksheet(ctx); err != nil {
		return 0, err
	}
	start, err := c.FirstEmptyRow(ctx)
	if err != nil {
		return 0, err
	}

	date := c.now().Format("2006/01/02")
	rows := make([][]interface{}, 0, len(records))
	for _, r := range records {
		rows = append(rows, r.SheetRow(date))
	}

	writeRange := fmt.Sprintf("%s!A%d:O%d", c.title, start, start+len(rows)-1)
	if err := c.api.updateValues(ctx, c.spreadsheetID, writeRange, rows); err != nil {
		return 0, fmt.Errorf("sheets: writing %s: %w", writeRange, err)
	}
	return len(rows), nil
}

// liveAPI adapts the generated Sheets service to the api interface.
type liveAPI struct {
	svc *sheetsapi.Service
}

func (a *liveAPI) listSheets(ctx context.Context, spreadsheetID string) ([]*sheetsapi.SheetProperties, error) {
	ss, err := a.svc.Spreadsheets.Get(spreadsheetID).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	props := make([]*sheetsapi.SheetProperties, 0, len(ss.Sheets))
	for _, s := range ss.Sheets {
		props = append(props, s.Properties)
	}
	return props, nil
}

func (a *liveAPI) addSheet(ctx context.Context, spreadsheetID string, props *sheetsapi.SheetProperties) error {
	req := &sheetsapi.BatchUpdateSpreadsheetRequest{
		Requests: []*sheetsapi.Request{
			{AddSheet: &sheetsapi.AddSheetRequest{Properties: props}},
		},
	}
	_, err := a.svc.Spreadsheets.BatchUpdate(spreadsheetID, req).Context(ctx).Do()
	return err
}

func (a *liveAPI) getValues(ctx context.Context, spreadsheetID, readRange string) ([][]interface{}, error) {
	resp, err := a.svc.Spreadsheets.Values.Get(spreadsheetID, readRange).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}

func (a *liveAPI) updateValues(ctx context.Context, spreadsheetID, writeRange string, values [][]interface{}) error {
	vr := &sheetsapi.ValueRange{Values: values}
	_, err := a.svc.Spreadsheets.Values.Update(spreadsheetID, writeRange, vr).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	return err
}
