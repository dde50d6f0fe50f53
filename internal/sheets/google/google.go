package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"spendscan/internal/core"
	ports "spendscan/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

const valueInputOption = "USER_ENTERED"

type Client struct {
	svc             *gsheet.Service
	spreadsheetID   string
	budgetSheet     string
	categoriesSheet string
}

// Ensure interface conformance
var _ ports.SummaryWriter = (*Client)(nil)

// New wraps an existing Sheets service. Sheet names are used as given.
func New(svc *gsheet.Service, spreadsheetID, budgetSheet, categoriesSheet string) *Client {
	return &Client{
		svc:             svc,
		spreadsheetID:   spreadsheetID,
		budgetSheet:     budgetSheet,
		categoriesSheet: categoriesSheet,
	}
}

// NewFromEnv creates a Sheets client using environment variables.
// Required: GOOGLE_SPREADSHEET_ID and either an OAuth client plus saved token
// (see spendctl sheets-auth) or one of GOOGLE_SERVICE_ACCOUNT_JSON,
// GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_APPLICATION_CREDENTIALS.
// Optional sheet names: GOOGLE_BUDGET_SHEET_NAME (default "Budget"),
// GOOGLE_CATEGORIES_SHEET_NAME (default "Categories"). The current year is
// prefixed to both.
func NewFromEnv(ctx context.Context, opts ...goption.ClientOption) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	budgetBase := strings.TrimSpace(os.Getenv("GOOGLE_BUDGET_SHEET_NAME"))
	if budgetBase == "" {
		budgetBase = "Budget"
	}
	catsBase := strings.TrimSpace(os.Getenv("GOOGLE_CATEGORIES_SHEET_NAME"))
	if catsBase == "" {
		catsBase = "Categories"
	}

	svc, err := newSheetsService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	year := time.Now().Year()
	return New(svc, spreadsheetID, yearPrefixedName(budgetBase, year), yearPrefixedName(catsBase, year)), nil
}

// newSheetsService initializes a Sheets Service. A saved OAuth user token takes
// precedence over Service Account credentials. Extra options are appended
// after the credentials.
func newSheetsService(ctx context.Context, extra ...goption.ClientOption) (*gsheet.Service, error) {
	var opts []goption.ClientOption

	ts, err := oauthTokenSource(ctx)
	if err != nil {
		return nil, err
	}
	if ts != nil {
		slog.InfoContext(ctx, "Creating Google Sheets service with OAuth user token",
			"scope", gsheet.SpreadsheetsScope)
		opts = append(opts, goption.WithTokenSource(ts))
	} else {
		credentialsJSON, err := serviceAccountCredentials()
		if err != nil {
			return nil, err
		}
		slog.InfoContext(ctx, "Creating Google Sheets service with Service Account",
			"credentials_size", len(credentialsJSON),
			"scope", gsheet.SpreadsheetsScope)
		opts = append(opts,
			goption.WithCredentialsJSON(credentialsJSON),
			goption.WithScopes(gsheet.SpreadsheetsScope))
	}

	service, err := gsheet.NewService(ctx, append(opts, extra...)...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

func serviceAccountCredentials() ([]byte, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	switch {
	case serviceAccountJSON != "":
		return []byte(serviceAccountJSON), nil
	case serviceAccountFile != "":
		b, err := os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

// WriteBudgets replaces the budget sheet contents.
func (c *Client) WriteBudgets(ctx context.Context, budgets []core.CategoryBudget) error {
	return c.replace(ctx, c.budgetSheet, "A:F", ports.BudgetRows(budgets))
}

// WriteCategories replaces the categories sheet contents.
func (c *Client) WriteCategories(ctx context.Context, aggregates []core.CategoryAggregate) error {
	return c.replace(ctx, c.categoriesSheet, "A:C", ports.CategoryRows(aggregates))
}

// replace clears cols on sheetName and writes rows from A1. Clearing first
// drops rows left over from a longer previous table.
func (c *Client) replace(ctx context.Context, sheetName, cols string, rows [][]any) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	clearRange := fmt.Sprintf("%s!%s", sheetName, cols)
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, clearRange, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear %s: %w", clearRange, err)
	}

	rng := fmt.Sprintf("%s!A1", sheetName)
	vr := &gsheet.ValueRange{Values: rows}
	if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption(valueInputOption).Context(ctx).Do(); err != nil {
		return fmt.Errorf("update %s: %w", rng, err)
	}

	slog.DebugContext(ctx, "Sheet updated", "range", rng, "rows", len(rows))
	return nil
}

// yearPrefixedName returns "<year> <base>" unless base already starts with a 4-digit year.
func yearPrefixedName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return base
	}
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}
