package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"
	"time"

	"expensek/internal/cache"
	"expensek/internal/core"
	ports "expensek/internal/sheets"

	gsheet "google.golang.org/api/sheets/v4"
)

const categoriesCacheKey = "categories"

// Options configure the spreadsheet layout and credentials.
type Options struct {
	SpreadsheetID      string
	TransactionsSheet  string
	CategoriesSheet    string
	ServiceAccountJSON string
	ServiceAccountFile string

	// OAuthTokenFile switches to user credentials produced by oauth-init.
	OAuthTokenFile  string
	OAuthClientFile string
	OAuthClientJSON string

	CategoriesTTL time.Duration
}

type Client struct {
	svc               *gsheet.Service
	spreadsheetID     string
	transactionsSheet string
	categoriesSheet   string
	categories        *cache.LRUCache[[]core.Category]
}

var (
	_ ports.TransactionLister       = (*Client)(nil)
	_ ports.RecentTransactionLister = (*Client)(nil)
	_ ports.TransactionWriter       = (*Client)(nil)
	_ ports.CategoryReader          = (*Client)(nil)
)

// New creates a Sheets client authenticated with a service account, or with
// a saved OAuth user token when OAuthTokenFile is set.
// Sheet names default to "Transactions" and "Categories".
func New(ctx context.Context, opts Options) (*Client, error) {
	opts = opts.withDefaults()
	if opts.SpreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	auth, err := clientOptions(ctx, opts)
	if err != nil {
		return nil, err
	}
	svc, err := gsheet.NewService(ctx, auth...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	slog.InfoContext(ctx, "Google Sheets service created",
		"spreadsheet_id", opts.SpreadsheetID,
		"transactions_sheet", opts.TransactionsSheet,
		"categories_sheet", opts.CategoriesSheet)
	return newClient(svc, opts), nil
}

func newClient(svc *gsheet.Service, opts Options) *Client {
	return &Client{
		svc:               svc,
		spreadsheetID:     opts.SpreadsheetID,
		transactionsSheet: opts.TransactionsSheet,
		categoriesSheet:   opts.CategoriesSheet,
		categories:        cache.NewLRUCache[[]core.Category](1, opts.CategoriesTTL),
	}
}

func (o Options) withDefaults() Options {
	o.SpreadsheetID = strings.TrimSpace(o.SpreadsheetID)
	if strings.TrimSpace(o.TransactionsSheet) == "" {
		o.TransactionsSheet = "Transactions"
	}
	if strings.TrimSpace(o.CategoriesSheet) == "" {
		o.CategoriesSheet = "Categories"
	}
	if o.CategoriesTTL <= 0 {
		o.CategoriesTTL = 5 * time.Minute
	}
	return o
}

func loadCredentials(opts Options) ([]byte, error) {
	inline := strings.TrimSpace(opts.ServiceAccountJSON)
	file := strings.TrimSpace(opts.ServiceAccountFile)
	if inline == "" && file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	switch {
	case inline != "":
		return []byte(inline), nil
	case file != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

// ListCategories reads the categories sheet, serving from cache while fresh.
func (c *Client) ListCategories(ctx context.Context) ([]core.Category, error) {
	if cats, ok := c.categories.Get(categoriesCacheKey); ok {
		return cats, nil
	}
	values, err := c.read(ctx, c.categoriesSheet, "A:D")
	if err != nil {
		return nil, fmt.Errorf("failed to read categories: %w", err)
	}
	cats := parseCategories(values)
	c.categories.Set(categoriesCacheKey, cats)
	return cats, nil
}

// ListTransactions returns every transaction row in sheet order.
func (c *Client) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	cats, err := c.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	values, err := c.read(ctx, c.transactionsSheet, "A:E")
	if err != nil {
		return nil, fmt.Errorf("failed to read transactions: %w", err)
	}
	return parseTransactions(values, cats), nil
}

// ListRecentTransactions has no server-side ordering to lean on, so it
// sorts the full sheet locally.
func (c *Client) ListRecentTransactions(ctx context.Context, limit int) ([]core.Transaction, error) {
	txs, err := c.ListTransactions(ctx)
	if err != nil {
		return nil, err
	}
	return newestFirst(txs, limit), nil
}

// AppendTransaction appends a row to the transactions sheet. The id is the
// 1-based data row index.
func (c *Client) AppendTransaction(ctx context.Context, t core.Transaction) (int64, error) {
	if err := t.Validate(); err != nil {
		return 0, fmt.Errorf("validation failed: %w", err)
	}
	if t.CategoryID != 0 {
		cats, err := c.ListCategories(ctx)
		if err != nil {
			return 0, err
		}
		if !slices.ContainsFunc(cats, func(cat core.Category) bool { return cat.ID == t.CategoryID }) {
			return 0, fmt.Errorf("category %d: %w", t.CategoryID, core.ErrUnknownCategory)
		}
	}
	existing, err := c.read(ctx, c.transactionsSheet, "A:A")
	if err != nil {
		return 0, fmt.Errorf("failed to get sheet dimensions for %s: %w", c.transactionsSheet, err)
	}
	id := int64(dataRows(existing) + 1)

	row := []any{id, core.Day(t.Date).Format("2006-01-02"), t.Amount, categoryCell(t.CategoryID), strings.TrimSpace(t.Note)}
	vr := &gsheet.ValueRange{Values: [][]any{row}}
	rng := fmt.Sprintf("%s!A:E", c.transactionsSheet)
	_, err = c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("failed to append to sheet %s: %w", c.transactionsSheet, err)
	}
	slog.InfoContext(ctx, "Transaction appended to sheet", "id", id, "sheet", c.transactionsSheet)
	return id, nil
}

func (c *Client) read(ctx context.Context, sheet, cols string) ([][]interface{}, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!%s", sheet, cols)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	return resp.Values, nil
}

func categoryCell(id int64) any {
	if id == 0 {
		return ""
	}
	return id
}

// Cleaner exposes the category cache for periodic sweeping.
func (c *Client) Cleaner() cache.Cleaner {
	return c.categories
}
