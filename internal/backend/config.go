package backend

import (
	"errors"
	"fmt"

	"expensek/internal/config"
)

// Config holds what the factory needs for each backend type.
type Config struct {
	Type Type

	DataDirectory string

	SQLiteDBPath string

	DatabaseURL string

	GoogleSpreadsheetID      string
	GoogleTransactionsSheet  string
	GoogleCategoriesSheet    string
	GoogleServiceAccountFile string
	GoogleServiceAccountJSON string
	GoogleOAuthClientFile    string
	GoogleOAuthClientJSON    string
	GoogleOAuthTokenFile     string
}

// FromAppConfig converts the application config to backend config.
func FromAppConfig(app *config.Config) (Config, error) {
	if app == nil {
		return Config{}, errors.New("app config is nil")
	}
	t := Type(app.DataBackend)
	if !t.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", app.DataBackend)
	}
	return Config{
		Type:                     t,
		DataDirectory:            app.DataDirectory,
		SQLiteDBPath:             app.SQLiteDBPath,
		DatabaseURL:              app.DatabaseURL,
		GoogleSpreadsheetID:      app.GoogleSpreadsheetID,
		GoogleTransactionsSheet:  app.GoogleTransactionsSheet,
		GoogleCategoriesSheet:    app.GoogleCategoriesSheet,
		GoogleServiceAccountFile: app.GoogleServiceAccountFile,
		GoogleServiceAccountJSON: app.GoogleServiceAccountJSON,
		GoogleOAuthClientFile:    app.GoogleOAuthClientFile,
		GoogleOAuthClientJSON:    app.GoogleOAuthClientJSON,
		GoogleOAuthTokenFile:     app.GoogleOAuthTokenFile,
	}, nil
}

func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}
	switch c.Type {
	case SQLiteBackend:
		if c.SQLiteDBPath == "" {
			return errors.New("SQLite database path is required for sqlite backend")
		}
	case PostgresBackend:
		if c.DatabaseURL == "" {
			return errors.New("database URL is required for postgres backend")
		}
	case SheetsBackend:
		if c.GoogleSpreadsheetID == "" {
			return errors.New("Google Spreadsheet ID is required for sheets backend")
		}
	}
	return nil
}

// RequireShared rejects backends that only live inside the current process.
// The worker reads what the server wrote, so it cannot use one.
func (c Config) RequireShared() error {
	if !c.Type.IsShared() {
		return fmt.Errorf("%s backend is private to one process; use sqlite, postgres or sheets", c.Type)
	}
	return nil
}
