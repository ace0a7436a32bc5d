package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"bilancio/internal/core"
)

type Config struct {
	// Store backend
	DataBackend  string
	SQLiteDBPath string

	// Account hierarchy and opening balances
	AccountsFile string

	// Aggregation
	LenientAccounts bool

	// Reconciliation
	Epsilon         string
	SnapshotSource  string
	SnapshotCSVPath string

	// Google Sheets ground truth
	GoogleSpreadsheetID string
	GoogleBalancesSheet string

	// AMQP review workflow
	AMQPURL         string
	AMQPExchange    string
	ReviewQueue     string
	ResolutionQueue string
}

func Load() *Config {
	return &Config{
		DataBackend:  getEnv("DATA_BACKEND", "sqlite"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/bilancio.db"),

		AccountsFile: getEnv("ACCOUNTS_FILE", "./data/accounts.json"),

		// Strict by default: an undeclared account is a data-entry error
		// to surface, not an account to invent.
		LenientAccounts: getEnvBool("LENIENT_ACCOUNTS", false),

		Epsilon:         getEnv("RECONCILE_EPSILON", "0.01"),
		SnapshotSource:  getEnv("SNAPSHOT_SOURCE", "none"),
		SnapshotCSVPath: getEnv("SNAPSHOT_CSV_PATH", ""),

		GoogleSpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleBalancesSheet: getEnv("GOOGLE_BALANCES_SHEET_NAME", "Balances"),

		AMQPURL:         getEnv("AMQP_URL", ""),
		AMQPExchange:    getEnv("AMQP_EXCHANGE", "bilancio"),
		ReviewQueue:     getEnv("AMQP_REVIEW_QUEUE", "duplicate_reviews"),
		ResolutionQueue: getEnv("AMQP_RESOLUTION_QUEUE", "duplicate_resolutions"),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	validBackends := []string{"memory", "sqlite"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if c.DataBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	if c.AccountsFile == "" {
		errors = append(errors, "accounts file path cannot be empty")
	}

	if _, err := core.ParseMoney(c.Epsilon); err != nil {
		errors = append(errors, fmt.Sprintf("invalid reconcile epsilon '%s': must be a decimal amount", c.Epsilon))
	}

	validSources := []string{"none", "csv", "sheets"}
	isValidSource := false
	for _, source := range validSources {
		if c.SnapshotSource == source {
			isValidSource = true
			break
		}
	}
	if !isValidSource {
		errors = append(errors, fmt.Sprintf("invalid snapshot source '%s': must be one of %v", c.SnapshotSource, validSources))
	}

	if c.SnapshotSource == "csv" && c.SnapshotCSVPath == "" {
		errors = append(errors, "SNAPSHOT_CSV_PATH is required when snapshot source is csv")
	}

	if c.SnapshotSource == "sheets" && c.GoogleSpreadsheetID == "" {
		errors = append(errors, "Google Spreadsheet ID is required when snapshot source is sheets")
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.ReviewQueue == "" || c.ResolutionQueue == "" {
			errors = append(errors, "AMQP queue names cannot be empty when AMQP URL is provided")
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// EpsilonMoney returns the parsed tolerance. Validate first.
func (c *Config) EpsilonMoney() core.Money {
	m, err := core.ParseMoney(c.Epsilon)
	if err != nil {
		return core.Zero
	}
	return m
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
