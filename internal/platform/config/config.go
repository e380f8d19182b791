package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr           string
	Environment    string
	LogLevel       string
	DatabaseURL    string
	AllowedOrigins []string
	RequestTimeout time.Duration
	MaxBodyBytes   int64

	Payment Payment
	Export  Export
	Sheets  Sheets
}

// Payment configures the UPI payment reference rendered for "Pay Now" registrations.
type Payment struct {
	PayeeID  string
	Currency string
	QRSize   int
}

type Export struct {
	Location *time.Location
}

// Sheets configures the optional Google Sheets mirror. The mirror is
// disabled unless both fields are set.
type Sheets struct {
	SpreadsheetID   string
	CredentialsPath string
	Tab             string
}

func (s Sheets) Enabled() bool {
	return s.SpreadsheetID != "" && s.CredentialsPath != ""
}

const (
	DefaultAddr           = ":5000"
	DefaultPayeeID        = "regdesk@upi"
	DefaultCurrency       = "INR"
	DefaultQRSize         = 256
	DefaultSheetsTab      = "Registrants"
	DefaultRequestTimeout = 30 * time.Second
	DefaultMaxBodyBytes   = 64 * 1024
)

// Load reads .env files (missing files are ignored) and then builds the
// config from the process environment. Existing env vars are not overridden.
func Load(files ...string) (Server, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
			return Server{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return FromEnv()
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	addr := os.Getenv("REGDESK_ADDR")
	if addr == "" {
		if port := os.Getenv("PORT"); port != "" {
			addr = ":" + port
		} else {
			addr = DefaultAddr
		}
	}

	timeout, err := durationEnv("REQUEST_TIMEOUT", DefaultRequestTimeout)
	if err != nil {
		return Server{}, err
	}
	maxBody, err := intEnv("MAX_BODY_BYTES", DefaultMaxBodyBytes)
	if err != nil {
		return Server{}, err
	}
	qrSize, err := intEnv("PAYMENT_QR_SIZE", DefaultQRSize)
	if err != nil {
		return Server{}, err
	}

	loc := time.UTC
	if tz := os.Getenv("EXPORT_TIMEZONE"); tz != "" {
		loc, err = time.LoadLocation(tz)
		if err != nil {
			return Server{}, fmt.Errorf("EXPORT_TIMEZONE: %w", err)
		}
	}

	return Server{
		Addr:           addr,
		Environment:    stringEnv("ENVIRONMENT", "development"),
		LogLevel:       stringEnv("LOG_LEVEL", "info"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		AllowedOrigins: listEnv("CORS_ALLOWED_ORIGINS", []string{"*"}),
		RequestTimeout: timeout,
		MaxBodyBytes:   int64(maxBody),
		Payment: Payment{
			PayeeID:  stringEnv("PAYMENT_PAYEE_ID", DefaultPayeeID),
			Currency: stringEnv("PAYMENT_CURRENCY", DefaultCurrency),
			QRSize:   qrSize,
		},
		Export: Export{Location: loc},
		Sheets: Sheets{
			SpreadsheetID:   os.Getenv("GOOGLE_SHEETS_SPREADSHEET_ID"),
			CredentialsPath: os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"),
			Tab:             stringEnv("GOOGLE_SHEETS_TAB", DefaultSheetsTab),
		},
	}, nil
}

func stringEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, raw)
	}
	return v, nil
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration, got %q", key, raw)
	}
	return d, nil
}

func listEnv(key string, fallback []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
