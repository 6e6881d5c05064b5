package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultOptions(t *testing.T) {
	opts := GetDefaultOptions()

	t.Logf(`Config
		Host: %s
		Port: %d
		DSN: %s
		LogLevel: %s
		Data: %s
		LoanPeriodDays: %d
		`, opts.Host, opts.Port, opts.DSN, opts.LogLevel, opts.Data, opts.LoanPeriodDays)

	if opts.LoanPeriodDays != defaultLoanPeriodDays {
		t.Errorf("LoanPeriodDays not set")
	}
	if opts.MaxActiveLoans != defaultMaxActiveLoans {
		t.Errorf("MaxActiveLoans not set")
	}
	if opts.Port != defaultPort {
		t.Errorf("Port not set")
	}
}

func TestLoadConfigFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "config_test.toml")
	content := `
host = "127.0.0.1"
port = 2333
log_file = "test.log"
log_level = "debug"
loan_period_days = 14
max_active_loans = 3
`
	if err := os.WriteFile(file, []byte(content), 0644); err != nil {
		t.Fatalf("Error writing config file: %s", err)
	}

	GetDefaultOptions()
	opts, err := ParseFile(file)
	if err != nil {
		t.Fatalf("Error loading config: %s", err)
	}
	if opts.Host != "127.0.0.1" {
		t.Errorf("Host not set")
	}
	if opts.LogFile != "test.log" {
		t.Errorf("LogFile not set")
	}
	if opts.Port != 2333 {
		t.Errorf("Port not set")
	}
	if opts.LoanPeriodDays != 14 {
		t.Errorf("LoanPeriodDays not set")
	}
	if opts.MaxActiveLoans != 3 {
		t.Errorf("MaxActiveLoans not set")
	}
}

func TestCheckSupportedTypes(t *testing.T) {
	GetDefaultOptions()
	if !CheckSupportedTypes("application/epub+zip") {
		t.Errorf("epub should be supported by default")
	}
	if CheckSupportedTypes("application/pdf") {
		t.Errorf("pdf should not be supported by default")
	}
}
