package config // import "github.com/epustaka/epustaka/config"

const (
	defaultLogFile           = "epustaka.log"
	defaultLogLevel          = "info"
	defaultLogFileMaxSize    = 20
	defaultLogFileMaxBackups = 3
	defaultLogFileMaxAge     = 28
	defaultLogCompress       = false
	defaultPort              = 8080
	defaultHost              = "0.0.0.0"
	defaultData              = "/var/opt/epustaka"
	defaultDSN               = defaultData + "/epustaka.db"
	defaultWorkerPoolSize    = 5
	defaultMaxUploadSize     = 100
	defaultSupportedTypes    = "application/epub+zip"
	defaultLoanPeriodDays    = 7
	defaultMaxActiveLoans    = 5
	defaultOverdueSweep      = 60
)

var Opts *Options

// Options uses mapstructure tags because viper unmarshals through
// mitchellh/mapstructure, not encoding/json.
// see: https://pkg.go.dev/github.com/mitchellh/mapstructure#hdr-Field_Tags
type Options struct {
	// LogFile is the file to write logs to
	LogFile string `mapstructure:"log_file"`
	// LogLevel is the level of logging to show
	LogLevel string `mapstructure:"log_level"`
	// LogFileMaxSize is the maximum size of the log file before it is rotated
	LogFileMaxSize int `mapstructure:"log_file_max_size"`
	// LogFileMaxBackups is the maximum number of log files to keep
	LogFileMaxBackups int `mapstructure:"log_file_max_backups"`
	// LogFileMaxAge is the maximum number of days to keep a log file
	LogFileMaxAge int `mapstructure:"log_file_max_age"`
	// LogCompress is whether or not to compress the log files
	LogCompress bool `mapstructure:"log_compress"`
	// DSN is the path of the sqlite database
	DSN string `mapstructure:"dsn_uri"`
	// Port is the port to listen on
	Port int `mapstructure:"port"`
	// Host is the host to listen on
	Host string `mapstructure:"host"`
	// Data is the directory to store ebooks, covers and the database
	Data string `mapstructure:"data"`
	// WorkerPoolSize is the number of ingest workers
	WorkerPoolSize int `mapstructure:"worker_pool_size"`
	// MaxUploadSize is the maximum size of an upload, in MiB
	MaxUploadSize int64 `mapstructure:"max_upload_size"`
	// SupportedTypes is the accepted content types for ebook uploads
	SupportedTypes []string `mapstructure:"supported_types"`
	// LoanPeriodDays is the length of the lending window stamped on approval
	LoanPeriodDays int `mapstructure:"loan_period_days"`
	// MaxActiveLoans is the number of requested/active loans a member may hold
	MaxActiveLoans int `mapstructure:"max_active_loans"`
	// OverdueSweepInterval is the overdue scan interval, in minutes
	OverdueSweepInterval int `mapstructure:"overdue_sweep_interval"`
}

func GetDefaultOptions() *Options {
	Opts = &Options{
		LogFile:              defaultLogFile,
		LogLevel:             defaultLogLevel,
		LogFileMaxSize:       defaultLogFileMaxSize,
		LogFileMaxBackups:    defaultLogFileMaxBackups,
		LogFileMaxAge:        defaultLogFileMaxAge,
		LogCompress:          defaultLogCompress,
		DSN:                  defaultDSN,
		Port:                 defaultPort,
		Host:                 defaultHost,
		Data:                 defaultData,
		WorkerPoolSize:       defaultWorkerPoolSize,
		MaxUploadSize:        defaultMaxUploadSize,
		SupportedTypes:       []string{defaultSupportedTypes},
		LoanPeriodDays:       defaultLoanPeriodDays,
		MaxActiveLoans:       defaultMaxActiveLoans,
		OverdueSweepInterval: defaultOverdueSweep,
	}
	return Opts
}
