package main

import (
	"flag"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/BTreeMap/LeavePipe/internal/advisor"
	"github.com/BTreeMap/LeavePipe/internal/api"
	"github.com/BTreeMap/LeavePipe/internal/store"
	"github.com/BTreeMap/LeavePipe/internal/whatsapp"
	"github.com/joho/godotenv"
)

// Default configuration constants
const (
	// DefaultStateDir is the default directory for LeavePipe state data
	DefaultStateDir = "/var/lib/leavepipe"
	// DefaultDBFileName is the default SQLite database filename
	DefaultDBFileName = "leavepipe.db"
	// DefaultEmployeeDBFileName is the default SQLite employee directory filename
	DefaultEmployeeDBFileName = "employees.db"
)

func main() {
	// Initialize structured logger
	initializeLogger()

	// Load environment configuration
	config := loadEnvironmentConfig()

	// Parse command line flags
	flags := parseCommandLineFlags(config)

	// Ensure required directories exist
	if err := ensureDirectoriesExist(flags); err != nil {
		slog.Error("Failed to create required directories", "error", err)
		os.Exit(1)
	}

	// Build module options
	waOpts := buildWhatsAppOptions(flags)
	storeOpts := buildStoreOptions(flags)
	advisorOpts := buildAdvisorOptions(flags)
	apiOpts := buildAPIOptions(flags)

	// Start the service
	slog.Info("Bootstrapping LeavePipe with configured modules")
	slog.Debug("Module options counts", "whatsapp", len(waOpts), "store", len(storeOpts), "advisor", len(advisorOpts), "api", len(apiOpts))
	slog.Debug("Final configuration", "state_dir", *flags.stateDir, "dsn_set", *flags.dbDSN != "", "api_addr", *flags.apiAddr)
	if err := api.Run(waOpts, storeOpts, advisorOpts, apiOpts); err != nil {
		slog.Error("LeavePipe failed to run", "error", err)
		os.Exit(1)
	}
	slog.Info("LeavePipe exited successfully")
}

// Config holds environment configuration
type Config struct {
	WhatsAppDSN  string
	DatabaseURL  string
	EmployeeDSN  string
	StateDir     string
	ManagerPhone string
	OpenAIKey    string
	APIAddr      string
}

// Flags holds command line flag values
type Flags struct {
	qrOutput     *string
	numeric      *bool
	stateDir     *string
	dbDSN        *string
	employeeDSN  *string
	managerPhone *string
	openaiKey    *string
	apiAddr      *string
}

// initializeLogger sets up structured logging with debug level
func initializeLogger() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	slog.SetDefault(logger)
}

// loadEnvironmentConfig loads configuration from environment variables and .env file
func loadEnvironmentConfig() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	} else {
		slog.Debug("successfully loaded .env file")
	}

	config := Config{
		WhatsAppDSN:  os.Getenv("WHATSAPP_DB_DSN"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		EmployeeDSN:  os.Getenv("EMPLOYEE_DB_DSN"),
		StateDir:     os.Getenv("LEAVEPIPE_STATE_DIR"),
		ManagerPhone: os.Getenv("MANAGER_PHONE"),
		OpenAIKey:    os.Getenv("OPENAI_API_KEY"),
		APIAddr:      os.Getenv("API_ADDR"),
	}

	// Set default state directory if not specified
	if config.StateDir == "" {
		config.StateDir = DefaultStateDir
		slog.Debug("No LEAVEPIPE_STATE_DIR set, using default", "default_state_dir", config.StateDir)
	} else {
		slog.Debug("LEAVEPIPE_STATE_DIR found in environment", "state_dir", config.StateDir)
	}

	// Default to WhatsApp DSN if specific not set
	if config.WhatsAppDSN == "" {
		config.WhatsAppDSN = config.DatabaseURL
		if config.DatabaseURL != "" {
			slog.Debug("Using DATABASE_URL as WHATSAPP_DB_DSN", "dsn_set", true)
		}
	}

	// If no database URL is provided, default to SQLite in the state directory
	if config.WhatsAppDSN == "" {
		config.WhatsAppDSN = filepath.Join(config.StateDir, DefaultDBFileName)
		slog.Debug("No database DSN provided, defaulting to SQLite", "sqlite_path", config.WhatsAppDSN)
	}

	// The employee directory defaults to its own SQLite file in the state directory
	if config.EmployeeDSN == "" {
		config.EmployeeDSN = filepath.Join(config.StateDir, DefaultEmployeeDBFileName)
		slog.Debug("No employee DSN provided, defaulting to SQLite", "sqlite_path", config.EmployeeDSN)
	}

	slog.Debug("environment variables loaded",
		"WHATSAPP_DB_DSN_SET", config.WhatsAppDSN != "",
		"DATABASE_URL_SET", config.DatabaseURL != "",
		"EMPLOYEE_DB_DSN_SET", config.EmployeeDSN != "",
		"LEAVEPIPE_STATE_DIR", config.StateDir,
		"MANAGER_PHONE_SET", config.ManagerPhone != "",
		"OPENAI_API_KEY_SET", config.OpenAIKey != "",
		"API_ADDR", config.APIAddr)

	return config
}

// parseCommandLineFlags parses command line arguments with environment defaults
func parseCommandLineFlags(config Config) Flags {
	flags := Flags{
		qrOutput:     flag.String("qr-output", "", "path to write login QR code"),
		numeric:      flag.Bool("numeric-code", false, "use numeric login code instead of QR code"),
		stateDir:     flag.String("state-dir", config.StateDir, "state directory for LeavePipe data (overrides $LEAVEPIPE_STATE_DIR)"),
		dbDSN:        flag.String("db-dsn", config.WhatsAppDSN, "database DSN for WhatsApp and workflow store (overrides $WHATSAPP_DB_DSN or $DATABASE_URL)"),
		employeeDSN:  flag.String("employee-db", config.EmployeeDSN, "SQLite DSN for the employee directory (overrides $EMPLOYEE_DB_DSN)"),
		managerPhone: flag.String("manager-phone", config.ManagerPhone, "WhatsApp number of the designated manager (overrides $MANAGER_PHONE)"),
		openaiKey:    flag.String("openai-api-key", config.OpenAIKey, "OpenAI API key for advisory analysis (overrides $OPENAI_API_KEY)"),
		apiAddr:      flag.String("api-addr", config.APIAddr, "API server address (overrides $API_ADDR)"),
	}
	flag.Parse()

	if *flags.managerPhone == "" {
		slog.Warn("No manager phone configured; manager commands will be unreachable")
	}

	return flags
}

// ensureDirectoriesExist creates the state directory when the databases live in it
func ensureDirectoriesExist(flags Flags) error {
	if store.DetectDSNType(*flags.dbDSN) == "postgres" {
		return nil
	}
	slog.Debug("Ensuring state directory exists", "state_dir", *flags.stateDir)
	return os.MkdirAll(*flags.stateDir, 0o755)
}

// buildWhatsAppOptions builds the Whatsmeow client options
func buildWhatsAppOptions(flags Flags) []whatsapp.Option {
	var waOpts []whatsapp.Option
	if *flags.dbDSN != "" {
		waOpts = append(waOpts, whatsapp.WithDBDSN(*flags.dbDSN))
	}
	if *flags.qrOutput != "" {
		waOpts = append(waOpts, whatsapp.WithQRCodeOutput(*flags.qrOutput))
	}
	if *flags.numeric {
		waOpts = append(waOpts, whatsapp.WithNumericCode())
	}
	return waOpts
}

// buildStoreOptions builds the workflow store options
func buildStoreOptions(flags Flags) []store.Option {
	var storeOpts []store.Option
	if *flags.dbDSN == "" {
		return storeOpts
	}
	if store.DetectDSNType(*flags.dbDSN) == "postgres" {
		storeOpts = append(storeOpts, store.WithPostgresDSN(*flags.dbDSN))
	} else {
		storeOpts = append(storeOpts, store.WithSQLiteDSN(*flags.dbDSN))
	}
	return storeOpts
}

// buildAdvisorOptions builds the advisory analyzer options
func buildAdvisorOptions(flags Flags) []advisor.Option {
	var advisorOpts []advisor.Option
	if *flags.openaiKey != "" {
		advisorOpts = append(advisorOpts, advisor.WithAPIKey(*flags.openaiKey))
	}
	return advisorOpts
}

// buildAPIOptions builds the API server options
func buildAPIOptions(flags Flags) []api.Option {
	var apiOpts []api.Option
	if *flags.apiAddr != "" {
		apiOpts = append(apiOpts, api.WithAddr(*flags.apiAddr))
	}
	if *flags.managerPhone != "" {
		apiOpts = append(apiOpts, api.WithManagerPhone(*flags.managerPhone))
	}
	if *flags.employeeDSN != "" {
		apiOpts = append(apiOpts, api.WithDirectoryDSN(*flags.employeeDSN))
	}
	return apiOpts
}
