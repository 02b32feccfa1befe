package app

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config holds application configuration
type Config struct {
	CoCAPIToken     string
	ClanTag         string
	SpreadsheetID   string
	CredentialsFile string
	DataDir         string
	DeployURL       string
	BQProject       string
	BQDataset       string

	// Attacks each member may use per CWL round. 1 for the large
	// brackets, 2 for the smaller ones; supplied here rather than
	// derived from war data.
	CWLAttacksPerRound int

	UpdateInterval time.Duration
}

// SetupEnvironment loads .env file and configures zerolog output and log level.
func SetupEnvironment() {
	// Load .env file if it exists
	err := godotenv.Load()

	// Configure logging
	if os.Getenv("ENV") == "production" {
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
		log.Logger = log.Output(os.Stderr)
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	levelStr := strings.ToLower(os.Getenv("LOGLEVEL"))
	switch levelStr {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn", "warning":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	case "fatal":
		zerolog.SetGlobalLevel(zerolog.FatalLevel)
	case "panic":
		zerolog.SetGlobalLevel(zerolog.PanicLevel)
	case "disabled":
		zerolog.SetGlobalLevel(zerolog.Disabled)
	case "":
		// Default based on environment
		if os.Getenv("ENV") == "production" {
			zerolog.SetGlobalLevel(zerolog.WarnLevel)
		} else {
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
		}
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		log.Warn().Msgf("Unknown LOGLEVEL '%s', defaulting to info.", levelStr)
	}

	// wait until now to report on the .env file so we have the chance to set up logging first
	if err == nil {
		log.Debug().Msg("Loaded environment variables from .env file.")
	} else {
		log.Debug().Msg("No .env file found or error loading .env file; proceeding with existing environment variables.")
	}
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	token := os.Getenv("COC_API_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("COC_API_TOKEN environment variable is required")
	}

	clanTag := os.Getenv("CLAN_TAG")
	if clanTag == "" {
		return nil, fmt.Errorf("CLAN_TAG environment variable is required")
	}

	credentialsFile := os.Getenv("GOOGLE_CREDENTIALS_FILE")
	if credentialsFile == "" {
		credentialsFile = "credentials.json"
	}

	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "data"
	}

	attacksPerRound := 1
	if raw := os.Getenv("CWL_ATTACKS_PER_ROUND"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return nil, fmt.Errorf("CWL_ATTACKS_PER_ROUND must be a positive integer, got %q", raw)
		}
		attacksPerRound = parsed
	}

	return &Config{
		CoCAPIToken:        token,
		ClanTag:            clanTag,
		SpreadsheetID:      os.Getenv("SPREADSHEET_ID"),
		CredentialsFile:    credentialsFile,
		DataDir:            dataDir,
		DeployURL:          os.Getenv("DEPLOY_URL"),
		BQProject:          os.Getenv("BQ_PROJECT"),
		BQDataset:          os.Getenv("BQ_DATASET"),
		CWLAttacksPerRound: attacksPerRound,
	}, nil
}

// GetRequiredEnv gets an environment variable or panics if not found
func GetRequiredEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		log.Fatal().Str("key", key).Msg("Required environment variable not set")
	}
	return value
}
