package app

import (
	"os"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestLoadConfig(t *testing.T) {
	// Save original environment
	originalToken := os.Getenv("COC_API_TOKEN")
	originalClanTag := os.Getenv("CLAN_TAG")
	originalCredentialsFile := os.Getenv("GOOGLE_CREDENTIALS_FILE")
	originalDataDir := os.Getenv("DATA_DIR")
	originalAttacks := os.Getenv("CWL_ATTACKS_PER_ROUND")

	// Cleanup function
	defer func() {
		setOrUnset("COC_API_TOKEN", originalToken)
		setOrUnset("CLAN_TAG", originalClanTag)
		setOrUnset("GOOGLE_CREDENTIALS_FILE", originalCredentialsFile)
		setOrUnset("DATA_DIR", originalDataDir)
		setOrUnset("CWL_ATTACKS_PER_ROUND", originalAttacks)
	}()

	t.Run("ValidConfiguration", func(t *testing.T) {
		os.Setenv("COC_API_TOKEN", "test_token")
		os.Setenv("CLAN_TAG", "#2PP")
		os.Setenv("GOOGLE_CREDENTIALS_FILE", "test_credentials.json")
		os.Setenv("CWL_ATTACKS_PER_ROUND", "2")

		config, err := LoadConfig()

		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}

		if config.CoCAPIToken != "test_token" {
			t.Errorf("Expected CoCAPIToken to be 'test_token', got '%s'", config.CoCAPIToken)
		}

		if config.ClanTag != "#2PP" {
			t.Errorf("Expected ClanTag to be '#2PP', got '%s'", config.ClanTag)
		}

		if config.CredentialsFile != "test_credentials.json" {
			t.Errorf("Expected CredentialsFile to be 'test_credentials.json', got '%s'", config.CredentialsFile)
		}

		if config.CWLAttacksPerRound != 2 {
			t.Errorf("Expected CWLAttacksPerRound to be 2, got %d", config.CWLAttacksPerRound)
		}
	})

	t.Run("Defaults", func(t *testing.T) {
		os.Setenv("COC_API_TOKEN", "test_token")
		os.Setenv("CLAN_TAG", "#2PP")
		os.Unsetenv("GOOGLE_CREDENTIALS_FILE")
		os.Unsetenv("DATA_DIR")
		os.Unsetenv("CWL_ATTACKS_PER_ROUND")

		config, err := LoadConfig()

		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}

		if config.CredentialsFile != "credentials.json" {
			t.Errorf("Expected CredentialsFile to default to 'credentials.json', got '%s'", config.CredentialsFile)
		}

		if config.DataDir != "data" {
			t.Errorf("Expected DataDir to default to 'data', got '%s'", config.DataDir)
		}

		if config.CWLAttacksPerRound != 1 {
			t.Errorf("Expected CWLAttacksPerRound to default to 1, got %d", config.CWLAttacksPerRound)
		}
	})

	t.Run("MissingToken", func(t *testing.T) {
		os.Unsetenv("COC_API_TOKEN")
		os.Setenv("CLAN_TAG", "#2PP")

		_, err := LoadConfig()

		if err == nil {
			t.Fatal("Expected error for missing COC_API_TOKEN, got nil")
		}

		if !strings.Contains(err.Error(), "COC_API_TOKEN") {
			t.Errorf("Expected error message to contain 'COC_API_TOKEN', got '%s'", err.Error())
		}
	})

	t.Run("MissingClanTag", func(t *testing.T) {
		os.Setenv("COC_API_TOKEN", "test_token")
		os.Unsetenv("CLAN_TAG")

		_, err := LoadConfig()

		if err == nil {
			t.Fatal("Expected error for missing CLAN_TAG, got nil")
		}

		if !strings.Contains(err.Error(), "CLAN_TAG") {
			t.Errorf("Expected error message to contain 'CLAN_TAG', got '%s'", err.Error())
		}
	})

	t.Run("InvalidAttacksPerRound", func(t *testing.T) {
		os.Setenv("COC_API_TOKEN", "test_token")
		os.Setenv("CLAN_TAG", "#2PP")
		os.Setenv("CWL_ATTACKS_PER_ROUND", "zero")

		_, err := LoadConfig()

		if err == nil {
			t.Fatal("Expected error for invalid CWL_ATTACKS_PER_ROUND, got nil")
		}

		if !strings.Contains(err.Error(), "CWL_ATTACKS_PER_ROUND") {
			t.Errorf("Expected error message to contain 'CWL_ATTACKS_PER_ROUND', got '%s'", err.Error())
		}
	})
}

func TestSetupEnvironment(t *testing.T) {
	// Save original environment
	originalENV := os.Getenv("ENV")
	originalLOGLEVEL := os.Getenv("LOGLEVEL")
	originalLevel := zerolog.GlobalLevel()

	// Cleanup function
	defer func() {
		setOrUnset("ENV", originalENV)
		setOrUnset("LOGLEVEL", originalLOGLEVEL)
		zerolog.SetGlobalLevel(originalLevel)
	}()

	testCases := []struct {
		name          string
		env           string
		logLevel      string
		expectedLevel zerolog.Level
	}{
		{"ProductionDebug", "production", "debug", zerolog.DebugLevel},
		{"ProductionInfo", "production", "info", zerolog.InfoLevel},
		{"ProductionWarn", "production", "warn", zerolog.WarnLevel},
		{"ProductionWarning", "production", "warning", zerolog.WarnLevel},
		{"ProductionError", "production", "error", zerolog.ErrorLevel},
		{"ProductionFatal", "production", "fatal", zerolog.FatalLevel},
		{"ProductionPanic", "production", "panic", zerolog.PanicLevel},
		{"ProductionDisabled", "production", "disabled", zerolog.Disabled},
		{"ProductionDefault", "production", "", zerolog.WarnLevel},
		{"ProductionUnknown", "production", "unknown", zerolog.InfoLevel},
		{"DevelopmentDebug", "development", "debug", zerolog.DebugLevel},
		{"DevelopmentDefault", "development", "", zerolog.InfoLevel},
		{"DevelopmentUnknown", "", "unknown", zerolog.InfoLevel},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			setOrUnset("ENV", tc.env)
			setOrUnset("LOGLEVEL", tc.logLevel)

			SetupEnvironment()

			if zerolog.GlobalLevel() != tc.expectedLevel {
				t.Errorf("Expected log level %v, got %v", tc.expectedLevel, zerolog.GlobalLevel())
			}
		})
	}
}

func TestGetRequiredEnv(t *testing.T) {
	// Save original environment
	originalValue := os.Getenv("TEST_REQUIRED_VAR")

	// Cleanup function
	defer func() {
		setOrUnset("TEST_REQUIRED_VAR", originalValue)
	}()

	t.Run("ExistingVariable", func(t *testing.T) {
		os.Setenv("TEST_REQUIRED_VAR", "test_value")

		value := GetRequiredEnv("TEST_REQUIRED_VAR")

		if value != "test_value" {
			t.Errorf("Expected 'test_value', got '%s'", value)
		}
	})

	t.Run("MissingVariable", func(t *testing.T) {
		os.Unsetenv("TEST_REQUIRED_VAR")

		// This function calls log.Fatal() which would exit the process
		// We can't easily test this without complex setup, so we skip it
		t.Skip("Cannot test log.Fatal() without complex test setup")
	})
}

// Helper function to set environment variable or unset if value is empty
func setOrUnset(key, value string) {
	if value == "" {
		os.Unsetenv(key)
	} else {
		os.Setenv(key, value)
	}
}
