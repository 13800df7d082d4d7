// Package config resolves the dhisync configuration directory and
// loads its resources: the report mapping catalog, the known-report
// list, the schema description used for prompting, and the manual
// query templates. Resources are loaded once at startup and treated
// as immutable; a change requires a restart.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	dbFileName      = "dhisync.db"
	mappingFileName = "mapping.yaml"
	reportsFileName = "reports.txt"
	schemaFileName  = "schema.yaml"
	queriesDirName  = "queries"
)

// Config holds resolved paths for the dhisync directory and database.
type Config struct {
	Dir       string // resolved .dhisync directory path
	DBPath    string // full path to dhisync.db
	EnvVarSet bool   // whether DHISYNC_PATH was used
}

// Resolve returns the current configuration by checking DHISYNC_PATH
// first, then falling back to $PWD/.dhisync.
func Resolve() (*Config, error) {
	var dir string
	var envVarSet bool

	if envPath := os.Getenv("DHISYNC_PATH"); envPath != "" {
		dir = envPath
		envVarSet = true
	} else {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(cwd, ".dhisync")
	}

	return &Config{
		Dir:       dir,
		DBPath:    filepath.Join(dir, dbFileName),
		EnvVarSet: envVarSet,
	}, nil
}

// Exists checks if the dhisync directory and DB file both exist.
// It returns an error for non-existence failures (e.g. permission errors).
func (c *Config) Exists() (bool, error) {
	if _, err := os.Stat(c.Dir); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if _, err := os.Stat(c.DBPath); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// MappingPath returns the path to the report mapping catalog.
func (c *Config) MappingPath() string {
	return filepath.Join(c.Dir, mappingFileName)
}

// ReportsPath returns the path to the known-report list.
func (c *Config) ReportsPath() string {
	return filepath.Join(c.Dir, reportsFileName)
}

// SchemaPath returns the path to the schema description used when
// building generative prompts.
func (c *Config) SchemaPath() string {
	return filepath.Join(c.Dir, schemaFileName)
}

// QueriesDir returns the directory holding manual query templates,
// one <code>.sql file per catalog code.
func (c *Config) QueriesDir() string {
	return filepath.Join(c.Dir, queriesDirName)
}

// QueryTemplatePath returns the template file path for a manual
// report code.
func (c *Config) QueryTemplatePath(code string) string {
	return filepath.Join(c.QueriesDir(), code+".sql")
}

// LoadSchema reads the schema description. A missing file is not an
// error; generative prompts simply go out without schema context.
func (c *Config) LoadSchema() string {
	data, err := os.ReadFile(c.SchemaPath())
	if err != nil {
		return ""
	}
	return string(data)
}

// LoadReportNames reads the newline-delimited report list. Blank
// lines and lines starting with # are skipped. A missing file yields
// an empty list.
func (c *Config) LoadReportNames() ([]string, error) {
	data, err := os.ReadFile(c.ReportsPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading report list: %w", err)
	}

	var names []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		names = append(names, line)
	}
	return names, nil
}

// Credentials holds the environment-supplied secrets and endpoints for
// the external services. Empty fields mean the corresponding path is
// unavailable; the dispatcher skips the generative step without a
// GeminiAPIKey, for instance.
type Credentials struct {
	GeminiAPIKey string
	DHIS2BaseURL string
	DHIS2User    string
	DHIS2Pass    string

	OpenMRSHost string
	OpenMRSPort string
	OpenMRSName string
	OpenMRSUser string
	OpenMRSPass string
}

// LoadCredentials reads service credentials from the environment.
func LoadCredentials() Credentials {
	return Credentials{
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		DHIS2BaseURL: os.Getenv("DHIS2_BASE_URL"),
		DHIS2User:    os.Getenv("DHIS2_USER"),
		DHIS2Pass:    os.Getenv("DHIS2_PASS"),
		OpenMRSHost:  os.Getenv("OPENMRS_DB_HOST"),
		OpenMRSPort:  os.Getenv("OPENMRS_DB_PORT"),
		OpenMRSName:  os.Getenv("OPENMRS_DB_NAME"),
		OpenMRSUser:  os.Getenv("OPENMRS_DB_USER"),
		OpenMRSPass:  os.Getenv("OPENMRS_DB_PASS"),
	}
}
