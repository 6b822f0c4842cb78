// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Ledger backends.
const (
	LedgerSheets   = "sheets"
	LedgerPostgres = "postgres"
)

// Archive backends.
const (
	ArchiveDrive = "drive"
	ArchiveLocal = "local"
	ArchiveNone  = "none"
)

// Defaults applied by MergeWithDefaults.
const (
	DefaultSheetName          = "AIJobApply"
	DefaultWorksheet          = "Sheet1"
	DefaultLedgerTable        = "leads"
	DefaultSMTPHost           = "smtp.gmail.com"
	DefaultSMTPPort           = 587
	DefaultNoteLimit          = 300
	DefaultShortenAttempts    = 3
	DefaultRequestDelay       = "5s"
	DefaultArchiveFolder      = "job_applications"
	DefaultLogLevel           = "info"
	DefaultLogFormat          = "console"
	DefaultChallengeTimeout   = "2m"
	defaultArchiveBackendName = ArchiveDrive
)

// ErrMissingSetting is wrapped by every error about a required value that was not provided.
var ErrMissingSetting = errors.New("missing required setting")

// Config represents the CLI configuration that can be loaded from a JSON or YAML file.
// All fields are optional in the file; missing values use defaults, flags or the environment.
type Config struct {
	// Ledger
	Ledger          string `json:"ledger,omitempty" yaml:"ledger,omitempty" validate:"omitempty,oneof=sheets postgres"`
	SpreadsheetID   string `json:"spreadsheet_id,omitempty" yaml:"spreadsheet_id,omitempty"`
	SheetName       string `json:"sheet_name,omitempty" yaml:"sheet_name,omitempty"` // Spreadsheet looked up by name when no id is set
	Worksheet       string `json:"worksheet,omitempty" yaml:"worksheet,omitempty"`
	CredentialsFile string `json:"credentials_file,omitempty" yaml:"credentials_file,omitempty"` // Google service account key
	DatabaseURL     string `json:"database_url,omitempty" yaml:"database_url,omitempty"`
	LedgerTable     string `json:"ledger_table,omitempty" yaml:"ledger_table,omitempty" validate:"omitempty,max=128"`

	// Archive
	Archive       string `json:"archive,omitempty" yaml:"archive,omitempty" validate:"omitempty,oneof=drive local none"`
	ArchiveFolder string `json:"archive_folder,omitempty" yaml:"archive_folder,omitempty"`

	// Channels
	UseEmail         bool   `json:"use_email,omitempty" yaml:"use_email,omitempty"`
	UseLinkedIn      bool   `json:"use_linkedin,omitempty" yaml:"use_linkedin,omitempty"`
	SMTPHost         string `json:"smtp_host,omitempty" yaml:"smtp_host,omitempty" validate:"omitempty,hostname"`
	SMTPPort         int    `json:"smtp_port,omitempty" yaml:"smtp_port,omitempty" validate:"omitempty,min=1,max=65535"`
	EmailAddress     string `json:"email_address,omitempty" yaml:"email_address,omitempty" validate:"required_if=UseEmail true,omitempty,email"`
	EmailPassword    string `json:"email_password,omitempty" yaml:"email_password,omitempty" validate:"required_if=UseEmail true"`
	SenderName       string `json:"sender_name,omitempty" yaml:"sender_name,omitempty"`
	LinkedInUsername string `json:"linkedin_username,omitempty" yaml:"linkedin_username,omitempty" validate:"required_if=UseLinkedIn true"`
	LinkedInPassword string `json:"linkedin_password,omitempty" yaml:"linkedin_password,omitempty" validate:"required_if=UseLinkedIn true"`
	Interactive      bool   `json:"interactive,omitempty" yaml:"interactive,omitempty"` // Show the browser and wait for login challenges
	ChromePath       string `json:"chrome_path,omitempty" yaml:"chrome_path,omitempty"`
	ChallengeTimeout string `json:"challenge_timeout,omitempty" yaml:"challenge_timeout,omitempty"`
	RequestDelay     string `json:"request_delay,omitempty" yaml:"request_delay,omitempty"` // e.g. "5s"

	// Discovery
	ExtractEmails  bool `json:"extract_emails,omitempty" yaml:"extract_emails,omitempty"`
	ScrapePostings bool `json:"scrape_postings,omitempty" yaml:"scrape_postings,omitempty"`
	UseBrowser     bool `json:"use_browser,omitempty" yaml:"use_browser,omitempty"` // Render thin posting pages in a headless browser

	// Content generation
	APIKey          string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	Model           string `json:"model,omitempty" yaml:"model,omitempty"` // Overrides the advanced tier model
	NoteLimit       int    `json:"note_limit,omitempty" yaml:"note_limit,omitempty" validate:"omitempty,min=20,max=3000"`
	ShortenAttempts int    `json:"shorten_attempts,omitempty" yaml:"shorten_attempts,omitempty" validate:"omitempty,min=1,max=10"`

	// Applicant material
	ApplicantName       string `json:"applicant_name,omitempty" yaml:"applicant_name,omitempty"`
	ProfessionalSummary string `json:"professional_summary,omitempty" yaml:"professional_summary,omitempty"`
	ResumeTemplate      string `json:"resume_template,omitempty" yaml:"resume_template,omitempty"`
	CoverLetterTemplate string `json:"cover_letter_template,omitempty" yaml:"cover_letter_template,omitempty"`
	EmailTemplate       string `json:"email_template,omitempty" yaml:"email_template,omitempty"`
	NoteTemplate        string `json:"note_template,omitempty" yaml:"note_template,omitempty"`

	// Logging
	LogLevel  string `json:"log_level,omitempty" yaml:"log_level,omitempty" validate:"omitempty,oneof=debug info warn warning error"`
	LogFormat string `json:"log_format,omitempty" yaml:"log_format,omitempty" validate:"omitempty,oneof=console json"`
	Verbose   bool   `json:"verbose,omitempty" yaml:"verbose,omitempty"` // Print detailed run summaries
}

// LoadConfig loads configuration from a JSON or YAML file, chosen by extension.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	case ".json", "":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q (use .json, .yaml or .yml)", filepath.Ext(path))
	}

	return &cfg, nil
}

// Validate checks that the configuration is complete and has valid values.
// It is called after defaults, flags and the environment have been applied.
func (c *Config) Validate() error {
	if err := newValidator().Struct(c); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return describeValidation(validationErrors)
		}
		return fmt.Errorf("config error: %w", err)
	}

	if err := c.ValidateLedger(); err != nil {
		return err
	}

	if c.Archive == ArchiveDrive && c.CredentialsFile == "" {
		return missing("credentials_file (drive archive)")
	}
	if c.APIKey == "" {
		return missing("api_key")
	}
	if c.ResumeTemplate == "" {
		return missing("resume_template")
	}
	if c.CoverLetterTemplate == "" {
		return missing("cover_letter_template")
	}

	for _, d := range []struct{ name, value string }{
		{"request_delay", c.RequestDelay},
		{"challenge_timeout", c.ChallengeTimeout},
	} {
		if d.value == "" {
			continue
		}
		if v, err := time.ParseDuration(d.value); err != nil || v < 0 {
			return fmt.Errorf("config error: '%s' must be a non-negative duration such as \"5s\"", d.name)
		}
	}

	// Validate file paths exist (if specified)
	for _, f := range []struct{ name, path string }{
		{"credentials file", c.CredentialsFile},
		{"resume template", c.ResumeTemplate},
		{"cover letter template", c.CoverLetterTemplate},
		{"email template", c.EmailTemplate},
		{"note template", c.NoteTemplate},
	} {
		if f.path == "" {
			continue
		}
		if _, err := os.Stat(f.path); os.IsNotExist(err) {
			return fmt.Errorf("config error: %s not found: %s", f.name, f.path)
		}
	}

	return nil
}

// ValidateLedger checks only the settings needed to open the ledger.
func (c *Config) ValidateLedger() error {
	switch c.Ledger {
	case LedgerSheets, "":
		if c.CredentialsFile == "" {
			return missing("credentials_file (sheets ledger)")
		}
		if c.SpreadsheetID == "" && c.SheetName == "" {
			return missing("spreadsheet_id or sheet_name")
		}
	case LedgerPostgres:
		if c.DatabaseURL == "" {
			return missing("database_url (postgres ledger)")
		}
	}

	return nil
}

func missing(what string) error {
	return fmt.Errorf("config error: %w: %s", ErrMissingSetting, what)
}

func describeValidation(errs validator.ValidationErrors) error {
	fe := errs[0]
	switch fe.Tag() {
	case "required_if":
		return missing(fmt.Sprintf("%s (%s)", fe.Field(), fileKey(strings.Fields(fe.Param())[0])))
	case "oneof":
		return fmt.Errorf("config error: '%s' must be one of [%s], got %q", fe.Field(), fe.Param(), fe.Value())
	default:
		return fmt.Errorf("config error: '%s' failed '%s' validation", fe.Field(), fe.Tag())
	}
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return tagName(fld)
	})
	return v
}

// fileKey maps a Config struct field name to its key in the config file.
func fileKey(structField string) string {
	fld, ok := reflect.TypeOf(Config{}).FieldByName(structField)
	if !ok {
		return structField
	}
	return tagName(fld)
}

func tagName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return fld.Name
	}
	return name
}

// Delay returns the parsed request delay, or zero when unset.
func (c *Config) Delay() time.Duration {
	d, _ := time.ParseDuration(c.RequestDelay)
	return d
}

// Challenge returns the parsed interactive login timeout, or zero when unset.
func (c *Config) Challenge() time.Duration {
	d, _ := time.ParseDuration(c.ChallengeTimeout)
	return d
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults,
// then from the built-in defaults.
// Bool fields cannot distinguish unset from false, so they are not merged
// (CLI flags always win for bools).
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	fill := func(dst *string, values ...string) {
		for _, v := range values {
			if *dst != "" {
				return
			}
			*dst = v
		}
	}
	fillInt := func(dst *int, values ...int) {
		for _, v := range values {
			if *dst != 0 {
				return
			}
			*dst = v
		}
	}

	fill(&result.Ledger, defaults.Ledger, LedgerSheets)
	fill(&result.SpreadsheetID, defaults.SpreadsheetID)
	fill(&result.SheetName, defaults.SheetName, DefaultSheetName)
	fill(&result.Worksheet, defaults.Worksheet, DefaultWorksheet)
	fill(&result.CredentialsFile, defaults.CredentialsFile)
	fill(&result.DatabaseURL, defaults.DatabaseURL)
	fill(&result.LedgerTable, defaults.LedgerTable, DefaultLedgerTable)
	fill(&result.Archive, defaults.Archive, defaultArchiveBackendName)
	fill(&result.ArchiveFolder, defaults.ArchiveFolder, DefaultArchiveFolder)
	fill(&result.SMTPHost, defaults.SMTPHost, DefaultSMTPHost)
	fillInt(&result.SMTPPort, defaults.SMTPPort, DefaultSMTPPort)
	fill(&result.EmailAddress, defaults.EmailAddress)
	fill(&result.EmailPassword, defaults.EmailPassword)
	fill(&result.SenderName, defaults.SenderName, result.ApplicantName, defaults.ApplicantName)
	fill(&result.LinkedInUsername, defaults.LinkedInUsername)
	fill(&result.LinkedInPassword, defaults.LinkedInPassword)
	fill(&result.ChromePath, defaults.ChromePath)
	fill(&result.ChallengeTimeout, defaults.ChallengeTimeout, DefaultChallengeTimeout)
	fill(&result.RequestDelay, defaults.RequestDelay, DefaultRequestDelay)
	fill(&result.APIKey, defaults.APIKey)
	fill(&result.Model, defaults.Model)
	fillInt(&result.NoteLimit, defaults.NoteLimit, DefaultNoteLimit)
	fillInt(&result.ShortenAttempts, defaults.ShortenAttempts, DefaultShortenAttempts)
	fill(&result.ApplicantName, defaults.ApplicantName)
	fill(&result.ProfessionalSummary, defaults.ProfessionalSummary)
	fill(&result.ResumeTemplate, defaults.ResumeTemplate)
	fill(&result.CoverLetterTemplate, defaults.CoverLetterTemplate)
	fill(&result.EmailTemplate, defaults.EmailTemplate)
	fill(&result.NoteTemplate, defaults.NoteTemplate)
	fill(&result.LogLevel, defaults.LogLevel, DefaultLogLevel)
	fill(&result.LogFormat, defaults.LogFormat, DefaultLogFormat)

	return result
}

// Environment variables read by ApplyEnv.
const (
	EnvAPIKey           = "GEMINI_API_KEY"
	EnvCredentialsFile  = "GOOGLE_API_CREDENTIALS_FILE"
	EnvEmailAddress     = "GMAIL_ADDRESS"
	EnvEmailPassword    = "GMAIL_PASSWORD"
	EnvLinkedInUsername = "LINKEDIN_USERNAME"
	EnvLinkedInPassword = "LINKEDIN_PASSWORD"
	EnvDatabaseURL      = "DATABASE_URL"
)

// ApplyEnv fills empty credential fields from the environment.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if getenv == nil {
		getenv = os.Getenv
	}
	for _, e := range []struct {
		dst *string
		key string
	}{
		{&c.APIKey, EnvAPIKey},
		{&c.CredentialsFile, EnvCredentialsFile},
		{&c.EmailAddress, EnvEmailAddress},
		{&c.EmailPassword, EnvEmailPassword},
		{&c.LinkedInUsername, EnvLinkedInUsername},
		{&c.LinkedInPassword, EnvLinkedInPassword},
		{&c.DatabaseURL, EnvDatabaseURL},
	} {
		if *e.dst == "" {
			*e.dst = getenv(e.key)
		}
	}
}
