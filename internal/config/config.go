package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Default source documents published by the ministry.
const (
	DefaultPDFURL  = "https://www.mhlw.go.jp/content/000491511.pdf"
	DefaultHTMLURL = "https://www.mhlw.go.jp/web/t_doc?dataId=81aa1263&dataType=0"
)

// EnvPrefix namespaces environment overrides, e.g. SHEETFEED_SHEETS_SPREADSHEET_ID.
const EnvPrefix = "SHEETFEED"

// SheetsSettings identifies the destination spreadsheet.
type SheetsSettings struct {
	SpreadsheetID   string `mapstructure:"spreadsheet_id" validate:"required"`
	WorksheetTitle  string `mapstructure:"worksheet_title" validate:"required"`
	CredentialsFile string `mapstructure:"credentials_file"`
}

// Validate checks that all fields in SheetsSettings are valid.
func (s *SheetsSettings) Validate() error {
	if err := validator.New().Struct(s); err != nil {
		return fmt.Errorf("validation failed for SheetsSettings: %w", err)
	}
	return nil
}

// FetchSettings controls document retrieval.
type FetchSettings struct {
	PDFURL           string        `mapstructure:"pdf_url" validate:"required,url"`
	HTMLURL          string        `mapstructure:"html_url" validate:"required,url"`
	Timeout          time.Duration `mapstructure:"timeout"`
	IframeFirst      bool          `mapstructure:"iframe_first"`
	RenderWithChrome bool          `mapstructure:"render_with_chrome"`
	UserAgent        string        `mapstructure:"user_agent"`
}

// Validate checks that all fields in FetchSettings are valid.
func (s *FetchSettings) Validate() error {
	if err := validator.New().Struct(s); err != nil {
		return fmt.Errorf("validation failed for FetchSettings: %w", err)
	}
	if s.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	return nil
}

// LatticeSettings tunes table detection on PDF pages.
type LatticeSettings struct {
	Pages         string  `mapstructure:"pages" validate:"required"`
	ExcludePages  []int   `mapstructure:"exclude_pages"`
	LineScale     float64 `mapstructure:"line_scale" validate:"gt=0"`
	StripText     string  `mapstructure:"strip_text"`
	AutoStartPage int     `mapstructure:"auto_start_page" validate:"gte=1"`
}

// Validate checks that all fields in LatticeSettings are valid.
func (s *LatticeSettings) Validate() error {
	if err := validator.New().Struct(s); err != nil {
		return fmt.Errorf("validation failed for LatticeSettings: %w", err)
	}
	return nil
}

// LoggerSettings selects the log destination and level.
type LoggerSettings struct {
	LogLevel   string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	LogType    string `mapstructure:"log_type" validate:"required,oneof=console file"`
	FilePath   string `mapstructure:"file_path"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
}

// Validate checks that all fields in LoggerSettings are valid.
func (s *LoggerSettings) Validate() error {
	if err := validator.New().Struct(s); err != nil {
		return fmt.Errorf("validation failed for LoggerSettings: %w", err)
	}
	if s.LogType == "file" && s.FilePath == "" {
		return fmt.Errorf("file path is required for file logger")
	}
	return nil
}

// Settings is the full application configuration.
type Settings struct {
	Sheets  SheetsSettings  `mapstructure:"sheets"`
	Fetch   FetchSettings   `mapstructure:"fetch"`
	Lattice LatticeSettings `mapstructure:"lattice"`
	Logger  LoggerSettings  `mapstructure:"logger"`
}

// Validate checks every settings section.
func (s *Settings) Validate() error {
	if err := s.Sheets.Validate(); err != nil {
		return err
	}
	if err := s.Fetch.Validate(); err != nil {
		return err
	}
	if err := s.Lattice.Validate(); err != nil {
		return err
	}
	return s.Logger.Validate()
}

func setDefaults(v *viper.Viper) {
	// Registering empty defaults makes the keys visible to AutomaticEnv
	// even when no config file sets them.
	v.SetDefault("sheets.spreadsheet_id", "")
	v.SetDefault("sheets.credentials_file", "")
	v.SetDefault("sheets.worksheet_title", "更新情報一覧")
	v.SetDefault("fetch.pdf_url", DefaultPDFURL)
	v.SetDefault("fetch.html_url", DefaultHTMLURL)
	v.SetDefault("fetch.timeout", 30*time.Second)
	v.SetDefault("fetch.iframe_first", true)
	v.SetDefault("lattice.pages", "all")
	v.SetDefault("lattice.line_scale", 40.0)
	v.SetDefault("lattice.strip_text", "\n")
	v.SetDefault("lattice.auto_start_page", 2)
	v.SetDefault("logger.log_level", "info")
	v.SetDefault("logger.log_type", "console")
	v.SetDefault("logger.max_size", 10)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
}

// Load reads settings from path (optional) with environment overrides
// and validates the result. An empty path loads defaults and environment
// values only.
func Load(path string) (*Settings, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}
