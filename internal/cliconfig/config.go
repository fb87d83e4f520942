package cliconfig

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bft-labs/camship/internal/domain"
)

// Frame source kinds.
const (
	SourceDir     = "dir"
	SourceCommand = "command"
	SourceFiles   = "files"
)

// BoundaryRandom asks for a generated boundary instead of a literal.
const BoundaryRandom = "random"

// Config holds CLI configuration for camship.
type Config struct {
	Host       string
	Port       int
	StreamPath string
	StillPath  string
	ProbePath  string

	FrameCount      int
	FrameInterval   time.Duration
	Boundary        string
	FieldName       string
	ContentType     string
	FilenamePattern string

	DialTimeout time.Duration
	HTTPTimeout time.Duration
	Retries     int

	Source         string
	SpoolDir       string
	SpoolPattern   string
	SpoolRemove    bool
	CaptureCommand string
	CaptureTimeout time.Duration
	Files          string

	Probe       bool
	MetricsFile string
	LogLevel    string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Port:            80,
		StreamPath:      domain.DefaultStreamPath,
		StillPath:       domain.DefaultStillPath,
		ProbePath:       domain.DefaultProbePath,
		FrameCount:      domain.DefaultFrameCount,
		FrameInterval:   domain.DefaultFrameInterval,
		Boundary:        domain.DefaultBoundary,
		FieldName:       domain.DefaultFieldName,
		ContentType:     domain.DefaultContentType,
		FilenamePattern: domain.DefaultFilenamePattern,
		DialTimeout:     domain.DefaultDialTimeout,
		HTTPTimeout:     30 * time.Second,
		Source:          SourceDir,
		SpoolPattern:    "*.jpg",
		CaptureTimeout:  2 * time.Second,
		LogLevel:        "info",
	}
}

// ValidateEndpoint checks only what the probe and still uploads need and
// normalizes the request paths.
func (c *Config) ValidateEndpoint() error {
	if c.Host == "" {
		return fmt.Errorf("host is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	c.StreamPath = ensureLeadingSlash(c.StreamPath)
	c.StillPath = ensureLeadingSlash(c.StillPath)
	c.ProbePath = ensureLeadingSlash(c.ProbePath)
	return nil
}

// Validate checks the full streaming configuration and normalizes paths.
func (c *Config) Validate() error {
	if err := c.ValidateEndpoint(); err != nil {
		return err
	}
	if c.FrameCount <= 0 {
		return fmt.Errorf("frame count must be positive")
	}
	if c.FrameInterval < 0 {
		return fmt.Errorf("frame interval must not be negative")
	}
	if c.DialTimeout <= 0 {
		return fmt.Errorf("dial timeout must be positive")
	}
	if c.Retries < 0 {
		return fmt.Errorf("retries must not be negative")
	}

	switch c.Source {
	case SourceDir:
		if c.SpoolDir == "" {
			return fmt.Errorf("spool-dir is required for the %s source", SourceDir)
		}
	case SourceCommand:
		if len(strings.Fields(c.CaptureCommand)) == 0 {
			return fmt.Errorf("capture-cmd is required for the %s source", SourceCommand)
		}
	case SourceFiles:
		if c.Files == "" {
			return fmt.Errorf("files is required for the %s source", SourceFiles)
		}
	default:
		return fmt.Errorf("unknown source %q (want %s, %s or %s)", c.Source, SourceDir, SourceCommand, SourceFiles)
	}
	return c.SessionConfig().Validate()
}

// SessionConfig builds the streaming session settings. A boundary of
// "random" is replaced by a fresh uuid-based token.
func (c *Config) SessionConfig() domain.SessionConfig {
	boundary := c.Boundary
	if boundary == BoundaryRandom {
		boundary = "camship-" + uuid.NewString()
	}
	return domain.SessionConfig{
		FrameCount:      c.FrameCount,
		Interval:        c.FrameInterval,
		Boundary:        boundary,
		Host:            c.Host,
		Port:            c.Port,
		Path:            c.StreamPath,
		FieldName:       c.FieldName,
		ContentType:     c.ContentType,
		FilenamePattern: c.FilenamePattern,
		DialTimeout:     c.DialTimeout,
	}
}

// BaseURL returns http://host:port for the single-shot helpers.
func (c *Config) BaseURL() string {
	u := url.URL{Scheme: "http", Host: c.Addr()}
	return u.String()
}

// Addr returns host:port.
func (c *Config) Addr() string {
	return domain.SessionConfig{Host: c.Host, Port: c.Port}.Addr()
}

func ensureLeadingSlash(p string) string {
	if p == "" || p[0] != '/' {
		return "/" + p
	}
	return p
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses a string to int and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
