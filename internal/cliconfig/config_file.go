package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	StreamPath      string `toml:"stream_path"`
	StillPath       string `toml:"still_path"`
	ProbePath       string `toml:"probe_path"`
	FrameCount      int    `toml:"frame_count"`
	FrameInterval   string `toml:"frame_interval"`
	Boundary        string `toml:"boundary"`
	FieldName       string `toml:"field_name"`
	ContentType     string `toml:"content_type"`
	FilenamePattern string `toml:"filename_pattern"`
	DialTimeout     string `toml:"dial_timeout"`
	HTTPTimeout     string `toml:"http_timeout"`
	Retries         int    `toml:"retries"`
	Source          string `toml:"source"`
	SpoolDir        string `toml:"spool_dir"`
	SpoolPattern    string `toml:"spool_pattern"`
	SpoolRemove     *bool  `toml:"spool_remove"`
	CaptureCommand  string `toml:"capture_cmd"`
	CaptureTimeout  string `toml:"capture_timeout"`
	Files           string `toml:"files"`
	Probe           *bool  `toml:"probe"`
	MetricsFile     string `toml:"metrics_file"`
	LogLevel        string `toml:"log_level"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.camship/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".camship", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("host", fc.Host, &cfg.Host)
	s.setString("path", fc.StreamPath, &cfg.StreamPath)
	s.setString("still-path", fc.StillPath, &cfg.StillPath)
	s.setString("probe-path", fc.ProbePath, &cfg.ProbePath)
	s.setString("boundary", fc.Boundary, &cfg.Boundary)
	s.setString("field", fc.FieldName, &cfg.FieldName)
	s.setString("content-type", fc.ContentType, &cfg.ContentType)
	s.setString("filename-pattern", fc.FilenamePattern, &cfg.FilenamePattern)
	s.setString("source", fc.Source, &cfg.Source)
	s.setString("spool-dir", fc.SpoolDir, &cfg.SpoolDir)
	s.setString("spool-pattern", fc.SpoolPattern, &cfg.SpoolPattern)
	s.setString("capture-cmd", fc.CaptureCommand, &cfg.CaptureCommand)
	s.setString("files", fc.Files, &cfg.Files)
	s.setString("metrics-file", fc.MetricsFile, &cfg.MetricsFile)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)

	s.setInt("port", fc.Port, &cfg.Port)
	s.setInt("frames", fc.FrameCount, &cfg.FrameCount)
	s.setInt("retries", fc.Retries, &cfg.Retries)

	if err := s.setDuration("interval", fc.FrameInterval, &cfg.FrameInterval); err != nil {
		return err
	}
	if err := s.setDuration("dial-timeout", fc.DialTimeout, &cfg.DialTimeout); err != nil {
		return err
	}
	if err := s.setDuration("http-timeout", fc.HTTPTimeout, &cfg.HTTPTimeout); err != nil {
		return err
	}
	if err := s.setDuration("capture-timeout", fc.CaptureTimeout, &cfg.CaptureTimeout); err != nil {
		return err
	}

	s.setBool("spool-remove", fc.SpoolRemove, &cfg.SpoolRemove)
	s.setBool("probe", fc.Probe, &cfg.Probe)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
