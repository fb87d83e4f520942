package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables (CAMSHIP_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("host", os.Getenv("CAMSHIP_HOST"), &cfg.Host)
	s.setString("path", os.Getenv("CAMSHIP_STREAM_PATH"), &cfg.StreamPath)
	s.setString("boundary", os.Getenv("CAMSHIP_BOUNDARY"), &cfg.Boundary)
	s.setString("source", os.Getenv("CAMSHIP_SOURCE"), &cfg.Source)
	s.setString("spool-dir", os.Getenv("CAMSHIP_SPOOL_DIR"), &cfg.SpoolDir)
	s.setString("capture-cmd", os.Getenv("CAMSHIP_CAPTURE_CMD"), &cfg.CaptureCommand)
	s.setString("files", os.Getenv("CAMSHIP_FILES"), &cfg.Files)
	s.setString("metrics-file", os.Getenv("CAMSHIP_METRICS_FILE"), &cfg.MetricsFile)
	s.setString("log-level", os.Getenv("CAMSHIP_LOG_LEVEL"), &cfg.LogLevel)

	if err := s.setIntFromString("port", os.Getenv("CAMSHIP_PORT"), &cfg.Port); err != nil {
		return err
	}
	if err := s.setIntFromString("frames", os.Getenv("CAMSHIP_FRAME_COUNT"), &cfg.FrameCount); err != nil {
		return err
	}

	if err := s.setIntFromString("retries", os.Getenv("CAMSHIP_RETRIES"), &cfg.Retries); err != nil {
		return err
	}

	if err := s.setDuration("interval", os.Getenv("CAMSHIP_FRAME_INTERVAL"), &cfg.FrameInterval); err != nil {
		return err
	}
	if err := s.setDuration("dial-timeout", os.Getenv("CAMSHIP_DIAL_TIMEOUT"), &cfg.DialTimeout); err != nil {
		return err
	}
	if err := s.setDuration("capture-timeout", os.Getenv("CAMSHIP_CAPTURE_TIMEOUT"), &cfg.CaptureTimeout); err != nil {
		return err
	}

	s.setBoolFromString("spool-remove", os.Getenv("CAMSHIP_SPOOL_REMOVE"), &cfg.SpoolRemove)
	s.setBoolFromString("probe", os.Getenv("CAMSHIP_PROBE"), &cfg.Probe)

	return nil
}
