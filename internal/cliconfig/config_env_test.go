package cliconfig

import (
	"testing"
	"time"
)

func TestApplyEnvConfig(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		changed  map[string]bool
		initial  Config
		expected Config
		wantErr  bool
	}{
		{
			name: "applies all valid env vars",
			envVars: map[string]string{
				"CAMSHIP_HOST":           "10.1.1.1",
				"CAMSHIP_PORT":           "8080",
				"CAMSHIP_FRAME_COUNT":    "5",
				"CAMSHIP_FRAME_INTERVAL": "1s",
				"CAMSHIP_SOURCE":         "files",
				"CAMSHIP_FILES":          "/tmp/*.jpg",
				"CAMSHIP_PROBE":          "1",
				"CAMSHIP_RETRIES":        "3",
			},
			changed: map[string]bool{},
			expected: Config{
				Host:          "10.1.1.1",
				Port:          8080,
				FrameCount:    5,
				FrameInterval: time.Second,
				Source:        "files",
				Files:         "/tmp/*.jpg",
				Probe:         true,
				Retries:       3,
			},
		},
		{
			name:     "respects changed flags",
			envVars:  map[string]string{"CAMSHIP_HOST": "env-host", "CAMSHIP_PORT": "9000"},
			changed:  map[string]bool{"host": true},
			initial:  Config{Host: "flag-host"},
			expected: Config{Host: "flag-host", Port: 9000},
		},
		{
			name:    "returns error for invalid duration",
			envVars: map[string]string{"CAMSHIP_FRAME_INTERVAL": "not-a-duration"},
			changed: map[string]bool{},
			wantErr: true,
		},
		{
			name:    "returns error for invalid int",
			envVars: map[string]string{"CAMSHIP_PORT": "eighty"},
			changed: map[string]bool{},
			wantErr: true,
		},
		{
			name:     "handles bool 'false' as false",
			envVars:  map[string]string{"CAMSHIP_SPOOL_REMOVE": "false"},
			changed:  map[string]bool{},
			initial:  Config{SpoolRemove: true},
			expected: Config{SpoolRemove: false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg := tt.initial
			err := ApplyEnvConfig(&cfg, tt.changed)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ApplyEnvConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if cfg != tt.expected {
				t.Errorf("config = %+v, want %+v", cfg, tt.expected)
			}
		})
	}
}

// Integration test: precedence order (CLI > Env > File)
func TestConfigPrecedence(t *testing.T) {
	fileConf := FileConfig{
		Host:       "file-host",
		Port:       5000,
		FrameCount: 10,
	}

	t.Setenv("CAMSHIP_PORT", "6000")
	t.Setenv("CAMSHIP_FRAME_COUNT", "20")

	changed := map[string]bool{"frames": true}
	cfg := Config{FrameCount: 30}

	if err := ApplyFileConfig(&cfg, fileConf, changed); err != nil {
		t.Fatalf("ApplyFileConfig failed: %v", err)
	}
	if err := ApplyEnvConfig(&cfg, changed); err != nil {
		t.Fatalf("ApplyEnvConfig failed: %v", err)
	}

	if cfg.FrameCount != 30 {
		t.Errorf("FrameCount = %v, want 30 (CLI should win)", cfg.FrameCount)
	}
	if cfg.Port != 6000 {
		t.Errorf("Port = %v, want 6000 (env should override file)", cfg.Port)
	}
	if cfg.Host != "file-host" {
		t.Errorf("Host = %v, want file-host (file should set)", cfg.Host)
	}
}
