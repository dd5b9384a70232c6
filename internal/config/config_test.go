package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name     string
		got      interface{}
		expected interface{}
	}{
		{"DefaultDimension", cfg.DefaultDimension, 3},
		{"MaxIterations", cfg.MaxIterations, 100000},
		{"OutputFormat", cfg.OutputFormat, FormatText},
		{"Workers", cfg.Workers, 4},
		{"Verbose", cfg.Verbose, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("DefaultConfig().%s = %v, want %v", tt.name, tt.got, tt.expected)
			}
		})
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name        string
		cfg         *Config
		wantErr     bool
		errContains string
	}{
		{
			name: "valid config",
			cfg: &Config{
				DefaultDimension: 5,
				MaxIterations:    1000,
				OutputFormat:     FormatYAML,
				Workers:          2,
			},
			wantErr: false,
		},
		{
			name: "even dimension",
			cfg: &Config{
				DefaultDimension: 4,
				MaxIterations:    1000,
				OutputFormat:     FormatText,
				Workers:          2,
			},
			wantErr:     true,
			errContains: "default_dimension",
		},
		{
			name: "composite odd dimension",
			cfg: &Config{
				DefaultDimension: 9,
				MaxIterations:    1000,
				OutputFormat:     FormatText,
				Workers:          2,
			},
			wantErr:     true,
			errContains: "default_dimension",
		},
		{
			name: "non-positive max_iterations",
			cfg: &Config{
				DefaultDimension: 3,
				MaxIterations:    0,
				OutputFormat:     FormatText,
				Workers:          2,
			},
			wantErr:     true,
			errContains: "max_iterations must be positive",
		},
		{
			name: "invalid output_format",
			cfg: &Config{
				DefaultDimension: 3,
				MaxIterations:    1000,
				OutputFormat:     "xml",
				Workers:          2,
			},
			wantErr:     true,
			errContains: "invalid output_format",
		},
		{
			name: "non-positive workers",
			cfg: &Config{
				DefaultDimension: 3,
				MaxIterations:    1000,
				OutputFormat:     FormatText,
				Workers:          0,
			},
			wantErr:     true,
			errContains: "workers must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error containing %q, got nil", tt.errContains)
				} else if !contains(err.Error(), tt.errContains) {
					t.Errorf("Error = %q, should contain %q", err.Error(), tt.errContains)
				}
				return
			}
			if err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	tests := []struct {
		name        string
		configYAML  string
		envVars     map[string]string
		checkCfg    func(*testing.T, *Config)
		wantErr     bool
		errContains string
	}{
		{
			name: "load valid config from file",
			configYAML: `
default_dimension: 7
max_iterations: 5000
output_format: json
workers: 8
verbose: true
`,
			checkCfg: func(t *testing.T, cfg *Config) {
				if cfg.DefaultDimension != 7 {
					t.Errorf("DefaultDimension = %v, want 7", cfg.DefaultDimension)
				}
				if cfg.MaxIterations != 5000 {
					t.Errorf("MaxIterations = %v, want 5000", cfg.MaxIterations)
				}
				if cfg.OutputFormat != FormatJSON {
					t.Errorf("OutputFormat = %v, want %v", cfg.OutputFormat, FormatJSON)
				}
				if cfg.Workers != 8 {
					t.Errorf("Workers = %v, want 8", cfg.Workers)
				}
				if !cfg.Verbose {
					t.Error("Verbose = false, want true")
				}
			},
			wantErr: false,
		},
		{
			name: "partial file keeps defaults",
			configYAML: `
default_dimension: 5
`,
			checkCfg: func(t *testing.T, cfg *Config) {
				if cfg.DefaultDimension != 5 {
					t.Errorf("DefaultDimension = %v, want 5", cfg.DefaultDimension)
				}
				if cfg.MaxIterations != 100000 {
					t.Errorf("MaxIterations = %v, want default 100000", cfg.MaxIterations)
				}
				if cfg.OutputFormat != FormatText {
					t.Errorf("OutputFormat = %v, want default %v", cfg.OutputFormat, FormatText)
				}
			},
			wantErr: false,
		},
		{
			name: "env var overrides file values",
			configYAML: `
default_dimension: 5
workers: 2
`,
			envVars: map[string]string{
				"QZX_DEFAULT_DIMENSION": "11",
				"QZX_OUTPUT_FORMAT":     "yaml",
			},
			checkCfg: func(t *testing.T, cfg *Config) {
				if cfg.DefaultDimension != 11 {
					t.Errorf("DefaultDimension = %v, want 11 (from env)", cfg.DefaultDimension)
				}
				if cfg.OutputFormat != FormatYAML {
					t.Errorf("OutputFormat = %v, want %v (from env)", cfg.OutputFormat, FormatYAML)
				}
				// Workers should still be from file
				if cfg.Workers != 2 {
					t.Errorf("Workers = %v, want 2 (from file)", cfg.Workers)
				}
			},
			wantErr: false,
		},
		{
			name: "invalid yaml",
			configYAML: `
default_dimension: 3
  invalid: indent
`,
			wantErr:     true,
			errContains: "failed to parse",
		},
		{
			name: "invalid dimension in file",
			configYAML: `
default_dimension: 6
`,
			wantErr:     true,
			errContains: "default_dimension",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				os.Setenv(k, v)
				defer os.Unsetenv(k)
			}

			tmpDir := t.TempDir()
			configPath := filepath.Join(tmpDir, "config.yaml")
			err := os.WriteFile(configPath, []byte(tt.configYAML), 0644)
			if err != nil {
				t.Fatalf("Failed to write config file: %v", err)
			}

			cfg, err := LoadFromFile(configPath)

			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error containing %q, got nil", tt.errContains)
				} else if !contains(err.Error(), tt.errContains) {
					t.Errorf("Error = %q, should contain %q", err.Error(), tt.errContains)
				}
				return
			}

			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}

			if tt.checkCfg != nil {
				tt.checkCfg(t, cfg)
			}
		})
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("Expected error for missing file, got nil")
	}
	if !contains(err.Error(), "failed to read") {
		t.Errorf("Error = %q, should contain 'failed to read'", err.Error())
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	qzxVars := []string{
		"QZX_DEFAULT_DIMENSION",
		"QZX_MAX_ITERATIONS",
		"QZX_OUTPUT_FORMAT",
		"QZX_WORKERS",
		"QZX_VERBOSE",
	}
	defer func() {
		for _, k := range qzxVars {
			os.Unsetenv(k)
		}
	}()

	tests := []struct {
		name    string
		envVars map[string]string
		check   func(*testing.T, *Config)
	}{
		{
			name: "override dimension",
			envVars: map[string]string{
				"QZX_DEFAULT_DIMENSION": "13",
			},
			check: func(t *testing.T, cfg *Config) {
				if cfg.DefaultDimension != 13 {
					t.Errorf("DefaultDimension = %v, want 13", cfg.DefaultDimension)
				}
			},
		},
		{
			name: "override iteration bound and workers",
			envVars: map[string]string{
				"QZX_MAX_ITERATIONS": "250",
				"QZX_WORKERS":        "16",
			},
			check: func(t *testing.T, cfg *Config) {
				if cfg.MaxIterations != 250 {
					t.Errorf("MaxIterations = %v, want 250", cfg.MaxIterations)
				}
				if cfg.Workers != 16 {
					t.Errorf("Workers = %v, want 16", cfg.Workers)
				}
			},
		},
		{
			name: "override output format",
			envVars: map[string]string{
				"QZX_OUTPUT_FORMAT": "json",
			},
			check: func(t *testing.T, cfg *Config) {
				if cfg.OutputFormat != FormatJSON {
					t.Errorf("OutputFormat = %v, want %v", cfg.OutputFormat, FormatJSON)
				}
			},
		},
		{
			name: "verbose accepts 1",
			envVars: map[string]string{
				"QZX_VERBOSE": "1",
			},
			check: func(t *testing.T, cfg *Config) {
				if !cfg.Verbose {
					t.Error("Verbose = false, want true")
				}
			},
		},
		{
			name: "non-numeric int ignored",
			envVars: map[string]string{
				"QZX_WORKERS": "many",
			},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Workers != 4 {
					t.Errorf("Workers = %v, want default 4", cfg.Workers)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range qzxVars {
				os.Unsetenv(k)
			}
			for k, v := range tt.envVars {
				os.Setenv(k, v)
			}

			cfg := DefaultConfig()
			applyEnvOverrides(cfg)
			tt.check(t, cfg)
		})
	}
}

func TestParseInt(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"42", 42},
		{"-7", -7},
		{"0", 0},
		{"abc", 0},
		{"", 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseInt(tt.input); got != tt.want {
				t.Errorf("parseInt(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func contains(s, substr string) bool {
	return len(s) >= len(substr) && (s == substr || len(s) > 0 && containsAt(s, substr))
}

func containsAt(s, substr string) bool {
	for i := 0; i <= len(s)-len(substr); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}

func TestConfigSave(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	cfg := DefaultConfig()
	cfg.DefaultDimension = 7
	cfg.Workers = 12

	if err := cfg.Save(configPath); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	loaded, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile() error: %v", err)
	}

	if loaded.DefaultDimension != 7 {
		t.Errorf("DefaultDimension = %v, want 7", loaded.DefaultDimension)
	}
	if loaded.Workers != 12 {
		t.Errorf("Workers = %v, want 12", loaded.Workers)
	}
}

func TestConfigSaveCreatesParentDirs(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "nested", "dirs", "config.yaml")

	cfg := DefaultConfig()
	if err := cfg.Save(configPath); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	if _, err := os.Stat(configPath); err != nil {
		t.Errorf("Config file not created: %v", err)
	}
}
