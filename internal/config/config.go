package config

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// AppConfig is the full application configuration, loaded from config.toml
// next to the executable with environment overrides on top.
type AppConfig struct {
	Server ServerConfig `toml:"server"`
	Output OutputConfig `toml:"output"`
	Report ReportConfig `toml:"report"`
}

// ServerConfig configures the local upload server.
type ServerConfig struct {
	Port        int  `toml:"port"`
	DevMode     bool `toml:"dev_mode"`
	OpenBrowser bool `toml:"open_browser"`
}

// OutputConfig configures where runs write their files.
type OutputConfig struct {
	Dir         string `toml:"dir"`
	KeepUploads bool   `toml:"keep_uploads"`
}

// ReportConfig carries the per-run defaults a config file may pin.
type ReportConfig struct {
	SingleSheet      bool   `toml:"single_sheet"`
	EmitIntermediate bool   `toml:"emit_intermediate"`
	TimesheetSheet   string `toml:"timesheet_sheet"`
	JobSheetSheet    string `toml:"job_sheet_sheet"`
}

// DefaultConfig returns the configuration used when no config.toml exists.
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:        20480,
			DevMode:     false,
			OpenBrowser: true,
		},
		Output: OutputConfig{
			Dir:         "data",
			KeepUploads: false,
		},
		Report: ReportConfig{
			SingleSheet:      false,
			EmitIntermediate: false,
		},
	}
}

// GetExeDir returns the directory holding the running executable.
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

// LoadConfig reads config.toml from the executable's directory, falling back
// to defaults when the file is absent. AMADAILY_OUTPUT_DIR overrides the
// output directory either way.
func LoadConfig() (*AppConfig, error) {
	config := DefaultConfig()

	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}
	configPath := filepath.Join(exeDir, "config.toml")

	data, err := os.ReadFile(configPath)
	switch {
	case os.IsNotExist(err):
		// fall through to overrides
	case err != nil:
		return nil, err
	default:
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, err
		}
	}

	if v := os.Getenv("AMADAILY_OUTPUT_DIR"); v != "" {
		config.Output.Dir = v
	}
	return config, nil
}

// SaveConfig writes the configuration back to config.toml next to the
// executable.
func SaveConfig(config *AppConfig) error {
	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}
	data, err := toml.Marshal(config)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(exeDir, "config.toml"), data, 0644)
}

// EnsureOutputDir creates the output directory and its subdirectories,
// returning the resolved root. Relative directories resolve against the
// executable's directory.
func EnsureOutputDir(config *AppConfig) (string, error) {
	dir := config.Output.Dir
	if !filepath.IsAbs(dir) {
		exeDir, err := GetExeDir()
		if err != nil {
			exeDir = "."
		}
		dir = filepath.Join(exeDir, dir)
	}

	for _, sub := range []string{"", "outputs", "uploads"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0755); err != nil {
			return "", err
		}
	}
	return dir, nil
}

// OutputPath joins a filename under a subdirectory of the resolved output
// root.
func OutputPath(root, subdir, filename string) string {
	return filepath.Join(root, subdir, filename)
}
