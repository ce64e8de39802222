package config

import (
	"flag"
	"fmt"

	"github.com/Akuli/porcupine-sub000/internal/logger"
)

// Flags holds values parsed from command-line flags.
// Use pointers to distinguish between unset flags and zero-value flags.
type Flags struct {
	ConfigFilePath  *string
	Version         *bool
	LogLevel        *string
	LogFilePath     *string
	TabWidth        *int
	ScrollOff       *int
	MaxHistory      *int
	SystemClipboard *bool
}

// DefineFlags sets up the command-line flags and associates them with
// the Flags struct fields.
func (f *Flags) DefineFlags() {
	f.ConfigFilePath = flag.String("config", "", fmt.Sprintf("Path to TOML configuration file (default ~/.config/%s/%s)", AppName, DefaultConfigFileName))
	f.Version = flag.Bool("version", false, "Show version information and exit")
	f.LogLevel = flag.String("loglevel", "", "Log level (debug, info, warn, error) - Overrides config file")
	f.LogFilePath = flag.String("logfile", "", "Path to write log file (use '-' for stderr) - Overrides config file")
	f.TabWidth = flag.Int("tabwidth", 0, "Number of spaces per tab - Overrides config file")
	f.ScrollOff = flag.Int("scrolloff", -1, "Lines of context above/below cursor - Overrides config file")
	f.MaxHistory = flag.Int("maxhistory", 0, "Maximum undo history depth - Overrides config file")
	f.SystemClipboard = flag.Bool("system-clipboard", false, "Use system clipboard instead of internal clipboard")
}

// ParseFlags parses the defined command-line flags into the Flags
// struct. It returns the remaining non-flag arguments (the file path).
func (f *Flags) ParseFlags() []string {
	f.DefineFlags()
	flag.Parse()
	return flag.Args()
}

// ApplyOverrides updates the Config struct with values from flags *if*
// they were set.
func (f *Flags) ApplyOverrides(cfg *Config, verbose bool) {
	// Visit only processes flags that were actually set.
	flag.Visit(func(fl *flag.Flag) {
		if verbose {
			logger.Debugf("Applying flag override: %s", fl.Name)
		}
		switch fl.Name {
		case "loglevel":
			if f.LogLevel != nil && *f.LogLevel != "" {
				cfg.Logger.LogLevel = *f.LogLevel
			}
		case "logfile":
			if f.LogFilePath != nil { // Empty string is valid ("-")
				cfg.Logger.LogFilePath = *f.LogFilePath
			}
		case "tabwidth":
			if f.TabWidth != nil && *f.TabWidth > 0 {
				cfg.Editor.TabWidth = *f.TabWidth
			}
		case "scrolloff":
			if f.ScrollOff != nil && *f.ScrollOff >= 0 {
				cfg.Editor.ScrollOff = *f.ScrollOff
			}
		case "maxhistory":
			if f.MaxHistory != nil && *f.MaxHistory > 0 {
				cfg.Editor.MaxHistory = *f.MaxHistory
			}
		case "system-clipboard":
			if f.SystemClipboard != nil {
				cfg.Editor.SystemClipboard = *f.SystemClipboard
			}
		}
	})
}
