// Package cli canonicalizes the command line into an Invocation, runs the
// extraction end to end, and translates every outcome into a semantic
// process exit code.
package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/boujuan/StellarisTechCalculator/internal/manifest"
)

const (
	ExitSuccess = 0
	// ExitFailure covers both conversion failures and fatal pre-flight
	// conditions (bad paths, missing tools, unusable metadata).
	ExitFailure           = 1
	ExitInvalidInvocation = 2
)

const (
	defaultStellarisPath = "~/.local/share/Steam/steamapps/common/Stellaris"
	defaultOutputDir     = "Media"
	defaultDataDir       = "src/data"
	defaultLogFile       = "extraction.log"
)

// Invocation is the fully canonicalized description of a run. All paths are
// cleaned and have any leading ~ expanded; config-file defaults are already
// folded in, so the rest of the program never consults flags or files.
type Invocation struct {
	StellarisPath string
	OutputDir     string
	DataDir       string
	LogFile       string

	DryRun bool
	NoAVIF bool
	// Jobs is the avifenc worker count; zero or less means all cores.
	Jobs int

	// Only holds category/name glob patterns restricting the manifest.
	Only []string
	// ReportPath, when set, receives the machine-readable run report.
	ReportPath string
}

// InvocationError reports an unusable command line: unknown flags,
// positional arguments, malformed --only patterns, bad config files.
type InvocationError struct {
	ExitCode int
	Message  string
}

func (e *InvocationError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

func invalidInvocationf(format string, args ...any) error {
	return &InvocationError{ExitCode: ExitInvalidInvocation, Message: fmt.Sprintf(format, args...)}
}

// ConfigError reports a fatal pre-flight condition: invalid installation
// path, missing metadata file, missing external tool, unusable output
// location. It aborts the run before any conversion starts.
type ConfigError struct {
	Code    string
	Message string
	Cause   error
}

func (e *ConfigError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

func (e *ConfigError) Unwrap() error { return e.Cause }

// ErrHelp marks an invocation that only requested usage output.
var ErrHelp = errors.New("help requested")

type rawInvocation struct {
	stellarisPath string
	outputDir     string
	dataDir       string
	logFile       string
	dryRun        bool
	noAVIF        bool
	jobs          int
	only          []string
	configPath    string
	reportPath    string
}

func newRootCommand(raw *rawInvocation, out *Invocation, ran *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "extract-media",
		Short:         "Extract and convert Stellaris DDS textures to AVIF for web use",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			*ran = true
			inv, err := canonicalize(cmd, *raw)
			if err != nil {
				return err
			}
			*out = inv
			return nil
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&raw.stellarisPath, "stellaris-path", defaultStellarisPath, "Path to the Stellaris installation")
	fl.StringVar(&raw.outputDir, "output-dir", defaultOutputDir, "Output directory for converted media")
	fl.StringVar(&raw.dataDir, "data-dir", defaultDataDir, "Directory holding technologies.json and technology_swaps.json")
	fl.StringVar(&raw.logFile, "log-file", defaultLogFile, "Path for the detailed log file")
	fl.BoolVar(&raw.dryRun, "dry-run", false, "List all assets to be extracted without converting")
	fl.BoolVar(&raw.noAVIF, "no-avif", false, "Skip AVIF conversion, only produce PNGs")
	fl.IntVar(&raw.jobs, "jobs", 0, "Number of avifenc threads (0 = all cores)")
	fl.StringArrayVar(&raw.only, "only", nil, "Restrict the manifest to category/name globs (repeatable)")
	fl.StringVar(&raw.configPath, "config", "", "YAML config file supplying defaults for unset flags")
	fl.StringVar(&raw.reportPath, "report", "", "Write a machine-readable JSON run report to this path")

	return cmd
}

// ParseInvocation parses the argument slice (excluding argv[0]) into a
// canonical Invocation. It returns ErrHelp when only usage was requested.
func ParseInvocation(args []string) (Invocation, error) {
	var (
		raw rawInvocation
		inv Invocation
		ran bool
	)
	cmd := newRootCommand(&raw, &inv, &ran)
	if args == nil {
		args = []string{} // nil would make cobra fall back to os.Args
	}
	cmd.SetArgs(args)

	if err := cmd.Execute(); err != nil {
		var invErr *InvocationError
		if errors.As(err, &invErr) {
			return Invocation{}, err
		}
		// cobra's own parse errors, e.g. "unknown flag: --x".
		return Invocation{}, invalidInvocationf("%v", err)
	}
	if !ran {
		return Invocation{}, ErrHelp
	}
	return inv, nil
}

func canonicalize(cmd *cobra.Command, raw rawInvocation) (Invocation, error) {
	if raw.configPath != "" {
		cfg, err := loadConfigFile(raw.configPath)
		if err != nil {
			return Invocation{}, err
		}
		applyConfigDefaults(cmd, cfg, &raw)
	}

	stellaris, err := canonicalPath(raw.stellarisPath, "--stellaris-path")
	if err != nil {
		return Invocation{}, err
	}
	output, err := canonicalPath(raw.outputDir, "--output-dir")
	if err != nil {
		return Invocation{}, err
	}
	data, err := canonicalPath(raw.dataDir, "--data-dir")
	if err != nil {
		return Invocation{}, err
	}
	logFile, err := canonicalPath(raw.logFile, "--log-file")
	if err != nil {
		return Invocation{}, err
	}

	if err := manifest.ValidatePatterns(raw.only); err != nil {
		return Invocation{}, invalidInvocationf("--only: %v", err)
	}

	report := ""
	if raw.reportPath != "" {
		report, err = canonicalPath(raw.reportPath, "--report")
		if err != nil {
			return Invocation{}, err
		}
	}

	return Invocation{
		StellarisPath: stellaris,
		OutputDir:     output,
		DataDir:       data,
		LogFile:       logFile,
		DryRun:        raw.dryRun,
		NoAVIF:        raw.noAVIF,
		Jobs:          raw.jobs,
		Only:          append([]string(nil), raw.only...),
		ReportPath:    report,
	}, nil
}

func canonicalPath(p, flag string) (string, error) {
	if strings.TrimSpace(p) == "" {
		return "", invalidInvocationf("%s must not be empty", flag)
	}
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", invalidInvocationf("%s: cannot resolve ~: %v", flag, err)
		}
		p = filepath.Join(home, strings.TrimPrefix(p, "~"))
	}
	return filepath.Clean(p), nil
}

// ExitCodeFor extracts the semantic exit code from an error. Invocation
// problems map to 2; every other failure, pre-flight or conversion, maps
// to 1.
func ExitCodeFor(err error) int {
	if err == nil || errors.Is(err, ErrHelp) {
		return ExitSuccess
	}
	var invErr *InvocationError
	if errors.As(err, &invErr) && invErr != nil {
		if invErr.ExitCode != 0 {
			return invErr.ExitCode
		}
		return ExitInvalidInvocation
	}
	return ExitFailure
}
