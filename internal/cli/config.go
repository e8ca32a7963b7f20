package cli

import (
	"errors"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// fileConfig is the optional YAML defaults layer. Every field is a pointer
// so "absent" and "explicitly zero" stay distinguishable; values apply only
// to flags the user did not set on the command line.
type fileConfig struct {
	StellarisPath *string `yaml:"stellaris_path"`
	OutputDir     *string `yaml:"output_dir"`
	DataDir       *string `yaml:"data_dir"`
	LogFile       *string `yaml:"log_file"`
	Jobs          *int    `yaml:"jobs"`
	NoAVIF        *bool   `yaml:"no_avif"`
}

func loadConfigFile(path string) (fileConfig, error) {
	var cfg fileConfig
	f, err := os.Open(path)
	if err != nil {
		return fileConfig{}, invalidInvocationf("--config %s: %v", path, err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return fileConfig{}, nil // empty file, nothing to apply
		}
		return fileConfig{}, invalidInvocationf("--config %s: %v", path, err)
	}
	// A config file with trailing documents is almost certainly a mistake.
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fileConfig{}, invalidInvocationf("--config %s: %s", path, "multiple YAML documents")
	}
	return cfg, nil
}

func applyConfigDefaults(cmd *cobra.Command, cfg fileConfig, raw *rawInvocation) {
	fl := cmd.Flags()
	if cfg.StellarisPath != nil && !fl.Changed("stellaris-path") {
		raw.stellarisPath = *cfg.StellarisPath
	}
	if cfg.OutputDir != nil && !fl.Changed("output-dir") {
		raw.outputDir = *cfg.OutputDir
	}
	if cfg.DataDir != nil && !fl.Changed("data-dir") {
		raw.dataDir = *cfg.DataDir
	}
	if cfg.LogFile != nil && !fl.Changed("log-file") {
		raw.logFile = *cfg.LogFile
	}
	if cfg.Jobs != nil && !fl.Changed("jobs") {
		raw.jobs = *cfg.Jobs
	}
	if cfg.NoAVIF != nil && !fl.Changed("no-avif") {
		raw.noAVIF = *cfg.NoAVIF
	}
}
