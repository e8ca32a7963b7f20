package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/boujuan/StellarisTechCalculator/internal/convert"
	"github.com/boujuan/StellarisTechCalculator/internal/journal"
	"github.com/boujuan/StellarisTechCalculator/internal/logging"
	"github.com/boujuan/StellarisTechCalculator/internal/manifest"
	"github.com/boujuan/StellarisTechCalculator/internal/pipeline"
	"github.com/boujuan/StellarisTechCalculator/internal/report"
)

const banner = "============================================================"

// Result is what a finished (or aborted) invocation reports back to main.
type Result struct {
	ExitCode int
	// Pipeline is nil when the run aborted before conversion started.
	Pipeline *pipeline.Result
}

// Execute runs a canonical invocation end to end.
//
// Responsibilities:
//   - Set up the two-tier diagnostic sink before anything else.
//   - Validate paths, metadata and tools up front; fatal conditions abort
//     with exit 1 and a best-effort journal failure record.
//   - Dry-run enumerates the manifest without touching the output root.
//   - Otherwise drive the pipeline, persist journal/report artifacts, and
//     translate the outcome into the exit contract.
func Execute(ctx context.Context, inv Invocation, console io.Writer) (Result, error) {
	res := Result{ExitCode: ExitFailure}

	log, closeLog, err := logging.Setup(inv.LogFile, console)
	if err != nil {
		return res, &ConfigError{Code: "LogFile", Message: fmt.Sprintf("cannot open log file %s: %v", inv.LogFile, err), Cause: err}
	}
	defer closeLog()

	logBanner(log, inv)

	// The journal lives under the output root, so dry-run leaves it alone.
	var rec *journal.Recorder
	var runID string
	if !inv.DryRun {
		if store, serr := journal.NewStore(inv.OutputDir); serr == nil {
			rec = &journal.Recorder{Store: store}
			runID = rec.NewRunID()
		}
	}

	if cerr := validateStellarisPath(inv.StellarisPath); cerr != nil {
		return res, fatal(log, rec, runID, cerr)
	}

	techFile := filepath.Join(inv.DataDir, "technologies.json")
	swapFile := filepath.Join(inv.DataDir, "technology_swaps.json")
	if info, serr := os.Stat(techFile); serr != nil || !info.Mode().IsRegular() {
		cerr := &ConfigError{
			Code:    "DataDir",
			Message: fmt.Sprintf("data directory missing technologies.json: %s\n  Use --data-dir to specify the correct location.", inv.DataDir),
			Cause:   serr,
		}
		return res, fatal(log, rec, runID, cerr)
	}

	if cerr := checkTool(log, "magick"); cerr != nil {
		return res, fatal(log, rec, runID, cerr)
	}
	if !inv.NoAVIF {
		if cerr := checkTool(log, "avifenc"); cerr != nil {
			return res, fatal(log, rec, runID, cerr)
		}
	}

	log.Info("Loading " + techFile)
	techIcons, merr := manifest.LoadTechIcons(techFile)
	if merr != nil {
		return res, fatal(log, rec, runID, merr)
	}
	log.Info(fmt.Sprintf("Found %d unique tech icons", len(techIcons)))

	log.Info("Loading " + swapFile)
	swapNames, merr := manifest.LoadSwapIcons(swapFile)
	if merr != nil {
		return res, fatal(log, rec, runID, merr)
	}

	assets := manifest.Build(inv.StellarisPath, inv.OutputDir, techIcons, swapNames)
	assets, ferr := manifest.Filter(assets, inv.Only)
	if ferr != nil {
		// Patterns were validated at parse time; a failure here is still an
		// invocation problem, not a pipeline one.
		return res, fatal(log, rec, runID, invalidInvocationf("--only: %v", ferr))
	}
	hash := manifest.Hash(assets)
	log.Info(fmt.Sprintf("Total asset manifest: %d entries", len(assets)))
	log.Debug("manifest hash: " + hash)

	if inv.DryRun {
		if inv.ReportPath != "" {
			log.Debug("--report ignored in dry-run")
		}
		report.DryRun(log, assets, len(manifest.CheckboxCrops()))
		res.ExitCode = ExitSuccess
		return res, nil
	}

	if cerr := createOutputDirs(inv); cerr != nil {
		return res, fatal(log, rec, runID, cerr)
	}

	run := journal.Run{
		RunID:        runID,
		ManifestHash: hash,
		StartTime:    time.Now().UTC(),
		Mode:         journalMode(inv),
		Status:       journal.RunRunning,
	}
	if rec != nil {
		_ = rec.Begin(run)
	}

	driver := &pipeline.Driver{
		Conv:       convert.New(log),
		Log:        log,
		Jobs:       inv.Jobs,
		SkipAVIF:   inv.NoAVIF,
		OutputRoot: inv.OutputDir,
	}
	pres, perr := driver.Run(ctx, assets)
	if perr != nil {
		return res, fatal(log, rec, runID, &journal.SystemFailureError{Code: "PipelineInvariant", Message: perr.Error(), Cause: perr})
	}
	res.Pipeline = pres

	stats := pres.Stats
	report.WriteSummary(log, report.RunSummary{
		Total:       stats.Total,
		CropCount:   len(manifest.CheckboxCrops()),
		Converted:   stats.Converted,
		Skipped:     stats.Skipped,
		Failed:      stats.Failed,
		DDSBytes:    stats.DDSBytes,
		PNGBytes:    stats.PNGBytes,
		AVIFBytes:   stats.AVIFBytes,
		AVIFEnabled: !inv.NoAVIF,
		ElapsedSecs: pres.Elapsed.Seconds(),
		LogFile:     inv.LogFile,
		Warnings:    noteStrings(stats.Warnings),
		Errors:      noteStrings(stats.Errors),
	})

	if rec != nil {
		run.Converted = stats.Converted
		run.Skipped = stats.Skipped
		run.Failed = stats.Failed
		if stats.Failed > 0 {
			run.Status = journal.RunFailed
			_ = rec.RecordFailure(runID, &journal.ConversionFailureError{
				Asset:   pres.FirstFailed(),
				Code:    "AssetFailed",
				Message: fmt.Sprintf("%d asset conversion(s) failed", stats.Failed),
			})
		} else {
			run.Status = journal.RunSucceeded
		}
		_ = rec.Finish(run)
	}

	if inv.ReportPath != "" {
		rep := buildRunReport(inv, hash, pres)
		if werr := rep.WriteFile(inv.ReportPath); werr != nil {
			cerr := &ConfigError{Code: "ReportWrite", Message: fmt.Sprintf("cannot write report %s: %v", inv.ReportPath, werr), Cause: werr}
			return res, fatal(log, rec, runID, cerr)
		}
		log.Info("Run report written to " + inv.ReportPath)
	}

	if stats.Failed > 0 {
		res.ExitCode = ExitFailure
		return res, nil
	}
	res.ExitCode = ExitSuccess
	return res, nil
}

func logBanner(log *slog.Logger, inv Invocation) {
	log.Info(banner)
	log.Info("Stellaris Media Extraction & AVIF Conversion")
	log.Info(banner)
	log.Info("Stellaris path : " + inv.StellarisPath)
	log.Info("Data directory : " + inv.DataDir)
	log.Info("Output directory: " + inv.OutputDir)
	log.Info("Log file       : " + inv.LogFile)
	log.Info(fmt.Sprintf("Dry run        : %v", inv.DryRun))
	avif := "enabled"
	if inv.NoAVIF {
		avif = "disabled"
	}
	log.Info("AVIF conversion: " + avif)
	jobs := "all cores"
	if inv.Jobs > 0 {
		jobs = fmt.Sprintf("%d", inv.Jobs)
	}
	log.Info("AVIF jobs      : " + jobs)
}

func validateStellarisPath(root string) error {
	techDir := filepath.Join(root, "common", "technology")
	info, err := os.Stat(techDir)
	if err != nil || !info.IsDir() {
		return &ConfigError{
			Code: "StellarisPath",
			Message: fmt.Sprintf("invalid Stellaris path: %s\n  Expected directory not found: %s\n  Use --stellaris-path to specify the correct location.",
				root, techDir),
			Cause: err,
		}
	}
	return nil
}

func checkTool(log *slog.Logger, name string) error {
	path, err := exec.LookPath(name)
	if err != nil {
		return &ConfigError{
			Code:    "ToolMissing",
			Message: fmt.Sprintf("required tool %q not found in PATH. Please install it.", name),
			Cause:   err,
		}
	}
	log.Debug(fmt.Sprintf("Found %s at %s", name, path))
	return nil
}

func createOutputDirs(inv Invocation) error {
	for _, cat := range manifest.Categories() {
		dirs := []string{filepath.Join(inv.OutputDir, "png", string(cat))}
		if !inv.NoAVIF {
			dirs = append(dirs, filepath.Join(inv.OutputDir, "avif", string(cat)))
		}
		for _, dir := range dirs {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return &ConfigError{Code: "OutputDir", Message: fmt.Sprintf("cannot create %s: %v", dir, err), Cause: err}
			}
		}
	}
	return nil
}

// fatal reports a run-aborting condition exactly once: to the log, to the
// journal (best-effort), and back to the caller for exit-code mapping.
func fatal(log *slog.Logger, rec *journal.Recorder, runID string, err error) error {
	log.Error(err.Error())
	if rec != nil && runID != "" {
		_ = rec.RecordFailure(runID, journalError(err))
	}
	return err
}

// journalError maps the CLI's fatal error types onto the journal's failure
// taxonomy. The journal cannot import this package, so the translation
// lives on the caller's side.
func journalError(err error) error {
	switch e := err.(type) {
	case *ConfigError:
		return &journal.ConfigFailureError{Code: e.Code, Message: e.Message, Cause: e.Cause}
	case *manifest.MetadataError:
		return &journal.MetadataFailureError{Code: "MalformedMetadata", Message: e.Error(), Cause: e}
	case *InvocationError:
		return &journal.ConfigFailureError{Code: "InvalidInvocation", Message: e.Message, Cause: e}
	default:
		return err
	}
}

func journalMode(inv Invocation) journal.RunMode {
	if inv.NoAVIF {
		return journal.ModePNGOnly
	}
	return journal.ModeFull
}

func buildRunReport(inv Invocation, hash string, pres *pipeline.Result) report.RunReport {
	mode := report.ModeFull
	if inv.NoAVIF {
		mode = report.ModePNGOnly
	}
	stats := pres.Stats
	outcomes := make([]report.AssetOutcome, 0, len(pres.FinalState))
	for key, st := range pres.FinalState {
		outcomes = append(outcomes, report.AssetOutcome{Asset: key, State: string(st)})
	}
	return report.RunReport{
		ManifestHash: hash,
		Mode:         mode,
		Total:        stats.Total,
		Converted:    stats.Converted,
		Skipped:      stats.Skipped,
		Failed:       stats.Failed,
		DDSBytes:     stats.DDSBytes,
		PNGBytes:     stats.PNGBytes,
		AVIFBytes:    stats.AVIFBytes,
		Warnings:     noteStrings(stats.Warnings),
		Errors:       noteStrings(stats.Errors),
		Assets:       outcomes,
	}
}

func noteStrings(notes []pipeline.Note) []string {
	out := make([]string, 0, len(notes))
	for _, n := range notes {
		out = append(out, n.String())
	}
	return out
}
