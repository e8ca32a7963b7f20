// Package report renders run output: the progress-independent summary
// block, the dry-run listing, and the machine-readable JSON report. It
// formats finished statistics and never mutates them.
package report

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/boujuan/StellarisTechCalculator/internal/manifest"
)

const rule = "============================================================"

// FormatSize renders a byte count with 1024-based units. Sub-kilobyte
// counts stay exact; larger counts get one decimal.
func FormatSize(n int64) string {
	switch {
	case n < 1024:
		return fmt.Sprintf("%dB", n)
	case n < 1024*1024:
		return fmt.Sprintf("%.1fKB", float64(n)/1024)
	default:
		return fmt.Sprintf("%.1fMB", float64(n)/(1024*1024))
	}
}

// RunSummary carries everything the final summary block prints. Warnings
// and Errors are already rendered to plain strings.
type RunSummary struct {
	Total     int
	CropCount int
	Converted int
	Skipped   int
	Failed    int

	DDSBytes  int64
	PNGBytes  int64
	AVIFBytes int64

	AVIFEnabled bool
	ElapsedSecs float64
	LogFile     string

	Warnings []string
	Errors   []string
}

// WriteSummary logs the closing summary block.
func WriteSummary(log *slog.Logger, sum RunSummary) {
	log.Info("")
	log.Info(rule)
	log.Info("EXTRACTION SUMMARY")
	log.Info(rule)
	log.Info(fmt.Sprintf("Total assets : %d (+%d sprite crops)", sum.Total, sum.CropCount))
	log.Info(fmt.Sprintf("Converted    : %d", sum.Converted))
	log.Info(fmt.Sprintf("Skipped      : %d (missing DDS)", sum.Skipped))
	log.Info(fmt.Sprintf("Failed       : %d", sum.Failed))
	log.Info(fmt.Sprintf("DDS total    : %s", FormatSize(sum.DDSBytes)))
	log.Info(fmt.Sprintf("PNG total    : %s", FormatSize(sum.PNGBytes)))
	if sum.AVIFEnabled {
		log.Info(fmt.Sprintf("AVIF total   : %s", FormatSize(sum.AVIFBytes)))
		if sum.DDSBytes > 0 {
			overall := (1 - float64(sum.AVIFBytes)/float64(sum.DDSBytes)) * 100
			log.Info(fmt.Sprintf("Overall savings: %.1f%% (DDS → AVIF)", overall))
		}
	}
	log.Info(fmt.Sprintf("Time elapsed : %.1fs", sum.ElapsedSecs))
	log.Info(fmt.Sprintf("Log file     : %s", sum.LogFile))

	if len(sum.Warnings) > 0 {
		log.Info(fmt.Sprintf("\nWarnings (%d):", len(sum.Warnings)))
		for _, w := range sum.Warnings {
			log.Info("  ⚠ " + w)
		}
	}
	if len(sum.Errors) > 0 {
		log.Info(fmt.Sprintf("\nErrors (%d):", len(sum.Errors)))
		for _, e := range sum.Errors {
			log.Info("  ✗ " + e)
		}
	}
	log.Info(rule)
}

// DryRun logs the per-category manifest listing without touching the
// output root: first five names per category, a remainder count, and an
// existence check against the source filesystem.
func DryRun(log *slog.Logger, assets []manifest.Asset, cropCount int) {
	log.Info("\n" + rule)
	log.Info(fmt.Sprintf("DRY RUN — %d assets to extract:", len(assets)))
	log.Info(rule)

	byCategory := make(map[manifest.Category][]manifest.Asset)
	for _, asset := range assets {
		byCategory[asset.Category] = append(byCategory[asset.Category], asset)
	}
	for _, cat := range manifest.Categories() {
		entries := byCategory[cat]
		log.Info(fmt.Sprintf("\n  %s/ (%d files)", cat, len(entries)))
		for i, entry := range entries {
			if i == 5 {
				log.Info(fmt.Sprintf("    ... and %d more", len(entries)-5))
				break
			}
			exists := "MISSING"
			if info, err := os.Stat(entry.SourceDDS); err == nil && info.Mode().IsRegular() {
				exists = "OK"
			}
			log.Info(fmt.Sprintf("    %s.dds [%s]", entry.Name, exists))
		}
	}

	log.Info(fmt.Sprintf("\n  + %d checkbox sprite crops", cropCount))
	log.Info(fmt.Sprintf("\nTotal assets: %d", len(assets)+cropCount))
}
