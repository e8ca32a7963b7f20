package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/boujuan/StellarisTechCalculator/internal/manifest"
	"github.com/boujuan/StellarisTechCalculator/internal/report"
)

// Converter is the external-tool surface the driver needs. All three
// operations report per-asset success; they never abort the run.
type Converter interface {
	DDSToPNG(ctx context.Context, src, dst string) bool
	PNGToAVIF(ctx context.Context, src, dst string, lossless bool, jobs int) bool
	Crop(ctx context.Context, src string, region manifest.CropRegion, dst string) bool
}

// Driver converts a manifest one asset at a time: existence check, DDS to
// PNG, then PNG to AVIF unless SkipAVIF is set. After the main pass it cuts
// the fixed checkbox crops out of the converted sprite sheet.
type Driver struct {
	Conv Converter
	Log  *slog.Logger

	// Jobs is the avifenc worker count; zero or less means all cores.
	Jobs int
	// SkipAVIF stops after the PNG stage for every asset and crop.
	SkipAVIF bool
	// OutputRoot anchors the sprite-sheet and crop destinations.
	OutputRoot string
}

// Run processes every asset and crop. The returned error is non-nil only
// for a state-machine invariant violation; conversion failures are
// recorded in the result's stats and final states instead.
func (d *Driver) Run(ctx context.Context, assets []manifest.Asset) (*Result, error) {
	start := time.Now()

	crops := manifest.CheckboxCrops()
	state := make(RunState, len(assets)+len(crops))
	for _, asset := range assets {
		state[asset.Key()] = AssetPending
	}
	for _, crop := range crops {
		state[cropKey(crop)] = AssetPending
	}

	stats := &Stats{Total: len(assets)}

	for i, asset := range assets {
		key := asset.Key()
		prefix := fmt.Sprintf("[%03d/%d] %s", i+1, stats.Total, key)

		if !fileExists(asset.SourceDDS) {
			d.Log.Warn(fmt.Sprintf("%s: DDS not found — %s", prefix, asset.SourceDDS))
			if err := Transition(state, key, AssetPending, AssetSkipped); err != nil {
				return nil, err
			}
			stats.Skipped++
			stats.AddWarning(key, "DDS missing")
			continue
		}

		if err := Transition(state, key, AssetPending, AssetConverting); err != nil {
			return nil, err
		}

		ddsSize := fileSize(asset.SourceDDS)
		stats.DDSBytes += ddsSize

		if !d.Conv.DDSToPNG(ctx, asset.SourceDDS, asset.DestPNG) {
			d.Log.Error(prefix + ": DDS→PNG conversion failed")
			if err := Transition(state, key, AssetConverting, AssetFailed); err != nil {
				return nil, err
			}
			stats.Failed++
			stats.AddError(key, "DDS→PNG failed")
			continue
		}

		pngSize := fileSize(asset.DestPNG)
		stats.PNGBytes += pngSize

		if d.SkipAVIF {
			d.Log.Info(fmt.Sprintf("%s: DDS %s → PNG %s",
				prefix, report.FormatSize(ddsSize), report.FormatSize(pngSize)))
		} else {
			if !d.Conv.PNGToAVIF(ctx, asset.DestPNG, asset.DestAVIF, asset.Lossless, d.Jobs) {
				d.Log.Error(prefix + ": PNG→AVIF conversion failed (PNG preserved)")
				if err := Transition(state, key, AssetConverting, AssetFailed); err != nil {
					return nil, err
				}
				stats.Failed++
				stats.AddError(key, "PNG→AVIF failed")
				continue
			}

			avifSize := fileSize(asset.DestAVIF)
			stats.AVIFBytes += avifSize
			savings := 0.0
			if ddsSize > 0 {
				savings = (1 - float64(avifSize)/float64(ddsSize)) * 100
			}
			d.Log.Info(fmt.Sprintf("%s: DDS %s → PNG %s → AVIF %s (%.0f%% savings)",
				prefix, report.FormatSize(ddsSize), report.FormatSize(pngSize),
				report.FormatSize(avifSize), savings))
		}

		if err := Transition(state, key, AssetConverting, AssetConverted); err != nil {
			return nil, err
		}
		stats.Converted++
	}

	if err := d.cropPass(ctx, state, stats, crops); err != nil {
		return nil, err
	}

	return &Result{FinalState: state, Stats: stats, Elapsed: time.Since(start)}, nil
}

// cropPass cuts the fixed checkbox regions out of the converted sprite
// sheet. Crops have no per-crop skip path: either the sheet's PNG exists
// and every region is attempted, or the whole pass is skipped with one
// warning. Crop failures count toward the failed total like any asset.
func (d *Driver) cropPass(ctx context.Context, state RunState, stats *Stats, crops []manifest.CropRegion) error {
	d.Log.Info("")
	d.Log.Info("Processing checkbox sprite crops...")

	sheet := manifest.CheckboxSheetPNG(d.OutputRoot)
	if !fileExists(sheet) {
		d.Log.Warn("Checkbox sprite PNG not found — skipping crops")
		stats.AddWarning("", "Checkbox sprite sheet missing, crops skipped")
		for _, crop := range crops {
			if err := Transition(state, cropKey(crop), AssetPending, AssetSkipped); err != nil {
				return err
			}
		}
		return nil
	}

	for _, crop := range crops {
		key := cropKey(crop)
		if err := Transition(state, key, AssetPending, AssetConverting); err != nil {
			return err
		}

		cropPNG := manifest.DestPNG(d.OutputRoot, manifest.CategorySprites, crop.Name)
		cropAVIF := manifest.DestAVIF(d.OutputRoot, manifest.CategorySprites, crop.Name)

		if !d.Conv.Crop(ctx, sheet, crop, cropPNG) {
			d.Log.Error(fmt.Sprintf("  %s: crop failed", key))
			if err := Transition(state, key, AssetConverting, AssetFailed); err != nil {
				return err
			}
			stats.Failed++
			stats.AddError(key, "crop failed")
			continue
		}

		pngSize := fileSize(cropPNG)
		stats.PNGBytes += pngSize

		if d.SkipAVIF {
			d.Log.Info(fmt.Sprintf("  %s: PNG %s", key, report.FormatSize(pngSize)))
		} else {
			// Crops are UI chrome and must stay pixel-exact, so the
			// lossless policy applies regardless of the sheet's own policy.
			if !d.Conv.PNGToAVIF(ctx, cropPNG, cropAVIF, true, d.Jobs) {
				d.Log.Error(fmt.Sprintf("  %s: AVIF conversion failed", key))
				if err := Transition(state, key, AssetConverting, AssetFailed); err != nil {
					return err
				}
				stats.Failed++
				stats.AddError(key, "PNG→AVIF failed")
				continue
			}

			avifSize := fileSize(cropAVIF)
			stats.AVIFBytes += avifSize
			d.Log.Info(fmt.Sprintf("  %s: PNG %s → AVIF %s",
				key, report.FormatSize(pngSize), report.FormatSize(avifSize)))
		}

		if err := Transition(state, key, AssetConverting, AssetConverted); err != nil {
			return err
		}
	}
	return nil
}

func cropKey(crop manifest.CropRegion) string {
	return string(manifest.CategorySprites) + "/" + crop.Name
}

// fileSize returns the size of path in bytes, or 0 when it cannot be
// stat'd.
func fileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
