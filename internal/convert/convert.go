// Package convert runs the external image tools. All pixel work happens
// across a process boundary; this package never decodes an image itself.
package convert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/boujuan/StellarisTechCalculator/internal/manifest"
)

const (
	// DefaultMagickTimeout bounds a single DDS decode or crop.
	DefaultMagickTimeout = 30 * time.Second
	// DefaultAvifencTimeout bounds a single AVIF encode; large lossless
	// encodes are slow even with all cores.
	DefaultAvifencTimeout = 120 * time.Second
)

// Converter invokes magick and avifenc with bounded runtimes and captured
// stderr.
//
// Every operation reports success as a plain bool: a nonzero exit, a
// timeout, or an unstartable tool is a stage failure for one asset, never
// an error that stops the run. Failure details go to the log.
type Converter struct {
	MagickBin      string
	AvifencBin     string
	MagickTimeout  time.Duration
	AvifencTimeout time.Duration

	log *slog.Logger
}

// New returns a Converter resolving both tools through PATH.
func New(log *slog.Logger) *Converter {
	return &Converter{
		MagickBin:      "magick",
		AvifencBin:     "avifenc",
		MagickTimeout:  DefaultMagickTimeout,
		AvifencTimeout: DefaultAvifencTimeout,
		log:            log,
	}
}

// DDSToPNG converts one DDS texture to PNG.
func (c *Converter) DDSToPNG(ctx context.Context, src, dst string) bool {
	if !c.ensureParent(dst) {
		return false
	}
	return c.run(ctx, "magick", c.MagickTimeout, c.MagickBin, src, dst)
}

// PNGToAVIF encodes one PNG as AVIF. Lossless assets use the archival
// profile; lossy assets trade quality 90 with full-resolution chroma.
// jobs <= 0 lets avifenc use all cores.
func (c *Converter) PNGToAVIF(ctx context.Context, src, dst string, lossless bool, jobs int) bool {
	if !c.ensureParent(dst) {
		return false
	}

	jobsArg := "all"
	if jobs > 0 {
		jobsArg = strconv.Itoa(jobs)
	}

	var args []string
	if lossless {
		args = []string{"--lossless", "-s", "0", "-j", jobsArg, src, dst}
	} else {
		args = []string{"-q", "90", "--qalpha", "100", "-s", "0", "-y", "444", "-j", jobsArg, src, dst}
	}
	return c.run(ctx, "avifenc", c.AvifencTimeout, c.AvifencBin, args...)
}

// Crop cuts one region out of a PNG sprite sheet. +repage drops the canvas
// offset so the crop stands alone.
func (c *Converter) Crop(ctx context.Context, src string, region manifest.CropRegion, dst string) bool {
	if !c.ensureParent(dst) {
		return false
	}
	geometry := fmt.Sprintf("%dx%d+%d+%d", region.Width, region.Height, region.X, region.Y)
	return c.run(ctx, "magick crop", c.MagickTimeout, c.MagickBin, src, "-crop", geometry, "+repage", dst)
}

func (c *Converter) ensureParent(dst string) bool {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		c.log.Error(fmt.Sprintf("cannot create %s: %v", filepath.Dir(dst), err))
		return false
	}
	return true
}

func (c *Converter) run(ctx context.Context, label string, timeout time.Duration, bin string, args ...string) bool {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	line := bin + " " + strings.Join(args, " ")
	c.log.Debug("exec: " + line)

	cmd := exec.CommandContext(ctx, bin, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return true
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		c.log.Error(fmt.Sprintf("%s timed out (%ds): %s", label, int(timeout.Seconds()), line))
		return false
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		c.log.Error(fmt.Sprintf("%s failed: %s\n  stderr: %s", label, line, strings.TrimSpace(stderr.String())))
		return false
	}

	// The tool could not be started at all (vanished mid-run, not executable).
	c.log.Error(fmt.Sprintf("%s exception: %v", label, err))
	return false
}
