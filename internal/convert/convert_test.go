package convert

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/boujuan/StellarisTechCalculator/internal/manifest"
)

// writeTool drops a fake shell tool into dir and returns its path.
func writeTool(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	script := "#!/bin/sh\n" + body + "\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("failed to write fake tool: %v", err)
	}
	return path
}

// recordingTool writes a fake tool that appends its arguments, one per
// line, to recPath and exits 0.
func recordingTool(t *testing.T, dir, name, recPath string) string {
	t.Helper()
	return writeTool(t, dir, name, fmt.Sprintf(`printf '%%s\n' "$@" > %s`, recPath))
}

func recordedArgs(t *testing.T, recPath string) []string {
	t.Helper()
	data, err := os.ReadFile(recPath)
	if err != nil {
		t.Fatalf("failed to read recorded args: %v", err)
	}
	return strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func bufferLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// TestDDSToPNG_Success verifies a zero-exit tool reports success and the
// destination is produced.
func TestDDSToPNG_Success(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.dds")
	if err := os.WriteFile(src, []byte("dds-bytes"), 0o644); err != nil {
		t.Fatalf("failed to write source: %v", err)
	}
	dst := filepath.Join(dir, "out.png")

	conv := New(discardLogger())
	conv.MagickBin = writeTool(t, dir, "magick", `cp "$1" "$2"`)

	if !conv.DDSToPNG(context.Background(), src, dst) {
		t.Fatal("expected conversion to succeed")
	}
	if _, err := os.Stat(dst); err != nil {
		t.Errorf("destination not written: %v", err)
	}
}

// TestDDSToPNG_CreatesDestinationDir verifies missing parent directories
// are created before the tool runs.
func TestDDSToPNG_CreatesDestinationDir(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.dds")
	if err := os.WriteFile(src, []byte("dds-bytes"), 0o644); err != nil {
		t.Fatalf("failed to write source: %v", err)
	}
	dst := filepath.Join(dir, "png", "tech_icons", "out.png")

	conv := New(discardLogger())
	conv.MagickBin = writeTool(t, dir, "magick", `cp "$1" "$2"`)

	if !conv.DDSToPNG(context.Background(), src, dst) {
		t.Fatal("expected conversion to succeed")
	}
	if _, err := os.Stat(dst); err != nil {
		t.Errorf("destination not written under new directory: %v", err)
	}
}

// TestDDSToPNG_NonzeroExit verifies a failing tool reports failure and its
// stderr lands in the log.
func TestDDSToPNG_NonzeroExit(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer

	conv := New(bufferLogger(&buf))
	conv.MagickBin = writeTool(t, dir, "magick", `echo "no decode delegate" >&2; exit 1`)

	if conv.DDSToPNG(context.Background(), filepath.Join(dir, "in.dds"), filepath.Join(dir, "out.png")) {
		t.Fatal("expected conversion to fail")
	}
	logged := buf.String()
	if !strings.Contains(logged, "magick failed") {
		t.Errorf("failure not logged: %s", logged)
	}
	if !strings.Contains(logged, "no decode delegate") {
		t.Errorf("stderr not captured in log: %s", logged)
	}
}

// TestDDSToPNG_Timeout verifies a hung tool is killed at the deadline.
func TestDDSToPNG_Timeout(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer

	conv := New(bufferLogger(&buf))
	conv.MagickBin = writeTool(t, dir, "magick", `sleep 5`)
	conv.MagickTimeout = 100 * time.Millisecond

	start := time.Now()
	ok := conv.DDSToPNG(context.Background(), filepath.Join(dir, "in.dds"), filepath.Join(dir, "out.png"))
	elapsed := time.Since(start)

	if ok {
		t.Fatal("expected conversion to fail")
	}
	if elapsed > 3*time.Second {
		t.Errorf("timeout took too long: %v", elapsed)
	}
	if !strings.Contains(buf.String(), "magick timed out") {
		t.Errorf("timeout not logged: %s", buf.String())
	}
}

// TestDDSToPNG_MissingTool verifies an unstartable tool reports failure
// rather than panicking.
func TestDDSToPNG_MissingTool(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer

	conv := New(bufferLogger(&buf))
	conv.MagickBin = filepath.Join(dir, "no-such-tool")

	if conv.DDSToPNG(context.Background(), filepath.Join(dir, "in.dds"), filepath.Join(dir, "out.png")) {
		t.Fatal("expected conversion to fail")
	}
	if !strings.Contains(buf.String(), "magick exception") {
		t.Errorf("startup failure not logged: %s", buf.String())
	}
}

// TestDDSToPNG_ParentNotCreatable verifies the tool is never invoked when
// the destination directory cannot be created.
func TestDDSToPNG_ParentNotCreatable(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("plain file"), 0o644); err != nil {
		t.Fatalf("failed to write blocker file: %v", err)
	}
	rec := filepath.Join(dir, "invoked.txt")

	conv := New(discardLogger())
	conv.MagickBin = recordingTool(t, dir, "magick", rec)

	dst := filepath.Join(blocker, "out.png")
	if conv.DDSToPNG(context.Background(), filepath.Join(dir, "in.dds"), dst) {
		t.Fatal("expected conversion to fail")
	}
	if _, err := os.Stat(rec); err == nil {
		t.Error("tool was invoked despite unusable destination")
	}
}

// TestPNGToAVIF_LosslessArgs verifies the archival encoder profile and the
// all-cores default.
func TestPNGToAVIF_LosslessArgs(t *testing.T) {
	dir := t.TempDir()
	rec := filepath.Join(dir, "args.txt")

	conv := New(discardLogger())
	conv.AvifencBin = recordingTool(t, dir, "avifenc", rec)

	src := filepath.Join(dir, "in.png")
	dst := filepath.Join(dir, "out.avif")
	if !conv.PNGToAVIF(context.Background(), src, dst, true, 0) {
		t.Fatal("expected conversion to succeed")
	}

	want := []string{"--lossless", "-s", "0", "-j", "all", src, dst}
	got := recordedArgs(t, rec)
	if len(got) != len(want) {
		t.Fatalf("expected %d args, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("arg %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

// TestPNGToAVIF_LossyArgs verifies the web encoder profile and an explicit
// worker count.
func TestPNGToAVIF_LossyArgs(t *testing.T) {
	dir := t.TempDir()
	rec := filepath.Join(dir, "args.txt")

	conv := New(discardLogger())
	conv.AvifencBin = recordingTool(t, dir, "avifenc", rec)

	src := filepath.Join(dir, "in.png")
	dst := filepath.Join(dir, "out.avif")
	if !conv.PNGToAVIF(context.Background(), src, dst, false, 4) {
		t.Fatal("expected conversion to succeed")
	}

	want := []string{"-q", "90", "--qalpha", "100", "-s", "0", "-y", "444", "-j", "4", src, dst}
	got := recordedArgs(t, rec)
	if len(got) != len(want) {
		t.Fatalf("expected %d args, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("arg %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

// TestPNGToAVIF_NonzeroExit verifies encoder failures are logged under the
// avifenc label.
func TestPNGToAVIF_NonzeroExit(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer

	conv := New(bufferLogger(&buf))
	conv.AvifencBin = writeTool(t, dir, "avifenc", `echo "cannot read input" >&2; exit 2`)

	if conv.PNGToAVIF(context.Background(), filepath.Join(dir, "in.png"), filepath.Join(dir, "out.avif"), true, 0) {
		t.Fatal("expected conversion to fail")
	}
	logged := buf.String()
	if !strings.Contains(logged, "avifenc failed") {
		t.Errorf("failure not logged: %s", logged)
	}
	if !strings.Contains(logged, "cannot read input") {
		t.Errorf("stderr not captured in log: %s", logged)
	}
}

// TestCrop_Geometry verifies the crop region is rendered as WxH+X+Y with
// the canvas offset discarded.
func TestCrop_Geometry(t *testing.T) {
	dir := t.TempDir()
	rec := filepath.Join(dir, "args.txt")

	conv := New(discardLogger())
	conv.MagickBin = recordingTool(t, dir, "magick", rec)

	src := filepath.Join(dir, "sheet.png")
	dst := filepath.Join(dir, "crop.png")
	region := manifest.CropRegion{Name: "checkbox_normal", X: 11, Y: 11, Width: 26, Height: 26}
	if !conv.Crop(context.Background(), src, region, dst) {
		t.Fatal("expected crop to succeed")
	}

	want := []string{src, "-crop", "26x26+11+11", "+repage", dst}
	got := recordedArgs(t, rec)
	if len(got) != len(want) {
		t.Fatalf("expected %d args, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("arg %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

// TestCrop_NonzeroExit verifies crop failures are logged under their own
// label.
func TestCrop_NonzeroExit(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer

	conv := New(bufferLogger(&buf))
	conv.MagickBin = writeTool(t, dir, "magick", `echo "geometry out of bounds" >&2; exit 1`)

	region := manifest.CropRegion{Name: "checkbox_hover", X: 107, Y: 11, Width: 26, Height: 26}
	if conv.Crop(context.Background(), filepath.Join(dir, "sheet.png"), region, filepath.Join(dir, "crop.png")) {
		t.Fatal("expected crop to fail")
	}
	logged := buf.String()
	if !strings.Contains(logged, "magick crop failed") {
		t.Errorf("failure not logged: %s", logged)
	}
	if !strings.Contains(logged, "geometry out of bounds") {
		t.Errorf("stderr not captured in log: %s", logged)
	}
}
