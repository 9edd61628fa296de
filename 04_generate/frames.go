package generate

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"storyboard-pipeline/types"
)

// runCommand executes one external command and returns its combined output
type runCommand func(ctx context.Context, name string, args ...string) ([]byte, error)

func execCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Extractor samples a single still image near the end of a rendered clip.
// The sample point sits tailOffset seconds before the end to avoid decoder
// edge artifacts at the exact last frame.
type Extractor struct {
	tailOffset float64
	run        runCommand
}

// NewExtractor creates an Extractor with the given tail offset in seconds
func NewExtractor(tailOffsetSec float64) *Extractor {
	return &Extractor{tailOffset: tailOffsetSec, run: execCommand}
}

// Extract writes one frame of videoPath to imagePath and verifies the output
// is present and non-empty. The underlying decoder can fail silently with an
// empty file, which would corrupt the next scene's conditioning input, so the
// verification is not optional.
func (e *Extractor) Extract(ctx context.Context, videoPath, imagePath string) error {
	log.Printf("[generate] Extracting last frame from %s...", videoPath)

	duration, err := e.probeDuration(ctx, videoPath)
	if err != nil {
		return err
	}

	at := duration - e.tailOffset
	if at < 0 {
		at = 0
	}

	output, err := e.run(ctx, "ffmpeg", "-y",
		"-ss", fmt.Sprintf("%.3f", at),
		"-i", videoPath,
		"-frames:v", "1",
		imagePath,
	)
	if err != nil {
		return fmt.Errorf("ffmpeg frame extract: %w, output: %s", err, output)
	}

	info, err := os.Stat(imagePath)
	if err != nil || info.Size() == 0 {
		return fmt.Errorf("frame file %s missing or empty: %w", imagePath, types.ErrExtraction)
	}

	log.Printf("[generate] ✅ Frame extracted to %s (%d bytes)", imagePath, info.Size())
	return nil
}

// probeDuration returns the clip length in seconds via ffprobe
func (e *Extractor) probeDuration(ctx context.Context, videoPath string) (float64, error) {
	output, err := e.run(ctx, "ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		videoPath,
	)
	if err != nil {
		return 0, fmt.Errorf("ffprobe duration: %w, output: %s", err, output)
	}
	duration, err := strconv.ParseFloat(strings.TrimSpace(string(output)), 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", strings.TrimSpace(string(output)), err)
	}
	return duration, nil
}
