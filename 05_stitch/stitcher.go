package stitch

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"storyboard-pipeline/config"
	"storyboard-pipeline/types"
)

var digitRun = regexp.MustCompile(`(\d+)`)

// Stitcher concatenates ordered scene clips into one final movie
type Stitcher struct {
	cfg *config.Config
}

// New creates a new Stitcher
func New(cfg *config.Config) *Stitcher {
	return &Stitcher{cfg: cfg}
}

// Run finds every .mp4 in clipsDir, sorts them by the number embedded in
// their filenames, and concatenates them into outputPath. Missing directory
// or an empty clip set is fatal.
func (s *Stitcher) Run(ctx context.Context, clipsDir, outputPath string) (string, error) {
	log.Printf("[stitch] Searching for video clips in %s...", clipsDir)

	entries, err := os.ReadDir(clipsDir)
	if err != nil {
		return "", fmt.Errorf("clips directory %s: %w", clipsDir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".mp4") {
			continue
		}
		if e.Name() == filepath.Base(outputPath) {
			continue
		}
		names = append(names, e.Name())
	}
	if len(names) == 0 {
		return "", fmt.Errorf("no .mp4 clips found in %s: %w", clipsDir, types.ErrPipeline)
	}

	SortClips(names)
	log.Printf("[stitch] Found and sorted %d clips:", len(names))
	for _, n := range names {
		log.Printf("[stitch]   -> %s", n)
	}

	// Scoped concat list: created here, removed on every exit path
	listFile := filepath.Join(clipsDir, "stitch_concat.txt")
	var lines []string
	for _, n := range names {
		abs, err := filepath.Abs(filepath.Join(clipsDir, n))
		if err != nil {
			return "", err
		}
		lines = append(lines, fmt.Sprintf("file '%s'", abs))
	}
	if err := os.WriteFile(listFile, []byte(strings.Join(lines, "\n")), 0644); err != nil {
		return "", fmt.Errorf("write concat list: %w", err)
	}
	defer os.Remove(listFile)

	width, height := CanvasSize(s.cfg.Render.Resolution, s.cfg.Render.AspectRatio)
	filter := fmt.Sprintf(
		"scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2,setsar=1",
		width, height, width, height,
	)

	log.Printf("[stitch] Writing final movie to %s (%dx%d)...", outputPath, width, height)
	cmd := exec.CommandContext(ctx, "ffmpeg", "-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listFile,
		// Re-encode with scale+pad so clips with mismatched resolutions or
		// aspect ratios still concatenate cleanly
		"-vf", filter,
		"-c:v", s.cfg.Stitch.VideoCodec,
		"-c:a", s.cfg.Stitch.AudioCodec,
		"-pix_fmt", "yuv420p",
		outputPath,
	)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("ffmpeg concat: %w", err)
	}

	log.Printf("[stitch] ✅ Final movie saved: %s", outputPath)
	return outputPath, nil
}

// CanvasSize derives the output canvas from the configured resolution
// (e.g. "1080p") and aspect ratio (e.g. "16:9"). Unparseable values fall
// back to 1920x1080. Width is rounded up to an even number for the encoder.
func CanvasSize(resolution, aspectRatio string) (int, int) {
	height := 1080
	if n, err := strconv.Atoi(strings.TrimSuffix(resolution, "p")); err == nil && n > 0 {
		height = n
	}

	aw, ah := 16, 9
	if parts := strings.SplitN(aspectRatio, ":", 2); len(parts) == 2 {
		w, errW := strconv.Atoi(parts[0])
		h, errH := strconv.Atoi(parts[1])
		if errW == nil && errH == nil && w > 0 && h > 0 {
			aw, ah = w, h
		}
	}

	width := height * aw / ah
	if width%2 != 0 {
		width++
	}
	return width, height
}

// SortClips orders filenames ascending by the first run of digits each one
// contains — numeric order, not lexicographic, so scene_10 follows scene_2
func SortClips(names []string) {
	sort.SliceStable(names, func(i, j int) bool {
		return SceneNumber(names[i]) < SceneNumber(names[j])
	})
}

// SceneNumber extracts the first run of digits from a filename, or -1 if
// there is none
func SceneNumber(name string) int {
	m := digitRun.FindString(name)
	if m == "" {
		return -1
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return -1
	}
	return n
}
