package generate

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"storyboard-pipeline/types"
)

// fakeRunner answers ffprobe with a fixed duration and lets each test decide
// what the ffmpeg invocation does with the output path
type fakeRunner struct {
	duration   string
	onExtract  func(imagePath string) error
	ffmpegArgs []string
}

func (f *fakeRunner) run(ctx context.Context, name string, args ...string) ([]byte, error) {
	switch name {
	case "ffprobe":
		return []byte(f.duration + "\n"), nil
	case "ffmpeg":
		f.ffmpegArgs = args
		// output path is the last argument
		return nil, f.onExtract(args[len(args)-1])
	}
	return nil, fmt.Errorf("unexpected command %q", name)
}

func newTestExtractor(offset float64, runner *fakeRunner) *Extractor {
	return &Extractor{tailOffset: offset, run: runner.run}
}

func TestExtractWritesFrame(t *testing.T) {
	dir := t.TempDir()
	imagePath := filepath.Join(dir, "last_frame.png")

	runner := &fakeRunner{
		duration: "8.000000",
		onExtract: func(path string) error {
			return os.WriteFile(path, []byte("png-bytes"), 0644)
		},
	}
	e := newTestExtractor(0.1, runner)

	if err := e.Extract(context.Background(), "scene_1.mp4", imagePath); err != nil {
		t.Fatalf("Extract() error = %v, want nil", err)
	}
}

func TestExtractEmptyOutputRejected(t *testing.T) {
	// The decoder can exit 0 without producing a usable image; both the
	// empty-file and missing-file shapes must surface as extraction errors
	dir := t.TempDir()

	cases := []struct {
		name      string
		onExtract func(path string) error
	}{
		{"empty file", func(path string) error { return os.WriteFile(path, nil, 0644) }},
		{"no file", func(path string) error { return nil }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			imagePath := filepath.Join(dir, tc.name+".png")
			runner := &fakeRunner{duration: "8.000000", onExtract: tc.onExtract}
			e := newTestExtractor(0.1, runner)

			err := e.Extract(context.Background(), "scene_1.mp4", imagePath)
			if !errors.Is(err, types.ErrExtraction) {
				t.Fatalf("Extract() error = %v, want ErrExtraction", err)
			}
		})
	}
}

func TestExtractSeekClampedToStart(t *testing.T) {
	// A clip shorter than the tail offset must seek to 0, never negative
	dir := t.TempDir()
	imagePath := filepath.Join(dir, "frame.png")

	runner := &fakeRunner{
		duration: "0.050000",
		onExtract: func(path string) error {
			return os.WriteFile(path, []byte("x"), 0644)
		},
	}
	e := newTestExtractor(0.1, runner)

	if err := e.Extract(context.Background(), "short.mp4", imagePath); err != nil {
		t.Fatalf("Extract() error = %v, want nil", err)
	}

	seek := ""
	for i, arg := range runner.ffmpegArgs {
		if arg == "-ss" && i+1 < len(runner.ffmpegArgs) {
			seek = runner.ffmpegArgs[i+1]
		}
	}
	if seek != "0.000" {
		t.Fatalf("seek = %q, want %q", seek, "0.000")
	}
}

func TestExtractProbeFailure(t *testing.T) {
	runner := &fakeRunner{duration: "not-a-number"}
	e := newTestExtractor(0.1, runner)

	err := e.Extract(context.Background(), "scene_1.mp4", "frame.png")
	if err == nil {
		t.Fatal("Extract() error = nil, want duration parse failure")
	}
	if errors.Is(err, types.ErrExtraction) {
		t.Fatalf("Extract() error = %v, want a probe error, not ErrExtraction", err)
	}
}
