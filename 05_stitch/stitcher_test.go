package stitch

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"storyboard-pipeline/config"
	"storyboard-pipeline/types"
)

func TestSceneNumber(t *testing.T) {
	cases := []struct {
		name string
		want int
	}{
		{"scene_1.mp4", 1},
		{"scene_10.mp4", 10},
		{"002_chunk.mp4", 2},
		{"clip42_final.mp4", 42},
		{"no_digits.mp4", -1},
	}
	for _, c := range cases {
		if got := SceneNumber(c.name); got != c.want {
			t.Errorf("SceneNumber(%q) = %d, want %d", c.name, got, c.want)
		}
	}
}

func TestSortClipsNumeric(t *testing.T) {
	names := []string{"scene_2.mp4", "scene_10.mp4", "scene_1.mp4"}
	SortClips(names)

	want := []string{"scene_1.mp4", "scene_2.mp4", "scene_10.mp4"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("sorted = %v, want %v", names, want)
		}
	}
}

func TestSortClipsIsNotLexicographic(t *testing.T) {
	// Lexicographic order would put scene_10 before scene_2
	names := []string{"scene_10.mp4", "scene_2.mp4"}
	SortClips(names)
	if names[0] != "scene_2.mp4" {
		t.Errorf("got %v, numeric sort must place scene_2 first", names)
	}
}

func TestRunMissingDirectory(t *testing.T) {
	s := New(&config.Config{})
	_, err := s.Run(context.Background(), filepath.Join(t.TempDir(), "does-not-exist"), "out.mp4")
	if err == nil {
		t.Fatal("expected error for missing clips directory")
	}
}

func TestRunEmptyDirectory(t *testing.T) {
	s := New(&config.Config{})
	_, err := s.Run(context.Background(), t.TempDir(), "out.mp4")
	if err == nil {
		t.Fatal("expected error for directory with no clips")
	}
	if !errors.Is(err, types.ErrPipeline) {
		t.Errorf("error should wrap ErrPipeline, got %v", err)
	}
}

func TestCanvasSize(t *testing.T) {
	cases := []struct {
		resolution string
		aspect     string
		wantW      int
		wantH      int
	}{
		{"1080p", "16:9", 1920, 1080},
		{"720p", "16:9", 1280, 720},
		{"1080p", "9:16", 608, 1080},
		{"1080p", "1:1", 1080, 1080},
		{"", "", 1920, 1080},
		{"garbage", "also:garbage", 1920, 1080},
	}
	for _, tc := range cases {
		w, h := CanvasSize(tc.resolution, tc.aspect)
		if w != tc.wantW || h != tc.wantH {
			t.Errorf("CanvasSize(%q, %q) = %dx%d, want %dx%d",
				tc.resolution, tc.aspect, w, h, tc.wantW, tc.wantH)
		}
	}
}
