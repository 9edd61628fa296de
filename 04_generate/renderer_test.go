package generate

import (
	"context"
	"fmt"
	"os"
	"testing"

	"google.golang.org/genai"

	"storyboard-pipeline/config"
	"storyboard-pipeline/types"
)

type generatorCall struct {
	model  string
	prompt string
	image  string // conditioning image content, "" for text-only
}

// fakeGenerator records every submission and returns canned video bytes
type fakeGenerator struct {
	calls   []generatorCall
	failAt  int // 1-based call number to fail on, 0 = never
	failErr error
}

func (f *fakeGenerator) Generate(ctx context.Context, model, prompt string, image *genai.Image) ([]byte, error) {
	call := generatorCall{model: model, prompt: prompt}
	if image != nil {
		call.image = string(image.ImageBytes)
	}
	f.calls = append(f.calls, call)

	if f.failAt > 0 && len(f.calls) == f.failAt {
		return nil, f.failErr
	}
	return []byte(fmt.Sprintf("clip-%d", len(f.calls))), nil
}

// fakeExtractor writes a marker derived from the source clip, so tests can
// verify exactly which scene a conditioning frame came from
type fakeExtractor struct{}

func (fakeExtractor) Extract(ctx context.Context, videoPath, imagePath string) error {
	return os.WriteFile(imagePath, []byte("frame-of:"+videoPath), 0644)
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Models.RenderText = "veo-text"
	cfg.Models.RenderImage = "veo-image"
	cfg.Render.DurationSec = 8
	return cfg
}

func testPrompts(n int) []types.Prompt {
	var prompts []types.Prompt
	for i := 1; i <= n; i++ {
		prompts = append(prompts, types.Prompt{
			Key:  fmt.Sprintf("%03d_chunk_prompt.txt", i),
			Text: fmt.Sprintf("prompt %d", i),
		})
	}
	return prompts
}

func TestRunConditioningChain(t *testing.T) {
	gen := &fakeGenerator{}
	r := &Renderer{cfg: testConfig(), gen: gen, frames: fakeExtractor{}}
	workspace := t.TempDir()

	scenes, err := r.Run(context.Background(), testPrompts(3), workspace)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(scenes) != 3 {
		t.Fatalf("got %d scenes, want 3", len(scenes))
	}

	// Scene 1 is text-only
	if gen.calls[0].image != "" {
		t.Errorf("scene 1 should not carry a conditioning image, got %q", gen.calls[0].image)
	}
	if gen.calls[0].model != "veo-text" {
		t.Errorf("scene 1 model = %q, want veo-text", gen.calls[0].model)
	}

	// Every later scene is conditioned on the frame of the scene before it
	for i := 1; i < len(gen.calls); i++ {
		want := "frame-of:" + scenes[i-1].Path
		if gen.calls[i].image != want {
			t.Errorf("scene %d conditioning = %q, want %q", i+1, gen.calls[i].image, want)
		}
		if gen.calls[i].model != "veo-image" {
			t.Errorf("scene %d model = %q, want veo-image", i+1, gen.calls[i].model)
		}
	}
}

func TestRunPreservesPromptOrder(t *testing.T) {
	gen := &fakeGenerator{}
	r := &Renderer{cfg: testConfig(), gen: gen, frames: fakeExtractor{}}

	scenes, err := r.Run(context.Background(), testPrompts(4), t.TempDir())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	for i, call := range gen.calls {
		want := fmt.Sprintf("prompt %d", i+1)
		if call.prompt != want {
			t.Errorf("call %d prompt = %q, want %q", i, call.prompt, want)
		}
	}
	for i, scene := range scenes {
		if scene.Index != i+1 {
			t.Errorf("scenes[%d].Index = %d, want %d", i, scene.Index, i+1)
		}
	}
}

func TestRunWritesClipFiles(t *testing.T) {
	r := &Renderer{cfg: testConfig(), gen: &fakeGenerator{}, frames: fakeExtractor{}}
	workspace := t.TempDir()

	scenes, err := r.Run(context.Background(), testPrompts(2), workspace)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	for _, scene := range scenes {
		info, err := os.Stat(scene.Path)
		if err != nil {
			t.Fatalf("scene %d clip missing: %v", scene.Index, err)
		}
		if info.Size() == 0 {
			t.Errorf("scene %d clip is empty", scene.Index)
		}
	}
}

func TestRunHaltsChainOnFailure(t *testing.T) {
	gen := &fakeGenerator{failAt: 2, failErr: types.ErrGenerationIncomplete}
	r := &Renderer{cfg: testConfig(), gen: gen, frames: fakeExtractor{}}

	scenes, err := r.Run(context.Background(), testPrompts(4), t.TempDir())
	if err == nil {
		t.Fatal("expected failure on scene 2")
	}

	// Scene 1 completed; nothing after the failed scene was attempted
	if len(scenes) != 1 {
		t.Errorf("got %d completed scenes, want 1", len(scenes))
	}
	if len(gen.calls) != 2 {
		t.Errorf("got %d generator calls, want 2", len(gen.calls))
	}
}

func TestRunRejectsEmptyPromptList(t *testing.T) {
	r := &Renderer{cfg: testConfig(), gen: &fakeGenerator{}, frames: fakeExtractor{}}
	if _, err := r.Run(context.Background(), nil, t.TempDir()); err == nil {
		t.Fatal("expected error for empty prompt list")
	}
}
