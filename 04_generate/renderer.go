package generate

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"google.golang.org/genai"

	"storyboard-pipeline/config"
	"storyboard-pipeline/types"
)

// videoGenerator submits one generation request and blocks until the remote
// operation is terminal, returning the video bytes
type videoGenerator interface {
	Generate(ctx context.Context, model, prompt string, image *genai.Image) ([]byte, error)
}

// frameExtractor produces the conditioning still for the next scene
type frameExtractor interface {
	Extract(ctx context.Context, videoPath, imagePath string) error
}

// Renderer turns ordered prompts into local scene clips. Scenes are rendered
// strictly in sequence: every scene after the first is conditioned on a frame
// extracted from the previous scene's clip.
type Renderer struct {
	cfg    *config.Config
	gen    videoGenerator
	frames frameExtractor
}

// New creates a Renderer backed by the Veo video model and ffmpeg frame
// extraction
func New(cfg *config.Config) *Renderer {
	return &Renderer{
		cfg:    cfg,
		gen:    &veoGenerator{cfg: cfg},
		frames: NewExtractor(cfg.Frames.TailOffsetSec),
	}
}

// Run renders one clip per prompt into workspace and returns the ordered
// scene list. A failure in scene i halts the chain; later scenes are never
// attempted.
func (r *Renderer) Run(ctx context.Context, prompts []types.Prompt, workspace string) ([]types.RenderedScene, error) {
	if len(prompts) == 0 {
		return nil, fmt.Errorf("no prompts to render: %w", types.ErrPipeline)
	}

	framePath := filepath.Join(workspace, "last_frame.png")
	scenes := make([]types.RenderedScene, 0, len(prompts))

	for i, prompt := range prompts {
		sceneNumber := i + 1
		outPath := filepath.Join(workspace, fmt.Sprintf("scene_%d.mp4", sceneNumber))
		log.Printf("[generate] ━━━ Scene %d/%d ━━━", sceneNumber, len(prompts))

		var (
			video []byte
			err   error
		)
		if i == 0 {
			log.Printf("[generate] Generating from text: %q", truncate(prompt.Text, 50))
			video, err = r.gen.Generate(ctx, r.cfg.Models.RenderText, prompt.Text, nil)
		} else {
			prev := scenes[i-1]
			if err := r.frames.Extract(ctx, prev.Path, framePath); err != nil {
				return scenes, fmt.Errorf("conditioning frame for scene %d: %w", sceneNumber, err)
			}
			imageBytes, readErr := os.ReadFile(framePath)
			if readErr != nil {
				return scenes, fmt.Errorf("read conditioning frame: %w", readErr)
			}
			log.Printf("[generate] Generating from image %s + text: %q", framePath, truncate(prompt.Text, 50))
			video, err = r.gen.Generate(ctx, r.cfg.Models.RenderImage, prompt.Text, &genai.Image{
				ImageBytes: imageBytes,
				MIMEType:   "image/png",
			})
		}
		if err != nil {
			return scenes, fmt.Errorf("scene %d: %w", sceneNumber, err)
		}

		if err := os.WriteFile(outPath, video, 0644); err != nil {
			return scenes, fmt.Errorf("save scene %d: %w", sceneNumber, err)
		}
		log.Printf("[generate] ✅ Scene %d saved: %s (%d bytes)", sceneNumber, outPath, len(video))

		scenes = append(scenes, types.RenderedScene{
			Index:    sceneNumber,
			Path:     outPath,
			Duration: r.cfg.Render.DurationSec,
		})
	}

	return scenes, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
