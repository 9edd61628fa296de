package generate

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"google.golang.org/genai"

	"storyboard-pipeline/config"
	"storyboard-pipeline/types"
)

// veoGenerator drives the Veo video model on Vertex AI: submit the request,
// poll the operation handle until terminal, download the result.
type veoGenerator struct {
	cfg *config.Config
}

func (g *veoGenerator) Generate(ctx context.Context, model, prompt string, image *genai.Image) ([]byte, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Backend:  genai.BackendVertexAI,
		Project:  g.cfg.Project.ID,
		Location: g.cfg.Project.Location,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	videoCfg := &genai.GenerateVideosConfig{
		AspectRatio:      g.cfg.Render.AspectRatio,
		NumberOfVideos:   g.cfg.Render.NumberOfVideos,
		DurationSeconds:  ptr(g.cfg.Render.DurationSec),
		Resolution:       g.cfg.Render.Resolution,
		PersonGeneration: g.cfg.Render.PersonGeneration,
		EnhancePrompt:    g.cfg.Render.EnhancePrompt,
		GenerateAudio:    ptr(g.cfg.Render.GenerateAudio),
	}

	operation, err := client.Models.GenerateVideos(ctx, model, prompt, image, videoCfg)
	if err != nil {
		return nil, fmt.Errorf("submit video generation: %w", err)
	}
	log.Printf("[generate] Operation started: %s", operation.Name)

	operation, err = awaitOperation(ctx, client, operation,
		time.Duration(g.cfg.Polling.OperationIntervalSec)*time.Second,
		time.Duration(g.cfg.Polling.OperationTimeoutMin)*time.Minute,
	)
	if err != nil {
		return nil, err
	}

	if len(operation.Error) > 0 {
		detail, _ := json.Marshal(operation.Error)
		return nil, fmt.Errorf("video generation operation: %s: %w", detail, types.ErrRemoteProcessing)
	}
	if operation.Response == nil || len(operation.Response.GeneratedVideos) == 0 {
		return nil, fmt.Errorf("operation %s: %w", operation.Name, types.ErrGenerationIncomplete)
	}

	video := operation.Response.GeneratedVideos[0]
	if video.Video == nil {
		return nil, fmt.Errorf("operation %s returned a nil video: %w", operation.Name, types.ErrGenerationIncomplete)
	}

	if len(video.Video.VideoBytes) > 0 {
		return video.Video.VideoBytes, nil
	}

	// Some model versions return a download URI instead of inline bytes
	data, err := client.Files.Download(ctx, genai.NewDownloadURIFromVideo(video.Video), nil)
	if err != nil {
		return nil, fmt.Errorf("download generated video: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("downloaded video is empty: %w", types.ErrGenerationIncomplete)
	}
	return data, nil
}

// awaitOperation polls the operation handle at a fixed interval until it is
// done, the context is cancelled, or the overall timeout elapses
func awaitOperation(ctx context.Context, client *genai.Client, op *genai.GenerateVideosOperation, interval, timeout time.Duration) (*genai.GenerateVideosOperation, error) {
	deadline := time.Now().Add(timeout)
	polls := 0

	for !op.Done {
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("video generation timed out after %v (%d polls)", timeout, polls)
		}
		log.Println("[generate] Waiting for video generation to complete...")
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("video generation cancelled: %w", ctx.Err())
		case <-time.After(interval):
		}

		polls++
		var err error
		op, err = client.Operations.GetVideosOperation(ctx, op, nil)
		if err != nil {
			return nil, fmt.Errorf("poll operation (attempt %d): %w", polls, err)
		}
	}
	return op, nil
}

func ptr[T any](v T) *T { return &v }
