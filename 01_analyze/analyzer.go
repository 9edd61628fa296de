package analyze

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"google.golang.org/genai"

	"storyboard-pipeline/config"
	"storyboard-pipeline/gcs"
	"storyboard-pipeline/types"
)

const analysisPrompt = `Analyze the provided storyboard video. Deconstruct it into a detailed, scene-by-scene breakdown.
For each scene, provide the following in a JSON object:
- scene_number: A sequential integer.
- timestamp_start: The start time of the scene in HH:MM:SS.
- timestamp_end: The end time of the scene in HH:MM:SS.
- setting_description: Description of the environment and location.
- character_actions: Description of character actions, expressions, and movements.
- dialogue: Transcription of any dialogue.
- camera_shot: Description of camera angle, shot type, and movement.
Ensure the output is a single, valid JSON array of scenes.`

// Analyzer breaks a storyboard video into a timed scene-by-scene JSON breakdown
type Analyzer struct {
	cfg   *config.Config
	store *gcs.Store
}

// New creates a new Analyzer
func New(cfg *config.Config, store *gcs.Store) *Analyzer {
	return &Analyzer{cfg: cfg, store: store}
}

// Run downloads the source video, has the model analyze it, and uploads the
// raw JSON breakdown to outputObject. The local temp copy is removed on all
// exit paths.
func (a *Analyzer) Run(ctx context.Context, sourceObject, outputObject string) error {
	log.Printf("[analyze] Analyzing gs://%s/%s...", a.cfg.Storage.Bucket, sourceObject)

	tmp, err := os.CreateTemp("", "storyboard_*.mp4")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer func() {
		if err := os.Remove(tmpPath); err == nil {
			log.Printf("[analyze] Deleted temporary local file: %s", tmpPath)
		}
	}()

	if err := a.store.DownloadToFile(ctx, sourceObject, tmpPath); err != nil {
		return fmt.Errorf("download source video: %w", err)
	}
	log.Println("[analyze] Download complete")

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     os.Getenv("GEMINI_API_KEY"),
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: time.Duration(a.cfg.Polling.RequestTimeoutSec) * time.Second},
	})
	if err != nil {
		return fmt.Errorf("create genai client: %w", err)
	}

	log.Println("[analyze] Uploading video for model processing...")
	file, err := client.Files.UploadFromPath(ctx, tmpPath, &genai.UploadFileConfig{MIMEType: "video/mp4"})
	if err != nil {
		return fmt.Errorf("upload to file service: %w", err)
	}
	defer client.Files.Delete(ctx, file.Name, nil)

	interval := time.Duration(a.cfg.Polling.FileIntervalSec) * time.Second
	for !FileReady(file.State) {
		if failed, reason := FileFailed(file.State); failed {
			return fmt.Errorf("video processing %s: %w", reason, types.ErrRemoteProcessing)
		}
		log.Printf("[analyze] ... checking file status in %s ...", interval)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
		file, err = client.Files.Get(ctx, file.Name, nil)
		if err != nil {
			return fmt.Errorf("poll file state: %w", err)
		}
	}
	if failed, reason := FileFailed(file.State); failed {
		return fmt.Errorf("video processing %s: %w", reason, types.ErrRemoteProcessing)
	}
	log.Println("[analyze] Video processed successfully")

	parts := []*genai.Part{
		genai.NewPartFromText(analysisPrompt),
		genai.NewPartFromURI(file.URI, file.MIMEType),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	resp, err := client.Models.GenerateContent(ctx, a.cfg.Models.Analysis, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("generate scene breakdown: %w", err)
	}

	breakdown := resp.Text()
	if breakdown == "" {
		return fmt.Errorf("scene breakdown: %w", types.ErrGenerationIncomplete)
	}

	if err := a.store.UploadString(ctx, outputObject, breakdown, "application/json"); err != nil {
		return err
	}

	log.Printf("[analyze] ✅ Scene breakdown saved to gs://%s/%s", a.cfg.Storage.Bucket, outputObject)
	return nil
}

// FileReady reports whether an uploaded file has left the processing state
// and is usable as model input
func FileReady(state genai.FileState) bool {
	return state == genai.FileStateActive
}

// FileFailed reports whether the remote file service gave up on the upload
func FileFailed(state genai.FileState) (bool, string) {
	if state == genai.FileStateFailed {
		return true, "failed"
	}
	return false, ""
}
