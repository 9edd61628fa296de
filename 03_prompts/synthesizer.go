package prompts

import (
	"context"
	"encoding/json"
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

const instructionTemplate = `You are an expert AI prompt engineer. Your task is to translate a series of action descriptions into detailed video prompts for Veo, ensuring character consistency.
Use the provided video chunk analysis and the new character descriptions.

**Character Descriptions to Embed:**
%s

**Original Video Chunk Analysis:**
%s

**Instructions:**
For each chunk in the analysis, create a JSON object with a single key: "veo_prompt".

CRITICAL: The veo_prompt string you generate MUST begin with a 'Character Consistency' section that includes the detailed physical descriptions of both leads. This forces the video model to maintain their look across all clips.

The rest of the prompt must include:
- **Art Style:** "Vibrant 3D cartoon style."
- **Action:** A detailed description of the leads performing the chunk's character_actions, adapted to fit their unique personalities.
- **Camera Work:** Retain the camera work (pan, close-up, static, etc.) from the original description.
- **Duration:** The prompt must specify it is for an "%d-second shot".

The final output must be a single, valid JSON array of these new objects.`

// Synthesizer turns the scene breakdown plus character sheet into one
// numbered rendering prompt per scene
type Synthesizer struct {
	cfg   *config.Config
	store *gcs.Store
}

// New creates a new Synthesizer
func New(cfg *config.Config, store *gcs.Store) *Synthesizer {
	return &Synthesizer{cfg: cfg, store: store}
}

// Run generates all prompts in a single model call and uploads each accepted
// prompt as its own numbered text file. The returned count is the number of
// uploaded files.
func (s *Synthesizer) Run(ctx context.Context, analysisObject, sheetObject, outputFolder string) (int, error) {
	log.Println("[prompts] Synthesizing per-scene rendering prompts...")

	breakdown, err := s.store.DownloadBytes(ctx, analysisObject)
	if err != nil {
		return 0, fmt.Errorf("download scene breakdown: %w", err)
	}
	sheet, err := s.store.DownloadBytes(ctx, sheetObject)
	if err != nil {
		return 0, fmt.Errorf("download character sheet: %w", err)
	}

	// Validate both documents before embedding them: a malformed upstream
	// artifact should fail here, not as garbage inside the instruction
	scenes, err := DecodeBreakdown(breakdown)
	if err != nil {
		return 0, err
	}
	characters, err := DecodeSheet(sheet)
	if err != nil {
		return 0, err
	}
	log.Printf("[prompts] Breakdown has %d scenes, sheet has %d characters", len(scenes), len(characters))

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     os.Getenv("GEMINI_API_KEY"),
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: time.Duration(s.cfg.Polling.RequestTimeoutSec) * time.Second},
	})
	if err != nil {
		return 0, fmt.Errorf("create genai client: %w", err)
	}

	instruction := fmt.Sprintf(instructionTemplate, sheet, breakdown, s.cfg.Render.DurationSec)
	contents := []*genai.Content{genai.NewContentFromText(instruction, genai.RoleUser)}

	resp, err := client.Models.GenerateContent(ctx, s.cfg.Models.Synthesis, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return 0, fmt.Errorf("generate prompts: %w", err)
	}

	log.Println("[prompts] Generation complete. Parsing response and uploading prompt files...")

	items, err := ParsePromptArray([]byte(resp.Text()))
	if err != nil {
		return 0, err
	}

	uploaded := 0
	for i, item := range items {
		if !item.Usable() {
			log.Printf("[prompts] ⚠️  Skipping item %d: no usable prompt text", i+1)
			continue
		}
		object := fmt.Sprintf("%s%03d_chunk_prompt.txt", outputFolder, i+1)
		if err := s.store.UploadString(ctx, object, item.Text, "text/plain"); err != nil {
			return uploaded, err
		}
		uploaded++
	}

	if uploaded == 0 {
		return 0, fmt.Errorf("no usable prompts in model response (%d items): %w", len(items), types.ErrPipeline)
	}

	log.Printf("[prompts] ✅ Uploaded %d prompt files", uploaded)
	return uploaded, nil
}

// DecodeBreakdown parses the analyzer's output into its scene list. An
// empty list is rejected: there is nothing to synthesize prompts for.
func DecodeBreakdown(data []byte) ([]types.Scene, error) {
	var scenes []types.Scene
	if err := json.Unmarshal(data, &scenes); err != nil {
		return nil, fmt.Errorf("scene breakdown: %w: %v", types.ErrParse, err)
	}
	if len(scenes) == 0 {
		return nil, fmt.Errorf("scene breakdown has no scenes: %w", types.ErrParse)
	}
	return scenes, nil
}

// DecodeSheet parses the character generator's output into the sheet
func DecodeSheet(data []byte) (types.CharacterSheet, error) {
	var sheet types.CharacterSheet
	if err := json.Unmarshal(data, &sheet); err != nil {
		return nil, fmt.Errorf("character sheet: %w: %v", types.ErrParse, err)
	}
	if len(sheet) == 0 {
		return nil, fmt.Errorf("character sheet has no characters: %w", types.ErrParse)
	}
	return sheet, nil
}

// ParsePromptArray parses the synthesizer's response as a JSON array and
// resolves each element once into a tagged PromptItem. A top-level parse
// failure is fatal; per-element oddities are not.
func ParsePromptArray(data []byte) ([]types.PromptItem, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("prompt array: %w: %v", types.ErrParse, err)
	}

	items := make([]types.PromptItem, 0, len(raw))
	for _, el := range raw {
		items = append(items, resolveItem(el))
	}
	return items, nil
}

// resolveItem classifies one array element: a {"veo_prompt": "..."} object,
// a bare string, or unrecognized.
func resolveItem(el json.RawMessage) types.PromptItem {
	var obj struct {
		VeoPrompt string `json:"veo_prompt"`
	}
	if err := json.Unmarshal(el, &obj); err == nil && obj.VeoPrompt != "" {
		return types.PromptItem{Kind: types.PromptStructured, Text: obj.VeoPrompt}
	}

	var s string
	if err := json.Unmarshal(el, &s); err == nil && s != "" {
		return types.PromptItem{Kind: types.PromptRaw, Text: s}
	}

	return types.PromptItem{Kind: types.PromptUnrecognized}
}
