package characters

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

const characterBrief = `Create detailed character descriptions for the two recurring leads of a new animated short: Count Vlad, a charming centuries-old vampire patriarch, and Mira, his elegant vampire wife.
The output must be a JSON object with two keys: "vlad" and "mira".
For each character, detail their:
- physical_appearance: Look, clothing, art style consistency.
- personality_traits: Core personality traits.
- mannerisms_and_gestures: Typical movements and expressions.
- voice_style: Tone and speaking patterns.
Keep both characters in a vibrant 3D cartoon style. For Mira, consider a beautiful female vampire with long, wavy black hair and bright blue eyes. She is slender and pale-skinned, often seen wearing a black long-sleeved dress and a black choker, with black shoes and sometimes black lipstick and nail polish.`

// Generator produces the character sheet used to keep every scene's
// rendering prompt visually consistent
type Generator struct {
	cfg   *config.Config
	store *gcs.Store
}

// New creates a new Generator
func New(cfg *config.Config, store *gcs.Store) *Generator {
	return &Generator{cfg: cfg, store: store}
}

// Run issues one JSON-mode request with the fixed brief and persists the
// result verbatim. No retries: malformed output surfaces later, during
// prompt synthesis.
func (g *Generator) Run(ctx context.Context, outputObject string) error {
	log.Println("[characters] Generating character descriptions...")

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     os.Getenv("GEMINI_API_KEY"),
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: time.Duration(g.cfg.Polling.RequestTimeoutSec) * time.Second},
	})
	if err != nil {
		return fmt.Errorf("create genai client: %w", err)
	}

	contents := []*genai.Content{genai.NewContentFromText(characterBrief, genai.RoleUser)}
	resp, err := client.Models.GenerateContent(ctx, g.cfg.Models.Characters, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("generate character sheet: %w", err)
	}

	sheet := resp.Text()
	if sheet == "" {
		return fmt.Errorf("character sheet: %w", types.ErrGenerationIncomplete)
	}

	if err := g.store.UploadString(ctx, outputObject, sheet, "application/json"); err != nil {
		return err
	}

	log.Printf("[characters] ✅ Character sheet saved to gs://%s/%s", g.cfg.Storage.Bucket, outputObject)
	return nil
}
