package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	analyze "storyboard-pipeline/01_analyze"
	characters "storyboard-pipeline/02_characters"
	prompts "storyboard-pipeline/03_prompts"
	generate "storyboard-pipeline/04_generate"
	stitch "storyboard-pipeline/05_stitch"
	"storyboard-pipeline/config"
	"storyboard-pipeline/gcs"
	"storyboard-pipeline/types"
)

// stageDeps carries one callable per stage so the sequence can be driven
// end to end. main wires the real stages; tests substitute fakes.
type stageDeps struct {
	analyze     func(ctx context.Context) error
	characters  func(ctx context.Context) error
	prompts     func(ctx context.Context) (int, error)
	listPrompts func(ctx context.Context) ([]types.Prompt, error)
	render      func(ctx context.Context, prompts []types.Prompt) ([]types.RenderedScene, error)
	stitch      func(ctx context.Context) (string, error)
}

func main() {
	// Load .env (local dev only)
	_ = godotenv.Load()

	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	for _, dir := range []string{cfg.Paths.Workspace, cfg.Paths.Output} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create dir %s: %v", dir, err)
		}
	}

	runID := uuid.NewString()[:8]
	runDir := filepath.Join(cfg.Paths.Output, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		log.Fatalf("Failed to create run dir: %v", err)
	}

	log.Printf("🎬 Storyboard Pipeline starting — Run ID: %s", runID)
	log.Printf("📁 Workspace: %s", cfg.Paths.Workspace)

	ctx := context.Background()
	state := &types.PipelineState{
		RunID:       runID,
		StartedAt:   time.Now().UTC().Format(time.RFC3339),
		SourceVideo: cfg.Pipeline.SourceVideo,
	}

	// Save state on exit
	defer func() {
		state.CompletedAt = time.Now().UTC().Format(time.RFC3339)
		saveState(state, runDir)
		if state.Error != "" {
			log.Printf("❌ Pipeline failed: %s", state.Error)
			os.Exit(1)
		}
		if state.FinalMovie != "" {
			log.Printf("✅ Pipeline complete! Movie: %s", state.FinalMovie)
		} else {
			log.Println("✅ Pipeline complete!")
		}
	}()

	store, err := gcs.New(ctx, cfg.Storage.Bucket)
	if err != nil {
		state.Error = fmt.Sprintf("Storage init: %v", err)
		return
	}
	defer store.Close()

	analysisObject := cfg.Storage.IntermediateFolder + "chunk_analysis.json"
	sheetObject := cfg.Storage.IntermediateFolder + "character_descriptions.json"
	state.AnalysisObject = analysisObject
	state.SheetObject = sheetObject

	analyzer := analyze.New(cfg, store)
	sheetGen := characters.New(cfg, store)
	synth := prompts.New(cfg, store)
	renderer := generate.New(cfg)
	stitcher := stitch.New(cfg)

	deps := stageDeps{
		analyze: func(ctx context.Context) error {
			return analyzer.Run(ctx, cfg.Pipeline.SourceVideo, analysisObject)
		},
		characters: func(ctx context.Context) error {
			return sheetGen.Run(ctx, sheetObject)
		},
		prompts: func(ctx context.Context) (int, error) {
			return synth.Run(ctx, analysisObject, sheetObject, cfg.Storage.PromptFolder)
		},
		listPrompts: func(ctx context.Context) ([]types.Prompt, error) {
			return store.ListPrompts(ctx, cfg.Storage.PromptFolder)
		},
		render: func(ctx context.Context, promptList []types.Prompt) ([]types.RenderedScene, error) {
			return renderer.Run(ctx, promptList, cfg.Paths.Workspace)
		},
		stitch: func(ctx context.Context) (string, error) {
			outputPath := filepath.Join(cfg.Paths.Workspace, cfg.Stitch.OutputFile)
			return stitcher.Run(ctx, cfg.Paths.Workspace, outputPath)
		},
	}

	if err := run(ctx, cfg, state, deps); err != nil {
		state.Error = err.Error()
	}
}

// run drives the enabled stages strictly in order. The first failure halts
// the sequence; later stages are never attempted.
func run(ctx context.Context, cfg *config.Config, state *types.PipelineState, deps stageDeps) error {
	if cfg.StageEnabled("analyze") {
		log.Println("\n━━━ STAGE 1: Scene Analysis ━━━")
		if err := deps.analyze(ctx); err != nil {
			return fmt.Errorf("stage 1 analyze: %w", err)
		}
	}

	if cfg.StageEnabled("characters") {
		log.Println("\n━━━ STAGE 2: Character Sheet ━━━")
		if err := deps.characters(ctx); err != nil {
			return fmt.Errorf("stage 2 characters: %w", err)
		}
	}

	if cfg.StageEnabled("prompts") {
		log.Println("\n━━━ STAGE 3: Prompt Synthesis ━━━")
		uploaded, err := deps.prompts(ctx)
		if err != nil {
			return fmt.Errorf("stage 3 prompts: %w", err)
		}
		state.PromptsUpload = uploaded
	}

	if cfg.StageEnabled("generate") {
		log.Println("\n━━━ STAGE 4: Scene Generation ━━━")
		promptList, err := deps.listPrompts(ctx)
		if err != nil {
			return fmt.Errorf("stage 4 fetch prompts: %w", err)
		}
		if len(promptList) == 0 {
			return fmt.Errorf("stage 4 generate: no prompts found in the configured folder: %w", types.ErrPipeline)
		}

		scenes, err := deps.render(ctx, promptList)
		state.Scenes = scenes
		if err != nil {
			return fmt.Errorf("stage 4 generate: %w", err)
		}
	}

	if cfg.StageEnabled("stitch") {
		log.Println("\n━━━ STAGE 5: Stitching ━━━")
		finalMovie, err := deps.stitch(ctx)
		if err != nil {
			return fmt.Errorf("stage 5 stitch: %w", err)
		}
		state.FinalMovie = finalMovie
	}

	return nil
}

// ─────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────

func saveState(state *types.PipelineState, dir string) {
	saveJSON(filepath.Join(dir, "pipeline_state.json"), state)
}

func saveJSON(path string, v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Printf("Warning: could not marshal JSON for %s: %v", path, err)
		return
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		log.Printf("Warning: could not save %s: %v", path, err)
	}
}
