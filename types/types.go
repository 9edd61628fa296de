package types

// Prompt is one rendering prompt fetched from the object store.
// Key order (lexicographic) defines the scene sequence.
type Prompt struct {
	Key  string `json:"key"`
	Text string `json:"text"`
}

// Scene is one entry of the analyzer's scene-by-scene breakdown
type Scene struct {
	SceneNumber        int    `json:"scene_number"`
	TimestampStart     string `json:"timestamp_start"`
	TimestampEnd       string `json:"timestamp_end"`
	SettingDescription string `json:"setting_description"`
	CharacterActions   string `json:"character_actions"`
	Dialogue           string `json:"dialogue"`
	CameraShot         string `json:"camera_shot"`
}

// CharacterSheet maps a character name to its description record
type CharacterSheet map[string]CharacterDescription

// CharacterDescription keeps a recurring character consistent across scenes
type CharacterDescription struct {
	PhysicalAppearance    string `json:"physical_appearance"`
	PersonalityTraits     string `json:"personality_traits"`
	MannerismsAndGestures string `json:"mannerisms_and_gestures"`
	VoiceStyle            string `json:"voice_style"`
}

// PromptKind tags how a synthesized array element was recognized
type PromptKind int

const (
	// PromptStructured is a {"veo_prompt": "..."} object
	PromptStructured PromptKind = iota
	// PromptRaw is a bare JSON string
	PromptRaw
	// PromptUnrecognized is anything else; it carries no usable text
	PromptUnrecognized
)

// PromptItem is one element of the synthesizer's parsed response,
// resolved once at parse time
type PromptItem struct {
	Kind PromptKind
	Text string
}

// Usable reports whether the item carries prompt text worth uploading
func (p PromptItem) Usable() bool {
	return p.Kind != PromptUnrecognized && p.Text != ""
}

// RenderedScene is one generated clip on local disk
type RenderedScene struct {
	Index    int    `json:"index"`
	Path     string `json:"path"`
	Duration int32  `json:"duration_sec"`
}

// PipelineState tracks one run end-to-end, saved as pipeline_state.json
type PipelineState struct {
	RunID          string          `json:"run_id"`
	StartedAt      string          `json:"started_at"`
	CompletedAt    string          `json:"completed_at"`
	SourceVideo    string          `json:"source_video"`
	AnalysisObject string          `json:"analysis_object"`
	SheetObject    string          `json:"sheet_object"`
	PromptsUpload  int             `json:"prompts_uploaded"`
	Scenes         []RenderedScene `json:"scenes"`
	FinalMovie     string          `json:"final_movie"`
	Error          string          `json:"error,omitempty"`
}
