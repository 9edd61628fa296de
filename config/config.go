package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Project  ProjectConfig  `yaml:"project"`
	Storage  StorageConfig  `yaml:"storage"`
	Models   ModelsConfig   `yaml:"models"`
	Polling  PollingConfig  `yaml:"polling"`
	Render   RenderConfig   `yaml:"render"`
	Frames   FramesConfig   `yaml:"frames"`
	Stitch   StitchConfig   `yaml:"stitch"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Paths    PathsConfig    `yaml:"paths"`
}

type ProjectConfig struct {
	ID       string `yaml:"id"`
	Location string `yaml:"location"`
}

type StorageConfig struct {
	Bucket             string `yaml:"bucket"`
	PromptFolder       string `yaml:"prompt_folder"`
	IntermediateFolder string `yaml:"intermediate_folder"`
}

type ModelsConfig struct {
	Analysis    string `yaml:"analysis"`
	Characters  string `yaml:"characters"`
	Synthesis   string `yaml:"synthesis"`
	RenderText  string `yaml:"render_text"`
	RenderImage string `yaml:"render_image"`
}

type PollingConfig struct {
	FileIntervalSec      int `yaml:"file_interval_sec"`
	OperationIntervalSec int `yaml:"operation_interval_sec"`
	OperationTimeoutMin  int `yaml:"operation_timeout_min"`
	RequestTimeoutSec    int `yaml:"request_timeout_sec"`
}

type RenderConfig struct {
	AspectRatio      string `yaml:"aspect_ratio"`
	NumberOfVideos   int32  `yaml:"number_of_videos"`
	DurationSec      int32  `yaml:"duration_sec"`
	Resolution       string `yaml:"resolution"`
	PersonGeneration string `yaml:"person_generation"`
	EnhancePrompt    bool   `yaml:"enhance_prompt"`
	GenerateAudio    bool   `yaml:"generate_audio"`
}

type FramesConfig struct {
	TailOffsetSec float64 `yaml:"tail_offset_sec"`
}

type StitchConfig struct {
	VideoCodec string `yaml:"video_codec"`
	AudioCodec string `yaml:"audio_codec"`
	OutputFile string `yaml:"output_file"`
}

type PipelineConfig struct {
	Stages      []string `yaml:"stages"`
	SourceVideo string   `yaml:"source_video"`
}

type PathsConfig struct {
	Workspace string `yaml:"workspace"`
	Output    string `yaml:"output"`
}

// Load reads config.yaml and returns a Config struct
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Storage.PromptFolder != "" && !strings.HasSuffix(cfg.Storage.PromptFolder, "/") {
		cfg.Storage.PromptFolder += "/"
	}
	if cfg.Storage.IntermediateFolder != "" && !strings.HasSuffix(cfg.Storage.IntermediateFolder, "/") {
		cfg.Storage.IntermediateFolder += "/"
	}
	if cfg.Polling.FileIntervalSec == 0 {
		cfg.Polling.FileIntervalSec = 10
	}
	if cfg.Polling.OperationIntervalSec == 0 {
		cfg.Polling.OperationIntervalSec = 20
	}
	if cfg.Polling.OperationTimeoutMin == 0 {
		cfg.Polling.OperationTimeoutMin = 30
	}
	if cfg.Polling.RequestTimeoutSec == 0 {
		cfg.Polling.RequestTimeoutSec = 600
	}
	if cfg.Render.NumberOfVideos == 0 {
		cfg.Render.NumberOfVideos = 1
	}
	if cfg.Frames.TailOffsetSec == 0 {
		cfg.Frames.TailOffsetSec = 0.1
	}
	if cfg.Stitch.VideoCodec == "" {
		cfg.Stitch.VideoCodec = "libx264"
	}
	if cfg.Stitch.AudioCodec == "" {
		cfg.Stitch.AudioCodec = "aac"
	}
	if cfg.Stitch.OutputFile == "" {
		cfg.Stitch.OutputFile = "final_movie.mp4"
	}
	if cfg.Paths.Workspace == "" {
		cfg.Paths.Workspace = "video_generation_workspace"
	}
}

func validate(cfg *Config) error {
	if strings.TrimSpace(cfg.Project.ID) == "" {
		return fmt.Errorf("project.id cannot be empty")
	}
	if cfg.Storage.Bucket == "" {
		return fmt.Errorf("storage.bucket cannot be empty")
	}
	return nil
}

// StageEnabled reports whether a stage name is listed in pipeline.stages.
// An empty list means every stage runs.
func (c *Config) StageEnabled(name string) bool {
	if len(c.Pipeline.Stages) == 0 {
		return true
	}
	for _, s := range c.Pipeline.Stages {
		if s == name {
			return true
		}
	}
	return false
}
