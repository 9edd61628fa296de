package analyze

import (
	"testing"

	"google.golang.org/genai"
)

func TestFileReady(t *testing.T) {
	if FileReady(genai.FileStateProcessing) {
		t.Error("a processing file is not ready")
	}
	if FileReady(genai.FileStateUnspecified) {
		t.Error("an unspecified state is not ready")
	}
	if !FileReady(genai.FileStateActive) {
		t.Error("an active file is ready")
	}
}

func TestFileFailed(t *testing.T) {
	if failed, _ := FileFailed(genai.FileStateProcessing); failed {
		t.Error("a processing file has not failed")
	}
	failed, reason := FileFailed(genai.FileStateFailed)
	if !failed {
		t.Error("a failed file must report failure")
	}
	if reason == "" {
		t.Error("failure should carry a reason")
	}
}
