package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSystemPromptSelectsPersonaPerMode(t *testing.T) {
	tests := []struct {
		mode     string
		contains string
	}{
		{"doubt", "expert educational AI tutor"},
		{"generate_assignment", "Generate a professional assignment"},
		{"generate_quiz", "Generate quiz questions"},
		{"generate_notes", "Generate a comprehensive notes summary"},
		{"generate_announcement", "Generate a professional classroom announcement"},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			prompt := SystemPrompt(tt.mode, "Physics", "Physics 101")
			assert.Contains(t, prompt, tt.contains)
			assert.Contains(t, prompt, "Physics 101")
		})
	}
}

func TestSystemPromptFallsBackOnUnknownMode(t *testing.T) {
	fallback := SystemPrompt("", "", "")
	assert.Equal(t, promptFallback, fallback)
	assert.Equal(t, fallback, SystemPrompt("bogus", "Math", "Algebra"))
	assert.Equal(t, fallback, SystemPrompt("DOUBT", "", ""))
}

func TestSystemPromptIsDeterministic(t *testing.T) {
	first := SystemPrompt("generate_quiz", "History", "World History")
	second := SystemPrompt("generate_quiz", "History", "World History")
	assert.Equal(t, first, second)
}

func TestSystemPromptSubstitutesDefaults(t *testing.T) {
	prompt := SystemPrompt("doubt", "", "")
	assert.Contains(t, prompt, `"a classroom"`)
	assert.Contains(t, prompt, "Subject: General")
}
