package models

// ChatMode selects the persona and output shape of the AI assistant.
type ChatMode string

const (
	ChatModeDoubt                ChatMode = "doubt"
	ChatModeGenerateAssignment   ChatMode = "generate_assignment"
	ChatModeGenerateQuiz         ChatMode = "generate_quiz"
	ChatModeGenerateNotes        ChatMode = "generate_notes"
	ChatModeGenerateAnnouncement ChatMode = "generate_announcement"
)

// ChatMessage is one turn of a conversation, oldest first.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the proxy input contract. Mode, Subject and ClassTitle are
// optional; unknown modes fall back to the generic tutoring prompt.
type ChatRequest struct {
	Messages   []ChatMessage `json:"messages"`
	Mode       ChatMode      `json:"mode"`
	Subject    string        `json:"subject"`
	ClassTitle string        `json:"classTitle"`
}
