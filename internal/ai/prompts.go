package ai

import "fmt"

// Prompt templates keyed by chat mode. Each persona carries its own output
// shape so the client never has to post-process the completion.
const (
	promptDoubt = `You are an expert educational AI tutor for "%s" (Subject: %s).
Help students understand concepts clearly. Provide:
- Clear, step-by-step explanations
- Examples and analogies
- Code snippets when relevant (with syntax highlighting hints)
- Encourage critical thinking
Keep responses concise but thorough. Use markdown formatting.`

	promptAssignment = `You are an AI assistant for teachers. Generate a professional assignment for "%s" (Subject: %s).
Include: title, description, detailed instructions, suggested points, and estimated time.
Format with clear markdown headings.`

	promptQuiz = `You are an AI assistant for teachers. Generate quiz questions for "%s" (Subject: %s).
Create 5-10 multiple choice questions with 4 options each. Mark the correct answer.
Format cleanly with markdown.`

	promptNotes = `You are an AI assistant for teachers. Generate a comprehensive notes summary for "%s" (Subject: %s).
Create well-structured study notes with key concepts, definitions, and important points.
Use markdown headings, bullet points, and bold for key terms.`

	promptAnnouncement = `You are an AI assistant for teachers. Generate a professional classroom announcement for "%s".
Keep it clear, formal yet friendly. Include relevant details.`

	promptFallback = "You are a helpful AI educational assistant. Answer questions clearly and concisely using markdown."
)

const (
	defaultSubject    = "General"
	defaultClassTitle = "a classroom"
)

// SystemPrompt resolves the system prompt for a chat mode. The mapping is
// total: every unknown or empty mode lands on the generic tutoring prompt.
// Empty subject and class title substitute documented defaults.
func SystemPrompt(mode, subject, classTitle string) string {
	if subject == "" {
		subject = defaultSubject
	}
	if classTitle == "" {
		classTitle = defaultClassTitle
	}

	switch mode {
	case "doubt":
		return fmt.Sprintf(promptDoubt, classTitle, subject)
	case "generate_assignment":
		return fmt.Sprintf(promptAssignment, classTitle, subject)
	case "generate_quiz":
		return fmt.Sprintf(promptQuiz, classTitle, subject)
	case "generate_notes":
		return fmt.Sprintf(promptNotes, classTitle, subject)
	case "generate_announcement":
		return fmt.Sprintf(promptAnnouncement, classTitle)
	default:
		return promptFallback
	}
}
