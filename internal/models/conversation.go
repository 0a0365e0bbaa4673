package models

// Conversation roles used when building LLM prompt context.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ConversationTurn is one exchange in a chat session, kept in a bounded
// per-session history and used only for prompt context.
type ConversationTurn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}
