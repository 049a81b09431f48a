package model

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ConversationTurn is a single stored message of a session. Rows are
// immutable once written; ordering is by timestamp with the serial id
// breaking ties.
type ConversationTurn struct {
	ID        int64  `json:"id"`
	SessionID string `json:"session_id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`
}
