package history

import "time"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Entry struct {
	Role      Role
	Content   string
	Timestamp time.Time
}

// Pair holds the most recent user turn and the most recent assistant turn
// of a conversation.
type Pair struct {
	LastUser      string
	LastAssistant string
}
