package domain

import "strings"

// Role identifies the author of a chat turn
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatTurn is one message of a conversation.
type ChatTurn struct {
	Role    Role
	Content string
}

// ParseRole normalizes a wire role. Anything that is not the assistant is
// treated as the user.
func ParseRole(s string) Role {
	if strings.EqualFold(strings.TrimSpace(s), string(RoleAssistant)) {
		return RoleAssistant
	}
	return RoleUser
}

// LatestUserMessage returns the content of the most recent user turn, or ""
// when the conversation has none.
func LatestUserMessage(turns []ChatTurn) string {
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Role == RoleUser {
			return turns[i].Content
		}
	}
	return ""
}

// ActivityStatus is the outcome tag of an activity log entry
type ActivityStatus string

const (
	ActivityOK    ActivityStatus = "OK"
	ActivityError ActivityStatus = "ERROR"
	ActivityWarn  ActivityStatus = "WARN"
)

// ActivityEntry is one line of the dispatcher activity log.
type ActivityEntry struct {
	Source string
	Status ActivityStatus
	Detail string
}
