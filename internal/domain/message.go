package domain

import "time"

// Frame types carried on the realtime connection. The server tags every
// frame with one of these; anything else is routed as a chat message for
// forward compatibility.
const (
	TypeChatMessage        = "chat_message"
	TypeUserJoined         = "user_joined"
	TypeUserLeft           = "user_left"
	TypeInitialOnlineUsers = "initial_online_users"
	TypeOnlineUsersUpdate  = "online_users_update"
)

// ChatMessage is a single frame exchanged over the realtime connection.
// Chat frames carry From/To/Content/Timestamp; presence frames carry
// OnlineUsers, which is always a full snapshot and never a delta.
// Frames are immutable once received.
type ChatMessage struct {
	Type        string   `json:"type"`
	From        string   `json:"from,omitempty"`
	To          string   `json:"to,omitempty"`
	Content     string   `json:"content,omitempty"`
	Timestamp   string   `json:"timestamp,omitempty"`
	OnlineUsers []string `json:"online_users,omitempty"`
}

// NewOutgoing builds a chat_message frame addressed to a peer. The timestamp
// is generated client-side as an RFC 3339 string, matching what the server
// stores and echoes back.
func NewOutgoing(to, content string) ChatMessage {
	return ChatMessage{
		Type:      TypeChatMessage,
		To:        to,
		Content:   content,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// SentAt parses the frame's timestamp. A zero time is returned for frames
// whose timestamp is missing or malformed; callers render those without a
// time label rather than failing.
func (m ChatMessage) SentAt() time.Time {
	t, err := time.Parse(time.RFC3339, m.Timestamp)
	if err != nil {
		return time.Time{}
	}
	return t
}
