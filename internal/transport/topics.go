package transport

import "github.com/ckosmato/Real-Time-Forum/internal/domain"

// Bus topics, one per frame category. The transport publishes raw frame
// bytes to these; handlers subscribe by concern.
const (
	TopicChatMessage     = "chat.message.received"
	TopicUserJoined      = "presence.user.joined"
	TopicUserLeft        = "presence.user.left"
	TopicInitialSnapshot = "presence.snapshot.initial"
	TopicSnapshotUpdate  = "presence.snapshot.update"
)

// TopicFor maps a frame type to its bus topic. Frames with an unrecognized
// or missing type are routed as chat messages, matching the server's habit
// of omitting the type on plain DMs.
func TopicFor(frameType string) string {
	switch frameType {
	case domain.TypeUserJoined:
		return TopicUserJoined
	case domain.TypeUserLeft:
		return TopicUserLeft
	case domain.TypeInitialOnlineUsers:
		return TopicInitialSnapshot
	case domain.TypeOnlineUsersUpdate:
		return TopicSnapshotUpdate
	default:
		return TopicChatMessage
	}
}
