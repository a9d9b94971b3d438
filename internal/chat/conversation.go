// Package chat manages direct-message conversations: one open conversation
// at a time, paginated history behind it, and the routing of incoming frames
// into it.
package chat

import "github.com/ckosmato/Real-Time-Forum/internal/domain"

// Conversation is the state of the currently open DM thread. Messages are
// kept oldest first, matching render order.
type Conversation struct {
	Peer     string
	Messages []domain.ChatMessage

	// Offset is how many messages have been loaded so far, counted back
	// from the newest. It is the offset of the next older page.
	Offset int
	// HasMore reports whether an older page exists beyond Offset.
	HasMore bool
}
