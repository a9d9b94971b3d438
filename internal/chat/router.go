package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ckosmato/Real-Time-Forum/internal/domain"
	"github.com/ckosmato/Real-Time-Forum/internal/presence"
	"github.com/ckosmato/Real-Time-Forum/internal/pubsub"
	"github.com/ckosmato/Real-Time-Forum/internal/transport"
	"github.com/ckosmato/Real-Time-Forum/internal/ui"
)

// presenceToastFor keeps presence and new-message notices up a little longer
// than ordinary toasts.
const presenceToastFor = 4 * time.Second

// UserListRefresher re-renders the member directory against the current
// presence snapshot. Implemented by the application root.
type UserListRefresher interface {
	RefreshUsers(ctx context.Context) error
}

// Router consumes classified frames off the bus and drives the conversation
// loader, the presence snapshot, and user-facing notices.
type Router struct {
	self     func() string
	snapshot *presence.Snapshot
	loader   *Loader
	toasts   ui.Toaster
	users    UserListRefresher
	notifier presence.Notifier
	log      *slog.Logger
}

// NewRouter wires the frame handlers. self yields the logged-in nickname at
// call time, since login may happen after construction.
func NewRouter(self func() string, snapshot *presence.Snapshot, loader *Loader, toasts ui.Toaster, users UserListRefresher, notifier presence.Notifier) *Router {
	if notifier == nil {
		notifier = presence.NopNotifier{}
	}
	return &Router{
		self:     self,
		snapshot: snapshot,
		loader:   loader,
		toasts:   toasts,
		users:    users,
		notifier: notifier,
		log:      slog.Default().With("service", "chat.router"),
	}
}

// Bind subscribes the router to every frame topic on the bus.
func (r *Router) Bind(ctx context.Context, sub pubsub.Subscriber) error {
	routes := map[string]pubsub.Handler{
		transport.TopicChatMessage:     r.handleChatMessage,
		transport.TopicUserJoined:      r.handleUserJoined,
		transport.TopicUserLeft:        r.handleUserLeft,
		transport.TopicInitialSnapshot: r.handleSnapshot,
		transport.TopicSnapshotUpdate:  r.handleSnapshot,
	}
	for topic, handler := range routes {
		if err := sub.Subscribe(ctx, topic, handler); err != nil {
			return fmt.Errorf("subscribing to %s: %w", topic, err)
		}
	}
	return nil
}

func (r *Router) decode(msg pubsub.Message) (domain.ChatMessage, bool) {
	var frame domain.ChatMessage
	if err := json.Unmarshal(msg.Payload, &frame); err != nil {
		r.log.Error("Dropping undecodable frame", "topic", msg.Topic, "error", err)
		return frame, false
	}
	return frame, true
}

func (r *Router) handleChatMessage(ctx context.Context, msg pubsub.Message) error {
	frame, ok := r.decode(msg)
	if !ok {
		return nil
	}

	self := r.self()
	fromSelf := frame.From == self
	toSelf := frame.To == self

	// Notices fire only for genuine incoming messages. The server echoes
	// the sender's own frames back; those stay silent.
	if !fromSelf && toSelf {
		r.toasts.Toast(ui.ToastInfo, fmt.Sprintf("💬 New message from %s", frame.From), presenceToastFor)
		r.notifier.Notify(frame.From, frame.Content)

		if peer := r.loader.Peer(); peer != frame.From {
			r.loader.OpenWithSeed(ctx, frame.From, frame)
			return nil
		}
	}

	peer := r.loader.Peer()
	if peer == "" {
		return nil
	}
	if frame.From == peer || frame.To == peer {
		r.loader.Append(frame)
	}
	return nil
}

func (r *Router) handleUserJoined(ctx context.Context, msg pubsub.Message) error {
	frame, ok := r.decode(msg)
	if !ok {
		return nil
	}

	r.applySnapshot(ctx, frame)
	if frame.Content != "" && frame.Content != r.self() {
		r.toasts.Toast(ui.ToastSuccess, fmt.Sprintf("🟢 %s joined the forum", frame.Content), presenceToastFor)
	}
	return nil
}

func (r *Router) handleUserLeft(ctx context.Context, msg pubsub.Message) error {
	frame, ok := r.decode(msg)
	if !ok {
		return nil
	}

	r.applySnapshot(ctx, frame)
	if frame.Content != "" {
		r.toasts.Toast(ui.ToastInfo, fmt.Sprintf("🔴 %s left the forum", frame.Content), presenceToastFor)
	}

	if frame.Content != "" && frame.Content == r.loader.Peer() {
		r.toasts.Toast(ui.ToastWarning, fmt.Sprintf("Chat with %s closed (user disconnected)", frame.Content), ui.DefaultToastDuration)
		r.loader.Close()
	}
	return nil
}

func (r *Router) handleSnapshot(ctx context.Context, msg pubsub.Message) error {
	frame, ok := r.decode(msg)
	if !ok {
		return nil
	}
	r.applySnapshot(ctx, frame)
	return nil
}

// applySnapshot replaces the online list when the frame carries one. Frames
// without the list leave the snapshot alone rather than emptying it.
func (r *Router) applySnapshot(ctx context.Context, frame domain.ChatMessage) {
	if frame.OnlineUsers == nil {
		return
	}
	r.snapshot.Replace(frame.OnlineUsers)
	if err := r.users.RefreshUsers(ctx); err != nil {
		r.log.Error("Failed to refresh user list", "error", err)
	}
}
