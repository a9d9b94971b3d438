// Package ui defines the view ports the application core renders through.
// The core never touches a concrete surface; it calls these interfaces and
// the host wires in a renderer (the terminal one lives in ui/term).
package ui

import (
	"time"

	"github.com/ckosmato/Real-Time-Forum/internal/domain"
)

// ToastKind selects the visual style of a toast.
type ToastKind string

const (
	ToastInfo    ToastKind = "info"
	ToastSuccess ToastKind = "success"
	ToastError   ToastKind = "error"
	ToastWarning ToastKind = "warning"
)

// DefaultToastDuration is how long a toast stays up unless the caller
// asks for something else.
const DefaultToastDuration = 3 * time.Second

// Toaster shows transient notices.
type Toaster interface {
	Toast(kind ToastKind, text string, d time.Duration)
}

// ChatView renders the direct-message widget for one conversation at a time.
// All calls happen from the core's goroutines; implementations serialize
// their own drawing.
type ChatView interface {
	// ConversationOpened resets the widget for a peer. Messages arrive
	// separately via ReplaceMessages.
	ConversationOpened(peer string)
	ConversationClosed()

	// ReplaceMessages swaps the full visible history, oldest first.
	ReplaceMessages(msgs []domain.ChatMessage)
	// AppendMessage adds one message at the newest end.
	AppendMessage(msg domain.ChatMessage)
	// PrependMessages inserts an older page before the current messages,
	// keeping the scroll position stable.
	PrependMessages(msgs []domain.ChatMessage)

	ShowLoadingIndicator()
	HideLoadingIndicator()
	// ShowBeginningMarker tells the user there is no older history. It
	// disappears on its own after d.
	ShowBeginningMarker(d time.Duration)
	ScrollToBottom()

	// HistoryFailed replaces the widget content with an error notice.
	HistoryFailed()
}

// UserListView renders the member directory with online state.
type UserListView interface {
	RenderUsers(users []domain.User, online []string)
}

// DashboardView renders the post feed and sidebar.
type DashboardView interface {
	RenderDashboard(user *domain.User, posts []domain.Post, categories []domain.Category)
	RenderPost(post domain.Post, comments []domain.Comment)
	// RenderCategories redraws the sidebar alone, used when the post
	// fetch failed but the category list is still worth showing.
	RenderCategories(categories []domain.Category)
}
