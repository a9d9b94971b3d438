// Package term renders the forum client to a terminal. It implements every
// view port in internal/ui with plain line output, which keeps the core
// testable against the same interfaces the interactive binary uses.
package term

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ckosmato/Real-Time-Forum/internal/domain"
	"github.com/ckosmato/Real-Time-Forum/internal/ui"
)

// Renderer writes all view output to a single writer. Safe for concurrent
// use; frames and user commands render from different goroutines.
type Renderer struct {
	mu  sync.Mutex
	out io.Writer
}

// New creates a renderer writing to out, typically os.Stdout.
func New(out io.Writer) *Renderer {
	return &Renderer{out: out}
}

func (r *Renderer) printf(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out, format+"\n", args...)
}

// Toast implements ui.Toaster. Each toast gets an id so a richer surface
// could dismiss it early; the terminal just prints it.
func (r *Renderer) Toast(kind ui.ToastKind, text string, d time.Duration) {
	id := uuid.NewString()[:8]
	r.printf("[%s %s] %s", kind, id, text)
}

func (r *Renderer) ConversationOpened(peer string) {
	r.printf("--- chat with %s ---", peer)
}

func (r *Renderer) ConversationClosed() {
	r.printf("--- chat closed ---")
}

func (r *Renderer) ReplaceMessages(msgs []domain.ChatMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		fmt.Fprintln(r.out, formatMessage(m))
	}
}

func (r *Renderer) AppendMessage(msg domain.ChatMessage) {
	r.printf("%s", formatMessage(msg))
}

func (r *Renderer) PrependMessages(msgs []domain.ChatMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out, "--- %d older messages ---\n", len(msgs))
	for _, m := range msgs {
		fmt.Fprintln(r.out, formatMessage(m))
	}
}

func (r *Renderer) ShowLoadingIndicator() { r.printf("loading older messages...") }
func (r *Renderer) HideLoadingIndicator() {}

func (r *Renderer) ShowBeginningMarker(_ time.Duration) {
	r.printf("--- beginning of conversation ---")
}

// ScrollToBottom is a no-op; a terminal is already at the bottom.
func (r *Renderer) ScrollToBottom() {}

func (r *Renderer) HistoryFailed() {
	r.printf("failed to load chat history")
}

// RenderUsers implements ui.UserListView. Online members are marked, the
// rest listed plain.
func (r *Renderer) RenderUsers(users []domain.User, online []string) {
	onlineSet := make(map[string]bool, len(online))
	for _, u := range online {
		onlineSet[u] = true
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.out, "users:")
	for _, u := range users {
		mark := " "
		if onlineSet[u.Nickname] {
			mark = "*"
		}
		fmt.Fprintf(r.out, "  %s %s\n", mark, u.Nickname)
	}
}

func (r *Renderer) RenderDashboard(user *domain.User, posts []domain.Post, categories []domain.Category) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user != nil {
		fmt.Fprintf(r.out, "logged in as %s\n", user.Nickname)
	}
	if len(categories) > 0 {
		fmt.Fprint(r.out, "categories:")
		for _, c := range categories {
			fmt.Fprintf(r.out, " [%s]", c.Name)
		}
		fmt.Fprintln(r.out)
	}
	for _, p := range posts {
		fmt.Fprintf(r.out, "#%s %s (by %s)\n", p.ID, p.Title, p.AuthorName)
	}
}

func (r *Renderer) RenderPost(post domain.Post, comments []domain.Comment) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out, "%s\nby %s\n\n%s\n", post.Title, post.AuthorName, post.Content)
	for _, c := range comments {
		fmt.Fprintf(r.out, "  %s: %s\n", c.AuthorName, c.Content)
	}
}

func (r *Renderer) RenderCategories(categories []domain.Category) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprint(r.out, "categories:")
	for _, c := range categories {
		fmt.Fprintf(r.out, " [%s]", c.Name)
	}
	fmt.Fprintln(r.out)
}

func formatMessage(m domain.ChatMessage) string {
	if ts := m.SentAt(); !ts.IsZero() {
		return fmt.Sprintf("[%s] %s: %s", ts.Local().Format("15:04"), m.From, m.Content)
	}
	return fmt.Sprintf("%s: %s", m.From, m.Content)
}
