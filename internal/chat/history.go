package chat

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ckosmato/Real-Time-Forum/internal/api"
	"github.com/ckosmato/Real-Time-Forum/internal/domain"
	"github.com/ckosmato/Real-Time-Forum/internal/ui"
)

// HistoryFetcher is the slice of the REST client the loader needs.
type HistoryFetcher interface {
	ChatHistory(ctx context.Context, peer string, limit, offset int) (*api.HistoryResponse, error)
}

const (
	// beginningMarkerFor is how long the "no older messages" notice stays up.
	beginningMarkerFor = 3 * time.Second
	// minLoadInterval throttles scroll-driven loads so one flick of the
	// wheel does not fire a request per scroll event.
	minLoadInterval = 300 * time.Millisecond
)

// Loader owns the open conversation and its paginated history. Pages are
// fetched oldest-page-last: offset counts back from the newest message, and
// each page arrives oldest to newest within itself.
type Loader struct {
	fetcher  HistoryFetcher
	view     ui.ChatView
	pageSize int
	throttle time.Duration
	log      *slog.Logger

	mu          sync.Mutex
	conv        *Conversation
	generation  uint64
	loading     bool
	lastTrigger time.Time
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithThrottle overrides the scroll-trigger throttle window.
func WithThrottle(d time.Duration) LoaderOption {
	return func(l *Loader) { l.throttle = d }
}

// NewLoader creates a loader with no open conversation.
func NewLoader(fetcher HistoryFetcher, view ui.ChatView, pageSize int, opts ...LoaderOption) *Loader {
	l := &Loader{
		fetcher:  fetcher,
		view:     view,
		pageSize: pageSize,
		throttle: minLoadInterval,
		log:      slog.Default().With("service", "chat"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Peer returns the open conversation's peer, or "" when none is open.
func (l *Loader) Peer() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.conv == nil {
		return ""
	}
	return l.conv.Peer
}

// Messages returns a copy of the open conversation's messages, oldest first.
func (l *Loader) Messages() []domain.ChatMessage {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.conv == nil {
		return nil
	}
	out := make([]domain.ChatMessage, len(l.conv.Messages))
	copy(out, l.conv.Messages)
	return out
}

// Open starts a conversation with peer, replacing any open one, and loads
// the newest page of history.
func (l *Loader) Open(ctx context.Context, peer string) {
	gen := l.reset(peer, nil)
	l.view.ConversationOpened(peer)
	l.loadInitial(ctx, peer, gen)
}

// OpenWithSeed opens a conversation around a message that just arrived, so
// the user sees it immediately. The history load that follows replaces the
// seed; the seed is part of stored history by then.
func (l *Loader) OpenWithSeed(ctx context.Context, peer string, seed domain.ChatMessage) {
	gen := l.reset(peer, []domain.ChatMessage{seed})
	l.view.ConversationOpened(peer)
	l.view.ReplaceMessages([]domain.ChatMessage{seed})
	l.view.ScrollToBottom()
	l.loadInitial(ctx, peer, gen)
}

// reset installs a fresh conversation and bumps the generation, which
// invalidates any fetch still in flight for the previous one. The loading
// guard is taken here and released when the initial page lands, so a scroll
// trigger racing the initial fetch cannot load the newest page twice.
func (l *Loader) reset(peer string, seed []domain.ChatMessage) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.generation++
	l.loading = true
	l.lastTrigger = time.Time{}
	l.conv = &Conversation{Peer: peer, Messages: seed, HasMore: true}
	return l.generation
}

func (l *Loader) loadInitial(ctx context.Context, peer string, gen uint64) {
	resp, err := l.fetcher.ChatHistory(ctx, peer, l.pageSize, 0)

	l.mu.Lock()
	if gen != l.generation {
		l.mu.Unlock()
		return
	}
	l.loading = false
	if err != nil {
		l.mu.Unlock()
		l.log.Error("Failed to load chat history", "peer", peer, "error", err)
		l.view.HistoryFailed()
		return
	}

	l.conv.Messages = resp.History
	l.conv.Offset = len(resp.History)
	l.conv.HasMore = resp.HasMore
	page := resp.History
	l.mu.Unlock()

	l.view.ReplaceMessages(page)
	l.view.ScrollToBottom()
}

// OnScrollNearTop is the scroll-position trigger for older history. Calls
// within the throttle window are dropped.
func (l *Loader) OnScrollNearTop(ctx context.Context) {
	l.mu.Lock()
	now := time.Now()
	if now.Sub(l.lastTrigger) < l.throttle {
		l.mu.Unlock()
		return
	}
	l.lastTrigger = now
	l.mu.Unlock()

	l.LoadMore(ctx)
}

// LoadMore fetches the next older page and prepends it. It is a no-op when
// no conversation is open, a load is already running, or the beginning of
// history has been reached.
func (l *Loader) LoadMore(ctx context.Context) {
	l.mu.Lock()
	if l.conv == nil || l.loading || !l.conv.HasMore {
		l.mu.Unlock()
		return
	}
	l.loading = true
	gen := l.generation
	peer := l.conv.Peer
	offset := l.conv.Offset
	l.mu.Unlock()

	l.view.ShowLoadingIndicator()
	resp, err := l.fetcher.ChatHistory(ctx, peer, l.pageSize, offset)

	l.mu.Lock()
	if gen != l.generation {
		l.mu.Unlock()
		return
	}
	l.loading = false
	if err != nil {
		// Offset and HasMore stay put so the user can scroll to retry.
		l.mu.Unlock()
		l.log.Error("Failed to load older messages", "peer", peer, "error", err)
		l.view.HideLoadingIndicator()
		return
	}

	if len(resp.History) == 0 {
		l.conv.HasMore = false
		l.mu.Unlock()
		l.view.HideLoadingIndicator()
		if offset > 0 {
			l.view.ShowBeginningMarker(beginningMarkerFor)
		}
		return
	}

	// Pages arrive oldest to newest, so the whole page goes in front of
	// what is already loaded and chronology is preserved.
	l.conv.Messages = append(append([]domain.ChatMessage{}, resp.History...), l.conv.Messages...)
	l.conv.Offset = offset + len(resp.History)
	l.conv.HasMore = resp.HasMore
	page := resp.History
	l.mu.Unlock()

	l.view.HideLoadingIndicator()
	l.view.PrependMessages(page)
}

// Append adds a message at the newest end of the open conversation. Messages
// for other peers are the router's problem; the loader trusts its caller.
func (l *Loader) Append(msg domain.ChatMessage) {
	l.mu.Lock()
	if l.conv == nil {
		l.mu.Unlock()
		return
	}
	l.conv.Messages = append(l.conv.Messages, msg)
	l.conv.Offset++
	l.mu.Unlock()

	l.view.AppendMessage(msg)
	l.view.ScrollToBottom()
}

// Close drops the open conversation. Any fetch in flight becomes stale and
// its result is discarded when it lands.
func (l *Loader) Close() {
	l.mu.Lock()
	if l.conv == nil {
		l.mu.Unlock()
		return
	}
	l.generation++
	l.conv = nil
	l.loading = false
	l.mu.Unlock()

	l.view.ConversationClosed()
}
