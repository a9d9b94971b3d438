package chat

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ckosmato/Real-Time-Forum/internal/domain"
	"github.com/ckosmato/Real-Time-Forum/internal/presence"
	"github.com/ckosmato/Real-Time-Forum/internal/pubsub"
	"github.com/ckosmato/Real-Time-Forum/internal/ui"
)

type mockToaster struct {
	mu     sync.Mutex
	toasts []string
}

func (m *mockToaster) Toast(kind ui.ToastKind, text string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.toasts = append(m.toasts, string(kind)+": "+text)
}

func (m *mockToaster) all() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string{}, m.toasts...)
}

type mockRefresher struct {
	mu    sync.Mutex
	calls int
}

func (m *mockRefresher) RefreshUsers(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return nil
}

func (m *mockRefresher) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type mockNotifier struct {
	mu    sync.Mutex
	notes []string
}

func (m *mockNotifier) Notify(title, body string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notes = append(m.notes, title+": "+body)
}

func (m *mockNotifier) all() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string{}, m.notes...)
}

type routerFixture struct {
	router   *Router
	loader   *Loader
	view     *mockChatView
	snapshot *presence.Snapshot
	toasts   *mockToaster
	users    *mockRefresher
	notifier *mockNotifier
	fetcher  *fakeHistory
}

func newRouterFixture(self string) *routerFixture {
	f := &routerFixture{
		view:     &mockChatView{},
		snapshot: presence.NewSnapshot(),
		toasts:   &mockToaster{},
		users:    &mockRefresher{},
		notifier: &mockNotifier{},
		fetcher:  &fakeHistory{msgs: map[string][]domain.ChatMessage{}},
	}
	f.loader = NewLoader(f.fetcher, f.view, 10)
	f.router = NewRouter(func() string { return self }, f.snapshot, f.loader, f.toasts, f.users, f.notifier)
	return f
}

func frameMsg(t *testing.T, frame domain.ChatMessage) pubsub.Message {
	t.Helper()
	payload, err := json.Marshal(frame)
	require.NoError(t, err)
	return pubsub.Message{Payload: payload}
}

func TestRouter_IncomingMessageAutoOpens(t *testing.T) {
	f := newRouterFixture("me")
	ctx := context.Background()

	// The server persists the message before broadcasting it, so the
	// history fetch that follows the auto-open returns it too.
	incoming := domain.ChatMessage{
		Type: domain.TypeChatMessage, From: "alice", To: "me", Content: "hi",
	}
	f.fetcher.msgs["alice"] = []domain.ChatMessage{incoming}

	err := f.router.handleChatMessage(ctx, frameMsg(t, incoming))
	require.NoError(t, err)

	assert.Equal(t, "alice", f.loader.Peer())
	assert.Contains(t, f.toasts.all(), "info: 💬 New message from alice")
	assert.Equal(t, []string{"alice: hi"}, f.notifier.all())
	assert.Equal(t, []string{"hi"}, f.view.contents())
}

func TestRouter_IncomingMessageAppendsToOpenConversation(t *testing.T) {
	f := newRouterFixture("me")
	ctx := context.Background()
	f.loader.Open(ctx, "alice")

	err := f.router.handleChatMessage(ctx, frameMsg(t, domain.ChatMessage{
		Type: domain.TypeChatMessage, From: "alice", To: "me", Content: "again",
	}))
	require.NoError(t, err)

	assert.Equal(t, "alice", f.loader.Peer(), "no re-open for the open peer")
	assert.Equal(t, []string{"again"}, f.view.contents())
	assert.Contains(t, f.toasts.all(), "info: 💬 New message from alice")
}

func TestRouter_OwnEchoNeverNotifies(t *testing.T) {
	f := newRouterFixture("me")
	ctx := context.Background()
	f.loader.Open(ctx, "alice")

	err := f.router.handleChatMessage(ctx, frameMsg(t, domain.ChatMessage{
		Type: domain.TypeChatMessage, From: "me", To: "alice", Content: "sent by me",
	}))
	require.NoError(t, err)

	assert.Empty(t, f.toasts.all())
	assert.Empty(t, f.notifier.all())
	assert.Equal(t, []string{"sent by me"}, f.view.contents(), "own echo still renders")
}

func TestRouter_SelfChatDoesNotNotify(t *testing.T) {
	f := newRouterFixture("me")

	err := f.router.handleChatMessage(context.Background(), frameMsg(t, domain.ChatMessage{
		Type: domain.TypeChatMessage, From: "me", To: "me", Content: "note to self",
	}))
	require.NoError(t, err)

	assert.Empty(t, f.toasts.all())
	assert.Empty(t, f.notifier.all())
}

func TestRouter_UnrelatedMessageDropped(t *testing.T) {
	f := newRouterFixture("me")
	ctx := context.Background()
	f.loader.Open(ctx, "alice")

	err := f.router.handleChatMessage(ctx, frameMsg(t, domain.ChatMessage{
		Type: domain.TypeChatMessage, From: "bob", To: "carol", Content: "gossip",
	}))
	require.NoError(t, err)

	assert.Empty(t, f.view.contents())
	assert.Empty(t, f.toasts.all())
}

func TestRouter_UserJoinedReplacesSnapshot(t *testing.T) {
	f := newRouterFixture("me")
	f.snapshot.Replace([]string{"me"})

	err := f.router.handleUserJoined(context.Background(), frameMsg(t, domain.ChatMessage{
		Type: domain.TypeUserJoined, Content: "alice", OnlineUsers: []string{"me", "alice"},
	}))
	require.NoError(t, err)

	assert.Equal(t, []string{"me", "alice"}, f.snapshot.Users())
	assert.Equal(t, 1, f.users.count())
	assert.Contains(t, f.toasts.all(), "success: 🟢 alice joined the forum")
}

func TestRouter_SelfJoinIsSilent(t *testing.T) {
	f := newRouterFixture("me")

	err := f.router.handleUserJoined(context.Background(), frameMsg(t, domain.ChatMessage{
		Type: domain.TypeUserJoined, Content: "me", OnlineUsers: []string{"me"},
	}))
	require.NoError(t, err)

	assert.Empty(t, f.toasts.all())
	assert.Equal(t, []string{"me"}, f.snapshot.Users())
}

func TestRouter_UserLeftClosesOpenConversation(t *testing.T) {
	f := newRouterFixture("me")
	ctx := context.Background()
	f.loader.Open(ctx, "alice")

	err := f.router.handleUserLeft(ctx, frameMsg(t, domain.ChatMessage{
		Type: domain.TypeUserLeft, Content: "alice", OnlineUsers: []string{"me"},
	}))
	require.NoError(t, err)

	assert.Empty(t, f.loader.Peer())
	assert.True(t, f.view.has("closed"))
	assert.Contains(t, f.toasts.all(), "warning: Chat with alice closed (user disconnected)")
}

func TestRouter_PresenceFrameWithoutListKeepsSnapshot(t *testing.T) {
	f := newRouterFixture("me")
	f.snapshot.Replace([]string{"me", "alice"})

	err := f.router.handleUserJoined(context.Background(), frameMsg(t, domain.ChatMessage{
		Type: domain.TypeUserJoined, Content: "bob",
	}))
	require.NoError(t, err)

	assert.Equal(t, []string{"me", "alice"}, f.snapshot.Users())
	assert.Equal(t, 0, f.users.count())
}

func TestRouter_SnapshotFramesAreLastWriterWins(t *testing.T) {
	f := newRouterFixture("me")
	ctx := context.Background()

	frames := []domain.ChatMessage{
		{Type: domain.TypeInitialOnlineUsers, OnlineUsers: []string{"alice", "bob"}},
		{Type: domain.TypeOnlineUsersUpdate, OnlineUsers: []string{"alice", "bob", "carol"}},
		{Type: domain.TypeOnlineUsersUpdate, OnlineUsers: []string{"carol"}},
	}
	for _, fr := range frames {
		require.NoError(t, f.router.handleSnapshot(ctx, frameMsg(t, fr)))
	}

	assert.Equal(t, []string{"carol"}, f.snapshot.Users())
	assert.Equal(t, len(frames), f.users.count())
}

func TestRouter_UndecodableFrameIgnored(t *testing.T) {
	f := newRouterFixture("me")

	err := f.router.handleChatMessage(context.Background(), pubsub.Message{Payload: []byte("{broken")})
	require.NoError(t, err)
	assert.Empty(t, f.toasts.all())
}
