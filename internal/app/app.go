// Package app is the composition root: it owns the session, the REST
// client, the realtime transport, and the conversation state, and exposes
// the operations the interactive surface calls.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/ckosmato/Real-Time-Forum/internal/api"
	"github.com/ckosmato/Real-Time-Forum/internal/chat"
	"github.com/ckosmato/Real-Time-Forum/internal/config"
	"github.com/ckosmato/Real-Time-Forum/internal/domain"
	"github.com/ckosmato/Real-Time-Forum/internal/presence"
	"github.com/ckosmato/Real-Time-Forum/internal/pubsub"
	"github.com/ckosmato/Real-Time-Forum/internal/session"
	"github.com/ckosmato/Real-Time-Forum/internal/transport"
	"github.com/ckosmato/Real-Time-Forum/internal/ui"
)

// ErrNoConversation is returned by SendMessage when no conversation is open
// to address the message to.
var ErrNoConversation = errors.New("app: no open conversation")

// Views bundles the render surfaces the app drives. One renderer usually
// implements all four.
type Views struct {
	Toasts    ui.Toaster
	Chat      ui.ChatView
	Users     ui.UserListView
	Dashboard ui.DashboardView
}

// App wires the client together and carries the cross-cutting state: the
// member directory cache and the last category list seen.
type App struct {
	cfg       config.Config
	sess      *session.Session
	api       *api.Client
	bus       *pubsub.WatermillBridge
	transport *transport.Transport
	snapshot  *presence.Snapshot
	loader    *chat.Loader
	router    *chat.Router
	views     Views
	log       *slog.Logger

	mu         sync.Mutex
	directory  []domain.User
	categories []domain.Category
}

// New assembles the full client. Nothing connects until Start or Login.
func New(cfg config.Config, views Views, notifier presence.Notifier) (*App, error) {
	sess, err := session.New(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}

	a := &App{
		cfg:      cfg,
		sess:     sess,
		api:      api.NewClient(cfg.BaseURL, sess),
		bus:      pubsub.NewWatermillBridge(),
		snapshot: presence.NewSnapshot(),
		views:    views,
		log:      slog.Default().With("service", "app"),
	}

	a.loader = chat.NewLoader(a.api, views.Chat, cfg.PageSize)
	a.router = chat.NewRouter(sess.User, a.snapshot, a.loader, views.Toasts, a, notifier)
	a.transport = transport.New(cfg.WSURL, sess.Token, a.bus,
		transport.WithReconnectDelay(cfg.ReconnectDelay),
		transport.WithHTTPClient(sess.HTTPClient()),
	)

	return a, nil
}

// Start binds the frame handlers and resumes a previous session if a token
// is still around.
func (a *App) Start(ctx context.Context) error {
	if err := a.router.Bind(ctx, a.bus); err != nil {
		return fmt.Errorf("binding frame handlers: %w", err)
	}
	return a.Resume(ctx)
}

// Resume revalidates a stored session. With no token present it returns
// immediately; there is nothing worth a round trip to validate.
func (a *App) Resume(ctx context.Context) error {
	if !a.sess.Authenticated() {
		return nil
	}
	if err := a.api.ValidateSession(ctx); err != nil {
		a.log.Info("Stored session rejected", "error", err)
		a.clearState()
		return nil
	}
	if err := a.LoadDashboard(ctx); err != nil {
		return err
	}
	return a.transport.Connect(ctx)
}

// Login authenticates, loads the dashboard, and brings the realtime
// connection up.
func (a *App) Login(ctx context.Context, identifier, password string) error {
	nickname, err := a.api.Login(ctx, api.LoginRequest{
		Identifier: identifier,
		Password:   password,
	})
	if err != nil {
		a.views.Toasts.Toast(ui.ToastError, loginErrorText(err), ui.DefaultToastDuration)
		return err
	}

	a.sess.SetUser(nickname)
	a.views.Toasts.Toast(ui.ToastSuccess, "Login successful!", ui.DefaultToastDuration)

	if err := a.LoadDashboard(ctx); err != nil {
		return err
	}
	return a.transport.Connect(ctx)
}

func loginErrorText(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return "Network error. Please try again."
}

// Register submits the signup form. The user still logs in afterwards.
func (a *App) Register(ctx context.Context, req api.RegisterRequest) error {
	if err := a.api.Register(ctx, req); err != nil {
		return err
	}
	a.views.Toasts.Toast(ui.ToastSuccess, "Registration successful! Please log in.", ui.DefaultToastDuration)
	return nil
}

// LoadDashboard fetches and renders the post feed. When the fetch fails the
// last known categories still render, so the sidebar survives a flaky feed.
func (a *App) LoadDashboard(ctx context.Context) error {
	resp, err := a.api.Dashboard(ctx)
	if err != nil {
		a.views.Toasts.Toast(ui.ToastError, "Failed to load posts. Please refresh.", ui.DefaultToastDuration)
		a.mu.Lock()
		cats := a.categories
		a.mu.Unlock()
		a.views.Dashboard.RenderCategories(cats)
		return err
	}

	if resp.User != nil && resp.User.Nickname != "" {
		a.sess.SetUser(resp.User.Nickname)
	}
	a.mu.Lock()
	if len(resp.Categories) > 0 {
		a.categories = resp.Categories
	}
	cats := a.categories
	a.mu.Unlock()

	a.views.Dashboard.RenderDashboard(resp.User, resp.Posts, cats)
	a.seedPresence(ctx)
	return a.RefreshUsers(ctx)
}

// seedPresence primes the online snapshot from the REST endpoint so the
// first directory paint shows online marks before the realtime connection
// delivers its initial snapshot. Once connected the frames own the snapshot.
func (a *App) seedPresence(ctx context.Context) {
	if a.transport.Connected() {
		return
	}
	users, err := a.api.ActiveUsers(ctx)
	if err != nil {
		a.log.Debug("Failed to fetch active users", "error", err)
		return
	}
	online := make([]string, 0, len(users))
	for _, u := range users {
		online = append(online, u.Nickname)
	}
	a.snapshot.Replace(online)
}

// ShowMyPosts renders only the posts authored by the logged-in user.
func (a *App) ShowMyPosts(ctx context.Context) error {
	posts, err := a.api.MyPosts(ctx)
	if err != nil {
		a.views.Toasts.Toast(ui.ToastError, "Failed to load your posts", ui.DefaultToastDuration)
		return err
	}
	a.mu.Lock()
	cats := a.categories
	a.mu.Unlock()
	a.views.Dashboard.RenderDashboard(nil, posts, cats)
	return nil
}

// ShowCategory renders the feed filtered to one category.
func (a *App) ShowCategory(ctx context.Context, categoryID string) error {
	resp, err := a.api.PostsByCategory(ctx, categoryID)
	if err != nil {
		a.views.Toasts.Toast(ui.ToastError, "Failed to load posts. Please refresh.", ui.DefaultToastDuration)
		return err
	}
	a.mu.Lock()
	if len(resp.Categories) > 0 {
		a.categories = resp.Categories
	}
	cats := a.categories
	a.mu.Unlock()
	a.views.Dashboard.RenderDashboard(resp.User, resp.Posts, cats)
	return nil
}

// ShowPost renders a single post with its comments.
func (a *App) ShowPost(ctx context.Context, postID string) error {
	resp, err := a.api.Post(ctx, postID)
	if err != nil {
		a.views.Toasts.Toast(ui.ToastError, "Failed to load post", ui.DefaultToastDuration)
		return err
	}
	a.views.Dashboard.RenderPost(resp.Post, resp.Comments)
	return nil
}

// CreatePost publishes a post and reloads the feed on success.
func (a *App) CreatePost(ctx context.Context, req api.CreatePostRequest) error {
	if err := a.api.CreatePost(ctx, req); err != nil {
		a.views.Toasts.Toast(ui.ToastError, "Failed to create post", ui.DefaultToastDuration)
		return err
	}
	a.views.Toasts.Toast(ui.ToastSuccess, "Post created!", ui.DefaultToastDuration)
	return a.LoadDashboard(ctx)
}

// CreateComment attaches a comment and re-renders the post.
func (a *App) CreateComment(ctx context.Context, req api.CreateCommentRequest) error {
	if err := a.api.CreateComment(ctx, req); err != nil {
		a.views.Toasts.Toast(ui.ToastError, "Failed to post comment", ui.DefaultToastDuration)
		return err
	}
	return a.ShowPost(ctx, req.PostID)
}

// RefreshUsers re-renders the member directory against the current online
// snapshot. On fetch failure the cached directory is rendered instead, so
// presence changes still show with stale member data.
func (a *App) RefreshUsers(ctx context.Context) error {
	users, err := a.api.AllUsers(ctx)
	if err != nil {
		a.log.Warn("Failed to fetch user directory", "error", err)
		a.mu.Lock()
		users = a.directory
		a.mu.Unlock()
		a.views.Users.RenderUsers(users, a.snapshot.Users())
		return err
	}

	a.mu.Lock()
	a.directory = users
	a.mu.Unlock()
	a.views.Users.RenderUsers(users, a.snapshot.Users())
	return nil
}

// OpenConversation opens the DM widget for peer and loads recent history.
func (a *App) OpenConversation(ctx context.Context, peer string) {
	a.loader.Open(ctx, peer)
}

// CloseConversation closes the open DM widget, if any.
func (a *App) CloseConversation() {
	a.loader.Close()
}

// LoadOlderMessages is the scroll-to-top trigger.
func (a *App) LoadOlderMessages(ctx context.Context) {
	a.loader.OnScrollNearTop(ctx)
}

// SendMessage sends a DM to the open conversation peer. Blank input is
// ignored. Without a live connection nothing is queued; the user gets an
// error toast and the message is gone.
func (a *App) SendMessage(content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil
	}

	peer := a.loader.Peer()
	if peer == "" {
		a.views.Toasts.Toast(ui.ToastError, "No open conversation", ui.DefaultToastDuration)
		return ErrNoConversation
	}

	err := a.transport.Send(domain.NewOutgoing(peer, content))
	if errors.Is(err, transport.ErrNotConnected) {
		a.views.Toasts.Toast(ui.ToastError, "Connection lost. Please refresh the page.", ui.DefaultToastDuration)
		return err
	}
	return err
}

// Logout ends the session server-side and wipes all local state. A failed
// logout call still clears locally; the cookie is gone either way.
func (a *App) Logout(ctx context.Context) {
	if err := a.api.Logout(ctx); err != nil {
		a.log.Warn("Logout request failed", "error", err)
	}
	a.clearState()
	a.views.Toasts.Toast(ui.ToastInfo, "Logged out", ui.DefaultToastDuration)
}

// clearState tears down everything tied to the authenticated user.
func (a *App) clearState() {
	if err := a.transport.Close(); err != nil {
		a.log.Debug("Closing transport", "error", err)
	}
	a.loader.Close()
	a.snapshot.Replace(nil)
	a.sess.Destroy()

	a.mu.Lock()
	a.directory = nil
	a.mu.Unlock()
}

// User returns the logged-in nickname, or "" when logged out.
func (a *App) User() string {
	return a.sess.User()
}

// Connected reports whether the realtime connection is live.
func (a *App) Connected() bool {
	return a.transport.Connected()
}

// Close releases the bus. Call on process exit.
func (a *App) Close() error {
	return a.bus.Close()
}
