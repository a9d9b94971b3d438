// Package api is the REST client for the forum backend. Every call goes
// through the session's http.Client so the session cookie rides along, and
// additionally carries the X-Session-ID header the server checks first.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ckosmato/Real-Time-Forum/internal/domain"
	"github.com/ckosmato/Real-Time-Forum/internal/session"
)

// Client talks to one forum backend on behalf of one session.
type Client struct {
	baseURL  string
	sess     *session.Session
	validate *validator.Validate
	log      *slog.Logger
}

// NewClient creates a REST client bound to the given session.
func NewClient(baseURL string, sess *session.Session) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		sess:     sess,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		log:      slog.Default().With("service", "api"),
	}
}

// Login authenticates and returns the nickname the server confirmed. The
// session cookie is captured by the underlying jar as a side effect.
func (c *Client) Login(ctx context.Context, req LoginRequest) (string, error) {
	if err := c.validate.Struct(req); err != nil {
		return "", err
	}

	body := loginBody{
		Nickname: req.Identifier,
		Email:    req.Identifier,
		Password: req.Password,
	}

	var resp struct {
		User string `json:"user"`
	}
	if err := c.postJSON(ctx, "/login", body, &resp); err != nil {
		return "", err
	}
	return resp.User, nil
}

// Register submits the signup form. The server expects classic form
// encoding here, not JSON.
func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	if err := c.validate.Struct(req); err != nil {
		return err
	}

	form := url.Values{}
	form.Set("nickname", req.Nickname)
	form.Set("firstName", req.FirstName)
	form.Set("lastName", req.LastName)
	form.Set("email", req.Email)
	form.Set("age", strconv.Itoa(req.Age))
	form.Set("gender", req.Gender)
	form.Set("password", req.Password)

	return c.postForm(ctx, "/register", form, nil)
}

// Logout invalidates the session server-side. Local state is the caller's
// responsibility.
func (c *Client) Logout(ctx context.Context) error {
	return c.postJSON(ctx, "/logout", nil, nil)
}

// ValidateSession asks the server whether the current token is still good.
// A nil return means the session is live.
func (c *Client) ValidateSession(ctx context.Context) error {
	return c.getJSON(ctx, "/validate-session", nil)
}

// Dashboard fetches the post feed plus the viewer's profile.
func (c *Client) Dashboard(ctx context.Context) (*DashboardResponse, error) {
	var resp DashboardResponse
	if err := c.getJSON(ctx, "/dashboard", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// PostsByCategory fetches the feed filtered to one category. The response
// also carries the category list for the sidebar.
func (c *Client) PostsByCategory(ctx context.Context, categoryID string) (*DashboardResponse, error) {
	var resp DashboardResponse
	if err := c.getJSON(ctx, "/category/"+url.PathEscape(categoryID), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Post fetches one post and its comments.
func (c *Client) Post(ctx context.Context, postID string) (*PostResponse, error) {
	var resp PostResponse
	if err := c.getJSON(ctx, "/post?id="+url.QueryEscape(postID), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// MyPosts fetches the posts authored by the logged-in user.
func (c *Client) MyPosts(ctx context.Context) ([]domain.Post, error) {
	var resp struct {
		Posts []domain.Post `json:"posts"`
	}
	if err := c.getJSON(ctx, "/dashboard/my-posts", &resp); err != nil {
		return nil, err
	}
	return resp.Posts, nil
}

// AllUsers fetches every registered member. Presence frames decide which of
// them show as online; this list is the directory they are matched against.
func (c *Client) AllUsers(ctx context.Context) ([]domain.User, error) {
	var resp UsersResponse
	if err := c.getJSON(ctx, "/dashboard/all-users", &resp); err != nil {
		return nil, err
	}
	return resp.Users, nil
}

// ActiveUsers fetches only the members the server currently considers
// online. The realtime snapshot usually supersedes this; it exists for the
// first paint before the connection is up.
func (c *Client) ActiveUsers(ctx context.Context) ([]domain.User, error) {
	var resp UsersResponse
	if err := c.getJSON(ctx, "/dashboard/active-users", &resp); err != nil {
		return nil, err
	}
	return resp.Users, nil
}

// CreatePost publishes a new post. Categories repeat as multiple form values.
func (c *Client) CreatePost(ctx context.Context, req CreatePostRequest) error {
	if err := c.validate.Struct(req); err != nil {
		return err
	}

	form := url.Values{}
	form.Set("title", req.Title)
	form.Set("content", req.Content)
	for _, id := range req.Categories {
		form.Add("categories", id)
	}

	return c.postForm(ctx, "/createpost", form, nil)
}

// CreateComment attaches a comment to a post.
func (c *Client) CreateComment(ctx context.Context, req CreateCommentRequest) error {
	if err := c.validate.Struct(req); err != nil {
		return err
	}

	form := url.Values{}
	form.Set("post_id", req.PostID)
	form.Set("comment", req.Comment)

	return c.postForm(ctx, "/post/createcomment", form, nil)
}

// ChatHistory fetches one page of direct messages with a peer, ordered
// oldest to newest. Offset counts messages back from the newest.
func (c *Client) ChatHistory(ctx context.Context, peer string, limit, offset int) (*HistoryResponse, error) {
	q := url.Values{}
	q.Set("user2", peer)
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))

	var resp HistoryResponse
	if err := c.getJSON(ctx, "/chathistory?"+q.Encode(), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, out)
}

func (c *Client) postForm(ctx context.Context, path string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req, out)
}

// do executes the request with session credentials attached and decodes the
// response. Non-2xx answers become *Error; bodies that fail to decode as the
// server's {"error": ...} shape are kept verbatim.
func (c *Client) do(req *http.Request, out any) error {
	c.sess.Apply(req)

	resp, err := c.sess.HTTPClient().Do(req)
	if err != nil {
		return fmt.Errorf("api: %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("api: reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.asError(resp.StatusCode, data)
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("api: decoding %s: %w", req.URL.Path, err)
	}
	return nil
}

func (c *Client) asError(status int, body []byte) error {
	var wire struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &wire); err != nil || wire.Error == "" {
		wire.Error = strings.TrimSpace(string(body))
	}
	if wire.Error == "" {
		wire.Error = http.StatusText(status)
	}
	c.log.Warn("Request failed", "status", status, "error", wire.Error)
	return &Error{Status: status, Message: wire.Error}
}
