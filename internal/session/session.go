// Package session owns the client side of the forum's cookie-based
// authentication: a cookie jar holding the server-issued session_id and the
// identity of the logged-in user. A Session is created when the application
// starts, populated on login, and wiped on logout; nothing in it is global.
package session

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
	"time"
)

// CookieName is the cookie the backend issues on login.
const CookieName = "session_id"

// HeaderName is the redundant session header every authenticated request
// carries alongside the cookie. The duplication is a server compatibility
// requirement, not a client choice.
const HeaderName = "X-Session-ID"

// Session holds the authentication state for one client instance.
type Session struct {
	base   *url.URL
	jar    http.CookieJar
	client *http.Client

	mu   sync.RWMutex
	user string
}

// New creates an empty session scoped to the given backend base URL. The
// returned session owns the http.Client all authenticated traffic must use,
// so the server-set cookie is captured and replayed automatically.
func New(baseURL string) (*Session, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	return &Session{
		base: base,
		jar:  jar,
		client: &http.Client{
			Jar:     jar,
			Timeout: 30 * time.Second,
		},
	}, nil
}

// HTTPClient returns the client carrying this session's cookie jar.
func (s *Session) HTTPClient() *http.Client {
	return s.client
}

// Token returns the current session token, or "" when not logged in.
func (s *Session) Token() string {
	for _, c := range s.jar.Cookies(s.base) {
		if c.Name == CookieName {
			return c.Value
		}
	}
	return ""
}

// Authenticated reports whether a session token is present locally. It says
// nothing about server-side validity.
func (s *Session) Authenticated() bool {
	return s.Token() != ""
}

// Apply stamps the session header onto an outgoing request. Requests made
// before login go out without the header rather than with a bogus value.
func (s *Session) Apply(req *http.Request) {
	if token := s.Token(); token != "" {
		req.Header.Set(HeaderName, token)
	}
}

// SetUser records the nickname the server confirmed at login.
func (s *Session) SetUser(nickname string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nickname
}

// User returns the logged-in nickname, or "" before login.
func (s *Session) User() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// Destroy drops the local session state: the user identity and the session
// cookie. The server-side session is the caller's problem (POST /logout).
func (s *Session) Destroy() {
	s.mu.Lock()
	s.user = ""
	s.mu.Unlock()

	// The jar has no delete; an expired cookie with the same name evicts
	// the stored one.
	s.jar.SetCookies(s.base, []*http.Cookie{{
		Name:   CookieName,
		Value:  "",
		MaxAge: -1,
	}})
}
