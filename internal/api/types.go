package api

import (
	"fmt"

	"github.com/ckosmato/Real-Time-Forum/internal/domain"
)

// LoginRequest identifies a user by nickname or email. The server accepts
// either in the same field, so the client sends the identifier as both.
type LoginRequest struct {
	Identifier string `validate:"required"`
	Password   string `validate:"required"`
}

// loginBody is the wire form of a login. The identifier goes out twice so
// the server can match whichever column it likes.
type loginBody struct {
	Nickname string `json:"nickname"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest carries the full signup form.
type RegisterRequest struct {
	Nickname  string `validate:"required,min=3,max=30"`
	FirstName string `validate:"required"`
	LastName  string `validate:"required"`
	Email     string `validate:"required,email"`
	Age       int    `validate:"required,gte=13,lte=120"`
	Gender    string `validate:"required,oneof=male female other"`
	Password  string `validate:"required,min=8"`
}

// CreatePostRequest is a new forum post.
type CreatePostRequest struct {
	Title      string   `validate:"required"`
	Content    string   `validate:"required"`
	Categories []string `validate:"required,min=1"`
}

// CreateCommentRequest attaches a comment to a post.
type CreateCommentRequest struct {
	PostID  string `validate:"required"`
	Comment string `validate:"required"`
}

// DashboardResponse is the payload of the dashboard and category endpoints.
// Categories may be empty on the plain dashboard; the category endpoint
// always includes them.
type DashboardResponse struct {
	User       *domain.User      `json:"user"`
	Posts      []domain.Post     `json:"posts"`
	Categories []domain.Category `json:"categories"`
}

// PostResponse is a single post with its comments.
type PostResponse struct {
	Post     domain.Post      `json:"post"`
	Comments []domain.Comment `json:"comments"`
}

// UsersResponse is the full member list.
type UsersResponse struct {
	Users []domain.User `json:"users"`
}

// HistoryResponse is one page of direct-message history, ordered oldest to
// newest. HasMore reports whether an older page exists beyond this one.
type HistoryResponse struct {
	History []domain.ChatMessage `json:"history"`
	HasMore bool                 `json:"hasMore"`
}

// Error is a failed API call. The server answers errors with a JSON body of
// the form {"error": "..."}; when the body is not JSON the raw text is kept.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("api: %s (status %d)", e.Message, e.Status)
}
