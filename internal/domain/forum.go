package domain

import "time"

// The forum backend marshals its models without JSON tags, so every field
// arrives with its exported Go name ("Nickname", "Title", ...). The types
// here mirror that wire shape exactly; renaming a field breaks decoding.

// User identifies a forum member. Only Nickname is guaranteed to be
// populated on every endpoint; the rest appear on profile-bearing
// responses.
type User struct {
	ID        string
	Nickname  string
	Age       int
	Gender    string
	FirstName string
	LastName  string
	Email     string
}

// Category is a post category as listed on the dashboard sidebar.
type Category struct {
	ID   string
	Name string
}

// Post is a forum post summary as returned by the dashboard and category
// endpoints.
type Post struct {
	ID         string
	AuthorID   string
	AuthorName string
	Title      string
	Content    string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Categories []string
	Image      string
}

// Comment belongs to a single post.
type Comment struct {
	ID         string
	PostID     string
	AuthorID   string
	PostTitle  string
	AuthorName string
	Content    string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
