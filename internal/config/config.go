package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Defaults for the optional settings.
const (
	DefaultPageSize       = 10
	DefaultReconnectDelay = 3 * time.Second
)

// Config holds all configuration for the client.
type Config struct {
	// BaseURL is the HTTP root of the forum backend, e.g. "http://localhost:8080".
	BaseURL string
	// WSURL is the realtime endpoint. Derived from BaseURL when not set
	// explicitly ("http" becomes "ws", path "/ws").
	WSURL string
	// PageSize is the chat history page size.
	PageSize int
	// ReconnectDelay is the fixed wait before a reconnect attempt after an
	// abnormal connection loss. There is no backoff growth.
	ReconnectDelay time.Duration
}

// New loads configuration from environment variables. A .env file is read
// when present but is not required.
func New() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	cfg := &Config{
		BaseURL:        os.Getenv("FORUM_BASE_URL"),
		WSURL:          os.Getenv("FORUM_WS_URL"),
		PageSize:       DefaultPageSize,
		ReconnectDelay: DefaultReconnectDelay,
	}

	if cfg.BaseURL == "" {
		log.Fatal("Required environment variable FORUM_BASE_URL is not set.")
	}

	if cfg.WSURL == "" {
		ws, err := DeriveWSURL(cfg.BaseURL)
		if err != nil {
			log.Fatalf("FORUM_BASE_URL is not a valid URL: %v", err)
		}
		cfg.WSURL = ws
	}

	if v := os.Getenv("CHAT_PAGE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			log.Fatalf("CHAT_PAGE_SIZE must be a positive integer, got %q", v)
		}
		cfg.PageSize = n
	}

	if v := os.Getenv("RECONNECT_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			log.Fatalf("RECONNECT_DELAY must be a positive duration, got %q", v)
		}
		cfg.ReconnectDelay = d
	}

	return cfg
}

// DeriveWSURL maps an HTTP base URL to the backend's realtime endpoint:
// scheme http becomes ws (https becomes wss) and the path is /ws.
func DeriveWSURL(base string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
		// Already a realtime URL.
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path = "/ws"
	u.RawQuery = ""
	return u.String(), nil
}
