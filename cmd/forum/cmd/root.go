package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "forum",
	Short: "Terminal client for the realtime forum",
	Long: `forum is a terminal client for the realtime forum backend:
posts and comments over REST, direct messages and presence over WebSocket.

Configuration is read from the environment (or a .env file):
  FORUM_BASE_URL   backend root, e.g. http://localhost:8080 (required)
  FORUM_WS_URL     realtime endpoint, derived from the base URL when unset`,
}

// Execute executes the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
