package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ckosmato/Real-Time-Forum/internal/api"
	"github.com/ckosmato/Real-Time-Forum/internal/app"
	"github.com/ckosmato/Real-Time-Forum/internal/config"
	"github.com/ckosmato/Real-Time-Forum/internal/logging"
	"github.com/ckosmato/Real-Time-Forum/internal/ui/term"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the interactive client",
	RunE: func(cmd *cobra.Command, args []string) error {
		logging.New()
		cfg := config.New()

		renderer := term.New(os.Stdout)
		a, err := app.New(*cfg, app.Views{
			Toasts:    renderer,
			Chat:      renderer,
			Users:     renderer,
			Dashboard: renderer,
		}, nil)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		if err := a.Start(ctx); err != nil {
			return err
		}

		return repl(ctx, a)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

// repl reads commands from stdin until /quit or EOF. Plain text goes to the
// open conversation; everything else starts with a slash.
func repl(ctx context.Context, a *app.App) error {
	fmt.Println("Type /help for commands.")
	scanner := bufio.NewScanner(os.Stdin)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if !strings.HasPrefix(line, "/") {
			// Failures surface as toasts; nothing to do here.
			_ = a.SendMessage(line)
			continue
		}

		cmd, arg, _ := strings.Cut(line[1:], " ")
		arg = strings.TrimSpace(arg)

		switch cmd {
		case "help":
			printHelp()
		case "login":
			user, pass, ok := strings.Cut(arg, " ")
			if !ok {
				fmt.Println("usage: /login <nickname-or-email> <password>")
				continue
			}
			_ = a.Login(ctx, user, pass)
		case "register":
			fields := strings.Fields(arg)
			if len(fields) != 7 {
				fmt.Println("usage: /register <nickname> <first> <last> <email> <age> <gender> <password>")
				continue
			}
			age, err := strconv.Atoi(fields[4])
			if err != nil {
				fmt.Println("age must be a number")
				continue
			}
			a.Register(ctx, api.RegisterRequest{
				Nickname:  fields[0],
				FirstName: fields[1],
				LastName:  fields[2],
				Email:     fields[3],
				Age:       age,
				Gender:    fields[5],
				Password:  fields[6],
			})
		case "logout":
			a.Logout(ctx)
		case "open":
			if arg == "" {
				fmt.Println("usage: /open <nickname>")
				continue
			}
			a.OpenConversation(ctx, arg)
		case "close":
			a.CloseConversation()
		case "older":
			a.LoadOlderMessages(ctx)
		case "users":
			if err := a.RefreshUsers(ctx); err != nil {
				fmt.Println("failed to load users")
			}
		case "posts":
			a.LoadDashboard(ctx)
		case "myposts":
			a.ShowMyPosts(ctx)
		case "createpost":
			parts := strings.Split(arg, "|")
			if len(parts) != 3 {
				fmt.Println("usage: /createpost <title> | <content> | <category,category>")
				continue
			}
			var categories []string
			for _, c := range strings.Split(parts[2], ",") {
				if c = strings.TrimSpace(c); c != "" {
					categories = append(categories, c)
				}
			}
			a.CreatePost(ctx, api.CreatePostRequest{
				Title:      strings.TrimSpace(parts[0]),
				Content:    strings.TrimSpace(parts[1]),
				Categories: categories,
			})
		case "post":
			if arg == "" {
				fmt.Println("usage: /post <id>")
				continue
			}
			a.ShowPost(ctx, arg)
		case "category":
			if arg == "" {
				fmt.Println("usage: /category <id>")
				continue
			}
			a.ShowCategory(ctx, arg)
		case "comment":
			postID, text, ok := strings.Cut(arg, " ")
			if !ok {
				fmt.Println("usage: /comment <post-id> <text>")
				continue
			}
			a.CreateComment(ctx, api.CreateCommentRequest{PostID: postID, Comment: text})
		case "quit":
			a.Logout(ctx)
			return nil
		default:
			fmt.Printf("unknown command /%s, try /help\n", cmd)
		}
	}
	return scanner.Err()
}

func printHelp() {
	fmt.Print(`commands:
  /login <user> <password>   log in
  /register <...>            create an account
  /logout                    log out and disconnect
  /users                     list members (online marked with *)
  /posts                     show the dashboard feed
  /myposts                   show your own posts
  /createpost <t> | <c> | <cats>  create a post (categories comma-separated)
  /post <id>                 show one post with comments
  /category <id>             show posts in a category
  /comment <post-id> <text>  comment on a post
  /open <nickname>           open a direct-message conversation
  /close                     close the open conversation
  /older                     load older messages
  /quit                      exit
plain text sends a message to the open conversation
`)
}
