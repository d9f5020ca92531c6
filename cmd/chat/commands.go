package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"genie-chat-be/internal/config"
	"genie-chat-be/internal/pkg/logger"
	"genie-chat-be/pkg/chatclient"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"
)

const disclaimer = "Genie can make mistakes. Check important information before relying on it."

type app struct {
	session *chatclient.Session
	api     *chatclient.APIClient
	store   chatclient.Storage
	in      *bufio.Reader
}

func newApp(cmd *cobra.Command) *app {
	cfg := config.LoadClient()
	if url, _ := cmd.Flags().GetString("api"); url != "" {
		cfg.APIURL = url
	}

	var log chatclient.Logger = logger.NewConsoleLogger(zapcore.WarnLevel)
	if cfg.LogFilePath != "" {
		log = logger.NewIsolatedLogger(cfg.LogFilePath)
	}

	api := chatclient.NewAPIClient(cfg.APIURL)
	store := chatclient.NewFileStorage(cfg.StoragePath)
	return &app{
		session: chatclient.NewSession(api, store, log),
		api:     api,
		store:   store,
		in:      bufio.NewReader(os.Stdin),
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "genie",
		Short:         "Terminal client for the Genie chat assistant",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("api", "", "API base URL (defaults to GENIE_API_URL)")

	root.AddCommand(
		newSignupCmd(),
		newLoginCmd(),
		newLogoutCmd(),
		newListCmd(),
		newChatCmd(),
	)
	return root
}

func newSignupCmd() *cobra.Command {
	var name, email, password string
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp(cmd)
			name = a.ask("Full name", name)
			email = a.ask("Email", email)
			password = a.ask("Password", password)

			if err := a.session.Signup(cmd.Context(), name, email, password); err != nil {
				return err
			}
			color.Green("Account created. Run `genie login` to sign in.")
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "full name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password")
	return cmd
}

func newLoginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp(cmd)
			email = a.ask("Email", email)
			password = a.ask("Password", password)

			if err := a.session.Login(cmd.Context(), email, password); err != nil {
				return err
			}
			color.Green("Logged in as %s", email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := newApp(cmd).session.Logout(); err != nil {
				return err
			}
			color.Green("Logged out")
			return nil
		},
	}
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your conversations",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp(cmd)
			if err := a.authenticate(); err != nil {
				return err
			}

			list, err := a.api.ListConversations(cmd.Context())
			if err != nil {
				return explain(err)
			}
			if len(list) == 0 {
				color.Yellow("No conversations yet. Start one with `genie chat`.")
				return nil
			}
			for _, c := range list {
				preview := ""
				if n := len(c.Messages); n > 0 {
					preview = truncate(c.Messages[n-1].Text, 60)
				}
				fmt.Printf("%s  %s  %s\n",
					color.CyanString(c.ID),
					c.CreatedAt.Local().Format("2006-01-02 15:04"),
					preview,
				)
			}
			return nil
		},
	}
}

func newChatCmd() *cobra.Command {
	var conversationID string
	var fresh bool
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with Genie",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			a := newApp(cmd)
			if err := a.session.Open(ctx, conversationID); err != nil {
				return explain(err)
			}
			if fresh {
				if err := a.session.NewConversation(ctx); err != nil {
					return explain(err)
				}
			}
			return a.chatLoop(ctx)
		},
	}
	cmd.Flags().StringVar(&conversationID, "conversation", "", "open this conversation instead of the first one")
	cmd.Flags().BoolVar(&fresh, "new", false, "start a new conversation")
	return cmd
}

func (a *app) chatLoop(ctx context.Context) error {
	if a.session.ShouldShowDisclaimer() {
		color.Yellow(disclaimer)
		_ = a.session.AcknowledgeDisclaimer()
	}

	a.session.Subscribe(func(snap chatclient.Snapshot) {
		if snap.Typing {
			color.New(color.Faint).Println("Genie is typing...")
		}
	})

	printed := a.showConversation()
	for {
		fmt.Print(color.GreenString("> "))
		line, err := a.in.ReadString('\n')
		if err != nil {
			fmt.Println()
			return nil
		}
		line = strings.TrimRight(line, "\r\n")

		switch strings.TrimSpace(line) {
		case "/quit", "/exit":
			return nil
		case "/new":
			if err := a.session.NewConversation(ctx); err != nil {
				if err := handleChatErr(err); err != nil {
					return err
				}
				continue
			}
			printed = a.showConversation()
			continue
		}

		err = a.session.Send(ctx, line)

		// The user's own lines are already on screen.
		snap := a.session.Snapshot()
		for _, m := range snap.Messages[printed:] {
			if m.Sender == chatclient.SenderBot {
				printMessage(m)
			}
		}
		printed = len(snap.Messages)

		if err != nil {
			if err := handleChatErr(err); err != nil {
				return err
			}
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

func (a *app) showConversation() int {
	snap := a.session.Snapshot()
	color.Cyan("Conversation %s  (/new for a new conversation, /quit to exit)", snap.ConversationID)
	for _, m := range snap.Messages {
		printMessage(m)
	}
	return len(snap.Messages)
}

// handleChatErr reports recoverable errors and returns the ones that end the chat.
func handleChatErr(err error) error {
	if errors.Is(err, chatclient.ErrUnauthorized) || errors.Is(err, chatclient.ErrUnauthenticated) {
		return explain(err)
	}
	color.Red("%v", err)
	return nil
}

// authenticate loads the stored token for commands that call the API directly.
func (a *app) authenticate() error {
	token, ok, err := a.store.Get(chatclient.KeyUserToken)
	if err != nil {
		return err
	}
	if !ok || token == "" {
		return explain(chatclient.ErrUnauthenticated)
	}
	a.api.SetToken(token)
	return nil
}

func (a *app) ask(label, current string) string {
	if current != "" {
		return current
	}
	fmt.Printf("%s: ", label)
	line, _ := a.in.ReadString('\n')
	return strings.TrimSpace(line)
}

func explain(err error) error {
	if errors.Is(err, chatclient.ErrUnauthorized) || errors.Is(err, chatclient.ErrUnauthenticated) {
		return fmt.Errorf("%w; run `genie login`", err)
	}
	return err
}

func printMessage(m chatclient.Message) {
	if m.Sender == chatclient.SenderBot {
		fmt.Printf("%s %s\n", color.MagentaString("Genie:"), m.Text)
		return
	}
	fmt.Printf("%s %s\n", color.GreenString("You:"), m.Text)
}

func truncate(s string, n int) string {
	r := []rune(strings.ReplaceAll(s, "\n", " "))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n-1]) + "…"
}
