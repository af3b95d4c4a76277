/*
Package main is a terminal client for mentorlink conversations.

It verifies the stored (or given) credential against the gateway, joins one
conversation on the relay, sends every stdin line as a message and prints
inbound messages and typing indicators. "/logout" clears the credential and
"/quit" leaves.
*/
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"mentorlink/internal/app/mapping"
	"mentorlink/internal/app/user"
	"mentorlink/internal/client/apiclient"
	"mentorlink/internal/client/conversation"
	"mentorlink/internal/client/socket"
	"mentorlink/internal/client/tokenstore"
	"mentorlink/internal/configs"
	"mentorlink/internal/pkg/logx"
)

func main() {
	_ = godotenv.Load()

	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	conversationID := flag.String("conversation", "", "Conversation id to join (required)")
	token := flag.String("token", "", "Bearer credential; saved for later runs")
	name := flag.String("name", "", "Display name override")
	id := flag.String("id", "", "User id when running without a credential")
	gateway := flag.String("gateway", fmt.Sprintf("http://localhost:%d", cfg.Port), "Gateway origin")
	storePath := flag.String("store", defaultStorePath(), "Credential file")
	flag.Parse()

	if *conversationID == "" {
		fmt.Fprintln(os.Stderr, "-conversation is required")
		os.Exit(2)
	}

	logx.InitGlobalLogger(cfg.IsDevelopment())
	if !cfg.IsDevelopment() {
		// Chat output owns stdout.
		logx.SetOutput(os.Stderr, zerolog.InfoLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tokens, err := tokenstore.New(tokenstore.NewFileStore(*storePath), nil, *gateway)
	if err != nil {
		logx.Fatal(err, "Failed to open credential store")
	}

	api := apiclient.New(apiclient.Options{
		BaseURL:   *gateway,
		LoginPath: cfg.LoginPath,
		Tokens:    tokens,
		Timeout:   cfg.GatewayTimeout,
		Navigator: apiclient.NavigatorFunc(func(path string) {
			fmt.Fprintf(os.Stderr, "Session expired. Log in again at %s%s\n", *gateway, path)
			stop()
		}),
	})

	if *token != "" {
		if err := api.Login(*token); err != nil {
			logx.Fatal(err, "Failed to store credential")
		}
	}

	self, credential, err := resolveSelf(ctx, api, tokens, *id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cannot start: %v\n", err)
		os.Exit(1)
	}
	if *name != "" {
		self.Name = *name
	}

	sock := socket.NewManager(socket.Options{
		URL:                  socketURL(cfg.SocketURL, credential, self),
		Token:                credential,
		ReconnectionAttempts: cfg.ReconnectAttempts,
		ReconnectionDelay:    cfg.ReconnectDelay,
	})
	defer sock.Disconnect()

	relay := conversation.NewRelay(conversation.NewRegistry(), sock, self)
	defer relay.Stop()

	var openOnce sync.Once
	unsubscribe := sock.Subscribe(func(ev socket.Event) {
		switch ev.Type {
		case socket.EventConnect:
			openOnce.Do(func() {
				relay.Open(*conversationID)
				fmt.Printf("Joined %s as %s\n", *conversationID, self.Name)
			})
		case socket.EventMessage:
			if ev.Message.ConversationID == *conversationID {
				fmt.Printf("[%s] %s\n", ev.Message.SenderName, ev.Message.Text)
			}
		case socket.EventTyping:
			if ev.Typing.ConversationID == *conversationID && ev.Typing.IsTyping {
				fmt.Printf("* %s is typing\n", ev.Typing.UserID)
			}
		case socket.EventDisconnect:
			fmt.Printf("Disconnected (%s)\n", ev.Reason)
		case socket.EventError:
			fmt.Printf("Relay error: %s\n", ev.Reason)
		case socket.EventReconnectFailed:
			fmt.Println("Relay unreachable, giving up")
			stop()
		}
	})
	defer unsubscribe()

	sock.Connect()

	go readInput(ctx, stop, api, relay, *conversationID)

	<-ctx.Done()
}

// resolveSelf returns the local identity and the credential it came from.
func resolveSelf(ctx context.Context, api *apiclient.Client, tokens *tokenstore.TokenStore, fallbackID string) (user.User, string, error) {
	credential, ok := tokens.GetToken()
	if !ok {
		if fallbackID == "" {
			return user.User{}, "", errors.New("no stored credential; pass -token or -id")
		}
		return user.User{ID: fallbackID, Name: fallbackID, Role: user.RoleMentee}, "", nil
	}

	var me mapping.Record
	if err := api.GetJSON(ctx, "/api/auth/me", &me); err != nil {
		return user.User{}, "", fmt.Errorf("verify credential: %w", err)
	}
	return user.FromRecord(me), credential, nil
}

func socketURL(base, credential string, self user.User) string {
	if credential != "" {
		return base
	}

	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	q := u.Query()
	q.Set("uid", self.ID)
	q.Set("name", self.Name)
	u.RawQuery = q.Encode()
	return u.String()
}

func readInput(ctx context.Context, stop context.CancelFunc, api *apiclient.Client, relay *conversation.Relay, conversationID string) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		switch line {
		case "":
			continue
		case "/quit":
			stop()
			return
		case "/logout":
			if err := api.Logout(ctx); err != nil {
				fmt.Fprintf(os.Stderr, "Logout incomplete: %v\n", err)
			}
			fmt.Println("Logged out")
			stop()
			return
		}

		relay.Typing(conversationID, false)
		if msg := relay.Send(conversationID, line); msg.Status == conversation.StatusFailed {
			fmt.Println("(not delivered: relay disconnected)")
		}
	}
	stop()
}

func defaultStorePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "mentorlink", "credentials.json")
}
