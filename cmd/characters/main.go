// Command characters drives the AI Characters backend from a terminal using
// the same session, storage and API layers as the companion server.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"ai-agent-character-demo/client/internal/notify"
	"ai-agent-character-demo/client/pkg/config"
	"ai-agent-character-demo/client/pkg/di"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var errNotLoggedIn = errors.New("not logged in, run 'characters login' first")

// app is the state shared by every subcommand
type app struct {
	container *di.Container
	out       io.Writer
	verbose   bool
	apiURL    string
}

func main() {
	godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a := &app{out: os.Stdout}
	if err := newRootCmd(a).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "characters",
		Short:         "Chat with AI characters from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.Context(), cmd.ErrOrStderr())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.container == nil {
				return nil
			}
			return a.container.Close(context.Background())
		},
	}
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log backend calls to stderr")
	root.PersistentFlags().StringVar(&a.apiURL, "api-url", "", "backend base URL (overrides API_URL)")

	root.AddCommand(
		newLoginCmd(a),
		newSignupCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newCharactersCmd(a),
		newChatCmd(a),
	)
	return root
}

// setup builds the container and restores the persisted session
func (a *app) setup(ctx context.Context, stderr io.Writer) error {
	cfg := config.Load()
	cfg.Logging.Format = "text"
	if !a.verbose {
		cfg.Logging.Level = "error"
	} else {
		cfg.Logging.Level = "debug"
	}
	if a.apiURL != "" {
		cfg.API.BaseURL = a.apiURL
	}

	log, err := di.Bootstrap(cfg)
	if err != nil {
		return err
	}

	container, err := di.New(ctx, cfg, log, di.Options{Notifier: newPrintNotifier(stderr)})
	if err != nil {
		return err
	}
	a.container = container

	return container.Session.Init(ctx)
}

func (a *app) requireSession() error {
	if !a.container.Session.IsAuthenticated() {
		return errNotLoggedIn
	}
	return nil
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printNotifier shows notifications as terminal lines
type printNotifier struct {
	w io.Writer
}

func newPrintNotifier(w io.Writer) *printNotifier {
	return &printNotifier{w: w}
}

func (p *printNotifier) Success(message string) { fmt.Fprintln(p.w, "✓", message) }
func (p *printNotifier) Error(message string)   { fmt.Fprintln(p.w, "✗", message) }
func (p *printNotifier) Info(message string)    { fmt.Fprintln(p.w, "•", message) }

var _ notify.Notifier = (*printNotifier)(nil)
