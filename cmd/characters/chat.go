package main

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"ai-agent-character-demo/client/internal/models"
	"ai-agent-character-demo/client/internal/views"

	"github.com/spf13/cobra"
)

func newChatCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk to characters",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cmd.Root().PersistentPreRunE(cmd, args); err != nil {
				return err
			}
			return a.requireSession()
		},
	}
	cmd.AddCommand(
		newChatListCmd(a),
		newChatStartCmd(a),
		newChatHistoryCmd(a),
		newChatSendCmd(a),
	)
	return cmd
}

func newChatListCmd(a *app) *cobra.Command {
	var query string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List conversations, optionally filtered by character name",
		RunE: func(cmd *cobra.Command, args []string) error {
			convs, err := views.LoadConversations(cmd.Context(), a.container.API.Chat, a.container.Notifier, query)
			if err != nil {
				return err
			}
			now := time.Now()
			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tCHARACTER\tWHEN\tLAST MESSAGE")
			for _, c := range convs {
				when := views.FormatConversationTime(c.CreatedAt.Time.Local(), now)
				last := ""
				if c.LastMessage != nil {
					when = views.FormatConversationTime(c.LastMessage.CreatedAt.Time.Local(), now)
					last = truncate(c.LastMessage.Content, 60)
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", c.ConversationID, c.Character.Name, when, last)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "match character name")
	return cmd
}

func newChatStartCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "start CHARACTER_ID",
		Short: "Open a conversation with a character",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			conv, err := views.StartChat(cmd.Context(), a.container.API.Chat, a.container.Notifier, nil, id)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Conversation %d started (%s)\n", conv.ConversationID, views.ChatPath(conv.ConversationID))
			return nil
		},
	}
}

func newChatHistoryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "history CONVERSATION_ID",
		Short: "Print a conversation grouped by day",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			thread := views.NewChatThread(a.container.API.Chat, a.container.Notifier, id)
			if err := thread.Load(cmd.Context()); err != nil {
				return err
			}
			a.printThread(thread)
			return nil
		},
	}
}

func newChatSendCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "send CONVERSATION_ID MESSAGE...",
		Short: "Send a message and print the updated conversation",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			thread := views.NewChatThread(a.container.API.Chat, a.container.Notifier, id)
			if err := thread.Send(cmd.Context(), strings.Join(args[1:], " ")); err != nil {
				return err
			}
			a.printThread(thread)
			return nil
		},
	}
}

func (a *app) printThread(thread *views.ChatThread) {
	speaker := "Character"
	if c := thread.Character(); c != nil {
		speaker = c.Name
	}
	for _, group := range thread.Groups(time.Local) {
		fmt.Fprintf(a.out, "── %s ──\n", group.Label)
		for _, m := range group.Messages {
			who := "You"
			if m.Role != models.RoleUser {
				who = speaker
			}
			fmt.Fprintf(a.out, "[%s] %s: %s\n", m.Time, who, m.Content)
		}
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
