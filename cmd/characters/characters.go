package main

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"ai-agent-character-demo/client/internal/models"
	"ai-agent-character-demo/client/internal/views"

	"github.com/spf13/cobra"
)

func newCharactersCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "characters",
		Aliases: []string{"chars"},
		Short:   "Browse and manage characters",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cmd.Root().PersistentPreRunE(cmd, args); err != nil {
				return err
			}
			return a.requireSession()
		},
	}
	cmd.AddCommand(
		newCharactersListCmd(a),
		newCharactersShowCmd(a),
		newCharactersCreateCmd(a),
		newCharactersGenerateCmd(a),
		newCharactersDeleteCmd(a),
		newCharactersAvatarCmd(a),
	)
	return cmd
}

func newCharactersListCmd(a *app) *cobra.Command {
	var query string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List characters, optionally filtered",
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := views.LoadCharacters(cmd.Context(), a.container.API.Characters, a.container.Notifier, query)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\t\tNAME\tPROFESSION\tNATIONALITY")
			for _, c := range list {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", c.ID, views.Initials(c.Name), c.Name,
					models.StringValue(c.Profession), models.StringValue(c.Nationality))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "match name, description or profession")
	return cmd
}

func newCharactersShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show one character",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			character, err := a.container.API.Characters.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			return a.printJSON(character)
		},
	}
}

func newCharactersCreateCmd(a *app) *cobra.Command {
	var (
		name, nationality, profession, description, background, motivations string
		traits                                                              []string
		personal                                                            bool
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a character from flags",
		RunE: func(cmd *cobra.Command, args []string) error {
			input := models.CharacterInput{
				Name:              models.String(name),
				PersonalityTraits: traits,
			}
			for flag, field := range map[string]**string{
				"nationality": &input.Nationality,
				"profession":  &input.Profession,
				"description": &input.Description,
				"background":  &input.Background,
				"motivations": &input.Motivations,
			} {
				if cmd.Flags().Changed(flag) {
					v, _ := cmd.Flags().GetString(flag)
					*field = models.String(v)
				}
			}
			if cmd.Flags().Changed("personal") {
				input.IsPersonalCharacter = &personal
			}

			character, err := a.container.API.Characters.Create(cmd.Context(), input)
			if err != nil {
				return err
			}
			return a.printJSON(character)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "character name")
	cmd.Flags().StringVar(&nationality, "nationality", "", "nationality")
	cmd.Flags().StringVar(&profession, "profession", "", "profession")
	cmd.Flags().StringVar(&description, "description", "", "short description")
	cmd.Flags().StringVar(&background, "background", "", "background story")
	cmd.Flags().StringVar(&motivations, "motivations", "", "motivations")
	cmd.Flags().StringSliceVar(&traits, "trait", nil, "personality trait (repeatable)")
	cmd.Flags().BoolVar(&personal, "personal", false, "keep the character private")
	cmd.MarkFlagRequired("name")
	return cmd
}

func newCharactersGenerateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "generate DESCRIPTION...",
		Short: "Let the backend create a character from a description",
		RunE: func(cmd *cobra.Command, args []string) error {
			character, err := views.GenerateCharacter(cmd.Context(), a.container.API.Characters, a.container.Notifier, strings.Join(args, " "))
			if err != nil {
				return err
			}
			return a.printJSON(character)
		},
	}
}

func newCharactersDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a character",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.container.API.Characters.Delete(cmd.Context(), id)
		},
	}
}

func newCharactersAvatarCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "avatar ID IMAGE_URL",
		Short: "Replace a character's image",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			character, err := a.container.API.Characters.UpdateAvatar(cmd.Context(), id, args[1])
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, views.CharacterImage(*character))
			return nil
		},
	}
}

func parseID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return uint(id), nil
}
