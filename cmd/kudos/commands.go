package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/thep200/github-kudos/internal/auth"
	"github.com/thep200/github-kudos/internal/model"
)

func authed() map[string]string {
	return map[string]string{annotationRequiresAuth: "true"}
}

func parseRepoID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid repository id %q", arg)
	}
	return id, nil
}

func newSearchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:         "search <query>...",
		Short:       "Search GitHub repositories",
		Long:        `Search GitHub repositories with the GitHub search syntax. Repositories that are kudos are marked with a star.`,
		Args:        cobra.MinimumNArgs(1),
		Annotations: authed(),
		RunE: func(cmd *cobra.Command, args []string) error {
			views, err := a.kudos.Search(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			return a.renderRepos(views)
		},
	}
}

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:         "list",
		Short:       "List your kudos",
		Args:        cobra.NoArgs,
		Annotations: authed(),
		RunE: func(cmd *cobra.Command, args []string) error {
			kudos, err := a.kudos.Kudos(cmd.Context())
			if err != nil {
				return err
			}
			return a.renderKudos(kudos)
		},
	}
}

func newToggleCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:         "toggle <repo-id>",
		Short:       "Add or remove a kudo",
		Args:        cobra.ExactArgs(1),
		Annotations: authed(),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseRepoID(args[0])
			if err != nil {
				return err
			}
			on, err := a.kudos.Toggle(cmd.Context(), id)
			if err != nil {
				return err
			}
			if on {
				fmt.Fprintf(a.out, "Kudo added for repository %d\n", id)
			} else {
				fmt.Fprintf(a.out, "Kudo removed for repository %d\n", id)
			}
			return nil
		},
	}
}

func newNoteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:         "note <repo-id> <text>...",
		Short:       "Set the notes of a kudo",
		Args:        cobra.MinimumNArgs(2),
		Annotations: authed(),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseRepoID(args[0])
			if err != nil {
				return err
			}
			kudo, err := a.kudos.Note(cmd.Context(), id, strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			return a.renderKudos([]model.Kudo{kudo})
		},
	}
}

func newTokenCmd(a *app) *cobra.Command {
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token <user-id>",
		Short: "Mint a development access token signed with auth.signing_key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			verifier, err := auth.NewVerifier(a.config)
			if err != nil {
				return err
			}
			token, err := verifier.Sign(args[0], ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, token)
			return nil
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	return cmd
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(a.out, "%s %s\n", a.config.App.Name, a.config.App.Version)
			return nil
		},
	}
}
