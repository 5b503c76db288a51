package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/thep200/github-kudos/api"
	"github.com/thep200/github-kudos/cfg"
	"github.com/thep200/github-kudos/pkg/log"
)

const annotationRequiresAuth = "requiresAuth"

var errNotLoggedIn = errors.New("not logged in: set kudos_api.access_token or KUDOS_KUDOS_API_ACCESS_TOKEN (see `kudos token`)")

type loaderFunc func(configFile string) (cfg.Loader, error)

func viperLoader(configFile string) (cfg.Loader, error) {
	return cfg.NewViperLoader(configFile)
}

// app carries the state shared by every command of one invocation.
type app struct {
	out        io.Writer
	newLoader  loaderFunc
	configFile string
	output     string
	config     *cfg.Config
	kudos      *api.KudosAPI
}

func newApp(out io.Writer, newLoader loaderFunc) *app {
	return &app{out: out, newLoader: newLoader}
}

func (a *app) loadConfig() (*cfg.Config, error) {
	if a.config != nil {
		return a.config, nil
	}
	loader, err := a.newLoader(a.configFile)
	if err != nil {
		return nil, err
	}
	a.config, err = loader.Load()
	return a.config, err
}

// guard loads configuration for every command and, for commands marked with
// annotationRequiresAuth, refuses to run without an access token.
func (a *app) guard(cmd *cobra.Command, _ []string) error {
	switch a.output {
	case outputTable, outputJSON, outputYAML:
	default:
		return fmt.Errorf("unknown output format %q", a.output)
	}

	config, err := a.loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cmd.Annotations[annotationRequiresAuth] != "true" {
		return nil
	}
	if config.KudosApi.AccessToken == "" {
		return errNotLoggedIn
	}

	// logs go to stderr so json and yaml output stay parseable
	logger, err := log.NewLogrusLoggerTo(cmd.ErrOrStderr(), config.App.LogLevel)
	if err != nil {
		return err
	}
	a.kudos = api.NewKudosAPI()
	a.kudos.SetLogger(logger)
	return a.kudos.InitializeWith(cmd.Context(), config)
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "kudos",
		Short: "Search GitHub repositories and keep kudos on your favorites",
		Long: `kudos searches GitHub repositories and stores the ones you like as kudos
on a kudos server.

Examples:
  kudos search "language:go stars:>1000"
  kudos toggle 23096959
  kudos note 23096959 "the standard library"
  kudos list -o yaml`,
		SilenceUsage:      true,
		PersistentPreRunE: a.guard,
	}
	root.SetOut(a.out)

	root.PersistentFlags().StringVar(&a.configFile, "config", "", "Config file (default cfg/yaml/mode.yaml)")
	root.PersistentFlags().StringVarP(&a.output, "output", "o", outputTable, "Output format: table, json, yaml")

	root.AddCommand(
		newSearchCmd(a),
		newListCmd(a),
		newToggleCmd(a),
		newNoteCmd(a),
		newTokenCmd(a),
		newVersionCmd(a),
	)
	return root
}
