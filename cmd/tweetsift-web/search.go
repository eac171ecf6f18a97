package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/foxzi/tweetsift/internal/cli"
	"github.com/foxzi/tweetsift/internal/web/backend"
	"github.com/foxzi/tweetsift/internal/web/clipboard"
	"github.com/foxzi/tweetsift/internal/web/config"
	"github.com/foxzi/tweetsift/internal/web/flow"
	"github.com/foxzi/tweetsift/internal/web/models"
)

var searchCmd = &cobra.Command{
	Use:   "search TERM",
	Short: "Start collecting and classifying tweets for a term",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

var resultCmd = &cobra.Command{
	Use:   "result HANDLE",
	Short: "Show the result of a search",
	Args:  cobra.ExactArgs(1),
	RunE:  runResult,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List the latest searches",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

var (
	searchCount int
	resultTab   string
	resultCopy  bool
)

func init() {
	for _, cmd := range []*cobra.Command{searchCmd, resultCmd, historyCmd} {
		cmd.Flags().StringVarP(&configFile, "config", "c", "/etc/tweetsift/web.yaml", "Path to configuration file")
	}
	searchCmd.Flags().IntVarP(&searchCount, "count", "n", int(models.DefaultTweetCount), "Number of tweets to collect (10, 50, 100 or 1000)")
	resultCmd.Flags().StringVar(&resultTab, "tab", "", "Label to show, defaults to the first configured label")
	resultCmd.Flags().BoolVar(&resultCopy, "copy", false, "Copy the result link to the clipboard")
}

// clientEnv is what the terminal commands share
type clientEnv struct {
	cfg      *config.Config
	client   *backend.Client
	pacer    flow.Pacer
	logger   *slog.Logger
	renderer *cli.Renderer
}

func loadClientEnv() (*clientEnv, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}

	// Terminal output stays clean; only warnings reach stderr.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	return &clientEnv{
		cfg:      cfg,
		client:   backend.NewClient(cfg.Backend.BaseURL, logger),
		pacer:    flow.NewPacer(0),
		logger:   logger,
		renderer: cli.NewRenderer(),
	}, nil
}

// publicURL prefixes path with the configured public address, if any
func (e *clientEnv) publicURL(path string) string {
	return e.cfg.Server.PublicURL + path
}

func runSearch(cmd *cobra.Command, args []string) error {
	env, err := loadClientEnv()
	if err != nil {
		return err
	}

	count := models.TweetCount(searchCount)
	if !count.Valid() {
		return fmt.Errorf("invalid --count %d: must be one of %v", searchCount, models.TweetCounts())
	}

	f := flow.NewSearchFlow(env.client, env.pacer, env.logger)
	form, err := f.Submit(cmd.Context(), args[0], count)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), env.renderer.Search(form, env.publicURL(form.Handle.Path())))
	if form.Status != flow.SearchNavigateToResult {
		return fmt.Errorf("search was not started")
	}
	return nil
}

func runResult(cmd *cobra.Command, args []string) error {
	env, err := loadClientEnv()
	if err != nil {
		return err
	}
	if !env.cfg.Configured() {
		return fmt.Errorf("application is not configured, see %s", env.cfg.AdminURL())
	}

	var copier clipboard.Copier
	if resultCopy {
		copier = clipboard.System{}
	}
	return showResult(cmd.Context(), cmd.OutOrStdout(), env, models.SearchHandle(args[0]), resultTab, copier)
}

// showResult prints the result of handle. A nil copier skips copying the link.
func showResult(ctx context.Context, w io.Writer, env *clientEnv, handle models.SearchHandle, tab string, copier clipboard.Copier) error {
	f := flow.NewResultFlow(env.client, env.cfg.Labels(), env.pacer, env.logger)
	view, err := f.Load(ctx, handle)
	if err != nil {
		return err
	}

	if tab != "" && view.Status == flow.ResultReady && !view.Select(tab) {
		return fmt.Errorf("unknown label %q, expected one of %v", tab, env.cfg.Labels())
	}

	link := env.publicURL(handle.Path())
	fmt.Fprintln(w, env.renderer.Result(view, link))

	if copier != nil && view.Status != flow.ResultNotFound {
		if copier.Copy(link) {
			fmt.Fprintln(w, "Link copied!")
		} else {
			fmt.Fprintln(w, "Could not copy the link, no clipboard available.")
		}
	}

	if view.Status == flow.ResultNotFound {
		return fmt.Errorf("search %s not found: %w", handle, view.Err)
	}
	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	env, err := loadClientEnv()
	if err != nil {
		return err
	}

	f := flow.NewHistoryFlow(env.client, env.pacer, env.logger)
	view, err := f.Load(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), env.renderer.History(view, env.cfg.Server.PublicURL))
	return nil
}
