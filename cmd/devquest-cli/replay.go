package main

import (
	"encoding/json"
	"os"
	"os/signal"
	"syscall"
	"time"

	"devquest/internal/adapters/ingest/gharchive"
	"devquest/internal/adapters/ingest/github"
	"devquest/internal/services/replay"

	"github.com/spf13/cobra"
)

func replayCmd() *cobra.Command {
	var (
		from, to string
		logins   []string
		workers  int
		cacheDir string
		enroll   bool
		timeout  time.Duration
		resolve  bool
		tokens   string
	)
	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay GH Archive hours for selected logins through intake",
		RunE: func(cmd *cobra.Command, _ []string) error {
			start, err := gharchive.ParseHour(from)
			if err != nil {
				return err
			}
			end := start
			if to != "" {
				if end, err = gharchive.ParseHour(to); err != nil {
					return err
				}
			}

			var fetch gharchive.Fetcher = gharchive.NewHTTPFetcher(timeout)
			if cacheDir != "" {
				if fetch, err = gharchive.NewDiskCache(cacheDir, fetch); err != nil {
					return err
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			p, err := openPipeline(ctx)
			if err != nil {
				return err
			}
			defer p.Close()

			opt := replay.Options{
				From:    start,
				To:      end,
				Logins:  logins,
				Workers: workers,
				Enroll:  enroll,
			}
			if resolve {
				gc, err := github.NewClient(github.Options{TokensCSV: tokens})
				if err != nil {
					return err
				}
				opt.Resolver = github.NewResolver(gc)
			}
			rep, err := replay.New(fetch, p.intake.Ingest, p.progress.Reader).Run(ctx, opt)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(rep)
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "first UTC hour, "+gharchive.HourLayout)
	cmd.Flags().StringVar(&to, "to", "", "last UTC hour inclusive, defaults to --from")
	cmd.Flags().StringSliceVar(&logins, "login", nil, "GitHub login to replay, repeatable")
	cmd.Flags().IntVar(&workers, "workers", 4, "concurrent hour downloads")
	cmd.Flags().StringVar(&cacheDir, "cache-dir", "", "keep downloaded hours on disk")
	cmd.Flags().BoolVar(&enroll, "enroll", true, "create missing users before their first event")
	cmd.Flags().BoolVar(&resolve, "resolve", true, "look up actors the archive recorded without an id")
	cmd.Flags().StringVar(&tokens, "github-tokens", os.Getenv("GITHUB_TOKENS"), "comma separated GitHub tokens for --resolve")
	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "per hour download timeout")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("login")
	return cmd
}

