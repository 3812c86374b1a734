package main

import (
	"context"
	"os"

	"devquest/internal/core/xp"
	"devquest/internal/core/xprules"
	"devquest/internal/modkit"
	"devquest/internal/platform/config"
	"devquest/internal/platform/logger"
	"devquest/internal/platform/store"

	"github.com/spf13/cobra"

	intakemod "devquest/internal/services/intake/module"
	progressmod "devquest/internal/services/progress/module"
)

var rulesFile string

func main() {
	if _, err := config.LoadDotenv(); err != nil {
		logger.Get().Error().Err(err).Msg("dotenv failed to load")
		os.Exit(1)
	}

	root := &cobra.Command{
		Use:           "devquest",
		Short:         "devquest operator tooling",
		Long:          `devquest inspects the xp rule set, dry-runs the classifier and replays GH Archive hours into the pipeline.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&rulesFile, "rules", os.Getenv("CORE_XP_RULES_FILE"), "xp rules yaml, embedded defaults when empty")

	root.AddCommand(levelsCmd())
	root.AddCommand(classifyCmd())
	root.AddCommand(replayCmd())
	root.AddCommand(migrateCmd())

	if err := root.Execute(); err != nil {
		logger.Get().Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func loadRules() (*xprules.Rules, error) {
	return xprules.Load(rulesFile)
}

// pipeline is the store backed intake and progress wiring the api uses
type pipeline struct {
	st       *store.Store
	intake   intakemod.Ports
	progress progressmod.Ports
}

func openPipeline(ctx context.Context) (*pipeline, error) {
	rules, err := loadRules()
	if err != nil {
		return nil, err
	}
	registry, err := xp.FromRules(rules)
	if err != nil {
		return nil, err
	}

	cfg := config.New()
	l := logger.Get()
	st, err := store.Open(ctx, store.FromEnv(cfg, "cli"), store.WithLogger(*l))
	if err != nil {
		return nil, err
	}
	deps := modkit.FromStore(cfg, *l, st, nil)

	progress := progressmod.New(deps, rules)
	pp := modkit.MustPortsOf[progressmod.Ports](progress)
	intake := intakemod.New(deps, registry, modkit.WithPorts(intakemod.Ports{Processor: pp.Processor}))

	return &pipeline{
		st:       st,
		intake:   modkit.MustPortsOf[intakemod.Ports](intake),
		progress: pp,
	}, nil
}

func (p *pipeline) Close() {
	if err := p.st.Close(context.Background()); err != nil {
		logger.Get().Error().Err(err).Msg("failed to close store")
	}
}
