package main

import (
	"encoding/json"
	"os"
	"time"

	"devquest/internal/core/activity"
	"devquest/internal/core/classify"
	"devquest/internal/core/xp"

	"github.com/spf13/cobra"
)

type dryRun struct {
	Activity     activity.Activity `json:"activity"`
	Handler      string            `json:"handler"`
	XP           activity.XPResult `json:"xp"`
	NoCalculator bool              `json:"no_calculator,omitempty"`
}

func classifyCmd() *cobra.Command {
	var kind, action, user string
	cmd := &cobra.Command{
		Use:   "classify <payload.json>",
		Short: "Classify and score one webhook payload without storing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			rules, err := loadRules()
			if err != nil {
				return err
			}
			registry, err := xp.FromRules(rules)
			if err != nil {
				return err
			}
			c, err := classify.New()
			if err != nil {
				return err
			}

			now := time.Now().UTC()
			res, err := c.Classify(activity.RawEvent{
				ExternalID:        "dry-run",
				ProviderEventKind: kind,
				Action:            action,
				Payload:           payload,
				ReceivedAt:        now,
			})
			if err != nil {
				return err
			}
			a := activity.Activity{
				UserID:            user,
				Type:              res.Type,
				EventID:           "dry-run",
				ProviderEventKind: kind,
				Repo:              res.Repo,
				Description:       res.Description,
				Data:              res.Data,
				CreatedAt:         now,
			}
			score, ok := registry.Calculate(a)
			if !ok {
				score = activity.Zero()
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(dryRun{Activity: a, Handler: res.Handler, XP: score, NoCalculator: !ok})
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "", "provider event kind, e.g. push or pull_request")
	cmd.Flags().StringVar(&action, "action", "", "event action when the payload does not carry one")
	cmd.Flags().StringVar(&user, "user", "dry-run", "user id to attribute the activity to")
	_ = cmd.MarkFlagRequired("kind")
	return cmd
}
