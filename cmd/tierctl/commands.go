package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rogers-f/tierforge/internal/domain"
)

// withApp wires the application for one command and closes it afterwards.
func withApp(opts *rootOptions, run func(cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd, opts)
		if err != nil {
			return err
		}
		defer a.Close()
		return run(cmd, a, args)
	}
}

func newRegisterCmd(opts *rootOptions) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "register <agent-id>",
		Short: "Register an agent at the lowest tier",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(opts, func(cmd *cobra.Command, a *app, args []string) error {
			agent, err := a.store.RegisterAgent(cmd.Context(), args[0], name)
			if err != nil {
				return err
			}
			return printAgent(cmd.OutOrStdout(), opts, a.catalog, agent)
		}),
	}
	cmd.Flags().StringVar(&name, "name", "", "display name (defaults to the agent ID)")
	return cmd
}

func newRecordCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "record <agent-id> <kind> [key=value...]",
		Short: "Record a contribution and recheck the agent's tier",
		Long: `Record one contribution event. Kinds and their metadata keys:

  code_commit       lines_changed, quality_score (0-10)
  model_training    model_name
  dataset_creation  dataset_name, samples
  community_help    users_helped, helpfulness_score (0-10)
  uptime            hours

Every kind also accepts an optional description.`,
		Example: `  tierctl record agent-7 code_commit lines_changed=120 quality_score=8
  tierctl record agent-7 community_help users_helped=10 helpfulness_score=9.5`,
		Args: cobra.MinimumNArgs(2),
		RunE: withApp(opts, func(cmd *cobra.Command, a *app, args []string) error {
			kind := domain.ContributionKind(args[1])
			if !kind.Valid() {
				return domain.Detail(domain.ErrInvalidContribution, "unknown kind %q, want one of %s", kind, describeKinds())
			}
			metadata, err := parseMetadata(args[2:])
			if err != nil {
				return err
			}
			res, err := a.recorder.RecordRaw(cmd.Context(), args[0], kind, metadata)
			if err != nil {
				return err
			}
			a.announce(cmd.Context(), res)
			return printTransition(cmd.OutOrStdout(), opts, res)
		}),
	}
}

func newRecheckCmd(opts *rootOptions) *cobra.Command {
	var explain bool
	cmd := &cobra.Command{
		Use:   "recheck <agent-id>",
		Short: "Re-evaluate an agent's tier",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(opts, func(cmd *cobra.Command, a *app, args []string) error {
			if explain {
				decisions, err := a.tiers.Explain(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printDecisions(cmd.OutOrStdout(), opts, decisions)
			}
			res, err := a.tiers.Recheck(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			a.announce(cmd.Context(), res)
			return printTransition(cmd.OutOrStdout(), opts, res)
		}),
	}
	cmd.Flags().BoolVar(&explain, "explain", false, "show every tier's gate decisions without writing")
	return cmd
}

func newPlanCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "plan <agent-id>",
		Short: "Render the provisioning directive for an agent's tier",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(opts, func(cmd *cobra.Command, a *app, args []string) error {
			d, err := a.provisioner.Plan(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printDirective(cmd.OutOrStdout(), opts, d)
		}),
	}
}

func newLeaderboardCmd(opts *rootOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "List agents by total score",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(cmd *cobra.Command, a *app, args []string) error {
			if !cmd.Flags().Changed("limit") {
				limit = a.cfg.LeaderboardDefaultLimit
			}
			entries, err := a.leaderboard.Top(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return printLeaderboard(cmd.OutOrStdout(), opts, entries)
		}),
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "number of agents (defaults to leaderboard_default_limit)")
	return cmd
}

func newCatalogCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "Show the tier catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, _, err := loadConfiguredCatalog(cmd, opts)
			if err != nil {
				return err
			}
			return printCatalog(cmd.OutOrStdout(), opts, cat.Tiers())
		},
	}
}

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history <agent-id>",
		Short: "Show an agent's recent events and tier transitions",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(opts, func(cmd *cobra.Command, a *app, args []string) error {
			events, err := a.store.ListEvents(cmd.Context(), args[0], limit)
			if err != nil {
				return err
			}
			transitions, err := a.store.ListTransitions(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printHistory(cmd.OutOrStdout(), opts, a.catalog, events, transitions)
		}),
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of events")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "tierctl %s (commit=%s, built=%s)\n", version, commit, date)
			return err
		},
	}
}

// parseMetadata turns key=value arguments into a metadata map. Values stay
// strings; the decoder converts them to each field's type.
func parseMetadata(pairs []string) (map[string]any, error) {
	out := make(map[string]any, len(pairs))
	for _, p := range pairs {
		key, value, ok := strings.Cut(p, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, domain.Detail(domain.ErrInvalidArgument, "metadata %q is not key=value", p)
		}
		if _, dup := out[key]; dup {
			return nil, domain.Detail(domain.ErrInvalidArgument, "metadata key %q repeated", key)
		}
		out[key] = value
	}
	return out, nil
}
