package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	"github.com/rogers-f/tierforge/internal/catalog"
	"github.com/rogers-f/tierforge/internal/domain"
)

var (
	okMark    = color.New(color.FgGreen).SprintFunc()
	failMark  = color.New(color.FgRed).SprintFunc()
	tierColor = color.New(color.FgCyan, color.Bold).SprintFunc()
	dim       = color.New(color.Faint).SprintFunc()
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printAgent(w io.Writer, opts *rootOptions, cat *catalog.Catalog, a *domain.Agent) error {
	if opts.jsonOutput {
		return printJSON(w, a)
	}
	fmt.Fprintf(w, "%s %s (%s)\n", okMark("✓"), a.AgentID, a.DisplayName)
	fmt.Fprintf(w, "  tier         %s\n", tierColor(cat.NameOf(a.CurrentTier)))
	fmt.Fprintf(w, "  total_score  %d\n", a.Counters.TotalScore)
	fmt.Fprintf(w, "  registered   %s\n", a.CreatedAt.Format(time.RFC3339))
	return nil
}

func printTransition(w io.Writer, opts *rootOptions, res *domain.TierTransitionResult) error {
	if opts.jsonOutput {
		return printJSON(w, res)
	}
	if res.Changed {
		fmt.Fprintf(w, "%s %s advanced %s → %s\n", okMark("▲"), res.AgentID, res.PreviousTier, tierColor(res.NewTier))
		return nil
	}
	fmt.Fprintf(w, "%s %s remains %s\n", dim("="), res.AgentID, tierColor(res.NewTier))
	if res.NextTier == "" {
		fmt.Fprintln(w, "  top tier reached")
		return nil
	}
	fmt.Fprintf(w, "  progress toward %s:\n", res.NextTier)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, p := range res.Progress {
		mark := failMark("✗")
		if p.Percent >= 100 {
			mark = okMark("✓")
		}
		fmt.Fprintf(tw, "  %s\t%s\t%g / %g\t%.2f%%\n", mark, p.Field, p.Current, p.Required, p.Percent)
	}
	return tw.Flush()
}

func printDecisions(w io.Writer, opts *rootOptions, decisions []domain.TierDecision) error {
	if opts.jsonOutput {
		return printJSON(w, decisions)
	}
	for _, d := range decisions {
		mark := failMark("✗")
		if d.Qualifies {
			mark = okMark("✓")
		}
		fmt.Fprintf(w, "%s %s\n", mark, tierColor(d.Tier))
		for _, g := range d.Gates {
			for _, b := range g.Blockers {
				fmt.Fprintf(w, "    %s: %s\n", g.Gate, b)
			}
		}
	}
	return nil
}

func printDirective(w io.Writer, opts *rootOptions, d *domain.ProvisioningDirective) error {
	if opts.jsonOutput {
		return printJSON(w, d)
	}
	h := d.Hardware
	fmt.Fprintf(w, "%s %s (%s)\n", tierColor(d.Tier), d.AgentID, d.Label)
	fmt.Fprintf(w, "  %d vCPU, %d GB memory, %d GB storage, up to %d instances, $%.2f/h\n",
		h.CPUs, h.MemoryGB, h.StorageGB, h.MaxInstances, h.HourlyCostUSD)
	if h.HasAccelerator() {
		fmt.Fprintf(w, "  %d × %s\n", h.AcceleratorCount, h.AcceleratorType)
	}
	fmt.Fprintln(w, d.Command)
	return nil
}

func printLeaderboard(w io.Writer, opts *rootOptions, entries []domain.LeaderboardEntry) error {
	if opts.jsonOutput {
		return printJSON(w, entries)
	}
	if len(entries) == 0 {
		fmt.Fprintln(w, dim("no agents registered"))
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tAGENT\tSCORE\tTIER\tACCELERATORS")
	for _, e := range entries {
		acc := "-"
		if e.Hardware.HasAccelerator() {
			acc = fmt.Sprintf("%d×%s", e.Hardware.AcceleratorCount, e.Hardware.AcceleratorType)
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\n", e.Rank, e.Agent.AgentID, e.Agent.Counters.TotalScore, e.Tier, acc)
	}
	return tw.Flush()
}

func printCatalog(w io.Writer, opts *rootOptions, tiers []domain.TierDefinition) error {
	if opts.jsonOutput {
		return printJSON(w, tiers)
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tTIER\tSCORE\tCOMMITS\tMODELS\tDATASETS\tHELP\tUPTIME\tHARDWARE")
	for _, t := range tiers {
		r, h := t.Requirement, t.Hardware
		hw := fmt.Sprintf("%dc/%dg", h.CPUs, h.MemoryGB)
		if h.HasAccelerator() {
			hw += fmt.Sprintf(" +%d×%s", h.AcceleratorCount, h.AcceleratorType)
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%d\t%d\t%d\t%g\t%s\n",
			t.Rank, t.Name, r.TotalScore, r.CommitCount, r.ModelsTrained, r.DatasetsCreated,
			r.CommunityHelpUnits, r.UptimeHours, hw)
	}
	return tw.Flush()
}

func printHistory(w io.Writer, opts *rootOptions, cat *catalog.Catalog, events []domain.ContributionEvent, transitions []domain.TierTransition) error {
	if opts.jsonOutput {
		return printJSON(w, struct {
			Events      []domain.ContributionEvent `json:"events"`
			Transitions []domain.TierTransition    `json:"transitions"`
		}{events, transitions})
	}
	fmt.Fprintln(w, "events (newest first):")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, e := range events {
		fmt.Fprintf(tw, "  %s\t%s\t+%d\t%s\n", e.RecordedAt.Format(time.RFC3339), e.Kind, e.ComputedValue, e.Description)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(transitions) == 0 {
		return nil
	}
	fmt.Fprintln(w, "transitions:")
	for _, t := range transitions {
		fmt.Fprintf(w, "  %s  %s → %s  (score %d)\n", t.CreatedAt.Format(time.RFC3339),
			cat.NameOf(t.FromRank), tierColor(cat.NameOf(t.ToRank)), t.TotalScore)
	}
	return nil
}

// describeKinds lists the accepted contribution kinds.
func describeKinds() string {
	names := make([]string, len(domain.ContributionKinds))
	for i, k := range domain.ContributionKinds {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}
