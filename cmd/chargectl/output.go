package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/pscheid92/chargewatch/internal/app"
	"github.com/pscheid92/chargewatch/internal/domain"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

const gaugeWidth = 30

func printSuccess(w io.Writer, format string, a ...any) {
	fmt.Fprintf(w, "%s %s\n", green("[OK]"), fmt.Sprintf(format, a...))
}

func printWarning(w io.Writer, format string, a ...any) {
	fmt.Fprintf(w, "%s %s\n", yellow("[WARN]"), fmt.Sprintf(format, a...))
}

func printHeader(w io.Writer, text string) {
	fmt.Fprintln(w, bold(text))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}

type statusOutput struct {
	Authenticated bool         `json:"authenticated"`
	Phase         string       `json:"phase"`
	User          *domain.User `json:"user"`
	UpdatedAt     string       `json:"updatedAt,omitempty"`
}

func newStatusOutput(state app.State) statusOutput {
	return statusOutput{
		Authenticated: state.Authenticated(),
		Phase:         state.Phase.String(),
		User:          state.CurrentUser(),
		UpdatedAt:     state.FormattedUpdatedAt(),
	}
}

type dashboardOutput struct {
	User         *domain.User      `json:"user"`
	UpdatedAt    string            `json:"updatedAt"`
	UsageRange   domain.UsageRange `json:"usageRange"`
	UsagePercent int               `json:"usagePercent"`
	Dashboard    domain.Snapshot   `json:"dashboard"`
}

func newDashboardOutput(state app.State) dashboardOutput {
	return dashboardOutput{
		User:         state.CurrentUser(),
		UpdatedAt:    state.FormattedUpdatedAt(),
		UsageRange:   state.UsageRange,
		UsagePercent: state.UsagePercent(),
		Dashboard:    state.Dashboard,
	}
}

func gauge(percent int) string {
	filled := min(max(percent, 0), 100) * gaugeWidth / 100
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", gaugeWidth-filled) + "]"
}

func printDashboard(w io.Writer, state app.State) {
	snap := state.Dashboard
	if user := state.CurrentUser(); user != nil {
		printHeader(w, fmt.Sprintf("ChargeWatch | %s (%s)", user.DisplayName, user.Role))
	}
	fmt.Fprintf(w, "Updated %s\n\n", state.FormattedUpdatedAt())

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, s := range snap.Stats {
		fmt.Fprintf(tw, "%s\t%s %s\n", s.Label, cyan(fmt.Sprintf("%g", s.Value)), s.Unit)
	}
	_ = tw.Flush()

	for _, tab := range state.UsageTabs() {
		if tab.Active {
			fmt.Fprintf(w, "\nUtilisation (%s) %s %d%%\n", tab.Label, gauge(state.UsagePercent()), state.UsagePercent())
		}
	}
	fmt.Fprintf(w, "Yesterday: %d charges, %g trips\n", snap.Yesterday.ChargeCount, snap.Yesterday.Trips)

	fmt.Fprintln(w)
	printHeader(w, "Alerts")
	if len(snap.Alerts) == 0 {
		fmt.Fprintln(w, "  none")
	}
	for _, a := range snap.Alerts {
		fmt.Fprintf(w, "  %s  %s\n", yellow(a.Time), a.Title)
	}

	fmt.Fprintln(w)
	printHeader(w, "Monthly output")
	for _, m := range snap.MonthlyStats {
		fmt.Fprintf(w, "  %-8s %g\n", m.Month, m.Value)
	}

	fmt.Fprintln(w)
	printHeader(w, "Patrol log")
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  DATE\tINSPECTIONS\tPEOPLE\tTEAM")
	for _, p := range snap.Patrols {
		fmt.Fprintf(tw, "  %s\t%d\t%d\t%s\n", p.Date, p.Count, p.People, p.Org)
	}
	_ = tw.Flush()
}
