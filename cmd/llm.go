package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/spf13/cobra"

	"github.com/abhisek/lingodeck/internal/llm"
	"github.com/abhisek/lingodeck/internal/session"
	"github.com/abhisek/lingodeck/internal/store"
	"github.com/abhisek/lingodeck/internal/ui/theme"
)

const stamp = "2006-01-02 15:04:05"

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect recorded LLM calls",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent LLM calls, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		records, err := a.Store.EventRepo().QueryLLMEvents(cmd.Context(), store.QueryOpts{
			Limit:   limit,
			Purpose: purpose,
		})
		if err != nil {
			return err
		}
		if len(records) == 0 {
			outln(cmd, theme.Hint.Render("No LLM events found."))
			return nil
		}

		t := table.New().Headers("ID", "Time", "Purpose", "Model", "In", "Out", "Ms", "")
		for _, e := range records {
			t.Row(
				strconv.Itoa(e.ID),
				e.Timestamp.Local().Format(stamp),
				e.Purpose,
				truncate(e.Model, 28),
				strconv.Itoa(e.InputTokens),
				strconv.Itoa(e.OutputTokens),
				strconv.FormatInt(e.LatencyMs, 10),
				okMark(e.Success),
			)
		}
		outln(cmd, t.Render())
		return nil
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show the captured request and response of one call",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("%w: event id %q", session.ErrInvalidArgs, args[0])
		}

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		e, err := a.Store.EventRepo().GetLLMEvent(cmd.Context(), id)
		if err != nil {
			return err
		}
		if e == nil {
			return fmt.Errorf("%w: no LLM event %d", session.ErrInvalidArgs, id)
		}

		lines := []string{
			theme.Title.Render(fmt.Sprintf("LLM call #%d", e.ID)),
			theme.Field("Time", e.Timestamp.Local().Format(stamp)),
			theme.Field("Provider", e.Provider),
			theme.Field("Model", e.Model),
			theme.Field("Purpose", e.Purpose),
			theme.Field("Tokens", fmt.Sprintf("%d in / %d out", e.InputTokens, e.OutputTokens)),
			theme.Field("Latency", fmt.Sprintf("%dms", e.LatencyMs)),
			theme.Field("Status", okMark(e.Success)),
		}
		if e.ErrorMessage != "" {
			lines = append(lines, theme.Field("Error", theme.Incorrect.Render(e.ErrorMessage)))
		}
		outln(cmd, lipgloss.JoinVertical(lipgloss.Left, lines...))
		outln(cmd, section("Request", e.RequestBody))
		outln(cmd, section("Response", e.ResponseBody))
		return nil
	},
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarise token usage and estimated cost",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		events := a.Store.EventRepo()
		byPurpose, err := events.LLMUsageByPurpose(ctx)
		if err != nil {
			return err
		}
		if len(byPurpose) == 0 {
			outln(cmd, theme.Hint.Render("No LLM usage recorded yet."))
			return nil
		}
		byModel, err := events.LLMUsageByModel(ctx)
		if err != nil {
			return err
		}

		outln(cmd, theme.Title.Render("Usage by purpose"))
		outln(cmd, purposeTable(byPurpose).Render())
		outln(cmd)
		outln(cmd, theme.Title.Render("Estimated cost (USD)"))
		t, unpriced := costTable(byModel)
		outln(cmd, t.Render())
		if len(unpriced) > 0 {
			outln(cmd, theme.Hint.Render("No pricing for: "+strings.Join(unpriced, ", ")))
		}
		return nil
	},
}

func purposeTable(rows []store.LLMUsage) *table.Table {
	t := table.New().Headers("Purpose", "Calls", "Input", "Output", "Avg ms")
	var total store.LLMUsage
	for _, u := range rows {
		t.Row(u.Purpose, strconv.Itoa(u.Calls), strconv.Itoa(u.InputTokens),
			strconv.Itoa(u.OutputTokens), strconv.FormatInt(u.AvgLatencyMs, 10))
		total.Calls += u.Calls
		total.InputTokens += u.InputTokens
		total.OutputTokens += u.OutputTokens
	}
	return t.Row("total", strconv.Itoa(total.Calls), strconv.Itoa(total.InputTokens),
		strconv.Itoa(total.OutputTokens), "")
}

// costTable prices each model's usage. Models without a known price are
// shown with "?" and returned so the caller can list them.
func costTable(rows []store.LLMUsage) (*table.Table, []string) {
	t := table.New().Headers("Model", "Calls", "Input", "Output", "Cost")
	var (
		sum      float64
		unpriced []string
	)
	for _, u := range rows {
		cost := "?"
		if price := llm.LookupCost(u.Model); price != nil {
			c := price.Cost(u.InputTokens, u.OutputTokens)
			sum += c
			cost = formatCost(c)
		} else {
			unpriced = append(unpriced, u.Model)
		}
		t.Row(truncate(u.Model, 32), strconv.Itoa(u.Calls), strconv.Itoa(u.InputTokens),
			strconv.Itoa(u.OutputTokens), cost)
	}
	label := "total"
	if len(unpriced) > 0 {
		label = "total (partial)"
	}
	return t.Row(label, "", "", "", formatCost(sum)), unpriced
}

func section(title, body string) string {
	if body == "" {
		body = theme.Hint.Render("(not captured)")
	}
	return lipgloss.JoinVertical(lipgloss.Left, "", theme.Label.Render(strings.ToUpper(title)), body)
}

func okMark(ok bool) string {
	if ok {
		return theme.Correct.Render("✓")
	}
	return theme.Incorrect.Render("✗")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of events to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Only show calls with this purpose (e.g. sentence-gen)")

	llmCmd.AddCommand(llmListCmd)
	llmCmd.AddCommand(llmViewCmd)
	llmCmd.AddCommand(llmStatsCmd)
}
