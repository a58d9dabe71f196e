package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/muesli/reflow/truncate"
	"github.com/playmark/playmark/history"
	"github.com/playmark/playmark/icon"
	"github.com/playmark/playmark/style"
	"github.com/playmark/playmark/util"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

const (
	defaultWidth = 80
	barWidth     = 20
)

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().StringP("filter", "f", "", "Only show items whose title or ID fuzzily matches")
	historyCmd.Flags().BoolP("json", "j", false, "Format the output as JSON")
	historyCmd.SetOut(os.Stdout)
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List remembered playback locations",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			query  = lo.Must(cmd.Flags().GetString("filter"))
			asJson = lo.Must(cmd.Flags().GetBool("json"))
		)

		records, err := history.List()
		handleErr(err)
		records = filterRecords(records, query)

		if asJson {
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			handleErr(encoder.Encode(records))
			return
		}

		if len(records) == 0 {
			cmd.Println(style.Faint("No history yet"))
			return
		}

		width, _, err := util.TerminalSize()
		if err != nil || width <= 0 {
			width = defaultWidth
		}
		renderRecords(cmd.OutOrStdout(), records, width)
	},
}

func filterRecords(records []*history.Record, query string) []*history.Record {
	if query == "" {
		return records
	}
	return lo.Filter(records, func(r *history.Record, _ int) bool {
		return fuzzy.MatchFold(query, r.Name()) || fuzzy.MatchFold(query, r.ItemID)
	})
}

// renderRecords prints one line per record: title, location and a progress bar when the length is known.
func renderRecords(w io.Writer, records []*history.Record, width int) {
	for _, r := range records {
		location := history.FormatLocation(r.Location)
		suffix := " " + location

		if progress, ok := r.Progress().Get(); ok {
			suffix = fmt.Sprintf(" %s %s %3.0f%%", location, style.Bar(progress, barWidth), progress*100)
		}
		if r.Watches > 0 {
			suffix += style.Faint(" " + util.Quantify(r.Watches, "watch", "watches"))
		}

		// Title gets whatever the suffix leaves over.
		room := width - len([]rune(location)) - barWidth - 20
		name := truncate.StringWithTail(r.Name(), uint(max(room, 10)), "…")

		_, _ = fmt.Fprintln(w, style.Fg(style.Purple)(name)+suffix)
	}
}

func init() {
	historyCmd.AddCommand(historyClearCmd)
	historyClearCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget every remembered playback location",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if !lo.Must(cmd.Flags().GetBool("yes")) {
			confirm := survey.Confirm{
				Message: "Clear the whole watch history?",
				Default: false,
			}
			var response bool
			handleErr(survey.AskOne(&confirm, &response))

			if !response {
				return
			}
		}

		handleErr(history.Clear())
		fmt.Printf("%s History cleared\n", style.Fg(style.Green)(icon.Get(icon.Success)))
	},
}

func init() {
	historyCmd.AddCommand(historyRemoveCmd)
}

var historyRemoveCmd = &cobra.Command{
	Use:   "remove <item id>",
	Short: "Forget the playback location of one item",
	Args:  cobra.ExactArgs(1),
	ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		records, err := history.List()
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		return lo.Map(records, func(r *history.Record, _ int) string { return r.ItemID }), cobra.ShellCompDirectiveNoFileComp
	},
	Run: func(cmd *cobra.Command, args []string) {
		record, err := history.Lookup(args[0])
		handleErr(err)
		if record.IsAbsent() {
			handleErr(fmt.Errorf("no history for %s", args[0]))
		}

		handleErr(history.Remove(args[0]))
		fmt.Printf("%s Removed %s\n", style.Fg(style.Green)(icon.Get(icon.Success)), style.Fg(style.Purple)(record.MustGet().Name()))
	},
}
