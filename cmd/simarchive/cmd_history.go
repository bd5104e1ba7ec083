package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/spboyer/simarchive/internal/history"
	"github.com/spboyer/simarchive/internal/models"
	"github.com/spboyer/simarchive/internal/webapi"
)

var numberPrinter = message.NewPrinter(language.English)

func newHistoryCommand() *cobra.Command {
	var format string
	var dir string
	var sortField string

	cmd := &cobra.Command{
		Use:   "history [build-id]",
		Short: "Show archived simulation history",
		Long: `Show archived simulation history.

Without a build ID, lists every build that has a history. With a build ID,
prints the summary record of each report archived for that build.

--format auto prints a table on a terminal and JSON otherwise.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch format {
			case "auto", "table", "json":
			default:
				return fmt.Errorf("unsupported format %q: must be auto, table or json", format)
			}
			if format == "auto" {
				format = "json"
				if isTerminal(cmd.OutOrStdout()) {
					format = "table"
				}
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store := webapi.NewHistoryStore(history.NewFileStore(historyDir(dir, cfg)))
			out := cmd.OutOrStdout()

			if len(args) == 1 {
				h, err := store.GetBuild(cmd.Context(), args[0])
				if errors.Is(err, webapi.ErrBuildNotFound) {
					return fmt.Errorf("no history for build %q", args[0])
				}
				if err != nil {
					return err
				}
				if format == "json" {
					return writeJSON(out, h)
				}
				printRecordTable(out, h)
				return nil
			}

			builds, err := store.ListBuilds(cmd.Context(), sortField, "asc")
			if err != nil {
				return err
			}
			if format == "json" {
				return writeJSON(out, builds)
			}
			printBuildTable(out, builds)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "auto", "Output format: auto, table or json")
	cmd.Flags().StringVar(&dir, "history-dir", "", "History directory (default: paths.history)")
	cmd.Flags().StringVar(&sortField, "sort", "id", "Sort builds by: id, updated or records")

	return cmd
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printBuildTable(w io.Writer, builds []webapi.BuildSummary) {
	if len(builds) == 0 {
		fmt.Fprintln(w, "No history recorded yet.")
		return
	}

	rows := [][]string{{"BUILD", "REPORTS", "REQUESTS", "KO", "SIMULATIONS", "UPDATED"}}
	for _, b := range builds {
		rows = append(rows, []string{
			b.ID,
			numberPrinter.Sprintf("%d", b.Records),
			numberPrinter.Sprintf("%d", b.TotalRequests),
			numberPrinter.Sprintf("%d", b.FailedRequests),
			strings.Join(b.Simulations, ", "),
			formatTime(b.UpdatedAt),
		})
	}
	printTable(w, rows)
}

func printRecordTable(w io.Writer, h *models.History) {
	fmt.Fprintf(w, "Build %s: %d report(s)\n\n", h.BuildID, len(h.Records))
	if len(h.Records) == 0 {
		return
	}

	rows := [][]string{{"SIMULATION", "RUN", "REQUESTS", "KO", "ERR %", "MEAN ms", "P95 ms", "ARCHIVED"}}
	for _, r := range h.Records {
		rows = append(rows, []string{
			r.Simulation,
			r.RunID,
			numberPrinter.Sprintf("%d", r.Stats.TotalRequests()),
			numberPrinter.Sprintf("%d", r.Stats.FailedRequests()),
			numberPrinter.Sprintf("%.2f", r.Stats.ErrorRate()),
			numberPrinter.Sprintf("%.0f", r.Stats.MeanResponseTime.Total),
			numberPrinter.Sprintf("%.0f", r.Stats.Percentiles3.Total),
			formatTime(r.ArchivedAt),
		})
	}
	printTable(w, rows)
}

func printTable(w io.Writer, rows [][]string) {
	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}
	for _, row := range rows {
		var b strings.Builder
		for i, cell := range row {
			if i == len(row)-1 {
				b.WriteString(cell)
				break
			}
			b.WriteString(padRight(cell, widths[i]))
			b.WriteString("  ")
		}
		fmt.Fprintln(w, strings.TrimRight(b.String(), " "))
	}
}

// padRight pads s with spaces so its terminal display width reaches width.
func padRight(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	return s + strings.Repeat(" ", width-sw)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}
