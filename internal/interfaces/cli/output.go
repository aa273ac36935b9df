package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/mwinokan/Fragmenstein/internal/application/laboratory"
	"github.com/mwinokan/Fragmenstein/pkg/errors"
	ptypes "github.com/mwinokan/Fragmenstein/pkg/types/placement"
)

// printJSON outputs data as indented JSON to stdout.
func printJSON(w io.Writer, data interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "cannot encode output")
	}
	return nil
}

// PrintError writes a formatted error message to stderr.
func PrintError(cmd *cobra.Command, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", color.RedString("Error:"), err.Error())
}

// printOutcomes renders outcomes in the selected format.  JSON output is the
// batch report with the structures left out.
func printOutcomes(cmd *cobra.Command, format string, outcomes []laboratory.Outcome) error {
	plain := make([]ptypes.Outcome, len(outcomes))
	for i, o := range outcomes {
		plain[i] = o.Outcome
		if o.Summary != nil {
			s := *o.Summary
			s.PositionedMolBlock = ""
			plain[i].Summary = &s
		}
	}
	report := ptypes.NewBatchReport(plain)
	if format == outputJSON {
		return printJSON(cmd.OutOrStdout(), report)
	}

	w := cmd.OutOrStdout()
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Name", "Status", "Atoms", "Hits", "Unmatched", "Energy", "Error"})
	for _, o := range report.Outcomes {
		row := []string{o.Name, colorizeStatus(o.Status), "", "", "", "", truncateString(o.Error, 60)}
		if s := o.Summary; s != nil {
			row[2] = strconv.Itoa(len(s.Atoms))
			row[3] = strings.Join(s.Hits, " ")
			row[4] = strings.Join(s.Unmatched, " ")
			if s.Energy != nil {
				row[5] = strconv.FormatFloat(*s.Energy, 'f', 2, 64)
			}
		}
		if err := table.Append(row); err != nil {
			return errors.Wrap(err, errors.ErrCodeInternal, "cannot render table")
		}
	}
	if err := table.Render(); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "cannot render table")
	}
	fmt.Fprintf(w, "\nTotal: %d  Succeeded: %d  Failed: %d\n", report.Total, report.Succeeded, report.Failed)
	return nil
}

func colorizeStatus(s ptypes.Status) string {
	switch s {
	case ptypes.StatusSucceeded:
		return color.GreenString(string(s))
	case ptypes.StatusCached:
		return color.CyanString(string(s))
	case ptypes.StatusTimedOut:
		return color.YellowString(string(s))
	case ptypes.StatusFailed:
		return color.RedString(string(s))
	default:
		return string(s)
	}
}

func truncateString(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

//Personal.AI order the ending
