package sync

import (
	"fmt"
	"io"

	"github.com/agentstation/feedsync/internal/cmd/output"
	"github.com/agentstation/feedsync/internal/cmd/table"
	syncpkg "github.com/agentstation/feedsync/pkg/sync"
)

// printResult renders the run report. Table output prints the summary
// followed by the failures and archived handles when there are any.
func printResult(w io.Writer, format string, res *syncpkg.Result) error {
	f := output.DetectFormat(format)
	formatter := output.NewFormatter(f)
	if f != output.FormatTable {
		return formatter.Format(w, res)
	}

	if err := formatter.Format(w, table.SummaryToTableData(res)); err != nil {
		return err
	}
	if failures := table.FailuresToTableData(res.Failures); !failures.Empty() {
		fmt.Fprintf(w, "\nFailures (%d):\n", len(res.Failures))
		if err := formatter.Format(w, failures); err != nil {
			return err
		}
	}
	if archived := table.ArchivedToTableData(res); !archived.Empty() {
		fmt.Fprintf(w, "\nArchived (%d):\n", res.Archived())
		if err := formatter.Format(w, archived); err != nil {
			return err
		}
	}
	return nil
}
