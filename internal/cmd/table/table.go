// Package table converts run reports into rows for CLI output.
package table

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/agentstation/feedsync/pkg/errors"
	"github.com/agentstation/feedsync/pkg/sync"
)

// Align represents column alignment in tables.
type Align int

const (
	// AlignDefault uses the default alignment (skip).
	AlignDefault Align = iota
	// AlignLeft aligns content to the left.
	AlignLeft
	// AlignCenter centers content.
	AlignCenter
	// AlignRight aligns content to the right.
	AlignRight
)

// Data is a table of string cells.
type Data struct {
	Headers         []string
	Rows            [][]string
	ColumnAlignment []Align // Optional: column alignment
}

// Empty reports whether the table has no rows.
func (d Data) Empty() bool {
	return len(d.Rows) == 0
}

// SummaryToTableData converts a run result to a two column summary.
func SummaryToTableData(res *sync.Result) Data {
	rows := [][]string{
		{"Run", res.RunID},
		{"Vendor", res.Vendor},
		{"Started", res.StartedAt.Format(time.RFC3339)},
		{"Duration", res.Duration.Round(time.Millisecond).String()},
		{"Feed rows", strconv.Itoa(res.Records)},
		{"Products", strconv.Itoa(res.Groups)},
	}
	if res.Resumed > 0 {
		rows = append(rows, []string{"Resumed after", strconv.Itoa(res.Resumed)})
	}
	rows = append(rows,
		[]string{"Created", strconv.Itoa(res.Created)},
		[]string{"Updated", strconv.Itoa(res.Updated)},
		[]string{"Rejected", strconv.Itoa(res.Rejected)},
		[]string{"Failed", strconv.Itoa(res.Failed)},
		[]string{"Variants added", strconv.Itoa(res.VariantsAdded)},
		[]string{"Images added", strconv.Itoa(res.ImagesAdded)},
		[]string{"Images assigned", strconv.Itoa(res.ImagesAssigned)},
		[]string{"Stock levels set", strconv.Itoa(res.Inventory.Updated)},
	)
	if res.Inventory.Missing+res.Inventory.Failed > 0 {
		rows = append(rows, []string{"Stock levels skipped", strconv.Itoa(res.Inventory.Missing + res.Inventory.Failed)})
	}
	if res.Collections != nil {
		rows = append(rows, []string{"Collections created", strconv.Itoa(len(res.Collections.Created))})
	}
	rows = append(rows, []string{"Archival", archivalStatus(res)})
	rows = append(rows, []string{"Complete", yesNo(res.Complete)})

	return Data{
		Headers:         []string{"Property", "Value"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignRight},
	}
}

func archivalStatus(res *sync.Result) string {
	a := res.Archive
	switch {
	case a == nil:
		return "not run"
	case a.Skipped:
		return fmt.Sprintf("skipped (%d handles in feed)", a.FeedSize)
	case a.Incomplete:
		return fmt.Sprintf("incomplete, %d archived", len(a.Archived))
	default:
		return fmt.Sprintf("%d archived of %d scanned", len(a.Archived), a.Scanned)
	}
}

// FailuresToTableData lists failed products in the order they failed.
func FailuresToTableData(failures []*errors.ProductError) Data {
	rows := make([][]string, 0, len(failures))
	for _, f := range failures {
		title := f.Title
		if title == "" {
			title = "-"
		}
		rows = append(rows, []string{f.Key, title, f.Stage, errorText(f.Err)})
	}
	return Data{
		Headers: []string{"Group", "Title", "Stage", "Error"},
		Rows:    rows,
	}
}

// ArchivedToTableData lists the handles moved to draft.
func ArchivedToTableData(res *sync.Result) Data {
	var rows [][]string
	if res.Archive != nil {
		for _, h := range res.Archive.Archived {
			rows = append(rows, []string{h})
		}
	}
	return Data{Headers: []string{"Archived Handle"}, Rows: rows}
}

// CollectionsToTableData lists created collections and per tag failures.
func CollectionsToTableData(created []string, failed map[string]error) Data {
	rows := make([][]string, 0, len(created)+len(failed))
	for _, title := range created {
		rows = append(rows, []string{title, "created", ""})
	}
	tags := make([]string, 0, len(failed))
	for tag := range failed {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	for _, tag := range tags {
		rows = append(rows, []string{tag, "failed", errorText(failed[tag])})
	}
	return Data{
		Headers: []string{"Collection", "Status", "Error"},
		Rows:    rows,
	}
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if len(msg) > 100 {
		msg = msg[:97] + "..."
	}
	return msg
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
