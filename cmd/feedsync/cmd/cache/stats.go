package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/agentstation/feedsync"
	"github.com/agentstation/feedsync/internal/cmd/application"
	"github.com/agentstation/feedsync/internal/cmd/output"
	"github.com/agentstation/feedsync/internal/cmd/table"
	"github.com/agentstation/feedsync/internal/vendors"
	"github.com/agentstation/feedsync/pkg/cache"
	"github.com/agentstation/feedsync/pkg/checkpoint"
	"github.com/agentstation/feedsync/pkg/images"
	"github.com/agentstation/feedsync/pkg/store"
)

// Stats describes the persisted state of one vendor.
type Stats struct {
	Vendor       string                  `json:"vendor" yaml:"vendor"`
	Validated    int                     `json:"validated" yaml:"validated"`
	Decisions    map[images.Decision]int `json:"decisions" yaml:"decisions"`
	Imported     int                     `json:"imported" yaml:"imported"`
	LastImported *time.Time              `json:"last_imported,omitempty" yaml:"last_imported,omitempty"`
	Checkpoint   string                  `json:"checkpoint,omitempty" yaml:"checkpoint,omitempty"`
}

func newStatsCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:     "stats <vendor>",
		Short:   "Show cache sizes and the saved checkpoint",
		Args:    cobra.ExactArgs(1),
		Example: `  feedsync cache stats chevalier
  feedsync cache stats deerhunter -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			v, err := vendors.Get(args[0])
			if err != nil {
				return err
			}
			backend, err := app.Backend(ctx)
			if err != nil {
				return err
			}

			stats, err := Collect(ctx, backend, v.Name())
			if err != nil {
				return err
			}

			format := output.DetectFormat(app.OutputFormat())
			var data any = stats
			if format == output.FormatTable {
				data = stats.tableData()
			}
			return output.NewFormatter(format).Format(cmd.OutOrStdout(), data)
		},
	}
}

// Collect reads the state of the named vendor profile from backend.
func Collect(ctx context.Context, backend store.Backend, name string) (*Stats, error) {
	stats := &Stats{Vendor: name, Decisions: make(map[images.Decision]int)}

	validation, err := cache.Open[images.Entry](ctx, backend, feedsync.ValidationCacheName(name))
	if err != nil {
		return nil, err
	}
	for _, url := range validation.Keys() {
		entry, _ := validation.Get(url)
		stats.Decisions[entry.Decision]++
	}
	stats.Validated = validation.Len()

	ledger, err := cache.Open[time.Time](ctx, backend, feedsync.ImportLedgerName(name))
	if err != nil {
		return nil, err
	}
	stats.Imported = ledger.Len()
	for _, url := range ledger.Keys() {
		at, _ := ledger.Get(url)
		if stats.LastImported == nil || at.After(*stats.LastImported) {
			stats.LastImported = &at
		}
	}

	last, err := checkpoint.New(backend, feedsync.CheckpointName(name), "").Load(ctx)
	if err != nil {
		return nil, err
	}
	stats.Checkpoint = last

	return stats, nil
}

func (s *Stats) tableData() table.Data {
	rows := [][]string{
		{"Vendor", s.Vendor},
		{"Validated images", strconv.Itoa(s.Validated)},
	}
	for _, d := range []images.Decision{images.DecisionValid, images.DecisionResize, images.DecisionFailed} {
		rows = append(rows, []string{"  " + string(d), strconv.Itoa(s.Decisions[d])})
	}
	rows = append(rows, []string{"Imported images", strconv.Itoa(s.Imported)})
	if s.LastImported != nil {
		rows = append(rows, []string{"Last import", s.LastImported.Format(time.RFC3339)})
	}
	checkpoint := s.Checkpoint
	if checkpoint == "" {
		checkpoint = "none"
	}
	rows = append(rows, []string{"Checkpoint", checkpoint})

	return table.Data{
		Headers:         []string{"Property", "Value"},
		Rows:            rows,
		ColumnAlignment: []table.Align{table.AlignLeft, table.AlignRight},
	}
}
