package sync

import (
	"fmt"
	"strings"
	"time"

	"github.com/agentstation/feedsync/pkg/archive"
	"github.com/agentstation/feedsync/pkg/collections"
	"github.com/agentstation/feedsync/pkg/errors"
	"github.com/agentstation/feedsync/pkg/inventory"
)

// Result represents the complete result of a sync run.
type Result struct {
	// Run metadata
	RunID     string
	Vendor    string
	StartedAt time.Time
	Duration  time.Duration

	// Feed statistics
	Records int // Rows read from the feed
	Groups  int // Distinct products in the feed
	Resumed int // Groups skipped because the checkpoint was past them

	// Product outcomes
	Created  int
	Updated  int
	Rejected int // Groups with no sellable variant
	Failed   int

	// Changes applied to existing or new products
	VariantsAdded  int
	ImagesAdded    int
	ImagesAssigned int

	// Inventory totals across all products
	Inventory inventory.Result

	// Failures lists one entry per failed product, plus inventory problems
	// on products that were otherwise reconciled.
	Failures []*errors.ProductError

	// Post-pass outcomes; nil when the step did not run.
	Archive     *archive.Result
	Collections *collections.Result

	// Complete is set when every group was visited without interruption.
	Complete bool
	Fresh    bool
}

// Processed returns the number of groups visited in this run.
func (r *Result) Processed() int {
	return r.Created + r.Updated + r.Rejected + r.Failed
}

// HasFailures returns true if any product failed.
func (r *Result) HasFailures() bool {
	return len(r.Failures) > 0
}

// Archived returns the number of entries moved to draft.
func (r *Result) Archived() int {
	if r.Archive == nil {
		return 0
	}
	return len(r.Archive.Archived)
}

// Summary returns a human-readable summary of the run.
func (r *Result) Summary() string {
	summary := fmt.Sprintf("%s: %d created, %d updated, %d rejected, %d failed of %d products",
		r.Vendor, r.Created, r.Updated, r.Rejected, r.Failed, r.Groups)

	var parts []string
	if r.Resumed > 0 {
		parts = append(parts, fmt.Sprintf("(resumed after %d)", r.Resumed))
	}
	if r.Fresh {
		parts = append(parts, "(fresh)")
	}
	if !r.Complete {
		parts = append(parts, "(incomplete)")
	}
	if n := r.Archived(); n > 0 {
		parts = append(parts, fmt.Sprintf("%d archived", n))
	}
	if len(parts) > 0 {
		summary += " " + strings.Join(parts, " ")
	}
	return summary
}
