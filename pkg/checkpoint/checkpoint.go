// Package checkpoint keeps a durable cursor over the ordered group keys of a
// feed so an interrupted run resumes after the last reconciled group.
package checkpoint

import (
	"context"
	"strings"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/feedsync/pkg/errors"
	"github.com/agentstation/feedsync/pkg/logging"
	"github.com/agentstation/feedsync/pkg/store"
)

// record is the persisted cursor.
type record struct {
	Key     string    `yaml:"key"`
	RunID   string    `yaml:"run_id,omitempty"`
	SavedAt time.Time `yaml:"saved_at"`
}

// Cursor stores the last reconciled group key under one name.
type Cursor struct {
	backend store.Backend
	name    string
	runID   string
	now     func() time.Time
}

// New returns a cursor persisted as name in backend. runID is recorded with
// every save for diagnostics.
func New(backend store.Backend, name, runID string) *Cursor {
	return &Cursor{backend: backend, name: name, runID: runID, now: time.Now}
}

// Name returns the blob name of the cursor.
func (c *Cursor) Name() string {
	return c.name
}

// Load returns the saved key, or "" when there is none.
func (c *Cursor) Load(ctx context.Context) (string, error) {
	data, err := c.backend.Read(ctx, c.name)
	if errors.IsNotFound(err) {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	var rec record
	err = yaml.Unmarshal(data, &rec)
	if err == nil && rec.Key != "" {
		return rec.Key, nil
	}
	// Older cursors were a bare key.
	if key := strings.TrimSpace(string(data)); key != "" && !strings.ContainsAny(key, "\n:") {
		return key, nil
	}
	if err != nil {
		return "", errors.WrapParse("yaml", c.name, err)
	}
	return "", nil
}

// Save records key as the last reconciled group.
func (c *Cursor) Save(ctx context.Context, key string) error {
	data, err := yaml.Marshal(record{Key: key, RunID: c.runID, SavedAt: c.now().UTC()})
	if err != nil {
		return errors.WrapParse("yaml", c.name, err)
	}
	return c.backend.Write(ctx, c.name, data)
}

// Delete removes the cursor after a completed pass.
func (c *Cursor) Delete(ctx context.Context) error {
	return c.backend.Delete(ctx, c.name)
}

// ResumeIndex returns the index of the first group to process given the
// saved key: the position after last, or 0 when last is empty. A key that
// is no longer in the feed restarts from 0 with a warning.
func ResumeIndex(ctx context.Context, keys []string, last string) int {
	if last == "" {
		return 0
	}
	for i, k := range keys {
		if k == last {
			return i + 1
		}
	}
	logging.Ctx(ctx).Warn().Str("checkpoint", last).Msg("Checkpoint key not in feed, starting from the beginning")
	return 0
}
