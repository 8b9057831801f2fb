package fetch

import (
	"context"

	"github.com/agentstation/feedsync/pkg/feed"
	"github.com/agentstation/feedsync/pkg/logging"
)

// Source reads one feed snapshot from a URL.
type Source struct {
	URL    string
	Parser feed.Parser
	Opener *Opener
}

var _ feed.Source = (*Source)(nil)

// Records implements feed.Source.
func (s *Source) Records(ctx context.Context) ([]*feed.Record, error) {
	opener := s.Opener
	if opener == nil {
		opener = &Opener{}
	}

	body, err := opener.Open(ctx, s.URL)
	if err != nil {
		return nil, err
	}
	defer func() { _ = body.Close() }()

	records, err := s.Parser.Parse(ctx, body)
	if err != nil {
		return nil, err
	}
	logging.Ctx(ctx).Info().Int("records", len(records)).Msg("Feed parsed")
	return records, nil
}
