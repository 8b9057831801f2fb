// Package vendors holds the feed profiles of the supported vendors and a
// registry to look them up by name.
package vendors

import (
	"sort"
	"strings"

	"github.com/agentstation/feedsync/internal/sources/csvfeed"
	"github.com/agentstation/feedsync/internal/sources/xmlfeed"
	"github.com/agentstation/feedsync/pkg/errors"
	"github.com/agentstation/feedsync/pkg/feed"
	"github.com/agentstation/feedsync/pkg/transform"
)

// Format is the document format of a vendor feed.
type Format string

// Feed formats.
const (
	FormatCSV Format = "csv"
	FormatXML Format = "xml"
)

// Vendor bundles a transform profile with how its feed is read.
type Vendor struct {
	Profile *transform.Profile
	Format  Format

	// ItemElement is the repeated element of an XML feed.
	ItemElement string

	// Delimiter is the field separator of a CSV feed.
	Delimiter rune

	// DefaultFeedURL is used when no feed URL is configured.
	DefaultFeedURL string
}

// Name returns the vendor's profile name.
func (v *Vendor) Name() string {
	return v.Profile.Name
}

// Parser returns the parser for the vendor's feed format. name labels
// parse errors.
func (v *Vendor) Parser(name string) (feed.Parser, error) {
	switch v.Format {
	case FormatCSV:
		return csvfeed.Parser{Delimiter: v.Delimiter, Name: name}, nil
	case FormatXML:
		return xmlfeed.Parser{ItemElement: v.ItemElement, Name: name}, nil
	}
	return nil, errors.NewValidationError("format", v.Format, "unsupported feed format")
}

var registry = map[string]func() *Vendor{
	"chevalier":  Chevalier,
	"deerhunter": Deerhunter,
}

// Get returns a fresh copy of the named vendor.
func Get(name string) (*Vendor, error) {
	ctor, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, errors.NewNotFoundError("vendor", name)
	}
	return ctor(), nil
}

// Names lists the registered vendors.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Shared tag vocabulary.
const (
	TagMen         = "Herr"
	TagWomen       = "Dam"
	TagAccessories = "Accessoarer"
)
