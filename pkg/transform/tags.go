package transform

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/agentstation/feedsync/pkg/feed"
)

// CategoryTable maps lowercased category path segments to tags. Extra is
// consulted before Allowed; segments found in neither are skipped.
type CategoryTable struct {
	Allowed map[string]string
	Extra   map[string]string
}

// Lookup returns the tag for one category path segment.
func (t CategoryTable) Lookup(segment string) (string, bool) {
	key := strings.ToLower(strings.TrimSpace(segment))
	if key == "" {
		return "", false
	}
	if tag, ok := t.Extra[key]; ok {
		return tag, true
	}
	tag, ok := t.Allowed[key]
	return tag, ok
}

// KeywordRule yields Tag when any keyword occurs in the lowercased text.
type KeywordRule struct {
	Keywords []string
	Tag      string
}

// Matches reports whether any keyword occurs in text, which must already be
// lowercased.
func (r KeywordRule) Matches(text string) bool {
	for _, kw := range r.Keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

var titleCaser = cases.Title(language.Swedish)

// tagSet is an insertion-ordered set of tags.
type tagSet struct {
	order []string
	seen  map[string]bool
}

func newTagSet() *tagSet {
	return &tagSet{seen: make(map[string]bool)}
}

func (s *tagSet) add(tags ...string) {
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || s.seen[t] {
			continue
		}
		s.seen[t] = true
		s.order = append(s.order, t)
	}
}

func (s *tagSet) has(tag string) bool {
	return s.seen[tag]
}

// categoryTags maps every segment of every category path to tags.
func (p *Profile) categoryTags(r *feed.Record) []string {
	if p.CategoryField == "" {
		return nil
	}
	var tags []string
	for _, path := range r.All(p.CategoryField) {
		for _, segment := range strings.Split(path, ">") {
			if tag, ok := p.Categories.Lookup(segment); ok {
				tags = append(tags, tag)
			}
		}
	}
	return tags
}

// genderTags returns the genders named by the gender field or detected in
// category text.
func (p *Profile) genderTags(r *feed.Record) []string {
	var tags []string
	if p.GenderField != "" {
		if raw := strings.ToLower(r.Get(p.GenderField)); raw != "" {
			if tag, ok := p.GenderValues[raw]; ok {
				tags = append(tags, tag)
			} else {
				tags = append(tags, titleCaser.String(raw))
			}
		}
	}
	if p.CategoryField != "" && len(p.GenderKeywords) > 0 {
		for _, path := range r.All(p.CategoryField) {
			text := strings.ToLower(path)
			for _, rule := range p.GenderKeywords {
				if rule.Matches(text) {
					tags = append(tags, rule.Tag)
				}
			}
		}
	}
	return tags
}

// titleTags applies the keyword rules to the title.
func (p *Profile) titleTags(title string) []string {
	text := strings.ToLower(title)
	var tags []string
	for _, rule := range p.TitleKeywords {
		if rule.Matches(text) {
			tags = append(tags, rule.Tag)
		}
	}
	return tags
}

// attributeTags copies attribute fields.
func (p *Profile) attributeTags(r *feed.Record) []string {
	var tags []string
	for _, f := range p.AttributeFields {
		if v := r.Get(f); v != "" {
			tags = append(tags, v)
		}
	}
	return tags
}
