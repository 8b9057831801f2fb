package reconcile

import (
	"path"
	"strings"

	"github.com/agentstation/feedsync/pkg/catalog"
)

// StripHashSuffix removes the random tokens the catalog appends to uploaded
// filenames. Trailing "_"-separated segments are stripped repeatedly while
// one of these matches:
//
//   - a UUID-like token: at least 3 hyphens and at least 32 characters
//   - an alphanumeric token of at least 16 characters without hyphens
//   - a token with 1 or 2 hyphens whose remaining characters are at least
//     16 alphanumerics including a digit
//   - a 1 or 2 digit index
//
// so "image_1_e450759a-fd73-4409-a7f2-6410c82dee8e" becomes "image" while
// "image-123" is left alone.
func StripHashSuffix(name string) string {
	for {
		i := strings.LastIndexByte(name, '_')
		if i <= 0 {
			return name
		}
		if !isHashSegment(name[i+1:]) {
			return name
		}
		name = name[:i]
	}
}

func isHashSegment(seg string) bool {
	if seg == "" {
		return false
	}
	hyphens := strings.Count(seg, "-")
	bare := strings.ReplaceAll(seg, "-", "")

	switch {
	case hyphens >= 3:
		return len(seg) >= 32
	case hyphens == 0 && len(seg) <= 2:
		return allDigits(seg)
	case hyphens == 0:
		return len(seg) >= 16 && alnum(seg)
	default:
		return len(bare) >= 16 && alnum(bare) && strings.ContainsAny(bare, "0123456789")
	}
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func alnum(s string) bool {
	for _, r := range s {
		if !(r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z') {
			return false
		}
	}
	return true
}

// ImageKey is the comparison key of an image URL or filename: the lowercased
// basename without extension, query or hash suffix.
func ImageKey(rawURL string) string {
	base := catalog.URLBase(rawURL)
	base = strings.TrimSuffix(base, path.Ext(base))
	return StripHashSuffix(strings.ToLower(base))
}
