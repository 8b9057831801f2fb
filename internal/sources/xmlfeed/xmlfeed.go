// Package xmlfeed parses tree shaped vendor feeds where each product is a
// repeated item element. Every leaf below an item becomes a record field
// named by its slash separated path relative to the item, so
// <images><image>a.jpg</image></images> yields the field "images/image".
package xmlfeed

import (
	"context"
	"encoding/xml"
	"io"
	"strings"

	"golang.org/x/text/encoding/htmlindex"

	"github.com/agentstation/feedsync/pkg/errors"
	"github.com/agentstation/feedsync/pkg/feed"
)

// Parser reads an XML feed.
type Parser struct {
	// ItemElement is the local name of the repeated product element.
	ItemElement string

	// Name labels parse errors, typically the feed URL.
	Name string
}

var _ feed.Parser = Parser{}

// element tracks one open element below an item.
type element struct {
	name     string
	text     strings.Builder
	children int
}

// Parse implements feed.Parser.
func (p Parser) Parse(ctx context.Context, r io.Reader) ([]*feed.Record, error) {
	if p.ItemElement == "" {
		return nil, errors.NewValidationError("item_element", "", "cannot be empty")
	}

	dec := xml.NewDecoder(r)
	dec.CharsetReader = charsetReader
	dec.Strict = false

	var (
		records []*feed.Record
		current *feed.Record
		stack   []*element
	)

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			line, _ := dec.InputPos()
			return nil, &errors.ParseError{Format: "xml", File: p.Name, Line: line, Message: err.Error(), Err: err}
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if current == nil {
				if t.Name.Local == p.ItemElement {
					line, _ := dec.InputPos()
					current = feed.NewRecord(line)
				}
				continue
			}
			if len(stack) > 0 {
				stack[len(stack)-1].children++
			}
			stack = append(stack, &element{name: t.Name.Local})

		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text.Write(t)
			}

		case xml.EndElement:
			if current == nil {
				continue
			}
			if len(stack) == 0 {
				// closing the item itself
				records = append(records, current)
				current = nil
				continue
			}
			top := stack[len(stack)-1]
			if top.children == 0 {
				current.Add(path(stack), strings.TrimSpace(top.text.String()))
			}
			stack = stack[:len(stack)-1]
		}
	}

	if current != nil {
		return nil, errors.NewParseError("xml", p.Name, "unexpected end of document inside "+p.ItemElement, nil)
	}
	return records, nil
}

func path(stack []*element) string {
	names := make([]string, len(stack))
	for i, e := range stack {
		names[i] = e.name
	}
	return strings.Join(names, "/")
}

// charsetReader decodes legacy encodings declared in the XML prolog, such as
// ISO-8859-1 and windows-1252, which are common in Swedish feeds.
func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, errors.NewParseError("xml", "", "unsupported charset "+label, errors.ErrUnsupported)
	}
	return enc.NewDecoder().Reader(input), nil
}
