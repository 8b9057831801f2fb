// Package csvfeed parses delimiter separated vendor feeds with a header row.
package csvfeed

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/agentstation/feedsync/pkg/errors"
	"github.com/agentstation/feedsync/pkg/feed"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Parser reads a CSV feed. A leading UTF-8 byte order mark is ignored and a
// spreadsheet "sep=X" line, when present, overrides Delimiter.
type Parser struct {
	// Delimiter separates fields; ',' when zero.
	Delimiter rune

	// Name labels parse errors, typically the feed URL.
	Name string
}

// Compile-time interface check.
var _ feed.Parser = Parser{}

// Parse implements feed.Parser.
func (p Parser) Parse(ctx context.Context, r io.Reader) ([]*feed.Record, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	delim := p.Delimiter
	if delim == 0 {
		delim = ','
	}

	lineOffset := 0
	if head, _ := br.Peek(4); strings.EqualFold(string(head), "sep=") {
		line, err := br.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, errors.WrapIO("read", p.Name, err)
		}
		if sep := strings.TrimSpace(line[len("sep="):]); sep != "" {
			delim, _ = utf8.DecodeRuneInString(sep)
		}
		lineOffset = 1
	}

	cr := csv.NewReader(br)
	cr.Comma = delim
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, p.parseError(err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var records []*feed.Record
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, p.parseError(err)
		}
		if blank(row) {
			continue
		}

		line, _ := cr.FieldPos(0)
		rec := feed.NewRecord(line + lineOffset)
		for i, name := range header {
			if name == "" {
				continue
			}
			value := ""
			if i < len(row) {
				value = row[i]
			}
			rec.Add(name, value)
		}
		records = append(records, rec)
	}
	return records, nil
}

func (p Parser) parseError(err error) error {
	pe := errors.NewParseError("csv", p.Name, err.Error(), err)
	if ce, ok := err.(*csv.ParseError); ok {
		pe.Line = ce.Line
	}
	return pe
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
