package xmlfeed_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/agentstation/feedsync/internal/sources/xmlfeed"
	"github.com/agentstation/feedsync/pkg/errors"
)

const doc = `<?xml version="1.0" encoding="UTF-8"?>
<products>
  <product>
    <name>Chevalier Vintage Wax Jacka</name>
    <sku>1001-GRN-M</sku>
    <sub-name>Green</sub-name>
    <SIZE>M</SIZE>
    <price-with-vat>2 499,00</price-with-vat>
    <categories>
      <category>Herr > Jackor</category>
      <category>Dam > Jackor</category>
    </categories>
    <images>
      <image>https://cdn.example.com/a.jpg</image>
      <image>https://cdn.example.com/b.jpg</image>
    </images>
    <description><![CDATA[Waxed <b>cotton</b>]]></description>
  </product>
  <product>
    <name>Chevalier Vintage Wax Jacka</name>
    <sku>1001-GRN-L</sku>
    <SIZE/>
  </product>
</products>`

func TestParse(t *testing.T) {
	records, err := xmlfeed.Parser{ItemElement: "product"}.Parse(context.Background(), strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, "Chevalier Vintage Wax Jacka", first.Get("name"))
	assert.Equal(t, "2 499,00", first.Get("price-with-vat"))
	assert.Equal(t, []string{"Herr > Jackor", "Dam > Jackor"}, first.All("categories/category"))
	assert.Equal(t, []string{"https://cdn.example.com/a.jpg", "https://cdn.example.com/b.jpg"}, first.All("images/image"))
	assert.Equal(t, "Waxed <b>cotton</b>", first.Get("description"))
	assert.False(t, first.Has("categories"), "container elements are not fields")
	assert.Equal(t, 3, first.Line)

	second := records[1]
	assert.True(t, second.Has("SIZE"))
	assert.Equal(t, "", second.Get("SIZE"))
	assert.False(t, second.Has("images/image"))
}

func TestParseLatin1(t *testing.T) {
	body := `<?xml version="1.0" encoding="ISO-8859-1"?><feed><product><name>Tröja Åsa</name></product></feed>`
	encoded, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(body))
	require.NoError(t, err)

	records, err := xmlfeed.Parser{ItemElement: "product"}.Parse(context.Background(), bytes.NewReader(encoded))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Tröja Åsa", records[0].Get("name"))
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		item string
		body string
	}{
		{"missing item element", "", "<products/>"},
		{"truncated item", "product", "<products><product><name>x</name>"},
		{"unknown charset", "product", `<?xml version="1.0" encoding="x-made-up"?><products/>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := xmlfeed.Parser{ItemElement: tt.item, Name: "feed.xml"}.Parse(context.Background(), strings.NewReader(tt.body))
			require.Error(t, err)
		})
	}

	t.Run("parse error carries format", func(t *testing.T) {
		_, err := xmlfeed.Parser{ItemElement: "product", Name: "feed.xml"}.Parse(context.Background(), strings.NewReader("<products><product><name>x</name>"))
		var pe *errors.ParseError
		require.True(t, errors.As(err, &pe))
		assert.Equal(t, "xml", pe.Format)
	})
}

func TestParseNoItems(t *testing.T) {
	records, err := xmlfeed.Parser{ItemElement: "product"}.Parse(context.Background(), strings.NewReader("<products><other/></products>"))
	require.NoError(t, err)
	assert.Empty(t, records)
}
