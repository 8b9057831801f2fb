package vendors

import "github.com/agentstation/feedsync/pkg/transform"

// ChevalierFeedURL is the public price comparison feed.
const ChevalierFeedURL = "https://www.chevalier.se/pricecomparison/hyperdrive.xml?IncludeHiddenProducts=false"

// Chevalier returns the profile for the Chevalier XML feed. Products have no
// product number and are grouped by the handle of their name.
func Chevalier() *Vendor {
	return &Vendor{
		Format:         FormatXML,
		ItemElement:    "product",
		DefaultFeedURL: ChevalierFeedURL,
		Profile: &transform.Profile{
			Name:              "chevalier",
			Vendor:            "Chevalier",
			TitleField:        "name",
			DescriptionFields: []string{"description", "html-description"},
			SKUFields:         []string{"sku"},
			ColorField:        "sub-name",
			SizeField:         "SIZE",
			BarcodeField:      "gtin-ean",
			StockField:        "stock-level",
			StockWords:        transform.DefaultStockWords,
			PriceField:        "price-with-vat",
			CategoryField:     "categories/category",
			Categories: transform.CategoryTable{
				Allowed: map[string]string{
					"dam":               "Dam",
					"handskar":          "Handskar",
					"mössor och kepsar": "Mössor och Kepsar",
					"accessoarer":       "Accessoarer",
					"herr":              "Herr",
					"jackor":            "Jackor",
					"t-shirts":          "T-shirts",
					"byxor":             "Byxor",
					"regnkläder":        "Regnkläder",
					"västar":            "Västar",
					"väskor":            "Väskor",
					"skor":              "Skor",
					"tröjor":            "Tröjor",
					"skjortor":          "Skjortor",
					"tweed":             "Tweed",
					"underställ":        "Underställ",
					"shorts":            "Shorts",
				},
				Extra: map[string]string{
					"huvudbonader": "Mössor och Kepsar",
					"barnkläder":   "Barn och Ungdom",
					"kängor":       "Skor",
				},
			},
			GenderKeywords: []transform.KeywordRule{
				{Keywords: []string{"herr", "män"}, Tag: TagMen},
				{Keywords: []string{"dam", "kvinnor"}, Tag: TagWomen},
			},
			ImageFields:    []string{"images/image"},
			AccessoryTag:   TagAccessories,
			DefaultGenders: []string{TagMen, TagWomen},
		},
	}
}
