package vendors

import "github.com/agentstation/feedsync/pkg/transform"

// Deerhunter returns the profile for the Deerhunter CSV feed, delivered over
// FTP as a semicolon separated file.
func Deerhunter() *Vendor {
	return &Vendor{
		Format:    FormatCSV,
		Delimiter: ';',
		Profile: &transform.Profile{
			Name:              "deerhunter",
			Vendor:            "Deerhunter",
			GroupField:        "Product_Number",
			TitleField:        "Product_Name",
			DescriptionFields: []string{"Description"},
			SKUFields:         []string{"Product_Number", "Colour_Number", "Size"},
			ColorField:        "Colour_Name",
			SizeField:         "Size",
			BarcodeField:      "EAN",
			StockField:        "Stock",
			StockWords:        transform.DefaultStockWords,
			PriceField:        "Retail_Price",
			OutletField:       "Outlet",
			WholesaleField:    "Wholesale_Price",
			Outlet:            transform.DefaultOutletPolicy(),
			GenderField:       "Gender",
			GenderValues: map[string]string{
				"manlig":  TagMen,
				"kvinlig": TagWomen,
			},
			AttributeFields: []string{"Composition", "Series"},
			TitleKeywords: []transform.KeywordRule{
				{Keywords: []string{"byxa", "byxor"}, Tag: "Byxor"},
				{Keywords: []string{"t-shirt"}, Tag: "T-shirts"},
				{Keywords: []string{"jacka"}, Tag: "Jackor"},
				{Keywords: []string{"mössa", "keps", "cap", "hatt"}, Tag: "Mössor och Kepsar"},
				{Keywords: []string{"piké"}, Tag: "Pike"},
				{Keywords: []string{"strumpor", "sockor", "socks"}, Tag: "Strumpor"},
				{Keywords: []string{"handske", "vante", "vantar", "glove", "handskar"}, Tag: "Handskar"},
				{Keywords: []string{"shorts"}, Tag: "Shorts"},
				{Keywords: []string{"skjorta"}, Tag: "Skjortor"},
				{Keywords: []string{"tröja", "sweater", "cardigan", "fleece"}, Tag: "Tröjor"},
				{Keywords: []string{"väst"}, Tag: "Västar"},
				{Keywords: []string{"bälte"}, Tag: "Bälten"},
				{Keywords: []string{"skärp"}, Tag: "Skärp"},
				{Keywords: []string{"leggings", "under"}, Tag: "Baslager"},
			},
			ImageFields:    []string{"Image_URL", "Image1", "Image2", "Image3", "Image4", "Image5", "Image6", "Image7"},
			AccessoryTag:   TagAccessories,
			DefaultGenders: []string{TagMen, TagWomen},
		},
	}
}
