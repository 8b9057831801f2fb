package transform

import (
	"github.com/agentstation/feedsync/pkg/errors"
	"github.com/agentstation/feedsync/pkg/feed"
)

// Profile describes how one vendor's feed fields map onto drafts.
type Profile struct {
	// Name identifies the profile on the command line and in state names.
	Name string

	// Vendor is the catalog vendor written on every product.
	Vendor string

	// GroupField groups rows into products. When empty, rows are grouped
	// by the handle of their title.
	GroupField string

	TitleField string

	// DescriptionFields are tried in order; the first non-empty one wins.
	DescriptionFields []string

	// SKUFields are joined with "-" to build the variant SKU.
	SKUFields []string

	ColorField   string
	SizeField    string
	BarcodeField string
	StockField   string
	StockWords   map[string]int

	PriceField string

	// DiscountField holds a sale price; when non-empty it becomes the price
	// and the regular price becomes the compare-at price.
	DiscountField string

	// OutletField marks outlet rows with the value "yes". Outlet rows are
	// priced by Outlet from the regular and WholesaleField prices.
	OutletField    string
	WholesaleField string
	Outlet         OutletPolicy

	// CategoryField holds category paths such as "Herr > Jackor".
	CategoryField string
	Categories    CategoryTable

	// GenderField is an explicit gender column whose lowercased values are
	// looked up in GenderValues; unknown values are title-cased.
	GenderField  string
	GenderValues map[string]string

	// GenderKeywords detect genders inside category text.
	GenderKeywords []KeywordRule

	// TitleKeywords derive tags from words in the product title.
	TitleKeywords []KeywordRule

	// AttributeFields are copied verbatim as tags when non-empty.
	AttributeFields []string

	// ImageFields are read in order from every row.
	ImageFields []string

	// AccessoryTag suppresses the default genders.
	AccessoryTag string

	// DefaultGenders apply when no gender was detected.
	DefaultGenders []string
}

// KeyFunc returns the grouping function for the profile.
func (p *Profile) KeyFunc() feed.KeyFunc {
	if p.GroupField != "" {
		return feed.KeyByField(p.GroupField)
	}
	return feed.KeyByHandle(p.TitleField)
}

// Validate checks that the profile names the fields every draft needs.
func (p *Profile) Validate() error {
	switch {
	case p.Name == "":
		return errors.NewValidationError("name", p.Name, "profile name is required")
	case p.Vendor == "":
		return errors.NewValidationError("vendor", p.Vendor, "vendor is required")
	case p.TitleField == "":
		return errors.NewValidationError("title_field", p.TitleField, "title field is required")
	case len(p.SKUFields) == 0:
		return errors.NewValidationError("sku_fields", p.SKUFields, "at least one SKU field is required")
	case p.PriceField == "":
		return errors.NewValidationError("price_field", p.PriceField, "price field is required")
	case p.OutletField != "" && p.Outlet == nil:
		return errors.NewValidationError("outlet", nil, "an outlet field needs an outlet policy")
	}
	return nil
}
