package enums

// ProductVisibility controls whether a product is listed on the storefront.
type ProductVisibility string

const (
	ProductVisibilityDraft     ProductVisibility = "draft"
	ProductVisibilityPublished ProductVisibility = "published"
	ProductVisibilityHidden    ProductVisibility = "hidden"
)

var validProductVisibilities = []ProductVisibility{
	ProductVisibilityDraft,
	ProductVisibilityPublished,
	ProductVisibilityHidden,
}

func (v ProductVisibility) String() string { return string(v) }

// IsValid reports whether the value is a known ProductVisibility.
func (v ProductVisibility) IsValid() bool { return contains(validProductVisibilities, v) }

// ParseProductVisibility converts raw input into a ProductVisibility.
func ParseProductVisibility(value string) (ProductVisibility, error) {
	return parse(validProductVisibilities, value, "product visibility")
}

// ProductStatus is the commercial lifecycle state of a product.
type ProductStatus string

const (
	ProductStatusActive       ProductStatus = "active"
	ProductStatusInactive     ProductStatus = "inactive"
	ProductStatusDiscontinued ProductStatus = "discontinued"
)

var validProductStatuses = []ProductStatus{
	ProductStatusActive,
	ProductStatusInactive,
	ProductStatusDiscontinued,
}

func (s ProductStatus) String() string { return string(s) }

func (s ProductStatus) IsValid() bool { return contains(validProductStatuses, s) }

func ParseProductStatus(value string) (ProductStatus, error) {
	return parse(validProductStatuses, value, "product status")
}

// StockStatus is derived from inventory; it is never stored.
type StockStatus string

const (
	StockStatusInStock    StockStatus = "in_stock"
	StockStatusLowStock   StockStatus = "low_stock"
	StockStatusOutOfStock StockStatus = "out_of_stock"
)

var validStockStatuses = []StockStatus{
	StockStatusInStock,
	StockStatusLowStock,
	StockStatusOutOfStock,
}

func (s StockStatus) String() string { return string(s) }

func (s StockStatus) IsValid() bool { return contains(validStockStatuses, s) }

func ParseStockStatus(value string) (StockStatus, error) {
	return parse(validStockStatuses, value, "stock status")
}

// ProductSort names the supported list orderings.
type ProductSort string

const (
	ProductSortNewest    ProductSort = "newest"
	ProductSortTrending  ProductSort = "trending"
	ProductSortPriceAsc  ProductSort = "price_asc"
	ProductSortPriceDesc ProductSort = "price_desc"
)

var validProductSorts = []ProductSort{
	ProductSortNewest,
	ProductSortTrending,
	ProductSortPriceAsc,
	ProductSortPriceDesc,
}

func (s ProductSort) String() string { return string(s) }

func (s ProductSort) IsValid() bool { return contains(validProductSorts, s) }

func ParseProductSort(value string) (ProductSort, error) {
	return parse(validProductSorts, value, "product sort")
}
