package product

import (
	"github.com/angelmondragon/catalog-admin-backend/pkg/enums"
	"github.com/angelmondragon/catalog-admin-backend/pkg/pagination"
)

// ProductListFilters describe the supported filter knobs for list endpoints.
// Category accepts an id or a slug.
type ProductListFilters struct {
	Category   string                   `json:"category,omitempty"`
	Tag        string                   `json:"tag,omitempty"`
	Visibility *enums.ProductVisibility `json:"visibility,omitempty"`
	Status     *enums.ProductStatus     `json:"status,omitempty"`
	Featured   *bool                    `json:"featured,omitempty"`
	Query      string                   `json:"q,omitempty"`
}

// ListProductsInput captures the inputs needed to paginate and filter products.
type ListProductsInput struct {
	Filters    ProductListFilters
	Sort       enums.ProductSort
	Pagination pagination.Params
}
