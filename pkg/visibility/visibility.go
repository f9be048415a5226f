package visibility

import (
	"github.com/angelmondragon/catalog-admin-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/catalog-admin-backend/pkg/errors"
)

// EnsureProductVisible enforces the storefront rule: only published products
// are served. Hidden and draft products look exactly like missing ones.
func EnsureProductVisible(v enums.ProductVisibility) error {
	if v != enums.ProductVisibilityPublished {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return nil
}

// EnsurePostVisible applies the same rule to blog posts.
func EnsurePostVisible(s enums.PostStatus) error {
	if s != enums.PostStatusPublished {
		return pkgerrors.New(pkgerrors.CodeNotFound, "post not found")
	}
	return nil
}

// StorefrontProductFilter pins a storefront listing to published products
// regardless of what the caller asked for.
func StorefrontProductFilter() *enums.ProductVisibility {
	v := enums.ProductVisibilityPublished
	return &v
}

// StorefrontPostStatus is the only post status a storefront listing returns.
func StorefrontPostStatus() enums.PostStatus {
	return enums.PostStatusPublished
}
