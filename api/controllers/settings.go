package controllers

import (
	"net/http"

	"github.com/angelmondragon/catalog-admin-backend/api/responses"
	"github.com/angelmondragon/catalog-admin-backend/internal/settings"
)

// ThemeSettings serves the storefront palette, fonts and layout widths.
func ThemeSettings() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=300")
		responses.WriteSuccess(w, settings.Theme())
	}
}
