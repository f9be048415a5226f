package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/catalog-admin-backend/api/responses"
	"github.com/angelmondragon/catalog-admin-backend/api/validators"
	product "github.com/angelmondragon/catalog-admin-backend/internal/products"
	"github.com/angelmondragon/catalog-admin-backend/pkg/catalog"
	"github.com/angelmondragon/catalog-admin-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/catalog-admin-backend/pkg/errors"
	"github.com/angelmondragon/catalog-admin-backend/pkg/logger"
	"github.com/angelmondragon/catalog-admin-backend/pkg/pagination"
	"github.com/angelmondragon/catalog-admin-backend/pkg/visibility"
)

// AdminProductCreate sanitizes, validates and stores a product.
func AdminProductCreate(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		raw, err := validators.DecodeJSONObject(w, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Create(r.Context(), raw)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

// AdminProductValidate is a dry run of the write path. It always answers 200
// with the canonical product and the field error map.
func AdminProductValidate(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		raw, err := validators.DecodeJSONObject(w, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		mode := catalog.ParseMode(r.URL.Query().Get("mode"))
		var excludeID *uuid.UUID
		if rawID := strings.TrimSpace(r.URL.Query().Get("productId")); rawID != "" {
			id, err := uuid.Parse(rawID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid productId"))
				return
			}
			excludeID = &id
		}

		result, err := svc.Validate(r.Context(), raw, mode, excludeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

func AdminProductList(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		input, err := parseProductListInput(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

func AdminProductGet(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		id, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, dto)
	}
}

// AdminProductUpdate applies a partial update. Only fields present in the
// body are validated and written.
func AdminProductUpdate(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		id, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		raw, err := validators.DecodeJSONObject(w, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Update(r.Context(), id, raw)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, dto)
	}
}

func AdminProductDelete(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		id, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteNoContent(w)
	}
}

// StorefrontProductList lists published products only, whatever the query
// asks for.
func StorefrontProductList(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		input, err := parseProductListInput(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input.Filters.Visibility = visibility.StorefrontProductFilter()
		input.Filters.Status = nil

		result, err := svc.List(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

func StorefrontProductGet(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		dto, err := svc.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, dto)
	}
}

// StorefrontProductQuote prices ?qty= units against the product's discount
// ladder.
func StorefrontProductQuote(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		qty, err := validators.ParseQueryFloat(r, "qty")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := svc.Quote(r.Context(), chi.URLParam(r, "slug"), qty)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, quote)
	}
}

func parseProductListInput(r *http.Request) (product.ListProductsInput, error) {
	q := r.URL.Query()

	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return product.ListProductsInput{}, err
	}

	featured, err := validators.ParseQueryBool(r, "featured")
	if err != nil {
		return product.ListProductsInput{}, err
	}

	input := product.ListProductsInput{
		Filters: product.ProductListFilters{
			Category: strings.TrimSpace(q.Get("category")),
			Tag:      strings.ToLower(strings.TrimSpace(q.Get("tag"))),
			Featured: featured,
			Query:    validators.CleanText(q.Get("q"), 100),
		},
		Sort: enums.ProductSortNewest,
		Pagination: pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(q.Get("cursor")),
		},
	}

	if raw := strings.TrimSpace(q.Get("sort")); raw != "" {
		sortBy, err := enums.ParseProductSort(raw)
		if err != nil {
			return product.ListProductsInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid sort")
		}
		input.Sort = sortBy
	}
	if raw := strings.TrimSpace(q.Get("visibility")); raw != "" {
		vis, err := enums.ParseProductVisibility(raw)
		if err != nil {
			return product.ListProductsInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid visibility")
		}
		input.Filters.Visibility = &vis
	}
	if raw := strings.TrimSpace(q.Get("status")); raw != "" {
		status, err := enums.ParseProductStatus(raw)
		if err != nil {
			return product.ListProductsInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
		}
		input.Filters.Status = &status
	}
	return input, nil
}
