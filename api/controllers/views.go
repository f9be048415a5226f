package controllers

import (
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/catalog-admin-backend/api/responses"
	"github.com/angelmondragon/catalog-admin-backend/api/validators"
	"github.com/angelmondragon/catalog-admin-backend/internal/views"
	pkgerrors "github.com/angelmondragon/catalog-admin-backend/pkg/errors"
	"github.com/angelmondragon/catalog-admin-backend/pkg/logger"
)

const visitorHeader = "X-Visitor-Id"

type recordViewRequest struct {
	VisitorID string `json:"visitorId,omitempty" validate:"omitempty,max=200"`
	Referrer  string `json:"referrer,omitempty" validate:"omitempty,max=500"`
}

// ProductViewRecord counts a storefront product view. The visitor comes from
// the body, then the X-Visitor-Id header, then the client address and user
// agent.
func ProductViewRecord(svc views.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "view service unavailable"))
			return
		}

		var payload recordViewRequest
		if r.ContentLength > 0 {
			if err := validators.DecodeJSONBody(r, &payload); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		input := views.ViewInput{
			Visitor:  visitorFor(r, payload.VisitorID),
			Referrer: strings.TrimSpace(payload.Referrer),
		}
		if input.Referrer == "" {
			input.Referrer = r.Referer()
		}

		result, err := svc.Record(r.Context(), chi.URLParam(r, "slug"), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusAccepted, result)
	}
}

func visitorFor(r *http.Request, fromBody string) string {
	if v := strings.TrimSpace(fromBody); v != "" {
		return v
	}
	if v := strings.TrimSpace(r.Header.Get(visitorHeader)); v != "" {
		return v
	}
	host := r.RemoteAddr
	if forwarded := strings.TrimSpace(strings.Split(r.Header.Get("X-Forwarded-For"), ",")[0]); forwarded != "" {
		host = forwarded
	} else if h, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		host = h
	}
	return host + "|" + r.UserAgent()
}
