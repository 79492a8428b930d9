package controllers

import (
	"net/http"
	"strings"

	"github.com/mahafpc/agrichain-backend/api/middleware"
	"github.com/mahafpc/agrichain-backend/api/responses"
	"github.com/mahafpc/agrichain-backend/api/validators"
	"github.com/mahafpc/agrichain-backend/internal/activities"
	"github.com/mahafpc/agrichain-backend/pkg/enums"
	pkgerrors "github.com/mahafpc/agrichain-backend/pkg/errors"
	"github.com/mahafpc/agrichain-backend/pkg/logger"
)

func ActivityList(svc activities.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sc, err := middleware.ScopeFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var filter activities.ListFilter
		if filter.CooperativeID, err = queryUUID(r, "cooperative_id"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("type")); raw != "" {
			kind, err := enums.ParseActivityType(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeValidation, "invalid activity type filter"))
				return
			}
			value := kind.String()
			filter.Type = &value
		}
		if filter.Limit, err = validators.ParseQueryInt(r, "limit", 0, 0, 500); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rows, err := svc.List(r.Context(), sc, filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}
