package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jvales/shopstate/api/responses"
	"github.com/jvales/shopstate/internal/activity"
	"github.com/jvales/shopstate/internal/catalog"
	pkgerrors "github.com/jvales/shopstate/pkg/errors"
	"github.com/jvales/shopstate/pkg/logger"
)

// CatalogList returns the combined, normalized product catalog.
func CatalogList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		products, err := svc.ListProducts(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, products)
	}
}

// CatalogDetail resolves one product and records the view in the browsing
// history.
func CatalogDetail(svc catalog.Service, activitySvc activity.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		productID := chi.URLParam(r, "productId")
		if logg != nil {
			ctx = logg.WithProductID(ctx, productID)
		}

		product, err := svc.GetProduct(ctx, productID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if activitySvc != nil {
			if err := activitySvc.RecordView(ctx, product); err != nil && logg != nil {
				logg.Warn(ctx, "failed to record product view")
			}
		}

		responses.WriteSuccess(w, product)
	}
}
