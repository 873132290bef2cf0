package controllers

import (
	"net/http"

	"github.com/jvales/shopstate/api/responses"
	"github.com/jvales/shopstate/api/validators"
	"github.com/jvales/shopstate/internal/activity"
	"github.com/jvales/shopstate/internal/catalog"
	pkgerrors "github.com/jvales/shopstate/pkg/errors"
	"github.com/jvales/shopstate/pkg/logger"
)

type toggleComparePayload struct {
	ProductID string `json:"productId" validate:"required"`
}

type redirectPayload struct {
	Path string `json:"path" validate:"required,startswith=/,max=500"`
}

func RecentlyViewed(svc activity.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "activity service unavailable"))
			return
		}

		viewed := svc.RecentlyViewed(ctx)
		if viewed == nil {
			viewed = []catalog.Product{}
		}
		responses.WriteSuccess(w, viewed)
	}
}

func CompareFetch(svc activity.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "activity service unavailable"))
			return
		}

		selection := svc.CompareSelection(ctx)
		if selection == nil {
			selection = []catalog.Product{}
		}
		responses.WriteSuccess(w, selection)
	}
}

func CompareToggle(svc activity.Service, catalogSvc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil || catalogSvc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "activity service unavailable"))
			return
		}

		var payload toggleComparePayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		product, err := catalogSvc.GetProduct(ctx, payload.ProductID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		selection, err := svc.ToggleCompare(ctx, product)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if selection == nil {
			selection = []catalog.Product{}
		}
		responses.WriteSuccess(w, selection)
	}
}

func RedirectSet(svc activity.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "activity service unavailable"))
			return
		}

		var payload redirectPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.SetRedirectPath(ctx, payload.Path); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"path": payload.Path})
	}
}
