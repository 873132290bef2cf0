package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jvales/shopstate/api/responses"
	"github.com/jvales/shopstate/api/validators"
	"github.com/jvales/shopstate/internal/cart"
	"github.com/jvales/shopstate/internal/catalog"
	pkgerrors "github.com/jvales/shopstate/pkg/errors"
	"github.com/jvales/shopstate/pkg/logger"
)

type addCartItemPayload struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"min=0,max=1000"`
}

type updateCartItemPayload struct {
	Quantity int `json:"quantity" validate:"required"`
}

type cartView struct {
	Lines      []cart.Line `json:"lines"`
	TotalPrice string      `json:"totalPrice"`
}

func viewOf(lines []cart.Line, total string) cartView {
	if lines == nil {
		lines = []cart.Line{}
	}
	return cartView{Lines: lines, TotalPrice: total}
}

func CartFetch(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}
		responses.WriteSuccess(w, viewOf(svc.Lines(ctx), svc.TotalPrice(ctx).StringFixed(2)))
	}
}

// CartAdd resolves the product through the catalog before adding it, so
// the cart always snapshots normalized product data.
func CartAdd(svc cart.Service, catalogSvc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil || catalogSvc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		var payload addCartItemPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		product, err := catalogSvc.GetProduct(ctx, payload.ProductID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.Add(ctx, product, payload.Quantity); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, viewOf(svc.Lines(ctx), svc.TotalPrice(ctx).StringFixed(2)))
	}
}

func CartUpdate(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		var payload updateCartItemPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.UpdateQuantity(ctx, chi.URLParam(r, "productId"), payload.Quantity); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, viewOf(svc.Lines(ctx), svc.TotalPrice(ctx).StringFixed(2)))
	}
}

func CartRemove(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		if err := svc.Remove(ctx, chi.URLParam(r, "productId")); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, viewOf(svc.Lines(ctx), svc.TotalPrice(ctx).StringFixed(2)))
	}
}

func CartClear(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		if err := svc.Clear(ctx); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, viewOf(nil, "0.00"))
	}
}
