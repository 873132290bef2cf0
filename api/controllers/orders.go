package controllers

import (
	"net/http"

	"github.com/jvales/shopstate/api/responses"
	"github.com/jvales/shopstate/internal/cart"
	"github.com/jvales/shopstate/internal/orders"
	pkgerrors "github.com/jvales/shopstate/pkg/errors"
	"github.com/jvales/shopstate/pkg/logger"
)

func OrdersList(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		history := svc.Orders(ctx)
		if history == nil {
			history = []orders.Order{}
		}
		responses.WriteSuccess(w, history)
	}
}

func OrdersClear(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		if err := svc.Clear(ctx); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, []orders.Order{})
	}
}

// Checkout snapshots the cart into a new order and then empties the
// cart. The order survives even if the final cart clear fails.
func Checkout(ordersSvc orders.Service, cartSvc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if ordersSvc == nil || cartSvc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout unavailable"))
			return
		}

		placed, err := ordersSvc.Place(ctx, cartSvc.Lines(ctx), cartSvc.TotalPrice(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := cartSvc.Clear(ctx); err != nil && logg != nil {
			logg.Error(ctx, "failed to clear cart after checkout", err)
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, placed)
	}
}
