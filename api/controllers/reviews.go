package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jvales/shopstate/api/responses"
	"github.com/jvales/shopstate/api/validators"
	"github.com/jvales/shopstate/internal/auth"
	"github.com/jvales/shopstate/internal/reviews"
	pkgerrors "github.com/jvales/shopstate/pkg/errors"
	"github.com/jvales/shopstate/pkg/logger"
)

type addReviewPayload struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"required,min=1,max=2000"`
}

func ReviewsList(svc reviews.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "review service unavailable"))
			return
		}

		list, err := svc.List(ctx, chi.URLParam(r, "productId"))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if list == nil {
			list = []reviews.Review{}
		}
		responses.WriteSuccess(w, list)
	}
}

// ReviewCreate attributes the review to the signed-in account's name.
func ReviewCreate(svc reviews.Service, authSvc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "review service unavailable"))
			return
		}

		var payload addReviewPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		author := ""
		if authSvc != nil {
			if session := authSvc.Session(ctx); session.User != nil {
				author = session.User.FullName
			}
		}

		review, err := svc.Add(ctx, chi.URLParam(r, "productId"), reviews.AddInput{
			Author:  author,
			Rating:  payload.Rating,
			Comment: payload.Comment,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, review)
	}
}
