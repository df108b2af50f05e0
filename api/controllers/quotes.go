package controllers

import (
	"net/http"

	"github.com/angelmondragon/quotedesk-backend/api/responses"
	"github.com/angelmondragon/quotedesk-backend/api/validators"
	"github.com/angelmondragon/quotedesk-backend/internal/quotes"
	"github.com/angelmondragon/quotedesk-backend/pkg/logger"
)

func QuotesCreate(svc quotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := currentUser(w, r, logg)
		if !ok {
			return
		}
		var body quotes.CreateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		quote, err := svc.Create(r.Context(), user.ID, body.Input())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, quotes.FromModel(quote))
	}
}

// QuotesList returns the caller's quotes, newest first.
func QuotesList(svc quotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := currentUser(w, r, logg)
		if !ok {
			return
		}
		list, err := svc.List(r.Context(), user.ID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, quotes.FromModels(list))
	}
}

func QuotesGet(svc quotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := currentUser(w, r, logg)
		if !ok {
			return
		}
		id, err := validators.ParseUUIDParam(r, "quoteId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		quote, err := svc.Get(r.Context(), user.ID, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, quotes.FromModel(quote))
	}
}

// QuotesUpdate applies a partial update and item reconciliation.
func QuotesUpdate(svc quotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := currentUser(w, r, logg)
		if !ok {
			return
		}
		id, err := validators.ParseUUIDParam(r, "quoteId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithQuoteID(ctx, id.String())
		}
		var body quotes.UpdateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		quote, err := svc.Update(ctx, user.ID, id, body.Input())
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, quotes.FromModel(quote))
	}
}

func QuotesDelete(svc quotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := currentUser(w, r, logg)
		if !ok {
			return
		}
		id, err := validators.ParseUUIDParam(r, "quoteId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), user.ID, id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

// QuotesGeneratePDF renders the quote as a download and, when storage is
// configured, uploads it and records pdf_url.
func QuotesGeneratePDF(exp quotes.Exporter, logg *logger.Logger) http.HandlerFunc {
	return quotePDF(exp, logg, true)
}

// QuotesPreviewPDF renders the quote inline without uploading it.
func QuotesPreviewPDF(exp quotes.Exporter, logg *logger.Logger) http.HandlerFunc {
	return quotePDF(exp, logg, false)
}

func quotePDF(exp quotes.Exporter, logg *logger.Logger, generate bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := currentUser(w, r, logg)
		if !ok {
			return
		}
		id, err := validators.ParseUUIDParam(r, "quoteId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithQuoteID(ctx, id.String())
		}

		render := exp.Preview
		if generate {
			render = exp.Generate
		}
		doc, err := render(ctx, user, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if doc.URL != nil {
			w.Header().Set("X-Quote-PDF-URL", *doc.URL)
		}
		responses.WritePDF(w, doc.Filename, doc.Content, generate)
	}
}
