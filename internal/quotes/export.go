package quotes

import (
	"context"
	"fmt"
	"strings"

	"github.com/angelmondragon/quotedesk-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/quotedesk-backend/pkg/errors"
	"github.com/angelmondragon/quotedesk-backend/pkg/pdf"
	"github.com/google/uuid"
)

const pdfContentType = "application/pdf"

type renderer interface {
	Render(doc pdf.Document) ([]byte, error)
}

// Uploader stores rendered documents and returns their public location.
type Uploader interface {
	Upload(ctx context.Context, key string, body []byte, contentType string) (string, error)
}

// PDFRecorder receives export measurements.
type PDFRecorder interface {
	PDFRendered(uploaded bool)
}

// RenderedPDF is an exported quote document.
type RenderedPDF struct {
	Filename string
	Content  []byte
	URL      *string
}

// Exporter renders quotes of the calling user to PDF.
type Exporter interface {
	Preview(ctx context.Context, owner *models.User, id uuid.UUID) (*RenderedPDF, error)
	Generate(ctx context.Context, owner *models.User, id uuid.UUID) (*RenderedPDF, error)
}

type exporter struct {
	repo     Repository
	renderer renderer
	uploader Uploader
	metrics  PDFRecorder
}

// NewExporter wires PDF export. uploader and metrics may be nil; without an
// uploader documents are only streamed back and pdf_url is left as is.
func NewExporter(repo Repository, r renderer, uploader Uploader, metrics PDFRecorder) (Exporter, error) {
	if repo == nil {
		return nil, fmt.Errorf("quote repository required")
	}
	if r == nil {
		return nil, fmt.Errorf("pdf renderer required")
	}
	return &exporter{repo: repo, renderer: r, uploader: uploader, metrics: metrics}, nil
}

func (e *exporter) Preview(ctx context.Context, owner *models.User, id uuid.UUID) (*RenderedPDF, error) {
	_, doc, err := e.render(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	e.record(false)
	return doc, nil
}

// Generate renders the quote and, when storage is configured, uploads it and
// records the resulting URL on the quote.
func (e *exporter) Generate(ctx context.Context, owner *models.User, id uuid.UUID) (*RenderedPDF, error) {
	quote, doc, err := e.render(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	if e.uploader == nil {
		e.record(false)
		return doc, nil
	}

	key := fmt.Sprintf("%s/%s.pdf", quote.UserID, quote.ID)
	url, err := e.uploader.Upload(ctx, key, doc.Content, pdfContentType)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upload quote pdf")
	}
	if err := e.repo.SetPDFURL(ctx, quote.ID, url); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store pdf url")
	}
	doc.URL = &url
	e.record(true)
	return doc, nil
}

func (e *exporter) render(ctx context.Context, owner *models.User, id uuid.UUID) (*models.Quote, *RenderedPDF, error) {
	if owner == nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user required")
	}
	quote, err := e.repo.FindOwned(ctx, id, owner.ID)
	if err != nil {
		return nil, nil, lookupError(err)
	}

	content, err := e.renderer.Render(DocumentFor(quote, owner))
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render quote pdf")
	}
	return quote, &RenderedPDF{
		Filename: fmt.Sprintf("quote-%s.pdf", sanitizeFilename(quote.QuoteNumber)),
		Content:  content,
		URL:      quote.PDFURL,
	}, nil
}

func (e *exporter) record(uploaded bool) {
	if e.metrics != nil {
		e.metrics.PDFRendered(uploaded)
	}
}

// DocumentFor snapshots a loaded quote for rendering.
func DocumentFor(quote *models.Quote, owner *models.User) pdf.Document {
	doc := pdf.Document{
		QuoteNumber:  quote.QuoteNumber,
		Date:         quote.CreatedAt,
		Status:       quote.Status.String(),
		Currency:     quote.Currency.String(),
		Subtotal:     quote.Subtotal,
		TaxRate:      quote.TaxRate,
		TaxAmount:    quote.TaxAmount,
		Total:        quote.Total,
		Notes:        deref(quote.Notes),
		PaymentTerms: deref(quote.PaymentTerms),
	}
	if discount := DiscountOf(quote); discount != nil {
		doc.Discount = discount.Value
	}
	if owner != nil {
		doc.Issuer = owner.Name
		if owner.BusinessName != nil && strings.TrimSpace(*owner.BusinessName) != "" {
			doc.Issuer = *owner.BusinessName
		}
	}
	if quote.Client != nil {
		doc.ClientName = quote.Client.Name
		doc.ClientEmail = quote.Client.Email
	}
	doc.Lines = make([]pdf.Line, 0, len(quote.Items))
	for _, item := range quote.Items {
		doc.Lines = append(doc.Lines, pdf.Line{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Total:       item.Total,
		})
	}
	return doc
}

func sanitizeFilename(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, s)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
