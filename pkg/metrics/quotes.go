package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// QuoteMetrics counts quote engine activity. A nil *QuoteMetrics is a valid
// no-op recorder.
type QuoteMetrics struct {
	created    *prometheus.CounterVec
	reconciled *prometheus.CounterVec
	pdfs       *prometheus.CounterVec
}

// NewQuoteMetrics registers the quote metrics on the provided registerer.
func NewQuoteMetrics(reg prometheus.Registerer) *QuoteMetrics {
	if reg == nil {
		return &QuoteMetrics{}
	}
	created := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "quotes_created_total",
		Help: "Quotes created, by currency.",
	}, []string{"currency"})
	reconciled := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "quote_items_reconciled_total",
		Help: "Line items processed by quote updates, by outcome.",
	}, []string{"outcome"})
	pdfs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "quote_pdfs_rendered_total",
		Help: "Quote PDFs rendered, by whether they were uploaded.",
	}, []string{"uploaded"})
	reg.MustRegister(created, reconciled, pdfs)
	return &QuoteMetrics{
		created:    created,
		reconciled: reconciled,
		pdfs:       pdfs,
	}
}

func (q *QuoteMetrics) QuoteCreated(currency string) {
	if q == nil || q.created == nil {
		return
	}
	q.created.WithLabelValues(normalizeLabel(currency)).Inc()
}

func (q *QuoteMetrics) ItemsReconciled(kept, added, deleted int) {
	if q == nil || q.reconciled == nil {
		return
	}
	q.reconciled.WithLabelValues("kept").Add(float64(kept))
	q.reconciled.WithLabelValues("added").Add(float64(added))
	q.reconciled.WithLabelValues("deleted").Add(float64(deleted))
}

func (q *QuoteMetrics) PDFRendered(uploaded bool) {
	if q == nil || q.pdfs == nil {
		return
	}
	q.pdfs.WithLabelValues(strconv.FormatBool(uploaded)).Inc()
}
