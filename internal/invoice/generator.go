package invoice

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"path"
	"time"

	"bidding-engine/internal/biddingerrors"

	"github.com/shopspring/decimal"
)

//go:generate mockgen -destination=mock_invoice.go -package=invoice bidding-engine/internal/invoice DocumentGenerator,Renderer,ObjectStore

//go:embed templates/invoice.html
var templateFS embed.FS

// Data is everything printed on a billing document
type Data struct {
	InvoiceID       string
	AuctionID       string
	ItemID          string
	Title           string
	ParticipantID   string
	ParticipantName string
	BidID           string
	Amount          decimal.Decimal
	IssuedAt        time.Time
}

// DocumentGenerator produces and stores a billing document, returning its storage key
type DocumentGenerator interface {
	Generate(ctx context.Context, data Data) (string, error)
}

// Renderer turns an HTML page into a PDF
type Renderer interface {
	RenderPDF(ctx context.Context, html string) ([]byte, error)
}

// ObjectStore keeps generated documents
type ObjectStore interface {
	Put(ctx context.Context, key string, body []byte, contentType string) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// PDFGenerator renders the invoice template to PDF and uploads it
type PDFGenerator struct {
	renderer Renderer
	store    ObjectStore
	prefix   string
	tmpl     *template.Template
}

// NewPDFGenerator creates a PDFGenerator storing documents under prefix
func NewPDFGenerator(renderer Renderer, store ObjectStore, prefix string) (*PDFGenerator, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/invoice.html")
	if err != nil {
		return nil, fmt.Errorf("invoice: parse template: %w", err)
	}
	return &PDFGenerator{renderer: renderer, store: store, prefix: prefix, tmpl: tmpl}, nil
}

// Key is the storage key of an invoice's document. It is stable so a retried upload overwrites.
func (g *PDFGenerator) Key(data Data) string {
	return path.Join(g.prefix, fmt.Sprintf("%s-%s.pdf", data.AuctionID, data.InvoiceID))
}

// Generate renders, uploads and returns the document key
func (g *PDFGenerator) Generate(ctx context.Context, data Data) (string, error) {
	var html bytes.Buffer
	if err := g.tmpl.ExecuteTemplate(&html, "invoice.html", data); err != nil {
		return "", fmt.Errorf("invoice: %w: render template: %v", biddingerrors.ErrDocumentGeneration, err)
	}

	pdf, err := g.renderer.RenderPDF(ctx, html.String())
	if err != nil {
		return "", fmt.Errorf("invoice: %w: render pdf: %v", biddingerrors.ErrDocumentGeneration, err)
	}

	key := g.Key(data)
	if err := g.store.Put(ctx, key, pdf, "application/pdf"); err != nil {
		return "", fmt.Errorf("invoice: %w: upload %s: %v", biddingerrors.ErrDocumentGeneration, key, err)
	}
	return key, nil
}
