package invoice

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// A4 in inches
const (
	paperWidth  = 8.27
	paperHeight = 11.69
)

// ChromeRenderer prints HTML to PDF with a headless Chrome
type ChromeRenderer struct {
	timeout time.Duration
}

// NewChromeRenderer creates a ChromeRenderer that gives up on a page after timeout
func NewChromeRenderer(timeout time.Duration) *ChromeRenderer {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ChromeRenderer{timeout: timeout}
}

// RenderPDF loads html into a blank page and prints it
func (r *ChromeRenderer) RenderPDF(ctx context.Context, html string) ([]byte, error) {
	chromeCtx, cancel := chromedp.NewContext(ctx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancel()
	chromeCtx, cancelTimeout := context.WithTimeout(chromeCtx, r.timeout)
	defer cancelTimeout()

	var pdf []byte
	err := chromedp.Run(chromeCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(paperWidth).
				WithPaperHeight(paperHeight).
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = buf
			return nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("invoice: chrome print: %w", err)
	}
	return pdf, nil
}
