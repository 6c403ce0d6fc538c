// internal/pdf/pdf.go
package pdf

import (
	"context"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// Generator turns rendered HTML into PDF bytes. Generation can fail
// (timeout, malformed HTML); the engine treats that as a per-contact
// failure, not a fatal one.
type Generator interface {
	Generate(ctx context.Context, html string) ([]byte, error)
}

// ChromeGenerator prints through a headless Chrome instance.
type ChromeGenerator struct {
	ExecPath string
	Timeout  time.Duration
}

func NewChromeGenerator(execPath string, timeout time.Duration) *ChromeGenerator {
	return &ChromeGenerator{ExecPath: execPath, Timeout: timeout}
}

func (g *ChromeGenerator) Generate(ctx context.Context, html string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, g.Timeout)
	defer cancel()

	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	if g.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(g.ExecPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	taskCtx, cancelTask := chromedp.NewContext(allocCtx)
	defer cancelTask()

	var buf []byte
	err := chromedp.Run(taskCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, html).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			buf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(8.5).
				WithPaperHeight(11).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, err
	}
	return buf, nil
}

var _ Generator = (*ChromeGenerator)(nil)
