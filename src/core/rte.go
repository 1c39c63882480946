package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"mxshs/livescores/src/config"
	"mxshs/livescores/src/logger"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"
	"golang.org/x/time/rate"
)

var (
	_ LinkSource   = (*RteParser)(nil)
	_ UpdateSource = (*RteParser)(nil)
)

// RteParser drives one headless browser for a whole run. Call Close when
// the run ends.
type RteParser struct {
	sel      Selector
	keywords []string
	baseURL  string

	timeout        time.Duration
	articleTimeout time.Duration
	loadMoreWait   time.Duration
	maxLoadMore    int

	limiter *rate.Limiter
	log     *logger.Entry

	ctx           context.Context
	cancelBrowser context.CancelFunc
	cancelAlloc   context.CancelFunc
}

// GetRteParser starts the browser. A browser that cannot start is fatal for
// the run.
func GetRteParser(ctx context.Context, cfg *config.Config) (*RteParser, error) {
	log := logger.GetLogger().WithComponent("core")

	driverOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Browser.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("no-sandbox", true),
		// Keep the desktop layout so the update list is rendered
		chromedp.Flag("force-device-scale-factor", "1"),
		chromedp.Flag("window-size", "1920,1080"),
	)
	if cfg.Browser.UserAgent != "" {
		driverOpts = append(driverOpts, chromedp.UserAgent(cfg.Browser.UserAgent))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, driverOpts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(format string, v ...interface{}) {
		log.Debug(fmt.Sprintf(format, v...))
	}))

	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, fmt.Errorf("start browser: %w", err)
	}

	limit := rate.Inf
	if cfg.Browser.NavigateInterval > 0 {
		limit = rate.Every(cfg.Browser.NavigateInterval)
	}

	return &RteParser{
		sel:            RteSelector,
		keywords:       cfg.Site.Keywords,
		baseURL:        cfg.Site.BaseURL,
		timeout:        cfg.Browser.Timeout,
		articleTimeout: cfg.Browser.ArticleTimeout,
		loadMoreWait:   cfg.Browser.LoadMoreWait,
		maxLoadMore:    cfg.Browser.MaxLoadMore,
		limiter:        rate.NewLimiter(limit, 1),
		log:            log,
		ctx:            browserCtx,
		cancelBrowser:  cancelBrowser,
		cancelAlloc:    cancelAlloc,
	}, nil
}

func (rp *RteParser) Close() {
	rp.cancelBrowser()
	rp.cancelAlloc()
}

func (rp *RteParser) ArticleLinks(ctx context.Context, pageURL string) ([]Article, error) {
	if err := rp.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	tctx, cancel := context.WithTimeout(rp.ctx, rp.timeout)
	defer cancel()

	var domNode string

	err := chromedp.Run(
		tctx,
		chromedp.Navigate(pageURL),
		chromedp.WaitVisible(rp.sel.Title, chromedp.ByQuery),
		chromedp.OuterHTML(`body`, &domNode, chromedp.ByQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", pageURL, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(domNode))
	if err != nil {
		return nil, err
	}

	articles := ExtractArticles(doc.Selection, rp.sel, rp.keywords, rp.baseURL)

	rp.log.WithFields(logger.Fields{
		"url":      pageURL,
		"articles": len(articles),
	}).Info("found live articles")

	return articles, nil
}

func (rp *RteParser) UpdateBlocks(ctx context.Context, articleURL string) ([]string, error) {
	if err := rp.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	nctx, cancel := context.WithTimeout(rp.ctx, rp.timeout)
	defer cancel()

	if err := chromedp.Run(nctx, chromedp.Navigate(articleURL)); err != nil {
		return nil, fmt.Errorf("load %s: %w", articleURL, err)
	}

	wctx, cancelWait := context.WithTimeout(rp.ctx, rp.articleTimeout)
	err := chromedp.Run(wctx, chromedp.WaitVisible(rp.sel.UpdateBody, chromedp.ByQuery))
	cancelWait()
	if err != nil {
		return nil, fmt.Errorf("no updates on %s: %w", articleURL, err)
	}

	clicks := loadMore(ctx, rp, rp.maxLoadMore, rp.log)

	var domNode string

	octx, cancelRead := context.WithTimeout(rp.ctx, rp.timeout)
	defer cancelRead()
	if err := chromedp.Run(octx, chromedp.OuterHTML(`body`, &domNode, chromedp.ByQuery)); err != nil {
		return nil, fmt.Errorf("read %s: %w", articleURL, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(domNode))
	if err != nil {
		return nil, err
	}

	blocks := ExtractUpdateBlocks(doc.Selection, rp.sel)

	rp.log.WithFields(logger.Fields{
		"url":       articleURL,
		"show_more": clicks,
		"updates":   len(blocks),
	}).Info("read article")

	return blocks, nil
}

// showMore is the part of an article page the load-more loop drives.
type showMore interface {
	// clickShowMore clicks the button once and reports false when it is gone.
	clickShowMore(ctx context.Context) (bool, error)
}

func (rp *RteParser) clickShowMore(ctx context.Context) (bool, error) {
	qctx, cancel := context.WithTimeout(rp.ctx, rp.timeout)
	defer cancel()

	var nodes []*cdp.Node
	if err := chromedp.Run(qctx, chromedp.Nodes(rp.sel.ShowMore, &nodes, chromedp.BySearch, chromedp.AtLeast(0))); err != nil {
		return false, fmt.Errorf("find 'Show More': %w", err)
	}
	if len(nodes) == 0 {
		return false, nil
	}

	if err := chromedp.Run(qctx, chromedp.MouseClickNode(nodes[0]), chromedp.Sleep(rp.loadMoreWait)); err != nil {
		return false, fmt.Errorf("click 'Show More': %w", err)
	}
	return true, nil
}

// loadMore clicks "Show More" until it is gone or maxClicks is spent.
// A failed click ends the loop with whatever has loaded so far.
func loadMore(ctx context.Context, page showMore, maxClicks int, log *logger.Entry) int {
	for i := 0; i < maxClicks; i++ {
		if ctx.Err() != nil {
			return i
		}

		clicked, err := page.clickShowMore(ctx)
		if err != nil {
			log.WithError(err).Warn("stopped loading more updates")
			return i
		}
		if !clicked {
			return i
		}
	}

	if maxClicks > 0 {
		log.WithField("max_load_more", maxClicks).Warn("'Show More' still present after click budget")
	}
	return maxClicks
}
