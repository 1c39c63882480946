package core

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

var _ LinkSource = (*FeedSource)(nil)

// FeedSource finds live-blog links in an RSS or Atom feed, filtered the same
// way as listing pages.
type FeedSource struct {
	Client   *http.Client
	Keywords []string
}

func NewFeedSource(keywords []string) *FeedSource {
	return &FeedSource{
		Client:   &http.Client{Timeout: 15 * time.Second},
		Keywords: keywords,
	}
}

func (fs *FeedSource) ArticleLinks(ctx context.Context, feedURL string) ([]Article, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := fs.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed %s: %w", feedURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch feed %s: status %d", feedURL, resp.StatusCode)
	}

	feed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", feedURL, err)
	}

	var articles []Article
	seen := make(map[string]struct{})

	for _, it := range feed.Items {
		title := strings.TrimSpace(it.Title)
		link := strings.TrimSpace(it.Link)
		if title == "" || link == "" {
			continue
		}
		if !MatchesKeyword(title, fs.Keywords) {
			continue
		}
		if _, dup := seen[link]; dup {
			continue
		}
		seen[link] = struct{}{}

		articles = append(articles, Article{Title: title, URL: link})
	}

	return articles, nil
}
