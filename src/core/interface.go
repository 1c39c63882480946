package core

import (
	"context"
	"strings"
)

// LinkSource lists live-blog articles found on a listing page or feed.
type LinkSource interface {
	ArticleLinks(ctx context.Context, url string) ([]Article, error)
}

// UpdateSource returns the raw text of every update block in an article,
// in page order, after all of them have been loaded.
type UpdateSource interface {
	UpdateBlocks(ctx context.Context, articleURL string) ([]string, error)
}

type Article struct {
	Title string
	URL   string
}

type Selector struct {
	Title      string
	UpdateBody string
	ShowMore   string
}

var RteSelector = Selector{
	Title:      `span[title]`,
	UpdateBody: `.tracker-post-body`,
	ShowMore:   `//*[normalize-space(text())="Show More"]`,
}

// MatchesKeyword reports whether title contains any keyword, ignoring case.
func MatchesKeyword(title string, keywords []string) bool {
	title = strings.ToLower(title)
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		if strings.Contains(title, k) {
			return true
		}
	}
	return false
}
