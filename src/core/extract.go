package core

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// ExtractArticles finds titled elements whose title matches a keyword and
// returns the link of the anchor around each, resolved against baseURL.
func ExtractArticles(s *goquery.Selection, sel Selector, keywords []string, baseURL string) []Article {
	base, err := url.Parse(baseURL)
	if err != nil {
		base = nil
	}

	var articles []Article
	seen := make(map[string]struct{})

	s.Find(sel.Title).Each(func(i int, s *goquery.Selection) {
		title, ok := s.Attr("title")
		title = strings.TrimSpace(title)
		if !ok || title == "" {
			return
		}
		if !MatchesKeyword(title, keywords) {
			return
		}

		href, ok := s.Closest("a").Attr("href")
		href = strings.TrimSpace(href)
		if !ok || href == "" {
			return
		}

		link := resolve(base, href)
		if _, dup := seen[link]; dup {
			return
		}
		seen[link] = struct{}{}

		articles = append(articles, Article{Title: title, URL: link})
	})

	return articles
}

func resolve(base *url.URL, href string) string {
	if base == nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

// ExtractUpdateBlocks returns the visible text of each update element.
func ExtractUpdateBlocks(s *goquery.Selection, sel Selector) []string {
	var blocks []string
	s.Find(sel.UpdateBody).Each(func(i int, s *goquery.Selection) {
		blocks = append(blocks, innerText(s))
	})
	return blocks
}

var blockElements = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"dd": true, "div": true, "dl": true, "dt": true, "figcaption": true,
	"figure": true, "footer": true, "h1": true, "h2": true, "h3": true,
	"h4": true, "h5": true, "h6": true, "header": true, "li": true,
	"ol": true, "p": true, "section": true, "table": true, "tr": true,
	"ul": true,
}

// innerText approximates the browser's innerText: block elements and <br>
// start new lines, runs of whitespace collapse, scripts are skipped.
func innerText(s *goquery.Selection) string {
	var b strings.Builder

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
		case html.ElementNode:
			switch n.Data {
			case "script", "style", "noscript":
				return
			case "br":
				b.WriteString("\n")
				return
			}
			block := blockElements[n.Data]
			if block {
				b.WriteString("\n")
			}
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				walk(c)
			}
			if block {
				b.WriteString("\n")
			}
		}
	}

	for _, n := range s.Nodes {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	var lines []string
	for _, line := range strings.Split(b.String(), "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
