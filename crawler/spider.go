// Package crawler scrapes news pages into content/url items.
package crawler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Item is one scraped article: the first paragraph text and the page it came from.
type Item struct {
	Content string `json:"content"`
	URL     string `json:"url"`
}

// MockScrape returns the placeholder item used when no real context is available.
func MockScrape() []Item {
	return []Item{{Content: "Mock news data", URL: "example.com"}}
}

// Spider fetches sources and extracts items.
type Spider struct {
	httpClient   *http.Client
	userAgent    string
	maxBodyBytes int64
}

func NewSpider(httpClient *http.Client, userAgent string, maxBodyBytes int64) *Spider {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if maxBodyBytes <= 0 {
		maxBodyBytes = 2 << 20
	}
	return &Spider{httpClient: httpClient, userAgent: userAgent, maxBodyBytes: maxBodyBytes}
}

// Crawl visits every source in order. A failing source is skipped; its error
// is joined into the returned error alongside the items that were collected.
func (s *Spider) Crawl(ctx context.Context, sources []Source) ([]Item, error) {
	var items []Item
	var errs []error

	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		found, err := s.crawlSource(ctx, src)
		if err != nil {
			log.Printf("crawler: source %s failed: %v", src.Name, err)
			errs = append(errs, fmt.Errorf("%s: %w", src.Name, err))
			continue
		}
		log.Printf("crawler: source %s yielded %d items", src.Name, len(found))
		items = append(items, found...)
	}

	return items, errors.Join(errs...)
}

func (s *Spider) crawlSource(ctx context.Context, src Source) ([]Item, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return nil, err
	}
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	doc, err := html.Parse(io.LimitReader(resp.Body, s.maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	return Extract(doc, resp.Request.URL.String(), src.ItemSelector, src.TextSelector), nil
}

// Extract emits one item per element matching itemSel. Content is the first
// text node that is a direct child of any textSel descendant, in document
// order and untrimmed; "" when there is none.
func Extract(doc *html.Node, pageURL, itemSel, textSel string) []Item {
	var items []Item
	goquery.NewDocumentFromNode(doc).Find(itemSel).Each(func(_ int, item *goquery.Selection) {
		items = append(items, Item{Content: firstText(item.Find(textSel)), URL: pageURL})
	})
	return items
}

func firstText(sel *goquery.Selection) string {
	for _, n := range sel.Nodes {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				return c.Data
			}
		}
	}
	return ""
}
