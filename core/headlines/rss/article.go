package rss

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// maxBodyRunes bounds the scraped body; a narration is at most two minutes
// long, so there is no point injecting a 40k-character note.
const maxBodyRunes = 8000

// scrapeBody pulls the article page and extracts the readable text. It
// prefers an <article> element and falls back to all paragraph text.
func (s *Source) scrapeBody(ctx context.Context, link string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return "", fmt.Errorf("build article request: %w", err)
	}
	req.Header.Set("User-Agent", "voyce-core/1.0")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("get article page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("article page returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parse article page: %w", err)
	}

	doc.Find("script, style, nav, header, footer, aside").Remove()

	var paragraphs []string
	collect := func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		if text != "" {
			paragraphs = append(paragraphs, text)
		}
	}

	if article := doc.Find("article p"); article.Length() > 0 {
		article.Each(collect)
	} else {
		doc.Find("p").Each(collect)
	}

	if len(paragraphs) == 0 {
		return "", fmt.Errorf("no readable paragraphs in article page")
	}

	body := strings.Join(paragraphs, "\n\n")
	if runes := []rune(body); len(runes) > maxBodyRunes {
		body = string(runes[:maxBodyRunes])
	}
	return body, nil
}
