package exampledb

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

// YellowBridgeURL is the sentence search page of yellowbridge.com
const YellowBridgeURL = "https://www.yellowbridge.com/chinese/sentsearch.php?word="

// YellowBridge scrapes example sentences from yellowbridge.com.
// Its English translations are not always accurate.
type YellowBridge struct {
	scraper
	baseURL string
}

// NewYellowBridge creates a yellowbridge source. A nil client gets a default one.
func NewYellowBridge(client *http.Client) *YellowBridge {
	return NewYellowBridgeWithURL(YellowBridgeURL, client)
}

// NewYellowBridgeWithURL creates a yellowbridge source with a custom base URL (for testing)
func NewYellowBridgeWithURL(baseURL string, client *http.Client) *YellowBridge {
	return &YellowBridge{scraper: newScraper(client), baseURL: baseURL}
}

// Sentences scrapes the sentence search page for word
func (y *YellowBridge) Sentences(ctx context.Context, word string) ([]Pair, error) {
	resp, err := y.get(ctx, y.baseURL+url.QueryEscape(word))
	if err != nil {
		return nil, fmt.Errorf("yellowbridge: %w", err)
	}
	defer resp.Body.Close()

	r, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("yellowbridge: %w", err)
	}
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("yellowbridge: parse html: %w", err)
	}

	return parseYellowBridge(doc), nil
}

// parseYellowBridge reads every <span class="zh"> sentence. The translation
// is the second sibling after the span.
func parseYellowBridge(doc *html.Node) []Pair {
	var pairs []Pair
	for _, span := range htmlquery.Find(doc, `//span[@class="zh"]`) {
		chinese := cleanYellowBridge(htmlquery.InnerText(span))
		if chinese == "" {
			continue
		}

		english := ""
		if sib := span.NextSibling; sib != nil && sib.NextSibling != nil {
			english = strings.TrimSpace(htmlquery.InnerText(sib.NextSibling))
		}
		pairs = append(pairs, Pair{Chinese: chinese, English: english})
	}
	return pairs
}

// cleanYellowBridge drops the numbered markers and braces yellowbridge
// uses for its tooltips
func cleanYellowBridge(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r == '{' || r == '}' || isNumberMarker(r) {
			continue
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}

// isNumberMarker matches circled and parenthesized digits and numbers
func isNumberMarker(r rune) bool {
	switch {
	case r >= 0x2460 && r <= 0x2487: // circled 1-20, parenthesized 1-20
		return true
	case r >= 0x24EA && r <= 0x24FF: // circled zero, negative and double circled
		return true
	case r >= 0x2776 && r <= 0x2793: // dingbat circled digits
		return true
	case r >= 0x3251 && r <= 0x325F, r >= 0x32B1 && r <= 0x32BF: // circled 21-50
		return true
	}
	return false
}

// Name returns "yellowbridge"
func (y *YellowBridge) Name() string {
	return "yellowbridge"
}
