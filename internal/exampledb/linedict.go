package exampledb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// LineDictURL is the example search endpoint of the LINE Chinese-English dictionary
const LineDictURL = "https://linedict.naver.com/cnen/example/search.dict?page=1&page_size=20&examType=normal&fieldType=&author=&country=&ql=default&format=json&platform=isPC&"

// LineDict reads example sentences from the LINE dictionary JSON API
type LineDict struct {
	scraper
	baseURL string
}

// NewLineDict creates a LINE dictionary source. A nil client gets a default one.
func NewLineDict(client *http.Client) *LineDict {
	return NewLineDictWithURL(LineDictURL, client)
}

// NewLineDictWithURL creates a LINE dictionary source with a custom base URL (for testing)
func NewLineDictWithURL(baseURL string, client *http.Client) *LineDict {
	return &LineDict{scraper: newScraper(client), baseURL: baseURL}
}

type lineDictResponse struct {
	ExampleList []struct {
		Example         string `json:"example"`
		RecentTrslation string `json:"recentTrslation"`
	} `json:"exampleList"`
}

// Sentences queries the API for word
func (l *LineDict) Sentences(ctx context.Context, word string) ([]Pair, error) {
	reqURL := l.baseURL + url.Values{"query": {word}}.Encode()

	resp, err := l.get(ctx, reqURL)
	if err != nil {
		return nil, fmt.Errorf("linedict: %w", err)
	}
	defer resp.Body.Close()

	var data lineDictResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("linedict: decode json: %w", err)
	}

	pairs := make([]Pair, 0, len(data.ExampleList))
	for _, ex := range data.ExampleList {
		chinese := strings.TrimSpace(ex.Example)
		if chinese == "" {
			continue
		}
		pairs = append(pairs, Pair{Chinese: chinese, English: strings.TrimSpace(ex.RecentTrslation)})
	}
	return pairs, nil
}

// Name returns "linedict"
func (l *LineDict) Name() string {
	return "linedict"
}
