package exampledb

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/antchfx/htmlquery"
)

func TestLineDict(t *testing.T) {
	var gotQuery, gotAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("query")
		gotAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"exampleList":[
			{"example":"他走得很快。","recentTrslation":"He walks fast."},
			{"example":"  ","recentTrslation":"ignored"},
			{"example":"走吧！","recentTrslation":""}
		]}`)
	}))
	defer server.Close()

	src := NewLineDictWithURL(server.URL+"/search?format=json&", server.Client())
	pairs, err := src.Sentences(context.Background(), "走")
	if err != nil {
		t.Fatalf("Sentences() error = %v", err)
	}

	if gotQuery != "走" {
		t.Errorf("query = %q, want 走", gotQuery)
	}
	if gotAgent != userAgent {
		t.Errorf("User-Agent = %q", gotAgent)
	}
	want := []Pair{
		{Chinese: "他走得很快。", English: "He walks fast."},
		{Chinese: "走吧！", English: ""},
	}
	if len(pairs) != len(want) {
		t.Fatalf("got %d pairs, want %d: %+v", len(pairs), len(want), pairs)
	}
	for i := range want {
		if pairs[i] != want[i] {
			t.Errorf("pair %d = %+v, want %+v", i, pairs[i], want[i])
		}
	}
}

func TestLineDictBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	src := NewLineDictWithURL(server.URL+"/?", server.Client())
	if _, err := src.Sentences(context.Background(), "走"); err == nil {
		t.Error("expected error for 503 response")
	}
}

const yellowBridgePage = `<html><head><meta charset="utf-8"></head><body>
<ul>
<li><span class="zh">①{他}走得很快。</span> <span class="en">He walks fast.</span></li>
<li><span class="zh">⑵走吧⑽</span> <span class="en">Let's go.</span></li>
<li><span class="zh">①</span> <span class="en">nothing</span></li>
</ul>
</body></html>`

func TestYellowBridge(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.RawQuery
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, yellowBridgePage)
	}))
	defer server.Close()

	src := NewYellowBridgeWithURL(server.URL+"/sentsearch.php?word=", server.Client())
	pairs, err := src.Sentences(context.Background(), "走")
	if err != nil {
		t.Fatalf("Sentences() error = %v", err)
	}

	if !strings.HasPrefix(gotPath, "word=%E8%B5%B0") {
		t.Errorf("query = %q, want escaped word", gotPath)
	}
	want := []Pair{
		{Chinese: "他走得很快。", English: "He walks fast."},
		{Chinese: "走吧", English: "Let's go."},
	}
	if len(pairs) != len(want) {
		t.Fatalf("got %d pairs, want %d: %+v", len(pairs), len(want), pairs)
	}
	for i := range want {
		if pairs[i] != want[i] {
			t.Errorf("pair %d = %+v, want %+v", i, pairs[i], want[i])
		}
	}
}

func TestParseYellowBridgeMissingTranslation(t *testing.T) {
	doc, err := htmlquery.Parse(strings.NewReader(`<p><span class="zh">走</span></p>`))
	if err != nil {
		t.Fatal(err)
	}
	pairs := parseYellowBridge(doc)
	if len(pairs) != 1 || pairs[0].English != "" {
		t.Errorf("parseYellowBridge() = %+v", pairs)
	}
}

func TestCleanYellowBridge(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"走吧", "走吧"},
		{"①走②吧", "走吧"},
		{"⑴{走}⒇", "走"},
		{" ㉑走㊿ ", "走"},
		{"❶走➓", "走"},
	}
	for _, tt := range tests {
		if got := cleanYellowBridge(tt.in); got != tt.want {
			t.Errorf("cleanYellowBridge(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseLLMLines(t *testing.T) {
	content := `我走了|I'm leaving
1. 走吧|Let's go
这句话没有那个字|no word here
不是一对
 他走得很快 | He walks fast `

	pairs := parseLLMLines(content, "走")
	want := []Pair{
		{Chinese: "我走了", English: "I'm leaving"},
		{Chinese: "1. 走吧", English: "Let's go"},
		{Chinese: "他走得很快", English: "He walks fast"},
	}
	if len(pairs) != len(want) {
		t.Fatalf("got %d pairs, want %d: %+v", len(pairs), len(want), pairs)
	}
	for i := range want {
		if pairs[i] != want[i] {
			t.Errorf("pair %d = %+v, want %+v", i, pairs[i], want[i])
		}
	}
}

func TestLLMWithoutKey(t *testing.T) {
	src := NewLLM("", "", 0)
	if _, err := src.Sentences(context.Background(), "走"); err == nil {
		t.Error("expected error without API key")
	}
	if src.count != 5 {
		t.Errorf("default count = %d, want 5", src.count)
	}
	if src.Name() != "openai" {
		t.Errorf("Name() = %q", src.Name())
	}
}

func TestBreakerSourceOpens(t *testing.T) {
	failing := &fakeSource{name: "flaky", err: errors.New("timeout")}
	src := NewBreakerSource(failing, 2, time.Minute)

	for i := 0; i < 2; i++ {
		if _, err := src.Sentences(context.Background(), "走"); err == nil {
			t.Fatal("expected error from failing source")
		}
	}
	if src.State() != "open" {
		t.Fatalf("State() = %q, want open", src.State())
	}

	// Open breaker rejects without calling the source
	if _, err := src.Sentences(context.Background(), "走"); err == nil {
		t.Error("expected error from open breaker")
	}
	if failing.calls != 2 {
		t.Errorf("source calls = %d, want 2", failing.calls)
	}
	if src.Name() != "flaky" {
		t.Errorf("Name() = %q, want flaky", src.Name())
	}
}

func TestBreakerSourcePassesThrough(t *testing.T) {
	ok := &fakeSource{name: "ok", pairs: []Pair{{Chinese: "走吧"}}}
	src := NewBreakerSource(ok, 0, time.Minute)

	pairs, err := src.Sentences(context.Background(), "走")
	if err != nil {
		t.Fatalf("Sentences() error = %v", err)
	}
	if len(pairs) != 1 || src.State() != "closed" {
		t.Errorf("pairs = %+v, state = %s", pairs, src.State())
	}
}

func TestLLMSentences(t *testing.T) {
	var gotAuth, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"1","object":"chat.completion","created":0,"model":"gpt-4o-mini",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant",
			"content":"我走了|I'm leaving\n走吧|Let's go"}}]}`)
	}))
	defer server.Close()

	src := NewLLMWithBaseURL("test-key", server.URL+"/v1", "", 2)
	pairs, err := src.Sentences(context.Background(), "走")
	if err != nil {
		t.Fatalf("Sentences() error = %v", err)
	}

	if gotAuth != "Bearer test-key" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotPath != "/v1/chat/completions" {
		t.Errorf("path = %q", gotPath)
	}
	if len(pairs) != 2 || pairs[1] != (Pair{Chinese: "走吧", English: "Let's go"}) {
		t.Errorf("Sentences() = %+v", pairs)
	}
}
