package content

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"dropbot/types"
)

const testPage = `<!DOCTYPE html>
<html>
<head><title>Test Article</title></head>
<body>
<article>
<h1>Practical concurrency</h1>
<p>Goroutines and channels let a program fan work out across many
independent items while keeping coordination explicit. This page exists
so the extractor has a realistic amount of prose to work with when it
pulls readable text out of a raw HTML document.</p>
</article>
</body>
</html>`

func TestResolveLinkFetchesPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(testPage))
	}))
	defer server.Close()

	r := NewResolver(server.Client(), nil, nil)
	b := &types.Bookmark{ID: "b1", Link: server.URL, Type: types.TypeLink}

	text, err := r.Resolve(context.Background(), b, 0)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if !strings.Contains(text, "Goroutines and channels") {
		t.Fatalf("page text missing from resolved content: %q", text)
	}
}

func TestResolveTruncates(t *testing.T) {
	long := strings.Repeat("word ", 200)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(long))
	}))
	defer server.Close()

	r := NewResolver(server.Client(), nil, nil)
	b := &types.Bookmark{ID: "b1", Link: server.URL, Type: types.TypeLink}

	text, err := r.Resolve(context.Background(), b, 50)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if len([]rune(text)) != 50 {
		t.Fatalf("resolved text is %d chars, want 50", len([]rune(text)))
	}
}

func TestResolveArticlePrefersExcerpt(t *testing.T) {
	r := NewResolver(nil, nil, nil)
	b := &types.Bookmark{
		ID:      "b1",
		Link:    "https://unreachable.invalid/article",
		Type:    types.TypeArticle,
		Excerpt: "A stored excerpt that makes the network round-trip unnecessary.",
	}

	text, err := r.Resolve(context.Background(), b, 0)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if text != b.Excerpt {
		t.Fatalf("text = %q, want the excerpt", text)
	}
}

func TestResolveVideoPrefersNote(t *testing.T) {
	r := NewResolver(nil, nil, nil)
	b := &types.Bookmark{
		ID:      "v1",
		Link:    "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		Type:    types.TypeVideo,
		Note:    "Transcript-like note content.",
		Excerpt: "A shorter excerpt.",
	}

	text, err := r.Resolve(context.Background(), b, 0)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if text != b.Note {
		t.Fatalf("text = %q, want the note", text)
	}
}

func TestResolveEmptyContentFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	r := NewResolver(server.Client(), nil, nil)
	b := &types.Bookmark{ID: "b1", Link: server.URL, Type: types.TypeLink}

	_, err := r.Resolve(context.Background(), b, 0)
	if !errors.Is(err, types.ErrContentUnavailable) {
		t.Fatalf("err = %v, want ErrContentUnavailable", err)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("hello", 10); got != "hello" {
		t.Errorf("short text changed: %q", got)
	}
	if got := Truncate("hello world", 5); got != "hello" {
		t.Errorf("Truncate = %q, want %q", got, "hello")
	}
	if got := Truncate("héllo wörld", 7); len([]rune(got)) != 7 {
		t.Errorf("rune truncation returned %d runes", len([]rune(got)))
	}
	if got := Truncate("unbounded", 0); got != "unbounded" {
		t.Errorf("zero cap should be a no-op, got %q", got)
	}
}

func TestExtractVideoID(t *testing.T) {
	cases := []struct {
		link string
		want string
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/watch?feature=shared&v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/shorts/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://example.com/watch?v=dQw4w9WgXcQ", ""},
		{"https://www.youtube.com/", ""},
	}
	for _, c := range cases {
		if got := ExtractVideoID(c.link); got != c.want {
			t.Errorf("ExtractVideoID(%q) = %q, want %q", c.link, got, c.want)
		}
	}
}
