package importer

import "testing"

func TestNormalizeLink(t *testing.T) {
	cases := []struct {
		name string
		link string
		want string
	}{
		{"simple", "https://example.com/path", "https://example.com/path"},
		{"utm and fragment", "https://example.com/path?utm_source=feed#section", "https://example.com/path"},
		{"uppercase host", "HTTP://Example.COM/", "http://example.com"},
		{"tracking params", "https://example.com/?fbclid=XYZ&gclid=ABC&utm_medium=1", "https://example.com"},
		{"real params survive", "https://example.com/watch?v=abc", "https://example.com/watch?v=abc"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := NormalizeLink(c.link); got != c.want {
				t.Fatalf("NormalizeLink(%q) = %q, want %q", c.link, got, c.want)
			}
		})
	}
}

func TestHashLinkIgnoresTrackingNoise(t *testing.T) {
	a := hashLink("https://example.com/post?utm_source=rss")
	b := hashLink("https://example.com/post")
	if a != b {
		t.Fatal("tracking parameters changed the hash")
	}
	if a == hashLink("https://example.com/other") {
		t.Fatal("distinct links collided")
	}
}
