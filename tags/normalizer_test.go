package tags

import (
	"reflect"
	"testing"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Machine Learning", "machine-learning"},
		{"  Go  ", "go"},
		{"C++", "c"},
		{"café culture", "cafe-culture"},
		{"snake_case_term", "snake-case-term"},
		{"either/or", "either-or"},
		{"already-slugged", "already-slugged"},
		{"trailing dash-", "trailing-dash"},
		{"!!!", ""},
		{"", ""},
		{"números en español", "numeros-en-espanol"},
	}
	for _, c := range cases {
		if got := Slugify(c.in); got != c.want {
			t.Errorf("Slugify(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormalizeDropsStoplistedAndDuplicates(t *testing.T) {
	n := NewNormalizer(&Stoplist{Terms: []string{"Article", "misc"}})

	got := n.Normalize([]string{"Go", "article", "go", "Machine Learning", "MISC", "  "})
	want := []string{"go", "machine-learning"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Normalize = %v, want %v", got, want)
	}
}

func TestNormalizeWithoutStoplist(t *testing.T) {
	n := NewNormalizer(nil)
	got := n.Normalize([]string{"One", "Two"})
	if !reflect.DeepEqual(got, []string{"one", "two"}) {
		t.Fatalf("Normalize = %v", got)
	}
}

func TestMergePreservesExisting(t *testing.T) {
	existing := []string{"Go Lang", "testing"}
	got := Merge(existing, []string{"go-lang", "concurrency", "testing"})
	want := []string{"Go Lang", "testing", "concurrency"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Merge = %v, want %v", got, want)
	}
}

func TestMergeEmptySides(t *testing.T) {
	if got := Merge(nil, []string{"a"}); !reflect.DeepEqual(got, []string{"a"}) {
		t.Fatalf("Merge(nil, [a]) = %v", got)
	}
	if got := Merge([]string{"a"}, nil); !reflect.DeepEqual(got, []string{"a"}) {
		t.Fatalf("Merge([a], nil) = %v", got)
	}
	if got := Merge(nil, nil); len(got) != 0 {
		t.Fatalf("Merge(nil, nil) = %v", got)
	}
}
