package tags

import (
	"reflect"
	"testing"
)

func TestParseKeywordList(t *testing.T) {
	cases := []struct {
		name  string
		reply string
		want  []string
	}{
		{
			name:  "comma separated",
			reply: "machine learning, go, concurrency",
			want:  []string{"machine learning", "go", "concurrency"},
		},
		{
			name:  "newline separated with bullets",
			reply: "- machine learning\n- go\n- concurrency",
			want:  []string{"machine learning", "go", "concurrency"},
		},
		{
			name:  "trailing comma and whitespace",
			reply: " go,  testing , ",
			want:  []string{"go", "testing"},
		},
		{
			name:  "single keyword",
			reply: "golang",
			want:  []string{"golang"},
		},
		{
			name:  "empty reply",
			reply: "   ",
			want:  nil,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := ParseKeywordList(c.reply)
			if !reflect.DeepEqual(got, c.want) {
				t.Fatalf("ParseKeywordList(%q) = %v, want %v", c.reply, got, c.want)
			}
		})
	}
}
