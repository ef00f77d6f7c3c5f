package tts

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestFilter(t *testing.T) {
	names := map[string]string{"1": "Alice", "2": "bob"}
	base := DefaultFilterOptions()
	base.ResolveMention = func(id string) (string, bool) {
		n, ok := names[id]
		return n, ok
	}
	base.NameReplacements = map[string]string{"Bob": "Robert"}
	base.WordReplacements = map[string]string{"lol": "laugh out loud"}
	base.Rand = func(int) int { return 1 }

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"link collapses", "check out http://example.com lol", "check out Link laugh out loud"},
		{"empty", "   ", ""},
		{"command prefix", ".play something", ""},
		{"repeated words", "spam spam spam spam spam spam", ""},
		{"suffix kept", "lols", "laugh out louds"},
		{"suffix keeps its case", "LOLS", "laugh out loudS"},
		{"prefix of a longer word", "lollipop", "laugh out loudlipop"},
		{"user mention", "hi <@1> and <@!2>", "hi to Alice and to Robert"},
		{"unknown mention", "hi <@3>", "hi @3"},
		{"role and channel", "<@&5> see <#6>", "role see channel"},
		{"custom emoji", "nice <:pog:123> <a:dance:456>", "nice pog dance"},
		{"markdown stripped", "**bold** _it_ `code`", "bold it code"},
		{"spoiler", "the end is ||he dies|| wow", "the end is spoiler wow"},
		{"spoiler across lines", "the end is ||he\ndies|| wow", "the end is spoiler wow"},
		{"long word", "supercalifragilistic", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Filter(tt.in, base); got != tt.want {
				t.Errorf("Filter(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFilterScenarioWithoutTables(t *testing.T) {
	got := Filter("check out http://example.com lol", DefaultFilterOptions())
	if got != "check out Link lol" {
		t.Errorf("got %q", got)
	}
}

func TestFilterTruncates(t *testing.T) {
	opts := DefaultFilterOptions()
	opts.MaxLength = 10
	opts.RepeatedWordPercentage = 100
	in := strings.Repeat("ābc ", 20)
	got := Filter(in, opts)
	if n := utf8.RuneCountInString(got); n > 10 {
		t.Errorf("length %d > 10: %q", n, got)
	}
}

func TestFilterLinkJoke(t *testing.T) {
	opts := DefaultFilterOptions()
	opts.Jokes = []string{"joke"}
	opts.Rand = func(int) int { return 0 }
	if got := Filter("https://example.com/x", opts); got != "joke" {
		t.Errorf("got %q, want joke", got)
	}
	opts.Rand = func(int) int { return 7 }
	if got := Filter("https://example.com/x", opts); got != "Link" {
		t.Errorf("got %q, want Link", got)
	}
}

func TestFilterLinkJokeRespectsMaxLength(t *testing.T) {
	opts := DefaultFilterOptions()
	opts.MaxLength = 6
	opts.Jokes = []string{"a much longer joke"}
	opts.Rand = func(int) int { return 0 }
	if got := Filter("https://example.com/x", opts); got != "a much" {
		t.Errorf("got %q, want %q", got, "a much")
	}
}

func TestRepeatedWordPercentage(t *testing.T) {
	if got := RepeatedWordPercentage("a a b b"); got != 50 {
		t.Errorf("got %v, want 50", got)
	}
	if got := RepeatedWordPercentage(""); got != 0 {
		t.Errorf("got %v, want 0", got)
	}
}
