package tts

import (
	"math/rand/v2"
	"regexp"
	"sort"
	"strings"
)

var (
	userMention    = regexp.MustCompile(`<@!?(\d+)>`)
	roleMention    = regexp.MustCompile(`<@&\d+>`)
	channelMention = regexp.MustCompile(`<#\d+>`)
	customEmoji    = regexp.MustCompile(`<a?:(\w+):\d+>`)
	urlPattern     = regexp.MustCompile(`https?://\S+`)
	spoiler        = regexp.MustCompile(`(?s)\|\|.*?\|\|`)
	unspeakable    = strings.NewReplacer(
		"*", "", "_", "", "~", "", "`", "", "#", "", "<", "", ">", "",
		"{", "", "}", "", "[", "", "]", "", `\`, "", "^", "",
	)
)

const linkWord = "Link"

// FilterOptions carries a guild's limits and substitution tables.
type FilterOptions struct {
	MaxLength              int
	MaxWordLength          int
	RepeatedWordPercentage int
	Prefixes               []string
	WordReplacements       map[string]string
	NameReplacements       map[string]string

	// ResolveMention returns the display name of a mentioned user.
	ResolveMention func(id string) (string, bool)
	// Rand returns a number in [0, n).
	Rand  func(n int) int
	Jokes []string
}

func DefaultFilterOptions() FilterOptions {
	return FilterOptions{
		MaxLength:              400,
		MaxWordLength:          15,
		RepeatedWordPercentage: 80,
		Prefixes:               []string{"."},
	}
}

// Filter turns chat text into something worth speaking. An empty result
// means the message should be skipped.
func Filter(text string, opts FilterOptions) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	for _, p := range opts.Prefixes {
		if p != "" && strings.HasPrefix(text, p) {
			return ""
		}
	}
	if RepeatedWordPercentage(text) > float64(opts.RepeatedWordPercentage) {
		return ""
	}

	text = replaceWords(text, opts.WordReplacements)
	text = userMention.ReplaceAllStringFunc(text, func(m string) string {
		if opts.ResolveMention == nil {
			return m
		}
		name, ok := opts.ResolveMention(userMention.FindStringSubmatch(m)[1])
		if !ok {
			return m
		}
		return "to " + replaceName(name, opts.NameReplacements)
	})
	text = roleMention.ReplaceAllString(text, "role")
	text = channelMention.ReplaceAllString(text, "channel")
	text = customEmoji.ReplaceAllString(text, "$1")
	text = urlPattern.ReplaceAllString(text, linkWord)
	text = unspeakable.Replace(text)
	text = spoiler.ReplaceAllString(text, "spoiler")
	text = strings.TrimSpace(text)

	if opts.MaxWordLength > 0 {
		for _, w := range strings.Fields(text) {
			if len([]rune(w)) > opts.MaxWordLength {
				return ""
			}
		}
	}
	if text == linkWord && len(opts.Jokes) > 0 {
		roll := opts.Rand
		if roll == nil {
			roll = rand.IntN
		}
		if roll(1000) == 0 {
			text = opts.Jokes[roll(len(opts.Jokes))]
		}
	}
	if r := []rune(text); opts.MaxLength > 0 && len(r) > opts.MaxLength {
		text = string(r[:opts.MaxLength])
	}
	return text
}

// RepeatedWordPercentage is the share of words that repeat an earlier word.
func RepeatedWordPercentage(text string) float64 {
	words := strings.Fields(text)
	if len(words) == 0 {
		return 0
	}
	unique := make(map[string]struct{}, len(words))
	for _, w := range words {
		unique[w] = struct{}{}
	}
	return float64(len(words)-len(unique)) / float64(len(words)) * 100
}

// replaceWords swaps whole-word prefixes case-insensitively, keeping any
// trailing word characters: with lol=laugh out loud, "lols" becomes
// "laugh out louds".
func replaceWords(text string, table map[string]string) string {
	keys := make([]string, 0, len(table))
	for k := range table {
		if k != "" {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})

	for _, k := range keys {
		re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(k) + `(\w*)\b`)
		if err != nil {
			continue
		}
		repl := strings.ReplaceAll(table[k], "$", "$$") + "${1}"
		text = re.ReplaceAllString(text, repl)
	}
	return text
}

func replaceName(name string, table map[string]string) string {
	for k, v := range table {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return name
}
