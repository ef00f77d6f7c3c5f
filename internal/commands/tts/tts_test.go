package tts

import (
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/google/go-cmp/cmp"

	"github.com/mednis/medsbot/internal/config"
	"github.com/mednis/medsbot/internal/core"
	"github.com/mednis/medsbot/internal/storage"
)

func opt(name string, v interface{}) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{Name: name, Value: v}
}

func settings() storage.TTSGuildSettings {
	return storage.TTSGuildSettings{
		MaxMessageLength:       400,
		MaxWordLength:          15,
		RepeatedWordPercentage: 80,
		Volume:                 100,
		NameReplacements:       map[string]string{},
		WordReplacements:       map[string]string{"lol": "laughing"},
	}
}

func TestApplySetting(t *testing.T) {
	cases := []struct {
		name  string
		sub   string
		opts  core.Options
		reply string
		check func(storage.TTSGuildSettings) bool
	}{
		{
			name:  "max message length",
			sub:   "max_message_length",
			opts:  core.Options{"length": opt("length", float64(120))},
			reply: "Set the maximum message length to 120 characters.",
			check: func(s storage.TTSGuildSettings) bool { return s.MaxMessageLength == 120 },
		},
		{
			name:  "repeated words",
			sub:   "repeated_word_percentage",
			opts:  core.Options{"percentage": opt("percentage", float64(50))},
			reply: "Set the repeated word percentage to 50%.",
			check: func(s storage.TTSGuildSettings) bool { return s.RepeatedWordPercentage == 50 },
		},
		{
			name:  "say name",
			sub:   "say_name",
			opts:  core.Options{"say_name": opt("say_name", true)},
			reply: "Set say name to true.",
			check: func(s storage.TTSGuildSettings) bool { return s.SayName },
		},
		{
			name:  "add word",
			sub:   "add_word",
			opts:  core.Options{"source": opt("source", "brb"), "substitution": opt("substitution", "be right back")},
			reply: "Added word substitution `brb`:`be right back`.",
			check: func(s storage.TTSGuildSettings) bool { return s.WordReplacements["brb"] == "be right back" },
		},
		{
			name:  "add existing word",
			sub:   "add_word",
			opts:  core.Options{"source": opt("source", "lol"), "substitution": opt("substitution", "x")},
			reply: "Substitution already exists for word `lol`",
			check: func(s storage.TTSGuildSettings) bool { return s.WordReplacements["lol"] == "laughing" },
		},
		{
			name:  "remove missing name",
			sub:   "remove_name",
			opts:  core.Options{"source": opt("source", "bob")},
			reply: "`bob` does not have a name substitution!",
			check: func(s storage.TTSGuildSettings) bool { return len(s.NameReplacements) == 0 },
		},
		{
			name:  "remove word",
			sub:   "remove_word",
			opts:  core.Options{"source": opt("source", "lol")},
			reply: "Removed word substitution for `lol`",
			check: func(s storage.TTSGuildSettings) bool { return len(s.WordReplacements) == 0 },
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := settings()
			reply, err := applySetting(tc.sub, tc.opts, &s)
			if err != nil {
				t.Fatal(err)
			}
			if reply != tc.reply {
				t.Errorf("reply = %q, want %q", reply, tc.reply)
			}
			if !tc.check(s) {
				t.Errorf("settings not applied: %+v", s)
			}
		})
	}
}

func TestApplySettingUnknown(t *testing.T) {
	s := settings()
	if _, err := applySetting("nope", core.Options{}, &s); err == nil {
		t.Error("expected an error")
	}
}

func TestChooseVoice(t *testing.T) {
	global := storage.TTSGlobalSettings{
		RegularVoices: []config.Voice{{Name: "Brian", Value: "Brian"}, {Name: "Amy", Value: "Amy"}},
		ExtraVoices:   []config.Voice{{Name: "Zeina", Value: "Zeina"}},
	}
	cases := []struct {
		name         string
		voice, extra string
		want         voiceChoice
	}{
		{"regular", "Amy", "", voiceChoice{voice: "Amy"}},
		{"disable", "disable", "", voiceChoice{disable: true}},
		{"extra", "Extra", "Zeina", voiceChoice{voice: "Zeina"}},
		{"extra without pick", "Extra", "", voiceChoice{problem: "You must select a voice to use TTS. ❌"}},
		{"unknown voice", "Hal", "", voiceChoice{problem: "Invalid voice selected. ❌"}},
		{"unknown extra", "Amy", "Hal", voiceChoice{problem: "Invalid extra voice selected. ❌"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := chooseVoice(global, tc.voice, tc.extra)
			if diff := cmp.Diff(tc.want, got, cmp.AllowUnexported(voiceChoice{})); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestVoiceReply(t *testing.T) {
	cases := []struct {
		name        string
		enabled     bool
		choice      voiceChoice
		wantEnabled bool
		prefix      string
	}{
		{"disable when off", false, voiceChoice{disable: true}, false, "TTS Was already disabled"},
		{"disable when on", true, voiceChoice{disable: true}, false, "Disabled TTS!"},
		{"enable", false, voiceChoice{voice: "Amy"}, true, "You have enabled TTS and sound like `Amy`."},
		{"change", true, voiceChoice{voice: "Amy"}, true, "You have changed your TTS voice to `Amy`."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			enabled, reply := voiceReply(tc.enabled, tc.choice)
			if enabled != tc.wantEnabled {
				t.Errorf("enabled = %v, want %v", enabled, tc.wantEnabled)
			}
			if !strings.HasPrefix(reply, tc.prefix) {
				t.Errorf("reply = %q, want prefix %q", reply, tc.prefix)
			}
		})
	}
}

func TestVoiceChoices(t *testing.T) {
	list := []config.Voice{{Name: "Brian", Value: "b"}, {Name: "Amy", Value: "a"}, {Name: "Ryan", Value: "r"}}
	var got []string
	for _, c := range voiceChoices(list, "RI") {
		got = append(got, c.Name)
	}
	if diff := cmp.Diff([]string{"Brian"}, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}

	many := make([]config.Voice, 40)
	for i := range many {
		many[i] = config.Voice{Name: "v", Value: "v"}
	}
	if n := len(voiceChoices(many, "")); n != maxChoices {
		t.Errorf("got %d choices, want %d", n, maxChoices)
	}
}

func TestShowEmbed(t *testing.T) {
	s := settings()
	s.BlacklistedUsers = []string{"42"}
	e := showEmbed(s)

	var names []string
	for _, f := range e.Fields {
		names = append(names, f.Name)
	}
	want := []string{"General Settings", "Whitelisted Channels", "Blacklisted Users", "Name Replacements", "Word Replacements"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("fields (-want +got):\n%s", diff)
	}
	if e.Fields[1].Value != "`None`" || e.Fields[2].Value != "<@42>" {
		t.Errorf("mentions = %q, %q", e.Fields[1].Value, e.Fields[2].Value)
	}
	if !strings.Contains(e.Fields[4].Value, "`lol`: `laughing`") {
		t.Errorf("word replacements = %q", e.Fields[4].Value)
	}
}

func TestBlacklistText(t *testing.T) {
	if got := blacklistText(nil); !strings.HasSuffix(got, "`None`") {
		t.Errorf("empty list = %q", got)
	}
	if got := blacklistText([]string{"1", "2"}); !strings.Contains(got, "- <@1>\n- <@2>") {
		t.Errorf("list = %q", got)
	}
}

func TestClampVolume(t *testing.T) {
	for in, want := range map[int64]int{-5: 0, 80: 80, 400: maxVolume} {
		if got := clampVolume(in); got != want {
			t.Errorf("clampVolume(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestDisplayName(t *testing.T) {
	u := &discordgo.User{Username: "anna_b", GlobalName: "Anna"}
	if got := displayName(&discordgo.Member{Nick: "Annie"}, u); got != "Annie" {
		t.Errorf("nick = %q", got)
	}
	if got := displayName(nil, u); got != "Anna" {
		t.Errorf("global name = %q", got)
	}
	if got := displayName(nil, &discordgo.User{Username: "anna_b"}); got != "anna_b" {
		t.Errorf("username = %q", got)
	}
}
