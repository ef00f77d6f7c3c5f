package vxer

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/google/go-cmp/cmp"

	"github.com/mednis/medsbot/internal/storage"
)

func TestConfigure(t *testing.T) {
	base := storage.VxerSettings{TikTokReplacement: "vxtiktok.com", TwitterReplacement: "vxtwitter.com"}
	cases := []struct {
		name        string
		site        string
		enable      bool
		replacement string
		wantReply   string
		want        storage.VxerSettings
	}{
		{
			name:      "enable tiktok",
			site:      "tiktok",
			enable:    true,
			wantReply: "TikTok link conversion `enabled` with replacement `vxtiktok.com`",
			want:      storage.VxerSettings{TikTok: true, TikTokReplacement: "vxtiktok.com", TwitterReplacement: "vxtwitter.com"},
		},
		{
			name:        "twitter with replacement",
			site:        "twitter",
			enable:      true,
			replacement: "fxtwitter.com",
			wantReply:   "Twitter link conversion `enabled` with replacement `fxtwitter.com`",
			want:        storage.VxerSettings{Twitter: true, TikTokReplacement: "vxtiktok.com", TwitterReplacement: "fxtwitter.com"},
		},
		{
			name:      "disable",
			site:      "twitter",
			wantReply: "Twitter link conversion `disabled` with replacement `vxtwitter.com`",
			want:      base,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := base
			reply, err := configure(&v, tc.site, tc.enable, tc.replacement)
			if err != nil {
				t.Fatal(err)
			}
			if reply != tc.wantReply {
				t.Errorf("reply = %q, want %q", reply, tc.wantReply)
			}
			if diff := cmp.Diff(tc.want, v); diff != "" {
				t.Errorf("settings (-want +got):\n%s", diff)
			}
		})
	}
	v := base
	if _, err := configure(&v, "instagram", true, ""); err == nil {
		t.Error("unknown site accepted")
	}
}

func TestReactorIsBot(t *testing.T) {
	r := &discordgo.MessageReaction{GuildID: "g", UserID: "u"}
	if !reactorIsBot(nil, &discordgo.Member{User: &discordgo.User{ID: "u", Bot: true}}, r) {
		t.Error("bot member not detected")
	}
	if reactorIsBot(nil, &discordgo.Member{User: &discordgo.User{ID: "u"}}, r) {
		t.Error("human member reported as bot")
	}
	if reactorIsBot(nil, nil, r) {
		t.Error("unknown member reported as bot")
	}
}
