package region

import (
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/go-cmp/cmp"
)

func TestRegionChoices(t *testing.T) {
	regions := map[string]string{"brazil": "Brazil", "us-east": "US East", "us-west": "US West"}
	values := func(cs []*discordgo.ApplicationCommandOptionChoice) []string {
		var out []string
		for _, c := range cs {
			out = append(out, c.Value.(string))
		}
		return out
	}
	cases := []struct {
		current string
		want    []string
	}{
		{"", []string{"automatic", "brazil", "us-east", "us-west"}},
		{"us", []string{"us-east", "us-west"}},
		{"AUTO", []string{"automatic"}},
		{"mars", nil},
	}
	for _, tc := range cases {
		t.Run(tc.current, func(t *testing.T) {
			if diff := cmp.Diff(tc.want, values(regionChoices(regions, tc.current))); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSetWhitelisted(t *testing.T) {
	list := []string{"1"}
	if !setWhitelisted(&list, "2", true) {
		t.Error("adding a new channel should change the list")
	}
	if setWhitelisted(&list, "2", true) {
		t.Error("adding twice should not change the list")
	}
	if !setWhitelisted(&list, "1", false) {
		t.Error("removing a listed channel should change the list")
	}
	if setWhitelisted(&list, "9", false) {
		t.Error("removing an unlisted channel should not change the list")
	}
	if diff := cmp.Diff([]string{"2"}, list); diff != "" {
		t.Errorf("list (-want +got):\n%s", diff)
	}
}

func TestWhitelistReply(t *testing.T) {
	cases := []struct {
		add, changed bool
		want         string
	}{
		{true, true, "Channel <#5> added to the whitelist"},
		{true, false, "Channel <#5> is already on the whitelist"},
		{false, true, "Channel <#5> removed from the whitelist"},
		{false, false, "Channel <#5> is not on the whitelist"},
	}
	for _, tc := range cases {
		if got := whitelistReply("5", tc.add, tc.changed); got != tc.want {
			t.Errorf("whitelistReply(%v, %v) = %q, want %q", tc.add, tc.changed, got, tc.want)
		}
	}
}

func TestIsVoice(t *testing.T) {
	if !isVoice(&discordgo.Channel{Type: discordgo.ChannelTypeGuildVoice}) {
		t.Error("voice channel")
	}
	if isVoice(&discordgo.Channel{Type: discordgo.ChannelTypeGuildText}) || isVoice(nil) {
		t.Error("text channel or nil counted as voice")
	}
}

func TestCooldownText(t *testing.T) {
	if got := cooldownText(3500 * time.Millisecond); !strings.Contains(got, "3.5s") {
		t.Errorf("cooldownText = %q", got)
	}
}
