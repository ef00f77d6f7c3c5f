package reactionroles

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/google/go-cmp/cmp"

	rr "github.com/mednis/medsbot/internal/reactionroles"
)

type fakeRoles struct {
	calls []string
}

func (f *fakeRoles) GuildMemberRoleAdd(_, userID, roleID string, _ ...discordgo.RequestOption) error {
	f.calls = append(f.calls, "add "+userID+" "+roleID)
	return nil
}

func (f *fakeRoles) GuildMemberRoleRemove(_, userID, roleID string, _ ...discordgo.RequestOption) error {
	f.calls = append(f.calls, "remove "+userID+" "+roleID)
	return nil
}

func (f *fakeRoles) MessageReactionRemove(_, _, emojiID, userID string, _ ...discordgo.RequestOption) error {
	f.calls = append(f.calls, "unreact "+userID+" "+emojiID)
	return nil
}

func testConfigs() []rr.EmbedConfig {
	return []rr.EmbedConfig{{
		Name:    "colours",
		Channel: "10",
		Message: "20",
		ReactionRoles: []rr.ReactionRole{
			{Emoji: "🔴", Role: "1", Unique: true},
			{Emoji: "<:blue:555>", Role: "2"},
		},
	}}
}

func TestApplyReaction(t *testing.T) {
	cases := []struct {
		name  string
		emoji discordgo.Emoji
		msgID string
		added bool
		want  []string
	}{
		{
			name:  "unique role clears other reactions",
			emoji: discordgo.Emoji{Name: "🔴"},
			msgID: "20",
			added: true,
			want:  []string{"unreact u blue:555", "add u 1"},
		},
		{
			name:  "custom emoji grants role",
			emoji: discordgo.Emoji{ID: "555", Name: "blue"},
			msgID: "20",
			added: true,
			want:  []string{"add u 2"},
		},
		{
			name:  "removal revokes role",
			emoji: discordgo.Emoji{ID: "555", Name: "blue"},
			msgID: "20",
			added: false,
			want:  []string{"remove u 2"},
		},
		{
			name:  "other message is ignored",
			emoji: discordgo.Emoji{Name: "🔴"},
			msgID: "99",
			added: true,
		},
		{
			name:  "unbound emoji is ignored",
			emoji: discordgo.Emoji{Name: "🟢"},
			msgID: "20",
			added: true,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := &fakeRoles{}
			r := &discordgo.MessageReaction{UserID: "u", MessageID: tc.msgID, ChannelID: "10", GuildID: "g", Emoji: tc.emoji}
			if err := applyReaction(f, testConfigs(), r, tc.added); err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tc.want, f.calls); diff != "" {
				t.Errorf("calls (-want +got):\n%s", diff)
			}
		})
	}
}

func TestReactionList(t *testing.T) {
	cfg := testConfigs()[0]
	want := "Reaction roles for `colours`:\n- 🔴 - <@&1> _(Unique)_\n- <:blue:555> - <@&2>"
	if diff := cmp.Diff(want, reactionList(cfg)); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
	cfg.ReactionRoles = nil
	if got := reactionList(cfg); got != "Embed `colours` does not have any reaction roles." {
		t.Errorf("empty = %q", got)
	}
}

func TestEmojiChoices(t *testing.T) {
	names := func(cs []*discordgo.ApplicationCommandOptionChoice) []string {
		var out []string
		for _, c := range cs {
			out = append(out, c.Name)
		}
		return out
	}
	cases := []struct {
		name, embed, current string
		want                 []string
	}{
		{"all", "colours", "", []string{"🔴", "<:blue:555>"}},
		{"filtered", "colours", "blue", []string{"<:blue:555>"}},
		{"missing embed", "nope", "", []string{"No Embed"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if diff := cmp.Diff(tc.want, names(emojiChoices(testConfigs(), tc.embed, tc.current))); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTopRole(t *testing.T) {
	roles := []*discordgo.Role{
		{ID: "everyone", Position: 0},
		{ID: "mod", Position: 5},
		{ID: "vip", Position: 3},
	}
	pos, id := topRole(roles, []string{"vip", "mod"})
	if pos != 5 || id != "mod" {
		t.Errorf("topRole = %d %q", pos, id)
	}
	if pos, _ := topRole(roles, nil); pos != 0 {
		t.Errorf("no roles = %d", pos)
	}
	if got := rolePosition(roles, "vip"); got != 3 {
		t.Errorf("rolePosition = %d", got)
	}
}
