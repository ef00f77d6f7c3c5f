package core

import (
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/go-cmp/cmp"

	"github.com/mednis/medsbot/internal/core"
	"github.com/mednis/medsbot/internal/storage"
)

func TestHistoryTableNewestFirst(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	records := []storage.CommandHistoryRecord{
		{Username: "anna", ChannelName: "general", Command: "ping", Datetime: at},
		{Username: "bob", ChannelName: "voice", Command: "tts_channels", Param: "add_text", Datetime: at.Add(time.Minute)},
	}
	lines := strings.Split(strings.TrimSpace(historyTable(records)), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines:\n%s", len(lines), strings.Join(lines, "\n"))
	}
	if !strings.Contains(lines[1], "bob") || !strings.HasSuffix(lines[1], "/tts_channels add_text") {
		t.Errorf("first row = %q", lines[1])
	}
	if !strings.HasSuffix(lines[2], "/ping") {
		t.Errorf("second row = %q", lines[2])
	}
}

func TestHistoryTableFitsMessage(t *testing.T) {
	var records []storage.CommandHistoryRecord
	for i := 0; i < 200; i++ {
		records = append(records, storage.CommandHistoryRecord{Username: "someone", ChannelName: "general", Command: "ping"})
	}
	if got := len(historyTable(records)); got > maxContentLength {
		t.Errorf("table is %d bytes, limit %d", got, maxContentLength)
	}
}

func TestVisibleCommands(t *testing.T) {
	core.SetDeveloperID("dev")
	t.Cleanup(func() { core.SetDeveloperID("") })

	all := []core.Command{&PingCommand{}, &LogCommand{}, &JobsCommand{}}
	member := func(id string, perms int64) *discordgo.Member {
		return &discordgo.Member{User: &discordgo.User{ID: id}, Permissions: perms}
	}
	names := func(cmds []core.Command) []string {
		var out []string
		for _, c := range cmds {
			out = append(out, c.Name())
		}
		return out
	}

	cases := []struct {
		name   string
		member *discordgo.Member
		want   []string
	}{
		{"member", member("u", 0), []string{"ping"}},
		{"admin", member("u", discordgo.PermissionAdministrator), []string{"ping", "cmd-log"}},
		{"developer", member("dev", 0), []string{"ping", "cmd-log", "jobs"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if diff := cmp.Diff(tc.want, names(visibleCommands(all, tc.member))); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestHelpByCategoryOrder(t *testing.T) {
	out := helpByCategory([]core.Command{&LogCommand{}, &PingCommand{}, &HelpCommand{}})
	info := strings.Index(out, "Information")
	settings := strings.Index(out, "Settings")
	maintenance := strings.Index(out, "Maintenance")
	if !(info < settings && settings < maintenance) {
		t.Errorf("categories out of order:\n%s", out)
	}
}
