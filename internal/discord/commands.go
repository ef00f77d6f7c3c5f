package discord

import (
	"context"
	"slices"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/charmbracelet/log"

	"github.com/mednis/medsbot/internal/core"
)

// definitions returns every slash and context-menu definition of cmds,
// leaving out commands in a disabled group.
func definitions(cmds []core.Command, disabledGroups []string) []*discordgo.ApplicationCommand {
	var defs []*discordgo.ApplicationCommand
	for _, cmd := range cmds {
		if cmd.Group() != "" && slices.Contains(disabledGroups, cmd.Group()) {
			continue
		}
		if slash, ok := cmd.(core.SlashProvider); ok {
			if def := slash.SlashDefinition(); def != nil {
				if def.Type == 0 {
					def.Type = discordgo.ChatApplicationCommand
				}
				defs = append(defs, def)
			}
		}
		if menu, ok := cmd.(core.ContextMenuProvider); ok {
			if def := menu.ContextDefinition(); def != nil {
				if def.Type == 0 {
					def.Type = discordgo.MessageApplicationCommand
				}
				defs = append(defs, def)
			}
		}
	}
	return defs
}

type syncPlan struct {
	remove []*discordgo.ApplicationCommand
	create []*discordgo.ApplicationCommand
	hashes map[string]string
}

// planSync compares what Discord has with what we want. A command is
// (re)created when its hash changed since the last sync or Discord does
// not have it.
func planSync(remote, wanted []*discordgo.ApplicationCommand, cached map[string]string) syncPlan {
	plan := syncPlan{hashes: make(map[string]string, len(wanted))}

	wantedNames := make(map[string]bool, len(wanted))
	for _, def := range wanted {
		wantedNames[def.Name] = true
	}
	remoteNames := make(map[string]bool, len(remote))
	for _, rc := range remote {
		remoteNames[rc.Name] = true
		if !wantedNames[rc.Name] {
			plan.remove = append(plan.remove, rc)
		}
	}
	for _, def := range wanted {
		h := hashCommand(def)
		plan.hashes[def.Name] = h
		if cached[def.Name] != h || !remoteNames[def.Name] {
			plan.create = append(plan.create, def)
		}
	}
	return plan
}

// registerCommands syncs the guild's commands with Discord: deletes
// obsolete ones and creates those whose definition changed.
func (b *Bot) registerCommands(ctx context.Context, guildID string) error {
	appID, err := b.appID()
	if err != nil {
		return err
	}
	remote, err := b.dg.ApplicationCommands(appID, guildID)
	if err != nil {
		return err
	}
	disabled, err := b.storage.GetDisabledGroups(guildID)
	if err != nil {
		return err
	}

	cache := commandCache{dir: b.cfg.CommandCacheDir}
	plan := planSync(remote, definitions(core.AllCommands(), disabled), cache.load(guildID))

	for _, rc := range plan.remove {
		log.Info("deleting obsolete command", "guild", guildID, "cmd", rc.Name)
		if err := b.dg.ApplicationCommandDelete(appID, guildID, rc.ID); err != nil {
			log.Error("failed to delete command", "guild", guildID, "cmd", rc.Name, "err", err)
		}
	}

	if len(plan.create) > 0 {
		log.Info("updating changed commands", "guild", guildID, "count", len(plan.create))
	}
	for _, def := range plan.create {
		if err := b.registration.Wait(ctx); err != nil {
			return err
		}
		if _, err := b.dg.ApplicationCommandCreate(appID, guildID, def); err != nil {
			log.Error("can't create command", "guild", guildID, "cmd", def.Name, "err", err)
			delete(plan.hashes, def.Name)
			continue
		}
		log.Debug("command created", "guild", guildID, "cmd", def.Name)
	}

	return cache.save(guildID, plan.hashes)
}

// removeAllCommands clears a guild, used when it is blacklisted.
func (b *Bot) removeAllCommands(guildID string) {
	appID, err := b.appID()
	if err != nil {
		log.Error("cannot remove commands", "guild", guildID, "err", err)
		return
	}
	existing, err := b.dg.ApplicationCommands(appID, guildID)
	if err != nil {
		log.Error("cannot list commands", "guild", guildID, "err", err)
		return
	}
	for _, cmd := range existing {
		if err := b.dg.ApplicationCommandDelete(appID, guildID, cmd.ID); err != nil {
			log.Error("failed to delete command", "guild", guildID, "cmd", cmd.Name, "err", err)
		}
	}
}

func (b *Bot) handleSystemEvents(ctx context.Context) {
	for {
		select {
		case ev := <-core.SystemEvents():
			if ev.Type == core.SystemEventRefreshCommands {
				go b.handleRefreshCommands(ctx, ev)
			}
		case <-ctx.Done():
			return
		}
	}
}

// handleRefreshCommands re-syncs a guild after its settings changed. A
// bare command name forces that one command to be re-sent.
func (b *Bot) handleRefreshCommands(ctx context.Context, ev core.SystemEvent) {
	if b.isGuildBlacklisted(ev.GuildID) {
		log.Info("guild is blacklisted, removing all commands", "guild", ev.GuildID)
		b.removeAllCommands(ev.GuildID)
		return
	}

	target := strings.ToLower(ev.Target)
	if target == "" || target == "all" || strings.HasPrefix(target, "group:") {
		if err := b.registerCommands(ctx, ev.GuildID); err != nil {
			log.Error("failed to refresh commands", "guild", ev.GuildID, "target", ev.Target, "err", err)
		}
		return
	}

	cmd, ok := core.GetCommand(ev.Target)
	if !ok {
		log.Error("command not found", "cmd", ev.Target)
		return
	}
	appID, err := b.appID()
	if err != nil {
		log.Error("failed to refresh command", "cmd", ev.Target, "err", err)
		return
	}
	for _, def := range definitions([]core.Command{cmd}, nil) {
		if _, err := b.dg.ApplicationCommandCreate(appID, ev.GuildID, def); err != nil {
			log.Error("failed to update command", "guild", ev.GuildID, "cmd", def.Name, "err", err)
		}
	}
}
