// Package tts holds the slash commands and the chat listener of the
// text-to-speech cog.
package tts

import (
	"net/http"

	"github.com/bwmarrin/discordgo"

	"github.com/mednis/medsbot/internal/core"
	"github.com/mednis/medsbot/internal/metrics"
	engine "github.com/mednis/medsbot/internal/tts"
)

const group = "tts"

type Deps struct {
	Engine   *engine.Engine
	Voice    core.BotVoice
	HTTP     *http.Client
	Executed metrics.Observer
}

func Register(d Deps) {
	register := func(cmd core.Command) {
		core.RegisterCommand(
			core.ApplyMiddlewares(
				cmd,
				core.WithGroupAccessCheck(),
				core.WithGuildOnly(),
				core.WithAccessControl(),
				core.WithBotPermissionCheck(),
				core.WithCommandLogger(d.Executed),
			),
		)
	}

	register(&SettingsCommand{HTTP: d.HTTP})
	register(&BlacklistCommand{})
	register(&BlacklistMenuCommand{Add: true})
	register(&BlacklistMenuCommand{Add: false})
	register(&ChannelsCommand{})
	register(&SkipCommand{Engine: d.Engine, Voice: d.Voice})
	register(&VolumeCommand{})
	register(&VoiceCommand{Voice: d.Voice})
	register(&RelayListener{Engine: d.Engine, Voice: d.Voice})
}

// quiet replies without pinging anyone mentioned in content.
func quiet(s *discordgo.Session, i *discordgo.InteractionCreate, content string) error {
	return core.RespondComplex(s, i, &discordgo.InteractionResponseData{
		Content:         content,
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	})
}
