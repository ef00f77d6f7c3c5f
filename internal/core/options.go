package core

import (
	"github.com/bwmarrin/discordgo"
)

type Options map[string]*discordgo.ApplicationCommandInteractionDataOption

// Subcommand descends through subcommand groups and subcommands. It
// returns the space separated path, e.g. "global export", and the leaf
// options.
func Subcommand(opts []*discordgo.ApplicationCommandInteractionDataOption) (string, Options) {
	path := ""
	for len(opts) == 1 &&
		(opts[0].Type == discordgo.ApplicationCommandOptionSubCommandGroup ||
			opts[0].Type == discordgo.ApplicationCommandOptionSubCommand) {
		if path != "" {
			path += " "
		}
		path += opts[0].Name
		opts = opts[0].Options
	}
	return path, OptionMap(opts)
}

func OptionMap(opts []*discordgo.ApplicationCommandInteractionDataOption) Options {
	m := make(Options, len(opts))
	for _, o := range opts {
		m[o.Name] = o
	}
	return m
}

func (o Options) Has(name string) bool {
	_, ok := o[name]
	return ok
}

func (o Options) String(name string) string {
	if v, ok := o[name]; ok {
		if s, ok := v.Value.(string); ok {
			return s
		}
	}
	return ""
}

func (o Options) Int(name string, def int64) int64 {
	if v, ok := o[name]; ok {
		if f, ok := v.Value.(float64); ok {
			return int64(f)
		}
	}
	return def
}

func (o Options) Bool(name string, def bool) bool {
	if v, ok := o[name]; ok {
		if b, ok := v.Value.(bool); ok {
			return b
		}
	}
	return def
}

// ID returns the snowflake of a user, channel, role or attachment option.
func (o Options) ID(name string) string {
	return o.String(name)
}

// Focused returns the option being autocompleted.
func (o Options) Focused() (*discordgo.ApplicationCommandInteractionDataOption, bool) {
	for _, v := range o {
		if v.Focused {
			return v, true
		}
	}
	return nil, false
}
