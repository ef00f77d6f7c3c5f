package minecraft

import (
	"context"
	"time"
)

// Online is the parsed reply to `list`.
type Online struct {
	Count   PlayerCount
	Players []string
}

func ListOnline(ctx context.Context, ex Executor) (Online, error) {
	resp, err := ex.Execute(ctx, "list")
	if err != nil {
		return Online{}, err
	}
	count, err := ParsePlayerCount(resp)
	if err != nil {
		return Online{}, err
	}
	return Online{Count: count, Players: ParseOnlinePlayers(resp)}, nil
}

// Ping times a `list` command and returns its raw output.
func Ping(ctx context.Context, ex Executor) (string, time.Duration, error) {
	start := time.Now()
	resp, err := ex.Execute(ctx, "list")
	return resp, time.Since(start), err
}

// WhitelistAdd resolves the canonical player name and whitelists it.
func WhitelistAdd(ctx context.Context, ex Executor, mojang *MojangClient, username string) (string, error) {
	name, err := mojang.CanonicalName(ctx, username)
	if err != nil {
		return username, err
	}
	resp, err := ex.Execute(ctx, "whitelist add "+name)
	if err != nil {
		return name, err
	}
	return name, CheckWhitelistAdd(resp, name)
}

func WhitelistRemove(ctx context.Context, ex Executor, mojang *MojangClient, username string) (string, error) {
	name, err := mojang.CanonicalName(ctx, username)
	if err != nil {
		return username, err
	}
	resp, err := ex.Execute(ctx, "whitelist remove "+name)
	if err != nil {
		return name, err
	}
	return name, CheckWhitelistRemove(resp, name)
}

func Whitelist(ctx context.Context, ex Executor) ([]string, error) {
	resp, err := ex.Execute(ctx, "whitelist list")
	if err != nil {
		return nil, err
	}
	return ParseWhitelist(resp), nil
}
