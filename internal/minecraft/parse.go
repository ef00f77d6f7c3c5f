package minecraft

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrAlreadyWhitelisted = errors.New("already whitelisted")
	ErrNotWhitelisted     = errors.New("not whitelisted")
	ErrUnknownPlayer      = errors.New("player does not exist")
	ErrUnexpectedResponse = errors.New("unexpected server response")
)

// PlayerError ties a whitelist failure to the player it concerns.
type PlayerError struct {
	Err      error
	Username string
}

func (e *PlayerError) Error() string {
	switch {
	case errors.Is(e.Err, ErrAlreadyWhitelisted):
		return fmt.Sprintf("Player `%s` is already whitelisted!", e.Username)
	case errors.Is(e.Err, ErrNotWhitelisted):
		return fmt.Sprintf("Player `%s` is not whitelisted!", e.Username)
	case errors.Is(e.Err, ErrUnknownPlayer):
		return fmt.Sprintf("Player `%s` does not exist!", e.Username)
	}
	return fmt.Sprintf("%v: %s", e.Err, e.Username)
}

func (e *PlayerError) Unwrap() error { return e.Err }

type PlayerCount struct {
	Current string
	Max     string
}

// ParsePlayerCount reads the reply to `list`, e.g.
// "There are 2 of a max of 20 players online: a, b".
func ParsePlayerCount(resp string) (PlayerCount, error) {
	tokens := strings.Split(resp, " ")
	if len(tokens) < 8 {
		return PlayerCount{}, fmt.Errorf("%w: %q", ErrUnexpectedResponse, resp)
	}
	return PlayerCount{Current: tokens[2], Max: tokens[7]}, nil
}

// ParseOnlinePlayers returns the names listed after "online:".
func ParseOnlinePlayers(resp string) []string {
	_, after, ok := strings.Cut(resp, "online:")
	if !ok {
		return nil
	}
	return splitNames(after)
}

// ParseWhitelist reads the reply to `whitelist list`.
func ParseWhitelist(resp string) []string {
	if strings.Contains(resp, "There are no whitelisted players") {
		return nil
	}
	_, after, ok := strings.Cut(resp, ":")
	if !ok {
		return nil
	}
	return splitNames(after)
}

func splitNames(s string) []string {
	var names []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			names = append(names, p)
		}
	}
	return names
}

// CheckWhitelistAdd interprets the reply to `whitelist add <name>`.
func CheckWhitelistAdd(resp, username string) error {
	switch {
	case strings.HasPrefix(resp, "Added"):
		return nil
	case strings.Contains(resp, "already whitelisted"):
		return &PlayerError{Err: ErrAlreadyWhitelisted, Username: username}
	case strings.Contains(resp, "That player does not exist"):
		return &PlayerError{Err: ErrUnknownPlayer, Username: username}
	}
	return fmt.Errorf("%w: %s", ErrUnexpectedResponse, resp)
}

// CheckWhitelistRemove interprets the reply to `whitelist remove <name>`.
func CheckWhitelistRemove(resp, username string) error {
	switch {
	case strings.HasPrefix(resp, "Removed"):
		return nil
	case strings.Contains(resp, "not whitelisted"):
		return &PlayerError{Err: ErrNotWhitelisted, Username: username}
	case strings.Contains(resp, "That player does not exist"):
		return &PlayerError{Err: ErrUnknownPlayer, Username: username}
	}
	return fmt.Errorf("%w: %s", ErrUnexpectedResponse, resp)
}
