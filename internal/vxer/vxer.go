// Package vxer offers embeddable rewrites of TikTok and Twitter/X links.
// The bot reacts to a message carrying such a link; when a member adds
// the same reaction within a minute, the bot replies with the rewrite.
package vxer

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/charmbracelet/log"

	"github.com/mednis/medsbot/internal/metrics"
	"github.com/mednis/medsbot/internal/storage"
)

var ErrNoLink = errors.New("no link to rewrite")

const Window = time.Minute

type Site string

const (
	TikTok  Site = "tiktok"
	Twitter Site = "twitter"
)

func (s Site) Emoji() string {
	if s == TikTok {
		return "🎵"
	}
	return "🐦"
}

func (s Site) hosts() []string {
	if s == TikTok {
		return []string{"tiktok.com"}
	}
	return []string{"twitter.com", "x.com"}
}

func (s Site) replacement(cfg storage.VxerSettings) string {
	if s == TikTok {
		return cfg.TikTokReplacement
	}
	return cfg.TwitterReplacement
}

// Detect reports which enabled site a message links to. Messages that
// already carry a rewritten link are ignored.
func Detect(content string, cfg storage.VxerSettings) (Site, bool) {
	if strings.Contains(content, "vxt") {
		return "", false
	}
	if cfg.TikTok && strings.Contains(content, "tiktok.com/") {
		return TikTok, true
	}
	if cfg.Twitter && (strings.Contains(content, "twitter.com/") || strings.Contains(content, "x.com/")) {
		return Twitter, true
	}
	return "", false
}

var linkPatterns = map[string]*regexp.Regexp{}

func init() {
	for _, site := range []Site{TikTok, Twitter} {
		for _, host := range site.hosts() {
			linkPatterns[host] = regexp.MustCompile(`https?://(?:\w+\.)?` + regexp.QuoteMeta(host) + `\S+`)
		}
	}
}

// Rewrite swaps the site's host for replacement in every link to it.
// A rewrite that leaves only the bare replacement host is rejected.
func Rewrite(content string, site Site, replacement string) (string, error) {
	bare := "https://" + replacement + "/"
	var links []string
	for _, host := range site.hosts() {
		for _, link := range linkPatterns[host].FindAllString(content, -1) {
			link = strings.ReplaceAll(link, host, replacement)
			if link == bare {
				continue
			}
			links = append(links, link)
		}
		if len(links) > 0 {
			break
		}
	}
	if len(links) == 0 {
		return "", ErrNoLink
	}
	return strings.Join(links, "\n"), nil
}

// Session is the part of the Discord session the service uses.
type Session interface {
	MessageReactionAdd(channelID, messageID, emojiID string, options ...discordgo.RequestOption) error
	MessageReactionRemove(channelID, messageID, emojiID, userID string, options ...discordgo.RequestOption) error
	ChannelMessage(channelID, messageID string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

type Service struct {
	Storage  *storage.Storage
	Store    *Store
	Rewrites metrics.Observer
	Now      func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// HandleMessage reacts to messages carrying a supported link and tracks
// them for Window.
func (s *Service) HandleMessage(sess Session, m *discordgo.Message) error {
	if m.GuildID == "" || m.Author == nil || m.Author.Bot {
		return nil
	}
	rec, err := s.Storage.Guild(m.GuildID)
	if err != nil {
		return err
	}
	site, ok := Detect(m.Content, rec.Vxer)
	if !ok {
		return nil
	}
	err = s.Store.Track(Pending{
		GuildID:   m.GuildID,
		ChannelID: m.ChannelID,
		MessageID: m.ID,
		Site:      site,
		Deadline:  s.now().Add(Window),
	})
	if err != nil {
		return err
	}
	return sess.MessageReactionAdd(m.ChannelID, m.ID, site.Emoji())
}

// HandleReaction answers a member repeating the bot's reaction on a
// tracked message.
func (s *Service) HandleReaction(sess Session, r *discordgo.MessageReaction, botID string, userIsBot bool) error {
	if userIsBot || r.UserID == botID || r.GuildID == "" {
		return nil
	}
	p, ok, err := s.Store.Peek(r.MessageID)
	if err != nil || !ok || r.Emoji.Name != p.Site.Emoji() {
		return err
	}
	if _, ok, err := s.Store.Take(r.MessageID); err != nil || !ok {
		return err
	}

	if err := sess.MessageReactionRemove(p.ChannelID, p.MessageID, p.Site.Emoji(), "@me"); err != nil {
		log.Warn("Couldn't remove vxer reaction", "guild", p.GuildID, "channel", p.ChannelID, "err", err)
		return nil
	}

	msg, err := sess.ChannelMessage(p.ChannelID, p.MessageID)
	if err != nil {
		return err
	}
	rec, err := s.Storage.Guild(p.GuildID)
	if err != nil {
		return err
	}
	link, err := Rewrite(msg.Content, p.Site, p.Site.replacement(rec.Vxer))
	if err != nil {
		log.Error("Tried to rewrite a link but found none", "site", p.Site, "guild", p.GuildID, "message", p.MessageID)
		return nil
	}

	_, err = sess.ChannelMessageSendComplex(p.ChannelID, &discordgo.MessageSend{
		Content:         link,
		Reference:       msg.Reference(),
		AllowedMentions: &discordgo.MessageAllowedMentions{RepliedUser: false},
	})
	if err != nil {
		return err
	}
	if s.Rewrites != nil {
		s.Rewrites.Observe(1, string(p.Site))
	}
	return nil
}

// Cleanup forgets expired messages and takes the bot's reaction back.
func (s *Service) Cleanup(sess Session) error {
	expired, err := s.Store.Expired(s.now())
	if err != nil {
		return err
	}
	for _, p := range expired {
		if err := sess.MessageReactionRemove(p.ChannelID, p.MessageID, p.Site.Emoji(), "@me"); err != nil {
			log.Debug("Couldn't remove expired vxer reaction", "message", p.MessageID, "err", err)
		}
	}
	return nil
}
