package pastures

import (
	"fmt"
	"strings"
	"time"

	embed "github.com/Clinet/discordgo-embed"
	"github.com/bwmarrin/discordgo"

	"github.com/mednis/medsbot/internal/minecraft"
)

const (
	UpdatingNote = "_This message updates every minute! :watch:_"
	StaticNote   = "_This message will not update!_"
)

func newEmbed(title, description string, colour int) *embed.Embed {
	e := embed.NewEmbed().
		SetTitle(title).
		SetDescription(description).
		SetColor(colour).
		SetFooter(FooterText, Logo)
	e.Timestamp = time.Now().UTC().Format(time.RFC3339)
	return e
}

// ErrorEmbed renders err in red. A multi-line error keeps its first line
// bold and the rest as details.
func ErrorEmbed(title string, err error) *discordgo.MessageEmbed {
	if title == "" {
		title = "General Error"
	}
	msg := "Something went wrong and didnt return an error message!"
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}

	desc := fmt.Sprintf(":red_circle:  **%s**", msg)
	if head, rest, ok := strings.Cut(msg, "\n"); ok {
		desc = fmt.Sprintf(":red_circle:  **%s** \n\n%s", head, rest)
	}
	return newEmbed(title, desc, ErrorColour).MessageEmbed
}

func WhitelistAddedEmbed(name string) *discordgo.MessageEmbed {
	return newEmbed("Player Whitelisted!",
		fmt.Sprintf(":green_circle:  Successfully whitelisted player `%s`", name), SuccessColour).MessageEmbed
}

func WhitelistRemovedEmbed(name string) *discordgo.MessageEmbed {
	return newEmbed("Player removed from whitelist!",
		fmt.Sprintf(":green_circle: Successfully removed player `%s` from the whitelist!", name), SuccessColour).MessageEmbed
}

func WhitelistEmbed(names []string, colour int) *discordgo.MessageEmbed {
	e := newEmbed("Whitelist", fmt.Sprintf("%d player(s) whitelisted!", len(names)), colour)
	e.AddField("Whitelisted players", codeList(names, "_Nobody yet._"))
	return e.MessageEmbed
}

// PingEmbed reports how long a `list` round trip took.
func PingEmbed(address, data string, took time.Duration, err error) *discordgo.MessageEmbed {
	e := newEmbed("Server Ping Status",
		"Server response speed to RCON commands, this is done locally and does not "+
			"guarantee that the server is reachable from the outside!"+
			fmt.Sprintf("\n**Server IP:** `%s`", address),
		SuccessColour)

	ms := fmt.Sprintf("Ping time **%.2f ms**", float64(took.Microseconds())/1000)
	if err == nil {
		e.AddField("Server status: ✅", ms)
		e.AddField("Data", fmt.Sprintf("``%s``", nonEmpty(data)))
	} else {
		e.AddField("Server status: ❌", ms)
		e.AddField("Error", fmt.Sprintf("``%v``", err))
	}
	return e.MessageEmbed
}

// PlaceholderEmbed is posted before the first status update lands.
func PlaceholderEmbed(s Settings, srv Server) *discordgo.MessageEmbed {
	title, _, image, colour := look(s, srv)
	return newEmbed(title, ":orange_circle: Please wait while we gather server info!", colour).
		SetThumbnail(image).MessageEmbed
}

// StatusView is everything the status embed shows.
type StatusView struct {
	Online minecraft.Online
	Status *minecraft.Status
	Word   string
	Note   string
}

// StatusEmbed renders the live player list of srv.
func StatusEmbed(s Settings, srv Server, v StatusView) *discordgo.MessageEmbed {
	title, _, image, colour := look(s, srv)

	desc := fmt.Sprintf("%s/%s People %s!", v.Online.Count.Current, v.Online.Count.Max, v.Word)
	if extra := strings.TrimSpace(srv.Config.Embed.Description); extra != "" && extra != DefaultServerConfig().Embed.Description {
		desc += "\n\n" + ExpandDescription(extra, v)
	}

	e := newEmbed(title, desc, colour).SetThumbnail(image)
	if srv.Config.Embed.ShowIP {
		ip := srv.Config.Embed.PublicIP
		if ip == "" {
			ip = srv.Address
		}
		e.AddField("Server IP", fmt.Sprintf("`%s`", ip))
	}
	e.AddField("Currently Online:", codeList(v.Online.Players, "")+"\n"+v.Note)
	return e.MessageEmbed
}

// ExpandDescription fills $pcur, $pmax, $messages, $motd and $version.
func ExpandDescription(desc string, v StatusView) string {
	motd, version := "N/A", "N/A"
	if v.Status != nil {
		if v.Status.MOTD != "" {
			motd = v.Status.MOTD
		}
		if v.Status.Version != "" {
			version = v.Status.Version
		}
	}
	return strings.NewReplacer(
		"$pcur", v.Online.Count.Current,
		"$pmax", v.Online.Count.Max,
		"$messages", v.Word,
		"$motd", motd,
		"$version", version,
	).Replace(desc)
}

// Words returns the pool the status line picks from.
func Words(s Settings, srv Server) []string {
	if len(srv.Config.Embed.Messages) > 0 {
		return srv.Config.Embed.Messages
	}
	if len(s.EmbedStrings) > 0 {
		return s.EmbedStrings
	}
	return []string{"online"}
}

func look(s Settings, srv Server) (title, desc, image string, colour int) {
	title, image, colour = s.EmbedTitle, s.EmbedImage, s.EmbedColour
	def := DefaultServerConfig().Embed
	if t := srv.Config.Embed.Title; t != "" && t != def.Title {
		title = t
	}
	if img := srv.Config.Embed.Image; img != "" && img != def.Image {
		image = img
	}
	if c := srv.Config.Embed.Color; c != 0 && c != def.Color {
		colour = c
	}
	if title == "" {
		title = "Server Status"
	}
	if image == "" {
		image = Logo
	}
	return title, srv.Config.Embed.Description, image, colour
}

func codeList(names []string, empty string) string {
	if len(names) == 0 {
		return empty
	}
	var b strings.Builder
	for _, n := range names {
		fmt.Fprintf(&b, "`%s`\n", n)
	}
	return b.String()
}

func nonEmpty(s string) string {
	if strings.TrimSpace(s) == "" {
		return " "
	}
	return s
}
