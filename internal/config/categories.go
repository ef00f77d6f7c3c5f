package config

const (
	CategoryInfo        = "🕯️ Information"
	CategoryVoice       = "🔊 Voice"
	CategoryMusic       = "🎵 Music"
	CategoryMinecraft   = "⛏️ Minecraft"
	CategoryRoles       = "🎭 Roles"
	CategoryTime        = "🕒 Time"
	CategoryLinks       = "🔗 Links"
	CategorySettings    = "⚙️ Settings"
	CategoryMaintenance = "🛠️ Maintenance"
)

// CategoryWeights orders categories in /help.
var CategoryWeights = map[string]int{
	CategoryInfo:        0,
	CategoryVoice:       10,
	CategoryMusic:       15,
	CategoryMinecraft:   20,
	CategoryRoles:       30,
	CategoryTime:        35,
	CategoryLinks:       40,
	CategorySettings:    50,
	CategoryMaintenance: 60,
}
