package notifier

// Discord formatting constants
const (
	DiscordUsername      = "leakwatch"
	ValidEmbedColor      = 0xD9534F // red, a live secret
	InvalidEmbedColor    = 0x5CB85C // green
	FailedEmbedColor     = 0xF0AD4E // orange
	DefaultEmbedColor    = 0x2B2D31
	maxEmbedsPerMessage  = 10
	maxFieldValueLength  = 1024
	maxDescriptionLength = 4096
)
