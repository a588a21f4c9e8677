package notifier

import (
	"time"

	"github.com/aleister1102/leakwatch/internal/models"
)

// EmbedBuilder constructs a models.DiscordEmbed
type EmbedBuilder struct {
	embed models.DiscordEmbed
}

func NewEmbedBuilder() *EmbedBuilder {
	return &EmbedBuilder{}
}

func (b *EmbedBuilder) WithTitle(title string) *EmbedBuilder {
	b.embed.Title = title
	return b
}

func (b *EmbedBuilder) WithDescription(description string) *EmbedBuilder {
	b.embed.Description = truncateString(description, maxDescriptionLength)
	return b
}

func (b *EmbedBuilder) WithURL(url string) *EmbedBuilder {
	b.embed.URL = url
	return b
}

// WithTimestamp formats timestamp as RFC3339
func (b *EmbedBuilder) WithTimestamp(timestamp time.Time) *EmbedBuilder {
	b.embed.Timestamp = timestamp.UTC().Format(time.RFC3339)
	return b
}

func (b *EmbedBuilder) WithColor(color int) *EmbedBuilder {
	b.embed.Color = color
	return b
}

func (b *EmbedBuilder) WithFooter(text string) *EmbedBuilder {
	b.embed.Footer = &models.DiscordEmbedFooter{Text: text}
	return b
}

// AddField appends a field, skipping empty values
func (b *EmbedBuilder) AddField(name, value string, inline bool) *EmbedBuilder {
	if value == "" {
		return b
	}
	b.embed.Fields = append(b.embed.Fields, models.DiscordEmbedField{
		Name:   name,
		Value:  truncateString(value, maxFieldValueLength),
		Inline: inline,
	})
	return b
}

func (b *EmbedBuilder) Build() models.DiscordEmbed {
	return b.embed
}

// MessageBuilder constructs a models.DiscordMessagePayload
type MessageBuilder struct {
	payload models.DiscordMessagePayload
}

func NewMessageBuilder() *MessageBuilder {
	return &MessageBuilder{}
}

func (b *MessageBuilder) WithContent(content string) *MessageBuilder {
	b.payload.Content = content
	return b
}

func (b *MessageBuilder) WithUsername(username string) *MessageBuilder {
	b.payload.Username = username
	return b
}

func (b *MessageBuilder) AddEmbed(embed models.DiscordEmbed) *MessageBuilder {
	b.payload.Embeds = append(b.payload.Embeds, embed)
	return b
}

// WithRoleMentions mentions roleIDs in the content and allows only those pings
func (b *MessageBuilder) WithRoleMentions(roleIDs []string) *MessageBuilder {
	if len(roleIDs) == 0 {
		return b
	}
	b.payload.Content = buildMentions(roleIDs) + b.payload.Content
	b.payload.AllowedMentions = &models.AllowedMentions{Roles: append([]string(nil), roleIDs...)}
	return b
}

func (b *MessageBuilder) Build() models.DiscordMessagePayload {
	return b.payload
}
