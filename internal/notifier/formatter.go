package notifier

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aleister1102/leakwatch/internal/models"
)

func buildMentions(roleIDs []string) string {
	mentions := make([]string, 0, len(roleIDs))
	for _, id := range roleIDs {
		mentions = append(mentions, fmt.Sprintf("<@&%s>", id))
	}
	return strings.Join(mentions, " ") + "\n"
}

func truncateString(s string, maxLength int) string {
	if len(s) <= maxLength {
		return s
	}
	return s[:maxLength-3] + "..."
}

func validityColor(v models.Validity) int {
	switch v {
	case models.ValidityValid:
		return ValidEmbedColor
	case models.ValidityInvalid:
		return InvalidEmbedColor
	case models.ValidityFailedToCheck:
		return FailedEmbedColor
	}
	return DefaultEmbedColor
}

func formatLines(sc models.SourceContent) string {
	if !sc.IsAttributed() {
		return "unmapped"
	}
	lines := make([]string, 0, len(sc.ExactMatchLines))
	for _, l := range sc.ExactMatchLines {
		lines = append(lines, fmt.Sprintf("%d", l))
	}
	return fmt.Sprintf("%d-%d (match: %s)", sc.StartLine, sc.EndLine, strings.Join(lines, ", "))
}

// FormatFindingEmbed renders one finding. The secret is shown redacted.
func FormatFindingEmbed(f models.Finding) models.DiscordEmbed {
	b := NewEmbedBuilder().
		WithTitle(fmt.Sprintf(":key: %s secret found", f.SecretType)).
		WithColor(validityColor(f.Validity)).
		WithTimestamp(f.DiscoveredAt).
		WithFooter("fingerprint " + truncateString(f.Fingerprint, 16)).
		AddField("Validity", f.Validity.String(), true).
		AddField("Secret", "`"+models.RedactPayload(f.Payload())+"`", true)

	if len(f.Occurrences) > 0 {
		occ := f.Occurrences[0]
		b.WithURL(occ.URL).
			AddField("Page", occ.URL, false).
			AddField("File", occ.FilePath, false).
			AddField("Source", occ.SourceContent.Filename, true).
			AddField("Lines", formatLines(occ.SourceContent), true)
	}
	if len(f.Metadata) > 0 {
		b.AddField("Identity", formatMetadata(f.Metadata), false)
	}
	return b.Build()
}

// FormatNewFindingsMessages groups findings into messages of at most ten embeds
func FormatNewFindingsMessages(findings []models.Finding, roleIDs []string) []models.DiscordMessagePayload {
	var messages []models.DiscordMessagePayload
	for start := 0; start < len(findings); start += maxEmbedsPerMessage {
		end := min(start+maxEmbedsPerMessage, len(findings))
		b := NewMessageBuilder().
			WithUsername(DiscordUsername).
			WithContent(fmt.Sprintf("**%d new finding(s)**", len(findings)))
		if start == 0 {
			b.WithRoleMentions(roleIDs)
		}
		for _, f := range findings[start:end] {
			b.AddEmbed(FormatFindingEmbed(f))
		}
		messages = append(messages, b.Build())
	}
	return messages
}

func formatMetadata(meta map[string]string) string {
	keys := make([]string, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var sb strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&sb, "**%s**: %s\n", k, meta[k])
	}
	return strings.TrimSuffix(sb.String(), "\n")
}
