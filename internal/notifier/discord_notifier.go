// Package notifier posts newly confirmed findings to a Discord webhook.
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/aleister1102/leakwatch/internal/common"
	"github.com/aleister1102/leakwatch/internal/config"
	"github.com/aleister1102/leakwatch/internal/httpclient"
	"github.com/aleister1102/leakwatch/internal/models"
	"github.com/rs/zerolog"
)

// DiscordNotifier handles sending notifications to a Discord webhook
type DiscordNotifier struct {
	client httpclient.Doer
	cfg    config.NotificationConfig
	logger zerolog.Logger
}

// NewDiscordNotifier creates a notifier. An empty webhook URL disables it.
func NewDiscordNotifier(cfg config.NotificationConfig, client httpclient.Doer, logger zerolog.Logger) (*DiscordNotifier, error) {
	if cfg.DiscordWebhookURL != "" {
		if _, err := url.ParseRequestURI(cfg.DiscordWebhookURL); err != nil {
			return nil, common.NewValidationError("discord_webhook_url", cfg.DiscordWebhookURL, "invalid webhook URL")
		}
	}
	return &DiscordNotifier{
		client: client,
		cfg:    cfg,
		logger: logger.With().Str("component", "DiscordNotifier").Logger(),
	}, nil
}

// Enabled reports whether findings will be sent
func (dn *DiscordNotifier) Enabled() bool {
	return dn.cfg.DiscordWebhookURL != "" && dn.cfg.NotifyOnNewFinding
}

// NotifyNewFindings sends one or more messages describing findings
func (dn *DiscordNotifier) NotifyNewFindings(ctx context.Context, findings []models.Finding) error {
	if !dn.Enabled() || len(findings) == 0 {
		return nil
	}
	var errs common.ErrorCollector
	for _, msg := range FormatNewFindingsMessages(findings, dn.cfg.MentionRoleIDs) {
		errs.Add(dn.SendNotification(ctx, msg))
	}
	return errs.Error()
}

// SendNotification posts payload as JSON to the configured webhook
func (dn *DiscordNotifier) SendNotification(ctx context.Context, payload models.DiscordMessagePayload) error {
	if dn.cfg.DiscordWebhookURL == "" {
		dn.logger.Debug().Msg("Webhook URL is empty. Skipping Discord notification.")
		return nil
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal discord payload: %w", err)
	}

	resp, err := dn.client.Do(&httpclient.HTTPRequest{
		URL:     dn.cfg.DiscordWebhookURL,
		Method:  http.MethodPost,
		Headers: map[string]string{"Content-Type": "application/json"},
		Body:    bytes.NewReader(body),
		Context: ctx,
	})
	if err != nil {
		dn.logger.Error().Err(err).Msg("Failed to send Discord notification")
		return common.WrapError(err, "failed to send discord notification")
	}
	if !resp.IsSuccess() {
		dn.logger.Error().Int("status_code", resp.StatusCode).Str("response_body", truncateString(string(resp.Body), 512)).Msg("Discord notification failed")
		return common.NewHTTPErrorWithURL(resp.StatusCode, "discord notification failed", "discord webhook")
	}

	dn.logger.Info().Int("status_code", resp.StatusCode).Int("embeds", len(payload.Embeds)).Msg("Discord notification sent")
	return nil
}
