package webhook

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/citizenwallet/custody/pkg/custody"
)

const maxContentLength = 2000

var ErrInvalidWebhookURL = errors.New("invalid discord webhook url")

type executor interface {
	WebhookExecute(webhookID, token string, wait bool, data *discordgo.WebhookParams) (*discordgo.Message, error)
}

type Messager struct {
	ChainName string

	discord executor
	id      string
	token   string
	notify  bool
}

// NewMessager posts to a discord webhook url of the form
// https://discord.com/api/webhooks/{id}/{token}
func NewMessager(webhookURL, chainName string, notify bool) (custody.WebhookMessager, error) {
	id, token, err := parseWebhookURL(webhookURL)
	if err != nil {
		return nil, err
	}

	discord, err := discordgo.New("")
	if err != nil {
		return nil, err
	}

	return &Messager{
		ChainName: chainName,
		discord:   discord,
		id:        id,
		token:     token,
		notify:    notify,
	}, nil
}

func parseWebhookURL(raw string) (string, string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", err
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := 0; i+2 < len(parts); i++ {
		if parts[i] == "webhooks" && parts[i+1] != "" && parts[i+2] != "" {
			return parts[i+1], parts[i+2], nil
		}
	}

	return "", "", ErrInvalidWebhookURL
}

func (b *Messager) send(content string) error {
	if !b.notify {
		return nil
	}

	// discord counts characters, not bytes
	if r := []rune(content); len(r) > maxContentLength {
		content = string(r[:maxContentLength])
	}

	_, err := b.discord.WebhookExecute(b.id, b.token, false, &discordgo.WebhookParams{
		Content: content,
	})

	return err
}

func (b *Messager) Notify(ctx context.Context, message string) error {
	return b.send(fmt.Sprintf("[%s] %s", b.ChainName, message))
}

func (b *Messager) NotifyWarning(ctx context.Context, errorMessage error) error {
	return b.send(fmt.Sprintf("[%s] warning: %s", b.ChainName, errorMessage.Error()))
}

func (b *Messager) NotifyError(ctx context.Context, errorMessage error) error {
	return b.send(fmt.Sprintf("[%s] error: %s", b.ChainName, errorMessage.Error()))
}

// Noop is used when no webhook is configured.
type Noop struct{}

func (Noop) Notify(ctx context.Context, message string) error           { return nil }
func (Noop) NotifyWarning(ctx context.Context, errorMessage error) error { return nil }
func (Noop) NotifyError(ctx context.Context, errorMessage error) error   { return nil }
