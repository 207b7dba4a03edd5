package webhook

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExecutor struct {
	id, token string
	contents  []string
	err       error
}

func (f *fakeExecutor) WebhookExecute(webhookID, token string, wait bool, data *discordgo.WebhookParams) (*discordgo.Message, error) {
	f.id = webhookID
	f.token = token
	f.contents = append(f.contents, data.Content)
	return nil, f.err
}

func TestParseWebhookURL(t *testing.T) {
	tests := []struct {
		name  string
		url   string
		id    string
		token string
		err   bool
	}{
		{"discord", "https://discord.com/api/webhooks/123/abc", "123", "abc", false},
		{"versioned", "https://discord.com/api/v10/webhooks/123/abc/", "123", "abc", false},
		{"missing token", "https://discord.com/api/webhooks/123", "", "", true},
		{"not a webhook", "https://example.com/hook", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, token, err := parseWebhookURL(tt.url)
			if tt.err {
				assert.ErrorIs(t, err, ErrInvalidWebhookURL)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.id, id)
			assert.Equal(t, tt.token, token)
		})
	}
}

func TestMessager(t *testing.T) {
	f := &fakeExecutor{}
	m := &Messager{ChainName: "gnosis", discord: f, id: "123", token: "abc", notify: true}
	ctx := context.Background()

	require.NoError(t, m.Notify(ctx, "transfer confirmed"))
	require.NoError(t, m.NotifyWarning(ctx, errors.New("slow node")))
	require.NoError(t, m.NotifyError(ctx, errors.New("journal down")))

	assert.Equal(t, "123", f.id)
	assert.Equal(t, "abc", f.token)
	assert.Equal(t, []string{
		"[gnosis] transfer confirmed",
		"[gnosis] warning: slow node",
		"[gnosis] error: journal down",
	}, f.contents)
}

func TestMessagerTruncates(t *testing.T) {
	f := &fakeExecutor{}
	m := &Messager{ChainName: "c", discord: f, notify: true}

	require.NoError(t, m.Notify(context.Background(), strings.Repeat("x", 3000)))
	assert.Len(t, f.contents[0], maxContentLength)
}

func TestMessagerTruncatesOnRuneBoundary(t *testing.T) {
	f := &fakeExecutor{}
	m := &Messager{ChainName: "c", discord: f, notify: true}

	require.NoError(t, m.Notify(context.Background(), strings.Repeat("é", 3000)))

	sent := f.contents[0]
	assert.True(t, utf8.ValidString(sent))
	assert.Equal(t, maxContentLength, utf8.RuneCountInString(sent))
}

func TestMessagerDisabled(t *testing.T) {
	f := &fakeExecutor{}
	m := &Messager{ChainName: "c", discord: f, notify: false}

	require.NoError(t, m.Notify(context.Background(), "hello"))
	assert.Empty(t, f.contents)
}

func TestMessagerError(t *testing.T) {
	f := &fakeExecutor{err: errors.New("429")}
	m := &Messager{ChainName: "c", discord: f, notify: true}

	assert.Error(t, m.NotifyError(context.Background(), errors.New("boom")))
}
