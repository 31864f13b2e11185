package content

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSettings — in-memory настройки серверов.
type fakeSettings struct {
	channels map[int64]int64
}

func newFakeSettings() *fakeSettings {
	return &fakeSettings{channels: make(map[int64]int64)}
}

func (f *fakeSettings) SetDailyChannel(_ context.Context, guildID, channelID int64) error {
	f.channels[guildID] = channelID
	return nil
}

func (f *fakeSettings) ClearDailyChannel(_ context.Context, guildID int64) error {
	delete(f.channels, guildID)
	return nil
}

func (f *fakeSettings) ConfiguredChannels(_ context.Context) ([]*GuildSettings, error) {
	var list []*GuildSettings
	for guildID, channelID := range f.channels {
		ch := channelID
		list = append(list, &GuildSettings{GuildID: guildID, DailyContentChannelID: &ch})
	}
	return list, nil
}

func TestQuoteOfDay_Deterministic(t *testing.T) {
	day := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	first := QuoteOfDay(day)
	second := QuoteOfDay(day.Add(5 * time.Hour))
	assert.Equal(t, first, second)

	// На следующий день цитата другая
	next := QuoteOfDay(day.Add(24 * time.Hour))
	assert.NotEqual(t, first, next)
}

func TestPostDaily_SendsToAllConfigured(t *testing.T) {
	settings := newFakeSettings()
	s := NewService(settings)
	ctx := context.Background()

	require.NoError(t, s.EnableDaily(ctx, 10, 100))
	require.NoError(t, s.EnableDaily(ctx, 20, 200))

	var sent []int64
	count, err := s.PostDaily(ctx, func(channelID int64, quote Quote) error {
		sent = append(sent, channelID)
		assert.NotEmpty(t, quote.Text)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.ElementsMatch(t, []int64{100, 200}, sent)
}

func TestPostDaily_SendErrorDoesNotStopOthers(t *testing.T) {
	settings := newFakeSettings()
	s := NewService(settings)
	ctx := context.Background()

	require.NoError(t, s.EnableDaily(ctx, 10, 100))
	require.NoError(t, s.EnableDaily(ctx, 20, 200))

	count, err := s.PostDaily(ctx, func(channelID int64, _ Quote) error {
		if channelID == 100 {
			return errors.New("missing access")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestDisableDaily_RemovesGuild(t *testing.T) {
	settings := newFakeSettings()
	s := NewService(settings)
	ctx := context.Background()

	require.NoError(t, s.EnableDaily(ctx, 10, 100))
	require.NoError(t, s.DisableDaily(ctx, 10))

	count, err := s.PostDaily(ctx, func(int64, Quote) error { return nil })
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
