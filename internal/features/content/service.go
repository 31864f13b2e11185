// Package content — service.go выбирает цитату дня и рассылает её
// по настроенным каналам.
package content

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

// Settings — хранилище настроек публикации.
type Settings interface {
	SetDailyChannel(ctx context.Context, guildID, channelID int64) error
	ClearDailyChannel(ctx context.Context, guildID int64) error
	ConfiguredChannels(ctx context.Context) ([]*GuildSettings, error)
}

// SendFunc отправляет цитату в канал Discord. Передаётся ботом,
// чтобы сервис не зависел от сессии напрямую.
type SendFunc func(channelID int64, quote Quote) error

// Service управляет ежедневным контентом.
type Service struct {
	settings Settings

	nowFn func() time.Time
}

// NewService создаёт сервис ежедневного контента.
func NewService(settings Settings) *Service {
	return &Service{settings: settings, nowFn: time.Now}
}

// QuoteOfDay возвращает цитату на указанный день.
// Выбор детерминирован по дню года: все серверы в один день
// получают одну и ту же цитату, перезапуск бота её не меняет.
func QuoteOfDay(t time.Time) Quote {
	return quotes[t.UTC().YearDay()%len(quotes)]
}

// EnableDaily включает публикацию в канал сервера.
func (s *Service) EnableDaily(ctx context.Context, guildID, channelID int64) error {
	return s.settings.SetDailyChannel(ctx, guildID, channelID)
}

// DisableDaily выключает публикацию для сервера.
func (s *Service) DisableDaily(ctx context.Context, guildID int64) error {
	return s.settings.ClearDailyChannel(ctx, guildID)
}

// PostDaily публикует цитату дня во все настроенные каналы.
// Ошибка отправки в один канал пишется в лог и не прерывает рассылку.
// Возвращает число успешных публикаций.
func (s *Service) PostDaily(ctx context.Context, send SendFunc) (int, error) {
	channels, err := s.settings.ConfiguredChannels(ctx)
	if err != nil {
		return 0, err
	}

	quote := QuoteOfDay(s.nowFn())
	sent := 0
	for _, gs := range channels {
		if gs.DailyContentChannelID == nil {
			continue
		}
		if err := send(*gs.DailyContentChannelID, quote); err != nil {
			log.WithError(err).WithFields(log.Fields{
				"guild_id":   gs.GuildID,
				"channel_id": *gs.DailyContentChannelID,
			}).Error("Ошибка публикации ежедневного контента")
			continue
		}
		sent++
	}

	log.WithFields(log.Fields{
		"guilds": len(channels),
		"sent":   sent,
	}).Info("Ежедневный контент разослан")
	return sent, nil
}
