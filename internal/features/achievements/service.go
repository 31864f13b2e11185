// Package achievements — service.go проверяет и выдаёт достижения.
package achievements

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"ilmgarden.ru/discord-bot/internal/features/economy"
)

// Store — хранилище выданных достижений.
type Store interface {
	Granted(ctx context.Context, userID, guildID int64) (map[string]bool, error)
	GrantedList(ctx context.Context, userID, guildID int64) ([]*UserAchievement, error)
	Award(ctx context.Context, userID, guildID int64, achievementID string) (bool, error)
}

// Ledger — срез сервиса экономики, нужный для наград за достижения.
type Ledger interface {
	GetAccount(ctx context.Context, userID, guildID int64) (*economy.Account, error)
	AddCoins(ctx context.Context, userID, guildID, amount int64, source, description string) error
	IncrementStat(ctx context.Context, userID, guildID int64, stat string, amount int64) error
}

// Service проверяет прогресс пользователя и выдаёт достижения.
type Service struct {
	store   Store
	ledger  Ledger
	catalog []Achievement
	byID    map[string]Achievement
}

// NewService создаёт сервис достижений со встроенным каталогом.
func NewService(store Store, ledger Ledger) *Service {
	byID := make(map[string]Achievement, len(Defaults))
	for _, a := range Defaults {
		byID[a.ID] = a
	}
	return &Service{store: store, ledger: ledger, catalog: Defaults, byID: byID}
}

// Catalog возвращает полный список достижений в порядке объявления.
func (s *Service) Catalog() []Achievement {
	return s.catalog
}

// ByID возвращает достижение по его идентификатору.
func (s *Service) ByID(id string) (Achievement, bool) {
	a, ok := s.byID[id]
	return a, ok
}

// GrantedList возвращает выданные достижения пользователя, новые первыми.
func (s *Service) GrantedList(ctx context.Context, userID, guildID int64) ([]*UserAchievement, error) {
	return s.store.GrantedList(ctx, userID, guildID)
}

// met проверяет, выполнены ли ВСЕ требования достижения для счёта.
func met(a Achievement, account *economy.Account) bool {
	for stat, threshold := range a.Requirement {
		value, ok := account.StatValue(stat)
		if !ok || value < threshold {
			return false
		}
	}
	return true
}

// Evaluate проверяет каталог достижений и выдаёт все новые,
// чьи требования выполнены. Возвращает выданные за этот вызов,
// в порядке объявления каталога.
//
// Выдача идемпотентна: уникальный ключ + ON CONFLICT гарантируют,
// что награда начисляется не больше одного раза даже при конкурентных
// вызовах. Ошибка по одному достижению пишется в лог, и проверка
// продолжается со следующего — одна сломанная ачивка не блокирует
// остальные.
func (s *Service) Evaluate(ctx context.Context, userID, guildID int64) ([]Achievement, error) {
	account, err := s.ledger.GetAccount(ctx, userID, guildID)
	if err != nil {
		return nil, err
	}
	granted, err := s.store.Granted(ctx, userID, guildID)
	if err != nil {
		return nil, err
	}

	var awarded []Achievement
	for _, a := range s.catalog {
		if granted[a.ID] {
			continue
		}
		if !met(a, account) {
			continue
		}

		fresh, err := s.store.Award(ctx, userID, guildID, a.ID)
		if err != nil {
			log.WithError(err).WithField("achievement", a.ID).Error("Ошибка выдачи достижения")
			continue
		}
		if !fresh {
			// Конкурентный вызов успел первым — награду начислил он
			continue
		}

		if a.RewardCoins > 0 {
			source := economy.SourceAchievementPrefix + a.ID
			description := fmt.Sprintf("Achievement: %s", a.Name)
			if err := s.ledger.AddCoins(ctx, userID, guildID, a.RewardCoins, source, description); err != nil {
				log.WithError(err).WithField("achievement", a.ID).Error("Ошибка начисления монет за достижение")
			}
		}
		if a.RewardGDP > 0 {
			if err := s.ledger.IncrementStat(ctx, userID, guildID, "good_deed_points", a.RewardGDP); err != nil {
				log.WithError(err).WithField("achievement", a.ID).Error("Ошибка начисления очков за достижение")
			}
		}

		log.WithFields(log.Fields{
			"user_id":     userID,
			"guild_id":    guildID,
			"achievement": a.ID,
		}).Info("Достижение выдано")
		awarded = append(awarded, a)
	}

	return awarded, nil
}
