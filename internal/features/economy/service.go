// Package economy — service.go содержит бизнес-логику экономики:
// начисления, списания, переводы, ежедневная награда, работа,
// пожертвования, лидерборд и счётчики активности.
package economy

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"ilmgarden.ru/discord-bot/internal/common"
	"ilmgarden.ru/discord-bot/internal/config"
)

// Store — хранилище счетов и журнала транзакций.
// Интерфейс объявлен на стороне сервиса: в тестах подменяется in-memory реализацией.
type Store interface {
	EnsureAccount(ctx context.Context, userID, guildID int64) (*Account, error)
	GetAccount(ctx context.Context, userID, guildID int64) (*Account, error)
	ApplyDelta(ctx context.Context, userID, guildID int64, deltas map[Field]int64) error
	AddBalance(ctx context.Context, userID, guildID, amount int64, source, description string) error
	DeductBalance(ctx context.Context, userID, guildID, amount int64, source, description string) error
	ClaimDaily(ctx context.Context, userID, guildID int64, now time.Time, cfg DailyConfig) (*DailyReward, error)
	Leaderboard(ctx context.Context, guildID int64, metric LeaderboardMetric, limit int) ([]*Account, error)
	LatestTransactions(ctx context.Context, userID, guildID int64, source string, limit int) ([]*Transaction, error)
}

// WorkResult — результат команды работы.
type WorkResult struct {
	Amount int64 // Заработанные монеты
	Job    string // Название выполненной работы (для отображения)
}

// DonationResult — результат пожертвования.
type DonationResult struct {
	Amount         int64 // Пожертвованные монеты
	GoodDeedPoints int64 // Начисленные очки добрых дел
}

// Занятия для команды работы. Выбирается случайное.
var workJobs = []string{
	"helped organize the library",
	"taught a beginner's class",
	"translated a short lecture",
	"cleaned the study hall",
	"prepared materials for the halaqa",
	"volunteered at the community kitchen",
}

// Service реализует экономические операции поверх Store.
type Service struct {
	store Store
	cfg   *config.Config

	// Подменяются в тестах
	nowFn  func() time.Time
	randFn func(max int64) int64
}

// NewService создаёт новый сервис экономики.
func NewService(store Store, cfg *config.Config) *Service {
	return &Service{
		store:  store,
		cfg:    cfg,
		nowFn:  time.Now,
		randFn: rand.Int63n,
	}
}

// dailyConfig собирает параметры ежедневной награды из конфигурации.
func (s *Service) dailyConfig() DailyConfig {
	return DailyConfig{
		BaseReward:    s.cfg.DailyBaseReward,
		StreakBonus:   s.cfg.DailyStreakBonus,
		MaxStreakDays: s.cfg.DailyMaxStreakDays,
		WeeklyBonus:   s.cfg.DailyWeeklyBonus,
	}
}

// GetAccount возвращает счёт пользователя, создавая его при первом обращении.
func (s *Service) GetAccount(ctx context.Context, userID, guildID int64) (*Account, error) {
	return s.store.EnsureAccount(ctx, userID, guildID)
}

// AddCoins начисляет монеты пользователю (с записью в журнал).
// Сумма должна быть положительной.
func (s *Service) AddCoins(ctx context.Context, userID, guildID, amount int64, source, description string) error {
	if amount <= 0 {
		return common.ErrInvalidAmount
	}
	if _, err := s.store.EnsureAccount(ctx, userID, guildID); err != nil {
		return err
	}
	if err := s.store.AddBalance(ctx, userID, guildID, amount, source, description); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"user_id":  userID,
		"guild_id": guildID,
		"amount":   amount,
		"source":   source,
	}).Info("Монеты начислены")
	return nil
}

// RemoveCoins списывает монеты с баланса пользователя (с записью в журнал).
// При нехватке монет возвращает common.ErrInsufficientBalance.
func (s *Service) RemoveCoins(ctx context.Context, userID, guildID, amount int64, source, description string) error {
	if amount <= 0 {
		return common.ErrInvalidAmount
	}
	if _, err := s.store.EnsureAccount(ctx, userID, guildID); err != nil {
		return err
	}
	if err := s.store.DeductBalance(ctx, userID, guildID, amount, source, description); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"user_id":  userID,
		"guild_id": guildID,
		"amount":   amount,
		"source":   source,
	}).Info("Монеты списаны")
	return nil
}

// TransferCoins переводит монеты от одного пользователя другому.
// Проверяет, что переводы включены, сумма в допустимых границах
// и получатель не совпадает с отправителем. Сначала списание у
// отправителя, начисление получателю — только после успеха списания.
func (s *Service) TransferCoins(ctx context.Context, fromID, toID, guildID, amount int64) error {
	if !s.cfg.TransferEnabled {
		return common.ErrTransfersDisabled
	}
	if fromID == toID {
		return common.ErrSelfTransfer
	}
	if amount < s.cfg.TransferMinAmount || amount > s.cfg.TransferMaxAmount {
		return fmt.Errorf("%w: от %d до %d", common.ErrTransferOutOfBounds,
			s.cfg.TransferMinAmount, s.cfg.TransferMaxAmount)
	}

	if _, err := s.store.EnsureAccount(ctx, fromID, guildID); err != nil {
		return err
	}
	if _, err := s.store.EnsureAccount(ctx, toID, guildID); err != nil {
		return err
	}

	outDesc := fmt.Sprintf("Transfer to <@%d>", toID)
	if err := s.store.DeductBalance(ctx, fromID, guildID, amount, SourceTransferOut, outDesc); err != nil {
		return err
	}

	inDesc := fmt.Sprintf("Transfer from <@%d>", fromID)
	if err := s.store.AddBalance(ctx, toID, guildID, amount, SourceTransferIn, inDesc); err != nil {
		// Списание уже прошло, а начисление нет — логируем для ручного разбора
		log.WithFields(log.Fields{
			"from_id":  fromID,
			"to_id":    toID,
			"guild_id": guildID,
			"amount":   amount,
		}).WithError(err).Error("Перевод: списание прошло, начисление не удалось")
		return err
	}

	log.WithFields(log.Fields{
		"from_id":  fromID,
		"to_id":    toID,
		"guild_id": guildID,
		"amount":   amount,
	}).Info("Перевод выполнен")
	return nil
}

// ClaimDailyReward выдаёт ежедневную награду с учётом серии.
// Повторный запрос раньше 20 часов возвращает common.ErrDailyAlreadyClaimed.
func (s *Service) ClaimDailyReward(ctx context.Context, userID, guildID int64) (*DailyReward, error) {
	if _, err := s.store.EnsureAccount(ctx, userID, guildID); err != nil {
		return nil, err
	}

	reward, err := s.store.ClaimDaily(ctx, userID, guildID, s.nowFn(), s.dailyConfig())
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"user_id":  userID,
		"guild_id": guildID,
		"amount":   reward.Total,
		"streak":   reward.Streak,
	}).Info("Ежедневная награда получена")
	return reward, nil
}

// Work выдаёт случайную награду за работу с перезарядкой.
// Время последней работы — последняя work-запись в журнале транзакций,
// отдельная колонка не нужна.
func (s *Service) Work(ctx context.Context, userID, guildID int64) (*WorkResult, error) {
	if _, err := s.store.EnsureAccount(ctx, userID, guildID); err != nil {
		return nil, err
	}

	cooldown := time.Duration(s.cfg.WorkCooldownHours) * time.Hour
	last, err := s.store.LatestTransactions(ctx, userID, guildID, SourceWork, 1)
	if err != nil {
		return nil, err
	}
	if len(last) > 0 {
		elapsed := s.nowFn().Sub(last[0].CreatedAt)
		if elapsed < cooldown {
			return nil, fmt.Errorf("%w: осталось %s", common.ErrWorkCooldown,
				common.FormatDuration(cooldown-elapsed))
		}
	}

	span := s.cfg.WorkMaxReward - s.cfg.WorkMinReward + 1
	amount := s.cfg.WorkMinReward + s.randFn(span)
	job := workJobs[s.randFn(int64(len(workJobs)))]

	description := fmt.Sprintf("Work: %s", job)
	if err := s.store.AddBalance(ctx, userID, guildID, amount, SourceWork, description); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"user_id":  userID,
		"guild_id": guildID,
		"amount":   amount,
	}).Info("Награда за работу выдана")
	return &WorkResult{Amount: amount, Job: job}, nil
}

// Donate списывает пожертвование и начисляет очки добрых дел.
// Очки: 1 за каждые DonationGDPRatio монет (по умолчанию 20).
// Списание увеличивает total_spent, отдельно растёт total_donated.
func (s *Service) Donate(ctx context.Context, userID, guildID, amount int64, cause string) (*DonationResult, error) {
	if amount < s.cfg.DonationMinAmount || amount > s.cfg.DonationMaxAmount {
		return nil, fmt.Errorf("%w: от %d до %d", common.ErrDonationOutOfBounds,
			s.cfg.DonationMinAmount, s.cfg.DonationMaxAmount)
	}
	if _, err := s.store.EnsureAccount(ctx, userID, guildID); err != nil {
		return nil, err
	}

	// Тег источника: donation_<cause>; колонка source ограничена 64 символами
	source := SourceDonationPrefix + strings.ToLower(cause)
	if len(source) > 64 {
		source = source[:64]
	}
	description := fmt.Sprintf("Donation: %s", cause)
	if err := s.store.DeductBalance(ctx, userID, guildID, amount, source, description); err != nil {
		return nil, err
	}

	gdp := amount / s.cfg.DonationGDPRatio
	deltas := map[Field]int64{FieldTotalDonated: amount}
	if gdp > 0 {
		deltas[FieldGoodDeedPoints] = gdp
	}
	if err := s.store.ApplyDelta(ctx, userID, guildID, deltas); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"user_id":  userID,
		"guild_id": guildID,
		"amount":   amount,
		"gdp":      gdp,
	}).Info("Пожертвование принято")
	return &DonationResult{Amount: amount, GoodDeedPoints: gdp}, nil
}

// IncrementStat увеличивает счётчик активности пользователя.
// Имя счётчика сверяется с белым списком statFields: неизвестное имя —
// предупреждение в лог и тихий no-op, не ошибка. Так внешние модули
// (игры, викторины) не могут уронить поток из-за опечатки в имени.
func (s *Service) IncrementStat(ctx context.Context, userID, guildID int64, stat string, amount int64) error {
	field, ok := statFields[stat]
	if !ok {
		log.WithFields(log.Fields{
			"user_id":  userID,
			"guild_id": guildID,
			"stat":     stat,
		}).Warn("Попытка обновить неизвестный счётчик")
		return nil
	}
	if amount == 0 {
		return nil
	}
	if _, err := s.store.EnsureAccount(ctx, userID, guildID); err != nil {
		return err
	}
	return s.store.ApplyDelta(ctx, userID, guildID, map[Field]int64{field: amount})
}

// Leaderboard возвращает топ счетов сервера по метрике.
// Неизвестная метрика трактуется как сортировка по монетам.
func (s *Service) Leaderboard(ctx context.Context, guildID int64, metric LeaderboardMetric, limit int) ([]*Account, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.store.Leaderboard(ctx, guildID, metric, limit)
}

// History возвращает последние транзакции пользователя, новые первыми.
func (s *Service) History(ctx context.Context, userID, guildID int64, limit int) ([]*Transaction, error) {
	if limit <= 0 {
		limit = 10
	}
	if _, err := s.store.EnsureAccount(ctx, userID, guildID); err != nil {
		return nil, err
	}
	return s.store.LatestTransactions(ctx, userID, guildID, "", limit)
}
