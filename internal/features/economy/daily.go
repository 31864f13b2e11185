// Package economy — daily.go содержит чистую логику расчёта
// ежедневной награды и серий (стриков). Здесь нет обращений к БД:
// функция вызывается хранилищем внутри транзакции получения награды.
package economy

import (
	"time"

	"ilmgarden.ru/discord-bot/internal/common"
)

// Окна состояния ежедневной награды.
const (
	// DailyClaimCooldown — повторное получение раньше 20 часов отклоняется.
	DailyClaimCooldown = 20 * time.Hour
	// StreakContinueWindow — если с прошлой награды прошло меньше 48 часов,
	// серия продолжается; иначе начинается заново с 1.
	StreakContinueWindow = 48 * time.Hour
)

// DailyConfig — параметры расчёта ежедневной награды.
// Значения приходят из конфигурации приложения.
type DailyConfig struct {
	BaseReward     int64 // Базовая награда (по умолчанию 50)
	StreakBonus    int64 // Бонус за каждый день серии (по умолчанию 10)
	MaxStreakDays  int64 // Максимум дней серии, учитываемых в бонусе (по умолчанию 7)
	WeeklyBonus    int64 // Дополнительный бонус каждые 7 дней серии (по умолчанию 100)
}

// DailyReward — результат успешного получения ежедневной награды.
type DailyReward struct {
	Total       int64 // Итоговая сумма начисления
	Base        int64 // Базовая часть
	StreakBonus int64 // Бонус за серию
	WeeklyBonus int64 // Недельный бонус (0, если серия не кратна 7)
	Streak      int64 // Новая длина серии
}

// ComputeDailyReward рассчитывает награду за день по состоянию счёта.
//
// Машина состояний по lastDaily:
//   - прошло меньше 20 часов → common.ErrDailyAlreadyClaimed, без изменений;
//   - прошло меньше 48 часов → серия продолжается (prevStreak + 1);
//   - первый раз или прошло 48+ часов → серия начинается заново с 1.
//
// Награда: base + min(streak, maxStreakDays) * streakBonus.
// Каждые 7 дней серии добавляется weeklyBonus (учитывается отдельно).
func ComputeDailyReward(prevStreak int64, lastDaily *time.Time, now time.Time, cfg DailyConfig) (*DailyReward, error) {
	streak := int64(1)
	if lastDaily != nil {
		elapsed := now.Sub(*lastDaily)
		if elapsed < DailyClaimCooldown {
			return nil, common.ErrDailyAlreadyClaimed
		}
		if elapsed < StreakContinueWindow {
			streak = prevStreak + 1
		}
	}

	streakBonus := streak * cfg.StreakBonus
	if maxBonus := cfg.MaxStreakDays * cfg.StreakBonus; streakBonus > maxBonus {
		streakBonus = maxBonus
	}

	reward := &DailyReward{
		Base:        cfg.BaseReward,
		StreakBonus: streakBonus,
		Streak:      streak,
		Total:       cfg.BaseReward + streakBonus,
	}

	// Недельный бонус на каждом 7-м дне серии
	if streak%7 == 0 {
		reward.WeeklyBonus = cfg.WeeklyBonus
		reward.Total += cfg.WeeklyBonus
	}

	return reward, nil
}

// NextClaimAt возвращает время, когда награду можно получить снова.
func NextClaimAt(lastDaily time.Time) time.Time {
	return lastDaily.Add(DailyClaimCooldown)
}
