package economy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ilmgarden.ru/discord-bot/internal/common"
)

var testDailyCfg = DailyConfig{
	BaseReward:    50,
	StreakBonus:   10,
	MaxStreakDays: 7,
	WeeklyBonus:   100,
}

func TestComputeDailyReward_FirstClaim(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	reward, err := ComputeDailyReward(0, nil, now, testDailyCfg)
	require.NoError(t, err)

	assert.Equal(t, int64(1), reward.Streak)
	assert.Equal(t, int64(50), reward.Base)
	assert.Equal(t, int64(10), reward.StreakBonus)
	assert.Equal(t, int64(0), reward.WeeklyBonus)
	assert.Equal(t, int64(60), reward.Total)
}

func TestComputeDailyReward_TooSoon(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	last := now.Add(-19 * time.Hour)

	_, err := ComputeDailyReward(3, &last, now, testDailyCfg)
	assert.ErrorIs(t, err, common.ErrDailyAlreadyClaimed)
}

func TestComputeDailyReward_ExactlyTwentyHours(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	last := now.Add(-DailyClaimCooldown)

	// Ровно 20 часов — уже можно
	reward, err := ComputeDailyReward(3, &last, now, testDailyCfg)
	require.NoError(t, err)
	assert.Equal(t, int64(4), reward.Streak)
}

func TestComputeDailyReward_StreakContinues(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	last := now.Add(-30 * time.Hour)

	reward, err := ComputeDailyReward(3, &last, now, testDailyCfg)
	require.NoError(t, err)

	assert.Equal(t, int64(4), reward.Streak)
	assert.Equal(t, int64(40), reward.StreakBonus)
	assert.Equal(t, int64(90), reward.Total)
}

func TestComputeDailyReward_StreakResetsAfterWindow(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	last := now.Add(-StreakContinueWindow)

	// Ровно 48 часов — серия уже потеряна
	reward, err := ComputeDailyReward(10, &last, now, testDailyCfg)
	require.NoError(t, err)

	assert.Equal(t, int64(1), reward.Streak)
	assert.Equal(t, int64(60), reward.Total)
}

func TestComputeDailyReward_BonusCappedAtMaxDays(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	last := now.Add(-24 * time.Hour)

	// День 10: бонус серии не растёт выше 7 * 10
	reward, err := ComputeDailyReward(9, &last, now, testDailyCfg)
	require.NoError(t, err)

	assert.Equal(t, int64(10), reward.Streak)
	assert.Equal(t, int64(70), reward.StreakBonus)
	assert.Equal(t, int64(120), reward.Total)
}

func TestComputeDailyReward_WeeklyBonus(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	last := now.Add(-24 * time.Hour)

	// День 7: базовая 50 + бонус серии 70 + недельный бонус 100
	reward, err := ComputeDailyReward(6, &last, now, testDailyCfg)
	require.NoError(t, err)

	assert.Equal(t, int64(7), reward.Streak)
	assert.Equal(t, int64(70), reward.StreakBonus)
	assert.Equal(t, int64(100), reward.WeeklyBonus)
	assert.Equal(t, int64(220), reward.Total)
}

func TestComputeDailyReward_WeeklyBonusOnFourteenthDay(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	last := now.Add(-24 * time.Hour)

	reward, err := ComputeDailyReward(13, &last, now, testDailyCfg)
	require.NoError(t, err)

	assert.Equal(t, int64(14), reward.Streak)
	assert.Equal(t, int64(100), reward.WeeklyBonus)
	assert.Equal(t, int64(220), reward.Total)
}

func TestNextClaimAt(t *testing.T) {
	last := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, last.Add(20*time.Hour), NextClaimAt(last))
}
