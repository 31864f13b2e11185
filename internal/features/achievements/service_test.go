package achievements

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ilmgarden.ru/discord-bot/internal/features/economy"
)

// fakeStore — in-memory хранилище выданных достижений.
type fakeStore struct {
	granted map[string]bool
	// если true, Award для этого ID падает с ошибкой
	failAward map[string]bool
	// если true, Award возвращает false: вставку перехватил конкурентный вызов
	lostRace map[string]bool
}

func newFakeAchStore() *fakeStore {
	return &fakeStore{
		granted:   make(map[string]bool),
		failAward: make(map[string]bool),
		lostRace:  make(map[string]bool),
	}
}

func (f *fakeStore) Granted(_ context.Context, _, _ int64) (map[string]bool, error) {
	out := make(map[string]bool, len(f.granted))
	for id := range f.granted {
		out[id] = true
	}
	return out, nil
}

func (f *fakeStore) GrantedList(_ context.Context, _, _ int64) ([]*UserAchievement, error) {
	var list []*UserAchievement
	for id := range f.granted {
		list = append(list, &UserAchievement{AchievementID: id})
	}
	return list, nil
}

func (f *fakeStore) Award(_ context.Context, _, _ int64, achievementID string) (bool, error) {
	if f.failAward[achievementID] {
		return false, errors.New("db down")
	}
	if f.lostRace[achievementID] || f.granted[achievementID] {
		return false, nil
	}
	f.granted[achievementID] = true
	return true, nil
}

// fakeLedger — срез экономики: один счёт и журнал начислений.
type fakeLedger struct {
	account     *economy.Account
	coinGrants  []int64
	statUpdates map[string]int64
}

func newFakeLedger(account *economy.Account) *fakeLedger {
	return &fakeLedger{account: account, statUpdates: make(map[string]int64)}
}

func (f *fakeLedger) GetAccount(_ context.Context, _, _ int64) (*economy.Account, error) {
	return f.account, nil
}

func (f *fakeLedger) AddCoins(_ context.Context, _, _ int64, amount int64, _, _ string) error {
	f.coinGrants = append(f.coinGrants, amount)
	f.account.Coins += amount
	f.account.TotalEarned += amount
	return nil
}

func (f *fakeLedger) IncrementStat(_ context.Context, _, _ int64, stat string, amount int64) error {
	f.statUpdates[stat] += amount
	if stat == "good_deed_points" {
		f.account.GoodDeedPoints += amount
	}
	return nil
}

func TestEvaluate_AwardsMetAchievements(t *testing.T) {
	store := newFakeAchStore()
	ledger := newFakeLedger(&economy.Account{QuizzesCompleted: 1})
	s := NewService(store, ledger)

	awarded, err := s.Evaluate(context.Background(), 1, 10)
	require.NoError(t, err)

	require.Len(t, awarded, 1)
	assert.Equal(t, "first_steps", awarded[0].ID)
	assert.True(t, store.granted["first_steps"])

	// Награда начислена: 50 монет и 5 очков добрых дел
	assert.Equal(t, []int64{50}, ledger.coinGrants)
	assert.Equal(t, int64(5), ledger.statUpdates["good_deed_points"])
}

func TestEvaluate_Idempotent(t *testing.T) {
	store := newFakeAchStore()
	ledger := newFakeLedger(&economy.Account{QuizzesCompleted: 1})
	s := NewService(store, ledger)
	ctx := context.Background()

	first, err := s.Evaluate(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, first, 1)

	// Повторная проверка ничего не выдаёт и не начисляет
	second, err := s.Evaluate(ctx, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, second)
	assert.Equal(t, []int64{50}, ledger.coinGrants)
}

func TestEvaluate_ThresholdNotMet(t *testing.T) {
	store := newFakeAchStore()
	ledger := newFakeLedger(&economy.Account{GamesPlayed: 24})
	s := NewService(store, ledger)

	awarded, err := s.Evaluate(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.Empty(t, awarded)
}

func TestEvaluate_UnknownStatNeverMet(t *testing.T) {
	// quran_scholar требует счётчик, которого у счёта нет —
	// достижение недостижимо, но не ломает проверку
	store := newFakeAchStore()
	ledger := newFakeLedger(&economy.Account{QuizzesCompleted: 100})
	s := NewService(store, ledger)

	awarded, err := s.Evaluate(context.Background(), 1, 10)
	require.NoError(t, err)

	for _, a := range awarded {
		assert.NotEqual(t, "quran_scholar", a.ID)
	}
}

func TestEvaluate_MultipleInDeclarationOrder(t *testing.T) {
	store := newFakeAchStore()
	ledger := newFakeLedger(&economy.Account{
		QuizzesCompleted: 1,
		DailyStreak:      7,
		TotalDonated:     1000,
	})
	s := NewService(store, ledger)

	awarded, err := s.Evaluate(context.Background(), 1, 10)
	require.NoError(t, err)

	require.Len(t, awarded, 3)
	assert.Equal(t, "first_steps", awarded[0].ID)
	assert.Equal(t, "generous_soul", awarded[1].ID)
	assert.Equal(t, "daily_devotee", awarded[2].ID)
}

func TestEvaluate_ErrorOnOneContinuesWithOthers(t *testing.T) {
	store := newFakeAchStore()
	store.failAward["first_steps"] = true
	ledger := newFakeLedger(&economy.Account{
		QuizzesCompleted: 1,
		DailyStreak:      7,
	})
	s := NewService(store, ledger)

	awarded, err := s.Evaluate(context.Background(), 1, 10)
	require.NoError(t, err)

	// first_steps упал, daily_devotee выдан
	require.Len(t, awarded, 1)
	assert.Equal(t, "daily_devotee", awarded[0].ID)
}

func TestEvaluate_ConcurrentAwardLost(t *testing.T) {
	// Award вернул false (конкурентный вызов успел первым) —
	// награда не начисляется второй раз
	store := newFakeAchStore()
	store.lostRace["first_steps"] = true
	ledger := newFakeLedger(&economy.Account{QuizzesCompleted: 1})
	s := NewService(store, ledger)

	awarded, err := s.Evaluate(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.Empty(t, awarded)
	assert.Empty(t, ledger.coinGrants)
}
