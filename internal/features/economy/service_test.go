package economy

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ilmgarden.ru/discord-bot/internal/common"
	"ilmgarden.ru/discord-bot/internal/config"
)

// fakeStore — in-memory реализация Store для тестов сервиса.
// Повторяет семантику репозитория: лениво создаваемые счета,
// условное списание, журнал транзакций.
type fakeStore struct {
	accounts     map[string]*Account
	transactions []*Transaction
	starting     int64
	now          time.Time
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		accounts: make(map[string]*Account),
		starting: 100,
		now:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func key(userID, guildID int64) string {
	return fmt.Sprintf("%d/%d", userID, guildID)
}

func (f *fakeStore) EnsureAccount(_ context.Context, userID, guildID int64) (*Account, error) {
	k := key(userID, guildID)
	if a, ok := f.accounts[k]; ok {
		return a, nil
	}
	a := &Account{
		UserID:      userID,
		GuildID:     guildID,
		Coins:       f.starting,
		TotalEarned: f.starting,
		CreatedAt:   f.now,
		UpdatedAt:   f.now,
	}
	f.accounts[k] = a
	return a, nil
}

func (f *fakeStore) GetAccount(_ context.Context, userID, guildID int64) (*Account, error) {
	if a, ok := f.accounts[key(userID, guildID)]; ok {
		return a, nil
	}
	return nil, common.ErrAccountNotFound
}

func (f *fakeStore) ApplyDelta(_ context.Context, userID, guildID int64, deltas map[Field]int64) error {
	a, ok := f.accounts[key(userID, guildID)]
	if !ok {
		return common.ErrAccountNotFound
	}
	for field, delta := range deltas {
		switch field {
		case FieldCoins:
			a.Coins += delta
		case FieldGoodDeedPoints:
			a.GoodDeedPoints += delta
		case FieldTotalEarned:
			a.TotalEarned += delta
		case FieldTotalSpent:
			a.TotalSpent += delta
		case FieldTotalDonated:
			a.TotalDonated += delta
		case FieldDailyStreak:
			a.DailyStreak += delta
		case FieldGamesPlayed:
			a.GamesPlayed += delta
		case FieldQuizzesCompleted:
			a.QuizzesCompleted += delta
		case FieldTotalLearningTime:
			a.TotalLearningTime += delta
		default:
			return fmt.Errorf("%w: %s", common.ErrUnknownStat, field)
		}
	}
	return nil
}

func (f *fakeStore) log(userID, guildID int64, kind string, amount int64, source, description string) {
	f.transactions = append(f.transactions, &Transaction{
		ID:          int64(len(f.transactions) + 1),
		UserID:      userID,
		GuildID:     guildID,
		Kind:        kind,
		Amount:      amount,
		Source:      source,
		Description: description,
		CreatedAt:   f.now,
	})
}

func (f *fakeStore) AddBalance(_ context.Context, userID, guildID, amount int64, source, description string) error {
	a, ok := f.accounts[key(userID, guildID)]
	if !ok {
		return common.ErrAccountNotFound
	}
	a.Coins += amount
	a.TotalEarned += amount
	f.log(userID, guildID, KindEarn, amount, source, description)
	return nil
}

func (f *fakeStore) DeductBalance(_ context.Context, userID, guildID, amount int64, source, description string) error {
	a, ok := f.accounts[key(userID, guildID)]
	if !ok {
		return common.ErrAccountNotFound
	}
	if a.Coins < amount {
		return common.ErrInsufficientBalance
	}
	a.Coins -= amount
	a.TotalSpent += amount
	f.log(userID, guildID, KindSpend, -amount, source, description)
	return nil
}

func (f *fakeStore) ClaimDaily(_ context.Context, userID, guildID int64, now time.Time, cfg DailyConfig) (*DailyReward, error) {
	a, ok := f.accounts[key(userID, guildID)]
	if !ok {
		return nil, common.ErrAccountNotFound
	}
	reward, err := ComputeDailyReward(a.DailyStreak, a.LastDaily, now, cfg)
	if err != nil {
		return nil, err
	}
	a.DailyStreak = reward.Streak
	claimed := now
	a.LastDaily = &claimed
	a.Coins += reward.Total
	a.TotalEarned += reward.Total
	f.log(userID, guildID, KindEarn, reward.Total, SourceDailyReward, fmt.Sprintf("Daily reward - Day %d", reward.Streak))
	return reward, nil
}

func (f *fakeStore) Leaderboard(_ context.Context, guildID int64, metric LeaderboardMetric, limit int) ([]*Account, error) {
	var out []*Account
	for _, a := range f.accounts {
		if a.GuildID == guildID {
			out = append(out, a)
		}
	}
	// Тестам сервиса порядок не важен, сортирует SQL
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) LatestTransactions(_ context.Context, userID, guildID int64, source string, limit int) ([]*Transaction, error) {
	var out []*Transaction
	for i := len(f.transactions) - 1; i >= 0 && len(out) < limit; i-- {
		t := f.transactions[i]
		if t.UserID != userID || t.GuildID != guildID {
			continue
		}
		if source != "" && t.Source != source {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func testConfig() *config.Config {
	return &config.Config{
		EconomyStartingBalance: 100,
		TransferEnabled:        true,
		TransferMinAmount:      10,
		TransferMaxAmount:      1000,
		DailyBaseReward:        50,
		DailyStreakBonus:       10,
		DailyMaxStreakDays:     7,
		DailyWeeklyBonus:       100,
		WorkMinReward:          25,
		WorkMaxReward:          100,
		WorkCooldownHours:      6,
		DonationMinAmount:      10,
		DonationMaxAmount:      10000,
		DonationGDPRatio:       20,
	}
}

func newTestService(store *fakeStore, cfg *config.Config) *Service {
	s := NewService(store, cfg)
	s.nowFn = func() time.Time { return store.now }
	s.randFn = func(max int64) int64 { return 0 }
	return s
}

func TestGetAccount_CreatesWithDefaults(t *testing.T) {
	store := newFakeStore()
	s := newTestService(store, testConfig())

	account, err := s.GetAccount(context.Background(), 1, 10)
	require.NoError(t, err)

	assert.Equal(t, int64(100), account.Coins)
	assert.Equal(t, int64(100), account.TotalEarned)
	assert.Equal(t, int64(0), account.TotalSpent)
	assert.Equal(t, int64(0), account.DailyStreak)
	assert.Nil(t, account.LastDaily)
}

func TestAddCoins_UpdatesBalanceAndLifetime(t *testing.T) {
	store := newFakeStore()
	s := newTestService(store, testConfig())
	ctx := context.Background()

	require.NoError(t, s.AddCoins(ctx, 1, 10, 250, SourceAdminGive, "test"))

	account, err := s.GetAccount(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(350), account.Coins)
	assert.Equal(t, int64(350), account.TotalEarned)

	require.Len(t, store.transactions, 1)
	assert.Equal(t, KindEarn, store.transactions[0].Kind)
	assert.Equal(t, int64(250), store.transactions[0].Amount)
}

func TestAddCoins_RejectsNonPositive(t *testing.T) {
	store := newFakeStore()
	s := newTestService(store, testConfig())

	err := s.AddCoins(context.Background(), 1, 10, 0, SourceAdminGive, "test")
	assert.ErrorIs(t, err, common.ErrInvalidAmount)
	assert.Empty(t, store.transactions)
}

func TestRemoveCoins_InsufficientBalance(t *testing.T) {
	store := newFakeStore()
	s := newTestService(store, testConfig())
	ctx := context.Background()

	err := s.RemoveCoins(ctx, 1, 10, 150, SourceAdminTake, "test")
	assert.ErrorIs(t, err, common.ErrInsufficientBalance)

	// Баланс не изменился
	account, err := s.GetAccount(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(100), account.Coins)
}

func TestRemoveCoins_UpdatesSpent(t *testing.T) {
	store := newFakeStore()
	s := newTestService(store, testConfig())
	ctx := context.Background()

	require.NoError(t, s.RemoveCoins(ctx, 1, 10, 40, SourceAdminTake, "test"))

	account, err := s.GetAccount(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(60), account.Coins)
	assert.Equal(t, int64(40), account.TotalSpent)
	assert.Equal(t, int64(100), account.TotalEarned)
}

func TestTransferCoins_MovesBalance(t *testing.T) {
	store := newFakeStore()
	s := newTestService(store, testConfig())
	ctx := context.Background()

	require.NoError(t, s.TransferCoins(ctx, 1, 2, 10, 50))

	from, _ := s.GetAccount(ctx, 1, 10)
	to, _ := s.GetAccount(ctx, 2, 10)
	assert.Equal(t, int64(50), from.Coins)
	assert.Equal(t, int64(150), to.Coins)
	assert.Equal(t, int64(150), to.TotalEarned)

	// Два журнальных события: исходящее и входящее
	require.Len(t, store.transactions, 2)
	assert.Equal(t, SourceTransferOut, store.transactions[0].Source)
	assert.Equal(t, SourceTransferIn, store.transactions[1].Source)
}

func TestTransferCoins_Validation(t *testing.T) {
	store := newFakeStore()
	cfg := testConfig()
	s := newTestService(store, cfg)
	ctx := context.Background()

	assert.ErrorIs(t, s.TransferCoins(ctx, 1, 1, 10, 50), common.ErrSelfTransfer)
	assert.ErrorIs(t, s.TransferCoins(ctx, 1, 2, 10, 9), common.ErrTransferOutOfBounds)
	assert.ErrorIs(t, s.TransferCoins(ctx, 1, 2, 10, 1001), common.ErrTransferOutOfBounds)

	cfg.TransferEnabled = false
	assert.ErrorIs(t, s.TransferCoins(ctx, 1, 2, 10, 50), common.ErrTransfersDisabled)
}

func TestTransferCoins_InsufficientSenderBalance(t *testing.T) {
	store := newFakeStore()
	s := newTestService(store, testConfig())
	ctx := context.Background()

	err := s.TransferCoins(ctx, 1, 2, 10, 500)
	assert.ErrorIs(t, err, common.ErrInsufficientBalance)

	// Получатель ничего не получил
	to, _ := s.GetAccount(ctx, 2, 10)
	assert.Equal(t, int64(100), to.Coins)
}

func TestClaimDailyReward_GuardsSecondClaim(t *testing.T) {
	store := newFakeStore()
	s := newTestService(store, testConfig())
	ctx := context.Background()

	reward, err := s.ClaimDailyReward(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), reward.Streak)
	assert.Equal(t, int64(60), reward.Total)

	_, err = s.ClaimDailyReward(ctx, 1, 10)
	assert.ErrorIs(t, err, common.ErrDailyAlreadyClaimed)

	// Спустя сутки серия продолжается
	store.now = store.now.Add(24 * time.Hour)
	reward, err = s.ClaimDailyReward(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), reward.Streak)
}

func TestWork_RewardWithinBounds(t *testing.T) {
	store := newFakeStore()
	s := newTestService(store, testConfig())
	ctx := context.Background()

	result, err := s.Work(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(25), result.Amount) // randFn всегда 0 → минимум
	assert.NotEmpty(t, result.Job)

	account, _ := s.GetAccount(ctx, 1, 10)
	assert.Equal(t, int64(125), account.Coins)
}

func TestWork_Cooldown(t *testing.T) {
	store := newFakeStore()
	s := newTestService(store, testConfig())
	ctx := context.Background()

	_, err := s.Work(ctx, 1, 10)
	require.NoError(t, err)

	_, err = s.Work(ctx, 1, 10)
	assert.ErrorIs(t, err, common.ErrWorkCooldown)

	// После перезарядки снова можно
	store.now = store.now.Add(6 * time.Hour)
	_, err = s.Work(ctx, 1, 10)
	assert.NoError(t, err)
}

func TestDonate_AwardsGoodDeedPoints(t *testing.T) {
	store := newFakeStore()
	s := newTestService(store, testConfig())
	ctx := context.Background()

	result, err := s.Donate(ctx, 1, 10, 100, "charity")
	require.NoError(t, err)
	assert.Equal(t, int64(100), result.Amount)
	assert.Equal(t, int64(5), result.GoodDeedPoints) // 100 / 20

	account, _ := s.GetAccount(ctx, 1, 10)
	assert.Equal(t, int64(0), account.Coins)
	assert.Equal(t, int64(100), account.TotalSpent)
	assert.Equal(t, int64(100), account.TotalDonated)
	assert.Equal(t, int64(5), account.GoodDeedPoints)
}

func TestDonate_Bounds(t *testing.T) {
	store := newFakeStore()
	s := newTestService(store, testConfig())
	ctx := context.Background()

	_, err := s.Donate(ctx, 1, 10, 5, "charity")
	assert.ErrorIs(t, err, common.ErrDonationOutOfBounds)

	_, err = s.Donate(ctx, 1, 10, 10001, "charity")
	assert.ErrorIs(t, err, common.ErrDonationOutOfBounds)
}

func TestIncrementStat_KnownStat(t *testing.T) {
	store := newFakeStore()
	s := newTestService(store, testConfig())
	ctx := context.Background()

	require.NoError(t, s.IncrementStat(ctx, 1, 10, "quizzes_completed", 3))

	account, _ := s.GetAccount(ctx, 1, 10)
	assert.Equal(t, int64(3), account.QuizzesCompleted)
}

func TestIncrementStat_UnknownStatIsNoop(t *testing.T) {
	store := newFakeStore()
	s := newTestService(store, testConfig())
	ctx := context.Background()

	// Неизвестный счётчик — предупреждение в лог, не ошибка
	require.NoError(t, s.IncrementStat(ctx, 1, 10, "ilm_coins", 500))
	require.NoError(t, s.IncrementStat(ctx, 1, 10, "no_such_stat", 1))

	// Счёт не тронут и даже не создан
	_, err := store.GetAccount(ctx, 1, 10)
	assert.ErrorIs(t, err, common.ErrAccountNotFound)
}

func TestHistory_NewestFirst(t *testing.T) {
	store := newFakeStore()
	s := newTestService(store, testConfig())
	ctx := context.Background()

	require.NoError(t, s.AddCoins(ctx, 1, 10, 50, SourceAdminGive, "first"))
	require.NoError(t, s.AddCoins(ctx, 1, 10, 60, SourceAdminGive, "second"))

	history, err := s.History(ctx, 1, 10, 10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "second", history[0].Description)
	assert.Equal(t, "first", history[1].Description)
}
