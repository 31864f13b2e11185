// Package economy управляет виртуальной валютой Ilm Coins.
// models.go описывает структуры счёта и транзакций, а также
// закрытые перечисления полей для атомарных обновлений.
package economy

import "time"

// Account представляет счёт пользователя в рамках одного сервера.
// Каждая пара (user_id, guild_id) имеет ровно одну запись в таблице users.
type Account struct {
	UserID            int64      `db:"user_id"`             // Discord user ID
	GuildID           int64      `db:"guild_id"`            // Discord guild ID
	Coins             int64      `db:"ilm_coins"`           // Текущий баланс (никогда не отрицательный)
	GoodDeedPoints    int64      `db:"good_deed_points"`    // Очки добрых дел (не тратятся)
	TotalEarned       int64      `db:"total_earned"`        // Сколько всего заработано
	TotalSpent        int64      `db:"total_spent"`         // Сколько всего потрачено
	TotalDonated      int64      `db:"total_donated"`       // Сколько всего пожертвовано
	DailyStreak       int64      `db:"daily_streak"`        // Текущая серия ежедневных наград
	LastDaily         *time.Time `db:"last_daily"`          // Время последней ежедневной награды
	GamesPlayed       int64      `db:"games_played"`        // Сыграно игр
	QuizzesCompleted  int64      `db:"quizzes_completed"`   // Завершено викторин
	TotalLearningTime int64      `db:"total_learning_time"` // Время обучения (секунды)
	CreatedAt         time.Time  `db:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at"`
}

// StatValue возвращает значение поля счёта по имени требования ачивки.
// Покрывает оба пространства имён: экономика и активность.
// Неизвестное имя — (0, false): такое требование считается невыполненным.
func (a *Account) StatValue(name string) (int64, bool) {
	switch name {
	case "ilm_coins":
		return a.Coins, true
	case "good_deed_points":
		return a.GoodDeedPoints, true
	case "total_earned":
		return a.TotalEarned, true
	case "total_spent":
		return a.TotalSpent, true
	case "total_donated":
		return a.TotalDonated, true
	case "daily_streak":
		return a.DailyStreak, true
	case "games_played":
		return a.GamesPlayed, true
	case "quizzes_completed":
		return a.QuizzesCompleted, true
	case "total_learning_time":
		return a.TotalLearningTime, true
	}
	return 0, false
}

// Transaction представляет одну операцию с монетами.
// Все движения монет (награды, переводы, траты) записываются сюда.
// Журнал append-only: записи никогда не изменяются и не удаляются.
type Transaction struct {
	ID          int64     `db:"id"`
	UserID      int64     `db:"user_id"`
	GuildID     int64     `db:"guild_id"`
	Kind        string    `db:"type"`        // 'earn' или 'spend'
	Amount      int64     `db:"amount"`      // Со знаком: +N для earn, -N для spend
	Source      string    `db:"source"`      // Тег источника: daily_reward, work, transfer_out, ...
	Description string    `db:"description"` // Описание для отображения
	CreatedAt   time.Time `db:"created_at"`
}

// Виды транзакций
const (
	KindEarn  = "earn"  // Начисление
	KindSpend = "spend" // Списание
)

// Источники транзакций
const (
	SourceDailyReward = "daily_reward" // Ежедневная награда
	SourceWork        = "work"         // Команда работы
	SourceTransferIn  = "transfer_in"  // Входящий перевод
	SourceTransferOut = "transfer_out" // Исходящий перевод
	SourceAdminGive   = "admin_give"   // Выдача админом
	SourceAdminTake   = "admin_take"   // Изъятие админом
)

// Префиксы источников с параметром: donation_<cause>, achievement_<id>
const (
	SourceDonationPrefix    = "donation_"
	SourceAchievementPrefix = "achievement_"
)

// Field — обновляемое числовое поле счёта.
// Закрытое перечисление: ApplyDelta принимает ТОЛЬКО эти значения,
// никаких динамических имён колонок от вызывающего кода.
type Field string

const (
	FieldCoins             Field = "ilm_coins"
	FieldGoodDeedPoints    Field = "good_deed_points"
	FieldTotalEarned       Field = "total_earned"
	FieldTotalSpent        Field = "total_spent"
	FieldTotalDonated      Field = "total_donated"
	FieldDailyStreak       Field = "daily_streak"
	FieldGamesPlayed       Field = "games_played"
	FieldQuizzesCompleted  Field = "quizzes_completed"
	FieldTotalLearningTime Field = "total_learning_time"
)

// deltaColumns — белый список колонок для ApplyDelta.
// Ключ — Field, значение — имя колонки в таблице users.
var deltaColumns = map[Field]string{
	FieldCoins:             "ilm_coins",
	FieldGoodDeedPoints:    "good_deed_points",
	FieldTotalEarned:       "total_earned",
	FieldTotalSpent:        "total_spent",
	FieldTotalDonated:      "total_donated",
	FieldDailyStreak:       "daily_streak",
	FieldGamesPlayed:       "games_played",
	FieldQuizzesCompleted:  "quizzes_completed",
	FieldTotalLearningTime: "total_learning_time",
}

// statFields — белый список счётчиков для IncrementStat.
// Отдельный от deltaColumns: через IncrementStat внешний код может
// трогать только счётчики активности и очки добрых дел, но не баланс.
var statFields = map[string]Field{
	"games_played":        FieldGamesPlayed,
	"quizzes_completed":   FieldQuizzesCompleted,
	"total_learning_time": FieldTotalLearningTime,
	"daily_streak":        FieldDailyStreak,
	"good_deed_points":    FieldGoodDeedPoints,
}

// LeaderboardMetric — метрика сортировки таблицы лидеров.
type LeaderboardMetric string

const (
	MetricCoins       LeaderboardMetric = "coins"
	MetricGoodDeeds   LeaderboardMetric = "gdp"
	MetricTotalEarned LeaderboardMetric = "earned"
)

// metricColumns — белый список колонок для сортировки лидерборда.
var metricColumns = map[LeaderboardMetric]string{
	MetricCoins:       "ilm_coins",
	MetricGoodDeeds:   "good_deed_points",
	MetricTotalEarned: "total_earned",
}
