// Package economy — repository.go выполняет все операции с таблицами users и transactions.
// Все денежные операции выполняются в транзакциях БД для целостности данных:
// изменение баланса и запись в журнал либо происходят вместе, либо не происходят вовсе.
//
// Гонки закрыты на уровне SQL:
//   - создание счёта: INSERT ... ON CONFLICT DO NOTHING + повторное чтение;
//   - списание: условный UPDATE ... WHERE ilm_coins >= сумма (проверяем число строк);
//   - ежедневная награда: SELECT ... FOR UPDATE внутри одной транзакции.
package economy

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ilmgarden.ru/discord-bot/internal/common"
)

const accountColumns = `user_id, guild_id, ilm_coins, good_deed_points, total_earned,
	       total_spent, total_donated, daily_streak, last_daily, games_played,
	       quizzes_completed, total_learning_time, created_at, updated_at`

// Repository предоставляет методы для работы со счетами и журналом транзакций.
type Repository struct {
	db              *pgxpool.Pool
	startingBalance int64
}

// NewRepository создаёт новый репозиторий экономики.
// startingBalance — баланс, с которым создаётся новый счёт (по умолчанию 100).
func NewRepository(db *pgxpool.Pool, startingBalance int64) *Repository {
	return &Repository{db: db, startingBalance: startingBalance}
}

// scanAccount читает счёт из строки результата.
func scanAccount(row pgx.Row) (*Account, error) {
	var a Account
	err := row.Scan(
		&a.UserID, &a.GuildID, &a.Coins, &a.GoodDeedPoints, &a.TotalEarned,
		&a.TotalSpent, &a.TotalDonated, &a.DailyStreak, &a.LastDaily, &a.GamesPlayed,
		&a.QuizzesCompleted, &a.TotalLearningTime, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// EnsureAccount возвращает счёт пользователя, создавая его при первом обращении.
// Новый счёт получает стартовый баланс и такой же total_earned.
// Конкурентное первое обращение безопасно: дубликат вставки гасится
// ON CONFLICT DO NOTHING, после чего строка перечитывается.
func (r *Repository) EnsureAccount(ctx context.Context, userID, guildID int64) (*Account, error) {
	_, err := r.db.Exec(ctx, `
		INSERT INTO users (user_id, guild_id, ilm_coins, total_earned)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (user_id, guild_id) DO NOTHING
	`, userID, guildID, r.startingBalance)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания счёта: %w", err)
	}
	return r.GetAccount(ctx, userID, guildID)
}

// GetAccount возвращает существующий счёт без создания.
func (r *Repository) GetAccount(ctx context.Context, userID, guildID int64) (*Account, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+accountColumns+`
		FROM users
		WHERE user_id = $1 AND guild_id = $2
	`, userID, guildID)
	account, err := scanAccount(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, common.ErrAccountNotFound
		}
		return nil, fmt.Errorf("ошибка чтения счёта: %w", err)
	}
	return account, nil
}

// ApplyDelta атомарно прибавляет дельты к полям счёта из белого списка.
// Поля вне deltaColumns отклоняются ошибкой — никакой динамики имён
// колонок от вызывающего кода. Если счёта нет — common.ErrAccountNotFound
// (вызывающий обязан сначала вызвать EnsureAccount).
func (r *Repository) ApplyDelta(ctx context.Context, userID, guildID int64, deltas map[Field]int64) error {
	if len(deltas) == 0 {
		return nil
	}

	// Детерминированный порядок колонок, чтобы запрос был стабильным
	fields := make([]Field, 0, len(deltas))
	for f := range deltas {
		if _, ok := deltaColumns[f]; !ok {
			return fmt.Errorf("%w: %s", common.ErrUnknownStat, f)
		}
		fields = append(fields, f)
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i] < fields[j] })

	var sets []string
	args := []any{userID, guildID}
	for _, f := range fields {
		col := deltaColumns[f]
		args = append(args, deltas[f])
		sets = append(sets, fmt.Sprintf("%s = %s + $%d", col, col, len(args)))
	}
	sets = append(sets, "updated_at = NOW()")

	query := fmt.Sprintf(
		"UPDATE users SET %s WHERE user_id = $1 AND guild_id = $2",
		strings.Join(sets, ", "),
	)
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("ошибка обновления счёта: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrAccountNotFound
	}
	return nil
}

// AddBalance добавляет монеты на счёт и пишет earn-транзакцию в журнал.
// Обновление баланса и запись журнала — одна транзакция БД.
func (r *Repository) AddBalance(ctx context.Context, userID, guildID, amount int64, source, description string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE users
		SET ilm_coins = ilm_coins + $3, total_earned = total_earned + $3, updated_at = NOW()
		WHERE user_id = $1 AND guild_id = $2
	`, userID, guildID, amount)
	if err != nil {
		return fmt.Errorf("ошибка начисления: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrAccountNotFound
	}

	// Записываем транзакцию в журнал (сумма со знаком +)
	_, err = tx.Exec(ctx, `
		INSERT INTO transactions (user_id, guild_id, type, amount, source, description)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, userID, guildID, KindEarn, amount, source, description)
	if err != nil {
		return fmt.Errorf("ошибка записи транзакции: %w", err)
	}

	return tx.Commit(ctx)
}

// DeductBalance списывает монеты со счёта и пишет spend-транзакцию.
// Проверка баланса и списание — ОДИН условный UPDATE: WHERE ilm_coins >= сумма.
// Ноль затронутых строк означает либо нехватку монет, либо отсутствие счёта —
// различаем повторным чтением внутри той же транзакции.
func (r *Repository) DeductBalance(ctx context.Context, userID, guildID, amount int64, source, description string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE users
		SET ilm_coins = ilm_coins - $3, total_spent = total_spent + $3, updated_at = NOW()
		WHERE user_id = $1 AND guild_id = $2 AND ilm_coins >= $3
	`, userID, guildID, amount)
	if err != nil {
		return fmt.Errorf("ошибка списания: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		err = tx.QueryRow(ctx,
			"SELECT EXISTS(SELECT 1 FROM users WHERE user_id = $1 AND guild_id = $2)",
			userID, guildID,
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("ошибка проверки счёта: %w", err)
		}
		if !exists {
			return common.ErrAccountNotFound
		}
		return common.ErrInsufficientBalance
	}

	// Записываем транзакцию в журнал (сумма со знаком -)
	_, err = tx.Exec(ctx, `
		INSERT INTO transactions (user_id, guild_id, type, amount, source, description)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, userID, guildID, KindSpend, -amount, source, description)
	if err != nil {
		return fmt.Errorf("ошибка записи транзакции: %w", err)
	}

	return tx.Commit(ctx)
}

// ClaimDaily выполняет получение ежедневной награды одной транзакцией БД.
// Строка счёта блокируется FOR UPDATE: два конкурентных запроса одного
// пользователя не пройдут через 20-часовую защиту одновременно.
// Расчёт делает чистая функция ComputeDailyReward.
func (r *Repository) ClaimDaily(ctx context.Context, userID, guildID int64, now time.Time, cfg DailyConfig) (*DailyReward, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	var prevStreak int64
	var lastDaily *time.Time
	err = tx.QueryRow(ctx, `
		SELECT daily_streak, last_daily FROM users
		WHERE user_id = $1 AND guild_id = $2
		FOR UPDATE
	`, userID, guildID).Scan(&prevStreak, &lastDaily)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, common.ErrAccountNotFound
		}
		return nil, fmt.Errorf("ошибка чтения счёта: %w", err)
	}

	reward, err := ComputeDailyReward(prevStreak, lastDaily, now, cfg)
	if err != nil {
		// 20-часовая защита: без изменений
		return nil, err
	}

	// Серия, отметка времени и начисление — одним обновлением
	_, err = tx.Exec(ctx, `
		UPDATE users
		SET daily_streak = $3, last_daily = $4,
		    ilm_coins = ilm_coins + $5, total_earned = total_earned + $5,
		    updated_at = NOW()
		WHERE user_id = $1 AND guild_id = $2
	`, userID, guildID, reward.Streak, now, reward.Total)
	if err != nil {
		return nil, fmt.Errorf("ошибка начисления награды: %w", err)
	}

	description := fmt.Sprintf("Daily reward - Day %d", reward.Streak)
	_, err = tx.Exec(ctx, `
		INSERT INTO transactions (user_id, guild_id, type, amount, source, description)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, userID, guildID, KindEarn, reward.Total, SourceDailyReward, description)
	if err != nil {
		return nil, fmt.Errorf("ошибка записи транзакции: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("ошибка фиксации транзакции: %w", err)
	}
	return reward, nil
}

// Leaderboard возвращает топ счетов сервера по выбранной метрике.
// Сортировка детерминирована: при равенстве метрики — по user_id.
func (r *Repository) Leaderboard(ctx context.Context, guildID int64, metric LeaderboardMetric, limit int) ([]*Account, error) {
	col, ok := metricColumns[metric]
	if !ok {
		col = metricColumns[MetricCoins]
	}

	query := fmt.Sprintf(`
		SELECT `+accountColumns+`
		FROM users
		WHERE guild_id = $1
		ORDER BY %s DESC, user_id ASC
		LIMIT $2
	`, col)
	rows, err := r.db.Query(ctx, query, guildID, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения лидерборда: %w", err)
	}
	defer rows.Close()

	var accounts []*Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования счёта: %w", err)
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

// LatestTransactions возвращает последние N транзакций счёта, новые первыми.
// Пустой source означает «без фильтра по источнику». Используется для истории
// и для перезарядок (например, время последней работы — последняя work-запись).
func (r *Repository) LatestTransactions(ctx context.Context, userID, guildID int64, source string, limit int) ([]*Transaction, error) {
	query := `
		SELECT id, user_id, guild_id, type, amount, source, description, created_at
		FROM transactions
		WHERE user_id = $1 AND guild_id = $2 AND ($3 = '' OR source = $3)
		ORDER BY created_at DESC, id DESC
		LIMIT $4
	`
	rows, err := r.db.Query(ctx, query, userID, guildID, source, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения транзакций: %w", err)
	}
	defer rows.Close()

	var transactions []*Transaction
	for rows.Next() {
		var t Transaction
		err := rows.Scan(
			&t.ID, &t.UserID, &t.GuildID, &t.Kind,
			&t.Amount, &t.Source, &t.Description, &t.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования транзакции: %w", err)
		}
		transactions = append(transactions, &t)
	}
	return transactions, rows.Err()
}
