// Package achievements — repository.go работает с таблицей user_achievements.
package achievements

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository хранит выданные достижения.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт репозиторий достижений.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Granted возвращает множество ID достижений, уже выданных пользователю.
func (r *Repository) Granted(ctx context.Context, userID, guildID int64) (map[string]bool, error) {
	rows, err := r.db.Query(ctx, `
		SELECT achievement_id FROM user_achievements
		WHERE user_id = $1 AND guild_id = $2
	`, userID, guildID)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения достижений: %w", err)
	}
	defer rows.Close()

	granted := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("ошибка сканирования достижения: %w", err)
		}
		granted[id] = true
	}
	return granted, rows.Err()
}

// GrantedList возвращает выданные достижения с датами, новые первыми.
func (r *Repository) GrantedList(ctx context.Context, userID, guildID int64) ([]*UserAchievement, error) {
	rows, err := r.db.Query(ctx, `
		SELECT user_id, guild_id, achievement_id, earned_at
		FROM user_achievements
		WHERE user_id = $1 AND guild_id = $2
		ORDER BY earned_at DESC
	`, userID, guildID)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения достижений: %w", err)
	}
	defer rows.Close()

	var list []*UserAchievement
	for rows.Next() {
		var ua UserAchievement
		if err := rows.Scan(&ua.UserID, &ua.GuildID, &ua.AchievementID, &ua.EarnedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования достижения: %w", err)
		}
		list = append(list, &ua)
	}
	return list, rows.Err()
}

// Award записывает выдачу достижения. Повторная выдача глушится
// ON CONFLICT DO NOTHING: уникальность пары (user, achievement)
// гарантирует составной первичный ключ. Возвращает true, если запись
// действительно создана (именно этот вызов выдал достижение).
func (r *Repository) Award(ctx context.Context, userID, guildID int64, achievementID string) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		INSERT INTO user_achievements (user_id, guild_id, achievement_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, guild_id, achievement_id) DO NOTHING
	`, userID, guildID, achievementID)
	if err != nil {
		return false, fmt.Errorf("ошибка выдачи достижения: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
