// Package content — repository.go работает с таблицей guild_settings.
package content

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository хранит настройки публикации по серверам.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт репозиторий настроек контента.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// SetDailyChannel включает публикацию ежедневного контента в канал.
// Повторный вызов перезаписывает прежний канал (upsert).
func (r *Repository) SetDailyChannel(ctx context.Context, guildID, channelID int64) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO guild_settings (guild_id, daily_content_channel_id)
		VALUES ($1, $2)
		ON CONFLICT (guild_id) DO UPDATE SET
			daily_content_channel_id = EXCLUDED.daily_content_channel_id,
			updated_at = NOW()
	`, guildID, channelID)
	if err != nil {
		return fmt.Errorf("ошибка сохранения канала публикации: %w", err)
	}
	return nil
}

// ClearDailyChannel выключает публикацию для сервера.
func (r *Repository) ClearDailyChannel(ctx context.Context, guildID int64) error {
	_, err := r.db.Exec(ctx, `
		UPDATE guild_settings
		SET daily_content_channel_id = NULL, updated_at = NOW()
		WHERE guild_id = $1
	`, guildID)
	if err != nil {
		return fmt.Errorf("ошибка выключения публикации: %w", err)
	}
	return nil
}

// ConfiguredChannels возвращает все серверы с настроенным каналом публикации.
func (r *Repository) ConfiguredChannels(ctx context.Context) ([]*GuildSettings, error) {
	rows, err := r.db.Query(ctx, `
		SELECT guild_id, daily_content_channel_id, updated_at
		FROM guild_settings
		WHERE daily_content_channel_id IS NOT NULL
	`)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения настроек серверов: %w", err)
	}
	defer rows.Close()

	var list []*GuildSettings
	for rows.Next() {
		var gs GuildSettings
		if err := rows.Scan(&gs.GuildID, &gs.DailyContentChannelID, &gs.UpdatedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования настроек: %w", err)
		}
		list = append(list, &gs)
	}
	return list, rows.Err()
}
