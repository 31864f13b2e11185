// Package app инициализирует все компоненты приложения.
// app.go — точка сборки: создаёт БД-пул, сессию Discord, репозитории,
// сервисы, обработчики и собирает всё в один объект Bot.
package app

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"

	"ilmgarden.ru/discord-bot/internal/bot"
	"ilmgarden.ru/discord-bot/internal/config"
	"ilmgarden.ru/discord-bot/internal/db/postgres"
	"ilmgarden.ru/discord-bot/internal/features/achievements"
	"ilmgarden.ru/discord-bot/internal/features/content"
	"ilmgarden.ru/discord-bot/internal/features/economy"
	"ilmgarden.ru/discord-bot/internal/jobs"
)

// App содержит все компоненты приложения.
type App struct {
	Bot       *bot.Bot
	Scheduler *jobs.Scheduler
	DB        *pgxpool.Pool
	Session   *discordgo.Session
}

// New создаёт и инициализирует приложение.
// Порядок инициализации важен — компоненты зависят друг от друга.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// === 1. База данных ===
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к БД: %w", err)
	}

	// Запускаем миграции
	if err := runMigrations(ctx, pool); err != nil {
		return nil, fmt.Errorf("ошибка миграций: %w", err)
	}

	// === 2. Сессия Discord ===
	session, err := discordgo.New("Bot " + cfg.DiscordBotToken)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания сессии Discord: %w", err)
	}
	session.LogLevel = discordgo.LogWarning
	if cfg.AppEnv == "development" {
		session.LogLevel = discordgo.LogInformational
	}

	// === 3. Репозитории ===
	economyRepo := economy.NewRepository(pool, cfg.EconomyStartingBalance)
	achievementRepo := achievements.NewRepository(pool)
	contentRepo := content.NewRepository(pool)

	// === 4. Сервисы ===
	economyService := economy.NewService(economyRepo, cfg)
	achievementService := achievements.NewService(achievementRepo, economyService)
	contentService := content.NewService(contentRepo)

	// === 5. Обработчики ===
	economyHandler := economy.NewHandler(economyService, session, cfg)
	achievementHandler := achievements.NewHandler(achievementService, economyService, session)
	contentHandler := content.NewHandler(contentService, session, cfg)

	// === 6. Собираем бота ===
	b := bot.New(session, cfg, economyHandler, achievementHandler, contentHandler)

	// === 7. Планировщик задач ===
	scheduler := jobs.NewScheduler(cfg, contentService, b.SendQuote)

	return &App{
		Bot:       b,
		Scheduler: scheduler,
		DB:        pool,
		Session:   session,
	}, nil
}

// runMigrations выполняет все SQL-миграции.
func runMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	// Инициализируем систему миграций
	if err := postgres.InitMigrations(ctx, pool); err != nil {
		return err
	}

	// Выполняем миграции по порядку
	migrations := []struct {
		version int
		sql     string
	}{
		{1, migration001Users},
		{2, migration002Transactions},
		{3, migration003Achievements},
		{4, migration004GuildSettings},
	}

	for _, m := range migrations {
		if err := postgres.ExecMigrationSQL(ctx, pool, m.version, m.sql); err != nil {
			return fmt.Errorf("миграция %d: %w", m.version, err)
		}
		log.Infof("Миграция %d применена", m.version)
	}

	return nil
}

// SQL-миграции встроены в код для упрощения деплоя.

// Счета пользователей: одна запись на пару (user, guild).
// CHECK (ilm_coins >= 0) — последний рубеж против отрицательного баланса.
var migration001Users = `
CREATE TABLE IF NOT EXISTS users (
    user_id BIGINT NOT NULL,
    guild_id BIGINT NOT NULL,
    ilm_coins BIGINT NOT NULL DEFAULT 100 CHECK (ilm_coins >= 0),
    good_deed_points BIGINT NOT NULL DEFAULT 0,
    total_earned BIGINT NOT NULL DEFAULT 100,
    total_spent BIGINT NOT NULL DEFAULT 0,
    total_donated BIGINT NOT NULL DEFAULT 0,
    daily_streak BIGINT NOT NULL DEFAULT 0,
    last_daily TIMESTAMPTZ,
    games_played BIGINT NOT NULL DEFAULT 0,
    quizzes_completed BIGINT NOT NULL DEFAULT 0,
    total_learning_time BIGINT NOT NULL DEFAULT 0,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (user_id, guild_id)
);
CREATE INDEX IF NOT EXISTS idx_users_guild_coins ON users(guild_id, ilm_coins DESC);
CREATE INDEX IF NOT EXISTS idx_users_guild_gdp ON users(guild_id, good_deed_points DESC);
`

// Журнал транзакций: append-only, суммы со знаком.
var migration002Transactions = `
CREATE TABLE IF NOT EXISTS transactions (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL,
    guild_id BIGINT NOT NULL,
    type VARCHAR(16) NOT NULL,
    amount BIGINT NOT NULL,
    source VARCHAR(64) NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_transactions_user ON transactions(user_id, guild_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_transactions_source ON transactions(user_id, guild_id, source, created_at DESC);
`

// Выданные достижения. Составной первичный ключ гарантирует
// выдачу не больше одного раза на пользователя.
var migration003Achievements = `
CREATE TABLE IF NOT EXISTS user_achievements (
    user_id BIGINT NOT NULL,
    guild_id BIGINT NOT NULL,
    achievement_id VARCHAR(64) NOT NULL,
    earned_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (user_id, guild_id, achievement_id)
);
`

// Настройки серверов: канал ежедневного контента.
var migration004GuildSettings = `
CREATE TABLE IF NOT EXISTS guild_settings (
    guild_id BIGINT PRIMARY KEY,
    daily_content_channel_id BIGINT,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`
