// Package bot содержит главный модуль бота — инициализацию, запуск и остановку.
// bot.go подключает обработчики discordgo и маршрутизирует текстовые команды.
package bot

import (
	"context"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"ilmgarden.ru/discord-bot/internal/bot/middleware"
	"ilmgarden.ru/discord-bot/internal/common"
	"ilmgarden.ru/discord-bot/internal/config"
	"ilmgarden.ru/discord-bot/internal/features/achievements"
	"ilmgarden.ru/discord-bot/internal/features/content"
	"ilmgarden.ru/discord-bot/internal/features/economy"
)

// Bot — главная структура бота, объединяющая все компоненты.
type Bot struct {
	session *discordgo.Session
	cfg     *config.Config

	rateLimiter *middleware.RateLimiter

	economyHandler     *economy.Handler
	achievementHandler *achievements.Handler
	contentHandler     *content.Handler

	// ограничитель параллелизма обработки сообщений
	inflight chan struct{}

	// базовый контекст, живёт от Start до остановки процесса
	ctx context.Context
}

// New создаёт новый экземпляр бота со всеми зависимостями.
func New(
	session *discordgo.Session,
	cfg *config.Config,
	economyHandler *economy.Handler,
	achievementHandler *achievements.Handler,
	contentHandler *content.Handler,
) *Bot {
	return &Bot{
		session:            session,
		cfg:                cfg,
		rateLimiter:        middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow),
		economyHandler:     economyHandler,
		achievementHandler: achievementHandler,
		contentHandler:     contentHandler,
		inflight:           make(chan struct{}, 64),
	}
}

// Start открывает сессию Discord и начинает принимать события.
func (b *Bot) Start(ctx context.Context) error {
	b.ctx = ctx

	// Префиксные команды читаются из текста сообщений,
	// поэтому нужен привилегированный intent Message Content.
	b.session.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentMessageContent

	b.session.AddHandler(b.onMessageCreate)
	b.session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		log.WithField("username", r.User.Username).Info("Бот подключён к Discord")
	})

	if err := b.session.Open(); err != nil {
		return err
	}

	log.WithField("prefix", b.cfg.CommandPrefix).Info("Бот запущен и ожидает команды...")
	return nil
}

// Stop закрывает сессию и останавливает фоновые горутины.
func (b *Bot) Stop() {
	b.rateLimiter.Close()
	if err := b.session.Close(); err != nil {
		log.WithError(err).Error("Ошибка закрытия сессии Discord")
	}
	log.Info("Бот остановлен")
}

// onMessageCreate обрабатывает одно входящее сообщение.
func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	// лимит параллелизма
	b.inflight <- struct{}{}
	defer func() { <-b.inflight }()
	defer middleware.RecoverFromPanic()

	// Игнорируем ботов (включая себя) и сообщения вне серверов
	if m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return
	}
	if !strings.HasPrefix(m.Content, b.cfg.CommandPrefix) {
		return
	}

	middleware.LogMessage(m)

	userID, err := strconv.ParseInt(m.Author.ID, 10, 64)
	if err != nil {
		log.WithField("author_id", m.Author.ID).Warn("Некорректный ID пользователя")
		return
	}
	guildID, err := strconv.ParseInt(m.GuildID, 10, 64)
	if err != nil {
		log.WithField("guild_id", m.GuildID).Warn("Некорректный ID сервера")
		return
	}

	// Rate limiting
	if !b.rateLimiter.Allow(userID) {
		log.WithField("user_id", userID).Debug("rate limited")
		return
	}

	cmd, args := parseCommand(m.Content, b.cfg.CommandPrefix)
	if cmd == "" {
		return
	}

	log.WithFields(log.Fields{
		"cmd":  cmd,
		"args": args,
	}).Debug("routing command")

	b.routeCommand(b.ctx, m.ChannelID, userID, guildID, cmd, args)
}

// routeCommand маршрутизирует команду к нужному обработчику.
// После команд, меняющих счётчики, проверяются достижения.
func (b *Bot) routeCommand(ctx context.Context, channelID string, userID, guildID int64, cmd string, args []string) {
	switch cmd {
	case "help":
		b.sendHelp(channelID)

	case "balance", "bal":
		b.economyHandler.HandleBalance(ctx, channelID, userID, guildID, args)

	case "daily":
		b.economyHandler.HandleDaily(ctx, channelID, userID, guildID)
		b.achievementHandler.AnnounceNew(ctx, channelID, userID, guildID)

	case "work":
		b.economyHandler.HandleWork(ctx, channelID, userID, guildID)
		b.achievementHandler.AnnounceNew(ctx, channelID, userID, guildID)

	case "transfer":
		b.economyHandler.HandleTransfer(ctx, channelID, userID, guildID, args)
		b.achievementHandler.AnnounceNew(ctx, channelID, userID, guildID)
		// Получатель мог открыть достижение по total_earned
		if len(args) > 0 {
			if toID, err := common.ExtractUserID(args[0]); err == nil && toID != userID {
				b.achievementHandler.AnnounceNew(ctx, channelID, toID, guildID)
			}
		}

	case "donate":
		b.economyHandler.HandleDonate(ctx, channelID, userID, guildID, args)
		b.achievementHandler.AnnounceNew(ctx, channelID, userID, guildID)

	case "leaderboard", "top":
		b.economyHandler.HandleLeaderboard(ctx, channelID, guildID, args)

	case "history", "transactions":
		b.economyHandler.HandleHistory(ctx, channelID, userID, guildID)

	case "profile", "achievements":
		b.achievementHandler.HandleProfile(ctx, channelID, userID, guildID, args)

	case "give":
		b.economyHandler.HandleGive(ctx, channelID, userID, guildID, args)

	case "take":
		b.economyHandler.HandleTake(ctx, channelID, userID, guildID, args)

	case "setdailychannel":
		b.contentHandler.HandleSetDailyChannel(ctx, channelID, userID, guildID, args)

	case "stopdaily":
		b.contentHandler.HandleStopDaily(ctx, channelID, userID, guildID)

	case "triggerdaily":
		b.contentHandler.HandleTriggerDaily(ctx, channelID, userID)
	}
}

// sendHelp отправляет список команд.
func (b *Bot) sendHelp(channelID string) {
	p := b.cfg.CommandPrefix
	help := strings.Join([]string{
		"🌱 **Ilm Garden** — команды:",
		p + "balance [@user] — баланс и счётчики",
		p + "daily — ежедневная награда (серия даёт бонус)",
		p + "work — заработать монеты (раз в несколько часов)",
		p + "transfer @user <сумма> — перевод монет",
		p + "donate <сумма> [цель] — пожертвование (+очки добрых дел)",
		p + "leaderboard [coins|gdp|earned] — таблица лидеров",
		p + "history — последние транзакции",
		p + "profile [@user] — профиль и достижения",
		p + "setdailychannel [#канал] — канал ежедневного контента",
	}, "\n")
	if _, err := b.session.ChannelMessageSend(channelID, help); err != nil {
		log.WithError(err).WithField("channel_id", channelID).Error("Ошибка отправки сообщения")
	}
}

// SendQuote отдаёт функцию отправки цитат для планировщика.
func (b *Bot) SendQuote(channelID int64, quote content.Quote) error {
	return b.contentHandler.SendQuote(channelID, quote)
}

// parseCommand разбирает текст на команду и аргументы.
func parseCommand(text, prefix string) (string, []string) {
	text = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(text), prefix))
	parts := strings.Fields(text)
	if len(parts) == 0 {
		return "", nil
	}

	command := strings.ToLower(parts[0])
	var args []string
	if len(parts) > 1 {
		args = parts[1:]
	}
	return command, args
}
