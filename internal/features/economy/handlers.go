// Package economy — handlers.go обрабатывает команды экономики:
// !balance, !daily, !work, !transfer, !donate, !leaderboard, !history
// и админские !give / !take.
package economy

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"ilmgarden.ru/discord-bot/internal/common"
	"ilmgarden.ru/discord-bot/internal/config"
)

// Handler обрабатывает команды экономики.
type Handler struct {
	service *Service
	session *discordgo.Session
	cfg     *config.Config
}

// NewHandler создаёт обработчик экономики.
func NewHandler(service *Service, session *discordgo.Session, cfg *config.Config) *Handler {
	return &Handler{service: service, session: session, cfg: cfg}
}

// HandleBalance — команда !balance [@user]. Показывает баланс и счётчики.
func (h *Handler) HandleBalance(ctx context.Context, channelID string, userID, guildID int64, args []string) {
	targetID := userID
	if len(args) > 0 {
		id, err := common.ExtractUserID(args[0])
		if err != nil {
			h.sendMessage(channelID, "❌ Укажи пользователя упоминанием: `!balance @user`")
			return
		}
		targetID = id
	}

	account, err := h.service.GetAccount(ctx, targetID, guildID)
	if err != nil {
		log.WithError(err).Error("Ошибка получения баланса")
		h.sendMessage(channelID, "❌ Ошибка получения баланса")
		return
	}

	embed := &discordgo.MessageEmbed{
		Title: "💰 Баланс",
		Color: 0x2ecc71,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Монеты", Value: common.FormatCoins(account.Coins), Inline: true},
			{Name: "Очки добрых дел", Value: common.FormatNumber(account.GoodDeedPoints), Inline: true},
			{Name: "Всего заработано", Value: common.FormatNumber(account.TotalEarned), Inline: true},
			{Name: "Всего потрачено", Value: common.FormatNumber(account.TotalSpent), Inline: true},
			{Name: "Пожертвовано", Value: common.FormatNumber(account.TotalDonated), Inline: true},
			{Name: "Серия наград", Value: fmt.Sprintf("%d 🔥", account.DailyStreak), Inline: true},
		},
		Description: fmt.Sprintf("<@%d>", targetID),
	}
	h.sendEmbed(channelID, embed)
}

// HandleDaily — команда !daily. Выдаёт ежедневную награду с учётом серии.
func (h *Handler) HandleDaily(ctx context.Context, channelID string, userID, guildID int64) {
	reward, err := h.service.ClaimDailyReward(ctx, userID, guildID)
	if err != nil {
		if errors.Is(err, common.ErrDailyAlreadyClaimed) {
			account, aerr := h.service.GetAccount(ctx, userID, guildID)
			if aerr == nil && account.LastDaily != nil {
				h.sendMessage(channelID, fmt.Sprintf(
					"⏳ Награда уже получена. Возвращайся после %s UTC.",
					common.FormatDateTime(NextClaimAt(*account.LastDaily)),
				))
				return
			}
			h.sendMessage(channelID, "⏳ Награда уже получена, возвращайся позже.")
			return
		}
		log.WithError(err).Error("Ошибка выдачи ежедневной награды")
		h.sendMessage(channelID, "❌ Ошибка выдачи награды")
		return
	}

	lines := []string{
		fmt.Sprintf("💰 Базовая награда: **%s**", common.FormatNumber(reward.Base)),
		fmt.Sprintf("🔥 Бонус серии (день %d): **%s**", reward.Streak, common.FormatNumber(reward.StreakBonus)),
	}
	if reward.WeeklyBonus > 0 {
		lines = append(lines, fmt.Sprintf("🎁 Недельный бонус: **%s**", common.FormatNumber(reward.WeeklyBonus)))
	}
	lines = append(lines, "", fmt.Sprintf("Итого: **%s**", common.FormatCoins(reward.Total)))

	embed := &discordgo.MessageEmbed{
		Title:       "🌅 Ежедневная награда",
		Description: strings.Join(lines, "\n"),
		Color:       0xf1c40f,
	}
	h.sendEmbed(channelID, embed)
}

// HandleWork — команда !work. Случайная награда с перезарядкой.
func (h *Handler) HandleWork(ctx context.Context, channelID string, userID, guildID int64) {
	result, err := h.service.Work(ctx, userID, guildID)
	if err != nil {
		if errors.Is(err, common.ErrWorkCooldown) {
			h.sendMessage(channelID, fmt.Sprintf("⏳ %s", err.Error()))
			return
		}
		log.WithError(err).Error("Ошибка команды работы")
		h.sendMessage(channelID, "❌ Ошибка, попробуй позже")
		return
	}

	h.sendMessage(channelID, fmt.Sprintf(
		"🔨 You %s and earned **%s**!", result.Job, common.FormatCoins(result.Amount),
	))
}

// HandleTransfer — команда !transfer @user <amount>.
func (h *Handler) HandleTransfer(ctx context.Context, channelID string, userID, guildID int64, args []string) {
	if len(args) < 2 {
		h.sendMessage(channelID, "❌ Использование: `!transfer @user <сумма>`")
		return
	}

	toID, err := common.ExtractUserID(args[0])
	if err != nil {
		h.sendMessage(channelID, "❌ Укажи получателя упоминанием: `!transfer @user <сумма>`")
		return
	}
	amount, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil || amount <= 0 {
		h.sendMessage(channelID, "❌ Сумма должна быть положительным числом")
		return
	}

	if err := h.service.TransferCoins(ctx, userID, toID, guildID, amount); err != nil {
		switch {
		case errors.Is(err, common.ErrTransfersDisabled):
			h.sendMessage(channelID, "❌ Переводы временно отключены")
		case errors.Is(err, common.ErrSelfTransfer):
			h.sendMessage(channelID, "❌ Нельзя переводить монеты самому себе")
		case errors.Is(err, common.ErrTransferOutOfBounds):
			h.sendMessage(channelID, fmt.Sprintf(
				"❌ Сумма перевода: от %s до %s",
				common.FormatNumber(h.cfg.TransferMinAmount),
				common.FormatNumber(h.cfg.TransferMaxAmount),
			))
		case errors.Is(err, common.ErrInsufficientBalance):
			h.sendMessage(channelID, "❌ Недостаточно монет")
		default:
			log.WithError(err).Error("Ошибка перевода")
			h.sendMessage(channelID, "❌ Ошибка перевода, попробуй позже")
		}
		return
	}

	h.sendMessage(channelID, fmt.Sprintf(
		"✅ <@%d> перевёл **%s** пользователю <@%d>",
		userID, common.FormatCoins(amount), toID,
	))
}

// HandleDonate — команда !donate <amount> [cause].
func (h *Handler) HandleDonate(ctx context.Context, channelID string, userID, guildID int64, args []string) {
	if len(args) < 1 {
		h.sendMessage(channelID, "❌ Использование: `!donate <сумма> [цель]`")
		return
	}
	amount, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || amount <= 0 {
		h.sendMessage(channelID, "❌ Сумма должна быть положительным числом")
		return
	}
	cause := "charity"
	if len(args) > 1 {
		cause = strings.Join(args[1:], " ")
	}

	result, err := h.service.Donate(ctx, userID, guildID, amount, cause)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrDonationOutOfBounds):
			h.sendMessage(channelID, fmt.Sprintf(
				"❌ Сумма пожертвования: от %s до %s",
				common.FormatNumber(h.cfg.DonationMinAmount),
				common.FormatNumber(h.cfg.DonationMaxAmount),
			))
		case errors.Is(err, common.ErrInsufficientBalance):
			h.sendMessage(channelID, "❌ Недостаточно монет")
		default:
			log.WithError(err).Error("Ошибка пожертвования")
			h.sendMessage(channelID, "❌ Ошибка, попробуй позже")
		}
		return
	}

	msg := fmt.Sprintf("💝 <@%d> пожертвовал **%s** (%s)", userID, common.FormatCoins(result.Amount), cause)
	if result.GoodDeedPoints > 0 {
		msg += fmt.Sprintf("\n🌟 +%s очков добрых дел", common.FormatNumber(result.GoodDeedPoints))
	}
	h.sendMessage(channelID, msg)
}

// HandleLeaderboard — команда !leaderboard [coins|gdp|earned].
func (h *Handler) HandleLeaderboard(ctx context.Context, channelID string, guildID int64, args []string) {
	metric := MetricCoins
	if len(args) > 0 {
		switch strings.ToLower(args[0]) {
		case "gdp", "good", "deeds":
			metric = MetricGoodDeeds
		case "earned", "total":
			metric = MetricTotalEarned
		}
	}

	accounts, err := h.service.Leaderboard(ctx, guildID, metric, 10)
	if err != nil {
		log.WithError(err).Error("Ошибка получения лидерборда")
		h.sendMessage(channelID, "❌ Ошибка получения таблицы лидеров")
		return
	}
	if len(accounts) == 0 {
		h.sendMessage(channelID, "📊 Таблица лидеров пока пуста")
		return
	}

	titles := map[LeaderboardMetric]string{
		MetricCoins:       "💰 Топ по монетам",
		MetricGoodDeeds:   "🌟 Топ по очкам добрых дел",
		MetricTotalEarned: "📈 Топ по заработку",
	}
	medals := []string{"🥇", "🥈", "🥉"}

	var sb strings.Builder
	for i, account := range accounts {
		rank := fmt.Sprintf("%d.", i+1)
		if i < len(medals) {
			rank = medals[i]
		}
		var value int64
		switch metric {
		case MetricGoodDeeds:
			value = account.GoodDeedPoints
		case MetricTotalEarned:
			value = account.TotalEarned
		default:
			value = account.Coins
		}
		fmt.Fprintf(&sb, "%s <@%d> — **%s**\n", rank, account.UserID, common.FormatNumber(value))
	}

	embed := &discordgo.MessageEmbed{
		Title:       titles[metric],
		Description: sb.String(),
		Color:       0x3498db,
	}
	h.sendEmbed(channelID, embed)
}

// HandleHistory — команда !history. Последние 10 транзакций.
func (h *Handler) HandleHistory(ctx context.Context, channelID string, userID, guildID int64) {
	transactions, err := h.service.History(ctx, userID, guildID, 10)
	if err != nil {
		log.WithError(err).Error("Ошибка получения истории")
		h.sendMessage(channelID, "❌ Ошибка получения истории")
		return
	}
	if len(transactions) == 0 {
		h.sendMessage(channelID, "📋 История транзакций пуста")
		return
	}

	var sb strings.Builder
	for _, t := range transactions {
		sign := "+"
		if t.Amount < 0 {
			sign = ""
		}
		fmt.Fprintf(&sb, "`%s` %s%s — %s\n",
			common.FormatDateTime(t.CreatedAt), sign,
			common.FormatNumber(t.Amount), t.Description,
		)
	}

	embed := &discordgo.MessageEmbed{
		Title:       "📋 Последние транзакции",
		Description: sb.String(),
		Color:       0x95a5a6,
	}
	h.sendEmbed(channelID, embed)
}

// HandleGive — админская команда !give @user <amount>.
func (h *Handler) HandleGive(ctx context.Context, channelID string, adminID, guildID int64, args []string) {
	if !h.cfg.IsAdmin(adminID) {
		h.sendMessage(channelID, "❌ Команда доступна только администраторам")
		return
	}
	targetID, amount, ok := h.parseUserAmount(channelID, args, "!give")
	if !ok {
		return
	}

	description := fmt.Sprintf("Admin grant by <@%d>", adminID)
	if err := h.service.AddCoins(ctx, targetID, guildID, amount, SourceAdminGive, description); err != nil {
		log.WithError(err).Error("Ошибка админской выдачи")
		h.sendMessage(channelID, "❌ Ошибка выдачи монет")
		return
	}
	h.sendMessage(channelID, fmt.Sprintf("✅ Выдано **%s** пользователю <@%d>", common.FormatCoins(amount), targetID))
}

// HandleTake — админская команда !take @user <amount>.
func (h *Handler) HandleTake(ctx context.Context, channelID string, adminID, guildID int64, args []string) {
	if !h.cfg.IsAdmin(adminID) {
		h.sendMessage(channelID, "❌ Команда доступна только администраторам")
		return
	}
	targetID, amount, ok := h.parseUserAmount(channelID, args, "!take")
	if !ok {
		return
	}

	description := fmt.Sprintf("Admin removal by <@%d>", adminID)
	if err := h.service.RemoveCoins(ctx, targetID, guildID, amount, SourceAdminTake, description); err != nil {
		if errors.Is(err, common.ErrInsufficientBalance) {
			h.sendMessage(channelID, "❌ У пользователя недостаточно монет")
			return
		}
		log.WithError(err).Error("Ошибка админского изъятия")
		h.sendMessage(channelID, "❌ Ошибка изъятия монет")
		return
	}
	h.sendMessage(channelID, fmt.Sprintf("✅ Изъято **%s** у пользователя <@%d>", common.FormatCoins(amount), targetID))
}

// parseUserAmount разбирает пару аргументов «@user сумма».
func (h *Handler) parseUserAmount(channelID string, args []string, usage string) (int64, int64, bool) {
	if len(args) < 2 {
		h.sendMessage(channelID, fmt.Sprintf("❌ Использование: `%s @user <сумма>`", usage))
		return 0, 0, false
	}
	targetID, err := common.ExtractUserID(args[0])
	if err != nil {
		h.sendMessage(channelID, "❌ Укажи пользователя упоминанием")
		return 0, 0, false
	}
	amount, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil || amount <= 0 {
		h.sendMessage(channelID, "❌ Сумма должна быть положительным числом")
		return 0, 0, false
	}
	return targetID, amount, true
}

func (h *Handler) sendMessage(channelID, text string) {
	if _, err := h.session.ChannelMessageSend(channelID, text); err != nil {
		log.WithError(err).WithField("channel_id", channelID).Error("Ошибка отправки сообщения")
	}
}

func (h *Handler) sendEmbed(channelID string, embed *discordgo.MessageEmbed) {
	if _, err := h.session.ChannelMessageSendEmbed(channelID, embed); err != nil {
		log.WithError(err).WithField("channel_id", channelID).Error("Ошибка отправки сообщения")
	}
}
