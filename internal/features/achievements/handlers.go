// Package achievements — handlers.go обрабатывает команду !profile
// и объявляет новые достижения после экономических команд.
package achievements

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"ilmgarden.ru/discord-bot/internal/common"
)

// Handler обрабатывает команды достижений.
type Handler struct {
	service *Service
	ledger  Ledger
	session *discordgo.Session
}

// NewHandler создаёт обработчик достижений.
func NewHandler(service *Service, ledger Ledger, session *discordgo.Session) *Handler {
	return &Handler{service: service, ledger: ledger, session: session}
}

// HandleProfile — команда !profile [@user]. Профиль со статистикой
// и полученными достижениями.
func (h *Handler) HandleProfile(ctx context.Context, channelID string, userID, guildID int64, args []string) {
	targetID := userID
	if len(args) > 0 {
		id, err := common.ExtractUserID(args[0])
		if err != nil {
			h.sendMessage(channelID, "❌ Укажи пользователя упоминанием: `!profile @user`")
			return
		}
		targetID = id
	}

	account, err := h.ledger.GetAccount(ctx, targetID, guildID)
	if err != nil {
		log.WithError(err).Error("Ошибка получения профиля")
		h.sendMessage(channelID, "❌ Ошибка получения профиля")
		return
	}
	granted, err := h.service.GrantedList(ctx, targetID, guildID)
	if err != nil {
		log.WithError(err).Error("Ошибка получения достижений")
		h.sendMessage(channelID, "❌ Ошибка получения профиля")
		return
	}

	var achSb strings.Builder
	for _, ua := range granted {
		a, ok := h.service.ByID(ua.AchievementID)
		if !ok {
			// Достижение убрано из каталога, запись осталась
			continue
		}
		fmt.Fprintf(&achSb, "%s **%s** — %s\n", a.Icon, a.Name, a.Description)
	}
	achievements := achSb.String()
	if achievements == "" {
		achievements = "Пока нет достижений"
	}

	embed := &discordgo.MessageEmbed{
		Title:       "🌱 Профиль",
		Description: fmt.Sprintf("<@%d>", targetID),
		Color:       0x27ae60,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "💰 Монеты", Value: common.FormatNumber(account.Coins), Inline: true},
			{Name: "🌟 Очки добрых дел", Value: common.FormatNumber(account.GoodDeedPoints), Inline: true},
			{Name: "🔥 Серия наград", Value: common.FormatNumber(account.DailyStreak), Inline: true},
			{Name: "🎮 Игр сыграно", Value: common.FormatNumber(account.GamesPlayed), Inline: true},
			{Name: "📝 Викторин завершено", Value: common.FormatNumber(account.QuizzesCompleted), Inline: true},
			{Name: "💝 Пожертвовано", Value: common.FormatNumber(account.TotalDonated), Inline: true},
			{
				Name:  fmt.Sprintf("🏆 Достижения (%d/%d)", len(granted), len(h.service.Catalog())),
				Value: achievements,
			},
		},
	}
	h.sendEmbed(channelID, embed)
}

// AnnounceNew проверяет достижения пользователя и объявляет новые в канал.
// Вызывается после команд, меняющих счётчики (daily, work, donate и т.д.).
// Ошибка проверки не должна ломать исходную команду, поэтому только лог.
func (h *Handler) AnnounceNew(ctx context.Context, channelID string, userID, guildID int64) {
	awarded, err := h.service.Evaluate(ctx, userID, guildID)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("Ошибка проверки достижений")
		return
	}

	for _, a := range awarded {
		embed := &discordgo.MessageEmbed{
			Title:       fmt.Sprintf("%s Достижение получено: %s", a.Icon, a.Name),
			Description: a.Description,
			Color:       0xe67e22,
			Footer: &discordgo.MessageEmbedFooter{
				Text: fmt.Sprintf("Награда: %s монет, %s очков добрых дел",
					common.FormatNumber(a.RewardCoins), common.FormatNumber(a.RewardGDP)),
			},
		}
		if _, err := h.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
			Content: fmt.Sprintf("🎉 <@%d>", userID),
			Embed:   embed,
		}); err != nil {
			log.WithError(err).WithField("channel_id", channelID).Error("Ошибка отправки сообщения")
		}
	}
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
