// Package content — handlers.go обрабатывает команды ежедневного контента:
// !setdailychannel, !stopdaily и админский !triggerdaily.
package content

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"ilmgarden.ru/discord-bot/internal/config"
)

// Handler обрабатывает команды ежедневного контента.
type Handler struct {
	service *Service
	session *discordgo.Session
	cfg     *config.Config
}

// NewHandler создаёт обработчик контента.
func NewHandler(service *Service, session *discordgo.Session, cfg *config.Config) *Handler {
	return &Handler{service: service, session: session, cfg: cfg}
}

// SendQuote отправляет цитату в канал. Используется как SendFunc
// при плановой рассылке и при ручном запуске.
func (h *Handler) SendQuote(channelID int64, quote Quote) error {
	embed := quoteEmbed(quote)
	_, err := h.session.ChannelMessageSendEmbed(strconv.FormatInt(channelID, 10), embed)
	return err
}

// quoteEmbed собирает embed для цитаты дня.
func quoteEmbed(quote Quote) *discordgo.MessageEmbed {
	title := "📜 Hadith of the Day"
	color := 0xf1c40f
	if quote.Kind == KindVerse {
		title = "📖 Verse of the Day"
		color = 0x2ecc71
	}
	return &discordgo.MessageEmbed{
		Title:       title,
		Description: fmt.Sprintf("*%s*", quote.Text),
		Color:       color,
		Footer:      &discordgo.MessageEmbedFooter{Text: quote.Source},
	}
}

// HandleSetDailyChannel — команда !setdailychannel [#канал].
// Без аргумента включает публикацию в текущий канал.
// Требует право «Управление сервером».
func (h *Handler) HandleSetDailyChannel(ctx context.Context, channelID string, userID, guildID int64, args []string) {
	if !h.canManage(channelID, userID) {
		h.sendMessage(channelID, "❌ Нужно право «Управление сервером»")
		return
	}

	target := channelID
	if len(args) > 0 {
		id, err := extractChannelID(args[0])
		if err != nil {
			h.sendMessage(channelID, "❌ Укажи канал упоминанием: `!setdailychannel #канал`")
			return
		}
		target = id
	}
	targetID, err := strconv.ParseInt(target, 10, 64)
	if err != nil {
		h.sendMessage(channelID, "❌ Некорректный канал")
		return
	}

	if err := h.service.EnableDaily(ctx, guildID, targetID); err != nil {
		log.WithError(err).Error("Ошибка настройки канала публикации")
		h.sendMessage(channelID, "❌ Ошибка сохранения настройки")
		return
	}

	h.sendMessage(channelID, fmt.Sprintf("✅ Ежедневный контент будет публиковаться в <#%d>. Вот пример:", targetID))
	if err := h.SendQuote(targetID, QuoteOfDay(h.service.nowFn())); err != nil {
		log.WithError(err).WithField("channel_id", targetID).Error("Ошибка отправки примера контента")
	}
}

// HandleStopDaily — команда !stopdaily. Выключает публикацию.
func (h *Handler) HandleStopDaily(ctx context.Context, channelID string, userID, guildID int64) {
	if !h.canManage(channelID, userID) {
		h.sendMessage(channelID, "❌ Нужно право «Управление сервером»")
		return
	}
	if err := h.service.DisableDaily(ctx, guildID); err != nil {
		log.WithError(err).Error("Ошибка выключения публикации")
		h.sendMessage(channelID, "❌ Ошибка сохранения настройки")
		return
	}
	h.sendMessage(channelID, "✅ Публикация ежедневного контента выключена")
}

// HandleTriggerDaily — админская команда !triggerdaily.
// Запускает рассылку вручную, не дожидаясь расписания.
func (h *Handler) HandleTriggerDaily(ctx context.Context, channelID string, userID int64) {
	if !h.cfg.IsAdmin(userID) {
		h.sendMessage(channelID, "❌ Команда доступна только администраторам")
		return
	}
	sent, err := h.service.PostDaily(ctx, h.SendQuote)
	if err != nil {
		log.WithError(err).Error("Ошибка ручной рассылки контента")
		h.sendMessage(channelID, "❌ Ошибка рассылки")
		return
	}
	h.sendMessage(channelID, fmt.Sprintf("✅ Контент разослан в %d каналов", sent))
}

// canManage проверяет право «Управление сервером» у пользователя.
func (h *Handler) canManage(channelID string, userID int64) bool {
	perms, err := h.session.UserChannelPermissions(strconv.FormatInt(userID, 10), channelID)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("Не удалось проверить права")
		return false
	}
	return perms&discordgo.PermissionManageServer != 0
}

// extractChannelID извлекает ID канала из упоминания <#123> или голого ID.
func extractChannelID(mention string) (string, error) {
	mention = strings.TrimSpace(mention)
	if strings.HasPrefix(mention, "<#") && strings.HasSuffix(mention, ">") {
		mention = strings.TrimSuffix(strings.TrimPrefix(mention, "<#"), ">")
	}
	if _, err := strconv.ParseInt(mention, 10, 64); err != nil {
		return "", fmt.Errorf("некорректное упоминание канала %q", mention)
	}
	return mention, nil
}

func (h *Handler) sendMessage(channelID, text string) {
	if _, err := h.session.ChannelMessageSend(channelID, text); err != nil {
		log.WithError(err).WithField("channel_id", channelID).Error("Ошибка отправки сообщения")
	}
}
