// Package jobs управляет фоновыми задачами (cron).
// scheduler.go настраивает расписание ежедневной публикации контента.
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"ilmgarden.ru/discord-bot/internal/config"
	"ilmgarden.ru/discord-bot/internal/features/content"
)

// Scheduler управляет фоновыми задачами.
type Scheduler struct {
	cron           *cron.Cron
	cfg            *config.Config
	contentService *content.Service
	sendFunc       content.SendFunc
}

// NewScheduler создаёт планировщик задач в часовом поясе из конфигурации.
func NewScheduler(cfg *config.Config, contentService *content.Service, sendFunc content.SendFunc) *Scheduler {
	loc, err := time.LoadLocation(cfg.AppTimezone)
	if err != nil {
		log.WithError(err).WithField("timezone", cfg.AppTimezone).Warn("Не удалось загрузить часовой пояс, используем UTC")
		loc = time.UTC
	}

	return &Scheduler{
		cron:           cron.New(cron.WithLocation(loc)),
		cfg:            cfg,
		contentService: contentService,
		sendFunc:       sendFunc,
	}
}

// Start запускает все фоновые задачи.
func (s *Scheduler) Start(ctx context.Context) error {
	// Ежедневная публикация аята/хадиса дня
	_, err := s.cron.AddFunc(s.cfg.ContentCronSpec, func() {
		log.Info("[CRON] Публикация ежедневного контента")
		if _, err := s.contentService.PostDaily(ctx, s.sendFunc); err != nil {
			log.WithError(err).Error("[CRON] Ошибка публикации контента")
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	log.WithFields(log.Fields{
		"spec":     s.cfg.ContentCronSpec,
		"timezone": s.cfg.AppTimezone,
	}).Info("Планировщик задач запущен")
	return nil
}

// Stop останавливает планировщик и дожидается завершения задач.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("Планировщик задач остановлен")
}
