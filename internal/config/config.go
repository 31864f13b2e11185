// Package config загружает конфигурацию бота из переменных окружения.
// Используется envconfig для маппинга переменных окружения на поля структуры.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config содержит ВСЕ настройки приложения.
type Config struct {
	// --- Discord ---
	DiscordBotToken string `envconfig:"DISCORD_BOT_TOKEN" required:"true"`
	// Префикс текстовых команд (!balance, !daily и т.д.)
	CommandPrefix string `envconfig:"COMMAND_PREFIX" default:"!"`
	// Администраторы бота (могут выдавать/изымать монеты)
	AdminIDsRaw string  `envconfig:"ADMIN_IDS" default:""`
	AdminIDs    []int64 `envconfig:"-"` // заполним вручную из AdminIDsRaw

	// --- Database ---
	// В Docker внутри контейнера "localhost" почти всегда неправильно.
	// Дефолт ставим "postgres" (имя сервиса в docker-compose), а для локалки переопределяй DB_HOST=localhost.
	DBHost     string `envconfig:"DB_HOST" default:"postgres"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"botuser"`
	DBPassword string `envconfig:"DB_PASSWORD" required:"true"`
	DBName     string `envconfig:"DB_NAME" default:"ilm_garden"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	DBMaxConns int32  `envconfig:"DB_MAX_CONNS" default:"25"`
	DBMinConns int32  `envconfig:"DB_MIN_CONNS" default:"5"`

	// --- Application ---
	AppEnv      string `envconfig:"APP_ENV" default:"development"`
	AppLogLevel string `envconfig:"APP_LOG_LEVEL" default:"debug"`
	AppTimezone string `envconfig:"APP_TIMEZONE" default:"UTC"`

	// --- Economy ---
	EconomyStartingBalance int64 `envconfig:"ECONOMY_STARTING_BALANCE" default:"100"`
	TransferEnabled        bool  `envconfig:"TRANSFER_ENABLED" default:"true"`
	TransferMinAmount      int64 `envconfig:"TRANSFER_MIN_AMOUNT" default:"10"`
	TransferMaxAmount      int64 `envconfig:"TRANSFER_MAX_AMOUNT" default:"1000"`

	// --- Daily reward ---
	DailyBaseReward     int64 `envconfig:"DAILY_BASE_REWARD" default:"50"`
	DailyStreakBonus    int64 `envconfig:"DAILY_STREAK_BONUS" default:"10"`
	DailyMaxStreakDays  int64 `envconfig:"DAILY_MAX_STREAK_DAYS" default:"7"`
	DailyWeeklyBonus    int64 `envconfig:"DAILY_WEEKLY_BONUS" default:"100"`

	// --- Work ---
	WorkMinReward     int64 `envconfig:"WORK_MIN_REWARD" default:"25"`
	WorkMaxReward     int64 `envconfig:"WORK_MAX_REWARD" default:"100"`
	WorkCooldownHours int   `envconfig:"WORK_COOLDOWN_HOURS" default:"6"`

	// --- Donations ---
	DonationMinAmount int64 `envconfig:"DONATION_MIN_AMOUNT" default:"10"`
	DonationMaxAmount int64 `envconfig:"DONATION_MAX_AMOUNT" default:"10000"`
	// Сколько монет пожертвования дают 1 очко добрых дел
	DonationGDPRatio int64 `envconfig:"DONATION_GDP_RATIO" default:"20"`

	// --- Daily content ---
	// Cron-выражение для ежедневной публикации (аят/хадис дня)
	ContentCronSpec string `envconfig:"CONTENT_CRON_SPEC" default:"0 9 * * *"`

	// --- Rate Limiting ---
	RateLimitRequests int           `envconfig:"RATE_LIMIT_REQUESTS" default:"10"`
	RateLimitWindow   time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`
}

// DatabaseDSN возвращает строку подключения к PostgreSQL в формате DSN.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

// IsAdmin проверяет, входит ли пользователь в список администраторов бота.
func (c *Config) IsAdmin(userID int64) bool {
	for _, id := range c.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// Validate проверяет согласованность настроек.
func (c *Config) Validate() error {
	if c.CommandPrefix == "" {
		return fmt.Errorf("COMMAND_PREFIX не может быть пустым")
	}
	if c.DBMaxConns <= 0 || c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("некорректные DB_MIN_CONNS/DB_MAX_CONNS")
	}
	if c.EconomyStartingBalance < 0 {
		return fmt.Errorf("ECONOMY_STARTING_BALANCE не может быть отрицательным")
	}
	if c.TransferMinAmount <= 0 || c.TransferMaxAmount < c.TransferMinAmount {
		return fmt.Errorf("некорректные TRANSFER_MIN_AMOUNT/TRANSFER_MAX_AMOUNT")
	}
	if c.DailyBaseReward <= 0 || c.DailyStreakBonus < 0 || c.DailyMaxStreakDays <= 0 {
		return fmt.Errorf("некорректные настройки ежедневной награды")
	}
	if c.WorkMinReward <= 0 || c.WorkMaxReward < c.WorkMinReward {
		return fmt.Errorf("некорректные WORK_MIN_REWARD/WORK_MAX_REWARD")
	}
	if c.DonationMinAmount <= 0 || c.DonationMaxAmount < c.DonationMinAmount || c.DonationGDPRatio <= 0 {
		return fmt.Errorf("некорректные настройки пожертвований")
	}
	return nil
}

// Load читает переменные окружения и заполняет структуру Config.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("не удалось загрузить конфигурацию: %w", err)
	}

	ids, err := parseInt64CSV(cfg.AdminIDsRaw)
	if err != nil {
		return nil, fmt.Errorf("ADMIN_IDS parse: %w", err)
	}
	cfg.AdminIDs = ids

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func parseInt64CSV(s string) ([]int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		v, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad int64 %q: %w", p, err)
		}
		out = append(out, v)
	}
	return out, nil
}
