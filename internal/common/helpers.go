// Package common содержит общие утилиты, используемые во всём проекте.
// Сюда входят: форматирование чисел и валюты, разбор Discord-упоминаний,
// форматирование времени.
package common

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// CurrencyName — название валюты сервера.
const CurrencyName = "Ilm Coins"

// mentionRe разбирает упоминание пользователя Discord: <@123> или <@!123>.
var mentionRe = regexp.MustCompile(`^<@!?(\d+)>$`)

// ExtractUserID извлекает числовой ID пользователя из упоминания.
//
// Примеры:
//
//	ExtractUserID("<@123456>")  → 123456
//	ExtractUserID("<@!123456>") → 123456
//	ExtractUserID("123456")     → 123456 (голый ID тоже принимаем)
func ExtractUserID(mention string) (int64, error) {
	mention = strings.TrimSpace(mention)
	if m := mentionRe.FindStringSubmatch(mention); m != nil {
		return strconv.ParseInt(m[1], 10, 64)
	}
	// Разрешаем указывать ID без упоминания
	id, err := strconv.ParseInt(mention, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("некорректное упоминание %q", mention)
	}
	return id, nil
}

// FormatNumber форматирует число с разделителями тысяч.
// Пример: FormatNumber(1234567) → "1,234,567"
func FormatNumber(n int64) string {
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	s := strconv.FormatInt(n, 10)
	// Расставляем запятые справа налево по три цифры
	var sb strings.Builder
	pre := len(s) % 3
	if pre > 0 {
		sb.WriteString(s[:pre])
		if len(s) > pre {
			sb.WriteByte(',')
		}
	}
	for i := pre; i < len(s); i += 3 {
		sb.WriteString(s[i : i+3])
		if i+3 < len(s) {
			sb.WriteByte(',')
		}
	}
	return sign + sb.String()
}

// FormatCoins форматирует сумму в читабельную строку.
// Пример: FormatCoins(1500) → "1,500 Ilm Coins"
func FormatCoins(amount int64) string {
	return fmt.Sprintf("%s %s", FormatNumber(amount), CurrencyName)
}

// FormatDateTime форматирует время для истории транзакций.
// Формат: "02.01.2006 15:04" (UTC).
func FormatDateTime(t time.Time) string {
	return t.UTC().Format("02.01.2006 15:04")
}

// FormatDuration форматирует остаток времени как "5h 12m".
// Используется в сообщениях о перезарядке.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	if hours == 0 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%dh %dm", hours, minutes)
}
