// Package content публикует ежедневный исламский контент
// (аят или хадис дня) в настроенные каналы серверов.
// models.go — структуры настроек и встроенная подборка цитат.
package content

import "time"

// GuildSettings — настройки одного сервера.
type GuildSettings struct {
	GuildID               int64     `db:"guild_id"`
	DailyContentChannelID *int64    `db:"daily_content_channel_id"` // nil — публикация выключена
	UpdatedAt             time.Time `db:"updated_at"`
}

// QuoteKind — тип ежедневной цитаты.
type QuoteKind string

const (
	KindVerse  QuoteKind = "verse"
	KindHadith QuoteKind = "hadith"
)

// Quote — одна цитата с источником.
type Quote struct {
	Kind   QuoteKind
	Text   string
	Source string
}

// Встроенная подборка. Внешние API недоступны без ключей и лимитов,
// поэтому контент хранится в бинаре и ротируется по дню года.
var quotes = []Quote{
	{KindVerse, "Indeed, with hardship comes ease.", "Surah Ash-Sharh (94:6)"},
	{KindVerse, "And whoever puts their trust in Allah, then He alone is sufficient for them.", "Surah At-Talaq (65:3)"},
	{KindVerse, "So remember Me; I will remember you.", "Surah Al-Baqarah (2:152)"},
	{KindVerse, "Indeed, Allah is with the patient.", "Surah Al-Baqarah (2:153)"},
	{KindVerse, "Read! In the name of your Lord who created.", "Surah Al-Alaq (96:1)"},
	{KindVerse, "And say: My Lord, increase me in knowledge.", "Surah Ta-Ha (20:114)"},
	{KindVerse, "Indeed, Allah does not change the condition of a people until they change what is in themselves.", "Surah Ar-Ra'd (13:11)"},
	{KindHadith, "The best among you is the one who learns the Quran and teaches it.", "Bukhari"},
	{KindHadith, "Actions are judged by intentions.", "Bukhari"},
	{KindHadith, "A good word is charity.", "Bukhari"},
	{KindHadith, "None of you truly believes until he loves for his brother what he loves for himself.", "Bukhari/Muslim"},
	{KindHadith, "Cleanliness is half of faith.", "Muslim"},
	{KindHadith, "Seeking knowledge is an obligation upon every Muslim.", "Ibn Majah"},
	{KindHadith, "The strong is not the one who overcomes people by his strength, but the one who controls himself while in anger.", "Bukhari"},
}
