// Package achievements управляет достижениями пользователей.
// models.go описывает структуру достижения и встроенный набор по умолчанию.
package achievements

import "time"

// Achievement — одно достижение с требованиями и наградой.
// Требования — карта «имя счётчика → порог»: достижение выдаётся,
// когда ВСЕ счётчики достигли порогов. Имя счётчика, которого нет
// у счёта, делает требование невыполнимым (достижение зарезервировано
// под будущие модули и пока недостижимо).
type Achievement struct {
	ID          string
	Name        string
	Description string
	Icon        string
	Category    string
	Requirement map[string]int64
	RewardCoins int64
	RewardGDP   int64
}

// UserAchievement — запись о выданном достижении.
type UserAchievement struct {
	UserID        int64     `db:"user_id"`
	GuildID       int64     `db:"guild_id"`
	AchievementID string    `db:"achievement_id"`
	EarnedAt      time.Time `db:"earned_at"`
}

// Defaults — встроенный набор достижений.
// Порядок объявления — порядок проверки и выдачи: при одном событии,
// открывающем несколько достижений, они выдаются именно в этом порядке.
var Defaults = []Achievement{
	{
		ID:          "first_steps",
		Name:        "First Steps",
		Description: "Complete your first quiz",
		Icon:        "🚶",
		Category:    "learning",
		Requirement: map[string]int64{"quizzes_completed": 1},
		RewardCoins: 50,
		RewardGDP:   5,
	},
	{
		ID:          "quran_scholar",
		Name:        "Quran Scholar",
		Description: "Complete 10 Quran-related quizzes",
		Icon:        "📖",
		Category:    "knowledge",
		Requirement: map[string]int64{"quran_quizzes_completed": 10},
		RewardCoins: 200,
		RewardGDP:   20,
	},
	{
		ID:          "generous_soul",
		Name:        "Generous Soul",
		Description: "Donate 1000 Ilm Coins to charity",
		Icon:        "💝",
		Category:    "charity",
		Requirement: map[string]int64{"total_donated": 1000},
		RewardCoins: 500,
		RewardGDP:   50,
	},
	{
		ID:          "daily_devotee",
		Name:        "Daily Devotee",
		Description: "Maintain a 7-day daily reward streak",
		Icon:        "🔥",
		Category:    "consistency",
		Requirement: map[string]int64{"daily_streak": 7},
		RewardCoins: 300,
		RewardGDP:   25,
	},
	{
		ID:          "knowledge_seeker",
		Name:        "Knowledge Seeker",
		Description: "Complete 25 total games and quizzes",
		Icon:        "🧠",
		Category:    "learning",
		Requirement: map[string]int64{"games_played": 25},
		RewardCoins: 400,
		RewardGDP:   30,
	},
	{
		ID:          "verse_master",
		Name:        "Verse Master",
		Description: "Correctly match 15 Quran verses",
		Icon:        "🎯",
		Category:    "knowledge",
		Requirement: map[string]int64{"verse_matches_correct": 15},
		RewardCoins: 350,
		RewardGDP:   35,
	},
	{
		ID:          "hadith_expert",
		Name:        "Hadith Expert",
		Description: "Complete 10 Hadith trivia games",
		Icon:        "📜",
		Category:    "knowledge",
		Requirement: map[string]int64{"hadith_games_completed": 10},
		RewardCoins: 250,
		RewardGDP:   20,
	},
	{
		ID:          "community_pillar",
		Name:        "Community Pillar",
		Description: "Reach 100 Good Deed Points",
		Icon:        "🌟",
		Category:    "charity",
		Requirement: map[string]int64{"good_deed_points": 100},
		RewardCoins: 600,
		RewardGDP:   50,
	},
	{
		ID:          "wealth_of_knowledge",
		Name:        "Wealth of Knowledge",
		Description: "Earn 5000 total Ilm Coins",
		Icon:        "💰",
		Category:    "economy",
		Requirement: map[string]int64{"total_earned": 5000},
		RewardCoins: 1000,
		RewardGDP:   75,
	},
	{
		ID:          "islamic_artisan",
		Name:        "Islamic Artisan",
		Description: "Purchase 5 different shop items",
		Icon:        "🛍️",
		Category:    "economy",
		Requirement: map[string]int64{"unique_items_purchased": 5},
		RewardCoins: 450,
		RewardGDP:   40,
	},
}
