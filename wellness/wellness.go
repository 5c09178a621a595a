// Package wellness holds the demo responders behind the mood, diagnosis, chat,
// nutrition and video endpoints. Every function is deterministic and
// stateless; none of them analyses images or runs a model.
package wellness

import (
	"math"
	"strings"
)

var moods = []string{"calm", "focused", "anxious", "uplifted", "neutral"}

type MoodResult struct {
	Mood            string   `json:"mood"`
	Confidence      float64  `json:"confidence"`
	Explanation     string   `json:"explanation"`
	Recommendations []string `json:"recommendations"`
}

// AnalyzeMood picks a mood from a fingerprint of the image URL: the sum of
// its code points modulo 100.
func AnalyzeMood(imageURL string) MoodResult {
	score := 0
	for _, r := range imageURL {
		score += int(r)
	}
	score %= 100

	return MoodResult{
		Mood:        moods[score%len(moods)],
		Confidence:  round2(0.6 + float64(score%40)/100),
		Explanation: "Quick, demo-only estimation based on image metadata fingerprint.",
		Recommendations: []string{
			"Try a 3-minute breathing exercise",
			"Take a short walk and hydrate",
			"Write down one thing you're grateful for",
		},
	}
}

type Diagnosis struct {
	Diagnosis  string  `json:"diagnosis"`
	Confidence float64 `json:"confidence"`
	Notes      string  `json:"notes"`
}

// Diagnose returns the same screening result for any image.
func Diagnose(string) Diagnosis {
	return Diagnosis{
		Diagnosis:  "Demo-only visual screening suggests no urgent issues",
		Confidence: 0.72,
		Notes:      "For real diagnostics, consult a licensed professional.",
	}
}

type chatRule struct {
	keywords []string
	reply    string
}

// Rules are checked in order; the first match wins.
var chatRules = []chatRule{
	{
		keywords: []string{"stress", "anxious"},
		reply:    "I'm here with you. Let's try box breathing: inhale 4, hold 4, exhale 4, hold 4, for 4 rounds.",
	},
	{
		keywords: []string{"sleep"},
		reply:    "Aim for a consistent bedtime. Try reducing screens 60 minutes before sleep and a 10-minute wind-down.",
	},
	{
		keywords: []string{"diet", "food"},
		reply:    "A simple plate: half veggies, quarter lean protein, quarter whole grains. Hydration helps too.",
	},
}

const defaultReply = "Tell me how you're feeling today, and I can suggest a quick exercise or resource."

// Reply answers a chat message by keyword.
func Reply(message string) string {
	text := strings.ToLower(message)
	for _, rule := range chatRules {
		for _, kw := range rule.keywords {
			if strings.Contains(text, kw) {
				return rule.reply
			}
		}
	}
	return defaultReply
}

type FoodItem struct {
	Item     string `json:"item"`
	Calories int    `json:"calories"`
}

type NutritionEstimate struct {
	EstimatedCalories int        `json:"estimated_calories"`
	Items             []FoodItem `json:"items"`
	Confidence        float64    `json:"confidence"`
}

// calorieTable is matched by substring, in this order. "eggs" also matches
// "egg", so both are counted.
var calorieTable = []FoodItem{
	{"banana", 105}, {"apple", 95}, {"egg", 78}, {"eggs", 156}, {"bread", 80},
	{"rice", 200}, {"salad", 120}, {"chicken", 220}, {"yogurt", 150},
	{"coffee", 5}, {"latte", 190}, {"orange", 62}, {"oats", 150},
}

// EstimateNutrition sums calories for every known food named in text.
func EstimateNutrition(text string) NutritionEstimate {
	text = strings.ToLower(text)
	est := NutritionEstimate{Items: []FoodItem{}, Confidence: 0.2}
	for _, f := range calorieTable {
		if strings.Contains(text, f.Item) {
			est.EstimatedCalories += f.Calories
			est.Items = append(est.Items, f)
		}
	}
	if len(est.Items) > 0 {
		est.Confidence = 0.5
	}
	return est
}

type Video struct {
	Title     string `json:"title"`
	YoutubeID string `json:"youtube_id"`
	Category  string `json:"category"`
}

// Videos lists the curated mindfulness sessions.
func Videos() []Video {
	return []Video{
		{Title: "5-Minute Guided Breathing", YoutubeID: "nmFUDkj1Aq0", Category: "breathing"},
		{Title: "10-Min Body Scan Meditation", YoutubeID: "ihO02wUzgkc", Category: "meditation"},
		{Title: "Beginner Yoga Flow", YoutubeID: "v7AYKMP6rOE", Category: "exercise"},
	}
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
