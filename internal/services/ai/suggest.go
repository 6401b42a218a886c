package ai

import "strings"

// The suggestion endpoints serve curated content; no model call is involved.
// Results are copied so callers can't mutate the catalogs.

var contentSuggestions = []string{
	"Share a small win from your day and what it taught you.",
	"Post a photo of something that made you smile today.",
	"Write about a place you want to visit and why.",
	"Recommend a book, movie or song that changed your mood.",
	"Describe your morning routine in three sentences.",
	"Share a tip that saves you time every single day.",
}

var topicSuggestions = []string{
	"Daily Life", "Food & Cooking", "Travel", "Fitness", "Learning",
	"Work & Career", "Music", "Photography", "Books", "Wellness",
}

var tagSuggestions = []string{
	"Life", "Share", "Daily", "Beautiful", "Record",
	"Mood", "Insights", "Creative", "Inspiration", "Happy",
	"Food", "Travel", "Work", "Learning", "Health",
}

var hashtagSuggestions = []string{
	"#SocialVibe", "#LifeShare", "#DailyRecord", "#BeautifulMoments",
	"#MoodDiary", "#CreativeLife", "#HappyShare", "#LifeInsights",
	"#FoodShare", "#TravelRecord", "#WorkInsights", "#LearningNotes",
}

var optimizationSuggestions = []string{
	"Add more concrete detail so readers can picture the moment.",
	"Share how it made you feel; emotion invites responses.",
	"Add a few topic tags to help people discover the post.",
	"Keep the length between 100 and 300 characters for best reach.",
	"A question at the end encourages comments.",
	"Open with the most interesting part to hook readers early.",
}

// SentimentResult is the canned sentiment report for a piece of text.
type SentimentResult struct {
	Sentiment   string   `json:"sentiment"`
	Confidence  float64  `json:"confidence"`
	Keywords    []string `json:"keywords"`
	Suggestions []string `json:"suggestions"`
}

// ContentSuggestions returns post ideas, optionally seeded by initial text.
func (s *Service) ContentSuggestions(initialText string) []string {
	out := append([]string(nil), contentSuggestions...)
	if t := strings.TrimSpace(initialText); t != "" {
		out = append([]string{"Keep going with \"" + truncate(t, 40) + "\" and tell the story behind it."}, out...)
	}
	return out
}

func (s *Service) TopicSuggestions() []string {
	return append([]string(nil), topicSuggestions...)
}

func (s *Service) TagSuggestions(content string) []string {
	return append([]string(nil), tagSuggestions...)
}

func (s *Service) HashtagSuggestions(content string) []string {
	return append([]string(nil), hashtagSuggestions...)
}

func (s *Service) OptimizationSuggestions(content string) []string {
	return append([]string(nil), optimizationSuggestions...)
}

func (s *Service) SentimentAnalysis(text string) SentimentResult {
	return SentimentResult{
		Sentiment:  "positive",
		Confidence: 0.85,
		Keywords:   []string{"happy", "beautiful", "share", "life"},
		Suggestions: []string{
			"The tone is upbeat; keep that energy.",
			"Add a detail or two to ground the feeling.",
			"Consider a topic tag so likeminded people find it.",
		},
	}
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
