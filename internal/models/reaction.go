package models

import "time"

const (
	ReactionLike  = "like"
	ReactionLove  = "love"
	ReactionLaugh = "laugh"
	ReactionWow   = "wow"
	ReactionSad   = "sad"
	ReactionAngry = "angry"
)

// ReactionTypes lists every reaction in display order.
var ReactionTypes = []string{
	ReactionLike,
	ReactionLove,
	ReactionLaugh,
	ReactionWow,
	ReactionSad,
	ReactionAngry,
}

// ReactionEmojis maps each reaction type to the emoji clients render for it.
var ReactionEmojis = map[string]string{
	ReactionLike:  "👍",
	ReactionLove:  "❤️",
	ReactionLaugh: "😂",
	ReactionWow:   "😮",
	ReactionSad:   "😢",
	ReactionAngry: "😠",
}

func ValidReaction(reaction string) bool {
	_, ok := ReactionEmojis[reaction]
	return ok
}

type Reaction struct {
	AnnouncementID string    `json:"announcement_id"`
	UserID         string    `json:"user_id"`
	Reaction       string    `json:"reaction"`
	CreatedAt      time.Time `json:"created_at"`
}

type ReactionCount struct {
	Reaction string `json:"reaction"`
	Emoji    string `json:"emoji"`
	Count    int    `json:"count"`
}

type ReactionSummary struct {
	ReactionCount
	Reacted bool `json:"reacted"`
}

// ReactionBreakdown expands raw per-type counts into the full ordered list
// of reaction types, including those with zero reactions.
func ReactionBreakdown(counts map[string]int) []ReactionCount {
	out := make([]ReactionCount, 0, len(ReactionTypes))
	for _, reaction := range ReactionTypes {
		out = append(out, ReactionCount{
			Reaction: reaction,
			Emoji:    ReactionEmojis[reaction],
			Count:    counts[reaction],
		})
	}
	return out
}

// SummarizeReactions is ReactionBreakdown plus the viewer's own reaction
// marked on the matching entry.
func SummarizeReactions(counts map[string]int, viewerReaction string) []ReactionSummary {
	breakdown := ReactionBreakdown(counts)
	out := make([]ReactionSummary, 0, len(breakdown))
	for _, c := range breakdown {
		out = append(out, ReactionSummary{
			ReactionCount: c,
			Reacted:       c.Reaction == viewerReaction,
		})
	}
	return out
}
