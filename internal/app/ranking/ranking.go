/*
Package ranking orders mentor recommendations by a deterministic match score
in the range [MinScore, MaxScore].

A score supplied by the backend is used when present. Otherwise the score is
derived from the mentor's rating, the breadth of their expertise and the
overlap between that expertise and the mentee's interests.
*/
package ranking

import (
	"math"
	"sort"
	"strings"

	"mentorlink/internal/app/mapping"
)

const (
	MinScore = 70.0
	MaxScore = 100.0

	// TopN is the number of recommendations returned to the front end.
	TopN = 5
)

// Score returns the match score of a reshaped mentor record.
func Score(mentor mapping.Record, interests []string) float64 {
	if backendScore, ok := mentor["matchScore"].(float64); ok && backendScore > 0 {
		if backendScore <= 1 {
			backendScore *= 100
		}
		return clamp(math.Round(backendScore))
	}

	rating, _ := mentor["rating"].(float64)
	expertise, _ := mentor["expertise"].([]string)

	score := MinScore + (rating/5)*20 + float64(min(len(expertise), 5))*2
	score += float64(overlap(expertise, interests)) * 5

	return clamp(math.Round(score))
}

// Rank scores every mentor, sorts by score descending (ties keep the
// backend's order) and keeps at most TopN.
func Rank(mentors []mapping.Record, interests []string) []mapping.Record {
	for _, m := range mentors {
		m["matchScore"] = Score(m, interests)
	}

	sort.SliceStable(mentors, func(i, j int) bool {
		return mentors[i]["matchScore"].(float64) > mentors[j]["matchScore"].(float64)
	})

	if len(mentors) > TopN {
		mentors = mentors[:TopN]
	}
	return mentors
}

func overlap(expertise, interests []string) int {
	if len(interests) == 0 {
		return 0
	}

	wanted := make(map[string]struct{}, len(interests))
	for _, interest := range interests {
		wanted[strings.ToLower(strings.TrimSpace(interest))] = struct{}{}
	}

	n := 0
	for _, skill := range expertise {
		if _, ok := wanted[strings.ToLower(skill)]; ok {
			n++
		}
	}
	return n
}

func clamp(score float64) float64 {
	return math.Max(MinScore, math.Min(MaxScore, score))
}
