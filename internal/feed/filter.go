package feed

import (
	"sort"
	"strings"

	"tickerfeed/internal/models"
)

type Filter string

const (
	FilterAll      Filter = "all"
	FilterTrending Filter = "trending"
	FilterBullish  Filter = "bullish"
	FilterBearish  Filter = "bearish"
	FilterHighRisk Filter = "high-risk"
)

// ParseFilter normalizes a filter name, falling back to FilterAll.
func ParseFilter(raw string) Filter {
	switch Filter(strings.ToLower(strings.TrimSpace(raw))) {
	case FilterTrending:
		return FilterTrending
	case FilterBullish:
		return FilterBullish
	case FilterBearish:
		return FilterBearish
	case FilterHighRisk:
		return FilterHighRisk
	default:
		return FilterAll
	}
}

// Derive computes the render-ready sequence from a store snapshot and the
// live overlay. It is a pure view function: no store mutation, no state
// carried between calls, safe to recompute on every change.
func Derive(snapshot []models.Post, overlay *InsightOverlay, filter Filter) []models.Post {
	out := make([]models.Post, 0, len(snapshot))
	switch filter {
	case FilterTrending:
		out = append(out, snapshot...)
		// Stable sort keeps arrival order for engagement ties.
		sort.SliceStable(out, func(i, j int) bool {
			return engagement(out[i]) > engagement(out[j])
		})
	case FilterBullish:
		for _, p := range snapshot {
			if p.Sentiment == models.SentimentBullish {
				out = append(out, p)
			}
		}
	case FilterBearish:
		for _, p := range snapshot {
			if p.Sentiment == models.SentimentBearish {
				out = append(out, p)
			}
		}
	case FilterHighRisk:
		for _, p := range snapshot {
			p := p
			if risk := overlay.ResolveRisk(&p); risk != nil && models.HighRisk(*risk) {
				out = append(out, p)
			}
		}
	default:
		out = append(out, snapshot...)
	}
	return out
}

func engagement(p models.Post) int {
	return p.Likes + p.Comments
}
