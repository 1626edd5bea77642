package headlines

import (
	"slices"
	"strings"
	"time"

	"github.com/voyceradio/voyce-core/internal/utils"
)

// CivilZone is the fixed civil timezone the product reads news in (UTC−3, no
// daylight saving). The "published today" window is a civil day in this zone.
var CivilZone = time.FixedZone("UTC-3", -3*60*60)

// DayWindow returns the UTC instants bounding the civil day containing now.
func DayWindow(nowUTC time.Time) (start, end time.Time) {
	local := nowUTC.In(CivilZone)
	start = time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, CivilZone)
	return start.UTC(), start.Add(24 * time.Hour).UTC()
}

// RankToday filters the corpus to items whose publication instant (falling
// back to the ingestion instant) lies within today's civil-day window and
// orders them by descending importance. The input slice is never mutated.
func RankToday(corpus []Headline, nowUTC time.Time) []Headline {
	start, end := DayWindow(nowUTC)

	ranked := make([]Headline, 0, len(corpus))
	for _, h := range corpus {
		instant := h.FetchedAt
		if h.PublishedAt != nil {
			instant = *h.PublishedAt
		}
		if instant.IsZero() {
			continue
		}
		if instant.Before(start) || !instant.Before(end) {
			continue
		}
		ranked = append(ranked, h)
	}

	sortByImportance(ranked)
	return ranked
}

// FilterBySource keeps the items whose source matches sourceName under
// accent- and case-insensitive substring matching, preserving the ranking
// order contract.
func FilterBySource(list []Headline, sourceName string) []Headline {
	needle := utils.Fold(sourceName)

	filtered := make([]Headline, 0, len(list))
	for _, h := range list {
		if strings.Contains(utils.Fold(h.Source), needle) {
			filtered = append(filtered, h)
		}
	}

	sortByImportance(filtered)
	return filtered
}

// TopN truncates an already-ordered list to at most n items.
func TopN(list []Headline, n int) []Headline {
	if n < 0 {
		n = 0
	}
	if len(list) <= n {
		return slices.Clone(list)
	}
	return slices.Clone(list[:n])
}

// sortByImportance applies the canonical ordering: importance score
// descending, publication instant descending with missing instants last,
// then ingestion instant descending. The sort is stable so equal items keep
// their input order and re-ranking is reproducible.
func sortByImportance(list []Headline) {
	slices.SortStableFunc(list, func(a, b Headline) int {
		if a.ImportanceScore != b.ImportanceScore {
			if a.ImportanceScore > b.ImportanceScore {
				return -1
			}
			return 1
		}

		switch {
		case a.PublishedAt != nil && b.PublishedAt == nil:
			return -1
		case a.PublishedAt == nil && b.PublishedAt != nil:
			return 1
		case a.PublishedAt != nil && b.PublishedAt != nil:
			if !a.PublishedAt.Equal(*b.PublishedAt) {
				if a.PublishedAt.After(*b.PublishedAt) {
					return -1
				}
				return 1
			}
		}

		if !a.FetchedAt.Equal(b.FetchedAt) {
			if a.FetchedAt.After(b.FetchedAt) {
				return -1
			}
			return 1
		}
		return 0
	})
}
