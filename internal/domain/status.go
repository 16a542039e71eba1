package domain

import (
	"sort"
	"strings"

	"github.com/andresuchdata/stockcast/internal/forecast"
)

var priorityOrder = []forecast.Priority{
	forecast.PriorityCritical,
	forecast.PriorityHigh,
	forecast.PriorityMedium,
	forecast.PriorityLow,
	forecast.PriorityUnknown,
}

var priorityRanks = map[forecast.Priority]int{
	forecast.PriorityCritical: 0,
	forecast.PriorityHigh:     1,
	forecast.PriorityMedium:   2,
	forecast.PriorityLow:      3,
	forecast.PriorityUnknown:  4,
}

// PriorityRank orders priorities from most to least urgent.
func PriorityRank(p forecast.Priority) int {
	if rank, ok := priorityRanks[p]; ok {
		return rank
	}

	return len(priorityRanks)
}

// ParsePriorities reads a comma separated filter such as "critical,high".
// Unknown names are ignored.
func ParsePriorities(raw string) []forecast.Priority {
	var out []forecast.Priority
	for _, part := range strings.Split(raw, ",") {
		p := forecast.Priority(strings.ToLower(strings.TrimSpace(part)))
		if _, ok := priorityRanks[p]; ok {
			out = append(out, p)
		}
	}
	return out
}

// SortOverview puts the most urgent products first, then the largest orders.
func SortOverview(items []ProductOverview) {
	sort.SliceStable(items, func(i, j int) bool {
		ri, rj := PriorityRank(items[i].Priority), PriorityRank(items[j].Priority)
		if ri != rj {
			return ri < rj
		}
		return items[i].RecommendedOrder > items[j].RecommendedOrder
	})
}

// FilterOverview keeps rows whose priority is listed. An empty filter keeps all.
func FilterOverview(items []ProductOverview, priorities []forecast.Priority) []ProductOverview {
	if len(priorities) == 0 {
		return items
	}

	keep := make(map[forecast.Priority]bool, len(priorities))
	for _, p := range priorities {
		keep[p] = true
	}

	out := make([]ProductOverview, 0, len(items))
	for _, it := range items {
		if keep[it.Priority] {
			out = append(out, it)
		}
	}
	return out
}
