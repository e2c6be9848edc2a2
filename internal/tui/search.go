package tui

import (
	"sort"
	"strings"

	"github.com/leapstack-labs/dbt-lineage/internal/dag"
)

// matchRank orders search results: prefix matches before substring
// matches, with id as the final tiebreaker within a rank.
type matchRank int

const (
	rankNone matchRank = iota
	rankSubstring
	rankPrefix
)

// SearchNodes filters nodes whose label (Name, or ID when Name is empty)
// contains query (case insensitive) and orders the hits by (prefix match > substring match,
// then id), the ordering the incremental `/` search box uses.
func SearchNodes(nodes []*dag.Node, query string) []string {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	type scored struct {
		id   string
		rank matchRank
	}
	var hits []scored
	for _, n := range nodes {
		label := strings.ToLower(nodeSearchLabel(n))
		switch {
		case strings.HasPrefix(label, q):
			hits = append(hits, scored{id: n.ID, rank: rankPrefix})
		case strings.Contains(label, q):
			hits = append(hits, scored{id: n.ID, rank: rankSubstring})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].rank != hits[j].rank {
			return hits[i].rank > hits[j].rank
		}
		return hits[i].id < hits[j].id
	})

	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.id
	}
	return out
}

func nodeSearchLabel(n *dag.Node) string {
	if n.Name != "" {
		return n.Name
	}
	return n.ID
}
