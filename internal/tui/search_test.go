package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leapstack-labs/dbt-lineage/internal/dag"
)

func searchFixture() []*dag.Node {
	return []*dag.Node{
		{ID: "orders", Name: "orders"},
		{ID: "stg_orders", Name: "stg_orders"},
		{ID: "customer_orders_summary", Name: "customer_orders_summary"},
	}
}

func TestSearchNodes_PrefixBeforeSubstring(t *testing.T) {
	results := SearchNodes(searchFixture(), "orders")
	assert.Equal(t, []string{"orders", "customer_orders_summary", "stg_orders"}, results)
}

func TestSearchNodes_CaseInsensitive(t *testing.T) {
	results := SearchNodes(searchFixture(), "ORDERS")
	assert.Contains(t, results, "orders")
}

func TestSearchNodes_EmptyQueryYieldsNoResults(t *testing.T) {
	assert.Empty(t, SearchNodes(searchFixture(), ""))
}

func TestSearchNodes_NoMatches(t *testing.T) {
	assert.Empty(t, SearchNodes(searchFixture(), "zzz"))
}
