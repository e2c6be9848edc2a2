// Package lineage performs best-effort lexical column-lineage resolution:
// given a model's raw SQL, it isolates the final SELECT list and maps each
// output column to the upstream (node, column) pairs it appears to derive
// from. This deliberately stops short of a real SQL parser — the teacher's
// lineage package walked a full AST (pkg/parser/pkg/dialect) to do this,
// but that machinery assumes a single known SQL dialect and a schema
// catalog this system doesn't have; a regex-driven scan over the already
// comment-stripped text (internal/extract.StripComments) is the tradeoff
// the spec's "best-effort lexical parse" explicitly accepts. Failures are
// always non-fatal: callers get a partial or empty result, never an error
// that aborts a build.
package lineage

import (
	"regexp"
	"strings"

	"github.com/leapstack-labs/dbt-lineage/internal/dag"
	"github.com/leapstack-labs/dbt-lineage/internal/extract"
)

// Confidence grades how certain a ColumnSource attribution is.
type Confidence string

// Confidence levels, most to least certain.
const (
	ConfidenceDirect  Confidence = "direct"
	ConfidenceAliased Confidence = "aliased"
	ConfidenceDerived Confidence = "derived"
	ConfidenceStar    Confidence = "star"
)

// ColumnSource is one upstream (node, column) pair an output column is
// attributed to.
type ColumnSource struct {
	UpstreamNodeID string
	UpstreamColumn string
	Confidence     Confidence
}

// ColumnLineage is the resolved provenance of one output column of a
// model's final SELECT.
type ColumnLineage struct {
	Column  string
	Sources []ColumnSource
}

var (
	tableRefPattern  = regexp.MustCompile(`(?is)\b(?:from|join)\s+\{\{\s*(ref|source)\(([^)]*)\)\s*\}\}(?:\s+(?:as\s+)?([a-zA-Z_]\w*))?`)
	selectPattern    = regexp.MustCompile(`(?is)\bselect\b(.*?)\bfrom\b`)
	asClausePattern  = regexp.MustCompile(`(?is)^(.*)\s+as\s+([a-zA-Z_]\w*)$`)
	directRefPattern = regexp.MustCompile(`^[a-zA-Z_]\w*(\.[a-zA-Z_]\w*)?$`)
	identPairPattern = regexp.MustCompile(`([a-zA-Z_]\w*)\.([a-zA-Z_]\w*)`)
	quotedArgPattern = regexp.MustCompile(`['"]([^'"]+)['"]`)
)

// scopeEntry is one alias -> upstream-node binding parsed from a FROM/JOIN
// clause, in source order. The lexically innermost (last-parsed) entry
// wins when resolving an unqualified bare column.
type scopeEntry struct {
	alias string
	node  string
}

// ResolveModel isolates the final SELECT in sql and resolves each output
// column's provenance against g. It never returns an error: unparseable
// SQL yields an empty lineage slice.
func ResolveModel(g *dag.Graph, sql string) []ColumnLineage {
	cleaned := extract.StripComments(sql)
	scopes := parseScopes(cleaned)
	if len(scopes) == 0 {
		return nil
	}

	selectList := finalSelectList(cleaned)
	if selectList == "" {
		return nil
	}

	var out []ColumnLineage
	for _, expr := range splitTopLevel(selectList, ',') {
		expr = strings.TrimSpace(expr)
		if expr == "" {
			continue
		}
		if lineage := resolveExpr(g, expr, scopes); lineage != nil {
			out = append(out, *lineage)
		}
	}
	return out
}

func parseScopes(sql string) []scopeEntry {
	var scopes []scopeEntry
	for _, m := range tableRefPattern.FindAllStringSubmatch(sql, -1) {
		directive, argsRaw, alias := m[1], m[2], m[3]
		args := quotedArgPattern.FindAllStringSubmatch(argsRaw, -1)
		if len(args) == 0 {
			continue
		}

		var target string
		switch strings.ToLower(directive) {
		case "ref":
			target = args[0][1]
			if len(args) > 1 {
				target = args[1][1]
			}
		case "source":
			if len(args) < 2 {
				continue
			}
			target = "source." + args[0][1] + "." + args[1][1]
		default:
			continue
		}

		if alias == "" {
			alias = lastSegment(target)
		}
		scopes = append(scopes, scopeEntry{alias: alias, node: target})
	}
	return scopes
}

func lastSegment(id string) string {
	parts := strings.Split(id, ".")
	return parts[len(parts)-1]
}

func finalSelectList(sql string) string {
	matches := selectPattern.FindAllStringSubmatch(sql, -1)
	if len(matches) == 0 {
		return ""
	}
	return strings.TrimSpace(matches[len(matches)-1][1])
}

// splitTopLevel splits s on sep, ignoring occurrences nested inside
// parentheses.
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		default:
			if s[i] == sep && depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}

func resolveExpr(g *dag.Graph, expr string, scopes []scopeEntry) *ColumnLineage {
	if expr == "*" || strings.HasSuffix(expr, ".*") {
		return resolveStar(g, expr, scopes)
	}

	outputName := expr
	body := expr
	aliased := false
	if m := asClausePattern.FindStringSubmatch(expr); m != nil {
		body = strings.TrimSpace(m[1])
		outputName = m[2]
		aliased = true
	} else {
		outputName = lastSegment(strings.TrimSpace(expr))
	}

	if directRefPattern.MatchString(body) {
		table, col := splitColumnRef(body)
		node, ok := resolveAlias(table, scopes)
		if !ok {
			return &ColumnLineage{Column: outputName}
		}
		confidence := ConfidenceDirect
		if aliased {
			confidence = ConfidenceAliased
		}
		return &ColumnLineage{
			Column: outputName,
			Sources: []ColumnSource{
				{UpstreamNodeID: node, UpstreamColumn: col, Confidence: confidence},
			},
		}
	}

	var sources []ColumnSource
	for _, m := range identPairPattern.FindAllStringSubmatch(body, -1) {
		node, ok := resolveAlias(m[1], scopes)
		if !ok {
			continue
		}
		sources = append(sources, ColumnSource{UpstreamNodeID: node, UpstreamColumn: m[2], Confidence: ConfidenceDerived})
	}
	return &ColumnLineage{Column: outputName, Sources: sources}
}

func resolveStar(g *dag.Graph, expr string, scopes []scopeEntry) *ColumnLineage {
	var table string
	if expr != "*" {
		table = strings.TrimSuffix(expr, ".*")
	}

	var candidates []scopeEntry
	if table != "" {
		if node, ok := resolveAlias(table, scopes); ok {
			candidates = []scopeEntry{{alias: table, node: node}}
		}
	} else {
		candidates = scopes
	}

	var sources []ColumnSource
	for _, c := range candidates {
		n, ok := g.Node(c.node)
		if !ok {
			continue
		}
		for _, col := range n.Columns {
			sources = append(sources, ColumnSource{UpstreamNodeID: c.node, UpstreamColumn: col.Name, Confidence: ConfidenceStar})
		}
	}
	return &ColumnLineage{Column: expr, Sources: sources}
}

func splitColumnRef(body string) (table, col string) {
	if idx := strings.LastIndex(body, "."); idx >= 0 {
		return body[:idx], body[idx+1:]
	}
	return "", body
}

func resolveAlias(alias string, scopes []scopeEntry) (string, bool) {
	if alias == "" {
		if len(scopes) == 0 {
			return "", false
		}
		return scopes[len(scopes)-1].node, true
	}
	for i := len(scopes) - 1; i >= 0; i-- {
		if scopes[i].alias == alias {
			return scopes[i].node, true
		}
	}
	return "", false
}
