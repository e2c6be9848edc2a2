package cli

import (
	"errors"

	"github.com/leapstack-labs/dbt-lineage/internal/dag"
	"github.com/leapstack-labs/dbt-lineage/internal/manifest"
	"github.com/leapstack-labs/dbt-lineage/internal/project"
	"github.com/leapstack-labs/dbt-lineage/internal/selector"
)

// ExitCode maps an error returned from Execute to the process exit code
// documented for this tool: 0 success, 1 general error, 2 usage error,
// 3 project not found/malformed, 4 cycle detected.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	var notFound *project.NotFoundError
	var malformed *project.MalformedError
	var cyclic *dag.CyclicError
	var syntax *selector.SyntaxError
	var manifestMalformed *manifest.MalformedError

	switch {
	case errors.As(err, &notFound):
		return 3
	case errors.As(err, &malformed):
		return 3
	case errors.As(err, &manifestMalformed):
		return 3
	case errors.As(err, &cyclic):
		return 4
	case errors.As(err, &syntax):
		return 2
	default:
		return 1
	}
}
