// Package diffengine computes the set of nodes and edges that changed
// between two revisions of a dbt project. VCS interaction is a subprocess
// contract — git commands are shelled out to and their stdout parsed, the
// way transaction.DefaultGitClient in the retrieval pack wraps git
// worktree/rev-parse/show-ref calls, rather than linking a git library.
package diffengine

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/dbt-lineage/internal/dag"
	"github.com/leapstack-labs/dbt-lineage/internal/graphbuild"
)

// WorkingTree is the sentinel head_ref value meaning "diff against the
// live, possibly-uncommitted project directory" rather than a materialized
// revision.
const WorkingTree = "working_tree"

// VcsUnavailableError reports that no git executable could be found on
// PATH.
type VcsUnavailableError struct{}

func (e *VcsUnavailableError) Error() string { return "git executable not found on PATH" }

// RevisionNotFoundError reports that a requested ref does not resolve in
// the project's repository.
type RevisionNotFoundError struct {
	Ref string
}

func (e *RevisionNotFoundError) Error() string { return fmt.Sprintf("revision not found: %s", e.Ref) }

// EdgeTuple identifies an edge by its endpoints only, for set comparison
// across two graphs.
type EdgeTuple struct {
	From string
	To   string
}

// Summary is the result of diffing two project revisions.
type Summary struct {
	BaseRef       string
	HeadRef       string
	AddedNodes    []string
	RemovedNodes  []string
	ModifiedNodes []string
	AddedEdges    []EdgeTuple
	RemovedEdges  []EdgeTuple
}

// Options configures a Diff call.
type Options struct {
	BaseRef string
	// HeadRef defaults to WorkingTree when empty.
	HeadRef string
	// ManifestRelPath, if set, is the manifest.json path (relative to the
	// project root) to load alongside the SQL/YAML scan for each revision.
	ManifestRelPath string
	// Timeout bounds each git subprocess call.
	Timeout time.Duration
}

// Diff materializes base_ref and head_ref (defaulting the latter to the
// live working tree), builds a Graph for each via C1-C4, and computes the
// added/removed/modified node and edge sets between them.
func Diff(ctx context.Context, projectDir string, opts Options) (*Summary, error) {
	if _, err := exec.LookPath("git"); err != nil {
		return nil, &VcsUnavailableError{}
	}

	head := opts.HeadRef
	if head == "" {
		head = WorkingTree
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	runner := &gitRunner{dir: projectDir, timeout: timeout}

	if !runner.refExists(ctx, opts.BaseRef) {
		return nil, &RevisionNotFoundError{Ref: opts.BaseRef}
	}
	if head != WorkingTree && !runner.refExists(ctx, head) {
		return nil, &RevisionNotFoundError{Ref: head}
	}

	var baseDir, headDir string
	var baseCleanup, headCleanup func()
	defer func() {
		if baseCleanup != nil {
			baseCleanup()
		}
		if headCleanup != nil {
			headCleanup()
		}
	}()

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		dir, remove, err := runner.materialize(gctx, opts.BaseRef)
		if err != nil {
			return err
		}
		baseDir = dir
		baseCleanup = remove
		return nil
	})
	if head == WorkingTree {
		headDir = projectDir
	} else {
		group.Go(func() error {
			dir, remove, err := runner.materialize(gctx, head)
			if err != nil {
				return err
			}
			headDir = dir
			headCleanup = remove
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	gBase, err := graphbuild.Load(baseDir, graphbuild.Options{ManifestPath: manifestPath(baseDir, opts.ManifestRelPath)})
	if err != nil {
		return nil, err
	}
	gHead, err := graphbuild.Load(headDir, graphbuild.Options{ManifestPath: manifestPath(headDir, opts.ManifestRelPath)})
	if err != nil {
		return nil, err
	}

	return compare(opts.BaseRef, head, gBase, gHead), nil
}

func manifestPath(dir, relPath string) string {
	if relPath == "" {
		return ""
	}
	return filepath.Join(dir, relPath)
}

func compare(baseRef, headRef string, gBase, gHead *dag.Graph) *Summary {
	summary := &Summary{BaseRef: baseRef, HeadRef: headRef}

	baseIDs := nodeIDSet(gBase)
	headIDs := nodeIDSet(gHead)

	for id := range headIDs {
		if !baseIDs[id] {
			summary.AddedNodes = append(summary.AddedNodes, id)
		}
	}
	for id := range baseIDs {
		if !headIDs[id] {
			summary.RemovedNodes = append(summary.RemovedNodes, id)
		}
	}
	for id := range baseIDs {
		if !headIDs[id] {
			continue
		}
		baseNode, _ := gBase.Node(id)
		headNode, _ := gHead.Node(id)
		if contentChanged(baseNode, headNode) {
			summary.ModifiedNodes = append(summary.ModifiedNodes, id)
		}
	}

	baseEdges := edgeTupleSet(gBase)
	headEdges := edgeTupleSet(gHead)
	for e := range headEdges {
		if !baseEdges[e] {
			summary.AddedEdges = append(summary.AddedEdges, e)
		}
	}
	for e := range baseEdges {
		if !headEdges[e] {
			summary.RemovedEdges = append(summary.RemovedEdges, e)
		}
	}

	return summary
}

func nodeIDSet(g *dag.Graph) map[string]bool {
	set := make(map[string]bool, g.NodeCount())
	for _, n := range g.Nodes() {
		set[n.ID] = true
	}
	return set
}

func edgeTupleSet(g *dag.Graph) map[EdgeTuple]bool {
	set := make(map[EdgeTuple]bool, g.EdgeCount())
	for _, e := range g.Edges() {
		set[EdgeTuple{From: e.From, To: e.To}] = true
	}
	return set
}

func contentChanged(base, head *dag.Node) bool {
	if base.Path == "" || head.Path == "" {
		return false
	}
	baseHash, err1 := hashFile(base.Path)
	headHash, err2 := hashFile(head.Path)
	if err1 != nil || err2 != nil {
		return false
	}
	return baseHash != headHash
}

func hashFile(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}

// gitRunner shells out to git in a fixed repository directory, the way
// DefaultGitClient does in the pack's transaction package.
type gitRunner struct {
	dir     string
	timeout time.Duration
}

func (g *gitRunner) run(ctx context.Context, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = g.dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git %s: %w: %s", args[0], err, stderr.String())
	}
	return strings.TrimSpace(stdout.String()), nil
}

func (g *gitRunner) refExists(ctx context.Context, ref string) bool {
	_, err := g.run(ctx, "rev-parse", "--verify", ref+"^{commit}")
	return err == nil
}

// materialize checks out ref into a fresh temporary worktree and returns
// its path plus a cleanup function that removes the worktree.
func (g *gitRunner) materialize(ctx context.Context, ref string) (string, func(), error) {
	path := filepath.Join(os.TempDir(), "dbt-lineage-diff-"+uuid.NewString())
	if _, err := g.run(ctx, "worktree", "add", "--detach", path, ref); err != nil {
		return "", nil, fmt.Errorf("materializing %s: %w", ref, err)
	}
	cleanup := func() {
		_, _ = g.run(context.Background(), "worktree", "remove", "--force", path)
	}
	return path, cleanup, nil
}
