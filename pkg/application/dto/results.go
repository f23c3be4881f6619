package dto

import (
	"sort"

	"github.com/Rushen88/PDM-sub000/pkg/domain/entities"
)

// SyncResult lists the requirement rows touched by a project sync
type SyncResult struct {
	ProjectID string
	Created   []string
	Updated   []string
	Deleted   []string
}

// Sort orders the touched IDs for stable output
func (r *SyncResult) Sort() {
	sort.Strings(r.Created)
	sort.Strings(r.Updated)
	sort.Strings(r.Deleted)
}

// ProjectTree is a project with its nodes indexed by parent
type ProjectTree struct {
	Project  *entities.Project
	Root     *entities.TreeNode
	Nodes    []*entities.TreeNode
	Children map[string][]*entities.TreeNode
}

// NewProjectTree indexes nodes by parent; children keep the order of nodes
func NewProjectTree(project *entities.Project, nodes []*entities.TreeNode) *ProjectTree {
	t := &ProjectTree{Project: project, Nodes: nodes, Children: map[string][]*entities.TreeNode{}}
	for _, n := range nodes {
		if n.IsRoot() {
			t.Root = n
			continue
		}
		t.Children[n.ParentID] = append(t.Children[n.ParentID], n)
	}
	return t
}

// TreeLine is one node of a depth-first walk
type TreeLine struct {
	Node  *entities.TreeNode
	Depth int
}

// Walk returns the nodes depth first from the root, children in display order
func (t *ProjectTree) Walk() []TreeLine {
	if t.Root == nil {
		return nil
	}
	var out []TreeLine
	stack := []TreeLine{{Node: t.Root}}
	visited := map[string]bool{}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[top.Node.ID] {
			continue
		}
		visited[top.Node.ID] = true
		out = append(out, top)
		children := t.Children[top.Node.ID]
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, TreeLine{Node: children[i], Depth: top.Depth + 1})
		}
	}
	return out
}

// StatusChange reports the effect of a node status write
type StatusChange struct {
	Node             *entities.TreeNode
	ProjectCompleted bool
}

// ConsumptionResult lists what a node consumption wrote off
type ConsumptionResult struct {
	NodeID    string
	Movements []*entities.StockMovement
}
