// Package forest rebuilds the account hierarchy from flat, code-addressed
// account records.
package forest

import (
	"fmt"
	"log/slog"

	"github.com/ledgerbook/ledgerbook/internal/accounting/ledger"
)

// NoParent marks a root node.
const NoParent = -1

// Node is a single account inside the forest arena.
type Node struct {
	Account  ledger.Account
	Parent   int
	Children []int
	Depth    int
}

// Code returns the account code of the node.
func (n Node) Code() string { return n.Account.Code }

// IsLeaf reports whether the node has no children.
func (n Node) IsLeaf() bool { return len(n.Children) == 0 }

// Forest stores account nodes in an arena addressed by index. Nodes appear in
// the same order as the input records.
type Forest struct {
	Nodes    []Node
	Roots    []int
	Warnings []string

	index map[string]int
}

// Lookup returns the arena index for a code. When a code is duplicated the
// first record wins.
func (f *Forest) Lookup(code string) (int, bool) {
	if f == nil {
		return 0, false
	}
	idx, ok := f.index[code]
	return idx, ok
}

// Len returns the number of nodes.
func (f *Forest) Len() int {
	if f == nil {
		return 0
	}
	return len(f.Nodes)
}

// Build converts flat account records into a forest. Records whose parent is
// missing, unknown, or themselves become roots; cycles are broken by
// promoting the member that appears first in the input. Inconsistencies are
// logged and recorded as warnings but never abort the build.
func Build(logger *slog.Logger, accounts []ledger.Account) *Forest {
	if logger == nil {
		logger = slog.Default()
	}
	f := &Forest{
		Nodes: make([]Node, len(accounts)),
		index: make(map[string]int, len(accounts)),
	}
	warn := func(msg string, attrs ...any) {
		f.Warnings = append(f.Warnings, fmt.Sprintf("%s: %v", msg, attrs))
		logger.Warn(msg, attrs...)
	}

	for i, acc := range accounts {
		f.Nodes[i] = Node{Account: acc, Parent: NoParent}
		if first, dup := f.index[acc.Code]; dup {
			warn("duplicate account code", slog.String("code", acc.Code), slog.Int("first", first), slog.Int("duplicate", i))
			continue
		}
		f.index[acc.Code] = i
	}

	for i, acc := range accounts {
		if acc.IsRoot() {
			continue
		}
		parent, ok := f.index[*acc.ParentCode]
		if !ok {
			warn("orphaned account", slog.String("code", acc.Code), slog.String("parent_code", *acc.ParentCode))
			continue
		}
		if parent == i {
			continue
		}
		f.Nodes[i].Parent = parent
	}

	f.breakCycles(warn)

	for i := range f.Nodes {
		parent := f.Nodes[i].Parent
		if parent == NoParent {
			f.Roots = append(f.Roots, i)
			continue
		}
		f.Nodes[parent].Children = append(f.Nodes[parent].Children, i)
	}
	f.assignDepth()
	return f
}

const (
	unvisited = iota
	inPath
	settled
)

func (f *Forest) breakCycles(warn func(string, ...any)) {
	state := make([]int, len(f.Nodes))
	for start := range f.Nodes {
		if state[start] != unvisited {
			continue
		}
		var path []int
		cur := start
		for cur != NoParent && state[cur] == unvisited {
			state[cur] = inPath
			path = append(path, cur)
			cur = f.Nodes[cur].Parent
		}
		if cur != NoParent && state[cur] == inPath {
			cycle := path
			for pos, idx := range path {
				if idx == cur {
					cycle = path[pos:]
					break
				}
			}
			promoted := cycle[0]
			codes := make([]string, 0, len(cycle))
			for _, idx := range cycle {
				if idx < promoted {
					promoted = idx
				}
				codes = append(codes, f.Nodes[idx].Code())
			}
			f.Nodes[promoted].Parent = NoParent
			warn("cyclic parent reference", slog.Any("codes", codes), slog.String("promoted", f.Nodes[promoted].Code()))
		}
		for _, idx := range path {
			state[idx] = settled
		}
	}
}

func (f *Forest) assignDepth() {
	var visit func(idx, depth int)
	visit = func(idx, depth int) {
		f.Nodes[idx].Depth = depth
		for _, child := range f.Nodes[idx].Children {
			visit(child, depth+1)
		}
	}
	for _, root := range f.Roots {
		visit(root, 0)
	}
}
