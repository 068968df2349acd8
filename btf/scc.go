package btf

import (
	"github.com/idobenamram/spicy-sub001/csc"
	"github.com/idobenamram/spicy-sub001/permute"
)

// sccGraph is the directed graph on column indices implied by a completed
// transversal: an edge c -> c' exists iff A[match[c'], c] != 0 for c != c'
// (spec §4.3). rowToCol is the inverse of match (every row has exactly one
// matching column once match is a completed permutation), used to look up
// c' given a nonzero's row.
type sccGraph struct {
	a        *csc.Matrix
	rowToCol []int
}

func (g *sccGraph) successors(c int, dst []int) []int {
	dst = dst[:0]
	for p := g.a.ColStart(c); p < g.a.ColEnd(c); p++ {
		r := g.a.RowIdx[p]
		c2 := g.rowToCol[r]
		if c2 != c {
			dst = append(dst, c2)
		}
	}
	return dst
}

// tarjanFrame is one level of the explicit call stack standing in for
// strongconnect's recursion, following this solver's "no deep recursion
// on long circuit chains" design note (spec §9) — the shape (index table,
// low-link table, an explicit vertex stack, a component list) follows
// gonum's graph/topo Tarjan implementation, translated from recursive
// graph.Node traversal to an explicit-stack walk over int vertices.
type tarjanFrame struct {
	v        int
	succIdx  int
	succs    []int
}

// tarjanSCC runs an iterative Tarjan's strongly-connected-components pass
// over g, visiting vertices 0..n-1 in ascending order and, within each
// vertex, successors in the order successors() yields them (ascending row
// index within the originating column, per CSC's I4 invariant) — giving a
// fully deterministic result for a fixed input, per spec §4.3.
//
// It returns, for each vertex, the 0-based index of the component it
// belongs to, numbered in the order components are completed. This order
// is the "topological order of SCCs" spec §4.3 asks for: because each
// component is only finalized once every vertex reachable from it has
// already been explored, a component reachable *from* another can only be
// completed *before* it — an edge u -> v in the condensation graph always
// has comp(u) >= comp(v) in this numbering, which is exactly what the BTF
// driver needs to place later (sink-side) components into lower column
// positions and obtain a block-upper-triangular permuted matrix.
func tarjanSCC(g *sccGraph, n int) (compOf []int, nComps int, order []int) {
	const unvisited = -1
	index := make([]int, n)
	lowlink := make([]int, n)
	onStack := make([]bool, n)
	compOf = make([]int, n)
	for i := range index {
		index[i] = unvisited
		compOf[i] = unvisited
	}

	var vstack []int // the Tarjan "component candidate" stack
	var frames []tarjanFrame
	nextIndex := 0
	order = make([]int, 0, n)

	pushComponent := func(root int) {
		var comp []int
		for {
			w := vstack[len(vstack)-1]
			vstack = vstack[:len(vstack)-1]
			onStack[w] = false
			compOf[w] = nComps
			comp = append(comp, w)
			if w == root {
				break
			}
		}
		order = append(order, comp...)
		nComps++
	}

	succBuf := make([]int, 0, 8)
	for start := 0; start < n; start++ {
		if index[start] != unvisited {
			continue
		}
		frames = append(frames, tarjanFrame{v: start})
		index[start] = nextIndex
		lowlink[start] = nextIndex
		nextIndex++
		vstack = append(vstack, start)
		onStack[start] = true

		for len(frames) > 0 {
			top := &frames[len(frames)-1]
			if top.succs == nil {
				top.succs = append([]int(nil), g.successors(top.v, succBuf)...)
			}
			if top.succIdx < len(top.succs) {
				w := top.succs[top.succIdx]
				top.succIdx++
				if index[w] == unvisited {
					index[w] = nextIndex
					lowlink[w] = nextIndex
					nextIndex++
					vstack = append(vstack, w)
					onStack[w] = true
					frames = append(frames, tarjanFrame{v: w})
				} else if onStack[w] {
					if index[w] < lowlink[top.v] {
						lowlink[top.v] = index[w]
					}
				}
				continue
			}
			// Done with top.v: propagate lowlink to parent, pop a
			// component if top.v is a root.
			v := top.v
			frames = frames[:len(frames)-1]
			if len(frames) > 0 {
				parent := &frames[len(frames)-1]
				if lowlink[v] < lowlink[parent.v] {
					lowlink[parent.v] = lowlink[v]
				}
			}
			if lowlink[v] == index[v] {
				pushComponent(v)
			}
		}
	}
	return compOf, nComps, order
}

// buildRowToCol inverts a completed match array (possibly flip-encoded)
// into a plain row->column map, used to build the sccGraph's successor
// function.
func buildRowToCol(match []int, n int) []int {
	rowToCol := make([]int, n)
	for c, v := range match {
		rowToCol[permute.Unflip(v)] = c
	}
	return rowToCol
}
