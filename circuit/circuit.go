// Package circuit is a minimal modified-nodal-analysis stamping
// demonstrator. It is not a netlist parser or a device-model library
// (both remain explicit non-goals, spec §1); it restores just enough of
// the narrow "device calls add_entry(row, col, value) on a builder"
// interface spec §1/§6 describes, in the shape original_source's
// src/simulate.rs's stamp_resistor/stamp_current_source functions show,
// so an end-to-end caller can exercise the whole
// triplets -> CSC -> BTF -> symbolic -> numeric -> solve pipeline without
// hand-building a matrix.
//
// Ground 0 is the implicit reference node and is never assigned a row or
// column; every other node 1..N-1 gets one MNA equation.
package circuit

import "github.com/idobenamram/spicy-sub001/csc"

// Resistor stamps conductance 1/Ohms between Node1 and Node2 into G,
// mirroring stamp_resistor's "add to both diagonals, subtract from both
// off-diagonals, skip ground" shape.
type Resistor struct {
	Node1, Node2 int
	Ohms         float64
}

// CurrentSource stamps a current of Amps flowing from Node1 to Node2 into
// the RHS vector, mirroring stamp_current_source.
type CurrentSource struct {
	Node1, Node2 int
	Amps         float64
}

// VoltageSource is not present in original_source's resistive-only
// simulate(); it is added here (beyond the distillation) as the natural
// next MNA stamp a DC solver needs to be useful for more than a resistor
// network, via the standard extra-unknown-for-the-branch-current MNA
// formulation rather than node elimination. ExtraRow/ExtraCol name the
// auxiliary unknown (the branch current) this source introduces; the
// caller is responsible for allocating one extra row/column per
// VoltageSource in Builder's dimensions before stamping (NewCircuit's
// nVsrc argument below does this).
type VoltageSource struct {
	Node1, Node2 int
	Volts        float64
}

// Circuit accumulates stamps into a csc.Builder sized for n ordinary
// nodes (ground excluded) plus one auxiliary row/column per voltage
// source, and a parallel RHS vector, following the same "device only ever
// calls Push"-shaped interface original_source/src/simulate.rs's
// simulate() drives stamp_resistor/stamp_current_source through.
type Circuit struct {
	n   int // ordinary (non-ground) node count
	b   *csc.Builder
	rhs []float64
}

// NewCircuit starts a Circuit for nNodes ordinary nodes (1..nNodes,
// ground is node 0 and is never stamped) and nVsrc voltage sources, each
// of which needs one extra MNA row/column.
func NewCircuit(nNodes, nVsrc int) *Circuit {
	dim := nNodes + nVsrc
	return &Circuit{
		n:   nNodes,
		b:   csc.NewBuilder(dim, dim, 4*nNodes+2*nVsrc),
		rhs: make([]float64, dim),
	}
}

// row maps a 1-based node index to its MNA row/column, or -1 for ground
// (node 0), matching stamp_resistor's "if let Some(node) = nodes.get(...)"
// ground-is-absent-from-the-map check.
func (c *Circuit) row(node int) int {
	if node == 0 {
		return -1
	}
	return node - 1
}

// StampResistor adds r's conductance contribution to the conductance
// block of the growing matrix.
func (c *Circuit) StampResistor(r Resistor) {
	g := 1.0 / r.Ohms
	n1, n2 := c.row(r.Node1), c.row(r.Node2)
	if n1 >= 0 {
		c.b.Push(n1, n1, g)
	}
	if n2 >= 0 {
		c.b.Push(n2, n2, g)
	}
	if n1 >= 0 && n2 >= 0 {
		c.b.Push(n1, n2, -g)
		c.b.Push(n2, n1, -g)
	}
}

// StampCurrentSource adds s's contribution to the RHS vector.
func (c *Circuit) StampCurrentSource(s CurrentSource) {
	n1, n2 := c.row(s.Node1), c.row(s.Node2)
	if n1 >= 0 {
		c.rhs[n1] += s.Amps
	}
	if n2 >= 0 {
		c.rhs[n2] -= s.Amps
	}
}

// StampVoltageSource adds v's branch-current unknown at auxiliary index
// aux (the caller picks which of the nVsrc reserved extra rows/columns
// this source owns) via the standard +1/-1 coupling and Volts RHS entry.
func (c *Circuit) StampVoltageSource(v VoltageSource, aux int) {
	k := c.n + aux
	n1, n2 := c.row(v.Node1), c.row(v.Node2)
	if n1 >= 0 {
		c.b.Push(n1, k, 1)
		c.b.Push(k, n1, 1)
	}
	if n2 >= 0 {
		c.b.Push(n2, k, -1)
		c.b.Push(k, n2, -1)
	}
	c.rhs[k] += v.Volts
}

// Build finalizes the accumulated stamps into a square CSC matrix and its
// matching RHS slice, ready for klu.Factorization.Analyze/Factor/Solve.
func (c *Circuit) Build() (*csc.Matrix, []float64, error) {
	m, err := c.b.BuildCSC()
	if err != nil {
		return nil, nil, err
	}
	return m, c.rhs, nil
}
