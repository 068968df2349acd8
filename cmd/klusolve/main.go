// The klusolve program is a thin demonstrator for this module's solver
// core: it builds a small resistor-ladder DC circuit with the circuit
// package, runs it through klu.Factorization's Analyze/Factor/Solve, and
// prints node voltages, mirroring original_source/src/simulate.rs's
// simulate() function's "stamp then solve then print one line per node"
// shape. It is not a netlist parser; every demo circuit's topology is
// built in code from the -nodes flag.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/idobenamram/spicy-sub001/circuit"
	"github.com/idobenamram/spicy-sub001/klu"
	"github.com/idobenamram/spicy-sub001/scale"
)

func main() {
	nodes := flag.Int("nodes", 4, "number of ladder nodes (node 0 is ground, not counted)")
	rungOhms := flag.Float64("rung", 1000, "resistance (ohms) from each node to ground")
	railOhms := flag.Float64("rail", 100, "resistance (ohms) between adjacent nodes")
	sourceAmps := flag.Float64("source", 0.01, "current (amps) injected into node 1")
	scaleMode := flag.String("scale", "sum", "scaling mode: none, sum, or max")
	pivotTol := flag.Float64("pivot-tol", 0.001, "partial pivoting tolerance in [0,1]")
	natural := flag.Bool("natural-order", false, "skip AMD ordering and use the natural column order")
	flag.Parse()

	if *nodes < 1 {
		log.Fatalf("klusolve: -nodes must be >= 1, got %d", *nodes)
	}

	var mode scale.Mode
	switch *scaleMode {
	case "none":
		mode = scale.None
	case "sum":
		mode = scale.Sum
	case "max":
		mode = scale.Max
	default:
		log.Fatalf("klusolve: unknown -scale %q (want none, sum, or max)", *scaleMode)
	}

	c := circuit.NewCircuit(*nodes, 0)
	for i := 1; i <= *nodes; i++ {
		c.StampResistor(circuit.Resistor{Node1: i, Node2: 0, Ohms: *rungOhms})
		if i > 1 {
			c.StampResistor(circuit.Resistor{Node1: i - 1, Node2: i, Ohms: *railOhms})
		}
	}
	c.StampCurrentSource(circuit.CurrentSource{Node1: 1, Node2: 0, Amps: *sourceAmps})

	a, rhs, err := c.Build()
	if err != nil {
		log.Fatalf("klusolve: build: %v", err)
	}

	opts := klu.DefaultOptions()
	opts.Scale = mode
	opts.PivotTolerance = *pivotTol
	if *natural {
		opts.Ordering = klu.Natural
	}

	f := klu.New(nil)
	if err := f.Analyze(a, opts); err != nil {
		log.Fatalf("klusolve: analyze: %v", err)
	}
	if err := f.Factor(a); err != nil {
		log.Fatalf("klusolve: factor: %v", err)
	}
	if err := f.Solve(rhs, 1, len(rhs)); err != nil {
		log.Fatalf("klusolve: solve: %v", err)
	}

	for i, v := range rhs {
		fmt.Printf("Node %d: %g\n", i+1, v)
	}
}
