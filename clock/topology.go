// Package clock models a chip's clock tree: oscillators feeding
// multiplexers, dividers and peripheral gates. Frequency plans are proposed
// and validated in memory, then committed to hardware in an order that never
// leaves a running peripheral without a valid clock.
package clock

import (
	"cmp"
	"fmt"
	"time"

	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/multi"
	"gonum.org/v1/gonum/graph/topo"

	"max7800x-hal/errcode"
)

// NodeID names a clock node, e.g. "ipo" or "uart0".
type NodeID string

type Kind uint8

const (
	Oscillator Kind = iota
	Mux
	Divider
	Gate
)

func (k Kind) String() string {
	switch k {
	case Oscillator:
		return "oscillator"
	case Mux:
		return "mux"
	case Divider:
		return "divider"
	case Gate:
		return "gate"
	}
	return "unknown"
}

// DefaultStartup bounds the stable wait for an oscillator with no Startup.
const DefaultStartup = 10 * time.Millisecond

// Node is one element of the clock tree.
//
// Oscillators have a fixed Hz and no inputs. A Mux selects one of Inputs.
// Dividers and Gates have exactly one input; a Divider with a single
// divisor is a fixed prescaler. MaxHz of zero means unbounded.
type Node struct {
	ID       NodeID
	Kind     Kind
	Hz       uint32
	Inputs   []NodeID
	Divisors []uint32
	MinHz    uint32
	MaxHz    uint32
	Startup  time.Duration
	AlwaysOn bool
}

// Topology is a validated, immutable clock tree.
type Topology struct {
	nodes  map[NodeID]*Node
	order  []NodeID // parents before children
	system NodeID
}

type vertex struct {
	id  int64
	key NodeID
}

func (v vertex) ID() int64 { return v.id }

// NewTopology validates nodes and orders them. system names the mux that
// selects the system clock source.
func NewTopology(system NodeID, nodes ...Node) (*Topology, error) {
	t := &Topology{nodes: make(map[NodeID]*Node, len(nodes)), system: system}
	verts := make(map[NodeID]vertex, len(nodes))
	for i := range nodes {
		n := nodes[i]
		if n.ID == "" {
			return nil, errcode.New(errcode.InvalidParams, "clock.topology", "node without id")
		}
		if _, dup := t.nodes[n.ID]; dup {
			return nil, errcode.New(errcode.InvalidParams, "clock.topology", "duplicate node "+string(n.ID))
		}
		n.Divisors = append([]uint32(nil), n.Divisors...)
		slices.Sort(n.Divisors)
		t.nodes[n.ID] = &n
		verts[n.ID] = vertex{id: int64(i), key: n.ID}
	}

	g := multi.NewDirectedGraph()
	for _, v := range verts {
		g.AddNode(v)
	}
	for _, n := range t.nodes {
		if err := checkShape(n); err != nil {
			return nil, err
		}
		for _, in := range n.Inputs {
			from, ok := verts[in]
			if !ok {
				return nil, errcode.New(errcode.InvalidParams, "clock.topology",
					fmt.Sprintf("%s: unknown input %s", n.ID, in))
			}
			if in == n.ID {
				return nil, errcode.New(errcode.InvalidParams, "clock.topology", "self loop at "+string(n.ID))
			}
			if t.nodes[in].Kind == Gate {
				return nil, errcode.New(errcode.InvalidParams, "clock.topology",
					fmt.Sprintf("%s: gate %s cannot feed other nodes", n.ID, in))
			}
			g.SetLine(g.NewLine(from, verts[n.ID]))
		}
	}

	sorted, err := topo.SortStabilized(g, func(ns []graph.Node) {
		slices.SortFunc(ns, func(a, b graph.Node) int { return cmp.Compare(a.ID(), b.ID()) })
	})
	if err != nil {
		return nil, errcode.Wrap(errcode.InvalidParams, "clock.topology", err)
	}
	for _, v := range sorted {
		t.order = append(t.order, v.(vertex).key)
	}

	if s, ok := t.nodes[system]; !ok || s.Kind != Mux {
		return nil, errcode.New(errcode.InvalidParams, "clock.topology", "system clock must name a mux")
	}
	return t, nil
}

func checkShape(n *Node) error {
	bad := func(msg string) error {
		return errcode.New(errcode.InvalidParams, "clock.topology", string(n.ID)+": "+msg)
	}
	switch n.Kind {
	case Oscillator:
		if len(n.Inputs) != 0 || n.Hz == 0 {
			return bad("oscillator needs a frequency and no inputs")
		}
	case Mux:
		if len(n.Inputs) == 0 {
			return bad("mux needs inputs")
		}
	case Divider:
		if len(n.Inputs) != 1 || len(n.Divisors) == 0 {
			return bad("divider needs one input and at least one divisor")
		}
		for _, d := range n.Divisors {
			if d == 0 {
				return bad("zero divisor")
			}
		}
	case Gate:
		if len(n.Inputs) != 1 {
			return bad("gate needs one input")
		}
	default:
		return bad("unknown kind")
	}
	return nil
}

// Node returns a copy of the node with id.
func (t *Topology) Node(id NodeID) (Node, bool) {
	n, ok := t.nodes[id]
	if !ok {
		return Node{}, false
	}
	return *n, true
}

// Nodes returns every node, parents before children.
func (t *Topology) Nodes() []Node {
	out := make([]Node, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, *t.nodes[id])
	}
	return out
}

// System is the mux that selects the system clock source.
func (t *Topology) System() NodeID { return t.system }

func (t *Topology) kind(id NodeID) (Kind, bool) {
	n, ok := t.nodes[id]
	if !ok {
		return 0, false
	}
	return n.Kind, true
}

// parent returns the input currently feeding id under sel.
func (t *Topology) parent(id NodeID, sel map[NodeID]NodeID) (NodeID, bool) {
	n := t.nodes[id]
	switch n.Kind {
	case Mux:
		in, ok := sel[id]
		return in, ok
	case Divider, Gate:
		return n.Inputs[0], true
	}
	return "", false
}

// sourceOf walks up from id to the oscillator feeding it.
func (t *Topology) sourceOf(id NodeID, sel map[NodeID]NodeID) (NodeID, bool) {
	for {
		n := t.nodes[id]
		if n.Kind == Oscillator {
			return id, true
		}
		p, ok := t.parent(id, sel)
		if !ok {
			return "", false
		}
		id = p
	}
}

func (n *Node) accepts(in NodeID) bool {
	for _, x := range n.Inputs {
		if x == in {
			return true
		}
	}
	return false
}

func (n *Node) allows(d uint32) bool {
	for _, x := range n.Divisors {
		if x == d {
			return true
		}
	}
	return false
}
