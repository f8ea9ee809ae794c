package systems

import (
	"math"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/traverse"

	"github.com/pthm-cable/critter/components"
)

// CellPos is an integer grid coordinate.
type CellPos struct {
	X, Y int
}

// NavGraph is the 4-connected graph of open cells, used to check which
// colours a start can reach and how far they are.
type NavGraph struct {
	grid  *Grid
	graph *simple.UndirectedGraph
}

// NewNavGraph builds the navigation graph for a grid.
func NewNavGraph(grid *Grid) *NavGraph {
	g := simple.NewUndirectedGraph()
	for y := 0; y < grid.Height(); y++ {
		for x := 0; x < grid.Width(); x++ {
			if !grid.IsWall(x, y) {
				g.AddNode(simple.Node(nodeID(grid, x, y)))
			}
		}
	}
	// Link each open cell to its open east and south neighbours.
	for y := 0; y < grid.Height(); y++ {
		for x := 0; x < grid.Width(); x++ {
			if grid.IsWall(x, y) {
				continue
			}
			from := simple.Node(nodeID(grid, x, y))
			if !grid.IsWall(x+1, y) {
				g.SetEdge(g.NewEdge(from, simple.Node(nodeID(grid, x+1, y))))
			}
			if !grid.IsWall(x, y+1) {
				g.SetEdge(g.NewEdge(from, simple.Node(nodeID(grid, x, y+1))))
			}
		}
	}
	return &NavGraph{grid: grid, graph: g}
}

func nodeID(grid *Grid, x, y int) int64 {
	return int64(y*grid.Width() + x)
}

func (n *NavGraph) pos(id int64) CellPos {
	w := int64(n.grid.Width())
	return CellPos{X: int(id % w), Y: int(id / w)}
}

// ReachableColors returns every colour in the region connected to (x, y).
// A wall or out-of-bounds start reaches nothing.
func (n *NavGraph) ReachableColors(x, y int) components.ColorSet {
	if n.grid.IsWall(x, y) {
		return 0
	}
	var set components.ColorSet
	var bf traverse.BreadthFirst
	bf.Walk(n.graph, simple.Node(nodeID(n.grid, x, y)), func(node graph.Node, _ int) bool {
		p := n.pos(node.ID())
		if c := n.grid.ColorAt(p.X, p.Y); c != components.ColorNone {
			set = set.Add(c)
		}
		return false
	})
	return set
}

// ShortestPath returns the cells from one open cell to another, inclusive,
// and the number of moves. ok is false when no path exists.
func (n *NavGraph) ShortestPath(from, to CellPos) (cells []CellPos, moves int, ok bool) {
	if n.grid.IsWall(from.X, from.Y) || n.grid.IsWall(to.X, to.Y) {
		return nil, 0, false
	}
	s := simple.Node(nodeID(n.grid, from.X, from.Y))
	t := simple.Node(nodeID(n.grid, to.X, to.Y))

	shortest, _ := path.AStar(s, t, n.graph, n.manhattan)
	nodes, weight := shortest.To(t.ID())
	if len(nodes) == 0 || math.IsInf(weight, 1) {
		return nil, 0, false
	}
	cells = make([]CellPos, len(nodes))
	for i, node := range nodes {
		cells[i] = n.pos(node.ID())
	}
	return cells, len(cells) - 1, true
}

func (n *NavGraph) manhattan(a, b graph.Node) float64 {
	pa, pb := n.pos(a.ID()), n.pos(b.ID())
	return math.Abs(float64(pa.X-pb.X)) + math.Abs(float64(pa.Y-pb.Y))
}
