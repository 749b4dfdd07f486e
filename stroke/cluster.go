package stroke

import (
	"fmt"
	"strings"

	"github.com/ddvk/inkcalc/ink"
)

// DefaultBandPadding widens the last stroke's vertical band when looking
// for the rest of its equation.
const DefaultBandPadding = 90.0

// Cluster is a non-empty group of shapes recognized as one unit. Bounds is
// the union of the member extents.
type Cluster struct {
	Shapes []*ink.Shape
	Bounds ink.Bounds
}

func newCluster(shapes []*ink.Shape) Cluster {
	b := ink.EmptyBounds()
	for _, sh := range shapes {
		b = b.Union(sh.Bounds())
	}
	return Cluster{Shapes: shapes, Bounds: b}
}

// Signature identifies the cluster content: member ids with their segment
// counts, in the order the shapes were drawn.
func (c Cluster) Signature() string {
	var b strings.Builder
	for _, sh := range c.Shapes {
		fmt.Fprintf(&b, "%s:%d|", sh.ID, len(sh.Segments))
	}
	return b.String()
}

func (c Cluster) Empty() bool {
	return len(c.Shapes) == 0
}

// ActiveCluster gathers the ink whose vertical extent overlaps the band of
// the most recently drawn shape, padded by bandPadding on both sides.
// shapes must be in drawing order.
func ActiveCluster(shapes []*ink.Shape, bandPadding float64) (Cluster, bool) {
	drawn := inkOnly(shapes)
	if len(drawn) == 0 {
		return Cluster{}, false
	}

	last := drawn[len(drawn)-1].Bounds()
	minY, maxY := last.MinY-bandPadding, last.MaxY+bandPadding

	var members []*ink.Shape
	for _, sh := range drawn {
		if sh.Bounds().OverlapsBand(minY, maxY) {
			members = append(members, sh)
		}
	}
	return newCluster(members), true
}

// GroupByProximity partitions the ink into clusters whose boxes are
// connected by gaps of at most maxDistance. Membership is transitive and
// independent of input order; clusters and their members follow the order
// of first appearance.
func GroupByProximity(shapes []*ink.Shape, maxDistance float64) []Cluster {
	drawn := inkOnly(shapes)
	n := len(drawn)
	if n == 0 {
		return nil
	}

	bounds := make([]ink.Bounds, n)
	for i, sh := range drawn {
		bounds[i] = sh.Bounds()
	}

	uf := newUnionFind(n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if bounds[i].Distance(bounds[j]) <= maxDistance {
				uf.union(i, j)
			}
		}
	}

	index := make(map[int]int)
	var groups [][]*ink.Shape
	for i, sh := range drawn {
		root := uf.find(i)
		g, ok := index[root]
		if !ok {
			g = len(groups)
			index[root] = g
			groups = append(groups, nil)
		}
		groups[g] = append(groups[g], sh)
	}

	clusters := make([]Cluster, len(groups))
	for i, g := range groups {
		clusters[i] = newCluster(g)
	}
	return clusters
}

func inkOnly(shapes []*ink.Shape) []*ink.Shape {
	out := make([]*ink.Shape, 0, len(shapes))
	for _, sh := range shapes {
		if sh.IsInk() {
			out = append(out, sh)
		}
	}
	return out
}

type unionFind struct {
	parent []int
	rank   []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{parent: make([]int, n), rank: make([]int, n)}
	for i := range uf.parent {
		uf.parent[i] = i
	}
	return uf
}

func (u *unionFind) find(i int) int {
	for u.parent[i] != i {
		u.parent[i] = u.parent[u.parent[i]]
		i = u.parent[i]
	}
	return i
}

func (u *unionFind) union(a, b int) {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return
	}
	switch {
	case u.rank[ra] < u.rank[rb]:
		u.parent[ra] = rb
	case u.rank[ra] > u.rank[rb]:
		u.parent[rb] = ra
	default:
		u.parent[rb] = ra
		u.rank[ra]++
	}
}
