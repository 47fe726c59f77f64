package layout

import (
	"encoding/xml"
	"fmt"
	"os"
	"strconv"

	"gonum.org/v1/gonum/mat"
)

// orientationGroups are the ids of the <g> subtrees scanned for guideline
// geometry; geometry elsewhere in the document belongs to other consumers
// and is ignored by this index
var orientationGroups = []string{"Guidelines", "Physical"}

// svgNode is a generic SVG element.  Tag matching is namespace agnostic
// since real-world exports prefix tags inconsistently.
type svgNode struct {
	XMLName   xml.Name
	ID        string    `xml:"id,attr"`
	Transform string    `xml:"transform,attr"`
	X1        string    `xml:"x1,attr"`
	Y1        string    `xml:"y1,attr"`
	X2        string    `xml:"x2,attr"`
	Y2        string    `xml:"y2,attr"`
	Points    string    `xml:"points,attr"`
	Children  []svgNode `xml:",any"`
}

// Load parses an SVG layout file and builds the guideline index.
// alignment is an optional 2x3 affine matrix mapping the layout's local
// coordinate space into map pixels; nil means identity.
func Load(path string, alignment [][]float64) (*Index, error) {

	data, err := os.ReadFile(path)

	if err != nil {
		return nil, fmt.Errorf("error reading layout file: %w", err)
	}

	return Parse(data, alignment)
}

// Parse builds the guideline index from raw SVG document bytes
func Parse(data []byte, alignment [][]float64) (*Index, error) {

	var root svgNode

	if err := xml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("error parsing layout document: %w", err)
	}

	align := alignmentMatrix(alignment)

	var segs []Segment

	for _, g := range findOrientationGroups(&root) {
		segs = append(segs, extractSegments(g, align)...)
	}

	return &Index{segments: segs}, nil
}

// findOrientationGroups walks the whole document and returns every <g>
// element whose id names an orientation group, in document order
func findOrientationGroups(root *svgNode) []*svgNode {

	var found []*svgNode

	stack := []*svgNode{root}

	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if n.XMLName.Local == "g" && isOrientationGroup(n.ID) {
			found = append(found, n)
			continue
		}

		// push children in reverse so they pop in document order
		for i := len(n.Children) - 1; i >= 0; i-- {
			stack = append(stack, &n.Children[i])
		}
	}

	return found
}

// isOrientationGroup reports whether id names a scanned group
func isOrientationGroup(id string) bool {
	for _, g := range orientationGroups {
		if id == g {
			return true
		}
	}
	return false
}

// walkItem pairs a node with the affine transform inherited from its
// ancestors inside the group
type walkItem struct {
	node      *svgNode
	inherited *mat.Dense
}

// extractSegments walks a group subtree with an explicit worklist,
// accumulating each node's local transform onto the inherited one and
// collecting transformed line/polygon/polyline geometry.  Transforms on
// ancestors of the group itself are deliberately not applied; the
// alignment matrix maps group-local coordinates straight to map pixels.
func extractSegments(group *svgNode, align *mat.Dense) []Segment {

	var segs []Segment

	stack := []walkItem{{node: group, inherited: identity3()}}

	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		local := parseTransform(it.node.Transform)

		curr := mat.NewDense(3, 3, nil)
		curr.Mul(it.inherited, local)

		full := mat.NewDense(3, 3, nil)
		full.Mul(align, curr)

		pts, closed := nodeGeometry(it.node)

		if len(pts) > 0 {
			for i := range pts {
				pts[i][0], pts[i][1] = applyAffine(full, pts[i][0], pts[i][1])
			}

			for i := 0; i < len(pts)-1; i++ {
				segs = append(segs, Segment{
					X1: pts[i][0], Y1: pts[i][1],
					X2: pts[i+1][0], Y2: pts[i+1][1],
				})
			}

			if closed && len(pts) > 1 {
				last := len(pts) - 1
				segs = append(segs, Segment{
					X1: pts[last][0], Y1: pts[last][1],
					X2: pts[0][0], Y2: pts[0][1],
				})
			}
		}

		for i := len(it.node.Children) - 1; i >= 0; i-- {
			stack = append(stack, walkItem{
				node:      &it.node.Children[i],
				inherited: curr,
			})
		}
	}

	return segs
}

// nodeGeometry returns a node's untransformed polyline points and whether
// the shape implicitly closes.  Nodes with no supported geometry return an
// empty slice.
func nodeGeometry(n *svgNode) ([][2]float64, bool) {

	switch n.XMLName.Local {
	case "line":
		return [][2]float64{
			{attrFloat(n.X1), attrFloat(n.Y1)},
			{attrFloat(n.X2), attrFloat(n.Y2)},
		}, false

	case "polygon", "polyline":
		vals := parseArgs(n.Points)

		// a trailing odd coordinate is dropped
		var pts [][2]float64
		for i := 0; i+1 < len(vals); i += 2 {
			pts = append(pts, [2]float64{vals[i], vals[i+1]})
		}

		return pts, n.XMLName.Local == "polygon"
	}

	return nil, false
}

// attrFloat parses a coordinate attribute, treating missing or malformed
// values as zero
func attrFloat(s string) float64 {
	if s == "" {
		return 0
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}

	return v
}
