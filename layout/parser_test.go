package layout

import (
	"testing"
)

const testSVG = `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="400" height="400">
  <g id="Background">
    <line x1="0" y1="0" x2="999" y2="999"/>
  </g>
  <g id="Guidelines" transform="translate(10, 0)">
    <line x1="0" y1="0" x2="10" y2="0"/>
    <g transform="rotate(90)">
      <line x1="0" y1="0" x2="1" y2="0"/>
    </g>
    <polyline points="0,0 1,0 1,1"/>
  </g>
  <g id="Physical">
    <polygon points="0 0 2 0 2 2"/>
  </g>
</svg>`

// TestParseGroupScoping checks only the Guidelines and Physical subtrees
// contribute segments, with nested transforms applied and polygons closed
func TestParseGroupScoping(t *testing.T) {

	ix, err := Parse([]byte(testSVG), nil)

	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	// guidelines: 1 line + 1 rotated line + 2 polyline segments;
	// physical: 3 polygon segments (implicitly closed)
	if ix.Len() != 7 {
		t.Fatalf("expected 7 segments, got %d", ix.Len())
	}

	segs := ix.Segments()

	// the plain line carries the group translation
	want := Segment{X1: 10, Y1: 0, X2: 20, Y2: 0}
	if segs[0] != want {
		t.Errorf("first segment = %+v, expected %+v", segs[0], want)
	}

	// the nested rotate(90) turns the unit line upward before the group
	// translation applies
	rot := segs[1]
	if !almostEqual(rot.X1, 10, 1e-9) || !almostEqual(rot.Y1, 0, 1e-9) ||
		!almostEqual(rot.X2, 10, 1e-9) || !almostEqual(rot.Y2, 1, 1e-9) {
		t.Errorf("rotated segment = %+v, expected (10,0)-(10,1)", rot)
	}

	// the polygon's closing segment returns to its first point
	closing := segs[6]
	if closing.X2 != 0 || closing.Y2 != 0 {
		t.Errorf("polygon closing segment = %+v, expected end (0, 0)", closing)
	}
}

// TestParseAlignment checks the external alignment transform composes on
// top of the document transforms
func TestParseAlignment(t *testing.T) {

	align := [][]float64{
		{2, 0, 0},
		{0, 2, 0},
	}

	ix, err := Parse([]byte(testSVG), align)

	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	segs := ix.Segments()

	want := Segment{X1: 20, Y1: 0, X2: 40, Y2: 0}
	if segs[0] != want {
		t.Errorf("aligned first segment = %+v, expected %+v", segs[0], want)
	}
}

// TestParseNoGroups checks a document without orientation groups yields
// an empty but usable index
func TestParseNoGroups(t *testing.T) {

	doc := `<svg xmlns="http://www.w3.org/2000/svg">
	  <line x1="0" y1="0" x2="10" y2="0"/>
	</svg>`

	ix, err := Parse([]byte(doc), nil)

	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if ix.Len() != 0 {
		t.Errorf("expected no segments, got %d", ix.Len())
	}

	if _, ok := ix.NearestHeading(0, 0); ok {
		t.Error("empty index should not return a heading")
	}
}

// TestParseMalformedDocument checks invalid XML reports an error
func TestParseMalformedDocument(t *testing.T) {

	if _, err := Parse([]byte("<svg><g id="), nil); err == nil {
		t.Error("expected an error for malformed XML")
	}
}
