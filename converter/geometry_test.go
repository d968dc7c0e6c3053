package converter

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/qmuntal/gltf"

	"github.com/logue/vrm2sl/gltfutil"
)

// positionDoc packs the given vertex positions into a POSITION accessor on a
// single-primitive mesh. A second accessor mirrors the layout as a morph
// target when withTarget is set.
func positionDoc(t *testing.T, positions [][3]float32, withTarget bool) *gltf.Document {
	t.Helper()
	n := len(positions)
	size := n * 12
	total := size
	if withTarget {
		total *= 2
	}
	data := make([]byte, total)

	prim := &gltf.Primitive{Attributes: map[string]uint32{"POSITION": 0}}
	doc := &gltf.Document{
		Meshes:      []*gltf.Mesh{{Name: "Body", Primitives: []*gltf.Primitive{prim}}},
		Buffers:     []*gltf.Buffer{{ByteLength: uint32(total), Data: data}},
		BufferViews: []*gltf.BufferView{{Buffer: 0, ByteLength: uint32(size)}},
		Accessors: []*gltf.Accessor{{
			BufferView:    gltf.Index(0),
			ComponentType: gltf.ComponentFloat,
			Type:          gltf.AccessorVec3,
			Count:         uint32(n),
		}},
	}
	if withTarget {
		doc.BufferViews = append(doc.BufferViews,
			&gltf.BufferView{Buffer: 0, ByteOffset: uint32(size), ByteLength: uint32(size)})
		doc.Accessors = append(doc.Accessors, &gltf.Accessor{
			BufferView:    gltf.Index(1),
			ComponentType: gltf.ComponentFloat,
			Type:          gltf.AccessorVec3,
			Count:         uint32(n),
		})
		prim.Targets = []map[string]uint32{{"POSITION": 1}}
	}

	for a := 0; a < len(doc.Accessors); a++ {
		l, err := gltfutil.ResolveLayout(doc, uint32(a))
		if err != nil {
			t.Fatal(err)
		}
		for i, p := range positions {
			for lane := 0; lane < 3; lane++ {
				l.SetFloat(i, lane, p[lane])
			}
		}
	}
	return doc
}

func TestMeshStatistics(t *testing.T) {
	doc := &gltf.Document{
		Accessors: []*gltf.Accessor{
			{Count: 100},
			{Count: 300},
		},
		Meshes: []*gltf.Mesh{{Name: "Body", Primitives: []*gltf.Primitive{
			{Attributes: map[string]uint32{"POSITION": 0}, Indices: gltf.Index(1)},
			{Attributes: map[string]uint32{"POSITION": 0}},
		}}},
	}
	vertices, polygons, issues := meshStatistics(doc)
	if vertices != 200 {
		t.Error("vertices: ", vertices)
	}
	if polygons != 133 {
		t.Error("polygons: ", polygons)
	}
	if len(issues) != 0 {
		t.Error("issues: ", issues)
	}
}

func TestMeshStatisticsVertexLimit(t *testing.T) {
	doc := &gltf.Document{
		Accessors: []*gltf.Accessor{{Count: 70000}},
		Meshes: []*gltf.Mesh{{Name: "Body", Primitives: []*gltf.Primitive{
			{Attributes: map[string]uint32{"POSITION": 0}},
		}}},
	}
	_, _, issues := meshStatistics(doc)
	if len(issues) != 1 {
		t.Fatal("issue count: ", len(issues))
	}
	if issues[0].Severity != SeverityError || issues[0].Code != CodeVertexLimitExceeded {
		t.Error("issue: ", issues[0])
	}
	want := "Vertex limit exceeded (mesh: Body, primitive: 0, current: 70000 / limit: 65535)"
	if issues[0].Message != want {
		t.Error("message: ", issues[0].Message)
	}
}

func TestEstimateHeight(t *testing.T) {
	doc := positionDoc(t, [][3]float32{
		{0, -0.05, 0},
		{0.3, 1.65, 0.1},
	}, false)

	height, ok := estimateHeight(doc)
	if !ok {
		t.Fatal("height should resolve")
	}
	if height < 170-eps || height > 170+eps {
		t.Error("height: ", height)
	}

	if _, ok := estimateHeight(&gltf.Document{}); ok {
		t.Error("empty document has no height")
	}
}

func TestBakeScaleNoop(t *testing.T) {
	doc := positionDoc(t, [][3]float32{{1, 2, 3}}, false)
	doc.Nodes = []*gltf.Node{{Translation: [3]float32{0.5, 1, 0}}}
	snapshot := append([]byte(nil), doc.Buffers[0].Data...)

	bakeScale(doc, 1.0)
	if !bytes.Equal(doc.Buffers[0].Data, snapshot) {
		t.Error("scale 1 should not touch the buffer")
	}
	if doc.Nodes[0].Translation != ([3]float32{0.5, 1, 0}) {
		t.Error("scale 1 should not touch translations: ", doc.Nodes[0].Translation)
	}

	bakeScale(doc, float32(math.NaN()))
	if !bytes.Equal(doc.Buffers[0].Data, snapshot) {
		t.Error("NaN scale should be rejected")
	}
}

func TestBakeScale(t *testing.T) {
	doc := positionDoc(t, [][3]float32{
		{1, 1, 1},
		{2, 0.5, 0},
	}, true)
	doc.Nodes = []*gltf.Node{
		{Translation: [3]float32{1, 2, 3}},
		{Matrix: [16]float32{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0.5, 0, 0, 1}},
	}
	doc.Accessors[0].Min = []float32{1, 0.5, 0}
	doc.Accessors[0].Max = []float32{2, 1, 1}

	bakeScale(doc, 2)

	if doc.Nodes[0].Translation != ([3]float32{2, 4, 6}) {
		t.Error("translation: ", doc.Nodes[0].Translation)
	}
	if doc.Nodes[1].Matrix[12] != 1 {
		t.Error("matrix translation: ", doc.Nodes[1].Matrix[12])
	}

	for a := 0; a < 2; a++ {
		l, err := gltfutil.ResolveLayout(doc, uint32(a))
		if err != nil {
			t.Fatal(err)
		}
		if y, _ := l.Float(0, 1); y != 2 {
			t.Error("position accessor: ", a, y)
		}
		if x, _ := l.Float(1, 0); x != 4 {
			t.Error("position accessor: ", a, x)
		}
	}

	if doc.Accessors[0].Min[1] != 1 || doc.Accessors[0].Max[0] != 4 {
		t.Error("bounds: ", doc.Accessors[0].Min, doc.Accessors[0].Max)
	}
}

func TestParseResizeMethod(t *testing.T) {
	for _, name := range []string{"nearest", "bilinear", "bicubic", "gaussian", "lanczos3"} {
		method, err := ParseResizeMethod(name)
		if err != nil || string(method) != name {
			t.Error("method: ", name, method, err)
		}
	}
	if _, err := ParseResizeMethod("blur"); err == nil {
		t.Error("unknown method should fail")
	} else if !strings.Contains(err.Error(), "blur") {
		t.Error("error should name the method: ", err)
	}
}
