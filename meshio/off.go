package meshio

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/wippyai/meshcut/component"
	"github.com/wippyai/meshcut/errors"
	"github.com/wippyai/meshcut/mesh"
)

// Data is a polygon mesh in index-array form.
type Data struct {
	Coords      []float64 // xyz per vertex
	FaceIndices []uint32
	FaceSizes   []uint32
}

// NumVertices returns the number of vertices.
func (d *Data) NumVertices() int { return len(d.Coords) / 3 }

// NumFaces returns the number of faces.
func (d *Data) NumFaces() int { return len(d.FaceSizes) }

// Mesh builds a half-edge mesh from d.
func (d *Data) Mesh() (*mesh.Mesh, error) {
	m, err := mesh.FromIndexArrays(d.Coords, d.FaceIndices, d.FaceSizes)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseLoad, errors.KindInvalidData, err, "build mesh")
	}
	return m, nil
}

// FromArrays returns the polygon faces of a component's export arrays.
func FromArrays(a *component.IndexArrayMesh) *Data {
	return &Data{Coords: a.Vertices, FaceIndices: a.FaceIndices, FaceSizes: a.FaceSizes}
}

// FromTriangles returns a triangle soup over coords.
func FromTriangles(coords []float64, tri []uint32) *Data {
	sizes := make([]uint32, len(tri)/3)
	for i := range sizes {
		sizes[i] = 3
	}
	return &Data{Coords: coords, FaceIndices: tri, FaceSizes: sizes}
}

// tokenizer yields whitespace-separated fields of an OFF file, skipping
// comments and blank lines while tracking line numbers.
type tokenizer struct {
	sc     *bufio.Scanner
	fields []string
	line   int
}

func (t *tokenizer) next() (string, error) {
	for len(t.fields) == 0 {
		if !t.sc.Scan() {
			if err := t.sc.Err(); err != nil {
				return "", errors.Wrap(errors.PhaseLoad, errors.KindInvalidData, err, "read")
			}
			return "", io.ErrUnexpectedEOF
		}
		t.line++
		text := t.sc.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		t.fields = strings.Fields(text)
	}
	f := t.fields[0]
	t.fields = t.fields[1:]
	return f, nil
}

func (t *tokenizer) fail(what, detail string) error {
	return errors.InvalidData(errors.PhaseLoad, []string{fmt.Sprintf("line %d", t.line), what}, detail)
}

func (t *tokenizer) uint(what string) (uint32, error) {
	tok, err := t.next()
	if err != nil {
		return 0, t.eof(what, err)
	}
	v, err := strconv.ParseUint(tok, 10, 32)
	if err != nil {
		return 0, t.fail(what, fmt.Sprintf("invalid integer %q", tok))
	}
	return uint32(v), nil
}

func (t *tokenizer) float(what string) (float64, error) {
	tok, err := t.next()
	if err != nil {
		return 0, t.eof(what, err)
	}
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, t.fail(what, fmt.Sprintf("invalid coordinate %q", tok))
	}
	return v, nil
}

func (t *tokenizer) eof(what string, err error) error {
	if err == io.ErrUnexpectedEOF {
		return t.fail(what, "unexpected end of file")
	}
	return err
}

// Read parses an ASCII OFF file. Every vertex and every face is one line;
// a vertex line holds exactly three coordinates, and values after a face's
// vertex indices (colours) are ignored. Variants such as COFF or NOFF are
// rejected.
func Read(r io.Reader) (*Data, error) {
	t := &tokenizer{sc: bufio.NewScanner(r)}

	magic, err := t.next()
	if err != nil {
		return nil, t.eof("header", err)
	}
	if magic != "OFF" {
		if strings.HasSuffix(magic, "OFF") {
			return nil, t.fail("header", fmt.Sprintf("unsupported OFF variant %q", magic))
		}
		return nil, t.fail("header", fmt.Sprintf("expected OFF, got %q", magic))
	}

	nv, err := t.uint("vertex count")
	if err != nil {
		return nil, err
	}
	nf, err := t.uint("face count")
	if err != nil {
		return nil, err
	}
	if _, err := t.uint("edge count"); err != nil {
		return nil, err
	}
	if len(t.fields) > 0 {
		return nil, t.fail("counts", fmt.Sprintf("unexpected %q after the edge count", t.fields[0]))
	}

	d := &Data{
		Coords:    make([]float64, 0, 3*min(int(nv), 1<<16)),
		FaceSizes: make([]uint32, 0, min(int(nf), 1<<16)),
	}
	for i := uint32(0); i < nv; i++ {
		for k := 0; k < 3; k++ {
			if k > 0 && len(t.fields) == 0 {
				return nil, t.fail("vertex", fmt.Sprintf("vertex %d has %d coordinates, want 3", i, k))
			}
			v, err := t.float("vertex")
			if err != nil {
				return nil, err
			}
			d.Coords = append(d.Coords, v)
		}
		if len(t.fields) > 0 {
			return nil, t.fail("vertex", fmt.Sprintf("vertex %d has extra value %q", i, t.fields[0]))
		}
	}

	for f := uint32(0); f < nf; f++ {
		size, err := t.uint("face size")
		if err != nil {
			return nil, err
		}
		if size < 3 {
			return nil, t.fail("face size", fmt.Sprintf("face %d has %d vertices", f, size))
		}
		for k := uint32(0); k < size; k++ {
			if len(t.fields) == 0 {
				return nil, t.fail("face index", fmt.Sprintf("face %d has %d of %d indices", f, k, size))
			}
			idx, err := t.uint("face index")
			if err != nil {
				return nil, err
			}
			if idx >= nv {
				return nil, t.fail("face index", fmt.Sprintf("vertex %d out of range [0, %d)", idx, nv))
			}
			d.FaceIndices = append(d.FaceIndices, idx)
		}
		d.FaceSizes = append(d.FaceSizes, size)
		t.fields = nil
	}
	return d, nil
}

// ReadMesh parses an OFF file into a half-edge mesh.
func ReadMesh(r io.Reader) (*mesh.Mesh, error) {
	d, err := Read(r)
	if err != nil {
		return nil, err
	}
	return d.Mesh()
}

// Write emits d as ASCII OFF.
func Write(w io.Writer, d *Data) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "OFF\n%d %d 0\n", d.NumVertices(), d.NumFaces())
	for i := 0; i+2 < len(d.Coords); i += 3 {
		bw.WriteString(strconv.FormatFloat(d.Coords[i], 'g', -1, 64))
		bw.WriteByte(' ')
		bw.WriteString(strconv.FormatFloat(d.Coords[i+1], 'g', -1, 64))
		bw.WriteByte(' ')
		bw.WriteString(strconv.FormatFloat(d.Coords[i+2], 'g', -1, 64))
		bw.WriteByte('\n')
	}
	base := 0
	for f, size := range d.FaceSizes {
		if base+int(size) > len(d.FaceIndices) {
			return fmt.Errorf("meshio: face %d overruns the index buffer", f)
		}
		bw.WriteString(strconv.FormatUint(uint64(size), 10))
		for _, idx := range d.FaceIndices[base : base+int(size)] {
			bw.WriteByte(' ')
			bw.WriteString(strconv.FormatUint(uint64(idx), 10))
		}
		bw.WriteByte('\n')
		base += int(size)
	}
	return bw.Flush()
}
