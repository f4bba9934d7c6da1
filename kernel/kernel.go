package kernel

import (
	"context"
	"errors"

	"github.com/wippyai/meshcut"
	"github.com/wippyai/meshcut/component"
	"github.com/wippyai/meshcut/mesh"
)

var ErrNilMesh = errors.New("kernel: nil input mesh")

// Kernel computes the connected components of cutting src with cut.
// Implementations must not retain src or cut after returning.
type Kernel interface {
	Cut(ctx context.Context, flags meshcut.DispatchFlags, src, cut *mesh.Mesh) ([]*component.Component, error)
}

// Func adapts a function to the Kernel interface.
type Func func(ctx context.Context, flags meshcut.DispatchFlags, src, cut *mesh.Mesh) ([]*component.Component, error)

// Cut calls f.
func (f Func) Cut(ctx context.Context, flags meshcut.DispatchFlags, src, cut *mesh.Mesh) ([]*component.Component, error) {
	return f(ctx, flags, src, cut)
}

// Passthrough performs no intersection. It returns copies of the two inputs
// as Input components, with identity vertex and face maps when flags ask
// for them.
type Passthrough struct{}

// Cut implements Kernel.
func (Passthrough) Cut(ctx context.Context, flags meshcut.DispatchFlags, src, cut *mesh.Mesh) ([]*component.Component, error) {
	if src == nil || cut == nil {
		return nil, ErrNilMesh
	}
	out := make([]*component.Component, 0, 2)
	for _, in := range []struct {
		m      *mesh.Mesh
		origin component.Origin
	}{
		{src, component.OriginSrcMesh},
		{cut, component.OriginCutMesh},
	} {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var prov component.Provenance
		if flags.Has(meshcut.DispatchIncludeVertexMap) {
			prov.VertexMap = component.IdentityMap(in.m.NumVertices())
		}
		if flags.Has(meshcut.DispatchIncludeFaceMap) {
			prov.FaceMap = component.IdentityMap(in.m.NumFaces())
		}
		c, err := component.New(component.Input{Origin: in.origin}, in.m, prov)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

var _ Kernel = Passthrough{}
