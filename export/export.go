package export

import (
	"github.com/wippyai/meshcut"
	"github.com/wippyai/meshcut/component"
	"github.com/wippyai/meshcut/errors"
	"github.com/wippyai/meshcut/triangulate"
)

// Env carries the context state a channel may depend on.
type Env struct {
	// Dispatch holds the flags of the cut that produced the component.
	Dispatch meshcut.DispatchFlags

	// Triangulation configures the first face-triangulation request.
	Triangulation triangulate.Options

	// Report receives faces the triangulator could not handle. May be nil.
	Report func(triangulate.Failure)
}

// Resolve checks that ch applies to c and returns its backing payload.
// Variant checks run before any size logic.
func Resolve(c *component.Component, ch Channel, env Env) (Payload, error) {
	if !ch.Valid() {
		return Payload{}, errors.New(errors.PhaseExport, errors.KindInvalidArgument).
			Value(uint32(ch)).
			Detail("unknown channel %#x", uint32(ch)).
			Build()
	}
	name := ch.String()
	a := c.Arrays()

	switch ch {
	case VertexFloat:
		return Payload{Name: name, F64: a.Vertices, Float32: true, Group: 3}, nil
	case VertexDouble:
		return Payload{Name: name, F64: a.Vertices, Group: 3}, nil
	case Face:
		return Payload{Name: name, U32: a.FaceIndices}, nil
	case FaceSize:
		return Payload{Name: name, U32: a.FaceSizes}, nil
	case FaceAdjacentFace:
		return Payload{Name: name, U32: a.FaceAdjacency}, nil
	case FaceAdjacentFaceSize:
		return Payload{Name: name, U32: a.FaceAdjacencySizes}, nil
	case Edge:
		return Payload{Name: name, U32: a.Edges, Group: 2}, nil
	case Type:
		return scalar(name, uint32(c.Type())), nil
	}

	switch v := c.Variant().(type) {
	case component.Fragment:
		switch ch {
		case FragmentLocation:
			return scalar(name, uint32(v.Location)), nil
		case PatchLocation:
			return scalar(name, uint32(v.PatchLocation)), nil
		case FragmentSealType:
			return scalar(name, uint32(v.SealType)), nil
		}
	case component.Patch:
		if ch == PatchLocation {
			return scalar(name, uint32(v.Location)), nil
		}
	case component.Seam:
		if ch == Origin {
			return scalar(name, uint32(v.Origin)), nil
		}
	case component.Input:
		if ch == Origin {
			return scalar(name, uint32(v.Origin)), nil
		}
		if ch == SeamVertex {
			return Payload{}, errors.VariantMismatch(errors.PhaseExport, name, c.Type().String())
		}
	}

	switch ch {
	case FragmentLocation, PatchLocation, FragmentSealType, Origin:
		return Payload{}, errors.VariantMismatch(errors.PhaseExport, name, c.Type().String())
	case SeamVertex:
		return Payload{Name: name, U32: a.SeamVertices}, nil
	case VertexMap:
		return provenance(name, a.VertexMap, env.Dispatch, meshcut.DispatchIncludeVertexMap)
	case FaceMap:
		return provenance(name, a.FaceMap, env.Dispatch, meshcut.DispatchIncludeFaceMap)
	case FaceTriangulation:
		tri, err := c.Triangulation(env.Triangulation, env.Report)
		if err != nil {
			return Payload{}, err
		}
		return Payload{Name: name, U32: tri, Group: 3}, nil
	}

	return Payload{}, errors.InvalidArgument(errors.PhaseExport, "unhandled channel "+name)
}

// Query resolves ch and runs the two-phase protocol on it.
func Query(c *component.Component, ch Channel, env Env, requested uint64, dst []byte) (uint64, error) {
	p, err := Resolve(c, ch, env)
	if err != nil {
		return 0, err
	}
	return p.Query(requested, dst)
}

func scalar(name string, v uint32) Payload {
	return Payload{Name: name, U32: []uint32{v}}
}

func provenance(name string, values []uint32, flags, need meshcut.DispatchFlags) (Payload, error) {
	if !flags.Has(need) {
		return Payload{}, errors.New(errors.PhaseExport, errors.KindInvalidArgument).
			Channel(name).
			Detail("not recorded: dispatch did not request it").
			Build()
	}
	if values == nil {
		return Payload{}, errors.New(errors.PhaseExport, errors.KindInvalidArgument).
			Channel(name).
			Detail("not recorded by the kernel").
			Build()
	}
	return Payload{Name: name, U32: values}, nil
}
