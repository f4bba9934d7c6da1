package export

import "fmt"

// Channel selects the data exported from a connected component.
type Channel uint32

const (
	VertexFloat          Channel = 1 << 1
	VertexDouble         Channel = 1 << 2
	Face                 Channel = 1 << 3
	FaceSize             Channel = 1 << 4
	Edge                 Channel = 1 << 5
	Type                 Channel = 1 << 6
	FragmentLocation     Channel = 1 << 7
	PatchLocation        Channel = 1 << 8
	FragmentSealType     Channel = 1 << 9
	SeamVertex           Channel = 1 << 10
	Origin               Channel = 1 << 11
	VertexMap            Channel = 1 << 12
	FaceMap              Channel = 1 << 13
	FaceAdjacentFace     Channel = 1 << 14
	FaceAdjacentFaceSize Channel = 1 << 15
	FaceTriangulation    Channel = 1 << 16
)

var channelNames = map[Channel]string{
	VertexFloat:          "vertex-float",
	VertexDouble:         "vertex-double",
	Face:                 "face",
	FaceSize:             "face-size",
	Edge:                 "edge",
	Type:                 "type",
	FragmentLocation:     "fragment-location",
	PatchLocation:        "patch-location",
	FragmentSealType:     "fragment-seal-type",
	SeamVertex:           "seam-vertex",
	Origin:               "origin",
	VertexMap:            "vertex-map",
	FaceMap:              "face-map",
	FaceAdjacentFace:     "face-adjacent-face",
	FaceAdjacentFaceSize: "face-adjacent-face-size",
	FaceTriangulation:    "face-triangulation",
}

// Channels lists every channel in ascending value order.
func Channels() []Channel {
	out := make([]Channel, 0, len(channelNames))
	for c := VertexFloat; c <= FaceTriangulation; c <<= 1 {
		out = append(out, c)
	}
	return out
}

// Valid reports whether c is a known channel.
func (c Channel) Valid() bool {
	_, ok := channelNames[c]
	return ok
}

func (c Channel) String() string {
	if name, ok := channelNames[c]; ok {
		return name
	}
	return fmt.Sprintf("channel(%#x)", uint32(c))
}

// ParseChannel returns the channel with the given name.
func ParseChannel(name string) (Channel, bool) {
	for c, n := range channelNames {
		if n == name {
			return c, true
		}
	}
	return 0, false
}
