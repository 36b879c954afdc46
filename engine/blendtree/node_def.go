package blendtree

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

// Definition errors.
var (
	ErrUnknownNodeType = errors.New("unknown blend node type")
	ErrMalformedNode   = errors.New("malformed blend node")
)

// Kind tags which variant of a node is populated.
type Kind int

const (
	// KindClip samples a single animation clip.
	KindClip Kind = iota

	// KindLerp blends the poses of two child nodes by a named parameter.
	KindLerp
)

// String returns the node type name used in definition files.
func (k Kind) String() string {
	switch k {
	case KindClip:
		return typeClipNode
	case KindLerp:
		return typeLerpNode
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

const (
	typeLerpNode = "LerpNode"
	typeClipNode = "ClipNode"
)

// NodeDef is the declarative form of a blend tree, as loaded from a file.
// Clips are referenced by name and resolved against a ClipArena by Bind.
//
// Encoded as JSON:
//
//	{"type": "LerpNode", "inputs": [<NodeDef>, <NodeDef>], "param": "speed"}
//	{"type": "ClipNode", "clip_source": "walk"}
type NodeDef struct {
	// Kind selects which of the fields below apply.
	Kind Kind

	// Inputs are the two blended children of a lerp node. The blend parameter weights Inputs[1].
	Inputs [2]*NodeDef

	// Param names the blend parameter of a lerp node.
	Param string

	// ClipSource names the clip sampled by a clip node.
	ClipSource string
}

// ClipDef returns a clip node definition.
func ClipDef(clip string) *NodeDef {
	return &NodeDef{Kind: KindClip, ClipSource: clip}
}

// LerpDef returns a lerp node definition blending a toward b by param.
func LerpDef(a, b *NodeDef, param string) *NodeDef {
	return &NodeDef{Kind: KindLerp, Inputs: [2]*NodeDef{a, b}, Param: param}
}

type nodeJSON struct {
	Type       string     `json:"type"`
	Inputs     []*NodeDef `json:"inputs,omitempty"`
	Param      string     `json:"param,omitempty"`
	ClipSource string     `json:"clip_source,omitempty"`
}

// MarshalJSON encodes the definition in the tagged node format.
func (d *NodeDef) MarshalJSON() ([]byte, error) {
	switch d.Kind {
	case KindClip:
		return json.Marshal(nodeJSON{Type: typeClipNode, ClipSource: d.ClipSource})
	case KindLerp:
		return json.Marshal(nodeJSON{Type: typeLerpNode, Inputs: d.Inputs[:], Param: d.Param})
	default:
		return nil, fmt.Errorf("%v: %w", d.Kind, ErrUnknownNodeType)
	}
}

// UnmarshalJSON decodes the tagged node format.
func (d *NodeDef) UnmarshalJSON(data []byte) error {
	var raw nodeJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch raw.Type {
	case typeClipNode:
		if raw.ClipSource == "" {
			return fmt.Errorf("%s without clip_source: %w", raw.Type, ErrMalformedNode)
		}
		*d = NodeDef{Kind: KindClip, ClipSource: raw.ClipSource}
	case typeLerpNode:
		if len(raw.Inputs) != 2 || raw.Inputs[0] == nil || raw.Inputs[1] == nil {
			return fmt.Errorf("%s has %d inputs, want 2: %w", raw.Type, len(raw.Inputs), ErrMalformedNode)
		}
		if raw.Param == "" {
			return fmt.Errorf("%s without param: %w", raw.Type, ErrMalformedNode)
		}
		*d = NodeDef{Kind: KindLerp, Inputs: [2]*NodeDef{raw.Inputs[0], raw.Inputs[1]}, Param: raw.Param}
	default:
		return fmt.Errorf("type %q: %w", raw.Type, ErrUnknownNodeType)
	}
	return nil
}

// ParseDef decodes a blend tree definition from JSON.
//
// Parameters:
//   - data: the encoded definition
//
// Returns:
//   - *NodeDef: the root node
//   - error: a JSON syntax error, ErrUnknownNodeType or ErrMalformedNode (wrapped)
func ParseDef(data []byte) (*NodeDef, error) {
	var def NodeDef
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("parse blend tree: %w", err)
	}
	return &def, nil
}

// DecodeDef reads a single blend tree definition from r.
//
// Parameters:
//   - r: the JSON stream
//
// Returns:
//   - *NodeDef: the root node
//   - error: as ParseDef, or a read error
func DecodeDef(r io.Reader) (*NodeDef, error) {
	var def NodeDef
	if err := json.NewDecoder(r).Decode(&def); err != nil {
		return nil, fmt.Errorf("decode blend tree: %w", err)
	}
	return &def, nil
}

// LoadDef reads a blend tree definition file.
//
// Parameters:
//   - path: the file path
//
// Returns:
//   - *NodeDef: the root node
//   - error: an open or decode error
func LoadDef(path string) (*NodeDef, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open blend tree %s: %w", path, err)
	}
	defer f.Close()

	def, err := DecodeDef(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return def, nil
}

// ClipNames returns the clip names referenced by the definition in depth-first order,
// with duplicates removed.
func (d *NodeDef) ClipNames() []string {
	seen := make(map[string]bool)
	var names []string
	var walk func(n *NodeDef)
	walk = func(n *NodeDef) {
		if n == nil {
			return
		}
		switch n.Kind {
		case KindClip:
			if !seen[n.ClipSource] {
				seen[n.ClipSource] = true
				names = append(names, n.ClipSource)
			}
		case KindLerp:
			walk(n.Inputs[0])
			walk(n.Inputs[1])
		}
	}
	walk(d)
	return names
}
