package loader

import (
	"fmt"
	"io"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// gltfParserImpl is the implementation of the gltfParser interface.
type gltfParserImpl struct {
	doc *gltf.Document
}

// gltfParser loads a glTF 2.0 document and reads its accessors as engine math types.
type gltfParser interface {
	// Parse opens a .gltf or .glb file, resolving external buffers relative to it.
	//
	// Parameters:
	//   - path: the file path
	//
	// Returns:
	//   - error: error if the file cannot be read or decoded
	Parse(path string) error

	// ParseReader decodes a glTF JSON or GLB stream. Buffers must be embedded.
	//
	// Parameters:
	//   - r: the reader
	//
	// Returns:
	//   - error: error if decoding fails
	ParseReader(r io.Reader) error

	// Document returns the decoded document, nil before a successful parse.
	//
	// Returns:
	//   - *gltf.Document: the document
	Document() *gltf.Document

	// ReadScalarAccessor reads a float SCALAR accessor.
	//
	// Parameters:
	//   - index: the accessor index
	//
	// Returns:
	//   - []float32: one value per element
	//   - error: error if the index or element type is invalid
	ReadScalarAccessor(index int) ([]float32, error)

	// ReadVec3Accessor reads a float VEC3 accessor.
	//
	// Parameters:
	//   - index: the accessor index
	//
	// Returns:
	//   - []mgl32.Vec3: one vector per element
	//   - error: error if the index or element type is invalid
	ReadVec3Accessor(index int) ([]mgl32.Vec3, error)

	// ReadQuatAccessor reads a VEC4 rotation accessor, float or normalized integer.
	//
	// Parameters:
	//   - index: the accessor index
	//
	// Returns:
	//   - []mgl32.Quat: one quaternion per element, from (x, y, z, w)
	//   - error: error if the index or element type is invalid
	ReadQuatAccessor(index int) ([]mgl32.Quat, error)

	// ReadMat4Accessor reads a float MAT4 accessor.
	//
	// Parameters:
	//   - index: the accessor index
	//
	// Returns:
	//   - []mgl32.Mat4: one column-major matrix per element
	//   - error: error if the index or element type is invalid
	ReadMat4Accessor(index int) ([]mgl32.Mat4, error)
}

var _ gltfParser = &gltfParserImpl{}

func newGLTFParser() gltfParser {
	return &gltfParserImpl{}
}

func (p *gltfParserImpl) Parse(path string) error {
	doc, err := gltf.Open(path)
	if err != nil {
		return err
	}
	p.doc = doc
	return nil
}

func (p *gltfParserImpl) ParseReader(r io.Reader) error {
	doc := new(gltf.Document)
	if err := gltf.NewDecoder(r).Decode(doc); err != nil {
		return err
	}
	p.doc = doc
	return nil
}

func (p *gltfParserImpl) Document() *gltf.Document {
	return p.doc
}

func (p *gltfParserImpl) ReadScalarAccessor(index int) ([]float32, error) {
	data, err := p.read(index)
	if err != nil {
		return nil, err
	}
	switch v := data.(type) {
	case []float32:
		return v, nil
	}
	return nil, fmt.Errorf("accessor %d: expected float scalars, got %T", index, data)
}

func (p *gltfParserImpl) ReadVec3Accessor(index int) ([]mgl32.Vec3, error) {
	data, err := p.read(index)
	if err != nil {
		return nil, err
	}
	v, ok := data.([][3]float32)
	if !ok {
		return nil, fmt.Errorf("accessor %d: expected float vec3, got %T", index, data)
	}
	out := make([]mgl32.Vec3, len(v))
	for i := range v {
		out[i] = v[i]
	}
	return out, nil
}

func (p *gltfParserImpl) ReadQuatAccessor(index int) ([]mgl32.Quat, error) {
	data, err := p.read(index)
	if err != nil {
		return nil, err
	}
	switch v := data.(type) {
	case [][4]float32:
		return quats(v, 1), nil
	case [][4]int8:
		return quats(v, 127), nil
	case [][4]uint8:
		return quats(v, 255), nil
	case [][4]int16:
		return quats(v, 32767), nil
	case [][4]uint16:
		return quats(v, 65535), nil
	}
	return nil, fmt.Errorf("accessor %d: expected vec4 rotations, got %T", index, data)
}

func (p *gltfParserImpl) ReadMat4Accessor(index int) ([]mgl32.Mat4, error) {
	data, err := p.read(index)
	if err != nil {
		return nil, err
	}
	v, ok := data.([][4][4]float32)
	if !ok {
		return nil, fmt.Errorf("accessor %d: expected float mat4, got %T", index, data)
	}
	out := make([]mgl32.Mat4, len(v))
	for i, cols := range v {
		for c := 0; c < 4; c++ {
			for r := 0; r < 4; r++ {
				out[i][c*4+r] = cols[c][r]
			}
		}
	}
	return out, nil
}

func (p *gltfParserImpl) read(index int) (any, error) {
	if p.doc == nil {
		return nil, fmt.Errorf("no document loaded")
	}
	if index < 0 || index >= len(p.doc.Accessors) {
		return nil, fmt.Errorf("accessor index %d out of range", index)
	}
	data, err := modeler.ReadAccessor(p.doc, p.doc.Accessors[index], nil)
	if err != nil {
		return nil, fmt.Errorf("accessor %d: %w", index, err)
	}
	return data, nil
}

// quats converts (x, y, z, w) tuples, dividing normalized integers by their maximum.
func quats[T float32 | int8 | uint8 | int16 | uint16](v [][4]T, maxValue float32) []mgl32.Quat {
	out := make([]mgl32.Quat, len(v))
	for i, q := range v {
		out[i] = mgl32.Quat{
			W: max(float32(q[3])/maxValue, -1),
			V: mgl32.Vec3{max(float32(q[0])/maxValue, -1), max(float32(q[1])/maxValue, -1), max(float32(q[2])/maxValue, -1)},
		}
	}
	return out
}
