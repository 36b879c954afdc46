package loader

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/animation"
)

// gltfImporterImpl is the implementation of the gltfImporter interface.
type gltfImporterImpl struct {
	sampleRate float32
	skinIndex  int
}

// gltfImporter orchestrates a glTF import: parse, extract the skeleton, resample and bake
// every animation that targets it.
type gltfImporter interface {
	// Import loads a .gltf or .glb file.
	//
	// Parameters:
	//   - path: the file path
	//
	// Returns:
	//   - *importedAsset: the skeleton and baked clips
	//   - error: error if parsing, extraction or baking fails
	Import(path string) (*importedAsset, error)

	// ImportReader loads a glTF JSON or GLB stream with embedded buffers.
	//
	// Parameters:
	//   - name: the asset name
	//   - r: the reader
	//
	// Returns:
	//   - *importedAsset: the skeleton and baked clips
	//   - error: error if parsing, extraction or baking fails
	ImportReader(name string, r io.Reader) (*importedAsset, error)
}

var _ gltfImporter = &gltfImporterImpl{}

// newGLTFImporter creates an importer.
//
// Parameters:
//   - sampleRate: animation resampling rate in Hz
//   - skinIndex: the skin to import, or negative to use the skin of the first skinned mesh
//
// Returns:
//   - gltfImporter: the importer
func newGLTFImporter(sampleRate float32, skinIndex int) gltfImporter {
	return &gltfImporterImpl{sampleRate: sampleRate, skinIndex: skinIndex}
}

func (imp *gltfImporterImpl) Import(path string) (*importedAsset, error) {
	parser := newGLTFParser()
	if err := parser.Parse(path); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return imp.importFromParser(parser, name)
}

func (imp *gltfImporterImpl) ImportReader(name string, r io.Reader) (*importedAsset, error) {
	parser := newGLTFParser()
	if err := parser.ParseReader(r); err != nil {
		return nil, fmt.Errorf("failed to parse from reader: %w", err)
	}
	return imp.importFromParser(parser, name)
}

// importFromParser extracts and bakes from a parser that has already loaded a document.
func (imp *gltfImporterImpl) importFromParser(parser gltfParser, name string) (*importedAsset, error) {
	doc := parser.Document()
	if doc == nil {
		return nil, fmt.Errorf("no document after parsing")
	}
	if len(doc.Skins) == 0 {
		return nil, ErrNoSkin
	}

	skeletonExtractor := newGLTFSkeletonExtractor(parser)
	animationExtractor := newGLTFAnimationExtractor(parser)

	skinIndex := imp.skinIndex
	if skinIndex < 0 {
		skinIndex = 0
		if len(doc.Meshes) > 0 {
			if si := skeletonExtractor.FindSkinForMesh(0); si >= 0 {
				skinIndex = si
			}
		}
	}

	skel, err := skeletonExtractor.ExtractSkeleton(skinIndex)
	if err != nil {
		return nil, fmt.Errorf("skeleton extraction failed: %w", err)
	}

	asset := &importedAsset{name: name, skeleton: skel.skeleton}
	for i := range doc.Animations {
		if !animationExtractor.AnimatesSkeleton(i, skel) {
			continue
		}
		clipName, src, err := animationExtractor.ExtractAnimation(i, skel, imp.sampleRate)
		if err != nil {
			return nil, fmt.Errorf("animation extraction failed: %w", err)
		}
		// glTF is Y-up, so roots need no axis correction; node scale is kept.
		clip, err := animation.Bake(clipName, src, animation.WithoutRootCorrection(), animation.WithScaleRecovery())
		if err != nil {
			return nil, fmt.Errorf("animation %q: %w", clipName, err)
		}
		asset.clips = append(asset.clips, clip)
	}

	common.Logger().Debug("gltf imported", "name", name, "skin", skinIndex, "joints", skel.skeleton.JointCount(), "clips", len(asset.clips))
	return asset, nil
}
