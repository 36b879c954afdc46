package loader

import "io"

// gltfLoaderBackendImpl is the implementation of gltfLoaderBackend.
type gltfLoaderBackendImpl struct {
	importer gltfImporter
}

// gltfLoaderBackend is a loaderBackend for glTF and GLB files.
// It delegates to the gltfImporter for parsing and extraction.
type gltfLoaderBackend interface {
	loaderBackend
}

var _ gltfLoaderBackend = &gltfLoaderBackendImpl{}

// newGLTFLoaderBackend creates a glTF loader backend.
//
// Parameters:
//   - sampleRate: animation resampling rate in Hz
//   - skinIndex: the skin to import, negative for automatic
//
// Returns:
//   - gltfLoaderBackend: the loader backend for glTF/GLB files
func newGLTFLoaderBackend(sampleRate float32, skinIndex int) gltfLoaderBackend {
	return &gltfLoaderBackendImpl{
		importer: newGLTFImporter(sampleRate, skinIndex),
	}
}

func (b *gltfLoaderBackendImpl) Load(path string) (*importedAsset, error) {
	return b.importer.Import(path)
}

func (b *gltfLoaderBackendImpl) LoadReader(name string, r io.Reader) (*importedAsset, error) {
	return b.importer.ImportReader(name, r)
}
