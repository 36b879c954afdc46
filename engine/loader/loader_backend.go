package loader

import "io"

// loaderBackend loads an animated asset from a file or stream in one format.
type loaderBackend interface {
	// Load imports the skeleton and animations of a file.
	//
	// Parameters:
	//   - path: the file path to load
	//
	// Returns:
	//   - *importedAsset: the imported skeleton and clips
	//   - error: error if loading fails
	Load(path string) (*importedAsset, error)

	// LoadReader imports the skeleton and animations of a stream.
	//
	// Parameters:
	//   - name: the asset name
	//   - r: the reader providing the asset data
	//
	// Returns:
	//   - *importedAsset: the imported skeleton and clips
	//   - error: error if loading fails
	LoadReader(name string, r io.Reader) (*importedAsset, error)
}
