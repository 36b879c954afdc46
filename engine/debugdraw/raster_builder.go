package debugdraw

type RasterBuilderOption func(*rasterRendererImpl)

// WithSupersample renders at factor times the output size and downscales on read.
//
// Parameters:
//   - factor: the supersampling factor, values below 1 are ignored
//
// Returns:
//   - RasterBuilderOption: a function that sets the supersampling factor
func WithSupersample(factor int) RasterBuilderOption {
	return func(r *rasterRendererImpl) {
		if factor >= 1 {
			r.supersample = factor
		}
	}
}

// WithLineWidth sets the stroke width in output pixels.
//
// Parameters:
//   - width: line width
//
// Returns:
//   - RasterBuilderOption: a function that sets the line width
func WithLineWidth(width float64) RasterBuilderOption {
	return func(r *rasterRendererImpl) {
		r.lineWidth = width
	}
}

// WithFontSize sets the label size in output pixels.
//
// Parameters:
//   - size: font size
//
// Returns:
//   - RasterBuilderOption: a function that sets the font size
func WithFontSize(size float64) RasterBuilderOption {
	return func(r *rasterRendererImpl) {
		r.fontSize = size
	}
}

// WithBackground sets the clear color.
//
// Parameters:
//   - c: the background color
//
// Returns:
//   - RasterBuilderOption: a function that sets the background
func WithBackground(c Color) RasterBuilderOption {
	return func(r *rasterRendererImpl) {
		r.background = c
	}
}
