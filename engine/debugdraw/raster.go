package debugdraw

import (
	"fmt"
	"image"
	"image/png"
	"io"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/HugoSmits86/nativewebp"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"golang.org/x/image/draw"
	"golang.org/x/image/font/gofont/goregular"
)

type rasterRendererImpl struct {
	ctx         *gg.Context
	proj        Projector
	width       int
	height      int
	supersample int
	lineWidth   float64
	fontSize    float64
	background  Color
	face        text.Face
}

// RasterRenderer is a DebugRenderer that draws into an offscreen image.
type RasterRenderer interface {
	DebugRenderer

	// SetViewProjection changes the matrix used to project subsequent primitives.
	//
	// Parameters:
	//   - viewProj: a camera's projection * view matrix
	SetViewProjection(viewProj mgl32.Mat4)

	// Clear fills the canvas with the background color.
	Clear()

	// Image returns the canvas at the output size.
	//
	// Returns:
	//   - image.Image: the rendered frame
	Image() image.Image

	// WritePNG encodes the frame as PNG.
	//
	// Parameters:
	//   - w: the destination
	//
	// Returns:
	//   - error: an encoding or write error
	WritePNG(w io.Writer) error

	// WriteWebP encodes the frame as lossless WebP.
	//
	// Parameters:
	//   - w: the destination
	//
	// Returns:
	//   - error: an encoding or write error
	WriteWebP(w io.Writer) error

	// Close releases the canvas.
	//
	// Returns:
	//   - error: an error from the underlying context
	Close() error
}

var _ RasterRenderer = &rasterRendererImpl{}

// NewRasterRenderer creates a renderer that rasterizes into a width x height image.
//
// Parameters:
//   - width: output width in pixels
//   - height: output height in pixels
//   - viewProj: the initial projection * view matrix
//   - options: functional options to configure the renderer
//
// Returns:
//   - RasterRenderer: the renderer, cleared to its background
//   - error: an error if the size is invalid or the label font cannot be loaded
func NewRasterRenderer(width, height int, viewProj mgl32.Mat4, options ...RasterBuilderOption) (RasterRenderer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("raster size %dx%d must be positive", width, height)
	}

	r := &rasterRendererImpl{
		width:       width,
		height:      height,
		supersample: 1,
		lineWidth:   1.5,
		fontSize:    12,
		background:  Color{0.08, 0.08, 0.1, 1},
	}
	for _, option := range options {
		option(r)
	}

	src, err := text.NewFontSource(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to load label font: %w", err)
	}

	cw, ch := width*r.supersample, height*r.supersample
	r.ctx = gg.NewContext(cw, ch)
	r.face = src.Face(r.fontSize * float64(r.supersample))
	r.ctx.SetFont(r.face)
	r.ctx.SetLineWidth(r.lineWidth * float64(r.supersample))
	r.ctx.SetLineCap(gg.LineCapRound)
	r.proj = NewProjector(viewProj, cw, ch)
	r.Clear()
	return r, nil
}

func (r *rasterRendererImpl) DrawLine(from, to mgl32.Vec3, color Color) {
	x1, y1, x2, y2, ok := r.proj.ProjectLine(from, to)
	if !ok {
		return
	}
	r.setColor(color)
	r.ctx.DrawLine(x1, y1, x2, y2)
	if err := r.ctx.Stroke(); err != nil {
		common.Logger().Warn("debug line stroke failed", "error", err)
	}
}

func (r *rasterRendererImpl) DrawTextAtPosition(s string, pos mgl32.Vec3, color Color) {
	x, y, ok := r.proj.Project(pos)
	if !ok {
		return
	}
	r.setColor(color)
	r.ctx.DrawStringAnchored(s, x, y, 0.5, 1)
}

func (r *rasterRendererImpl) SetViewProjection(viewProj mgl32.Mat4) {
	r.proj = NewProjector(viewProj, r.ctx.Width(), r.ctx.Height())
}

func (r *rasterRendererImpl) Clear() {
	b := r.background
	r.ctx.ClearWithColor(gg.RGBA{R: float64(b[0]), G: float64(b[1]), B: float64(b[2]), A: float64(b[3])})
}

func (r *rasterRendererImpl) Image() image.Image {
	if err := r.ctx.FlushGPU(); err != nil {
		common.Logger().Warn("raster flush failed", "error", err)
	}
	full := r.ctx.Image()
	if r.supersample == 1 {
		return full
	}
	dst := image.NewRGBA(image.Rect(0, 0, r.width, r.height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), full, full.Bounds(), draw.Src, nil)
	return dst
}

func (r *rasterRendererImpl) WritePNG(w io.Writer) error {
	if err := png.Encode(w, r.Image()); err != nil {
		return fmt.Errorf("failed to encode png: %w", err)
	}
	return nil
}

func (r *rasterRendererImpl) WriteWebP(w io.Writer) error {
	if err := nativewebp.Encode(w, r.Image(), nil); err != nil {
		return fmt.Errorf("failed to encode webp: %w", err)
	}
	return nil
}

func (r *rasterRendererImpl) Close() error {
	return r.ctx.Close()
}

func (r *rasterRendererImpl) setColor(c Color) {
	r.ctx.SetRGBA(float64(c[0]), float64(c[1]), float64(c[2]), float64(c[3]))
}
