// Package image normalizes uploaded lesion images into the fixed-size tensor
// the analysis pipeline expects.
package image

import (
	"bytes"
	"fmt"
	stdimage "image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	xdraw "golang.org/x/image/draw"

	"github.com/skin-wellness-navigator/internal/domain"
)

// Target resolution of the preprocessed tensor.
const (
	TargetWidth  = 299
	TargetHeight = 299
	channels     = 3
)

// Tensor is a normalized height x width x channel array of pixel intensities
// in [0,1].
type Tensor struct {
	Height   int
	Width    int
	Channels int
	Data     []float32
}

// At returns the intensity at (y, x, c).
func (t *Tensor) At(y, x, c int) float32 {
	return t.Data[(y*t.Width+x)*t.Channels+c]
}

// Preprocessor decodes, resizes, and normalizes uploaded images. It is a
// pure function of the input bytes.
type Preprocessor struct {
	width  int
	height int
}

// NewPreprocessor creates a preprocessor producing 299x299 RGB tensors.
func NewPreprocessor() *Preprocessor {
	return &Preprocessor{width: TargetWidth, height: TargetHeight}
}

// Preprocess decodes the image bytes, converts to 3-channel RGB, resizes to
// the target resolution, and normalizes intensities to [0,1]. Every decode
// failure, including empty input and unsupported color modes, surfaces as
// domain.ErrInvalidImage; no decoder error leaks to the caller.
func (p *Preprocessor) Preprocess(data []byte) (*Tensor, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", domain.ErrInvalidImage)
	}

	src, _, err := stdimage.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: undecodable bytes", domain.ErrInvalidImage)
	}

	// Drawing onto an RGBA canvas collapses palette, grayscale, and alpha
	// modes into plain 3-channel color in one step.
	dst := stdimage.NewRGBA(stdimage.Rect(0, 0, p.width, p.height))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)

	tensor := &Tensor{
		Height:   p.height,
		Width:    p.width,
		Channels: channels,
		Data:     make([]float32, p.height*p.width*channels),
	}

	i := 0
	for y := 0; y < p.height; y++ {
		for x := 0; x < p.width; x++ {
			offset := dst.PixOffset(x, y)
			tensor.Data[i] = float32(dst.Pix[offset]) / 255.0
			tensor.Data[i+1] = float32(dst.Pix[offset+1]) / 255.0
			tensor.Data[i+2] = float32(dst.Pix[offset+2]) / 255.0
			i += channels
		}
	}

	return tensor, nil
}
