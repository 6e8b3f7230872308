package analysis

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

const (
	// Laplacian variance above this is treated as maximally sharp.
	sharpnessSaturation = 500.0

	undecodableScore   = 0.0
	imageFallbackScore = 0.2
)

// ImageScorer estimates image quality as a trust signal: a sharp, detailed
// photo scores near 1.0, a blurry one near 0.0. An undecodable blob scores
// exactly 0.0 and contributes no trust.
type ImageScorer struct{}

// NewImageScorer creates an image scorer.
func NewImageScorer() *ImageScorer {
	return &ImageScorer{}
}

// Score decodes the image, converts it to grayscale and normalizes the
// variance of its Laplacian response. It never panics out to the caller.
func (is *ImageScorer) Score(data []byte) (score SignalScore) {
	defer func() {
		if r := recover(); r != nil {
			score = SignalScore{Value: imageFallbackScore, Fallback: true}
		}
	}()

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return SignalScore{Value: undecodableScore, Fallback: true}
	}

	gray := toGrayscale(img)
	variance, ok := laplacianVariance(gray)
	if !ok {
		return SignalScore{Value: imageFallbackScore, Fallback: true}
	}

	return SignalScore{Value: clip(variance/sharpnessSaturation, 0, 1)}
}

// grayImage is a dense float64 luminance plane.
type grayImage struct {
	pixels        []float64
	width, height int
}

func (g grayImage) at(x, y int) float64 {
	return g.pixels[y*g.width+x]
}

func toGrayscale(img image.Image) grayImage {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	gray := grayImage{
		pixels: make([]float64, width*height),
		width:  width,
		height: height,
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			// ITU-R BT.601 luma, scaled from 16-bit channels to [0,255].
			luma := (0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)) / 257.0
			gray.pixels[y*width+x] = luma
		}
	}

	return gray
}

// laplacianVariance computes the variance of the 4-neighbour Laplacian over
// the interior of the image. Images too small to hold an interior report !ok.
func laplacianVariance(gray grayImage) (float64, bool) {
	if gray.width < 3 || gray.height < 3 {
		return 0, false
	}

	responses := make([]float64, 0, (gray.width-2)*(gray.height-2))
	for y := 1; y < gray.height-1; y++ {
		for x := 1; x < gray.width-1; x++ {
			lap := 4*gray.at(x, y) -
				gray.at(x-1, y) - gray.at(x+1, y) -
				gray.at(x, y-1) - gray.at(x, y+1)
			responses = append(responses, lap)
		}
	}

	mean := 0.0
	for _, v := range responses {
		mean += v
	}
	mean /= float64(len(responses))

	variance := 0.0
	for _, v := range responses {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(responses))

	return variance, true
}
