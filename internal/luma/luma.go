package luma

// https://github.com/opencv/opencv/blob/0e88b49a53842f0f7cdc4c61b98c283be7e5057c/modules/imgproc/src/opencl/color_yuv.cl#L148-L234

const (
	yr = 0.299
	yg = 0.587
	yb = 0.114
)

// Y returns the ITU-R 601-2 luminance of an RGB sample.
func Y(r, g, b uint8) float64 {
	return yr*float64(r) + yg*float64(g) + yb*float64(b)
}

// Y8 returns Y rounded to the nearest 8-bit level.
func Y8(r, g, b uint8) uint8 {
	return uint8(Y(r, g, b) + .5)
}

// Plane converts interleaved samples with the given stride per pixel
// (3 for RGB, 4 for RGBA) into a luminance plane.
func Plane(pix []uint8, stride int) []float64 {
	plane := make([]float64, len(pix)/stride)
	for i := range plane {
		p := pix[i*stride : i*stride+3 : i*stride+3]
		plane[i] = Y(p[0], p[1], p[2])
	}
	return plane
}

// Plane8 is Plane rounded to 8-bit levels.
func Plane8(pix []uint8, stride int) []uint8 {
	plane := make([]uint8, len(pix)/stride)
	for i := range plane {
		p := pix[i*stride : i*stride+3 : i*stride+3]
		plane[i] = Y8(p[0], p[1], p[2])
	}
	return plane
}
