// Pixel format conversion helpers. These are pure Go and shared by all
// platforms, so this file carries no build tag.

package v4l2

// YUYVToRGB24 converts a packed YUYV 4:2:2 frame to RGB24 using BT.601
// coefficients. dst must be width*height*3 bytes; src must be
// width*height*2 bytes. Width must be even.
func YUYVToRGB24(dst, src []byte, width, height uint32) {
	pixels := int(width * height)
	si, di := 0, 0

	for p := 0; p < pixels; p += 2 {
		y0 := int32(src[si])
		u := int32(src[si+1]) - 128
		y1 := int32(src[si+2])
		v := int32(src[si+3]) - 128
		si += 4

		r := (351 * v) >> 8
		g := (-86*u - 179*v) >> 8
		b := (444 * u) >> 8

		dst[di] = clampByte(y0 + r)
		dst[di+1] = clampByte(y0 + g)
		dst[di+2] = clampByte(y0 + b)
		dst[di+3] = clampByte(y1 + r)
		dst[di+4] = clampByte(y1 + g)
		dst[di+5] = clampByte(y1 + b)
		di += 6
	}
}

func clampByte(v int32) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}
