package history

// Downsample reduces points to at most maxPoints for display.
// Uses simple decimation; the first and last point are always kept so that
// level transitions at the edges of the window stay visible.
// Destination-based: reuses dst if it has sufficient capacity, otherwise allocates new.
func Downsample(dst []Point, points []Point, maxPoints int) []Point {
	if len(points) <= maxPoints || maxPoints < 2 {
		if cap(dst) >= len(points) {
			dst = dst[:len(points)]
			copy(dst, points)
			return dst
		}
		result := make([]Point, len(points))
		copy(result, points)
		return result
	}

	if cap(dst) >= maxPoints {
		dst = dst[:0]
	} else {
		dst = make([]Point, 0, maxPoints)
	}

	step := float64(len(points)-1) / float64(maxPoints-1)
	for i := range maxPoints {
		idx := int(float64(i) * step)
		if idx >= len(points) {
			idx = len(points) - 1
		}
		dst = append(dst, points[idx])
	}
	dst[len(dst)-1] = points[len(points)-1]

	return dst
}
