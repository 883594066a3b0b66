package lib

// ContrastEnhancer applies contrast-limited adaptive histogram equalization
// (CLAHE) to each LAB channel of a BGR frame. The clip limit bounds how much
// any local histogram bin may be amplified, which keeps near-uniform regions
// (night sky, shadows) from blowing up into noise.
type ContrastEnhancer struct{}

// Enhance converts the frame to LAB, equalizes each channel over a
// tilesX x tilesY grid with the given clip limit, and converts back to BGR.
// A grid larger than the frame collapses to one tile per pixel row/column.
func (e ContrastEnhancer) Enhance(im Image, clipLimit float64, tilesX, tilesY int) Image {
	if tilesX > im.Width {
		tilesX = im.Width
	}
	if tilesY > im.Height {
		tilesY = im.Height
	}
	lab := ToLab(im)
	out := NewImage(im.Width, im.Height)
	for channel := 0; channel < 3; channel++ {
		claheChannel(lab, out, channel, clipLimit, tilesX, tilesY)
	}
	return ToBgrFromLab(out)
}

// claheChannel equalizes one interleaved channel of src into dst.
func claheChannel(src, dst Image, channel int, clipLimit float64, tilesX, tilesY int) {
	width, height := src.Width, src.Height
	tileW := (width + tilesX - 1) / tilesX
	tileH := (height + tilesY - 1) / tilesY

	luts := make([][256]uint8, tilesX*tilesY)
	centersX := make([]float64, tilesX)
	centersY := make([]float64, tilesY)
	for ty := 0; ty < tilesY; ty++ {
		y0 := ty * tileH
		y1 := y0 + tileH
		if y1 > height {
			y1 = height
		}
		centersY[ty] = float64(y0+y1) / 2
		for tx := 0; tx < tilesX; tx++ {
			x0 := tx * tileW
			x1 := x0 + tileW
			if x1 > width {
				x1 = width
			}
			if ty == 0 {
				centersX[tx] = float64(x0+x1) / 2
			}

			var hist [256]int
			for y := y0; y < y1; y++ {
				base := (y*width)*3 + channel
				for x := x0; x < x1; x++ {
					hist[src.Bytes[base+x*3]]++
				}
			}
			luts[ty*tilesX+tx] = tileLUT(hist, (x1-x0)*(y1-y0), clipLimit)
		}
	}

	// Bilinear interpolation between the four surrounding tile mappings,
	// anchored at the true tile centers. Edge tiles can be smaller than
	// tileW x tileH, which pulls their centers inward.
	ix0, ix1, fx := interpCoords(width, centersX)
	iy0, iy1, fy := interpCoords(height, centersY)

	for y := 0; y < height; y++ {
		rowTop := iy0[y] * tilesX
		rowBot := iy1[y] * tilesX
		dy := fy[y]
		for x := 0; x < width; x++ {
			idx := (y*width+x)*3 + channel
			v := src.Bytes[idx]
			dx := fx[x]
			top := (1-dx)*float64(luts[rowTop+ix0[x]][v]) + dx*float64(luts[rowTop+ix1[x]][v])
			bot := (1-dx)*float64(luts[rowBot+ix0[x]][v]) + dx*float64(luts[rowBot+ix1[x]][v])
			dst.Bytes[idx] = clampU8((1-dy)*top + dy*bot)
		}
	}
}

// interpCoords maps every pixel coordinate to the two surrounding tile
// centers and the blend fraction between them. Pixels before the first or
// past the last center stick to the edge tile.
func interpCoords(n int, centers []float64) (lo, hi []int, frac []float64) {
	lo = make([]int, n)
	hi = make([]int, n)
	frac = make([]float64, n)
	t := 0
	for i := 0; i < n; i++ {
		pos := float64(i) + 0.5
		for t < len(centers)-2 && centers[t+1] <= pos {
			t++
		}
		switch {
		case pos <= centers[0]:
			lo[i], hi[i] = 0, 0
		case pos >= centers[len(centers)-1]:
			lo[i], hi[i] = len(centers)-1, len(centers)-1
		default:
			lo[i], hi[i] = t, t+1
			frac[i] = (pos - centers[t]) / (centers[t+1] - centers[t])
		}
	}
	return lo, hi, frac
}

// tileLUT builds the clipped-equalization lookup table for one tile: clip the
// histogram at clipLimit*area/256, redistribute the excess evenly, then map
// through the cumulative distribution.
func tileLUT(hist [256]int, area int, clipLimit float64) [256]uint8 {
	if area == 0 {
		// Empty tiles map to identity.
		var lut [256]uint8
		for i := range lut {
			lut[i] = uint8(i)
		}
		return lut
	}

	limit := int(clipLimit * float64(area) / 256)
	if limit < 1 {
		limit = 1
	}

	excess := 0
	for i := 0; i < 256; i++ {
		if hist[i] > limit {
			excess += hist[i] - limit
			hist[i] = limit
		}
	}
	share := excess / 256
	rest := excess % 256
	for i := 0; i < 256; i++ {
		hist[i] += share
		if i < rest {
			hist[i]++
		}
	}

	var lut [256]uint8
	scale := 255.0 / float64(area)
	sum := 0
	for i := 0; i < 256; i++ {
		sum += hist[i]
		lut[i] = clampU8(float64(sum) * scale)
	}
	return lut
}
