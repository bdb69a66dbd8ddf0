package raster

// blitOrder is the channel order BlitRect reads source pixels with.
// Three-channel sources keep the BMP on-disk convention and are read
// blue-first.
func blitOrder(channels int) Order {
	if channels == 3 {
		return OrderBGR
	}
	return OrderRGB
}

// BlitRect draws the srcRect region of src scaled into dstRect, blending each
// pixel over the backbuffer. Scaling is nearest-neighbor with truncating
// division; destination pixels that map outside src are skipped.
func (b *Backbuffer) BlitRect(src *Image, srcRect, dstRect Rect) {
	if !b.usable() || src == nil || src.Pix == nil {
		return
	}

	srcRect = srcRect.Normalize()
	dstRect = dstRect.Normalize()

	bounds, ok := dstRect.Clip(b.Width, b.Height)
	if !ok {
		return
	}

	order := blitOrder(src.Channels)
	for dy := bounds.Y0; dy < bounds.Y1; dy++ {
		sy := srcRect.Y + (dy-dstRect.Y)*srcRect.Height/dstRect.Height
		if sy < 0 || sy >= src.Height {
			continue
		}

		for dx := bounds.X0; dx < bounds.X1; dx++ {
			sx := srcRect.X + (dx-dstRect.X)*srcRect.Width/dstRect.Width
			if sx < 0 || sx >= src.Width {
				continue
			}

			b.blendAt(dx, dy, src.ColorAt(sx, sy, order).Pack())
		}
	}
}

// BlitBitmap draws src unscaled with its top-left corner at
// (offsetX, offsetY), blending each pixel over the backbuffer.
func (b *Backbuffer) BlitBitmap(src *Image, offsetX, offsetY int) {
	if !b.usable() || src == nil || src.Pix == nil {
		return
	}

	for px := range src.Pixels() {
		x, y := px.X+offsetX, px.Y+offsetY
		if x < 0 || x >= b.Width || y < 0 || y >= b.Height {
			continue
		}
		b.blendAt(x, y, ReadPixel(px.Ch, src.Channels, OrderRGB).Pack())
	}
}
