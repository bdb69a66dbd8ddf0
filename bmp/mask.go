package bmp

import "math/bits"

// MaskShift returns how far mask must be shifted right to bring its lowest
// set bit to bit 0. A zero mask has shift 0.
func MaskShift(mask uint32) int {
	if mask == 0 {
		return 0
	}
	return bits.TrailingZeros32(mask)
}

// MaskBits returns the number of set bits in mask.
func MaskBits(mask uint32) int {
	return bits.OnesCount32(mask)
}

// DecodeChannel extracts the channel selected by mask from pixel and scales
// it to 8 bits. 8-bit channels are returned verbatim; a zero mask yields 0.
func DecodeChannel(pixel, mask uint32) uint8 {
	return newChannelMask(mask).decode(pixel)
}

// channelMask caches the shift and width derived from one mask.
type channelMask struct {
	mask  uint32
	shift int
	bits  int
}

func newChannelMask(mask uint32) channelMask {
	return channelMask{mask: mask, shift: MaskShift(mask), bits: MaskBits(mask)}
}

func (m channelMask) decode(pixel uint32) uint8 {
	if m.bits == 0 {
		return 0
	}
	v := (pixel & m.mask) >> m.shift
	if m.bits == 8 {
		return uint8(v)
	}
	return uint8(uint64(v) * 255 / (1<<uint64(m.bits) - 1))
}
