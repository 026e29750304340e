package view

import "image/color"

//fillBinaryRGBA converts binary cell data (0/1) into RGBA pixels in buf
func fillBinaryRGBA(buf []byte, cells []byte, on, off color.Color) {
	rOn, gOn, bOn, aOn := on.RGBA()
	rOff, gOff, bOff, aOff := off.RGBA()
	for i, c := range cells {
		base := i * 4
		if c != 0 {
			buf[base+0] = uint8(rOn >> 8)
			buf[base+1] = uint8(gOn >> 8)
			buf[base+2] = uint8(bOn >> 8)
			buf[base+3] = uint8(aOn >> 8)
			continue
		}
		buf[base+0] = uint8(rOff >> 8)
		buf[base+1] = uint8(gOff >> 8)
		buf[base+2] = uint8(bOff >> 8)
		buf[base+3] = uint8(aOff >> 8)
	}
}

//cellAt converts window pixel coordinates into the cell row, col
func cellAt(x, y, scale int, width, height uint32) (row, col uint32, ok bool) {
	if scale <= 0 || x < 0 || y < 0 {
		return 0, 0, false
	}
	c, r := x/scale, y/scale
	if r >= int(height) || c >= int(width) {
		return 0, 0, false
	}
	return uint32(r), uint32(c), true
}
