package raw

// dumpRowSize is the number of bytes rendered per dump line.
const dumpRowSize = 16

const hexDigits = "0123456789abcdef"

// DumpLen is the rendered size of n bytes of response data.
func DumpLen(n int) int {
	rows := (n + dumpRowSize - 1) / dumpRowSize
	return rows * (4*dumpRowSize + 2)
}

// Dump renders src into dst as a hex dump: up to 16 space separated
// two-digit hex byte values per line, followed by an ASCII column
// with non-printable bytes shown as '.'. Lines are newline terminated
// and the ASCII column is aligned across partial last lines. Returns
// the number of bytes written; empty src renders nothing. dst must
// hold at least DumpLen(len(src)) bytes.
func Dump(dst, src []byte) int {
	n := 0
	for len(src) > 0 {
		row := src
		if len(row) > dumpRowSize {
			row = row[:dumpRowSize]
		}
		src = src[len(row):]
		for i, b := range row {
			if i > 0 {
				dst[n] = ' '
				n++
			}
			dst[n] = hexDigits[b>>4]
			dst[n+1] = hexDigits[b&0xf]
			n += 2
		}
		for c := 3*len(row) - 1; c < 3*dumpRowSize-1; c++ {
			dst[n] = ' '
			n++
		}
		dst[n], dst[n+1] = ' ', ' '
		n += 2
		for _, b := range row {
			if b >= 0x20 && b < 0x7f {
				dst[n] = b
			} else {
				dst[n] = '.'
			}
			n++
		}
		dst[n] = '\n'
		n++
	}
	return n
}
