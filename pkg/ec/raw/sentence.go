package raw

import "strconv"

// maxWordSize bounds a single word within a hex sentence.
const maxWordSize = 16

// ParseHexSentence decodes a sequence of whitespace separated hex
// numbers from in into out. Each word must fit in one byte. A valid
// sentence is e.g.
//
//	"   00 f2 0    000076 6 0  ff"
//
// Parsing stops silently once out is full; remaining words are not
// examined. Returns the number of bytes produced, which may be zero
// for empty or all-whitespace input.
func ParseHexSentence(in, out []byte) (int, error) {
	n := 0
	i := 0
	for i < len(in) && n < len(out) {
		for i < len(in) && isSpace(in[i]) {
			i++
		}
		if i >= len(in) {
			break
		}
		start := i
		for i < len(in) && !isSpace(in[i]) {
			i++
		}
		word := in[start:i]
		if len(word) > maxWordSize {
			return 0, ErrInvalidInput
		}
		// The word-specific decode failure is not surfaced: it is
		// only meaningful for that one word and would confuse the
		// caller of the whole sentence.
		v, err := strconv.ParseUint(string(word), 16, 8)
		if err != nil {
			return 0, ErrInvalidInput
		}
		out[n] = byte(v)
		n++
	}
	return n, nil
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}
