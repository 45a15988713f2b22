package referential

import (
	"fmt"
	"unicode/utf16"
)

// The referential payload is compressed with the LZString "UTF16" variant:
// dictionary-based compression emitted as printable UTF-16 code units, each
// carrying 15 payload bits offset by 32. This file implements the decompressor
// only; the client never compresses.

// bitReader draws individual bits from the 15-bit-per-unit stream.
type bitReader struct {
	data     []rune
	val      int
	position int
	index    int
}

// resetMask is the high-bit mask for a 15-bit code unit (2^14).
const resetMask = 16384

func newBitReader(data []rune) *bitReader {
	return &bitReader{
		data:     data,
		val:      int(data[0]) - 32,
		position: resetMask,
		index:    1,
	}
}

// readBits reads n bits, least significant first.
func (r *bitReader) readBits(n int) (int, error) {
	bits := 0
	for power := 1; n > 0; n-- {
		resb := r.val & r.position
		r.position >>= 1
		if r.position == 0 {
			if r.index >= len(r.data) {
				return 0, fmt.Errorf("referential: compressed stream truncated at unit %d", r.index)
			}
			r.position = resetMask
			r.val = int(r.data[r.index]) - 32
			r.index++
		}
		if resb > 0 {
			bits |= power
		}
		power <<= 1
	}
	return bits, nil
}

// Marker codes embedded in the stream. Codes 0 and 1 introduce 8-bit and
// 16-bit literals; code 2 terminates the stream. Dictionary references
// start at 3.
const (
	markerLiteral8  = 0
	markerLiteral16 = 1
	markerEnd       = 2
)

// decompressUTF16 expands an LZString compressToUTF16 payload back to text.
//
// An empty input decompresses to the empty string. A malformed stream
// (truncated bits, dangling dictionary reference) returns an error; callers
// treat that as "no table yet" rather than a fatal condition.
func decompressUTF16(compressed string) (string, error) {
	if compressed == "" {
		return "", nil
	}

	data := []rune(compressed)
	r := newBitReader(data)

	// Dictionary entries are sequences of UTF-16 code units, indexed directly
	// by wire code. Slots 0-2 stay nil: those codes are the markers above.
	dictionary := make([][]uint16, 3, 64)
	enlargeIn := 4
	numBits := 3

	first, err := r.readBits(2)
	if err != nil {
		return "", err
	}

	var c []uint16
	switch first {
	case markerLiteral8:
		bits, err := r.readBits(8)
		if err != nil {
			return "", err
		}
		c = []uint16{uint16(bits)}
	case markerLiteral16:
		bits, err := r.readBits(16)
		if err != nil {
			return "", err
		}
		c = []uint16{uint16(bits)}
	case markerEnd:
		return "", nil
	default:
		return "", fmt.Errorf("referential: invalid leading marker %d", first)
	}

	dictionary = append(dictionary, c)
	w := c
	result := append([]uint16(nil), c...)

	for {
		code, err := r.readBits(numBits)
		if err != nil {
			return "", err
		}

		switch code {
		case markerLiteral8:
			bits, err := r.readBits(8)
			if err != nil {
				return "", err
			}
			code = len(dictionary)
			dictionary = append(dictionary, []uint16{uint16(bits)})
			enlargeIn--
		case markerLiteral16:
			bits, err := r.readBits(16)
			if err != nil {
				return "", err
			}
			code = len(dictionary)
			dictionary = append(dictionary, []uint16{uint16(bits)})
			enlargeIn--
		case markerEnd:
			return string(utf16.Decode(result)), nil
		}

		if enlargeIn == 0 {
			enlargeIn = 1 << numBits
			numBits++
		}

		var entry []uint16
		switch {
		case code < len(dictionary) && dictionary[code] != nil:
			entry = dictionary[code]
		case code == len(dictionary):
			// Pending entry: w plus its own first unit.
			entry = append(append([]uint16(nil), w...), w[0])
		default:
			return "", fmt.Errorf("referential: dangling dictionary reference %d", code)
		}

		result = append(result, entry...)

		// Record w + entry[0] as the next dictionary entry.
		dictionary = append(dictionary, append(append([]uint16(nil), w...), entry[0]))
		enlargeIn--

		w = entry

		if enlargeIn == 0 {
			enlargeIn = 1 << numBits
			numBits++
		}
	}
}
