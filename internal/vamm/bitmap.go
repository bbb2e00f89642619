package vamm

import (
	"math/bits"

	"github.com/holiman/uint256"
)

// tickBitmap indexes initialized ticks, one bit per tick-spacing-compressed
// index, packed into 256-bit words. It bounds the swap loop's search cost to
// one word scan per step.
type tickBitmap map[int16]*uint256.Int

func bitmapPosition(compressed int) (wordPos int16, bitPos uint8) {
	wordPos = int16(compressed >> 8)
	bitPos = uint8(compressed & 0xff)
	return wordPos, bitPos
}

func compress(tick, tickSpacing int) int {
	compressed := tick / tickSpacing
	if tick < 0 && tick%tickSpacing != 0 {
		compressed-- // round toward negative infinity
	}
	return compressed
}

// flip toggles the initialized bit for a tick that is a multiple of the
// spacing.
func (b tickBitmap) flip(tick, tickSpacing int) {
	compressed := tick / tickSpacing
	wordPos, bitPos := bitmapPosition(compressed)
	word, ok := b[wordPos]
	if !ok {
		word = new(uint256.Int)
		b[wordPos] = word
	}
	mask := new(uint256.Int).Lsh(uint256.NewInt(1), uint(bitPos))
	word.Xor(word, mask)
	if word.IsZero() {
		delete(b, wordPos)
	}
}

// nextInitializedTickWithinOneWord returns the nearest initialized tick in
// the search direction, or the boundary of the current 256-tick word when
// none is set, plus whether the returned tick is initialized. searchLeft
// scans toward lower ticks and includes fromTick itself.
func (b tickBitmap) nextInitializedTickWithinOneWord(fromTick, tickSpacing int, searchLeft bool) (int, bool) {
	compressed := compress(fromTick, tickSpacing)

	if searchLeft {
		wordPos, bitPos := bitmapPosition(compressed)
		word := b.word(wordPos)

		// All bits at or below bitPos.
		mask := new(uint256.Int).Lsh(uint256.NewInt(1), uint(bitPos))
		mask.Or(mask, new(uint256.Int).Sub(mask, uint256.NewInt(1)))
		masked := new(uint256.Int).And(word, mask)

		if masked.IsZero() {
			return (compressed - int(bitPos)) * tickSpacing, false
		}
		msb := masked.BitLen() - 1
		return (compressed - (int(bitPos) - msb)) * tickSpacing, true
	}

	wordPos, bitPos := bitmapPosition(compressed + 1)
	word := b.word(wordPos)

	// All bits at or above bitPos.
	mask := new(uint256.Int).Lsh(uint256.NewInt(1), uint(bitPos))
	mask.Sub(mask, uint256.NewInt(1))
	mask.Not(mask)
	masked := new(uint256.Int).And(word, mask)

	if masked.IsZero() {
		return (compressed + 1 + (255 - int(bitPos))) * tickSpacing, false
	}
	lsb := trailingZeros(masked)
	return (compressed + 1 + (lsb - int(bitPos))) * tickSpacing, true
}

func (b tickBitmap) word(wordPos int16) *uint256.Int {
	if word, ok := b[wordPos]; ok {
		return word
	}
	return new(uint256.Int)
}

func trailingZeros(v *uint256.Int) int {
	for i := 0; i < 4; i++ {
		if limb := v[i]; limb != 0 {
			return i*64 + bits.TrailingZeros64(limb)
		}
	}
	return 256
}
