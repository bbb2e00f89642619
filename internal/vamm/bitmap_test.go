package vamm

import "testing"

func TestBitmapFlipAndSearchLeft(t *testing.T) {
	bm := make(tickBitmap)
	bm.flip(-10, 1)
	bm.flip(40, 1)

	// From tick 0 the left scan stays in word 0, whose only bit (40) is
	// above it; the scan stops at the word floor uninitialized, and the
	// follow-up scan from the next word finds -10.
	next, initialized := bm.nextInitializedTickWithinOneWord(0, 1, true)
	if initialized || next != 0 {
		t.Fatalf("got (%d, %v), want (0, false)", next, initialized)
	}
	next, initialized = bm.nextInitializedTickWithinOneWord(next-1, 1, true)
	if !initialized || next != -10 {
		t.Fatalf("got (%d, %v), want (-10, true)", next, initialized)
	}

	// Search starting at the initialized tick includes it.
	next, initialized = bm.nextInitializedTickWithinOneWord(-10, 1, true)
	if !initialized || next != -10 {
		t.Fatalf("got (%d, %v), want (-10, true)", next, initialized)
	}

	// Below the only bit in the word: word boundary, not initialized.
	next, initialized = bm.nextInitializedTickWithinOneWord(-11, 1, true)
	if initialized {
		t.Fatalf("expected uninitialized word boundary, got tick %d", next)
	}
	if next > -11 {
		t.Fatalf("left search must not move right: %d", next)
	}
}

func TestBitmapSearchRight(t *testing.T) {
	bm := make(tickBitmap)
	bm.flip(40, 1)

	// Right search excludes the starting tick.
	next, initialized := bm.nextInitializedTickWithinOneWord(0, 1, false)
	if !initialized || next != 40 {
		t.Fatalf("got (%d, %v), want (40, true)", next, initialized)
	}

	next, initialized = bm.nextInitializedTickWithinOneWord(40, 1, false)
	if initialized {
		t.Fatalf("expected uninitialized boundary past 40, got %d", next)
	}
	if next <= 40 {
		t.Fatalf("right search must move right: %d", next)
	}
}

func TestBitmapFlipClearsBit(t *testing.T) {
	bm := make(tickBitmap)
	bm.flip(60, 60)
	bm.flip(60, 60)

	if _, initialized := bm.nextInitializedTickWithinOneWord(0, 60, false); initialized {
		t.Fatalf("double flip should clear the bit")
	}
	if len(bm) != 0 {
		t.Fatalf("empty words should be dropped, have %d", len(bm))
	}
}

func TestBitmapRespectsSpacing(t *testing.T) {
	bm := make(tickBitmap)
	bm.flip(-120, 60)

	// Tick 0 compresses into word 0; the bit for -120 lives in word -1, so
	// the first scan stops at the word boundary and the next one finds it.
	next, initialized := bm.nextInitializedTickWithinOneWord(0, 60, true)
	if initialized || next != 0 {
		t.Fatalf("got (%d, %v), want (0, false)", next, initialized)
	}
	next, initialized = bm.nextInitializedTickWithinOneWord(next-1, 60, true)
	if !initialized || next != -120 {
		t.Fatalf("got (%d, %v), want (-120, true)", next, initialized)
	}
}
