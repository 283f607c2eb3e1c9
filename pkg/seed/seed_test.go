package seed

import "testing"

func TestDeriveIsStable(t *testing.T) {
	const key = "The Lantern of Whispering Pines|Mira,Tom"
	first := Derive(key)
	for i := 0; i < 100; i++ {
		if got := Derive(key); got != first {
			t.Fatalf("Derive not stable: got %d, want %d", got, first)
		}
	}
}

func TestDeriveKnownValues(t *testing.T) {
	// Pinned value guards against accidental algorithm changes, which
	// would silently re-render every stored story differently.
	if got := Derive(""); got != 2166136261&(1<<31-1) {
		t.Errorf("Derive(\"\") = %d, want the masked FNV offset basis", got)
	}
	if Derive("Mira") == Derive("mira") {
		t.Error("case difference should change the seed")
	}
	if Derive("Mira") == Derive("Mira ") {
		t.Error("trailing whitespace should change the seed")
	}
}

func TestDeriveFitsIn31Bits(t *testing.T) {
	keys := []string{"", "a", "story", "Чудо", "a very long key with many characters to fold"}
	for _, k := range keys {
		if s := Derive(k); s >= 1<<31 {
			t.Errorf("Derive(%q) = %d exceeds 31 bits", k, s)
		}
	}
}

func TestStoryKeyIgnoresParticipantOrder(t *testing.T) {
	a := StoryKey("Adventure", []string{"Mira", "Tom", "Zoe"})
	b := StoryKey("Adventure", []string{"Zoe", "Mira", "Tom"})
	if a != b {
		t.Fatalf("StoryKey order-sensitive: %q vs %q", a, b)
	}
	if a == StoryKey("Adventure", []string{"Mira", "Tom"}) {
		t.Error("different casts must produce different keys")
	}
}

func TestForImageOffsets(t *testing.T) {
	base := Derive(StoryKey("Adventure", []string{"Mira"}))

	seen := make(map[uint32]int)
	prevOffset := int64(-1)
	for i := 0; i <= 8; i++ {
		s := ForImage(base, i)
		if s >= 1<<31 {
			t.Fatalf("seed %d exceeds 31 bits", s)
		}
		if prev, ok := seen[s]; ok {
			t.Fatalf("seed collision between images %d and %d", prev, i)
		}
		seen[s] = i

		// The modular offset from the base must grow strictly with the
		// image index.
		offset := (int64(s) - int64(base) + 1<<31) % (1 << 31)
		if offset <= prevOffset {
			t.Fatalf("offset not strictly increasing at index %d: %d <= %d", i, offset, prevOffset)
		}
		prevOffset = offset
	}

	if ForImage(base, 0) != base {
		t.Error("cover seed should equal the base seed")
	}
}
