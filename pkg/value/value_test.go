package value

import "testing"

func TestTaggedIntRoundTrip(t *testing.T) {
	for _, n := range []int32{0, 1, -1, 42, -42, 1 << 20, -(1 << 20)} {
		word := TaggedInt(n)
		if TagOf(word) != TagInteger {
			t.Fatalf("TaggedInt(%d): tag = %v, want TagInteger", n, TagOf(word))
		}
		if got := UntagInt(word); got != n {
			t.Errorf("UntagInt(TaggedInt(%d)) = %d, want %d", n, got, n)
		}
	}
}

func TestTaggedIntBitPattern(t *testing.T) {
	// spec.md: tagged representation of n is 4n+1.
	if got, want := TaggedInt(5), uint32(21); got != want {
		t.Errorf("TaggedInt(5) = %d, want %d", got, want)
	}
	if got, want := TaggedInt(-1), uint32(0xfffffffd); got != want {
		t.Errorf("TaggedInt(-1) = 0x%x, want 0x%x", got, want)
	}
}

func TestEnumSingletonsAreDistinct(t *testing.T) {
	seen := map[uint32]string{}
	for word, name := range map[uint32]string{Nil: "nil", True: "true", False: "false", EOF: "eof"} {
		if existing, ok := seen[word]; ok {
			t.Fatalf("enum word 0x%x used by both %q and new entry %q", word, existing, name)
		}
		seen[word] = name
		if TagOf(word) != TagEnum {
			t.Errorf("%s: tag = %v, want TagEnum", name, TagOf(word))
		}
	}
}

func TestCharEnumFitsBelowNil(t *testing.T) {
	c := CharEnum('A')
	if TagOf(c) != TagEnum {
		t.Fatalf("CharEnum('A'): tag = %v, want TagEnum", TagOf(c))
	}
	if c >= Nil {
		t.Errorf("CharEnum('A') = 0x%x should sort below the Nil singleton 0x%x", c, Nil)
	}
}
