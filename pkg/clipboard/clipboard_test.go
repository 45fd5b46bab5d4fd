package clipboard

import (
	"runtime"
	"testing"
)

func TestDropUnencodableSkipsUnencodableRunes(t *testing.T) {
	// U+1F600 (an emoji) has no cp932 representation and must be dropped,
	// while the surrounding ASCII survives.
	got := dropUnencodable("a😀b")
	if got != "ab" {
		t.Errorf("dropUnencodable(%q) = %q, want %q", "a😀b", got, "ab")
	}
}

func TestDropUnencodablePreservesJapanese(t *testing.T) {
	got := dropUnencodable("こんにちは")
	if got == "" {
		t.Error("dropUnencodable should preserve cp932-representable Japanese text")
	}
}

func TestIsWSLFalseOnNonLinux(t *testing.T) {
	// isWSL immediately returns false off Linux; on Linux it depends on the
	// host's /proc/sys/kernel/osrelease contents, which this test doesn't
	// assert on to stay host-independent.
	got := isWSL()
	if runtime.GOOS != "linux" && got {
		t.Errorf("isWSL() = true on %s, want false", runtime.GOOS)
	}
}
