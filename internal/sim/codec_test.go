package sim

import (
	"errors"
	"testing"
)

func TestCodecRoundTrip(t *testing.T) {
	original := buildTimeline(t)

	data, err := Encode(original)
	if err != nil {
		t.Fatalf("Encode() failed: %v", err)
	}

	decoded, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode() failed: %v", err)
	}

	if !original.Equal(decoded) {
		t.Error("decoded timeline differs from original")
	}
	if decoded.Fingerprint() != original.Fingerprint() {
		t.Errorf("fingerprint changed in round trip: %x vs %x",
			decoded.Fingerprint(), original.Fingerprint())
	}

	// Re-encoding must be byte-identical
	data2, err := Encode(decoded)
	if err != nil {
		t.Fatalf("second Encode() failed: %v", err)
	}
	if string(data) != string(data2) {
		t.Error("re-encoding produced different bytes")
	}
}

func TestCodecRoundTripEmpty(t *testing.T) {
	l := NewLog("hero-9")
	original := l.Seal(120, "bard", 7)

	data, err := Encode(original)
	if err != nil {
		t.Fatalf("Encode() failed: %v", err)
	}
	decoded, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode() failed: %v", err)
	}
	if !original.Equal(decoded) {
		t.Error("empty timeline did not round trip")
	}
	if decoded.Duration() != 120 {
		t.Errorf("Duration() = %d, want 120", decoded.Duration())
	}
}

func TestCodecDetectsCorruption(t *testing.T) {
	data, err := Encode(buildTimeline(t))
	if err != nil {
		t.Fatalf("Encode() failed: %v", err)
	}

	// Flip one byte in the command body
	corrupted := make([]byte, len(data))
	copy(corrupted, data)
	corrupted[len(corrupted)-1] ^= 0xFF

	if _, err := Decode(corrupted); !errors.Is(err, ErrTimelineCorrupted) {
		t.Errorf("Decode(corrupted) = %v, want ErrTimelineCorrupted", err)
	}
}

func TestCodecRejectsBadMagic(t *testing.T) {
	if _, err := Decode([]byte("NOPE\x01")); !errors.Is(err, ErrTimelineCorrupted) {
		t.Errorf("Decode(bad magic) = %v, want ErrTimelineCorrupted", err)
	}
}

func TestCodecRejectsFutureVersion(t *testing.T) {
	data, err := Encode(buildTimeline(t))
	if err != nil {
		t.Fatalf("Encode() failed: %v", err)
	}
	data[4] = codecVersion + 1

	if _, err := Decode(data); !errors.Is(err, ErrUnsupportedVersion) {
		t.Errorf("Decode(future version) = %v, want ErrUnsupportedVersion", err)
	}
}

func TestCodecRejectsTruncated(t *testing.T) {
	data, err := Encode(buildTimeline(t))
	if err != nil {
		t.Fatalf("Encode() failed: %v", err)
	}

	if _, err := Decode(data[:len(data)/2]); !errors.Is(err, ErrTimelineCorrupted) {
		t.Errorf("Decode(truncated) = %v, want ErrTimelineCorrupted", err)
	}
}

func TestCodecRejectsTrailingGarbage(t *testing.T) {
	data, err := Encode(buildTimeline(t))
	if err != nil {
		t.Fatalf("Encode() failed: %v", err)
	}
	data = append(data, 0xAB)

	if _, err := Decode(data); !errors.Is(err, ErrTimelineCorrupted) {
		t.Errorf("Decode(trailing bytes) = %v, want ErrTimelineCorrupted", err)
	}
}
