package decode

import (
	"encoding/hex"
	"errors"
	"testing"
)

func TestBase64(t *testing.T) {
	data, err := Base64("AAEC")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := hex.EncodeToString(data); got != "000102" {
		t.Fatalf("hex mismatch: got %q, want %q", got, "000102")
	}
	if len(data) != 3 {
		t.Fatalf("length mismatch: got %d, want 3", len(data))
	}
}

func TestBase64Empty(t *testing.T) {
	data, err := Base64("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(data) != 0 {
		t.Fatalf("expected empty payload, got %d bytes", len(data))
	}
}

func TestBase64Invalid(t *testing.T) {
	cases := []string{"not base64!!", "AAE", "A===", "\x00\x01"}
	for _, input := range cases {
		_, err := Base64(input)
		if err == nil {
			t.Fatalf("expected error for %q", input)
		}
		var decodeErr *Error
		if !errors.As(err, &decodeErr) {
			t.Fatalf("expected *Error for %q, got %T", input, err)
		}
		if decodeErr.Payload != input {
			t.Fatalf("payload mismatch: got %q, want %q", decodeErr.Payload, input)
		}
	}
}
