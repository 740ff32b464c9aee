package crypto

import (
	"errors"
	"strings"
	"testing"
)

// sha1("hello world")
const helloWorldDigest = "2aae6c35c94fcfb415dbe95f408b9ce91ee846ed"

func TestHash(t *testing.T) {

	// check that empty input returns an error
	_, err := Hash([]byte(""))
	if err == nil {
		t.Fatalf("Hash() expected error, got nil")
	}

	result, err := Hash([]byte("hello world"))
	if err != nil {
		t.Fatalf("Hash() returned error: %v", err)
	}

	if result != helloWorldDigest {
		t.Errorf("Hash() = %s, want %s", result, helloWorldDigest)
	}

	// Check that result is 40 lowercase hex characters (SHA-1)
	if len(result) != 40 {
		t.Errorf("Hash() returned %d characters, expected 40", len(result))
	}
	for _, c := range result {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')) {
			t.Errorf("Hash() returned non-hex character: %c", c)
		}
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk gone") }

func TestHashReader(t *testing.T) {
	result, err := HashReader(strings.NewReader("hello world"))
	if err != nil {
		t.Fatalf("HashReader() returned error: %v", err)
	}
	if result != helloWorldDigest {
		t.Errorf("HashReader() = %s, want %s", result, helloWorldDigest)
	}

	if _, err := HashReader(failingReader{}); err == nil {
		t.Error("expected error for failing reader, got nil")
	}
}

func TestVerifyHash(t *testing.T) {
	tests := []struct {
		name   string
		data   []byte
		digest string
		want   bool
	}{
		{"matching digest", []byte("hello world"), helloWorldDigest, true},
		{"different data", []byte("hello world!"), helloWorldDigest, false},
		{"uppercase digest is not accepted", []byte("hello world"), strings.ToUpper(helloWorldDigest), false},
		{"empty data", nil, helloWorldDigest, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := VerifyHash(tt.data, tt.digest); got != tt.want {
				t.Errorf("VerifyHash() = %v, want %v", got, tt.want)
			}
		})
	}
}
