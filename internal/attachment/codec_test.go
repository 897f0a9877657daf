// Copyright (c) 2024-2025 Bogdan Development
// SPDX-License-Identifier: AGPL-3.0-or-later

package attachment

import (
	"bytes"
	"crypto/rand"
	"errors"
	"testing"
)

func TestCodec_EncodeDecodeRoundTrip(t *testing.T) {
	codec := NewCodec()

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", []byte{}},
		{"text", []byte("hello world")},
		{"binary", []byte{0x00, 0xFF, 0x7F, 0x80, 0x01}},
		{"newlines", []byte("line1\r\nline2\nline3")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			att, err := codec.Encode(tt.name+".bin", "application/octet-stream", tt.data)
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}

			got, err := Decode(att)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if !bytes.Equal(got, tt.data) {
				t.Errorf("round trip mismatch: got %v, want %v", got, tt.data)
			}
			if att.SizeBytes != int64(len(tt.data)) {
				t.Errorf("SizeBytes = %d, want %d", att.SizeBytes, len(tt.data))
			}
		})
	}
}

func TestCodec_RoundTripRandomBytes(t *testing.T) {
	codec := NewCodecWithLimit(1 << 20)

	data := make([]byte, 64*1024)
	if _, err := rand.Read(data); err != nil {
		t.Fatalf("rand.Read failed: %v", err)
	}

	att, err := codec.Encode("random.bin", "", data)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if att.MimeType != "application/octet-stream" {
		t.Errorf("empty mime should default, got %q", att.MimeType)
	}

	got, err := Decode(att)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Error("random bytes did not survive round trip")
	}
}

func TestCodec_TooLarge(t *testing.T) {
	codec := NewCodecWithLimit(1024)

	// At the ceiling is rejected, not just above it.
	data := make([]byte, 1024)
	_, err := codec.Encode("big.bin", "application/octet-stream", data)
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}

	// Just under the ceiling is accepted.
	att, err := codec.Encode("ok.bin", "application/octet-stream", data[:1023])
	if err != nil {
		t.Fatalf("Encode under ceiling failed: %v", err)
	}
	if att.SizeBytes != 1023 {
		t.Errorf("SizeBytes = %d, want 1023", att.SizeBytes)
	}
}

func TestCodec_EncodeDeterministic(t *testing.T) {
	codec := NewCodec()
	data := []byte("deterministic payload")

	a, err := codec.Encode("a.txt", "text/plain", data)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	b, err := codec.Encode("a.txt", "text/plain", data)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if a.Payload != b.Payload {
		t.Error("encoding the same bytes twice produced different payloads")
	}
}

func TestNewCodecWithLimit_Fallback(t *testing.T) {
	codec := NewCodecWithLimit(0)
	if codec.MaxSizeBytes != DefaultMaxSizeBytes {
		t.Errorf("MaxSizeBytes = %d, want default %d", codec.MaxSizeBytes, DefaultMaxSizeBytes)
	}
}
