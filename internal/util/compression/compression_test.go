package compression

import (
	"bytes"
	"testing"
)

func TestCompressorsRoundTrip(t *testing.T) {
	payload := []byte(`{"data":{"title":"Paris trip","notes":"call the hotel about late check-in"}}`)

	for _, tc := range []struct {
		name       string
		compressor Compressor
	}{
		{"zstd", ZstdCompressor{}},
		{"gzip", GzipCompressor{}},
		{"noop", NoopCompressor{}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			compressed, err := tc.compressor.Compress(payload)
			if err != nil {
				t.Fatalf("Compress failed: %v", err)
			}

			decompressed, err := tc.compressor.Decompress(compressed)
			if err != nil {
				t.Fatalf("Decompress failed: %v", err)
			}

			if !bytes.Equal(decompressed, payload) {
				t.Errorf("Expected round-trip to preserve data, got %q", decompressed)
			}
		})
	}
}

func TestForName(t *testing.T) {
	if _, ok := ForName("zstd").(ZstdCompressor); !ok {
		t.Error("Expected zstd codec for \"zstd\"")
	}
	if _, ok := ForName("gzip").(GzipCompressor); !ok {
		t.Error("Expected gzip codec for \"gzip\"")
	}
	if _, ok := ForName("none").(NoopCompressor); !ok {
		t.Error("Expected noop codec for \"none\"")
	}
	if _, ok := ForName("whatever").(NoopCompressor); !ok {
		t.Error("Expected unknown names to fall back to no compression")
	}
}
