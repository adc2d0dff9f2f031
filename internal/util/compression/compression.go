// Package compression provides the codecs used to shrink draft payloads
// before they hit the SQLite store.
package compression

type Compressor interface {
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte) ([]byte, error)
}

// ForName maps a config value to a codec. Unknown names fall back to no
// compression rather than failing startup.
func ForName(name string) Compressor {
	switch name {
	case "zstd":
		return ZstdCompressor{}
	case "gzip":
		return GzipCompressor{}
	default:
		return NoopCompressor{}
	}
}

type NoopCompressor struct{}

func (NoopCompressor) Compress(data []byte) ([]byte, error)   { return data, nil }
func (NoopCompressor) Decompress(data []byte) ([]byte, error) { return data, nil }
