package assets

import (
	"bytes"
	"encoding/hex"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"golang.org/x/crypto/blake2b"
)

const defaultMinCompressSize = 1024

func etag(content []byte) string {
	sum := blake2b.Sum256(content)
	return `"` + hex.EncodeToString(sum[:16]) + `"`
}

func compressible(mimeType string) bool {
	if strings.HasPrefix(mimeType, "text/") {
		return true
	}
	switch mimeType {
	case "application/javascript", "application/json", "application/manifest+json",
		"application/xml", "application/wasm", "image/svg+xml", "image/x-icon",
		"application/vnd.ms-fontobject", "font/ttf", "font/otf":
		return true
	}
	return false
}

// precompress returns gzip and brotli encodings of content. A variant that
// is not smaller than the original is dropped (nil).
func precompress(content []byte) (gz, br []byte, err error) {
	var gzBuf bytes.Buffer
	gw, err := gzip.NewWriterLevel(&gzBuf, gzip.BestCompression)
	if err != nil {
		return nil, nil, err
	}
	if _, err := gw.Write(content); err != nil {
		return nil, nil, err
	}
	if err := gw.Close(); err != nil {
		return nil, nil, err
	}

	var brBuf bytes.Buffer
	bw := brotli.NewWriterLevel(&brBuf, brotli.BestCompression)
	if _, err := bw.Write(content); err != nil {
		return nil, nil, err
	}
	if err := bw.Close(); err != nil {
		return nil, nil, err
	}

	if gzBuf.Len() < len(content) {
		gz = gzBuf.Bytes()
	}
	if brBuf.Len() < len(content) {
		br = brBuf.Bytes()
	}
	return gz, br, nil
}
