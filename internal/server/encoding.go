package server

import (
	"strconv"
	"strings"

	"github.com/playperu/spahost/internal/assets"
)

// preferredEncodings lists the content codings we hold precomputed, best first.
var preferredEncodings = []string{"br", "gzip"}

// negotiateEncoding picks the best precompressed variant of e the client
// accepts, or "" for the identity body.
func negotiateEncoding(header string, e *assets.Entry) string {
	if header == "" {
		return ""
	}
	accepted := parseAcceptEncoding(header)
	for _, enc := range preferredEncodings {
		if !accepted[enc] && !accepted["*"] {
			continue
		}
		if q, explicit := accepted[enc]; explicit && !q {
			continue
		}
		if e.Variant(enc) != nil {
			return enc
		}
	}
	return ""
}

// parseAcceptEncoding maps each listed coding to whether it is acceptable.
// A coding listed with q=0 maps to false.
func parseAcceptEncoding(header string) map[string]bool {
	accepted := make(map[string]bool)
	for part := range strings.SplitSeq(header, ",") {
		enc, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		enc = strings.ToLower(strings.TrimSpace(enc))
		if enc == "" {
			continue
		}
		accepted[enc] = qualityNonZero(params)
	}
	return accepted
}

func qualityNonZero(params string) bool {
	for p := range strings.SplitSeq(params, ";") {
		k, v, ok := strings.Cut(strings.TrimSpace(p), "=")
		if !ok || strings.TrimSpace(k) != "q" {
			continue
		}
		q, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return err != nil || q > 0
	}
	return true
}

func etagMatches(header, etag string) bool {
	if header == "" || etag == "" {
		return false
	}
	for candidate := range strings.SplitSeq(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" {
			return true
		}
		if strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}
