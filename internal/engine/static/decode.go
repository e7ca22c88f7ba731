package static

import (
	"bufio"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"fmt"
	"io"
	"strings"
)

// DefaultMaxBodyBytes caps how much of a results page is read
const DefaultMaxBodyBytes int64 = 8 << 20

// readBody reads at most limit bytes of body, decoding gzip or deflate
// according to the Content-Encoding header. Setting Accept-Encoding by hand
// turns off net/http's transparent decompression, so it happens here.
func readBody(body io.Reader, contentEncoding string, limit int64) ([]byte, error) {
	if limit <= 0 {
		limit = DefaultMaxBodyBytes
	}

	var reader io.Reader = body
	switch strings.ToLower(strings.TrimSpace(contentEncoding)) {
	case "", "identity":
	case "gzip", "x-gzip":
		gz, err := gzip.NewReader(body)
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		defer func() { _ = gz.Close() }()
		reader = gz
	case "deflate":
		rc, err := newDeflateReader(body)
		if err != nil {
			return nil, fmt.Errorf("deflate: %w", err)
		}
		defer func() { _ = rc.Close() }()
		reader = rc
	default:
		return nil, fmt.Errorf("unsupported content encoding %q", contentEncoding)
	}

	return io.ReadAll(io.LimitReader(reader, limit))
}

// newDeflateReader accepts both zlib-wrapped and raw deflate streams;
// servers disagree on which one "deflate" means.
func newDeflateReader(body io.Reader) (io.ReadCloser, error) {
	br := bufio.NewReader(body)
	head, err := br.Peek(2)
	if err == nil && isZlibHeader(head) {
		return zlib.NewReader(br)
	}
	return flate.NewReader(br), nil
}

func isZlibHeader(b []byte) bool {
	if len(b) < 2 {
		return false
	}
	cmf, flg := b[0], b[1]
	return cmf&0x0f == 8 && (uint16(cmf)<<8|uint16(flg))%31 == 0
}
