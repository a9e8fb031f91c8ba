package client

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
)

// decodeContent removes the codings listed in a Content-Encoding header.
// Codings are undone in reverse order of application. Unknown codings leave
// the body untouched.
func decodeContent(encoding string, body []byte) ([]byte, error) {
	if encoding == "" || len(body) == 0 {
		return body, nil
	}

	codings := strings.Split(encoding, ",")
	for i := len(codings) - 1; i >= 0; i-- {
		coding := strings.ToLower(strings.TrimSpace(codings[i]))

		var r io.Reader
		switch coding {
		case "", "identity":
			continue
		case "gzip", "x-gzip":
			zr, err := gzip.NewReader(bytes.NewReader(body))
			if err != nil {
				return nil, fmt.Errorf("gzip: %w", err)
			}
			r = zr
		case "deflate":
			r = deflateReader(body)
		case "br":
			r = brotli.NewReader(bytes.NewReader(body))
		default:
			return body, nil
		}

		out, err := io.ReadAll(r)
		if rc, ok := r.(io.Closer); ok {
			_ = rc.Close()
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", coding, err)
		}
		body = out
	}
	return body, nil
}

// deflateReader handles both zlib-wrapped and raw deflate streams; servers
// disagree on which one "deflate" means.
func deflateReader(body []byte) io.Reader {
	if zr, err := zlib.NewReader(bytes.NewReader(body)); err == nil {
		return zr
	}
	return flate.NewReader(bytes.NewReader(body))
}
