package httpx

import (
	"bufio"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"fmt"
	"io"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"
)

// DecodeReader wraps body so reads return the payload with every
// Content-Encoding in ce undone. Encodings are applied in listed order, so
// they are removed from last to first (e.g. "gzip, br"). Supported: br,
// gzip, zstd, deflate (zlib-wrapped or raw). Closing the returned reader
// closes body.
func DecodeReader(ce string, body io.ReadCloser) (io.ReadCloser, error) {
	if strings.TrimSpace(ce) == "" {
		return body, nil
	}
	encodings := strings.Split(ce, ",")
	var r io.Reader = body
	closers := []io.Closer{body}

	for i := len(encodings) - 1; i >= 0; i-- {
		switch strings.TrimSpace(strings.ToLower(encodings[i])) {
		case "br":
			r = brotli.NewReader(r)
		case "gzip", "x-gzip":
			gr, err := gzip.NewReader(r)
			if err != nil {
				_ = body.Close()
				return nil, fmt.Errorf("gzip: %w", err)
			}
			closers = append(closers, gr)
			r = gr
		case "zstd":
			dec, err := zstd.NewReader(r)
			if err != nil {
				_ = body.Close()
				return nil, fmt.Errorf("zstd: %w", err)
			}
			closers = append(closers, zstdCloser{dec})
			r = dec
		case "deflate":
			dr, err := deflateReader(r)
			if err != nil {
				_ = body.Close()
				return nil, fmt.Errorf("deflate: %w", err)
			}
			closers = append(closers, dr)
			r = dr
		case "identity", "compress", "":
		default:
			_ = body.Close()
			return nil, fmt.Errorf("unsupported content-encoding: %q", encodings[i])
		}
	}

	return &decodedBody{Reader: r, closers: closers}, nil
}

// deflateReader sniffs the zlib header and falls back to raw DEFLATE.
func deflateReader(r io.Reader) (io.ReadCloser, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(2)
	if err != nil && len(head) < 2 {
		if err == io.EOF {
			return io.NopCloser(br), nil
		}
		return nil, err
	}
	if isZlibHeader(head[0], head[1]) {
		return zlib.NewReader(br)
	}
	return flate.NewReader(br), nil
}

func isZlibHeader(cmf, flg byte) bool {
	return cmf&0x0f == 8 && cmf>>4 <= 7 && (uint16(cmf)<<8|uint16(flg))%31 == 0
}

type zstdCloser struct {
	dec *zstd.Decoder
}

func (z zstdCloser) Close() error {
	z.dec.Close()
	return nil
}

type decodedBody struct {
	io.Reader
	closers []io.Closer
}

func (d *decodedBody) Close() error {
	var first error
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
