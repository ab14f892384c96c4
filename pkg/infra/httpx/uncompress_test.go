package httpx

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"io"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ssePayload = "data: {\"type\":\"message\"}\n\ndata: {\"type\":\"complete\"}\n\n"

func gzipCompress(data []byte) []byte {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, _ = gz.Write(data)
	_ = gz.Close()
	return buf.Bytes()
}

func brCompress(data []byte) []byte {
	var buf bytes.Buffer
	br := brotli.NewWriter(&buf)
	_, _ = br.Write(data)
	_ = br.Close()
	return buf.Bytes()
}

func zstdCompress(data []byte) []byte {
	var buf bytes.Buffer
	zw, _ := zstd.NewWriter(&buf)
	_, _ = zw.Write(data)
	_ = zw.Close()
	return buf.Bytes()
}

func zlibCompress(data []byte) []byte {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	_, _ = zw.Write(data)
	_ = zw.Close()
	return buf.Bytes()
}

func rawDeflateCompress(data []byte) []byte {
	var buf bytes.Buffer
	dw, _ := flate.NewWriter(&buf, flate.DefaultCompression)
	_, _ = dw.Write(data)
	_ = dw.Close()
	return buf.Bytes()
}

type trackingBody struct {
	*bytes.Reader
	closed bool
}

func (b *trackingBody) Close() error {
	b.closed = true
	return nil
}

func newBody(data []byte) *trackingBody {
	return &trackingBody{Reader: bytes.NewReader(data)}
}

func TestDecodeReader(t *testing.T) {
	plain := []byte(ssePayload)

	tests := []struct {
		name     string
		encoding string
		body     []byte
	}{
		{name: "no encoding", encoding: "", body: plain},
		{name: "identity", encoding: "identity", body: plain},
		{name: "gzip", encoding: "gzip", body: gzipCompress(plain)},
		{name: "brotli", encoding: "br", body: brCompress(plain)},
		{name: "zstd", encoding: "zstd", body: zstdCompress(plain)},
		{name: "deflate zlib wrapped", encoding: "deflate", body: zlibCompress(plain)},
		{name: "deflate raw", encoding: "deflate", body: rawDeflateCompress(plain)},
		{name: "case and whitespace", encoding: "  GZip  ", body: gzipCompress(plain)},
		{name: "chained gzip then br", encoding: "gzip, br", body: brCompress(gzipCompress(plain))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := newBody(tt.body)

			r, err := DecodeReader(tt.encoding, body)
			require.NoError(t, err)

			out, err := io.ReadAll(r)
			require.NoError(t, err)
			assert.Equal(t, plain, out)

			require.NoError(t, r.Close())
			assert.True(t, body.closed)
		})
	}
}

func TestDecodeReader_UnsupportedEncodingClosesBody(t *testing.T) {
	body := newBody([]byte("abc"))

	_, err := DecodeReader("foo", body)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported content-encoding")
	assert.True(t, body.closed)
}

func TestDecodeReader_CorruptGzip(t *testing.T) {
	body := newBody([]byte("not gzip at all"))

	_, err := DecodeReader("gzip", body)

	require.Error(t, err)
	assert.True(t, body.closed)
}

func TestDecodeReader_EmptyDeflateBody(t *testing.T) {
	r, err := DecodeReader("deflate", newBody(nil))
	require.NoError(t, err)

	out, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Empty(t, out)
}
