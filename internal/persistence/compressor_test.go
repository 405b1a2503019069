package persistence

import (
	"bytes"
	"counterd/internal/structures"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZstdCompression_Roundtrip(t *testing.T) {
	c, err := NewZstdCompressor()
	require.NoError(t, err)
	defer c.Close()

	original := []byte(`{"key":"value","number":42}`)
	compressed, err := c.Compress(original)
	require.NoError(t, err)
	assert.NotEqual(t, original, compressed)
	assert.True(t, bytes.HasPrefix(compressed, zstdMagic))

	decompressed, err := c.Decompress(compressed)
	require.NoError(t, err)
	assert.Equal(t, original, decompressed)
}

func TestZstdCompression_EmptyData(t *testing.T) {
	c, err := NewZstdCompressor()
	require.NoError(t, err)

	compressed, err := c.Compress([]byte{})
	require.NoError(t, err)

	decompressed, err := c.Decompress(compressed)
	require.NoError(t, err)
	assert.Empty(t, decompressed)
}

func TestZstdCompression_LargeData(t *testing.T) {
	c, err := NewZstdCompressor()
	require.NoError(t, err)

	original := bytes.Repeat([]byte("abcdefghij"), 100_000) // 1MB
	compressed, err := c.Compress(original)
	require.NoError(t, err)
	// Repetitive data should compress well
	assert.Less(t, len(compressed), len(original)/2)

	decompressed, err := c.Decompress(compressed)
	require.NoError(t, err)
	assert.Equal(t, original, decompressed)
}

func TestZstdCompression_PassesThroughPlainJSON(t *testing.T) {
	c, err := NewZstdCompressor()
	require.NoError(t, err)

	plain := []byte(`{"version":1}`)
	out, err := c.Decompress(plain)
	require.NoError(t, err)
	assert.Equal(t, plain, out)
}

func TestZstdCompression_DecompressCorruptFrame(t *testing.T) {
	c, err := NewZstdCompressor()
	require.NoError(t, err)

	corrupt := append(append([]byte{}, zstdMagic...), 0xff, 0xfe, 0xfd, 0xfc, 0x00, 0x01)
	_, err = c.Decompress(corrupt)
	assert.Error(t, err)
}

func TestNewCompressor_SelectsByConfig(t *testing.T) {
	plain, err := NewCompressor(&structures.Config{})
	require.NoError(t, err)
	assert.IsType(t, &plainCompression{}, plain)

	zstd, err := NewCompressor(&structures.Config{Persistence: structures.Persistence{Compress: true}})
	require.NoError(t, err)
	assert.IsType(t, &ZstdCompression{}, zstd)
	zstd.Close()
}

func TestPlainCompression_Identity(t *testing.T) {
	p := &plainCompression{}
	data := []byte("hello")
	out, err := p.Compress(data)
	require.NoError(t, err)
	assert.Equal(t, data, out)
	out, err = p.Decompress(data)
	require.NoError(t, err)
	assert.Equal(t, data, out)
}
