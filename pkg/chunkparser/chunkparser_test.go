package chunkparser

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

// box builds a single ISO-BMFF box: a 4-byte big-endian size (header
// included), a 4-byte type, and the payload.
func box(boxType string, payload []byte) []byte {
	buf := make([]byte, 8+len(payload))
	binary.BigEndian.PutUint32(buf[0:4], uint32(len(buf)))
	copy(buf[4:8], boxType)
	copy(buf[8:], payload)
	return buf
}

func payload(n int, fill byte) []byte {
	p := make([]byte, n)
	for i := range p {
		p[i] = fill
	}
	return p
}

// initSegment builds an ftyp+moov init segment: the moov box is what flips
// ChunkData.IsInitSegment.
func initSegment(fill byte) []byte {
	var buf bytes.Buffer
	buf.Write(box("ftyp", payload(16, fill)))
	buf.Write(box("moov", payload(200, fill+1)))
	return buf.Bytes()
}

// mediaSegment builds n fragments of moof+mdat, each one becoming a
// separate ChunkData once its mdat completes.
func mediaSegment(n int, fill byte) []byte {
	var buf bytes.Buffer
	for i := 0; i < n; i++ {
		buf.Write(box("moof", payload(24, fill+byte(i))))
		buf.Write(box("mdat", payload(64+i, fill+byte(i)+1)))
	}
	return buf.Bytes()
}

func TestChunkParser(t *testing.T) {
	videoInit := initSegment(1)
	audioInit := initSegment(9)
	chunkedMedia := mediaSegment(4, 1)

	cases := []struct {
		name          string
		data          []byte
		isInitSegment bool
		nrChunks      int
	}{
		{"video init", videoInit, true, 1},
		{"audio init", audioInit, true, 1},
		{"chunked media", chunkedMedia, false, 4},
	}
	buf := make([]byte, 1024)
	for _, c := range cases {
		r := bytes.NewReader(c.data)
		chunks := make([]ChunkData, 0)
		cb := func(cd ChunkData) error {
			cp := make([]byte, len(cd.Data))
			copy(cp, cd.Data)
			chunks = append(chunks, ChunkData{Start: cd.Start, IsInitSegment: cd.IsInitSegment, Data: cp})
			return nil
		}
		p := NewMP4ChunkParser(r, buf, cb)
		err := p.Parse()
		require.NoError(t, err, c.name)
		require.Equal(t, c.nrChunks, len(chunks), c.name)
		require.Equal(t, c.isInitSegment, chunks[0].IsInitSegment, c.name)

		totDataLength := 0
		biggestChunk := 0
		for _, cd := range chunks {
			if len(cd.Data) > biggestChunk {
				biggestChunk = len(cd.Data)
			}
			totDataLength += len(cd.Data)
		}
		require.Equal(t, len(c.data), totDataLength, c.name)
		buf = p.GetBuffer()
		require.GreaterOrEqual(t, len(buf), biggestChunk, c.name)

		combinedData := make([]byte, 0, totDataLength)
		for _, cd := range chunks {
			combinedData = append(combinedData, cd.Data...)
		}
		require.Equal(t, c.data, combinedData, c.name)
	}
}
