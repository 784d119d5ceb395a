package statestore

import (
	"encoding/binary"
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// CompressionType selects the block compression algorithm applied to
// a snapshot before it is written to a Store.
type CompressionType uint8

const (
	// CompressionNone stores the snapshot uncompressed.
	CompressionNone CompressionType = 0
	// CompressionLZ4 favors save/load speed over ratio.
	CompressionLZ4 CompressionType = 1
	// CompressionZSTD favors compression ratio over speed.
	CompressionZSTD CompressionType = 2
)

// blockHeaderSize is the length, in bytes, of the
// [uncompressedSize][compressedSize] header prefixing every block.
// compressedSize == 0 marks an uncompressed block.
const blockHeaderSize = 8

func compressBlock(data []byte, ct CompressionType) ([]byte, error) {
	if ct == CompressionNone || len(data) == 0 {
		return storeUncompressed(data), nil
	}

	var compressed []byte
	var err error
	switch ct {
	case CompressionLZ4:
		compressed, err = compressLZ4(data)
	case CompressionZSTD:
		compressed = compressZSTD(data)
	default:
		return nil, fmt.Errorf("statestore: unknown compression type %d", ct)
	}
	if err != nil {
		return nil, err
	}

	if len(compressed) == 0 || float64(len(compressed)) > float64(len(data))*0.9 {
		return storeUncompressed(data), nil
	}

	header := make([]byte, blockHeaderSize)
	binary.LittleEndian.PutUint32(header[0:], uint32(len(data)))
	binary.LittleEndian.PutUint32(header[4:], uint32(len(compressed)))
	return append(header, compressed...), nil
}

func storeUncompressed(data []byte) []byte {
	block := make([]byte, blockHeaderSize+len(data))
	binary.LittleEndian.PutUint32(block[0:], uint32(len(data)))
	binary.LittleEndian.PutUint32(block[4:], 0)
	copy(block[blockHeaderSize:], data)
	return block
}

func decompressBlock(block []byte, ct CompressionType) ([]byte, error) {
	if len(block) < blockHeaderSize {
		return nil, fmt.Errorf("%w: block shorter than header", ErrCorruptBlock)
	}

	uncompressedSize := binary.LittleEndian.Uint32(block[0:])
	compressedSize := binary.LittleEndian.Uint32(block[4:])
	payload := block[blockHeaderSize:]

	if compressedSize == 0 {
		if uint32(len(payload)) != uncompressedSize {
			return nil, fmt.Errorf("%w: uncompressed payload length mismatch", ErrCorruptBlock)
		}
		return payload, nil
	}

	if uint32(len(payload)) != compressedSize {
		return nil, fmt.Errorf("%w: compressed payload length mismatch", ErrCorruptBlock)
	}

	var out []byte
	var err error
	switch ct {
	case CompressionLZ4:
		out, err = decompressLZ4(payload, uncompressedSize)
	case CompressionZSTD:
		out, err = decompressZSTD(payload, uncompressedSize)
	default:
		return nil, fmt.Errorf("statestore: unknown compression type %d", ct)
	}
	if err != nil {
		return nil, err
	}
	if uint32(len(out)) != uncompressedSize {
		return nil, fmt.Errorf("%w: decompressed size mismatch", ErrCorruptBlock)
	}
	return out, nil
}

func compressLZ4(data []byte) ([]byte, error) {
	compressed := make([]byte, lz4.CompressBlockBound(len(data)))
	n, err := lz4.CompressBlock(data, compressed, nil)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil // incompressible
	}
	return compressed[:n], nil
}

func decompressLZ4(data []byte, uncompressedSize uint32) ([]byte, error) {
	out := make([]byte, uncompressedSize)
	n, err := lz4.UncompressBlock(data, out)
	if err != nil {
		return nil, err
	}
	return out[:n], nil
}

func compressZSTD(data []byte) []byte {
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	defer enc.Close()
	return enc.EncodeAll(data, nil)
}

func decompressZSTD(data []byte, uncompressedSize uint32) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return dec.DecodeAll(data, make([]byte, 0, uncompressedSize))
}
