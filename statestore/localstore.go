package statestore

import (
	"context"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"os"
	"path/filepath"

	"golang.org/x/sync/semaphore"
)

// defaultMaxConcurrentWrites bounds how many Save calls may perform
// their compress-and-rename sequence at once, so a caller issuing many
// concurrent snapshots for distinct keys cannot exhaust file handles
// or disk I/O bandwidth.
const defaultMaxConcurrentWrites = 4

// LocalStore persists snapshots as single files under a directory,
// CRC32-checksummed and optionally block-compressed. Each Save
// replaces its file atomically via write-temp-then-rename. Concurrent
// Save calls are bounded by a weighted semaphore.
type LocalStore struct {
	dir         string
	compression CompressionType
	writeSem    *semaphore.Weighted
}

// NewLocalStore creates a LocalStore rooted at dir, applying
// compression to every saved snapshot. dir is created on first Save
// if it does not already exist.
func NewLocalStore(dir string, compression CompressionType) *LocalStore {
	return &LocalStore{
		dir:         dir,
		compression: compression,
		writeSem:    semaphore.NewWeighted(defaultMaxConcurrentWrites),
	}
}

func (s *LocalStore) path(key string) string {
	return filepath.Join(s.dir, key+".snap")
}

// Save writes snapshot to disk under key, checksummed and compressed
// per the store's configured CompressionType. Concurrent Save calls
// beyond the store's write concurrency limit block until a slot frees
// up or ctx is canceled.
func (s *LocalStore) Save(ctx context.Context, key string, snapshot []byte) error {
	if err := s.writeSem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("statestore: acquiring write slot: %w", err)
	}
	defer s.writeSem.Release(1)

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("statestore: creating directory: %w", err)
	}

	block, err := compressBlock(snapshot, s.compression)
	if err != nil {
		return fmt.Errorf("statestore: compressing snapshot: %w", err)
	}

	sum := crc32.ChecksumIEEE(snapshot)
	out := make([]byte, 4+len(block))
	binary.LittleEndian.PutUint32(out[0:], sum)
	copy(out[4:], block)

	filename := s.path(key)
	tmp, err := os.CreateTemp(s.dir, filepath.Base(filename)+".tmp-*")
	if err != nil {
		return fmt.Errorf("statestore: creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(out); err != nil {
		return fmt.Errorf("statestore: writing snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("statestore: syncing snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("statestore: closing snapshot: %w", err)
	}
	if err := os.Rename(tmpName, filename); err != nil {
		return fmt.Errorf("statestore: replacing snapshot file: %w", err)
	}
	return nil
}

// Load reads and verifies the snapshot stored under key.
func (s *LocalStore) Load(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("statestore: reading snapshot: %w", err)
	}
	if len(data) < 4 {
		return nil, fmt.Errorf("%w: file shorter than checksum", ErrCorruptBlock)
	}

	wantSum := binary.LittleEndian.Uint32(data[0:4])
	snapshot, err := decompressBlock(data[4:], s.compression)
	if err != nil {
		return nil, err
	}

	if gotSum := crc32.ChecksumIEEE(snapshot); gotSum != wantSum {
		return nil, ErrChecksumMismatch
	}
	return snapshot, nil
}
