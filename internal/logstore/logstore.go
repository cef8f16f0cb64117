// Package logstore provides the durable surface of the command log: a
// single file whose contents mirror, in order, every command committed to
// the ring log plus every timestamp the Ticker appends. All access goes
// through one mutex, matching the "store mutex" of the concurrency model:
// it is held across a full file write or a full file read, but never across
// socket I/O.
package logstore

import (
	"io"
	"os"
	"sync"
)

// DefaultPath is the conventional location for the backing file, unchanged
// from the coursework this system generalizes.
const DefaultPath = "/var/tmp/aesdsocketdata"

// Store is a mutex-guarded, file-backed byte stream.
type Store struct {
	mu   sync.Mutex
	path string
	file *os.File
}

// Open creates (or truncates) the backing file at path with permissions
// that allow any local user to read and write it, matching the wire
// protocol's documented file mode.
func Open(path string) (*Store, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_TRUNC, 0666)
	if err != nil {
		return nil, err
	}
	return &Store{path: path, file: f}, nil
}

// Append writes cmd at the current end of file. The caller is responsible
// for ensuring cmd is a complete, newline-terminated command; Append itself
// enforces no framing.
func (s *Store) Append(cmd []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.file.Seek(0, io.SeekEnd); err != nil {
		return err
	}
	_, err := s.file.Write(cmd)
	return err
}

// Snapshot seeks to the beginning of the file and reads its entire current
// contents. Because Append and Snapshot share the same mutex, the returned
// bytes are always a prefix-closed view: every command that had fully
// committed before Snapshot acquired the lock is present, and nothing
// appended afterward is.
func (s *Store) Snapshot() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.file.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	return io.ReadAll(s.file)
}

// Close closes the backing file without removing it.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}

// Remove closes the backing file and removes it from disk. Call this on
// clean shutdown; the file is not intended as a durable record across
// crashes or restarts.
func (s *Store) Remove() error {
	s.mu.Lock()
	path := s.path
	err := s.file.Close()
	s.mu.Unlock()

	if rmErr := os.Remove(path); err == nil {
		err = rmErr
	}
	return err
}
