// Package compressedsink provides the compressed-log sink that
// Writer.WriteUpdate streams flow updates into.
//
// The update log is write-once, append-friendly output: every call to
// WriteUpdate appends a new header/body/terminator block. Sink wraps a
// buffered file in a pgzip writer, tuned the same way a high-throughput
// packet-capture writer would be: a block size large enough to amortize
// gzip's per-block overhead and up to two blocks compressed in parallel
// per CPU.
package compressedsink

import (
	"bufio"
	"os"
	"runtime"
	"sync"

	gzip "github.com/klauspost/pgzip"
)

// DefaultBufferSize is the size of the buffered writer sitting in front of
// the file, chosen so individual WriteUpdate calls rarely hit the syscall
// layer directly.
const DefaultBufferSize = 1 * 1024 * 1024

// DefaultCompressionBlockSize is the block size handed to pgzip. Below
// about 100KB blocks, pgzip's parallelism stops paying for itself.
const DefaultCompressionBlockSize = 250 * 1024

// Sink is an io.Writer that appends gzip-compressed bytes to a file. It
// implements io.Writer and io.Closer; Close flushes and closes every layer
// in order (gzip writer, then buffered writer, then file).
type Sink struct {
	mu sync.Mutex

	file    *os.File
	bw      *bufio.Writer
	gw      *gzip.Writer
}

// Open creates (or truncates) path and returns a Sink appending
// gzip-compressed bytes to it.
func Open(path string) (*Sink, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, err
	}

	bw := bufio.NewWriterSize(f, DefaultBufferSize)
	gw := gzip.NewWriter(bw)
	if err := gw.SetConcurrency(DefaultCompressionBlockSize, runtime.GOMAXPROCS(0)*2); err != nil {
		_ = f.Close()
		return nil, err
	}

	return &Sink{file: f, bw: bw, gw: gw}, nil
}

// Write implements io.Writer.
func (s *Sink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gw.Write(p)
}

// Flush flushes the gzip writer and the underlying buffered writer without
// closing the file, so the sink can keep accepting further WriteUpdate
// calls.
func (s *Sink) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.gw.Flush(); err != nil {
		return err
	}
	return s.bw.Flush()
}

// Close flushes and closes the gzip writer, flushes the buffered writer,
// and closes the underlying file.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.gw.Close(); err != nil {
		_ = s.file.Close()
		return err
	}
	if err := s.bw.Flush(); err != nil {
		_ = s.file.Close()
		return err
	}
	return s.file.Close()
}
