// Package video provides frame sources over recorded video files using GoCV (OpenCV).
package video

import (
	"errors"
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// ErrVideoOpen is returned when a video file cannot be opened or read.
var ErrVideoOpen = errors.New("video could not be opened")

// ErrNotOpen is returned when reading from a source that is not open.
var ErrNotOpen = errors.New("video source is not open")

// ErrExhausted is returned when the source has no more frames. Running out of
// frames before the configured end of the range is expected for short videos
// and is not a failure at the session level.
var ErrExhausted = errors.New("no more frames")

// Source defines the interface for video frame sources.
type Source interface {
	Open() error
	Close() error

	// ReadFrame returns the next frame in sequence. The caller is
	// responsible for closing the returned Mat. Returns ErrExhausted once
	// the source runs out of frames.
	ReadFrame() (*gocv.Mat, error)

	IsOpen() bool
}

// fileSource reads frames sequentially from a video file using GoCV.
type fileSource struct {
	path    string
	capture *gocv.VideoCapture
	mu      sync.Mutex
	open    bool
}

// NewFileSource creates a Source backed by the video file at path.
// The file is not touched until Open is called.
func NewFileSource(path string) Source {
	return &fileSource{path: path}
}

// Open opens the video file for reading.
func (s *fileSource) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.open {
		return nil
	}

	capture, err := gocv.VideoCaptureFile(s.path)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrVideoOpen, s.path, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return fmt.Errorf("%w: %s", ErrVideoOpen, s.path)
	}

	s.capture = capture
	s.open = true

	return nil
}

// Close closes the video file and releases resources.
func (s *fileSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open || s.capture == nil {
		s.open = false
		return nil
	}

	err := s.capture.Close()
	s.capture = nil
	s.open = false

	return err
}

// ReadFrame reads the next frame from the file.
func (s *fileSource) ReadFrame() (*gocv.Mat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open || s.capture == nil {
		return nil, ErrNotOpen
	}

	mat := gocv.NewMat()
	if ok := s.capture.Read(&mat); !ok {
		mat.Close()
		return nil, ErrExhausted
	}

	if mat.Empty() {
		mat.Close()
		return nil, ErrExhausted
	}

	return &mat, nil
}

// IsOpen returns true if the video file is currently open.
func (s *fileSource) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.open
}
