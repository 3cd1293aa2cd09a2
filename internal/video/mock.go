package video

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockSource serves a fixed number of synthetic frames for testing. The frame
// content is blank; tests pair it with a mock detector that fabricates the
// landmark positions.
type MockSource struct {
	frameCount int
	width      int
	height     int
	served     int
	mu         sync.Mutex
	open       bool

	// OpenErr, if set, is returned by Open to simulate an unreadable file.
	OpenErr error
}

// NewMockSource creates a MockSource serving frameCount frames of the given size.
func NewMockSource(frameCount, width, height int) *MockSource {
	return &MockSource{
		frameCount: frameCount,
		width:      width,
		height:     height,
	}
}

func (s *MockSource) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.OpenErr != nil {
		return s.OpenErr
	}
	s.open = true
	s.served = 0
	return nil
}

func (s *MockSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = false
	return nil
}

func (s *MockSource) ReadFrame() (*gocv.Mat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return nil, ErrNotOpen
	}
	if s.served >= s.frameCount {
		return nil, ErrExhausted
	}

	mat := gocv.NewMatWithSize(s.height, s.width, gocv.MatTypeCV8UC3)
	s.served++

	return &mat, nil
}

func (s *MockSource) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

// Served returns how many frames have been read since Open.
func (s *MockSource) Served() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.served
}
