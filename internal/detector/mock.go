package detector

import (
	"math"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It returns a scripted sequence of per-frame results, advancing one entry
// per Detect call, so tests can replay an exact detection history.
type MockDetector struct {
	frames [][]Hand
	index  int
	err    error
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetFrames sets the per-frame detection results. Each entry is the set of
// hands returned for one Detect call; a nil entry means no hand in that frame.
func (m *MockDetector) SetFrames(frames [][]Hand) {
	m.frames = frames
	m.index = 0
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.err = err
}

// Detect returns the next scripted result. Once the script is exhausted it
// keeps returning no hands.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]Hand, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.index >= len(m.frames) {
		return nil, nil
	}
	hands := m.frames[m.index]
	m.index++
	return hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// SteadyHand returns a Hand with every landmark at the given normalized
// position, with perfect visibility. Useful for static-track tests.
func SteadyHand(x, y float64) Hand {
	hand := Hand{
		Handedness: "Right",
		Score:      0.95,
	}
	for i := 0; i < NumLandmarks; i++ {
		hand.Points[i] = Landmark{X: x, Y: y, Visibility: 1.0}
	}
	return hand
}

// OscillatingHand returns a Hand whose landmarks oscillate horizontally
// around (cx, cy) as amplitudeNorm*sin(2*pi*t/period), in normalized image
// coordinates. t is the zero-based frame offset.
func OscillatingHand(t int, amplitudeNorm, period, cx, cy float64) Hand {
	offset := amplitudeNorm * math.Sin(2*math.Pi*float64(t)/period)
	return SteadyHand(cx+offset, cy)
}
