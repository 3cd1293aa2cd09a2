// Package track assembles per-landmark time series of physical positions from
// per-frame hand detections.
package track

import (
	"sort"

	"github.com/ayusman/tremor/internal/detector"
	"github.com/ayusman/tremor/internal/geometry"
)

// FrameObservation is the detection result for one frame. Hand is nil when no
// hand was found in the frame.
type FrameObservation struct {
	Frame int
	Hand  *detector.Hand
}

// Sample is one slot of a landmark track. Missing marks frames where the hand
// was not detected; such slots are kept explicitly so downstream statistics
// can account for detection gaps.
type Sample struct {
	Frame   int
	Point   geometry.PhysicalPoint
	Missing bool
}

// Track is the ordered time series of one landmark's physical positions over
// the analyzed frame range. It always has exactly endFrame-startFrame+1
// samples, in ascending frame order. Read-only after Build.
type Track struct {
	LandmarkID int
	Samples    []Sample

	// Scale is the pixel scale the positions were converted at, carried so
	// amplitude extraction can bound pixel quantization error.
	Scale geometry.PixelScale
}

// ValidSamples returns the samples where the landmark was detected,
// preserving order.
func (t *Track) ValidSamples() []Sample {
	valid := make([]Sample, 0, len(t.Samples))
	for _, s := range t.Samples {
		if !s.Missing {
			valid = append(valid, s)
		}
	}
	return valid
}

// MissingFraction returns the proportion of the track's frames where
// detection failed.
func (t *Track) MissingFraction() float64 {
	if len(t.Samples) == 0 {
		return 0
	}
	missing := 0
	for _, s := range t.Samples {
		if s.Missing {
			missing++
		}
	}
	return float64(missing) / float64(len(t.Samples))
}

// Build assembles one Track per selected landmark id from the frame
// observations, converting each detected position to millimetres. Frames in
// [startFrame, endFrame] without an observation, or whose observation has no
// hand, become missing slots. No interpolation is performed. The result is
// deterministic regardless of observation order.
func Build(observations []FrameObservation, landmarkIDs []int, conv *geometry.Converter,
	startFrame, endFrame, imageWidth, imageHeight int) map[int]*Track {

	byFrame := make(map[int]*detector.Hand, len(observations))
	for i := range observations {
		byFrame[observations[i].Frame] = observations[i].Hand
	}

	ids := make([]int, len(landmarkIDs))
	copy(ids, landmarkIDs)
	sort.Ints(ids)

	scale := conv.PixelScale(imageWidth)

	tracks := make(map[int]*Track, len(ids))
	for _, id := range ids {
		tr := &Track{
			LandmarkID: id,
			Samples:    make([]Sample, 0, endFrame-startFrame+1),
			Scale:      scale,
		}

		for frame := startFrame; frame <= endFrame; frame++ {
			hand, ok := byFrame[frame]
			if !ok || hand == nil {
				tr.Samples = append(tr.Samples, Sample{Frame: frame, Missing: true})
				continue
			}
			point := conv.Convert(hand.Points[id], imageWidth, imageHeight)
			tr.Samples = append(tr.Samples, Sample{Frame: frame, Point: point})
		}

		tracks[id] = tr
	}

	return tracks
}
