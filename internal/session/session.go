// Package session orchestrates a single analysis pass over one video: frames
// are read and detected in order, landmark tracks are assembled and measured,
// and the per-landmark measurements are aggregated into the final result.
package session

import (
	"errors"
	"fmt"
	"log"

	"github.com/cheggaaa/pb/v3"

	"github.com/ayusman/tremor/internal/config"
	"github.com/ayusman/tremor/internal/detector"
	"github.com/ayusman/tremor/internal/geometry"
	"github.com/ayusman/tremor/internal/track"
	"github.com/ayusman/tremor/internal/tremor"
	"github.com/ayusman/tremor/internal/video"
)

// Params identify one measurement run. Batch and interactive invocations both
// reduce to the same Params; the controller does not care how they were
// obtained.
type Params struct {
	VideoPath  string
	DepthCm    float64
	TremorType tremor.Type

	// LandmarkIDs overrides the configured landmark subset when non-empty.
	LandmarkIDs []int
}

// Report is the final result record handed to persistence and plotting.
type Report struct {
	tremor.Result

	VideoPath  string
	DepthCm    float64
	StartFrame int
	EndFrame   int // effective end: the configured end or the last frame the video had

	// Tracks are the measured landmark tracks, kept for plotting.
	Tracks map[int]*track.Track
}

// Controller runs the measurement pipeline with a fixed configuration.
type Controller struct {
	cfg config.Config

	// Progress draws a frame progress bar on stderr during the run.
	Progress bool
}

// New creates a Controller for the given configuration.
func New(cfg config.Config) *Controller {
	return &Controller{cfg: cfg}
}

// Run performs a single synchronous pass over the video: one frame is read
// and detected before the next is requested. The source is opened here and
// released on every exit path. Failing to open the video is fatal and
// produces no partial result; running out of frames before the configured
// end is not an error. Landmarks whose tracks have too few detections are
// excluded from aggregation; if that empties the subset the run fails.
func (c *Controller) Run(src video.Source, det detector.Detector, p Params) (*Report, error) {
	if err := c.cfg.Validate(); err != nil {
		return nil, err
	}

	conv, err := geometry.NewConverter(geometry.OpticsFromConfig(c.cfg), p.DepthCm)
	if err != nil {
		return nil, err
	}

	if err := src.Open(); err != nil {
		return nil, fmt.Errorf("open %s: %w", p.VideoPath, err)
	}
	defer src.Close()

	observations, width, height, lastFrame, err := c.observe(src, det)
	if err != nil {
		return nil, err
	}

	endFrame := c.cfg.EndFrame
	if lastFrame < endFrame {
		endFrame = lastFrame
	}
	if endFrame < c.cfg.StartFrame {
		return nil, fmt.Errorf("%s: video ended before frame %d: %w",
			p.VideoPath, c.cfg.StartFrame, tremor.ErrEmptySubset)
	}

	ids := p.LandmarkIDs
	if len(ids) == 0 {
		ids = c.cfg.Landmarks()
	}

	tracks := track.Build(observations, ids, conv, c.cfg.StartFrame, endFrame, width, height)

	measurements := make(map[int]tremor.Measurement, len(tracks))
	for id, tr := range tracks {
		m, err := tremor.Extract(tr)
		if err != nil {
			if errors.Is(err, tremor.ErrInsufficientData) {
				log.Printf("Excluding landmark %d: %v", id, err)
				continue
			}
			return nil, err
		}
		measurements[id] = m
	}

	result, err := tremor.Aggregate(measurements, p.TremorType)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.VideoPath, err)
	}

	return &Report{
		Result:     result,
		VideoPath:  p.VideoPath,
		DepthCm:    p.DepthCm,
		StartFrame: c.cfg.StartFrame,
		EndFrame:   endFrame,
		Tracks:     tracks,
	}, nil
}

// observe reads frames sequentially up to the configured end frame, running
// detection on frames inside the analysis range. Per-frame detection misses
// and failures become nil-hand observations; only the most confident hand of
// a frame is kept. Returns the observations, the frame pixel dimensions and
// the last frame number actually read.
func (c *Controller) observe(src video.Source, det detector.Detector) ([]track.FrameObservation, int, int, int, error) {
	var bar *pb.ProgressBar
	if c.Progress {
		bar = pb.StartNew(c.cfg.EndFrame)
		defer bar.Finish()
	}

	var observations []track.FrameObservation
	width, height := 0, 0
	lastFrame := 0

	for frame := 1; frame <= c.cfg.EndFrame; frame++ {
		mat, err := src.ReadFrame()
		if err != nil {
			if !errors.Is(err, video.ErrExhausted) {
				log.Printf("Frame %d: read failed, stopping early: %v", frame, err)
			}
			break
		}

		lastFrame = frame
		if bar != nil {
			bar.Increment()
		}

		if width == 0 {
			width, height = mat.Cols(), mat.Rows()
		}

		if frame < c.cfg.StartFrame {
			mat.Close()
			continue
		}

		hands, err := det.Detect(mat)
		mat.Close()
		if err != nil {
			// A failed detection is a gap, not a fatal condition.
			log.Printf("Frame %d: detection failed: %v", frame, err)
			observations = append(observations, track.FrameObservation{Frame: frame})
			continue
		}

		observations = append(observations, track.FrameObservation{
			Frame: frame,
			Hand:  detector.Best(hands),
		})
	}

	return observations, width, height, lastFrame, nil
}
