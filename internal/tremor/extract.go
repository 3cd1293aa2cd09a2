// Package tremor isolates the oscillatory tremor component of landmark tracks
// and measures its displacement amplitude with an error bound.
package tremor

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/ayusman/tremor/internal/track"
)

// ErrInsufficientData is returned when a track has too few detected samples
// to bound an amplitude.
var ErrInsufficientData = errors.New("not enough valid samples to measure amplitude")

// MinValidSamples is the minimum number of detected samples a track needs;
// a single point cannot bound an oscillation.
const MinValidSamples = 2

// detrendMinR2 gates drift removal. A fitted line is only subtracted when it
// explains at least this share of the positional variance; below that the
// apparent slope is an artifact of fitting a line through an oscillation, and
// subtracting it would distort the measured amplitude.
const detrendMinR2 = 0.25

// Type tags which tremor protocol the video recorded. The extraction math is
// identical for both; the tag is carried through to reporting.
type Type string

const (
	// Resting is tremor measured with the hand at rest, unsupported.
	Resting Type = "resting"
	// Postural is tremor measured with the hand held against gravity.
	Postural Type = "postural"
)

// ParseType validates a tremor type tag.
func ParseType(s string) (Type, error) {
	switch Type(s) {
	case Resting, Postural:
		return Type(s), nil
	}
	return "", fmt.Errorf("unknown tremor type %q (want resting or postural)", s)
}

// Measurement is the per-landmark amplitude estimate.
type Measurement struct {
	LandmarkID      int
	AmplitudeMm     float64
	ErrorMm         float64
	ValidSamples    int
	MissingFraction float64
	MeanVisibility  float64
}

// Extract measures the tremor amplitude of one landmark track.
//
// The track is compacted to its detected samples, each axis is detrended to
// remove voluntary drift, and the amplitude is half the peak-to-peak range of
// the dominant axis (the axis with the larger variance). The error bound
// combines the depth measurement's contribution through the pixel scale, one
// pixel of quantization (the landmark may sit anywhere within a pixel at both
// extremes), the missing-frame fraction and the detection visibility of the
// samples used.
func Extract(tr *track.Track) (Measurement, error) {
	valid := tr.ValidSamples()
	if len(valid) < MinValidSamples {
		return Measurement{}, fmt.Errorf("landmark %d: %w (%d of %d frames)",
			tr.LandmarkID, ErrInsufficientData, len(valid), len(tr.Samples))
	}

	frames := make([]float64, len(valid))
	xs := make([]float64, len(valid))
	ys := make([]float64, len(valid))
	vis := make([]float64, len(valid))
	for i, s := range valid {
		frames[i] = float64(s.Frame)
		xs[i] = s.Point.XMm
		ys[i] = s.Point.YMm
		vis[i] = s.Point.Visibility
	}

	dx := detrend(frames, xs)
	dy := detrend(frames, ys)

	// Dominant oscillation axis carries the amplitude.
	axis := dx
	if stat.Variance(dy, nil) > stat.Variance(dx, nil) {
		axis = dy
	}
	amplitude := (floats.Max(axis) - floats.Min(axis)) / 2

	missing := tr.MissingFraction()
	meanVis := stat.Mean(vis, nil)

	// Depth error scales the amplitude through the pixel size; quantization
	// contributes half a pixel at each of the two extremes.
	bound := amplitude*(tr.Scale.ErrMm/tr.Scale.SizeMm) + tr.Scale.SizeMm
	bound *= 1 + missing
	if meanVis > 0 {
		bound /= meanVis
	}

	return Measurement{
		LandmarkID:      tr.LandmarkID,
		AmplitudeMm:     amplitude,
		ErrorMm:         bound,
		ValidSamples:    len(valid),
		MissingFraction: missing,
		MeanVisibility:  meanVis,
	}, nil
}

// detrend removes net positional drift from one axis, isolating the
// oscillatory component. It subtracts a least-squares line when the line
// genuinely explains the motion, and just the mean otherwise.
func detrend(frames, vals []float64) []float64 {
	out := make([]float64, len(vals))

	mean := stat.Mean(vals, nil)
	if stat.Variance(vals, nil) < 1e-12 {
		// Perfectly static axis.
		for i, v := range vals {
			out[i] = v - mean
		}
		return out
	}

	alpha, beta := stat.LinearRegression(frames, vals, nil, false)
	if stat.RSquared(frames, vals, nil, alpha, beta) < detrendMinR2 {
		alpha, beta = mean, 0
	}

	for i, v := range vals {
		out[i] = v - (alpha + beta*frames[i])
	}
	return out
}
