package tremor

import (
	"errors"
	"math"
	"sort"
)

// ErrEmptySubset is returned when aggregation has no landmark measurements to
// combine, either because the configured subset was empty or because every
// landmark was excluded for insufficient data.
var ErrEmptySubset = errors.New("no landmark measurements to aggregate")

// Result is the combined tremor figure for a landmark subset.
type Result struct {
	TremorType      Type
	AmplitudeMm     float64
	ErrorMm         float64
	MissingFraction float64
	PerLandmark     []Measurement
}

// Aggregate combines per-landmark measurements into a single amplitude.
//
// The central amplitude is the mean of the per-landmark amplitudes. Error
// bounds are treated as independent and combined as the root sum of squares
// divided by the subset size (the standard error of the mean); a subset of
// one therefore returns that landmark's measurement unchanged. The missing
// fraction is averaged the same way.
func Aggregate(measurements map[int]Measurement, tremorType Type) (Result, error) {
	if len(measurements) == 0 {
		return Result{}, ErrEmptySubset
	}

	perLandmark := make([]Measurement, 0, len(measurements))
	for _, m := range measurements {
		perLandmark = append(perLandmark, m)
	}
	sort.Slice(perLandmark, func(i, j int) bool {
		return perLandmark[i].LandmarkID < perLandmark[j].LandmarkID
	})

	n := float64(len(perLandmark))
	var sumAmp, sumSqErr, sumMissing float64
	for _, m := range perLandmark {
		sumAmp += m.AmplitudeMm
		sumSqErr += m.ErrorMm * m.ErrorMm
		sumMissing += m.MissingFraction
	}

	return Result{
		TremorType:      tremorType,
		AmplitudeMm:     sumAmp / n,
		ErrorMm:         math.Sqrt(sumSqErr) / n,
		MissingFraction: sumMissing / n,
		PerLandmark:     perLandmark,
	}, nil
}
