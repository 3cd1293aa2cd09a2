// Package report exports analysis results as CSV and displacement plots.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/ayusman/tremor/internal/session"
)

// WriteCSV writes one row per analyzed video with its aggregate tremor figure.
func WriteCSV(w io.Writer, reports []*session.Report) error {
	cw := csv.NewWriter(w)

	header := []string{
		"video_path", "depth_cm", "tremor_type", "amplitude_mm", "error_mm",
		"missing_fraction", "start_frame", "end_frame",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, r := range reports {
		row := []string{
			r.VideoPath,
			formatFloat(r.DepthCm),
			string(r.TremorType),
			formatFloat(r.AmplitudeMm),
			formatFloat(r.ErrorMm),
			formatFloat(r.MissingFraction),
			strconv.Itoa(r.StartFrame),
			strconv.Itoa(r.EndFrame),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row for %s: %w", r.VideoPath, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteLandmarkCSV writes one row per landmark measurement across the given
// reports, backing the aggregate figures.
func WriteLandmarkCSV(w io.Writer, reports []*session.Report) error {
	cw := csv.NewWriter(w)

	header := []string{
		"video_path", "landmark_index", "amplitude_mm", "error_mm",
		"valid_samples", "missing_fraction", "mean_visibility",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, r := range reports {
		for _, m := range r.PerLandmark {
			row := []string{
				r.VideoPath,
				strconv.Itoa(m.LandmarkID),
				formatFloat(m.AmplitudeMm),
				formatFloat(m.ErrorMm),
				strconv.Itoa(m.ValidSamples),
				formatFloat(m.MissingFraction),
				formatFloat(m.MeanVisibility),
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("write row for %s landmark %d: %w", r.VideoPath, m.LandmarkID, err)
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
