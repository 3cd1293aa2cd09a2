package tremor

import (
	"errors"
	"math"
	"testing"

	"github.com/ayusman/tremor/internal/geometry"
	"github.com/ayusman/tremor/internal/track"
)

// testScale is a plausible pixel scale: 0.3mm pixels with a 1% depth error.
var testScale = geometry.PixelScale{SizeMm: 0.3, ErrMm: 0.003}

// sineTrack builds a track whose x-position oscillates as
// amplitudeMm*sin(2*pi*t/period) around 100mm, with y fixed. Frames listed in
// missing are marked as detection gaps.
func sineTrack(id, frames int, amplitudeMm, period, visibility float64, missing map[int]bool) *track.Track {
	tr := &track.Track{LandmarkID: id, Scale: testScale}
	for i := 0; i < frames; i++ {
		if missing[i] {
			tr.Samples = append(tr.Samples, track.Sample{Frame: i + 1, Missing: true})
			continue
		}
		tr.Samples = append(tr.Samples, track.Sample{
			Frame: i + 1,
			Point: geometry.PhysicalPoint{
				XMm:        100 + amplitudeMm*math.Sin(2*math.Pi*float64(i)/period),
				YMm:        50,
				Visibility: visibility,
			},
		})
	}
	return tr
}

func TestExtract_StaticTrackHasZeroAmplitude(t *testing.T) {
	tr := sineTrack(8, 30, 0, 10, 1.0, nil)

	m, err := Extract(tr)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if m.AmplitudeMm != 0 {
		t.Errorf("static track should measure amplitude 0, got %f", m.AmplitudeMm)
	}
	// Minimum bound: one pixel of quantization, nothing else.
	if math.Abs(m.ErrorMm-testScale.SizeMm) > 1e-12 {
		t.Errorf("static track should have the minimum bound %f, got %f", testScale.SizeMm, m.ErrorMm)
	}
}

func TestExtract_SineAmplitude(t *testing.T) {
	// 30 frames of a 5mm oscillation with a 10-frame period, no gaps,
	// perfect visibility: amplitude must come back within 5% of 5mm.
	tr := sineTrack(9, 30, 5, 10, 1.0, nil)

	m, err := Extract(tr)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if math.Abs(m.AmplitudeMm-5) > 0.25 {
		t.Errorf("expected amplitude within 5%% of 5mm, got %f", m.AmplitudeMm)
	}
	if m.MissingFraction != 0 {
		t.Errorf("expected no missing frames, got fraction %f", m.MissingFraction)
	}

	// Near-minimal bound: depth term plus quantization, no gap or
	// visibility widening.
	wantBound := m.AmplitudeMm*(testScale.ErrMm/testScale.SizeMm) + testScale.SizeMm
	if math.Abs(m.ErrorMm-wantBound) > 1e-12 {
		t.Errorf("expected near-minimal bound %f, got %f", wantBound, m.ErrorMm)
	}
}

func TestExtract_SineHittingExactPeaks(t *testing.T) {
	// A 20-frame period samples the peaks exactly (sin = 1 at t=5,25),
	// so the measured amplitude is exact.
	tr := sineTrack(9, 30, 5, 20, 1.0, nil)

	m, err := Extract(tr)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if math.Abs(m.AmplitudeMm-5) > 1e-9 {
		t.Errorf("expected exact 5mm amplitude, got %f", m.AmplitudeMm)
	}
}

func TestExtract_GapsWidenBoundNotAmplitude(t *testing.T) {
	full := sineTrack(9, 30, 5, 10, 1.0, nil)
	gapped := sineTrack(9, 30, 5, 10, 1.0, map[int]bool{9: true, 10: true, 11: true, 12: true, 13: true, 14: true})

	mFull, err := Extract(full)
	if err != nil {
		t.Fatalf("Extract(full) error = %v", err)
	}
	mGap, err := Extract(gapped)
	if err != nil {
		t.Fatalf("Extract(gapped) error = %v", err)
	}

	// The surviving samples still cover the oscillation extremes, so the
	// central estimate is unchanged.
	if math.Abs(mGap.AmplitudeMm-mFull.AmplitudeMm) > 1e-9 {
		t.Errorf("amplitude should be unchanged by the gap: full %f, gapped %f",
			mFull.AmplitudeMm, mGap.AmplitudeMm)
	}
	if mGap.ErrorMm <= mFull.ErrorMm {
		t.Errorf("gaps must strictly widen the bound: full %f, gapped %f",
			mFull.ErrorMm, mGap.ErrorMm)
	}
	if math.Abs(mGap.MissingFraction-0.2) > 1e-12 {
		t.Errorf("expected missing fraction 0.2, got %f", mGap.MissingFraction)
	}
}

func TestExtract_RemovesLinearDrift(t *testing.T) {
	// 1mm/frame of voluntary drift on top of a 3mm oscillation. The drift
	// dominates the raw range; detrending must recover the oscillation.
	tr := &track.Track{LandmarkID: 8, Scale: testScale}
	for i := 0; i < 30; i++ {
		tr.Samples = append(tr.Samples, track.Sample{
			Frame: i + 1,
			Point: geometry.PhysicalPoint{
				XMm:        100 + float64(i) + 3*math.Cos(2*math.Pi*float64(i)/10),
				YMm:        50,
				Visibility: 1,
			},
		})
	}

	m, err := Extract(tr)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	// Raw half peak-to-peak would be ~17mm; detrended should be near 3mm.
	if math.Abs(m.AmplitudeMm-3) > 0.45 {
		t.Errorf("expected drift-free amplitude near 3mm, got %f", m.AmplitudeMm)
	}
}

func TestExtract_DominantAxis(t *testing.T) {
	// Oscillation on y, static x: the y axis must carry the amplitude.
	tr := &track.Track{LandmarkID: 12, Scale: testScale}
	for i := 0; i < 30; i++ {
		tr.Samples = append(tr.Samples, track.Sample{
			Frame: i + 1,
			Point: geometry.PhysicalPoint{
				XMm:        100,
				YMm:        50 + 4*math.Sin(2*math.Pi*float64(i)/20),
				Visibility: 1,
			},
		})
	}

	m, err := Extract(tr)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if math.Abs(m.AmplitudeMm-4) > 0.2 {
		t.Errorf("expected 4mm amplitude from the y axis, got %f", m.AmplitudeMm)
	}
}

func TestExtract_InsufficientData(t *testing.T) {
	// Zero valid samples
	empty := &track.Track{LandmarkID: 4, Scale: testScale}
	for i := 0; i < 10; i++ {
		empty.Samples = append(empty.Samples, track.Sample{Frame: i + 1, Missing: true})
	}

	_, err := Extract(empty)
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData for empty track, got %v", err)
	}

	// Exactly the minimum threshold succeeds, with a bound widened by the
	// missing-fraction penalty.
	missing := map[int]bool{}
	for i := 2; i < 10; i++ {
		missing[i] = true
	}
	sparse := sineTrack(4, 10, 5, 10, 1.0, missing)

	m, err := Extract(sparse)
	if err != nil {
		t.Fatalf("expected two valid samples to succeed, got %v", err)
	}
	if m.ValidSamples != 2 {
		t.Fatalf("expected 2 valid samples, got %d", m.ValidSamples)
	}
	if m.MissingFraction != 0.8 {
		t.Errorf("expected missing fraction 0.8, got %f", m.MissingFraction)
	}

	base := m.AmplitudeMm*(testScale.ErrMm/testScale.SizeMm) + testScale.SizeMm
	if m.ErrorMm <= base {
		t.Errorf("bound %f should be widened above the gap-free bound %f", m.ErrorMm, base)
	}
}

func TestExtract_LowVisibilityWidensBound(t *testing.T) {
	sharp := sineTrack(9, 30, 5, 10, 1.0, nil)
	blurry := sineTrack(9, 30, 5, 10, 0.5, nil)

	mSharp, err := Extract(sharp)
	if err != nil {
		t.Fatalf("Extract(sharp) error = %v", err)
	}
	mBlurry, err := Extract(blurry)
	if err != nil {
		t.Fatalf("Extract(blurry) error = %v", err)
	}

	if mBlurry.ErrorMm <= mSharp.ErrorMm {
		t.Errorf("low visibility must widen the bound: %f vs %f", mBlurry.ErrorMm, mSharp.ErrorMm)
	}
	if math.Abs(mBlurry.ErrorMm-2*mSharp.ErrorMm) > 1e-9 {
		t.Errorf("half the visibility should double the bound, got %f vs %f",
			mBlurry.ErrorMm, mSharp.ErrorMm)
	}
}

func TestParseType(t *testing.T) {
	if _, err := ParseType("resting"); err != nil {
		t.Errorf("resting should parse: %v", err)
	}
	if _, err := ParseType("postural"); err != nil {
		t.Errorf("postural should parse: %v", err)
	}
	if _, err := ParseType("intention"); err == nil {
		t.Error("unknown type should be rejected")
	}
}
