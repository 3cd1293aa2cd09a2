// Package geometry converts normalized landmark coordinates into physical
// millimetre displacements in the camera's object plane, using the pinhole
// camera model and the lens's 35mm-equivalent focal length.
package geometry

import (
	"fmt"
	"math"

	"github.com/ayusman/tremor/internal/config"
	"github.com/ayusman/tremor/internal/detector"
)

// fullFrameDiagonalMm is the diagonal of a full-frame 35mm sensor. Dividing it
// by the lens crop factor recovers the physical sensor diagonal.
const fullFrameDiagonalMm = 43.27

// PhysicalPoint is a landmark position expressed in millimetres in the object
// plane at the measured depth. Offsets are relative to the top-left of the
// frame; only displacements between points are meaningful.
type PhysicalPoint struct {
	XMm        float64
	YMm        float64
	Visibility float64
}

// PixelScale is the physical size of one pixel at the measured depth, with
// the error contributed by the depth measurement.
type PixelScale struct {
	SizeMm float64
	ErrMm  float64
}

// Optics describes the recording camera.
type Optics struct {
	// FocalLengthMm is the physical focal length of the lens.
	FocalLengthMm float64
	// FocalLength35Mm is the 35mm-equivalent focal length.
	FocalLength35Mm float64
	// NativeAspect is the sensor's native aspect ratio.
	NativeAspect config.AspectRatio
	// VideoAspect is the aspect ratio the video was recorded at.
	VideoAspect config.AspectRatio
}

// OpticsFromConfig extracts the camera profile from the analysis config.
func OpticsFromConfig(cfg config.Config) Optics {
	return Optics{
		FocalLengthMm:   cfg.CameraFocalLength,
		FocalLength35Mm: cfg.CameraFocalLengthStd,
		NativeAspect:    cfg.CameraNativeAspect,
		VideoAspect:     cfg.CameraVideoAspect,
	}
}

// Converter maps normalized landmark positions to physical millimetres for a
// fixed camera and subject depth. Conversion itself is side-effect-free.
type Converter struct {
	optics  Optics
	depthCm float64

	// sensorWidthMm is the effective sensor width after correcting for the
	// recorded aspect ratio cropping the native sensor.
	sensorWidthMm float64
}

// NewConverter builds a Converter for the given camera and subject depth.
// Fails if the depth or either focal length is not positive.
func NewConverter(optics Optics, depthCm float64) (*Converter, error) {
	if depthCm <= 0 {
		return nil, fmt.Errorf("geometry: depth must be > 0, got %g cm", depthCm)
	}
	if optics.FocalLengthMm <= 0 || optics.FocalLength35Mm <= 0 {
		return nil, fmt.Errorf("geometry: focal lengths must be > 0, got %g/%g mm",
			optics.FocalLengthMm, optics.FocalLength35Mm)
	}

	sensorW, _ := SensorSize(optics.FocalLengthMm, optics.FocalLength35Mm, optics.NativeAspect)
	cropped := cropSensorWidth(sensorW, optics.NativeAspect, optics.VideoAspect)

	return &Converter{
		optics:        optics,
		depthCm:       depthCm,
		sensorWidthMm: cropped,
	}, nil
}

// DepthCm returns the subject depth the converter was built for.
func (c *Converter) DepthCm() float64 {
	return c.depthCm
}

// SensorSize derives the physical width and height of a camera sensor (mm)
// from its focal length, 35mm-equivalent focal length and aspect ratio.
func SensorSize(focalMm, focal35Mm float64, aspect config.AspectRatio) (width, height float64) {
	cropFactor := focal35Mm / focalMm
	diagonal := fullFrameDiagonalMm / cropFactor
	angle := math.Atan(float64(aspect.H) / float64(aspect.W))
	return math.Cos(angle) * diagonal, math.Sin(angle) * diagonal
}

// cropSensorWidth returns the utilised sensor width when video is recorded at
// a non-native aspect ratio, which crops the sensor horizontally.
func cropSensorWidth(sensorWidthMm float64, native, video config.AspectRatio) float64 {
	cropRatio := (float64(native.H) / float64(native.W)) /
		(float64(video.H) / float64(video.W))
	return sensorWidthMm * cropRatio
}

// PixelScale returns the physical size of one pixel at the converter's depth
// for a frame of the given width, by similar triangles: the visible object
// plane spans depth*sensorWidth/focalLength. Pixels are square, so the same
// scale applies to both axes.
func (c *Converter) PixelScale(imageWidth int) PixelScale {
	depthMm := c.depthCm * 10
	viewWidthMm := depthMm * c.sensorWidthMm / c.optics.FocalLengthMm

	depthErrMm := DepthErrorCm(c.depthCm) * 10
	viewWidthErrMm := depthErrMm * c.sensorWidthMm / c.optics.FocalLengthMm

	return PixelScale{
		SizeMm: viewWidthMm / float64(imageWidth),
		ErrMm:  viewWidthErrMm / float64(imageWidth),
	}
}

// Convert maps a landmark's normalized position to millimetres in the object
// plane of a frame with the given pixel dimensions.
func (c *Converter) Convert(l detector.Landmark, imageWidth, imageHeight int) PhysicalPoint {
	scale := c.PixelScale(imageWidth)
	return PhysicalPoint{
		XMm:        l.X * float64(imageWidth) * scale.SizeMm,
		YMm:        l.Y * float64(imageHeight) * scale.SizeMm,
		Visibility: l.Visibility,
	}
}

// DepthErrorCm returns the absolute error of a depth value reported by a
// TrueDepth sensor, in cm. The bands are observed values from calibration
// against objects at known distances.
func DepthErrorCm(depthCm float64) float64 {
	switch {
	case depthCm <= 45:
		return 0.115470054
	case depthCm <= 55:
		return 0.081649658
	case depthCm <= 65:
		return 0.141421356
	case depthCm <= 75:
		return 0.203442594
	case depthCm <= 85:
		return 0.324893145
	case depthCm <= 95:
		return 0.37155828
	default:
		return 0.37859389
	}
}
