// Package posture turns body keypoints into a 0-100 posture score.
package posture

import "math"

// Keypoint is one detected body landmark in image coordinates.
type Keypoint struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Confidence float64 `json:"confidence"`
}

// Frame is one analyzed camera frame: ear, shoulder and hip keypoints on
// the visible side.
type Frame struct {
	Ear      Keypoint `json:"ear"`
	Shoulder Keypoint `json:"shoulder"`
	Hip      Keypoint `json:"hip"`
}

const (
	idealAngle   = 180.0
	maxDeviation = 30.0
	falloffScale = 3.0

	minConfidence = 0.3
)

// Score computes the posture score for a frame. Frames without confident
// keypoints score zero.
func Score(f Frame) float64 {
	if f.Ear.Confidence < minConfidence || f.Shoulder.Confidence < minConfidence || f.Hip.Confidence < minConfidence {
		return 0
	}
	angle := neckAngle(f)
	return round2(normalizeScore(angle, idealAngle, maxDeviation))
}

// Feedback maps a score to the short guidance line shown live and recorded
// in history.
func Feedback(score float64) string {
	if score > 70 {
		return "Posture is upright."
	}
	return "Adjust your posture."
}

// neckAngle is the ear-shoulder-hip angle in degrees; a straight back
// approaches 180.
func neckAngle(f Frame) float64 {
	v1x, v1y := f.Ear.X-f.Shoulder.X, f.Ear.Y-f.Shoulder.Y
	v2x, v2y := f.Hip.X-f.Shoulder.X, f.Hip.Y-f.Shoulder.Y

	dot := v1x*v2x + v1y*v2y
	mag := math.Hypot(v1x, v1y) * math.Hypot(v2x, v2y)
	if mag == 0 {
		return 0
	}
	cos := dot / mag
	if cos > 1 {
		cos = 1
	} else if cos < -1 {
		cos = -1
	}
	return math.Acos(cos) * 180 / math.Pi
}

// normalizeScore maps angular deviation to 0-100: linear decay to 50 inside
// the tolerated band, then a steeper exponential falloff beyond it.
func normalizeScore(angle, ideal, maxDev float64) float64 {
	deviation := math.Abs(angle - ideal)
	if deviation <= maxDev {
		return clamp(100-50*(deviation/maxDev), 0, 100)
	}
	frac := (deviation - maxDev) / (maxDev * falloffScale)
	if frac > 1 {
		frac = 1
	}
	return clamp(50*(1-frac), 0, 100)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
