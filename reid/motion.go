package reid

import (
	kalman_filter "github.com/LdDl/kalman-filter"
	"github.com/pkg/errors"
)

// motionModel smooths and predicts an identity's bounding box with an 8-D
// Kalman filter. State vector: [cx, cy, w, h, vx, vy, vw, vh].
type motionModel struct {
	filter    *kalman_filter.KalmanBBox
	predicted Rectangle
}

// newMotionModel creates a motion model initialized at the given bounding box
// with the specified time step.
func newMotionModel(bbox Rectangle, dt float64) *motionModel {
	centerX := bbox.X + bbox.Width/2.0
	centerY := bbox.Y + bbox.Height/2.0

	// Kalman filter props
	uCx := 1.0
	uCy := 1.0
	uW := 0.0
	uH := 0.0
	stdDevA := 2.0
	stdDevMCx := 0.1
	stdDevMCy := 0.1
	stdDevMW := 0.1
	stdDevMH := 0.1
	kf := kalman_filter.NewKalmanBBox(
		dt, uCx, uCy, uW, uH,
		stdDevA, stdDevMCx, stdDevMCy, stdDevMW, stdDevMH,
		kalman_filter.WithStateBBox(centerX, centerY, bbox.Width, bbox.Height),
	)
	return &motionModel{
		filter:    kf,
		predicted: bbox,
	}
}

// Predict executes the Kalman prediction step and caches the predicted box.
func (m *motionModel) Predict() {
	m.filter.Predict()
	cx, cy, w, h := m.filter.GetState()
	m.predicted = Rectangle{
		X:      cx - w/2.0,
		Y:      cy - h/2.0,
		Width:  w,
		Height: h,
	}
}

// Correct feeds an observed bounding box into the Kalman update step and
// returns the smoothed box.
func (m *motionModel) Correct(bbox Rectangle) (Rectangle, error) {
	cx := bbox.X + bbox.Width/2.0
	cy := bbox.Y + bbox.Height/2.0
	err := m.filter.Update(cx, cy, bbox.Width, bbox.Height)
	if err != nil {
		return bbox, errors.Wrap(err, "Can't update motion model")
	}
	sx, sy, sw, sh := m.filter.GetState()
	return Rectangle{
		X:      sx - sw/2.0,
		Y:      sy - sh/2.0,
		Width:  sw,
		Height: sh,
	}, nil
}

// PredictedBBox returns the last predicted bounding box.
func (m *motionModel) PredictedBBox() Rectangle {
	return m.predicted
}
