package reid

import (
	"image"
	"testing"
)

func TestClampTo(t *testing.T) {
	bounds := image.Rect(0, 0, 100, 100)

	inside := NewRect(10, 10, 20, 20).ClampTo(bounds)
	if inside != NewRect(10, 10, 20, 20) {
		t.Errorf("box inside the frame must be unchanged, got %v", inside)
	}

	overlapping := NewRect(-10, 90, 30, 30).ClampTo(bounds)
	if overlapping != NewRect(0, 90, 20, 10) {
		t.Errorf("expected clamped box {0 90 20 10}, got %v", overlapping)
	}

	outside := NewRect(200, 200, 50, 50).ClampTo(bounds)
	if !outside.Empty() {
		t.Errorf("box outside the frame must clamp to empty, got %v", outside)
	}
}

func TestEmpty(t *testing.T) {
	if NewRect(0, 0, 10, 10).Empty() {
		t.Error("positive-area box must not be empty")
	}
	if !NewRect(0, 0, 0, 10).Empty() {
		t.Error("zero-width box must be empty")
	}
	if !NewRect(0, 0, 10, -1).Empty() {
		t.Error("negative-height box must be empty")
	}
}

func TestToImageRectRoundTrip(t *testing.T) {
	r := NewRect(5, 10, 20, 40)
	back := NewRectFrom(r.ToImageRect())
	if back != r {
		t.Errorf("expected %v, got %v", r, back)
	}
}

func TestCenter(t *testing.T) {
	c := NewRect(10, 20, 40, 60).Center()
	if c != NewPoint(30, 50) {
		t.Errorf("expected center {30 50}, got %v", c)
	}
}

func TestIoU(t *testing.T) {
	r := NewRect(0, 0, 10, 10)
	if iou := IoU(r, r); iou != 1.0 {
		t.Errorf("IoU of a box with itself must be 1, got %f", iou)
	}
	if iou := IoU(r, NewRect(100, 100, 10, 10)); iou != 0.0 {
		t.Errorf("IoU of disjoint boxes must be 0, got %f", iou)
	}
	half := IoU(NewRect(0, 0, 10, 10), NewRect(5, 0, 10, 10))
	if half <= 0.0 || half >= 1.0 {
		t.Errorf("partial overlap must be strictly between 0 and 1, got %f", half)
	}
}
