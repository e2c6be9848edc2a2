package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestViewport_ZoomClampedToRange(t *testing.T) {
	v := NewViewport(0, 0)
	for i := 0; i < 20; i++ {
		v = v.ZoomIn()
	}
	assert.Equal(t, maxZoom, v.Zoom)

	for i := 0; i < 40; i++ {
		v = v.ZoomOut()
	}
	assert.Equal(t, minZoom, v.Zoom)
}

func TestViewport_ZoomInThenOutReturnsNear1(t *testing.T) {
	v := NewViewport(0, 0).ZoomIn().ZoomOut()
	assert.InDelta(t, 1.0, v.Zoom, 1e-9)
}

func TestViewport_PanMovesCenter(t *testing.T) {
	v := NewViewport(100, 100)
	right := v.PanRight()
	assert.Greater(t, right.CX, v.CX)

	down := v.PanDown()
	assert.Greater(t, down.CY, v.CY)
}

func TestViewport_ZoomAtAnchorsCursorPoint(t *testing.T) {
	v := NewViewport(0, 0)
	zoomed := v.ZoomAt(50, 50, zoomFactor)
	assert.NotEqual(t, v.Zoom, zoomed.Zoom)
	// the cursor point itself should map to the same screen position before
	// and after: (cursor - center) * zoom stays constant.
	before := (50 - v.CX) * v.Zoom
	after := (50 - zoomed.CX) * zoomed.Zoom
	assert.InDelta(t, before, after, 1e-9)
}

func TestResetToFit_PicksSmallerAxisZoom(t *testing.T) {
	v := ResetToFit(400, 100, 200, 200, 10, 20)
	assert.InDelta(t, 0.5, v.Zoom, 1e-9)
	assert.Equal(t, 10.0, v.CX)
	assert.Equal(t, 20.0, v.CY)
}

func TestResetToFit_ClampsExtremeZoom(t *testing.T) {
	v := ResetToFit(10, 10, 1000, 1000, 0, 0)
	assert.Equal(t, maxZoom, v.Zoom)
}
