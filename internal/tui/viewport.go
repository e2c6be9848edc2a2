package tui

const (
	minZoom = 0.25
	maxZoom = 4.0

	zoomFactor = 1.2

	// panStep is the fixed increment H/J/K/L move the viewport center by,
	// in layout units, before the zoom factor is applied.
	panStep = 40.0
)

// Viewport is the camera over the laid-out canvas: a center point and a
// zoom multiplier.
type Viewport struct {
	CX, CY float64
	Zoom   float64
}

// NewViewport returns a viewport centered on (cx, cy) at 1.0 zoom.
func NewViewport(cx, cy float64) Viewport {
	return Viewport{CX: cx, CY: cy, Zoom: 1.0}
}

// PanLeft/PanRight/PanUp/PanDown move the viewport by a fixed increment,
// scaled inversely by zoom so panning feels uniform at any zoom level.
func (v Viewport) PanLeft() Viewport  { v.CX -= panStep / v.Zoom; return v }
func (v Viewport) PanRight() Viewport { v.CX += panStep / v.Zoom; return v }
func (v Viewport) PanUp() Viewport    { v.CY -= panStep / v.Zoom; return v }
func (v Viewport) PanDown() Viewport  { v.CY += panStep / v.Zoom; return v }

// ZoomIn multiplies zoom by 1.2, clamped to the spec's [0.25, 4.0] range.
func (v Viewport) ZoomIn() Viewport {
	v.Zoom = clampZoom(v.Zoom * zoomFactor)
	return v
}

// ZoomOut divides zoom by 1.2, clamped to [0.25, 4.0].
func (v Viewport) ZoomOut() Viewport {
	v.Zoom = clampZoom(v.Zoom / zoomFactor)
	return v
}

// ZoomAt multiplies zoom by factor and re-anchors the viewport so the point
// under the cursor (in canvas coordinates) stays fixed on screen, the way a
// mouse-wheel zoom anchors on the pointer.
func (v Viewport) ZoomAt(cursorX, cursorY, factor float64) Viewport {
	newZoom := clampZoom(v.Zoom * factor)
	if newZoom == v.Zoom {
		return v
	}
	ratio := newZoom / v.Zoom
	v.CX = cursorX + (v.CX-cursorX)/ratio
	v.CY = cursorY + (v.CY-cursorY)/ratio
	v.Zoom = newZoom
	return v
}

func clampZoom(z float64) float64 {
	if z < minZoom {
		return minZoom
	}
	if z > maxZoom {
		return maxZoom
	}
	return z
}

// ResetToFit centers the viewport on focusX/focusY at a zoom level that
// fits bounds within a screenWidth x screenHeight canvas, the way `r`
// resets to fit-to-screen centered on focus.
func ResetToFit(boundsWidth, boundsHeight, screenWidth, screenHeight, focusX, focusY float64) Viewport {
	zoom := 1.0
	if boundsWidth > 0 && boundsHeight > 0 {
		zoomX := screenWidth / boundsWidth
		zoomY := screenHeight / boundsHeight
		zoom = zoomX
		if zoomY < zoom {
			zoom = zoomY
		}
	}
	return Viewport{CX: focusX, CY: focusY, Zoom: clampZoom(zoom)}
}
