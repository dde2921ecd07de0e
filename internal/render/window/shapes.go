package window

import (
	"image/color"

	"github.com/zeusync/trackrun/internal/core/scene"
)

var (
	colorFocus    = color.RGBA{R: 0x3c, G: 0xd0, B: 0x70, A: 0xff}
	colorObstacle = color.RGBA{R: 0xe0, G: 0x40, B: 0x40, A: 0xff}
	colorTrack    = color.RGBA{R: 0x90, G: 0x90, B: 0x90, A: 0xff}
	colorDecor    = color.RGBA{R: 0xe0, G: 0xc0, B: 0x40, A: 0xff}
)

// world-unit edge length drawn for one unit of scale
func extent(k scene.Kind) float64 {
	switch k {
	case scene.KindFocus, scene.KindObstacle:
		return 0.2
	default:
		return 0.5
	}
}

// Rect is a filled square centred on a projected object.
type Rect struct {
	X, Y, Size float64
	Depth      float64
	Color      color.RGBA
}

// Line is one projected edge of a track segment.
type Line struct {
	X0, Y0, X1, Y1 float64
}

// Shapes projects a snapshot onto a width x height surface. Rects are
// ordered far to near.
func Shapes(snap scene.Snapshot, width, height int) ([]Line, []Rect) {
	cam := snap.Camera
	var lines []Line
	var rects []Rect
	for _, o := range snap.Objects {
		if o.Kind == scene.KindTrackSegment {
			lines = append(lines, segmentEdges(cam, o, width, height)...)
			continue
		}
		p, ok := cam.Project(o.Position, width, height)
		if !ok {
			continue
		}
		size := p.PixelsPerUnit * extent(o.Kind) * o.Scale.X
		if size < 1 {
			size = 1
		}
		rects = append(rects, Rect{X: p.X, Y: p.Y, Size: size, Depth: p.Depth, Color: kindColor(o.Kind)})
	}
	// insertion sort: object counts are small
	for i := 1; i < len(rects); i++ {
		for j := i; j > 0 && rects[j].Depth > rects[j-1].Depth; j-- {
			rects[j], rects[j-1] = rects[j-1], rects[j]
		}
	}
	return lines, rects
}

func kindColor(k scene.Kind) color.RGBA {
	switch k {
	case scene.KindFocus:
		return colorFocus
	case scene.KindObstacle:
		return colorObstacle
	case scene.KindTrackSegment:
		return colorTrack
	default:
		return colorDecor
	}
}

func segmentEdges(cam scene.Camera, o scene.ObjectState, w, h int) []Line {
	hw, hl := o.Scale.X/2, o.Scale.Z/2
	corners := [4]scene.Vec3{
		o.Position.Add(scene.V(-hw, 0, -hl)),
		o.Position.Add(scene.V(hw, 0, -hl)),
		o.Position.Add(scene.V(hw, 0, hl)),
		o.Position.Add(scene.V(-hw, 0, hl)),
	}
	var out []Line
	for i := range corners {
		a, okA := cam.Project(corners[i], w, h)
		b, okB := cam.Project(corners[(i+1)%4], w, h)
		if okA && okB {
			out = append(out, Line{X0: a.X, Y0: a.Y, X1: b.X, Y1: b.Y})
		}
	}
	return out
}
