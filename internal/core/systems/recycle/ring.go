package recycle

import "github.com/zeusync/trackrun/internal/core/scene"

// RecycleRing handles the track-segment ring held in reg. The first segment
// in registry order is the front of the ring (closest to exiting) and the
// last is the farthest. Each time the front segment exits it is placed one
// SegmentLength beyond the farthest one and rotated to the back, so exactly
// one segment moves per crossing. It returns the number of crossings.
func RecycleRing(reg *scene.Registry, b scene.Bounds) int {
	segments := reg.OfKind(scene.KindTrackSegment)
	if len(segments) == 0 || b.SegmentLength <= 0 {
		return 0
	}

	crossings := 0
	// bounded so a misconfigured exit threshold cannot spin forever
	for crossings < len(segments) {
		front := segments[0]
		if !Exited(front, b) {
			break
		}
		farthest := segments[len(segments)-1]
		axis := b.TravelAxis
		next := farthest.Position.Get(axis) - b.Direction*b.SegmentLength
		front.Position = front.Position.With(axis, next)

		reg.RotateKind(scene.KindTrackSegment)
		segments = append(segments[1:], front)
		crossings++
	}
	return crossings
}

// LayRing positions segments contiguously starting at start and extending
// against the travel direction. Used at setup.
func LayRing(segments []*scene.Object, b scene.Bounds, start float64) {
	for i, s := range segments {
		s.Position = s.Position.With(b.TravelAxis, start-b.Direction*b.SegmentLength*float64(i))
	}
}
