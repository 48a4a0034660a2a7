package section

import "github.com/sectseek/sectseek/internal/geom"

// Locate returns the group whose bounds have the strictly largest positive
// intersection-over-union with target, restricted to groups on pageNumber.
// The boolean result is false when no group overlaps the target at all.
func Locate(groups []Group, pageNumber int, target geom.Rect) (Group, bool) {
	var best Group
	bestIoU := 0.0
	found := false

	for _, g := range groups {
		if g.PageNumber != pageNumber {
			continue
		}
		iou := g.Bounds.IoU(target)
		if iou > bestIoU {
			best = g
			bestIoU = iou
			found = true
		}
	}
	return best, found
}
