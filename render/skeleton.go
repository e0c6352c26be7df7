package render

import (
	"image"

	"github.com/swdee/go-openpose"
	"gocv.io/x/gocv"
)

// Style defines the sizes used when drawing skeletons
type Style struct {
	LineThickness int
	CircleRadius  int
}

// DefaultStyle returns the default skeleton drawing style
func DefaultStyle() Style {
	return Style{
		LineThickness: 2,
		CircleRadius:  4,
	}
}

// Skeletons renders the limbs and joints of all skeletons onto the image.
// Skeleton coordinates are in heatmap space and are scaled to the image size
func Skeletons(img *gocv.Mat, skeletons []*openpose.Skeleton, style Style) {

	sx := float64(img.Cols()) / float64(openpose.HeatmapWidth)
	sy := float64(img.Rows()) / float64(openpose.HeatmapHeight)

	for _, s := range skeletons {
		conns := s.Connections()

		// draw limb lines first so joints are painted over them
		for _, c := range conns {
			gocv.Line(img, scalePoint(c.Point1, sx, sy), scalePoint(c.Point2, sx, sy),
				LimbColor(c.Limb), style.LineThickness)
		}

		for _, c := range conns {
			from, to := c.Limb.Joints()

			gocv.Circle(img, scalePoint(c.Point1, sx, sy), style.CircleRadius,
				JointColor(from), -1)
			gocv.Circle(img, scalePoint(c.Point2, sx, sy), style.CircleRadius,
				JointColor(to), -1)
		}
	}
}

// Candidates renders every joint candidate found as a hollow circle in its
// joint color
func Candidates(img *gocv.Mat, candidates [openpose.JointCount][]openpose.JointCandidate,
	style Style) {

	sx := float64(img.Cols()) / float64(openpose.HeatmapWidth)
	sy := float64(img.Rows()) / float64(openpose.HeatmapHeight)

	for j, cands := range candidates {
		for _, c := range cands {
			gocv.Circle(img, scalePoint(c.Point(), sx, sy), style.CircleRadius,
				JointColor(openpose.JointType(j)), 1)
		}
	}
}

// scalePoint converts a heatmap coordinate to the centre of its cell in
// image space
func scalePoint(p openpose.Point, sx, sy float64) image.Point {
	return image.Pt(
		int((float64(p.Col)+0.5)*sx),
		int((float64(p.Row)+0.5)*sy),
	)
}
