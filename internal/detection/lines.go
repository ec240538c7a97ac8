package detection

import (
	"fmt"
	"math"
	"sort"

	"github.com/paulmach/orb"

	"github.com/ironsheep/raster-tools-mcp/internal/raster"
)

// Line is a straight run of non-zero cells.
type Line struct {
	Start        Point   `json:"start"`
	End          Point   `json:"end"`
	Length       float64 `json:"length"`
	AngleDegrees float64 `json:"angle_degrees"`
	Thickness    int     `json:"thickness"`
	Votes        int     `json:"votes"`

	// Path joins the centers of Start and End in map coordinates.
	// Nil for unmapped rasters.
	Path orb.LineString `json:"path,omitempty"`
}

// LinesResult contains detected lines
type LinesResult struct {
	Lines []Line `json:"lines"`
	Count int    `json:"count"`
}

const (
	maxLines  = 50
	maxGap    = 2.0
	lineWidth = 2.0
)

// Lines finds straight segments of non-zero cells in one band of r using a
// Hough transform.
//
// Start is the endpoint with the smaller column (smaller row for vertical
// lines), so AngleDegrees lies in (-90, 90]: 0 is a row, 90 a column, and
// positive angles descend to the right. Cells claimed by a stronger line are
// not reported again.
func Lines(r raster.Raster, band, minLength int) (*LinesResult, error) {
	if minLength < 1 {
		return nil, fmt.Errorf("invalid min_length %d: must be positive", minLength)
	}
	set, err := bandMask(r, band)
	if err != nil {
		return nil, err
	}
	rows, columns := r.NumberOfRows(), r.NumberOfColumns()

	const numAngles = 180
	cos := make([]float64, numAngles)
	sin := make([]float64, numAngles)
	for theta := range cos {
		angle := float64(theta) * math.Pi / 180.0
		cos[theta], sin[theta] = math.Cos(angle), math.Sin(angle)
	}

	// Vote in Hough space; x is the column and y the row
	maxDist := int(math.Ceil(math.Hypot(float64(rows), float64(columns)))) + 1
	accumulator := make([][]int, maxDist*2)
	for i := range accumulator {
		accumulator[i] = make([]int, numAngles)
	}
	for y := 0; y < rows; y++ {
		for x := 0; x < columns; x++ {
			if !set[y][x] {
				continue
			}
			for theta := 0; theta < numAngles; theta++ {
				rho := float64(x)*cos[theta] + float64(y)*sin[theta]
				accumulator[int(math.Round(rho))+maxDist][theta]++
			}
		}
	}

	type peak struct {
		rho   int
		theta int
		votes int
	}
	peaks := make([]peak, 0)
	threshold := max(minLength/2, 1)

	for rhoIdx := range accumulator {
		for theta := 0; theta < numAngles; theta++ {
			votes := accumulator[rhoIdx][theta]
			if votes < threshold {
				continue
			}
			isMax := true
			for dr := -2; dr <= 2 && isMax; dr++ {
				for dt := -2; dt <= 2 && isMax; dt++ {
					if dr == 0 && dt == 0 {
						continue
					}
					nr := rhoIdx + dr
					nt := (theta + dt + numAngles) % numAngles
					if nr >= 0 && nr < len(accumulator) && accumulator[nr][nt] > votes {
						isMax = false
					}
				}
			}
			if isMax {
				peaks = append(peaks, peak{rho: rhoIdx - maxDist, theta: theta, votes: votes})
			}
		}
	}

	sort.SliceStable(peaks, func(i, j int) bool {
		return peaks[i].votes > peaks[j].votes
	})

	claimed := make([][]bool, rows)
	for y := range claimed {
		claimed[y] = make([]bool, columns)
	}

	lines := make([]Line, 0)
	for _, pk := range peaks {
		if len(lines) >= maxLines {
			break
		}
		cosA, sinA := cos[pk.theta], sin[pk.theta]

		run, along := longestRun(set, float64(pk.rho), cosA, sinA)
		if len(run) < minLength {
			continue
		}
		taken := 0
		for _, p := range run {
			if claimed[p.Row][p.Column] {
				taken++
			}
		}
		if taken*2 >= len(run) {
			continue
		}

		start, end := lineEnd(run, along, along[0]), lineEnd(run, along, along[len(along)-1])
		if start.Column > end.Column || (start.Column == end.Column && start.Row > end.Row) {
			start, end = end, start
		}
		dx := float64(end.Column - start.Column)
		dy := float64(end.Row - start.Row)
		length := math.Hypot(dx, dy)
		if length < float64(minLength) {
			continue
		}

		for _, p := range run {
			claimed[p.Row][p.Column] = true
		}

		line := Line{
			Start:        start,
			End:          end,
			Length:       math.Round(length*10) / 10,
			AngleDegrees: math.Round(math.Atan2(dy, dx)*180/math.Pi*10) / 10,
			Thickness:    estimateLineThickness(set, start, end),
			Votes:        pk.votes,
		}
		if m := r.Mapper(); m != nil {
			line.Path = orb.LineString{
				m.MapCoordinate(float64(start.Row)+0.5, float64(start.Column)+0.5),
				m.MapCoordinate(float64(end.Row)+0.5, float64(end.Column)+0.5),
			}
		}
		lines = append(lines, line)
	}

	return &LinesResult{
		Lines: lines,
		Count: len(lines),
	}, nil
}

// longestRun returns the set cells within lineWidth of the line
// x*cos + y*sin = rho, ordered along the line, keeping only the longest
// stretch without a gap wider than maxGap. The second result holds each
// cell's position along the line.
func longestRun(set [][]bool, rho, cosA, sinA float64) ([]Point, []float64) {
	type onLine struct {
		p Point
		t float64
	}
	var pts []onLine
	for y := range set {
		for x := range set[y] {
			if !set[y][x] {
				continue
			}
			if math.Abs(float64(x)*cosA+float64(y)*sinA-rho) < lineWidth {
				pts = append(pts, onLine{Point{Row: y, Column: x}, -float64(x)*sinA + float64(y)*cosA})
			}
		}
	}
	if len(pts) == 0 {
		return nil, nil
	}
	sort.SliceStable(pts, func(i, j int) bool { return pts[i].t < pts[j].t })

	best, bestLen := 0, 0
	runStart := 0
	for i := 1; i <= len(pts); i++ {
		if i == len(pts) || pts[i].t-pts[i-1].t > maxGap {
			if i-runStart > bestLen {
				best, bestLen = runStart, i-runStart
			}
			runStart = i
		}
	}

	cells := make([]Point, 0, bestLen)
	along := make([]float64, 0, bestLen)
	for _, o := range pts[best : best+bestLen] {
		cells = append(cells, o.p)
		along = append(along, o.t)
	}
	return cells, along
}

// lineEnd returns the mean cell of the run cells lying across the line at
// position t, so thick lines end on their center row or column.
func lineEnd(run []Point, along []float64, t float64) Point {
	var sumRow, sumCol, n float64
	for i, p := range run {
		if math.Abs(along[i]-t) < 0.5 {
			sumRow += float64(p.Row)
			sumCol += float64(p.Column)
			n++
		}
	}
	return Point{Row: int(math.Round(sumRow / n)), Column: int(math.Round(sumCol / n))}
}

// estimateLineThickness counts set cells across the line at its midpoint.
func estimateLineThickness(set [][]bool, start, end Point) int {
	dx := float64(end.Column - start.Column)
	dy := float64(end.Row - start.Row)
	length := math.Hypot(dx, dy)
	if length == 0 {
		return 1
	}

	perpX := -dy / length
	perpY := dx / length
	midX := float64(start.Column+end.Column) / 2
	midY := float64(start.Row+end.Row) / 2

	thickness := 0
	for d := -10; d <= 10; d++ {
		px := int(math.Round(midX + float64(d)*perpX))
		py := int(math.Round(midY + float64(d)*perpY))
		if py >= 0 && py < len(set) && px >= 0 && px < len(set[py]) && set[py][px] {
			thickness++
		}
	}
	return max(thickness, 1)
}
