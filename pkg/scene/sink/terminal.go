package sink

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/stargraph/pkg/graph"
	"github.com/matzehuels/stargraph/pkg/scene"
)

type paint int

const (
	paintNone paint = iota
	paintLine
	paintSkeleton
	paintAvatar
	paintUser
	paintOrgRepo
	paintPersonalRepo
	paintSelected
)

type cell struct {
	r rune
	p paint
}

// TerminalOption configures RenderTerminal.
type TerminalOption func(*terminalRenderer)

type terminalRenderer struct {
	selected string
}

// WithSelected highlights the label of the node with the given id.
func WithSelected(id string) TerminalOption {
	return func(r *terminalRenderer) { r.selected = id }
}

// RenderTerminal rasterizes the visible layers onto a cols×rows character
// grid using the surface's camera. Lines are dotted, skeletons are 'o',
// avatars are '@' and labels are drawn as coloured text.
func RenderTerminal(s *scene.Surface, cols, rows int, opts ...TerminalOption) string {
	if cols <= 0 || rows <= 0 || s.Width <= 0 || s.Height <= 0 {
		return ""
	}
	var r terminalRenderer
	for _, opt := range opts {
		opt(&r)
	}

	grid := make([][]cell, rows)
	for y := range grid {
		grid[y] = make([]cell, cols)
		for x := range grid[y] {
			grid[y][x] = cell{r: ' '}
		}
	}
	sx := float64(cols) / s.Width
	sy := float64(rows) / s.Height
	toGrid := func(wx, wy float64) (float64, float64) {
		px, py := s.Transform.Apply(wx, wy)
		return px * sx, py * sy
	}
	toCell := func(wx, wy float64) (int, int) {
		gx, gy := toGrid(wx, wy)
		return int(math.Floor(gx)), int(math.Floor(gy))
	}
	set := func(x, y int, ch rune, p paint) {
		if x >= 0 && x < cols && y >= 0 && y < rows {
			grid[y][x] = cell{r: ch, p: p}
		}
	}

	for _, l := range s.Layers() {
		if !l.Visible {
			continue
		}
		for _, ln := range l.Lines {
			x0, y0 := toGrid(ln.X1, ln.Y1)
			x1, y1 := toGrid(ln.X2, ln.Y2)
			x0, y0, x1, y1, ok := clipSegment(x0, y0, x1, y1, -1, -1, float64(cols+1), float64(rows+1))
			if !ok {
				continue
			}
			plotLine(int(math.Floor(x0)), int(math.Floor(y0)), int(math.Floor(x1)), int(math.Floor(y1)),
				func(x, y int) { set(x, y, '·', paintLine) })
		}
		for _, sk := range l.Skeletons {
			x, y := toCell(sk.CX, sk.CY)
			set(x, y, 'o', paintSkeleton)
		}
		for _, av := range l.Avatars {
			x, y := toCell(av.X+av.Size/2, av.Y+av.Size/2)
			set(x, y, '@', paintAvatar)
		}
		for _, lb := range l.Labels {
			x, y := toCell(lb.TextX, lb.TextY)
			p := labelPaint(lb)
			if lb.NodeID == r.selected {
				p = paintSelected
			}
			text := []rune(" " + lb.Text + " ")
			start := x - len(text)/2
			for i, ch := range text {
				set(start+i, y, ch, p)
			}
		}
	}

	styles := paintStyles(s.Style())
	var out strings.Builder
	for y, row := range grid {
		if y > 0 {
			out.WriteByte('\n')
		}
		var run []rune
		cur := paintNone
		flush := func() {
			if len(run) == 0 {
				return
			}
			if cur == paintNone {
				out.WriteString(string(run))
			} else {
				out.WriteString(styles[cur].Render(string(run)))
			}
			run = run[:0]
		}
		for _, c := range row {
			if c.p != cur {
				flush()
				cur = c.p
			}
			run = append(run, c.r)
		}
		flush()
	}
	return out.String()
}

func labelPaint(lb *scene.Label) paint {
	switch lb.Role {
	case graph.RoleUser:
		return paintUser
	case graph.RoleOrgRepo:
		return paintOrgRepo
	default:
		return paintPersonalRepo
	}
}

func paintStyles(st scene.Style) map[paint]lipgloss.Style {
	pill := func(bg string) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(lipgloss.Color(st.TextFill)).Background(lipgloss.Color(bg))
	}
	return map[paint]lipgloss.Style{
		paintLine:         lipgloss.NewStyle().Foreground(lipgloss.Color(st.LineStroke)).Faint(true),
		paintSkeleton:     lipgloss.NewStyle().Foreground(lipgloss.Color(st.SkeletonFill)),
		paintAvatar:       lipgloss.NewStyle().Foreground(lipgloss.Color(st.UserFill)).Bold(true),
		paintUser:         pill(st.UserFill),
		paintOrgRepo:      pill(st.OrgRepoFill),
		paintPersonalRepo: pill(st.PersonalRepoFill),
		paintSelected:     pill(st.UserFill).Reverse(true).Bold(true),
	}
}

// clipSegment clips the segment to the box [minX,maxX]×[minY,maxY]
// (Liang-Barsky). ok is false when no part of it lies inside.
func clipSegment(x0, y0, x1, y1, minX, minY, maxX, maxY float64) (cx0, cy0, cx1, cy1 float64, ok bool) {
	dx, dy := x1-x0, y1-y0
	t0, t1 := 0.0, 1.0
	edges := [4][2]float64{
		{-dx, x0 - minX},
		{dx, maxX - x0},
		{-dy, y0 - minY},
		{dy, maxY - y0},
	}
	for _, e := range edges {
		p, q := e[0], e[1]
		if math.IsNaN(p) || math.IsNaN(q) {
			return 0, 0, 0, 0, false
		}
		if p == 0 {
			if q < 0 {
				return 0, 0, 0, 0, false
			}
			continue
		}
		r := q / p
		if p < 0 {
			if r > t1 {
				return 0, 0, 0, 0, false
			}
			t0 = max(t0, r)
		} else {
			if r < t0 {
				return 0, 0, 0, 0, false
			}
			t1 = min(t1, r)
		}
	}
	return x0 + t0*dx, y0 + t0*dy, x0 + t1*dx, y0 + t1*dy, true
}

// plotLine walks the cells between two points (Bresenham). Callers clip
// the segment to the grid first.
func plotLine(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx, dy := abs(x1-x0), -abs(y1-y0)
	stepX, stepY := 1, 1
	if x0 > x1 {
		stepX = -1
	}
	if y0 > y1 {
		stepY = -1
	}
	e := dx + dy
	for {
		plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += stepX
		}
		if e2 <= dx {
			e += dx
			y0 += stepY
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
