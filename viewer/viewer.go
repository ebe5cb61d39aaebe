// Package viewer browses carved mazes on a terminal screen
package viewer

import (
	"errors"
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/puzzlebox/maze"
)

// ErrNoMazes is returned when there is nothing to show
var ErrNoMazes = errors.New("no mazes to view")

// Screen cells per maze cell
const (
	cellWidth  = 4 // wall column plus three content columns
	cellHeight = 2 // wall row plus one content row
	headerRows = 1
)

var (
	styleWall    = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleInvalid = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleExit    = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	stylePath    = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleStart   = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	styleStatus  = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorWhite)
)

var arrows = [4]string{maze.DirL: " < ", maze.DirR: " > ", maze.DirU: " ^ ", maze.DirD: " v "}

// Viewer shows one maze at a time with optional solution overlay
type Viewer struct {
	screen        tcell.Screen
	width, height int

	dumps   []*maze.Dump
	current int

	// Pan offset in maze cells; columns wrap round the cylinder
	offX, offY int

	solution bool
	path     map[maze.Cell]string
	pathLen  int
	score    float64
}

// New prepares a viewer on an initialised screen
func New(screen tcell.Screen, dumps []*maze.Dump) (*Viewer, error) {
	if len(dumps) == 0 {
		return nil, ErrNoMazes
	}
	v := &Viewer{
		screen: screen,
		dumps:  dumps,
	}
	v.width, v.height = screen.Size()
	v.selectMaze(0)
	return v, nil
}

// Current is the maze being shown
func (v *Viewer) Current() *maze.Dump {
	return v.dumps[v.current]
}

func (v *Viewer) selectMaze(i int) {
	n := len(v.dumps)
	v.current = ((i % n) + n) % n
	v.offX, v.offY = 0, 0

	g := v.Current().Grid
	v.score = maze.Measure(g).Score(maze.DefaultWeights)
	v.path = nil
	v.pathLen = 0
	entrance, ok := maze.Entrance(g)
	if !ok {
		return
	}
	p, err := maze.Solve(g, entrance, maze.Exits(g)...)
	if err != nil {
		return
	}
	v.path = make(map[maze.Cell]string, len(p))
	for i, s := range p {
		if i == 0 {
			v.path[s.Cell] = " S "
		} else {
			v.path[s.Cell] = arrows[s.Dir]
		}
	}
	v.pathLen = len(p)
}

func (v *Viewer) put(x, y int, s string, style tcell.Style) {
	for _, r := range s {
		if x >= 0 && x < v.width && y >= 0 && y < v.height {
			v.screen.SetContent(x, y, r, nil, style)
		}
		x++
	}
}

// column is the maze column drawn in screen cell column i
func (v *Viewer) column(i int) int {
	w := v.Current().Grid.W
	return ((v.offX+i)%w + w) % w
}

// Draw renders the status line and the visible part of the maze
func (v *Viewer) Draw() {
	v.screen.Clear()
	d := v.Current()
	g := d.Grid

	status := fmt.Sprintf(" Part %d %s %dx%d exit %d helix %d | maze %d/%d | score %.2f",
		d.Part, d.Orientation(), d.Width, d.Rows, d.ExitColumn, d.Helix, v.current+1, len(v.dumps), v.score)
	if v.solution {
		if v.path != nil {
			status += fmt.Sprintf(" | path %d", v.pathLen)
		} else {
			status += " | no path"
		}
	}
	status += " | arrows pan, tab next, s solution, q quit "
	for x := 0; x < v.width; x++ {
		v.screen.SetContent(x, 0, ' ', nil, styleStatus)
	}
	v.put(0, 0, status, styleStatus)

	cols := (v.width + cellWidth - 1) / cellWidth
	for y := g.H; y >= 0; y-- {
		sy := headerRows + cellHeight*(g.H-y-v.offY)
		for i := 0; i < cols; i++ {
			x := v.column(i)
			sx := i * cellWidth
			v.put(sx, sy, "+", styleWall)
			v.drawBorder(sx+1, sy, x, y)
			if y > 0 {
				v.drawCell(sx, sy+1, x, y-1)
			}
		}
	}
	v.screen.Show()
}

// drawBorder draws the wall above row y-1 of column x
func (v *Viewer) drawBorder(sx, sy, x, y int) {
	g := v.Current().Grid
	switch {
	case y == g.H:
		if g.At(x, y-1)&maze.FlagU != 0 && g.Valid(x, y-1) {
			v.put(sx, sy, " E ", styleExit)
		} else {
			v.put(sx, sy, "---", styleWall)
		}
	case y == 0:
		v.put(sx, sy, "---", styleWall)
	case g.At(x, y-1)&maze.FlagU != 0:
		v.put(sx, sy, "   ", styleWall)
	default:
		v.put(sx, sy, "---", styleWall)
	}
}

// drawCell draws the left wall and content of cell (x,y)
func (v *Viewer) drawCell(sx, sy, x, y int) {
	g := v.Current().Grid
	if g.At(x, y)&maze.FlagL != 0 {
		v.put(sx, sy, " ", styleWall)
	} else {
		v.put(sx, sy, "|", styleWall)
	}
	c := maze.Cell{X: x, Y: y}
	switch m, ok := v.path[c]; {
	case !g.Valid(x, y):
		v.put(sx+1, sy, "###", styleInvalid)
	case v.solution && ok && m == " S ":
		v.put(sx+1, sy, m, styleStart)
	case v.solution && ok:
		v.put(sx+1, sy, m, stylePath)
	default:
		v.put(sx+1, sy, "   ", styleWall)
	}
}

// maxOffY keeps the bottom wall reachable when the maze is taller than the screen
func (v *Viewer) maxOffY() int {
	rows := (v.height - headerRows - 1) / cellHeight
	if m := v.Current().Grid.H - rows; m > 0 {
		return m
	}
	return 0
}

// HandleEvent applies one input event. It returns false to quit.
func (v *Viewer) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyLeft:
			v.offX--
		case tcell.KeyRight:
			v.offX++
		case tcell.KeyUp:
			v.offY--
		case tcell.KeyDown:
			v.offY++
		case tcell.KeyTab:
			v.selectMaze(v.current + 1)
		case tcell.KeyBacktab:
			v.selectMaze(v.current - 1)
		case tcell.KeyHome:
			v.offX, v.offY = 0, 0
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q':
				return false
			case 'h':
				v.offX--
			case 'l':
				v.offX++
			case 'k':
				v.offY--
			case 'j':
				v.offY++
			case 'n':
				v.selectMaze(v.current + 1)
			case 'p':
				v.selectMaze(v.current - 1)
			case 's':
				v.solution = !v.solution
			case '0':
				v.offX, v.offY = 0, 0
			}
		}

	case *tcell.EventResize:
		v.width, v.height = v.screen.Size()
		v.screen.Sync()
	}

	w := v.Current().Grid.W
	v.offX = ((v.offX % w) + w) % w
	v.offY = max(0, min(v.offY, v.maxOffY()))
	return true
}

// Run draws and handles events until the user quits or the screen is closed
func (v *Viewer) Run() {
	v.Draw()
	for {
		ev := v.screen.PollEvent()
		if ev == nil {
			return
		}
		if !v.HandleEvent(ev) {
			return
		}
		v.Draw()
	}
}
