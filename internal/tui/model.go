package tui

import (
	"os"
	"time"

	list "github.com/charmbracelet/bubbles/list"
	table "github.com/charmbracelet/bubbles/table"
	textarea "github.com/charmbracelet/bubbles/textarea"
	textinput "github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"parcelmap/internal/mapview"
)

const (
	sidebarWidth  = 28
	headerHeight  = 1
	footerHeight  = 2
	frameInterval = time.Second / 30
)

// mode is the panel that receives key input.
type mode int

const (
	modeMap mode = iota
	modeLayers
	modeSearch
	modePaste
	modeTable
)

// featureRef points a table row at a layer feature.
type featureRef struct {
	layer string
	index int
}

// Model is the terminal host of a map controller. The controller is shared
// by every copy of the model; bubbletea only ever runs one Update at a time.
type Model struct {
	ctl *mapview.Controller
	log zerolog.Logger

	width  int
	height int

	mode        mode
	showSidebar bool
	helpVisible bool
	status      string

	// File explorer
	cwd   string
	files list.Model

	// layer switcher
	layers list.Model

	search textinput.Model

	// paste mode
	ta     textarea.Model
	pasted int

	// attributes table
	tbl     table.Model
	tblRefs []featureRef

	// hover state
	hovering bool
	pointer  mapview.Pixel

	// view animation
	anim        mapview.Transition
	animating   bool
	animStart   time.Time
	animElapsed time.Duration
}

// New builds the terminal host around ctl and opens any given files as
// vector layers.
func New(ctl *mapview.Controller, log zerolog.Logger, paths ...string) Model {
	m := Model{
		ctl:         ctl,
		log:         log,
		helpVisible: true,
		status:      "parcelmap ready",
	}
	m.cwd, _ = os.Getwd()

	// list setup
	d := list.NewDefaultDelegate()
	d.ShowDescription = false
	m.files = list.New(nil, d, 0, 0)
	m.files.Title = "Files"
	m.files.SetShowHelp(false)
	m.files.SetShowStatusBar(false)
	m.files.SetFilteringEnabled(false)

	ld := list.NewDefaultDelegate()
	m.layers = list.New(nil, ld, 0, 0)
	m.layers.Title = "Layers"
	m.layers.SetShowHelp(false)
	m.layers.SetShowStatusBar(false)
	m.layers.SetFilteringEnabled(false)

	m.search = textinput.New()
	m.search.Prompt = "/"
	m.search.Placeholder = "search attributes"
	m.search.CharLimit = 128

	// textarea setup
	m.ta = textarea.New()
	m.ta.Placeholder = "Paste WKT here (POINT, LINESTRING, POLYGON, MULTI*). Press Enter to add as a layer; Esc to cancel."
	m.ta.CharLimit = 0
	m.ta.SetWidth(50)
	m.ta.SetHeight(6)

	// attributes table setup (columns are inferred per layer)
	m.tbl = table.New(table.WithFocused(true))
	m.tbl.SetHeight(12)

	m.refreshDir()
	for _, p := range paths {
		m.loadPath(p)
	}
	return m
}

func (m Model) Init() tea.Cmd { return nil }

// Controller returns the controller the model drives.
func (m Model) Controller() *mapview.Controller { return m.ctl }

// area is the map canvas in terminal cells.
type area struct {
	x, y, w, h int
}

func (m Model) mapArea() area {
	header, footer := headerHeight, footerHeight
	side := 0
	if m.ctl.Fullscreen() {
		header, footer = 0, 0
	} else if m.showSidebar {
		side = sidebarWidth + 1
	}
	return area{
		x: side,
		y: header,
		w: max(10, m.width-side),
		h: max(4, m.height-header-footer),
	}
}

// resize keeps the controller viewport equal to the canvas in micro-pixels.
func (m *Model) resize() {
	if m.width == 0 || m.height == 0 {
		m.ctl.Resize(0, 0)
		return
	}
	a := m.mapArea()
	m.ctl.Resize(a.w*2, a.h*4)
	m.files.SetSize(sidebarWidth-2, a.h-2)
	m.layers.SetSize(min(48, a.w-4), min(a.h-2, 20))
	m.ta.SetWidth(a.w)
	m.ta.SetHeight(min(a.h, 12))
}

// cellPixel maps a terminal cell to the controller pixel at its center.
func (m Model) cellPixel(cx, cy int) (mapview.Pixel, bool) {
	a := m.mapArea()
	if cx < a.x || cx >= a.x+a.w || cy < a.y || cy >= a.y+a.h {
		return mapview.Pixel{}, false
	}
	return mapview.Pixel{
		X: float64((cx-a.x)*2 + 1),
		Y: float64((cy-a.y)*4 + 2),
	}, true
}

type frameMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return frameMsg(t) })
}

// animate starts drawing the controller's last transition, if it moves.
func (m *Model) animate() tea.Cmd {
	t := m.ctl.Transition()
	if t.Duration <= 0 || t.From == t.To {
		m.animating = false
		return nil
	}
	m.anim = t
	m.animating = true
	m.animStart = time.Now()
	m.animElapsed = 0
	return tick()
}

// drawView is the view to render: the animated one while a transition runs.
func (m Model) drawView() mapview.View {
	if m.animating {
		return m.anim.At(m.animElapsed)
	}
	return m.ctl.View()
}
