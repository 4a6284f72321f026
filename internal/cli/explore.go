package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stargraph/pkg/engine"
	errs "github.com/matzehuels/stargraph/pkg/errors"
	"github.com/matzehuels/stargraph/pkg/graph"
	"github.com/matzehuels/stargraph/pkg/pipeline"
	"github.com/matzehuels/stargraph/pkg/scene"
	"github.com/matzehuels/stargraph/pkg/scene/sink"
	"github.com/matzehuels/stargraph/pkg/social"
)

const (
	// exploreMount is the id of the container the explore engine draws into.
	exploreMount = "explore"

	// cellWidth and cellHeight convert terminal cells to scene units so the
	// layout keeps its aspect ratio on a grid of tall cells.
	cellWidth  = 8.0
	cellHeight = 16.0

	// panStep is how far an arrow key moves the camera, in scene units.
	panStep = 80.0

	// zoomStep is the factor of one +/- key press.
	zoomStep = 1.25

	// fetchTimeout bounds one owner fetch triggered by a click.
	fetchTimeout = time.Minute
)

// exploreCommand creates the explore command.
func (c *CLI) exploreCommand() *cobra.Command {
	var (
		first   int
		refresh bool
		noCache bool
		logFile string
	)

	cmd := &cobra.Command{
		Use:   "explore <login>",
		Short: "Browse a user's star graph in the terminal",
		Long: `Open an interactive view of a user's star graph. The layout animates
while it settles. Selecting a repository fetches its owner and adds them to
the graph; selecting a user shows their profile.

Keys:
  ←↑↓→         pan
  + / -        zoom
  tab / S-tab  select next / previous node
  enter        click the selected node
  r            reset the camera
  q            quit`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExplore(cmd.Context(), args[0], first, refresh, noCache, logFile)
		},
	}

	cmd.Flags().IntVar(&first, "first", 0, "starred repositories per user (default from config)")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass cached GitHub responses for the first user")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVar(&logFile, "log-file", "", "write engine logs to this file")

	return cmd
}

func (c *CLI) runExplore(ctx context.Context, login string, first int, refresh, noCache bool, logFile string) error {
	if err := errs.ValidateLogin(login); err != nil {
		return err
	}
	if first == 0 {
		first = c.Config.GitHub.First
	}

	ch, err := c.newCache(ctx, noCache)
	if err != nil {
		return err
	}
	defer ch.Close()
	client := c.newGitHubClient(ctx, ch)

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Fetching @%s...", login))
	spinner.Start()
	root, err := client.FetchUser(ctx, login, first, refresh)
	if err != nil {
		spinner.StopWithError(fmt.Sprintf("Fetch @%s failed", login))
		return err
	}
	spinner.Stop()

	// The terminal belongs to the program; engine logs go to a file or
	// nowhere.
	var logw io.Writer = io.Discard
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logw = f
	}

	loop, mount, view, err := startExploreLoop(ctx, c.Config.Engine, newLogger(logw, c.Logger.GetLevel()))
	if err != nil {
		return err
	}
	defer loop.Close()

	m := newExploreModel(ctx, loop, mount, client, first, root, view)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	view.setSender(p.Send)

	final, err := p.Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(exploreModel); ok && fm.snap.Nodes > 0 {
		printStats(fm.snap.Nodes, fm.snap.Links, len(fm.fetched), false)
	}
	return nil
}

// startExploreLoop mounts an engine, starts its loop and routes frames and
// click notifications through the returned view.
func startExploreLoop(ctx context.Context, cfg engine.Config, logger *log.Logger) (*engine.Loop, *scene.Mount, *terminalView, error) {
	doc := scene.NewDocument()
	mount := doc.AddMount(exploreMount, pipeline.DefaultWidth, pipeline.DefaultHeight)
	e, err := engine.New(doc, "#"+exploreMount,
		engine.WithConfig(cfg),
		engine.WithLogger(logger))
	if err != nil {
		return nil, nil, nil, err
	}

	view := &terminalView{}
	loop := engine.StartLoop(ctx, e, engine.WithFrameHook(view.onFrame))
	if err := loop.Do(ctx, func(e *engine.Engine) error {
		e.OnClickRepo(func(ev engine.ClickRepo) { view.send(clickRepoMsg{login: ev.Username}) })
		e.OnClickUser(func(ev engine.ClickUser) {
			view.send(clickUserMsg{user: userOf(ev), starred: starredBy(e.Store(), ev.Node)})
		})
		return nil
	}); err != nil {
		loop.Close()
		return nil, nil, nil, err
	}
	return loop, mount, view, nil
}

// =============================================================================
// Loop → program bridge
// =============================================================================

// terminalView renders the engine's surface on the loop goroutine and hands
// finished frames to the program. The model updates the grid size and the
// selection through it.
type terminalView struct {
	mu       sync.Mutex
	sendFn   func(tea.Msg)
	cols     int
	rows     int
	selected string
	known    int
}

func (v *terminalView) setSender(fn func(tea.Msg)) {
	v.mu.Lock()
	v.sendFn = fn
	v.mu.Unlock()
}

// send delivers msg to the program. Messages before the program starts are
// dropped.
func (v *terminalView) send(msg tea.Msg) {
	v.mu.Lock()
	fn := v.sendFn
	v.mu.Unlock()
	if fn != nil {
		fn(msg)
	}
}

func (v *terminalView) configure(cols, rows int, selected string) {
	v.mu.Lock()
	v.cols, v.rows, v.selected = cols, rows, selected
	v.mu.Unlock()
}

// onFrame runs on the loop goroutine after every tick and job.
func (v *terminalView) onFrame(e *engine.Engine) {
	v.mu.Lock()
	cols, rows, selected := v.cols, v.rows, v.selected
	if cols <= 0 || rows <= 0 {
		v.mu.Unlock()
		return
	}
	var order []string
	if n := e.Store().NodeCount(); n != v.known {
		v.known = n
		order = nodeOrder(e.Store())
	}
	v.mu.Unlock()

	v.send(frameMsg{
		grid:  sink.RenderTerminal(e.Surface(), cols, rows, sink.WithSelected(selected)),
		snap:  e.Snapshot(),
		order: order,
	})
}

// nodeOrder lists node ids in the order tab visits them: users first, then
// repositories, each in insertion order.
func nodeOrder(s *graph.Store) []string {
	nodes := s.Nodes()
	ids := make([]string, 0, len(nodes))
	for _, kind := range []social.Kind{social.KindUser, social.KindRepo} {
		for _, n := range nodes {
			if n.Kind == kind {
				ids = append(ids, n.ID)
			}
		}
	}
	return ids
}

func userOf(ev engine.ClickUser) social.User {
	if ev.Node != nil && ev.Node.User != nil {
		return *ev.Node.User
	}
	return social.User{Login: ev.Username}
}

// starredBy counts the links of a user node.
func starredBy(s *graph.Store, n *graph.Node) int {
	if n == nil {
		return 0
	}
	count := 0
	for _, l := range s.Links() {
		if l.Source == n.ID || l.Target == n.ID {
			count++
		}
	}
	return count
}

// =============================================================================
// Messages
// =============================================================================

type (
	frameMsg struct {
		grid  string
		snap  engine.Snapshot
		order []string // nil when unchanged
	}
	clickRepoMsg struct{ login string }
	clickUserMsg struct {
		user    social.User
		starred int
	}
	fetchedMsg struct {
		login string
		user  *social.UserWithRepos
		err   error
	}
	clickedMsg struct {
		id      string
		emitted bool
	}
	loopErrMsg struct{ err error }
)

// =============================================================================
// Model
// =============================================================================

var (
	exploreHelpStyle   = lipgloss.NewStyle().Foreground(colorDim)
	exploreStatusStyle = lipgloss.NewStyle().Foreground(colorGray)
	exploreErrorStyle  = lipgloss.NewStyle().Foreground(colorRed)
)

const exploreHelp = "←↑↓→ pan  +/- zoom  tab select  ⏎ click  r reset  q quit"

// exploreModel is the bubbletea model of the explore command. It never
// touches the engine directly: every engine operation is a command that
// goes through the loop.
type exploreModel struct {
	ctx     context.Context
	loop    *engine.Loop
	mount   *scene.Mount
	fetcher pipeline.Fetcher
	first   int
	view    *terminalView
	root    *social.UserWithRepos

	width  int
	height int

	grid     string
	snap     engine.Snapshot
	order    []string
	cursor   int
	selected string

	profile social.User
	starred int

	fetched map[string]bool
	pending map[string]bool
	status  string
	err     error
}

func newExploreModel(ctx context.Context, loop *engine.Loop, mount *scene.Mount, f pipeline.Fetcher, first int, root *social.UserWithRepos, view *terminalView) exploreModel {
	return exploreModel{
		ctx:     ctx,
		loop:    loop,
		mount:   mount,
		fetcher: f,
		first:   first,
		view:    view,
		cursor:  -1,
		profile: root.User,
		starred: len(root.Repos()),
		fetched: map[string]bool{strings.ToLower(root.Login): true},
		pending: map[string]bool{},
		status:  fmt.Sprintf("Loaded @%s", root.Login),
		root:    root,
	}
}

func (m exploreModel) Init() tea.Cmd {
	return m.ingest(m.root)
}

func (m exploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, m.resize()

	case frameMsg:
		m.grid, m.snap = msg.grid, msg.snap
		if msg.order != nil {
			m.order = msg.order
			m.cursor = indexOf(m.order, m.selected)
		}
		return m, nil

	case clickRepoMsg:
		key := strings.ToLower(msg.login)
		if m.pending[key] {
			return m, nil
		}
		m.pending[key] = true
		m.status = fmt.Sprintf("Fetching @%s...", msg.login)
		return m, m.fetch(msg.login)

	case clickUserMsg:
		m.profile, m.starred = msg.user, msg.starred
		m.status = fmt.Sprintf("Selected @%s", msg.user.Login)
		return m, m.resize()

	case fetchedMsg:
		key := strings.ToLower(msg.login)
		delete(m.pending, key)
		if msg.err != nil {
			m.err = msg.err
			m.status = fmt.Sprintf("Fetch @%s failed", msg.login)
			return m, nil
		}
		m.err = nil
		m.fetched[key] = true
		m.profile, m.starred = msg.user.User, len(msg.user.Repos())
		m.status = fmt.Sprintf("Added @%s", msg.user.Login)
		return m, tea.Batch(m.ingest(msg.user), m.resize())

	case clickedMsg:
		if !msg.emitted {
			m.status = "Nothing to expand: repositories owned by organizations stay closed"
		}
		return m, nil

	case loopErrMsg:
		m.err = msg.err
		return m, nil
	}
	return m, nil
}

func (m exploreModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	w, h := m.mount.Size()
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "left", "h":
		return m, m.do(func(e *engine.Engine) { e.Pan(panStep, 0) })
	case "right", "l":
		return m, m.do(func(e *engine.Engine) { e.Pan(-panStep, 0) })
	case "up", "k":
		return m, m.do(func(e *engine.Engine) { e.Pan(0, panStep) })
	case "down", "j":
		return m, m.do(func(e *engine.Engine) { e.Pan(0, -panStep) })
	case "+", "=":
		return m, m.do(func(e *engine.Engine) { e.ZoomAt(zoomStep, w/2, h/2) })
	case "-", "_":
		return m, m.do(func(e *engine.Engine) { e.ZoomAt(1/zoomStep, w/2, h/2) })
	case "r":
		return m, m.do(func(e *engine.Engine) { e.ResetCamera() })
	case "tab":
		m = m.cycle(1)
		return m, m.redraw()
	case "shift+tab":
		m = m.cycle(-1)
		return m, m.redraw()
	case "enter":
		if m.selected == "" {
			m.status = "Select a node with tab first"
			return m, nil
		}
		return m, m.click(m.selected)
	}
	return m, nil
}

// cycle moves the selection by step through the tab order.
func (m exploreModel) cycle(step int) exploreModel {
	if len(m.order) == 0 {
		return m
	}
	if m.cursor < 0 && step < 0 {
		m.cursor = 0
	}
	m.cursor = (m.cursor + step + len(m.order)) % len(m.order)
	m.selected = m.order[m.cursor]
	m.view.configure(m.width, m.gridRows(), m.selected)
	return m
}

func (m exploreModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}
	var b strings.Builder
	b.WriteString(m.header())
	b.WriteString("\n")
	b.WriteString(m.grid)
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(exploreHelpStyle.Render(exploreHelp))
	return b.String()
}

func (m exploreModel) header() string {
	return lipgloss.NewStyle().MaxWidth(m.width).Render(profileCard(m.profile, m.starred))
}

func (m exploreModel) statusLine() string {
	parts := []string{
		fmt.Sprintf("%d nodes", m.snap.Nodes),
		fmt.Sprintf("%d links", m.snap.Links),
		fmt.Sprintf("%s ×%.2f", m.snap.State, m.snap.Transform.K),
	}
	if m.snap.Alive {
		parts = append(parts, "settling")
	}
	if len(m.pending) > 0 {
		parts = append(parts, fmt.Sprintf("%d fetching", len(m.pending)))
	}
	line := exploreStatusStyle.Render(strings.Join(parts, " · ") + "  " + m.status)
	if m.err != nil {
		line += "  " + exploreErrorStyle.Render(errs.UserMessage(m.err))
	}
	return lipgloss.NewStyle().MaxWidth(m.width).Render(line)
}

// gridRows is the terminal height left for the graph.
func (m exploreModel) gridRows() int {
	return max(m.height-lipgloss.Height(m.header())-2, 1)
}

// =============================================================================
// Commands
// =============================================================================

// resize sizes the mount to the grid. The engine hears about it through
// its mount observer on the loop.
func (m exploreModel) resize() tea.Cmd {
	cols, rows := m.width, m.gridRows()
	m.view.configure(cols, rows, m.selected)
	mount := m.mount
	return func() tea.Msg {
		mount.Resize(float64(cols)*cellWidth, float64(rows)*cellHeight)
		return nil
	}
}

func (m exploreModel) do(fn func(*engine.Engine)) tea.Cmd {
	loop, ctx := m.loop, m.ctx
	return func() tea.Msg {
		if err := loop.Do(ctx, func(e *engine.Engine) error {
			fn(e)
			return nil
		}); err != nil {
			return loopErrMsg{err}
		}
		return nil
	}
}

// redraw submits an empty job so the frame hook renders the new selection.
func (m exploreModel) redraw() tea.Cmd {
	return m.do(func(*engine.Engine) {})
}

func (m exploreModel) ingest(u *social.UserWithRepos) tea.Cmd {
	loop, ctx := m.loop, m.ctx
	return func() tea.Msg {
		if err := loop.Ingest(ctx, u); err != nil {
			return loopErrMsg{err}
		}
		return nil
	}
}

func (m exploreModel) click(id string) tea.Cmd {
	loop, ctx := m.loop, m.ctx
	return func() tea.Msg {
		emitted, err := loop.ClickNode(ctx, id)
		if err != nil {
			return loopErrMsg{err}
		}
		return clickedMsg{id: id, emitted: emitted}
	}
}

func (m exploreModel) fetch(login string) tea.Cmd {
	f, ctx, first := m.fetcher, m.ctx, m.first
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
		defer cancel()
		u, err := f.FetchUser(ctx, login, first, false)
		return fetchedMsg{login: login, user: u, err: err}
	}
}

func indexOf(xs []string, x string) int {
	for i, v := range xs {
		if v == x {
			return i
		}
	}
	return -1
}
