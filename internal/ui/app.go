package ui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/five82/pagedeck/internal/config"
	"github.com/five82/pagedeck/internal/document"
	"github.com/five82/pagedeck/internal/editor"
	"github.com/five82/pagedeck/internal/prefs"
)

// Options configures the UI.
type Options struct {
	Context context.Context
	Session *editor.Session
	Config  config.Config
	Logger  zerolog.Logger
	// Prefs override the configured theme and paper. Changes are written
	// back to PrefsPath; "-" keeps them in memory only.
	Prefs     prefs.Prefs
	PrefsPath string
	// Notice is shown until the first action, e.g. why the file given on the
	// command line did not open.
	Notice    string
	NoticeErr bool
}

// Model is the root application state for Bubble Tea.
type Model struct {
	ctx     context.Context
	session *editor.Session
	cfg     config.Config
	log     zerolog.Logger

	prefs     prefs.Prefs
	prefsPath string
	paperName string

	theme    Theme
	keys     keyMap
	help     help.Model
	progress progress.Model
	spinner  spinner.Model
	art      *artCache

	width  int
	height int
	ready  bool

	cursor int
	top    int // first visible grid row

	modal        Modal
	showHelp     bool
	showActivity bool
	activity     viewport.Model

	notice    string
	noticeErr bool

	loadTick        time.Duration
	saveTick        time.Duration
	loadTicking     bool
	saveTicking     bool
	activityTicking bool
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	loadTick := time.Duration(opts.Config.PollMS) * time.Millisecond
	if loadTick <= 0 {
		loadTick = DefaultLoadTick
	}
	saveTick := time.Duration(opts.Config.SavePollMS) * time.Millisecond
	if saveTick <= 0 {
		saveTick = DefaultSaveTick
	}
	if opts.Config.Papers == nil {
		opts.Config.Papers = document.DefaultPapers()
	}

	themeName := opts.Config.Theme
	if opts.Prefs.Theme != "" {
		themeName = opts.Prefs.Theme
	}
	paperName := paperLabel(opts.Config.DefaultPaper)
	if _, ok := opts.Config.Papers.Lookup(opts.Prefs.Paper); ok && opts.Prefs.Paper != "" {
		paperName = opts.Prefs.Paper
	}

	prog := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	prog.Width = 30

	return Model{
		ctx:         ctx,
		session:     opts.Session,
		cfg:         opts.Config,
		log:         opts.Logger.With().Str("component", "ui").Logger(),
		prefs:       opts.Prefs,
		prefsPath:   opts.PrefsPath,
		paperName:   paperName,
		theme:       GetTheme(themeName),
		keys:        DefaultKeyMap(),
		help:        help.New(),
		progress:    prog,
		spinner:     spinner.New(spinner.WithSpinner(spinner.Dot)),
		art:         newArtCache(),
		notice:      opts.Notice,
		noticeErr:   opts.NoticeErr,
		loadTick:    loadTick,
		saveTick:    saveTick,
		loadTicking: true,
		saveTicking: true,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		m.spinner.Tick,
		loadTickCmd(m.loadTick),
		saveTickCmd(m.saveTick),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.activity = viewport.New(msg.Width, activityHeight-1)
		}
		m.ready = true
		m.activity.Width = msg.Width
		m.help.Width = msg.Width
		m.scrollToCursor()
		return m, nil

	case loadTickMsg:
		return m.handleLoadTick()

	case saveTickMsg:
		return m.handleSaveTick()

	case activityTickMsg:
		if !m.showActivity {
			m.activityTicking = false
			return m, nil
		}
		return m, tea.Batch(readActivityCmd(m.cfg.LogFile), activityTickCmd())

	case activityMsg:
		m.setActivity(msg)
		return m, nil

	case submitMsg:
		return m.handleSubmit(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.modal != nil {
		var cmd tea.Cmd
		var closed bool
		m.modal, cmd, closed = m.modal.Update(msg, m.keys)
		if closed {
			m.modal = nil
		}
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.modal != nil {
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		var cmd tea.Cmd
		var closed bool
		m.modal, cmd, closed = m.modal.Update(msg, m.keys)
		if closed {
			m.modal = nil
		}
		return m, cmd
	}

	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.prefs.Theme = m.theme.Name
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.Activity):
		m.showActivity = !m.showActivity
		m.scrollToCursor()
		if m.showActivity && !m.activityTicking {
			m.activityTicking = true
			return m, tea.Batch(readActivityCmd(m.cfg.LogFile), activityTickCmd())
		}
		return m, nil

	case key.Matches(msg, m.keys.Left):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.Right):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-m.columns())
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(m.columns())
	case key.Matches(msg, m.keys.Top):
		m.moveCursor(-m.session.PageCount())
	case key.Matches(msg, m.keys.Bottom):
		m.moveCursor(m.session.PageCount())

	case key.Matches(msg, m.keys.New):
		return m.newDocument()
	case key.Matches(msg, m.keys.Open):
		m.modal = newPrompt(promptOpen, "Open PDF", "Path to a PDF file", m.startPath())
	case key.Matches(msg, m.keys.Save):
		return m.promptSave([2]int{})
	case key.Matches(msg, m.keys.SaveRange):
		return m.promptPageRange(promptSaveRange, "Save pages", 1)
	case key.Matches(msg, m.keys.Cancel):
		if m.session.LoadActive() {
			m.session.CancelLoad()
			m.setNotice("Stopping preview loading...")
		}

	case key.Matches(msg, m.keys.InsertPDF):
		if m.requireDocument() {
			m.modal = newPrompt(promptInsertPDF, "Insert PDF", m.insertHint(), m.startDir())
		}
	case key.Matches(msg, m.keys.InsertImage):
		if m.requireDocument() {
			hint := m.insertHint() + ". Separate paths with commas. Paper: " + m.paperName
			m.modal = newPrompt(promptInsertImages, "Insert images", hint, m.startDir())
		}
	case key.Matches(msg, m.keys.Paper):
		m.modal = newChoice(promptPaper, "Paper size for images", m.cfg.Papers.Names(), m.paperName)
	case key.Matches(msg, m.keys.Delete):
		m.deleteSelected()
	case key.Matches(msg, m.keys.DeleteRange):
		return m.promptPageRange(promptDeleteRange, "Delete pages", 2)
	case key.Matches(msg, m.keys.RotateRight):
		m.rotate(90)
	case key.Matches(msg, m.keys.RotateLeft):
		m.rotate(-90)
	}
	cmd := m.ensureTicks()
	return m, cmd
}

func (m Model) handleSubmit(msg submitMsg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case promptOpen:
		m.openDocument(msg.value)

	case promptInsertPDF:
		at := m.insertPosition()
		n, err := m.session.InsertDocument(expandHome(msg.value), at)
		if err != nil {
			m.setError(err)
			break
		}
		m.selectPage(at)
		m.rememberDir(msg.value)
		m.setNotice(fmt.Sprintf("Inserted %d pages from %s", n, filepath.Base(msg.value)))

	case promptInsertImages:
		paths := splitPaths(msg.value)
		for i := range paths {
			paths[i] = expandHome(paths[i])
		}
		at := m.insertPosition()
		paper, _ := m.cfg.Papers.Lookup(m.paperName)
		n, err := m.session.InsertImages(paths, at, paper)
		if n > 0 {
			m.selectPage(at)
			m.rememberDir(paths[0])
		}
		if err != nil {
			m.setError(err)
			break
		}
		m.setNotice(fmt.Sprintf("Inserted %d image pages", n))

	case promptPaper:
		m.paperName = msg.value
		m.prefs.Paper = msg.value
		m.savePrefs()
		m.setNotice("Images will be placed on " + m.paperName + " pages")

	case promptDeleteRange:
		from, to, err := parseRange(msg.value)
		if err == nil {
			err = m.session.DeleteRange(from-1, to-1)
		}
		if err != nil {
			m.setError(err)
			break
		}
		m.setNotice(fmt.Sprintf("Deleted pages %d-%d", from, to))

	case promptSaveRange:
		from, to, err := parseRange(msg.value)
		if err != nil {
			m.setError(err)
			break
		}
		return m.promptSave([2]int{from, to})

	case promptSavePath:
		rng := editor.PageRange{From: msg.pages[0], To: msg.pages[1]}
		path := expandHome(msg.value)
		if err := m.session.Save(path, rng); err != nil {
			m.setError(err)
			break
		}
		m.rememberDir(path)
		m.setNotice("Saving " + filepath.Base(path) + "...")
	}
	m.syncCursor()
	m.art.prune()
	cmd := m.ensureTicks()
	return m, cmd
}

func (m *Model) openDocument(path string) {
	wasLoading := m.session.LoadActive()
	if err := m.session.Open(expandHome(path)); err != nil {
		m.setError(err)
		m.cursor = 0
		return
	}
	m.cursor, m.top = 0, 0
	m.rememberDir(m.session.Path())
	msg := "Opened " + m.session.Name()
	if wasLoading {
		msg += "; stopped loading the previous document"
	}
	m.setNotice(msg)
}

func (m Model) newDocument() (tea.Model, tea.Cmd) {
	if err := m.session.New(); err != nil {
		m.setError(err)
		return m, nil
	}
	m.cursor, m.top = 0, 0
	m.setNotice("New document")
	cmd := m.ensureTicks()
	return m, cmd
}

func (m Model) promptSave(pages [2]int) (tea.Model, tea.Cmd) {
	if !m.requireDocument() {
		return m, nil
	}
	value := m.session.Path()
	if value == "" {
		value = filepath.Join(m.startDir(), editor.UntitledName)
	}
	title := "Save as"
	if pages != [2]int{} {
		title = fmt.Sprintf("Save pages %d-%d as", pages[0], pages[1])
	}
	p := newPrompt(promptSavePath, title, "Destination PDF path", value)
	p.pages = pages
	m.modal = p
	return m, nil
}

// promptPageRange asks for a 1-based range, offered only when the document
// has at least minPages pages.
func (m Model) promptPageRange(kind promptKind, title string, minPages int) (tea.Model, tea.Cmd) {
	if !m.requireDocument() {
		return m, nil
	}
	n := m.session.PageCount()
	if n < minPages {
		m.setNotice(fmt.Sprintf("%s needs at least %d pages", title, minPages))
		return m, nil
	}
	p := newPrompt(kind, title, fmt.Sprintf("from-to, between 1 and %d", n), fmt.Sprintf("1-%d", n))
	p.validate = rangeValidator(n)
	m.modal = p
	return m, nil
}

func (m *Model) deleteSelected() {
	if !m.requireDocument() {
		return
	}
	index, err := m.session.DeleteSelected()
	if err != nil {
		m.setError(err)
		return
	}
	m.setNotice(fmt.Sprintf("Deleted page %d", index+1))
	m.selectPage(min(index, m.session.PageCount()-1))
	m.art.prune()
}

func (m *Model) rotate(delta int) {
	if !m.requireDocument() {
		return
	}
	index, ok := m.session.Selected()
	if !ok {
		m.setNotice("Select a page first")
		return
	}
	if _, err := m.session.Rotate(index, delta); err != nil {
		m.setError(err)
		return
	}
	m.art.prune()
}

func (m *Model) requireDocument() bool {
	if m.session.Document() == nil {
		m.setError(editor.ErrNoDocument)
		return false
	}
	return true
}

// insertPosition is just after the selected page, or the end of the document.
func (m Model) insertPosition() int {
	if sel, ok := m.session.Selected(); ok {
		return sel + 1
	}
	return m.session.PageCount()
}

func (m Model) insertHint() string {
	at := m.insertPosition()
	if at == 0 {
		return "Pages go at the start"
	}
	return fmt.Sprintf("Pages go after page %d", at)
}

func (m *Model) moveCursor(delta int) {
	n := m.session.PageCount()
	if n == 0 {
		return
	}
	m.cursor = min(max(m.cursor+delta, 0), n-1)
	_ = m.session.Select(m.cursor)
	m.scrollToCursor()
}

// selectPage moves the cursor to index and selects it, if it exists.
func (m *Model) selectPage(index int) {
	if index < 0 || index >= m.session.PageCount() {
		m.clampCursor()
		return
	}
	m.cursor = index
	_ = m.session.Select(index)
	m.scrollToCursor()
}

// syncCursor follows the selection, which inserts may have shifted.
func (m *Model) syncCursor() {
	if sel, ok := m.session.Selected(); ok {
		m.cursor = sel
	}
	m.clampCursor()
}

func (m *Model) clampCursor() {
	n := m.session.PageCount()
	if n == 0 {
		m.cursor, m.top = 0, 0
		return
	}
	m.cursor = min(max(m.cursor, 0), n-1)
	m.scrollToCursor()
}

func (m *Model) setNotice(s string) {
	m.notice, m.noticeErr = s, false
}

func (m *Model) setError(err error) {
	m.notice, m.noticeErr = errorText(err), true
	m.log.Debug().Err(err).Msg("action failed")
}

// errorText turns engine errors into a status line.
func errorText(err error) string {
	var batch *editor.BatchError
	switch {
	case errors.Is(err, editor.ErrBusy):
		return "Wait for the current load or save to finish"
	case errors.Is(err, editor.ErrNoDocument):
		return "Open or create a document first"
	case errors.As(err, &batch):
		return fmt.Sprintf("Stopped at %s after inserting %d pages: %v", filepath.Base(batch.Path), batch.Inserted, batch.Err)
	case document.IsKind(err, document.KindCapacity):
		return "At least one page must remain"
	}
	return err.Error()
}

// handleLoadTick drains one preview queue item.
func (m Model) handleLoadTick() (tea.Model, tea.Cmd) {
	if ev, ok := m.session.PollLoad(); ok {
		m.applyEvent(ev)
	}
	if m.session.LoadActive() {
		return m, loadTickCmd(m.loadTick)
	}
	m.loadTicking = false
	return m, nil
}

func (m Model) handleSaveTick() (tea.Model, tea.Cmd) {
	if ev, ok := m.session.PollSave(); ok {
		m.applyEvent(ev)
	}
	if m.session.SaveActive() {
		return m, saveTickCmd(m.saveTick)
	}
	m.saveTicking = false
	return m, nil
}

func (m *Model) applyEvent(ev editor.Event) {
	switch ev.Kind {
	case editor.EventPageLoaded:
		m.setNotice(fmt.Sprintf("Loading page %d of %d", ev.Done, ev.Total))
		if _, ok := m.session.Selected(); !ok && ev.Index == m.cursor {
			_ = m.session.Select(m.cursor)
		}
	case editor.EventLoadFinished:
		switch ev.Load {
		case editor.LoadCompleted:
			m.setNotice(fmt.Sprintf("%s: %d pages", m.session.Name(), ev.Total))
		case editor.LoadCancelled:
			m.setNotice(fmt.Sprintf("Preview loading stopped after %d of %d pages", ev.Done, ev.Total))
		case editor.LoadFailed:
			m.setError(fmt.Errorf("preview loading failed after %d of %d pages: %w", ev.Done, ev.Total, ev.Err))
		}
		if _, ok := m.session.Selected(); !ok {
			m.selectPage(m.cursor)
		}
		m.art.prune()
	case editor.EventSaveFinished:
		if ev.Err != nil {
			m.setError(ev.Err)
			return
		}
		m.setNotice(fmt.Sprintf("Saved %s (%d pages)", filepath.Base(ev.Save.Path), ev.Save.Pages))
	}
}

// ensureTicks restarts whichever poll chain a new load or save needs.
func (m *Model) ensureTicks() tea.Cmd {
	var cmds []tea.Cmd
	if m.session.LoadActive() && !m.loadTicking {
		m.loadTicking = true
		cmds = append(cmds, loadTickCmd(m.loadTick))
	}
	if m.session.SaveActive() && !m.saveTicking {
		m.saveTicking = true
		cmds = append(cmds, saveTickCmd(m.saveTick))
	}
	return tea.Batch(cmds...)
}

// startPath prefills the open prompt: the current file, else the last directory.
func (m Model) startPath() string {
	if p := m.session.Path(); p != "" {
		return p
	}
	return m.startDir()
}

func (m Model) startDir() string {
	dir := m.prefs.Dir()
	if dir == "" {
		dir, _ = os.Getwd()
	}
	if dir == "" {
		return ""
	}
	return dir + string(filepath.Separator)
}

func (m *Model) rememberDir(path string) {
	path = expandHome(path)
	if path == "" {
		return
	}
	dir, err := filepath.Abs(filepath.Dir(path))
	if err != nil || dir == m.prefs.LastDir {
		return
	}
	m.prefs.LastDir = dir
	m.savePrefs()
}

func (m Model) savePrefs() {
	if m.prefsPath == "-" {
		return
	}
	if err := prefs.Save(m.prefsPath, m.prefs); err != nil {
		m.log.Warn().Err(err).Msg("save preferences")
	}
}

func paperLabel(name string) string {
	if strings.TrimSpace(name) == "" {
		return document.OriginalSize
	}
	return name
}

func expandHome(path string) string {
	path = strings.TrimSpace(path)
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

// Messages

type loadTickMsg time.Time

type saveTickMsg time.Time

// Commands

func loadTickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return loadTickMsg(t)
	})
}

func saveTickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return saveTickMsg(t)
	})
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && m.ctx.Err() != nil {
		return nil
	}
	return err
}
