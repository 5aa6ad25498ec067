package sim

import (
	"fmt"
	"maps"
	"math"
	"os"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"petswarm-sim/internal/config"
	"petswarm-sim/internal/pickup"
	"petswarm-sim/internal/swarm"
	"petswarm-sim/internal/telemetry"
)

// teaProgram abstracts bubbletea.Program for testing.
type teaProgram interface {
	Send(tea.Msg)
}

// logMsg carries a log line for the viewport.
type logMsg struct{ line string }

// hitMsg carries a damage log line and row data.
type hitMsg struct {
	line string
	row  pickup.DamageRow
}

// swarmMsg carries a swarm event log line.
type swarmMsg struct{ line string }

// stateMsg carries a simulation state update.
type stateMsg struct{ telemetry.SimulationStateRow }

// adminMsg reports admin UI status.
type adminMsg struct{ active bool }

// petMsg carries the latest row for one pet.
type petMsg struct{ telemetry.PetRow }

type commanderMsg struct{ c Commander }

// cmdResultMsg reports the outcome of a command typed into the prompt.
type cmdResultMsg struct{ line string }

const (
	maxLogLines         = 1000
	maxSectionHeightPct = 0.2
)

// TUIWriter renders telemetry using a bubbletea TUI.
type TUIWriter struct {
	program    teaProgram
	petColors  map[string]string
	colorIdx   int
	done       chan struct{}
	sendSignal atomic.Bool
}

// NewTUIWriter starts a bubbletea program and returns a TUIWriter.
func NewTUIWriter(cfg *config.SimulationConfig) *TUIWriter {
	pc := make(map[string]string)
	w := &TUIWriter{petColors: pc, done: make(chan struct{})}
	w.sendSignal.Store(true)
	for _, p := range cfg.Pets {
		w.petColor(p.Name)
	}
	// the model reads its own copy; the writer keeps assigning colors
	m := newTUIModel(cfg, maps.Clone(pc))
	p := tea.NewProgram(m, tea.WithAltScreen())
	w.program = p
	go func() {
		_, _ = p.Run()
		close(w.done)
		if w.sendSignal.Load() {
			if proc, err := os.FindProcess(os.Getpid()); err == nil {
				_ = proc.Signal(os.Interrupt)
			}
		}
	}()
	return w
}

func (w *TUIWriter) petColor(name string) string {
	if c, ok := w.petColors[name]; ok {
		return c
	}
	c := petPalette[w.colorIdx%len(petPalette)]
	w.petColors[name] = c
	w.colorIdx++
	return c
}

// Write implements TelemetryWriter.
func (w *TUIWriter) Write(row telemetry.PetRow) error {
	stateColor := colorGreen
	if row.State == string(swarm.Attacking) {
		stateColor = colorRed
	}
	line := fmt.Sprintf("%s[%s]%s %spet=%s%s %sid=%s%s %spos=(%.2f,%.2f,%.2f)%s %sslot=%d/%d%s %sstate=%s%s",
		colorGray, row.Timestamp.Format(time.RFC3339), colorReset,
		w.petColor(row.PetName), row.PetName, colorReset,
		colorWhite, shortID(row.PetID), colorReset,
		colorYellow, row.X, row.Y, row.Z, colorReset,
		colorBlue, row.Slot, row.Total, colorReset,
		stateColor, row.State, colorReset,
	)
	if row.TargetID != "" {
		line += fmt.Sprintf(" %starget=%s%s", colorMagenta, shortID(row.TargetID), colorReset)
	}
	w.program.Send(logMsg{line: line})
	w.program.Send(petMsg{row})
	return nil
}

// WriteDamage implements DamageWriter.
func (w *TUIWriter) WriteDamage(d pickup.DamageRow) error {
	line := fmt.Sprintf("%s[%s]%s %sHIT%s %spet=%s%s %spickup=%s%s %skind=%s%s %sdmg=%.1f%s %shp=%.1f%s",
		colorGray, d.Timestamp.Format(time.RFC3339), colorReset,
		colorRed, colorReset,
		colorWhite, shortID(d.PetID), colorReset,
		colorBlue, shortID(d.PickupID), colorReset,
		colorMagenta, d.PickupKind, colorReset,
		colorRed, d.Damage, colorReset,
		colorGreen, d.HealthAfter, colorReset)
	if d.Destroyed {
		line += fmt.Sprintf(" %sdestroyed +%d%s", colorYellow, d.Reward, colorReset)
	}
	w.program.Send(hitMsg{line: line, row: d})
	return nil
}

// WriteSwarmEvent implements SwarmEventWriter.
func (w *TUIWriter) WriteSwarmEvent(e telemetry.SwarmEventRow) error {
	line := fmt.Sprintf("%s[%s]%s %sSWARM%s %stype=%s%s %spets=%d%s",
		colorGray, e.Timestamp.Format(time.RFC3339), colorReset,
		colorCyan, colorReset,
		colorBlue, e.EventType, colorReset,
		colorWhite, len(e.PetIDs), colorReset)
	if e.PickupID != "" {
		line += fmt.Sprintf(" %spickup=%s%s", colorMagenta, shortID(e.PickupID), colorReset)
	}
	if e.Detail != "" {
		line += " " + e.Detail
	}
	w.program.Send(swarmMsg{line: line})
	return nil
}

// WriteHatch implements HatchWriter.
func (w *TUIWriter) WriteHatch(h telemetry.HatchRow) error {
	line := fmt.Sprintf("%s[%s]%s %sHATCH%s egg=%s pet=%s%s%s price=%d coins=%d",
		colorGray, h.Timestamp.Format(time.RFC3339), colorReset,
		colorMagenta, colorReset,
		h.Egg, w.petColor(h.Pet), h.Pet, colorReset, h.Price, h.BalanceAfter)
	w.program.Send(swarmMsg{line: line})
	return nil
}

// WriteState implements StateWriter.
func (w *TUIWriter) WriteState(row telemetry.SimulationStateRow) error {
	w.program.Send(stateMsg{SimulationStateRow: row})
	return nil
}

// WriteBatch outputs multiple pet rows.
func (w *TUIWriter) WriteBatch(rows []telemetry.PetRow) error {
	for _, r := range rows {
		_ = w.Write(r)
	}
	return nil
}

// SetAdminStatus updates the admin UI indicator.
func (w *TUIWriter) SetAdminStatus(active bool) {
	w.program.Send(adminMsg{active: active})
}

// SetCommander hands the TUI the simulator's command surface.
func (w *TUIWriter) SetCommander(c Commander) {
	w.program.Send(commanderMsg{c: c})
}

// Close shuts down the TUI program and waits for cleanup.
func (w *TUIWriter) Close() error {
	w.sendSignal.Store(false)
	if w.program != nil {
		w.program.Send(tea.Quit())
	}
	if w.done != nil {
		<-w.done
	}
	return nil
}

type tuiModel struct {
	cfg          *config.SimulationConfig
	table        table.Model
	vp           viewport.Model
	hitVP        viewport.Model
	swarmVP      viewport.Model
	logs         []string
	hitLogs      []string
	swarmLogs    []string
	state        telemetry.SimulationStateRow
	admin        bool
	wrap         bool
	autoscroll   bool
	summary      bool
	help         bool
	showMap      bool
	showEggs     bool
	header       string
	headerHeight int
	height       int
	petColors    map[string]string
	pets         map[string]telemetry.PetRow
	pickups      []PickupView
	commander    Commander
	prompt       textinput.Model
	promptOpen   bool
	lastResult   string
	hits         int
	destroyed    int
	earnedByKind map[pickup.Kind]int
}

func newTUIModel(cfg *config.SimulationConfig, petColors map[string]string) tuiModel {
	cols := []table.Column{
		{Title: "Config", Width: 18},
		{Title: "Value", Width: 10},
		{Title: "Config", Width: 18},
		{Title: "Value", Width: 10},
	}
	rows := []table.Row{
		{"Starting Coins", fmt.Sprintf("%d", cfg.Session.StartingCoins), "Row Width", fmt.Sprintf("%d", cfg.Formation.RowWidth)},
		{"Pet Kinds", fmt.Sprintf("%d", len(cfg.Pets)), "Spacing", fmt.Sprintf("%.2f", cfg.Formation.Spacing)},
		{"Max Pickups", fmt.Sprintf("%d", cfg.Spawner.MaxLive), "Spawn Every (s)", fmt.Sprintf("%.1f", cfg.Spawner.IntervalS)},
		{"Terrain", cfg.Terrain.Type, "Scenario", cfg.Scenario},
	}
	t := table.New(table.WithColumns(cols), table.WithRows(rows), table.WithHeight(len(rows)+1))
	if petColors == nil {
		petColors = make(map[string]string)
	}
	return tuiModel{
		cfg:          cfg,
		table:        t,
		vp:           viewport.New(0, 0),
		hitVP:        viewport.New(0, 0),
		swarmVP:      viewport.New(0, 0),
		autoscroll:   true,
		showEggs:     true,
		petColors:    petColors,
		pets:         make(map[string]telemetry.PetRow),
		earnedByKind: make(map[pickup.Kind]int),
	}
}

func (m tuiModel) Init() tea.Cmd { return nil }

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		tableWidth := msg.Width
		if m.showEggs {
			tableWidth = msg.Width / 2
		}
		m.table.SetWidth(tableWidth)
		m.vp.Width = msg.Width
		m.hitVP.Width = msg.Width
		m.swarmVP.Width = msg.Width
		m.height = msg.Height
		m.refreshHeader()
		m.updateViewportHeight()
		m.refreshViewport()
		m.refreshHits()
		m.refreshSwarmEvents()
	case tea.KeyMsg:
		if m.promptOpen {
			switch msg.Type {
			case tea.KeyEnter:
				line := m.prompt.Value()
				m.promptOpen = false
				m.updateViewportHeight()
				return m, runCommand(m.commander, line)
			case tea.KeyEsc:
				m.promptOpen = false
				m.updateViewportHeight()
			default:
				var cmd tea.Cmd
				m.prompt, cmd = m.prompt.Update(msg)
				return m, cmd
			}
			return m, nil
		}
		if m.help {
			switch msg.String() {
			case "?", "h", "esc":
				m.help = false
				m.updateViewportHeight()
			}
			return m, nil
		}
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "w":
			m.wrap = !m.wrap
			m.refreshViewport()
			m.refreshHeader()
			m.updateViewportHeight()
			return m, nil
		case "s":
			m.autoscroll = !m.autoscroll
			if m.autoscroll {
				m.vp.GotoBottom()
				m.hitVP.GotoBottom()
				m.swarmVP.GotoBottom()
			}
			return m, nil
		case "a":
			return m, runCommand(m.commander, "attack "+AttackTarget)
		case ":", "c":
			m.prompt = textinput.New()
			m.prompt.Placeholder = "attack <id|nearest> | buy <egg>"
			m.prompt.Focus()
			m.promptOpen = true
			m.updateViewportHeight()
			return m, nil
		case "e":
			m.showEggs = !m.showEggs
			if m.showEggs {
				m.table.SetWidth(m.vp.Width / 2)
			} else {
				m.table.SetWidth(m.vp.Width)
			}
			m.refreshHeader()
			m.updateViewportHeight()
			return m, nil
		case "m":
			m.showMap = !m.showMap
			m.updateViewportHeight()
			return m, nil
		case "t":
			m.summary = !m.summary
			m.updateViewportHeight()
			return m, nil
		case "h", "?":
			m.help = !m.help
			m.updateViewportHeight()
			return m, nil
		}
		if !m.autoscroll {
			switch msg.String() {
			case "j", "down":
				m.vp.LineDown(1)
				m.hitVP.LineDown(1)
				m.swarmVP.LineDown(1)
			case "k", "up":
				m.vp.LineUp(1)
				m.hitVP.LineUp(1)
				m.swarmVP.LineUp(1)
			case "pgdown", "ctrl+n":
				m.vp.LineDown(10)
				m.hitVP.LineDown(10)
				m.swarmVP.LineDown(10)
			case "pgup", "ctrl+p":
				m.vp.LineUp(10)
				m.hitVP.LineUp(10)
				m.swarmVP.LineUp(10)
			default:
				var cmd tea.Cmd
				m.vp, cmd = m.vp.Update(msg)
				return m, cmd
			}
		}
		return m, nil
	case logMsg:
		m.logs = appendCapped(m.logs, msg.line)
		m.refreshViewport()
	case hitMsg:
		m.hitLogs = appendCapped(m.hitLogs, msg.line)
		m.hits++
		if msg.row.Destroyed {
			m.destroyed++
			m.earnedByKind[msg.row.PickupKind] += msg.row.Reward
		}
		m.updateViewportHeight()
		m.refreshHits()
		m.refreshViewport()
	case swarmMsg:
		m.swarmLogs = appendCapped(m.swarmLogs, msg.line)
		m.updateViewportHeight()
		m.refreshSwarmEvents()
		m.refreshViewport()
	case petMsg:
		m.pets[msg.PetID] = msg.PetRow
	case stateMsg:
		m.state = msg.SimulationStateRow
		if lister, ok := m.commander.(pickupLister); ok && m.showMap {
			m.pickups = lister.Pickups()
		}
		// pets that left the swarm stop reporting
		if len(m.pets) > m.state.Pets {
			m.prunePets()
		}
	case adminMsg:
		m.admin = msg.active
	case commanderMsg:
		m.commander = msg.c
	case cmdResultMsg:
		m.lastResult = msg.line
		m.swarmLogs = appendCapped(m.swarmLogs, msg.line)
		m.refreshSwarmEvents()
	}
	return m, nil
}

// pickupLister is implemented by commanders that can list live pickups.
type pickupLister interface {
	Pickups() []PickupView
}

func appendCapped(lines []string, line string) []string {
	lines = append(lines, line)
	if len(lines) > maxLogLines {
		lines = lines[len(lines)-maxLogLines:]
	}
	return lines
}

func (m *tuiModel) prunePets() {
	var newest time.Time
	for _, p := range m.pets {
		if p.Timestamp.After(newest) {
			newest = p.Timestamp
		}
	}
	for id, p := range m.pets {
		if p.Timestamp.Before(newest) {
			delete(m.pets, id)
		}
	}
}

// parseCommand splits a prompt line into a command and its argument.
func parseCommand(line string) (name, arg string, err error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", "", fmt.Errorf("empty command")
	}
	switch fields[0] {
	case "attack":
		arg = AttackTarget
		if len(fields) > 1 {
			arg = fields[1]
		}
		return "attack", arg, nil
	case "buy":
		if len(fields) < 2 {
			return "", "", fmt.Errorf("usage: buy <egg>")
		}
		return "buy", fields[1], nil
	}
	return "", "", fmt.Errorf("unknown command %q", fields[0])
}

// runCommand executes a prompt line against the simulator off the UI loop.
func runCommand(c Commander, line string) tea.Cmd {
	return func() tea.Msg {
		if c == nil {
			return cmdResultMsg{line: fmt.Sprintf("%sCMD%s simulator not attached", colorRed, colorReset)}
		}
		name, arg, err := parseCommand(line)
		if err != nil {
			return cmdResultMsg{line: fmt.Sprintf("%sCMD%s %v", colorRed, colorReset, err)}
		}
		switch name {
		case "attack":
			res, err := c.Attack(arg)
			if err != nil {
				return cmdResultMsg{line: fmt.Sprintf("%sCMD%s attack failed: %v", colorRed, colorReset, err)}
			}
			return cmdResultMsg{line: fmt.Sprintf("%sCMD%s attack %s %s with %d pets", colorGreen, colorReset, res.PickupKind, shortID(res.PickupID), len(res.PetIDs))}
		default:
			res, err := c.BuyEgg(arg)
			if err != nil {
				return cmdResultMsg{line: fmt.Sprintf("%sCMD%s buy failed: %v", colorRed, colorReset, err)}
			}
			return cmdResultMsg{line: fmt.Sprintf("%sCMD%s %s hatched %s, %d coins left", colorGreen, colorReset, res.Egg, res.Pet.Name, res.BalanceAfter)}
		}
	}
}

func (m *tuiModel) refreshHeader() {
	m.header = m.renderHeader()
	m.headerHeight = lipgloss.Height(m.header)
}

func (m *tuiModel) updateViewportHeight() {
	bottomHeight := lipgloss.Height(m.renderBottom())
	maxLines := m.maxSectionLines()

	m.hitVP.Height = clampLines(len(m.hitLogs), maxLines)
	m.swarmVP.Height = clampLines(len(m.swarmLogs), maxLines)

	promptHeight := 0
	if m.promptOpen {
		promptHeight = 2
	}
	h := m.height - m.headerHeight - bottomHeight - (1 + m.hitVP.Height) - (1 + m.swarmVP.Height) - promptHeight - 4
	if h < 0 {
		h = 0
	}
	m.vp.Height = h
	if m.autoscroll {
		m.hitVP.GotoBottom()
		m.swarmVP.GotoBottom()
		m.vp.GotoBottom()
	}
}

func clampLines(n, max int) int {
	if n == 0 {
		n = 1
	}
	if n > max {
		n = max
	}
	return n
}

func (m *tuiModel) refreshViewport() {
	var lines []string
	for _, l := range m.logs {
		if m.wrap {
			lines = append(lines, wordwrap.String(l, m.vp.Width))
		} else {
			lines = append(lines, l)
		}
	}
	m.vp.SetContent(strings.Join(lines, "\n"))
	if m.autoscroll {
		m.vp.GotoBottom()
	}
}

func (m *tuiModel) refreshHits() {
	content := "none"
	if len(m.hitLogs) > 0 {
		content = strings.Join(m.hitLogs, "\n")
	}
	m.hitVP.SetContent(content)
	if m.autoscroll {
		m.hitVP.GotoBottom()
	}
}

func (m *tuiModel) refreshSwarmEvents() {
	content := "none"
	if len(m.swarmLogs) > 0 {
		content = strings.Join(m.swarmLogs, "\n")
	}
	m.swarmVP.SetContent(content)
	if m.autoscroll {
		m.swarmVP.GotoBottom()
	}
}

func (m tuiModel) maxSectionLines() int {
	h := int(float64(m.height) * maxSectionHeightPct)
	if h < 1 {
		h = 1
	}
	return h
}

func (m tuiModel) View() string {
	if m.help {
		return m.renderHelp()
	}
	bottom := m.renderBottom()
	divider := strings.Repeat("─", m.vp.Width)
	main := m.vp.View()
	if m.showMap {
		main = m.renderMap()
	}
	sections := []string{
		m.header,
		divider,
		main,
		divider,
		"Hits:",
		m.hitVP.View(),
		divider,
		"Swarm Events:",
		m.swarmVP.View(),
	}
	if m.promptOpen {
		sections = append(sections, divider, "Command - Enter to run, Esc to cancel: "+m.prompt.View())
	}
	sections = append(sections, divider, bottom)
	return strings.Join(sections, "\n")
}

func (m tuiModel) renderHeader() string {
	tableView := m.table.View()
	if !m.showEggs {
		return tableView
	}
	width := m.vp.Width/2 - 1
	eggs := renderEggTree(m.cfg, m.petColors, m.wrap, width)
	sep := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render("│")
	return lipgloss.JoinHorizontal(lipgloss.Top, tableView, sep, eggs)
}

func renderEggTree(cfg *config.SimulationConfig, colors map[string]string, wrap bool, width int) string {
	var b strings.Builder
	b.WriteString("Eggs\n")
	for i, e := range cfg.Eggs {
		prefix := "├─"
		if i == len(cfg.Eggs)-1 {
			prefix = "└─"
		}
		var total float64
		for _, d := range e.Drops {
			total += d.Weight
		}
		parts := make([]string, 0, len(e.Drops))
		for _, d := range e.Drops {
			pct := 0.0
			if total > 0 {
				pct = d.Weight / total * 100
			}
			parts = append(parts, fmt.Sprintf("%s%s%s %.0f%%", colors[d.Pet], d.Pet, colorReset, pct))
		}
		line := fmt.Sprintf("%s %s (%d) - %s", prefix, e.Name, e.Price, strings.Join(parts, ", "))
		if wrap && width > 0 {
			line = wordwrap.String(line, width)
		}
		b.WriteString(line + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m tuiModel) renderSummary() string {
	byName := make(map[string]int)
	attacking := 0
	for _, p := range m.pets {
		byName[p.PetName]++
		if p.State == string(swarm.Attacking) {
			attacking++
		}
	}
	names := make([]string, 0, len(byName))
	for n := range byName {
		names = append(names, n)
	}
	sort.Strings(names)
	var petParts []string
	for _, n := range names {
		petParts = append(petParts, fmt.Sprintf("%s%s%s=%d", m.petColors[n], n, colorReset, byName[n]))
	}
	kinds := make([]string, 0, len(m.earnedByKind))
	for k := range m.earnedByKind {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)
	var earnParts []string
	for _, k := range kinds {
		earnParts = append(earnParts, fmt.Sprintf("%s=%d", k, m.earnedByKind[pickup.Kind(k)]))
	}
	summary := fmt.Sprintf("%sSUMMARY%s %spets=%d%s %sattacking=%d%s %shits=%d%s %sdestroyed=%d%s",
		colorBlue, colorReset, colorGreen, len(m.pets), colorReset, colorRed, attacking, colorReset,
		colorMagenta, m.hits, colorReset, colorYellow, m.destroyed, colorReset)
	if len(petParts) > 0 {
		summary += " [" + strings.Join(petParts, " ") + "]"
	}
	if len(earnParts) > 0 {
		summary += fmt.Sprintf(" %searned{%s}%s", colorYellow, strings.Join(earnParts, " "), colorReset)
	}
	return summary
}

func indicator(on bool) string {
	c := lipgloss.Color("9")
	if on {
		c = lipgloss.Color("10")
	}
	return lipgloss.NewStyle().Foreground(c).Render("●")
}

func (m tuiModel) renderBottom() string {
	state := fmt.Sprintf("%sSTATE%s %stick=%d%s %scoins=%d%s %searned=%d%s %spets=%d%s %spickups=%d%s",
		colorBlue, colorReset,
		colorGray, m.state.Tick, colorReset,
		colorYellow, m.state.Coins, colorReset,
		colorGreen, m.state.Earned, colorReset,
		colorMagenta, m.state.Pets, colorReset,
		colorCyan, m.state.Pickups, colorReset)
	if m.state.Phase != "" {
		state += fmt.Sprintf(" phase=%s", m.state.Phase)
	}
	line := fmt.Sprintf("%s | Admin UI %s | Wrap %s | Scroll %s | Summary %s | Map %s | Eggs %s",
		state, indicator(m.admin), indicator(m.wrap), indicator(m.autoscroll), indicator(m.summary), indicator(m.showMap), indicator(m.showEggs))
	if m.summary {
		return fmt.Sprintf("%s\n%s", m.renderSummary(), line)
	}
	return line
}

func (m tuiModel) renderHelp() string {
	lines := []string{
		"Key Bindings:",
		" q    quit",
		" a    attack the nearest pickup",
		" :/c  command prompt (attack <id|nearest>, buy <egg>)",
		" w    toggle wrap",
		" s    toggle auto-scroll",
		" t    toggle summary footer",
		" m    toggle top-down map",
		" e    toggle egg catalog",
		" h/?  toggle this help view",
		"",
		"When auto-scroll is disabled:",
		" j/k or up/down    scroll one line",
		" pgdown/pgup       scroll a page",
	}
	return strings.Join(lines, "\n")
}

// yawIcon maps a yaw (0 faces +Z, drawn as up) to an arrow.
func yawIcon(yaw float64) string {
	deg := math.Mod(yaw*180/math.Pi, 360)
	if deg < 0 {
		deg += 360
	}
	switch {
	case deg >= 45 && deg < 135:
		return ">"
	case deg >= 135 && deg < 225:
		return "v"
	case deg >= 225 && deg < 315:
		return "<"
	default:
		return "^"
	}
}

func pickupIcon(k pickup.Kind) (string, string) {
	switch k {
	case pickup.KindChest:
		return "C", colorYellow
	case pickup.KindCrystal:
		return "*", colorCyan
	default:
		return "o", colorYellow
	}
}

// renderMap draws pets and pickups on the spawn area seen from above.
func (m tuiModel) renderMap() string {
	width := m.vp.Width
	height := m.vp.Height
	if width < 2 || height < 2 {
		return "map needs a larger window"
	}
	a := m.cfg.Spawner.Area
	minX, maxX, minZ, maxZ := a.MinX, a.MaxX, a.MinZ, a.MaxZ
	if maxX <= minX || maxZ <= minZ {
		minX, maxX, minZ, maxZ = -20, 20, -20, 20
	}
	height-- // legend line
	grid := make([][]string, height)
	for i := range grid {
		row := make([]string, width)
		for j := range row {
			row[j] = "."
		}
		grid[i] = row
	}
	place := func(x, z float64) (int, int, bool) {
		col := int((x - minX) / (maxX - minX) * float64(width-1))
		row := int((maxZ - z) / (maxZ - minZ) * float64(height-1))
		return col, row, col >= 0 && col < width && row >= 0 && row < height
	}
	for _, p := range m.pickups {
		if c, r, ok := place(p.X, p.Z); ok {
			sym, col := pickupIcon(p.Kind)
			grid[r][c] = col + sym + colorReset
		}
	}
	for _, p := range m.pets {
		if c, r, ok := place(p.X, p.Z); ok {
			col := m.petColors[p.PetName]
			if col == "" {
				col = colorWhite
			}
			grid[r][c] = col + yawIcon(p.Yaw) + colorReset
		}
	}
	if c, r, ok := place(m.state.LeaderX, m.state.LeaderZ); ok {
		grid[r][c] = colorWhite + "@" + colorReset
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("x %.0f..%.0f z %.0f..%.0f +Z↑  @=player o=coin C=chest *=crystal\n", minX, maxX, maxZ, minZ))
	for _, row := range grid {
		b.WriteString(strings.Join(row, ""))
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}
