package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"stockweather/internal/config"
	"stockweather/internal/util"
	"stockweather/internal/view"
	"stockweather/pkg/stockweather"
)

// Styles.
var (
	titleBarStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("4"))
	detailBarStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("6"))
	sectorBarStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("3"))
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("8"))
	bannerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("1"))
	tabOnStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("6"))
	tabOffStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	colHeaderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	tickerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	tickerHlStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("75")) // brighter blue for the selected row
	gainStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	lossStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	priceStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	sectionStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	highlightBG    = lipgloss.Color("236") // dark grey background
)

// hlStyle returns a copy of s with the highlight background applied when hl is true.
func hlStyle(s lipgloss.Style, hl bool) lipgloss.Style {
	if hl {
		return s.Background(highlightBG)
	}
	return s
}

// probStyle colors a probability by its weather bucket edge: likely risers
// green, likely fallers red, mixed neutral.
func probStyle(p float64) lipgloss.Style {
	switch {
	case p >= 0.6:
		return gainStyle
	case p < 0.4:
		return lossStyle
	default:
		return priceStyle
	}
}

type screen int

const (
	screenRankings screen = iota
	screenDetail
	screenSectors
)

// Messages.
type tickMsg time.Time

type rankingsMsg struct {
	gen  int
	data *stockweather.Rankings
	err  error
}

type detailMsg struct {
	gen    int
	detail *stockweather.StockDetail
	err    error
}

type sectorsMsg struct {
	sectors []stockweather.SectorWeather
	err     error
}

func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Model.
type model struct {
	client   *stockweather.Client
	rankings *view.RankingView
	detail   *view.DetailView

	screen    screen
	selection int // row index within the active tab

	sectors        []stockweather.SectorWeather
	sectorsErr     string
	sectorsLoading bool

	refresh       time.Duration
	sectorMap     bool // sector map screen enabled
	newsSentiment bool // show news sentiment on detail

	viewport      viewport.Model
	ready         bool
	width, height int
	failed        string // non-empty after a render panic until explicit reset

	rootCtx    context.Context
	rootCancel context.CancelFunc
	logger     *slog.Logger
}

func initialModel(client *stockweather.Client, cfg *config.Config, ctx context.Context, cancel context.CancelFunc, logger *slog.Logger) model {
	return model{
		client:        client,
		rankings:      view.NewRankingView(stockweather.MarketAll, cfg.Analysis.RankingLimit),
		detail:        view.NewDetailView(),
		refresh:       time.Duration(cfg.Client.RefreshMS) * time.Millisecond,
		sectorMap:     cfg.Client.SectorMap,
		newsSentiment: cfg.Client.NewsSentiment,
		rootCtx:       ctx,
		rootCancel:    cancel,
		logger:        logger,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.fetchRankings(), tickCmd(m.refresh))
}

// fetchRankings starts a rankings fetch for the current filter. Beginning a
// fetch cancels any in-flight one; a superseded response is dropped on apply.
func (m *model) fetchRankings() tea.Cmd {
	gen, ctx := m.rankings.Begin(m.rootCtx)
	market, limit := m.rankings.Market(), m.rankings.Limit()
	client := m.client
	return func() tea.Msg {
		data, err := client.Rankings(ctx, market, limit)
		return rankingsMsg{gen: gen, data: data, err: err}
	}
}

func (m *model) openDetail(ticker string) tea.Cmd {
	gen, ctx := m.detail.Open(m.rootCtx, ticker)
	client := m.client
	return func() tea.Msg {
		d, err := client.Detail(ctx, ticker)
		return detailMsg{gen: gen, detail: d, err: err}
	}
}

func (m *model) fetchSectors() tea.Cmd {
	client := m.client
	ctx := m.rootCtx
	return func() tea.Msg {
		s, err := client.Sectors(ctx)
		return sectorsMsg{sectors: s, err: err}
	}
}

// refreshCurrent refetches whatever the active screen shows. Only explicit
// user action reaches here for detail and sectors; rankings also refresh on
// the timer.
func (m *model) refreshCurrent() tea.Cmd {
	switch m.screen {
	case screenDetail:
		if t := m.detail.Ticker(); t != "" {
			return m.openDetail(t)
		}
		return nil
	case screenSectors:
		m.sectorsLoading = true
		m.sectorsErr = ""
		return m.fetchSectors()
	default:
		return m.fetchRankings()
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.rootCancel()
			return m, tea.Quit
		case "r":
			m.failed = ""
			cmd = m.refreshCurrent()
			m.syncViewport()
			return m, cmd
		case "m":
			if m.screen != screenRankings {
				return m, nil
			}
			if !m.rankings.SetMarket(nextMarket(m.rankings.Market())) {
				return m, nil
			}
			m.selection = 0
			cmd = m.fetchRankings()
			m.syncViewport()
			return m, cmd
		case "tab":
			if m.screen != screenRankings {
				return m, nil
			}
			m.rankings.ToggleTab()
			m.selection = 0
			m.syncViewport()
			m.viewport.GotoTop()
			return m, nil
		case "up", "down":
			if m.screen != screenRankings {
				break // viewport scrolls the detail and sector screens
			}
			rows := tabRows(m.rankings.Snapshot())
			if len(rows) == 0 {
				return m, nil
			}
			if msg.String() == "up" && m.selection > 0 {
				m.selection--
			}
			if msg.String() == "down" && m.selection < len(rows)-1 {
				m.selection++
			}
			m.syncViewport()
			m.ensureVisible()
			return m, nil
		case "enter":
			if m.screen != screenRankings {
				return m, nil
			}
			rows := tabRows(m.rankings.Snapshot())
			if m.selection >= len(rows) {
				return m, nil
			}
			m.screen = screenDetail
			cmd = m.openDetail(rows[m.selection].Ticker)
			m.syncViewport()
			m.viewport.GotoTop()
			return m, cmd
		case "esc":
			switch m.screen {
			case screenDetail:
				m.detail.Close()
				m.screen = screenRankings
			case screenSectors:
				m.screen = screenRankings
			default:
				return m, nil
			}
			m.syncViewport()
			m.viewport.GotoTop()
			return m, nil
		case "w":
			if !m.sectorMap || m.screen == screenDetail {
				return m, nil
			}
			if m.screen == screenSectors {
				m.screen = screenRankings
				m.syncViewport()
				return m, nil
			}
			m.screen = screenSectors
			m.sectorsLoading = true
			m.sectorsErr = ""
			m.syncViewport()
			m.viewport.GotoTop()
			return m, m.fetchSectors()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		vpHeight := m.height - 2 // header and footer bars
		if vpHeight < 1 {
			vpHeight = 1
		}
		if !m.ready {
			m.viewport = viewport.New(m.width, vpHeight)
			m.viewport.MouseWheelEnabled = true
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = vpHeight
		}
		m.syncViewport()
		return m, nil

	case tickMsg:
		// The timer only refreshes rankings; detail and sectors refetch on
		// explicit action.
		if m.screen == screenRankings && m.failed == "" {
			return m, tea.Batch(m.fetchRankings(), tickCmd(m.refresh))
		}
		return m, tickCmd(m.refresh)

	case rankingsMsg:
		if m.rankings.Apply(msg.gen, msg.data, msg.err) {
			if msg.err != nil {
				m.logger.Warn("rankings fetch failed", "error", msg.err)
			}
			if rows := tabRows(m.rankings.Snapshot()); m.selection >= len(rows) {
				m.selection = 0
			}
			m.syncViewport()
		}
		return m, nil

	case detailMsg:
		if m.detail.Apply(msg.gen, msg.detail, msg.err) {
			if msg.err != nil {
				m.logger.Warn("detail fetch failed", "ticker", m.detail.Ticker(), "error", msg.err)
			}
			m.syncViewport()
		}
		return m, nil

	case sectorsMsg:
		m.sectorsLoading = false
		if msg.err != nil {
			m.sectorsErr = fetchErrText(msg.err)
			m.logger.Warn("sectors fetch failed", "error", msg.err)
		} else {
			m.sectors = msg.sectors
			m.sectorsErr = ""
		}
		m.syncViewport()
		return m, nil
	}

	if m.ready {
		m.viewport, cmd = m.viewport.Update(msg)
	}
	return m, cmd
}

// syncViewport re-renders the active screen into the viewport.
func (m *model) syncViewport() {
	if m.ready {
		m.viewport.SetContent(m.safeContent())
	}
}

// safeContent renders the active screen behind the failure boundary: a
// renderer panic is caught and replaced with the fallback screen, which the
// view keeps showing until an explicit reset.
func (m *model) safeContent() string {
	if m.failed != "" {
		return renderFailure(m.failed)
	}
	content, panicked := renderGuarded(m.renderContent)
	if panicked != "" {
		m.logger.Error("render panic", "screen", int(m.screen), "panic", panicked)
		m.failed = panicked
		return renderFailure(panicked)
	}
	return content
}

func renderGuarded(render func() string) (out, panicked string) {
	defer func() {
		if r := recover(); r != nil {
			out = ""
			panicked = fmt.Sprintf("%v", r)
		}
	}()
	return render(), ""
}

func (m *model) renderContent() string {
	var b strings.Builder
	switch m.screen {
	case screenDetail:
		renderDetail(&b, m.detail.Snapshot(), m.newsSentiment, m.width)
	case screenSectors:
		renderSectors(&b, m.sectors, m.sectorsErr, m.sectorsLoading)
	default:
		renderRankings(&b, m.rankings.Snapshot(), m.selection)
	}
	return b.String()
}

// ensureVisible scrolls the viewport so the selected ranking row is visible.
func (m *model) ensureVisible() {
	s := m.rankings.Snapshot()
	line := 2 // tab line and column header
	if s.ErrBanner != "" {
		line++
	}
	line += m.selection
	yOff := m.viewport.YOffset
	vpH := m.viewport.Height
	if line < yOff {
		m.viewport.SetYOffset(line)
	} else if line >= yOff+vpH {
		m.viewport.SetYOffset(line - vpH + 1)
	}
}

func (m model) View() string {
	if !m.ready {
		return "Loading..."
	}

	var headerBar string
	switch m.screen {
	case screenDetail:
		headerText := fmt.Sprintf(" Stock Weather  %s ", m.detail.Ticker())
		headerBar = detailBarStyle.Render(padOrTrunc(headerText, m.width))
	case screenSectors:
		headerBar = sectorBarStyle.Render(padOrTrunc(" Stock Weather  sector map ", m.width))
	default:
		s := m.rankings.Snapshot()
		updated := "--:--:--"
		if !s.FetchedAt.IsZero() {
			updated = s.FetchedAt.Format("15:04:05")
		}
		headerText := fmt.Sprintf(" Stock Weather  %s  %s    updated: %s    refresh: %s ",
			s.Market, s.Tab, updated, m.refresh)
		headerBar = titleBarStyle.Render(padOrTrunc(headerText, m.width))
	}

	footerLeft := footerKeys(m.screen, m.sectorMap)
	footerRight := fmt.Sprintf("%.0f%% ", m.viewport.ScrollPercent()*100)
	gap := m.width - len(footerLeft) - len(footerRight)
	if gap < 0 {
		gap = 0
	}
	footerBar := footerStyle.Render(padOrTrunc(footerLeft+strings.Repeat(" ", gap)+footerRight, m.width))

	return headerBar + "\n" + m.viewport.View() + "\n" + footerBar
}

// footerKeys returns the key help for the active screen.
func footerKeys(s screen, sectorMap bool) string {
	switch s {
	case screenDetail, screenSectors:
		return " esc back  r refresh  pgup/dn scroll  q quit"
	default:
		keys := " q quit  m market  tab gainers/losers  up/dn select  enter detail  r refresh"
		if sectorMap {
			keys += "  w sectors"
		}
		return keys
	}
}

// tabRows returns the rows the active tab shows.
func tabRows(s view.RankingState) []stockweather.Ranking {
	if s.Rankings == nil {
		return nil
	}
	if s.Tab == view.TabLosers {
		return s.Rankings.TopLosers
	}
	return s.Rankings.TopGainers
}

// nextMarket cycles ALL, KR, US.
func nextMarket(m stockweather.Market) stockweather.Market {
	switch m {
	case stockweather.MarketAll:
		return stockweather.MarketKR
	case stockweather.MarketKR:
		return stockweather.MarketUS
	default:
		return stockweather.MarketAll
	}
}

// fetchErrText translates a fetch error into banner text.
func fetchErrText(err error) string {
	var apiErr *stockweather.Error
	if errors.As(err, &apiErr) {
		return apiErr.Message()
	}
	return err.Error()
}

// renderRankings draws the ranking table for the active tab. One row per
// card, in received order.
func renderRankings(b *strings.Builder, s view.RankingState, selected int) {
	gainersTab, losersTab := tabOnStyle, tabOffStyle
	if s.Tab == view.TabLosers {
		gainersTab, losersTab = tabOffStyle, tabOnStyle
	}
	b.WriteString(" ")
	b.WriteString(gainersTab.Render(" GAINERS "))
	b.WriteString(" ")
	b.WriteString(losersTab.Render(" LOSERS "))
	if s.Loading {
		b.WriteString(dimStyle.Render("  refreshing..."))
	}
	b.WriteString("\n")

	if s.ErrBanner != "" {
		b.WriteString(bannerStyle.Render(" " + s.ErrBanner + " "))
		b.WriteString("\n")
	}

	rows := tabRows(s)
	if len(rows) == 0 {
		if s.Loading {
			b.WriteString(dimStyle.Render("  Loading..."))
		} else {
			b.WriteString(dimStyle.Render("  (no rankings)"))
		}
		b.WriteString("\n")
		return
	}

	b.WriteString(colHeaderStyle.Render(fmt.Sprintf("  %-3s %-3s %-8s %-22s %-14s %8s %9s %6s %6s",
		"#", "", "Ticker", "Name", "Sector", "Prob", "Exp.Ret", "Score", "Conf")))
	b.WriteString("\n")

	for i, r := range rows {
		hl := i == selected
		tick := tickerStyle
		if hl {
			tick = tickerHlStyle
		}
		ret := gainStyle
		if r.ExpectedReturn < 0 {
			ret = lossStyle
		}
		b.WriteString(hlStyle(dimStyle, hl).Render(fmt.Sprintf("  %-3d", i+1)))
		b.WriteString(hlStyle(lipgloss.NewStyle(), hl).Render(fmt.Sprintf("%-3s", r.WeatherIcon)))
		b.WriteString(hlStyle(tick, hl).Render(fmt.Sprintf(" %-8s", r.Ticker)))
		b.WriteString(hlStyle(priceStyle, hl).Render(fmt.Sprintf("%-22s", truncate(r.Name, 22))))
		b.WriteString(hlStyle(dimStyle, hl).Render(fmt.Sprintf("%-14s", truncate(r.Sector, 14))))
		b.WriteString(hlStyle(probStyle(r.Probability), hl).Render(fmt.Sprintf("%8s", view.FormatProbability(r.Probability))))
		b.WriteString(hlStyle(ret, hl).Render(fmt.Sprintf("%9s", view.FormatReturn(r.ExpectedReturn))))
		b.WriteString(hlStyle(dimStyle, hl).Render(fmt.Sprintf("%6s", view.FormatScore(r.FundamentalScore))))
		b.WriteString(hlStyle(dimStyle, hl).Render(fmt.Sprintf("%6s", view.FormatScore(r.Confidence))))
		if hl {
			b.WriteString(lipgloss.NewStyle().Background(highlightBG).Render(" "))
		}
		b.WriteString("\n")
	}
}

// renderDetail draws the per-stock forecast panel.
func renderDetail(b *strings.Builder, s view.DetailState, newsEnabled bool, width int) {
	if s.NotFound {
		b.WriteString("\n")
		b.WriteString(bannerStyle.Render(fmt.Sprintf(" %s not found ", s.Ticker)))
		b.WriteString("\n\n")
		b.WriteString(dimStyle.Render("  No forecast exists for this ticker. Press esc to go back."))
		b.WriteString("\n")
		return
	}
	if s.ErrBanner != "" {
		b.WriteString(bannerStyle.Render(" " + s.ErrBanner + " "))
		b.WriteString("\n")
	}
	if s.Detail == nil {
		b.WriteString(dimStyle.Render("  Loading..."))
		b.WriteString("\n")
		return
	}
	d := s.Detail

	b.WriteString(fmt.Sprintf("  %s %s  %s\n", d.WeatherIcon, tickerStyle.Render(d.Ticker), d.Name))
	b.WriteString(dimStyle.Render("  " + d.Sector))
	b.WriteString("\n\n")

	ret := gainStyle
	if d.ExpectedReturn < 0 {
		ret = lossStyle
	}
	b.WriteString(sectionStyle.Render("  Forecast"))
	b.WriteString("\n")
	b.WriteString("    Price        " + priceStyle.Render(view.FormatPrice(d.CurrentPrice)) + "\n")
	b.WriteString("    Rise chance  " + probStyle(d.Probability).Render(view.FormatProbability(d.Probability)) + "\n")
	b.WriteString("    Expected     " + ret.Render(view.FormatReturn(d.ExpectedReturn)) + "\n")
	b.WriteString("    Confidence   " + view.FormatScore(d.Confidence) + "\n")

	if len(d.PriceHistory) > 0 {
		first := d.PriceHistory[0]
		last := d.PriceHistory[len(d.PriceHistory)-1]
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render("  Price history"))
		b.WriteString(dimStyle.Render(fmt.Sprintf("  %d sessions", len(d.PriceHistory))))
		b.WriteString("\n")
		b.WriteString("    " + sparkline(d.PriceHistory, width-8) + "\n")
		b.WriteString(dimStyle.Render(fmt.Sprintf("    %s %s  to  %s %s",
			first.Date, view.FormatPrice(first.Close), last.Date, view.FormatPrice(last.Close))))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(sectionStyle.Render("  Fundamentals"))
	b.WriteString(dimStyle.Render("  score " + view.FormatScore(d.FundamentalScore)))
	b.WriteString("\n")
	b.WriteString(colHeaderStyle.Render(fmt.Sprintf("    %-12s %9s %11s %7s %13s",
		"Metric", "Raw", "Normalized", "Weight", "Contribution")))
	b.WriteString("\n")
	for _, name := range []string{"ROE", "EPS_YoY", "Revenue_YoY"} {
		mb, ok := d.FundamentalBreakdown[name]
		if !ok {
			continue
		}
		b.WriteString(fmt.Sprintf("    %-12s %9.2f %11.2f %7.2f %13.4f\n",
			name, mb.RawValue, mb.Normalized, mb.Weight, mb.Contribution))
	}

	t := d.Technical
	b.WriteString("\n")
	b.WriteString(sectionStyle.Render("  Technicals"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("    MA20 %s   MA60 %s   RSI %.1f   Volatility %.1f%%\n",
		view.FormatPrice(t.MA20), view.FormatPrice(t.MA60), t.RSI, t.Volatility))
	b.WriteString(fmt.Sprintf("    52w range %s to %s, position %.0f%%\n",
		view.FormatPrice(t.Week52Low), view.FormatPrice(t.Week52High), t.Week52Position*100))

	if newsEnabled && d.NewsSentiment != nil {
		n := d.NewsSentiment
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render("  News"))
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("    %s, score %+.1f over %d articles\n", n.Label, n.Score, n.ArticleCount))
	}
}

// renderSectors draws the sector weather map, best outlook first.
func renderSectors(b *strings.Builder, sectors []stockweather.SectorWeather, errText string, loading bool) {
	if errText != "" {
		b.WriteString(bannerStyle.Render(" " + errText + " "))
		b.WriteString("\n")
	}
	if len(sectors) == 0 {
		if loading {
			b.WriteString(dimStyle.Render("  Loading..."))
		} else {
			b.WriteString(dimStyle.Render("  (no sector data)"))
		}
		b.WriteString("\n")
		return
	}

	b.WriteString(colHeaderStyle.Render(fmt.Sprintf("  %-3s %-16s %8s %7s  %-8s %s",
		"", "Sector", "Prob", "Stocks", "Top", "Outlook")))
	b.WriteString("\n")
	for _, s := range sectors {
		b.WriteString(fmt.Sprintf("  %-3s %-16s ", s.WeatherIcon, truncate(s.Sector, 16)))
		b.WriteString(probStyle(s.Probability).Render(fmt.Sprintf("%8s", view.FormatProbability(s.Probability))))
		b.WriteString(fmt.Sprintf(" %7d  ", s.StockCount))
		b.WriteString(tickerStyle.Render(fmt.Sprintf("%-8s", s.TopStock)))
		b.WriteString(" ")
		b.WriteString(dimStyle.Render(s.Description))
		b.WriteString("\n")
	}
}

// renderFailure is the fallback screen shown after a render panic.
func renderFailure(msg string) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(bannerStyle.Render(" view crashed "))
	b.WriteString("\n\n")
	b.WriteString(dimStyle.Render("  " + msg))
	b.WriteString("\n\n")
	b.WriteString("  Press r to reset this view.\n")
	return b.String()
}

var sparks = []rune("▁▂▃▄▅▆▇█")

// sparkline scales the close series onto eight block levels, one rune per
// point, keeping the most recent points when the series is wider than the
// screen.
func sparkline(points []stockweather.PricePoint, width int) string {
	if width < 1 {
		width = 1
	}
	closes := make([]float64, len(points))
	for i, p := range points {
		closes[i] = p.Close
	}
	if len(closes) > width {
		closes = closes[len(closes)-width:]
	}
	lo, hi := closes[0], closes[0]
	for _, c := range closes {
		if c < lo {
			lo = c
		}
		if c > hi {
			hi = c
		}
	}
	var b strings.Builder
	for _, c := range closes {
		idx := 0
		if hi > lo {
			idx = int((c - lo) / (hi - lo) * float64(len(sparks)-1))
		}
		b.WriteRune(sparks[idx])
	}
	return b.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}

// padOrTrunc pads s with spaces to width, or truncates if longer.
func padOrTrunc(s string, width int) string {
	n := len(s)
	if n >= width {
		return s[:width]
	}
	return s + strings.Repeat(" ", width-n)
}

func main() {
	cfgPath := "config/stockweather.yaml"
	if p := os.Getenv("STOCKWEATHER_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}

	// The terminal UI owns stdout; logs go to a file.
	logPath := cfg.Logging.File
	if logPath == "" {
		logPath = fmt.Sprintf("/tmp/weather-client-%s.log", time.Now().Format("2006-01-02"))
	}
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "opening log file: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	logger := util.NewTextLogger(logFile, cfg.Logging.Level)

	client := stockweather.NewClient(cfg.Client.APIURL)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Probe the server so a dead base URL shows up before the alt screen
	// takes over.
	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	h, err := client.Health(pingCtx)
	pingCancel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %s\n", fetchErrText(err))
		logger.Warn("health probe failed", "url", cfg.Client.APIURL, "error", err)
	} else {
		logger.Info("connected", "url", cfg.Client.APIURL, "status", h.Status, "stocks", h.Stocks)
	}

	p := tea.NewProgram(
		initialModel(client, cfg, ctx, cancel, logger),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
