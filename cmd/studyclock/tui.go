package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/BYTE-6D65/studyclock/pkg/clock"
	"github.com/BYTE-6D65/studyclock/pkg/config"
	"github.com/BYTE-6D65/studyclock/pkg/dashboard"
	"github.com/BYTE-6D65/studyclock/pkg/event"
	"github.com/BYTE-6D65/studyclock/pkg/kvstore"
	"github.com/BYTE-6D65/studyclock/pkg/notify"
	"github.com/BYTE-6D65/studyclock/pkg/preset"
	"github.com/BYTE-6D65/studyclock/pkg/schedule"
	"github.com/BYTE-6D65/studyclock/pkg/timer"
)

// Messages
type frameMsg time.Time

type exhaustedMsg timer.Exhausted

type reloadedMsg struct {
	path string
}

// model holds the state of the TUI. Engine state lives in the dashboard;
// the model only keeps the last frame and what the user is pointing at.
type model struct {
	dash    *dashboard.Dashboard
	store   kvstore.Store
	bell    *notify.Bell
	history *event.History
	clock   clock.Clock

	frame   dashboard.Frame
	presets []preset.Preset
	cursor  int
	sound   bool
	theme   theme
	alert   *timer.Exhausted
	status  string
	width   int
	height  int
}

func newModel(d *dashboard.Dashboard, store kvstore.Store, bell *notify.Bell, history *event.History, clk clock.Clock) model {
	presets, err := preset.Load(store)
	status := ""
	if err != nil {
		status = err.Error()
	}

	m := model{
		dash:    d,
		store:   store,
		bell:    bell,
		history: history,
		clock:   clk,
		presets: presets,
		sound:   preset.LoadSound(store),
		theme:   newTheme(preset.LoadTheme(store)),
		status:  status,
	}
	bell.SetEnabled(m.sound)
	if len(presets) > 0 {
		d.LoadPreset(presets[0])
	}
	m.frame = d.Frame()
	return m
}

func frameTick() tea.Cmd {
	return tea.Tick(schedule.FrameInterval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

func (m model) Init() tea.Cmd {
	return frameTick()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case frameMsg:
		m.frame = m.dash.Frame()
		return m, frameTick()

	case exhaustedMsg:
		ex := timer.Exhausted(msg)
		m.alert = &ex
		m.frame = m.dash.Frame()
		return m, nil

	case reloadedMsg:
		m.status = "reloaded " + msg.path
		return m, nil
	}

	return m, nil
}

func (m model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.alert != nil {
		return m.handleAlertKeys(msg)
	}

	m.status = ""
	switch msg.String() {
	case "q":
		return m, tea.Quit

	// Stopwatch
	case "s":
		m.dash.ToggleStopwatch()
	case "S":
		m.dash.ResetStopwatch()

	// Timer
	case " ", "t":
		if err := m.dash.ToggleTimer(); errors.Is(err, timer.ErrNoDuration) {
			m.status = "pick a preset first"
		}
	case "r":
		m.dash.ResetTimer()
	case "left", "h":
		if m.cursor > 0 {
			m.cursor--
		}
	case "right", "l":
		if m.cursor < len(m.presets)-1 {
			m.cursor++
		}
	case "enter":
		if m.cursor < len(m.presets) {
			m.dash.LoadPreset(m.presets[m.cursor])
		}

	// Calendar
	case "[", "up", "k":
		m.dash.ScrollCalendar(-1)
	case "]", "down", "j":
		m.dash.ScrollCalendar(1)
	case ".":
		m.dash.CenterToday()

	// Settings
	case "m":
		m.sound = !m.sound
		m.bell.SetEnabled(m.sound)
		if err := preset.SaveSound(m.store, m.sound); err != nil {
			m.status = err.Error()
		}
	case "T":
		next := preset.ThemeLight
		if m.theme.name == preset.ThemeLight {
			next = preset.ThemeDark
		}
		m.theme = newTheme(next)
		if err := preset.SaveTheme(m.store, next); err != nil {
			m.status = err.Error()
		}
	}

	m.frame = m.dash.Frame()
	return m, nil
}

// handleAlertKeys handles the exhaustion notice: enter runs the timer again,
// esc dismisses it. Both silence the bell.
func (m model) handleAlertKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "r":
		m.bell.Stop()
		m.alert = nil
		if err := m.dash.RestartTimer(); err != nil {
			m.status = err.Error()
		}
	case "esc", "q":
		m.bell.Stop()
		m.alert = nil
	}
	m.frame = m.dash.Frame()
	return m, nil
}

// doneToday counts the exhaustions recorded since local midnight.
func (m model) doneToday() int {
	if m.history == nil {
		return 0
	}
	now := m.clock.Now()
	return m.history.Count(event.TypeTimerExhausted, clock.Midnight(now), now.Add(time.Nanosecond))
}

func (m model) View() string {
	th := m.theme
	f := m.frame

	header := th.title.Render("studyclock") + "  " + th.dim.Render(f.Now.Format("2006-01-02 Mon 15:04:05"))

	left := th.box.Render(renderCountdown(th, f.Countdown))
	right := lipgloss.JoinVertical(lipgloss.Left,
		th.box.Render(renderStopwatch(th, f)),
		th.box.Render(renderTimer(th, f.Timer, m.presets, m.cursor, m.sound, m.doneToday())),
	)
	top := lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right)
	cal := th.box.Render(renderCalendar(th, f.Calendar))

	s := header + "\n\n" + top + "\n" + cal
	if m.status != "" {
		s += "\n  " + th.dim.Render(m.status)
	}
	s += th.help.Render("s/S stopwatch • space/r timer • ←/→ enter preset • [/] . calendar • m sound • T theme • q quit")

	if m.alert != nil {
		notice := th.alert.Render(fmt.Sprintf("%s finished\n\nenter: again   esc: close", m.frame.Timer.Label))
		if m.width > 0 && m.height > 0 {
			return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, notice)
		}
		return s + "\n\n" + notice
	}
	return s
}

func runTUI(cmd *cobra.Command, args []string) error {
	a, err := loadApp(true)
	if err != nil {
		return err
	}
	defer a.Close()

	bus := event.NewInMemoryBus(event.WithBufferSize(64))
	defer bus.Close()

	history := event.NewHistory(event.DefaultHistoryLimit)
	bell := notify.NewBell(os.Stderr, schedule.NewTicker(), true)

	dispatcher := notify.NewDispatcher(bus)
	timerEvents := event.Filter{Types: []string{event.TypeTimerAll}}
	for _, reg := range []struct {
		e      notify.Emitter
		filter event.Filter
	}{
		{bell, event.Filter{Types: []string{event.TypeTimerExhausted, event.TypeTimerStarted, event.TypeTimerReset}}},
		{notify.NewHistoryEmitter(history), timerEvents},
		{notify.NewLogEmitter(nil), event.Filter{}},
	} {
		if err := dispatcher.Register(reg.e, reg.filter); err != nil {
			return err
		}
	}
	if err := dispatcher.Start(); err != nil {
		return err
	}
	defer dispatcher.Stop()

	// debug_now pins the countdown only. Stopwatch and timer keep real time.
	clk := clock.NewSystemClock()
	window := a.cfg.Window()
	d := dashboard.New(dashboard.Options{
		Clock:          clk,
		CountdownClock: a.cfg.Clock(),
		Scheduler:      schedule.NewTicker(),
		Bus:            bus,
		Countdown:      a.cfg.EngineConfig(),
		Window:         &window,
	})
	defer d.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	p := tea.NewProgram(newModel(d, a.store, bell, history, clk), tea.WithAltScreen(), tea.WithContext(ctx))
	d.SetRenderer(dashboard.RendererFuncs{
		// Called on the ticker goroutine; Send blocks until the program
		// takes the message.
		Exhausted: func(ex timer.Exhausted) { go p.Send(exhaustedMsg(ex)) },
	})

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		_, err := p.Run()
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	})
	g.Go(func() error {
		err := config.Watch(ctx, a.path, func(cfg *config.Config) {
			d.SetTargets(cfg.EngineConfig())
			w := cfg.Window()
			d.SetWindow(w.Before, w.After)
			publishReload(ctx, bus, clk, a.path, cfg)
			go p.Send(reloadedMsg{path: a.path})
		})
		if err != nil {
			a.logger.Warnf("config watch disabled: %v", err)
		}
		return nil
	})
	return g.Wait()
}

func publishReload(ctx context.Context, bus event.Bus, clk clock.Clock, path string, cfg *config.Config) {
	evt, err := event.New(event.TypeConfigReloaded, "config", clk.Now(), event.ConfigPayload{
		Path:    path,
		Targets: len(cfg.Countdown.Targets),
	})
	if err != nil {
		return
	}
	bus.Publish(ctx, evt)
}
