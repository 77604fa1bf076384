// Copyright 2026 The Mist Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/libretro/mist/lib/input"
	"github.com/libretro/mist/lib/mist"
)

// maxWatchEvents is how many recent callbacks the watch view keeps.
const maxWatchEvents = 10

func watchCommand() command {
	const usage = "mistctl watch [--analog name]... [--digital name]... [--interval 50ms]"
	return command{
		name:    "watch",
		summary: "Live view of connected controllers and callbacks",
		usage:   usage,
		run: func(ctx context.Context, env *environment, args []string) error {
			flagSet := newFlagSet("watch", usage)
			analogNames := flagSet.StringSlice("analog", nil, "analog action to show (repeatable)")
			digitalNames := flagSet.StringSlice("digital", nil, "digital action to show (repeatable)")
			interval := flagSet.Duration("interval", 50*time.Millisecond, "refresh interval")
			if done, err := parseFlags(flagSet, args); done {
				return err
			}
			if !term.IsTerminal(int(os.Stdout.Fd())) {
				return errors.New("watch needs a terminal; use callbacks for scripted output")
			}

			lib, err := env.open(ctx)
			if err != nil {
				return err
			}
			defer lib.Deinit()

			source := &librarySource{lib: lib}
			model := newWatchModel(source, *interval)
			started, err := lib.Input().Init(ctx)
			if err != nil {
				return fmt.Errorf("starting input: %w", err)
			}
			model.inputActive = started
			if started {
				for _, name := range *analogNames {
					handle, err := lib.Input().AnalogActionHandle(ctx, name)
					if err != nil {
						return fmt.Errorf("analog action %q: %w", name, err)
					}
					model.analog = append(model.analog, namedAction{name: name, handle: handle})
				}
				for _, name := range *digitalNames {
					handle, err := lib.Input().DigitalActionHandle(ctx, name)
					if err != nil {
						return fmt.Errorf("digital action %q: %w", name, err)
					}
					model.digital = append(model.digital, namedAction{name: name, handle: handle})
				}
			}

			program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
			_, err = program.Run()
			if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
				return nil
			}
			return err
		},
	}
}

// watchSource is what the watch view reads each tick.
type watchSource interface {
	// poll returns the callbacks that arrived since the last poll.
	poll() ([]mist.Callback, error)
	// frame returns the latest controller snapshot.
	frame() (*input.State, uint64, error)
}

type librarySource struct {
	lib *mist.Library
}

func (s *librarySource) poll() ([]mist.Callback, error) {
	err := s.lib.Poll()
	var callbacks []mist.Callback
	for cb, ok := s.lib.NextCallback(); ok; cb, ok = s.lib.NextCallback() {
		callbacks = append(callbacks, cb)
		s.lib.AdvanceCallback()
	}
	return callbacks, err
}

func (s *librarySource) frame() (*input.State, uint64, error) {
	in := s.lib.Input()
	if err := in.RunFrame(); err != nil {
		return nil, 0, err
	}
	return in.Snapshot(), in.Generation(), nil
}

type namedAction struct {
	name   string
	handle uint64
}

type tickMsg time.Time

// watchKeyMap holds the watch view's key bindings.
type watchKeyMap struct {
	Quit        key.Binding
	ClearEvents key.Binding
}

var watchKeys = watchKeyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "esc", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	ClearEvents: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "clear callbacks"),
	),
}

// helpLine renders the footer from the enabled bindings.
func (k watchKeyMap) helpLine() string {
	var parts []string
	for _, binding := range []key.Binding{k.ClearEvents, k.Quit} {
		if !binding.Enabled() {
			continue
		}
		help := binding.Help()
		parts = append(parts, help.Key+" "+help.Desc)
	}
	return strings.Join(parts, "  ")
}

type watchModel struct {
	source   watchSource
	interval time.Duration
	keys     watchKeyMap

	inputActive bool
	analog      []namedAction
	digital     []namedAction

	state      *input.State
	generation uint64
	events     []string
	err        error
	width      int
}

func newWatchModel(source watchSource, interval time.Duration) *watchModel {
	return &watchModel{source: source, interval: interval, keys: watchKeys}
}

func (m *watchModel) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *watchModel) Init() tea.Cmd {
	return m.tick()
}

func (m *watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.ClearEvents):
			m.events = nil
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case tickMsg:
		m.refresh(time.Time(msg))
		if m.err != nil {
			return m, nil
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *watchModel) refresh(now time.Time) {
	callbacks, err := m.source.poll()
	for _, cb := range callbacks {
		m.events = append(m.events, fmt.Sprintf("%s  %-38s source=%d", now.Format("15:04:05.000"), cb.Name(), cb.Source))
	}
	if overflow := len(m.events) - maxWatchEvents; overflow > 0 {
		m.events = m.events[overflow:]
	}
	if err != nil {
		m.err = err
		return
	}
	if !m.inputActive {
		return
	}
	state, generation, err := m.source.frame()
	if err != nil {
		m.err = err
		return
	}
	m.state = state
	m.generation = generation
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	headingStyle = lipgloss.NewStyle().Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	activeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	boxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

func (m *watchModel) View() string {
	var sections []string
	sections = append(sections, titleStyle.Render("mist watch")+dimStyle.Render(fmt.Sprintf("  frame %d", m.generation)))
	sections = append(sections, boxStyle.Render(m.controllersView()))
	sections = append(sections, boxStyle.Render(m.eventsView()))
	if m.err != nil {
		sections = append(sections, errorStyle.Render("error: "+m.err.Error()))
	}
	sections = append(sections, dimStyle.Render(m.keys.helpLine()))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *watchModel) controllersView() string {
	var builder strings.Builder
	builder.WriteString(headingStyle.Render("Controllers"))
	switch {
	case !m.inputActive:
		builder.WriteString("\n" + dimStyle.Render("input unavailable"))
		return builder.String()
	case m.state == nil || m.state.ConnectedCount == 0:
		builder.WriteString("\n" + dimStyle.Render("none connected"))
		return builder.String()
	}

	for _, handle := range m.state.ConnectedControllers() {
		gamepad := m.state.Gamepad(handle)
		if gamepad == nil {
			continue
		}
		fmt.Fprintf(&builder, "\n%d  %s", handle, gamepad.InputType)
		for _, action := range m.analog {
			data := m.state.AnalogAction(handle, action.handle)
			text := fmt.Sprintf("%s (%+.2f, %+.2f)", action.name, data.X, data.Y)
			builder.WriteString("\n    " + styleActive(text, data.Active))
		}
		var pressed []string
		for _, action := range m.digital {
			if m.state.DigitalAction(handle, action.handle).State {
				pressed = append(pressed, action.name)
			}
		}
		if len(m.digital) > 0 {
			if len(pressed) == 0 {
				builder.WriteString("\n    " + dimStyle.Render("no buttons held"))
			} else {
				builder.WriteString("\n    " + activeStyle.Render("held: "+strings.Join(pressed, " ")))
			}
		}
	}
	return builder.String()
}

func styleActive(text string, active bool) string {
	if active {
		return activeStyle.Render(text)
	}
	return dimStyle.Render(text)
}

func (m *watchModel) eventsView() string {
	var builder strings.Builder
	builder.WriteString(headingStyle.Render("Callbacks"))
	if len(m.events) == 0 {
		builder.WriteString("\n" + dimStyle.Render("none yet"))
	}
	for _, event := range m.events {
		builder.WriteString("\n" + event)
	}
	return builder.String()
}
