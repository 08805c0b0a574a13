// Package ui is the interactive career form.
package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"career-predictor/internal/career/form"
	"career-predictor/internal/career/lifecycle"
	"career-predictor/internal/career/notify"
	"career-predictor/internal/career/share"
	"career-predictor/internal/common/errors"
)

const (
	msgNothingToShare = "Nothing to share yet"
	msgShareFailed    = "Share failed"
)

type (
	snapshotMsg     struct{ snap lifecycle.Snapshot }
	toastMsg        struct{ n notify.Notification }
	toastExpiredMsg struct{ id string }
	submitDoneMsg   struct{ err error }
	shareDoneMsg    struct{ err error }
)

type Options struct {
	Controller *lifecycle.Controller
	// Share may be nil, in which case ctrl+s does nothing.
	Share *share.Action
	Feed  *Feed
}

type Model struct {
	ctx   context.Context
	ctrl  *lifecycle.Controller
	share *share.Action
	feed  *Feed

	fields []form.Field
	inputs []textinput.Model
	focus  int
	bar    progress.Model

	snap   lifecycle.Snapshot
	toasts []notify.Notification
}

func New(ctx context.Context, opts Options) Model {
	fields := form.Fields()
	inputs := make([]textinput.Model, len(fields))
	for i, f := range fields {
		ti := textinput.New()
		ti.Prompt = "› "
		ti.CharLimit = 8
		ti.Width = 10
		if c, ok := form.ConstraintFor(f); ok {
			ti.Placeholder = fmt.Sprintf("%g-%g", c.Min, c.Max)
		}
		inputs[i] = ti
	}
	inputs[0].Focus()

	return Model{
		ctx:    ctx,
		ctrl:   opts.Controller,
		share:  opts.Share,
		feed:   opts.Feed,
		fields: fields,
		inputs: inputs,
		bar:    progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage(), progress.WithWidth(40)),
		snap:   opts.Controller.Snapshot(),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitForChange(), m.waitForToast())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		w := msg.Width - 4
		if w > 60 {
			w = 60
		}
		if w > 10 {
			m.bar.Width = w
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case snapshotMsg:
		m.snap = msg.snap
		return m, m.waitForChange()

	case toastMsg:
		next, tick := m.addToast(msg.n)
		return next, tea.Batch(tick, m.waitForToast())

	case toastExpiredMsg:
		m.toasts = removeToast(m.toasts, msg.id)
		return m, nil

	case submitDoneMsg:
		// outcome is already in the snapshot and the toast stack
		m.snap = m.ctrl.Snapshot()
		return m, nil

	case shareDoneMsg:
		if msg.err == nil {
			return m, nil
		}
		if errors.HasCode(msg.err, errors.ErrCodeNothingToShare) {
			return m.addToast(newToast(notify.LevelInfo, msgNothingToShare))
		}
		return m.addToast(newToast(notify.LevelError, msgShareFailed))
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.feed.Close()
		return m, tea.Quit
	case "ctrl+s":
		return m, m.shareCmd()
	}

	if m.snap.Busy() {
		return m, nil
	}

	switch msg.String() {
	case "tab", "down":
		return m, m.moveFocus(1)
	case "shift+tab", "up":
		return m, m.moveFocus(-1)
	case "enter":
		return m, m.submitCmd()
	}

	before := m.inputs[m.focus].Value()
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	if after := m.inputs[m.focus].Value(); after != before {
		if err := m.ctrl.SetField(string(m.fields[m.focus]), after); err != nil {
			// a submission started between the snapshot and this key
			m.inputs[m.focus].SetValue(before)
		} else {
			m.snap = m.ctrl.Snapshot()
		}
	}
	return m, cmd
}

func (m *Model) moveFocus(delta int) tea.Cmd {
	m.inputs[m.focus].Blur()
	m.focus = (m.focus + delta + len(m.inputs)) % len(m.inputs)
	return m.inputs[m.focus].Focus()
}

func (m Model) addToast(n notify.Notification) (Model, tea.Cmd) {
	m.toasts = append(m.toasts, n)
	id := n.ID
	autoClose := n.AutoClose
	if autoClose <= 0 {
		autoClose = notify.DefaultAutoClose
	}
	return m, tea.Tick(autoClose, func(time.Time) tea.Msg { return toastExpiredMsg{id: id} })
}

func newToast(level notify.Level, msg string) notify.Notification {
	return notify.Notification{
		ID:        uuid.NewString(),
		Level:     level,
		Message:   msg,
		AutoClose: notify.DefaultAutoClose,
		At:        time.Now(),
	}
}

func removeToast(toasts []notify.Notification, id string) []notify.Notification {
	out := toasts[:0:0]
	for _, t := range toasts {
		if t.ID != id {
			out = append(out, t)
		}
	}
	return out
}

// --- commands ---

func (m Model) submitCmd() tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		_, err := ctrl.Submit(ctx)
		return submitDoneMsg{err: err}
	}
}

func (m Model) shareCmd() tea.Cmd {
	if m.share == nil {
		return nil
	}
	action, ctx, label := m.share, m.ctx, string(m.snap.Prediction)
	return func() tea.Msg {
		_, err := action.Share(ctx, label)
		return shareDoneMsg{err: err}
	}
}

func (m Model) waitForChange() tea.Cmd {
	feed, ctrl := m.feed, m.ctrl
	return func() tea.Msg {
		select {
		case <-feed.changed:
			return snapshotMsg{snap: ctrl.Snapshot()}
		case <-feed.done:
			return nil
		}
	}
}

func (m Model) waitForToast() tea.Cmd {
	feed := m.feed
	return func() tea.Msg {
		select {
		case n := <-feed.toasts:
			return toastMsg{n: n}
		case <-feed.done:
			return nil
		}
	}
}

// --- view ---

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Career Predictor"))
	b.WriteString("\n")

	busy := m.snap.Busy()
	for i, f := range m.fields {
		label := labelStyle
		if i == m.focus && !busy {
			label = focusedLabelStyle
		}
		b.WriteString(label.Render(f.Label()))
		b.WriteString(m.inputs[i].View())
		b.WriteString("\n")
		if msg, ok := m.snap.Errors[f]; ok {
			b.WriteString(fieldErrorStyle.Render(msg))
			b.WriteString("\n")
		}
	}

	if msg, ok := m.snap.Errors[form.General]; ok {
		b.WriteString("\n")
		b.WriteString(generalErrorStyle.Render(msg))
		b.WriteString("\n")
	}

	if busy {
		b.WriteString(busyButtonStyle.Render("Predicting..."))
	} else {
		b.WriteString(buttonStyle.Render("Predict"))
	}
	b.WriteString("\n")

	if busy {
		b.WriteString("\n")
		b.WriteString(m.bar.ViewAs(float64(m.snap.Progress) / 100))
		b.WriteString("\n")
		b.WriteString(progressLabelStyle.Render(fmt.Sprintf("Analyzing your skills... %d%%", m.snap.Progress)))
		b.WriteString("\n")
	}

	if m.snap.Prediction != "" {
		card := lipgloss.JoinVertical(lipgloss.Left,
			cardTitleStyle.Render("Your Predicted Career!"),
			cardLabelStyle.Render(string(m.snap.Prediction)),
		)
		b.WriteString(cardStyle.Render(card))
		b.WriteString("\n")
	}

	for _, t := range m.toasts {
		b.WriteString(toastStyle(string(t.Level)).Render(t.Message))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("tab/shift+tab move • enter predict • ctrl+s share • esc quit"))
	return b.String()
}

// Run opens the form on the terminal until the user quits or ctx ends.
func Run(ctx context.Context, opts Options) error {
	defer opts.Feed.Close()
	p := tea.NewProgram(New(ctx, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}
