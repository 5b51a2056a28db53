// Package tui provides the Bubble Tea solver interface.
package tui

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/subcrack/internal/decrypt"
	"github.com/verte-zerg/subcrack/internal/freq"
	"github.com/verte-zerg/subcrack/internal/mapping"
)

const saveTimeout = 5 * time.Second

var errNoStore = errors.New("no store configured")

// MappingSaver persists the mapping chosen for a ciphertext.
type MappingSaver interface {
	SaveMapping(ctx context.Context, ciphertext string, m mapping.Mapping) error
}

type savedMsg struct {
	err error
}

type keyMap struct {
	Save   key.Binding
	Clear  key.Binding
	Reset  key.Binding
	Cancel key.Binding
	Quit   key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Save, k.Clear, k.Reset, k.Cancel, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

func defaultKeyMap() keyMap {
	return keyMap{
		Save:   key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
		Clear:  key.NewBinding(key.WithKeys("backspace", "delete"), key.WithHelp("bksp", "clear")),
		Reset:  key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "reset")),
		Cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel/quit")),
		Quit:   key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

// Model implements the Bubble Tea solver UI. A letter key selects a cipher
// letter and the next letter key assigns its plaintext letter.
type Model struct {
	ciphertext  string
	cipherRunes []rune
	letters     []rune

	guess  mapping.Mapping
	manual mapping.Mapping
	saver  MappingSaver

	selected  rune
	status    string
	statusErr bool

	keys keyMap
	help help.Model

	width  int
	height int
}

var (
	manualStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	guessStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	unknownStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	otherStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
)

// NewModel constructs a solver for ciphertext. guess is the automatic mapping
// shown until overridden; entries of saved that differ from it start as
// manual assignments. saver may be nil.
func NewModel(ciphertext string, guess, saved mapping.Mapping, saver MappingSaver) *Model {
	if guess == nil {
		guess = mapping.Mapping{}
	}
	manual := mapping.Mapping{}
	for c, p := range saved {
		if g, ok := guess[c]; !ok || g != p {
			manual[c] = p
		}
	}
	return &Model{
		ciphertext:  ciphertext,
		cipherRunes: []rune(ciphertext),
		letters:     distinctLetters(ciphertext),
		guess:       guess,
		manual:      manual,
		saver:       saver,
		keys:        defaultKeyMap(),
		help:        help.New(),
	}
}

// Current returns the mapping in effect: the guess with manual assignments on
// top.
func (m *Model) Current() mapping.Mapping {
	return mapping.Merge(m.guess, m.manual)
}

// Plaintext decrypts the ciphertext with Current.
func (m *Model) Plaintext() string {
	return decrypt.Apply(m.ciphertext, m.Current())
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	case savedMsg:
		if msg.err != nil {
			m.setError(fmt.Sprintf("save failed: %v", msg.err))
		} else {
			m.setStatus("mapping saved")
		}
		return m, nil
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Cancel):
			if m.selected == 0 {
				return m, tea.Quit
			}
			m.selected = 0
			m.setStatus("")
			return m, nil
		case key.Matches(msg, m.keys.Save):
			return m, m.saveCmd()
		case key.Matches(msg, m.keys.Clear):
			m.handleClear()
			return m, nil
		case key.Matches(msg, m.keys.Reset):
			m.manual = mapping.Mapping{}
			m.selected = 0
			m.setStatus("manual assignments cleared")
			return m, nil
		case msg.Type == tea.KeyRunes:
			m.handleRunes(msg.Runes)
			return m, nil
		default:
			return m, nil
		}
	default:
		return m, nil
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	if len(m.cipherRunes) == 0 {
		return ""
	}
	styledRunes := buildStyledRunes(m.cipherRunes, m.guess, m.manual, m.selected)
	if m.width == 0 || m.height == 0 {
		return renderStyledRunes(styledRunes)
	}
	contentWidth := int(float64(m.width) * 0.70)
	if contentWidth < 1 {
		contentWidth = 1
	}
	wrapped := wrapStyledRunes(styledRunes, contentWidth)
	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Width(contentWidth).Render(wrapped),
		"",
		m.renderKeyStrip(),
	)
	footer := m.renderFooter()
	if footer == "" || m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	bodyHeight := m.height - 1
	body := lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) handleRunes(runes []rune) {
	for _, r := range runes {
		if !freq.IsLetter(r) {
			m.setError(fmt.Sprintf("%q is not a letter", r))
			continue
		}
		r = freq.ToLower(r)
		if m.selected == 0 {
			m.selected = r
			m.setStatus(fmt.Sprintf("plain letter for '%c'?", r))
			continue
		}
		if err := m.manual.Set(m.selected, r); err != nil {
			m.setError(err.Error())
		} else {
			m.setStatus(fmt.Sprintf("'%c' -> '%c'", m.selected, r))
		}
		m.selected = 0
	}
}

func (m *Model) handleClear() {
	if m.selected == 0 {
		m.setError("select a cipher letter first")
		return
	}
	delete(m.manual, m.selected)
	m.setStatus(fmt.Sprintf("'%c' cleared", m.selected))
	m.selected = 0
}

func (m *Model) saveCmd() tea.Cmd {
	saver := m.saver
	ciphertext := m.ciphertext
	current := m.Current()
	return func() tea.Msg {
		if saver == nil {
			return savedMsg{err: errNoStore}
		}
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()
		return savedMsg{err: saver.SaveMapping(ctx, ciphertext, current)}
	}
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.statusErr = false
}

func (m *Model) setError(s string) {
	m.status = s
	m.statusErr = true
}

// mappedCount reports how many distinct cipher letters of the text are mapped.
func (m *Model) mappedCount() int {
	current := m.Current()
	n := 0
	for _, c := range m.letters {
		if _, ok := current[c]; ok {
			n++
		}
	}
	return n
}

func (m *Model) renderKeyStrip() string {
	if len(m.letters) == 0 {
		return ""
	}
	current := m.Current()
	var top, bottom strings.Builder
	for i, c := range m.letters {
		if i > 0 {
			top.WriteRune(' ')
			bottom.WriteRune(' ')
		}
		cipherCell := otherStyle
		if c == m.selected {
			cipherCell = cipherCell.Underline(true)
		}
		top.WriteString(cipherCell.Render(string(c)))
		switch plain, ok := m.manual[c]; {
		case ok:
			bottom.WriteString(manualStyle.Render(string(plain)))
		case current[c] != 0:
			bottom.WriteString(guessStyle.Render(string(current[c])))
		default:
			bottom.WriteString(unknownStyle.Render(string(decrypt.Placeholder)))
		}
	}
	return top.String() + "\n" + bottom.String()
}

func (m *Model) renderFooter() string {
	if len(m.cipherRunes) == 0 {
		return ""
	}
	segments := []string{fmt.Sprintf("Mapped %d/%d", m.mappedCount(), len(m.letters))}
	if m.selected != 0 {
		segments = append(segments, fmt.Sprintf("Selected '%c'", m.selected))
	}
	footer := footerStyle.Render(strings.Join(segments, "  "))
	if m.status != "" {
		style := footerStyle
		if m.statusErr {
			style = errorStyle
		}
		footer += "  " + style.Render(m.status)
	}
	return footer + "  " + m.help.View(m.keys)
}

func distinctLetters(text string) []rune {
	seen := map[rune]struct{}{}
	for _, r := range text {
		if freq.IsLetter(r) {
			seen[freq.ToLower(r)] = struct{}{}
		}
	}
	out := make([]rune, 0, len(seen))
	for r := range seen {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
