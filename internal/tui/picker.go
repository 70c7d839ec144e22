package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/phannguyenbuu/dinh-tot-dong/internal/backup"
)

// Action represents the action to take after picker selection
type Action int

const (
	ActionNone Action = iota
	ActionRestore
	ActionQuit
)

// PickerResult holds the result of the picker
type PickerResult struct {
	Action Action
	Backup *backup.Backup
}

// backupItem implements list.Item for backup display
type backupItem struct {
	backup backup.Backup
}

func (i backupItem) Title() string {
	return i.backup.ID
}

func (i backupItem) Description() string {
	return fmt.Sprintf("%s | %s",
		i.backup.Timestamp.Format("2006-01-02 15:04:05"),
		humanize.Bytes(uint64(i.backup.Size)),
	)
}

func (i backupItem) FilterValue() string {
	return i.backup.ID
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			MarginBottom(1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginTop(1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)
)

// Model is the bubbletea model for the backup picker
type Model struct {
	list     list.Model
	result   PickerResult
	quitting bool
	width    int
	height   int
}

// NewPicker creates a new backup picker
func NewPicker(backups []backup.Backup) Model {
	items := make([]list.Item, len(backups))
	for i, b := range backups {
		items[i] = backupItem{backup: b}
	}

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = selectedStyle
	delegate.Styles.SelectedDesc = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	l := list.New(items, delegate, 80, 20)
	l.Title = "nginx-route - Select Backup"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle

	return Model{list: l}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width, msg.Height-4)
		return m, nil

	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}

		switch msg.String() {
		case "enter":
			if item, ok := m.list.SelectedItem().(backupItem); ok {
				b := item.backup
				m.result = PickerResult{
					Action: ActionRestore,
					Backup: &b,
				}
				m.quitting = true
				return m, tea.Quit
			}

		case "q", "esc", "ctrl+c":
			m.result = PickerResult{Action: ActionQuit}
			m.quitting = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	help := helpStyle.Render("[enter] Restore  [/] Filter  [q] Quit")

	return m.list.View() + "\n" + help
}

// Result returns the picker result
func (m Model) Result() PickerResult {
	return m.result
}

// RunPicker runs the interactive backup picker
func RunPicker(backups []backup.Backup) (PickerResult, error) {
	if len(backups) == 0 {
		return PickerResult{Action: ActionQuit}, nil
	}

	p := tea.NewProgram(NewPicker(backups), tea.WithAltScreen())

	finalModel, err := p.Run()
	if err != nil {
		return PickerResult{}, err
	}

	return finalModel.(Model).Result(), nil
}

// SimplePicker is a non-interactive listing of backups
func SimplePicker(backups []backup.Backup) string {
	var sb strings.Builder

	sb.WriteString("nginx-route - Backups\n")
	sb.WriteString(strings.Repeat("─", 60) + "\n\n")

	if len(backups) == 0 {
		sb.WriteString("No backups found.\n")
		sb.WriteString("Backups are created by: nginx-route add <route>\n")
		return sb.String()
	}

	for i, b := range backups {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, b.ID))
		sb.WriteString(fmt.Sprintf("   %s | %s\n\n",
			b.Timestamp.Format("2006-01-02 15:04:05"), humanize.Bytes(uint64(b.Size))))
	}

	return sb.String()
}
