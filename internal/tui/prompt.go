package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/phannguyenbuu/dinh-tot-dong/internal/nginxconf"
)

// promptStep identifies the current prompt step.
type promptStep int

const (
	stepRoute promptStep = iota
	stepPassword
	stepConfirm
)

// PromptOptions configures the route prompt.
type PromptOptions struct {
	// Editor renders the preview block. Nil uses the default upstream.
	Editor *nginxconf.Editor
	// Route pre-fills the route input.
	Route string
	// AskPassword adds a masked SSH password step.
	AskPassword bool
	// PasswordOnly asks for the password alone and skips the preview.
	PasswordOnly bool
	// Target names the file being edited, shown in the header.
	Target string
}

// PromptResult holds what the user entered.
type PromptResult struct {
	Route     nginxconf.Route
	Password  string
	Confirmed bool
}

var (
	promptTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39")).
				MarginBottom(1)

	promptLabelStyle = lipgloss.NewStyle().
				Bold(true)

	promptErrorStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("196"))

	promptPreviewStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("241")).
				Padding(0, 1)

	promptDimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

// PromptModel is the bubbletea model for the route prompt.
type PromptModel struct {
	step   promptStep
	opts   PromptOptions
	editor *nginxconf.Editor

	routeInput    textinput.Model
	passwordInput textinput.Model

	route    nginxconf.Route
	errMsg   string
	result   PromptResult
	quitting bool
}

// NewPrompt creates a route prompt.
func NewPrompt(opts PromptOptions) PromptModel {
	ri := textinput.New()
	ri.Placeholder = "/api/v1/"
	ri.Prompt = "route: "
	ri.CharLimit = 512
	ri.Width = 60
	ri.SetValue(opts.Route)
	ri.Focus()

	pi := textinput.New()
	pi.Prompt = "password: "
	pi.EchoMode = textinput.EchoPassword
	pi.EchoCharacter = '•'
	pi.CharLimit = 256
	pi.Width = 40

	editor := opts.Editor
	if editor == nil {
		editor = nginxconf.NewEditor("")
	}

	step := stepRoute
	if opts.PasswordOnly {
		opts.AskPassword = true
		step = stepPassword
		ri.Blur()
		pi.Focus()
	}

	return PromptModel{
		step:          step,
		opts:          opts,
		editor:        editor,
		routeInput:    ri,
		passwordInput: pi,
	}
}

func (m PromptModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m PromptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.Type {
		case tea.KeyCtrlC:
			return m.cancel()
		case tea.KeyEsc:
			return m.back()
		}
	}

	switch m.step {
	case stepRoute:
		return m.updateRoute(msg)
	case stepPassword:
		return m.updatePassword(msg)
	case stepConfirm:
		return m.updateConfirm(msg)
	}

	return m, nil
}

func (m PromptModel) cancel() (tea.Model, tea.Cmd) {
	m.result = PromptResult{}
	m.quitting = true
	return m, tea.Quit
}

func (m PromptModel) back() (tea.Model, tea.Cmd) {
	switch m.step {
	case stepRoute:
		return m.cancel()
	case stepPassword:
		if m.opts.PasswordOnly {
			return m.cancel()
		}
		m.step = stepRoute
		m.passwordInput.Blur()
		m.routeInput.Focus()
		return m, textinput.Blink
	case stepConfirm:
		if m.opts.AskPassword {
			m.step = stepPassword
			m.passwordInput.Focus()
		} else {
			m.step = stepRoute
			m.routeInput.Focus()
		}
		return m, textinput.Blink
	}
	return m, nil
}

func (m PromptModel) updateRoute(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEnter {
		route, err := nginxconf.NormalizeRoute(m.routeInput.Value())
		if err != nil {
			m.errMsg = err.Error()
			return m, nil
		}
		m.errMsg = ""
		m.route = route
		m.routeInput.Blur()
		if m.opts.AskPassword {
			m.step = stepPassword
			m.passwordInput.Focus()
			return m, textinput.Blink
		}
		m.step = stepConfirm
		return m, nil
	}

	var cmd tea.Cmd
	m.routeInput, cmd = m.routeInput.Update(msg)
	return m, cmd
}

func (m PromptModel) updatePassword(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEnter {
		if m.passwordInput.Value() == "" {
			m.errMsg = "password cannot be empty"
			return m, nil
		}
		m.errMsg = ""
		m.passwordInput.Blur()
		if m.opts.PasswordOnly {
			m.result = PromptResult{Password: m.passwordInput.Value(), Confirmed: true}
			m.quitting = true
			return m, tea.Quit
		}
		m.step = stepConfirm
		return m, nil
	}

	var cmd tea.Cmd
	m.passwordInput, cmd = m.passwordInput.Update(msg)
	return m, cmd
}

func (m PromptModel) updateConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "enter", "y":
		m.result = PromptResult{
			Route:     m.route,
			Password:  m.passwordInput.Value(),
			Confirmed: true,
		}
		m.quitting = true
		return m, tea.Quit
	case "n", "q":
		return m.cancel()
	}
	return m, nil
}

func (m PromptModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	title := "nginx-route - Add Location"
	if m.opts.PasswordOnly {
		title = "nginx-route - Connect"
	}
	if m.opts.Target != "" {
		title += " (" + m.opts.Target + ")"
	}
	b.WriteString(promptTitleStyle.Render(title))
	b.WriteString("\n")

	switch m.step {
	case stepRoute:
		b.WriteString(promptLabelStyle.Render("Route to proxy"))
		b.WriteString("\n")
		b.WriteString(m.routeInput.View())
	case stepPassword:
		b.WriteString(promptLabelStyle.Render("SSH password"))
		b.WriteString("\n")
		b.WriteString(m.passwordInput.View())
	case stepConfirm:
		b.WriteString(promptLabelStyle.Render("This block will be inserted:"))
		b.WriteString("\n")
		b.WriteString(promptPreviewStyle.Render(strings.TrimRight(m.editor.Render(m.route), "\n")))
	}
	b.WriteString("\n")

	if m.errMsg != "" {
		b.WriteString(promptErrorStyle.Render(m.errMsg))
		b.WriteString("\n")
	}

	if m.step == stepConfirm {
		b.WriteString(promptDimStyle.Render("[enter/y] Apply  [esc] Back  [n] Cancel"))
	} else {
		b.WriteString(promptDimStyle.Render("[enter] Next  [esc] Back  [ctrl+c] Cancel"))
	}

	return b.String()
}

// Result returns the prompt result.
func (m PromptModel) Result() PromptResult {
	return m.result
}

// RunPrompt runs the interactive route prompt.
func RunPrompt(opts PromptOptions) (PromptResult, error) {
	p := tea.NewProgram(NewPrompt(opts))

	finalModel, err := p.Run()
	if err != nil {
		return PromptResult{}, err
	}

	return finalModel.(PromptModel).Result(), nil
}
