package installer

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// APIKeyStep collects the Gemini API key
type APIKeyStep struct {
	input textinput.Model
	err   string
}

func NewAPIKeyStep() Step {
	ti := textinput.New()
	ti.Focus()
	ti.CharLimit = 255
	ti.Width = 40
	ti.Placeholder = "AIza..."
	ti.EchoMode = textinput.EchoPassword
	ti.EchoCharacter = '•'

	return &APIKeyStep{input: ti}
}

func (s *APIKeyStep) Init() tea.Cmd {
	return textinput.Blink
}

func (s *APIKeyStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)

	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "enter" {
		key := strings.TrimSpace(s.input.Value())
		if key == "" {
			s.err = "The API key is required."
			return s, nil
		}
		state.Gemini.APIKey = key
		return nil, nil
	}
	return s, cmd
}

func (s *APIKeyStep) View(state *InstallState) string {
	var errLine string
	if s.err != "" {
		errLine = errorStyle.Render(s.err) + "\n\n"
	}
	return fmt.Sprintf("Enter your Gemini API key:\n\n%s\n\n%s%s\n",
		s.input.View(), errLine, hintStyle.Render("(press enter to confirm)"))
}
