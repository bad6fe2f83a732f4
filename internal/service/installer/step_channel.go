package installer

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandevgo/aquabot/internal/config"
)

type choice struct {
	label string
	value string
}

// ChoiceStep is a single-select menu whose pick is stored by apply.
type ChoiceStep struct {
	prompt  string
	choices []choice
	cursor  int
	apply   func(state *InstallState, value string)
}

// NewChannelStep selects where the bot talks to users.
func NewChannelStep() Step {
	return &ChoiceStep{
		prompt: "Where should AquaBot chat?",
		choices: []choice{
			{label: "Terminal (aqua chat)", value: config.TransportCLI},
			{label: "Telegram bot", value: config.TransportTelegram},
		},
		apply: func(state *InstallState, value string) {
			state.App.Transport = value
		},
	}
}

// NewStatsStep asks whether to keep aggregate lookup counters.
func NewStatsStep() Step {
	return &ChoiceStep{
		prompt: "Keep anonymous lookup statistics (keyword hit counts, no message text)?",
		choices: []choice{
			{label: "No", value: "false"},
			{label: "Yes", value: "true"},
		},
		apply: func(state *InstallState, value string) {
			state.App.StatsEnabled = value == "true"
		},
	}
}

func (s *ChoiceStep) Init() tea.Cmd {
	return nil
}

func (s *ChoiceStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if s.cursor > 0 {
				s.cursor--
			}
		case "down", "j":
			if s.cursor < len(s.choices)-1 {
				s.cursor++
			}
		case "enter":
			s.apply(state, s.choices[s.cursor].value)
			return nil, nil
		}
	}
	return s, nil
}

func (s *ChoiceStep) View(state *InstallState) string {
	var b strings.Builder
	b.WriteString(s.prompt + "\n\n")
	for i, c := range s.choices {
		if s.cursor == i {
			b.WriteString(selStyle.Render(fmt.Sprintf("❯ %s", c.label)) + "\n")
		} else {
			b.WriteString(itemStyle.Render(fmt.Sprintf("  %s", c.label)) + "\n")
		}
	}
	b.WriteString("\n" + hintStyle.Render("(press ctrl+c to quit)") + "\n")
	return b.String()
}
