package installer

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandevgo/aquabot/internal/config"
	"github.com/sandevgo/aquabot/internal/providers/llm"
	"github.com/sandevgo/aquabot/pkg/retry"
)

type modelFetcher func(ctx context.Context, apiKey string) ([]llm.Model, error)

func fetchGeminiModels(ctx context.Context, apiKey string) ([]llm.Model, error) {
	client := llm.NewGemini(llm.GeminiOptions{
		BaseURL: config.DefaultGeminiBaseURL,
		APIKey:  apiKey,
		Retry:   &retry.Config{MaxRetries: 1, BackoffFactor: 2, InitialDelay: time.Second},
	})
	return client.Models(ctx)
}

// ModelStep lets the user pick a generateContent model. The default model is
// kept when the list cannot be fetched and the user skips.
type ModelStep struct {
	list     list.Model
	fetch    modelFetcher
	loading  bool
	fetching bool // Ensures we only trigger the API call once
	err      error
}

func NewModelStep(fetch modelFetcher) Step {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Select Gemini Model"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle

	return &ModelStep{
		list:    l,
		fetch:   fetch,
		loading: true,
	}
}

func (s *ModelStep) Init() tea.Cmd {
	return nil
}

func (s *ModelStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	// 1. Trigger fetch once when we enter the step
	if s.loading && !s.fetching {
		s.fetching = true
		apiKey := state.Gemini.APIKey
		fetch := s.fetch

		return s, func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			models, err := fetch(ctx, apiKey)
			if err != nil {
				return errMsg(err)
			}

			var items []list.Item
			for _, mod := range models {
				items = append(items, item{
					id:    mod.ID,
					title: mod.Name,
					desc:  fmt.Sprintf("ID: %s | Context: %d", mod.ID, mod.ContextLength),
				})
			}
			return modelsMsg(items)
		}
	}

	if height > 4 {
		s.list.SetSize(width, height-4)
	}

	var cmd tea.Cmd
	switch msg := msg.(type) {
	case modelsMsg:
		s.list.SetItems(msg)
		s.selectDefault()
		s.loading = false
		s.fetching = false
		return s, nil

	case errMsg:
		s.loading = false
		s.fetching = false
		s.err = msg
		return s, nil

	case tea.KeyMsg:
		if s.err != nil {
			switch msg.String() {
			case "enter":
				s.err = nil
				s.loading = true
				s.fetching = false
			case "s":
				state.Gemini.Model = config.DefaultGeminiModel
				return nil, nil
			}
			return s, nil
		}
		if s.loading {
			return s, nil
		}

		if msg.String() == "enter" {
			wasFiltering := s.list.FilterState() == list.Filtering
			s.list, cmd = s.list.Update(msg)

			if wasFiltering || s.list.FilterState() == list.Filtering {
				return s, cmd
			}

			if i, ok := s.list.SelectedItem().(item); ok {
				state.Gemini.Model = i.id
				return nil, nil
			}
			return s, cmd
		}
	}

	s.list, cmd = s.list.Update(msg)
	return s, cmd
}

// selectDefault moves the cursor to the default model when it is listed.
func (s *ModelStep) selectDefault() {
	for i, it := range s.list.Items() {
		if it.(item).id == config.DefaultGeminiModel {
			s.list.Select(i)
			return
		}
	}
}

func (s *ModelStep) View(state *InstallState) string {
	if s.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error fetching models: %v", s.err)) +
			"\n\nCheck your API key and internet connection.\n\n" +
			hintStyle.Render(fmt.Sprintf("(enter to retry, s to skip and use %s, ctrl+c to quit)", config.DefaultGeminiModel)) + "\n"
	}
	if s.loading {
		return "Fetching models from Gemini...\n"
	}
	return s.list.View()
}
