// Package tui renders structured article records in an interactive
// terminal dashboard.
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"marketbrief/internal/core"
	"marketbrief/internal/sentiment"
)

// model holds the dashboard state: the records under review, where they
// came from, and the current selection.
type model struct {
	records     []core.ArticleRecord
	source      string
	selectedIdx int
	width       int
	height      int
	quitting    bool
}

func newModel(records []core.ArticleRecord, source string) model {
	return model{
		records: records,
		source:  source,
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model accordingly.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit
		case "up", "k":
			if m.selectedIdx > 0 {
				m.selectedIdx--
			}
		case "down", "j":
			if m.selectedIdx < len(m.records)-1 {
				m.selectedIdx++
			}
		}
	}

	return m, nil
}

// View renders the list pane next to the detail pane for the selection.
func (m model) View() string {
	if m.quitting {
		return "Quitting...\n"
	}

	docStyle := lipgloss.NewStyle().Margin(1, 2)
	listStyle := lipgloss.NewStyle().Border(lipgloss.NormalBorder(), true).Padding(1).Width(m.width/2 - 5)
	detailStyle := lipgloss.NewStyle().Border(lipgloss.NormalBorder(), true).Padding(1).Width(m.width/2 - 5)

	leftPane := listStyle.Render(m.listContent())
	rightPane := detailStyle.Render(m.detailContent())
	mainContent := lipgloss.JoinHorizontal(lipgloss.Top, leftPane, rightPane)

	help := fmt.Sprintf("\n\nSource: %s | [↑/k] Up | [↓/j] Down | [q] Quit", m.source)

	return docStyle.Render(mainContent + help)
}

func (m model) listContent() string {
	var b strings.Builder
	b.WriteString("📰 Articles\n\n")

	if len(m.records) == 0 {
		b.WriteString("No articles loaded.")
		return b.String()
	}

	for i, record := range m.records {
		cursor := " "
		if i == m.selectedIdx {
			cursor = ">"
		}
		emoji := sentiment.Emoji(sentiment.SentimentClassification(record.Sentiment))
		b.WriteString(fmt.Sprintf("%s %s %s\n", cursor, emoji, record.Title))
	}
	return b.String()
}

func (m model) detailContent() string {
	var b strings.Builder
	b.WriteString("Details\n\n")

	if len(m.records) == 0 || m.selectedIdx >= len(m.records) {
		b.WriteString("No article selected.")
		return b.String()
	}

	record := m.records[m.selectedIdx]
	if record.Summary != "" {
		b.WriteString(record.Summary + "\n\n")
	}
	b.WriteString(fmt.Sprintf("Sentiment: %s (%.2f)\n", record.Sentiment, record.SentimentScore))
	b.WriteString(fmt.Sprintf("Market impact: %s %s\n",
		sentiment.ImpactEmoji(sentiment.MarketImpact(record.MarketImpact)), record.MarketImpact))
	if len(record.KeyTopics) > 0 {
		b.WriteString("Topics: " + strings.Join(record.KeyTopics, ", ") + "\n")
	}
	if record.SourceURL != "" && record.SourceURL != "unknown" {
		b.WriteString("Source: " + record.SourceURL + "\n")
	}
	if record.Origin != "" {
		b.WriteString("Origin: " + record.Origin + "\n")
	}
	return b.String()
}

// StartDashboard runs the dashboard over the given records. The source
// label is shown in the footer so the operator can tell whether records
// came from the store, the JSON artifact, or the CSV backup.
func StartDashboard(records []core.ArticleRecord, source string) error {
	p := tea.NewProgram(newModel(records, source), tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running dashboard: %w", err)
	}
	return nil
}
