package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dorbarker/gogetem/internal/writers"
)

// Colors for modern design
var (
	primaryColor   = lipgloss.Color("#7C3AED") // Purple
	secondaryColor = lipgloss.Color("#10B981") // Green
	accentColor    = lipgloss.Color("#F59E0B") // Amber
	surfaceColor   = lipgloss.Color("#1F2937") // Dark gray
	textColor      = lipgloss.Color("#F3F4F6") // Light gray
	mutedColor     = lipgloss.Color("#9CA3AF") // Muted gray
	borderColor    = lipgloss.Color("#374151") // Border gray
)

// Styles
var (
	containerStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor)

	titleStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true).
			Align(lipgloss.Center)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(textColor).
			Background(surfaceColor).
			Padding(0, 1)

	sequenceStyle = lipgloss.NewStyle().
			Foreground(textColor).
			Background(lipgloss.Color("#111827")).
			Padding(1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor)

	withAAStyle    = lipgloss.NewStyle().Foreground(secondaryColor).Bold(true)
	withoutAAStyle = lipgloss.NewStyle().Foreground(mutedColor)
)

type listItem struct {
	record writers.Record
}

func (i listItem) FilterValue() string {
	return i.record.Accession + " " + i.record.Name
}

func (i listItem) Title() string {
	if i.record.Accession != "" {
		return i.record.Accession
	}
	return i.record.Name
}

func (i listItem) Description() string {
	// Metadata line shown below the title in the selector list
	aa := "no translation"
	style := withoutAAStyle
	if i.record.Translation != "" {
		aa = fmt.Sprintf("AA: %d", len(i.record.Translation))
		style = withAAStyle
	}
	return fmt.Sprintf("NT: %d    %s", len(i.record.Sequence), style.Render(aa))
}

type mode int

const (
	modeNucleotides mode = iota
	modeTranslation
)

func (m mode) String() string {
	switch m {
	case modeNucleotides:
		return "Nucleotides"
	case modeTranslation:
		return "Translation"
	default:
		return "Unknown"
	}
}

type model struct {
	list          list.Model
	records       []writers.Record
	currentMode   mode
	showHelp      bool
	width         int
	height        int
	totalRecords  int
	selectedIndex int
}

func initialModel(path string) model {
	records, err := writers.ReadRecords(path)
	if err != nil {
		log.Fatal(err)
	}
	if len(records) == 0 {
		log.Fatalf("no records found in %s", path)
	}

	items := make([]list.Item, len(records))
	for i, record := range records {
		items[i] = listItem{record: record}
	}

	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Downloaded Sequences"
	l.SetShowStatusBar(false)
	l.SetShowPagination(true)
	l.SetFilteringEnabled(true)

	return model{
		list:         l,
		records:      records,
		currentMode:  modeNucleotides,
		totalRecords: len(records),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		// left panel takes 1/3 of the width
		m.list.SetWidth(msg.Width / 3)
		m.list.SetHeight(msg.Height - 4)

		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "h":
			m.showHelp = !m.showHelp
			return m, nil

		case "1":
			m.currentMode = modeNucleotides
			return m, nil

		case "2":
			m.currentMode = modeTranslation
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	m.selectedIndex = m.list.Index()
	return m, cmd
}

func (m model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelpModal()
	}

	main := lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.renderLeftPanel(),
		m.renderRightPanel(),
	)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		main,
		m.renderStatusBar(),
	)
}

func (m model) renderLeftPanel() string {
	listWidth := m.width / 3
	return containerStyle.
		Width(listWidth - 2).
		Height(m.height - 4).
		Render(m.list.View())
}

func (m model) renderRightPanel() string {
	rightWidth := (m.width * 2) / 3

	selectedItem := m.list.SelectedItem()
	if selectedItem == nil {
		return containerStyle.
			Width(rightWidth - 2).
			Height(m.height - 4).
			Render("No record selected")
	}

	record := selectedItem.(listItem).record

	header := titleStyle.Render(fmt.Sprintf("%s - %s", record.Accession, record.Name))

	label := lipgloss.NewStyle().Foreground(mutedColor)
	ntColored := withAAStyle.Render(fmt.Sprintf("NT: %d", len(record.Sequence)))
	aaStr := "no translation"
	if record.Translation != "" {
		aaStr = fmt.Sprintf("AA: %d", len(record.Translation))
	}
	metaStr := label.Render("Lengths: ") + ntColored + label.Render("    ") + withAAStyle.Render(aaStr)

	var content string
	switch m.currentMode {
	case modeNucleotides:
		content = m.formatSequence(record.Sequence, "Nucleotides")
	case modeTranslation:
		content = m.formatSequence(record.Translation, "Translation")
	}

	panelContent := lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		metaStr,
		"",
		content,
	)

	return containerStyle.
		Width(rightWidth - 2).
		Height(m.height - 4).
		Render(panelContent)
}

func (m model) formatSequence(sequence, title string) string {
	if sequence == "" {
		return lipgloss.NewStyle().
			Foreground(mutedColor).
			Render(fmt.Sprintf("No %s available", strings.ToLower(title)))
	}

	cleanSequence := strings.ReplaceAll(sequence, "\n", "")
	cleanSequence = strings.ReplaceAll(cleanSequence, "\r", "")

	titleStr := lipgloss.NewStyle().
		Foreground(accentColor).
		Bold(true).
		Render(title + ":")

	sequenceContent := sequenceStyle.
		Width(m.width*2/3 - 6).
		Render(cleanSequence)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		titleStr,
		"",
		sequenceContent,
	)
}

func (m model) renderStatusBar() string {
	leftInfo := fmt.Sprintf("%d/%d records", m.selectedIndex+1, m.totalRecords)
	centerInfo := fmt.Sprintf("Mode: %s", m.currentMode.String())
	rightInfo := "Press 'h' for help, 'q' to quit"

	totalUsed := len(leftInfo) + len(centerInfo) + len(rightInfo)
	spacing := m.width - totalUsed - 6

	var statusContent string
	if spacing > 0 {
		leftSpacing := spacing / 2
		rightSpacing := spacing - leftSpacing

		statusContent = fmt.Sprintf("%s%s%s%s%s",
			leftInfo,
			strings.Repeat(" ", leftSpacing),
			centerInfo,
			strings.Repeat(" ", rightSpacing),
			rightInfo,
		)
	} else {
		// Fallback for narrow terminals
		statusContent = fmt.Sprintf("%s | %s", leftInfo, centerInfo)
	}

	return statusBarStyle.
		Width(m.width).
		Render(statusContent)
}

func (m model) renderHelpModal() string {
	helpContent := `Sequence Browser - Help

Navigation:
  up/down, j/k Navigate list
  /            Filter records
  Enter        Select record

View Modes:
  1            Show nucleotides
  2            Show amino acid translation

General:
  h            Toggle this help
  q, Ctrl+C    Quit application

Current Mode: ` + m.currentMode.String() + `
Total Records: ` + fmt.Sprintf("%d", m.totalRecords) + `
`

	modalStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(primaryColor).
		Padding(1, 2).
		Background(surfaceColor).
		Foreground(textColor).
		Width(60).
		Align(lipgloss.Center)

	modal := modalStyle.Render(helpContent)

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		modal,
	)
}

func main() {
	inFlag := flag.String("in", "sequences.jsonl", "downloaded dataset to browse (jsonl or fasta)")
	flag.Parse()

	p := tea.NewProgram(initialModel(*inFlag), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error: %v", err)
		os.Exit(1)
	}
}
