package main

import (
	"fmt"
	"log"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/kass/go-rrt-planner/pkg/rrt"
	"github.com/kass/go-rrt-planner/pkg/scenario"
)

const batchRuns = 200

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF79C6")).
			Background(lipgloss.Color("#282A36")).
			Padding(0, 1).
			MarginTop(1).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#8BE9FD"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#50FA7B"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5555"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F1FA8C"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6272A4"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#BD93F9")).
			Padding(1, 2).
			MarginTop(1).
			MarginBottom(1)

	statStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFB86C"))
)

var program *tea.Program

type stage int

const (
	stageScenarios stage = iota
	stageBatch
	stageDone
)

type model struct {
	stage           stage
	spinner         spinner.Model
	progress        progress.Model
	progressPercent float64

	results []scenarioResult
	batch   batchResult

	messages []string
	width    int
}

type scenarioResult struct {
	name   string
	result rrt.Result
	err    error
}

type batchResult struct {
	runs      int
	succeeded int64
	exhausted int64
	blocked   int64
	totalTime time.Duration
}

type progressMsg float64
type scenarioMsg scenarioResult
type batchMsg batchResult
type messageMsg string

func initialModel() model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF79C6"))

	return model{
		stage:    stageScenarios,
		spinner:  s,
		progress: progress.New(progress.WithDefaultGradient()),
		width:    80,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		runDemo(),
	)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.progress.Width = msg.Width - 10
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		return m, cmd

	case progressMsg:
		m.progressPercent = float64(msg)
		return m, m.progress.SetPercent(float64(msg))

	case messageMsg:
		m.messages = append(m.messages, string(msg))
		if len(m.messages) > 5 {
			m.messages = m.messages[1:]
		}
		return m, nil

	case scenarioMsg:
		m.results = append(m.results, scenarioResult(msg))
		if len(m.results) == len(scenario.Builtin()) {
			m.stage = stageBatch
		}
		return m, nil

	case batchMsg:
		m.batch = batchResult(msg)
		m.stage = stageDone
		return m, nil
	}

	return m, nil
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("RRT Waypoint Planner Demo"))
	b.WriteString("\n\n")

	for _, r := range m.results {
		b.WriteString(renderScenario(r))
		b.WriteString("\n")
	}

	switch m.stage {
	case stageScenarios:
		b.WriteString("\n" + m.spinner.View() + " Planning builtin scenarios...\n")

	case stageBatch:
		b.WriteString("\n")
		b.WriteString(subtitleStyle.Render("Batch Benchmark"))
		b.WriteString("\n\n")
		b.WriteString(m.spinner.View() + fmt.Sprintf(" Running %d wall-detour searches on %d workers...\n\n", batchRuns, runtime.NumCPU()))
		b.WriteString(m.progress.ViewAs(m.progressPercent))

	case stageDone:
		b.WriteString(renderBatch(m.batch))
	}

	if len(m.messages) > 0 {
		b.WriteString("\n\n")
		b.WriteString(dimStyle.Render("Recent activity:"))
		b.WriteString("\n")
		for _, msg := range m.messages {
			b.WriteString(dimStyle.Render("• " + msg))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n\n")
	b.WriteString(dimStyle.Render("Press 'q' to quit"))

	return b.String()
}

func renderScenario(r scenarioResult) string {
	style := errorStyle
	switch r.result.Status {
	case rrt.Succeeded:
		style = successStyle
	case rrt.Exhausted:
		style = infoStyle
	}

	line := fmt.Sprintf("%-12s %s  iterations %s  tree %s  waypoints %s  %s",
		r.name,
		style.Render(fmt.Sprintf("%-9s", r.result.Status)),
		statStyle.Render(fmt.Sprintf("%d", r.result.Iterations)),
		statStyle.Render(fmt.Sprintf("%d", r.result.TreeSize)),
		statStyle.Render(fmt.Sprintf("%d", len(r.result.Waypoints))),
		dimStyle.Render(r.result.Elapsed.String()),
	)
	if r.err != nil {
		line += "\n" + dimStyle.Render("  "+r.err.Error())
	}
	return line
}

func renderBatch(res batchResult) string {
	content := fmt.Sprintf(
		"✓ Total searches: %s\n"+
			"✓ Total time: %s\n"+
			"✓ Searches per second: %s\n"+
			"✓ Succeeded: %s\n"+
			"✓ Exhausted: %s\n"+
			"✓ Blocked: %s",
		statStyle.Render(fmt.Sprintf("%d", res.runs)),
		statStyle.Render(res.totalTime.String()),
		statStyle.Render(fmt.Sprintf("%.1f", float64(res.runs)/res.totalTime.Seconds())),
		statStyle.Render(fmt.Sprintf("%d", res.succeeded)),
		statStyle.Render(fmt.Sprintf("%d", res.exhausted)),
		statStyle.Render(fmt.Sprintf("%d", res.blocked)),
	)
	return boxStyle.Render(successStyle.Render("Batch Complete!\n\n") + content)
}

func runDemo() tea.Cmd {
	return func() tea.Msg {
		go executeDemo()
		return nil
	}
}

func executeDemo() {
	for i, s := range scenario.Builtin() {
		field, err := s.Field()
		if err != nil {
			program.Send(messageMsg(fmt.Sprintf("Error building %s: %v", s.Name, err)))
			continue
		}
		planner, err := rrt.New(field, rrt.DefaultConfig(), rrt.WithSeed(int64(i+1)))
		if err != nil {
			program.Send(messageMsg(fmt.Sprintf("Error creating planner: %v", err)))
			continue
		}
		res, err := planner.Plan(s.Request(0))
		program.Send(scenarioMsg{name: s.Name, result: res, err: err})
	}

	program.Send(batchMsg(runBatch()))
}

func runBatch() batchResult {
	s, _ := scenario.Lookup("wall-detour")
	field, err := s.Field()
	if err != nil {
		program.Send(messageMsg(fmt.Sprintf("Error building field: %v", err)))
		return batchResult{}
	}

	var (
		res  = batchResult{runs: batchRuns}
		done atomic.Int32
		wg   sync.WaitGroup
	)
	jobs := make(chan struct{})
	start := time.Now()

	started := 0
	for w := 0; w < runtime.NumCPU(); w++ {
		planner, err := rrt.New(field, rrt.DefaultConfig(), rrt.WithSeed(time.Now().UnixNano()+int64(w)))
		if err != nil {
			program.Send(messageMsg(fmt.Sprintf("Error creating planner: %v", err)))
			continue
		}
		wg.Add(1)
		go func(planner *rrt.Planner) {
			defer wg.Done()
			for range jobs {
				out, _ := planner.Plan(s.Request(0))
				switch out.Status {
				case rrt.Succeeded:
					atomic.AddInt64(&res.succeeded, 1)
				case rrt.Exhausted:
					atomic.AddInt64(&res.exhausted, 1)
				case rrt.Blocked:
					atomic.AddInt64(&res.blocked, 1)
				}
				n := done.Add(1)
				if n%10 == 0 {
					program.Send(progressMsg(float64(n) / batchRuns))
				}
			}
		}(planner)
		started++
	}
	if started == 0 {
		return res
	}

	for i := 0; i < batchRuns; i++ {
		jobs <- struct{}{}
	}
	close(jobs)
	wg.Wait()

	res.totalTime = time.Since(start)
	program.Send(progressMsg(1))
	return res
}

func main() {
	program = tea.NewProgram(initialModel())

	if _, err := program.Run(); err != nil {
		log.Fatal(err)
	}
}
