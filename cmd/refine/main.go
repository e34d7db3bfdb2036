// Command refine runs one interactive research session: it asks for a
// query and a save preference, then drives the bounded refinement loop
// against Groq and prints the run log.
//
// Requires GROQ_API_KEY in the environment.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rmurphy/refine/pkg/refine"
	"github.com/rmurphy/refine/pkg/refine/agent"
	"github.com/rmurphy/refine/pkg/refine/config"
	"github.com/rmurphy/refine/pkg/refine/llm"
	"github.com/rmurphy/refine/pkg/refine/memory"
	"github.com/rmurphy/refine/pkg/refine/notes"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	sectionStyle = lipgloss.NewStyle().Bold(true)
	noteStyle    = lipgloss.NewStyle().PaddingLeft(2)
	faintStyle   = lipgloss.NewStyle().Faint(true)
	errStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
)

func main() {
	configPath := flag.String("config", "", "settings file (yaml or json)")
	queryFlag := flag.String("query", "", "research query (skips the interactive prompt)")
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Parse()

	settings := config.Default()
	if *configPath != "" {
		loaded, err := config.FromFile(*configPath)
		if err != nil {
			fatal("load settings: %v", err)
		}
		settings = loaded
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	apiKey := os.Getenv("GROQ_API_KEY")
	if apiKey == "" {
		fatal("GROQ_API_KEY not set in environment")
	}

	query := *queryFlag
	saveToNotepad := settings.Notepad.Enabled
	if query == "" {
		var err error
		query, saveToNotepad, err = promptUser()
		if err == errPromptCancelled {
			os.Exit(130)
		}
		if err != nil {
			fatal("prompt: %v", err)
		}
	}

	groqOpts := []llm.GroqOption{llm.WithModel(settings.Model.Research)}
	if settings.Model.BaseURL != "" {
		groqOpts = append(groqOpts, llm.WithBaseURL(settings.Model.BaseURL))
	}
	if settings.Model.MaxTokens > 0 {
		groqOpts = append(groqOpts, llm.WithMaxTokens(settings.Model.MaxTokens))
	}
	client := llm.NewGroq(apiKey, groqOpts...)

	store, err := openStore(settings)
	if err != nil {
		fatal("open memory store: %v", err)
	}
	if store != nil {
		defer store.Close()
	}

	researcher := agent.NewResearcher(client, agent.WithResearchModel(settings.Model.Research))
	executor := agent.NewExecutor(client, agent.WithFinalizeModel(settings.Model.Finalize))
	ctrl := refine.New(researcher.Produce, executor.Finalize,
		refine.WithEvaluator(agent.Supervisor{}.Evaluate))

	runOpts := []refine.RunOption{
		refine.WithRunLogger(logger),
		refine.WithCapPolicy(capPolicy(settings)),
	}
	if settings.StepTimeout.Duration > 0 {
		runOpts = append(runOpts, refine.WithStepTimeout(settings.StepTimeout.Duration))
	}
	if store != nil {
		runOpts = append(runOpts, refine.WithMemoryStore(store))
	}
	if saveToNotepad {
		runOpts = append(runOpts, refine.WithNotesSink(notes.NewFileSink(settings.Notepad.Path)))
	}

	ctx := refine.NewContext(context.Background(),
		refine.WithLogger(logger),
		refine.WithLLM(client))

	fmt.Println(faintStyle.Render("Running refinement loop..."))
	result, err := ctrl.Run(ctx, refine.NewRecord(query, settings.MaxIterations), runOpts...)
	if err != nil {
		fatal("run: %v", err)
	}

	printRunLog(result, settings, saveToNotepad)
}

// printRunLog renders the final record the way the run log of the
// original scripts did: query, iteration count, notes, final note.
func printRunLog(rec refine.Record, settings config.Settings, saved bool) {
	fmt.Println()
	fmt.Println(titleStyle.Render("=== RUN LOG ==="))
	fmt.Printf("%s %s\n", sectionStyle.Render("Query:"), rec.Query)
	fmt.Printf("%s %d of %d\n", sectionStyle.Render("Iterations:"), rec.Iteration, rec.MaxIterations)

	fmt.Println(sectionStyle.Render("Research notes:"))
	if len(rec.Notes) == 0 {
		fmt.Println(noteStyle.Render(faintStyle.Render("(none)")))
	}
	for i, block := range rec.Notes {
		fmt.Println(noteStyle.Render(fmt.Sprintf("--- pass %d ---", i+1)))
		for _, line := range strings.Split(block, "\n") {
			fmt.Println(noteStyle.Render(line))
		}
	}

	fmt.Println(sectionStyle.Render("Final note:"))
	fmt.Println(noteStyle.Render(rec.FinalOutput))

	if saved {
		fmt.Println(faintStyle.Render("final note appended to " + settings.Notepad.Path))
	}
	if settings.Memory.Backend != config.BackendNone {
		fmt.Println(faintStyle.Render("memory persisted to " + settings.Memory.Path))
	}
}

// openStore builds the memory store named by the settings.
// Returns nil when persistence is disabled.
func openStore(settings config.Settings) (memory.Store, error) {
	switch settings.Memory.Backend {
	case config.BackendFile:
		return memory.NewFileStore(settings.Memory.Path), nil
	case config.BackendSQLite:
		return memory.NewSQLiteStore(settings.Memory.Path)
	default:
		return nil, nil
	}
}

// capPolicy maps the settings value onto the controller's policy type.
func capPolicy(settings config.Settings) refine.CapPolicy {
	if settings.CapPolicy == config.CapPreserve {
		return refine.CapPreserve
	}
	return refine.CapForceFalse
}

func fatal(format string, args ...any) {
	fmt.Fprintln(os.Stderr, errStyle.Render(fmt.Sprintf(format, args...)))
	os.Exit(1)
}
