package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/cherepashka123/browser-pet-companion/internal/applog"
	"github.com/cherepashka123/browser-pet-companion/internal/content"
	"github.com/cherepashka123/browser-pet-companion/internal/export"
	"github.com/cherepashka123/browser-pet-companion/internal/firefox"
	"github.com/cherepashka123/browser-pet-companion/internal/health"
	"github.com/cherepashka123/browser-pet-companion/internal/keeper"
	"github.com/cherepashka123/browser-pet-companion/internal/nests"
	"github.com/cherepashka123/browser-pet-companion/internal/server"
	"github.com/cherepashka123/browser-pet-companion/internal/storage"
	"github.com/cherepashka123/browser-pet-companion/internal/tui"
	"github.com/cherepashka123/browser-pet-companion/internal/types"
)

func main() {
	initLog()
	defer applog.Close()

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "serve":
			runServe(os.Args[2:])
			return
		case "analyze":
			runAnalyze(os.Args[2:])
			return
		case "export":
			runExport(os.Args[2:])
			return
		case "archive":
			runArchive(os.Args[2:])
			return
		case "profiles":
			runProfiles()
			return
		case "help", "--help", "-h":
			printHelp()
			return
		}
	}

	fs := flag.NewFlagSet("petkeeper", flag.ExitOnError)
	profileName := fs.String("profile", "", "Firefox profile name (skip picker)")
	fs.Parse(os.Args[1:])

	profiles, err := resolveProfiles(resolveProfileName(*profileName))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	db, err := openDB()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	model := tui.NewModel(profiles, db)
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Print(`petkeeper — the engine behind your browser pet

Usage:
  petkeeper                                  Start the TUI dashboard (default)
    --profile <name>       Firefox profile name (skips picker)

  petkeeper serve                            Run the live engine for the extension
    --port <n>             WebSocket port (default: 19191)

  petkeeper analyze                          One-shot tab health report
    --profile <name>       Firefox profile name
    --json                 Print the full report as JSON
    --fetch                Fetch page text to refine weak categorizations

  petkeeper export                           Export nests and health to stdout or file
    --profile <name>       Firefox profile name
    --json                 Export as JSON instead of markdown
    --out <file>           Output file path (default: stdout)

  petkeeper archive list                     List archived tabs
    --category <id>        Only one nest (school, work, ...)
  petkeeper archive clear                    Empty the nest archive
    --yes                  Skip confirmation

  petkeeper profiles                         List Firefox profiles

Environment:
  PETKEEPER_PROFILE      Default Firefox profile (overridden by --profile)
  PETKEEPER_DB           Database path (default: ~/.local/share/browser-pet-companion/pet.db)
  PETKEEPER_FIREFOX_DIR  Firefox config directory override
  PETKEEPER_DEBUG        Set to 1 for debug logging
`)
}

func runServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	port := fs.Int("port", 19191, "WebSocket port")
	fs.Parse(args)

	db, err := openDB()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	srv := server.New(*port)
	eng, err := keeper.New(db, db, srv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.ListenAndServe(ctx); err != nil {
			applog.Error("serve.listen", err)
		}
	}()

	fmt.Printf("Pet engine listening on 127.0.0.1:%d — waiting for the extension.\n", *port)
	eng.Run(ctx, srv.Messages())
	fmt.Println("\nShutting down.")
}

func runAnalyze(args []string) {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	profileName := fs.String("profile", "", "Firefox profile name")
	jsonFlag := fs.Bool("json", false, "Print the full report as JSON")
	fetch := fs.Bool("fetch", false, "Fetch page text to refine weak categorizations")
	fs.Parse(args)

	snap, err := resolveSnapshot(resolveProfileName(*profileName))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	rules := loadRules()
	for _, tab := range snap.Tabs {
		det := nests.Classify(tab, rules)
		if *fetch && det.Confidence < content.HintConfidence {
			det = content.Refine(det, tab.URL)
		}
		if det.CategoryID != types.CatUnsorted {
			tab.CategoryID = det.CategoryID
			tab.CategoryConfidence = det.Confidence
		}
	}

	report := export.BuildReport(snap.Profile.Name, snap.Tabs, time.Now())

	if *jsonFlag {
		out, err := export.JSON(report)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error generating JSON: %v\n", err)
			os.Exit(1)
		}
		fmt.Print(out)
		return
	}

	m := report.Metrics
	fmt.Printf("Profile: %s\n", snap.Profile.Name)
	fmt.Printf("Mood: %s\n", m.Emotion)
	fmt.Printf("Tabs: %d (clutter %s)\n", m.TotalTabs, m.ClutterLevel)
	fmt.Printf("Zombies: %d · Duplicate groups: %d\n", len(m.ZombieTabs), len(m.DuplicateGroups))
	if msg := health.Nudge(m); msg != "" {
		fmt.Printf("\nYour pet says: %q\n", msg)
	}

	fmt.Println()
	groups := nests.GroupByCategory(snap.Tabs)
	for _, nest := range nests.All {
		if n := len(groups[nest.ID]); n > 0 {
			fmt.Printf("%-22s %d\n", nest.Name, n)
		}
	}
}

func runExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	profileName := fs.String("profile", "", "Firefox profile name")
	jsonFlag := fs.Bool("json", false, "Export as JSON instead of markdown")
	outFile := fs.String("out", "", "Output file path (default: stdout)")
	fs.Parse(args)

	snap, err := resolveSnapshot(resolveProfileName(*profileName))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	rules := loadRules()
	for _, tab := range snap.Tabs {
		if det := nests.Classify(tab, rules); det.CategoryID != types.CatUnsorted {
			tab.CategoryID = det.CategoryID
			tab.CategoryConfidence = det.Confidence
		}
	}

	report := export.BuildReport(snap.Profile.Name, snap.Tabs, time.Now())

	var output string
	if *jsonFlag {
		output, err = export.JSON(report)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error generating JSON: %v\n", err)
			os.Exit(1)
		}
	} else {
		output = export.Markdown(report)
	}

	if *outFile != "" {
		if err := os.WriteFile(*outFile, []byte(output), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing file: %v\n", err)
			os.Exit(1)
		}
	} else {
		fmt.Print(output)
	}
}

func runArchive(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: petkeeper archive <list|clear>")
		os.Exit(1)
	}

	db, err := openDB()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	switch args[0] {
	case "list":
		fs := flag.NewFlagSet("archive list", flag.ExitOnError)
		category := fs.String("category", "", "Only one nest (school, work, ...)")
		fs.Parse(args[1:])

		items, err := db.ListArchive(types.CategoryID(*category))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if len(items) == 0 {
			fmt.Println("The nest archive is empty.")
			return
		}
		for _, item := range items {
			nest := nests.ByID(item.CategoryID)
			fmt.Printf("%s  [%s] %s\n    %s\n",
				item.ClosedAt.Format("2006-01-02 15:04"), nest.ID, item.Title, item.URL)
		}

	case "clear":
		fs := flag.NewFlagSet("archive clear", flag.ExitOnError)
		yes := fs.Bool("yes", false, "Skip confirmation")
		fs.Parse(args[1:])

		if !*yes {
			fmt.Print("Empty the whole nest archive? [y/N] ")
			var answer string
			fmt.Scanln(&answer)
			if answer != "y" && answer != "Y" {
				fmt.Println("Aborted.")
				return
			}
		}
		n, err := db.ClearArchive()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Removed %d archived tabs.\n", n)

	default:
		fmt.Fprintf(os.Stderr, "Unknown archive command %q. Use list or clear.\n", args[0])
		os.Exit(1)
	}
}

func runProfiles() {
	profiles, err := firefox.DiscoverProfiles()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error discovering Firefox profiles: %v\n", err)
		os.Exit(1)
	}
	if len(profiles) == 0 {
		fmt.Fprintln(os.Stderr, "No Firefox profiles found.")
		os.Exit(1)
	}

	for _, p := range profiles {
		suffix := ""
		if p.IsDefault {
			suffix = " [default]"
		}
		fmt.Printf("%s (%s)%s\n", p.Name, p.Path, suffix)
	}
}

// resolveProfileName returns the profile name from the flag if set,
// otherwise falls back to the PETKEEPER_PROFILE environment variable.
func resolveProfileName(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return os.Getenv("PETKEEPER_PROFILE")
}

// resolveProfiles discovers profiles, optionally filtered to one name.
func resolveProfiles(profileName string) ([]types.Profile, error) {
	profiles, err := firefox.DiscoverProfiles()
	if err != nil {
		return nil, fmt.Errorf("discover profiles: %w", err)
	}
	if len(profiles) == 0 {
		return nil, fmt.Errorf("no Firefox profiles found")
	}
	if profileName == "" {
		return profiles, nil
	}
	for _, p := range profiles {
		if p.Name == profileName {
			return []types.Profile{p}, nil
		}
	}
	return nil, fmt.Errorf("profile %q not found", profileName)
}

// resolveSnapshot reads session data for the named profile, defaulting
// to the profile marked default, then the first one found.
func resolveSnapshot(profileName string) (*firefox.Snapshot, error) {
	profiles, err := resolveProfiles(profileName)
	if err != nil {
		return nil, err
	}

	profile := profiles[0]
	if profileName == "" {
		for _, p := range profiles {
			if p.IsDefault {
				profile = p
				break
			}
		}
	}

	snap, err := firefox.ReadSessionFile(profile.Path)
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	snap.Profile = profile
	return snap, nil
}

// loadRules pulls the learned domain rules out of the engine database
// so offline commands classify the same way the live engine does.
// Missing or unreadable state just means no rules.
func loadRules() []types.DomainRule {
	db, err := openDB()
	if err != nil {
		return nil
	}
	defer db.Close()

	state, err := storage.LoadAppState(db)
	if err != nil {
		return nil
	}
	return state.Categorization.DomainRules
}

// initLog sets up the append-only event log next to the database.
// Logging is best effort; a failure here never blocks the tool.
func initLog() {
	path, err := storage.DefaultDBPath()
	if err != nil {
		return
	}
	applog.Init(filepath.Dir(path))
}

func openDB() (*storage.DB, error) {
	path, err := storage.DefaultDBPath()
	if err != nil {
		return nil, err
	}
	return storage.OpenDB(path)
}
