package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/atinyakov/JobScout/internal/client/app"
	"github.com/atinyakov/JobScout/internal/client/onboarding"
	"github.com/atinyakov/JobScout/internal/models"
)

const gateRefusal = "A resume is required first. Use 'resume' or 'analyze', or open 'tab settings'."

const helpText = `Available commands:
  login <email>            start a session
  logout                   end the session
  status                   show session, gate and counters
  tab <name>               switch to dashboard|jobs|sources|filters|settings
  resume                   save resume text (opens the gate)
  analyze                  upload a resume file or pasted text and extract filters
  dismiss                  close the resume prompt
  jobs                     list cached job offers
  refresh                  reload job offers
  cover <job-id>           generate a cover letter
  sources                  list job sources
  add-source <name> <url>  create a job source
  toggle <id>              enable or disable a source locally
  delete <id>              delete a source
  sync <id>                trigger loading of new offers
  filters                  show the filter draft
  set <field> [a,b,...]    replace one filter field
  merge <field> [a,b,...]  merge one filter field and show the filters view
  save-filters             persist the filter draft
  exit`

type consoleNotifier struct {
	out io.Writer
}

func (n consoleNotifier) Success(msg string) {
	fmt.Fprintln(n.out, "✔", msg)
}

func (n consoleNotifier) Error(msg string, err error) {
	fmt.Fprintf(n.out, "✘ %s: %v\n", msg, err)
}

type shell struct {
	app     *app.App
	scanner *bufio.Scanner
	out     io.Writer
}

func newShell(a *app.App, in io.Reader, out io.Writer) *shell {
	return &shell{app: a, scanner: bufio.NewScanner(in), out: out}
}

func (s *shell) prompt() string {
	snap := s.app.Snapshot()
	if !snap.LoggedIn {
		return "jobscout> "
	}
	return fmt.Sprintf("jobscout[%s:%s]> ", snap.User, snap.Tab)
}

func (s *shell) ask(question string) string {
	fmt.Fprint(s.out, question)
	if !s.scanner.Scan() {
		return ""
	}
	return strings.TrimSpace(s.scanner.Text())
}

// run is the interactive loop. It returns on exit or end of input.
func (s *shell) run(ctx context.Context) {
	for {
		fmt.Fprint(s.out, s.prompt())
		if !s.scanner.Scan() {
			return
		}
		args := strings.Fields(s.scanner.Text())
		if len(args) == 0 {
			continue
		}
		if args[0] == "exit" {
			s.app.Logout()
			fmt.Fprintln(s.out, "Bye")
			return
		}
		if err := s.exec(ctx, args); err != nil {
			fmt.Fprintln(s.out, err)
		}
	}
}

func (s *shell) exec(ctx context.Context, args []string) error {
	switch args[0] {
	case "help":
		fmt.Fprintln(s.out, helpText)
	case "login":
		if len(args) < 2 {
			return errors.New("usage: login <email>")
		}
		if err := s.app.Login(ctx, args[1]); err != nil {
			return err
		}
		s.status()
	case "logout":
		s.app.Logout()
	case "status":
		s.status()
	case "tab":
		if len(args) < 2 {
			return errors.New("usage: tab <name>")
		}
		dest, ok := onboarding.ParseDestination(args[1])
		if !ok {
			return fmt.Errorf("unknown tab %q", args[1])
		}
		s.enter(dest)
	case "dismiss":
		if !s.app.DismissResumePrompt() {
			fmt.Fprintln(s.out, "The resume prompt stays open until a resume is provided.")
		}
	case "resume":
		s.app.ShowResumePrompt()
		text := s.ask("Paste resume text: ")
		if text == "" {
			return errors.New("resume text is empty")
		}
		return s.app.SaveResume(ctx, text)
	case "analyze":
		return s.analyze(ctx)
	default:
		dest, ok := screenOf[args[0]]
		if !ok {
			fmt.Fprintln(s.out, "Unknown command. Type 'help' for a list of commands.")
			return nil
		}
		if !s.enter(dest) {
			return nil
		}
		return s.execScreen(ctx, args)
	}
	return nil
}

// screenOf maps commands to the screen they show or change. They pass
// through the gate like a tab switch.
var screenOf = map[string]onboarding.Destination{
	"jobs":         onboarding.Jobs,
	"refresh":      onboarding.Jobs,
	"cover":        onboarding.Jobs,
	"sources":      onboarding.Sources,
	"add-source":   onboarding.Sources,
	"toggle":       onboarding.Sources,
	"delete":       onboarding.Sources,
	"sync":         onboarding.Sources,
	"filters":      onboarding.Filters,
	"set":          onboarding.Filters,
	"merge":        onboarding.Filters,
	"save-filters": onboarding.Filters,
}

// enter navigates to dest and reports whether the gate let it through.
func (s *shell) enter(dest onboarding.Destination) bool {
	if d := s.app.Navigate(dest); !d.Allowed {
		fmt.Fprintln(s.out, gateRefusal)
		return false
	}
	return true
}

func (s *shell) execScreen(ctx context.Context, args []string) error {
	switch args[0] {
	case "jobs":
		s.listJobs()
	case "refresh":
		return s.app.RefreshJobs(ctx)
	case "cover":
		if len(args) < 2 {
			return errors.New("usage: cover <job-id>")
		}
		letter, err := s.app.GenerateCoverLetter(ctx, args[1])
		if err != nil {
			return err
		}
		fmt.Fprintln(s.out, letter)
	case "sources":
		s.listSources()
	case "add-source":
		if len(args) < 3 {
			return errors.New("usage: add-source <name> <url>")
		}
		name := strings.Join(args[1:len(args)-1], " ")
		_, err := s.app.AddSource(ctx, name, args[len(args)-1])
		return err
	case "toggle":
		if len(args) < 2 {
			return errors.New("usage: toggle <id>")
		}
		res, err := s.app.ToggleSource(args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "%s enabled=%t (%s)\n", res.Source.Name, res.Source.Enabled, res.Outcome)
	case "delete":
		if len(args) < 2 {
			return errors.New("usage: delete <id>")
		}
		_, err := s.app.DeleteSource(ctx, args[1])
		return err
	case "sync":
		if len(args) < 2 {
			return errors.New("usage: sync <id>")
		}
		_, err := s.app.SyncSource(ctx, args[1])
		return err
	case "filters":
		s.showFilters()
	case "set", "merge":
		if len(args) < 2 {
			return fmt.Errorf("usage: %s <field> [a,b,...]", args[0])
		}
		var values []string
		if len(args) > 2 {
			values = splitList(strings.Join(args[2:], " "))
		} else {
			values = []string{}
		}
		frag, err := fragmentFor(args[1], values)
		if err != nil {
			return err
		}
		if args[0] == "merge" {
			s.app.MergeFilters(frag)
		} else {
			s.app.UpdateFilters(s.app.Snapshot().Filters.Merge(frag))
		}
		s.showFilters()
	case "save-filters":
		return s.app.SaveFilters(ctx)
	}
	return nil
}

// analyze follows the resume prompt: a file path uploads the file, an empty
// answer switches to pasted text.
func (s *shell) analyze(ctx context.Context) error {
	s.app.ShowResumePrompt()
	path := s.ask("Enter file path to load (leave empty for manual input): ")
	if path == "" {
		text := s.ask("Paste resume text: ")
		return s.app.AnalyzeResume(ctx, "", nil, text)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to read file %q: %w", path, err)
	}
	defer f.Close()
	if err := s.app.AnalyzeResume(ctx, filepath.Base(path), f, ""); err != nil {
		return err
	}
	s.showFilters()
	return nil
}

func (s *shell) status() {
	snap := s.app.Snapshot()
	if !snap.LoggedIn {
		fmt.Fprintln(s.out, "Not logged in")
		return
	}
	fmt.Fprintf(s.out, "User: %s\nTab: %s\nGate: %s\nJobs: %d (%d matched)\nSources: %d\nFilters changed: %t\n",
		snap.User, snap.Tab, snap.Gate, len(snap.Jobs), snap.Matched, len(snap.Sources), snap.FiltersDirty)
	if snap.ResumePrompt {
		fmt.Fprintln(s.out, "Resume required: use 'resume' or 'analyze'.")
	}
}

func (s *shell) listJobs() {
	snap := s.app.Snapshot()
	if len(snap.Jobs) == 0 {
		fmt.Fprintln(s.out, "No job offers")
		return
	}
	for _, j := range snap.Jobs {
		mark := " "
		if j.IsMatch {
			mark = "*"
		}
		fmt.Fprintf(s.out, "%s %s  %s @ %s  [%s]  score %.0f\n", mark, j.ID, j.Title, j.Company, j.Location, j.MatchScore)
	}
}

func (s *shell) listSources() {
	snap := s.app.Snapshot()
	if len(snap.Sources) == 0 {
		fmt.Fprintln(s.out, "No job sources")
		return
	}
	for _, src := range snap.Sources {
		last := "never"
		if src.LastSync != nil {
			last = src.LastSync.Format(time.RFC3339)
		}
		fmt.Fprintf(s.out, "%s  %s (%s) %s enabled=%t last sync: %s\n", src.ID, src.Name, src.Type, src.URL, src.Enabled, last)
	}
}

func (s *shell) showFilters() {
	snap := s.app.Snapshot()
	f := snap.Filters
	fmt.Fprintf(s.out, "stack: %s\nexperience: %s\nkeywords: %s\nexcludeKeywords: %s\nlocation: %s\njobType: %s\n",
		strings.Join(f.Stack, ", "), strings.Join(f.Experience, ", "), strings.Join(f.Keywords, ", "),
		strings.Join(f.ExcludeKeywords, ", "), strings.Join(f.Location, ", "), strings.Join(f.JobType, ", "))
	if snap.FiltersDirty {
		fmt.Fprintln(s.out, "(unsaved changes)")
	}
}

func splitList(s string) []string {
	out := []string{}
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// fragmentFor builds a fragment with only the named field present.
func fragmentFor(field string, values []string) (models.FilterFragment, error) {
	var f models.FilterFragment
	switch field {
	case "stack":
		f.Stack = values
	case "experience":
		f.Experience = values
	case "keywords":
		f.Keywords = values
	case "excludeKeywords":
		f.ExcludeKeywords = values
	case "location":
		f.Location = values
	case "jobType":
		f.JobType = values
	default:
		return f, fmt.Errorf("unknown filter field %q", field)
	}
	return f, nil
}
