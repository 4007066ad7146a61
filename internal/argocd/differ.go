package argocd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"slices"
	"strings"

	"argocd-diff-preview/internal/config"
	"argocd-diff-preview/internal/diff"

	"golang.org/x/sync/errgroup"
)

// Exit codes of `argocd app diff`
const (
	exitNoDiff    = 0
	exitDiffFound = 1
)

// CommandResult is the captured outcome of an external command
type CommandResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// CommandRunner runs an external command. A non-zero exit code is reported in
// the result, not as an error; errors mean the command could not be run at all.
type CommandRunner interface {
	Run(ctx context.Context, name string, args, env []string) (CommandResult, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args, env []string) (CommandResult, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = append(os.Environ(), env...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := CommandResult{Stdout: stdout.String(), Stderr: stderr.String()}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		return result, nil
	}
	if err != nil {
		return result, fmt.Errorf("failed to run %s: %w", name, err)
	}
	return result, nil
}

// Differ produces diff records by running the ArgoCD CLI
type Differ struct {
	runner      CommandRunner
	cliPath     string
	commonArgs  []string
	env         []string
	exclude     []string
	concurrency int
}

// NewDiffer creates a Differ. A nil runner executes the real CLI.
func NewDiffer(cfg *config.Config, runner CommandRunner) *Differ {
	if runner == nil {
		runner = execRunner{}
	}

	server := cfg.ArgoCDServerURL
	var commonArgs []string
	switch {
	case strings.HasPrefix(server, "http://"):
		server = strings.TrimPrefix(server, "http://")
		commonArgs = append(commonArgs, "--plaintext")
	case strings.HasPrefix(server, "https://"):
		server = strings.TrimPrefix(server, "https://")
	}
	if cfg.ArgoCDSkipSSLVerify {
		commonArgs = append(commonArgs, "--insecure")
	}
	commonArgs = append(commonArgs, cfg.ArgoCDExtraCLIArgs...)

	concurrency := max(cfg.DiffConcurrency, 1)

	return &Differ{
		runner:     runner,
		cliPath:    cfg.ArgoCDCLIPath,
		commonArgs: commonArgs,
		env: []string{
			"ARGOCD_SERVER=" + server,
			"ARGOCD_AUTH_TOKEN=" + cfg.ArgoCDToken,
		},
		exclude:     cfg.AppExclude,
		concurrency: concurrency,
	}
}

// Diff renders the local diff of every application. Records keep the order of apps.
func (d *Differ) Diff(ctx context.Context, apps []Application) []diff.DiffRecord {
	records := make([]diff.DiffRecord, len(apps))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(d.concurrency)

	for i, app := range apps {
		g.Go(func() error {
			args := []string{"app", "diff", app.Metadata.Name}
			if path := app.SourcePath(); path != "" {
				args = append(args, "--local="+path)
			}
			records[i] = d.run(gCtx, app.Ref(), args)
			return nil
		})
	}
	g.Wait()

	return records
}

// DiffRevision renders the diff of an application against a git revision
func (d *Differ) DiffRevision(ctx context.Context, app Application, revision string) diff.DiffRecord {
	ref := app.Ref()
	ref.Revision = revision
	return d.run(ctx, ref, []string{"app", "diff", app.Metadata.Name, "--revision", revision})
}

// DiffNested diffs the child applications whose target revision changes in the
// given parent records. Children are diffed one at a time in discovery order,
// each at most once. Children already present in records or excluded by name are skipped.
func (d *Differ) DiffNested(ctx context.Context, records []diff.DiffRecord, apps []Application) []diff.DiffRecord {
	byName := make(map[string]Application, len(apps))
	for _, app := range apps {
		byName[app.Metadata.Name] = app
	}

	seen := make(map[string]bool, len(records))
	for _, rec := range records {
		seen[rec.App.Name] = true
	}

	var nested []diff.DiffRecord
	for _, rec := range records {
		for _, change := range FindRevisionChanges(rec.App.Name, rec.Diff) {
			if seen[change.Child] {
				continue
			}
			seen[change.Child] = true

			if slices.Contains(d.exclude, change.Child) {
				slog.Info("Skipping excluded nested application", "parent", change.Parent, "child", change.Child)
				continue
			}

			child, ok := byName[change.Child]
			if !ok {
				slog.Warn("Nested application not found in ArgoCD", "parent", change.Parent, "child", change.Child)
				continue
			}

			slog.Info("Found nested application revision change",
				"parent", change.Parent, "child", change.Child, "revision", change.Revision)
			nested = append(nested, d.DiffRevision(ctx, child, change.Revision))
		}
	}
	return nested
}

func (d *Differ) run(ctx context.Context, ref diff.AppRef, args []string) diff.DiffRecord {
	args = append(args, d.commonArgs...)
	command := d.cliPath + " " + strings.Join(args, " ")

	result, err := d.runner.Run(ctx, d.cliPath, args, d.env)
	if err != nil {
		slog.Error("Failed to run ArgoCD CLI", "app", ref.Name, "error", err)
		return diff.DiffRecord{App: ref, Error: &diff.DiffError{Stderr: result.Stderr, Err: err}}
	}

	switch result.ExitCode {
	case exitNoDiff:
		slog.Debug("No application diff", "app", ref.Name)
		return diff.DiffRecord{App: ref}
	case exitDiffFound:
		slog.Info("Found application diff", "app", ref.Name, "bytes", len(result.Stdout))
		return diff.DiffRecord{App: ref, Diff: result.Stdout}
	default:
		slog.Warn("Diff generation failed", "app", ref.Name, "exit_code", result.ExitCode)
		return diff.DiffRecord{
			App:  ref,
			Diff: result.Stdout,
			Error: &diff.DiffError{
				Stderr: result.Stderr,
				Err: &CommandError{
					Command:  command,
					ExitCode: result.ExitCode,
					Message:  firstLine(result.Stderr),
				},
			},
		}
	}
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return line
}
