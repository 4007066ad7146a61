package cli

import (
	"cmp"
	"flag"
	"fmt"
	"os"
)

// Output modes
const (
	ModeGitHub = "github"
	ModeGitLab = "gitlab"
	ModeStdout = "stdout"
)

// Args holds the parsed command-line arguments
type Args struct {
	Mode        string
	PRNumber    int64
	CommitSHA   string
	RecordsFile string
	ShowHelp    bool
}

// Parse parses command-line arguments
func Parse() (*Args, error) {
	args := &Args{}

	// Define flags with both long and short forms
	flag.StringVar(&args.Mode, "mode", "", "Output mode: 'github', 'gitlab' or 'stdout'")
	flag.StringVar(&args.Mode, "m", "", "Output mode (shorthand)")

	flag.Int64Var(&args.PRNumber, "pr", 0, "Pull request number (github) or merge request IID (gitlab)")
	flag.Int64Var(&args.PRNumber, "p", 0, "Pull/merge request number (shorthand)")

	flag.StringVar(&args.CommitSHA, "commit", "", "Head commit SHA shown in the comment header")
	flag.StringVar(&args.CommitSHA, "c", "", "Head commit SHA (shorthand)")

	flag.StringVar(&args.RecordsFile, "records", "", "YAML file with pre-computed diff records (skips ArgoCD)")
	flag.StringVar(&args.RecordsFile, "r", "", "Diff records file (shorthand)")

	flag.BoolVar(&args.ShowHelp, "help", false, "Show help message")
	flag.BoolVar(&args.ShowHelp, "h", false, "Show help message (shorthand)")

	flag.Parse()

	// Check for help flag early - no need to validate if user just wants help
	if args.ShowHelp {
		return args, nil
	}

	// Determine mode (infer if not explicitly set)
	args.Mode = args.determineMode()

	// Fall back to the commit of the CI pipeline
	args.CommitSHA = cmp.Or(args.CommitSHA, os.Getenv("GITHUB_SHA"), os.Getenv("CI_COMMIT_SHA"))

	// Validate arguments
	if err := args.validate(); err != nil {
		return nil, err
	}

	return args, nil
}

// determineMode determines the output mode from arguments
func (a *Args) determineMode() string {
	// Explicit mode flag takes precedence
	if a.Mode != "" {
		return a.Mode
	}

	// Offline records are printed unless a destination is requested
	if a.RecordsFile != "" {
		return ModeStdout
	}
	if a.PRNumber > 0 {
		return ModeGitHub
	}

	return ModeStdout
}

// validate validates the parsed arguments based on the determined mode
func (a *Args) validate() error {
	if a.Mode != ModeGitHub && a.Mode != ModeGitLab && a.Mode != ModeStdout {
		return fmt.Errorf("invalid mode '%s': must be 'github', 'gitlab' or 'stdout'", a.Mode)
	}

	if a.PRNumber < 0 {
		return fmt.Errorf("--pr must be a positive number, got %d", a.PRNumber)
	}

	switch a.Mode {
	case ModeGitHub, ModeGitLab:
		if a.PRNumber == 0 {
			return fmt.Errorf("%s mode requires --pr\n\nTry:\n  argocd-diff-preview --mode %s --pr <number>\n\nOr run 'argocd-diff-preview --help' for more information", a.Mode, a.Mode)
		}
	}

	return nil
}

// ShowUsage displays usage information
func ShowUsage() {
	fmt.Println(`ArgoCD Diff Preview - post ArgoCD application diffs to pull requests

USAGE:
  Post to a GitHub pull request:
    argocd-diff-preview --mode github --pr <number>

  Post to a GitLab merge request:
    argocd-diff-preview --mode gitlab --pr <iid>

  Print comments to stdout:
    argocd-diff-preview --mode stdout

FLAGS:
  -m, --mode <mode>          Output mode: 'github', 'gitlab' or 'stdout'
  -p, --pr <number>          Pull request number or merge request IID
  -c, --commit <sha>         Head commit SHA (defaults to GITHUB_SHA / CI_COMMIT_SHA)
  -r, --records <file>       Render pre-computed diff records from a YAML file
  -h, --help                 Show this help message

EXAMPLES:
  # Diff every tracked application and post to PR #42
  argocd-diff-preview -m github -p 42 -c "$GITHUB_SHA"

  # Render saved diff records without contacting ArgoCD
  argocd-diff-preview -r diffs.yaml > comments.md

CONFIGURATION:
  All configuration is set via ADP_* environment variables.
  A .env file in the working directory is loaded automatically.`)
}
