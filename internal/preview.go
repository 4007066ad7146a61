package internal

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"argocd-diff-preview/internal/argocd"
	"argocd-diff-preview/internal/cli"
	"argocd-diff-preview/internal/config"
	"argocd-diff-preview/internal/diff"
	"argocd-diff-preview/internal/git/github"
	"argocd-diff-preview/internal/git/gitlab"
	"argocd-diff-preview/internal/git/shared"
	"argocd-diff-preview/internal/git/types"
	"argocd-diff-preview/internal/records"
	"argocd-diff-preview/internal/report"
	"argocd-diff-preview/internal/scrub"
)

// stdoutSeparator is printed between comment bodies in stdout mode
var stdoutSeparator = "\n" + strings.Repeat("=", 80) + "\n\n"

type Previewer struct {
	config   *config.Config
	args     *cli.Args
	provider types.Provider // Nil in stdout mode
	argocd   *argocd.Client // Nil when diff records are read from a file
	differ   *argocd.Differ
	out      io.Writer
	now      func() time.Time
}

func New(cfg *config.Config, args *cli.Args) (*Previewer, error) {
	p := &Previewer{
		config: cfg,
		args:   args,
		out:    os.Stdout,
		now:    time.Now,
	}

	switch args.Mode {
	case cli.ModeGitHub:
		provider, err := github.NewProvider(cfg, args.PRNumber)
		if err != nil {
			return nil, fmt.Errorf("failed to create GitHub provider: %w", err)
		}
		p.provider = provider
	case cli.ModeGitLab:
		provider, err := gitlab.NewProvider(cfg, args.PRNumber)
		if err != nil {
			return nil, fmt.Errorf("failed to create GitLab provider: %w", err)
		}
		p.provider = provider
	}

	if args.RecordsFile == "" {
		p.argocd = argocd.NewClient(cfg)
		p.differ = argocd.NewDiffer(cfg, nil)
	}

	return p, nil
}

// Run collects diff records, renders them into size-bounded comments and publishes them
func (p *Previewer) Run(ctx context.Context) error {
	repository, err := p.repository(ctx)
	if err != nil {
		return err
	}

	records, err := p.collect(ctx, repository)
	if err != nil {
		return err
	}

	layout, err := p.layout()
	if err != nil {
		return err
	}

	bodies := diff.Build(reportable(records), layout, slog.Default())
	bodies = scrub.ScrubBodies(bodies, p.config.Secrets(), layout.Limit, slog.Default())

	return p.publish(ctx, bodies)
}

// collect returns the diff records to report, either from the records file or from ArgoCD
func (p *Previewer) collect(ctx context.Context, repository string) ([]diff.DiffRecord, error) {
	if p.args.RecordsFile != "" {
		recs, err := records.Load(p.args.RecordsFile)
		if err != nil {
			return nil, err
		}
		slog.Info("Loaded diff records", "file", p.args.RecordsFile, "records", len(recs))
		return recs, nil
	}

	apps, err := p.argocd.ListApplications(ctx)
	if err != nil {
		return nil, err
	}

	opts := argocd.FilterOptions{
		Repository:      repository,
		TargetRevisions: p.config.TargetRevisions,
		Exclude:         p.config.AppExclude,
	}
	if p.config.OnlyChangedApps {
		lister, ok := p.provider.(types.ChangedFilesLister)
		if !ok {
			return nil, fmt.Errorf("ADP_ONLY_CHANGED_APPS is not supported in %s mode", p.args.Mode)
		}
		files, err := lister.ChangedFiles(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list changed files: %w", err)
		}
		opts.ChangedFiles = files
	}

	selected := argocd.FilterApplications(apps, opts)
	slog.Info("Generating application diffs", "apps", len(selected), "concurrency", p.config.DiffConcurrency)

	recs := p.differ.Diff(ctx, selected)
	nested := p.differ.DiffNested(ctx, recs, apps)

	return append(recs, nested...), nil
}

// repository returns the repository name used to match application sources.
// Providers that resolve it (e.g. a GitLab project given by numeric ID) take
// precedence over the configured name.
func (p *Previewer) repository(ctx context.Context) (string, error) {
	if resolver, ok := p.provider.(types.RepositoryResolver); ok {
		repository, err := resolver.Repository(ctx)
		if err != nil {
			return "", fmt.Errorf("failed to resolve %s repository: %w", p.provider.Name(), err)
		}
		return repository, nil
	}

	if p.args.Mode == cli.ModeGitLab {
		return p.config.GitLabProject, nil
	}
	return p.config.GitHubRepository, nil
}

func (p *Previewer) layout() (diff.Layout, error) {
	data := report.HeaderData{
		CommitSHA: p.args.CommitSHA,
		UpdatedAt: p.now(),
		Location:  p.config.Timezone,
	}
	if p.provider != nil && p.args.CommitSHA != "" {
		data.CommitURL = p.provider.CommitURL(p.args.CommitSHA)
	}

	header, err := report.Header(data)
	if err != nil {
		return diff.Layout{}, err
	}

	return diff.Layout{
		Header:    header,
		Legend:    report.Legend(),
		Limit:     p.config.CommentSizeLimit,
		RenderURI: p.config.ArgoCDUIURL,
	}, nil
}

func (p *Previewer) publish(ctx context.Context, bodies []string) error {
	if p.provider == nil {
		for i, body := range bodies {
			if i > 0 {
				fmt.Fprint(p.out, stdoutSeparator)
			}
			fmt.Fprint(p.out, body)
		}
		return nil
	}

	if err := shared.SyncComments(ctx, p.provider.Comments(), report.Marker, bodies); err != nil {
		return fmt.Errorf("failed to publish comments to %s: %w", p.provider.Name(), err)
	}

	slog.Info("Published diff preview", "platform", p.provider.Name(), "pr", p.args.PRNumber, "comments", len(bodies))
	return nil
}

// reportable drops applications without a diff or an error
func reportable(recs []diff.DiffRecord) []diff.DiffRecord {
	result := make([]diff.DiffRecord, 0, len(recs))
	for _, rec := range recs {
		if rec.Diff == "" && rec.Error == nil {
			slog.Debug("No changes", "app", rec.App.Name)
			continue
		}
		result = append(result, rec)
	}
	return result
}
