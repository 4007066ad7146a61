package internal

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"argocd-diff-preview/internal/argocd"
	"argocd-diff-preview/internal/cli"
	"argocd-diff-preview/internal/config"
	"argocd-diff-preview/internal/git/types"
	"argocd-diff-preview/internal/report"
)

var fixedNow = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

func testConfig() *config.Config {
	return &config.Config{
		ArgoCDCLIPath:    "argocd",
		ArgoCDToken:      "argocd-token",
		ArgoCDUIURL:      "https://argocd.example.com",
		CommentSizeLimit: config.DefaultCommentSizeLimit,
		DiffConcurrency:  2,
		GitHubRepository: "org/deployments",
		TargetRevisions:  []string{"HEAD", "main"},
		Timezone:         time.UTC,
	}
}

// fakeProvider keeps comments in memory
type fakeProvider struct {
	comments     []types.Comment
	changedFiles []string
	nextID       int64
}

func (f *fakeProvider) Name() string { return "Fake" }
func (f *fakeProvider) Comments() types.CommentStore { return f }
func (f *fakeProvider) CommitURL(sha string) string { return "https://git.example.com/commit/" + sha }
func (f *fakeProvider) ChangedFiles(ctx context.Context) ([]string, error) {
	return f.changedFiles, nil
}

func (f *fakeProvider) ListComments(ctx context.Context) ([]types.Comment, error) {
	return f.comments, nil
}

func (f *fakeProvider) CreateComment(ctx context.Context, body string) error {
	f.nextID++
	f.comments = append(f.comments, types.Comment{ID: f.nextID, Body: body})
	return nil
}

func (f *fakeProvider) UpdateComment(ctx context.Context, id int64, body string) error {
	for i := range f.comments {
		if f.comments[i].ID == id {
			f.comments[i].Body = body
		}
	}
	return nil
}

func (f *fakeProvider) DeleteComment(ctx context.Context, id int64) error {
	for i := range f.comments {
		if f.comments[i].ID == id {
			f.comments = append(f.comments[:i], f.comments[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("comment %d not found", id)
}

// resolvingProvider knows the repository path behind the configured project
type resolvingProvider struct {
	*fakeProvider
	repository string
	err        error
}

func (r *resolvingProvider) Repository(ctx context.Context) (string, error) {
	return r.repository, r.err
}

// fakeRunner returns a canned CLI result per application name
type fakeRunner map[string]argocd.CommandResult

func (f fakeRunner) Run(ctx context.Context, name string, args, env []string) (argocd.CommandResult, error) {
	return f[args[2]], nil
}

func writeRecords(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "records.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write records: %v", err)
	}
	return path
}

func TestPreviewer_RecordsToStdout(t *testing.T) {
	path := writeRecords(t, `
- app: {name: web, sourcePath: apps/web, syncStatus: Synced}
  diff: |
    ===== apps/Deployment default/web ======
    > replicas: 3
- app: {name: unchanged, syncStatus: Synced}
- app: {name: broken, syncStatus: OutOfSync}
  error: {stderr: "token argocd-token rejected", message: exit status 20}
`)

	var out bytes.Buffer
	p := &Previewer{
		config: testConfig(),
		args:   &cli.Args{Mode: cli.ModeStdout, RecordsFile: path, CommitSHA: "0123456789"},
		out:    &out,
		now:    fixedNow,
	}

	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}

	output := out.String()
	if !strings.HasPrefix(output, report.Marker) {
		t.Errorf("output should start with the header marker, got:\n%s", output)
	}
	for _, want := range []string{"`web`", "`broken`", "replicas: 3", "_Updated at 2026-01-02 03:04:05 UTC_"} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if strings.Contains(output, "`unchanged`") {
		t.Error("applications without changes should not be reported")
	}
	if strings.Contains(output, "argocd-token") {
		t.Error("secrets must be masked")
	}
	if strings.Contains(output, "_Part ") {
		t.Error("a single comment should not carry a part marker")
	}
}

func TestPreviewer_RecordsSplitAcrossComments(t *testing.T) {
	var content strings.Builder
	for i := range 3 {
		fmt.Fprintf(&content, "- app: {name: app-%d, syncStatus: Synced}\n  diff: |\n", i)
		fmt.Fprintf(&content, "    ===== apps/ConfigMap default/cm-%d ======\n", i)
		fmt.Fprintf(&content, "    > data: %s\n", strings.Repeat("x", 600))
	}

	cfg := testConfig()
	cfg.CommentSizeLimit = 1500

	var out bytes.Buffer
	p := &Previewer{
		config: cfg,
		args:   &cli.Args{Mode: cli.ModeStdout, RecordsFile: writeRecords(t, content.String())},
		out:    &out,
		now:    fixedNow,
	}

	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}

	bodies := strings.Split(out.String(), stdoutSeparator)
	if len(bodies) < 2 {
		t.Fatalf("expected several comments, got %d", len(bodies))
	}
	for i, body := range bodies {
		if len(body) > cfg.CommentSizeLimit {
			t.Errorf("comment %d is %d bytes, limit %d", i+1, len(body), cfg.CommentSizeLimit)
		}
		if want := fmt.Sprintf("_Part %d of %d_", i+1, len(bodies)); !strings.Contains(body, want) {
			t.Errorf("comment %d missing %q", i+1, want)
		}
	}
}

func TestPreviewer_ArgoCDToProvider(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"items": [
			{"metadata": {"name": "web"}, "spec": {"source": {"repoURL": "https://github.com/org/deployments.git", "path": "apps/web", "targetRevision": "main"}}, "status": {"sync": {"status": "Synced"}}},
			{"metadata": {"name": "api"}, "spec": {"source": {"repoURL": "https://github.com/org/deployments.git", "path": "apps/api", "targetRevision": "main"}}, "status": {"sync": {"status": "OutOfSync"}}},
			{"metadata": {"name": "elsewhere"}, "spec": {"source": {"repoURL": "https://github.com/org/other.git", "path": "x", "targetRevision": "main"}}}
		]}`)
	}))
	defer server.Close()

	cfg := testConfig()
	cfg.ArgoCDServerURL = server.URL
	cfg.OnlyChangedApps = true

	provider := &fakeProvider{
		changedFiles: []string{"apps/web/values.yaml"},
		comments: []types.Comment{
			{ID: 1, Body: "human comment"},
			{ID: 2, Body: report.Marker + "\nold report part 1"},
			{ID: 3, Body: report.Marker + "\nold report part 2"},
		},
		nextID: 3,
	}
	runner := fakeRunner{
		"web": {ExitCode: 1, Stdout: "===== apps/Deployment default/web ======\n> image: web:2\n"},
		"api": {ExitCode: 1, Stdout: "===== apps/Deployment default/api ======\n> image: api:2\n"},
	}

	p := &Previewer{
		config:   cfg,
		args:     &cli.Args{Mode: cli.ModeGitHub, PRNumber: 42, CommitSHA: "abcdef0123"},
		provider: provider,
		argocd:   argocd.NewClient(cfg),
		differ:   argocd.NewDiffer(cfg, runner),
		now:      fixedNow,
	}

	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}

	if len(provider.comments) != 2 {
		t.Fatalf("expected the human comment and one report, got %d comments", len(provider.comments))
	}
	if provider.comments[0].Body != "human comment" {
		t.Error("comments without the marker must be left alone")
	}

	body := provider.comments[1].Body
	if provider.comments[1].ID != 2 {
		t.Errorf("expected the first report comment to be updated in place, got ID %d", provider.comments[1].ID)
	}
	if !strings.Contains(body, "image: web:2") {
		t.Errorf("report missing web diff:\n%s", body)
	}
	if strings.Contains(body, "`api`") {
		t.Error("apps without changed files should be skipped")
	}
	if !strings.Contains(body, "[`abcdef0`](https://git.example.com/commit/abcdef0123)") {
		t.Errorf("header missing commit link:\n%s", body)
	}
}

func TestPreviewer_GitLabNumericProject(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"items": [
			{"metadata": {"name": "web"}, "spec": {"source": {"repoURL": "https://gitlab.example.com/group/deploy.git", "path": "apps/web", "targetRevision": "HEAD"}}, "status": {"sync": {"status": "OutOfSync"}}}
		]}`)
	}))
	defer server.Close()

	cfg := testConfig()
	cfg.ArgoCDServerURL = server.URL
	cfg.GitLabProject = "12345"

	provider := &resolvingProvider{fakeProvider: &fakeProvider{}, repository: "group/deploy"}
	runner := fakeRunner{
		"web": {ExitCode: 1, Stdout: "===== apps/Deployment default/web ======\n> image: web:2\n"},
	}

	p := &Previewer{
		config:   cfg,
		args:     &cli.Args{Mode: cli.ModeGitLab, PRNumber: 9},
		provider: provider,
		argocd:   argocd.NewClient(cfg),
		differ:   argocd.NewDiffer(cfg, runner),
		now:      fixedNow,
	}

	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}
	if len(provider.comments) != 1 || !strings.Contains(provider.comments[0].Body, "image: web:2") {
		t.Fatalf("expected the web diff to be published, got %+v", provider.comments)
	}
}

func TestPreviewer_RepositoryResolutionFails(t *testing.T) {
	provider := &resolvingProvider{fakeProvider: &fakeProvider{}, err: fmt.Errorf("404 Project Not Found")}

	p := &Previewer{
		config:   testConfig(),
		args:     &cli.Args{Mode: cli.ModeGitLab, PRNumber: 9, RecordsFile: writeRecords(t, "- app: {name: web}\n  diff: x\n")},
		provider: provider,
		now:      fixedNow,
	}

	if err := p.Run(context.Background()); err == nil || !strings.Contains(err.Error(), "404 Project Not Found") {
		t.Fatalf("expected the resolution error, got %v", err)
	}
	if len(provider.comments) != 0 {
		t.Error("nothing should be published when the repository cannot be resolved")
	}
}

func TestPreviewer_NoChangesClearsStaleComments(t *testing.T) {
	provider := &fakeProvider{
		comments: []types.Comment{{ID: 5, Body: report.Marker + "\nold report"}},
	}

	p := &Previewer{
		config:   testConfig(),
		args:     &cli.Args{Mode: cli.ModeGitLab, PRNumber: 3, RecordsFile: writeRecords(t, "- app: {name: quiet}\n")},
		provider: provider,
		now:      fixedNow,
	}

	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}
	if len(provider.comments) != 0 {
		t.Errorf("expected stale report to be removed, got %+v", provider.comments)
	}
}

func TestPreviewer_RecordsFileMissing(t *testing.T) {
	p := &Previewer{
		config: testConfig(),
		args:   &cli.Args{Mode: cli.ModeStdout, RecordsFile: filepath.Join(t.TempDir(), "missing.yaml")},
		out:    &bytes.Buffer{},
		now:    fixedNow,
	}

	if err := p.Run(context.Background()); err == nil {
		t.Fatal("expected error for missing records file")
	}
}

func TestNew(t *testing.T) {
	cfg := testConfig()
	cfg.GitHubToken = "token"

	p, err := New(cfg, &cli.Args{Mode: cli.ModeGitHub, PRNumber: 1})
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}
	if p.provider == nil || p.provider.Name() != "GitHub" {
		t.Error("github mode should use the GitHub provider")
	}
	if p.argocd == nil || p.differ == nil {
		t.Error("live runs need the ArgoCD client and differ")
	}

	p, err = New(cfg, &cli.Args{Mode: cli.ModeStdout, RecordsFile: "x.yaml"})
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}
	if p.provider != nil || p.argocd != nil {
		t.Error("offline stdout runs need neither a provider nor ArgoCD")
	}
}
