package publish

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/rs/zerolog"
)

type call struct {
	dir  string
	name string
	args []string
}

// fakeExecutor records invocations and fails the op named in failOn.
type fakeExecutor struct {
	calls  []call
	failOn string
	output string
}

func (f *fakeExecutor) Run(_ context.Context, dir, name string, args ...string) (string, error) {
	f.calls = append(f.calls, call{dir: dir, name: name, args: args})
	if len(args) > 0 && args[0] == f.failOn {
		return f.output, errors.New("exit status 1")
	}
	return "", nil
}

func foundGit(string) (string, error) { return "/usr/bin/git", nil }

func newTestPublisher(exec *fakeExecutor) *Publisher {
	return &Publisher{
		Dir:      "/repo",
		Executor: exec,
		LookPath: foundGit,
		Logger:   zerolog.Nop(),
	}
}

func TestPublishRunsAddCommitPush(t *testing.T) {
	fe := &fakeExecutor{}
	p := newTestPublisher(fe)

	if err := p.Publish(context.Background(), "Update MyRomanTable.txt"); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	want := []string{
		"add -- .",
		"commit -m Update MyRomanTable.txt",
		"push",
	}
	if len(fe.calls) != len(want) {
		t.Fatalf("expected %d calls, got %d", len(want), len(fe.calls))
	}
	for i, c := range fe.calls {
		if got := strings.Join(c.args, " "); got != want[i] {
			t.Errorf("call %d = %q, want %q", i, got, want[i])
		}
		if c.name != "/usr/bin/git" || c.dir != "/repo" {
			t.Errorf("call %d ran %s in %s", i, c.name, c.dir)
		}
	}
}

func TestPublishRemoteBranchAndPaths(t *testing.T) {
	fe := &fakeExecutor{}
	p := newTestPublisher(fe)
	p.Remote = "origin"
	p.Branch = "main"
	p.Paths = []string{"MyRomanTable.txt"}

	if err := p.Publish(context.Background(), "msg"); err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(fe.calls[0].args, " "); got != "add -- MyRomanTable.txt" {
		t.Errorf("add args = %q", got)
	}
	if got := strings.Join(fe.calls[2].args, " "); got != "push origin main" {
		t.Errorf("push args = %q", got)
	}
}

func TestPublishStopsAtFirstFailure(t *testing.T) {
	fe := &fakeExecutor{failOn: "commit", output: "nothing to commit, working tree clean\n"}
	p := newTestPublisher(fe)

	err := p.Publish(context.Background(), "msg")
	if err == nil {
		t.Fatal("expected error")
	}
	if len(fe.calls) != 2 {
		t.Errorf("push should be skipped after a failed commit, got %d calls", len(fe.calls))
	}

	var ce *CommandError
	if !errors.As(err, &ce) {
		t.Fatalf("expected CommandError, got %T", err)
	}
	if ce.Op != "commit" {
		t.Errorf("failed op = %q", ce.Op)
	}
	if !strings.Contains(err.Error(), "nothing to commit") {
		t.Errorf("error should carry git output: %v", err)
	}
	if !errors.Is(err, ErrPublishFailed) {
		t.Error("CommandError should match ErrPublishFailed")
	}
}

func TestPublishPushFailure(t *testing.T) {
	fe := &fakeExecutor{failOn: "push", output: "fatal: no upstream"}
	p := newTestPublisher(fe)

	err := p.Publish(context.Background(), "msg")
	var ce *CommandError
	if !errors.As(err, &ce) || ce.Op != "push" {
		t.Fatalf("expected push failure, got %v", err)
	}
	if len(fe.calls) != 3 {
		t.Errorf("expected 3 calls, got %d", len(fe.calls))
	}
}

func TestPublishToolNotFound(t *testing.T) {
	fe := &fakeExecutor{}
	p := newTestPublisher(fe)
	p.LookPath = func(string) (string, error) { return "", errors.New("not found") }

	err := p.Publish(context.Background(), "msg")
	if !errors.Is(err, ErrToolNotFound) {
		t.Fatalf("expected ErrToolNotFound, got %v", err)
	}
	if !errors.Is(err, ErrPublishFailed) {
		t.Error("missing tool should also match ErrPublishFailed")
	}
	if len(fe.calls) != 0 {
		t.Errorf("no git commands should run, got %d", len(fe.calls))
	}
}

func TestPublishSkipClean(t *testing.T) {
	dir := t.TempDir()
	if _, err := git.PlainInit(dir, false); err != nil {
		t.Fatal(err)
	}

	fe := &fakeExecutor{}
	p := newTestPublisher(fe)
	p.Dir = dir
	p.SkipClean = true

	err := p.Publish(context.Background(), "msg")
	if !errors.Is(err, ErrNothingToPublish) {
		t.Fatalf("expected ErrNothingToPublish, got %v", err)
	}
	if len(fe.calls) != 0 {
		t.Errorf("no git commands should run on a clean tree, got %d", len(fe.calls))
	}

	if err := os.WriteFile(filepath.Join(dir, "MyRomanTable.txt"), []byte("a\tA\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := p.Publish(context.Background(), "msg"); err != nil {
		t.Fatalf("Publish with changes failed: %v", err)
	}
	if len(fe.calls) != 3 {
		t.Errorf("expected 3 calls, got %d", len(fe.calls))
	}
}

func TestPublishSkipCleanOutsideRepository(t *testing.T) {
	fe := &fakeExecutor{}
	p := newTestPublisher(fe)
	p.Dir = t.TempDir()
	p.SkipClean = true

	err := p.Publish(context.Background(), "msg")
	if !errors.Is(err, ErrPublishFailed) {
		t.Fatalf("expected ErrPublishFailed, got %v", err)
	}
}

func TestIsCleanDetectsParentRepository(t *testing.T) {
	dir := t.TempDir()
	if _, err := git.PlainInit(dir, false); err != nil {
		t.Fatal(err)
	}
	sub := filepath.Join(dir, "sub")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatal(err)
	}

	clean, err := IsClean(sub)
	if err != nil {
		t.Fatalf("IsClean failed: %v", err)
	}
	if !clean {
		t.Error("fresh repository should be clean")
	}

	if err := os.WriteFile(filepath.Join(sub, "new.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	clean, err = IsClean(sub)
	if err != nil {
		t.Fatal(err)
	}
	if clean {
		t.Error("untracked file should make the tree dirty")
	}
}

func TestInspect(t *testing.T) {
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatal(err)
	}
	_, err = repo.CreateRemote(&config.RemoteConfig{
		Name: "origin",
		URLs: []string{"https://example.com/my-azik.git"},
	})
	if err != nil {
		t.Fatal(err)
	}

	info, err := Inspect(dir)
	if err != nil {
		t.Fatalf("Inspect failed: %v", err)
	}
	if info.Root == "" {
		t.Error("expected repository root")
	}
	if len(info.Remotes) != 1 || info.Remotes[0].Name != "origin" {
		t.Errorf("unexpected remotes: %+v", info.Remotes)
	}
	if !info.Clean {
		t.Error("fresh repository should be clean")
	}
}

func TestInspectNotRepository(t *testing.T) {
	_, err := Inspect(t.TempDir())
	if !errors.Is(err, ErrNotRepository) {
		t.Errorf("expected ErrNotRepository, got %v", err)
	}
}

func TestRootFromSubdirectory(t *testing.T) {
	dir := t.TempDir()
	if _, err := git.PlainInit(dir, false); err != nil {
		t.Fatal(err)
	}
	sub := filepath.Join(dir, "out", "nested")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatal(err)
	}

	root, err := Root(sub)
	if err != nil {
		t.Fatalf("Root failed: %v", err)
	}
	want, _ := os.Stat(dir)
	got, err := os.Stat(root)
	if err != nil || !os.SameFile(want, got) {
		t.Errorf("Root(%q) = %q, want %q", sub, root, dir)
	}

	if _, err := Root(t.TempDir()); !errors.Is(err, ErrNotRepository) {
		t.Errorf("expected ErrNotRepository, got %v", err)
	}
}
