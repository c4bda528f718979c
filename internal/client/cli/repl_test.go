package cli

import (
	"bufio"
	"context"
	"fmt"
	"reflect"
	"strings"
	"testing"
)

type fakeExec struct {
	loggedIn bool

	calls []string
}

func (f *fakeExec) record(name string, args ...string) error {
	if len(args) > 0 {
		name += " " + strings.Join(args, " ")
	}
	f.calls = append(f.calls, name)
	return nil
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }
func (f *fakeExec) Register(ctx context.Context) error { return f.record("register") }
func (f *fakeExec) Verify(ctx context.Context) error { return f.record("verify") }
func (f *fakeExec) Resend(ctx context.Context) error { return f.record("resend") }
func (f *fakeExec) Onboard(ctx context.Context) error { return f.record("onboard") }
func (f *fakeExec) Profiles(ctx context.Context) error { return f.record("profiles") }
func (f *fakeExec) Saved(ctx context.Context) error { return f.record("saved") }
func (f *fakeExec) Recent(ctx context.Context) error { return f.record("recent") }
func (f *fakeExec) Health(ctx context.Context) error { return f.record("health") }
func (f *fakeExec) Whoami(ctx context.Context) error { return f.record("whoami") }
func (f *fakeExec) DeleteAccount(ctx context.Context) error { return f.record("delete-account") }

func (f *fakeExec) Login(ctx context.Context) error {
	f.loggedIn = true
	return f.record("login")
}

func (f *fakeExec) Logout(ctx context.Context) error {
	f.loggedIn = false
	return f.record("logout")
}

func (f *fakeExec) Recommend(ctx context.Context, args []string) error {
	return f.record("recommend", args...)
}

func (f *fakeExec) Search(ctx context.Context, args []string) error {
	return f.record("search", args...)
}

func (f *fakeExec) Save(ctx context.Context, args []string) error {
	_ = f.record("save", args...)
	return fmt.Errorf("ignored")
}

func (f *fakeExec) Profile(ctx context.Context, args []string) error {
	return f.record("profile", args...)
}

func (f *fakeExec) Show(ctx context.Context, args []string) error {
	return f.record("show", args...)
}

func capturePrints(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	origPrint := printlnFn
	printlnFn = func(a ...any) (int, error) {
		lines = append(lines, strings.TrimSpace(fmt.Sprintln(a...)))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = origPrint })
	return &lines
}

func TestRunREPL_DispatchesCommands(t *testing.T) {
	capturePrints(t)

	input := strings.Join([]string{
		"register",
		"verify",
		"resend",
		"login",
		"onboard",
		"r",
		"recommend alice",
		"search clean   water",
		"profiles",
		"profile bob",
		"s",
		"save 12",
		"show #12",
		"recent",
		"health",
		"whoami",
		"",
		"delete-account",
		"logout",
		"exit",
		"login",
	}, "\n")

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "status" }, bufio.NewReader(strings.NewReader(input)))

	want := []string{
		"register", "verify", "resend", "login", "onboard",
		"recommend", "recommend alice", "search clean water",
		"profiles", "profile bob", "saved", "save 12", "show #12", "recent", "health",
		"whoami", "delete-account", "logout",
	}
	if !reflect.DeepEqual(exec.calls, want) {
		t.Fatalf("calls mismatch:\n got %v\nwant %v", exec.calls, want)
	}
	if exec.loggedIn {
		t.Fatalf("expected logged out after logout")
	}
}

func TestRunREPL_HelpDependsOnSession(t *testing.T) {
	lines := capturePrints(t)

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewReader(strings.NewReader("help\nlogin\nhelp\nquit\n")))

	var helps []string
	for _, l := range *lines {
		if strings.HasPrefix(l, "Available commands:") {
			helps = append(helps, l)
		}
	}
	if len(helps) != 2 || helps[0] != helpAnonymous || helps[1] != helpSignedIn {
		t.Fatalf("unexpected help output: %v", helps)
	}
	if (*lines)[len(*lines)-1] != "Bye!" {
		t.Fatalf("expected Bye! last, got %v", *lines)
	}
}

func TestRunREPL_UnknownCommandAndEOF(t *testing.T) {
	lines := capturePrints(t)

	exec := &fakeExec{loggedIn: true}
	// no trailing newline: the last line is still dispatched before EOF ends the loop
	runREPL(context.Background(), exec, func() string { return "s" }, bufio.NewReader(strings.NewReader("get 42\nwhoami")))

	if !reflect.DeepEqual(exec.calls, []string{"whoami"}) {
		t.Fatalf("unexpected calls: %v", exec.calls)
	}

	found := false
	for _, l := range *lines {
		if l == "Unknown command: get" {
			found = true
		}
	}
	if !found {
		t.Fatalf("unknown command not reported: %v", *lines)
	}
}

func TestRunREPL_PromptShowsStatus(t *testing.T) {
	lines := capturePrints(t)

	runREPL(context.Background(), &fakeExec{}, func() string { return "(alice online)" }, bufio.NewReader(strings.NewReader("")))

	if len(*lines) != 1 || (*lines)[0] != "bb (alice online)>" {
		t.Fatalf("unexpected prompt: %v", *lines)
	}
}
