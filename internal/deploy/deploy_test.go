package deploy

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/phannguyenbuu/dinh-tot-dong/internal/audit"
	"github.com/phannguyenbuu/dinh-tot-dong/internal/backup"
	"github.com/phannguyenbuu/dinh-tot-dong/internal/errors"
	"github.com/phannguyenbuu/dinh-tot-dong/internal/logging"
	"github.com/phannguyenbuu/dinh-tot-dong/internal/nginxconf"
	"github.com/phannguyenbuu/dinh-tot-dong/internal/remote"
	"github.com/phannguyenbuu/dinh-tot-dong/internal/system"
	"github.com/phannguyenbuu/dinh-tot-dong/internal/testutil"
)

const sitePath = "/etc/nginx/conf.d/site"

var siteConfig = testutil.Site("basic.conf")

type fixture struct {
	runner    *Runner
	configFS  *system.MockFS
	backupFS  *system.MockFS
	commander *testutil.Commander
	history   *audit.Logger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	configFS := system.NewMockFS()
	configFS.AddFile(sitePath, []byte(siteConfig), 0644)
	backupFS := system.NewMockFS()
	commander := testutil.NewCommander()
	history := audit.NewLogger(filepath.Join(t.TempDir(), "history.jsonl"))

	at := time.Date(2026, 3, 14, 9, 26, 53, 0, time.Local)

	return &fixture{
		runner: &Runner{
			Store:      remote.NewLocalStore(configFS),
			Backups:    backup.NewStore("/backups", backupFS),
			Editor:     nginxconf.NewEditor(""),
			Commander:  commander,
			TestArgs:   []string{"nginx", "-t"},
			ReloadArgs: []string{"systemctl", "reload", "nginx"},
			Candidates: []string{"/etc/nginx/sites-available/site", sitePath},
			Audit:      history,
			Now:        func() time.Time { return at },
		},
		configFS:  configFS,
		backupFS:  backupFS,
		commander: commander,
		history:   history,
	}
}

func (f *fixture) config(t *testing.T) string {
	t.Helper()
	data, ok := f.configFS.GetFile(sitePath)
	if !ok {
		t.Fatalf("%s missing", sitePath)
	}
	return string(data)
}

// captureUserOutput redirects user-facing output for the test and returns
// what is written to stderr.
func captureUserOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var stdout, stderr bytes.Buffer
	logging.SetUserOutput(&stdout, &stderr)
	t.Cleanup(func() { logging.SetUserOutput(nil, nil) })
	return &stderr
}

func (f *fixture) eventTypes(t *testing.T) []audit.EventType {
	t.Helper()
	events, err := f.history.Events()
	if err != nil {
		t.Fatalf("Events failed: %v", err)
	}
	var types []audit.EventType
	for _, e := range events {
		types = append(types, e.Type)
	}
	return types
}

func TestAddRoute(t *testing.T) {
	f := newFixture(t)

	result, err := f.runner.AddRoute(context.Background(), Request{Route: "new/"})
	if err != nil {
		t.Fatalf("AddRoute failed: %v", err)
	}

	if result.Path != sitePath {
		t.Errorf("Path = %q, want %q", result.Path, sitePath)
	}
	if result.Route != "/new/" {
		t.Errorf("Route = %q, want /new/", result.Route)
	}
	if !result.Tested || !result.Reloaded {
		t.Errorf("Tested = %v, Reloaded = %v, want both true", result.Tested, result.Reloaded)
	}

	got := f.config(t)
	if !strings.Contains(got, "    location /new/ {\n        proxy_pass http://127.0.0.1:5000;") {
		t.Errorf("config missing new block:\n%s", got)
	}
	if !strings.HasSuffix(got, "    }\n\n}\n") {
		t.Errorf("config should end with block, blank line, brace:\n%q", got)
	}

	if result.Backup == nil || result.Backup.ID != "site.backup.20260314_092653" {
		t.Fatalf("Backup = %+v", result.Backup)
	}
	saved, ok := f.backupFS.GetFile("/backups/site.backup.20260314_092653")
	if !ok || string(saved) != siteConfig {
		t.Errorf("backup content = %q, want original", saved)
	}

	wantCalls := []string{"nginx -t", "systemctl reload nginx"}
	calls := f.commander.CallLines()
	if len(calls) != len(wantCalls) {
		t.Fatalf("calls = %v, want %v", calls, wantCalls)
	}
	for i, call := range calls {
		if call != wantCalls[i] {
			t.Errorf("call %d = %q, want %q", i, call, wantCalls[i])
		}
	}

	types := f.eventTypes(t)
	if len(types) != 2 || types[0] != audit.EventAdd || types[1] != audit.EventReload {
		t.Errorf("history = %v, want [add reload]", types)
	}
}

func TestAddRoute_DryRun(t *testing.T) {
	f := newFixture(t)

	result, err := f.runner.AddRoute(context.Background(), Request{Route: "/api", DryRun: true})
	if err != nil {
		t.Fatalf("AddRoute failed: %v", err)
	}

	if f.config(t) != siteConfig {
		t.Error("dry run must not write the config")
	}
	if len(f.backupFS.Files()) != 0 {
		t.Errorf("dry run must not create backups, got %v", f.backupFS.Files())
	}
	if len(f.commander.Calls()) != 0 {
		t.Errorf("dry run must not run commands, got %v", f.commander.CallLines())
	}
	if !strings.Contains(result.Diff, "+    location /api {") {
		t.Errorf("Diff missing added block:\n%s", result.Diff)
	}
}

func TestAddRoute_Duplicate(t *testing.T) {
	f := newFixture(t)

	_, err := f.runner.AddRoute(context.Background(), Request{Route: "old/"})
	if errors.GetExitCode(err) != errors.ExitDuplicateRoute {
		t.Fatalf("error = %v, want duplicate route", err)
	}
	if f.config(t) != siteConfig {
		t.Error("config must be unchanged")
	}
	if len(f.backupFS.Files()) != 0 {
		t.Error("no backup should be taken for a rejected edit")
	}

	types := f.eventTypes(t)
	if len(types) != 1 || types[0] != audit.EventReject {
		t.Errorf("history = %v, want [reject]", types)
	}
}

func TestAddRoute_Errors(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(f *fixture)
		req      Request
		wantCode int
	}{
		{
			name:     "blank route",
			req:      Request{Route: "  "},
			wantCode: errors.ExitInvalidRoute,
		},
		{
			name: "no candidate exists",
			setup: func(f *fixture) {
				f.runner.Candidates = []string{"/nope"}
			},
			req:      Request{Route: "/api"},
			wantCode: errors.ExitRemoteNotFound,
		},
		{
			name: "no server block",
			setup: func(f *fixture) {
				f.configFS.AddFile(sitePath, []byte("events {}\n# trailing\n"), 0644)
			},
			req:      Request{Route: "/api"},
			wantCode: errors.ExitNoServerBlock,
		},
		{
			name: "backup fails",
			setup: func(f *fixture) {
				f.backupFS.WriteFileErr = fmt.Errorf("disk full")
			},
			req:      Request{Route: "/api"},
			wantCode: errors.ExitBackupFailed,
		},
		{
			name: "write fails",
			setup: func(f *fixture) {
				f.configFS.WriteFileErr = fmt.Errorf("read-only")
			},
			req:      Request{Route: "/api"},
			wantCode: errors.ExitWriteFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			if tt.setup != nil {
				tt.setup(f)
			}

			_, err := f.runner.AddRoute(context.Background(), tt.req)
			if got := errors.GetExitCode(err); got != tt.wantCode {
				t.Errorf("exit code = %d (%v), want %d", got, err, tt.wantCode)
			}
		})
	}
}

func TestAddRoute_BackupFailureLeavesRemote(t *testing.T) {
	f := newFixture(t)
	f.backupFS.MkdirAllErr = fmt.Errorf("permission denied")

	if _, err := f.runner.AddRoute(context.Background(), Request{Route: "/api"}); err == nil {
		t.Fatal("expected error")
	}
	if f.config(t) != siteConfig {
		t.Error("config must be untouched when the backup fails")
	}
}

func TestAddRoute_ValidationRollback(t *testing.T) {
	f := newFixture(t)
	f.commander.FailOn("nginx", "nginx: [emerg] unexpected \"}\" in site:12\nnginx: configuration file test failed\n")
	stderr := captureUserOutput(t)

	_, err := f.runner.AddRoute(context.Background(), Request{Route: "/api"})
	if errors.GetExitCode(err) != errors.ExitValidationFailed {
		t.Fatalf("error = %v, want validation failure", err)
	}
	if want := "nginx -t failed, original config restored: exit status 1"; err.Error() != want {
		t.Errorf("error = %q, want %q", err.Error(), want)
	}
	if !strings.Contains(stderr.String(), "    nginx: [emerg] unexpected") {
		t.Errorf("command output not shown to the user:\n%s", stderr.String())
	}

	if f.config(t) != siteConfig {
		t.Errorf("config not restored:\n%s", f.config(t))
	}
	if len(f.commander.Calls()) != 1 {
		t.Errorf("reload must not run after a failed test, calls = %v", f.commander.CallLines())
	}

	types := f.eventTypes(t)
	if len(types) != 1 || types[0] != audit.EventRollback {
		t.Errorf("history = %v, want [rollback]", types)
	}
}

func TestAddRoute_ReloadFailure(t *testing.T) {
	f := newFixture(t)
	f.commander.FailOn("systemctl", "Job for nginx.service failed.\n")
	stderr := captureUserOutput(t)

	result, err := f.runner.AddRoute(context.Background(), Request{Route: "/api"})
	if err == nil {
		t.Fatal("expected reload error")
	}
	if strings.Contains(err.Error(), "\n") {
		t.Errorf("error spans several lines: %q", err.Error())
	}
	if result == nil || result.Reloaded || result.Backup == nil {
		t.Errorf("result = %+v, want written but not reloaded", result)
	}
	if !strings.Contains(stderr.String(), "Job for nginx.service failed.") {
		t.Errorf("reload output not shown:\n%s", stderr.String())
	}
	if !strings.Contains(f.config(t), "location /api {") {
		t.Error("config should stay written when only the reload fails")
	}
}

func TestAddRoute_BlankRouteMessage(t *testing.T) {
	f := newFixture(t)

	_, err := f.runner.AddRoute(context.Background(), Request{Route: "   "})
	if err == nil {
		t.Fatal("expected error")
	}
	if want := "invalid route: route cannot be empty"; err.Error() != want {
		t.Errorf("error = %q, want %q", err.Error(), want)
	}
}

func TestAddRoute_ThroughSymlink(t *testing.T) {
	f := newFixture(t)
	const link = "/etc/nginx/sites-enabled/site"
	f.configFS.AddSymlink(link, sitePath)

	result, err := f.runner.AddRoute(context.Background(), Request{Route: "/api", Path: link})
	if err != nil {
		t.Fatalf("AddRoute failed: %v", err)
	}
	if result.Path != link {
		t.Errorf("Path = %q, want %q", result.Path, link)
	}
	if !f.configFS.IsSymlink(link) {
		t.Error("sites-enabled link replaced by a regular file")
	}
	if !strings.Contains(f.config(t), "location /api {") {
		t.Errorf("link target not updated:\n%s", f.config(t))
	}
}

func TestAddRoute_NoReload(t *testing.T) {
	f := newFixture(t)

	result, err := f.runner.AddRoute(context.Background(), Request{Route: "/api", NoReload: true})
	if err != nil {
		t.Fatalf("AddRoute failed: %v", err)
	}
	if result.Reloaded {
		t.Error("Reloaded should be false")
	}
	if len(f.commander.Calls()) != 1 {
		t.Errorf("calls = %v, want only the test command", f.commander.CallLines())
	}
}

func TestAddRoute_NoCommander(t *testing.T) {
	f := newFixture(t)
	f.runner.Commander = nil
	f.runner.Audit = nil

	result, err := f.runner.AddRoute(context.Background(), Request{Route: "/api", Path: sitePath})
	if err != nil {
		t.Fatalf("AddRoute failed: %v", err)
	}
	if result.Tested || result.Reloaded {
		t.Errorf("Tested = %v, Reloaded = %v, want false", result.Tested, result.Reloaded)
	}
}

func TestAddRoute_InvalidUTF8(t *testing.T) {
	f := newFixture(t)
	f.configFS.AddFile(sitePath, []byte("server {\n    # caf\xe9\xff\n}\n"), 0644)

	if _, err := f.runner.AddRoute(context.Background(), Request{Route: "/api"}); err != nil {
		t.Fatalf("AddRoute failed: %v", err)
	}
	if got := f.config(t); !strings.Contains(got, "# caf\uFFFD\uFFFD\n") {
		t.Errorf("invalid bytes should become one U+FFFD each:\n%q", got)
	}
}

func TestCheck(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		route string
		want  bool
	}{
		{"/old/", true},
		{"old/", true},
		{"/old", true},
		{"/ol", false},
		{"/new", false},
	}

	for _, tt := range tests {
		t.Run(tt.route, func(t *testing.T) {
			result, err := f.runner.Check(context.Background(), Request{Route: tt.route})
			if err != nil {
				t.Fatalf("Check failed: %v", err)
			}
			if result.Exists != tt.want {
				t.Errorf("Exists = %v, want %v", result.Exists, tt.want)
			}
		})
	}
}

func TestRestore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	added, err := f.runner.AddRoute(ctx, Request{Route: "/api"})
	if err != nil {
		t.Fatalf("AddRoute failed: %v", err)
	}

	later := f.runner.Now().Add(time.Minute)
	f.runner.Now = func() time.Time { return later }

	result, err := f.runner.Restore(ctx, added.Backup.ID, Request{})
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}

	if f.config(t) != siteConfig {
		t.Errorf("config not restored:\n%s", f.config(t))
	}
	if result.Backup == nil || result.Backup.ID != "site.backup.20260314_092753" {
		t.Errorf("current content should be backed up first, got %+v", result.Backup)
	}
	if !strings.Contains(result.Diff, "-    location /api {") {
		t.Errorf("Diff should remove the block:\n%s", result.Diff)
	}

	types := f.eventTypes(t)
	if len(types) < 2 || types[len(types)-2] != audit.EventRestore {
		t.Errorf("history = %v, want restore before the final reload", types)
	}
}

func TestRestore_UnknownBackup(t *testing.T) {
	f := newFixture(t)

	_, err := f.runner.Restore(context.Background(), "site.backup.20990101_000000", Request{})
	if errors.GetExitCode(err) != errors.ExitBackupFailed {
		t.Errorf("error = %v, want backup failure", err)
	}
}

// Decode replaces every byte that does not start a valid UTF-8 sequence,
// so a truncated sequence yields one U+FFFD per byte.
func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want string
	}{
		{"ascii", []byte("plain"), "plain"},
		{"multibyte", []byte("caf\xc3\xa9"), "café"},
		{"stray byte", []byte("a\xffb"), "a\uFFFDb"},
		{"truncated three byte", []byte("\xe2\x82"), "\uFFFD\uFFFD"},
		{"truncated four byte", []byte("x\xf0\x9f\x98y"), "x\uFFFD\uFFFD\uFFFDy"},
		{"overlong", []byte("\xc0\xaf"), "\uFFFD\uFFFD"},
		{"surrogate", []byte("\xed\xa0\x80"), "\uFFFD\uFFFD\uFFFD"},
		{"valid then truncated", []byte("\xe2\x82\xac\xe2"), "€\uFFFD"},
		{"crlf kept", []byte("a\r\n\xff\r\n"), "a\r\n\uFFFD\r\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Decode(tt.in); got != tt.want {
				t.Errorf("Decode(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDiff(t *testing.T) {
	if got := Diff("f", "same\n", "same\n"); got != "" {
		t.Errorf("Diff of equal text = %q, want empty", got)
	}

	got := Diff("/etc/nginx/site", "a\nb\n", "a\nc\n")
	for _, want := range []string{"--- /etc/nginx/site", "+++ /etc/nginx/site (new)", "-b", "+c"} {
		if !strings.Contains(got, want) {
			t.Errorf("Diff missing %q:\n%s", want, got)
		}
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, fmt.Errorf("pipe closed")
}

func TestWriteDiff_WriterError(t *testing.T) {
	err := WriteDiff(failingWriter{}, "/etc/nginx/site", "a\n", "b\n")
	if err == nil || !strings.Contains(err.Error(), "pipe closed") {
		t.Errorf("WriteDiff error = %v, want writer error", err)
	}

	if err := WriteDiff(failingWriter{}, "/etc/nginx/site", "a\n", "a\n"); err != nil {
		t.Errorf("equal text should write nothing, got %v", err)
	}
}

func TestAddRoute_Fixtures(t *testing.T) {
	tests := []struct {
		fixture string
		check   func(t *testing.T, got string)
	}{
		{
			fixture: "multi_server.conf",
			check: func(t *testing.T, got string) {
				block := strings.Index(got, "location /api {")
				https := strings.Index(got, "listen 443 ssl;")
				if block < https {
					t.Errorf("block should go into the last server block:\n%s", got)
				}
			},
		},
		{
			fixture: "crlf.conf",
			check: func(t *testing.T, got string) {
				if strings.Count(got, "\n") != strings.Count(got, "\r\n") {
					t.Errorf("line endings should stay CRLF:\n%q", got)
				}
			},
		},
		{
			fixture: "trailing_blank.conf",
			check: func(t *testing.T, got string) {
				if !strings.Contains(got, "    }\n\n}\n") {
					t.Errorf("block should precede the brace:\n%q", got)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.fixture, func(t *testing.T) {
			f := newFixture(t)
			f.configFS.AddFile(sitePath, []byte(testutil.Site(tt.fixture)), 0644)

			if _, err := f.runner.AddRoute(context.Background(), Request{Route: "/api"}); err != nil {
				t.Fatalf("AddRoute failed: %v", err)
			}
			tt.check(t, f.config(t))
		})
	}
}
