package deploy

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/phannguyenbuu/dinh-tot-dong/internal/audit"
	"github.com/phannguyenbuu/dinh-tot-dong/internal/backup"
	"github.com/phannguyenbuu/dinh-tot-dong/internal/errors"
	"github.com/phannguyenbuu/dinh-tot-dong/internal/logging"
	"github.com/phannguyenbuu/dinh-tot-dong/internal/nginxconf"
	"github.com/phannguyenbuu/dinh-tot-dong/internal/remote"
)

// Runner edits the config held by Store.
type Runner struct {
	Store   remote.Store
	Backups *backup.Store
	Editor  *nginxconf.Editor

	// Commander runs TestArgs and ReloadArgs. Nil skips both.
	Commander  remote.Commander
	TestArgs   []string
	ReloadArgs []string

	// Candidates are tried in order when a Request has no Path.
	Candidates []string

	// Audit records outcomes. Nil disables history.
	Audit *audit.Logger

	// Now defaults to time.Now.
	Now func() time.Time
}

// Request describes one edit.
type Request struct {
	Route    string
	Path     string
	DryRun   bool
	NoReload bool
}

// Result reports what AddRoute did.
type Result struct {
	Path     string          `json:"path"`
	Route    nginxconf.Route `json:"route"`
	Backup   *backup.Backup  `json:"backup,omitempty"`
	Diff     string          `json:"diff,omitempty"`
	DryRun   bool            `json:"dry_run,omitempty"`
	Tested   bool            `json:"tested,omitempty"`
	Reloaded bool            `json:"reloaded,omitempty"`
}

// RestoreResult reports what Restore did.
type RestoreResult struct {
	Path     string         `json:"path"`
	Restored *backup.Backup `json:"restored"`
	Backup   *backup.Backup `json:"backup,omitempty"`
	Diff     string         `json:"diff,omitempty"`
	Reloaded bool           `json:"reloaded,omitempty"`
}

// CheckResult reports whether a route is declared.
type CheckResult struct {
	Path   string          `json:"path"`
	Route  nginxconf.Route `json:"route"`
	Exists bool            `json:"exists"`
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r *Runner) editor() *nginxconf.Editor {
	if r.Editor != nil {
		return r.Editor
	}
	return nginxconf.NewEditor("")
}

func (r *Runner) target(path string) string {
	return r.Store.Location() + ":" + path
}

func (r *Runner) record(event audit.Event) {
	if r.Audit == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = r.now()
	}
	if err := r.Audit.Log(event); err != nil {
		logging.Warn("failed to record history", "error", err)
	}
}

// Decode turns raw file bytes into text. Each byte that is not part of a
// valid UTF-8 sequence becomes one U+FFFD.
func Decode(data []byte) string {
	return string([]rune(string(data)))
}

// resolve returns req.Path, or the first existing candidate.
func (r *Runner) resolve(ctx context.Context, req Request) (string, error) {
	if req.Path != "" {
		return req.Path, nil
	}
	path, err := r.Store.ResolvePath(ctx, r.Candidates)
	if err != nil {
		if errors.Is(err, remote.ErrNotFound) {
			return "", errors.RemoteNotFound(r.Candidates)
		}
		return "", errors.SSHError("failed to locate config", err)
	}
	logging.Debug("resolved config path", "path", path)
	return path, nil
}

func (r *Runner) read(ctx context.Context, path string) ([]byte, error) {
	data, err := r.Store.Read(ctx, path)
	if err != nil {
		return nil, errors.Wrap(errors.ExitGeneralError, "failed to read config", err)
	}
	return data, nil
}

// AddRoute inserts a proxy location for req.Route into the config.
func (r *Runner) AddRoute(ctx context.Context, req Request) (*Result, error) {
	route, err := nginxconf.NormalizeRoute(req.Route)
	if err != nil {
		return nil, errors.InvalidRoute(err)
	}

	path, err := r.resolve(ctx, req)
	if err != nil {
		return nil, err
	}
	target := r.target(path)

	original, err := r.read(ctx, path)
	if err != nil {
		return nil, err
	}

	before := Decode(original)
	after, err := r.editor().Apply(before, string(route))
	if err != nil {
		r.record(audit.Event{Type: audit.EventReject, Target: target, Route: string(route), Details: err.Error()})
		return nil, errors.FromEdit(err, string(route), path)
	}

	result := &Result{
		Path:   path,
		Route:  route,
		Diff:   Diff(path, before, after),
		DryRun: req.DryRun,
	}

	if req.DryRun {
		r.record(audit.Event{Type: audit.EventDryRun, Target: target, Route: string(route)})
		return result, nil
	}

	saved, err := r.Backups.Save(backup.NameFor(path), original, r.now())
	if err != nil {
		r.record(audit.Event{Type: audit.EventError, Target: target, Route: string(route), Details: err.Error()})
		return nil, errors.BackupFailed(err)
	}
	result.Backup = saved
	logging.Debug("saved backup", "id", saved.ID, "path", saved.Path)

	if err := r.Store.Write(ctx, path, []byte(after)); err != nil {
		r.record(audit.Event{Type: audit.EventError, Target: target, Route: string(route), Backup: saved.ID, Details: err.Error()})
		return nil, errors.WriteFailed(path, err)
	}

	if err := r.validate(ctx, path, original); err != nil {
		r.record(audit.Event{Type: audit.EventRollback, Target: target, Route: string(route), Backup: saved.ID, Details: err.Error()})
		return nil, err
	}
	result.Tested = r.Commander != nil && len(r.TestArgs) > 0

	r.record(audit.Event{Type: audit.EventAdd, Target: target, Route: string(route), Backup: saved.ID})

	if !req.NoReload {
		reloaded, err := r.reload(ctx, target)
		if err != nil {
			return result, err
		}
		result.Reloaded = reloaded
	}

	return result, nil
}

// validate runs TestArgs. On failure it writes original back to path.
func (r *Runner) validate(ctx context.Context, path string, original []byte) error {
	if r.Commander == nil || len(r.TestArgs) == 0 {
		return nil
	}

	command := strings.Join(r.TestArgs, " ")
	out, err := r.Commander.Run(ctx, r.TestArgs...)
	if err == nil {
		logging.Debug("config test passed", "command", command)
		return nil
	}

	logging.Debug("config test failed, restoring original", "command", command, "error", err)
	logging.UserWarning("%s rejected the new config:", command)
	logging.UserDetail(string(out))
	if werr := r.Store.Write(ctx, path, original); werr != nil {
		return errors.WriteFailed(path, fmt.Errorf("rollback after %s failed: %w", command, werr))
	}
	return errors.ValidationFailed(command, err)
}

func (r *Runner) reload(ctx context.Context, target string) (bool, error) {
	if r.Commander == nil || len(r.ReloadArgs) == 0 {
		return false, nil
	}

	command := strings.Join(r.ReloadArgs, " ")
	out, err := r.Commander.Run(ctx, r.ReloadArgs...)
	if err != nil {
		r.record(audit.Event{Type: audit.EventError, Target: target, Details: command + ": " + err.Error()})
		logging.UserDetail(string(out))
		return false, errors.Wrap(errors.ExitGeneralError, command+" failed", err)
	}

	r.record(audit.Event{Type: audit.EventReload, Target: target, Details: command})
	return true, nil
}

// Check reports whether route is already declared in the config.
func (r *Runner) Check(ctx context.Context, req Request) (*CheckResult, error) {
	route, err := nginxconf.NormalizeRoute(req.Route)
	if err != nil {
		return nil, errors.InvalidRoute(err)
	}

	path, err := r.resolve(ctx, req)
	if err != nil {
		return nil, err
	}

	data, err := r.read(ctx, path)
	if err != nil {
		return nil, err
	}

	return &CheckResult{
		Path:   path,
		Route:  route,
		Exists: nginxconf.HasRoute(nginxconf.ParseDocument(Decode(data)), route),
	}, nil
}

// Restore writes the backup with the given id back to the config. The
// current content is backed up first.
func (r *Runner) Restore(ctx context.Context, id string, req Request) (*RestoreResult, error) {
	restored, content, err := r.Backups.Load(id)
	if err != nil {
		return nil, errors.Wrap(errors.ExitBackupFailed, "failed to load backup", err)
	}

	path, err := r.resolve(ctx, req)
	if err != nil {
		return nil, err
	}
	target := r.target(path)

	if name := backup.NameFor(path); name != restored.Name {
		logging.Warn("backup name does not match target", "backup", restored.Name, "target", name)
	}

	current, err := r.read(ctx, path)
	if err != nil {
		return nil, err
	}

	result := &RestoreResult{
		Path:     path,
		Restored: restored,
		Diff:     Diff(path, Decode(current), Decode(content)),
	}

	if req.DryRun {
		return result, nil
	}

	saved, err := r.Backups.Save(backup.NameFor(path), current, r.now())
	if err != nil {
		return nil, errors.BackupFailed(err)
	}
	result.Backup = saved

	if err := r.Store.Write(ctx, path, content); err != nil {
		r.record(audit.Event{Type: audit.EventError, Target: target, Backup: restored.ID, Details: err.Error()})
		return nil, errors.WriteFailed(path, err)
	}

	if err := r.validate(ctx, path, current); err != nil {
		r.record(audit.Event{Type: audit.EventRollback, Target: target, Backup: restored.ID, Details: err.Error()})
		return nil, err
	}

	r.record(audit.Event{Type: audit.EventRestore, Target: target, Backup: restored.ID, Details: "previous content saved as " + saved.ID})

	if !req.NoReload {
		reloaded, err := r.reload(ctx, target)
		if err != nil {
			return result, err
		}
		result.Reloaded = reloaded
	}

	return result, nil
}
