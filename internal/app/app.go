package app

import (
	"context"

	"github.com/phannguyenbuu/dinh-tot-dong/internal/audit"
	"github.com/phannguyenbuu/dinh-tot-dong/internal/backup"
	"github.com/phannguyenbuu/dinh-tot-dong/internal/config"
	"github.com/phannguyenbuu/dinh-tot-dong/internal/deploy"
	"github.com/phannguyenbuu/dinh-tot-dong/internal/errors"
	"github.com/phannguyenbuu/dinh-tot-dong/internal/logging"
	"github.com/phannguyenbuu/dinh-tot-dong/internal/nginxconf"
	"github.com/phannguyenbuu/dinh-tot-dong/internal/remote"
	"github.com/phannguyenbuu/dinh-tot-dong/internal/ssh"
	"github.com/phannguyenbuu/dinh-tot-dong/internal/system"
)

// Session is an open connection to the config host. Commander may be nil
// when the target cannot run commands.
type Session struct {
	Store     remote.Store
	Commander remote.Commander
}

// Close releases the session's connection.
func (s *Session) Close() error {
	return s.Store.Close()
}

// Connector opens a session to the remote host.
type Connector func(ctx context.Context, opts ssh.Options) (*Session, error)

// App holds the application dependencies
type App struct {
	// Config is the loaded configuration
	Config *config.Config

	// Paths holds the configured paths
	Paths *config.Paths

	// FS is the local filesystem used for --file targets and backups
	FS system.FileSystem

	// Connect opens the remote session
	Connect Connector
}

// Option is a function that configures the App
type Option func(*App)

// WithConfig sets the configuration
func WithConfig(cfg *config.Config) Option {
	return func(a *App) {
		a.Config = cfg
	}
}

// WithPaths sets custom paths
func WithPaths(paths *config.Paths) Option {
	return func(a *App) {
		a.Paths = paths
	}
}

// WithFS sets a custom filesystem
func WithFS(fs system.FileSystem) Option {
	return func(a *App) {
		a.FS = fs
	}
}

// WithConnector sets a custom remote connector
func WithConnector(connect Connector) Option {
	return func(a *App) {
		a.Connect = connect
	}
}

// New creates a new App with the given options.
// Unset dependencies fall back to defaults.
func New(opts ...Option) *App {
	app := &App{}

	for _, opt := range opts {
		opt(app)
	}

	if app.Config == nil {
		app.Config = config.Default()
	}
	if app.Paths == nil {
		app.Paths = app.Config.Paths("")
	}
	if app.FS == nil {
		app.FS = system.DefaultFS()
	}
	if app.Connect == nil {
		app.Connect = connectSFTP
	}

	return app
}

func connectSFTP(ctx context.Context, opts ssh.Options) (*Session, error) {
	store, err := remote.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &Session{Store: store, Commander: store}, nil
}

// SSHOptions builds connection options from the config.
func (a *App) SSHOptions() ssh.Options {
	r := a.Config.Remote
	opts := ssh.DefaultOptions(r.Host).
		WithUser(r.User).
		WithPort(r.Port).
		WithPassword(a.Config.Password).
		WithIdentityFile(r.IdentityFile).
		WithTimeout(r.ConnectTimeout.Duration)
	if r.KnownHosts != "" {
		opts = opts.WithKnownHosts(r.KnownHosts)
	}
	return opts
}

// Open returns a session for the edit target. A non-empty file selects a
// local file and never touches the network.
func (a *App) Open(ctx context.Context, file string) (*Session, error) {
	if file != "" {
		return &Session{Store: remote.NewLocalStore(a.FS)}, nil
	}

	if err := a.Config.ValidateRemote(); err != nil {
		return nil, errors.ConfigError("incomplete remote settings", err)
	}

	opts := a.SSHOptions()
	logging.Debug("connecting", "destination", opts.Destination(), "password", logging.Secret(opts.Password))

	session, err := a.Connect(ctx, opts)
	if err != nil {
		return nil, errors.SSHError("failed to connect to "+opts.Destination(), err)
	}
	return session, nil
}

// Backups returns the backup store.
func (a *App) Backups() *backup.Store {
	return backup.NewStore(a.Paths.BackupDir, a.FS)
}

// History returns the history logger.
func (a *App) History() *audit.Logger {
	return audit.NewLogger(a.Paths.HistoryFile)
}

// Runner builds the edit workflow for a session. A non-empty upstream
// overrides the configured one.
func (a *App) Runner(session *Session, upstream string) (*deploy.Runner, error) {
	if upstream == "" {
		upstream = a.Config.Proxy.Upstream
	}

	testArgs, err := a.Config.TestArgs()
	if err != nil {
		return nil, errors.ConfigError("invalid remote.test_command", err)
	}
	reloadArgs, err := a.Config.ReloadArgs()
	if err != nil {
		return nil, errors.ConfigError("invalid remote.reload_command", err)
	}

	return &deploy.Runner{
		Store:      session.Store,
		Commander:  session.Commander,
		Backups:    a.Backups(),
		Editor:     nginxconf.NewEditor(upstream),
		TestArgs:   testArgs,
		ReloadArgs: reloadArgs,
		Candidates: a.Config.Remote.Candidates,
		Audit:      a.History(),
	}, nil
}

// Default is the default application instance
var Default = New()

// SetDefault sets the default application instance (used for testing)
func SetDefault(app *App) {
	Default = app
}

// ResetDefault resets to the default application instance
func ResetDefault() {
	Default = New()
}
