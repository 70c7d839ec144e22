package remote

import (
	"context"
	"fmt"
	"io"
	"os"

	shellquote "github.com/kballard/go-shellquote"
	"github.com/pkg/sftp"
	cryptossh "golang.org/x/crypto/ssh"

	"github.com/phannguyenbuu/dinh-tot-dong/internal/logging"
	"github.com/phannguyenbuu/dinh-tot-dong/internal/ssh"
)

// SFTPStore edits the config on a remote host over SFTP and runs commands
// there through SSH sessions.
type SFTPStore struct {
	client      *cryptossh.Client
	sftp        *sftp.Client
	destination string
}

// Connect dials the host described by opts and opens an SFTP session.
func Connect(ctx context.Context, opts ssh.Options) (*SFTPStore, error) {
	client, err := ssh.Dial(ctx, opts)
	if err != nil {
		return nil, err
	}

	store, err := NewSFTPStore(client, opts.Destination())
	if err != nil {
		client.Close()
		return nil, err
	}
	return store, nil
}

// NewSFTPStore opens an SFTP session on an established SSH client. Closing
// the store closes the client.
func NewSFTPStore(client *cryptossh.Client, destination string) (*SFTPStore, error) {
	sc, err := sftp.NewClient(client)
	if err != nil {
		return nil, fmt.Errorf("failed to start sftp session: %w", err)
	}
	return newSFTPStore(sc, client, destination), nil
}

func newSFTPStore(sc *sftp.Client, client *cryptossh.Client, destination string) *SFTPStore {
	return &SFTPStore{client: client, sftp: sc, destination: destination}
}

func (s *SFTPStore) ResolvePath(ctx context.Context, candidates []string) (string, error) {
	return resolve(ctx, candidates, func(path string) error {
		info, err := s.sftp.Stat(path)
		if err != nil {
			logging.Debug("candidate not found", "path", path, "error", err)
			return err
		}
		if info.IsDir() {
			return fmt.Errorf("%s is a directory", path)
		}
		return nil
	})
}

func (s *SFTPStore) Read(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := s.sftp.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// Write truncates path and writes data in place, so ownership, mode and any
// symlink at path are kept.
func (s *SFTPStore) Write(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := s.sftp.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC)
	if err != nil {
		return fmt.Errorf("failed to open %s for writing: %w", path, err)
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}
	return nil
}

// Run executes argv in a new SSH session. The arguments are shell-quoted
// because the remote side hands the command line to the login shell.
func (s *SFTPStore) Run(ctx context.Context, argv ...string) ([]byte, error) {
	if len(argv) == 0 {
		return nil, fmt.Errorf("empty command")
	}
	if s.client == nil {
		return nil, fmt.Errorf("no ssh connection for %s", s.destination)
	}

	session, err := s.client.NewSession()
	if err != nil {
		return nil, fmt.Errorf("failed to open ssh session: %w", err)
	}
	defer session.Close()

	stop := context.AfterFunc(ctx, func() { session.Close() })
	defer stop()

	cmd := shellquote.Join(argv...)
	logging.Debug("running remote command", "destination", s.destination, "command", cmd)

	out, err := session.CombinedOutput(cmd)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return out, ctxErr
	}
	if err != nil {
		return out, fmt.Errorf("%s: %w", cmd, err)
	}
	return out, nil
}

func (s *SFTPStore) Location() string {
	return s.destination
}

func (s *SFTPStore) Close() error {
	err := s.sftp.Close()
	if s.client != nil {
		if sshErr := s.client.Close(); err == nil {
			err = sshErr
		}
	}
	return err
}
