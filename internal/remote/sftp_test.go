package remote

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/sftp"
)

// newTestSFTPStore connects an SFTPStore to an in-process SFTP server that
// serves the local filesystem.
func newTestSFTPStore(t *testing.T) *SFTPStore {
	t.Helper()

	clientRead, serverWrite := io.Pipe()
	serverRead, clientWrite := io.Pipe()

	server, err := sftp.NewServer(struct {
		io.Reader
		io.WriteCloser
	}{serverRead, serverWrite})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	go server.Serve()

	client, err := sftp.NewClientPipe(clientRead, clientWrite)
	if err != nil {
		t.Fatalf("NewClientPipe: %v", err)
	}

	store := newSFTPStore(client, nil, "root@test")
	t.Cleanup(func() {
		server.Close()
		store.Close()
	})
	return store
}

func TestSFTPStore_ResolveReadWrite(t *testing.T) {
	store := newTestSFTPStore(t)
	ctx := context.Background()

	dir := t.TempDir()
	site := filepath.Join(dir, "conf.d", "site")
	if err := os.MkdirAll(filepath.Dir(site), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(site, []byte("server {\n}\n"), 0644); err != nil {
		t.Fatal(err)
	}

	path, err := store.ResolvePath(ctx, []string{filepath.Join(dir, "sites-available", "site"), site})
	if err != nil {
		t.Fatalf("ResolvePath error: %v", err)
	}
	if path != site {
		t.Errorf("ResolvePath = %q, want %q", path, site)
	}

	data, err := store.Read(ctx, path)
	if err != nil || string(data) != "server {\n}\n" {
		t.Fatalf("Read = %q, %v", data, err)
	}

	// Shorter content must not leave stale bytes behind.
	if err := store.Write(ctx, path, []byte("x\n")); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	got, _ := os.ReadFile(site)
	if string(got) != "x\n" {
		t.Errorf("file content = %q, want %q", got, "x\n")
	}
}

func TestSFTPStore_ResolveNotFound(t *testing.T) {
	store := newTestSFTPStore(t)
	dir := t.TempDir()

	_, err := store.ResolvePath(context.Background(), []string{filepath.Join(dir, "a"), dir})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("ResolvePath error = %v, want ErrNotFound", err)
	}
}

func TestSFTPStore_RunWithoutSSH(t *testing.T) {
	store := newTestSFTPStore(t)

	if _, err := store.Run(context.Background()); err == nil {
		t.Error("Run with no argv should fail")
	}
	if _, err := store.Run(context.Background(), "nginx", "-t"); err == nil {
		t.Error("Run without an ssh client should fail")
	}
	if store.Location() != "root@test" {
		t.Errorf("Location() = %q", store.Location())
	}
}
