// Package ssh opens SSH connections to the host serving the nginx config.
// Connection settings are built with the Options builder and turned into an
// x/crypto ClientConfig.
package ssh

import (
	"context"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	cryptossh "golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/phannguyenbuu/dinh-tot-dong/internal/logging"
)

// Default SSH configuration values.
const (
	DefaultUser           = "root"
	DefaultPort           = 22
	DefaultConnectTimeout = 15 * time.Second
)

// Options configures SSH connection parameters.
type Options struct {
	Host               string
	Port               int
	User               string
	Password           string
	IdentityFile       string
	KnownHostsFile     string
	StrictHostKeyCheck bool
	ConnectTimeout     time.Duration
}

// DefaultOptions returns Options with sensible defaults for host.
func DefaultOptions(host string) Options {
	return Options{
		Host:               host,
		Port:               DefaultPort,
		User:               DefaultUser,
		StrictHostKeyCheck: false,
		ConnectTimeout:     DefaultConnectTimeout,
	}
}

// WithUser returns a copy with the login user set.
func (o Options) WithUser(user string) Options {
	o.User = user
	return o
}

// WithPort returns a copy with the port set.
func (o Options) WithPort(port int) Options {
	o.Port = port
	return o
}

// WithPassword returns a copy using password authentication.
func (o Options) WithPassword(password string) Options {
	o.Password = password
	return o
}

// WithIdentityFile returns a copy using the private key at path.
func (o Options) WithIdentityFile(path string) Options {
	o.IdentityFile = path
	return o
}

// WithKnownHosts returns a copy that verifies host keys against path.
func (o Options) WithKnownHosts(path string) Options {
	o.KnownHostsFile = path
	o.StrictHostKeyCheck = path != ""
	return o
}

// WithTimeout returns a copy with the specified connect timeout.
func (o Options) WithTimeout(timeout time.Duration) Options {
	o.ConnectTimeout = timeout
	return o
}

// Address returns the host:port dial address.
func (o Options) Address() string {
	return net.JoinHostPort(o.Host, strconv.Itoa(o.Port))
}

// Destination returns the user@host string.
func (o Options) Destination() string {
	return fmt.Sprintf("%s@%s", o.User, o.Host)
}

// AuthMethods returns the configured authentication methods, key first.
func (o Options) AuthMethods() ([]cryptossh.AuthMethod, error) {
	var methods []cryptossh.AuthMethod

	if o.IdentityFile != "" {
		key, err := os.ReadFile(o.IdentityFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read identity file: %w", err)
		}
		signer, err := cryptossh.ParsePrivateKey(key)
		if err != nil {
			return nil, fmt.Errorf("failed to parse identity file %s: %w", o.IdentityFile, err)
		}
		methods = append(methods, cryptossh.PublicKeys(signer))
	}

	if o.Password != "" {
		password := o.Password
		methods = append(methods,
			cryptossh.Password(password),
			cryptossh.KeyboardInteractive(func(_, _ string, questions []string, _ []bool) ([]string, error) {
				answers := make([]string, len(questions))
				for i := range answers {
					answers[i] = password
				}
				return answers, nil
			}),
		)
	}

	if len(methods) == 0 {
		return nil, fmt.Errorf("no SSH credentials: set a password or identity file")
	}
	return methods, nil
}

// HostKeyCallback returns the host key policy. Without strict checking any
// host key is accepted.
func (o Options) HostKeyCallback() (cryptossh.HostKeyCallback, error) {
	if !o.StrictHostKeyCheck {
		return cryptossh.InsecureIgnoreHostKey(), nil
	}
	if o.KnownHostsFile == "" {
		return nil, fmt.Errorf("strict host key checking requires a known_hosts file")
	}
	cb, err := knownhosts.New(o.KnownHostsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load known_hosts: %w", err)
	}
	return cb, nil
}

// ClientConfig builds the x/crypto client configuration.
func (o Options) ClientConfig() (*cryptossh.ClientConfig, error) {
	if o.Host == "" {
		return nil, fmt.Errorf("host is required")
	}
	if o.User == "" {
		return nil, fmt.Errorf("user is required")
	}

	auth, err := o.AuthMethods()
	if err != nil {
		return nil, err
	}
	hostKey, err := o.HostKeyCallback()
	if err != nil {
		return nil, err
	}

	return &cryptossh.ClientConfig{
		User:            o.User,
		Auth:            auth,
		HostKeyCallback: hostKey,
		Timeout:         o.ConnectTimeout,
	}, nil
}

// Dial connects and authenticates. The context bounds the TCP connect and
// the SSH handshake.
func Dial(ctx context.Context, o Options) (*cryptossh.Client, error) {
	cfg, err := o.ClientConfig()
	if err != nil {
		return nil, err
	}

	if o.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.ConnectTimeout)
		defer cancel()
	}

	logging.Debug("dialing ssh", "destination", o.Destination(), "port", o.Port,
		"password", logging.Secret(o.Password), "identity", o.IdentityFile)

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", o.Address())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", o.Address(), err)
	}

	// Abort a stalled handshake when the context ends.
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	c, chans, reqs, err := cryptossh.NewClientConn(conn, o.Address(), cfg)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("ssh handshake with %s failed: %w", o.Destination(), err)
	}

	return cryptossh.NewClient(c, chans, reqs), nil
}
