package remote

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"
)

// =============================================================================
// SSH Host
// =============================================================================

// SSHConfig configures the SSH host client.
type SSHConfig struct {
	Host string
	Port int // Default: 22
	User string

	// PrivateKey is the PEM-encoded SSH private key.
	PrivateKey []byte

	CommandTimeout time.Duration // Default: 30 seconds
	ConnectTimeout time.Duration // Default: 10 seconds
}

// SSHHost implements Host by running commands on the target over SSH.
// Commands that touch system paths run under sudo; the remote user must
// have passwordless sudo.
type SSHHost struct {
	config  SSHConfig
	signer  ssh.Signer
	timeout time.Duration

	mu     sync.Mutex // Protects client
	client *ssh.Client
}

// NewSSHHost creates an SSH host client. The connection is established
// lazily on the first command.
func NewSSHHost(config SSHConfig) (*SSHHost, error) {
	signer, err := ssh.ParsePrivateKey(config.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("parse SSH private key: %w", err)
	}

	if config.Port == 0 {
		config.Port = 22
	}
	if config.CommandTimeout == 0 {
		config.CommandTimeout = 30 * time.Second
	}
	if config.ConnectTimeout == 0 {
		config.ConnectTimeout = 10 * time.Second
	}

	return &SSHHost{
		config:  config,
		signer:  signer,
		timeout: config.CommandTimeout,
	}, nil
}

// =============================================================================
// Connection Management
// =============================================================================

// connect establishes the SSH connection if not already connected.
func (h *SSHHost) connect(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.client != nil {
		// Check if the connection is still alive.
		_, _, err := h.client.SendRequest("keepalive@stageops", true, nil)
		if err == nil {
			return nil
		}
		// Connection dead, reconnect.
		h.client.Close()
		h.client = nil
	}

	config := &ssh.ClientConfig{
		User:            h.config.User,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(h.signer)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(), // TODO: Store and verify host keys
		Timeout:         h.config.ConnectTimeout,
	}

	addr := net.JoinHostPort(h.config.Host, strconv.Itoa(h.config.Port))
	client, err := ssh.Dial("tcp", addr, config)
	if err != nil {
		return fmt.Errorf("SSH dial %s: %w", addr, ErrConnectFailed)
	}

	h.client = client
	return nil
}

// Close closes the SSH connection.
func (h *SSHHost) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.client != nil {
		err := h.client.Close()
		h.client = nil
		return err
	}
	return nil
}

// run executes one command in a fresh session, feeding stdin if provided,
// and returns the combined output. A command that outlives the timeout is
// reported as ErrTimeout; the session is torn down with the client.
func (h *SSHHost) run(ctx context.Context, cmd string, stdin []byte) (string, error) {
	if err := h.connect(ctx); err != nil {
		return "", err
	}

	h.mu.Lock()
	session, err := h.client.NewSession()
	h.mu.Unlock()
	if err != nil {
		return "", fmt.Errorf("create SSH session: %w", err)
	}
	defer session.Close()

	var output bytes.Buffer
	session.Stdout = &output
	session.Stderr = &output
	if stdin != nil {
		session.Stdin = bytes.NewReader(stdin)
	}

	done := make(chan error, 1)
	go func() {
		done <- session.Run(cmd)
	}()

	select {
	case <-ctx.Done():
		return output.String(), ctx.Err()
	case <-time.After(h.timeout):
		return output.String(), ErrTimeout
	case err := <-done:
		if err != nil {
			// Keep the exit detail (code or signal) for the report.
			return output.String(), fmt.Errorf("%w: %v", ErrCommandFailed, err)
		}
		return output.String(), nil
	}
}

// =============================================================================
// Remote Primitives
// =============================================================================

// EnsureDir creates the directory and parents if missing.
func (h *SSHHost) EnsureDir(ctx context.Context, path string) error {
	cmd := fmt.Sprintf("sudo mkdir -p %s", quote(path))
	if out, err := h.run(ctx, cmd, nil); err != nil {
		return NewStepError("EnsureDir", path, strings.TrimSpace(out), err)
	}
	return nil
}

// WriteFile replaces the file at path with content. The content is staged
// through a temp file so a partially transferred file never lands at the
// target path.
func (h *SSHHost) WriteFile(ctx context.Context, path, content string) error {
	cmd := fmt.Sprintf(`t=$(mktemp) && cat > "$t" && sudo mv "$t" %s`, quote(path))
	if out, err := h.run(ctx, cmd, []byte(content)); err != nil {
		return NewStepError("WriteFile", path, strings.TrimSpace(out), err)
	}
	return nil
}

// RemoveFile deletes the file at path. Missing files are fine.
func (h *SSHHost) RemoveFile(ctx context.Context, path string) error {
	cmd := fmt.Sprintf("sudo rm -f %s", quote(path))
	if out, err := h.run(ctx, cmd, nil); err != nil {
		return NewStepError("RemoveFile", path, strings.TrimSpace(out), err)
	}
	return nil
}

// SetUnitState enables and starts, or disables and stops, a systemd unit.
func (h *SSHHost) SetUnitState(ctx context.Context, unit string, enabled bool) error {
	action := "disable"
	if enabled {
		action = "enable"
	}

	cmd := fmt.Sprintf("sudo systemctl %s --now %s", action, quote(unit))
	out, err := h.run(ctx, cmd, nil)
	if err != nil {
		// Disabling a unit whose file was never installed is a no-op,
		// not a failure; reconciliation disables the full candidate set.
		if !enabled && unitMissing(out) {
			return nil
		}
		return NewStepError("SetUnitState", unit, strings.TrimSpace(out), err)
	}
	return nil
}

// Reload reloads the given subsystem. The proxy config is validated before
// the reload so a broken vhost never takes the proxy down.
func (h *SSHHost) Reload(ctx context.Context, subsystem Subsystem) error {
	var cmd string
	switch subsystem {
	case SubsystemServiceManager:
		cmd = "sudo systemctl daemon-reload"
	case SubsystemProxy:
		cmd = "sudo nginx -t && sudo systemctl reload nginx"
	default:
		return NewStepError("Reload", string(subsystem), "", ErrUnknownSubsystem)
	}

	if out, err := h.run(ctx, cmd, nil); err != nil {
		return NewStepError("Reload", string(subsystem), strings.TrimSpace(out), err)
	}
	return nil
}

// unitMissing reports whether systemctl output indicates the unit file
// does not exist.
func unitMissing(output string) bool {
	return strings.Contains(output, "does not exist") ||
		strings.Contains(output, "not loaded") ||
		strings.Contains(output, "No such file")
}

// quote wraps an argument in single quotes for the remote shell. Paths and
// unit names are generated from validated project names, so embedded quotes
// do not occur; this guards against spaces.
func quote(arg string) string {
	return "'" + strings.ReplaceAll(arg, "'", `'\''`) + "'"
}
