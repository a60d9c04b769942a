package backup

import (
	"context"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"
)

var (
	DefaultSSHUser = "root"
	DefaultSSHPort = 22
	sshTimeout     = 30 * time.Second
)

func initSSHClient(ctx context.Context, params Parameters) (*ssh.Client, error) {
	addr := net.JoinHostPort(params.Host, strconv.Itoa(params.Port))
	creds := Credentials{User: params.User, Password: params.Password}

	for {
		client, err := dialSSH(ctx, addr, creds.User, creds.Password)
		if err == nil {
			return client, nil
		}

		if !isAuthError(err) {
			return nil, fmt.Errorf("ssh dial failed: %w", err)
		}

		if params.PromptCredentials == nil {
			return nil, fmt.Errorf("ssh authentication as %s failed: %w", creds.User, err)
		}

		next, ok := params.PromptCredentials(creds, err)
		if !ok {
			return nil, fmt.Errorf("ssh authentication cancelled by user")
		}
		next.User = strings.TrimSpace(next.User)
		if next.User == "" {
			next.User = creds.User
		}
		creds = next
	}
}

func dialSSH(ctx context.Context, addr, user, password string) (*ssh.Client, error) {
	config := &ssh.ClientConfig{
		User:            user,
		Auth:            []ssh.AuthMethod{ssh.Password(password)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         sshTimeout,
	}

	dialer := net.Dialer{Timeout: sshTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}

	c, chans, reqs, err := ssh.NewClientConn(conn, addr, config)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return ssh.NewClient(c, chans, reqs), nil
}

func isAuthError(err error) bool {
	if err == nil {
		return false
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unable to authenticate") || strings.Contains(msg, "permission denied")
}

// runSSHCommandTo runs cmd with stdout copied to out. The session is killed
// when ctx ends or timeout elapses.
func runSSHCommandTo(ctx context.Context, client *ssh.Client, cmd string, out io.Writer, timeout time.Duration) error {
	sess, err := client.NewSession()
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	defer sess.Close()

	var errBuf strings.Builder
	sess.Stdout = out
	sess.Stderr = &errBuf

	done := make(chan error, 1)
	go func() { done <- sess.Run(cmd) }()

	select {
	case runErr := <-done:
		if runErr != nil {
			return fmt.Errorf("command '%s' failed: %w (stderr: %s)", cmd, runErr, strings.TrimSpace(errBuf.String()))
		}
		return nil
	case <-ctx.Done():
		_ = sess.Signal(ssh.SIGKILL)
		return ctx.Err()
	case <-time.After(timeout):
		_ = sess.Signal(ssh.SIGKILL)
		return fmt.Errorf("command '%s' timed out", cmd)
	}
}

func shellQuote(value string) string {
	return "'" + strings.ReplaceAll(value, "'", `'"'"'`) + "'"
}
