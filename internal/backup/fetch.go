package backup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	remoteBackupPath = "/tmp/openwrt-build-backup.tar.gz"
	backupTimeout    = 3 * time.Minute
)

// Credentials is the SSH login used for the router.
type Credentials struct {
	User     string
	Password string
}

// CredentialsPrompt is asked for a new login after the router refused
// rejected with authErr. Returning false aborts the connection; an empty
// User keeps the rejected one.
type CredentialsPrompt func(rejected Credentials, authErr error) (Credentials, bool)

// Parameters describe the router to pull a sysupgrade backup from.
type Parameters struct {
	Host              string
	Port              int
	User              string
	Password          string
	PromptCredentials CredentialsPrompt
	Dest              string
}

// DefaultBackupName names a backup of host taken at t.
func DefaultBackupName(host string, t time.Time) string {
	safe := strings.NewReplacer(":", "_", "/", "_", "\\", "_", " ", "_").Replace(strings.TrimSpace(host))
	return fmt.Sprintf("backup-%s-%s%s", safe, t.Format("20060102-150405"), Extension)
}

// FetchFromDevice runs sysupgrade -b on the router and stores the archive at
// params.Dest. It returns the path of the validated archive.
func FetchFromDevice(ctx context.Context, params Parameters, logFn func(string)) (string, error) {
	if logFn == nil {
		logFn = func(string) {}
	}

	params, err := validateParameters(params)
	if err != nil {
		return "", err
	}

	logFn("Connecting to " + params.Host)
	client, err := initSSHClient(ctx, params)
	if err != nil {
		return "", err
	}
	defer client.Close()
	logFn("Connection to router established")

	if err := os.MkdirAll(filepath.Dir(params.Dest), 0o700); err != nil {
		return "", fmt.Errorf("create backup directory: %w", err)
	}
	file, err := os.OpenFile(params.Dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return "", fmt.Errorf("create backup file: %w", err)
	}

	remote := shellQuote(remoteBackupPath)
	cmd := fmt.Sprintf("sysupgrade -b %s >/dev/null && cat %s; rc=$?; rm -f %s; exit $rc", remote, remote, remote)

	logFn("Creating backup on router")
	runErr := runSSHCommandTo(ctx, client, cmd, file, backupTimeout)
	closeErr := file.Close()
	if runErr != nil {
		os.Remove(params.Dest)
		return "", fmt.Errorf("create backup: %w", runErr)
	}
	if closeErr != nil {
		os.Remove(params.Dest)
		return "", fmt.Errorf("write backup file: %w", closeErr)
	}

	if err := Validate(params.Dest); err != nil {
		os.Remove(params.Dest)
		return "", err
	}

	logFn("Backup saved to " + params.Dest)
	return params.Dest, nil
}

func validateParameters(params Parameters) (Parameters, error) {
	params.Host = strings.TrimSpace(params.Host)
	if params.Host == "" {
		return params, errors.New("router address is required")
	}
	if strings.ContainsAny(params.Host, " \t/") {
		return params, fmt.Errorf("invalid router address: %s", params.Host)
	}
	if params.Port == 0 {
		params.Port = DefaultSSHPort
	}
	if params.Port < 0 || params.Port > 65535 {
		return params, fmt.Errorf("invalid ssh port: %d", params.Port)
	}
	if params.User == "" {
		params.User = DefaultSSHUser
	}
	if strings.TrimSpace(params.Dest) == "" {
		return params, errors.New("backup destination is required")
	}
	if !strings.HasSuffix(strings.ToLower(params.Dest), Extension) {
		params.Dest += Extension
	}
	return params, nil
}
