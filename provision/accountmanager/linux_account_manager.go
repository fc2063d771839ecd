package accountmanager

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	cm "github.com/provisionops/provision/provision/commandmanager"
)

const (
	// DefaultHomeDir is the sentinel home path recorded for system
	// accounts. It is never created.
	DefaultHomeDir = "/nonexistent"

	// DefaultShell is the non-interactive shell assigned to system
	// accounts.
	DefaultShell = "/usr/sbin/nologin"
)

// getent exits 2 when the requested key is not found in the database.
const getentStatusNotFound = 2

// LinuxAccountManager manipulates the account and group databases through
// the shadow-utils tools (getent, useradd, usermod).
type LinuxAccountManager struct {
	CommandManager cm.CommandManager

	// Sudo elevates the mutating commands; lookups always run
	// unprivileged.
	Sudo bool
}

func (l *LinuxAccountManager) AccountExists(name string) (bool, error) {
	result, err := l.CommandManager.Run(context.TODO(), cm.CommandConfig{
		Command: "getent",
		Args:    []string{"passwd", name},
	})
	if err == nil {
		return true, nil
	}
	if result.ExitCode == getentStatusNotFound {
		return false, nil
	}
	return false, fmt.Errorf("querying account %q: %w", name, err)
}

func (l *LinuxAccountManager) GetAccount(name string) (Account, error) {
	result, err := l.CommandManager.Run(context.TODO(), cm.CommandConfig{
		Command: "getent",
		Args:    []string{"passwd", name},
	})
	if err != nil {
		return Account{}, err
	}

	parts := strings.Split(strings.TrimSpace(result.STDOUT), ":")
	if len(parts) < 7 {
		return Account{}, errors.New("unexpected passwd entry format")
	}

	uid, _ := strconv.Atoi(parts[2])
	gid, _ := strconv.Atoi(parts[3])

	return Account{
		Name:    parts[0],
		UID:     uid,
		GID:     gid,
		Comment: parts[4],
		HomeDir: parts[5],
		Shell:   parts[6],
	}, nil
}

func (l *LinuxAccountManager) CreateSystemAccount(name string, opts SystemAccountOptions) error {
	homeDir := opts.HomeDir
	if homeDir == "" {
		homeDir = DefaultHomeDir
	}
	shell := opts.Shell
	if shell == "" {
		shell = DefaultShell
	}

	args := []string{
		"--system",
		"--no-create-home",
		"--home-dir", homeDir,
		"--shell", shell,
		"--user-group",
	}
	if opts.Comment != "" {
		args = append(args, "--comment", opts.Comment)
	}
	args = append(args, name)

	result, err := l.CommandManager.Run(context.TODO(), cm.CommandConfig{
		Command: "useradd",
		Args:    args,
		Sudo:    l.Sudo,
	})
	if err != nil {
		return fmt.Errorf("useradd %q: %w: %s", name, err, strings.TrimSpace(result.STDERR))
	}
	return nil
}

func (l *LinuxAccountManager) GroupExists(name string) (bool, error) {
	result, err := l.CommandManager.Run(context.TODO(), cm.CommandConfig{
		Command: "getent",
		Args:    []string{"group", name},
	})
	if err == nil {
		return true, nil
	}
	if result.ExitCode == getentStatusNotFound {
		return false, nil
	}
	return false, fmt.Errorf("querying group %q: %w", name, err)
}

func (l *LinuxAccountManager) AddAccountToGroup(account, group string) error {
	// usermod -a -G is a no-op for an existing member, which keeps
	// repeated provisioning runs idempotent.
	result, err := l.CommandManager.Run(context.TODO(), cm.CommandConfig{
		Command: "usermod",
		Args:    []string{"-a", "-G", group, account},
		Sudo:    l.Sudo,
	})
	if err != nil {
		return fmt.Errorf("adding %q to group %q: %w: %s", account, group, err, strings.TrimSpace(result.STDERR))
	}
	return nil
}
