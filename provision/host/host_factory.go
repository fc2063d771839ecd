package host

import (
	"errors"

	"github.com/provisionops/provision/provision/accountmanager"
	"github.com/provisionops/provision/provision/commandmanager"
	"github.com/provisionops/provision/provision/servicemanager"
)

// NewHost wires a command layer plus account and service managers for the
// given hostname. "localhost", "127.0.0.1", and the empty string select
// local execution; anything else goes over SSH.
func NewHost(hostname string, options ...HostOption) (*Host, error) {
	h := &Host{Hostname: hostname}

	for _, option := range options {
		option(h)
	}

	cmdManager := &commandmanager.UnixCommandManager{
		Hostname:    hostname,
		SSHClient:   h.SSHClient,
		Credentials: h.Credentials,
	}
	if !cmdManager.IsLocal() && h.SSHClient == nil {
		return nil, errors.New("remote host requires an SSH client")
	}

	// Mutating commands only need sudo when we are not already root
	// and a sudo password was supplied.
	useSudo := h.SudoPassword != ""

	h.CommandManager = cmdManager
	h.AccountManager = &accountmanager.LinuxAccountManager{
		CommandManager: cmdManager,
		Sudo:           useSudo,
	}
	h.ServiceManager = servicemanager.NewSystemdServiceManager(cmdManager, cmdManager.IsLocal(), useSudo)

	return h, nil
}
