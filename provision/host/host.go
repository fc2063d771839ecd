package host

import (
	"github.com/provisionops/provision/common"
	"github.com/provisionops/provision/provision/accountmanager"
	"github.com/provisionops/provision/provision/commandmanager"
	"github.com/provisionops/provision/provision/servicemanager"
)

// Host bundles the collaborators needed to provision a single machine,
// local or remote.
type Host struct {
	Hostname string
	common.Credentials

	SSHClient      commandmanager.SSHDialer
	CommandManager commandmanager.CommandManager
	AccountManager accountmanager.AccountManager
	ServiceManager servicemanager.ServiceManager
}
