// Package provision implements idempotent provisioning of a system
// account, its supplementary group membership, and the activation of a
// service unit, in that order. Account and group setup are fatal on
// error; service activation is best-effort.
package provision

import (
	"errors"
	"fmt"

	multierror "github.com/hashicorp/go-multierror"

	"github.com/provisionops/provision/logger"
	"github.com/provisionops/provision/provision/accountmanager"
	"github.com/provisionops/provision/provision/servicemanager"
)

var (
	// ErrAccountCreation marks a failure to verify or create the
	// system account.
	ErrAccountCreation = errors.New("account creation failed")

	// ErrGroupMembership marks a failure to verify the supplementary
	// group or add the account to it. A missing group is not a
	// membership failure.
	ErrGroupMembership = errors.New("group membership failed")
)

// Target names the entities a provisioning run drives into place.
type Target struct {
	Account string
	Group   string
	Service string
}

// Provisioner runs the provisioning sequence against a host through its
// account and service collaborators.
type Provisioner struct {
	Accounts accountmanager.AccountManager
	Services servicemanager.ServiceManager
	Log      logger.Logger
}

func New(accounts accountmanager.AccountManager, services servicemanager.ServiceManager, log logger.Logger) *Provisioner {
	if log == nil {
		log = logger.New()
	}
	return &Provisioner{Accounts: accounts, Services: services, Log: log}
}

// step binds a named piece of the sequence to an explicit failure
// policy. Fatal steps abort the run; the rest log and continue.
type step struct {
	name  string
	fatal bool
	run   func() error
}

// Provision ensures the target account exists as a system account, is a
// member of the target group when that group is present, and that the
// target service is reloaded, enabled, and restarted when a service
// manager is available. It returns an error only when account or group
// setup genuinely fails.
func (p *Provisioner) Provision(t Target) error {
	steps := []step{
		{name: "account", fatal: true, run: func() error {
			return p.ensureAccount(t.Account)
		}},
		{name: "group-membership", fatal: true, run: func() error {
			return p.ensureMembership(t.Account, t.Group)
		}},
	}

	if p.Services.Available() {
		steps = append(steps,
			step{name: "daemon-reload", run: p.Services.DaemonReload},
			step{name: "enable", run: func() error {
				return p.Services.EnableService(t.Service)
			}},
			step{name: "restart", run: func() error {
				return p.Services.RestartService(t.Service)
			}},
		)
	} else {
		p.Log.Debug("No service manager detected, skipping service activation", "service", t.Service)
	}

	var advisory *multierror.Error
	for _, s := range steps {
		err := s.run()
		if err == nil {
			continue
		}
		if s.fatal {
			p.Log.Error("Provisioning step failed", "step", s.name, "error", err)
			return err
		}
		p.Log.Warn("Service step failed, continuing", "step", s.name, "error", err)
		advisory = multierror.Append(advisory, fmt.Errorf("%s: %w", s.name, err))
	}

	if advisory != nil {
		p.Log.Warn("Service activation incomplete", "service", t.Service, "errors", advisory.Len())
	}

	return nil
}

func (p *Provisioner) ensureAccount(account string) error {
	exists, err := p.Accounts.AccountExists(account)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAccountCreation, err)
	}
	if exists {
		p.Log.Debug("Account already present", "account", account)
		return nil
	}

	if err := p.Accounts.CreateSystemAccount(account, accountmanager.SystemAccountOptions{}); err != nil {
		return fmt.Errorf("%w: %v", ErrAccountCreation, err)
	}
	p.Log.Info("Created system account", "account", account)
	return nil
}

func (p *Provisioner) ensureMembership(account, group string) error {
	exists, err := p.Accounts.GroupExists(group)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrGroupMembership, err)
	}
	if !exists {
		p.Log.Debug("Group not present, skipping membership", "group", group)
		return nil
	}

	if err := p.Accounts.AddAccountToGroup(account, group); err != nil {
		return fmt.Errorf("%w: %v", ErrGroupMembership, err)
	}
	p.Log.Info("Ensured group membership", "account", account, "group", group)
	return nil
}
