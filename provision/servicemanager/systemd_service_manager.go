package servicemanager

import (
	"context"
	"strings"

	sdutil "github.com/coreos/go-systemd/v22/util"

	cm "github.com/provisionops/provision/provision/commandmanager"
)

// MarkerDir is the runtime directory whose presence indicates a running
// systemd instance.
const MarkerDir = "/run/systemd/system"

// SystemdServiceManager drives systemd through systemctl via a
// CommandManager.
type SystemdServiceManager struct {
	CommandManager cm.CommandManager

	// Sudo elevates the systemctl invocations.
	Sudo bool

	// detect overrides availability detection; nil means "probe the
	// marker directory through the command manager".
	detect func() bool
}

// NewSystemdServiceManager returns a manager for the given command layer.
// For local hosts detection uses go-systemd's sd_booted check directly
// instead of shelling out.
func NewSystemdServiceManager(manager cm.CommandManager, local, sudo bool) *SystemdServiceManager {
	s := &SystemdServiceManager{CommandManager: manager, Sudo: sudo}
	if local {
		s.detect = sdutil.IsRunningSystemd
	}
	return s
}

func (s *SystemdServiceManager) Available() bool {
	if s.detect != nil {
		return s.detect()
	}
	_, err := s.CommandManager.Run(context.TODO(), cm.CommandConfig{
		Command: "test",
		Args:    []string{"-d", MarkerDir},
	})
	return err == nil
}

func (s *SystemdServiceManager) DaemonReload() error {
	return s.systemctl("daemon-reload")
}

func (s *SystemdServiceManager) EnableService(serviceName string) error {
	return s.systemctl("enable", serviceName)
}

func (s *SystemdServiceManager) DisableService(serviceName string) error {
	return s.systemctl("disable", serviceName)
}

func (s *SystemdServiceManager) StartService(serviceName string) error {
	return s.systemctl("start", serviceName)
}

func (s *SystemdServiceManager) StopService(serviceName string) error {
	return s.systemctl("stop", serviceName)
}

func (s *SystemdServiceManager) RestartService(serviceName string) error {
	return s.systemctl("restart", serviceName)
}

func (s *SystemdServiceManager) CheckServiceStatus(serviceName string) (ServiceStatus, error) {
	result, err := s.CommandManager.Run(context.TODO(), cm.CommandConfig{
		Command: "systemctl",
		Args:    []string{"is-active", serviceName},
	})
	switch strings.TrimSpace(result.STDOUT) {
	case "active":
		return Active, nil
	case "inactive":
		return Inactive, nil
	case "failed":
		return Failed, nil
	default:
		return "", err
	}
}

func (s *SystemdServiceManager) IsServiceEnabled(serviceName string) (bool, error) {
	result, err := s.CommandManager.Run(context.TODO(), cm.CommandConfig{
		Command: "systemctl",
		Args:    []string{"is-enabled", serviceName},
	})
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(result.STDOUT) == "enabled", nil
}

func (s *SystemdServiceManager) systemctl(args ...string) error {
	_, err := s.CommandManager.Run(context.TODO(), cm.CommandConfig{
		Command: "systemctl",
		Args:    args,
		Sudo:    s.Sudo,
	})
	return err
}
