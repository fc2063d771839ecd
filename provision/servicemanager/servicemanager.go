package servicemanager

type ServiceStatus string

const (
	Active   ServiceStatus = "active"
	Inactive ServiceStatus = "inactive"
	Failed   ServiceStatus = "failed"
)

// ServiceManager represents operations that can be performed against the
// host's service manager.
type ServiceManager interface {
	// Available reports whether a live service manager is present on
	// the host and able to accept unit-management commands.
	Available() bool

	// DaemonReload re-reads the service manager's unit configuration.
	DaemonReload() error

	EnableService(serviceName string) error
	RestartService(serviceName string) error
	StartService(serviceName string) error
	StopService(serviceName string) error
	CheckServiceStatus(serviceName string) (ServiceStatus, error)
}
