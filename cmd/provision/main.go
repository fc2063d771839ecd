package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	multierror "github.com/hashicorp/go-multierror"
	"golang.org/x/term"
	"gopkg.in/ini.v1"

	"github.com/provisionops/provision/logger"
	"github.com/provisionops/provision/provision"
	"github.com/provisionops/provision/provision/commandmanager"
	"github.com/provisionops/provision/provision/host"
)

// defaultConfigPath is read when no -ini flag is given; it is optional
// so that a fully flag-driven invocation needs no config file at all.
const defaultConfigPath = "/etc/provision/provision.ini"

var programLevel = new(slog.LevelVar)

type flags struct {
	Account            string
	Group              string
	Service            string
	Debug              bool
	Hostnames          hostnamesValue
	IniFilePath        string
	KeyPassPrompt      bool
	LogFileName        string
	PasswordPrompt     bool
	SudoPasswordPrompt bool
	Username           string
}

type hostnamesValue []string

func (h *hostnamesValue) String() string {
	return strings.Join(*h, ",")
}

func (h *hostnamesValue) Set(value string) error {
	*h = append(*h, value)
	return nil
}

func parseFlags() *flags {
	f := &flags{}
	flag.BoolVar(&f.Debug, "debug", false, "Enable debug log level")
	flag.BoolVar(&f.KeyPassPrompt, "keypass", false, "Prompt for a passphrase to decrypt SSH keys")
	flag.BoolVar(&f.PasswordPrompt, "password", false, "Prompt for a password for the SSH connection")
	flag.BoolVar(&f.SudoPasswordPrompt, "sudo-password", false, "Prompt for a sudo password")
	flag.StringVar(&f.Account, "account", "", "System account to provision")
	flag.StringVar(&f.Group, "group", "", "Supplementary group the account should join")
	flag.StringVar(&f.Service, "service", "", "Service unit to enable and restart")
	flag.StringVar(&f.IniFilePath, "ini", "", "Path to INI file with provisioning configuration")
	flag.StringVar(&f.LogFileName, "log", "", "Additional log file name")
	flag.StringVar(&f.Username, "username", "", "Username to use for SSH connection")
	flag.Var(&f.Hostnames, "hostname", "Hostname to provision (repeatable)")
	flag.Parse()

	return f
}

type settings struct {
	Account string
	Group   string
	Service string
	Hosts   []string
}

// readConfigFile loads provisioning targets from an INI file. The
// [provision] section carries the account, group, and service names; an
// optional [targets] section lists hostnames, one per key.
func readConfigFile(filePath string) (*settings, error) {
	cfg, err := ini.Load(filePath)
	if err != nil {
		return nil, err
	}

	s := &settings{}
	if sec, err := cfg.GetSection("provision"); err == nil {
		s.Account = sec.Key("account").String()
		s.Group = sec.Key("group").String()
		s.Service = sec.Key("service").String()
	}
	if sec, err := cfg.GetSection("targets"); err == nil {
		for _, key := range sec.Keys() {
			s.Hosts = append(s.Hosts, key.String())
		}
	}

	return s, nil
}

// resolveSettings merges flag values over config file values. Flags win;
// the config at defaultConfigPath is consulted only when present.
func resolveSettings(f *flags) (*settings, error) {
	s := &settings{}

	path := f.IniFilePath
	if path == "" {
		if _, err := os.Stat(defaultConfigPath); err == nil {
			path = defaultConfigPath
		}
	}
	if path != "" {
		loaded, err := readConfigFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
		s = loaded
	}

	if f.Account != "" {
		s.Account = f.Account
	}
	if f.Group != "" {
		s.Group = f.Group
	}
	if f.Service != "" {
		s.Service = f.Service
	}
	s.Hosts = append(s.Hosts, f.Hostnames...)
	if len(s.Hosts) == 0 {
		s.Hosts = []string{"localhost"}
	}

	if s.Account == "" || s.Group == "" || s.Service == "" {
		return nil, fmt.Errorf("account, group, and service must all be set (flags or config file)")
	}

	return s, nil
}

func configureLogger(f *flags) logger.Logger {
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: programLevel})
	slog.SetDefault(slog.New(h))

	if f.Debug {
		programLevel.Set(slog.LevelDebug)
	} else {
		programLevel.Set(slog.LevelInfo)
	}

	log := logger.New()
	if f.LogFileName != "" {
		fileLog, err := logger.NewFile(f.LogFileName, f.Debug)
		if err != nil {
			slog.Error("Failed to open log file", "file", f.LogFileName, "error", err)
		} else {
			log = logger.Multi(log, fileLog)
		}
	}
	return log
}

func promptSecret(label string) string {
	fmt.Printf("Enter the %s: ", label)
	secretBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		slog.Error("Failed to read secret", "label", label, "error", err)
		return ""
	}
	fmt.Println()
	return string(secretBytes)
}

func buildHostOptions(f *flags) []host.HostOption {
	var options []host.HostOption
	if f.Username != "" {
		options = append(options, host.WithUser(f.Username))
	}
	if f.PasswordPrompt {
		if password := promptSecret("password"); password != "" {
			options = append(options, host.WithPassword(password))
		}
	}
	if f.KeyPassPrompt {
		if keyPass := promptSecret("key passphrase"); keyPass != "" {
			options = append(options, host.WithKeyPassphrase(keyPass))
		}
	}
	if f.SudoPasswordPrompt {
		if sudoPassword := promptSecret("sudo password"); sudoPassword != "" {
			options = append(options, host.WithSudoPassword(sudoPassword))
		}
	}
	options = append(options, host.WithSSHClient(commandmanager.RealSSHDialer{}))
	return options
}

// provisionHosts provisions every host in turn and aggregates the
// per-host failures. Hosts are attempted even when earlier ones fail.
func provisionHosts(hosts []string, options []host.HostOption, target provision.Target, log logger.Logger) error {
	var result *multierror.Error

	for _, hostname := range hosts {
		slog.Debug("Provisioning host", "host", hostname)
		h, err := host.NewHost(hostname, options...)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("host %s: %w", hostname, err))
			continue
		}

		p := provision.New(h.AccountManager, h.ServiceManager, log)
		if err := p.Provision(target); err != nil {
			slog.Error("Provisioning failed", "host", hostname, "error", err)
			result = multierror.Append(result, fmt.Errorf("host %s: %w", hostname, err))
			continue
		}
		slog.Info("Provisioning complete", "host", hostname, "account", target.Account, "service", target.Service)
	}

	return result.ErrorOrNil()
}

func main() {
	f := parseFlags()
	log := configureLogger(f)

	s, err := resolveSettings(f)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	target := provision.Target{
		Account: s.Account,
		Group:   s.Group,
		Service: s.Service,
	}
	options := buildHostOptions(f)

	if err := provisionHosts(s.Hosts, options, target, log); err != nil {
		os.Exit(1)
	}
}
