package accountmanager

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	cm "github.com/provisionops/provision/provision/commandmanager"
)

type MockCommandManager struct {
	Outputs   map[string]string
	Errs      map[string]error
	ExitCodes map[string]int

	Commands []cm.CommandConfig
}

func (m *MockCommandManager) run(config cm.CommandConfig) (cm.CommandResult, error) {
	m.Commands = append(m.Commands, config)

	key := strings.Join(append([]string{config.Command}, config.Args...), " ")
	result := cm.CommandResult{
		Command:  config.Command,
		STDOUT:   m.Outputs[key],
		ExitCode: m.ExitCodes[key],
	}
	return result, m.Errs[key]
}

func (m *MockCommandManager) Run(ctx context.Context, config cm.CommandConfig) (cm.CommandResult, error) {
	return m.run(config)
}

func (m *MockCommandManager) RunLocal(ctx context.Context, config cm.CommandConfig) (cm.CommandResult, error) {
	return m.run(config)
}

func (m *MockCommandManager) RunRemote(ctx context.Context, config cm.CommandConfig) (cm.CommandResult, error) {
	return m.run(config)
}

func TestAccountExists(t *testing.T) {
	mockCmd := &MockCommandManager{
		Outputs: map[string]string{
			"getent passwd audiocontrol": "audiocontrol:x:998:998::/nonexistent:/usr/sbin/nologin\n",
		},
	}
	manager := LinuxAccountManager{CommandManager: mockCmd}

	exists, err := manager.AccountExists("audiocontrol")
	assert.NoError(t, err)
	assert.True(t, exists)
}

func TestAccountExistsAbsent(t *testing.T) {
	mockCmd := &MockCommandManager{
		Errs:      map[string]error{"getent passwd missing": errors.New("exit status 2")},
		ExitCodes: map[string]int{"getent passwd missing": 2},
	}
	manager := LinuxAccountManager{CommandManager: mockCmd}

	exists, err := manager.AccountExists("missing")
	assert.NoError(t, err)
	assert.False(t, exists)
}

func TestAccountExistsQueryFailure(t *testing.T) {
	mockCmd := &MockCommandManager{
		Errs:      map[string]error{"getent passwd broken": errors.New("connection refused")},
		ExitCodes: map[string]int{"getent passwd broken": -1},
	}
	manager := LinuxAccountManager{CommandManager: mockCmd}

	_, err := manager.AccountExists("broken")
	assert.Error(t, err)
}

func TestGetAccount(t *testing.T) {
	mockCmd := &MockCommandManager{
		Outputs: map[string]string{
			"getent passwd audiocontrol": "audiocontrol:x:998:997:Audio control:/nonexistent:/usr/sbin/nologin\n",
		},
	}
	manager := LinuxAccountManager{CommandManager: mockCmd}

	account, err := manager.GetAccount("audiocontrol")
	assert.NoError(t, err)
	assert.Equal(t, Account{
		Name:    "audiocontrol",
		UID:     998,
		GID:     997,
		Comment: "Audio control",
		HomeDir: "/nonexistent",
		Shell:   "/usr/sbin/nologin",
	}, account)
}

func TestGetAccountBadFormat(t *testing.T) {
	mockCmd := &MockCommandManager{
		Outputs: map[string]string{"getent passwd odd": "odd"},
	}
	manager := LinuxAccountManager{CommandManager: mockCmd}

	_, err := manager.GetAccount("odd")
	assert.Error(t, err)
}

func TestCreateSystemAccount(t *testing.T) {
	mockCmd := &MockCommandManager{}
	manager := LinuxAccountManager{CommandManager: mockCmd, Sudo: true}

	err := manager.CreateSystemAccount("audiocontrol", SystemAccountOptions{})
	assert.NoError(t, err)

	if assert.Len(t, mockCmd.Commands, 1) {
		config := mockCmd.Commands[0]
		assert.Equal(t, "useradd", config.Command)
		assert.Equal(t, []string{
			"--system",
			"--no-create-home",
			"--home-dir", "/nonexistent",
			"--shell", "/usr/sbin/nologin",
			"--user-group",
			"audiocontrol",
		}, config.Args)
		assert.True(t, config.Sudo)
	}
}

func TestCreateSystemAccountFailure(t *testing.T) {
	key := "useradd --system --no-create-home --home-dir /nonexistent --shell /usr/sbin/nologin --user-group audiocontrol"
	mockCmd := &MockCommandManager{
		Errs:      map[string]error{key: errors.New("exit status 1")},
		ExitCodes: map[string]int{key: 1},
	}
	manager := LinuxAccountManager{CommandManager: mockCmd}

	err := manager.CreateSystemAccount("audiocontrol", SystemAccountOptions{})
	assert.Error(t, err)
}

func TestGroupExists(t *testing.T) {
	mockCmd := &MockCommandManager{
		Outputs: map[string]string{"getent group audio": "audio:x:29:pulse\n"},
	}
	manager := LinuxAccountManager{CommandManager: mockCmd}

	exists, err := manager.GroupExists("audio")
	assert.NoError(t, err)
	assert.True(t, exists)
}

func TestGroupExistsAbsent(t *testing.T) {
	mockCmd := &MockCommandManager{
		Errs:      map[string]error{"getent group audio": errors.New("exit status 2")},
		ExitCodes: map[string]int{"getent group audio": 2},
	}
	manager := LinuxAccountManager{CommandManager: mockCmd}

	exists, err := manager.GroupExists("audio")
	assert.NoError(t, err)
	assert.False(t, exists)
}

func TestAddAccountToGroup(t *testing.T) {
	mockCmd := &MockCommandManager{}
	manager := LinuxAccountManager{CommandManager: mockCmd}

	err := manager.AddAccountToGroup("audiocontrol", "audio")
	assert.NoError(t, err)

	if assert.Len(t, mockCmd.Commands, 1) {
		config := mockCmd.Commands[0]
		assert.Equal(t, "usermod", config.Command)
		assert.Equal(t, []string{"-a", "-G", "audio", "audiocontrol"}, config.Args)
	}
}

func TestAddAccountToGroupFailure(t *testing.T) {
	key := "usermod -a -G audio audiocontrol"
	mockCmd := &MockCommandManager{
		Errs: map[string]error{key: errors.New("exit status 6")},
	}
	manager := LinuxAccountManager{CommandManager: mockCmd}

	err := manager.AddAccountToGroup("audiocontrol", "audio")
	assert.Error(t, err)
}
