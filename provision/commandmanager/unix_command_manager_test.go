package commandmanager

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/provisionops/provision/common"
)

type MockSSHClient struct {
	dialError error
}

func (m *MockSSHClient) Dial(network, addr string, config *ssh.ClientConfig, timeout time.Duration) (*ssh.Client, error) {
	return nil, m.dialError
}

func TestRunLocal(t *testing.T) {
	manager := UnixCommandManager{Hostname: "localhost"}

	result, err := manager.RunLocal(context.Background(), CommandConfig{
		Command: "echo",
		Args:    []string{"hello"},
	})
	if err != nil {
		t.Fatalf("RunLocal failed: %v", err)
	}
	if result.STDOUT != "hello\n" {
		t.Errorf("Expected 'hello\\n', got %q", result.STDOUT)
	}
	if result.ExitCode != 0 {
		t.Errorf("Expected exit code 0, got %d", result.ExitCode)
	}
}

func TestRunLocalNonZeroExit(t *testing.T) {
	manager := UnixCommandManager{Hostname: "localhost"}

	result, err := manager.RunLocal(context.Background(), CommandConfig{
		Command: "sh",
		Args:    []string{"-c", "exit 3"},
	})
	if err == nil {
		t.Fatal("Expected an error for a non-zero exit")
	}
	if result.ExitCode != 3 {
		t.Errorf("Expected exit code 3, got %d", result.ExitCode)
	}
}

func TestIsLocal(t *testing.T) {
	manager := UnixCommandManager{Hostname: "localhost"}
	if !manager.IsLocal() {
		t.Errorf("Expected IsLocal to return true for localhost")
	}

	manager.Hostname = "example.com"
	if manager.IsLocal() {
		t.Errorf("Expected IsLocal to return false for example.com")
	}

	manager.Hostname = ""
	if !manager.IsLocal() {
		t.Errorf("Expected IsLocal to return true for an empty hostname")
	}
}

func TestRunRemoteDialError(t *testing.T) {
	manager := UnixCommandManager{
		Hostname:  "remote",
		SSHClient: &MockSSHClient{dialError: errors.New("mock dial error")},
		Credentials: common.Credentials{
			User:     "user",
			Password: "password",
		},
	}

	_, err := manager.RunRemote(context.Background(), CommandConfig{Command: "ls"})
	if err == nil || err.Error() != "mock dial error" {
		t.Errorf("Expected RunRemote to return mock dial error, got %v", err)
	}
}

func TestRunRemoteWithoutClient(t *testing.T) {
	manager := UnixCommandManager{Hostname: "remote"}

	_, err := manager.RunRemote(context.Background(), CommandConfig{Command: "ls"})
	if err == nil {
		t.Error("Expected an error when SSHClient is not set")
	}
}

func TestGetExitCode(t *testing.T) {
	if code := getExitCode(nil); code != 0 {
		t.Errorf("Expected 0 for nil error, got %d", code)
	}
	if code := getExitCode(errors.New("not an exit error")); code != -1 {
		t.Errorf("Expected -1 for a non-exit error, got %d", code)
	}
}
