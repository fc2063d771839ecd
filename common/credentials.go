package common

// Credentials holds the authentication material used to reach a host and
// to elevate privileges on it. All fields are optional; empty values fall
// back to agent-based SSH auth and unprivileged command execution.
type Credentials struct {
	User          string
	Password      string
	KeyPassphrase string
	SudoPassword  string
}
