package accountmanager

// Account represents an individual account in the host's user database.
type Account struct {
	Name    string // login name
	UID     int    // user ID
	GID     int    // primary group ID
	Comment string // full name or comment field
	HomeDir string // home directory
	Shell   string // login shell
}

// SystemAccountOptions control how a system account is created.
type SystemAccountOptions struct {
	// HomeDir is recorded in the user database but never created on
	// disk; it defaults to a sentinel non-existent path.
	HomeDir string

	// Shell defaults to a non-interactive shell.
	Shell string

	// Comment populates the user database comment field.
	Comment string
}

// AccountManager encompasses operations against the host's account and
// group databases. Implementations must be idempotent where the
// underlying operation allows it: adding an account to a group it is
// already a member of is not an error.
type AccountManager interface {
	// AccountExists reports whether an account with the given name is
	// present in the user database.
	AccountExists(name string) (bool, error)

	// GetAccount fetches the details of an account by name.
	GetAccount(name string) (Account, error)

	// CreateSystemAccount creates a non-login system account with a
	// dedicated primary group of the same name and no home directory.
	CreateSystemAccount(name string, opts SystemAccountOptions) error

	// GroupExists reports whether a group with the given name is
	// present in the group database.
	GroupExists(name string) (bool, error)

	// AddAccountToGroup adds the account to the named supplementary
	// group.
	AddAccountToGroup(account, group string) error
}
