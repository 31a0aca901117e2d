package definitions

import (
	"fmt"
)

// ConfigurationError reports a missing or invalid required setting.
type ConfigurationError struct {
	Setting  string
	Guidance string
}

func (e *ConfigurationError) Error() string {
	if e.Guidance == "" {
		return fmt.Sprintf("%s is not set", e.Setting)
	}
	return fmt.Sprintf("%s is not set, %s", e.Setting, e.Guidance)
}

// SessionEstablishmentError reports a failed session handshake.
type SessionEstablishmentError struct {
	Err error
}

func (e *SessionEstablishmentError) Error() string {
	return fmt.Sprintf("failed to establish device session: %v", e.Err)
}

func (e *SessionEstablishmentError) Unwrap() error { return e.Err }

// ActionExecutionError reports a failed device call inside an action.
type ActionExecutionError struct {
	Action string
	Err    error
}

func (e *ActionExecutionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Action, e.Err)
}

func (e *ActionExecutionError) Unwrap() error { return e.Err }

// PartialEnumerationError reports that one app category could not be listed.
type PartialEnumerationError struct {
	Category AppCategory
	Err      error
}

func (e *PartialEnumerationError) Error() string {
	return fmt.Sprintf("failed to list %s apps: %v", e.Category, e.Err)
}

func (e *PartialEnumerationError) Unwrap() error { return e.Err }
