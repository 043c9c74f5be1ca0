package configs

import (
	"errors"
	"fmt"
)

var (
	ErrMissingCredential          = errors.New("missing credential")
	ErrKnowledgeDirectoryNotFound = errors.New("knowledge directory not found")
	ErrNoDocumentsFound           = errors.New("no documents found")
)

// ConfigurationError reports a configuration problem that must stop the run before any indexing.
type ConfigurationError struct {
	Field string
	Err   error
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("configuration: %v", e.Err)
	}
	return fmt.Sprintf("configuration: %s: %v", e.Field, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

func configErr(field string, err error) error {
	return &ConfigurationError{Field: field, Err: err}
}
