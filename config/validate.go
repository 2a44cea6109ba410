package config

import (
	"errors"
	"fmt"

	"tasktracker/shared/validator"
)

var errMissingIdentityProject = errors.New("identity project id or credentials file is required")

// ValidateServer checks the settings the API server cannot start without.
func (c *Config) ValidateServer() error {
	if err := validator.ValidateStruct(&c.DB.Mongo); err != nil {
		return fmt.Errorf("invalid mongo configuration: %w", err)
	}

	if err := validator.ValidateStruct(&c.Identity); err != nil {
		return fmt.Errorf("invalid identity configuration: %w", err)
	}

	if c.Identity.ProjectID == "" && c.Identity.CredentialsFile == "" {
		return errMissingIdentityProject
	}

	return nil
}

// ValidateClient checks the settings used by the terminal client.
func (c *Config) ValidateClient() error {
	if err := validator.ValidateStruct(&c.Client); err != nil {
		return fmt.Errorf("invalid client configuration: %w", err)
	}

	return nil
}
