package config

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

func validateConfig(config *Config) error {
	if err := validator.New().Struct(config); err != nil {
		var invalid validator.ValidationErrors
		if errors.As(err, &invalid) && len(invalid) > 0 {
			first := invalid[0]
			return fmt.Errorf("invalid %s: failed %q rule", first.Namespace(), first.Tag())
		}
		return err
	}
	return nil
}
