package config

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/argtable/internal/output"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}
	if _, err := output.ParseMode(c.OutputFormat); err != nil {
		return err
	}
	for i, name := range c.Callables {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("callables[%d] is empty", i)
		}
	}
	if strings.ContainsAny(c.DefaultNamespace, ". ") {
		return fmt.Errorf("default_namespace %q must be a bare identifier", c.DefaultNamespace)
	}
	return nil
}
