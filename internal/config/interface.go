package config

import "context"

// Loader is the interface for building a validated Project by name.
type Loader interface {
	// Load reads every configuration file of the named project, validates
	// cross-references between them, and returns the composed model. Any
	// failure is returned before anything outside the process is touched.
	Load(ctx context.Context, project string) (*Project, error)

	// Projects lists the names of every project known to the loader.
	Projects(ctx context.Context) ([]string, error)
}
