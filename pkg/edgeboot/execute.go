package edgeboot

import "github.com/osvaldoandrade/edgeboot/internal/cli"

// Execute runs the edgeboot CLI entrypoint.
func Execute() int {
	return cli.Execute()
}
