package cli

import (
	"context"
	"fmt"

	"mediapack/internal"
)

// Represents the 'mediapack version' command.
type VersionCmd struct{}

// Executes the version command.
func (c *VersionCmd) Run(ctx context.Context) error {
	fmt.Println(internal.VersionString())
	return nil
}
