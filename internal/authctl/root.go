// Package authctl implements the gophauth operator CLI: hashing passwords
// for seeded accounts and inspecting access tokens.
package authctl

import (
	"io"

	"github.com/spf13/cobra"
)

// NewRootCommand builds the authctl command tree bound to the given streams.
func NewRootCommand(in io.Reader, out, errOut io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "authctl",
		Short:         "gophauth operator tools",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	p := newPrompter(in, errOut)

	root.AddCommand(newHashCommand(p), newInspectCommand())
	return root
}
