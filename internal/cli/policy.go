package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/crawlytics/dashgeom/pkg/policy"
)

// policyCommand creates the policy inspection command.
func (c *CLI) policyCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "policy [policy.toml]",
		Short: "Show the effective layout policy",
		Long: `Show the effective layout policy.

Without arguments the built-in defaults are shown. With a policy file its
overrides are applied on top of the defaults first, so the output is exactly
what compute and serve would use. A file that fails validation is rejected
with the reason.

The output goes to stdout and can be piped into a new policy file.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validatePolicyFormat(format); err != nil {
				return err
			}

			pol := policy.Default()
			if len(args) == 1 {
				p, err := policy.LoadFile(args[0])
				if err != nil {
					return err
				}
				pol = p
			}

			return writePolicy(pol, format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "toml", "output format: toml (default), json")

	return cmd
}

// writePolicy encodes the policy to stdout in the requested format.
func writePolicy(pol policy.Policy, format string) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(pol, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	default:
		return toml.NewEncoder(os.Stdout).Encode(pol)
	}
}

// validatePolicyFormat checks that the format is either "toml" or "json".
func validatePolicyFormat(f string) error {
	if f != "toml" && f != "json" {
		return fmt.Errorf("invalid format: %s (must be 'toml' or 'json')", f)
	}
	return nil
}
