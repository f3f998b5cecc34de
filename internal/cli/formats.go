package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"docconv/internal/formats"

	"github.com/spf13/cobra"
)

func newFormatsCmd(a *app) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "formats",
		Short: "List the target formats the service accepts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := formats.New()
			if err != nil {
				return err
			}

			list := registry.Allowed(a.cfg.AllowedFormats)
			if all {
				list = registry.All()
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "FORMAT\tFAMILIES\tDESCRIPTION")
			for _, f := range list {
				families := make([]string, len(f.Families))
				for i, fam := range f.Families {
					families[i] = string(fam)
				}
				desc := f.Description
				if !f.Known {
					desc = "(not in catalog)"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", f.Name, strings.Join(families, ","), desc)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "List the whole catalog instead of the allowed formats")

	return cmd
}
