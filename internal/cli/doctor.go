package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newDoctorCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check that the converter and temp directory are usable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "converter: %s\n", a.cfg.ConverterBinary)
			version, err := a.newConverter(a.cfg, a.logger).Probe(cmd.Context())
			if err != nil {
				fmt.Fprintf(out, "  FAIL %v\n", err)
				return fmt.Errorf("converter is not usable")
			}
			fmt.Fprintf(out, "  ok   %s\n", version)

			fmt.Fprintf(out, "temp dir: %s\n", a.cfg.TempDir)
			if err := checkWritable(a.cfg.TempDir); err != nil {
				fmt.Fprintf(out, "  FAIL %v\n", err)
				return fmt.Errorf("temp dir is not writable")
			}
			fmt.Fprintln(out, "  ok   writable")
			return nil
		},
	}
}

func checkWritable(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".docconv-doctor-*")
	if err != nil {
		return err
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}
