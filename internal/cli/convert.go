package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"docconv/internal/domain/models"

	"github.com/spf13/cobra"
)

func newConvertCmd(a *app) *cobra.Command {
	var (
		to     string
		output string
		force  bool
	)

	cmd := &cobra.Command{
		Use:   "convert <file>",
		Short: "Convert a local file",
		Long: "Convert a local file and write the result next to the working directory.\n" +
			"When the converter produces several files they are written as one zip archive.",
		Example: "  docconv convert report.docx --to pdf\n" +
			"  docconv convert sheet.ods --to 'csv:Text - txt - csv (StarCalc):44,34,76' -o sheet.csv",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runConvert(cmd, args[0], to, output, force)
		},
	}

	cmd.Flags().StringVarP(&to, "to", "t", "", "Target format, optionally with a filter (name[:filter])")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output path (default: the result name in the current directory)")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing output file")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

func (a *app) runConvert(cmd *cobra.Command, input, to, output string, force bool) error {
	format, err := models.ParseTargetFormat(to)
	if err != nil {
		return err
	}

	src, err := os.Open(input)
	if err != nil {
		return fmt.Errorf("failed to open input: %w", err)
	}
	defer src.Close()

	// A local run always cleans up after itself
	cfg := *a.cfg
	cfg.DeleteFiles = true

	result, err := a.newConverter(&cfg, a.logger).Convert(cmd.Context(), &models.ConversionRequest{
		Filename: filepath.Base(input),
		Content:  src,
		Format:   format,
	})
	if err != nil {
		return err
	}
	defer result.Close()

	if output == "" {
		output = result.Name()
	}
	if err := writeResult(output, result, force); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s (%d bytes)\n", input, output, result.Size())
	return nil
}

func writeResult(path string, r io.Reader, force bool) (err error) {
	flags := os.O_WRONLY | os.O_CREATE | os.O_EXCL
	if force {
		flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%s already exists, use --force to overwrite", path)
		}
		return fmt.Errorf("failed to create output: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	if _, err := io.Copy(f, r); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
