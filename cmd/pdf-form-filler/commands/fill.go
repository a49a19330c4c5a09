package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/a3tai/pdf-form-filler/internal/taxforms"
	"github.com/spf13/cobra"
)

func newFillCmd() *cobra.Command {
	var (
		output     string
		fieldNames bool
	)

	cmd := &cobra.Command{
		Use:   "fill FORM_TYPE [VALUES_FILE]",
		Short: "Fill a tax form from a JSON values file",
		Long: `Fills the template of FORM_TYPE (W9, W8_BEN or W8_BEN_E) with the JSON values
read from VALUES_FILE, or from stdin when the file is omitted or "-".

The finalized PDF is written to the output directory. With --field-names no
values are read; every text field shows its own name instead.`,
		Example: `  pdf-form-filler fill W9 vendor.json
  pdf-form-filler fill w8-ben --out zoe.pdf < zoe.json
  pdf-form-filler fill W8_BEN_E --field-names --out layout.pdf`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			service, _, err := newService(cmd)
			if err != nil {
				return err
			}

			var values []byte
			if !fieldNames {
				source := "-"
				if len(args) == 2 {
					source = args[1]
				}
				if values, err = readValues(cmd.InOrStdin(), source); err != nil {
					return err
				}
			}

			result, err := service.FillFile(cmd.Context(), taxforms.FillRequest{
				FormType:   args[0],
				Values:     values,
				Output:     output,
				FieldNames: fieldNames,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Filled %s: %s (%d pages, %d bytes, request %s)\n",
				result.FormType, result.Path, result.Pages, result.Size, result.RequestID)
			return nil
		},
	}

	cmd.Flags().StringVar(&output, "out", "", "Output file name below the output directory (generated if empty)")
	cmd.Flags().BoolVar(&fieldNames, "field-names", false, "Fill every text field with its own name to locate fields on the template")
	return cmd
}

// readValues reads the values tree from path, or from stdin for "-"
func readValues(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read values from stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read values: %w", err)
	}
	return data, nil
}
