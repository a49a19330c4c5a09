package commands

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/a3tai/pdf-form-filler/internal/pdf"
	"github.com/a3tai/pdf-form-filler/internal/taxforms"
	"github.com/spf13/cobra"
)

func newFieldsCmd() *cobra.Command {
	var (
		file        string
		includeText bool
		asJSON      bool
	)

	cmd := &cobra.Command{
		Use:   "fields [FORM_TYPE]",
		Short: "List the interactive fields of a template",
		Long: `Lists the terminal fields of the template of FORM_TYPE with their kind, page
and capacity, marking fields the form configuration does not reference.

With --file any PDF can be inspected instead of an installed template. A
FORM_TYPE given alongside marks the fields its configuration references.`,
		Example: `  pdf-form-filler fields W9
  pdf-form-filler fields W8_BEN_E --file fw8bene-2025.pdf --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			service, cfg, err := newService(cmd)
			if err != nil {
				return err
			}

			var result *taxforms.FieldsResult
			switch {
			case file != "":
				var form *taxforms.Form
				if len(args) == 1 {
					if form, err = taxforms.Lookup(args[0]); err != nil {
						return err
					}
				}
				data, err := pdf.NewValidator(cfg.MaxFileSize).ReadPDF(file)
				if err != nil {
					return err
				}
				if result, err = taxforms.Inspect(data, form, includeText); err != nil {
					return fmt.Errorf("failed to inspect %s: %w", file, err)
				}
				result.Template = file
			case len(args) == 1:
				result, err = service.Fields(taxforms.FieldsRequest{FormType: args[0], IncludeText: includeText})
				if err != nil {
					return err
				}
			default:
				return errors.New("either FORM_TYPE or --file is required")
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}
			fmt.Fprint(cmd.OutOrStdout(), taxforms.FormatFields(result))
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Inspect this PDF instead of an installed template")
	cmd.Flags().BoolVar(&includeText, "text", false, "Also print the plain text of every page")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the inventory as JSON")
	return cmd
}
