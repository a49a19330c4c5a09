package commands

import (
	"errors"
	"fmt"

	"github.com/a3tai/pdf-form-filler/internal/checker"
	"github.com/a3tai/pdf-form-filler/internal/taxforms"
	"github.com/spf13/cobra"
)

// errInconsistent is returned when a configuration references missing fields
var errInconsistent = errors.New("field definitions reference missing fields")

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check [FORM_TYPE...]",
		Short: "Verify that the field definitions match the templates",
		Long: `Checks that every field referenced by the configuration of each form exists
in its template. All forms are checked when no FORM_TYPE is given.

Exits with a non-zero status when a field is missing or a template cannot be loaded.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			service, _, err := newService(cmd)
			if err != nil {
				return err
			}

			results, err := service.Check(cmd.Context(), args...)
			if results == nil && err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), taxforms.FormatCheck(results, err))

			if err != nil {
				return err
			}
			if len(checker.Messages(results)) > 0 {
				return errInconsistent
			}
			return nil
		},
	}
}
