package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/spigell/hh-screener/internal/atoms"
	"github.com/spigell/hh-screener/internal/competency"
)

var atomsCmd = &cobra.Command{
	Use:   "atoms",
	Short: "Print the requirement atoms extracted from a job description",
	RunE: func(cmd *cobra.Command, _ []string) error {
		jdFile, _ := cmd.Flags().GetString("jd")
		limit, _ := cmd.Flags().GetInt("max")

		data, err := os.ReadFile(jdFile)
		if err != nil {
			return fmt.Errorf("reading job description: %w", err)
		}

		out, err := json.MarshalIndent(describeAtoms(string(data), limit), "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

type atomsReport struct {
	atoms.Set
	Competencies map[string]competency.Mapping `json:"competencies"`
}

func describeAtoms(jd string, limit int) atomsReport {
	set := atoms.FromDescription(jd, limit)
	return atomsReport{
		Set:          set,
		Competencies: competency.MapAtoms(append(append([]string{}, set.Must...), set.Nice...)),
	}
}

func init() {
	rootCmd.AddCommand(atomsCmd)

	atomsCmd.Flags().String("jd", "", "a file with the job description")
	atomsCmd.Flags().Int("max", atoms.DefaultRefineLimit, "maximum atoms per priority")
	atomsCmd.MarkFlagRequired("jd")
}
