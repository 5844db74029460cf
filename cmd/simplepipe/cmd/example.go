package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/plexsphere/simplepipe/internal/example"
)

var examplePushJob string

var exampleCmd = &cobra.Command{
	Use:   "example [dir]",
	Short: "Write the simple example metric file",
	Long: "Write metric.json with a single random-integer gauge into dir (default: the\n" +
		"current directory) and print its path. With --push the file is pushed afterwards.",
	Args: cobra.MaximumNArgs(1),
	RunE: runExample,
}

func init() {
	exampleCmd.Flags().StringVar(&examplePushJob, "push", "", "push the generated file under this job name")
	rootCmd.AddCommand(exampleCmd)
}

func runExample(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}

	path, err := example.Simple(dir, nil)
	if err != nil {
		return fmt.Errorf("simplepipe example: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)

	if examplePushJob == "" {
		return nil
	}
	if err := pushFile(cmd, path, examplePushJob); err != nil {
		return fmt.Errorf("simplepipe example: %w", err)
	}
	return nil
}
