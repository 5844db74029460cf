package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/plexsphere/simplepipe/internal/collector"
	"github.com/plexsphere/simplepipe/internal/pushgw"
)

var pushCmd = &cobra.Command{
	Use:   "push <file> <job>",
	Short: "Push a metric file to the Pushgateway",
	Long: "Load metric definitions from <file> (.json, .yaml or .yml) and push them to\n" +
		"the Pushgateway under <job>, replacing the metrics stored for that job.",
	Args: cobra.ExactArgs(2),
	RunE: runPush,
}

func init() {
	rootCmd.AddCommand(pushCmd)
}

func runPush(cmd *cobra.Command, args []string) error {
	path, job := args[0], args[1]
	if err := pushFile(cmd, path, job); err != nil {
		return fmt.Errorf("simplepipe push: %w", err)
	}
	return nil
}

// pushFile loads configuration, pushes the file at path under job and
// reports the result on the command's output.
func pushFile(cmd *cobra.Command, path, job string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger := setupLogger(cmd.ErrOrStderr(), cfg.LogLevel)
	logger.Info("starting simplepipe",
		"version", buildVersion,
		"gateway", cfg.Gateway.URL,
	)

	client, err := pushgw.NewClient(cfg.Gateway, buildVersion, logger)
	if err != nil {
		return fmt.Errorf("create client: %w", err)
	}
	defer client.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	c := collector.New(client, logger)
	if err := c.LoadAndPush(ctx, path, job); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "pushed %s to %s as job %q\n", path, client.URL(), job)
	return nil
}
