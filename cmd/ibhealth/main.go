// Command ibhealth is the InfiniBand fabric health CLI: it wraps the
// orchestrator, the generic CSV operation, and a terminal report browser
// behind a cobra root command, following the same root-plus-subcommand
// shape as melisai's cmd/melisai/main.go.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ftahirops/ibhealth/internal/analyzer"
	"github.com/ftahirops/ibhealth/internal/config"
	"github.com/ftahirops/ibhealth/internal/csvgeneric"
	"github.com/ftahirops/ibhealth/internal/dataset"
	"github.com/ftahirops/ibhealth/internal/observability"
	"github.com/ftahirops/ibhealth/internal/orchestrator"
)

var version = "0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configFile string
		logLevel   string
	)

	root := &cobra.Command{
		Use:     "ibhealth",
		Short:   "InfiniBand fabric diagnostic dump analyzer",
		Version: version,
		Long: `ibhealth analyzes a consolidated InfiniBand diagnostic dump (.db_csv)
and produces a structured health report: a 0-100 score, a letter grade,
per-category sub-scores, a ranked issue list with remediation guidance,
and per-subsystem tabular views.`,
	}

	root.PersistentFlags().StringVar(&configFile, "config", "", "path to an ibhealth.yaml config file")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")

	root.AddCommand(
		newAnalyzeCmd(&configFile, &logLevel),
		newCSVCmd(),
		newViewCmd(&configFile, &logLevel),
	)
	return root
}

func buildLogger(level string) (*observability.Logger, error) {
	return observability.New(level)
}

func newAnalyzeCmd(configFile, logLevel *string) *cobra.Command {
	var (
		format           string
		outputPath       string
		firmwarePolicy   string
		topologyBaseline string
	)

	cmd := &cobra.Command{
		Use:   "analyze <extracted-dump-dir>",
		Short: "Run the full analyzer fan-out over an extracted dump directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configFile)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			logger, err := buildLogger(*logLevel)
			if err != nil {
				return err
			}
			defer logger.Sync()

			if firmwarePolicy != "" {
				cfg.SetFirmwarePolicyFile(firmwarePolicy)
			}
			if topologyBaseline != "" {
				cfg.SetExpectedTopologyFile(topologyBaseline)
			}

			fwPolicy := analyzer.LoadFirmwarePolicy(cfg.FirmwarePolicyFile())
			orch := orchestrator.New(cfg, dataset.NewRegistry(), fwPolicy, logger)

			payload, err := orch.AnalyzeIBDiagnet(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("analyzing dump: %w", err)
			}

			switch format {
			case "table":
				renderTable(os.Stdout, payload)
				return nil
			case "json", "":
				return writeJSON(payload, outputPath)
			default:
				return fmt.Errorf("unknown format %q (want json or table)", format)
			}
		},
	}

	cmd.Flags().StringVar(&format, "format", "json", "output format: json or table")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "-", "output file path (- for stdout)")
	cmd.Flags().StringVar(&firmwarePolicy, "firmware-policy", "", "path to a firmware policy JSON file")
	cmd.Flags().StringVar(&topologyBaseline, "topology-baseline", "", "path to an expected topology JSON baseline")
	return cmd
}

func newCSVCmd() *cobra.Command {
	var (
		chunkSize   int
		previewRows int
		outputPath  string
	)

	cmd := &cobra.Command{
		Use:   "csv <file>",
		Short: "Stream-analyze a generic CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := csvgeneric.Analyze(args[0], chunkSize, previewRows)
			if err != nil {
				return fmt.Errorf("analyzing csv: %w", err)
			}
			return writeJSON(result, outputPath)
		},
	}

	cmd.Flags().IntVar(&chunkSize, "chunk-size", 1000, "rows per streaming chunk")
	cmd.Flags().IntVar(&previewRows, "preview-rows", 20, "number of rows to include in the preview")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "-", "output file path (- for stdout)")
	return cmd
}

func newViewCmd(configFile, logLevel *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view <extracted-dump-dir>",
		Short: "Browse a dump's health report in an interactive terminal UI",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configFile)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			logger, err := buildLogger(*logLevel)
			if err != nil {
				return err
			}
			defer logger.Sync()

			fwPolicy := analyzer.LoadFirmwarePolicy(cfg.FirmwarePolicyFile())
			orch := orchestrator.New(cfg, dataset.NewRegistry(), fwPolicy, logger)

			payload, err := orch.AnalyzeIBDiagnet(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("analyzing dump: %w", err)
			}

			return runView(payload)
		},
	}
	return cmd
}

func writeJSON(v any, outputPath string) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if outputPath == "" || outputPath == "-" {
		_, err := os.Stdout.Write(append(data, '\n'))
		return err
	}
	return os.WriteFile(outputPath, data, 0o644)
}
