// log-publisher reads JSON log records from a file or stdin and publishes
// them to the ingest topic. Useful for manual replay and smoke testing the
// pipeline end to end.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"logvault/internal/config"
	"logvault/internal/ingest"
	"logvault/internal/logger"
	"logvault/pkg/logging"
	"logvault/pkg/models"
)

var (
	configFile string
	inputFile  string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "log-publisher",
		Short: "Publish log records to the ingest topic",
		Long:  "log-publisher reads one JSON record, or an array of records, and publishes them to the broker",
		RunE:  publishCmd().RunE,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to config file (required)")
	rootCmd.PersistentFlags().StringVar(&inputFile, "file", "-", "Path to a JSON records file, or - for stdin")

	rootCmd.AddCommand(publishCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func publishCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "publish",
		Short: "Publish the records read from the input",
		RunE: func(cmd *cobra.Command, args []string) error {
			earlyLog := logging.NewEarlyLog()

			if configFile == "" {
				configFile = os.Getenv("CONFIG_FILE")
				if configFile == "" {
					earlyLog.Error("Config file is required. Use --config flag or CONFIG_FILE environment variable")
					return fmt.Errorf("config file is required")
				}
			}

			cfg, err := config.Load(configFile)
			if err != nil {
				earlyLog.Error("Failed to load config: %v", err)
				return err
			}

			log, err := logger.New(cfg.Logging.Level)
			if err != nil {
				earlyLog.Error("Failed to init logger: %v", err)
				return err
			}
			defer log.Sync()

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			records, err := readRecords(inputFile)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				log.Warn("No records in input, nothing to publish")
				return nil
			}

			producer := ingest.NewProducer(cfg.Broker.Kafka, log)
			defer producer.Close()

			published := 0
			for i := range records {
				if err := producer.Publish(ctx, &records[i]); err != nil {
					log.Errorw("Failed to publish record",
						"index", i,
						"service", records[i].Service,
						"error", err,
					)
					return err
				}
				published++
			}

			log.Infow("Records published", "count", published)
			return nil
		},
	}
}

func readRecords(path string) ([]models.LogRecord, error) {
	var reader io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open input file: %w", err)
		}
		defer f.Close()
		reader = f
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}

	var records []models.LogRecord
	if err := json.Unmarshal(data, &records); err == nil {
		return records, nil
	}

	var record models.LogRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("input is neither a record nor an array of records: %w", err)
	}
	return []models.LogRecord{record}, nil
}
