package main

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Krimson/neorisk-monitor/neorisk/internal/gateway"
	"github.com/Krimson/neorisk-monitor/neorisk/internal/history"
	"github.com/Krimson/neorisk-monitor/neorisk/internal/models"
	"github.com/Krimson/neorisk-monitor/neorisk/internal/recorder"
	"github.com/Krimson/neorisk-monitor/neorisk/internal/service"
	"github.com/Krimson/neorisk-monitor/neorisk/internal/store"
	"github.com/Krimson/neorisk-monitor/neorisk/internal/validation"
)

// withService opens the configured store for a one-shot command.
func withService(cmd *cobra.Command, fn func(svc *service.Service) error) error {
	st, err := store.Open(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("failed to open history store: %w", err)
	}
	defer st.Close()

	rec := recorder.New(st, cfg.RecorderQueueSize, cfg.RecorderWriteTimeout())
	defer rec.Stop()

	gw := gateway.New(cfg.Classifiers, cfg.ClassifierTimeout(), nil)
	return fn(service.New(validation.New(), gw, st, rec, cfg.SeedCount))
}

func seedCmd() *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Store generated sample predictions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("count") {
				count = cfg.SeedCount
			}
			return withService(cmd, func(svc *service.Service) error {
				n, err := svc.Seed(cmd.Context(), count)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d history entries\n", n)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&count, "count", 50, "number of entries to generate")
	return cmd
}

func clearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete the whole prediction history",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withService(cmd, func(svc *service.Service) error {
				n, err := svc.Clear(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d history entries\n", n)
				return nil
			})
		},
	}
}

func exportCmd() *cobra.Command {
	var (
		format    string
		out       string
		consensus string
		model     string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the prediction history as JSON or CSV",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := history.ParseFormat(format)
			if err != nil {
				return err
			}

			filters := models.DefaultFilters()
			if consensus != "" {
				v, err := models.ParseVerdict(consensus)
				if err != nil {
					return err
				}
				filters.Consensus = v
			}
			if model != "" {
				m, err := models.ParseModelID(model)
				if err != nil {
					return err
				}
				filters.Model = m
			}

			if out == "" {
				out = f.Filename(time.Now())
			}

			return withService(cmd, func(svc *service.Service) error {
				// nothing reaches the output until the whole export succeeded
				var buf bytes.Buffer
				if err := svc.Export(cmd.Context(), &buf, filters, f); err != nil {
					return err
				}
				if out == "-" {
					_, err := buf.WriteTo(cmd.OutOrStdout())
					return err
				}
				if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
					return fmt.Errorf("failed to write %s: %w", out, err)
				}
				log.Printf("[INFO] Exported history to %s", out)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", string(history.FormatJSON), "export format (json, csv)")
	cmd.Flags().StringVar(&out, "out", "", `output file, "-" for stdout (default: history_<ms>.<format>)`)
	cmd.Flags().StringVar(&consensus, "consensus", "", `only entries with this consensus ("Healthy" or "At Risk")`)
	cmd.Flags().StringVar(&model, "model", "", "only entries that used this model")
	return cmd
}
