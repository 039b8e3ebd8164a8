package cmd

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/i474232898/weather-predictor/internal/config"
	"github.com/i474232898/weather-predictor/internal/serialmon"
	"github.com/i474232898/weather-predictor/internal/weather"
)

var (
	monitorPort   string
	monitorBaud   int
	monitorList   bool
	monitorIngest bool
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Show the board's serial events",
	Long: `Read JSON lines from the board over serial and print a compact view of
menu, state, keyword, select, data and error events. Other lines are printed
as they arrive. With --ingest, data events carrying an observation are saved
to the configured store.`,
	RunE: runMonitor,
}

func init() {
	rootCmd.AddCommand(monitorCmd)

	monitorCmd.Flags().StringVarP(&monitorPort, "port", "p", "", "Serial port, e.g. /dev/ttyACM0 (default: SERIAL_PORT)")
	monitorCmd.Flags().IntVarP(&monitorBaud, "baud", "b", serialmon.DefaultBaudRate, "Baud rate")
	monitorCmd.Flags().BoolVar(&monitorList, "list", false, "List available serial ports and exit")
	monitorCmd.Flags().BoolVar(&monitorIngest, "ingest", false, "Save observations from data events to the store")
}

func runMonitor(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if monitorList {
		ports, err := serialmon.Ports()
		if err != nil {
			return err
		}
		for _, p := range ports {
			fmt.Fprintln(out, p)
		}
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if monitorPort == "" {
		monitorPort = cfg.SerialPort
	}
	if monitorPort == "" {
		return fmt.Errorf("no serial port given; use --port or SERIAL_PORT")
	}
	if !cmd.Flags().Changed("baud") && cfg.SerialBaud > 0 {
		monitorBaud = cfg.SerialBaud
	}

	var service *weather.Service
	if monitorIngest {
		params, err := loadScaling(cfg.ScalingPath, cfg.DatasetPath)
		if err != nil {
			return err
		}
		st, closeStore, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer closeStore()
		service = weather.NewService(st, nil, cfg.Location, params)
	}

	port, err := serialmon.Open(monitorPort, serialmon.PortOptions{BaudRate: monitorBaud})
	if err != nil {
		return err
	}
	defer port.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(out, "Connected to %s @ %d. Waiting for lines...\n\n", monitorPort, monitorBaud)
	err = serialmon.NewMonitor(port).Run(ctx, func(ev serialmon.Event) {
		fmt.Fprintln(out, serialmon.Format(ev))
		if service == nil || ev.Kind != serialmon.KindData {
			return
		}
		obs, err := ev.Observation(time.Now())
		if err != nil {
			return
		}
		stored, err := service.Ingest(ctx, obs)
		if err != nil {
			log.Printf("ERROR: ingest failed: %v", err)
			return
		}
		log.Printf("INFO: stored %s for %s", stored.Date.Format(weather.DateLayout), stored.Location.Key())
	})
	fmt.Fprintln(out, "\nBye.")
	return err
}
