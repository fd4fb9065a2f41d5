package main

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/san-kum/autopark/internal/canbus"
	"github.com/san-kum/autopark/internal/config"
	"github.com/san-kum/autopark/internal/metrics"
	"github.com/san-kum/autopark/internal/park"
	"github.com/san-kum/autopark/internal/telemetry"
	"github.com/san-kum/autopark/internal/vehicle"
)

var (
	canIface    string
	serialPort  string
	baudRate    int
	metricsAddr string
)

func newDriveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "drive",
		Short: "park the real vehicle over CAN",
		Args:  cobra.NoArgs,
		RunE:  runDrive,
	}
	cmd.Flags().StringVar(&canIface, "can", "can0", "SocketCAN interface")
	cmd.Flags().StringVar(&serialPort, "serial", "", "serial port for telemetry lines (e.g. /dev/rfcomm0)")
	cmd.Flags().IntVar(&baudRate, "baud", config.DefaultBaudRate, "serial baud rate")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "expose Prometheus metrics on this address")
	return cmd
}

func driveOverrides(cmd *cobra.Command, cfg *config.Config) {
	d := &cfg.Diagnostics
	flags := cmd.Flags()
	if flags.Changed("can") || d.CANInterface == "" {
		d.CANInterface = canIface
	}
	if flags.Changed("serial") {
		d.SerialPort = serialPort
	}
	if flags.Changed("baud") || d.BaudRate == 0 {
		d.BaudRate = baudRate
	}
	if flags.Changed("metrics-addr") {
		d.MetricsAddr = metricsAddr
	}
}

func runDrive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	driveOverrides(cmd, cfg)
	d := cfg.Diagnostics

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	bus, err := canbus.Dial(ctx, d.CANInterface)
	if err != nil {
		return err
	}
	defer bus.Close()
	motor := canbus.NewMotor(bus)
	sensor := canbus.NewSensor(bus, bus)

	sinks := telemetry.Multi{telemetry.LogSink{}}
	if d.SerialPort != "" {
		port, err := telemetry.OpenSerial(d.SerialPort, d.BaudRate)
		if err != nil {
			return err
		}
		defer port.Close()
		sinks = append(sinks, port)
	}

	m := park.New(cfg.ParkParams(), cfg.Gains(), park.Rig{
		Sensor:      sensor,
		Motor:       motor,
		Clock:       vehicle.WallClock{},
		Diagnostics: sinks,
	})
	cfg.Apply(m, sensor)
	set := metrics.Default()
	m.AddObserver(set)

	if d.MetricsAddr != "" {
		exp := metrics.NewExporter()
		m.AddObserver(exp)
		go func() {
			if err := exp.Serve(ctx, d.MetricsAddr); err != nil {
				log.Errorf("[metrics] %v", err)
			}
		}()
	}

	finished := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			log.Warn("[drive] interrupted, stopping motors")
			motor.Stop()
		case <-finished:
		}
	}()

	log.Infof("[drive] parking on the %s side via %s", cfg.Parking.Side, d.CANInterface)
	for m.State() != park.Done {
		if err := ctx.Err(); err != nil {
			close(finished)
			motor.Stop()
			return fmt.Errorf("maneuver aborted in %s: %w", m.State(), err)
		}
		m.Advance()
	}
	close(finished)

	log.Infof("[drive] done after %d ticks, %d reinits, %d motor errors", m.Ticks(), m.Steering.Reinits(), motor.Errors())
	for name, v := range set.Values() {
		log.Infof("[drive] %s=%.4f", name, v)
	}
	return nil
}
