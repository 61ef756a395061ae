// Package main is the entry point for the schedrun CLI, which runs the
// schedules of a YAML file and logs every firing.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	schedule "github.com/kaiserkarel/go-schedule"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "schedrun",
		Short:         "Run declarative schedules from a YAML file",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringP("config", "c", "schedules.yaml", "path to the schedule file")
	root.AddCommand(planCmd(), runCmd())
	return root
}

func planCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Print the first firing and period of every schedule",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			loc, err := cfg.TimeLocation()
			if err != nil {
				return err
			}

			at, _ := cmd.Flags().GetString("at")
			now, err := planTime(at, loc, time.Now)
			if err != nil {
				return err
			}

			return printPlans(cmd.OutOrStdout(), cfg, now)
		},
	}
	cmd.Flags().String("at", "", "compute plans as of this RFC3339 time instead of now")
	return cmd
}

// planTime parses the --at flag in loc, falling back to now when it is empty.
func planTime(at string, loc *time.Location, now func() time.Time) (time.Time, error) {
	if at == "" {
		return now().In(loc), nil
	}
	t, err := time.Parse(time.RFC3339, at)
	if err != nil {
		return time.Time{}, errors.Wrap(err, "invalid --at")
	}
	return t.In(loc), nil
}

func printPlans(out io.Writer, cfg *schedule.Config, now time.Time) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSTRATEGY\tFIRST\tPERIOD\tCOUNT")
	for _, sc := range cfg.Schedules {
		spec, err := sc.Spec()
		if err != nil {
			return err
		}
		plan := schedule.NewPlan(now, spec)
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n",
			sc.Name, plan.Strategy, now.Add(plan.InitialDelay).Format(time.RFC3339), plan.Period, spec.Count)
	}
	return w.Flush()
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the schedules until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
				With().Timestamp().Logger()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			opts, err := cfg.Options()
			if err != nil {
				return err
			}
			opts = append(opts, schedule.WithLogger(logger), schedule.WithContext(ctx))

			ctrl, err := schedule.New(&configHost{cfg: cfg, log: logger}, opts...)
			if err != nil {
				return err
			}
			ctrl.Schedule()
			logger.Info().Int("tasks", ctrl.Len()).Msg("schedules running")

			<-ctx.Done()
			ctrl.CancelAll()
			logger.Info().Msg("stopped")
			return nil
		},
	}
}

func loadConfig(cmd *cobra.Command) (*schedule.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return schedule.LoadConfigFile(path)
}

// configHost exposes one logging operation per configured schedule.
type configHost struct {
	cfg *schedule.Config
	log zerolog.Logger
}

func (h *configHost) Operations() []schedule.Operation {
	ops := make([]schedule.Operation, 0, len(h.cfg.Schedules))
	for _, sc := range h.cfg.Schedules {
		spec, err := sc.Spec()
		if err != nil {
			h.log.Error().Err(err).Str("schedule", sc.Name).Msg("skipping schedule")
			continue
		}
		name, message := sc.Name, sc.Message
		ops = append(ops, schedule.Operation{
			Name: name,
			Spec: spec,
			Job: func(_ context.Context) error {
				h.log.Info().Str("schedule", name).Msg(message)
				return nil
			},
		})
	}
	return ops
}
