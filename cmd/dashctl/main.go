// Command dashctl renders the dashboard views of an exported patient bundle in the terminal.
package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/IANDYI/maternal-dashboard-service/internal/core/domain"
	"github.com/IANDYI/maternal-dashboard-service/internal/core/heatmap"
	"github.com/IANDYI/maternal-dashboard-service/internal/core/pregnancy"
	"github.com/IANDYI/maternal-dashboard-service/internal/core/timeline"
)

type rootOptions struct {
	file     string
	today    string
	timezone string
}

// env resolves the shared flags into a bundle and a reference date
func (o *rootOptions) env(cmd *cobra.Command) (*Bundle, time.Time, error) {
	loc, err := time.LoadLocation(o.timezone)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("invalid --tz: %w", err)
	}
	ref, err := parseToday(o.today, loc, time.Now())
	if err != nil {
		return nil, time.Time{}, err
	}
	bundle, err := loadBundle(o.file, cmd.InOrStdin())
	if err != nil {
		return nil, time.Time{}, err
	}
	log.Debug().Str("patient_id", bundle.Patient.ID.String()).Time("reference", ref).Msg("bundle loaded")
	return bundle, ref, nil
}

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger().Level(zerolog.WarnLevel)

	if err := newRootCmd().Execute(); err != nil {
		log.Error().Err(err).Msg("dashctl failed")
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	styles := DefaultStyles()

	root := &cobra.Command{
		Use:           "dashctl",
		Short:         "Render maternal dashboard views from an exported patient bundle",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
				log.Logger = log.Logger.Level(zerolog.DebugLevel)
			}
		},
	}
	root.PersistentFlags().StringVarP(&opts.file, "file", "f", "-", "bundle JSON file, - for stdin")
	root.PersistentFlags().StringVar(&opts.today, "today", "", "reference date (YYYY-MM-DD or RFC 3339), defaults to now")
	root.PersistentFlags().StringVar(&opts.timezone, "tz", "Local", "timezone in which today is evaluated")
	root.PersistentFlags().BoolP("verbose", "v", false, "debug logging")

	root.AddCommand(calendarCmd(opts, styles))
	root.AddCommand(timelineCmd(opts, styles))
	root.AddCommand(progressCmd(opts, styles))
	return root
}

func calendarCmd(opts *rootOptions, styles *Styles) *cobra.Command {
	var year, month int
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Show the follow-up heatmap for a month",
		RunE: func(cmd *cobra.Command, args []string) error {
			bundle, ref, err := opts.env(cmd)
			if err != nil {
				return err
			}

			target := domain.MonthOf(ref)
			if year != 0 || month != 0 {
				if target, err = domain.NewMonth(year, month); err != nil {
					return err
				}
			}

			cal := heatmap.BuildMonth(target, bundle.FollowUps, ref)
			fmt.Fprint(cmd.OutOrStdout(), RenderCalendar(cal, styles))
			return nil
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "calendar year, defaults to the current one")
	cmd.Flags().IntVar(&month, "month", 0, "calendar month 1-12, defaults to the current one")
	cmd.MarkFlagsRequiredTogether("year", "month")
	return cmd
}

func timelineCmd(opts *rootOptions, styles *Styles) *cobra.Command {
	var limit int
	var upcoming bool
	cmd := &cobra.Command{
		Use:   "timeline",
		Short: "Show the patient activity timeline, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 0 {
				return errors.New("--limit must not be negative")
			}
			bundle, ref, err := opts.env(cmd)
			if err != nil {
				return err
			}

			events := timeline.Assemble(bundle.Patient, bundle.Sources(), timeline.Options{
				MaxItems:        limit,
				ReferenceDate:   ref,
				IncludeUpcoming: upcoming,
			})
			fmt.Fprint(cmd.OutOrStdout(), RenderTimeline(events, ref, styles))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of events, 0 for all")
	cmd.Flags().BoolVar(&upcoming, "upcoming", false, "include events scheduled after today")
	return cmd
}

func progressCmd(opts *rootOptions, styles *Styles) *cobra.Command {
	return &cobra.Command{
		Use:   "progress",
		Short: "Show gestational progress on the 40-week axis",
		RunE: func(cmd *cobra.Command, args []string) error {
			bundle, ref, err := opts.env(cmd)
			if err != nil {
				return err
			}

			p := bundle.Patient
			if p.LMPDate == nil {
				fmt.Fprintln(cmd.OutOrStdout(), styles.Muted.Render("LMP not recorded"))
				return nil
			}
			snap, err := pregnancy.ComputeProgress(*p.LMPDate, p.EDDDate, bundle.HealthChecks, ref)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), RenderProgress(snap, styles))
			return nil
		},
	}
}
