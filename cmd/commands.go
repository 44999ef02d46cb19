package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"go-skydata/internal/config"
	"go-skydata/internal/domain"
	"go-skydata/internal/services"
)

func newRootCommand() *cobra.Command {
	var (
		configPath string
		a          *app
	)

	root := &cobra.Command{
		Use:          "skydata",
		Short:        "Tolerant NASA open-data ingestion service",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			a, err = newApp(config.GetConfigPath(configPath))
			return err
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a != nil {
				_ = a.log.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "path to YAML config (CONFIG_PATH overrides)")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and background snapshot sync",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.serve(cmd.Context())
		},
	})

	var apodDate string
	apod := &cobra.Command{
		Use:   "apod",
		Short: "Print the Astronomy Picture of the Day",
		RunE: func(cmd *cobra.Command, _ []string) error {
			date, err := parseDateFlag("date", apodDate)
			if err != nil {
				return err
			}
			img, err := a.space.DailyImage(cmd.Context(), date)
			if err != nil {
				return err
			}
			return printJSON(cmd, img)
		},
	}
	apod.Flags().StringVar(&apodDate, "date", "", "YYYY-MM-DD, defaults to today")
	root.AddCommand(apod)

	var neoStart, neoEnd, neoSort, neoHazard string
	neo := &cobra.Command{
		Use:   "neo",
		Short: "Print near-earth objects for a date window",
		RunE: func(cmd *cobra.Command, _ []string) error {
			start, err := parseDateFlag("start", neoStart)
			if err != nil {
				return err
			}
			end, err := parseDateFlag("end", neoEnd)
			if err != nil {
				return err
			}
			if start.IsZero() && end.IsZero() {
				start, end = services.DefaultNeoWindow(time.Now())
			}
			sortKey, err := services.ParseNeoSortKey(neoSort)
			if err != nil {
				return err
			}
			hazard, err := services.ParseHazardFilter(neoHazard)
			if err != nil {
				return err
			}
			objs, err := a.space.NearEarthObjects(cmd.Context(), start, end)
			if err != nil {
				return err
			}
			objs = services.SortNEOs(services.FilterNEOs(objs, services.NeoFilter{Hazard: hazard}), sortKey)
			return printJSON(cmd, map[string]any{
				"summary": services.SummarizeNEOs(objs),
				"objects": objs,
			})
		},
	}
	neo.Flags().StringVar(&neoStart, "start", "", "YYYY-MM-DD window start")
	neo.Flags().StringVar(&neoEnd, "end", "", "YYYY-MM-DD window end, at most 7 days after start")
	neo.Flags().StringVar(&neoSort, "sort", "date", "date, distance, size or speed")
	neo.Flags().StringVar(&neoHazard, "hazard", "all", "all, hazardous or safe")
	root.AddCommand(neo)

	root.AddCommand(&cobra.Command{
		Use:   "weather",
		Short: "Print InSight Mars weather per sol",
		RunE: func(cmd *cobra.Command, _ []string) error {
			sols, err := a.space.MarsWeather(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd, map[string]any{
				"summary": services.SummarizeWeather(sols),
				"sols":    sols,
			})
		},
	})

	var (
		roverQuery services.RoverQuery
		roverSol   int
	)
	rover := &cobra.Command{
		Use:   "rover <name>",
		Short: "Print one page of Mars rover photos",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			roverQuery.Rover = args[0]
			if cmd.Flags().Changed("sol") {
				roverQuery.Sol = &roverSol
			}
			page, err := a.space.RoverPhotos(cmd.Context(), roverQuery)
			if err != nil {
				return err
			}
			return printJSON(cmd, page)
		},
	}
	rover.Flags().IntVar(&roverSol, "sol", services.DefaultRoverSol, "martian sol")
	rover.Flags().StringVar(&roverQuery.EarthDate, "earth-date", "", "YYYY-MM-DD, exclusive with --sol")
	rover.Flags().StringVar(&roverQuery.Camera, "camera", "", "camera abbreviation, e.g. fhaz")
	rover.Flags().IntVar(&roverQuery.Page, "page", 1, "result page")
	root.AddCommand(rover)

	var epicDate string
	epic := &cobra.Command{
		Use:   "epic",
		Short: "Print EPIC Earth images with download URLs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			date, err := parseDateFlag("date", epicDate)
			if err != nil {
				return err
			}
			images, err := a.space.EpicImages(cmd.Context(), date)
			if err != nil {
				return err
			}
			return printJSON(cmd, images)
		},
	}
	epic.Flags().StringVar(&epicDate, "date", "", "YYYY-MM-DD, defaults to the most recent day")
	root.AddCommand(epic)

	root.AddCommand(&cobra.Command{
		Use:   "epic-dates",
		Short: "Print days with EPIC imagery, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			dates, err := a.space.EpicAvailableDates(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd, dates)
		},
	})

	return root
}

func parseDateFlag(name, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	d, err := domain.ParseDate(value)
	if err != nil {
		return time.Time{}, &domain.InvalidArgumentError{Argument: name, Message: "expected YYYY-MM-DD"}
	}
	return d.Time, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
