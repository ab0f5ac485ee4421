package main

import (
	"daily-routine-service/internal/adapters/cache"
	"daily-routine-service/internal/adapters/geocode"
	"daily-routine-service/internal/adapters/repositories"
	"daily-routine-service/internal/domain"
	"daily-routine-service/internal/platform/db"
	"daily-routine-service/internal/services"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	planSeed       uint64
	planCategories string
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Plan a routine and print the itinerary",
	Long: `Plan a routine from the stored categories and print it.

Locations are resolved with the offline mock geocoder.

Examples:
  # Plan from the database, reproducibly
  routinectl plan --seed 42

  # Plan from a categories file without touching the database
  routinectl plan --categories my-week.json`,
	RunE: runPlan,
}

func init() {
	planCmd.Flags().Uint64Var(&planSeed, "seed", 0, "Random seed for a reproducible routine")
	planCmd.Flags().StringVar(&planCategories, "categories", "", "Categories JSON file; plans in memory instead of --db")
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	path := dbPath
	if planCategories != "" {
		path = ":memory:"
	}
	conn, err := db.OpenSQLite(path)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := repositories.InitSchema(conn); err != nil {
		return err
	}
	if planCategories != "" {
		err = repositories.SeedFromJSON(ctx, conn, planCategories)
	} else {
		_, err = repositories.SeedIfEmpty(ctx, conn, "")
	}
	if err != nil {
		return err
	}

	planner := &services.RoutinePlanner{
		Categories: repositories.NewSqliteCategoryRepository(conn),
		Geocoder: geocode.NewCachedGeocoder(
			geocode.NewMockGeocoder(geocode.PuertoPenasco),
			cache.NewSqliteGeocodeCache(conn),
			nil,
			geocode.WithCacheLogger(zap.L()),
		),
		Routines: repositories.NewSqliteRoutineRepository(conn),
		Logger:   zap.L(),
	}

	req := services.PlanRoutineRequest{}
	if cmd.Flags().Changed("seed") {
		req.Seed = &planSeed
	}

	routine, err := planner.Plan(ctx, req)
	if err != nil {
		return err
	}

	printRoutine(cmd.OutOrStdout(), routine)
	return nil
}

func printRoutine(w io.Writer, r *domain.Routine) {
	fmt.Fprintf(w, "Routine %s\n\n", r.ID)
	for i, a := range r.Activities {
		fmt.Fprintf(w, "%2d. %s-%s  %-12s %s\n", i+1, a.StartTime, a.EndTime, a.CategoryName, a.Location)
	}

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w)
		for _, warning := range r.Warnings {
			fmt.Fprintf(w, "! %s\n", warning)
		}
	}

	if url, err := services.GoogleMapsURL(r.Activities); err == nil {
		fmt.Fprintf(w, "\n%s\n", url)
	}
}
