package main

import (
	"elsofra/internal/repository"
	"elsofra/internal/service"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newMigrateCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(cmd.Context(), *configFile)
			if err != nil {
				return err
			}
			defer rt.Close()

			if err := repository.Migrate(cmd.Context(), rt.db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}

func newSeedScheduleCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed-schedule",
		Short: "Write the schedule section of the config file to the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(cmd.Context(), *configFile)
			if err != nil {
				return err
			}
			defer rt.Close()

			if len(rt.cfg.Schedule) == 0 {
				return errors.New("config has no schedule section")
			}
			svc := service.NewScheduleService(repository.NewScheduleRepository(rt.db), rt.logger)
			n, err := svc.Seed(cmd.Context(), rt.cfg.Schedule)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d schedule entries written\n", n)
			return nil
		},
	}
}

func newImportLedgerCmd(configFile *string) *cobra.Command {
	var replace bool

	cmd := &cobra.Command{
		Use:   "import-ledger <csv>",
		Short: "Import the legacy reservation export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			rt, err := setup(cmd.Context(), *configFile)
			if err != nil {
				return err
			}
			defer rt.Close()

			importer := service.NewLedgerImporter(repository.NewLedgerRepository(rt.db), repository.NewTxManager(rt.db), rt.logger)
			report, err := importer.Import(cmd.Context(), f, replace)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "rows read:          %d\n", report.Read)
			fmt.Fprintf(out, "rows imported:      %d\n", report.Imported)
			fmt.Fprintf(out, "rows skipped:       %d\n", report.Skipped)
			fmt.Fprintf(out, "party size fixed:   %d\n", report.PartySizeFixed)
			fmt.Fprintf(out, "time slot fixed:    %d\n", report.TimeSlotFixed)
			fmt.Fprintf(out, "room normalized:    %d\n", report.RoomNormalized)
			fmt.Fprintf(out, "status normalized:  %d\n", report.StatusNormalized)
			if replace {
				fmt.Fprintf(out, "previous rows removed: %d\n", report.Cleared)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&replace, "replace", false, "delete existing legacy records before importing")
	return cmd
}
