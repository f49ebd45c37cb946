package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	candleadapters "industry_backend/internal/feature/candles/adapters"
	"industry_backend/internal/feature/candles/domain/entity"
	"industry_backend/internal/shared/istclock"
)

// --- Refresh Command ---

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Run the pipeline once against one source",
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("source")
		source, ok := entity.ParseSource(name)
		if !ok {
			return fmt.Errorf("source must be bhavcopy or brokerage, got %q", name)
		}
		run, err := app.Pipeline.Refresh(cmd.Context(), source)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "run %s %s: %d incoming, %d rows", run.ID, run.Status, run.Incoming, run.Rows)
		if !run.From.IsZero() {
			fmt.Fprintf(cmd.OutOrStdout(), " (%s..%s)", istclock.Format(run.From), istclock.Format(run.To))
		}
		fmt.Fprintln(cmd.OutOrStdout())
		return nil
	},
}

func init() {
	refreshCmd.Flags().String("source", string(entity.SourceBhavcopy), "bhavcopy or brokerage")
}

// --- Reference Command ---

var referenceCmd = &cobra.Command{
	Use:   "reference",
	Short: "Rebuild the instrument reference table from the reference folder",
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := app.Reference.Rebuild(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "reference table rebuilt: %d instruments\n", n)
		return nil
	},
}

// --- Screener Command ---

var screenerCmd = &cobra.Command{
	Use:   "screener",
	Short: "Capture today's screener snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := app.Screener.Refresh(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "screener snapshot %s: %d hits\n", istclock.FormatSnapshot(snap.Date), len(snap.Hits))
		return nil
	},
}

// --- Operator Command ---

var operatorCmd = &cobra.Command{
	Use:   "operator",
	Short: "Manage operator accounts",
}

var operatorAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register an operator who may trigger refreshes over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")
		if email == "" || password == "" {
			return errors.New("--email and --password are required")
		}
		if err := app.Operators.Signup(cmd.Context(), email, password); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "operator %s added\n", email)
		return nil
	},
}

func init() {
	operatorAddCmd.Flags().String("email", "", "operator email")
	operatorAddCmd.Flags().String("password", "", "operator password (min 8 characters)")
	operatorCmd.AddCommand(operatorAddCmd)
}

// --- Export Command ---

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the series in another format next to the current file",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		codec, err := candleadapters.NewSeriesCodec(format)
		if err != nil {
			return err
		}
		bars, err := app.Series.Load(cmd.Context())
		if err != nil {
			return err
		}
		out := candleadapters.NewSeriesRepository(app.SeriesFolder, app.Settings.SeriesFile, codec)
		if err := out.Save(cmd.Context(), bars); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "exported %d rows as %s to %s\n", len(bars), format, app.SeriesFolder.Name())
		return nil
	},
}

func init() {
	exportCmd.Flags().String("format", "parquet", "csv or parquet")
}
