package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/dyne/sqlsift/internal/config"
	"github.com/dyne/sqlsift/internal/dump"
	"github.com/dyne/sqlsift/internal/emails"
	"github.com/dyne/sqlsift/internal/extract"
	"github.com/dyne/sqlsift/internal/inspect"
	"github.com/dyne/sqlsift/internal/log"
	"github.com/dyne/sqlsift/internal/repair"
	"github.com/dyne/sqlsift/internal/tui"
	"github.com/dyne/sqlsift/internal/xlsx"
)

type globalOptions struct {
	Verbose bool
	Quiet   bool
}

func (g *globalOptions) logger(cmd *cobra.Command) *log.Logger {
	level := log.LevelInfo
	if g.Verbose {
		level = log.LevelDebug
	}
	return log.New(level, cmd.OutOrStdout())
}

func main() {
	rootOpts := &globalOptions{}
	root := &cobra.Command{
		Use:   "sqlsift",
		Short: "Convert SQL dump INSERT statements to CSV",
	}

	root.PersistentFlags().BoolVar(&rootOpts.Verbose, "verbose", false, "enable debug logging")
	root.PersistentFlags().BoolVar(&rootOpts.Quiet, "quiet", false, "suppress progress bars")

	root.AddCommand(extractCmd(rootOpts))
	root.AddCommand(inspectCmd(rootOpts))
	root.AddCommand(repairCmd(rootOpts))
	root.AddCommand(xlsxCmd(rootOpts))
	root.AddCommand(emailsCmd(rootOpts))

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func extractCmd(rootOpts *globalOptions) *cobra.Command {
	var inPath string
	var outDir string
	var cfgPath string
	var tables []string
	var dumpAll bool
	var format string
	var noRepair bool
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract selected tables from a SQL dump",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			logger := rootOpts.logger(cmd)
			ctx := cmd.Context()

			var indexBar *progressbar.ProgressBar
			indexProgress := func(read, total int64) {
				if rootOpts.Quiet {
					return
				}
				if indexBar == nil {
					indexBar = progressbar.DefaultBytes(total, "indexing")
				}
				_ = indexBar.Set64(read)
			}
			ix, err := dump.BuildIndex(ctx, inPath, dump.BuildOptions{Progress: indexProgress})
			if err != nil {
				return err
			}
			if indexBar != nil {
				_ = indexBar.Finish()
			}
			names := ix.Names()
			if len(names) == 0 {
				logger.Warnf("no tables found in %s", inPath)
				return nil
			}
			logger.Infof("found %d tables", len(names))

			if !dumpAll && len(tables) == 0 {
				tables, err = tui.Select(names, inPath)
				if err != nil {
					return err
				}
				if len(tables) == 0 {
					logger.Infof("no tables selected")
					return nil
				}
			}

			var tableBar *progressbar.ProgressBar
			currentTable := ""
			tableProgress := func(table string, done, total int) {
				if rootOpts.Quiet {
					return
				}
				if table != currentTable {
					currentTable = table
					tableBar = progressbar.Default(int64(total), "parsing "+table)
				}
				_ = tableBar.Set(done)
			}

			_, err = extract.Run(ctx, extract.Options{
				DumpPath:      inPath,
				OutDir:        outDir,
				Tables:        tables,
				DumpAll:       dumpAll,
				Format:        format,
				NoRepair:      noRepair,
				Config:        cfg,
				Logger:        logger,
				Index:         ix,
				TableProgress: tableProgress,
			})
			return err
		},
	}
	cmd.Flags().StringVar(&inPath, "in", "", "input SQL dump (.sql or .sql.gz)")
	cmd.Flags().StringVar(&outDir, "out", "", "output directory")
	cmd.Flags().StringVar(&cfgPath, "config", "", "YAML configuration file")
	cmd.Flags().StringSliceVar(&tables, "table", nil, "table to extract (repeatable)")
	cmd.Flags().BoolVarP(&dumpAll, "dumpall", "d", false, "extract every table without the selector")
	cmd.Flags().StringVar(&format, "format", "", "output format (csv|sqlite)")
	cmd.Flags().BoolVar(&noRepair, "no-repair", false, "drop mismatched rows instead of repairing")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}

func inspectCmd(rootOpts *globalOptions) *cobra.Command {
	var inPath string
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "List tables and row counts in a SQL dump",
		RunE: func(cmd *cobra.Command, args []string) error {
			return inspect.Run(cmd.Context(), inPath, rootOpts.logger(cmd))
		},
	}
	cmd.Flags().StringVar(&inPath, "in", "", "input SQL dump")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}

func repairCmd(rootOpts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repair <csv-or-wrong-length-file>",
		Short: "Recover rows from a _wrong_length sidecar into its CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := rootOpts.logger(cmd)
			res, err := repair.RecoverFile(cmd.Context(), args[0], logger)
			if err != nil {
				return err
			}
			if res.Recovered == 0 && res.Failed == 0 {
				logger.Infof("no rows to process")
			}
			return nil
		},
	}
	return cmd
}

func xlsxCmd(rootOpts *globalOptions) *cobra.Command {
	var inPath string
	var outDir string
	cmd := &cobra.Command{
		Use:   "xlsx",
		Short: "Convert an Excel workbook to one CSV per sheet",
		RunE: func(cmd *cobra.Command, args []string) error {
			return xlsx.Convert(cmd.Context(), inPath, outDir, rootOpts.logger(cmd))
		},
	}
	cmd.Flags().StringVar(&inPath, "in", "", "input .xlsx file")
	cmd.Flags().StringVar(&outDir, "out", "", "output directory")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}

func emailsCmd(rootOpts *globalOptions) *cobra.Command {
	var inPath string
	var outPath string
	cmd := &cobra.Command{
		Use:   "emails",
		Short: "Extract email addresses from a text file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if outPath == "" {
				outPath = strings.TrimSuffix(inPath, ".txt") + "_emails.txt"
			}
			return emails.ExtractFile(cmd.Context(), inPath, outPath, rootOpts.logger(cmd))
		},
	}
	cmd.Flags().StringVar(&inPath, "in", "", "input text file")
	cmd.Flags().StringVar(&outPath, "out", "", "output file (default <in>_emails.txt)")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}
