package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"logview/internal/app"
	"logview/internal/files"
	"logview/internal/operations"
	"logview/internal/validation"
)

func newProcessCmd(c *cli) *cobra.Command {
	var (
		outDir    string
		reference string
		workers   int
	)
	cmd := &cobra.Command{
		Use:   "process <dir|glob>",
		Short: "Analyze event logs and build the comparison and summary",
		Long: `process reads every .txt log of a directory (or every file matching a glob),
writes one cycle-time workbook per log, then the cross-file comparison and the
grouped summary joined to the package reference. Produced files are printed
one per line.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("workers") {
				c.cfg.Pipeline.Workers = workers
			}
			paths, err := c.paths(reference)
			if err != nil {
				return err
			}
			validator := c.validator()
			inputs, err := logInputs(validator, args[0])
			if err != nil {
				return err
			}

			d, stop, err := c.defaults(paths)
			if err != nil {
				return err
			}
			defer stop()
			fn, err := operations.NewLogviewFromConfig(d)
			if err != nil {
				return err
			}

			out := outputDir(outDir, paths.OutputDirFor(fn.ID()))
			if err := validator.ValidateOutputDirectory(out); err != nil {
				return err
			}
			res, err := fn.Run(cmd.Context(), operations.Request{
				Inputs:    inputs,
				OutputDir: out,
			})
			report(cmd.OutOrStdout(), cmd.ErrOrStderr(), res)
			return err
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "output directory (default: <output_dir>/output_logview)")
	cmd.Flags().StringVar(&reference, "reference", "", "package reference workbook (default: configured reference_file)")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "files analyzed in parallel (default: configured workers)")
	return cmd
}

func newSummarizeCmd(c *cli) *cobra.Command {
	var (
		outDir    string
		reference string
	)
	cmd := &cobra.Command{
		Use:   "summarize <workbook|dir>...",
		Short: "Compare existing per-file workbooks and join them to the reference",
		Long: `summarize rebuilds the comparison and the grouped summary from per-file
workbooks written by an earlier process run. A directory argument stands for
every workbook and CSV file in it, earlier Summary_ outputs excepted.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := c.paths(reference)
			if err != nil {
				return err
			}
			inputs, err := workbookInputs(args)
			if err != nil {
				return err
			}
			d, stop, err := c.defaults(paths)
			if err != nil {
				return err
			}
			defer stop()
			fn, err := operations.NewLogviewFromConfig(d)
			if err != nil {
				return err
			}

			out := outputDir(outDir, paths.OutputDirFor(fn.ID()))
			if err := c.validator().ValidateOutputDirectory(out); err != nil {
				return err
			}
			res, err := fn.SummarizeWorkbooks(cmd.Context(), operations.Request{
				Inputs:    inputs,
				OutputDir: out,
			})
			report(cmd.OutOrStdout(), cmd.ErrOrStderr(), res)
			return err
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "output directory (default: <output_dir>/output_logview)")
	cmd.Flags().StringVar(&reference, "reference", "", "package reference workbook")
	_ = cmd.MarkFlagRequired("reference")
	return cmd
}

func newUPHCmd(c *cli) *cobra.Command {
	var (
		outDir   string
		from, to string
		line     string
	)
	cmd := &cobra.Command{
		Use:   "uph <file>",
		Short: "Clean a machine UPH export and average it per BOM and machine model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := c.paths("")
			if err != nil {
				return err
			}
			d, stop, err := c.defaults(paths)
			if err != nil {
				return err
			}
			defer stop()

			reg := operations.NewRegistry()
			if err := operations.RegisterDefaults(reg, d); err != nil {
				return err
			}
			fn, err := reg.Get(line)
			if err != nil {
				return err
			}
			if fn.ID() == operations.LogviewFunctionID {
				return fmt.Errorf("%s is not a UPH line", line)
			}

			out := outputDir(outDir, paths.OutputDirFor(fn.ID()))
			if err := c.validator().ValidateOutputDirectory(out); err != nil {
				return err
			}
			res, err := fn.Run(cmd.Context(), operations.Request{
				Inputs:    args,
				OutputDir: out,
				From:      from,
				To:        to,
			})
			report(cmd.OutOrStdout(), cmd.ErrOrStderr(), res)
			return err
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "output directory (default: <output_dir>/output_<line>)")
	cmd.Flags().StringVar(&from, "from", "", "first day kept, YYYY/MM/DD")
	cmd.Flags().StringVar(&to, "to", "", "last day kept, YYYY/MM/DD")
	cmd.Flags().StringVar(&line, "line", operations.DefaultUPHLines()[0].ID, "UPH line id")
	return cmd
}

func newServeCmd(c *cli) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web tool",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("port") {
				c.cfg.Server.Port = port
			}
			a, err := app.NewApplication(c.cfg, c.logger)
			if err != nil {
				return err
			}
			return a.Run()
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (default: configured port)")
	return cmd
}

// logInputs resolves the process argument. Anything that is neither a glob
// nor an existing file must name an existing directory.
func logInputs(v *validation.FileValidator, arg string) ([]string, error) {
	if !strings.ContainsAny(arg, "*?[") {
		if info, err := os.Stat(arg); err != nil || info.IsDir() {
			if _, err := v.ValidateInputDirectory(arg, files.LogExtensions); err != nil {
				return nil, err
			}
		}
	}
	return files.NewDiscovery("").FindLogFiles(arg)
}

// workbookInputs expands directory arguments into the spreadsheets they hold.
func workbookInputs(args []string) ([]string, error) {
	d := files.NewDiscovery("")
	var out []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil || !info.IsDir() {
			out = append(out, arg)
			continue
		}
		found, err := d.FindSpreadsheets(arg)
		if err != nil {
			return nil, err
		}
		for _, f := range found {
			if !strings.HasPrefix(f.Name, operations.SummaryPrefix) {
				out = append(out, f.Path)
			}
		}
	}
	return out, nil
}

func outputDir(flag, fallback string) string {
	if flag != "" {
		return flag
	}
	return fallback
}
