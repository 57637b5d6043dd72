// Package operations holds the named transformations of the web tool and the
// CLI, and the registry they are looked up in.
//
// A Function reads the files named in a Request and writes its outputs into
// Request.OutputDir. Every run is split into steps whose StepState ends up in
// the Result, and both the run and its steps are traced through Tracer.
//
// Built-in transformations:
//
//   - logview: machine event logs to per-file cycle-time workbooks, a
//     Summary_Comparison workbook and the grouped Summary CSV
//   - wb_auto_uph, die_attach_auto_uph, pnp_auto_uph: UPH cleaning per
//     production line
//
// Example usage:
//
//	reg := operations.NewRegistry()
//	if err := operations.RegisterDefaults(reg, operations.Defaults{Pipeline: cfg.Pipeline}); err != nil {
//		return err
//	}
//	fn, err := reg.Get("logview")
//	res, err := fn.Run(ctx, operations.Request{Inputs: logs, OutputDir: outDir})
package operations
