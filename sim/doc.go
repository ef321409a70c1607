// Package sim provides the steady-state process model of the bioethanol line.
//
// # Reading Guide
//
// Start with these files to understand the model:
//   - stream.go: Stream (component mass flows) and the mixture property model
//   - stage.go: the four stage transforms (fermentation → filtration → distillation → dehydration)
//   - pipeline.go: Run threads the feed through the intake, each stage, and the outlet
//
// # Architecture
//
// The sim package is purely computational: no I/O, no goroutines, no shared mutable state.
// Equipment costs come through the CostTable interface so that table parsing stays outside
// the core. Sub-packages build on it:
//   - sim/tables/: flat-file loaders for pump, pipe and valve cost tables
//   - sim/sweep/: lazy enumeration of the design space and the parallel sweep driver
//   - sim/results/: result sinks (CSV, purity list, run header) and summary statistics
//
// # Errors
//
// Three error kinds can end a run, none of which is ever clamped away:
//   - *ConfigurationRangeError: a grade or discretized size falls outside a lookup table
//   - *PhysicallyInvalidStateError: a stage would produce a negative flow or waste
//   - ErrDegenerateStream: mixture properties requested for a stream with no mass
package sim
