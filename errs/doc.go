// Package errs provides the structured error type used by wrapper generation.
//
// Errors are categorized by Phase (which step of generation failed) and Kind
// (what was wrong with the input). Every generation step returns an *Error;
// the orchestrator forwards the first one unchanged.
//
//	err := errs.New(errs.PhaseExpand, errs.KindConsumerCardinality).
//		Symbol("kernel").
//		Path("arg0").
//		Detail("expected exactly 1 consumer, found %d", n).
//		Build()
package errs
