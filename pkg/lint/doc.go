// Package lint runs rules against F Prime XML descriptors.
//
// # Architecture
//
// A lint run is a Pipeline over one file. The pipeline builds richer
// representations of the input as it goes and offers each one to the
// rules bound at the matching hook point:
//
//  1. Classify the file (PointFileTypeCheck)
//  2. Raw bytes (PointRawFileRules, RawFileRule)
//  3. Parse to an xmldoc.Document
//  4. Parsed tree (PointDocumentModelRules, TreeRule)
//  5. Linked topology.Model (PointFprimeModelRules, ModelRule)
//
// A CRITICAL diagnostic stops the stages after the one that produced it.
// Diagnostics already collected are still reported.
//
// # Registration
//
// Rules are collected in a Registry and bound to a Hooks table:
//
//	reg := lint.NewRegistry(logger)
//	rules.Register(reg)
//	hooks := lint.DefaultHooks()
//	lint.Bind(hooks, reg)
//	p := lint.NewPipeline(hooks, cfg)
//
// Nothing registers itself at import time.
package lint
