// Package core defines the shared language of argtable.
//
// This package contains:
//   - The introspection contract (ParameterIntrospectable)
//   - Collected signatures (Descriptor, SignatureTable)
//   - The normalized output (Grid, Table)
//   - The error taxonomy (UnknownCallableError and sentinels)
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
