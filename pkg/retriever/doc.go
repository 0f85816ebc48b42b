// Package retriever drives the read path: given a MARS-style request, it
// enumerates every database the top-level schema rules could match,
// expands each database's own on-disk schema over the index and datum
// levels (using that database's archived Axis values to prefer forms
// already on disk), and gathers the resulting FieldRef locations into
// DataHandles the caller can read bytes from.
//
// Wind synthesis is flagged, not computed: when a request asks for the
// derived U/V wind components and only the underlying vorticity/
// divergence fields are archived, gatherWindSources substitutes the VO/D
// request and marks the resulting handles NeedsSynthesis so a downstream
// spectral-transform step (outside this module's scope) knows to derive
// U/V before returning bytes to the caller.
package retriever
