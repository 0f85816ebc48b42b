package retriever

import "strings"

// Param codes for the wind components relevant to synthesis. Values match
// the ECMWF GRIB parameter table: vorticity and divergence are archived,
// U and V are derived from them on request.
const (
	ParamVorticity  = "138"
	ParamDivergence = "155"
	ParamU          = "131"
	ParamV          = "132"
)

// windSources returns, for a requested param, the archived params a
// synthesised result must be derived from. A U or V request needs both
// vorticity and divergence of the same table; anything else needs no
// substitution. Param canonical forms are "n" or "n.table"; the table
// suffix is preserved on the substitutes so the index lookup matches the
// keys that were actually archived.
func windSources(param string) (archived []string, needsSynthesis bool) {
	base, table := param, ""
	if i := strings.IndexByte(param, '.'); i >= 0 {
		base, table = param[:i], param[i:]
	}
	if base != ParamU && base != ParamV {
		return nil, false
	}
	return []string{ParamVorticity + table, ParamDivergence + table}, true
}
