package retriever

import "sort"

// sortByFile groups handles by their data file path and orders each
// group by offset, so a caller reading them in this order performs one
// sequential pass per file instead of seeking back and forth.
func sortByFile(handles []DataHandle) []DataHandle {
	out := make([]DataHandle, len(handles))
	copy(out, handles)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Offset < out[j].Offset
	})
	return out
}
