package toc

import (
	"os"
	"path/filepath"

	"github.com/ecmwf/fdb-go/pkg/ferrors"
	"github.com/ecmwf/fdb-go/pkg/metrics"
)

// PurgeReport classifies every on-disk index file purge was asked to
// consider, relative to what the TOC (and its sub-TOCs) actually
// reference.
type PurgeReport struct {
	// Reachable are paths the current live scan would still consult.
	Reachable []string
	// Duplicate are paths the TOC once referenced but has since cleared
	// or wiped — safe to reclaim.
	Duplicate []string
	// Orphan are paths present on disk that no TOC record, live or
	// cleared, ever mentions. Execute reclaims these along with the
	// Duplicate set.
	Orphan []string
}

// Classify compares onDiskIndexFiles (absolute or TOC-relative paths, as
// they appear in IndexPayload.IndexPath) against the TOC rooted at
// tocPath.
func Classify(tocPath string, onDiskIndexFiles []string) (*PurgeReport, error) {
	live, err := Live(tocPath)
	if err != nil {
		return nil, err
	}
	everReferenced, err := allIndexPaths(tocPath, map[string]bool{})
	if err != nil {
		return nil, err
	}

	liveSet := make(map[string]bool, len(live))
	for _, ip := range live {
		liveSet[ip.IndexPath] = true
	}

	report := &PurgeReport{}
	for _, f := range onDiskIndexFiles {
		switch {
		case liveSet[f]:
			report.Reachable = append(report.Reachable, f)
		case everReferenced[f]:
			report.Duplicate = append(report.Duplicate, f)
		default:
			report.Orphan = append(report.Orphan, f)
		}
	}
	return report, nil
}

// Execute reclaims the space report.Duplicate and report.Orphan files
// occupy. Reachable files are never touched. Paths that aren't already
// absolute are resolved relative to dir (the directory the TOC itself
// lives in, matching IndexPayload.IndexPath's convention). When doit is
// false this only totals the bytes that would be reclaimed, matching
// fdb-purge's --doit/--list distinction; a file already gone (e.g. a
// previous non-idempotent run, or a concurrent purge) is skipped rather
// than treated as an error.
func Execute(dir string, report *PurgeReport, doit bool) (int64, error) {
	var reclaimed int64
	for _, f := range report.Duplicate {
		n, err := reclaimFile(dir, f, doit)
		if err != nil {
			return reclaimed, err
		}
		reclaimed += n
	}
	for _, f := range report.Orphan {
		n, err := reclaimFile(dir, f, doit)
		if err != nil {
			return reclaimed, err
		}
		reclaimed += n
	}
	if doit {
		metrics.PurgeReclaimedBytesTotal.Add(float64(reclaimed))
	}
	return reclaimed, nil
}

func reclaimFile(dir, path string, doit bool) (int64, error) {
	abs := path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(dir, path)
	}
	info, err := os.Stat(abs)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, &ferrors.IOError{Op: "stat purge candidate", Path: abs, Err: err}
	}
	if doit {
		if err := os.Remove(abs); err != nil && !os.IsNotExist(err) {
			return 0, &ferrors.IOError{Op: "remove purge candidate", Path: abs, Err: err}
		}
	}
	return info.Size(), nil
}

// allIndexPaths collects every IndexPath ever recorded by a TOC_INDEX
// record, across the TOC and all of its sub-TOCs, regardless of whether a
// later TOC_CLEAR/TOC_WIPE superseded it.
func allIndexPaths(path string, visited map[string]bool) (map[string]bool, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	if visited[abs] {
		return map[string]bool{}, nil
	}
	visited[abs] = true

	records, err := ReadAll(path)
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(path)
	out := map[string]bool{}
	for _, r := range records {
		decoded, err := Decode(r)
		if err != nil {
			return nil, err
		}
		switch p := decoded.(type) {
		case IndexPayload:
			out[p.IndexPath] = true
		case SubTocPayload:
			sub, err := allIndexPaths(filepath.Join(dir, p.Path), visited)
			if err != nil {
				return nil, err
			}
			for k := range sub {
				out[k] = true
			}
		}
	}
	return out, nil
}
