package index

import "github.com/google/btree"

// Axis is the ordered set of canonical values archived for one keyword
// within an index. It implements fdbtype.Axis so Step/Param expansion can
// prefer a form already present on disk.
type Axis struct {
	tree *btree.BTreeG[string]
}

func newAxis() *Axis {
	return &Axis{tree: btree.NewG(32, func(a, b string) bool { return a < b })}
}

// Has reports whether canonical is present on this axis.
func (a *Axis) Has(canonical string) bool {
	if a == nil || a.tree == nil {
		return false
	}
	_, ok := a.tree.Get(canonical)
	return ok
}

// Values returns every value on the axis in ascending order.
func (a *Axis) Values() []string {
	if a == nil || a.tree == nil {
		return nil
	}
	out := make([]string, 0, a.tree.Len())
	a.tree.Ascend(func(v string) bool {
		out = append(out, v)
		return true
	})
	return out
}

// insert adds canonical to the axis, a no-op if already present.
func (a *Axis) insert(canonical string) {
	a.tree.ReplaceOrInsert(canonical)
}

// remove drops canonical from the axis.
func (a *Axis) remove(canonical string) {
	a.tree.Delete(canonical)
}
