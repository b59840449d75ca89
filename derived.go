package yewdux

// DerivedFrom is implemented by stores computed from another store.
// OnChange is called on the current derived snapshot and returns its
// replacement.
type DerivedFrom[Src, Dst any] interface {
	OnChange(source *Src) Dst
}

// DerivedFromMut is implemented (on the pointer) by stores updated in place
// from another store.
type DerivedFromMut[Src any] interface {
	OnChange(source *Src)
}

type deriveListener[Src, Dst any, PD interface {
	*Dst
	DerivedFrom[Src, Dst]
}] struct {
	derived Dispatch[Dst]
}

func (l deriveListener[Src, Dst, PD]) OnChange(_ *Scope, source *Src) {
	l.derived.Reduce(func(current *Dst) *Dst {
		next := PD(current).OnChange(source)
		return &next
	})
}

type deriveMutListener[Src, Dst any, PD interface {
	*Dst
	DerivedFromMut[Src]
}] struct {
	derived Dispatch[Dst]
}

func (l deriveMutListener[Src, Dst, PD]) OnChange(_ *Scope, source *Src) {
	l.derived.ReduceMut(func(current *Dst) {
		PD(current).OnChange(source)
	})
}

// DeriveFrom keeps Dst recomputed from Src. Chains of derived stores are
// chains of listeners; cycles are not detected.
func DeriveFrom[Src, Dst any, PD interface {
	*Dst
	DerivedFrom[Src, Dst]
}](cx *Scope) {
	InitListener[Src](cx, deriveListener[Src, Dst, PD]{derived: New[Dst](cx)})
}

// DeriveFromMut keeps Dst updated in place from Src
func DeriveFromMut[Src, Dst any, PD interface {
	*Dst
	DerivedFromMut[Src]
}](cx *Scope) {
	InitListener[Src](cx, deriveMutListener[Src, Dst, PD]{derived: New[Dst](cx)})
}
