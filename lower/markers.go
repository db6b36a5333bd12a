package lower

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"

	"devinit/irutil"
)

// Well-known names of the range marker globals.  The execution environment's
// loader populates them with the bounds of the contiguous slot regions before
// the entry kernels run; the lowering only guarantees they exist.
const (
	InitArrayStartName = "__init_array_start"
	InitArrayEndName   = "__init_array_end"
	FiniArrayStartName = "__fini_array_start"
	FiniArrayEndName   = "__fini_array_end"
)

// callbackType returns the type of a callback pointer: a pointer to a
// no-argument, no-result function.
func callbackType() *types.PointerType {
	return types.NewPointer(types.NewFunc(types.Void))
}

// cursorType returns the type of a pointer into a slot region: a pointer in
// the target's global address space to a callback pointer.
func (l *Lowerer) cursorType() *types.PointerType {
	cursor := types.NewPointer(callbackType())
	cursor.AddrSpace = l.target.GlobalAddrSpace
	return cursor
}

// resolveRangeMarkers returns the start and end markers for the given
// direction, creating them if they are not present yet.
func (l *Lowerer) resolveRangeMarkers(isCtor bool) (*ir.Global, *ir.Global) {
	startName, endName := FiniArrayStartName, FiniArrayEndName
	if isCtor {
		startName, endName = InitArrayStartName, InitArrayEndName
	}

	return l.resolveMarker(startName), l.resolveMarker(endName)
}

// resolveMarker returns the marker global with the given name, creating it if
// absent.  Markers are weak so the definitions emitted by independently
// lowered modules merge into one, and null until the loader fills in the real
// region bounds.  A marker already in the module is returned untouched, which
// makes resolution idempotent.
func (l *Lowerer) resolveMarker(name string) *ir.Global {
	if marker := irutil.FindGlobal(l.mod, name); marker != nil {
		return marker
	}

	marker := l.mod.NewGlobalDef(name, constant.NewNull(l.cursorType()))
	marker.Linkage = enum.LinkageWeak
	marker.Visibility = enum.VisibilityProtected
	irutil.SetAddrSpace(marker, l.target.GlobalAddrSpace)
	return marker
}
