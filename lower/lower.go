// Package lower implements the module transformation that rewrites global
// constructor and destructor arrays into a form a linker without init-array
// section merging can still run: one individually named constant slot global
// per entry, four weak range markers bounding the slot regions for the
// loader, and two synthesized entry kernels that walk the regions at run
// time, forward for constructors and backward for destructors.
package lower

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/value"

	"devinit/irutil"
)

// Well-known names of the constructor and destructor array globals produced
// by the front end.
const (
	CtorArrayName = "llvm.global_ctors"
	DtorArrayName = "llvm.global_dtors"
)

// Lowerer is the construct responsible for lowering a single module's
// constructor and destructor arrays.
type Lowerer struct {
	mod    *ir.Module
	target *Target

	// overrideID is the configured override for the module-unique name
	// suffix.  If empty, the suffix is derived from the module's source
	// filename.
	overrideID string

	// createKernels indicates whether entry kernels should be synthesized.
	// Disabling them leaves the slots and markers usable by an external
	// caller that supplies its own walking logic.
	createKernels bool
}

// NewLowerer creates a new lowerer for the given module and target.
func NewLowerer(mod *ir.Module, target *Target, overrideID string, createKernels bool) *Lowerer {
	return &Lowerer{
		mod:           mod,
		target:        target,
		overrideID:    overrideID,
		createKernels: createKernels,
	}
}

// Lower rewrites the module's constructor and destructor arrays.  It returns
// whether the module was modified.
func (l *Lowerer) Lower() bool {
	loweredCtors := l.lowerArray(CtorArrayName, true)
	loweredDtors := l.lowerArray(DtorArrayName, false)
	return loweredCtors || loweredDtors
}

// lowerArray lowers the constructor or destructor array with the given name.
// Anomalous inputs (missing array, array without an initializer, empty array,
// records of the wrong shape) leave the module untouched and report false.
// Otherwise every record becomes a slot global, the direction's range markers
// are resolved, the direction's entry kernel is synthesized if enabled and
// not already present, and the input array is erased so that running the
// lowering again is a no-op.
func (l *Lowerer) lowerArray(arrayName string, isCtor bool) bool {
	arr := irutil.FindGlobal(l.mod, arrayName)
	if arr == nil || arr.Init == nil {
		return false
	}

	records, ok := decodeRecords(arr.Init)
	if !ok || len(records) == 0 {
		return false
	}

	l.globalizeRecords(records, isCtor)
	startMarker, endMarker := l.resolveRangeMarkers(isCtor)

	if l.createKernels {
		if kernel := l.createKernelFunction(isCtor); kernel != nil {
			l.emitRangeWalk(kernel, startMarker, endMarker, isCtor)
		}
	}

	irutil.EraseGlobal(l.mod, arr)
	return true
}

// -----------------------------------------------------------------------------

// record is one decoded constructor or destructor array entry.
type record struct {
	// The entry's ordering priority.
	priority int64

	// The callback constant the entry registers.
	callback constant.Constant

	// The name of the callback.
	name string
}

// decodeRecords reads the entries of a constructor or destructor array
// initializer.  Each entry is a struct of a priority, a callback, and an
// associated-data field; the data field is ignored since the entry kernels
// invoke every callback with no arguments.  It reports false if the
// initializer does not have the expected array-of-record shape, in which case
// no records are returned and the caller treats the array as absent.
func decodeRecords(init constant.Constant) ([]record, bool) {
	arr, ok := init.(*constant.Array)
	if !ok {
		return nil, false
	}

	records := make([]record, 0, len(arr.Elems))
	for _, elem := range arr.Elems {
		entry, ok := elem.(*constant.Struct)
		if !ok || len(entry.Fields) < 2 {
			return nil, false
		}

		priority, ok := entry.Fields[0].(*constant.Int)
		if !ok {
			return nil, false
		}

		callback := entry.Fields[1]
		named, ok := callback.(value.Named)
		if !ok {
			return nil, false
		}

		records = append(records, record{
			priority: priority.X.Int64(),
			callback: callback,
			name:     named.Name(),
		})
	}

	return records, true
}
