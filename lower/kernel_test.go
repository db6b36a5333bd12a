package lower

import (
	"testing"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"

	"devinit/irutil"
)

// lowerKernel lowers a single-entry array for the given direction and returns
// the module and the synthesized kernel.
func lowerKernel(t *testing.T, isCtor bool) (*ir.Module, *ir.Func) {
	t.Helper()

	mod := newTestModule("kern.c", "cb")

	arrayName, kernelName := DtorArrayName, DefaultTarget().FiniKernelName
	if isCtor {
		arrayName, kernelName = CtorArrayName, DefaultTarget().InitKernelName
	}
	addArray(t, mod, arrayName, arrayEntry{0, "cb"})

	if !NewLowerer(mod, DefaultTarget(), "", true).Lower() {
		t.Fatal("expected the module to be modified")
	}

	kernel := irutil.FindFunc(mod, kernelName)
	if kernel == nil {
		t.Fatalf("kernel %q was not synthesized", kernelName)
	}

	return mod, kernel
}

// assertKernelAttr fails the test if the function does not carry the given
// string attribute pair.
func assertKernelAttr(t *testing.T, fn *ir.Func, key, value string) {
	t.Helper()

	for _, attr := range fn.FuncAttrs {
		if pair, ok := attr.(ir.AttrPair); ok && pair.Key == key && pair.Value == value {
			return
		}
	}

	t.Errorf("function %q lacks attribute %q=%q", fn.Name(), key, value)
}

func TestForwardKernelShape(t *testing.T) {
	mod, kernel := lowerKernel(t, true)

	if kernel.Linkage != enum.LinkageWeakODR {
		t.Errorf("kernel linkage = %v, want weak_odr", kernel.Linkage)
	}
	if kernel.CallingConv != enum.CallingConvPTXKernel {
		t.Errorf("kernel calling convention = %v, want ptx_kernel", kernel.CallingConv)
	}
	assertKernelAttr(t, kernel, "nvvm.maxclusterrank", "1")
	assertKernelAttr(t, kernel, "nvvm.maxntid", "1")

	if len(kernel.Blocks) != 3 {
		t.Fatalf("kernel has %d blocks, want 3", len(kernel.Blocks))
	}
	entry, loop, exit := kernel.Blocks[0], kernel.Blocks[1], kernel.Blocks[2]

	if len(entry.Insts) != 3 {
		t.Fatalf("entry block has %d instructions, want 3", len(entry.Insts))
	}
	begin, okBegin := entry.Insts[0].(*ir.InstLoad)
	stop, okStop := entry.Insts[1].(*ir.InstLoad)
	if !okBegin || !okStop {
		t.Fatal("entry block does not start by loading the markers")
	}
	if begin.Src != irutil.FindGlobal(mod, InitArrayStartName) {
		t.Error("first load is not from the start marker")
	}
	if stop.Src != irutil.FindGlobal(mod, InitArrayEndName) {
		t.Error("second load is not from the end marker")
	}

	condbr, ok := entry.Term.(*ir.TermCondBr)
	if !ok {
		t.Fatal("entry block does not end in a conditional branch")
	}
	guard, ok := condbr.Cond.(*ir.InstICmp)
	if !ok || guard.Pred != enum.IPredNE {
		t.Error("entry guard is not an inequality test of the bounds")
	} else if guard.X != begin || guard.Y != stop {
		t.Error("entry guard does not compare the loaded bounds")
	}
	if condbr.TargetTrue != loop || condbr.TargetFalse != exit {
		t.Error("entry branch targets are wrong")
	}

	if len(loop.Insts) != 5 {
		t.Fatalf("loop block has %d instructions, want 5", len(loop.Insts))
	}
	cursor, ok := loop.Insts[0].(*ir.InstPhi)
	if !ok {
		t.Fatal("loop block does not begin with the cursor phi")
	}
	callback, ok := loop.Insts[1].(*ir.InstLoad)
	if !ok || callback.Src != cursor {
		t.Error("loop does not load the callback through the cursor")
	}
	call, ok := loop.Insts[2].(*ir.InstCall)
	if !ok || call.Callee != callback {
		t.Error("loop does not call the loaded callback")
	}
	next, ok := loop.Insts[3].(*ir.InstGetElementPtr)
	if !ok || next.Src != cursor {
		t.Fatal("loop does not advance the cursor")
	}
	if idx, ok := next.Indices[0].(*constant.Int); !ok || idx.X.Int64() != 1 {
		t.Error("forward walk does not advance by one element")
	}
	done, ok := loop.Insts[4].(*ir.InstICmp)
	if !ok || done.Pred != enum.IPredEQ || done.X != next || done.Y != stop {
		t.Error("forward walk does not stop when the cursor reaches the end")
	}

	if len(cursor.Incs) != 2 || cursor.Incs[0].X != begin || cursor.Incs[1].X != next {
		t.Error("cursor phi incomings are wrong")
	}

	loopBr, ok := loop.Term.(*ir.TermCondBr)
	if !ok || loopBr.TargetTrue != exit || loopBr.TargetFalse != loop {
		t.Error("loop branch targets are wrong")
	}

	ret, ok := exit.Term.(*ir.TermRet)
	if !ok || ret.X != nil {
		t.Error("exit block does not return void")
	}
}

func TestBackwardKernelShape(t *testing.T) {
	mod, kernel := lowerKernel(t, false)

	if len(kernel.Blocks) != 3 {
		t.Fatalf("kernel has %d blocks, want 3", len(kernel.Blocks))
	}
	entry, loop, exit := kernel.Blocks[0], kernel.Blocks[1], kernel.Blocks[2]

	if len(entry.Insts) != 9 {
		t.Fatalf("entry block has %d instructions, want 9", len(entry.Insts))
	}
	begin, okBegin := entry.Insts[0].(*ir.InstLoad)
	stop, okStop := entry.Insts[1].(*ir.InstLoad)
	if !okBegin || !okStop {
		t.Fatal("entry block does not start by loading the markers")
	}
	if begin.Src != irutil.FindGlobal(mod, FiniArrayStartName) {
		t.Error("first load is not from the start marker")
	}
	if stop.Src != irutil.FindGlobal(mod, FiniArrayEndName) {
		t.Error("second load is not from the end marker")
	}

	count, ok := entry.Insts[5].(*ir.InstSDiv)
	if !ok {
		t.Fatal("backward walk does not divide the marker span")
	}
	if !count.Exact {
		t.Error("element count division is not exact")
	}
	if stride, ok := count.Y.(*constant.Int); !ok || stride.X.Int64() != DefaultTarget().PointerSize {
		t.Errorf("element count is not divided by the pointer size %d", DefaultTarget().PointerSize)
	}

	pastLast, ok := entry.Insts[6].(*ir.InstGetElementPtr)
	if !ok || pastLast.Src != begin || pastLast.Indices[0] != count {
		t.Error("backward walk does not form the one-past-last cursor")
	}
	lastElem, ok := entry.Insts[7].(*ir.InstGetElementPtr)
	if !ok || lastElem.Src != pastLast || !lastElem.InBounds {
		t.Fatal("backward walk does not form the last-element cursor")
	}
	if idx, ok := lastElem.Indices[0].(*constant.Int); !ok || idx.X.Int64() != -1 {
		t.Error("last-element cursor is not one element before the region end")
	}

	condbr, ok := entry.Term.(*ir.TermCondBr)
	if !ok {
		t.Fatal("entry block does not end in a conditional branch")
	}
	guard, ok := condbr.Cond.(*ir.InstICmp)
	if !ok || guard.Pred != enum.IPredUGE {
		t.Error("entry guard does not admit a single-element region")
	} else if guard.X != lastElem || guard.Y != begin {
		t.Error("entry guard does not compare the last element against the start")
	}

	cursor, ok := loop.Insts[0].(*ir.InstPhi)
	if !ok {
		t.Fatal("loop block does not begin with the cursor phi")
	}
	if len(cursor.Incs) != 2 || cursor.Incs[0].X != lastElem {
		t.Error("cursor phi does not start at the last element")
	}

	next, ok := loop.Insts[3].(*ir.InstGetElementPtr)
	if !ok {
		t.Fatal("loop does not step the cursor")
	}
	if idx, ok := next.Indices[0].(*constant.Int); !ok || idx.X.Int64() != -1 {
		t.Error("backward walk does not step back by one element")
	}
	done, ok := loop.Insts[4].(*ir.InstICmp)
	if !ok || done.Pred != enum.IPredULT || done.X != next || done.Y != begin {
		t.Error("backward walk does not stop once the cursor passes the start")
	}

	if ret, ok := exit.Term.(*ir.TermRet); !ok || ret.X != nil {
		t.Error("exit block does not return void")
	}
}

func TestLowerCustomTarget(t *testing.T) {
	target := &Target{
		Name:              "testgpu",
		GlobalAddrSpace:   3,
		ConstAddrSpace:    5,
		PointerSize:       4,
		InitKernelName:    "testgpu$init",
		FiniKernelName:    "testgpu$fini",
		KernelCallingConv: enum.CallingConvPTXKernel,
		KernelAttrs:       []KernelAttr{{Key: "occupancy", Value: "single"}},
	}

	mod := newTestModule("kern.c", "cb")
	addArray(t, mod, DtorArrayName, arrayEntry{3, "cb"})

	if !NewLowerer(mod, target, "", true).Lower() {
		t.Fatal("expected the module to be modified")
	}

	kernel := irutil.FindFunc(mod, "testgpu$fini")
	if kernel == nil {
		t.Fatal("kernel was not created under its target name")
	}
	assertKernelAttr(t, kernel, "occupancy", "single")

	slots := globalsWithPrefix(mod, "fini_array_object_")
	if len(slots) != 1 {
		t.Fatalf("got %d slots, want 1", len(slots))
	}
	slot := irutil.FindGlobal(mod, slots[0])
	if slot.AddrSpace != target.ConstAddrSpace || slot.Typ.AddrSpace != target.ConstAddrSpace {
		t.Errorf("slot address space = %d, want %d", slot.AddrSpace, target.ConstAddrSpace)
	}
	marker := irutil.FindGlobal(mod, FiniArrayStartName)
	if marker == nil {
		t.Fatal("marker was not created")
	}
	if marker.AddrSpace != target.GlobalAddrSpace {
		t.Errorf("marker address space = %d, want %d", marker.AddrSpace, target.GlobalAddrSpace)
	}

	var count *ir.InstSDiv
	for _, inst := range kernel.Blocks[0].Insts {
		if div, ok := inst.(*ir.InstSDiv); ok {
			count = div
			break
		}
	}
	if count == nil {
		t.Fatal("backward walk does not divide the marker span")
	}
	if stride, ok := count.Y.(*constant.Int); !ok || stride.X.Int64() != 4 {
		t.Error("element count is not divided by the target pointer size")
	}
}
