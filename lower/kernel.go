package lower

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"devinit/irutil"
)

// createKernelFunction creates the entry kernel for the given direction: a
// no-argument, no-result function with weak ODR linkage so at most one
// definition survives linking, carrying the target's kernel calling
// convention and singleton-execution attributes.  It returns nil if a
// function with the kernel's name already exists, in which case the caller
// must skip synthesis.
func (l *Lowerer) createKernelFunction(isCtor bool) *ir.Func {
	name := l.target.FiniKernelName
	if isCtor {
		name = l.target.InitKernelName
	}

	if irutil.FindFunc(l.mod, name) != nil {
		return nil
	}

	kernel := l.mod.NewFunc(name, types.Void)
	kernel.Linkage = enum.LinkageWeakODR
	kernel.CallingConv = l.target.KernelCallingConv
	for _, attr := range l.target.KernelAttrs {
		kernel.FuncAttrs = append(kernel.FuncAttrs, ir.AttrPair{Key: attr.Key, Value: attr.Value})
	}

	return kernel
}

// emitRangeWalk fills in the body of an entry kernel: a guarded do-while loop
// over the slot region bounded by the direction's markers that loads and
// calls every callback in the region.  Constructor kernels walk forward from
// the start marker toward the end marker.  Destructor kernels must invoke
// callbacks in reverse registration order over the same forward-populated
// region, so they derive the element count from the marker span, seed the
// cursor at the region's last element, and step backward until the cursor
// would pass the region's start.  The reversal lives entirely in the
// generated traversal; slot layout is direction-agnostic.
func (l *Lowerer) emitRangeWalk(kernel *ir.Func, startMarker, endMarker *ir.Global, isCtor bool) {
	callbackTy := callbackType()
	cursorTy := l.cursorType()

	entry := kernel.NewBlock("entry")
	loop := kernel.NewBlock("while.entry")
	exit := kernel.NewBlock("while.end")

	begin := entry.NewLoad(cursorTy, startMarker)
	begin.SetName("begin")
	stop := entry.NewLoad(cursorTy, endMarker)
	stop.SetName("stop")

	// first is where the cursor starts; last bounds the walk on the far side.
	var first, last value.Value = begin, stop
	guardPred, exitPred, step := enum.IPredNE, enum.IPredEQ, int64(1)
	if !isCtor {
		beginInt := entry.NewPtrToInt(begin, types.I64)
		stopInt := entry.NewPtrToInt(stop, types.I64)
		count := entry.NewSDiv(entry.NewSub(stopInt, beginInt), constant.NewInt(types.I64, l.target.PointerSize))
		count.Exact = true
		count.SetName("count")

		pastLast := entry.NewGetElementPtr(callbackTy, begin, count)
		lastElem := entry.NewGetElementPtr(callbackTy, pastLast, constant.NewInt(types.I64, -1))
		lastElem.InBounds = true
		lastElem.SetName("start")

		// A one-element region has its last element at the start marker, so
		// the entry guard must admit equality.
		first, last = lastElem, begin
		guardPred, exitPred, step = enum.IPredUGE, enum.IPredULT, -1
	}

	guard := entry.NewICmp(guardPred, first, last)
	entry.NewCondBr(guard, loop, exit)

	cursor := loop.NewPhi(ir.NewIncoming(first, entry))
	cursor.SetName("ptr")
	callback := loop.NewLoad(callbackTy, cursor)
	callback.SetName("callback")
	loop.NewCall(callback)

	next := loop.NewGetElementPtr(callbackTy, cursor, constant.NewInt(types.I64, step))
	next.SetName("next")
	cursor.Incs = append(cursor.Incs, ir.NewIncoming(next, loop))

	done := loop.NewICmp(exitPred, next, last)
	done.SetName("end")
	loop.NewCondBr(done, exit, loop)

	exit.NewRet(nil)
}
