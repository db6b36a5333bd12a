package lower

import (
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
)

// KernelAttr is a string attribute pair attached to synthesized entry kernels
// to mark them for singleton execution.
type KernelAttr struct {
	Key   string
	Value string
}

// Target describes the platform parameters the lowering depends on: the
// address spaces slots and markers live in, the pointer width used to size the
// backward walk, and the names and attributes of the entry kernels.
type Target struct {
	// The name of the target, eg. `nvptx64`.
	Name string

	// The address space the range markers live in.
	GlobalAddrSpace types.AddrSpace

	// The address space the emitted slot globals live in.
	ConstAddrSpace types.AddrSpace

	// The size of a callback pointer in bytes.
	PointerSize int64

	// The well-known names of the two entry kernels.
	InitKernelName string
	FiniKernelName string

	// The calling convention applied to entry kernels.
	KernelCallingConv enum.CallingConv

	// The attributes applied to entry kernels.
	KernelAttrs []KernelAttr
}

// DefaultTarget returns the NVPTX64 lowering target: markers in the global
// address space, slots in the constant address space, 8 byte pointers, and
// PTX kernel entry points pinned to a single thread.
func DefaultTarget() *Target {
	return &Target{
		Name:              "nvptx64",
		GlobalAddrSpace:   1,
		ConstAddrSpace:    4,
		PointerSize:       8,
		InitKernelName:    "nvptx$device$init",
		FiniKernelName:    "nvptx$device$fini",
		KernelCallingConv: enum.CallingConvPTXKernel,
		KernelAttrs: []KernelAttr{
			{Key: "nvvm.maxclusterrank", Value: "1"},
			{Key: "nvvm.maxntid", Value: "1"},
		},
	}
}
