package irutil

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"

	"devinit/util"
)

// UsedName is the name of the well-known list global whose references keep
// other globals alive against dead-code elimination.
const UsedName = "llvm.used"

// FindGlobal returns the global variable with the given name or nil if the
// module contains no such global.
func FindGlobal(mod *ir.Module, name string) *ir.Global {
	for _, glob := range mod.Globals {
		if glob.GlobalName == name {
			return glob
		}
	}

	return nil
}

// FindFunc returns the function with the given name or nil if the module
// contains no such function.
func FindFunc(mod *ir.Module, name string) *ir.Func {
	for _, fn := range mod.Funcs {
		if fn.GlobalName == name {
			return fn
		}
	}

	return nil
}

// EraseGlobal removes the given global variable from the module.  It returns
// false if the global is not in the module's global list.
func EraseGlobal(mod *ir.Module, glob *ir.Global) bool {
	for i, g := range mod.Globals {
		if g == glob {
			mod.Globals = append(mod.Globals[:i], mod.Globals[i+1:]...)
			return true
		}
	}

	return false
}

// SetAddrSpace places a global variable in the given address space.  The
// global's cached pointer type is rebuilt so that uses of the global see the
// new address space.
func SetAddrSpace(glob *ir.Global, space types.AddrSpace) {
	glob.AddrSpace = space
	glob.Typ = types.NewPointer(glob.ContentType)
	glob.Typ.AddrSpace = space
}

// AppendToUsed registers the given constants in the module's `llvm.used` list,
// creating the list if it does not exist yet.  Existing entries are preserved:
// the list global is rebuilt around the combined element set since its array
// type encodes its length.
func AppendToUsed(mod *ir.Module, values ...constant.Constant) *ir.Global {
	elems := util.Map(values, castToBytePtr)

	if used := FindGlobal(mod, UsedName); used != nil {
		if arr, ok := used.Init.(*constant.Array); ok {
			elems = append(arr.Elems, elems...)
		}

		EraseGlobal(mod, used)
	}

	arrType := types.NewArray(uint64(len(elems)), types.I8Ptr)
	used := mod.NewGlobalDef(UsedName, constant.NewArray(arrType, elems...))
	used.Linkage = enum.LinkageAppending
	used.Section = "llvm.metadata"
	return used
}

// castToBytePtr casts a pointer constant to a generic `i8*`, the element type
// of the `llvm.used` list.  Constants outside the default address space need
// an address space cast rather than a bitcast.
func castToBytePtr(c constant.Constant) constant.Constant {
	if ptr, ok := c.Type().(*types.PointerType); ok && ptr.AddrSpace != 0 {
		return constant.NewAddrSpaceCast(c, types.I8Ptr)
	}

	return constant.NewBitCast(c, types.I8Ptr)
}
