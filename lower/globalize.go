package lower

import (
	"strconv"

	"github.com/llir/llvm/ir/enum"

	"devinit/irutil"
)

// Name prefixes for emitted slot globals and their logical sections.
const (
	initSlotPrefix = "init_array_object_"
	finiSlotPrefix = "fini_array_object_"

	initSectionPrefix = "init_array."
	finiSectionPrefix = "fini_array."
)

// globalizeRecords re-emits each record as an individually named constant
// slot global carrying the record's callback.  The target has no way to place
// variables in mergeable constructor sections, so the slot names themselves
// encode direction, callback, module identity, and priority; the runtime
// rebuilds the ordered list from those names.  Slot order follows record
// order.  Every slot is registered against dead-code elimination since
// nothing in the module references it.
func (l *Lowerer) globalizeRecords(records []record, isCtor bool) {
	uniqueID := irutil.UniqueID(l.mod.SourceFilename, l.overrideID)

	slotPrefix, sectionPrefix := finiSlotPrefix, finiSectionPrefix
	if isCtor {
		slotPrefix, sectionPrefix = initSlotPrefix, initSectionPrefix
	}

	for _, rec := range records {
		priorityStr := strconv.FormatInt(rec.priority, 10)
		name := irutil.SanitizeName(slotPrefix + rec.name + "_" + uniqueID + "_" + priorityStr)

		slot := l.mod.NewGlobalDef(name, rec.callback)
		slot.Immutable = true
		slot.Linkage = enum.LinkageExternal
		slot.Visibility = enum.VisibilityProtected
		slot.Section = sectionPrefix + priorityStr
		irutil.SetAddrSpace(slot, l.target.ConstAddrSpace)

		irutil.AppendToUsed(l.mod, slot)
	}
}
