package irutil

import (
	"crypto/md5"
	"encoding/binary"
	"strconv"
	"strings"
)

// UniqueID derives the module-unique identifier appended to emitted symbol
// names so that independently lowered modules cannot collide.  A non-empty
// override is used verbatim.  Otherwise the identifier is the low 64 bits of
// the MD5 digest of the module's source filename rendered as lowercase hex,
// which is stable per module without any cross-module coordination.
func UniqueID(sourceFilename, override string) string {
	if override != "" {
		return override
	}

	sum := md5.Sum([]byte(sourceFilename))
	return strconv.FormatUint(binary.LittleEndian.Uint64(sum[:8]), 16)
}

// SanitizeName rewrites a symbol name to survive on targets that do not allow
// periods in exported names.
func SanitizeName(name string) string {
	return strings.ReplaceAll(name, ".", "_")
}
