package cmd

import (
	"fmt"
	"io"
	"os"

	"devinit/lower"
	"devinit/report"
	"devinit/util"

	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/pelletier/go-toml"
)

// tomlProfileFile represents a target profile file as it is encoded in TOML
type tomlProfileFile struct {
	Target *tomlTarget `toml:"target"`
}

// tomlTarget represents a lowering target as it is encoded in TOML
type tomlTarget struct {
	Name            string            `toml:"name"`
	GlobalAddrSpace int64             `toml:"global-addr-space"`
	ConstAddrSpace  int64             `toml:"const-addr-space"`
	PointerSize     int64             `toml:"pointer-size"`
	InitKernelName  string            `toml:"init-kernel"`
	FiniKernelName  string            `toml:"fini-kernel"`
	KernelConv      string            `toml:"kernel-cc"`
	KernelAttrs     []*tomlKernelAttr `toml:"kernel-attrs,omitempty"`
}

// tomlKernelAttr represents a kernel string attribute as it is encoded in TOML
type tomlKernelAttr struct {
	Key   string `toml:"key"`
	Value string `toml:"value"`
}

// loadTargetProfile loads and validates the target profile at the given path.
// If the path is empty, the default nvptx64 target is returned.
func loadTargetProfile(path string) (*lower.Target, error) {
	def := lower.DefaultTarget()
	if path == "" {
		return def, nil
	}

	// open file
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	// unmarshal the contents
	buff, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	tpf := &tomlProfileFile{}
	if err := toml.Unmarshal(buff, tpf); err != nil {
		return nil, err
	}

	// ensure the profile actually describes a target
	if tpf.Target == nil {
		return nil, fmt.Errorf("profile `%s` is missing a [target] table", path)
	}

	if tpf.Target.GlobalAddrSpace < 0 || tpf.Target.ConstAddrSpace < 0 {
		return nil, fmt.Errorf("profile `%s` sets a negative address space", path)
	}

	if tpf.Target.PointerSize < 0 {
		return nil, fmt.Errorf("profile `%s` sets a negative pointer size", path)
	}

	if tpf.Target.KernelConv != "" && !util.Contains(kernelConvNames, tpf.Target.KernelConv) {
		return nil, fmt.Errorf("profile `%s` sets unknown kernel-cc `%s`", path, tpf.Target.KernelConv)
	}

	// move all the relevant TOML target attributes over to the lowering target
	target := &lower.Target{
		Name:              tpf.Target.Name,
		GlobalAddrSpace:   types.AddrSpace(tpf.Target.GlobalAddrSpace),
		ConstAddrSpace:    types.AddrSpace(tpf.Target.ConstAddrSpace),
		PointerSize:       tpf.Target.PointerSize,
		InitKernelName:    tpf.Target.InitKernelName,
		FiniKernelName:    tpf.Target.FiniKernelName,
		KernelCallingConv: kernelConvFromName(tpf.Target.KernelConv),
	}

	for _, attr := range tpf.Target.KernelAttrs {
		target.KernelAttrs = append(target.KernelAttrs, lower.KernelAttr{Key: attr.Key, Value: attr.Value})
	}

	applyTargetDefaults(target, def)
	return target, nil
}

// applyTargetDefaults fills in defaults for any target keys the profile did
// not set.  A missing pointer size is reported as a warning since it changes
// the stride of the synthesized kernels.
func applyTargetDefaults(target, def *lower.Target) {
	if target.Name == "" {
		target.Name = def.Name
	}

	if target.PointerSize == 0 {
		report.ReportWarning("target profile for %s does not set pointer-size; defaulting to %d", target.Name, def.PointerSize)
		target.PointerSize = def.PointerSize
	}

	if target.InitKernelName == "" {
		target.InitKernelName = def.InitKernelName
	}

	if target.FiniKernelName == "" {
		target.FiniKernelName = def.FiniKernelName
	}
}

// kernelConvNames is the set of kernel calling convention names a profile may
// select.
var kernelConvNames = []string{"ptx", "amdgpu", "spir"}

// kernelConvFromName converts a named kernel calling convention into an IR
// calling convention.
func kernelConvFromName(name string) enum.CallingConv {
	switch name {
	case "amdgpu":
		return enum.CallingConvAMDGPUKernel
	case "spir":
		return enum.CallingConvSPIRKernel
	// no name at all defaults to ptx
	default:
		return enum.CallingConvPTXKernel
	}
}
