// Package cmd is the top-level "driver" package for the devinit tool: it
// contains all the functionality for parsing command-line arguments, loading
// target profiles, and running all the phases of lowering.
package cmd

import (
	"os"
	"path/filepath"
	"strings"

	"devinit/common"
	"devinit/lower"
	"devinit/report"

	"github.com/llir/llvm/asm"
	"github.com/llir/llvm/ir"
)

// Tool represents the overall state and configuration of one lowering run.
type Tool struct {
	// The path to the module to lower.
	modulePath string

	// The path to write the lowered module to.
	outputPath string

	// The module identifier to embed in slot names in place of the source
	// filename hash.  This may be empty.
	overrideID string

	// Whether the initialization and finalization kernels should be
	// synthesized.
	createKernels bool

	// The target profile the module is lowered for.
	target *lower.Target
}

// NewTool creates a new tool for a single lowering run.  If outputPath is
// empty, it is derived from the module path.
func NewTool(modulePath, outputPath, overrideID string, createKernels bool, target *lower.Target) *Tool {
	if outputPath == "" {
		outputPath = deriveOutputPath(modulePath)
	}

	return &Tool{
		modulePath:    modulePath,
		outputPath:    outputPath,
		overrideID:    overrideID,
		createKernels: createKernels,
		target:        target,
	}
}

// deriveOutputPath produces the default output path for a module path: the
// module path with `.lowered` spliced in before the extension.
func deriveOutputPath(modulePath string) string {
	ext := filepath.Ext(modulePath)
	return strings.TrimSuffix(modulePath, ext) + ".lowered" + common.ModuleFileExt
}

// Run runs all the phases of lowering: parsing the input module, lowering its
// constructor and destructor arrays, and emitting the result.  It returns
// whether the run succeeded.
func (t *Tool) Run() bool {
	report.ReportToolHeader(t.target.Name)

	mod, ok := t.parse()
	if !ok {
		report.ReportFinished("")
		return false
	}

	modified := t.lowerArrays(mod)

	if !t.emit(mod) {
		report.ReportFinished("")
		return false
	}

	if !modified {
		report.ReportStdout("no constructor or destructor arrays in %s; module is unchanged", t.modulePath)
	}

	report.ReportFinished(t.outputPath)
	return !report.AnyErrors()
}

// parse parses the input module from its textual IR.
func (t *Tool) parse() (*ir.Module, bool) {
	report.ReportBeginPhase("Parsing")

	mod, err := asm.ParseFile(t.modulePath)
	if err != nil {
		report.ReportError(err)
		return nil, false
	}

	report.ReportEndPhase(true)
	return mod, true
}

// lowerArrays runs the lowering transform over the parsed module.  It returns
// whether the module was modified.
func (t *Tool) lowerArrays(mod *ir.Module) bool {
	report.ReportBeginPhase("Lowering")

	modified := lower.NewLowerer(mod, t.target, t.overrideID, t.createKernels).Lower()

	report.ReportEndPhase(true)
	return modified
}

// emit writes the lowered module back out as textual IR.
func (t *Tool) emit(mod *ir.Module) bool {
	report.ReportBeginPhase("Emitting")

	file, err := os.Create(t.outputPath)
	if err != nil {
		report.ReportError(err)
		return false
	}
	defer file.Close()

	if _, err := mod.WriteTo(file); err != nil {
		report.ReportError(err)
		return false
	}

	report.ReportEndPhase(true)
	return true
}
