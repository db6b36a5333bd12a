package cmd

import (
	"os"

	"devinit/common"
	"devinit/report"

	"github.com/ComedicChimera/olive"
)

// Execute is the main entry point for the `devinit` CLI utility.  It returns
// the exit code for the process.
func Execute() int {
	// set up the argument parser and all its extended commands and arguments
	cli := olive.NewCLI("devinit", "devinit lowers module constructor and destructor arrays for device linking", true)
	logLvlArg := cli.AddSelectorArg("loglevel", "ll", "the tool log level", false, []string{"silent", "error", "warn", "verbose"})
	logLvlArg.SetDefaultValue("verbose")

	lowerCmd := cli.AddSubcommand("lower", "lower the constructor and destructor arrays of a module", true)
	lowerCmd.AddPrimaryArg("module-path", "the path to the module to lower", true)
	lowerCmd.AddStringArg("outfile", "o", "the path to write the lowered module to", false)
	lowerCmd.AddStringArg("target", "t", "the path to the target profile to lower for", false)
	lowerCmd.AddStringArg("id", "i", "the module identifier to embed in slot names", false)
	lowerCmd.AddFlag("no-kernels", "nk", "indicates that the initialization kernels should not be synthesized")

	cli.AddSubcommand("version", "print the devinit version", false)

	// run the argument parser
	result, err := olive.ParseArgs(cli, os.Args)
	if err != nil {
		report.PrintErrorMessage("Usage Error", err)
		return 1
	}

	// process the inputed command line
	subcmdName, subResult, _ := result.Subcommand()
	switch subcmdName {
	case "lower":
		return execLowerCommand(subResult, result.Arguments["loglevel"].(string))
	case "version":
		report.PrintInfoMessage("Devinit Version", common.DevinitVersion)
	}

	return 0
}

// execLowerCommand executes the `lower` subcommand and handles all errors
func execLowerCommand(result *olive.ArgParseResult, loglevel string) int {
	// initialize the reporter before anything else can fail
	report.InitReporter(logLevelFromName(loglevel))

	// extract CLI data
	modulePath, _ := result.PrimaryArg()

	outPath := ""
	if outArgVal, ok := result.Arguments["outfile"]; ok {
		outPath = outArgVal.(string)
	}

	profilePath := ""
	if profArgVal, ok := result.Arguments["target"]; ok {
		profilePath = profArgVal.(string)
	}

	overrideID := ""
	if idArgVal, ok := result.Arguments["id"]; ok {
		overrideID = idArgVal.(string)
	}

	// load the target profile the module is being lowered for
	target, err := loadTargetProfile(profilePath)
	if err != nil {
		report.PrintErrorMessage("Profile Error", err)
		return 1
	}

	// create and run the tool
	t := NewTool(modulePath, outPath, overrideID, !result.HasFlag("no-kernels"), target)
	if t.Run() {
		return 0
	}

	return 1
}

// logLevelFromName converts a named log level into a reporter log level.
func logLevelFromName(name string) int {
	switch name {
	case "silent":
		return report.LogLevelSilent
	case "error":
		return report.LogLevelError
	case "warn":
		return report.LogLevelWarning
	// everything else (including invalid log levels) should default to verbose
	default:
		return report.LogLevelVerbose
	}
}
