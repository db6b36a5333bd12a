package common

// DevinitVersion is the current devinit version as a string.
const DevinitVersion string = "0.1.0"

// ProfileFileExt is the file extension for a target profile file.
const ProfileFileExt string = ".toml"

// ModuleFileExt is the file extension for a textual IR module.
const ModuleFileExt string = ".ll"
