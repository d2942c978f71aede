package version

// Version is the application version, overridable at build time via
// -ldflags "-X ...".
var Version = "dev"
