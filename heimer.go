package heimer

// Version is the release of the editor. Release builds override it with
// -ldflags "-X github.com/aretw0/heimer.Version=...".
var Version = "0.1.0-dev"
