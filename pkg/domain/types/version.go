package types

// Version is overwritten at build time with -ldflags "-X ...types.Version=..."
var Version = "dev"

// AppName is used as default footer text and HTTP User-Agent
const AppName = "relwatch"
