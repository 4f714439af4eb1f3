// Package config defines the service configuration and loads it from its
// sources.
//
// Values are layered, later sources winning: built-in defaults, an optional
// HCL file, SOCKETGRID_* environment variables, and finally command-line
// flags applied by the cli package.
package config
