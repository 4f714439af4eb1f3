// Package app contains the core application logic. It defines the main App
// struct and its lifecycle: module registration, plugin initialization, HTTP
// serving and graceful shutdown, decoupled from any specific entrypoint.
package app
