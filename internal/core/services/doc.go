// Package services implements the driving port interfaces.
// Services hold the linking and keyword planning logic and orchestrate
// calls to driven ports (adapters).
//
// Every feature that depends on an external system runs as an ordered
// chain of strategies, so a failing upstream degrades the result instead
// of failing the call.
package services
