// Package viz renders orrery snapshots in the terminal.
//
// The package implements an interactive TUI using the Bubble Tea framework:
//
//   - [Model]: live view driving an [engine.Session] from a tick timer
//   - [Canvas]: Braille-based pixel canvas with per-cell colour
//   - [Camera]: perspective projection of the 3D scene onto the canvas
//   - [Printer]: plain-text renderer for pipes and logs
//
// # Key Bindings
//
//	S / P   - Start / Pause
//	Space   - Toggle start and pause
//	R       - Reset to t = 0
//	+ / -   - Faster / slower
//	Tab     - Select next body
//	z / Z   - Zoom
//	T       - Cycle color themes
//	G       - Toggle GIF recording
//	?       - Show help overlay
//
// # Recording
//
// The live view can record the canvas as a GIF animation with the G key.
package viz
