// Package viz provides terminal-based visualization for particle simulations.
//
// The package implements an interactive TUI using the Bubble Tea framework:
//
//   - [App]: preset browser with a parameter editor
//   - [Model]: live simulation view with energy and speed readouts
//   - [ReplayModel]: playback of recorded trajectories
//   - [Canvas]: Braille-based pixel canvas for high-fidelity rendering
//   - Theme selection with 4 built-in color schemes
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	R     - Reset to initial state
//	P     - Cycle projection plane (xy/xz/yz)
//	3     - Toggle 3D wireframe view
//	T     - Cycle color themes
//	G     - Toggle GIF recording
//	?     - Show help overlay
//	[]/   - Time travel (rewind/forward)
//
// # Recording
//
// The visualization supports recording simulation sessions as GIF animations
// using the G key. Recordings are saved to the current directory.
package viz
