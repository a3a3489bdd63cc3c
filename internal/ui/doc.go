// Package ui implements the interactive terminal remote pad.
//
// The pad maps keyboard input onto TV key codes and shows the live
// session state, so the terminal behaves like a physical remote while
// the connection supervisor handles drops and reconnects underneath.
package ui
