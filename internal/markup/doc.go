// Package markup converts document body HTML into the forms the linker
// needs: plain text for keyword matching and prompts, the list of anchors
// for link accounting, and validation of generated link fragments.
package markup
