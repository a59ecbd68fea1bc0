/*
Package editor implements the interactive editing state machine for a grid
snapshot.

An Engine owns one authoritative snapshot and at most one in-progress
pointer gesture. Pointer positions are clamped into the grid at the input
boundary. The effective tool is resolved once per gesture from the anchor
cell by Resolve, and the same rule serves both live previews and commits.
*/
package editor
