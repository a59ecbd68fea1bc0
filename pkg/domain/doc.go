/*
Package domain contains the core data model shared by trace replay and the
scenario editor.

It is kept pure and free of I/O, following the same hexagonal split as the
ports and adapters packages.

# Key Entities

  - CellState: the closed enumeration of what a grid cell can contain. Ordinals 0..8 are wire-stable.
  - Snapshot: one grid state (cells, drone overlay, index-stable entity positions).
  - ToolCycle: the ordered paint tools a click steps through.
  - SnapshotDiff: the delta between two snapshots, for streaming to visualizers.
*/
package domain
