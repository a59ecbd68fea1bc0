/*
Package ports defines the driven ports (interfaces) around the snapshot core.

These interfaces decouple the editor and replay logic from concrete storage
backends and transports.

# Key Interfaces

  - ScenarioStore: persists and loads named scenario snapshots (memory, file, Redis).
  - LiveEditor: the serialized read/replace surface of an editing session.
*/
package ports
