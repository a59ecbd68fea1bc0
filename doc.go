/*
Package rescuegrid reconstructs and edits the grid snapshots of a
disaster-response simulation.

A simulation run produces a trace: one flat set of named integer variables
per step (map[x][y], drone_map[x][y], FirstResponder(i).pos.x, ...).
Rescuegrid turns every step into a typed Snapshot holding cell states, the
drone overlay and the index-stable entity positions. The same Snapshot is
what the interactive editor paints and what the HTTP adapter serves to
live visualizers.

# Concept

  - Snapshot: cells indexed [x][y], a boolean drone overlay and entity lists.
  - Trace reconstruction: each step is rebuilt in isolation; a malformed
    step carries its TraceParseErrors and never poisons its neighbours.
  - Editing: press, drag and release gestures resolve to one tool (paint,
    clear, set or clear drone) applied over the anchor-to-release rectangle.
  - Sessions: a single goroutine owns the authoritative snapshot so that
    gestures and wholesale replacements never interleave.

# Usage

Reconstruct a trace:

	frames, err := rescuegrid.ReconstructFile("run.json", 0, 0, nil)
	if err != nil {
		log.Fatal(err)
	}
	for _, f := range frames {
		if !f.OK() {
			log.Printf("step %d: %v", f.Index, f.Err)
		}
	}

Drive an editor:

	ed, _ := rescuegrid.NewEditor(10, 10)
	go ed.Run(ctx)
	_ = ed.Begin(ctx, domain.C(2, 3), editor.ButtonLeft)
	_, _ = ed.Commit(ctx, domain.C(2, 3), editor.ButtonLeft, editor.ModNone)

The rescuegrid command wraps both: replay, edit, serve and validate.
*/
package rescuegrid
