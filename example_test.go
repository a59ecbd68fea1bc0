package rescuegrid_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/aretw0/rescuegrid"
	"github.com/aretw0/rescuegrid/pkg/domain"
)

func ExampleReconstructFile() {
	dir, err := os.MkdirTemp("", "rescuegrid")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "run.json")
	trace := `[
  {"map[0][0]": 1, "map[1][0]": 2},
  {"map[0][0]": 1, "map[1][0]": 7}
]`
	if err := os.WriteFile(path, []byte(trace), 0o644); err != nil {
		log.Fatal(err)
	}

	frames, err := rescuegrid.ReconstructFile(path, 0, 0, nil)
	if err != nil {
		log.Fatal(err)
	}
	for _, f := range frames {
		if f.OK() {
			fmt.Printf("step %d: %s %s\n", f.Index, f.Snapshot.Cell(domain.C(0, 0)), f.Snapshot.Cell(domain.C(1, 0)))
		} else {
			fmt.Printf("step %d: failed\n", f.Index)
		}
	}
	// Output:
	// step 0: FIRE EXIT
	// step 1: failed
}

func ExampleNewEditor() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ed, err := rescuegrid.NewEditor(4, 3)
	if err != nil {
		log.Fatal(err)
	}
	go ed.Run(ctx)

	// Two clicks on the same cell cycle FIRE then EXIT.
	for i := 0; i < 2; i++ {
		if err := ed.Begin(ctx, domain.C(1, 1), rescuegrid.ButtonLeft); err != nil {
			log.Fatal(err)
		}
		if _, err := ed.Commit(ctx, domain.C(1, 1), rescuegrid.ButtonLeft, rescuegrid.ModNone); err != nil {
			log.Fatal(err)
		}
	}

	// A drag stamps the last tool over the rectangle.
	_ = ed.Begin(ctx, domain.C(0, 0), rescuegrid.ButtonLeft)
	effect, _ := ed.Commit(ctx, domain.C(3, 0), rescuegrid.ButtonLeft, rescuegrid.ModNone)

	snap, _ := ed.Snapshot(ctx)
	fmt.Println(snap.Cell(domain.C(1, 1)), effect, snap.Cell(domain.C(3, 0)))
	// Output: EXIT paint EXIT EXIT
}

func ExampleNewEditor_drones() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ed, err := rescuegrid.NewEditor(3, 3)
	if err != nil {
		log.Fatal(err)
	}
	go ed.Run(ctx)

	// Shift toggles the drone overlay without touching the cell.
	at := domain.C(2, 2)
	_ = ed.Begin(ctx, at, rescuegrid.ButtonLeft)
	effect, err := ed.Commit(ctx, at, rescuegrid.ButtonLeft, rescuegrid.ModShift)
	if err != nil {
		log.Fatal(err)
	}

	snap, _ := ed.Snapshot(ctx)
	fmt.Println(effect.Kind == rescuegrid.EffectSetDrone, snap.Drone(at), snap.Cell(at))
	// Output: true true EMPTY
}
