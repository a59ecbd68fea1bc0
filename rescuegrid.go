package rescuegrid

import (
	_ "embed"
	"fmt"
	"log/slog"

	"github.com/aretw0/rescuegrid/internal/editor"
	"github.com/aretw0/rescuegrid/internal/session"
	"github.com/aretw0/rescuegrid/internal/trace"
	"github.com/aretw0/rescuegrid/pkg/domain"
	"github.com/aretw0/rescuegrid/pkg/ports"
)

// Version is the release of this module.
//
//go:embed VERSION
var Version string

// Frame is the reconstruction result of one trace step.
type Frame = trace.Frame

// ReconstructFile loads a trace file and reconstructs every step on a
// cols x rows grid. Non-positive dimensions are inferred from the trace.
// Failed steps are reported in their Frame, not as the returned error.
func ReconstructFile(path string, cols, rows int, logger *slog.Logger) ([]Frame, error) {
	steps, err := trace.Load(path)
	if err != nil {
		return nil, err
	}
	if cols <= 0 || rows <= 0 {
		var ok bool
		if cols, rows, ok = trace.InferDimensions(steps); !ok {
			return nil, fmt.Errorf("cannot infer grid dimensions from %s", path)
		}
	}
	var opts []trace.Option
	if logger != nil {
		opts = append(opts, trace.WithLogger(logger))
	}
	rec, err := trace.New(cols, rows, opts...)
	if err != nil {
		return nil, err
	}
	return rec.Reconstruct(steps), nil
}

// Editor is a running editing session.
type Editor = session.Session

// EditorState is what Editor.State reports.
type EditorState = session.State

// Button is the pointer button driving a gesture.
type Button = editor.Button

// Pointer buttons.
const (
	ButtonNone   = editor.ButtonNone
	ButtonLeft   = editor.ButtonLeft
	ButtonMiddle = editor.ButtonMiddle
	ButtonRight  = editor.ButtonRight
)

// Modifiers is the set of keyboard modifiers held during a gesture.
type Modifiers = editor.Modifiers

// Keyboard modifiers. They combine with |.
const (
	ModNone  = editor.ModNone
	ModShift = editor.ModShift
	ModCtrl  = editor.ModCtrl
	ModAlt   = editor.ModAlt
)

// Effect is the tool a committed gesture resolved to.
type Effect = editor.Effect

// EffectKind tells the Effect variants apart.
type EffectKind = editor.EffectKind

// Effect kinds.
const (
	EffectPaint      = editor.EffectPaint
	EffectClear      = editor.EffectClear
	EffectSetDrone   = editor.EffectSetDrone
	EffectClearDrone = editor.EffectClearDrone
)

// EditorOption configures NewEditor.
type EditorOption func(*editorConfig)

type editorConfig struct {
	engine  []editor.Option
	session []session.Option
}

// WithInitialSnapshot starts the editor from snap instead of an empty grid.
func WithInitialSnapshot(snap *domain.Snapshot) EditorOption {
	return func(c *editorConfig) {
		c.engine = append(c.engine, editor.WithSnapshot(snap))
	}
}

// WithEditorHooks registers observability hooks.
func WithEditorHooks(hooks domain.EditorHooks) EditorOption {
	return func(c *editorConfig) {
		c.engine = append(c.engine, editor.WithHooks(hooks))
	}
}

// WithScenarioStore enables Save and Open on the editor.
func WithScenarioStore(store ports.ScenarioStore) EditorOption {
	return func(c *editorConfig) {
		c.session = append(c.session, session.WithStore(store))
	}
}

// WithChangeListener receives the diff of every committed change.
func WithChangeListener(fn func(*domain.SnapshotDiff)) EditorOption {
	return func(c *editorConfig) {
		c.session = append(c.session, session.WithListener(fn))
	}
}

// WithLogger configures a logger for the engine and its session.
func WithLogger(logger *slog.Logger) EditorOption {
	return func(c *editorConfig) {
		c.engine = append(c.engine, editor.WithLogger(logger))
		c.session = append(c.session, session.WithLogger(logger))
	}
}

// NewEditor creates an editing session over a cols x rows grid. The caller
// must start it with Run before using any other method.
func NewEditor(cols, rows int, opts ...EditorOption) (*Editor, error) {
	var cfg editorConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	engine, err := editor.NewEngine(cols, rows, cfg.engine...)
	if err != nil {
		return nil, err
	}
	return session.New(engine, cfg.session...), nil
}
