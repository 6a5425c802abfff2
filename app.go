package main

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/chazu/mindscape/examples"
	"github.com/chazu/mindscape/pkg/camera"
	"github.com/chazu/mindscape/pkg/config"
	"github.com/chazu/mindscape/pkg/engine"
	"github.com/chazu/mindscape/pkg/layout"
	"github.com/chazu/mindscape/pkg/mindmap"
	"github.com/chazu/mindscape/pkg/viewer"
	"github.com/chazu/mindscape/pkg/watcher"
	"github.com/cockroachdb/errors"
	log "github.com/sirupsen/logrus"
	"github.com/wailsapp/wails/v2/pkg/runtime"
)

// Runtime events emitted to the frontend.
const (
	eventCameraFrame   = "camera:frame"
	eventSceneReloaded = "scene:reloaded"
	eventSceneError    = "scene:error"
)

// App is the Wails backend. It exposes methods to the frontend via bindings.
type App struct {
	ctx    context.Context
	cfg    config.Config
	engine *engine.Engine
	driver *camera.Driver

	// emit delivers runtime events; replaced in tests.
	emit func(name string, data ...interface{})

	mu          sync.Mutex
	state       *viewer.State
	stopWatcher context.CancelFunc
}

// ErrorData is a JSON-serializable eval error or warning for the frontend.
type ErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
	NodeID  string `json:"nodeId,omitempty"`
}

// SceneResult is returned by every binding that changes the view.
type SceneResult struct {
	Scene    *viewer.WireScene `json:"scene"`
	Errors   []ErrorData       `json:"errors"`
	Warnings []ErrorData       `json:"warnings"`
}

// CameraFrame is the payload of camera:frame events.
type CameraFrame struct {
	Pose viewer.WirePose `json:"pose"`
	Done bool            `json:"done"`
}

// NewApp creates a new App using cfg for layout and camera constants.
func NewApp(cfg config.Config) *App {
	return &App{
		cfg:    cfg,
		engine: engine.NewEngine(),
		driver: cfg.NewDriver(),
		emit:   func(string, ...interface{}) {},
	}
}

// startup is called by Wails on app startup. The context is saved for
// runtime events.
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
	a.emit = func(name string, data ...interface{}) {
		runtime.EventsEmit(ctx, name, data...)
	}
}

// shutdown is called by Wails when the window closes.
func (a *App) shutdown(ctx context.Context) {
	a.mu.Lock()
	if a.stopWatcher != nil {
		a.stopWatcher()
		a.stopWatcher = nil
	}
	a.mu.Unlock()
	a.driver.Stop()
}

func (a *App) context() context.Context {
	if a.ctx == nil {
		return context.Background()
	}
	return a.ctx
}

func newResult() SceneResult {
	return SceneResult{Errors: []ErrorData{}, Warnings: []ErrorData{}}
}

func (r *SceneResult) addFatal(err error) {
	r.Errors = append(r.Errors, ErrorData{Message: err.Error()})
}

func (r *SceneResult) addEval(res engine.EvalResult) {
	for _, e := range res.Errors {
		r.Errors = append(r.Errors, ErrorData{Line: e.Line, Col: e.Col, Message: e.Message, NodeID: e.NodeID})
	}
	for _, w := range res.Warnings {
		r.Warnings = append(r.Warnings, ErrorData{Line: w.Line, Col: w.Col, Message: w.Message, NodeID: w.NodeID})
	}
}

// LoadSample shows the built-in Soil Science map.
func (a *App) LoadSample() SceneResult {
	return a.LoadSource(examples.SoilScience)
}

// LoadSource evaluates Lisp source and, when it yields a valid map, shows
// it from its initial view. On errors the current view is kept.
func (a *App) LoadSource(source string) SceneResult {
	res, err := a.engine.EvaluateResult(source)
	return a.install(res, err)
}

// LoadFile loads a .json or Lisp mind-map file.
func (a *App) LoadFile(path string) SceneResult {
	res, err := a.engine.EvaluateFile(path)
	return a.install(res, err)
}

func (a *App) install(res engine.EvalResult, err error) SceneResult {
	result := newResult()
	if err != nil {
		log.WithError(err).Error("mind-map evaluation failed")
		result.addFatal(err)
	} else {
		result.addEval(res)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if err == nil && res.Map != nil {
		a.driver.Stop()
		a.state = viewer.New(res.Map, a.cfg.ViewerOptions())
		a.driver.SetPose(a.cfg.HomePose())
		log.WithFields(log.Fields{"title": res.Map.Title, "nodes": res.Map.Count()}).Info("mind map loaded")
	}
	a.fillScene(&result)
	return result
}

// fillScene adds the current scene to r. The caller holds a.mu.
func (a *App) fillScene(r *SceneResult) {
	if a.state == nil {
		return
	}
	sc := a.state.Scene().Wire()
	r.Scene = &sc
}

// apply dispatches ev, starts any camera flight it requested and returns
// the new scene.
func (a *App) apply(ev viewer.Event) SceneResult {
	result := newResult()
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state == nil {
		result.addFatal(errors.New("no mind map loaded"))
		return result
	}
	a.state.Dispatch(ev)
	if target, ok := a.state.TakeCameraTarget(); ok {
		a.driver.Play(a.context(), target, a.emitFrame)
	}
	a.fillScene(&result)
	return result
}

func (a *App) emitFrame(p camera.Pose, last bool) {
	a.emit(eventCameraFrame, CameraFrame{Pose: viewer.PoseToWire(p), Done: last})
}

// ToggleNode expands or collapses a node and focuses it.
func (a *App) ToggleNode(id string) SceneResult {
	return a.apply(viewer.Event{Kind: viewer.EventNodeActivated, ID: id})
}

// SetLayoutMode switches between "tree", "radial" and "force".
func (a *App) SetLayoutMode(mode string) SceneResult {
	m, err := layout.ParseMode(mode)
	if err != nil {
		result := newResult()
		result.addFatal(err)
		a.mu.Lock()
		a.fillScene(&result)
		a.mu.Unlock()
		return result
	}
	return a.apply(viewer.Event{Kind: viewer.EventLayoutSelected, Mode: m})
}

// SetVisibleDepth hides nodes deeper than depth.
func (a *App) SetVisibleDepth(depth int) SceneResult {
	return a.apply(viewer.Event{Kind: viewer.EventDepthSelected, Depth: depth})
}

// SetFocusMode turns camera framing on node activation on or off.
func (a *App) SetFocusMode(on bool) SceneResult {
	return a.apply(viewer.Event{Kind: viewer.EventFocusMode, On: on})
}

// ResetView clears the focus and flies the camera home.
func (a *App) ResetView() SceneResult {
	return a.apply(viewer.Event{Kind: viewer.EventReset})
}

// FitToScreen frames every visible node.
func (a *App) FitToScreen() SceneResult {
	return a.apply(viewer.Event{Kind: viewer.EventFit})
}

// Restart returns to the initial view of the loaded map.
func (a *App) Restart() SceneResult {
	return a.apply(viewer.Event{Kind: viewer.EventRestart})
}

// OrbitCamera records a user-driven camera move so the next flight starts
// from it.
func (a *App) OrbitCamera(pose viewer.WirePose) {
	a.driver.SetPose(pose.Pose())
}

// NodeDetail returns the inspector payload for a node.
func (a *App) NodeDetail(id string) (viewer.Detail, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state == nil {
		return viewer.Detail{}, errors.New("no mind map loaded")
	}
	d, ok := a.state.Detail(id)
	if !ok {
		return viewer.Detail{}, errors.Newf("no node %q", id)
	}
	return d, nil
}

// ExportJSON returns the loaded map in the JSON exchange format.
func (a *App) ExportJSON() (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state == nil {
		return "", errors.New("no mind map loaded")
	}
	var buf bytes.Buffer
	if err := mindmap.Encode(&buf, a.state.Map()); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// WatchFile loads path and reloads it whenever it changes, keeping the
// current expansion, layout and depth. Reloads are announced with
// scene:reloaded, failed reloads with scene:error.
func (a *App) WatchFile(path string) SceneResult {
	result := a.LoadFile(path)
	if len(result.Errors) > 0 {
		return result
	}

	w, err := watcher.New(path, a.debounce(), a.reload)
	if err != nil {
		result.addFatal(err)
		return result
	}

	ctx, cancel := context.WithCancel(a.context())
	a.mu.Lock()
	if a.stopWatcher != nil {
		a.stopWatcher()
	}
	a.stopWatcher = cancel
	a.mu.Unlock()

	go func() {
		if err := w.Run(ctx); err != nil {
			log.WithError(err).Error("file watcher stopped")
		}
	}()
	return result
}

func (a *App) debounce() time.Duration {
	return time.Duration(a.cfg.Server.WatchDebounce)
}

// reload re-evaluates path after a change on disk.
func (a *App) reload(path string) {
	res, err := a.engine.EvaluateFile(path)
	result := newResult()
	if err != nil {
		result.addFatal(err)
	} else {
		result.addEval(res)
	}

	a.mu.Lock()
	if err == nil && res.Map != nil && a.state != nil {
		a.state.Reload(res.Map)
	}
	a.fillScene(&result)
	a.mu.Unlock()

	if len(result.Errors) > 0 {
		log.WithField("path", path).WithField("errors", len(result.Errors)).Warn("reload rejected")
		a.emit(eventSceneError, result)
		return
	}
	log.WithField("path", path).Info("mind map reloaded")
	a.emit(eventSceneReloaded, result)
}
