package server

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/chazu/mindscape/pkg/camera"
	"github.com/chazu/mindscape/pkg/layout"
	"github.com/chazu/mindscape/pkg/mindmap"
	"github.com/chazu/mindscape/pkg/viewer"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

const writeTimeout = 10 * time.Second

// Message types exchanged over the websocket.
const (
	msgToggle    = "toggle"
	msgLayout    = "layout"
	msgDepth     = "depth"
	msgReset     = "reset"
	msgFit       = "fit"
	msgFocusMode = "focus-mode"
	msgRestart   = "restart"
	msgDetail    = "detail"
	msgOrbit     = "orbit"

	msgScene  = "scene"
	msgCamera = "camera"
	msgError  = "error"
)

// inMessage is a client request. Only the fields relevant to Type are set.
type inMessage struct {
	Type  string           `json:"type"`
	ID    string           `json:"id,omitempty"`
	Mode  string           `json:"mode,omitempty"`
	Depth int              `json:"depth,omitempty"`
	On    bool             `json:"on,omitempty"`
	Pose  *viewer.WirePose `json:"pose,omitempty"`
}

// outMessage is a server push.
type outMessage struct {
	Type   string            `json:"type"`
	Scene  *viewer.WireScene `json:"scene,omitempty"`
	Pose   *viewer.WirePose  `json:"pose,omitempty"`
	Done   bool              `json:"done,omitempty"`
	Detail *viewer.Detail    `json:"detail,omitempty"`
	Error  string            `json:"error,omitempty"`
}

// session is one websocket client. Its viewer state is touched only by the
// run goroutine; camera frames are written from the driver goroutine, so
// writes share a mutex.
type session struct {
	srv    *Server
	conn   *websocket.Conn
	logger *log.Entry

	state  *viewer.State
	driver *camera.Driver
	reload chan *mindmap.Map

	writeMu sync.Mutex
}

func newSession(srv *Server, conn *websocket.Conn, remote string) *session {
	return &session{
		srv:    srv,
		conn:   conn,
		logger: log.WithField("remote", remote),
		driver: srv.cfg.NewDriver(),
		reload: make(chan *mindmap.Map, 1),
	}
}

// reloadWith queues m for the session, replacing any map not yet applied.
func (ss *session) reloadWith(m *mindmap.Map) {
	for {
		select {
		case ss.reload <- m:
			return
		default:
		}
		select {
		case <-ss.reload:
		default:
		}
	}
}

func (ss *session) run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer ss.conn.Close()
	defer ss.driver.Stop()

	ss.logger.Info("viewer session opened")
	defer ss.logger.Info("viewer session closed")

	ss.state = viewer.New(ss.srv.Map(), ss.srv.viewerOptions())

	inbound := make(chan inMessage)
	go ss.readLoop(ctx, cancel, inbound)

	ss.sendScene()
	for {
		select {
		case <-ctx.Done():
			return
		case m := <-ss.reload:
			ss.state.Reload(m)
			ss.sendScene()
		case msg := <-inbound:
			ss.handle(ctx, msg)
		}
	}
}

func (ss *session) readLoop(ctx context.Context, cancel context.CancelFunc, out chan<- inMessage) {
	defer cancel()
	for {
		_, data, err := ss.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				ss.logger.WithError(err).Warn("websocket read failed")
			}
			return
		}
		var msg inMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			ss.sendError("malformed message: %v", err)
			continue
		}
		select {
		case out <- msg:
		case <-ctx.Done():
			return
		}
	}
}

// handle applies one client request.
func (ss *session) handle(ctx context.Context, msg inMessage) {
	var ev viewer.Event
	switch msg.Type {
	case msgToggle:
		ev = viewer.Event{Kind: viewer.EventNodeActivated, ID: msg.ID}
	case msgLayout:
		mode, err := layout.ParseMode(msg.Mode)
		if err != nil {
			ss.sendError("%v", err)
			return
		}
		ev = viewer.Event{Kind: viewer.EventLayoutSelected, Mode: mode}
	case msgDepth:
		ev = viewer.Event{Kind: viewer.EventDepthSelected, Depth: msg.Depth}
	case msgReset:
		ev = viewer.Event{Kind: viewer.EventReset}
	case msgFit:
		ev = viewer.Event{Kind: viewer.EventFit}
	case msgFocusMode:
		ev = viewer.Event{Kind: viewer.EventFocusMode, On: msg.On}
	case msgRestart:
		ev = viewer.Event{Kind: viewer.EventRestart}
	case msgDetail:
		d, ok := ss.state.Detail(msg.ID)
		if !ok {
			ss.sendError("no node %q", msg.ID)
			return
		}
		ss.write(outMessage{Type: msgDetail, Detail: &d})
		return
	case msgOrbit:
		if msg.Pose == nil {
			ss.sendError("orbit needs a pose")
			return
		}
		ss.driver.SetPose(msg.Pose.Pose())
		return
	default:
		ss.sendError("unknown message type %q", msg.Type)
		return
	}

	ss.state.Dispatch(ev)
	ss.srv.metrics.events.WithLabelValues(ev.Kind.String()).Inc()
	ss.sendScene()

	if target, ok := ss.state.TakeCameraTarget(); ok {
		ss.driver.Play(ctx, target, ss.sendCamera)
	}
}

func (ss *session) sendScene() {
	sc := ss.state.Scene().Wire()
	ss.write(outMessage{Type: msgScene, Scene: &sc})
}

func (ss *session) sendCamera(p camera.Pose, last bool) {
	wp := viewer.PoseToWire(p)
	ss.write(outMessage{Type: msgCamera, Pose: &wp, Done: last})
}

func (ss *session) sendError(format string, args ...interface{}) {
	ss.write(outMessage{Type: msgError, Error: fmt.Sprintf(format, args...)})
}

func (ss *session) write(msg outMessage) {
	ss.writeMu.Lock()
	defer ss.writeMu.Unlock()
	ss.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := ss.conn.WriteJSON(msg); err != nil {
		ss.logger.WithError(err).WithField("type", msg.Type).Debug("websocket write failed")
	}
}
