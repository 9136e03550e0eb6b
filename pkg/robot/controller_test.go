package robot

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/roarm-dev/roarm/pkg/command"
	"github.com/roarm-dev/roarm/pkg/transport"
)

// goodFeedback is a named-field pose reply: elbow at pi/2 rad, hand at
// pi rad.
const goodFeedback = `{"T":1051,"x":235.5,"y":-10,"z":150,"t":3.14,"b":0.1,"s":0.2,"e":1.5707963267948966,"h":3.141592653589793}`

// fakeComm records every line the controller sends and answers from a
// scripted reply queue, falling back to a fixed reply when the queue is
// empty.
type fakeComm struct {
	mu          sync.Mutex
	connected   bool
	port        string
	sent        []string
	replies     []string
	reply       string
	lastTimeout time.Duration
	connectErr  error
	sendErr     error

	// Optional gates, set before the controller is used: sendStarted
	// receives once per SendCommand entry, sendRelease blocks the send
	// until closed.
	sendStarted chan struct{}
	sendRelease chan struct{}
}

func newFakeComm() *fakeComm {
	return &fakeComm{reply: goodFeedback}
}

func (f *fakeComm) Connect(port string, opts transport.Options) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.connectErr != nil {
		return f.connectErr
	}
	f.connected = true
	f.port = port
	return nil
}

func (f *fakeComm) Disconnect() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connected = false
	return nil
}

func (f *fakeComm) SendCommand(line []byte, timeout time.Duration) ([]byte, error) {
	if f.sendStarted != nil {
		f.sendStarted <- struct{}{}
	}
	if f.sendRelease != nil {
		<-f.sendRelease
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.sent = append(f.sent, string(line))
	f.lastTimeout = timeout
	if len(f.replies) > 0 {
		r := f.replies[0]
		f.replies = f.replies[1:]
		return []byte(r), nil
	}
	return []byte(f.reply), nil
}

func (f *fakeComm) SendRaw(line []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, string(line))
	return nil
}

func (f *fakeComm) queueReply(r string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies = append(f.replies, r)
}

func (f *fakeComm) sentLines() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

func (f *fakeComm) lastLine() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return ""
	}
	return f.sent[len(f.sent)-1]
}

func (f *fakeComm) sendCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func newTestController(t *testing.T, comm transport.Communicator, model Model) *Controller {
	t.Helper()
	c := NewController(Config{
		Name:  "test",
		Port:  "/dev/ttyTEST0",
		Model: model,
		Comm:  comm,
	})
	t.Cleanup(func() { c.Close() })
	return c
}

func connect(t *testing.T, c *Controller) {
	t.Helper()
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
}

func TestController_ConnectDisconnect(t *testing.T) {
	ctx := context.Background()
	comm := newFakeComm()
	c := newTestController(t, comm, M2)

	st, err := c.State(ctx)
	if err != nil {
		t.Fatalf("State: %v", err)
	}
	if st.Connected || st.Torque || st.Position != nil || st.Joints != nil {
		t.Errorf("fresh state = %+v, want disconnected and empty", st)
	}

	connect(t, c)
	st, _ = c.State(ctx)
	if !st.Connected {
		t.Error("state not connected after Connect")
	}
	if !st.Torque {
		t.Error("torque should be engaged after connect")
	}

	// Connecting again is a no-op.
	if err := c.Connect(ctx); err != nil {
		t.Fatalf("second Connect: %v", err)
	}

	if err := c.Disconnect(ctx); err != nil {
		t.Fatalf("Disconnect: %v", err)
	}
	st, _ = c.State(ctx)
	if st.Connected {
		t.Error("state still connected after Disconnect")
	}
	comm.mu.Lock()
	open := comm.connected
	comm.mu.Unlock()
	if open {
		t.Error("transport still open after Disconnect")
	}
}

func TestController_ConnectNoPort(t *testing.T) {
	c := NewController(Config{Name: "portless", Comm: newFakeComm()})
	defer c.Close()

	err := c.Connect(context.Background())
	if !errors.Is(err, ErrNoPort) {
		t.Fatalf("Connect without port = %v, want ErrNoPort", err)
	}
}

func TestController_ConnectFailure(t *testing.T) {
	boom := errors.New("device busy")
	comm := newFakeComm()
	comm.connectErr = boom
	c := newTestController(t, comm, M2)

	err := c.Connect(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("Connect = %v, want wrapped %v", err, boom)
	}
	st, _ := c.State(context.Background())
	if st.Connected {
		t.Error("state connected after failed Connect")
	}
}

func TestController_NotConnected(t *testing.T) {
	ctx := context.Background()
	comm := newFakeComm()
	c := newTestController(t, comm, M2)

	if err := c.MoveJoint(ctx, 1, 45, 0); !errors.Is(err, ErrNotConnected) {
		t.Errorf("MoveJoint = %v, want ErrNotConnected", err)
	}
	if _, err := c.GetPosition(ctx); !errors.Is(err, ErrNotConnected) {
		t.Errorf("GetPosition = %v, want ErrNotConnected", err)
	}
	if err := c.Home(ctx); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Home = %v, want ErrNotConnected", err)
	}
	if _, err := c.Raw(ctx, []byte(`{"T":105}`), true); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Raw = %v, want ErrNotConnected", err)
	}
	if comm.sendCount() != 0 {
		t.Errorf("sent %d lines while disconnected, want 0", comm.sendCount())
	}
}

func TestController_ValidationFailureSendsNothing(t *testing.T) {
	ctx := context.Background()
	comm := newFakeComm()
	c := newTestController(t, comm, M2)
	connect(t, c)

	err := c.MoveJoint(ctx, 1, math.NaN(), 0)
	var typeErr *command.InvalidTypeError
	if !errors.As(err, &typeErr) {
		t.Fatalf("MoveJoint(NaN) = %v, want *command.InvalidTypeError", err)
	}
	if comm.sendCount() != 0 {
		t.Errorf("sent %d lines for an invalid command, want 0", comm.sendCount())
	}
}

func TestController_MoveJointWire(t *testing.T) {
	ctx := context.Background()
	comm := newFakeComm()
	c := newTestController(t, comm, M2)
	connect(t, c)

	if err := c.MoveJoint(ctx, 4, 90, 2000); err != nil {
		t.Fatalf("MoveJoint: %v", err)
	}
	want := `{"T":121,"joint":4,"angle":90,"spd":2000}`
	if got := comm.lastLine(); got != want {
		t.Errorf("wire = %s, want %s", got, want)
	}
}

func TestController_MoveJointClampsAndCaches(t *testing.T) {
	ctx := context.Background()
	comm := newFakeComm()
	c := newTestController(t, comm, M2)
	connect(t, c)

	// 999 degrees is out of range; the clamped value goes on the wire
	// and into the cache.
	if err := c.MoveJoint(ctx, 1, 999, 0); err != nil {
		t.Fatalf("MoveJoint: %v", err)
	}
	want := `{"T":121,"joint":1,"angle":180}`
	if got := comm.lastLine(); got != want {
		t.Errorf("wire = %s, want %s", got, want)
	}

	st, _ := c.State(ctx)
	if st.Joints == nil {
		t.Fatal("joint cache empty after move")
	}
	if st.Joints.Base != 180 {
		t.Errorf("cached base = %v, want clamped 180", st.Joints.Base)
	}
	// Untouched joints keep the home pose.
	if st.Joints.Elbow != 90 || st.Joints.Hand != 180 {
		t.Errorf("cached joints = %+v, want home elbow/hand", st.Joints)
	}
}

func TestController_MoveJointRadCachesDegrees(t *testing.T) {
	ctx := context.Background()
	comm := newFakeComm()
	c := newTestController(t, comm, M2)
	connect(t, c)

	if err := c.MoveJointRad(ctx, 2, math.Pi/2, 0); err != nil {
		t.Fatalf("MoveJointRad: %v", err)
	}
	st, _ := c.State(ctx)
	if st.Joints == nil {
		t.Fatal("joint cache empty after move")
	}
	if math.Abs(st.Joints.Shoulder-90) > 0.001 {
		t.Errorf("cached shoulder = %v, want 90", st.Joints.Shoulder)
	}
}

func TestController_PartialPositionMerge(t *testing.T) {
	ctx := context.Background()
	comm := newFakeComm()
	c := newTestController(t, comm, M2)
	connect(t, c)

	// Seed the cache with a full pose.
	err := c.MoveToPosition(ctx, PositionUpdate{X: F(10), Y: F(0), Z: F(20), T: F(0)})
	if err != nil {
		t.Fatalf("MoveToPosition: %v", err)
	}
	if got, want := comm.lastLine(), `{"T":104,"x":10,"y":0,"z":20,"t":0}`; got != want {
		t.Fatalf("wire = %s, want %s", got, want)
	}

	// A partial update fills the gaps from the cache.
	if err := c.MoveToPosition(ctx, PositionUpdate{Y: F(50)}); err != nil {
		t.Fatalf("partial MoveToPosition: %v", err)
	}
	if got, want := comm.lastLine(), `{"T":104,"x":10,"y":50,"z":20,"t":0}`; got != want {
		t.Errorf("wire = %s, want %s", got, want)
	}
}

func TestController_PartialPositionDefaults(t *testing.T) {
	ctx := context.Background()
	comm := newFakeComm()
	c := newTestController(t, comm, M2)
	connect(t, c)

	// Nothing cached yet: unset fields come from the factory pose.
	if err := c.MoveToPosition(ctx, PositionUpdate{Y: F(50)}); err != nil {
		t.Fatalf("MoveToPosition: %v", err)
	}
	want := `{"T":104,"x":235,"y":50,"z":234,"t":0}`
	if got := comm.lastLine(); got != want {
		t.Errorf("wire = %s, want %s", got, want)
	}
}

func TestController_MoveJointsPartialMerge(t *testing.T) {
	ctx := context.Background()

	t.Run("m2 omits wrist and grip", func(t *testing.T) {
		comm := newFakeComm()
		c := newTestController(t, comm, M2)
		connect(t, c)

		if err := c.MoveJoints(ctx, JointsUpdate{Elbow: F(45)}); err != nil {
			t.Fatalf("MoveJoints: %v", err)
		}
		want := `{"T":122,"b":0,"s":0,"e":45,"h":180}`
		if got := comm.lastLine(); got != want {
			t.Errorf("wire = %s, want %s", got, want)
		}
	})

	t.Run("m3 includes wrist and grip", func(t *testing.T) {
		comm := newFakeComm()
		c := newTestController(t, comm, M3)
		connect(t, c)

		if err := c.MoveJoints(ctx, JointsUpdate{Elbow: F(45), Speed: I(1000)}); err != nil {
			t.Fatalf("MoveJoints: %v", err)
		}
		want := `{"T":122,"b":0,"s":0,"e":45,"h":180,"w":0,"g":0,"spd":1000}`
		if got := comm.lastLine(); got != want {
			t.Errorf("wire = %s, want %s", got, want)
		}
	})
}

func TestController_MoveJointsRad(t *testing.T) {
	ctx := context.Background()
	comm := newFakeComm()
	c := newTestController(t, comm, M2)
	connect(t, c)

	if err := c.MoveJointsRad(ctx, []float64{0, 0}, 0, 0); err == nil {
		t.Error("MoveJointsRad with 2 angles should fail")
	}

	if err := c.MoveJointsRad(ctx, []float64{0, 0.5, 1.5, 3}, 0, 0); err != nil {
		t.Fatalf("MoveJointsRad: %v", err)
	}
	want := `{"T":102,"b":0,"s":0.5,"e":1.5,"h":3}`
	if got := comm.lastLine(); got != want {
		t.Errorf("wire = %s, want %s", got, want)
	}

	// The cache converts to degrees.
	st, _ := c.State(ctx)
	if st.Joints == nil {
		t.Fatal("joint cache empty after move")
	}
	if math.Abs(st.Joints.Shoulder-Degrees(0.5)) > 0.001 {
		t.Errorf("cached shoulder = %v, want %v", st.Joints.Shoulder, Degrees(0.5))
	}
}

func TestController_HomeResetsCache(t *testing.T) {
	ctx := context.Background()
	comm := newFakeComm()
	c := newTestController(t, comm, M2)
	connect(t, c)

	if err := c.MoveToPosition(ctx, PositionUpdate{X: F(100), Z: F(50)}); err != nil {
		t.Fatalf("MoveToPosition: %v", err)
	}
	if err := c.Home(ctx); err != nil {
		t.Fatalf("Home: %v", err)
	}
	if got := comm.lastLine(); got != `{"T":100}` {
		t.Errorf("wire = %s, want {\"T\":100}", got)
	}

	st, _ := c.State(ctx)
	if st.Position == nil || *st.Position != DefaultPosition() {
		t.Errorf("position after Home = %+v, want %+v", st.Position, DefaultPosition())
	}
	if st.Joints == nil || *st.Joints != DefaultJoints() {
		t.Errorf("joints after Home = %+v, want %+v", st.Joints, DefaultJoints())
	}
}

func TestController_DisconnectClearsCache(t *testing.T) {
	ctx := context.Background()
	comm := newFakeComm()
	c := newTestController(t, comm, M2)
	connect(t, c)

	if err := c.MoveToPosition(ctx, PositionUpdate{X: F(100)}); err != nil {
		t.Fatalf("MoveToPosition: %v", err)
	}
	if err := c.Disconnect(ctx); err != nil {
		t.Fatalf("Disconnect: %v", err)
	}

	st, _ := c.State(ctx)
	if st.Position != nil || st.Joints != nil {
		t.Errorf("cache survives disconnect: pos=%+v joints=%+v", st.Position, st.Joints)
	}
}

func TestController_Feedback(t *testing.T) {
	ctx := context.Background()
	comm := newFakeComm()
	c := newTestController(t, comm, M2)
	connect(t, c)

	pos, err := c.GetPosition(ctx)
	if err != nil {
		t.Fatalf("GetPosition: %v", err)
	}
	if got := comm.lastLine(); got != `{"T":105}` {
		t.Errorf("wire = %s, want {\"T\":105}", got)
	}
	want := Position{X: 235.5, Y: -10, Z: 150, T: 3.14}
	if pos != want {
		t.Errorf("position = %+v, want %+v", pos, want)
	}

	// A parsed reply refreshes both caches.
	st, _ := c.State(ctx)
	if st.Position == nil || *st.Position != want {
		t.Errorf("cached position = %+v, want %+v", st.Position, want)
	}
	if st.Joints == nil || math.Abs(st.Joints.Elbow-90) > 0.001 {
		t.Errorf("cached joints = %+v, want elbow 90", st.Joints)
	}

	joints, err := c.GetJoints(ctx)
	if err != nil {
		t.Fatalf("GetJoints: %v", err)
	}
	if math.Abs(joints.Hand-180) > 0.001 {
		t.Errorf("hand = %v, want 180", joints.Hand)
	}
}

func TestController_FeedbackUnreadable(t *testing.T) {
	ctx := context.Background()
	comm := newFakeComm()
	c := newTestController(t, comm, M2)
	connect(t, c)

	// The firmware sometimes answers a pose query with a status string.
	// That is not an error; the caller gets zero values.
	comm.queueReply("BUSY")
	pos, err := c.GetPosition(ctx)
	if err != nil {
		t.Fatalf("GetPosition on unreadable reply: %v", err)
	}
	if pos != (Position{}) {
		t.Errorf("position = %+v, want zero", pos)
	}

	// The zero fallback must not poison the cache.
	st, _ := c.State(ctx)
	if st.Position != nil {
		t.Errorf("cache updated from unreadable reply: %+v", st.Position)
	}

	comm.queueReply(`{"ok":1}`)
	rads, err := c.GetJointsRad(ctx)
	if err != nil {
		t.Fatalf("GetJointsRad on unreadable reply: %v", err)
	}
	if len(rads) != 4 {
		t.Fatalf("len(rads) = %d, want model joint count 4", len(rads))
	}
	for i, r := range rads {
		if r != 0 {
			t.Errorf("rads[%d] = %v, want 0", i, r)
		}
	}
}

func TestController_GetJointsRadSizedToModel(t *testing.T) {
	ctx := context.Background()

	// A six joint reply on a four joint arm truncates.
	comm := newFakeComm()
	comm.reply = `{"T":1051,"x":0,"y":0,"z":0,"t":0,"b":0.1,"s":0.2,"e":0.3,"h":0.4,"w":0.5,"g":0.6}`
	c := newTestController(t, comm, M2)
	connect(t, c)

	rads, err := c.GetJointsRad(ctx)
	if err != nil {
		t.Fatalf("GetJointsRad: %v", err)
	}
	if len(rads) != 4 {
		t.Fatalf("len(rads) = %d, want 4", len(rads))
	}
	if rads[3] != 0.4 {
		t.Errorf("rads[3] = %v, want 0.4", rads[3])
	}

	// A four joint reply on a six joint arm zero-pads.
	comm6 := newFakeComm()
	c6 := newTestController(t, comm6, M3)
	connect(t, c6)

	rads, err = c6.GetJointsRad(ctx)
	if err != nil {
		t.Fatalf("GetJointsRad: %v", err)
	}
	if len(rads) != 6 {
		t.Fatalf("len(rads) = %d, want 6", len(rads))
	}
	if rads[4] != 0 || rads[5] != 0 {
		t.Errorf("padded joints = %v, want zeros", rads[4:])
	}
}

func TestController_SetTorque(t *testing.T) {
	ctx := context.Background()
	comm := newFakeComm()
	c := newTestController(t, comm, M2)
	connect(t, c)

	if err := c.SetTorque(ctx, false); err != nil {
		t.Fatalf("SetTorque(false): %v", err)
	}
	if got := comm.lastLine(); got != `{"T":210,"cmd":0}` {
		t.Errorf("wire = %s, want {\"T\":210,\"cmd\":0}", got)
	}
	st, _ := c.State(ctx)
	if st.Torque {
		t.Error("torque still reported engaged")
	}

	if err := c.SetTorque(ctx, true); err != nil {
		t.Fatalf("SetTorque(true): %v", err)
	}
	if got := comm.lastLine(); got != `{"T":210,"cmd":1}` {
		t.Errorf("wire = %s, want {\"T\":210,\"cmd\":1}", got)
	}
	st, _ = c.State(ctx)
	if !st.Torque {
		t.Error("torque not reported engaged")
	}
}

func TestController_AuxiliaryCommands(t *testing.T) {
	ctx := context.Background()
	comm := newFakeComm()
	c := newTestController(t, comm, M2)
	connect(t, c)

	tests := []struct {
		name string
		call func() error
		want string
	}{
		{"led brightness", func() error { return c.SetLED(ctx, 128) }, `{"T":114,"led":128}`},
		{"led clamps", func() error { return c.SetLED(ctx, 300) }, `{"T":114,"led":255}`},
		{"led color", func() error { return c.SetLEDColor(ctx, 255, 0, 64) }, `{"T":114,"r":255,"g":0,"b":64}`},
		{"gripper", func() error { return c.Gripper(ctx, 1, 50) }, `{"T":106,"mode":1,"angle":50}`},
		{"gripper mode only", func() error { return c.Gripper(ctx, 0, -1) }, `{"T":106,"mode":0}`},
		{"pid", func() error { return c.SetPID(ctx, 2, PIDGains{P: I(16), D: I(1)}) }, `{"T":108,"joint":2,"p":16,"d":1}`},
		{"adapt on", func() error {
			return c.SetDynamicAdaptation(ctx, true, AdaptThresholds{Base: I(500)})
		}, `{"T":112,"mode":1,"b":500}`},
		{"adapt off", func() error {
			return c.SetDynamicAdaptation(ctx, false, AdaptThresholds{})
		}, `{"T":112,"mode":0}`},
		{"set middle", func() error { return c.SetMiddlePosition(ctx) }, `{"T":502}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); err != nil {
				t.Fatalf("%v", err)
			}
			if got := comm.lastLine(); got != tt.want {
				t.Errorf("wire = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestController_MissionSequence(t *testing.T) {
	ctx := context.Background()
	comm := newFakeComm()
	c := newTestController(t, comm, M2)
	connect(t, c)

	if err := c.CreateMission(ctx, "wave", ""); err != nil {
		t.Fatalf("CreateMission: %v", err)
	}
	if err := c.AddMissionStep(ctx, "wave", 0); err != nil {
		t.Fatalf("AddMissionStep: %v", err)
	}
	if err := c.AddMissionDelay(ctx, "wave", 500); err != nil {
		t.Fatalf("AddMissionDelay: %v", err)
	}
	if err := c.PlayMission(ctx, "wave", 3); err != nil {
		t.Fatalf("PlayMission: %v", err)
	}

	want := []string{
		`{"T":220,"name":"wave","intro":""}`,
		`{"T":223,"mission":"wave","spd":0.25}`,
		`{"T":224,"mission":"wave","delay":500}`,
		`{"T":242,"name":"wave","times":3}`,
	}
	got := comm.sentLines()
	if len(got) != len(want) {
		t.Fatalf("sent %d lines, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestController_CommandTimeouts(t *testing.T) {
	ctx := context.Background()
	comm := newFakeComm()
	c := newTestController(t, comm, M2)
	connect(t, c)

	if err := c.MoveJoint(ctx, 1, 10, 0); err != nil {
		t.Fatalf("MoveJoint: %v", err)
	}
	if comm.lastTimeout != DefaultMoveTimeout {
		t.Errorf("movement timeout = %v, want %v", comm.lastTimeout, DefaultMoveTimeout)
	}

	if err := c.SetLED(ctx, 1); err != nil {
		t.Fatalf("SetLED: %v", err)
	}
	if comm.lastTimeout != DefaultCommandTimeout {
		t.Errorf("command timeout = %v, want %v", comm.lastTimeout, DefaultCommandTimeout)
	}
}

func TestController_SendFailure(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("read timeout")
	comm := newFakeComm()
	comm.sendErr = boom
	c := newTestController(t, comm, M2)
	connect(t, c)

	err := c.MoveJoint(ctx, 1, 10, 0)
	if !errors.Is(err, boom) {
		t.Fatalf("MoveJoint = %v, want wrapped %v", err, boom)
	}
	if !strings.Contains(err.Error(), "joint_degrees") {
		t.Errorf("error %q should name the command", err)
	}
}

func TestController_Raw(t *testing.T) {
	ctx := context.Background()
	comm := newFakeComm()
	c := newTestController(t, comm, M2)
	connect(t, c)

	reply, err := c.Raw(ctx, []byte(`{"T":605,"cmd":1}`), true)
	if err != nil {
		t.Fatalf("Raw: %v", err)
	}
	if string(reply) != goodFeedback {
		t.Errorf("reply = %s, want scripted default", reply)
	}
	if got := comm.lastLine(); got != `{"T":605,"cmd":1}` {
		t.Errorf("sent = %s, want verbatim line", got)
	}

	// Fire and forget path.
	if _, err := c.Raw(ctx, []byte(`{"T":600}`), false); err != nil {
		t.Fatalf("Raw without reply: %v", err)
	}
	if got := comm.lastLine(); got != `{"T":600}` {
		t.Errorf("sent = %s, want verbatim line", got)
	}
}

func TestController_Close(t *testing.T) {
	comm := newFakeComm()
	c := NewController(Config{Name: "closer", Port: "/dev/ttyTEST0", Comm: comm})
	connect(t, c)

	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}

	if err := c.MoveJoint(context.Background(), 1, 10, 0); !errors.Is(err, ErrClosed) {
		t.Errorf("MoveJoint after Close = %v, want ErrClosed", err)
	}
}

func TestController_ContextCancelled(t *testing.T) {
	comm := newFakeComm()
	c := newTestController(t, comm, M2)

	// Park the controller goroutine so the next call cannot enqueue.
	started := make(chan struct{})
	release := make(chan struct{})
	go c.do(context.Background(), func() error {
		close(started)
		<-release
		return nil
	})
	<-started
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.State(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("State = %v, want context.Canceled", err)
	}
}

// A context cancelled after the request is accepted must not detach the
// caller: the in-flight operation finishes and its result is returned.
func TestController_CancelAfterEnqueue(t *testing.T) {
	comm := newFakeComm()
	comm.sendStarted = make(chan struct{})
	comm.sendRelease = make(chan struct{})
	c := newTestController(t, comm, M2)
	connect(t, c)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	type result struct {
		pos Position
		err error
	}
	resCh := make(chan result, 1)
	go func() {
		pos, err := c.GetPosition(ctx)
		resCh <- result{pos, err}
	}()

	// The query is on the wire; cancel now, then let the send finish.
	<-comm.sendStarted
	cancel()
	close(comm.sendRelease)

	res := <-resCh
	if res.err != nil {
		t.Fatalf("GetPosition = %v, want the completed result", res.err)
	}
	if math.Abs(res.pos.X-235.5) > 0.001 {
		t.Errorf("X = %v, want 235.5 from the feedback reply", res.pos.X)
	}
}

func TestController_SerializesConcurrentCommands(t *testing.T) {
	ctx := context.Background()
	comm := newFakeComm()
	c := newTestController(t, comm, M2)
	connect(t, c)

	const n = 25
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = c.MoveJoint(ctx, i%6+1, float64(i), 0)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("MoveJoint %d: %v", i, err)
		}
	}
	if comm.sendCount() != n {
		t.Errorf("sent %d lines, want %d", comm.sendCount(), n)
	}
}
