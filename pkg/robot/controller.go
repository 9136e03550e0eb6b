package robot

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/roarm-dev/roarm/internal/logging"
	"github.com/roarm-dev/roarm/pkg/command"
	"github.com/roarm-dev/roarm/pkg/transport"
)

// Timeouts applied to dispatched commands when Config leaves them zero.
// Movement commands get a longer reply window because the firmware
// answers some of them only after the motion completes.
const (
	DefaultCommandTimeout = 5 * time.Second
	DefaultMoveTimeout    = 8 * time.Second
)

// Config configures a Controller.
type Config struct {
	// Name labels the robot in logs and the registry.
	Name string
	// Port is the serial device path. Connect fails with ErrNoPort when
	// empty.
	Port string
	// Model selects the arm variant. Zero value means M2.
	Model Model
	// Comm is the wire link. Defaults to a transport.Serial.
	Comm transport.Communicator
	// Baud overrides the transport default when positive.
	Baud int
	// CommandTimeout bounds non-movement replies.
	CommandTimeout time.Duration
	// MoveTimeout bounds movement replies.
	MoveTimeout time.Duration
	// Logger receives controller logs. Defaults to a silent logger.
	Logger *log.Logger
}

// Controller drives one arm. All methods are safe for concurrent use:
// they funnel through a single goroutine that owns connection, torque
// and pose state, so commands reach the wire one at a time in arrival
// order.
type Controller struct {
	name        string
	port        string
	model       Model
	comm        transport.Communicator
	baud        int
	cmdTimeout  time.Duration
	moveTimeout time.Duration
	logger      *log.Logger

	reqCh     chan func()
	samples   chan teachSample
	done      chan struct{}
	closeOnce sync.Once

	// st is owned by the run goroutine.
	st state
}

type state struct {
	connected bool
	torque    bool
	position  *Position
	joints    *Joints
	teach     *teachSession
}

// State is a snapshot of controller state. Position and Joints are nil
// until a move or feedback query populates them.
type State struct {
	Name      string
	Port      string
	Model     Model
	Connected bool
	Torque    bool
	Teaching  bool
	Position  *Position
	Joints    *Joints
}

// NewController builds a controller and starts its goroutine. Callers
// own the returned controller and must Close it.
func NewController(cfg Config) *Controller {
	model := cfg.Model
	if model == "" {
		model = M2
	}
	comm := cfg.Comm
	if comm == nil {
		comm = transport.NewSerial()
	}
	cmdTimeout := cfg.CommandTimeout
	if cmdTimeout <= 0 {
		cmdTimeout = DefaultCommandTimeout
	}
	moveTimeout := cfg.MoveTimeout
	if moveTimeout <= 0 {
		moveTimeout = DefaultMoveTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	if cfg.Name != "" {
		logger = logger.With("robot", cfg.Name)
	}

	c := &Controller{
		name:        cfg.Name,
		port:        cfg.Port,
		model:       model,
		comm:        comm,
		baud:        cfg.Baud,
		cmdTimeout:  cmdTimeout,
		moveTimeout: moveTimeout,
		logger:      logger,
		reqCh:       make(chan func()),
		samples:     make(chan teachSample, 64),
		done:        make(chan struct{}),
	}
	go c.run()
	return c
}

// Name returns the configured robot name.
func (c *Controller) Name() string { return c.name }

// Model returns the configured arm variant.
func (c *Controller) Model() Model { return c.model }

// Port returns the configured serial device path.
func (c *Controller) Port() string { return c.port }

func (c *Controller) run() {
	for {
		select {
		case <-c.done:
			return
		case req := <-c.reqCh:
			req()
		case ts := <-c.samples:
			if c.st.teach != nil && c.st.teach.id == ts.session {
				c.st.teach.samples = append(c.st.teach.samples, ts.sample)
			}
		}
	}
}

// do runs fn on the controller goroutine and waits for its result. The
// context applies to enqueueing only: an accepted request always runs,
// and its reply is always collected before the caller returns.
func (c *Controller) do(ctx context.Context, fn func() error) error {
	errCh := make(chan error, 1)
	wrapped := func() { errCh <- fn() }

	select {
	case c.reqCh <- wrapped:
	case <-c.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	return <-errCh
}

// exec validates a command, then dispatches it on the controller
// goroutine. onOK runs there after a successful send and may touch
// state.
func (c *Controller) exec(ctx context.Context, code int, raw command.Raw, onOK func(v command.Validated, reply []byte)) error {
	v, err := command.Validate(code, raw)
	if err != nil {
		return err
	}
	return c.do(ctx, func() error {
		reply, err := c.dispatch(v)
		if err != nil {
			return err
		}
		if onOK != nil {
			onOK(v, reply)
		}
		return nil
	})
}

// dispatch sends a validated command and waits for the reply line. Runs
// on the controller goroutine only.
func (c *Controller) dispatch(v command.Validated) ([]byte, error) {
	if !c.st.connected {
		return nil, ErrNotConnected
	}
	line, err := command.Marshal(v)
	if err != nil {
		return nil, err
	}

	timeout := c.cmdTimeout
	if v.Category() == command.CategoryMovement {
		timeout = c.moveTimeout
	}

	c.logger.Debug("send", "cmd", v.Name(), "line", string(line))
	reply, err := c.comm.SendCommand(line, timeout)
	if err != nil {
		return nil, fmt.Errorf("send %s: %w", v.Name(), err)
	}
	return reply, nil
}

// Connect opens the serial link. Connecting an already connected
// controller is a no-op.
func (c *Controller) Connect(ctx context.Context) error {
	return c.do(ctx, func() error {
		if c.st.connected {
			return nil
		}
		if c.port == "" {
			return ErrNoPort
		}
		opts := transport.Options{Baud: c.baud, ReadTimeout: c.cmdTimeout}
		if err := c.comm.Connect(c.port, opts); err != nil {
			return fmt.Errorf("connect %s: %w", c.port, err)
		}
		c.st.connected = true
		// Firmware boots with torque engaged.
		c.st.torque = true
		c.logger.Info("connected", "port", c.port, "model", c.model)
		return nil
	})
}

// Disconnect closes the serial link. An active teaching session is
// cancelled and its unsaved samples are discarded.
func (c *Controller) Disconnect(ctx context.Context) error {
	return c.do(ctx, func() error { return c.disconnect() })
}

func (c *Controller) disconnect() error {
	if !c.st.connected {
		return nil
	}
	if c.st.teach != nil {
		c.st.teach.cancel()
		c.logger.Warn("teaching session discarded", "session", c.st.teach.id, "samples", len(c.st.teach.samples))
		c.st.teach = nil
	}
	if err := c.comm.Disconnect(); err != nil {
		return fmt.Errorf("disconnect: %w", err)
	}
	c.st.connected = false
	c.st.position = nil
	c.st.joints = nil
	c.logger.Info("disconnected", "port", c.port)
	return nil
}

// Close disconnects and stops the controller goroutine. The controller
// cannot be used afterwards.
func (c *Controller) Close() error {
	var err error
	c.closeOnce.Do(func() {
		err = c.do(context.Background(), func() error { return c.disconnect() })
		close(c.done)
	})
	return err
}

// State returns a snapshot of the controller's state.
func (c *Controller) State(ctx context.Context) (State, error) {
	var s State
	err := c.do(ctx, func() error {
		s = State{
			Name:      c.name,
			Port:      c.port,
			Model:     c.model,
			Connected: c.st.connected,
			Torque:    c.st.torque,
			Teaching:  c.st.teach != nil,
		}
		if c.st.position != nil {
			p := *c.st.position
			s.Position = &p
		}
		if c.st.joints != nil {
			j := *c.st.joints
			s.Joints = &j
		}
		return nil
	})
	return s, err
}

// Home moves all joints to the home pose and resets the cached pose to
// the defaults.
func (c *Controller) Home(ctx context.Context) error {
	return c.exec(ctx, command.CmdHome, nil, func(command.Validated, []byte) {
		p := DefaultPosition()
		j := DefaultJoints()
		c.st.position = &p
		c.st.joints = &j
	})
}

// MoveJoint moves one joint (1-based wire numbering) to an angle in
// degrees. A non-positive speed leaves the firmware default in place.
func (c *Controller) MoveJoint(ctx context.Context, joint int, angle float64, speed int) error {
	raw := command.Raw{"joint": joint, "angle": angle}
	if speed > 0 {
		raw["spd"] = speed
	}
	return c.exec(ctx, command.CmdJointDeg, raw, func(v command.Validated, _ []byte) {
		c.cacheJoint(joint, v, "angle", false)
	})
}

// MoveJointRad moves one joint to an angle in radians.
func (c *Controller) MoveJointRad(ctx context.Context, joint int, rad float64, speed int) error {
	raw := command.Raw{"joint": joint, "rad": rad}
	if speed > 0 {
		raw["spd"] = speed
	}
	return c.exec(ctx, command.CmdJointRad, raw, func(v command.Validated, _ []byte) {
		c.cacheJoint(joint, v, "rad", true)
	})
}

// cacheJoint folds one validated joint angle into the cache. The cache
// holds what was dispatched, after clamping.
func (c *Controller) cacheJoint(joint int, v command.Validated, param string, radians bool) {
	val, ok := v.Value(param)
	if !ok {
		return
	}
	deg := val.(float64)
	if radians {
		deg = Degrees(deg)
	}
	if c.st.joints == nil {
		j := DefaultJoints()
		c.st.joints = &j
	}
	c.st.joints.SetIndex(joint, deg)
}

// MoveJoints merges the update over the cached joint state (home pose
// when nothing is cached yet) and dispatches a complete joints command
// in degrees.
func (c *Controller) MoveJoints(ctx context.Context, u JointsUpdate) error {
	return c.do(ctx, func() error {
		cur := DefaultJoints()
		if c.st.joints != nil {
			cur = *c.st.joints
		}
		merged := mergeJoints(cur, u)

		raw := command.Raw{
			"b": merged.Base,
			"s": merged.Shoulder,
			"e": merged.Elbow,
			"h": merged.Hand,
		}
		if c.model == M3 {
			raw["w"] = merged.Wrist
			raw["g"] = merged.Grip
		}
		if u.Speed != nil {
			raw["spd"] = *u.Speed
		}
		if u.Acc != nil {
			raw["acc"] = *u.Acc
		}

		v, err := command.Validate(command.CmdJointsDeg, raw)
		if err != nil {
			return err
		}
		if _, err := c.dispatch(v); err != nil {
			return err
		}
		j := jointsFromValidated(v, merged, false)
		c.st.joints = &j
		return nil
	})
}

// MoveJointsRad dispatches a complete radian joints command, base joint
// first. At least the four core joints are required; wrist and grip are
// sent when the model has them and values are supplied.
func (c *Controller) MoveJointsRad(ctx context.Context, rads []float64, speed, acc int) error {
	if len(rads) < 4 {
		return fmt.Errorf("need at least 4 joint angles, got %d", len(rads))
	}
	raw := command.Raw{"b": rads[0], "s": rads[1], "e": rads[2], "h": rads[3]}
	if c.model == M3 && len(rads) >= 6 {
		raw["w"] = rads[4]
		raw["g"] = rads[5]
	}
	if speed > 0 {
		raw["spd"] = speed
	}
	if acc > 0 {
		raw["acc"] = acc
	}
	return c.exec(ctx, command.CmdJointsRad, raw, func(v command.Validated, _ []byte) {
		cur := DefaultJoints()
		if c.st.joints != nil {
			cur = *c.st.joints
		}
		j := jointsFromValidated(v, cur, true)
		c.st.joints = &j
	})
}

// moveJointsDeg dispatches a complete degree joints command, base joint
// first, with the same shape rules as MoveJointsRad.
func (c *Controller) moveJointsDeg(ctx context.Context, degs []float64, speed, acc int) error {
	if len(degs) < 4 {
		return fmt.Errorf("need at least 4 joint angles, got %d", len(degs))
	}
	raw := command.Raw{"b": degs[0], "s": degs[1], "e": degs[2], "h": degs[3]}
	if c.model == M3 && len(degs) >= 6 {
		raw["w"] = degs[4]
		raw["g"] = degs[5]
	}
	if speed > 0 {
		raw["spd"] = speed
	}
	if acc > 0 {
		raw["acc"] = acc
	}
	return c.exec(ctx, command.CmdJointsDeg, raw, func(v command.Validated, _ []byte) {
		cur := DefaultJoints()
		if c.st.joints != nil {
			cur = *c.st.joints
		}
		j := jointsFromValidated(v, cur, false)
		c.st.joints = &j
	})
}

// jointsFromValidated overlays the joint values actually dispatched onto
// base. radians converts wire values to the cache's degrees.
func jointsFromValidated(v command.Validated, base Joints, radians bool) Joints {
	j := base
	get := func(name string, dst *float64) {
		if val, ok := v.Value(name); ok {
			f := val.(float64)
			if radians {
				f = Degrees(f)
			}
			*dst = f
		}
	}
	get("b", &j.Base)
	get("s", &j.Shoulder)
	get("e", &j.Elbow)
	get("h", &j.Hand)
	get("w", &j.Wrist)
	get("g", &j.Grip)
	return j
}

// MoveToPosition merges the update over the cached pose (factory pose
// when nothing is cached yet) and dispatches a complete cartesian move.
func (c *Controller) MoveToPosition(ctx context.Context, u PositionUpdate) error {
	return c.do(ctx, func() error {
		cur := DefaultPosition()
		if c.st.position != nil {
			cur = *c.st.position
		}
		merged := mergePosition(cur, u)

		raw := command.Raw{"x": merged.X, "y": merged.Y, "z": merged.Z, "t": merged.T}
		if u.Speed != nil {
			raw["spd"] = *u.Speed
		}
		if u.Acc != nil {
			raw["acc"] = *u.Acc
		}

		v, err := command.Validate(command.CmdPosition, raw)
		if err != nil {
			return err
		}
		if _, err := c.dispatch(v); err != nil {
			return err
		}
		p := positionFromValidated(v, merged)
		c.st.position = &p
		return nil
	})
}

func positionFromValidated(v command.Validated, base Position) Position {
	p := base
	get := func(name string, dst *float64) {
		if val, ok := v.Value(name); ok {
			*dst = val.(float64)
		}
	}
	get("x", &p.X)
	get("y", &p.Y)
	get("z", &p.Z)
	get("t", &p.T)
	return p
}

// queryFeedback asks the arm for its pose. A reply that matches no
// known shape is logged and reported as ok=false with a zero Feedback;
// the caller still sees success. Parsed replies refresh both caches.
func (c *Controller) queryFeedback(ctx context.Context) (fb command.Feedback, ok bool, err error) {
	err = c.exec(ctx, command.CmdFeedback, nil, func(_ command.Validated, reply []byte) {
		parsed, perr := command.ParseFeedback(reply)
		if perr != nil {
			c.logger.Warn("unreadable feedback, using zero values", "err", perr)
			return
		}
		ok = true
		fb = parsed

		p := Position{X: parsed.X, Y: parsed.Y, Z: parsed.Z, T: parsed.T}
		c.st.position = &p
		degs := make([]float64, len(parsed.Joints))
		for i, r := range parsed.Joints {
			degs[i] = Degrees(r)
		}
		j := JointsFromSlice(degs)
		c.st.joints = &j
	})
	return fb, ok, err
}

// GetPosition queries the arm's pose. An unreadable reply returns the
// zero pose without error.
func (c *Controller) GetPosition(ctx context.Context) (Position, error) {
	fb, _, err := c.queryFeedback(ctx)
	if err != nil {
		return Position{}, err
	}
	return Position{X: fb.X, Y: fb.Y, Z: fb.Z, T: fb.T}, nil
}

// GetJoints queries joint angles in degrees. An unreadable reply
// returns zero angles without error.
func (c *Controller) GetJoints(ctx context.Context) (Joints, error) {
	fb, _, err := c.queryFeedback(ctx)
	if err != nil {
		return Joints{}, err
	}
	degs := make([]float64, len(fb.Joints))
	for i, r := range fb.Joints {
		degs[i] = Degrees(r)
	}
	return JointsFromSlice(degs), nil
}

// GetJointsRad queries joint angles in radians as the firmware reports
// them, sized to the model's joint count.
func (c *Controller) GetJointsRad(ctx context.Context) ([]float64, error) {
	fb, ok, err := c.queryFeedback(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]float64, c.model.JointCount())
	if ok {
		copy(out, fb.Joints)
	}
	return out, nil
}

// SetTorque engages or releases joint torque. A released arm can be
// moved by hand.
func (c *Controller) SetTorque(ctx context.Context, on bool) error {
	cmd := 0
	if on {
		cmd = 1
	}
	return c.exec(ctx, command.CmdTorque, command.Raw{"cmd": cmd}, func(command.Validated, []byte) {
		c.st.torque = on
	})
}

// SetLED sets overall LED brightness, 0 to 255.
func (c *Controller) SetLED(ctx context.Context, brightness int) error {
	return c.exec(ctx, command.CmdLED, command.Raw{"led": brightness}, nil)
}

// SetLEDColor sets the LED color channels, each 0 to 255.
func (c *Controller) SetLEDColor(ctx context.Context, r, g, b int) error {
	return c.exec(ctx, command.CmdLED, command.Raw{"r": r, "g": g, "b": b}, nil)
}

// PIDGains carries optional per-term gains; nil leaves a term at its
// current value.
type PIDGains struct {
	P *int
	I *int
	D *int
}

// SetPID tunes servo gains for one joint.
func (c *Controller) SetPID(ctx context.Context, joint int, gains PIDGains) error {
	raw := command.Raw{"joint": joint}
	if gains.P != nil {
		raw["p"] = *gains.P
	}
	if gains.I != nil {
		raw["i"] = *gains.I
	}
	if gains.D != nil {
		raw["d"] = *gains.D
	}
	return c.exec(ctx, command.CmdPID, raw, nil)
}

// AdaptThresholds carries optional per-joint force thresholds for
// dynamic external force adaptation; nil leaves a joint at its current
// value.
type AdaptThresholds struct {
	Base     *int
	Shoulder *int
	Elbow    *int
	Hand     *int
}

// SetDynamicAdaptation switches force adaptation on or off and applies
// any supplied thresholds.
func (c *Controller) SetDynamicAdaptation(ctx context.Context, on bool, th AdaptThresholds) error {
	mode := 0
	if on {
		mode = 1
	}
	raw := command.Raw{"mode": mode}
	if th.Base != nil {
		raw["b"] = *th.Base
	}
	if th.Shoulder != nil {
		raw["s"] = *th.Shoulder
	}
	if th.Elbow != nil {
		raw["e"] = *th.Elbow
	}
	if th.Hand != nil {
		raw["h"] = *th.Hand
	}
	return c.exec(ctx, command.CmdAdapt, raw, nil)
}

// SetMiddlePosition stores the current pose as the servo middle
// position on the device.
func (c *Controller) SetMiddlePosition(ctx context.Context) error {
	return c.exec(ctx, command.CmdSetMiddle, nil, nil)
}

// Gripper sets the gripper mode (0 free, 1 angle controlled). A
// non-negative angle also sets the opening, 0 to 100.
func (c *Controller) Gripper(ctx context.Context, mode int, angle float64) error {
	raw := command.Raw{"mode": mode}
	if angle >= 0 {
		raw["angle"] = angle
	}
	return c.exec(ctx, command.CmdGripper, raw, nil)
}

// Raw sends a line as-is, bypassing validation, for firmware commands
// the registry does not cover. With wantReply the next reply line is
// returned.
func (c *Controller) Raw(ctx context.Context, line []byte, wantReply bool) ([]byte, error) {
	var reply []byte
	err := c.do(ctx, func() error {
		if !c.st.connected {
			return ErrNotConnected
		}
		if !wantReply {
			return c.comm.SendRaw(line)
		}
		r, err := c.comm.SendCommand(line, c.cmdTimeout)
		if err != nil {
			return err
		}
		reply = r
		return nil
	})
	return reply, err
}
