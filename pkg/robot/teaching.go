package robot

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/roarm-dev/roarm/pkg/command"
	"github.com/roarm-dev/roarm/pkg/trajectory"
)

// DefaultSampleInterval is the joint sampling period used when
// TeachOptions leaves it zero.
const DefaultSampleInterval = 100 * time.Millisecond

// TeachOptions configures StartTeaching.
type TeachOptions struct {
	// Filename receives the recording on StopTeaching.
	Filename string
	// SampleInterval is the period between joint queries.
	SampleInterval time.Duration
}

// teachSession is an active teach-by-demonstration recording. The
// sample slice is owned by the controller goroutine; the recorder only
// feeds the samples channel.
type teachSession struct {
	id       string
	filename string
	interval time.Duration
	samples  []trajectory.Sample
	cancel   context.CancelFunc
	done     chan struct{}
}

// teachSample tags a sample with its session so a sample still in
// flight when a session ends cannot leak into the next one.
type teachSample struct {
	session string
	sample  trajectory.Sample
}

// StartTeaching releases torque and starts sampling joint angles until
// StopTeaching. The arm can then be moved by hand; the motion is
// captured as a recording.
func (c *Controller) StartTeaching(ctx context.Context, opts TeachOptions) error {
	if opts.Filename == "" {
		return fmt.Errorf("teach: filename required")
	}
	interval := opts.SampleInterval
	if interval <= 0 {
		interval = DefaultSampleInterval
	}

	return c.do(ctx, func() error {
		if !c.st.connected {
			return ErrNotConnected
		}
		if c.st.teach != nil {
			return ErrAlreadyTeaching
		}

		// Torque off so the arm moves freely under hand guiding.
		v := command.MustValidate(command.CmdTorque, command.Raw{"cmd": 0})
		if _, err := c.dispatch(v); err != nil {
			return fmt.Errorf("release torque: %w", err)
		}
		c.st.torque = false

		// The recorder's lifetime is bound to the session, not to the
		// caller's context.
		rctx, cancel := context.WithCancel(context.Background())
		sess := &teachSession{
			id:       uuid.NewString(),
			filename: opts.Filename,
			interval: interval,
			cancel:   cancel,
			done:     make(chan struct{}),
		}
		c.st.teach = sess
		go c.record(rctx, sess)

		c.logger.Info("teaching started",
			"session", sess.id, "file", sess.filename, "interval", interval)
		return nil
	})
}

// record samples joints on a ticker until cancelled. It runs off the
// controller goroutine; queries go through the public API, which
// serializes them, and samples travel back over the samples channel.
func (c *Controller) record(ctx context.Context, sess *teachSession) {
	defer close(sess.done)

	ticker := time.NewTicker(sess.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rads, err := c.GetJointsRad(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				c.logger.Warn("teach sample failed", "session", sess.id, "err", err)
				continue
			}
			s := teachSample{
				session: sess.id,
				sample: trajectory.Sample{
					TimestampMS: time.Now().UnixMilli(),
					Joints:      rads,
				},
			}
			select {
			case c.samples <- s:
			default:
				// Keep sampling real-time; drop when the consumer lags.
				c.logger.Debug("sample dropped", "session", sess.id)
			}
		}
	}
}

// StopTeaching ends the session: sampling stops, torque re-engages, and
// the recording is written to the session's file and returned. A sample
// still in flight when the session ends may be lost.
func (c *Controller) StopTeaching(ctx context.Context) (trajectory.Recording, error) {
	var rec trajectory.Recording
	err := c.do(ctx, func() error {
		// Disconnect discards any active session, so a live session
		// implies a live connection.
		sess := c.st.teach
		if sess == nil {
			return ErrNotTeaching
		}
		sess.cancel()
		c.st.teach = nil

		// Collect samples already queued before the recorder saw the
		// cancellation.
		for draining := true; draining; {
			select {
			case ts := <-c.samples:
				if ts.session == sess.id {
					sess.samples = append(sess.samples, ts.sample)
				}
			default:
				draining = false
			}
		}

		v := command.MustValidate(command.CmdTorque, command.Raw{"cmd": 1})
		if _, err := c.dispatch(v); err != nil {
			// The recording is still worth keeping.
			c.logger.Warn("re-engage torque failed", "session", sess.id, "err", err)
		} else {
			c.st.torque = true
		}

		rec = trajectory.Recording(sess.samples)
		if err := rec.Save(sess.filename); err != nil {
			return fmt.Errorf("save recording: %w", err)
		}
		c.logger.Info("teaching stopped",
			"session", sess.id, "samples", len(rec), "file", sess.filename)
		return nil
	})
	return rec, err
}
