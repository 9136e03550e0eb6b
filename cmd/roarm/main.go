package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/jessevdk/go-flags"

	"github.com/roarm-dev/roarm/internal/config"
	"github.com/roarm-dev/roarm/internal/logging"
	"github.com/roarm-dev/roarm/pkg/robot"
)

type Options struct {
	Config  string `long:"config" description:"Config file (default ~/.roarm/config.toml, ./roarm.toml)"`
	Robot   string `long:"robot" short:"r" description:"Named robot profile from the config"`
	Port    string `long:"port" short:"p" description:"Serial port, overrides the profile"`
	Model   string `long:"model" short:"m" description:"Arm model: m2 or m3"`
	Baud    int    `long:"baud" description:"Serial baud rate"`
	Verbose bool   `long:"verbose" short:"v" description:"Debug logging"`

	Ports    PortsCommand    `command:"ports" description:"List serial ports"`
	Commands CommandsCommand `command:"commands" description:"List wire commands the firmware understands"`
	Robots   RobotsCommand   `command:"robots" description:"List configured robot profiles"`
	Status   StatusCommand   `command:"status" description:"Show connection state and current pose"`
	Home     HomeCommand     `command:"home" description:"Move all joints to the home pose"`
	Move     MoveCommand     `command:"move" description:"Move the end effector to a cartesian pose"`
	Joint    JointCommand    `command:"joint" description:"Move a single joint"`
	Joints   JointsCommand   `command:"joints" description:"Move several joints at once"`
	Gripper  GripperCommand  `command:"gripper" description:"Set gripper mode and opening"`
	Torque   TorqueCommand   `command:"torque" description:"Engage or release joint torque"`
	LED      LEDCommand      `command:"led" description:"Set LED brightness or color"`
	PID      PIDCommand      `command:"pid" description:"Tune servo PID gains"`
	Adapt    AdaptCommand    `command:"adapt" description:"Configure dynamic force adaptation"`
	Middle   MiddleCommand   `command:"set-middle" description:"Store the current pose as the servo middle position"`
	Teach    TeachCommand    `command:"teach" description:"Record a motion by guiding the arm by hand"`
	Replay   ReplayCommand   `command:"replay" description:"Replay a recorded motion"`
	Mission  MissionCommand  `command:"mission" description:"Manage missions stored on the device"`
	Raw      RawCommand      `command:"raw" description:"Send a raw JSON command line"`
}

var opts Options
var parser = flags.NewParser(&opts, flags.Default)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func main() {
	parser.LongDescription = "roarm - control RoArm serial robot arms over their JSON wire protocol"

	_, err := parser.Parse()
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				os.Exit(0)
			}
		}
		os.Exit(1)
	}
}

func loadConfig() (config.Config, error) {
	overrides := make(map[string]any)
	if opts.Baud > 0 {
		overrides["serial.baud"] = opts.Baud
	}
	if opts.Verbose {
		overrides["log_level"] = "debug"
	}
	return config.Load(config.LoadOptions{
		ConfigPath:    opts.Config,
		FlagOverrides: overrides,
	})
}

func newLogger(cfg config.Config) *log.Logger {
	o := logging.DefaultOptions()
	o.Level = cfg.LogLevel
	return logging.New(o)
}

// openRobot resolves the target arm from flags and config, builds its
// controller and connects. The caller must Close the controller.
func openRobot(ctx context.Context) (*robot.Controller, config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, config.Config{}, err
	}

	profile, found := cfg.Robot(opts.Robot)
	if opts.Robot != "" && !found {
		return nil, cfg, fmt.Errorf("no robot %q in the config (have %d profiles)", opts.Robot, len(cfg.Robots))
	}

	port := profile.Port
	if opts.Port != "" {
		port = opts.Port
	}
	if port == "" {
		return nil, cfg, fmt.Errorf("no serial port configured: pass --port or add a robot profile (run 'roarm ports' to list candidates)")
	}

	modelName := profile.Model
	if opts.Model != "" {
		modelName = opts.Model
	}
	model, err := robot.ParseModel(modelName)
	if err != nil {
		return nil, cfg, err
	}

	name := profile.Name
	if name == "" {
		name = "arm"
	}

	ctrl := robot.NewController(robot.Config{
		Name:           name,
		Port:           port,
		Model:          model,
		Baud:           cfg.Serial.Baud,
		CommandTimeout: time.Duration(cfg.Serial.TimeoutMS) * time.Millisecond,
		MoveTimeout:    time.Duration(cfg.Serial.MoveTimeoutMS) * time.Millisecond,
		Logger:         newLogger(cfg),
	})
	if err := ctrl.Connect(ctx); err != nil {
		ctrl.Close()
		return nil, cfg, err
	}
	return ctrl, cfg, nil
}
