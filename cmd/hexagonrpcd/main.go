package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/linux-msm/hexagonrpc"
	"github.com/linux-msm/hexagonrpc/internal/config"
	"github.com/linux-msm/hexagonrpc/internal/logging"
)

// stringList collects repeatable flags (-p may be given several times)
type stringList []string

func (l *stringList) String() string {
	return fmt.Sprint([]string(*l))
}

func (l *stringList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

func main() {
	os.Exit(run())
}

func run() int {
	var clients stringList
	var (
		configPath = flag.String("config", "", "YAML configuration file")
		device     = flag.String("f", "", "FastRPC device node to attach to")
		shellELF   = flag.String("c", "", "Create a new pd running the specified ELF")
		dsp        = flag.String("d", "", "DSP name")
		rootDir    = flag.String("R", "", "Root directory of served files")
		attachSNS  = flag.Bool("s", false, "Attach to sensorspd")
		verbose    = flag.Bool("v", false, "Verbose output")
	)
	flag.Var(&clients, "p", "Run client program with shared file descriptor (repeatable)")
	flag.Parse()

	// Config file first, flags override.
	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			return 1
		}
		cfg = loaded
	}
	if *device != "" {
		cfg.Device = *device
	}
	if *dsp != "" {
		cfg.DSP = *dsp
	}
	if *rootDir != "" {
		cfg.Root = *rootDir
	}
	if *shellELF != "" {
		cfg.ShellELF = *shellELF
	}
	if *attachSNS {
		cfg.AttachSensors = true
	}
	cfg.Clients = append(cfg.Clients, clients...)

	if cfg.Device == "" {
		flag.Usage()
		return 1
	}

	logConfig := logging.DefaultConfig()
	logConfig.Level = logging.ParseLevel(cfg.LogLevel)
	if *verbose {
		logConfig.Level = logging.LevelDebug
	}
	logger := logging.NewLogger(logConfig)
	logging.SetDefault(logger)

	if cfg.ShellELF != "" {
		// Shell PD creation needs dma-buf export, which this daemon
		// does not carry.
		logger.Error("shell PD creation is not supported", "elf", cfg.ShellELF)
		return 1
	}

	channel, err := hexagonrpc.Open(cfg.Device)
	if err != nil {
		logger.Error("could not open FastRPC node", "device", cfg.Device, "error", err)
		return 1
	}
	defer channel.Close()

	if cfg.AttachSensors {
		err = channel.AttachSensors()
	} else {
		err = channel.Attach()
	}
	if err != nil {
		logger.Error("could not attach to FastRPC node", "device", cfg.Device, "error", err)
		return 1
	}

	logger.Info("attached to FastRPC node",
		"device", cfg.Device,
		"dsp", cfg.DSP,
		"sensors", cfg.AttachSensors)

	procs, err := startClients(channel, cfg.Clients, logger)
	if err != nil {
		logger.Error("could not start client programs", "error", err)
		return 1
	}
	defer terminateClients(procs, logger)

	if err := hexagonrpc.RegisterDefaultListener(channel); err != nil {
		logger.Error("could not register ADSP default listener", "error", err)
		return 1
	}

	reg := hexagonrpc.NewRegistry()
	reg.Register(hexagonrpc.AppsStdInterface(cfg.Root))
	reg.Register(hexagonrpc.AppsMemInterface(channel))

	metrics := hexagonrpc.NewMetrics()
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- hexagonrpc.Serve(channel, reg, &hexagonrpc.ServeOptions{
			MaxPrimIn: cfg.MaxListenerInput,
			Logger:    logger,
			Observer:  hexagonrpc.NewMetricsObserver(metrics),
		})
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", "signal", sig)
	case err := <-serveErr:
		logger.Error("listener terminated", "error", err)
	}

	metrics.Stop()
	snap := metrics.Snapshot()
	logger.Info("session finished",
		"dispatches", snap.Dispatches,
		"dispatch_errors", snap.DispatchErrors,
		"uptime_s", snap.UptimeSeconds)

	return 0
}

// startClients spawns the configured client programs with the session
// descriptor exported through the environment. The descriptor lands on
// fd 3 in each child.
func startClients(channel *hexagonrpc.Channel, progs []string, logger *logging.Logger) ([]*exec.Cmd, error) {
	var procs []*exec.Cmd

	for _, prog := range progs {
		cmd := exec.Command(prog)
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		cmd.ExtraFiles = []*os.File{os.NewFile(uintptr(channel.Fd()), "fastrpc")}
		cmd.Env = append(os.Environ(),
			hexagonrpc.EnvChannelFd+"="+strconv.Itoa(3))

		if err := cmd.Start(); err != nil {
			terminateClients(procs, logger)
			return nil, fmt.Errorf("could not start %s: %w", prog, err)
		}

		logger.Info("started client program", "prog", prog, "pid", cmd.Process.Pid)
		procs = append(procs, cmd)
	}

	return procs, nil
}

// terminateClients sends SIGTERM to every client. The daemon does not
// wait for them.
func terminateClients(procs []*exec.Cmd, logger *logging.Logger) {
	for _, cmd := range procs {
		if cmd.Process == nil {
			continue
		}
		if err := cmd.Process.Signal(syscall.SIGTERM); err != nil {
			logger.Warn("could not terminate client", "pid", cmd.Process.Pid, "error", err)
		}
	}
}
