// Command rigsim builds a ragdoll dance scenario and runs it in a window or headless.
package main

import (
	"flag"
	"fmt"
	"os"

	"ragdoll-rig/internal/engineconfig"
	"ragdoll-rig/internal/env"
	"ragdoll-rig/internal/graphics"
	"ragdoll-rig/internal/logger"
	"ragdoll-rig/internal/scenario"
)

// Flag defaults can be overridden by RIGSIM_* variables, from the environment or a .env file.
func main() {
	if err := env.Load(".env"); err != nil {
		fmt.Fprintln(os.Stderr, "rigsim: .env:", err)
	}
	var (
		scenarioPath = flag.String("scenario", env.String("SCENARIO", ""), "scenario YAML file (default: last used, else the built-in basic turn)")
		headless     = flag.Bool("headless", env.Bool("HEADLESS", false), "run without a window and print the final body positions")
		steps        = flag.Int("steps", env.Int("STEPS", 360), "ticks to run in headless mode")
		logPath      = flag.String("log", env.String("LOG", logger.LogFilePath), "log file, empty keeps the log in memory")
		prefsPath    = flag.String("prefs", env.String("PREFS", engineconfig.EngineConfigPath), "viewer preferences file")
		live         = flag.Bool("live", env.Bool("LIVE", false), "drive the leader from a keyboard-posed headset instead of the debug panel")
	)
	flag.Parse()

	if err := run(*scenarioPath, *headless, *live, *steps, *logPath, *prefsPath); err != nil {
		fmt.Fprintln(os.Stderr, "rigsim:", err)
		os.Exit(1)
	}
}

func run(scenarioPath string, headless, live bool, steps int, logPath, prefsPath string) error {
	prefs, _ := engineconfig.LoadFrom(prefsPath)
	if scenarioPath == "" && !headless {
		scenarioPath = prefs.LastScenario
	}

	sc := scenario.Default()
	if scenarioPath != "" {
		var err error
		if sc, err = scenario.Load(scenarioPath); err != nil {
			return err
		}
	}

	log := logger.NewAt(logPath)
	opts := scenario.Options{Log: log}
	var desk *deskHeadset
	if live {
		desk = newDeskHeadset()
		opts.Tracker = desk.tracker
	}
	sim, err := scenario.Build(sc, opts)
	if err != nil {
		return err
	}

	if headless {
		sim.Run(steps)
		sim.LogBodies()
		for _, line := range log.Lines() {
			fmt.Println(line)
		}
		return nil
	}

	v := newViewer(sim, &prefs, log)
	v.desk = desk
	graphics.Run("rigsim - "+sc.Name, v.update, v.draw, v.close)
	prefs.LastScenario = scenarioPath
	return engineconfig.SaveTo(prefsPath, prefs)
}
