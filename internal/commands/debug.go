package commands

import (
	"errors"
	"flag"
	"fmt"
	"strconv"

	"github.com/go-gl/mathgl/mgl64"

	"ragdoll-rig/internal/control"
	"ragdoll-rig/internal/logger"
)

// Pauser stops and restarts the simulation clock.
type Pauser interface {
	Pause()
	Resume()
}

// RegisterDebugCommands adds the debug panel commands driving loop:
//
//	set <param> <value> [<param> <value>...]
//	get <param>
//	release -hand left|right|both
//	walk -x X -z Z
//	pause, resume
//	cancel (drops the pending script)
//	help
func RegisterDebugCommands(reg *Registry, loop *control.Loop, p Pauser, log *logger.Logger) {
	set := flag.NewFlagSet("set", flag.ContinueOnError)
	reg.Register("set", "set <param> <value>...", set, func() error {
		args := set.Args()
		if len(args) == 0 || len(args)%2 != 0 {
			return errors.New("set: want <param> <value> pairs")
		}
		for i := 0; i < len(args); i += 2 {
			v, err := strconv.ParseFloat(args[i+1], 64)
			if err != nil {
				return fmt.Errorf("set %s: %w", args[i], err)
			}
			if err := loop.Params().Set(args[i], v); err != nil {
				return err
			}
		}
		return nil
	})

	get := flag.NewFlagSet("get", flag.ContinueOnError)
	reg.Register("get", "get <param>", get, func() error {
		if get.NArg() != 1 {
			return errors.New("get: want one param")
		}
		v, err := loop.Params().Get(get.Arg(0))
		if err != nil {
			return err
		}
		log.Logf("%s = %.3f", get.Arg(0), v)
		return nil
	})

	release := flag.NewFlagSet("release", flag.ContinueOnError)
	hand := release.String("hand", "both", "left, right or both")
	reg.Register("release", "release -hand left|right|both", release, func() error {
		switch *hand {
		case "left":
			loop.ReleaseLeftHand()
		case "right":
			loop.ReleaseRightHand()
		case "both":
			loop.ReleaseLeftHand()
			loop.ReleaseRightHand()
		default:
			return fmt.Errorf("release: unknown hand %q", *hand)
		}
		return nil
	})

	walk := flag.NewFlagSet("walk", flag.ContinueOnError)
	x := walk.Float64("x", 0, "target x")
	z := walk.Float64("z", 0, "target z")
	reg.Register("walk", "walk -x X -z Z", walk, func() error {
		loop.MoveToward(mgl64.Vec3{*x, 0, *z})
		return nil
	})

	reg.Register("pause", "pause", nil, func() error {
		p.Pause()
		return nil
	})
	reg.Register("resume", "resume", nil, func() error {
		p.Resume()
		return nil
	})

	reg.Register("cancel", "cancel", nil, func() error {
		tl := loop.Timeline()
		if tl == nil {
			return errors.New("cancel: no script timeline")
		}
		n := tl.Pending()
		tl.Cancel()
		log.Logf("script cancelled, %d entries dropped", n)
		return nil
	})

	reg.Register("help", "help", nil, func() error {
		for _, n := range reg.Names() {
			log.Log(reg.Usage(n))
		}
		log.Logf("params: %v", control.ParamNames())
		return nil
	})
}
