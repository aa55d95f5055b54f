package main

import (
	"flag"
	"fmt"
	"net/url"
	"strings"

	rl "github.com/gen2brain/raylib-go/raylib"

	"simviewer/internal/assets"
	"simviewer/internal/commands"
	"simviewer/internal/debug"
	"simviewer/internal/graphics"
	"simviewer/internal/logger"
	"simviewer/internal/model"
	"simviewer/internal/panels"
	"simviewer/internal/picking"
	"simviewer/internal/reconcile"
	"simviewer/internal/scene"
	"simviewer/internal/scenegraph"
	"simviewer/internal/terminal"
	"simviewer/internal/transport"
	"simviewer/internal/viewerconfig"
	"simviewer/internal/wire"
)

func main() {
	log := logger.New()
	prefs, _ := viewerconfig.Load()

	client := transport.NewClient(prefs.ServerURL, log)
	models := model.NewRegistry()
	if err := models.LoadAppearances("assets/models.yaml"); err != nil {
		log.Logf("main: appearance overrides: %v", err)
	}
	cache := assets.New(log, client.BaseURL())
	rec := reconcile.New(log, models, cache)

	// Startup fetches run before the window opens; node creation needs no GL.
	// A dead backend just means an empty scene until the websocket connects.
	wsPort := prefs.WSPort
	if cfg, err := client.FetchConfig(); err != nil {
		log.Logf("main: fetch config: %v (using ws port %d)", err, wsPort)
	} else if cfg.WSPort != 0 {
		wsPort = cfg.WSPort
	}
	if def, err := client.FetchDefinition(); err != nil {
		log.Logf("main: fetch definition: %v", err)
	} else {
		rec.ApplyDefinition(def)
	}

	host := serverHost(prefs.ServerURL)
	sock := transport.Dial(host, wsPort, log)
	defer sock.Close()

	scn := scene.New()
	scn.SetGridVisible(prefs.GridVisible)
	renderer := scenegraph.NewRenderer()
	pick := &picking.Picker{}
	dbg := debug.New()
	dbg.SetShowFPS(prefs.ShowFPS)
	dbg.SetShowMemAlloc(prefs.ShowMemAlloc)

	pan := panels.New(log, client)

	// definitions carries background refetch results onto the main thread.
	definitions := make(chan *wire.Definition, 1)
	refetch := func() {
		go func() {
			def, err := client.FetchDefinition()
			if err != nil {
				log.Logf("main: refetch definition: %v", err)
				return
			}
			select {
			case definitions <- def:
			default:
			}
		}()
	}
	pan.Tree.OnSceneChanged = refetch

	reg := commands.NewRegistry()
	registerCommands(reg, log, rec, pan, scn, dbg, &prefs, refetch)
	term := terminal.New(log, reg)

	update := func() {
		term.Update()

		for drained := false; !drained; {
			select {
			case msg := <-sock.Messages:
				switch m := msg.(type) {
				case *wire.Definition:
					rec.ApplyDefinition(m)
				case *wire.StateUpdate:
					rec.UpdateFromState(m)
				case wire.Snapshot:
					rec.ApplySnapshot(m)
				}
			default:
				drained = true
			}
		}
		select {
		case def := <-definitions:
			rec.ApplyDefinition(def)
		default:
		}

		cache.Drain()
		pan.Update(rec)

		mouse := rl.GetMousePosition()
		if !term.IsOpen() {
			if rl.IsMouseButtonPressed(rl.MouseLeftButton) {
				if pan.HandlePress(mouse, rec) {
					pick.Cancel()
				} else {
					pick.Press(mouse)
				}
			}
			if rl.IsMouseButtonReleased(rl.MouseLeftButton) {
				if !pan.HandleRelease(mouse, rec) && pick.Release(mouse) {
					if id, ok := picking.Pick(mouse, scn.Camera, renderer, rec.Root()); ok {
						rec.Select(id)
						pan.Tree.Reveal(id, rec)
					} else {
						rec.Select("")
					}
				}
			}
			scn.Update(!pan.Contains(mouse))
		}

		cam := scn.Camera
		renderer.SetView(
			[3]float32{cam.Position.X, cam.Position.Y, cam.Position.Z},
			[3]float32{-0.4, -1, -0.3},
		)
	}

	draw := func() {
		rl.BeginMode3D(scn.Camera)
		scn.DrawBackdrop()
		renderer.Draw(rec.Root())
		rl.EndMode3D()
		pan.Draw(rec)
		term.Draw()
		dbg.Draw()
	}

	graphics.Run(prefs.WindowWidth, prefs.WindowHeight, "simviewer", update, draw)
}

// serverHost extracts the hostname from the backend base URL for the
// websocket dial. Falls back to localhost on unparsable input.
func serverHost(base string) string {
	u, err := url.Parse(base)
	if err != nil || u.Hostname() == "" {
		return "localhost"
	}
	return u.Hostname()
}

// registerCommands wires the terminal commands. Toggles persist to prefs so
// the next run starts the same way.
func registerCommands(
	reg *commands.Registry,
	log *logger.Logger,
	rec *reconcile.Reconciler,
	pan *panels.Panels,
	scn *scene.Scene,
	dbg *debug.Debug,
	prefs *viewerconfig.Prefs,
	refetch func(),
) {
	save := func() {
		if err := viewerconfig.Save(*prefs); err != nil {
			log.Logf("main: save prefs: %v", err)
		}
	}
	toggle := func(args []string, cur bool) bool {
		switch {
		case len(args) == 0:
			return !cur
		case args[0] == "on":
			return true
		default:
			return false
		}
	}

	reg.Register("grid", flag.NewFlagSet("grid", flag.ContinueOnError), func(args []string) error {
		prefs.GridVisible = toggle(args, prefs.GridVisible)
		scn.SetGridVisible(prefs.GridVisible)
		save()
		return nil
	})
	reg.Register("fps", flag.NewFlagSet("fps", flag.ContinueOnError), func(args []string) error {
		prefs.ShowFPS = toggle(args, prefs.ShowFPS)
		dbg.SetShowFPS(prefs.ShowFPS)
		save()
		return nil
	})
	reg.Register("memalloc", flag.NewFlagSet("memalloc", flag.ContinueOnError), func(args []string) error {
		prefs.ShowMemAlloc = toggle(args, prefs.ShowMemAlloc)
		dbg.SetShowMemAlloc(prefs.ShowMemAlloc)
		save()
		return nil
	})
	reg.Register("select", flag.NewFlagSet("select", flag.ContinueOnError), func(args []string) error {
		if len(args) == 0 {
			rec.Select("")
			return nil
		}
		id := args[0]
		if _, ok := rec.Component(id); !ok {
			return fmt.Errorf("unknown component: %s", id)
		}
		rec.Select(id)
		pan.Tree.Reveal(id, rec)
		return nil
	})
	reg.Register("focus", flag.NewFlagSet("focus", flag.ContinueOnError), func(args []string) error {
		id := rec.Selected()
		if len(args) > 0 {
			id = args[0]
		}
		n, ok := rec.Node(id)
		if !ok {
			return fmt.Errorf("nothing to focus")
		}
		world := worldOf(rec, n)
		scn.Focus(rl.NewVector3(world.M12, world.M13, world.M14))
		return nil
	})
	reg.Register("refresh", flag.NewFlagSet("refresh", flag.ContinueOnError), func(args []string) error {
		refetch()
		return nil
	})
	reg.Register("help", flag.NewFlagSet("help", flag.ContinueOnError), func(args []string) error {
		log.Log("commands: " + strings.Join(reg.Names(), ", "))
		return nil
	})
}

// worldOf composes a node's world matrix by walking its parent chain.
func worldOf(rec *reconcile.Reconciler, n *scenegraph.Node) rl.Matrix {
	var chain []*scenegraph.Node
	for cur := n; cur != nil; cur = cur.Parent {
		chain = append(chain, cur)
	}
	world := rl.MatrixIdentity()
	for i := len(chain) - 1; i >= 0; i-- {
		world = chain[i].WorldMatrix(world)
	}
	return world
}
