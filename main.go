/*
regfile links the constant catalogs of a shader onto the register file,
prints the resulting declarations and dry-runs the transfer of every buffer
against a recording binder.
*/
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync/atomic"
	"syscall"

	"github.com/spaghettifunk/regfile/engine/core"
	"github.com/spaghettifunk/regfile/engine/renderer"
	"github.com/spaghettifunk/regfile/engine/systems"
)

func main() {
	configPath := flag.String("config", "", "path to the TOML configuration file")
	catalogPath := flag.String("catalog", "", "catalog file or directory (defaults to assets.catalog_dir)")
	bufferList := flag.String("buffers", "", "comma separated buffers to declare (defaults to all)")
	watch := flag.Bool("watch", false, "re-link and print again whenever a catalog changes")
	debug := flag.Bool("debug-declarations", false, "emit banner comments in declarations")
	flag.Parse()

	cfg := core.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = core.LoadConfig(*configPath); err != nil {
			core.LogFatal("%s", err)
		}
	}
	if *watch {
		cfg.Assets.Watch = true
	}
	if *debug {
		cfg.Linker.DebugDeclarations = true
	}
	if err := core.SetLogLevel(cfg.LogLevel); err != nil {
		core.LogFatal("%s", err)
	}

	dir, selected := cfg.Assets.CatalogDir, ""
	if *catalogPath != "" {
		fi, err := os.Stat(*catalogPath)
		if err != nil {
			core.LogFatal("%s", err)
		}
		dir = *catalogPath
		if !fi.IsDir() {
			dir, selected = filepath.Dir(*catalogPath), filepath.Clean(*catalogPath)
		}
	}
	var buffers []string
	if *bufferList != "" {
		buffers = strings.Split(*bufferList, ",")
	}

	sm, err := systems.NewSystemManager(cfg)
	if err != nil {
		core.LogFatal("%s", err)
	}

	r := &reporter{sm: sm, selected: selected, buffers: buffers}
	// Fired by the constant buffer system after every successful link,
	// including the ones triggered by a changed catalog file.
	core.EventRegister(core.EventCodeConstantsLinked, r, r.onLinked)

	if err := sm.LoadCatalogs(dir, cfg.Assets.Watch); err != nil {
		core.LogFatal("%s", err)
	}
	r.reportAll()

	if cfg.Assets.Watch {
		core.LogInfo("watching %s for catalog changes", dir)
		// signal channel to capture system calls
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
		<-sigCh
	}

	core.EventUnregister(core.EventCodeConstantsLinked, r)
	if err := sm.Shutdown(); err != nil {
		core.LogError("%s", err)
	}
	m := core.MetricsFrame()
	core.LogInfo("applies=%d rebuilds=%d bytes=%d binds=%d", m.Applies, m.Rebuilds, m.BytesTransferred, m.Binds)
}

type reporter struct {
	sm       *systems.SystemManager
	selected string
	buffers  []string
	ready    atomic.Bool
}

func (r *reporter) onLinked(code core.SystemEventCode, sender interface{}, listenerInst interface{}, data core.EventContext) bool {
	core.LogInfo("catalog '%s' linked: %d buffers, %d types", data.Data.C[0], data.Data.U32[0], data.Data.U32[1])
	// The initial load is reported once everything is indexed.
	if r.ready.Load() {
		r.report(data.Data.C[0])
	}
	return false
}

func (r *reporter) reportAll() {
	for _, info := range r.sm.CatalogManager().Catalogs() {
		if r.selected != "" && filepath.Clean(info.Path) != r.selected {
			continue
		}
		r.report(info.Name)
	}
	r.ready.Store(true)
}

// report prints the declarations of a catalog and applies one instance of
// every buffer to a recording binder.
func (r *reporter) report(catalog string) {
	cbs := r.sm.ConstantBufferSystem()
	decl, err := cbs.Declarations(catalog, r.buffers...)
	if err != nil {
		core.LogError("%s", err)
		return
	}
	fmt.Printf("// catalog %s\n%s\n", catalog, decl)

	names := r.buffers
	if len(names) == 0 {
		c, ok := r.sm.CatalogManager().Catalog(catalog)
		if !ok {
			return
		}
		for i := range c.Buffers {
			names = append(names, c.Buffers[i].Name)
		}
	}
	refs, err := cbs.CreateBuffers(catalog, names)
	if err != nil {
		core.LogError("%s", err)
		return
	}
	defer func() {
		for _, ref := range refs {
			if err := cbs.DestroyBuffer(ref.ID); err != nil {
				core.LogError("%s", err)
			}
		}
	}()

	binder := renderer.NewRecordingBinder()
	for _, ref := range refs {
		if err := ref.Buffer.Apply(binder); err != nil {
			core.LogError("%s: %s", ref.Name, err.Error())
		}
	}
	for _, call := range binder.Calls() {
		core.LogInfo("%s c%d..c%d (%d registers)", call.Stage, call.Start, call.Start+call.Count-1, call.Count)
	}
}
