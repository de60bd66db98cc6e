package systems

import (
	"github.com/spaghettifunk/regfile/engine/assets"
	"github.com/spaghettifunk/regfile/engine/core"
)

type SystemManager struct {
	jobSystem            *JobSystem
	constantBufferSystem *ConstantBufferSystem
	catalogManager       *assets.CatalogManager
}

func NewSystemManager(cfg *core.Config) (*SystemManager, error) {
	js, err := NewJobSystem(cfg.Jobs.Workers, cfg.Jobs.QueueSize)
	if err != nil {
		return nil, err
	}
	cbs, err := NewConstantBufferSystem(&ConstantBufferSystemConfig{
		MaxBufferCount: cfg.Systems.MaxBufferCount,
		Linker:         cfg.Linker,
	}, js)
	if err != nil {
		js.Shutdown()
		return nil, err
	}
	sm := &SystemManager{
		jobSystem:            js,
		constantBufferSystem: cbs,
		catalogManager:       assets.NewCatalogManager(),
	}
	// Catalogs are linked as soon as they are loaded, and again whenever the
	// file changes.
	core.EventRegister(core.EventCodeCatalogLoaded, sm, sm.onCatalogLoaded)
	core.EventRegister(core.EventCodeCatalogReloaded, sm, sm.onCatalogLoaded)
	return sm, nil
}

// LoadCatalogs indexes dir and links every catalog found in it.
func (sm *SystemManager) LoadCatalogs(dir string, watch bool) error {
	return sm.catalogManager.Initialize(dir, watch)
}

func (sm *SystemManager) onCatalogLoaded(code core.SystemEventCode, sender interface{}, listenerInst interface{}, data core.EventContext) bool {
	cm, ok := sender.(*assets.CatalogManager)
	if !ok || cm != sm.catalogManager {
		return false
	}
	catalog, ok := cm.Catalog(data.Data.C[0])
	if !ok {
		core.LogWarn("catalog '%s' vanished before it could be linked", data.Data.C[0])
		return false
	}
	// A failed link is already logged; the previous linker stays registered.
	_ = sm.constantBufferSystem.RegisterCatalog(catalog.Name, catalog)
	return false
}

func (sm *SystemManager) Shutdown() error {
	core.EventUnregister(core.EventCodeCatalogLoaded, sm)
	core.EventUnregister(core.EventCodeCatalogReloaded, sm)
	if err := sm.catalogManager.Shutdown(); err != nil {
		core.LogDebug("catalog manager: %s", err.Error())
	}
	if err := sm.constantBufferSystem.Shutdown(); err != nil {
		return err
	}
	if err := sm.jobSystem.Shutdown(); err != nil {
		return err
	}
	return nil
}

func (sm *SystemManager) JobSystem() *JobSystem {
	return sm.jobSystem
}

func (sm *SystemManager) ConstantBufferSystem() *ConstantBufferSystem {
	return sm.constantBufferSystem
}

func (sm *SystemManager) CatalogManager() *assets.CatalogManager {
	return sm.catalogManager
}
