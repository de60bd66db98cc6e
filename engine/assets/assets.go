package assets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spaghettifunk/regfile/engine/assets/loaders"
	"github.com/spaghettifunk/regfile/engine/core"
	"github.com/spaghettifunk/regfile/engine/renderer/metadata"
)

type CatalogInfo struct {
	Path       string
	Name       string
	LastLoaded time.Time
	Catalog    *metadata.Catalog
}

// CatalogManager indexes the constant catalogs below a directory and, when
// watching, loads them again whenever they change on disk. Every load fires
// EventCodeCatalogLoaded or EventCodeCatalogReloaded.
type CatalogManager struct {
	catalogs map[string]*CatalogInfo
	loaders  map[metadata.ResourceType]Loader

	mutex sync.RWMutex

	done     chan struct{}
	wg       sync.WaitGroup
	fsnotify *fsnotify.Watcher
	isClosed bool
}

func NewCatalogManager() *CatalogManager {
	cm := &CatalogManager{
		catalogs: make(map[string]*CatalogInfo),
		loaders:  make(map[metadata.ResourceType]Loader),
		done:     make(chan struct{}),
	}
	cm.registerLoader(metadata.ResourceTypeConstantCatalog, &loaders.CatalogLoader{})
	return cm
}

/**
 * @brief Loads every catalog below dir and optionally starts watching it.
 *
 * @param dir The catalog directory.
 * @param watch Reload catalogs when they change.
 * @return An error if the directory cannot be walked or the watcher cannot start.
 */
func (cm *CatalogManager) Initialize(dir string, watch bool) error {
	if watch {
		fsWatch, err := fsnotify.NewWatcher()
		if err != nil {
			return err
		}
		cm.fsnotify = fsWatch
		cm.wg.Add(1)
		go cm.start()
	}
	return cm.watchRecursive(dir, false)
}

// Register loaders for each asset type
func (cm *CatalogManager) registerLoader(assetType metadata.ResourceType, loader Loader) {
	cm.loaders[assetType] = loader
}

/**
 * @brief Loads (or reloads) the catalog at path. A catalog that fails to load keeps
 * the last good version.
 */
func (cm *CatalogManager) LoadCatalog(path string) (*metadata.Catalog, error) {
	assetType := determineAssetType(path)
	loader, ok := cm.loaders[assetType]
	if !ok {
		return nil, fmt.Errorf("no loader registered for asset '%s'", path)
	}
	res, err := loader.Load(path, assetType, nil)
	if err != nil {
		core.LogError("%s", err)
		return nil, err
	}
	catalog := res.Data.(*metadata.Catalog)

	cm.mutex.Lock()
	_, reloaded := cm.catalogs[path]
	cm.catalogs[path] = &CatalogInfo{
		Path:       path,
		Name:       catalog.Name,
		LastLoaded: time.Now(),
		Catalog:    catalog,
	}
	cm.mutex.Unlock()

	code := core.EventCodeCatalogLoaded
	if reloaded {
		code = core.EventCodeCatalogReloaded
		core.LogInfo("catalog '%s' reloaded from %s", catalog.Name, path)
	} else {
		core.LogDebug("catalog '%s' loaded from %s", catalog.Name, path)
	}
	ctx := core.EventContext{}
	ctx.Data.C[0] = catalog.Name
	ctx.Data.C[1] = path
	core.EventFire(code, cm, ctx)

	return catalog, nil
}

// Catalog returns the most recently loaded catalog called name.
func (cm *CatalogManager) Catalog(name string) (*metadata.Catalog, bool) {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()
	for _, info := range cm.catalogs {
		if info.Name == name {
			return info.Catalog, true
		}
	}
	return nil, false
}

// Catalogs returns every indexed catalog ordered by path.
func (cm *CatalogManager) Catalogs() []CatalogInfo {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()
	out := make([]CatalogInfo, 0, len(cm.catalogs))
	for _, info := range cm.catalogs {
		out = append(out, *info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

func (cm *CatalogManager) Shutdown() error {
	cm.mutex.Lock()
	if cm.isClosed {
		cm.mutex.Unlock()
		return errors.New("catalog manager already closed")
	}
	cm.isClosed = true
	cm.mutex.Unlock()

	close(cm.done)
	cm.wg.Wait()
	return nil
}

func (cm *CatalogManager) start() {
	defer cm.wg.Done()
	for {
		select {
		case e, ok := <-cm.fsnotify.Events:
			if !ok {
				return
			}
			s, err := os.Stat(e.Name)
			if err == nil && s != nil && s.IsDir() {
				if e.Op&fsnotify.Create != 0 {
					if err := cm.watchRecursive(e.Name, false); err != nil {
						core.LogError("%s", err)
					}
				}
				continue
			}
			// Handle create or modify events
			if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				cm.handleFileEvent(e.Name)
			}
			if e.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				cm.removeCatalog(e.Name)
			}

		case err, ok := <-cm.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError("%s", err)

		case <-cm.done:
			cm.fsnotify.Close()
			return
		}
	}
}

// watchRecursive loads every catalog below path and, when a watcher is
// running, adds (or removes) every directory to its watch list.
func (cm *CatalogManager) watchRecursive(path string, unWatch bool) error {
	return filepath.Walk(path, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			if cm.fsnotify == nil {
				return nil
			}
			if unWatch {
				return cm.fsnotify.Remove(walkPath)
			}
			return cm.fsnotify.Add(walkPath)
		}
		cm.handleFileEvent(walkPath)
		return nil
	})
}

// Handle the creation or modification of a file
func (cm *CatalogManager) handleFileEvent(path string) {
	if determineAssetType(path) == metadata.ResourceTypeNone {
		return
	}
	// Errors are logged by LoadCatalog; the previous version stays active.
	_, _ = cm.LoadCatalog(path)
}

// Remove the catalog from the index if it was deleted
func (cm *CatalogManager) removeCatalog(path string) {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()
	delete(cm.catalogs, path)
}

func determineAssetType(path string) metadata.ResourceType {
	switch filepath.Ext(path) {
	case loaders.CatalogExtension:
		return metadata.ResourceTypeConstantCatalog
	default:
		return metadata.ResourceTypeNone
	}
}
