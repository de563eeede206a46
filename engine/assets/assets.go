package assets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/exp/slices"

	"github.com/spaghettifunk/anima-models/engine/assets/loaders"
	"github.com/spaghettifunk/anima-models/engine/core"
	"github.com/spaghettifunk/anima-models/engine/renderer/metadata"
)

var ErrAssetNotFound = errors.New("asset not found")

type AssetInfo struct {
	/** @brief The path relative to the assets directory, with forward slashes. */
	Name       string
	Path       string
	Type       metadata.ResourceType
	ModTime    time.Time
	LastLoaded time.Time
}

/** @brief Called from the watcher goroutine when an indexed asset changes. */
type ChangeHandler func(info AssetInfo, op fsnotify.Op)

/**
 * @brief Indexes an assets directory by file extension and dispatches loads
 * to the loader registered for each resource type.
 */
type AssetManager struct {
	directory string
	watch     bool

	assets  map[string]AssetInfo
	loaders map[metadata.ResourceType]Loader
	mutex   sync.RWMutex

	onChange ChangeHandler

	fsnotify *fsnotify.Watcher
	done     chan struct{}
	stopped  sync.WaitGroup
	isClosed bool
}

func NewAssetManager(cfg core.AssetsConfig) *AssetManager {
	am := &AssetManager{
		directory: filepath.Clean(cfg.Directory),
		watch:     cfg.Watch,
		assets:    make(map[string]AssetInfo),
		loaders:   make(map[metadata.ResourceType]Loader),
		done:      make(chan struct{}),
	}
	am.RegisterLoader(metadata.ResourceTypeImage, &loaders.ImageLoader{})
	am.RegisterLoader(metadata.ResourceTypeMaterial, &loaders.MaterialLibraryLoader{})
	return am
}

// Initialize indexes the assets directory and, when watching is enabled,
// starts following changes below it.
func (am *AssetManager) Initialize() error {
	info, err := os.Stat(am.directory)
	if err != nil {
		return fmt.Errorf("assets directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("assets directory: %s is not a directory", am.directory)
	}

	if am.watch {
		fsWatch, err := fsnotify.NewWatcher()
		if err != nil {
			return err
		}
		am.fsnotify = fsWatch
		am.stopped.Add(1)
		go am.start()
	}

	if err := am.watchRecursive(am.directory, false); err != nil {
		am.Shutdown()
		return err
	}
	core.LogInfo("Indexed %d assets in %s (watch: %v).", am.Count(), am.directory, am.watch)
	return nil
}

// Shutdown stops the watcher. The index stays readable.
func (am *AssetManager) Shutdown() {
	am.mutex.Lock()
	if am.isClosed {
		am.mutex.Unlock()
		return
	}
	am.isClosed = true
	am.mutex.Unlock()

	close(am.done)
	am.stopped.Wait()
}

// Register loaders for each asset type
func (am *AssetManager) RegisterLoader(assetType metadata.ResourceType, loader Loader) {
	am.mutex.Lock()
	defer am.mutex.Unlock()
	am.loaders[assetType] = loader
}

func (am *AssetManager) OnChange(handler ChangeHandler) {
	am.mutex.Lock()
	defer am.mutex.Unlock()
	am.onChange = handler
}

func (am *AssetManager) Count() int {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	return len(am.assets)
}

// Assets lists the indexed assets of a type sorted by name. ResourceTypeNone
// lists everything.
func (am *AssetManager) Assets(assetType metadata.ResourceType) []AssetInfo {
	am.mutex.RLock()
	defer am.mutex.RUnlock()

	names := make([]string, 0, len(am.assets))
	for name := range am.assets {
		names = append(names, name)
	}
	slices.Sort(names)
	out := make([]AssetInfo, 0, len(names))
	for _, name := range names {
		if a := am.assets[name]; assetType == metadata.ResourceTypeNone || a.Type == assetType {
			out = append(out, a)
		}
	}
	return out
}

// ResolvePath finds an asset either by its name relative to the assets
// directory ("models/crate.obj") or by its base name without extension
// ("crate"). A base name matching several assets of the type is an error.
func (am *AssetManager) ResolvePath(name string, assetType metadata.ResourceType) (string, error) {
	am.mutex.RLock()
	defer am.mutex.RUnlock()

	if asset, ok := am.assets[filepath.ToSlash(filepath.Clean(name))]; ok && asset.Type == assetType {
		return asset.Path, nil
	}

	var matches []string
	for key, asset := range am.assets {
		if asset.Type != assetType {
			continue
		}
		base := filepath.Base(key)
		if strings.TrimSuffix(base, filepath.Ext(base)) == name {
			matches = append(matches, key)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: %s %s", ErrAssetNotFound, assetType, name)
	case 1:
		return am.assets[matches[0]].Path, nil
	default:
		slices.Sort(matches)
		return "", fmt.Errorf("%s name '%s' is ambiguous: %s", assetType, name, strings.Join(matches, ", "))
	}
}

// Load an asset using the appropriate loader
func (am *AssetManager) LoadAsset(name string, resourceType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	path, err := am.ResolvePath(name, resourceType)
	if err != nil {
		return nil, err
	}

	am.mutex.Lock()
	key := am.key(path)
	asset := am.assets[key]
	asset.LastLoaded = time.Now()
	am.assets[key] = asset // Update the loaded time
	loader, loaderExists := am.loaders[resourceType]
	am.mutex.Unlock()

	if !loaderExists {
		return nil, fmt.Errorf("no loader registered for asset type: %s", resourceType)
	}
	core.LogDebug("Loading %s asset %s", resourceType, path)
	return loader.Load(path, resourceType, params)
}

func (am *AssetManager) UnloadAsset(resource *metadata.Resource, resourceType metadata.ResourceType) error {
	am.mutex.RLock()
	loader, loaderExists := am.loaders[resourceType]
	am.mutex.RUnlock()
	if !loaderExists {
		return fmt.Errorf("no loader registered for asset type: %s", resourceType)
	}
	return loader.Unload(resource)
}

func (am *AssetManager) start() {
	defer am.stopped.Done()
	for {
		select {
		case e, ok := <-am.fsnotify.Events:
			if !ok {
				return
			}
			s, err := os.Stat(e.Name)
			if err == nil && s != nil && s.IsDir() {
				if e.Op&fsnotify.Create != 0 {
					if err := am.watchRecursive(e.Name, false); err != nil {
						core.LogWarn("Failed to watch %s: %s", e.Name, err)
					}
				}
				continue
			}
			// Handle create or modify events
			if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				if info, ok := am.handleFileEvent(e.Name); ok {
					am.notify(info, e.Op)
				}
			}
			// Can't stat a deleted entry, so drop it and everything below it.
			if e.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				for _, info := range am.removeAsset(e.Name) {
					am.notify(info, e.Op)
				}
			}

		case err, ok := <-am.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError(err.Error())

		case <-am.done:
			am.fsnotify.Close()
			return
		}
	}
}

func (am *AssetManager) notify(info AssetInfo, op fsnotify.Op) {
	am.mutex.RLock()
	handler := am.onChange
	am.mutex.RUnlock()
	if handler != nil {
		handler(info, op)
	}
}

// watchRecursive indexes every file below path and, when watching, adds all
// directories to the watch list.
func (am *AssetManager) watchRecursive(path string, unWatch bool) error {
	return filepath.Walk(path, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			if am.fsnotify == nil {
				return nil
			}
			if unWatch {
				return am.fsnotify.Remove(walkPath)
			}
			return am.fsnotify.Add(walkPath)
		}
		am.handleFileEvent(walkPath)
		return nil
	})
}

func (am *AssetManager) key(path string) string {
	rel, err := filepath.Rel(am.directory, path)
	if err != nil {
		rel = path
	}
	return filepath.ToSlash(rel)
}

// Handle the creation or modification of a file
func (am *AssetManager) handleFileEvent(path string) (AssetInfo, bool) {
	assetType := determineAssetType(path)
	if assetType == metadata.ResourceTypeNone {
		return AssetInfo{}, false
	}
	var modTime time.Time
	if fi, err := os.Stat(path); err == nil {
		modTime = fi.ModTime()
	}

	am.mutex.Lock()
	defer am.mutex.Unlock()

	key := am.key(path)
	info := AssetInfo{
		Name:       key,
		Path:       path,
		Type:       assetType,
		ModTime:    modTime,
		LastLoaded: am.assets[key].LastLoaded,
	}
	am.assets[key] = info
	return info, true
}

// Remove the asset, or every asset below a removed directory, from the index.
func (am *AssetManager) removeAsset(path string) []AssetInfo {
	am.mutex.Lock()
	defer am.mutex.Unlock()

	key := am.key(path)
	var removed []AssetInfo
	for name, info := range am.assets {
		if name == key || strings.HasPrefix(name, key+"/") {
			removed = append(removed, info)
			delete(am.assets, name)
		}
	}
	return removed
}

func determineAssetType(path string) metadata.ResourceType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg", ".bmp", ".tif", ".tiff", ".webp":
		return metadata.ResourceTypeImage
	case ".mtl":
		return metadata.ResourceTypeMaterial
	case ".obj":
		return metadata.ResourceTypeModel
	default:
		return metadata.ResourceTypeNone
	}
}
