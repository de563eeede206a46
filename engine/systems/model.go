package systems

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/spaghettifunk/anima-models/engine/assets"
	"github.com/spaghettifunk/anima-models/engine/assets/loaders"
	"github.com/spaghettifunk/anima-models/engine/core"
	"github.com/spaghettifunk/anima-models/engine/renderer/metadata"
)

/** @brief Submits texture uploads, e.g. Backend.SubmitUploads. */
type SubmitFunc func(cmds []metadata.CommandBuffer) error

type ModelSystemConfig struct {
	/** @brief Destroys a model when its reference count drops to zero. */
	AutoRelease bool
	/** @brief The renderer the models are loaded into. */
	Params *loaders.ModelLoadParams
	Submit SubmitFunc
	/** @brief Runs asynchronous acquires and watcher reloads. Optional. */
	Jobs *JobSystem
}

type modelReference struct {
	ReferenceCount uint64
	AutoRelease    bool
	Path           string
	Resource       *metadata.Resource
}

func (ref *modelReference) model() *metadata.Model {
	return ref.Resource.Data.(*metadata.ModelResourceData).Model
}

/**
 * @brief Loads models through the asset manager once and shares them by name.
 */
type ModelSystem struct {
	Config       *ModelSystemConfig
	assetManager *assets.AssetManager

	mu     sync.Mutex
	models map[string]*modelReference

	Metrics core.LoadMetrics
}

func NewModelSystem(config *ModelSystemConfig, am *assets.AssetManager) (*ModelSystem, error) {
	if config.Params == nil {
		return nil, fmt.Errorf("func NewModelSystem - config.Params is required")
	}
	if config.Submit == nil {
		return nil, fmt.Errorf("func NewModelSystem - config.Submit is required")
	}
	am.RegisterLoader(metadata.ResourceTypeModel, &loaders.ModelLoader{Params: config.Params})
	return &ModelSystem{
		Config:       config,
		assetManager: am,
		models:       make(map[string]*modelReference),
	}, nil
}

// WatchAssets reloads loaded models when their OBJ file, one of their
// material libraries or one of their textures changes on disk. It only has an
// effect when the asset manager watches its directory.
func (ms *ModelSystem) WatchAssets() {
	ms.assetManager.OnChange(ms.handleAssetChange)
}

func (ms *ModelSystem) handleAssetChange(info assets.AssetInfo, op fsnotify.Op) {
	if op&(fsnotify.Write|fsnotify.Create) == 0 {
		return
	}
	for _, name := range ms.namesForPath(info.Type, info.Path) {
		name := name
		reload := JobTask{
			Name: "reload " + name,
			Run:  func() error { return ms.Reload(name) },
		}
		if ms.Config.Jobs != nil {
			if err := ms.Config.Jobs.Submit(reload); err == nil {
				continue
			}
		}
		if err := reload.Run(); err != nil {
			core.LogError("Failed to reload model '%s': %s", name, err)
		}
	}
}

// namesForPath returns the loaded models built from the file at path.
func (ms *ModelSystem) namesForPath(assetType metadata.ResourceType, path string) []string {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	var names []string
	for name, ref := range ms.models {
		switch assetType {
		case metadata.ResourceTypeModel:
			if filepath.Clean(ref.Path) == filepath.Clean(path) {
				names = append(names, name)
			}
		case metadata.ResourceTypeMaterial, metadata.ResourceTypeImage:
			if ref.model().DependsOn(path) {
				names = append(names, name)
			}
		}
	}
	return names
}

// load resolves, loads and uploads a model. On failure nothing stays alive.
func (ms *ModelSystem) load(name string) (resource *metadata.Resource, err error) {
	clock := core.NewClock()
	clock.Start()
	defer func() {
		clock.Stop()
		ms.Metrics.Record(clock.Elapsed(), err)
	}()

	resource, err = ms.assetManager.LoadAsset(name, metadata.ResourceTypeModel, ms.Config.Params)
	if err != nil {
		return nil, err
	}
	data := resource.Data.(*metadata.ModelResourceData)
	if err := ms.Config.Submit(data.Commands); err != nil {
		metadata.DiscardAll(data.Commands)
		data.Model.Destroy()
		return nil, fmt.Errorf("model '%s': texture upload failed: %w", name, err)
	}
	data.Commands = nil
	core.LogDebug("Model '%s' took %s to load.", name, clock.Elapsed())
	return resource, nil
}

// Acquire returns the model registered under name, loading it on first use.
// Every successful call must be paired with a Release.
func (ms *ModelSystem) Acquire(name string) (*metadata.Model, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if ref, ok := ms.models[name]; ok {
		ref.ReferenceCount++
		return ref.model(), nil
	}

	resource, err := ms.load(name)
	if err != nil {
		return nil, err
	}
	ms.models[name] = &modelReference{
		ReferenceCount: 1,
		// This can only be changed the first time a model is loaded.
		AutoRelease: ms.Config.AutoRelease,
		Path:        resource.FullPath,
		Resource:    resource,
	}
	core.LogInfo("Model '%s' loaded from %s.", name, resource.FullPath)
	return ms.models[name].model(), nil
}

// AcquireAsync acquires the model on the job system and hands the result to
// done on a worker goroutine.
func (ms *ModelSystem) AcquireAsync(name string, done func(*metadata.Model, error)) error {
	if ms.Config.Jobs == nil {
		return fmt.Errorf("model '%s': no job system configured", name)
	}
	var model *metadata.Model
	return ms.Config.Jobs.Submit(JobTask{
		Name: "acquire " + name,
		Run: func() error {
			var err error
			model, err = ms.Acquire(name)
			return err
		},
		OnComplete: func() { done(model, nil) },
		OnFailure:  func(err error) { done(nil, err) },
	})
}

// Get returns a loaded model without taking a reference.
func (ms *ModelSystem) Get(name string) (*metadata.Model, bool) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ref, ok := ms.models[name]
	if !ok {
		return nil, false
	}
	return ref.model(), true
}

func (ms *ModelSystem) ReferenceCount(name string) uint64 {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if ref, ok := ms.models[name]; ok {
		return ref.ReferenceCount
	}
	return 0
}

func (ms *ModelSystem) Release(name string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ref, ok := ms.models[name]
	if !ok || ref.ReferenceCount == 0 {
		core.LogWarn("Tried to release non-existent model: '%s'", name)
		return fmt.Errorf("model '%s' is not acquired", name)
	}
	ref.ReferenceCount--
	if ref.ReferenceCount == 0 && ref.AutoRelease {
		ms.destroy(name, ref)
		core.LogDebug("Released model '%s', unloaded because reference count=0 and AutoRelease=true.", name)
	}
	return nil
}

// Reload loads the model again and swaps it in. The previous model is
// destroyed only once the new one is ready; on failure it stays in place.
// Pointers returned by Acquire before the reload are no longer valid.
func (ms *ModelSystem) Reload(name string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ref, ok := ms.models[name]
	if !ok {
		return fmt.Errorf("model '%s' is not loaded", name)
	}
	resource, err := ms.load(name)
	if err != nil {
		return err
	}
	previous := ref.Resource
	ref.Resource = resource
	ref.Path = resource.FullPath
	if err := ms.assetManager.UnloadAsset(previous, metadata.ResourceTypeModel); err != nil {
		core.LogWarn("Failed to unload previous model '%s': %s", name, err)
	}
	core.LogInfo("Model '%s' reloaded.", name)
	return nil
}

func (ms *ModelSystem) destroy(name string, ref *modelReference) {
	if err := ms.assetManager.UnloadAsset(ref.Resource, metadata.ResourceTypeModel); err != nil {
		core.LogWarn("Failed to unload model '%s': %s", name, err)
	}
	delete(ms.models, name)
}

// Shutdown destroys every model regardless of its references.
func (ms *ModelSystem) Shutdown() {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	for name, ref := range ms.models {
		ms.destroy(name, ref)
	}
	core.LogInfo("Model system shut down.")
}
