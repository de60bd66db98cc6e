package systems

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/spaghettifunk/regfile/engine/core"
	"github.com/spaghettifunk/regfile/engine/renderer"
	"github.com/spaghettifunk/regfile/engine/renderer/cbuffer"
	"github.com/spaghettifunk/regfile/engine/renderer/linker"
	"github.com/spaghettifunk/regfile/engine/renderer/metadata"
)

type ConstantBufferSystemConfig struct {
	/** @brief The maximum number of buffer instances that can be alive at once. */
	MaxBufferCount uint32
	Linker         core.LinkerConfig
}

/** @brief A live constant buffer instance owned by the system. */
type ConstantBufferReference struct {
	ID uint32
	/** @brief Instance name. Generated when the caller does not provide one. */
	Name    string
	Catalog string
	Buffer  *cbuffer.ConstantBuffer
}

// ConstantBufferSystem owns one shared linker per registered catalog and
// every buffer instance created from them.
type ConstantBufferSystem struct {
	Config *ConstantBufferSystemConfig

	mutex   sync.RWMutex
	linkers map[string]*linker.Linker
	buffers map[uint32]*ConstantBufferReference
	// reserved counts slots held by creations that are still loading.
	reserved uint32

	jobSystem *JobSystem
}

func NewConstantBufferSystem(config *ConstantBufferSystemConfig, js *JobSystem) (*ConstantBufferSystem, error) {
	if config.MaxBufferCount == 0 {
		err := fmt.Errorf("func NewConstantBufferSystem - config.MaxBufferCount must be > 0")
		core.LogError("%s", err)
		return nil, err
	}
	return &ConstantBufferSystem{
		Config:    config,
		linkers:   make(map[string]*linker.Linker),
		buffers:   make(map[uint32]*ConstantBufferReference),
		jobSystem: js,
	}, nil
}

/**
 * @brief Links a catalog and makes its buffers available for instancing. Registering
 * a name again replaces the linker; existing instances keep the layout they
 * were created with.
 */
func (cbs *ConstantBufferSystem) RegisterCatalog(name string, catalog *metadata.Catalog) error {
	clock := core.NewClock()
	clock.Start()
	l := linker.NewLinker(cbs.Config.Linker, catalog)
	layout, err := l.Link()
	clock.Stop()
	if err != nil {
		err = fmt.Errorf("register catalog '%s': %w", name, err)
		core.LogError("%s", err)
		return err
	}

	cbs.mutex.Lock()
	_, replaced := cbs.linkers[name]
	cbs.linkers[name] = l
	cbs.mutex.Unlock()

	core.LogInfo("catalog '%s' linked in %s: %d buffers, %d types (replaced: %t)", name, clock.Elapsed(), len(layout.Buffers), len(layout.Referenced), replaced)
	ctx := core.EventContext{}
	ctx.Data.C[0] = name
	ctx.Data.U32[0] = uint32(len(layout.Buffers))
	ctx.Data.U32[1] = uint32(len(layout.Referenced))
	core.EventFire(core.EventCodeConstantsLinked, cbs, ctx)
	return nil
}

func (cbs *ConstantBufferSystem) linkerFor(catalog string) (*linker.Linker, error) {
	cbs.mutex.RLock()
	defer cbs.mutex.RUnlock()
	l, ok := cbs.linkers[catalog]
	if !ok {
		return nil, fmt.Errorf("catalog '%s' is not registered: %w", catalog, core.ErrUnknownBuffer)
	}
	return l, nil
}

// Declarations returns the shader declarations of the named buffers, or of
// every buffer in the catalog when none are named.
func (cbs *ConstantBufferSystem) Declarations(catalog string, bufferNames ...string) (string, error) {
	l, err := cbs.linkerFor(catalog)
	if err != nil {
		return "", err
	}
	var refs []int
	if len(bufferNames) == 0 {
		for i := range l.Catalog().Buffers {
			refs = append(refs, i)
		}
	}
	for _, name := range bufferNames {
		idx, err := l.BufferIndex(name)
		if err != nil {
			return "", err
		}
		refs = append(refs, idx)
	}
	return l.GenerateBufferDeclarations(refs)
}

/**
 * @brief Creates and loads an instance of a buffer from a registered catalog.
 *
 * @param catalog The registered catalog name.
 * @param bufferName The buffer within the catalog.
 * @param instanceName A name for the instance; a random one is generated when empty.
 */
func (cbs *ConstantBufferSystem) CreateBuffer(catalog, bufferName, instanceName string) (*ConstantBufferReference, error) {
	refs, err := cbs.createBuffers(catalog, []string{bufferName}, []string{instanceName}, false)
	if err != nil {
		return nil, err
	}
	return refs[0], nil
}

/**
 * @brief Creates one instance per buffer name. Instances are loaded concurrently on
 * the job system; either all of them are registered or none are.
 */
func (cbs *ConstantBufferSystem) CreateBuffers(catalog string, bufferNames []string) ([]*ConstantBufferReference, error) {
	return cbs.createBuffers(catalog, bufferNames, make([]string, len(bufferNames)), cbs.jobSystem != nil)
}

func (cbs *ConstantBufferSystem) createBuffers(catalog string, bufferNames, instanceNames []string, concurrent bool) ([]*ConstantBufferReference, error) {
	l, err := cbs.linkerFor(catalog)
	if err != nil {
		return nil, err
	}

	n := uint32(len(bufferNames))
	if err := cbs.reserve(n); err != nil {
		return nil, err
	}

	refs := make([]*ConstantBufferReference, len(bufferNames))
	for i, bufferName := range bufferNames {
		cb, err := cbuffer.NewShared(l, bufferName)
		if err != nil {
			cbs.release(n)
			return nil, err
		}
		name := instanceNames[i]
		if name == "" {
			name = bufferName + "-" + uuid.NewString()
		}
		refs[i] = &ConstantBufferReference{Name: name, Catalog: catalog, Buffer: cb}
	}

	if err := cbs.loadAll(refs, concurrent); err != nil {
		for _, ref := range refs {
			ref.Buffer.Unload()
		}
		cbs.release(n)
		return nil, err
	}

	cbs.mutex.Lock()
	cbs.reserved -= n
	for _, ref := range refs {
		ref.ID = core.IdentifierAquireNewID(ref)
		cbs.buffers[ref.ID] = ref
	}
	cbs.mutex.Unlock()
	return refs, nil
}

// reserve claims n slots against MaxBufferCount, counting live instances
// and creations still in flight.
func (cbs *ConstantBufferSystem) reserve(n uint32) error {
	cbs.mutex.Lock()
	defer cbs.mutex.Unlock()
	held := uint32(len(cbs.buffers)) + cbs.reserved
	if held+n > cbs.Config.MaxBufferCount {
		return fmt.Errorf("%d held + %d new buffers (max %d): %w", held, n, cbs.Config.MaxBufferCount, core.ErrMaxBufferCountExceeded)
	}
	cbs.reserved += n
	return nil
}

func (cbs *ConstantBufferSystem) release(n uint32) {
	cbs.mutex.Lock()
	cbs.reserved -= n
	cbs.mutex.Unlock()
}

// loadAll loads every instance, on the job system when concurrent is set.
// The shared layout is read-only once linked, so instances compile their
// transfer plans independently.
func (cbs *ConstantBufferSystem) loadAll(refs []*ConstantBufferReference, concurrent bool) error {
	if !concurrent {
		for _, ref := range refs {
			if err := ref.Buffer.Load(); err != nil {
				return err
			}
		}
		return nil
	}

	var (
		wg      sync.WaitGroup
		errMu   sync.Mutex
		loadErr []error
	)
	for _, ref := range refs {
		wg.Add(1)
		err := cbs.jobSystem.Submit(JobTask{
			InputParams: ref,
			OnStart: func(params interface{}) (interface{}, error) {
				r := params.(*ConstantBufferReference)
				return r, r.Buffer.Load()
			},
			OnFailure: func(err error) {
				errMu.Lock()
				loadErr = append(loadErr, err)
				errMu.Unlock()
			},
			OnCompletionCallback: wg.Done,
		})
		if err != nil {
			wg.Done()
			errMu.Lock()
			loadErr = append(loadErr, err)
			errMu.Unlock()
		}
	}
	wg.Wait()
	return errors.Join(loadErr...)
}

func (cbs *ConstantBufferSystem) Buffer(id uint32) (*ConstantBufferReference, bool) {
	cbs.mutex.RLock()
	defer cbs.mutex.RUnlock()
	ref, ok := cbs.buffers[id]
	return ref, ok
}

// Buffers returns every live instance ordered by id.
func (cbs *ConstantBufferSystem) Buffers() []*ConstantBufferReference {
	cbs.mutex.RLock()
	defer cbs.mutex.RUnlock()
	out := make([]*ConstantBufferReference, 0, len(cbs.buffers))
	for _, ref := range cbs.buffers {
		out = append(out, ref)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (cbs *ConstantBufferSystem) DestroyBuffer(id uint32) error {
	cbs.mutex.Lock()
	ref, ok := cbs.buffers[id]
	if ok {
		delete(cbs.buffers, id)
	}
	cbs.mutex.Unlock()
	if !ok {
		return fmt.Errorf("buffer id %d: %w", id, core.ErrUnknownBuffer)
	}

	ref.Buffer.Unload()
	return core.IdentifierReleaseID(id)
}

// ApplyAll applies every live instance in id order.
func (cbs *ConstantBufferSystem) ApplyAll(binder renderer.ConstantBinder) error {
	for _, ref := range cbs.Buffers() {
		if err := ref.Buffer.Apply(binder); err != nil {
			err = fmt.Errorf("instance '%s': %w", ref.Name, err)
			core.LogError("%s", err)
			return err
		}
	}
	return nil
}

func (cbs *ConstantBufferSystem) Shutdown() error {
	for _, ref := range cbs.Buffers() {
		if err := cbs.DestroyBuffer(ref.ID); err != nil {
			return err
		}
	}
	cbs.mutex.Lock()
	cbs.linkers = make(map[string]*linker.Linker)
	cbs.mutex.Unlock()
	return nil
}
