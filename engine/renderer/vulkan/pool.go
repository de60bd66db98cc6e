package vulkan

import "sync"

type LockGroup string

const (
	CommandBufferManagement LockGroup = "command_buffer_management"
	PipelineManagement      LockGroup = "pipeline_management"
)

// VulkanLockPool hands out one mutex per resource group. Vulkan objects
// such as command buffers are externally synchronised, so every recording
// call on a shared object goes through SafeCall.
type VulkanLockPool struct {
	locks map[LockGroup]*sync.Mutex
	mu    sync.Mutex // Protects access to the locks map
}

func NewVulkanLockPool() *VulkanLockPool {
	return &VulkanLockPool{
		locks: make(map[LockGroup]*sync.Mutex),
	}
}

// Get or create the mutex for a specific group
func (vs *VulkanLockPool) lock(group LockGroup) *sync.Mutex {
	vs.mu.Lock()
	defer vs.mu.Unlock()

	if _, exists := vs.locks[group]; !exists {
		vs.locks[group] = &sync.Mutex{}
	}
	return vs.locks[group]
}

func (vs *VulkanLockPool) SafeCall(group LockGroup, fn func() error) error {
	l := vs.lock(group)
	l.Lock()
	defer l.Unlock()

	return fn()
}
