package vulkan

import (
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/regfile/engine/core"
	"github.com/spaghettifunk/regfile/engine/renderer/metadata"
)

type cmdPushConstantsFunc func(commandBuffer vk.CommandBuffer, layout vk.PipelineLayout, stageFlags vk.ShaderStageFlags, offset, size uint32, values unsafe.Pointer)

/**
 * @brief Delivers register data through push constants. The guaranteed 128 bytes are
 * split into a vertex window and a fragment window; each window exposes the
 * registers starting at BaseRegister.
 */
type PushConstantBinder struct {
	CommandBuffer  *VulkanCommandBuffer
	PipelineLayout vk.PipelineLayout
	/** @brief The register mapped to the first byte of each window. */
	BaseRegister uint32

	vertexWindow   PushConstantWindow
	fragmentWindow PushConstantWindow
	lockPool       *VulkanLockPool
	push           cmdPushConstantsFunc
}

/**
 * @brief Creates a binder that splits the push constant budget evenly between the
 * vertex and fragment stages.
 *
 * @param commandBuffer The command buffer pushes are recorded into.
 * @param layout The pipeline layout created with PipelineLayoutRanges.
 * @param baseRegister The register mapped to the first byte of each window.
 */
func NewPushConstantBinder(commandBuffer *VulkanCommandBuffer, layout vk.PipelineLayout, baseRegister uint32) *PushConstantBinder {
	half := uint64(VULKAN_MAX_PUSH_CONSTANT_SIZE / 2)
	return &PushConstantBinder{
		CommandBuffer:  commandBuffer,
		PipelineLayout: layout,
		BaseRegister:   baseRegister,
		vertexWindow: PushConstantWindow{
			Stages: vk.ShaderStageFlags(vk.ShaderStageVertexBit),
			Range:  *metadata.GetAlignedRange(0, half, 4),
		},
		fragmentWindow: PushConstantWindow{
			Stages: vk.ShaderStageFlags(vk.ShaderStageFragmentBit),
			Range:  *metadata.GetAlignedRange(half, half, 4),
		},
		lockPool: NewVulkanLockPool(),
		push:     vk.CmdPushConstants,
	}
}

// PipelineLayoutRanges returns the push constant ranges the pipeline layout
// must declare for this binder.
func (b *PushConstantBinder) PipelineLayoutRanges() ([]vk.PushConstantRange, error) {
	var ranges []vk.PushConstantRange
	err := b.lockPool.SafeCall(PipelineManagement, func() error {
		var err error
		ranges, err = NewPushConstantRanges([]PushConstantWindow{b.vertexWindow, b.fragmentWindow})
		return err
	})
	return ranges, err
}

// RegisterCapacity is the number of registers each stage window can hold.
func (b *PushConstantBinder) RegisterCapacity() uint32 {
	return uint32(b.vertexWindow.Range.Size) / VULKAN_REGISTER_SIZE
}

func (b *PushConstantBinder) SetVertexShaderConstantF(start uint32, data []byte, count uint32) error {
	return b.pushRegisters(b.vertexWindow, start, data, count)
}

func (b *PushConstantBinder) SetPixelShaderConstantF(start uint32, data []byte, count uint32) error {
	return b.pushRegisters(b.fragmentWindow, start, data, count)
}

func (b *PushConstantBinder) pushRegisters(window PushConstantWindow, start uint32, data []byte, count uint32) error {
	if count == 0 {
		return nil
	}
	size := count * VULKAN_REGISTER_SIZE
	if uint32(len(data)) < size {
		return fmt.Errorf("push of %d registers from %d bytes: %w", count, len(data), core.ErrOutOfRange)
	}
	if start < b.BaseRegister {
		return fmt.Errorf("register c%d is below the push constant window at c%d: %w", start, b.BaseRegister, core.ErrPushConstantOverflow)
	}
	relative := uint64(start-b.BaseRegister) * uint64(VULKAN_REGISTER_SIZE)
	if relative+uint64(size) > window.Range.Size {
		return fmt.Errorf("registers c%d-c%d exceed the %d byte push constant window: %w", start, start+count-1, window.Range.Size, core.ErrPushConstantOverflow)
	}

	return b.lockPool.SafeCall(CommandBufferManagement, func() error {
		if b.CommandBuffer == nil || !b.CommandBuffer.IsRecording() {
			return fmt.Errorf("push constants recorded outside of a recording command buffer")
		}
		b.push(b.CommandBuffer.Handle, b.PipelineLayout, window.Stages, uint32(window.Range.Offset+relative), size, unsafe.Pointer(&data[0]))
		return nil
	})
}
