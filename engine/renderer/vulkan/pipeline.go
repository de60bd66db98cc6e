package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/regfile/engine/core"
	"github.com/spaghettifunk/regfile/engine/renderer/metadata"
)

/** @brief A push constant window assigned to one or more shader stages. */
type PushConstantWindow struct {
	Stages vk.ShaderStageFlags
	Range  metadata.MemoryRange
}

/**
 * @brief Builds the push constant ranges of a pipeline layout.
 *
 * @param windows The windows to declare. Each must be 4-byte aligned and lie within the guaranteed budget.
 * @return The ranges to place in a VkPipelineLayoutCreateInfo.
 */
func NewPushConstantRanges(windows []PushConstantWindow) ([]vk.PushConstantRange, error) {
	if len(windows) > VULKAN_MAX_PUSH_CONSTANT_RANGES {
		err := fmt.Errorf("func NewPushConstantRanges: cannot have more than %d push constant ranges. Passed count: %d", VULKAN_MAX_PUSH_CONSTANT_RANGES, len(windows))
		return nil, err
	}

	ranges := make([]vk.PushConstantRange, len(windows))
	for i, w := range windows {
		if w.Range.Offset%4 != 0 || w.Range.Size%4 != 0 || w.Range.Size == 0 {
			return nil, fmt.Errorf("func NewPushConstantRanges: range %d (%d, %d) is not 4-byte aligned", i, w.Range.Offset, w.Range.Size)
		}
		if w.Range.Offset+w.Range.Size > uint64(VULKAN_MAX_PUSH_CONSTANT_SIZE) {
			return nil, fmt.Errorf("func NewPushConstantRanges: range %d (%d, %d): %w", i, w.Range.Offset, w.Range.Size, core.ErrPushConstantOverflow)
		}
		ranges[i].StageFlags = w.Stages
		ranges[i].Offset = uint32(w.Range.Offset)
		ranges[i].Size = uint32(w.Range.Size)
	}
	return ranges, nil
}
