package vulkan

import (
	"errors"
	"testing"
	"unsafe"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/regfile/engine/core"
	"github.com/spaghettifunk/regfile/engine/renderer/metadata"
)

type pushCall struct {
	stages vk.ShaderStageFlags
	offset uint32
	size   uint32
	first  byte
}

func newTestBinder(base uint32) (*PushConstantBinder, *[]pushCall) {
	calls := &[]pushCall{}
	cb := NewVulkanCommandBuffer(nil)
	cb.State = COMMAND_BUFFER_STATE_RECORDING
	var layout vk.PipelineLayout
	b := NewPushConstantBinder(cb, layout, base)
	b.push = func(_ vk.CommandBuffer, _ vk.PipelineLayout, stages vk.ShaderStageFlags, offset, size uint32, values unsafe.Pointer) {
		*calls = append(*calls, pushCall{stages: stages, offset: offset, size: size, first: *(*byte)(values)})
	}
	return b, calls
}

func TestPushConstantBinderWindows(t *testing.T) {
	b, calls := newTestBinder(4)
	data := make([]byte, 64)
	data[0] = 0xAB

	if err := b.SetVertexShaderConstantF(5, data, 2); err != nil {
		t.Fatalf("SetVertexShaderConstantF: %v", err)
	}
	if err := b.SetPixelShaderConstantF(4, data, 4); err != nil {
		t.Fatalf("SetPixelShaderConstantF: %v", err)
	}

	want := []pushCall{
		{stages: vk.ShaderStageFlags(vk.ShaderStageVertexBit), offset: 16, size: 32, first: 0xAB},
		{stages: vk.ShaderStageFlags(vk.ShaderStageFragmentBit), offset: 64, size: 64, first: 0xAB},
	}
	if len(*calls) != len(want) {
		t.Fatalf("got %d pushes, want %d", len(*calls), len(want))
	}
	for i := range want {
		if (*calls)[i] != want[i] {
			t.Errorf("push %d = %+v, want %+v", i, (*calls)[i], want[i])
		}
	}
	if b.RegisterCapacity() != 4 {
		t.Errorf("RegisterCapacity = %d, want 4", b.RegisterCapacity())
	}
}

func TestPushConstantBinderRejectsOverflow(t *testing.T) {
	b, calls := newTestBinder(4)
	data := make([]byte, 128)

	tests := []struct {
		name         string
		start, count uint32
	}{
		{"below window", 3, 1},
		{"past window", 6, 3},
		{"too many registers", 4, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := b.SetVertexShaderConstantF(tt.start, data, tt.count); !errors.Is(err, core.ErrPushConstantOverflow) {
				t.Errorf("error = %v, want ErrPushConstantOverflow", err)
			}
		})
	}
	if len(*calls) != 0 {
		t.Errorf("rejected uploads were recorded")
	}
}

func TestPushConstantBinderRequiresRecording(t *testing.T) {
	b, calls := newTestBinder(0)
	b.CommandBuffer.State = COMMAND_BUFFER_STATE_READY
	if err := b.SetVertexShaderConstantF(0, make([]byte, 16), 1); err == nil {
		t.Errorf("push outside of recording succeeded")
	}
	if err := b.SetVertexShaderConstantF(0, make([]byte, 8), 1); !errors.Is(err, core.ErrOutOfRange) {
		t.Errorf("short data error = %v, want ErrOutOfRange", err)
	}
	if len(*calls) != 0 {
		t.Errorf("pushes recorded: %+v", *calls)
	}
}

func TestPipelineLayoutRanges(t *testing.T) {
	b, _ := newTestBinder(0)
	ranges, err := b.PipelineLayoutRanges()
	if err != nil {
		t.Fatalf("PipelineLayoutRanges: %v", err)
	}
	if len(ranges) != 2 {
		t.Fatalf("got %d ranges, want 2", len(ranges))
	}
	if ranges[0].Offset != 0 || ranges[0].Size != 64 || ranges[1].Offset != 64 || ranges[1].Size != 64 {
		t.Errorf("ranges = %+v", ranges)
	}
}

func TestNewPushConstantRangesValidates(t *testing.T) {
	stages := vk.ShaderStageFlags(vk.ShaderStageVertexBit)
	if _, err := NewPushConstantRanges([]PushConstantWindow{{Stages: stages, Range: metadata.MemoryRange{Offset: 96, Size: 64}}}); !errors.Is(err, core.ErrPushConstantOverflow) {
		t.Errorf("oversized range error = %v", err)
	}
	if _, err := NewPushConstantRanges([]PushConstantWindow{{Stages: stages, Range: metadata.MemoryRange{Offset: 2, Size: 16}}}); err == nil {
		t.Errorf("misaligned range accepted")
	}
	if _, err := NewPushConstantRanges(make([]PushConstantWindow, VULKAN_MAX_PUSH_CONSTANT_RANGES+1)); err == nil {
		t.Errorf("too many ranges accepted")
	}
}
