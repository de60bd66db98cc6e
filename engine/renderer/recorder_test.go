package renderer

import (
	"errors"
	"testing"

	"github.com/spaghettifunk/regfile/engine/core"
)

func registers(values ...byte) []byte {
	out := make([]byte, len(values)*RegisterSize)
	for i, v := range values {
		out[i*RegisterSize] = v
	}
	return out
}

func TestRecordingBinderMirrorsRegisters(t *testing.T) {
	r := NewRecordingBinder()
	if err := r.SetVertexShaderConstantF(2, registers(7, 8), 2); err != nil {
		t.Fatalf("SetVertexShaderConstantF: %v", err)
	}
	if err := r.SetPixelShaderConstantF(0, registers(9), 1); err != nil {
		t.Fatalf("SetPixelShaderConstantF: %v", err)
	}

	if reg, ok := r.Register(ShaderStageVertex, 3); !ok || reg[0] != 8 {
		t.Errorf("vertex c3 = %v, %t", reg, ok)
	}
	if _, ok := r.Register(ShaderStagePixel, 2); ok {
		t.Errorf("pixel c2 written by a vertex upload")
	}
	calls := r.Calls()
	if len(calls) != 2 || calls[0].Stage != ShaderStageVertex || calls[1].Start != 0 {
		t.Errorf("Calls = %+v", calls)
	}

	if err := r.SetVertexShaderConstantF(0, registers(1), 2); !errors.Is(err, core.ErrOutOfRange) {
		t.Errorf("short upload: err = %v, want ErrOutOfRange", err)
	}

	r.Reset()
	if len(r.Calls()) != 0 {
		t.Errorf("Reset kept calls")
	}
	if _, ok := r.Register(ShaderStageVertex, 2); ok {
		t.Errorf("Reset kept registers")
	}
}

func TestRecordingBinderHistoryIsBounded(t *testing.T) {
	r := NewRecordingBinderWithHistory(2)
	for i := uint32(0); i < 5; i++ {
		if err := r.SetVertexShaderConstantF(i, registers(byte(i)), 1); err != nil {
			t.Fatalf("SetVertexShaderConstantF: %v", err)
		}
	}
	calls := r.Calls()
	if len(calls) != 2 || calls[0].Start != 3 || calls[1].Start != 4 {
		t.Errorf("Calls = %+v, want uploads at c3 and c4", calls)
	}
	if r.Dropped() != 3 {
		t.Errorf("Dropped = %d, want 3", r.Dropped())
	}
	// Every register is still mirrored.
	if reg, ok := r.Register(ShaderStageVertex, 0); !ok || reg[0] != 0 {
		t.Errorf("c0 = %v, %t", reg, ok)
	}
}

func TestShaderStageString(t *testing.T) {
	if ShaderStageVertex.String() == ShaderStagePixel.String() {
		t.Errorf("stages share a name")
	}
}
