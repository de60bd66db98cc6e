package renderer

import (
	"fmt"
	"sync"

	"github.com/spaghettifunk/regfile/engine/containers"
	"github.com/spaghettifunk/regfile/engine/core"
)

// DefaultRecordingHistory is the number of uploads a RecordingBinder keeps
// before dropping the oldest.
const DefaultRecordingHistory = 4096

/** @brief One upload observed by a RecordingBinder. */
type BindCall struct {
	Stage ShaderStage
	Start uint32
	Count uint32
	/** @brief A copy of the uploaded bytes. */
	Data []byte
}

// RecordingBinder keeps the most recent uploads it receives and mirrors them into
// an in-memory register file per stage. It backs dry runs and tests.
type RecordingBinder struct {
	mutex     sync.Mutex
	calls     *containers.RingQueue[BindCall]
	history   int
	dropped   uint64
	registers [2]map[uint32][RegisterSize]byte
}

func NewRecordingBinder() *RecordingBinder {
	return NewRecordingBinderWithHistory(DefaultRecordingHistory)
}

// NewRecordingBinderWithHistory keeps at most history uploads. The register
// mirror is not bounded.
func NewRecordingBinderWithHistory(history int) *RecordingBinder {
	r := &RecordingBinder{history: history}
	r.Reset()
	return r
}

func (r *RecordingBinder) SetVertexShaderConstantF(start uint32, data []byte, count uint32) error {
	return r.record(ShaderStageVertex, start, data, count)
}

func (r *RecordingBinder) SetPixelShaderConstantF(start uint32, data []byte, count uint32) error {
	return r.record(ShaderStagePixel, start, data, count)
}

func (r *RecordingBinder) record(stage ShaderStage, start uint32, data []byte, count uint32) error {
	if uint64(len(data)) < uint64(count)*RegisterSize {
		return fmt.Errorf("%s upload of %d registers from %d bytes: %w", stage, count, len(data), core.ErrOutOfRange)
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	copied := make([]byte, count*RegisterSize)
	copy(copied, data)
	if r.calls.Push(BindCall{Stage: stage, Start: start, Count: count, Data: copied}) {
		r.dropped++
	}
	for i := uint32(0); i < count; i++ {
		var reg [RegisterSize]byte
		copy(reg[:], copied[i*RegisterSize:])
		r.registers[stage][start+i] = reg
	}
	core.LogDebug("%s constants bound: start=c%d count=%d", stage, start, count)
	return nil
}

// Calls returns the most recent uploads received since the last Reset,
// oldest first.
func (r *RecordingBinder) Calls() []BindCall {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.calls.Items()
}

// Dropped returns how many uploads fell out of the history since the last Reset.
func (r *RecordingBinder) Dropped() uint64 {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.dropped
}

// Register returns the current contents of a register and whether it has
// ever been written.
func (r *RecordingBinder) Register(stage ShaderStage, index uint32) ([RegisterSize]byte, bool) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	reg, ok := r.registers[stage][index]
	return reg, ok
}

func (r *RecordingBinder) Reset() {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.calls = containers.NewRingQueue[BindCall](r.history)
	r.dropped = 0
	r.registers[ShaderStageVertex] = make(map[uint32][RegisterSize]byte)
	r.registers[ShaderStagePixel] = make(map[uint32][RegisterSize]byte)
}
