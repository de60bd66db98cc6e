package renderer

/**
 * @brief Receives register data for the two programmable stages. The data is laid out
 * as count consecutive registers of four 32-bit floats starting at register start.
 */
type ConstantBinder interface {
	SetVertexShaderConstantF(start uint32, data []byte, count uint32) error
	SetPixelShaderConstantF(start uint32, data []byte, count uint32) error
}

/** @brief The pipeline stage a register upload targets. */
type ShaderStage uint8

const (
	ShaderStageVertex ShaderStage = iota
	ShaderStagePixel
)

func (s ShaderStage) String() string {
	switch s {
	case ShaderStageVertex:
		return "vertex"
	case ShaderStagePixel:
		return "pixel"
	}
	return "unknown"
}

// RegisterSize is the width in bytes of one constant register.
const RegisterSize = 16
