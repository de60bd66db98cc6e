package metadata

/** @brief A range of memory, expressed in bytes. */
type MemoryRange struct {
	/** @brief The Offset in bytes. */
	Offset uint64
	/** @brief The size in bytes. */
	Size uint64
}

func GetAlignedRange(offset, size, granularity uint64) *MemoryRange {
	m := &MemoryRange{
		Offset: GetAligned(offset, granularity),
		Size:   GetAligned(size, granularity),
	}
	return m
}

// GetAligned rounds operand up to the next multiple of granularity, which
// must be a power of two.
func GetAligned(operand, granularity uint64) uint64 {
	val := (operand + (granularity - 1)) &^ (granularity - 1)
	return val
}
