package metadata

type ResourceType int

/** @brief Pre-defined resource types. */
const (
	/** @brief Unrecognised file. */
	ResourceTypeNone ResourceType = iota
	/** @brief Constant catalog (reflected types and buffers of a shader). */
	ResourceTypeConstantCatalog
	/** @brief Custom resource type. Used by loaders outside the core engine. */
	ResourceTypeCustom
)

/**
 * @brief A generic structure for a resource. All resource loaders
 * load data into these.
 */
type Resource struct {
	/** @brief The name of the resource. */
	Name string
	/** @brief The full file path of the resource. */
	FullPath string
	/** @brief The size of the resource data in bytes. */
	DataSize uint64
	/** @brief The resource data. */
	Data interface{}
}
