package vulkan

/**
 * @brief The push constant storage every implementation is required to provide.
 * Larger limits exist on most hardware but cannot be relied upon.
 */
const VULKAN_MAX_PUSH_CONSTANT_SIZE uint32 = 128

/**
 * @brief Max number of push constant ranges in a pipeline layout. 128 bytes
 * with 4-byte alignment gives at most 32 ranges.
 */
const VULKAN_MAX_PUSH_CONSTANT_RANGES = 32

/** @brief Size in bytes of one constant register. */
const VULKAN_REGISTER_SIZE uint32 = 16
