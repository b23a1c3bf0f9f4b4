package device

// fallbackCapacity sizes a device when the host cannot report its memory.
const fallbackCapacity = 8 << 30
