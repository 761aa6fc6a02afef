package jsruntime

// Ref is an opaque integer reference used to identify contexts and host
// callbacks across the engine boundary. Only the integer crosses into engine
// state; the host resolves it back through a registry at call time. Zero is
// never a valid Ref.
type Ref int32
