package keys

// Package keys centralizes Redis key construction.
// It is kept in internal to avoid leaking key formats to public API.
// All keys of a namespace share one hash tag so multi-key scripts and
// pipelines stay cluster-safe.

func Details(ns string) string { return "vidq:{" + ns + "}:details" }
func History(ns string) string { return "vidq:{" + ns + "}:history" }
func Pending(ns string) string { return "vidq:{" + ns + "}:pending" }
func Active(ns string) string  { return "vidq:{" + ns + "}:active" }

// Set holds all precomputed keys for a namespace to avoid repeated
// concatenations.
type Set struct {
	// Details is a HASH mapping task_id to the full task JSON record.
	Details string
	// History is a ZSET of task IDs scored by creation time (ms); it defines
	// the newest-first history order.
	History string
	// Pending is a LIST of queued task IDs.
	Pending string
	// Active is a ZSET of leased task IDs scored by lease expiry (unix sec).
	Active string
}

// For returns the set of precomputed keys for the provided namespace.
func For(ns string) Set {
	prefix := "vidq:{" + ns + "}:"
	return Set{
		Details: prefix + "details",
		History: prefix + "history",
		Pending: prefix + "pending",
		Active:  prefix + "active",
	}
}
