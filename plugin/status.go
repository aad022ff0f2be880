package plugin

// Status is the result code returned across every host callback, per
// spec §6's ABI table. It collapses to a C int at the cmd/plugin cgo
// boundary (0 = ok, non-zero = a Status value, the host treats any
// non-zero value as failure and consults PanicOnError for whether to
// abort).
type Status int32

const (
	StatusOK Status = iota
	// StatusRecoverable means the callback failed but the plugin's own
	// state is still consistent; the host may retry or skip this
	// notification and keep delivering later ones.
	StatusRecoverable
	// StatusFatal means the plugin can no longer guarantee correctness
	// (e.g. the fan-out ring consumer died); PanicOnError decides
	// whether this aborts the host process.
	StatusFatal
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusRecoverable:
		return "recoverable"
	case StatusFatal:
		return "fatal"
	default:
		return "unknown"
	}
}
