package global

var globalLogger Logging = NewDefault()

// SetGlobalLogger is not thread safe; call once during process startup
// before any component reads Logger().
func SetGlobalLogger(l Logging) {
	globalLogger = l
}

func Logger() Logging {
	return globalLogger
}
