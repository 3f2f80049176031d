package smpp

import "fmt"

// Hooks are user-supplied observability callbacks invoked around PDU I/O.
// They may not block and may fail; failures are recovered into a
// HookFailure, logged, and swallowed — they never propagate to the peer
// (spec.md section 6.3).
type Hooks interface {
	// BeforeSend is called just before bytes are written to the wire.
	BeforeSend(smppCommand CommandID, logID, hookMetadata string)
	// OnResponse is called after each inbound PDU is parsed and routed.
	OnResponse(smppCommand CommandID, logID, hookMetadata string, status CommandStatus)
}

// LoggingHooks is the default Hooks implementation: it logs both calls and
// does nothing else, grounded on naz.hooks.SimpleHook.
type LoggingHooks struct {
	Logger Logger
}

// NewLoggingHooks returns a LoggingHooks writing through logger.
func NewLoggingHooks(logger Logger) *LoggingHooks {
	return &LoggingHooks{Logger: logger}
}

func (h *LoggingHooks) BeforeSend(smppCommand CommandID, logID, hookMetadata string) {
	h.Logger.Info("hook.before_send", "smpp_command", smppCommand.String(), "log_id", logID, "hook_metadata", hookMetadata)
}

func (h *LoggingHooks) OnResponse(smppCommand CommandID, logID, hookMetadata string, status CommandStatus) {
	h.Logger.Info("hook.on_response", "smpp_command", smppCommand.String(), "log_id", logID, "hook_metadata", hookMetadata, "command_status", status.String())
}

// safeHookCall recovers a panic from a user hook into a HookFailure, logs
// it, and swallows it — hook failures never reach the peer or abort the
// runtime (spec.md section 7).
func safeHookCall(logger Logger, hookName string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			err, ok := r.(error)
			if !ok {
				err = fmt.Errorf("%v", r)
			}
			hf := &HookFailure{Hook: hookName, Err: err}
			logger.Error("hook failure", "hook", hookName, "error", hf.Error())
		}
	}()
	fn()
}
