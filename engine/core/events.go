package core

import "sync"

type EventContext struct {
	Data struct {
		U32 [4]uint32
		// C carries names: the catalog name in C[0], a file path in C[1].
		C [4]string
	}
}

// System internal event codes. Application should use codes beyond 255.
type SystemEventCode int

const (
	// A catalog was loaded for the first time.
	/* Context usage:
	 * string catalog = data.C[0];
	 * string path = data.C[1];
	 */
	EventCodeCatalogLoaded SystemEventCode = 0x01

	// A catalog file changed on disk and was loaded again.
	/* Context usage:
	 * string catalog = data.C[0];
	 * string path = data.C[1];
	 */
	EventCodeCatalogReloaded SystemEventCode = 0x02

	// A linker finished generating register mappings.
	/* Context usage:
	 * string catalog = data.C[0];
	 * u32 buffer_count = data.U32[0];
	 * u32 type_count = data.U32[1];
	 */
	EventCodeConstantsLinked SystemEventCode = 0x03

	MaxEventCode SystemEventCode = 0xFF
)

const maxMessageCodes = 16384

type registeredEvent struct {
	listener interface{}
	callback FnOnEvent
}

// Should return true if handled.
type FnOnEvent func(code SystemEventCode, sender interface{}, listenerInst interface{}, data EventContext) bool

var (
	eventMutex sync.RWMutex
	registered = make(map[SystemEventCode][]*registeredEvent)
)

/**
 * Register to listen for when events are sent with the provided code. Events with duplicate
 * listeners will not be registered again and will cause this to return false.
 * @param code The event code to listen for.
 * @param listener A listener instance. Can be nil.
 * @param onEvent The callback invoked when the event code is fired.
 * @returns true if the event is successfully registered; otherwise false.
 */
func EventRegister(code SystemEventCode, listener interface{}, onEvent FnOnEvent) bool {
	if code < 0 || code >= maxMessageCodes || onEvent == nil {
		return false
	}
	eventMutex.Lock()
	defer eventMutex.Unlock()

	for _, e := range registered[code] {
		if e.listener == listener {
			LogWarn("listener already registered for event code %d", code)
			return false
		}
	}
	registered[code] = append(registered[code], &registeredEvent{
		listener: listener,
		callback: onEvent,
	})
	return true
}

/**
 * Unregister from listening for when events are sent with the provided code.
 * @returns true if the event is successfully unregistered; otherwise false.
 */
func EventUnregister(code SystemEventCode, listener interface{}) bool {
	eventMutex.Lock()
	defer eventMutex.Unlock()

	events := registered[code]
	for i, e := range events {
		if e.listener == listener {
			registered[code] = append(events[:i], events[i+1:]...)
			return true
		}
	}
	return false
}

/**
 * Fires an event to listeners of the given code. If an event handler returns
 * true, the event is considered handled and is not passed on to any more listeners.
 * @returns true if handled, otherwise false.
 */
func EventFire(code SystemEventCode, sender interface{}, context EventContext) bool {
	eventMutex.RLock()
	events := append([]*registeredEvent(nil), registered[code]...)
	eventMutex.RUnlock()

	for _, e := range events {
		if e.callback(code, sender, e.listener, context) {
			// Message has been handled, do not send to other listeners.
			return true
		}
	}
	return false
}

// EventShutdown drops every registration.
func EventShutdown() {
	eventMutex.Lock()
	defer eventMutex.Unlock()
	registered = make(map[SystemEventCode][]*registeredEvent)
}
