package event

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// EventHandler reacts to a committed event. It returns nil when the event is none of its business.
type EventHandler func(e *EventRecord) *EventHandleResult

type EventHandleResult struct {
	Success           bool
	Message           string
	HandlerIdentifier string
}

type namedHandler struct {
	name   string
	handle EventHandler
}

var (
	handlersLock sync.RWMutex
	handlers     []namedHandler

	InvokeHandlersFunc = invokeHandlers
)

// RegisterHandler appends a handler. Handlers run in registration order after the commit
// of the operation that produced the event.
func RegisterHandler(name string, h EventHandler) {
	handlersLock.Lock()
	defer handlersLock.Unlock()
	handlers = append(handlers, namedHandler{name: name, handle: h})
}

// HandlerNames lists the registered handlers in invocation order.
func HandlerNames() []string {
	handlersLock.RLock()
	defer handlersLock.RUnlock()
	names := make([]string, 0, len(handlers))
	for _, h := range handlers {
		names = append(names, h.name)
	}
	return names
}

func ResetHandlers() {
	handlersLock.Lock()
	defer handlersLock.Unlock()
	handlers = nil
}

func invokeHandlers(record *EventRecord) []EventHandleResult {
	results := []EventHandleResult{}
	if record == nil {
		return results
	}

	handlersLock.RLock()
	registered := append([]namedHandler(nil), handlers...)
	handlersLock.RUnlock()

	log := logrus.WithFields(logrus.Fields{
		"sourceType": record.SourceType,
		"sourceId":   record.SourceId,
		"action":     record.Action,
	})
	for _, h := range registered {
		r := h.invoke(record)
		if r == nil {
			continue
		}
		if r.HandlerIdentifier == "" {
			r.HandlerIdentifier = h.name
		}
		results = append(results, *r)

		entry := log.WithField("handler", r.HandlerIdentifier)
		if r.Success {
			entry.Info("event handled ", r.Message)
		} else {
			entry.Error("event handling failed ", r.Message)
		}
	}
	return results
}

// invoke turns a panicking handler into a failed result so later handlers still run.
func (h namedHandler) invoke(record *EventRecord) (r *EventHandleResult) {
	defer func() {
		if ret := recover(); ret != nil {
			r = &EventHandleResult{Message: fmt.Sprintf("handler panic: %v", ret), HandlerIdentifier: h.name}
		}
	}()
	return h.handle(record)
}
