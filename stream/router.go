package stream

import (
	"context"
	"strings"
	"sync"
)

var router *Router

// Router manages the relationship between streams and listeners
type Router struct {
	sync.RWMutex
	cancel     context.CancelFunc
	byStream   map[string]map[*Listener]struct{}
	byListener map[*Listener]map[string]struct{}
}

// NewRouter allocates the required maps to build a new
// stream router
func NewRouter() *Router {
	return &Router{
		byStream:   map[string]map[*Listener]struct{}{},
		byListener: map[*Listener]map[string]struct{}{},
	}
}

// Update updates the stream router by updating its internal maps to maintain
// the connection <-> stream state of the streaming interface. This is a
// thread-safe locking call to the router.
func (r *Router) Update(l *Listener, streams []string) {
	r.Lock()
	defer r.Unlock()
	// clean out streams the listener no longer cares about
	for _, stream := range r.getStreams(l) {
		remove := true
		for _, s := range streams {
			if strings.EqualFold(stream, s) {
				remove = false
				break
			}
		}
		if remove {
			r.removeStream(stream, l)
		}
	}
	// add the streams the listener does care about
	for _, stream := range streams {
		lM, ok := r.byStream[stream]
		if !ok {
			lM = map[*Listener]struct{}{}
			r.byStream[stream] = lM
		}
		lM[l] = struct{}{}

		sM, ok := r.byListener[l]
		if !ok {
			sM = map[string]struct{}{}
			r.byListener[l] = sM
		}
		sM[stream] = struct{}{}
	}
}

// GetListeners is a thread-safe call to retrieve the listeners
// for a given stream
func (r *Router) GetListeners(stream string) []*Listener {
	r.RLock()
	defer r.RUnlock()
	return r.getListeners(stream)
}

// getListeners returns all listeners listening to the specified stream.
// this call is not in itself thread-safe.
func (r *Router) getListeners(stream string) (listeners []*Listener) {
	if m, ok := r.byStream[stream]; ok {
		listeners = make([]*Listener, 0, len(m))
		for l := range m {
			listeners = append(listeners, l)
		}
	}
	return listeners
}

// GetStreams is a thread-safe call to retrieve the streams
// for a given listener
func (r *Router) GetStreams(l *Listener) []string {
	r.RLock()
	defer r.RUnlock()
	return r.getStreams(l)
}

// getStreams returns all streams that the specified listener is listening to
func (r *Router) getStreams(l *Listener) (streams []string) {
	if m, ok := r.byListener[l]; ok {
		streams = make([]string, 0, len(m))
		for stream := range m {
			streams = append(streams, stream)
		}
	}
	return streams
}

func (r *Router) removeStream(stream string, l *Listener) {
	if lM, ok := r.byStream[stream]; ok {
		delete(lM, l)
		if len(lM) == 0 {
			delete(r.byStream, stream)
		}
	}
	if sM, ok := r.byListener[l]; ok {
		delete(sM, stream)
		if len(sM) == 0 {
			delete(r.byListener, l)
		}
	}
}
