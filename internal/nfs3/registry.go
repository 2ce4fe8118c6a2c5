package nfs3

import (
	"strings"
	"sync"

	"github.com/marmos91/nfsclient/internal/rpcerrors"
)

// RootToken is the local token reserved for the mount's root file handle.
const RootToken uint64 = 0

type handleEntry struct {
	serverHandle []byte
	name         string
	parent       uint64
	hasParent    bool
}

// Registry maps opaque server file handles to stable local integer
// tokens and reconstructs virtual paths by walking parent links. Safe
// for concurrent use.
type Registry struct {
	mu        sync.Mutex
	byToken   map[uint64]*handleEntry
	byHandle  map[string]uint64
	nextToken uint64
}

// NewRegistry returns a registry with only the root token (0) populated,
// bound to rootHandle.
func NewRegistry(rootHandle []byte) *Registry {
	r := &Registry{
		byToken:   make(map[uint64]*handleEntry),
		byHandle:  make(map[string]uint64),
		nextToken: 1,
	}
	r.byToken[RootToken] = &handleEntry{serverHandle: cloneBytes(rootHandle)}
	r.byHandle[string(rootHandle)] = RootToken
	return r
}

func cloneBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// Register maps serverHandle to a stable token, assigning a new one the
// first time this handle is seen and returning the existing token on
// every subsequent call. name and parent record where this handle was
// last observed, for path reconstruction; "." and ".." sightings never
// overwrite a real name.
func (r *Registry) Register(serverHandle []byte, name string, parent uint64) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := string(serverHandle)
	if token, ok := r.byHandle[key]; ok {
		if entry := r.byToken[token]; token != RootToken && nameUsable(name) {
			entry.name = name
			entry.parent = parent
			entry.hasParent = true
		}
		return token
	}

	token := r.nextToken
	r.nextToken++
	entry := &handleEntry{serverHandle: cloneBytes(serverHandle)}
	if nameUsable(name) {
		entry.name = name
		entry.parent = parent
		entry.hasParent = true
	}
	r.byToken[token] = entry
	r.byHandle[key] = token
	return token
}

func nameUsable(name string) bool {
	return name != "" && name != "." && name != ".."
}

// Resolve returns the server handle bytes for token.
func (r *Registry) Resolve(token uint64) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.byToken[token]
	if !ok {
		return nil, rpcerrors.NewHandleUnknown(token)
	}
	return cloneBytes(entry.serverHandle), nil
}

// Path reconstructs the virtual path for token by walking parent links
// back to the root, joining names with "/". A visited-token set guards
// against a cyclic parent chain (a server handing back handles that
// alias across directories): if a cycle is detected, the partially
// assembled path is returned rather than recursing indefinitely.
func (r *Registry) Path(token uint64) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byToken[token]; !ok {
		return "", rpcerrors.NewHandleUnknown(token)
	}

	var parts []string
	visited := make(map[uint64]bool)
	current := token

	for {
		if visited[current] {
			break
		}
		visited[current] = true

		entry, ok := r.byToken[current]
		if !ok {
			break
		}
		if current == RootToken || !entry.hasParent {
			break
		}

		parts = append([]string{entry.name}, parts...)
		current = entry.parent
	}

	return "/" + strings.Join(parts, "/"), nil
}
