package registry

import "time"

// FindPath returns the ordered list of edges converting from one registered
// tag to another. The search is breadth-first over the directed edge graph;
// ties between equally short paths are broken by registration order, so the
// composed conversion is reproducible. The empty path is returned when
// from == to. Resolved paths are memoized for the lifetime of the registry,
// since the graph does not change after initialization.
func (r *Registry[P]) FindPath(from, to Tag) ([]Edge[P], error) {
	r.mu.RLock()
	if _, ok := r.systems[from]; !ok {
		known := r.tagsLocked()
		r.mu.RUnlock()
		return nil, &UnknownSystemError{Family: r.family, Tag: from, Known: known}
	}
	if _, ok := r.systems[to]; !ok {
		known := r.tagsLocked()
		r.mu.RUnlock()
		return nil, &UnknownSystemError{Family: r.family, Tag: to, Known: known}
	}
	if path, ok := r.paths[pathKey{from, to}]; ok {
		obs := r.obs
		r.mu.RUnlock()
		if obs != nil {
			obs.ObservePathLookup(r.family, true)
		}
		return path, nil
	}
	path := r.searchLocked(from, to)
	obs := r.obs
	r.mu.RUnlock()

	if obs != nil {
		obs.ObservePathLookup(r.family, false)
	}
	if path == nil {
		return nil, &UnknownConversionError{Family: r.family, From: from, To: to}
	}

	r.mu.Lock()
	r.paths[pathKey{from, to}] = path
	r.mu.Unlock()
	return path, nil
}

// searchLocked runs the BFS under at least a read lock. It returns nil when
// no path exists.
func (r *Registry[P]) searchLocked(from, to Tag) []Edge[P] {
	if from == to {
		return []Edge[P]{}
	}

	parent := make(map[Tag]Edge[P])
	visited := map[Tag]bool{from: true}
	queue := []Tag{from}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, e := range r.edges[cur] {
			if visited[e.To] {
				continue
			}
			if _, ok := r.systems[e.To]; !ok {
				// Edge into a tag that never got registered.
				continue
			}
			visited[e.To] = true
			parent[e.To] = e
			if e.To == to {
				var rev []Edge[P]
				for t := to; t != from; t = parent[t].From {
					rev = append(rev, parent[t])
				}
				path := make([]Edge[P], 0, len(rev))
				for i := len(rev) - 1; i >= 0; i-- {
					path = append(path, rev[i])
				}
				return path
			}
			queue = append(queue, e.To)
		}
	}
	return nil
}

// Convert resolves the path from one tag to another and applies each edge in
// order to the payload. It is pure: the input payload is never mutated, and
// the caller receives a fresh payload expressed in the target system.
func (r *Registry[P]) Convert(payload P, from, to Tag) (P, error) {
	path, err := r.FindPath(from, to)
	if err != nil {
		var zero P
		return zero, err
	}

	r.mu.RLock()
	obs := r.obs
	r.mu.RUnlock()

	start := time.Now()
	out := payload
	for _, e := range path {
		out, err = e.Apply(out)
		if err != nil {
			break
		}
	}
	if obs != nil {
		obs.ObserveConversion(r.family, from, to, time.Since(start), err)
	}
	if err != nil {
		var zero P
		return zero, err
	}
	return out, nil
}
