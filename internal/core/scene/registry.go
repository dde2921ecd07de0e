package scene

// Registry is the ordered set of objects handed to the renderer. Order only
// matters among track segments, where it encodes the ring sequence from the
// front (nearest) segment to the farthest one.
type Registry struct {
	objects []*Object
}

func NewRegistry(objects ...*Object) *Registry {
	r := &Registry{objects: make([]*Object, 0, len(objects))}
	for _, o := range objects {
		r.Add(o)
	}
	return r
}

// Add appends o. Adding the same object twice is a no-op.
func (r *Registry) Add(o *Object) {
	if o == nil {
		return
	}
	for _, existing := range r.objects {
		if existing == o {
			return
		}
	}
	r.objects = append(r.objects, o)
}

// Objects returns the registry order. The slice must not be modified.
func (r *Registry) Objects() []*Object {
	return r.objects
}

func (r *Registry) Len() int {
	return len(r.objects)
}

// OfKind returns the objects of a kind in registry order.
func (r *Registry) OfKind(kind Kind) []*Object {
	var out []*Object
	for _, o := range r.objects {
		if o.Kind == kind {
			out = append(out, o)
		}
	}
	return out
}

func (r *Registry) Count(kind Kind) int {
	n := 0
	for _, o := range r.objects {
		if o.Kind == kind {
			n++
		}
	}
	return n
}

// Counts returns the number of objects per kind.
func (r *Registry) Counts() map[Kind]int {
	out := make(map[Kind]int)
	for _, o := range r.objects {
		out[o.Kind]++
	}
	return out
}

// RotateKind moves the first object of kind into the last slot held by that
// kind, shifting the others forward. Slots of other kinds are untouched.
func (r *Registry) RotateKind(kind Kind) {
	var slots []int
	for i, o := range r.objects {
		if o.Kind == kind {
			slots = append(slots, i)
		}
	}
	if len(slots) < 2 {
		return
	}
	first := r.objects[slots[0]]
	for i := 0; i < len(slots)-1; i++ {
		r.objects[slots[i]] = r.objects[slots[i+1]]
	}
	r.objects[slots[len(slots)-1]] = first
}
