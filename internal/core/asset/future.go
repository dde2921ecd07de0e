package asset

// Future is the one-shot result of an asynchronous load.
type Future struct {
	path  string
	done  chan struct{}
	model Model
	err   error
}

func newFuture(path string) *Future {
	return &Future{path: path, done: make(chan struct{})}
}

// Resolved returns an already completed future.
func Resolved(path string, m Model, err error) *Future {
	f := newFuture(path)
	f.complete(m, err)
	return f
}

func (f *Future) complete(m Model, err error) {
	f.model, f.err = m, err
	close(f.done)
}

func (f *Future) Path() string { return f.path }

// Done is closed once the result is available.
func (f *Future) Done() <-chan struct{} { return f.done }

// Poll returns the result without blocking; ready is false while loading.
func (f *Future) Poll() (m Model, ready bool, err error) {
	select {
	case <-f.done:
		return f.model, true, f.err
	default:
		return Model{}, false, nil
	}
}

// Wait blocks until the load completes.
func (f *Future) Wait() (Model, error) {
	<-f.done
	return f.model, f.err
}
