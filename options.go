package cma

// Option configures a Machine under construction.
type Option interface{ apply(m *Machine) }

// Options combines any number of options into one, applied in order; nil
// options are skipped.
func Options(opts ...Option) Option {
	var res options
	for _, opt := range opts {
		switch impl := opt.(type) {
		case nil:
		case options:
			res = append(res, impl...)
		default:
			res = append(res, impl)
		}
	}
	return res
}

// WithCapacity sets the total memory size, in words, shared by stack and heap.
func WithCapacity(words int) Option { return capacityOption(words) }

// WithLogf enables trace logging of every executed instruction.
func WithLogf(logfn func(mess string, args ...interface{})) Option { return withLogfn(logfn) }

// WithTracer attaches a tracer that observes the machine after every
// executed instruction. The tracer is handed a Snapshot of all memory each
// step; pair it with WithCapacity.
func WithTracer(t Tracer) Option { return tracerOption{t} }

type options []Option
type capacityOption int
type withLogfn func(mess string, args ...interface{})
type tracerOption struct{ Tracer }

func (opts options) apply(m *Machine) {
	for _, opt := range opts {
		opt.apply(m)
	}
}

func (words capacityOption) apply(m *Machine) { m.capacity = int(words) }
func (logfn withLogfn) apply(m *Machine)      { m.logfn = logfn }
func (t tracerOption) apply(m *Machine)       { m.tracer = t.Tracer }
