package transform

// A Transformer turns one record's literal JSON text into output bytes.
// One call has three possible outcomes:
//
//   - a non-empty result, which the caller emits verbatim;
//   - an empty result, meaning the record produced no output (this is not
//     an error, e.g. a filter that selects nothing from the record);
//   - a non-nil error, reported to the caller which owns the continuation
//     policy.
//
// A Transformer holds no per-record state, so a single instance serves a
// whole run serially.
type Transformer interface {
	Transform(record []byte) ([]byte, error)
}

// Func adapts a function to the Transformer interface.
type Func func(record []byte) ([]byte, error)

func (f Func) Transform(record []byte) ([]byte, error) {
	return f(record)
}
