package irc

// batchBuffer holds messages tagged with an open batch id until its closing
// BATCH frame, per spec.md §4.4/§4.6. Nested batches are explicitly not
// supported (spec.md §4.4): a message tagged with a batch id that is itself
// nested inside another open batch is appended to the innermost one it
// names, with no special-casing of the nesting.
type batchBuffer struct {
	pending map[string][]Message
}

func newBatchBuffer() *batchBuffer {
	return &batchBuffer{pending: map[string][]Message{}}
}

func (b *batchBuffer) open(id string) {
	b.pending[id] = nil
}

func (b *batchBuffer) isOpen(id string) bool {
	_, ok := b.pending[id]
	return ok
}

func (b *batchBuffer) append(id string, m Message) {
	b.pending[id] = append(b.pending[id], m)
}

// close pops and returns the buffered messages for id, in arrival order.
func (b *batchBuffer) close(id string) []Message {
	msgs := b.pending[id]
	delete(b.pending, id)
	return msgs
}
