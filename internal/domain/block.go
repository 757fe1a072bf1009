package domain

// Block is an ordered, finite group of statements emitted by the parser.
// A block is shared read-only between every pool it is submitted to.
type Block []Statement

// Size returns the number of statements in the block.
func (b Block) Size() int {
	return len(b)
}

// Empty returns true if the block has no statements.
func (b Block) Empty() bool {
	return len(b) == 0
}

// Values returns the statement values in order.
func (b Block) Values() []string {
	out := make([]string, len(b))
	for i, s := range b {
		out[i] = s.Value
	}
	return out
}

// Run executes every statement in order and stops at the first error.
func (b Block) Run(ex Executor) error {
	for _, s := range b {
		if err := s.Run(ex); err != nil {
			return err
		}
	}
	return nil
}
