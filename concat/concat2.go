package concat

// Tuple2 is an assembled two-slot entry.
type Tuple2[T0, T1 any] struct {
	V0 T0
	V1 T1
}

// Builder2 configures a two-way concat.
type Builder2[K comparable, T0, T1 any] struct {
	index0 func(T0) K
	index1 func(T1) K

	assign0 func(*T0, T0)
	assign1 func(*T1, T1)

	complete Predicate
	erase    Predicate
	capacity int
}

// NewBuilder2 starts configuration of a two-way concat keyed by K.
func NewBuilder2[K comparable, T0, T1 any](
	index0 func(T0) K,
	index1 func(T1) K,
) *Builder2[K, T0, T1] {
	return &Builder2[K, T0, T1]{index0: index0, index1: index1}
}

// Complete sets the completion policy.
func (b *Builder2[K, T0, T1]) Complete(p Predicate) *Builder2[K, T0, T1] {
	b.complete = p
	return b
}

// Erase sets the eviction policy; the default is the completion policy.
func (b *Builder2[K, T0, T1]) Erase(p Predicate) *Builder2[K, T0, T1] {
	b.erase = p
	return b
}

// QueueCapacity bounds the output queue; 0 means unbounded.
func (b *Builder2[K, T0, T1]) QueueCapacity(n int) *Builder2[K, T0, T1] {
	b.capacity = n
	return b
}

// Assign0 overrides the slot-0 assigner.
func (b *Builder2[K, T0, T1]) Assign0(fn func(*T0, T0)) *Builder2[K, T0, T1] {
	b.assign0 = fn
	return b
}

// Assign1 overrides the slot-1 assigner.
func (b *Builder2[K, T0, T1]) Assign1(fn func(*T1, T1)) *Builder2[K, T0, T1] {
	b.assign1 = fn
	return b
}

// Build finalizes the concat.
func (b *Builder2[K, T0, T1]) Build() *Concat2[K, T0, T1] {
	complete := b.complete
	if complete == nil {
		complete = AllPresent
	}
	erase := b.erase
	if erase == nil {
		erase = complete
	}

	c := &Concat2[K, T0, T1]{
		core:    newCore[K, Tuple2[T0, T1]](2, b.capacity, complete, erase),
		builder: *b,
	}
	if c.builder.assign0 == nil {
		c.builder.assign0 = func(dst *T0, v T0) { *dst = v }
	}
	if c.builder.assign1 == nil {
		c.builder.assign1 = func(dst *T1, v T1) { *dst = v }
	}
	return c
}

// Concat2 joins two streams into Tuple2 values keyed by K.
type Concat2[K comparable, T0, T1 any] struct {
	core    *core[K, Tuple2[T0, T1]]
	builder Builder2[K, T0, T1]
}

// Put0 feeds slot 0.
func (c *Concat2[K, T0, T1]) Put0(v T0) error {
	return c.core.put(c.builder.index0(v), 0, func(t *Tuple2[T0, T1]) {
		c.builder.assign0(&t.V0, v)
	})
}

// Put1 feeds slot 1.
func (c *Concat2[K, T0, T1]) Put1(v T1) error {
	return c.core.put(c.builder.index1(v), 1, func(t *Tuple2[T0, T1]) {
		c.builder.assign1(&t.V1, v)
	})
}

// TryGet pulls one completed tuple without blocking.
func (c *Concat2[K, T0, T1]) TryGet() (Tuple2[T0, T1], bool) {
	return c.core.tryGet()
}

// Get pulls one completed tuple, blocking until one is available.
func (c *Concat2[K, T0, T1]) Get() (Tuple2[T0, T1], error) {
	return c.core.get()
}

// Size returns the number of entries held in the store: incomplete ones,
// plus completed ones the eviction policy has not erased.
func (c *Concat2[K, T0, T1]) Size() int {
	return c.core.size()
}

// Close shuts down the output queue and wakes blocked Get calls.
func (c *Concat2[K, T0, T1]) Close() {
	c.core.close()
}
