package concat

// Tuple4 is an assembled four-slot entry.
type Tuple4[T0, T1, T2, T3 any] struct {
	V0 T0
	V1 T1
	V2 T2
	V3 T3
}

// Builder4 configures a four-way concat. Index extractors are mandatory;
// policies and assigners have defaults (AllPresent completion,
// emit-then-erase eviction, plain assignment).
type Builder4[K comparable, T0, T1, T2, T3 any] struct {
	index0 func(T0) K
	index1 func(T1) K
	index2 func(T2) K
	index3 func(T3) K

	assign0 func(*T0, T0)
	assign1 func(*T1, T1)
	assign2 func(*T2, T2)
	assign3 func(*T3, T3)

	complete Predicate
	erase    Predicate
	capacity int
}

// NewBuilder4 starts configuration of a four-way concat keyed by K.
func NewBuilder4[K comparable, T0, T1, T2, T3 any](
	index0 func(T0) K,
	index1 func(T1) K,
	index2 func(T2) K,
	index3 func(T3) K,
) *Builder4[K, T0, T1, T2, T3] {
	return &Builder4[K, T0, T1, T2, T3]{
		index0: index0,
		index1: index1,
		index2: index2,
		index3: index3,
	}
}

// Complete sets the completion policy.
func (b *Builder4[K, T0, T1, T2, T3]) Complete(p Predicate) *Builder4[K, T0, T1, T2, T3] {
	b.complete = p
	return b
}

// Erase sets the eviction policy. The default is the completion policy,
// so entries are erased as soon as they emit.
func (b *Builder4[K, T0, T1, T2, T3]) Erase(p Predicate) *Builder4[K, T0, T1, T2, T3] {
	b.erase = p
	return b
}

// QueueCapacity bounds the output queue; 0 means unbounded.
func (b *Builder4[K, T0, T1, T2, T3]) QueueCapacity(n int) *Builder4[K, T0, T1, T2, T3] {
	b.capacity = n
	return b
}

// Assign0 overrides the slot-0 assigner, e.g. to append instead of
// overwrite.
func (b *Builder4[K, T0, T1, T2, T3]) Assign0(fn func(*T0, T0)) *Builder4[K, T0, T1, T2, T3] {
	b.assign0 = fn
	return b
}

// Assign1 overrides the slot-1 assigner.
func (b *Builder4[K, T0, T1, T2, T3]) Assign1(fn func(*T1, T1)) *Builder4[K, T0, T1, T2, T3] {
	b.assign1 = fn
	return b
}

// Assign2 overrides the slot-2 assigner.
func (b *Builder4[K, T0, T1, T2, T3]) Assign2(fn func(*T2, T2)) *Builder4[K, T0, T1, T2, T3] {
	b.assign2 = fn
	return b
}

// Assign3 overrides the slot-3 assigner.
func (b *Builder4[K, T0, T1, T2, T3]) Assign3(fn func(*T3, T3)) *Builder4[K, T0, T1, T2, T3] {
	b.assign3 = fn
	return b
}

// Build finalizes the concat.
func (b *Builder4[K, T0, T1, T2, T3]) Build() *Concat4[K, T0, T1, T2, T3] {
	complete := b.complete
	if complete == nil {
		complete = AllPresent
	}
	erase := b.erase
	if erase == nil {
		erase = complete
	}

	c := &Concat4[K, T0, T1, T2, T3]{
		core:    newCore[K, Tuple4[T0, T1, T2, T3]](4, b.capacity, complete, erase),
		builder: *b,
	}
	if c.builder.assign0 == nil {
		c.builder.assign0 = func(dst *T0, v T0) { *dst = v }
	}
	if c.builder.assign1 == nil {
		c.builder.assign1 = func(dst *T1, v T1) { *dst = v }
	}
	if c.builder.assign2 == nil {
		c.builder.assign2 = func(dst *T2, v T2) { *dst = v }
	}
	if c.builder.assign3 == nil {
		c.builder.assign3 = func(dst *T3, v T3) { *dst = v }
	}
	return c
}

// Concat4 joins four streams into Tuple4 values keyed by K. All Put
// methods are safe for concurrent producers.
type Concat4[K comparable, T0, T1, T2, T3 any] struct {
	core    *core[K, Tuple4[T0, T1, T2, T3]]
	builder Builder4[K, T0, T1, T2, T3]
}

// Put0 feeds slot 0.
func (c *Concat4[K, T0, T1, T2, T3]) Put0(v T0) error {
	return c.core.put(c.builder.index0(v), 0, func(t *Tuple4[T0, T1, T2, T3]) {
		c.builder.assign0(&t.V0, v)
	})
}

// Put1 feeds slot 1.
func (c *Concat4[K, T0, T1, T2, T3]) Put1(v T1) error {
	return c.core.put(c.builder.index1(v), 1, func(t *Tuple4[T0, T1, T2, T3]) {
		c.builder.assign1(&t.V1, v)
	})
}

// Put2 feeds slot 2.
func (c *Concat4[K, T0, T1, T2, T3]) Put2(v T2) error {
	return c.core.put(c.builder.index2(v), 2, func(t *Tuple4[T0, T1, T2, T3]) {
		c.builder.assign2(&t.V2, v)
	})
}

// Put3 feeds slot 3.
func (c *Concat4[K, T0, T1, T2, T3]) Put3(v T3) error {
	return c.core.put(c.builder.index3(v), 3, func(t *Tuple4[T0, T1, T2, T3]) {
		c.builder.assign3(&t.V3, v)
	})
}

// TryGet pulls one completed tuple without blocking.
func (c *Concat4[K, T0, T1, T2, T3]) TryGet() (Tuple4[T0, T1, T2, T3], bool) {
	return c.core.tryGet()
}

// Get pulls one completed tuple, blocking until one is available. After
// Close it fails with ErrShutdown once drained.
func (c *Concat4[K, T0, T1, T2, T3]) Get() (Tuple4[T0, T1, T2, T3], error) {
	return c.core.get()
}

// Size returns the number of entries held in the store: incomplete ones,
// plus completed ones the eviction policy has not erased.
func (c *Concat4[K, T0, T1, T2, T3]) Size() int {
	return c.core.size()
}

// Close shuts down the output queue and wakes blocked Get calls.
func (c *Concat4[K, T0, T1, T2, T3]) Close() {
	c.core.close()
}
