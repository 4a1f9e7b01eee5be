package concat

// Tuple3 is an assembled three-slot entry.
type Tuple3[T0, T1, T2 any] struct {
	V0 T0
	V1 T1
	V2 T2
}

// Builder3 configures a three-way concat.
type Builder3[K comparable, T0, T1, T2 any] struct {
	index0 func(T0) K
	index1 func(T1) K
	index2 func(T2) K

	assign0 func(*T0, T0)
	assign1 func(*T1, T1)
	assign2 func(*T2, T2)

	complete Predicate
	erase    Predicate
	capacity int
}

// NewBuilder3 starts configuration of a three-way concat keyed by K.
func NewBuilder3[K comparable, T0, T1, T2 any](
	index0 func(T0) K,
	index1 func(T1) K,
	index2 func(T2) K,
) *Builder3[K, T0, T1, T2] {
	return &Builder3[K, T0, T1, T2]{index0: index0, index1: index1, index2: index2}
}

// Complete sets the completion policy.
func (b *Builder3[K, T0, T1, T2]) Complete(p Predicate) *Builder3[K, T0, T1, T2] {
	b.complete = p
	return b
}

// Erase sets the eviction policy; the default is the completion policy.
func (b *Builder3[K, T0, T1, T2]) Erase(p Predicate) *Builder3[K, T0, T1, T2] {
	b.erase = p
	return b
}

// QueueCapacity bounds the output queue; 0 means unbounded.
func (b *Builder3[K, T0, T1, T2]) QueueCapacity(n int) *Builder3[K, T0, T1, T2] {
	b.capacity = n
	return b
}

// Assign0 overrides the slot-0 assigner.
func (b *Builder3[K, T0, T1, T2]) Assign0(fn func(*T0, T0)) *Builder3[K, T0, T1, T2] {
	b.assign0 = fn
	return b
}

// Assign1 overrides the slot-1 assigner.
func (b *Builder3[K, T0, T1, T2]) Assign1(fn func(*T1, T1)) *Builder3[K, T0, T1, T2] {
	b.assign1 = fn
	return b
}

// Assign2 overrides the slot-2 assigner.
func (b *Builder3[K, T0, T1, T2]) Assign2(fn func(*T2, T2)) *Builder3[K, T0, T1, T2] {
	b.assign2 = fn
	return b
}

// Build finalizes the concat.
func (b *Builder3[K, T0, T1, T2]) Build() *Concat3[K, T0, T1, T2] {
	complete := b.complete
	if complete == nil {
		complete = AllPresent
	}
	erase := b.erase
	if erase == nil {
		erase = complete
	}

	c := &Concat3[K, T0, T1, T2]{
		core:    newCore[K, Tuple3[T0, T1, T2]](3, b.capacity, complete, erase),
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
	return c
}

// Concat3 joins three streams into Tuple3 values keyed by K.
type Concat3[K comparable, T0, T1, T2 any] struct {
	core    *core[K, Tuple3[T0, T1, T2]]
	builder Builder3[K, T0, T1, T2]
}

// Put0 feeds slot 0.
func (c *Concat3[K, T0, T1, T2]) Put0(v T0) error {
	return c.core.put(c.builder.index0(v), 0, func(t *Tuple3[T0, T1, T2]) {
		c.builder.assign0(&t.V0, v)
	})
}

// Put1 feeds slot 1.
func (c *Concat3[K, T0, T1, T2]) Put1(v T1) error {
	return c.core.put(c.builder.index1(v), 1, func(t *Tuple3[T0, T1, T2]) {
		c.builder.assign1(&t.V1, v)
	})
}

// Put2 feeds slot 2.
func (c *Concat3[K, T0, T1, T2]) Put2(v T2) error {
	return c.core.put(c.builder.index2(v), 2, func(t *Tuple3[T0, T1, T2]) {
		c.builder.assign2(&t.V2, v)
	})
}

// TryGet pulls one completed tuple without blocking.
func (c *Concat3[K, T0, T1, T2]) TryGet() (Tuple3[T0, T1, T2], bool) {
	return c.core.tryGet()
}

// Get pulls one completed tuple, blocking until one is available.
func (c *Concat3[K, T0, T1, T2]) Get() (Tuple3[T0, T1, T2], error) {
	return c.core.get()
}

// Size returns the number of entries held in the store: incomplete ones,
// plus completed ones the eviction policy has not erased.
func (c *Concat3[K, T0, T1, T2]) Size() int {
	return c.core.size()
}

// Close shuts down the output queue and wakes blocked Get calls.
func (c *Concat3[K, T0, T1, T2]) Close() {
	c.core.close()
}
