/*
Licensed to the Apache Software Foundation (ASF) under one
or more contributor license agreements.  See the NOTICE file
distributed with this work for additional information
regarding copyright ownership.  The ASF licenses this file
to you under the Apache License, Version 2.0 (the
"License"); you may not use this file except in compliance
with the License.  You may obtain a copy of the License at

  http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing,
software distributed under the License is distributed on an
"AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
KIND, either express or implied.  See the License for the
specific language governing permissions and limitations
under the License.
*/

// Package bufferpool implements the fixed capacity pool of packet descriptors
// used by the forwarding path.
package bufferpool

import (
	"errors"
	"fmt"
	"sync"

	utilerrors "k8s.io/apimachinery/pkg/util/errors"
	"k8s.io/klog"
)

var (
	ErrPoolExhausted  = errors.New("buffer pool exhausted")
	ErrNotInitialized = errors.New("buffer pool not initialized")
)

type SlotState int

const (
	SlotFree SlotState = iota
	SlotInUse
	// SlotUnavailable marks a slot whose descriptor could not be built. It is
	// never retried.
	SlotUnavailable
)

func (s SlotState) String() string {
	switch s {
	case SlotFree:
		return "free"
	case SlotInUse:
		return "in_use"
	case SlotUnavailable:
		return "unavailable"
	default:
		return fmt.Sprintf("SlotState(%d)", int(s))
	}
}

type Stats struct {
	Capacity    int
	Free        int
	InUse       int
	Unavailable int
}

type slot struct {
	state SlotState
	desc  *Descriptor
}

// Pool hands out descriptors from a fixed array of slots. Slots are searched
// round robin from a cursor under a single lock.
type Pool struct {
	mu   sync.Mutex
	cond *sync.Cond

	cfg     Config
	memory  Memory
	metrics *Metrics

	slots       []slot
	cursor      int
	inUse       int
	unavailable int
	ready       bool
	building    bool
}

type Option func(*Pool)

func WithMemory(m Memory) Option {
	return func(p *Pool) {
		p.memory = m
	}
}

func WithMetrics(m *Metrics) Option {
	return func(p *Pool) {
		p.metrics = m
	}
}

// New returns an uninitialized pool. Acquire blocks, or fails under the
// non-blocking policy, until Init has run.
func New(cfg Config, opts ...Option) *Pool {
	cfg.applyDefaults()

	p := &Pool{cfg: cfg}
	p.cond = sync.NewCond(&p.mu)

	for _, opt := range opts {
		opt(p)
	}

	if p.memory == nil {
		p.memory = defaultMemory()
	}
	if p.metrics == nil {
		p.metrics = NewMetrics(nil)
	}

	return p
}

// Init builds Capacity+ReservedSlots slots. A slot whose descriptor cannot be
// built is marked unavailable and the pool is built without it. Calling Init
// on an initialized pool does nothing.
func (p *Pool) Init() {
	p.mu.Lock()
	if p.ready || p.building {
		p.mu.Unlock()
		klog.Warning("double call to buffer pool init, skipping")
		return
	}
	p.building = true
	p.mu.Unlock()

	total := p.cfg.Capacity + ReservedSlots
	slots := make([]slot, total)
	unavailable := 0

	for i := range slots {
		desc, err := p.newDescriptor(uint32(i))
		if err != nil {
			klog.Warningf("buffer pool slot %d is unavailable: %v", i, err)
			slots[i].state = SlotUnavailable
			unavailable++
			continue
		}

		slots[i] = slot{state: SlotFree, desc: desc}
	}

	p.mu.Lock()
	p.slots = slots
	p.cursor = 0
	p.inUse = 0
	p.unavailable = unavailable
	p.building = false
	p.ready = true
	p.metrics.setSlots(p.statsLocked())
	p.mu.Unlock()

	p.cond.Broadcast()

	klog.Infof("buffer pool initialized with %d slots (%d reserved, %d unavailable, slot size %d, %s)",
		total, ReservedSlots, unavailable, p.cfg.SlotSize, p.cfg.Policy)
}

// newDescriptor builds the descriptor of one slot. On failure nothing built
// for the slot is left allocated.
func (p *Pool) newDescriptor(id uint32) (desc *Descriptor, err error) {
	data, err := p.memory.Alloc(p.cfg.SlotSize)
	if err != nil {
		return nil, fmt.Errorf("error allocating packet storage: %v", err)
	}

	defer func() {
		if err == nil {
			return
		}

		if ferr := p.memory.Free(data); ferr != nil {
			klog.Errorf("error freeing packet storage of slot %d: %v", id, ferr)
		}
	}()

	handle, err := p.memory.Map(data)
	if err != nil {
		return nil, fmt.Errorf("error mapping packet storage: %v", err)
	}

	return &Descriptor{
		pool:       p,
		internalID: id,
		bufferID:   UnsetBufferID,
		handle:     handle,
		data:       data,
	}, nil
}

// Acquire hands out a free descriptor following the configured policy.
func (p *Pool) Acquire() (*Descriptor, error) {
	if p.cfg.Policy == PolicyNonBlocking {
		return p.TryAcquire()
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	waited := false
	for {
		if p.ready {
			if desc := p.takeLocked(); desc != nil {
				return desc, nil
			}
		}

		if !waited {
			p.metrics.Waits.Inc()
			waited = true
		}

		// woken by Init or Release, the slot may already be gone
		p.cond.Wait()
	}
}

// TryAcquire hands out a free descriptor or fails immediately, whatever the
// configured policy.
func (p *Pool) TryAcquire() (*Descriptor, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.ready {
		return nil, ErrNotInitialized
	}

	desc := p.takeLocked()
	if desc == nil {
		p.metrics.Exhausted.Inc()
		return nil, ErrPoolExhausted
	}

	return desc, nil
}

func (p *Pool) takeLocked() *Descriptor {
	n := len(p.slots)
	for i := 0; i < n; i++ {
		idx := (p.cursor + i) % n

		s := &p.slots[idx]
		if s.state != SlotFree {
			continue
		}

		s.state = SlotInUse
		p.cursor = (idx + 1) % n
		p.inUse++

		p.metrics.Acquires.Inc()
		p.metrics.setSlots(p.statsLocked())
		return s.desc
	}

	return nil
}

// Release returns desc to the pool and wakes one waiter. Releasing a
// descriptor that is not in use in this pool panics.
func (p *Pool) Release(desc *Descriptor) {
	if desc == nil {
		panic("bufferpool: release of nil descriptor")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	id := int(desc.internalID)
	if desc.pool != p || !p.ready || id >= len(p.slots) || p.slots[id].desc != desc {
		panic(fmt.Sprintf("bufferpool: release of descriptor %d not owned by this pool", id))
	}

	s := &p.slots[id]
	if s.state != SlotInUse {
		panic(fmt.Sprintf("bufferpool: release of descriptor %d in state %s", id, s.state))
	}

	desc.reset()
	s.state = SlotFree
	p.inUse--

	p.metrics.Releases.Inc()
	p.metrics.setSlots(p.statsLocked())

	p.cond.Signal()
}

// IncreaseCapacity always panics, the capacity of a pool is fixed at Init.
func (p *Pool) IncreaseCapacity(capacity int) {
	panic(fmt.Sprintf("bufferpool: cannot resize pool to %d slots, capacity is fixed", capacity))
}

// Destroy frees every descriptor and resets the pool to uninitialized. The
// forwarding path must have released all descriptors before. Destroying an
// uninitialized pool panics.
func (p *Pool) Destroy() error {
	p.mu.Lock()
	if !p.ready {
		p.mu.Unlock()
		panic("bufferpool: destroy of uninitialized pool")
	}

	if p.inUse > 0 {
		klog.Warningf("destroying buffer pool with %d descriptors in use", p.inUse)
	}

	slots := p.slots
	p.slots = nil
	p.cursor = 0
	p.inUse = 0
	p.unavailable = 0
	p.ready = false
	p.metrics.setSlots(Stats{})
	p.mu.Unlock()

	var errs []error
	for i := range slots {
		desc := slots[i].desc
		if desc == nil {
			continue
		}

		if err := p.memory.Unmap(desc.data); err != nil {
			errs = append(errs, fmt.Errorf("error unmapping slot %d: %v", i, err))
		}
		if err := p.memory.Free(desc.data); err != nil {
			errs = append(errs, fmt.Errorf("error freeing slot %d: %v", i, err))
		}

		desc.data = nil
		desc.pool = nil
	}

	klog.Infof("buffer pool destroyed, %d slots released", len(slots))
	return utilerrors.NewAggregate(errs)
}

// Capacity is the total number of slots, reserved slots included.
func (p *Pool) Capacity() int {
	return p.cfg.Capacity + ReservedSlots
}

func (p *Pool) Config() Config {
	return p.cfg
}

func (p *Pool) Initialized() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.ready
}

func (p *Pool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.statsLocked()
}

func (p *Pool) statsLocked() Stats {
	if !p.ready && !p.building {
		return Stats{}
	}

	total := len(p.slots)
	return Stats{
		Capacity:    total,
		Free:        total - p.inUse - p.unavailable,
		InUse:       p.inUse,
		Unavailable: p.unavailable,
	}
}

// SlotState returns the state of slot i. It reports false when the pool
// has no slot i, which is always the case before Init.
func (p *Pool) SlotState(i int) (SlotState, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if i < 0 || i >= len(p.slots) {
		return 0, false
	}
	return p.slots[i].state, true
}
