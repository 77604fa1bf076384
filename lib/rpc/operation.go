// Copyright 2026 The Mist Authors
// SPDX-License-Identifier: Apache-2.0

package rpc

import (
	"fmt"
	"reflect"
	"slices"
	"time"

	"github.com/libretro/mist/lib/protocol"
)

// Unit is the argument or result type of operations that have none.
// It is never put on the wire.
type Unit struct{}

// Operation declares one remote operation with argument type A and
// result type R.
type Operation[A, R any] struct {
	// ID is the operation's wire identity. Stable across releases.
	ID protocol.CallID

	// Name is the operation's snake_case name, used in logs, errors
	// and by generic tooling.
	Name string

	// Timeout overrides the client's default response deadline. Zero
	// uses the default.
	Timeout time.Duration

	// OneWay operations get no response. The client returns as soon as
	// the request is written.
	OneWay bool
}

// Descriptor returns the untyped description of o.
func (o Operation[A, R]) Descriptor() Descriptor {
	return Descriptor{
		ID:      o.ID,
		Name:    o.Name,
		Timeout: o.Timeout,
		OneWay:  o.OneWay,
		Args:    reflect.TypeFor[A](),
		Result:  reflect.TypeFor[R](),
	}
}

// Descriptor is an operation with its types erased, for tables and
// tooling.
type Descriptor struct {
	ID      protocol.CallID
	Name    string
	Timeout time.Duration
	OneWay  bool
	Args    reflect.Type
	Result  reflect.Type
}

// HasArgs reports whether the operation takes arguments.
func (d Descriptor) HasArgs() bool { return d.Args != unitType }

// HasResult reports whether the operation returns a value.
func (d Descriptor) HasResult() bool { return d.Result != unitType }

var unitType = reflect.TypeFor[Unit]()

// Catalog is a closed table of operations.
type Catalog struct {
	byID   map[protocol.CallID]Descriptor
	byName map[string]Descriptor
	all    []Descriptor
}

// NewCatalog builds a catalog, rejecting duplicate IDs or names and
// one-way operations that declare a result.
func NewCatalog(descriptors ...Descriptor) (*Catalog, error) {
	catalog := &Catalog{
		byID:   make(map[protocol.CallID]Descriptor, len(descriptors)),
		byName: make(map[string]Descriptor, len(descriptors)),
	}
	for _, descriptor := range descriptors {
		if descriptor.Name == "" {
			return nil, fmt.Errorf("operation %d has no name", descriptor.ID)
		}
		if existing, ok := catalog.byID[descriptor.ID]; ok {
			return nil, fmt.Errorf("operation id %d used by both %q and %q", descriptor.ID, existing.Name, descriptor.Name)
		}
		if _, ok := catalog.byName[descriptor.Name]; ok {
			return nil, fmt.Errorf("operation name %q declared twice", descriptor.Name)
		}
		if descriptor.OneWay && descriptor.HasResult() {
			return nil, fmt.Errorf("one-way operation %q declares a result", descriptor.Name)
		}
		catalog.byID[descriptor.ID] = descriptor
		catalog.byName[descriptor.Name] = descriptor
		catalog.all = append(catalog.all, descriptor)
	}
	slices.SortFunc(catalog.all, func(a, b Descriptor) int { return int(a.ID) - int(b.ID) })
	return catalog, nil
}

// MustCatalog is NewCatalog for package-level tables.
func MustCatalog(descriptors ...Descriptor) *Catalog {
	catalog, err := NewCatalog(descriptors...)
	if err != nil {
		panic("rpc: " + err.Error())
	}
	return catalog
}

// Lookup finds an operation by wire identity.
func (c *Catalog) Lookup(id protocol.CallID) (Descriptor, bool) {
	descriptor, ok := c.byID[id]
	return descriptor, ok
}

// ByName finds an operation by name.
func (c *Catalog) ByName(name string) (Descriptor, bool) {
	descriptor, ok := c.byName[name]
	return descriptor, ok
}

// All returns every operation ordered by ID.
func (c *Catalog) All() []Descriptor {
	return slices.Clone(c.all)
}
