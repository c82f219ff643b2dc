// ABOUTME: Typed CRUD accessors generated uniformly from descriptors
// ABOUTME: Verbs outside a descriptor's capabilities fail with ErrUnsupported before any request

package entity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Oleksiak-Inc/FileManagementTool/internal/api"
)

// ErrUnsupported is returned for verbs the entity does not offer.
var ErrUnsupported = errors.New("operation not supported")

// Accessor performs CRUD calls for one entity, decoding records into T.
type Accessor[T any] struct {
	client *api.Client
	desc   Descriptor
}

// For returns the accessor for d, decoding records into T.
func For[T any](client *api.Client, d Descriptor) *Accessor[T] {
	return &Accessor[T]{client: client, desc: d}
}

// Raw returns an accessor that keeps records as raw JSON.
func Raw(client *api.Client, d Descriptor) *Accessor[api.Record] {
	return For[api.Record](client, d)
}

// Descriptor returns the entity this accessor serves.
func (a *Accessor[T]) Descriptor() Descriptor {
	return a.desc
}

// WithToken returns an accessor whose requests carry tok.
func (a *Accessor[T]) WithToken(tok string) *Accessor[T] {
	return &Accessor[T]{client: a.client.WithToken(tok), desc: a.desc}
}

func (a *Accessor[T]) require(c Capability) error {
	if !a.desc.Can(c) {
		return fmt.Errorf("%w: %s on %s", ErrUnsupported, c, a.desc.Name)
	}
	return nil
}

// List fetches every record.
func (a *Accessor[T]) List(ctx context.Context) ([]T, error) {
	if err := a.require(CapList); err != nil {
		return nil, err
	}
	recs, err := a.client.List(ctx, a.desc.Resource)
	if err != nil {
		return nil, err
	}
	return decodeAll[T](a.desc, recs)
}

// Get fetches one record by id.
func (a *Accessor[T]) Get(ctx context.Context, id string) (*T, error) {
	if err := a.require(CapGet); err != nil {
		return nil, err
	}
	rec, err := a.client.Get(ctx, a.desc.Resource, id)
	if err != nil {
		return nil, err
	}
	return decode[T](a.desc, rec)
}

// Create stores payload and returns the created record.
func (a *Accessor[T]) Create(ctx context.Context, payload any) (*T, error) {
	if err := a.require(CapCreate); err != nil {
		return nil, err
	}
	rec, err := a.client.Create(ctx, a.desc.Resource, payload)
	if err != nil {
		return nil, err
	}
	return decode[T](a.desc, rec)
}

// Update patches the record with id.
func (a *Accessor[T]) Update(ctx context.Context, id string, payload any) (*T, error) {
	if err := a.require(CapUpdate); err != nil {
		return nil, err
	}
	rec, err := a.client.Update(ctx, a.desc.Resource, id, payload)
	if err != nil {
		return nil, err
	}
	return decode[T](a.desc, rec)
}

// Delete removes the record with id and returns the server's confirmation,
// which is nil when the server sent no body.
func (a *Accessor[T]) Delete(ctx context.Context, id string) (*T, error) {
	if err := a.require(CapDelete); err != nil {
		return nil, err
	}
	rec, err := a.client.Delete(ctx, a.desc.Resource, id)
	if err != nil {
		return nil, err
	}
	if len(rec) == 0 {
		return nil, nil
	}
	return decode[T](a.desc, rec)
}

func decode[T any](d Descriptor, rec api.Record) (*T, error) {
	var v T
	if err := json.Unmarshal(rec, &v); err != nil {
		return nil, fmt.Errorf("decoding %s record: %w", d.Name, err)
	}
	return &v, nil
}

func decodeAll[T any](d Descriptor, recs []api.Record) ([]T, error) {
	out := make([]T, 0, len(recs))
	for i, rec := range recs {
		var v T
		if err := json.Unmarshal(rec, &v); err != nil {
			return nil, fmt.Errorf("decoding %s record %d: %w", d.Name, i, err)
		}
		out = append(out, v)
	}
	return out, nil
}
