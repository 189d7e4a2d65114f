// Package resources declares the managed entity types of the console.
package resources

import (
	"errors"
	"fmt"

	"github.com/Kellerman81/go_portfolio_admin/apperrors"
	"github.com/Kellerman81/go_portfolio_admin/crud"
)

// Registry is the ordered set of resources shown in the navigation.
type Registry struct {
	list  []*crud.Resource
	byKey map[string]*crud.Resource
}

// New returns the registry of all resources, validated.
func New() (*Registry, error) {
	return build(
		users(), roles(), permissions(),
		languages(), translations(),
		portfolios(), sections(), experiences(), projects(),
		categories(), skills(),
	)
}

func build(list ...*crud.Resource) (*Registry, error) {
	reg := &Registry{list: list, byKey: make(map[string]*crud.Resource, len(list))}
	var errs []error
	for _, r := range list {
		if err := r.Validate(); err != nil {
			errs = append(errs, apperrors.WrapWithMessageFor(apperrors.ErrClassConfig, "validate", r.Key, err))
		}
		if _, dup := reg.byKey[r.Key]; dup {
			errs = append(errs, apperrors.New(apperrors.ErrClassConfig, "registry", fmt.Sprintf("duplicate resource %q", r.Key)))
		}
		reg.byKey[r.Key] = r
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return reg, nil
}

// All returns the resources in navigation order.
func (reg *Registry) All() []*crud.Resource {
	return reg.list
}

// Get returns the resource for a url key.
func (reg *Registry) Get(key string) (*crud.Resource, bool) {
	r, ok := reg.byKey[key]
	return r, ok
}
