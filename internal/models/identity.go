// Pantry Partner Admin Dashboard
// Copyright 2026 Pantry Partner contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pantrypartner/dashboard

// Package models defines the domain types shared across the dashboard:
// the authenticated Identity and the shaped metrics values the UI
// consumes, together with the wire payloads of the remote admin API.
package models

import (
	"github.com/goccy/go-json"
)

// Identity is the signed-in operator's record as returned by the login
// endpoint. Beyond the id and email the server may attach arbitrary
// fields; those are carried opaquely in Extra so that persisting and
// re-serializing an Identity is lossless.
type Identity struct {
	ID    string
	Email string
	Extra map[string]json.RawMessage
}

// identityWire mirrors the known fields of the login payload.
type identityWire struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// UnmarshalJSON decodes the known fields and keeps everything else in Extra.
func (i *Identity) UnmarshalJSON(data []byte) error {
	var wire identityWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	delete(raw, "id")
	delete(raw, "email")
	if len(raw) == 0 {
		raw = nil
	}

	i.ID = wire.ID
	i.Email = wire.Email
	i.Extra = raw
	return nil
}

// MarshalJSON reassembles the full server-supplied object, including the
// opaque passthrough fields.
func (i Identity) MarshalJSON() ([]byte, error) {
	obj := make(map[string]json.RawMessage, len(i.Extra)+2)
	for k, v := range i.Extra {
		obj[k] = v
	}

	id, err := json.Marshal(i.ID)
	if err != nil {
		return nil, err
	}
	email, err := json.Marshal(i.Email)
	if err != nil {
		return nil, err
	}
	obj["id"] = id
	obj["email"] = email

	return json.Marshal(obj)
}

// Clone returns a deep copy. Stored identities are handed out by value
// semantics only; callers never share the manager's map.
func (i *Identity) Clone() *Identity {
	if i == nil {
		return nil
	}
	c := &Identity{ID: i.ID, Email: i.Email}
	if i.Extra != nil {
		c.Extra = make(map[string]json.RawMessage, len(i.Extra))
		for k, v := range i.Extra {
			c.Extra[k] = v
		}
	}
	return c
}
