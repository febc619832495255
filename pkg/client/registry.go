package client

import (
	"fmt"

	"github.com/clockworklabs/spacetimedb-go/pkg/sats"
)

// TableSchema describes one table the client knows how to decode.
type TableSchema struct {
	Name string
	Row  *sats.Type
}

// ReducerSchema describes one reducer the client knows how to call.
// Params is the product type of the reducer's argument tuple.
type ReducerSchema struct {
	Name   string
	Params *sats.Type
}

// Registry maps table and reducer names to their schemas. It is built once
// at startup, handed to the connection by reference, and must not be
// mutated afterwards; lookups are read-only and safe for concurrent use.
type Registry struct {
	tables   map[string]TableSchema
	reducers map[string]ReducerSchema
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		tables:   make(map[string]TableSchema),
		reducers: make(map[string]ReducerSchema),
	}
}

// AddTable registers a table schema. Duplicate names are an error.
func (r *Registry) AddTable(schema TableSchema) error {
	if schema.Name == "" || schema.Row == nil {
		return fmt.Errorf("client: table schema needs a name and row type")
	}
	if _, ok := r.tables[schema.Name]; ok {
		return fmt.Errorf("client: table %q already registered", schema.Name)
	}
	r.tables[schema.Name] = schema
	return nil
}

// AddReducer registers a reducer schema. Duplicate names are an error.
func (r *Registry) AddReducer(schema ReducerSchema) error {
	if schema.Name == "" || schema.Params == nil {
		return fmt.Errorf("client: reducer schema needs a name and params type")
	}
	if _, ok := r.reducers[schema.Name]; ok {
		return fmt.Errorf("client: reducer %q already registered", schema.Name)
	}
	r.reducers[schema.Name] = schema
	return nil
}

// Table looks up a table schema by name.
func (r *Registry) Table(name string) (TableSchema, bool) {
	s, ok := r.tables[name]
	return s, ok
}

// Reducer looks up a reducer schema by name.
func (r *Registry) Reducer(name string) (ReducerSchema, bool) {
	s, ok := r.reducers[name]
	return s, ok
}

// DecodeRow decodes one opaque row blob against the named table's schema.
func (r *Registry) DecodeRow(table string, row []byte) (sats.Value, error) {
	schema, ok := r.tables[table]
	if !ok {
		return sats.Value{}, fmt.Errorf("client: unknown table %q", table)
	}
	v, err := sats.Decode(row, schema.Row)
	if err != nil {
		return sats.Value{}, fmt.Errorf("client: table %q row: %w", table, err)
	}
	return v, nil
}

// EncodeArgs encodes a reducer argument tuple against the named reducer's
// schema, producing the opaque blob embedded in CallReducer.
func (r *Registry) EncodeArgs(reducer string, args sats.Value) ([]byte, error) {
	schema, ok := r.reducers[reducer]
	if !ok {
		return nil, fmt.Errorf("client: unknown reducer %q", reducer)
	}
	data, err := sats.Encode(args, schema.Params)
	if err != nil {
		return nil, fmt.Errorf("client: reducer %q args: %w", reducer, err)
	}
	return data, nil
}
