package client

import (
	"reflect"
	"testing"

	"github.com/clockworklabs/spacetimedb-go/pkg/sats"
)

func playerSchema() TableSchema {
	return TableSchema{
		Name: "player",
		Row: sats.ProductType(
			sats.FieldOf("id", sats.U64Type()),
			sats.FieldOf("name", sats.StringType()),
		),
	}
}

func moveSchema() ReducerSchema {
	return ReducerSchema{
		Name: "move",
		Params: sats.ProductType(
			sats.FieldOf("x", sats.F32Type()),
			sats.FieldOf("y", sats.F32Type()),
		),
	}
}

func TestRegistryLookups(t *testing.T) {
	r := NewRegistry()
	if err := r.AddTable(playerSchema()); err != nil {
		t.Fatalf("AddTable() error = %v", err)
	}
	if err := r.AddReducer(moveSchema()); err != nil {
		t.Fatalf("AddReducer() error = %v", err)
	}

	if _, ok := r.Table("player"); !ok {
		t.Error("Table(player) not found")
	}
	if _, ok := r.Table("ghost"); ok {
		t.Error("Table(ghost) found, want miss")
	}
	if _, ok := r.Reducer("move"); !ok {
		t.Error("Reducer(move) not found")
	}

	if err := r.AddTable(playerSchema()); err == nil {
		t.Error("duplicate AddTable() succeeded, want error")
	}
	if err := r.AddReducer(moveSchema()); err == nil {
		t.Error("duplicate AddReducer() succeeded, want error")
	}
	if err := r.AddTable(TableSchema{Name: "norow"}); err == nil {
		t.Error("AddTable() without row type succeeded, want error")
	}
}

func TestRegistryRowAndArgsCodec(t *testing.T) {
	r := NewRegistry()
	if err := r.AddTable(playerSchema()); err != nil {
		t.Fatal(err)
	}
	if err := r.AddReducer(moveSchema()); err != nil {
		t.Fatal(err)
	}

	row := sats.Product(sats.U64(7), sats.Str("alice"))
	blob, err := sats.Encode(row, playerSchema().Row)
	if err != nil {
		t.Fatal(err)
	}
	got, err := r.DecodeRow("player", blob)
	if err != nil {
		t.Fatalf("DecodeRow() error = %v", err)
	}
	if !reflect.DeepEqual(got, row) {
		t.Errorf("DecodeRow() = %+v, want %+v", got, row)
	}
	if _, err := r.DecodeRow("ghost", blob); err == nil {
		t.Error("DecodeRow(ghost) succeeded, want error")
	}

	args := sats.Product(sats.F32(1.5), sats.F32(-2))
	encoded, err := r.EncodeArgs("move", args)
	if err != nil {
		t.Fatalf("EncodeArgs() error = %v", err)
	}
	decoded, err := sats.Decode(encoded, moveSchema().Params)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(decoded, args) {
		t.Errorf("args round trip = %+v, want %+v", decoded, args)
	}

	if _, err := r.EncodeArgs("move", sats.Product(sats.F32(1))); err == nil {
		t.Error("EncodeArgs() with wrong arity succeeded, want error")
	}
	if _, err := r.EncodeArgs("ghost", args); err == nil {
		t.Error("EncodeArgs(ghost) succeeded, want error")
	}
}
