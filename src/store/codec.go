package store

import (
	"bytes"

	"github.com/mosaicnetworks/regka/src/sim"
	"github.com/ugorji/go/codec"
)

func marshalResult(r *sim.Result) ([]byte, error) {
	bf := bytes.NewBuffer([]byte{})

	jh := new(codec.JsonHandle)
	jh.Canonical = true
	enc := codec.NewEncoder(bf, jh)

	if err := enc.Encode(r); err != nil {
		return nil, err
	}

	return bf.Bytes(), nil
}

func unmarshalResult(data []byte) (*sim.Result, error) {
	bf := bytes.NewBuffer(data)

	jh := new(codec.JsonHandle)
	dec := codec.NewDecoder(bf, jh)

	r := new(sim.Result)
	if err := dec.Decode(r); err != nil {
		return nil, err
	}

	return r, nil
}
