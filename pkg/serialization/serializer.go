// Package serialization encodes journeys for the binary stores (redis, sqlite,
// postgres): a codec (JSON or MessagePack) optionally followed by zstd compression.
package serialization

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"
)

// Codec turns values into bytes and back.
type Codec interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, v any) error
	Name() string
}

// Compression selects the compression applied after encoding.
type Compression string

const (
	CompressionNone Compression = "none"
	CompressionZstd Compression = "zstd"
)

// Serializer runs the encode → compress pipeline and its inverse.
// It is safe for concurrent use.
type Serializer struct {
	codec       Codec
	compression Compression
	encoder     *zstd.Encoder
	decoder     *zstd.Decoder
}

// New creates a Serializer. An empty compression means none.
func New(codec Codec, compression Compression) (*Serializer, error) {
	s := &Serializer{codec: codec, compression: compression}
	switch compression {
	case "", CompressionNone:
		s.compression = CompressionNone
	case CompressionZstd:
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
		}
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
		}
		s.encoder, s.decoder = enc, dec
	default:
		return nil, fmt.Errorf("unknown compression %q", compression)
	}
	return s, nil
}

// Default returns MessagePack + zstd.
func Default() *Serializer {
	s, err := New(NewMsgPackCodec(), CompressionZstd)
	if err != nil {
		// zstd only fails on invalid options.
		panic(err)
	}
	return s
}

// Name describes the pipeline, e.g. "msgpack+zstd".
func (s *Serializer) Name() string {
	if s.compression == CompressionNone {
		return s.codec.Name()
	}
	return s.codec.Name() + "+" + string(s.compression)
}

// Marshal encodes and compresses v.
func (s *Serializer) Marshal(v any) ([]byte, error) {
	data, err := s.codec.Encode(v)
	if err != nil {
		return nil, fmt.Errorf("codec encoding failed: %w", err)
	}
	if s.encoder != nil {
		data = s.encoder.EncodeAll(data, nil)
	}
	return data, nil
}

// Unmarshal decompresses and decodes data into v.
func (s *Serializer) Unmarshal(data []byte, v any) error {
	if s.decoder != nil {
		var err error
		data, err = s.decoder.DecodeAll(data, nil)
		if err != nil {
			return fmt.Errorf("decompression failed: %w", err)
		}
	}
	if err := s.codec.Decode(data, v); err != nil {
		return fmt.Errorf("codec decoding failed: %w", err)
	}
	return nil
}

// MarshalJourney encodes a journey.
func (s *Serializer) MarshalJourney(j *domain.Journey) ([]byte, error) {
	return s.Marshal(j)
}

// UnmarshalJourney decodes a journey. Timestamps come back in UTC.
func (s *Serializer) UnmarshalJourney(data []byte) (*domain.Journey, error) {
	var j domain.Journey
	if err := s.Unmarshal(data, &j); err != nil {
		return nil, err
	}
	j.CreatedAt = j.CreatedAt.UTC()
	j.UpdatedAt = j.UpdatedAt.UTC()
	return &j, nil
}

// JSONCodec implements JSON serialization.
type JSONCodec struct{}

func (c *JSONCodec) Encode(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (c *JSONCodec) Decode(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (c *JSONCodec) Name() string {
	return "json"
}

// MsgPackCodec implements MessagePack serialization. Field names follow the json
// tags so both codecs agree on the wire names.
type MsgPackCodec struct{}

func (c *MsgPackCodec) Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c *MsgPackCodec) Decode(data []byte, v any) error {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetCustomStructTag("json")
	return dec.Decode(v)
}

func (c *MsgPackCodec) Name() string {
	return "msgpack"
}

// NewJSONCodec creates a new JSON codec.
func NewJSONCodec() Codec {
	return &JSONCodec{}
}

// NewMsgPackCodec creates a new MessagePack codec.
func NewMsgPackCodec() Codec {
	return &MsgPackCodec{}
}

// CodecByName returns "json" or "msgpack".
func CodecByName(name string) (Codec, error) {
	switch name {
	case "json":
		return NewJSONCodec(), nil
	case "msgpack", "":
		return NewMsgPackCodec(), nil
	}
	return nil, fmt.Errorf("unknown codec %q", name)
}
