package idgen

import (
	"encoding/base64"
	"fmt"
	"math/rand/v2"
	"strconv"

	"github.com/bwmarrin/snowflake"
)

const (
	KindRandom    = "random"
	KindSnowflake = "snowflake"
)

// Generator produces short, URL-safe, printable link identifiers.
type Generator interface {
	Generate() (string, error)
}

type GeneratorFunc func() (string, error)

func (f GeneratorFunc) Generate() (string, error) {
	return f()
}

// Random draws a uniform uint32, renders it in base 10 and encodes the digits with
// URL-safe base64 without padding. Uniqueness is not guaranteed.
type Random struct{}

func (Random) Generate() (string, error) {
	return encodeNumber(rand.Uint32()), nil
}

func encodeNumber(n uint32) string {
	return base64.RawURLEncoding.EncodeToString([]byte(strconv.FormatUint(uint64(n), 10)))
}

// Snowflake issues time ordered ids rendered in Base58.
type Snowflake struct {
	node *snowflake.Node
}

func NewSnowflake(nodeID int64) (*Snowflake, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("failed to create snowflake node %d: %w", nodeID, err)
	}
	return &Snowflake{node: node}, nil
}

func (s *Snowflake) Generate() (string, error) {
	return s.node.Generate().Base58(), nil
}

// New returns the generator registered under kind.
func New(kind string, nodeID int64) (Generator, error) {
	switch kind {
	case "", KindRandom:
		return Random{}, nil
	case KindSnowflake:
		return NewSnowflake(nodeID)
	default:
		return nil, fmt.Errorf("unknown id generator %q", kind)
	}
}
