package uid

import (
	"fmt"
	"strconv"

	"github.com/bwmarrin/snowflake"
)

// Generator hands out time ordered snowflake IDs.
type Generator struct {
	node *snowflake.Node
}

// New returns a generator for machineID, which must fit in 10 bits.
func New(machineID int64) (*Generator, error) {
	node, err := snowflake.NewNode(machineID)
	if err != nil {
		return nil, fmt.Errorf("snowflake node %d: %w", machineID, err)
	}
	return &Generator{node: node}, nil
}

func MustNew(machineID int64) *Generator {
	g, err := New(machineID)
	if err != nil {
		panic(err)
	}
	return g
}

func (g *Generator) Next() int64 {
	return g.node.Generate().Int64()
}

// String is shaped for echo's RequestID generator.
func (g *Generator) String() string {
	return strconv.FormatInt(g.Next(), 10)
}
