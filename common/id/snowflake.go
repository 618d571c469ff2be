package id

import (
	"sync"

	"github.com/bwmarrin/snowflake"
)

const defaultNode = 1

var (
	node *snowflake.Node
	mu   sync.Mutex
)

// Init sets the Snowflake node for this process. Only the first successful call
// takes effect.
func Init(nodeID int64) error {
	mu.Lock()
	defer mu.Unlock()
	if node != nil {
		return nil
	}
	n, err := snowflake.NewNode(nodeID)
	if err != nil {
		return err
	}
	node = n
	return nil
}

// New generates a time-ordered int64 ID. Falls back to node 1 when Init was
// never called, which is the case for one-shot CLI commands and tests.
func New() int64 {
	mu.Lock()
	if node == nil {
		node, _ = snowflake.NewNode(defaultNode)
	}
	n := node
	mu.Unlock()
	return n.Generate().Int64()
}
