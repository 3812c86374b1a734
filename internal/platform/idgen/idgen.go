// Package idgen mints time ordered int64 ids for append only rows
package idgen

import (
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	node    *snowflake.Node
	once    sync.Once
	initErr error
)

// Init sets the snowflake node id, only the first call has any effect
func Init(nodeID int64) error {
	once.Do(func() {
		node, initErr = snowflake.NewNode(nodeID)
	})
	return initErr
}

// New returns the next id, falling back to node 0 when Init was never called
func New() int64 {
	if err := Init(0); err != nil {
		panic("idgen: " + err.Error())
	}
	return node.Generate().Int64()
}
