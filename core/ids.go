package core

import (
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
)

var (
	eventNode     *snowflake.Node
	eventNodeOnce sync.Once
)

// NewEventID mints a unique, time-ordered id for an episodic event.
// Snowflake ids keep the append-only log sortable by creation order even
// when events from different sessions land in the same millisecond.
func NewEventID() int64 {
	eventNodeOnce.Do(func() {
		node, err := snowflake.NewNode(1)
		if err != nil {
			// Node number 1 is always valid; reaching here means the
			// snowflake epoch configuration is broken at build time.
			panic(err)
		}
		eventNode = node
	})
	return eventNode.Generate().Int64()
}

// NewInvocationID mints a unique id for a dispatched capability invocation.
func NewInvocationID() string {
	return uuid.New().String()
}
