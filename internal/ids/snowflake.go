package ids

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/bwmarrin/snowflake"
)

const defaultNode int64 = 1

var (
	node    *snowflake.Node
	initErr error
	once    sync.Once
)

// Init initializes the Snowflake node with the given node ID. Only the first
// call has any effect; later calls return the first call's error. An invalid
// node ID leaves the generator on the default node.
func Init(nodeID int64) error {
	once.Do(func() {
		node, initErr = newNode(nodeID)
	})
	return initErr
}

// newNode always returns a usable node, falling back to defaultNode when
// nodeID is rejected.
func newNode(nodeID int64) (*snowflake.Node, error) {
	n, err := snowflake.NewNode(nodeID)
	if err == nil {
		return n, nil
	}
	fallback, ferr := snowflake.NewNode(defaultNode)
	if ferr != nil {
		panic(fmt.Sprintf("snowflake default node: %v", ferr))
	}
	return fallback, fmt.Errorf("snowflake node %d: %w", nodeID, err)
}

// New generates a time-ordered int64 ID. It falls back to node 1 when Init
// was never called.
func New() int64 {
	_ = Init(defaultNode)
	return node.Generate().Int64()
}

// NewString returns New rendered as a decimal string, the form used for
// conversation ids.
func NewString() string {
	return strconv.FormatInt(New(), 10)
}
