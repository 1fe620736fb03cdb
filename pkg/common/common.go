package common

import (
	"math/rand"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	ENABLED  = "enabled"
	DISABLED = "disabled"
)

var (
	snowflakeNode *snowflake.Node
	snowflakeOnce sync.Once
)

func node() *snowflake.Node {
	snowflakeOnce.Do(func() {
		nodeID := int64(1)
		if v := os.Getenv("ANIMERCH_NODE_ID"); v != "" {
			if n, err := strconv.ParseInt(v, 10, 64); err == nil && n >= 0 && n < 1024 {
				nodeID = n
			}
		}
		var err error
		snowflakeNode, err = snowflake.NewNode(nodeID)
		if err != nil {
			// node id out of range can not happen after the bounds check above,
			// but keep a deterministic fallback rather than a nil node
			snowflakeNode, _ = snowflake.NewNode(rand.New(rand.NewSource(time.Now().UnixNano())).Int63n(1024))
		}
	})
	return snowflakeNode
}

// UUIDint64 returns a time-ordered unique int64 identifier.
func UUIDint64() int64 {
	return node().Generate().Int64()
}

// UUID returns the base58 string form of a new identifier, suitable for
// collision-free file names.
func UUID() string {
	return node().Generate().Base58()
}
