package common

import (
	"os"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/spf13/cast"
)

var (
	snowflakeNode *snowflake.Node
	snowflakeOnce sync.Once
)

// UUIDint64 returns a cluster-unique int64 identifier.
// The node id can be overridden with KIOSCO_NODE_ID when running
// multiple instances against the same database.
func UUIDint64() int64 {
	snowflakeOnce.Do(func() {
		nodeID := cast.ToInt64(os.Getenv("KIOSCO_NODE_ID"))
		if nodeID < 0 || nodeID > 1023 {
			nodeID = 0
		}
		var err error
		snowflakeNode, err = snowflake.NewNode(nodeID)
		if err != nil {
			panic(err)
		}
	})
	return snowflakeNode.Generate().Int64()
}

// DayBounds returns the inclusive [00:00:00, 23:59:59.999999999] bounds of
// the calendar day containing t, in t's location.
func DayBounds(t time.Time) (time.Time, time.Time) {
	year, month, day := t.Date()
	start := time.Date(year, month, day, 0, 0, 0, 0, t.Location())
	end := start.Add(24*time.Hour - time.Nanosecond)
	return start, end
}
