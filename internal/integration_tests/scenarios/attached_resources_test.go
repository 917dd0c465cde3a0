package integration_tests

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func twoProducers(key1, key2 string) string {
	return fmt.Sprintf(`
graph "attached" {
  node "relu1" {
    type   = "Relu"
    engine = "AIcoreEngine"
    attrs = {
      "_attached_event_info" = { group_name = "res", reuse_key = %q }
    }
  }
  node "relu2" {
    type   = "Relu"
    engine = "AIcoreEngine"
    attrs = {
      "_attached_event_info" = { group_name = "res", reuse_key = %q }
    }
  }
}
`, key1, key2)
}

// Two independent producers asking for the same reuse key share one event.
func TestAttachedEvents_SharedKey(t *testing.T) {
	// --- Act ---
	gr := run(t, twoProducers("res_key", "res_key"), nil)

	// --- Assert ---
	assert.Equal(t, 1, gr.EventCount)
	assert.Equal(t, []uint32{0}, node(t, gr, "relu1").AttachedEvents)
	assert.Equal(t, []uint32{0}, node(t, gr, "relu2").AttachedEvents)
}

func TestAttachedEvents_DistinctKeys(t *testing.T) {
	gr := run(t, twoProducers("res_key0", "res_key1"), nil)

	assert.Equal(t, 2, gr.EventCount)
	assert.Equal(t, []uint32{0}, node(t, gr, "relu1").AttachedEvents)
	assert.Equal(t, []uint32{1}, node(t, gr, "relu2").AttachedEvents)
}

// An optional notify that can never be granted is marked invalid without
// failing the graph or counting toward the notify total.
func TestAttachedNotify_OptionalWithoutCapacity(t *testing.T) {
	graphHCL := `
hardware {
  max_notifies = 0
}

graph "optional_notify" {
  options {
    sync_mode = "notify"
  }
  node "a" {
    type   = "Relu"
    engine = "AIcoreEngine"
    attrs = {
      "_attached_notify_info" = { group_name = "g", reuse_key = "k", required = false }
    }
  }
}
`
	gr := run(t, graphHCL, nil)

	assert.Equal(t, 0, gr.NotifyCount)
	assert.Equal(t, []uint32{math.MaxUint32}, node(t, gr, "a").AttachedNotifies)
}

func TestAttachedStreams_V2List(t *testing.T) {
	graphHCL := `
graph "attached_streams" {
  node "a" {
    type   = "Relu"
    engine = "AIcoreEngine"
    attrs = {
      "_attached_stream_info_list" = [
        { group_name = "aux", reuse_key = "x" },
        { group_name = "aux2", reuse_key = "y", count = 2 },
      ]
    }
  }
  node "b" {
    type   = "Relu"
    engine = "AIcoreEngine"
    inputs = ["a"]
    attrs = {
      "_attached_stream_info_list" = [
        { group_name = "aux", reuse_key = "x" },
      ]
    }
  }
}
`
	gr := run(t, graphHCL, nil)

	assert.Equal(t, int64(1), gr.MainStreamCount)
	assert.Equal(t, int64(4), gr.TotalStreamCount, "one shared stream plus two for the second scope")
	assert.Equal(t, node(t, gr, "a").AttachedStreams[0], node(t, gr, "b").AttachedStreams[0])
	assert.Len(t, node(t, gr, "a").AttachedStreams, 3)
}
