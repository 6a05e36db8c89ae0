package valueobjects

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeID_JSONRoundTrip(t *testing.T) {
	for _, raw := range []string{"lab-1", `quoted"id`, "unicode-é", "back\\slash"} {
		id, err := NewNodeIDFromString(raw)
		require.NoError(t, err)

		encoded, err := json.Marshal(id)
		require.NoError(t, err)

		var decoded NodeID
		require.NoError(t, json.Unmarshal(encoded, &decoded))
		assert.Equal(t, raw, decoded.String())
	}
}

func TestNodeID_UnmarshalRejectsNonString(t *testing.T) {
	var id NodeID
	assert.Error(t, json.Unmarshal([]byte(`42`), &id))
	assert.Error(t, json.Unmarshal([]byte(`{"v":1}`), &id))
}

func TestNodeID_UnmarshalNullIsZero(t *testing.T) {
	var id NodeID
	require.NoError(t, json.Unmarshal([]byte(`null`), &id))
	assert.True(t, id.IsZero())
}
