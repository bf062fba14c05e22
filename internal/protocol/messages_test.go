package protocol

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewChatMessageWireFormat(t *testing.T) {
	now := time.UnixMilli(1700000000000)
	msg := NewChatMessage("hello", "grumpy", now)

	data, err := json.Marshal(msg)
	require.NoError(t, err)

	var wire map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &wire))
	assert.Equal(t, "message", wire["type"])
	assert.Equal(t, float64(1700000000000), wire["ts"])
	assert.Equal(t, "hello", wire["message"])
	assert.Equal(t, "grumpy", wire["personality"])
	assert.NotEmpty(t, wire["request_id"])
}

func TestDecode(t *testing.T) {
	got, err := Decode([]byte(`{"type":"response","ts":1,"done":true,"data":"hi"}`))
	require.NoError(t, err)
	resp, ok := got.(*ResponseMessage)
	require.True(t, ok)
	assert.True(t, resp.Done)
	assert.Equal(t, "hi", resp.Data)

	got, err = Decode([]byte(`{"type":"error","data":"boom"}`))
	require.NoError(t, err)
	assert.Equal(t, "boom", got.(*ErrorMessage).Data)

	got, err = Decode([]byte(`{"type":"connected","data":{"user_id":1}}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"user_id":1}`, string(got.(*ConnectedMessage).Data))

	got, err = Decode([]byte(`{"type":"typing"}`))
	require.NoError(t, err)
	assert.Equal(t, "typing", got.(*BaseMessage).Type)

	_, err = Decode([]byte(`nope`))
	assert.Error(t, err)
}
