package telemetry

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/quadrover/i2clink/pkg/host"
	"github.com/quadrover/i2clink/pkg/protocol"
)

func TestMatchTopic(t *testing.T) {
	testCases := []struct {
		topic   string
		pattern string
		match   bool
	}{
		{"tx", "tx", true},
		{"tx", "status", false},
		{"a/b/c", "a/+/c", true},
		{"a/b/c", "a/#", true},
		{"a/b/c", "a/b/c/d", false},
		{"a/b", "#", true},
	}

	for _, tc := range testCases {
		require.Equalf(t, tc.match, MatchTopic(tc.topic, tc.pattern), "%q vs %q", tc.topic, tc.pattern)
	}
}

func TestClientOptionsFromURL(t *testing.T) {
	opts, prefix, err := ClientOptionsFromURL("mqtt://user:pw@localhost:1883/i2clink/")
	require.NoError(t, err)
	require.Equal(t, "i2clink/", prefix)
	require.Len(t, opts.Servers, 1)
	require.Equal(t, "tcp", opts.Servers[0].Scheme)
	require.Equal(t, "localhost:1883", opts.Servers[0].Host)
	require.Equal(t, "user", opts.Username)
	require.Equal(t, "pw", opts.Password)

	opts, _, err = ClientOptionsFromURL("mqtt://localhost:1883/x/?client-id=bench")
	require.NoError(t, err)
	require.Equal(t, "bench", opts.ClientID)
}

// Overlapping patterns each see a matching message exactly once.
func TestQueueRouting(t *testing.T) {
	q := &Queue{TopicPrefix: "i2clink/"}
	var tx, all []string
	q.subs = map[string][]Handler{
		"tx": {func(topic string, payload []byte) { tx = append(tx, string(payload)) }},
		"#":  {func(topic string, payload []byte) { all = append(all, topic) }},
	}

	q.route("tx", []byte(`{"state":"done"}`))
	q.route("status", []byte(`{}`))

	require.Equal(t, []string{`{"state":"done"}`}, tx)
	require.Equal(t, []string{"tx", "status"}, all)
}

func TestTransactionDoc(t *testing.T) {
	done := host.Outcome{
		State:    host.StateDone,
		Response: protocol.Response{Status: protocol.StatusOK, Speeds: protocol.Speeds{50, 50, 50, 50}},
	}
	doc := TransactionDoc(protocol.CmdSetSpeed, done, 900*time.Microsecond)
	require.Equal(t, "SET_SPEED", doc.Command)
	require.Equal(t, "done", doc.State)
	require.Equal(t, "OK", doc.Status)
	require.Empty(t, doc.Cause)
	require.Equal(t, int64(900), doc.ElapsedUs)

	failed := host.Outcome{
		State:    host.StateFailed,
		Response: protocol.Response{Status: protocol.StatusErrBadCRC},
		Cause:    (&protocol.StatusError{Status: protocol.StatusErrBadCRC}),
	}
	doc = TransactionDoc(protocol.CmdSetSpeed, failed, time.Millisecond)
	require.Equal(t, "failed", doc.State)
	require.Equal(t, "ERROR_BAD_CRC", doc.Status)
	require.NotEmpty(t, doc.Cause)

	data, err := json.Marshal(doc)
	require.NoError(t, err)
	require.Contains(t, string(data), `"state":"failed"`)
}
