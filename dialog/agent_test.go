package dialog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lectern-ai/lectern/core"
	"github.com/lectern-ai/lectern/provider"
)

func TestAgent_ProcessTurnAppendsBothEntries(t *testing.T) {
	mock := provider.NewMock()
	mock.AddResponse("hello", "hi, I am your professor")
	agent := NewAgent("Mark Carman", "You are an english professor.", mock)

	out, err := agent.ProcessTurn(context.Background(), "sess-1", "hello")
	require.NoError(t, err)
	assert.Equal(t, "hi, I am your professor", out)

	sess, ok := agent.Session("sess-1")
	require.True(t, ok)
	entries := sess.Entries()
	require.Len(t, entries, 3) // seeded instruction + human + agent
	assert.Equal(t, core.RoleContext, entries[0].Role)
	assert.Equal(t, "You are an english professor.", entries[0].Text)
	assert.Equal(t, core.RoleHuman, entries[1].Role)
	assert.Equal(t, "hello", entries[1].Text)
	assert.Equal(t, core.RoleAgent, entries[2].Role)
}

func TestAgent_ProcessTurnSendsFullHistory(t *testing.T) {
	mock := provider.NewMock()
	agent := NewAgent("Prof", "instruction", mock)

	_, err := agent.ProcessTurn(context.Background(), "sess-1", "first")
	require.NoError(t, err)
	_, err = agent.ProcessTurn(context.Background(), "sess-1", "second")
	require.NoError(t, err)

	reqs := mock.Requests()
	require.Len(t, reqs, 2)
	assert.Len(t, reqs[0].History, 2) // instruction + first
	assert.Len(t, reqs[1].History, 4) // + agent reply + second
}

func TestAgent_ProviderFailureLeavesNoAgentEntry(t *testing.T) {
	mock := provider.NewMock()
	mock.FailWith(errors.New("rate limited"))
	agent := NewAgent("Prof", "instruction", mock)

	_, err := agent.ProcessTurn(context.Background(), "sess-1", "hello")
	require.Error(t, err)

	var provErr *core.ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, "mock", provErr.Provider)

	sess, ok := agent.Session("sess-1")
	require.True(t, ok)
	last, ok := sess.Last()
	require.True(t, ok)
	assert.Equal(t, core.RoleHuman, last.Role, "failed turn must not append an agent entry")
	assert.Equal(t, 2, sess.Len())
}

func TestAgent_HistoryNonDecreasing(t *testing.T) {
	mock := provider.NewMock()
	agent := NewAgent("Prof", "instruction", mock)
	id := agent.Resolve("")

	sess, _ := agent.Session(id)
	prev := sess.Len()
	for i := 0; i < 5; i++ {
		_, err := agent.ProcessTurn(context.Background(), id, "turn")
		require.NoError(t, err)
		cur := sess.Len()
		assert.GreaterOrEqual(t, cur, prev)
		prev = cur
	}
}

func TestAgent_InjectContext(t *testing.T) {
	mock := provider.NewMock()
	agent := NewAgent("Prof", "instruction", mock)
	id := agent.Resolve("")

	agent.InjectContext(id, "The student left the lecture.")

	assert.Equal(t, 0, mock.Calls(), "injection must not invoke the provider")

	sess, _ := agent.Session(id)
	last, ok := sess.Last()
	require.True(t, ok)
	assert.Equal(t, core.RoleContext, last.Role)
	for _, e := range sess.Entries() {
		assert.NotEqual(t, core.RoleHuman, e.Role, "injection must not append a human entry")
	}
}

func TestAgent_ResolveIsStable(t *testing.T) {
	agent := NewAgent("Prof", "instruction", provider.NewMock())

	id := agent.Resolve("")
	assert.Equal(t, id, agent.Resolve(id))
}

func TestAgent_TimeoutSurfacesAsProviderError(t *testing.T) {
	slow := &slowProvider{delay: 50 * time.Millisecond}
	agent := NewAgent("Prof", "instruction", slow, func(o *AgentOptions) {
		o.Timeout = time.Millisecond
	})

	_, err := agent.ProcessTurn(context.Background(), "sess-1", "hello")
	var provErr *core.ProviderError
	require.ErrorAs(t, err, &provErr)
}

type slowProvider struct{ delay time.Duration }

func (s *slowProvider) Complete(ctx context.Context, _ provider.Request) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-time.After(s.delay):
		return "late", nil
	}
}

func (s *slowProvider) Info() provider.Info { return provider.Info{Name: "slow", Provider: "slow"} }
