package convo

import (
	"testing"

	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/infra/cst"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to int32 }{
		{cst.ConvInitialized, cst.ConvActive},
		{cst.ConvActive, cst.ConvProcessing},
		{cst.ConvProcessing, cst.ConvProcessing},
		{cst.ConvProcessing, cst.ConvWaitingForUser},
		{cst.ConvProcessing, cst.ConvEscalated},
		{cst.ConvWaitingForUser, cst.ConvProcessing},
		{cst.ConvWaitingForUser, cst.ConvResolved},
		{cst.ConvWaitingForAgent, cst.ConvTransferred},
		{cst.ConvEscalated, cst.ConvResolved},
		{cst.ConvTransferred, cst.ConvResolved},
		{cst.ConvResolved, cst.ConvArchived},
		{cst.ConvAbandoned, cst.ConvArchived},
	}
	for _, tr := range allowed {
		assert.True(t, CanTransition(tr.from, tr.to), "%s -> %s", StatusName(tr.from), StatusName(tr.to))
	}

	denied := []struct{ from, to int32 }{
		{cst.ConvInitialized, cst.ConvProcessing},
		{cst.ConvInitialized, cst.ConvResolved},
		{cst.ConvActive, cst.ConvResolved},
		{cst.ConvProcessing, cst.ConvResolved},
		{cst.ConvResolved, cst.ConvActive},
		{cst.ConvArchived, cst.ConvActive},
		{cst.ConvArchived, cst.ConvArchived},
		{cst.ConvAbandoned, cst.ConvProcessing},
		{cst.ConvEscalated, cst.ConvWaitingForUser},
	}
	for _, tr := range denied {
		assert.False(t, CanTransition(tr.from, tr.to), "%s -> %s", StatusName(tr.from), StatusName(tr.to))
	}
}

func TestAllStatesCanReachAbandonedExceptTerminal(t *testing.T) {
	for _, s := range Sweepable() {
		assert.True(t, CanTransition(s, cst.ConvAbandoned), StatusName(s))
	}
	assert.False(t, CanTransition(cst.ConvResolved, cst.ConvAbandoned))
	assert.False(t, CanTransition(cst.ConvArchived, cst.ConvAbandoned))
}

func TestClosed(t *testing.T) {
	assert.True(t, Closed(cst.ConvResolved))
	assert.True(t, Closed(cst.ConvAbandoned))
	assert.True(t, Closed(cst.ConvArchived))
	assert.False(t, Closed(cst.ConvEscalated))
	assert.False(t, Closed(cst.ConvWaitingForUser))
}

func TestStatusName(t *testing.T) {
	assert.Equal(t, "waiting_for_agent", StatusName(cst.ConvWaitingForAgent))
	assert.Equal(t, "unknown", StatusName(99))
}
