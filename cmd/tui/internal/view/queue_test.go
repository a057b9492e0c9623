package view

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/fundflow/internal/record"
	"github.com/MrJamesThe3rd/fundflow/internal/rowstore/memory"
	"github.com/MrJamesThe3rd/fundflow/internal/workflow"
)

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newQueue(t *testing.T) (QueueModel, *workflow.Engine) {
	t.Helper()

	engine := workflow.New(memory.New(), workflow.WithClaimSettle(0))

	_, err := engine.Submit(context.Background(), workflow.Draft{
		Type:            record.TypeExpense,
		Requester:       "amal",
		Project:         "Water",
		Purpose:         "Pipes",
		RequestedAmount: -500000,
	})
	require.NoError(t, err)

	m := NewQueueModel(engine, []string{"Cash"})

	next, _ := m.Update(m.Init()())

	return next.(QueueModel), engine
}

func TestQueueModel_Approve(t *testing.T) {
	m, engine := newQueue(t)
	require.Len(t, m.records, 1)

	next, cmd := m.Update(key("a"))
	require.NotNil(t, cmd)

	msg := cmd()
	require.IsType(t, actionMsg{}, msg)
	assert.NoError(t, msg.(actionMsg).err)

	next, cmd = next.(QueueModel).Update(msg)
	assert.Contains(t, next.(QueueModel).status, "TRX-0001")
	require.NotNil(t, cmd)

	r, err := engine.Get(context.Background(), "TRX-0001")
	require.NoError(t, err)
	assert.Equal(t, record.ApprovalApproved, r.Approval.Status)
}

func TestQueueModel_ErrorShownVerbatim(t *testing.T) {
	m, _ := newQueue(t)

	_, cmd := m.Update(key("x"))
	m2, _ := m.Update(cmd())

	// Declining the already declined record is rejected by the engine.
	_, cmd = m2.(QueueModel).Update(key("x"))
	msg := cmd().(actionMsg)
	require.ErrorIs(t, msg.err, workflow.ErrInvalidTransition)

	m3, _ := m2.(QueueModel).Update(msg)
	assert.Contains(t, m3.(QueueModel).status, msg.err.Error())
}

func TestQueueModel_StageCycling(t *testing.T) {
	m, _ := newQueue(t)
	require.NotNil(t, m.stage())
	assert.Equal(t, record.StagePendingApproval, *m.stage())

	for range record.Stages {
		next, _ := m.Update(key("s"))
		m = next.(QueueModel)
	}

	assert.Nil(t, m.stage())
}

func TestStageTitle(t *testing.T) {
	assert.Equal(t, "Awaiting liquidation", stageTitle(record.StageAwaitingLiquidation))
	assert.Equal(t, "Declined", stageTitle(record.StageDeclined))
}
