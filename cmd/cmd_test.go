package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "stratego_oracle/internal/errors"
	strategistUC "stratego_oracle/internal/usecase/strategist"
)

const stateJSON = `{
	"board": [[{"type":"1","player":"ai","row":0,"col":0}],[{"type":"2","player":"player","row":1,"col":0}]],
	"legalMoves": [{"piece":{"type":"1","player":"ai","row":0,"col":0},"from":{"row":0,"col":0},"to":{"row":1,"col":0}}],
	"knownPieces": {},
	"battleHistory": [],
	"confirmedBombs": [],
	"turnCount": 3
}`

func TestRunDecode(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, runDecode(strings.NewReader("Sure. MOVE (3,1) TO (4,1)\n"), &out))
	assert.JSONEq(t, `{"move":{"from":{"row":3,"col":1},"to":{"row":4,"col":1}}}`, out.String())

	err := runDecode(strings.NewReader("I pass this turn."), &out)
	assert.ErrorIs(t, err, errs.ErrMoveNotFound)
}

func TestRunPromptFromStdin(t *testing.T) {
	statePath = "-"

	var out bytes.Buffer
	require.NoError(t, runPrompt(strings.NewReader(stateJSON), &out))

	prompt := out.String()
	assert.Contains(t, prompt, "Turn: 3")
	assert.Contains(t, prompt, " 1 p? ")
	assert.True(t, strings.HasSuffix(prompt, strategistUC.OutputInstruction+"\n"))
}

func TestRunPromptFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte(stateJSON), 0o600))
	statePath = path
	t.Cleanup(func() { statePath = "-" })

	var out bytes.Buffer
	require.NoError(t, runPrompt(strings.NewReader(""), &out))
	assert.Contains(t, out.String(), "- Move Marshal (1) from (0,0) to (1,0)")
}

func TestRunPromptMissingField(t *testing.T) {
	statePath = "-"

	var out bytes.Buffer
	err := runPrompt(strings.NewReader(`{"board":[]}`), &out)
	require.ErrorIs(t, err, errs.ErrMissingField)
	assert.Contains(t, err.Error(), "legalMoves")
	assert.Zero(t, out.Len())
}
