package response

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeNeverNullData(t *testing.T) {
	b, err := json.Marshal(OK(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"code":0,"msg":"OK","data":{}}`, string(b))

	b, err = json.Marshal(Error(CodeConflict, ""))
	require.NoError(t, err)
	assert.JSONEq(t, `{"code":409,"msg":"Conflict","data":{}}`, string(b))
}

func TestStatus(t *testing.T) {
	assert.Equal(t, 200, Status(CodeOK))
	assert.Equal(t, 404, Status(CodeNotFound))
	assert.Equal(t, 504, Status(CodeTimeout))
}

func TestPageEmptyItems(t *testing.T) {
	b, err := json.Marshal(NewPage[string](nil, 0))
	require.NoError(t, err)
	assert.JSONEq(t, `{"total":0,"items":[]}`, string(b))
}
