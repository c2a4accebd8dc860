package secrets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	dErrors "targetkit/pkg/domain-errors"
)

func TestGenerate(t *testing.T) {
	a, err := Generate()
	require.NoError(t, err)
	b, err := Generate()
	require.NoError(t, err)

	assert.Len(t, a, 43)
	assert.NotEqual(t, a, b)
}

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("hunter2", bcrypt.MinCost)
	require.NoError(t, err)

	assert.NoError(t, Verify("hunter2", hash))

	err = Verify("hunter3", hash)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))

	err = Verify("hunter2", "not-a-hash")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
}

func TestHashRejectsEmpty(t *testing.T) {
	_, err := Hash("", bcrypt.MinCost)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}
