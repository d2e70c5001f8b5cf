package validator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	TargetURL *string `json:"targetUrl" validate:"required"`
}

func TestValidate(t *testing.T) {
	empty := ""

	require.NoError(t, Validate(context.Background(), payload{TargetURL: &empty}))

	err := Validate(context.Background(), payload{})
	require.Error(t, err)
	assert.Equal(t, "field 'targetUrl' failed on 'required'", err.Error())
}
