package middleware

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetUserIDFromContext(t *testing.T) {
	cases := map[string]struct {
		claim   interface{}
		want    int
		wantErr bool
	}{
		"float":     {float64(17), 17, false},
		"string":    {"23", 23, false},
		"fraction":  {1.5, 0, true},
		"zero":      {float64(0), 0, true},
		"negative":  {"-4", 0, true},
		"bool":      {true, 0, true},
		"not digit": {"abc", 0, true},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			ctx := WithClaims(context.Background(), jwt.MapClaims{"user_id": tc.claim})
			got, err := GetUserIDFromContext(ctx)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	_, err := GetUserIDFromContext(context.Background())
	assert.ErrorIs(t, err, errNoClaims)
}

func TestGetUserNameFromContext(t *testing.T) {
	assert.Equal(t, "", GetUserNameFromContext(context.Background()))
	assert.Equal(t, "", GetUserNameFromContext(WithClaims(context.Background(), jwt.MapClaims{"name": 5})))
	assert.Equal(t, "tenz", GetUserNameFromContext(WithClaims(context.Background(), jwt.MapClaims{"name": "tenz"})))
}
