package auth_test

import (
	"context"
	"testing"

	"github.com/marcelsud/wallet-connector/auth"
	"github.com/marcelsud/wallet-connector/failure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticTokens(t *testing.T) {
	ctx := context.Background()
	a := auth.NewStaticTokens("alpha", " beta ", "")

	t.Run("success - configured tokens", func(t *testing.T) {
		assert.Equal(t, 2, a.Len())
		for _, tok := range []string{"alpha", "beta"} {
			p, err := a.Authenticate(ctx, tok)
			require.NoError(t, err, tok)
			assert.NotEmpty(t, p.Subject)
		}
	})

	t.Run("error - unknown or missing token", func(t *testing.T) {
		for _, tok := range []string{"", "gamma", "alph", "alpha "} {
			_, err := a.Authenticate(ctx, tok)
			require.Error(t, err, tok)
			assert.True(t, failure.Is(err, failure.Authentication), tok)
		}
	})

	t.Run("error - no tokens configured rejects everything", func(t *testing.T) {
		_, err := auth.NewStaticTokens().Authenticate(ctx, "anything")
		assert.Error(t, err)
	})

	t.Run("JWT-shaped strings get no special treatment", func(t *testing.T) {
		_, err := a.Authenticate(ctx, "eyJhbGciOiJub25lIn0.eyJzdWIiOiJ4In0.")
		assert.Error(t, err)
	})
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", auth.BearerToken("Bearer abc"))
	assert.Equal(t, "abc", auth.BearerToken("bearer   abc"))
	assert.Equal(t, "", auth.BearerToken("Basic abc"))
	assert.Equal(t, "", auth.BearerToken("abc"))
	assert.Equal(t, "", auth.BearerToken(""))
}
