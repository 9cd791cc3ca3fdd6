package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ivanzorin/wedding-backend/internal/pkg/apperror"
)

func TestOAuthFactory_UnknownProvider(t *testing.T) {
	f := NewOAuthFactory("", "", "", "")

	_, err := f.UserPhone(context.Background(), "google", "token")
	assert.True(t, apperror.IsCode(err, apperror.ErrCodeBadRequest))
}

func TestSessionService_OAuthNotConfigured(t *testing.T) {
	fx := newSessionFixture(t)

	_, err := fx.sessions.LoginWithOAuth(context.Background(), "vk", "token")
	assert.True(t, apperror.IsCode(err, apperror.ErrCodeBadRequest))
}
