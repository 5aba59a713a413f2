package authflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/otp-auth/pkg/iam"
	"github.com/tendant/otp-auth/pkg/notification"
	"github.com/tendant/otp-auth/pkg/otp"
	"github.com/tendant/otp-auth/pkg/sessions"
)

type flowFixture struct {
	flow        *FlowService
	notifier    *notification.MockNotifier
	userRepo    *iam.InMemoryUserRepository
	iamService  *iam.IamService
	sessService *sessions.Service
}

func setupFlow(t *testing.T) *flowFixture {
	notifier := &notification.MockNotifier{}
	otpService := otp.NewOtpService(otp.NewInMemoryOtpRepository(), notifier)
	userRepo := iam.NewInMemoryUserRepository()
	iamService := iam.NewIamService(userRepo)
	sessService := sessions.NewService(sessions.NewInMemoryRepository())

	return &flowFixture{
		flow:        NewFlowService(otpService, iamService, sessService),
		notifier:    notifier,
		userRepo:    userRepo,
		iamService:  iamService,
		sessService: sessService,
	}
}

// sentCode returns the passcode delivered by the most recent notification
func (f *flowFixture) sentCode(t *testing.T) string {
	require.NotEmpty(t, f.notifier.SentNotifications)
	code := f.notifier.SentNotifications[len(f.notifier.SentNotifications)-1].Data["Code"]
	require.NotEmpty(t, code)
	return code
}

func TestLoginFlow(t *testing.T) {
	ctx := context.Background()

	t.Run("FirstLoginProvisionsUserAndSession", func(t *testing.T) {
		f := setupFlow(t)

		require.NoError(t, f.flow.SendCode(ctx, "new@example.com"))

		result, err := f.flow.VerifyAndLogin(ctx, "new@example.com", f.sentCode(t), sessions.Metadata{})
		require.NoError(t, err)
		assert.Equal(t, "new@example.com", result.User.Email)
		assert.Equal(t, "new", result.User.Name)
		assert.True(t, result.User.EmailVerified)
		assert.NotEmpty(t, result.Session.Token)
		assert.Equal(t, result.User.ID, result.Session.UserID)

		// The issued token resolves to a live session
		session, err := f.sessService.ValidateToken(ctx, result.Session.Token)
		require.NoError(t, err)
		assert.Equal(t, result.User.ID, session.UserID)
	})

	t.Run("SecondLoginReusesUserReplacesSession", func(t *testing.T) {
		f := setupFlow(t)

		require.NoError(t, f.flow.SendCode(ctx, "repeat@example.com"))
		first, err := f.flow.VerifyAndLogin(ctx, "repeat@example.com", f.sentCode(t), sessions.Metadata{})
		require.NoError(t, err)

		require.NoError(t, f.flow.SendCode(ctx, "repeat@example.com"))
		second, err := f.flow.VerifyAndLogin(ctx, "repeat@example.com", f.sentCode(t), sessions.Metadata{})
		require.NoError(t, err)

		assert.Equal(t, first.User.ID, second.User.ID)
		assert.NotEqual(t, first.Session.Token, second.Session.Token)

		_, err = f.sessService.ValidateToken(ctx, first.Session.Token)
		assert.ErrorIs(t, err, sessions.ErrSessionNotFound)
	})

	t.Run("WrongCodeCreatesNothing", func(t *testing.T) {
		f := setupFlow(t)

		require.NoError(t, f.flow.SendCode(ctx, "ghost@example.com"))

		code := f.sentCode(t)
		wrong := "000000"
		if code == wrong {
			wrong = "000001"
		}
		_, err := f.flow.VerifyAndLogin(ctx, "ghost@example.com", wrong, sessions.Metadata{})
		assert.ErrorIs(t, err, otp.ErrChallengeNotFound)

		// No user was provisioned for the failed attempt
		_, err = f.userRepo.GetUserByEmail(ctx, "ghost@example.com")
		assert.ErrorIs(t, err, iam.ErrUserNotFound)
	})

	t.Run("CodeConsumedEvenWhenVerifiedAgain", func(t *testing.T) {
		f := setupFlow(t)

		require.NoError(t, f.flow.SendCode(ctx, "once@example.com"))
		code := f.sentCode(t)

		_, err := f.flow.VerifyAndLogin(ctx, "once@example.com", code, sessions.Metadata{})
		require.NoError(t, err)

		_, err = f.flow.VerifyAndLogin(ctx, "once@example.com", code, sessions.Metadata{})
		assert.ErrorIs(t, err, otp.ErrChallengeNotFound)
	})

	t.Run("MixedCaseEmailResolvesSameUser", func(t *testing.T) {
		f := setupFlow(t)

		require.NoError(t, f.flow.SendCode(ctx, "Case@Example.com"))
		first, err := f.flow.VerifyAndLogin(ctx, "Case@Example.com", f.sentCode(t), sessions.Metadata{})
		require.NoError(t, err)
		assert.Equal(t, "case@example.com", first.User.Email)

		require.NoError(t, f.flow.SendCode(ctx, "CASE@EXAMPLE.COM"))
		second, err := f.flow.VerifyAndLogin(ctx, "case@example.com", f.sentCode(t), sessions.Metadata{})
		require.NoError(t, err)
		assert.Equal(t, first.User.ID, second.User.ID)
	})
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	f := setupFlow(t)

	require.NoError(t, f.flow.SendCode(ctx, "bye@example.com"))
	result, err := f.flow.VerifyAndLogin(ctx, "bye@example.com", f.sentCode(t), sessions.Metadata{})
	require.NoError(t, err)

	require.NoError(t, f.flow.Logout(ctx, result.Session.Token))
	_, err = f.sessService.ValidateToken(ctx, result.Session.Token)
	assert.ErrorIs(t, err, sessions.ErrSessionNotFound)

	// Logging out twice is harmless
	assert.NoError(t, f.flow.Logout(ctx, result.Session.Token))
}
