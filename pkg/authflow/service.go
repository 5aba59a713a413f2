package authflow

import (
	"context"
	"fmt"

	"github.com/tendant/otp-auth/pkg/iam"
	"github.com/tendant/otp-auth/pkg/otp"
	"github.com/tendant/otp-auth/pkg/sessions"
)

// FlowService orchestrates the login flow: OTP verification, user
// provisioning and session issuance.
type FlowService struct {
	otpService     *otp.OtpService
	iamService     *iam.IamService
	sessionService *sessions.Service
}

// NewFlowService creates a new auth flow service
func NewFlowService(otpService *otp.OtpService, iamService *iam.IamService, sessionService *sessions.Service) *FlowService {
	return &FlowService{
		otpService:     otpService,
		iamService:     iamService,
		sessionService: sessionService,
	}
}

// LoginResult is the outcome of a successful verification
type LoginResult struct {
	User    iam.User
	Session sessions.Session
}

// SendCode issues and emails a one-time passcode for the address
func (s *FlowService) SendCode(ctx context.Context, email string) error {
	_, err := s.otpService.Send(ctx, email)
	return err
}

// VerifyAndLogin verifies a submitted code, provisions the user and issues a
// session. The code is consumed before provisioning starts, so a downstream
// failure never leaves it replayable.
func (s *FlowService) VerifyAndLogin(ctx context.Context, email, code string, meta sessions.Metadata) (LoginResult, error) {
	identifier, err := s.otpService.Verify(ctx, email, code)
	if err != nil {
		return LoginResult{}, err
	}

	user, err := s.iamService.ResolveUserByEmail(ctx, identifier)
	if err != nil {
		return LoginResult{}, fmt.Errorf("failed to provision user: %w", err)
	}

	session, err := s.sessionService.IssueSession(ctx, user.ID, meta)
	if err != nil {
		return LoginResult{}, fmt.Errorf("failed to issue session: %w", err)
	}

	return LoginResult{User: user, Session: session}, nil
}

// Logout revokes the session holding the token
func (s *FlowService) Logout(ctx context.Context, token string) error {
	return s.sessionService.RevokeToken(ctx, token)
}
