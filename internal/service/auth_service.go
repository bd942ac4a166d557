package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"kbomate/internal/external"
	"kbomate/internal/middleware"
	"kbomate/internal/models"
	"kbomate/internal/repository"
	"kbomate/internal/validation"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

const (
	oauthStateTTL = 10 * time.Minute
	wsTicketTTL   = 30 * time.Second

	oauthStatePrefix = "oauth_state:"
	wsTicketPrefix   = "ws_ticket:"
	blacklistPrefix  = "blacklist:"
)

// OAuthProvider is the authorization-code flow of one identity provider.
type OAuthProvider interface {
	Configured() bool
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*external.GoogleUser, error)
}

// Session is the signed-in identity returned to the client.
// An empty session (nil User) means nobody is signed in.
type Session struct {
	User      *models.User `json:"user"`
	Role      models.Role  `json:"role,omitempty"`
	Token     string       `json:"token,omitempty"`
	ExpiresAt *time.Time   `json:"expires_at,omitempty"`
	Redirect  string       `json:"redirect"`
}

type SignUpInput struct {
	Email    string
	Password string
	Nickname string
}

type AuthService struct {
	users     repository.UserRepository
	bans      repository.BanRepository
	google    OAuthProvider
	rdb       *redis.Client
	jwtSecret string
	tokenTTL  time.Duration
	now       func() time.Time
}

func NewAuthService(
	users repository.UserRepository,
	bans repository.BanRepository,
	google OAuthProvider,
	rdb *redis.Client,
	jwtSecret string,
	tokenTTL time.Duration,
) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 7 * 24 * time.Hour
	}
	return &AuthService{
		users:     users,
		bans:      bans,
		google:    google,
		rdb:       rdb,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		now:       time.Now,
	}
}

// SignUp registers an email/password account and signs it in.
func (s *AuthService) SignUp(ctx context.Context, in SignUpInput) (*Session, error) {
	email := strings.ToLower(trimmed(in.Email))
	if err := validation.ValidateEmail(email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	nickname := trimmed(in.Nickname)
	if nickname == "" {
		nickname = defaultNickname(email)
	}
	if err := validation.ValidateNickname(nickname); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, wrap(err)
	}
	if existing != nil {
		return nil, models.NewConflictError("Email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	now := s.now()
	user := &models.User{
		Email:        email,
		Password:     string(hash),
		Nickname:     nickname,
		Role:         models.RoleUser,
		Provider:     models.ProviderEmail,
		LastSignInAt: &now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, wrap(err)
	}

	sess, err := s.issue(user)
	if err != nil {
		return nil, err
	}
	sess.Redirect = RedirectSignup
	return sess, nil
}

// SignIn checks credentials, records the sign-in time and issues a token.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(trimmed(email)))
	if err != nil {
		return nil, wrap(err)
	}
	if user == nil || user.Password == "" {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}

	return s.completeSignIn(ctx, user)
}

func (s *AuthService) completeSignIn(ctx context.Context, user *models.User) (*Session, error) {
	now := s.now()
	if err := s.ensureNotBanned(ctx, user.ID, now); err != nil {
		return nil, err
	}
	if err := s.users.TouchLastSignIn(ctx, user.ID, now); err != nil {
		return nil, wrap(err)
	}
	user.LastSignInAt = &now
	return s.issue(user)
}

func (s *AuthService) ensureNotBanned(ctx context.Context, userID uint, now time.Time) error {
	if s.bans == nil {
		return nil
	}
	bans, err := s.bans.ActiveForUser(ctx, userID, now)
	if err != nil {
		return wrap(err)
	}
	if len(bans) == 0 {
		return nil
	}
	until := bans[0].EndAt
	for _, b := range bans[1:] {
		if b.EndAt.After(until) {
			until = b.EndAt
		}
	}
	return models.NewForbiddenError(fmt.Sprintf("Account suspended until %s (%s)",
		until.In(KST).Format("2006-01-02 15:04"), bans[0].Reason))
}

func (s *AuthService) issue(user *models.User) (*Session, error) {
	token, claims, err := middleware.IssueToken(s.jwtSecret, user.ID, string(user.Role), s.tokenTTL)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	exp := claims.ExpiresAt
	return &Session{
		User:      user,
		Role:      user.Role,
		Token:     token,
		ExpiresAt: &exp,
		Redirect:  RedirectFor(user.Role),
	}, nil
}

// SignOut revokes a token id until it would have expired anyway.
func (s *AuthService) SignOut(ctx context.Context, jti string, expiresAt time.Time) error {
	if s.rdb == nil || jti == "" {
		return nil
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := s.rdb.Set(ctx, blacklistPrefix+jti, "1", ttl).Err(); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// IsRevoked reports whether jti was signed out. Redis errors count as not revoked.
func (s *AuthService) IsRevoked(ctx context.Context, jti string) bool {
	if s.rdb == nil || jti == "" {
		return false
	}
	n, err := s.rdb.Exists(ctx, blacklistPrefix+jti).Result()
	return err == nil && n > 0
}

// Session re-reads the user and role behind a token. A deleted account yields an empty session.
func (s *AuthService) Session(ctx context.Context, userID uint) (*Session, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if models.ErrorCode(err) == models.CodeNotFound {
			return &Session{Redirect: RedirectHome}, nil
		}
		return nil, wrap(err)
	}
	return &Session{User: user, Role: user.Role, Redirect: RedirectFor(user.Role)}, nil
}

// OAuthStart returns the provider consent URL and remembers its state.
func (s *AuthService) OAuthStart(ctx context.Context, provider string) (string, error) {
	if provider != models.ProviderGoogle {
		return "", models.NewValidationError("Unsupported provider")
	}
	if s.google == nil || !s.google.Configured() {
		return "", models.NewValidationError("Google sign-in is not configured")
	}
	if s.rdb == nil {
		return "", models.NewInternalError(errors.New("oauth state store unavailable"))
	}

	state := uuid.NewString()
	if err := s.rdb.Set(ctx, oauthStatePrefix+state, provider, oauthStateTTL).Err(); err != nil {
		return "", models.NewInternalError(err)
	}
	return s.google.AuthCodeURL(state), nil
}

// OAuthCallback consumes state, exchanges code and signs the linked account in.
func (s *AuthService) OAuthCallback(ctx context.Context, code, state string) (*Session, error) {
	if code == "" {
		return nil, models.NewValidationError("Missing authorization code")
	}
	if s.rdb == nil || state == "" {
		return nil, models.NewUnauthorizedError("Invalid OAuth state")
	}
	if _, err := s.rdb.GetDel(ctx, oauthStatePrefix+state).Result(); err != nil {
		return nil, models.NewUnauthorizedError("Invalid OAuth state")
	}

	profile, err := s.google.Exchange(ctx, code)
	if err != nil {
		return nil, models.NewUpstreamError("Google sign-in failed", err)
	}

	now := s.now()
	nickname := truncateRunes(trimmed(profile.Name), validation.NicknameMax)
	if runeLen(nickname) < validation.NicknameMin {
		nickname = defaultNickname(profile.Email)
	}
	user, err := s.users.UpsertOAuth(ctx, &models.User{
		Email:           strings.ToLower(profile.Email),
		Nickname:        nickname,
		Role:            models.RoleUser,
		Provider:        models.ProviderGoogle,
		ProviderSubject: profile.Sub,
		LastSignInAt:    &now,
	})
	if err != nil {
		return nil, wrap(err)
	}
	if err := s.ensureNotBanned(ctx, user.ID, now); err != nil {
		return nil, err
	}
	return s.issue(user)
}

// IssueWSTicket returns a single-use ticket that authenticates one websocket upgrade.
func (s *AuthService) IssueWSTicket(ctx context.Context, userID uint) (string, time.Duration, error) {
	if s.rdb == nil {
		return "", 0, models.NewInternalError(errors.New("ticket store unavailable"))
	}
	ticket := uuid.NewString()
	if err := s.rdb.Set(ctx, wsTicketPrefix+ticket, userID, wsTicketTTL).Err(); err != nil {
		return "", 0, models.NewInternalError(err)
	}
	return ticket, wsTicketTTL, nil
}

// ConsumeWSTicket redeems a ticket, deleting it.
func (s *AuthService) ConsumeWSTicket(ctx context.Context, ticket string) (uint, bool) {
	if s.rdb == nil || ticket == "" {
		return 0, false
	}
	id, err := s.rdb.GetDel(ctx, wsTicketPrefix+ticket).Uint64()
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// ParseToken validates a bearer token and rejects signed-out ones.
func (s *AuthService) ParseToken(ctx context.Context, token string) (middleware.TokenClaims, error) {
	claims, err := middleware.ParseToken(s.jwtSecret, token)
	if err != nil {
		return claims, models.NewUnauthorizedError("Invalid or expired token")
	}
	if s.IsRevoked(ctx, claims.JTI) {
		return claims, models.NewUnauthorizedError("Token has been revoked")
	}
	return claims, nil
}

func defaultNickname(email string) string {
	local, _, _ := strings.Cut(email, "@")
	local = truncateRunes(local, validation.NicknameMax)
	if runeLen(local) < validation.NicknameMin {
		return "야구팬"
	}
	return local
}
