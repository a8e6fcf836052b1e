package account

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/oggyb/cinemood/internal/app"
	"github.com/oggyb/cinemood/internal/auth"
	"github.com/oggyb/cinemood/internal/db"
	svcErr "github.com/oggyb/cinemood/internal/errors"
	"github.com/oggyb/cinemood/internal/repository"
)

// Service implements registration, login and profile management.
// Every method takes the request-scoped session it should run on.
type Service struct {
	appCtx *app.AppContext
}

func NewService(appCtx *app.AppContext) *Service {
	return &Service{appCtx: appCtx}
}

type RegisterInput struct {
	Email    string
	Password string
	Nickname string
	MBTI     *string
}

type UpdateInput struct {
	Nickname *string
	MBTI     *string
}

// Token is the login response body.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// Register creates an active account with a hashed password.
func (s *Service) Register(ctx context.Context, sess *gorm.DB, in RegisterInput) (*db.User, error) {
	users := repository.NewUserRepository(sess)

	exists, err := users.ExistsByEmail(ctx, in.Email)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	if exists {
		return nil, svcErr.AlreadyExists("email already registered")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	user := &db.User{
		Email:        in.Email,
		PasswordHash: hash,
		Nickname:     strings.TrimSpace(in.Nickname),
		MBTI:         in.MBTI,
		IsActive:     true,
	}
	if err := users.Create(ctx, user); err != nil {
		return nil, svcErr.Map(err)
	}

	s.appCtx.Logger.Info("user registered", "user_id", user.ID)
	return user, nil
}

// Login verifies credentials and issues an access token.
// Unknown email and wrong password fail identically.
func (s *Service) Login(ctx context.Context, sess *gorm.DB, email, password string) (*Token, error) {
	user, err := repository.NewUserRepository(sess).GetByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, svcErr.Unauthenticated("incorrect email or password")
	} else if err != nil {
		return nil, svcErr.Map(err)
	}
	if !auth.VerifyPassword(password, user.PasswordHash) {
		return nil, svcErr.Unauthenticated("incorrect email or password")
	}
	if !user.IsActive {
		return nil, svcErr.Unauthenticated("inactive user")
	}

	token, err := s.appCtx.Tokens.Issue(user.ID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &Token{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int64(s.appCtx.Tokens.TTL().Seconds()),
	}, nil
}

// Authenticate resolves a bearer token to an active user.
func (s *Service) Authenticate(ctx context.Context, sess *gorm.DB, token string) (*db.User, error) {
	id, err := s.appCtx.Tokens.Resolve(token)
	if err != nil {
		s.appCtx.Logger.Debug("token rejected", "err", err)
		return nil, svcErr.Map(err)
	}

	user, err := repository.NewUserRepository(sess).GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, svcErr.Unauthenticated("could not validate credentials")
	} else if err != nil {
		return nil, svcErr.Map(err)
	}
	if !user.IsActive {
		return nil, svcErr.Unauthenticated("inactive user")
	}
	return user, nil
}

// UpdateProfile applies the non-nil fields of in. An empty MBTI clears it.
func (s *Service) UpdateProfile(ctx context.Context, sess *gorm.DB, user *db.User, in UpdateInput) (*db.User, error) {
	if in.Nickname != nil {
		nickname := strings.TrimSpace(*in.Nickname)
		if nickname == "" {
			return nil, svcErr.InvalidArgument("nickname must not be empty")
		}
		user.Nickname = nickname
	}
	if in.MBTI != nil {
		mbti := *in.MBTI
		user.MBTI = &mbti
	}
	if err := repository.NewUserRepository(sess).Save(ctx, user); err != nil {
		return nil, svcErr.Map(err)
	}
	return user, nil
}

// ChangePassword replaces the credential after checking the current one.
func (s *Service) ChangePassword(ctx context.Context, sess *gorm.DB, user *db.User, current, next string) error {
	if !auth.VerifyPassword(current, user.PasswordHash) {
		return svcErr.InvalidArgument("current password is incorrect")
	}
	hash, err := auth.HashPassword(next)
	if err != nil {
		return svcErr.Map(err)
	}
	user.PasswordHash = hash
	if err := repository.NewUserRepository(sess).Save(ctx, user); err != nil {
		return svcErr.Map(err)
	}
	s.appCtx.Logger.Info("password changed", "user_id", user.ID)
	return nil
}

// Delete removes the account and its reactions. Cached like counts of the
// movies it liked are dropped.
func (s *Service) Delete(ctx context.Context, sess *gorm.DB, userID uint64) error {
	liked, err := repository.NewReactionRepository(sess).LikedMovieIDs(ctx, userID)
	if err != nil {
		return svcErr.Map(err)
	}
	if err := repository.NewUserRepository(sess).Delete(ctx, userID); err != nil {
		return svcErr.Map(err)
	}
	if s.appCtx.RedisCache != nil && len(liked) > 0 {
		keys := make([]string, 0, len(liked))
		for _, id := range liked {
			keys = append(keys, s.appCtx.RedisCache.KeyForLikeCount(id))
		}
		if err := s.appCtx.RedisCache.Del(ctx, keys...); err != nil {
			s.appCtx.Logger.Warn("failed to drop like counts", "user_id", userID, "err", err)
		}
	}
	s.appCtx.Logger.Info("user deleted", "user_id", userID)
	return nil
}
