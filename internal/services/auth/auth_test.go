package auth_test

import (
	"context"
	"errors"
	"testing"

	customjwt "github.com/magabrotheeeer/membership-service/internal/lib/jwt"
	"github.com/magabrotheeeer/membership-service/internal/lib/password"
	"github.com/magabrotheeeer/membership-service/internal/models"
	"github.com/magabrotheeeer/membership-service/internal/services/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Мок для UserRepository
type UserRepoMock struct {
	mock.Mock
}

func (m *UserRepoMock) RegisterUser(ctx context.Context, user models.User) (string, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Error(1)
}

func (m *UserRepoMock) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserRepoMock) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserRepoMock) UpdateUserProfile(ctx context.Context, userUID string, req models.DummyProfileUpdate) error {
	return m.Called(ctx, userUID, req).Error(0)
}

func (m *UserRepoMock) UpdateUserRole(ctx context.Context, userUID, role string) error {
	return m.Called(ctx, userUID, role).Error(0)
}

// Мок для jwt.Maker
type JwtMakerMock struct {
	mock.Mock
}

func (m *JwtMakerMock) GenerateToken(username, role, userUID string) (string, error) {
	args := m.Called(username, role, userUID)
	return args.String(0), args.Error(1)
}

func (m *JwtMakerMock) ParseToken(token string) (*customjwt.CustomClaims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customjwt.CustomClaims), args.Error(1)
}

func TestAuthService_Register(t *testing.T) {
	tests := []struct {
		name        string
		setupMocks  func(r *UserRepoMock)
		wantUserUID string
		wantErr     bool
		errMsg      string
	}{
		{
			name: "successful registration",
			setupMocks: func(r *UserRepoMock) {
				r.On("RegisterUser", mock.Anything, mock.MatchedBy(func(user models.User) bool {
					return user.Email == "member@example.com" &&
						user.Username == "member" &&
						user.UID != "" &&
						user.PasswordHash != "" &&
						user.PasswordHash != "password123" &&
						user.Role == "user"
				})).Return("uid-1", nil).Once()
			},
			wantUserUID: "uid-1",
		},
		{
			name: "repository error",
			setupMocks: func(r *UserRepoMock) {
				r.On("RegisterUser", mock.Anything, mock.Anything).Return("", errors.New("db error")).Once()
			},
			wantErr: true,
			errMsg:  "db error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(UserRepoMock)
			svc := auth.NewAuthService(repo, new(JwtMakerMock))
			tt.setupMocks(repo)

			got, err := svc.Register(context.Background(), "member@example.com", "member", "password123")
			if tt.wantErr {
				assert.Error(t, err)
				if tt.errMsg != "" {
					assert.Contains(t, err.Error(), tt.errMsg)
				}
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantUserUID, got)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	rawPassword := "correctpassword"
	hash, err := password.GetHash(rawPassword)
	require.NoError(t, err)

	storedUser := &models.User{
		UID:          "uid-1",
		Username:     "member",
		PasswordHash: hash,
		Role:         "user",
	}

	tests := []struct {
		name       string
		password   string
		setupMocks func(r *UserRepoMock, j *JwtMakerMock)
		wantToken  string
		wantErr    error
	}{
		{
			name:     "successful login",
			password: rawPassword,
			setupMocks: func(r *UserRepoMock, j *JwtMakerMock) {
				r.On("GetUserByUsername", mock.Anything, "member").Return(storedUser, nil).Once()
				j.On("GenerateToken", "member", "user", "uid-1").Return("jwt-token", nil).Once()
			},
			wantToken: "jwt-token",
		},
		{
			name:     "wrong password",
			password: "wrongpassword",
			setupMocks: func(r *UserRepoMock, _ *JwtMakerMock) {
				r.On("GetUserByUsername", mock.Anything, "member").Return(storedUser, nil).Once()
			},
			wantErr: auth.ErrInvalidCredentials,
		},
		{
			name:     "unknown user maps to the same error",
			password: rawPassword,
			setupMocks: func(r *UserRepoMock, _ *JwtMakerMock) {
				r.On("GetUserByUsername", mock.Anything, "member").
					Return(nil, errors.New("not found")).Once()
			},
			wantErr: auth.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(UserRepoMock)
			jwtMock := new(JwtMakerMock)
			tt.setupMocks(repo, jwtMock)
			svc := auth.NewAuthService(repo, jwtMock)

			token, role, err := svc.Login(context.Background(), "member", tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantToken, token)
				assert.Equal(t, "user", role)
			}
			repo.AssertExpectations(t)
			jwtMock.AssertExpectations(t)
		})
	}
}

func TestAuthService_GetProfile_StripsPasswordHash(t *testing.T) {
	repo := new(UserRepoMock)
	svc := auth.NewAuthService(repo, new(JwtMakerMock))

	repo.On("GetUser", mock.Anything, "uid-1").Return(&models.User{
		UID:          "uid-1",
		Email:        "member@example.com",
		PasswordHash: "$2a$10$something",
	}, nil).Once()

	got, err := svc.GetProfile(context.Background(), "uid-1")
	require.NoError(t, err)
	assert.Empty(t, got.PasswordHash)
	assert.Equal(t, "member@example.com", got.Email)
}

func TestAuthService_ValidateToken(t *testing.T) {
	jwtMock := new(JwtMakerMock)
	svc := auth.NewAuthService(new(UserRepoMock), jwtMock)

	jwtMock.On("ParseToken", "valid-token").Return(&customjwt.CustomClaims{
		Username: "member",
		Role:     "admin",
		UserUID:  "uid-1",
	}, nil).Once()

	user, role, ok, err := svc.ValidateToken(context.Background(), "valid-token")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "admin", role)
	assert.Equal(t, "uid-1", user.UID)

	jwtMock.On("ParseToken", "bad-token").Return(nil, errors.New("token is malformed")).Once()
	_, _, ok, err = svc.ValidateToken(context.Background(), "bad-token")
	assert.Error(t, err)
	assert.False(t, ok)
}
