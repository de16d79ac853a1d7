package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/maynagashev/pagekeeper/internal/models"
	"github.com/maynagashev/pagekeeper/internal/repository"
)

// AuthService регистрирует пользователей дашборда и выдает им JWT.
type AuthService interface {
	Register(ctx context.Context, username, password string) (*models.User, error)
	Login(ctx context.Context, username, password string) (*models.LoginResponse, error)
}

// Параметры токенов и паролей.
const (
	tokenTTL    = time.Hour * 24
	tokenIssuer = "pagekeeper-server"

	minPasswordLength = 8
)

// Структура для пользовательских данных в JWT (claims).
type jwtClaims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

// Убедимся, что authService удовлетворяет интерфейсу AuthService.
var _ AuthService = (*authService)(nil)

type authService struct {
	userRepo  repository.UserRepository
	jwtSecret []byte
	now       func() time.Time
}

// NewAuthService создает новый экземпляр сервиса аутентификации.
// jwtSecret - ключ подписи HS256, тот же, что у middleware.
func NewAuthService(userRepo repository.UserRepository, jwtSecret []byte) AuthService {
	return &authService{userRepo: userRepo, jwtSecret: jwtSecret, now: time.Now}
}

// normalizeUsername приводит имя к виду, в котором оно хранится: без
// пробелов по краям и в нижнем регистре.
func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// Register создает пользователя и возвращает его с ID, присвоенным БД.
func (s *authService) Register(ctx context.Context, username, password string) (*models.User, error) {
	name := normalizeUsername(username)
	if name == "" {
		return nil, validationError("имя пользователя не может быть пустым")
	}
	if utf8.RuneCountInString(password) < minPasswordLength {
		return nil, validationError("пароль короче %d символов", minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("[AuthService] Ошибка хеширования пароля для '%s': %v", name, err)
		return nil, errors.New("внутренняя ошибка сервера при хешировании пароля")
	}

	user := &models.User{Username: name, PasswordHash: string(hash)}
	if err = s.userRepo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUsernameTaken) {
			return nil, ErrUsernameTaken
		}
		log.Printf("[AuthService] Не удалось зарегистрировать '%s': %v", name, err)
		return nil, errors.New("внутренняя ошибка сервера при создании пользователя")
	}

	log.Printf("[AuthService] Пользователь '%s' зарегистрирован с ID %d", name, user.ID)
	return user, nil
}

// Login проверяет пароль и выдает токен вместе с ID пользователя.
// Несуществующее имя и неверный пароль неразличимы для клиента.
func (s *authService) Login(ctx context.Context, username, password string) (*models.LoginResponse, error) {
	name := normalizeUsername(username)
	user, err := s.userRepo.GetUserByUsername(ctx, name)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			log.Printf("[AuthService] Вход под неизвестным именем '%s'", name)
			return nil, ErrInvalidCredentials
		}
		log.Printf("[AuthService] Ошибка репозитория при поиске '%s': %v", name, err)
		return nil, errors.New("внутренняя ошибка сервера при поиске пользователя")
	}

	if err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		log.Printf("[AuthService] Неверный пароль для '%s'", name)
		return nil, ErrInvalidCredentials
	}

	token, err := s.generateJWT(user.ID)
	if err != nil {
		log.Printf("[AuthService] Ошибка генерации JWT для '%s': %v", name, err)
		return nil, errors.New("внутренняя ошибка сервера при генерации токена")
	}

	log.Printf("[AuthService] Пользователь %d вошел в систему", user.ID)
	return &models.LoginResponse{Token: token, UserID: user.ID}, nil
}

// generateJWT создает и подписывает JWT токен для пользователя.
func (s *authService) generateJWT(userID int64) (string, error) {
	now := s.now()
	claims := jwtClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("ошибка подписи JWT: %w", err)
	}

	return signedToken, nil
}

// Кастомные ошибки сервиса.
var (
	ErrInvalidCredentials = errors.New("неверное имя пользователя или пароль")
	ErrUsernameTaken      = errors.New("имя пользователя уже занято")
)
