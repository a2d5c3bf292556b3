package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/golang-jwt/jwt/v5"

	"github.com/collabhub/backend/internal/models"
)

type contextKey string

const ViewerKey contextKey = "viewer"

var ErrInvalidToken = errors.New("invalid token")

// TokenVerifier turns a bearer token into the viewer it identifies.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*models.Viewer, error)
}

// FirebaseVerifier verifies Firebase ID tokens.
type FirebaseVerifier struct {
	client *fbauth.Client
}

func NewFirebaseVerifier(client *fbauth.Client) *FirebaseVerifier {
	return &FirebaseVerifier{client: client}
}

func (v *FirebaseVerifier) Verify(ctx context.Context, token string) (*models.Viewer, error) {
	tok, err := v.client.VerifyIDToken(ctx, token)
	if err != nil {
		return nil, err
	}
	name, _ := tok.Claims["name"].(string)
	return &models.Viewer{ID: tok.UID, DisplayName: name}, nil
}

// JWTVerifier verifies HS256 tokens carrying user_id and name claims. It is
// meant for local development without Firebase.
type JWTVerifier struct {
	secret []byte
}

func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret)}
}

func (v *JWTVerifier) Verify(ctx context.Context, tokenString string) (*models.Viewer, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return nil, ErrInvalidToken
	}
	name, _ := claims["name"].(string)
	return &models.Viewer{ID: userID, DisplayName: name}, nil
}

// OptionalAuth attaches the viewer when a bearer token is present. Requests
// without an Authorization header continue anonymously; a bad token is
// rejected.
func OptionalAuth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
				writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Invalid authorization header format"))
				return
			}
			if verifier == nil {
				writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Authentication unavailable"))
				return
			}

			viewer, err := verifier.Verify(r.Context(), strings.TrimSpace(parts[1]))
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Invalid or expired token"))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithViewer(r.Context(), viewer)))
		})
	}
}

func WithViewer(ctx context.Context, viewer *models.Viewer) context.Context {
	return context.WithValue(ctx, ViewerKey, viewer)
}

// GetViewer returns the signed-in viewer, or nil.
func GetViewer(ctx context.Context) *models.Viewer {
	viewer, ok := ctx.Value(ViewerKey).(*models.Viewer)
	if !ok {
		return nil
	}
	return viewer
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
