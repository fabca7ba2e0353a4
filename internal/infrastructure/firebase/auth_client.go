package firebase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"firebase.google.com/go/v4/auth"
)

// Identity is the externally verified identity extracted from a bearer
// credential.
type Identity struct {
	UID      string
	Email    string
	Provider string
}

type AuthClient struct {
	client     *auth.Client
	apiKey     string
	httpClient *http.Client
}

func NewAuthClient(client *auth.Client, apiKey string) *AuthClient {
	return &AuthClient{
		client:     client,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (f *AuthClient) VerifyToken(ctx context.Context, idToken string) (*Identity, error) {
	token, err := f.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, err
	}

	identity := &Identity{UID: token.UID}
	if email, ok := token.Claims["email"].(string); ok {
		identity.Email = email
	}
	if token.Firebase.SignInProvider != "" {
		identity.Provider = token.Firebase.SignInProvider
	}
	return identity, nil
}

func (f *AuthClient) CreateUser(ctx context.Context, email, password, displayName string) (string, error) {
	params := (&auth.UserToCreate{}).
		Email(email).
		Password(password).
		DisplayName(displayName)

	user, err := f.client.CreateUser(ctx, params)
	if err != nil {
		return "", err
	}

	return user.UID, nil
}

type signInResponse struct {
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	LocalID      string `json:"localId"`
	Error        *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// SignInWithEmailPassword exchanges credentials for an ID token through the
// Identity Toolkit REST endpoint; the admin SDK has no password sign-in.
func (f *AuthClient) SignInWithEmailPassword(email, password string) (string, error) {
	url := fmt.Sprintf("https://identitytoolkit.googleapis.com/v1/accounts:signInWithPassword?key=%s", f.apiKey)

	payload, err := json.Marshal(map[string]interface{}{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	})
	if err != nil {
		return "", err
	}

	resp, err := f.httpClient.Post(url, "application/json", bytes.NewBuffer(payload))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var result signInResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", err
	}

	if result.Error != nil {
		return "", fmt.Errorf("sign in failed: %s", result.Error.Message)
	}
	if result.IDToken == "" {
		return "", fmt.Errorf("sign in failed: empty token (status %d)", resp.StatusCode)
	}

	return result.IDToken, nil
}
