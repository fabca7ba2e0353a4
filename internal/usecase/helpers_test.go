package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	kvrepository "persianconnect/internal/adapter/repository"
	"persianconnect/internal/domain/entity"
	"persianconnect/internal/domain/repository"
	"persianconnect/internal/domain/service"
	"persianconnect/internal/infrastructure/firebase"
	"persianconnect/internal/infrastructure/kv"
	"persianconnect/pkg/errors"
)

func isCode(err error, code string) bool {
	return errors.Is(err, code)
}

// repos bundles the store-backed repositories the usecase tests run against.
type repos struct {
	store    *kv.MemoryStore
	users    repository.UserRepository
	listings repository.ListingRepository
	payments repository.PaymentRepository
	chats    repository.ChatRepository
}

func newRepos() *repos {
	store := kv.NewMemoryStore()
	return &repos{
		store:    store,
		users:    kvrepository.NewKVUserRepository(store),
		listings: kvrepository.NewKVListingRepository(store),
		payments: kvrepository.NewKVPaymentRepository(store),
		chats:    kvrepository.NewKVChatRepository(store),
	}
}

func (r *repos) seedUser(ctx context.Context, id, email, username string, role entity.Role) *entity.User {
	user := &entity.User{
		ID:        id,
		Email:     email,
		Username:  username,
		Role:      role,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := r.users.Create(ctx, user); err != nil {
		panic(err)
	}
	return user
}

// fakeIdentityClient is an in-memory stand-in for the Firebase client.
type fakeIdentityClient struct {
	identities map[string]*firebase.Identity // token -> identity
	verifyErr  error
	createErr  error
	signInErr  error
}

func newFakeIdentityClient() *fakeIdentityClient {
	return &fakeIdentityClient{
		identities: make(map[string]*firebase.Identity),
	}
}

func (f *fakeIdentityClient) register(token string, identity *firebase.Identity) {
	f.identities[token] = identity
}

func (f *fakeIdentityClient) VerifyToken(ctx context.Context, token string) (*firebase.Identity, error) {
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	identity, ok := f.identities[token]
	if !ok {
		return nil, fmt.Errorf("unknown token %q", token)
	}
	return identity, nil
}

func (f *fakeIdentityClient) CreateUser(ctx context.Context, email, password, displayName string) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	return "uid-" + email, nil
}

func (f *fakeIdentityClient) SignInWithEmailPassword(email, password string) (string, error) {
	if f.signInErr != nil {
		return "", f.signInErr
	}
	token := "token-" + email
	f.register(token, &firebase.Identity{UID: "uid-" + email, Email: email, Provider: "password"})
	return token, nil
}

// fakeGateway simulates the hosted checkout provider. Created sessions start
// unpaid; tests flip them with markPaid.
type fakeGateway struct {
	sessions    map[string]*service.CheckoutSession
	createCalls int
	createErr   error
	getErr      error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		sessions: make(map[string]*service.CheckoutSession),
	}
}

func (g *fakeGateway) CreateCheckoutSession(ctx context.Context, params service.CheckoutParams) (*service.CheckoutSession, error) {
	g.createCalls++
	if g.createErr != nil {
		return nil, g.createErr
	}
	session := &service.CheckoutSession{
		ID:                "cs_" + params.PaymentID,
		URL:               "https://checkout.example.com/cs_" + params.PaymentID,
		ClientReferenceID: params.PaymentID,
		PaymentStatus:     "unpaid",
		AmountTotal:       params.Amount,
		Currency:          params.Currency,
	}
	g.sessions[session.ID] = session
	return session, nil
}

func (g *fakeGateway) GetCheckoutSession(ctx context.Context, sessionID string) (*service.CheckoutSession, error) {
	if g.getErr != nil {
		return nil, g.getErr
	}
	session, ok := g.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("unknown session %q", sessionID)
	}
	return session, nil
}

func (g *fakeGateway) ParseWebhookEvent(payload []byte, signatureHeader string) (*service.WebhookEvent, error) {
	var event service.WebhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

func (g *fakeGateway) markPaid(sessionID string) {
	if session, ok := g.sessions[sessionID]; ok {
		session.PaymentStatus = "paid"
	}
}

func webhookPayload(event *service.WebhookEvent) []byte {
	payload, err := json.Marshal(event)
	if err != nil {
		panic(err)
	}
	return payload
}
