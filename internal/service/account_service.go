package service

import (
	"context"
	"fmt"
	"time"

	"github.com/fernet/fernet-go"
	"github.com/google/uuid"

	"revenue-split-engine/internal/model"
	"revenue-split-engine/internal/repository"
)

// AccountService registers payee accounts and issues their API keys. An
// API key is a fernet token sealing the account address with the server
// identity key, so authentication needs no key storage: verifying the
// token yields the caller address.
type AccountService struct {
	accountRepo *repository.AccountRepository
	identityKey *fernet.Key
}

// NewAccountService creates a new AccountService with the provided dependencies.
func NewAccountService(accountRepo *repository.AccountRepository, identityKey *fernet.Key) *AccountService {
	return &AccountService{
		accountRepo: accountRepo,
		identityKey: identityKey,
	}
}

// Register creates a new account and returns it along with its API key.
// The key is shown once; it cannot be recovered later, only reissued.
func (s *AccountService) Register(ctx context.Context, name string) (model.Account, string, error) {
	account := model.Account{
		Address:   uuid.New().String(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.accountRepo.InsertAccount(ctx, &account); err != nil {
		return model.Account{}, "", err
	}

	key, err := fernet.EncryptAndSign([]byte(account.Address), s.identityKey)
	if err != nil {
		return model.Account{}, "", fmt.Errorf("failed to issue api key: %w", err)
	}
	return account, string(key), nil
}

// GetAccount retrieves a single account by address.
func (s *AccountService) GetAccount(ctx context.Context, address string) (model.Account, error) {
	return s.accountRepo.GetAccount(ctx, address)
}

// Authenticate resolves an API key to the caller address it seals. An
// invalid or forged token yields an empty address and false.
func (s *AccountService) Authenticate(apiKey string) (string, bool) {
	payload := fernet.VerifyAndDecrypt([]byte(apiKey), 0, []*fernet.Key{s.identityKey})
	if payload == nil {
		return "", false
	}
	return string(payload), true
}
